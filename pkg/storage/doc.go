// Package storage 提供数据存储相关的子包。
//
// 子包列表：
//   - xclickhouse: 命名 ClickHouse 连接，启动重试与健康检查
//   - xchmodule: 多个命名连接的注册、并发启动与关闭
//
// 设计原则：
//   - 连接以名称区分，注册表键由名称确定性派生
//   - 内置可观测性（指标、追踪）
package storage
