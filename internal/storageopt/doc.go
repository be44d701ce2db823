// Package storageopt 是 pkg/storage 子包共享的内部工具：健康检查超时
// 与原子统计计数器。
package storageopt
