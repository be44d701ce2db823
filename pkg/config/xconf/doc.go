// Package xconf 基于 koanf 加载 YAML/JSON 配置。
//
// 文件格式由扩展名推断（.yaml/.yml/.json），字节数据需显式指定格式。
// Unmarshal 使用 koanf 结构体标签，字符串形式的时长（如 "3s"）可直接
// 解码为 time.Duration。
//
//	cfg, err := xconf.New("clickhouse.yaml")
//	if err != nil {
//	    return err
//	}
//	var conns []FileConfig
//	err = cfg.Unmarshal("clickhouse.connections", &conns)
package xconf
