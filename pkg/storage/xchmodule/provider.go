package xchmodule

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"

	"github.com/omeyang/xchkit/pkg/config/xconf"
	"github.com/omeyang/xchkit/pkg/storage/xclickhouse"
)

// FileConfig 配置文件中的单个连接条目。
//
//	clickhouse:
//	  connections:
//	    - name: logs
//	      addr: ["ch-1:9000", "ch-2:9000"]
//	      database: logs
//	      username: writer
//	      dial_timeout: 5s
//	      compression: lz4
//	      retry_attempts: 5
//	      retry_delay: 1s
//	      verbose_retry_log: true
//
// dsn 与 addr 二选一。
type FileConfig struct {
	Name            string         `koanf:"name"`
	DSN             string         `koanf:"dsn"`
	Addr            []string       `koanf:"addr"`
	Database        string         `koanf:"database"`
	Username        string         `koanf:"username"`
	Password        string         `koanf:"password"`
	DialTimeout     time.Duration  `koanf:"dial_timeout"`
	MaxOpenConns    int            `koanf:"max_open_conns"`
	MaxIdleConns    int            `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration  `koanf:"conn_max_lifetime"`
	Compression     string         `koanf:"compression"`
	RetryAttempts   int            `koanf:"retry_attempts"`
	RetryDelay      *time.Duration `koanf:"retry_delay"`
	VerboseRetryLog bool           `koanf:"verbose_retry_log"`
}

var compressionMethods = map[string]clickhouse.CompressionMethod{
	"none": clickhouse.CompressionNone,
	"lz4":  clickhouse.CompressionLZ4,
	"zstd": clickhouse.CompressionZSTD,
}

// Config 转换为 xclickhouse.Config。
func (f FileConfig) Config() (xclickhouse.Config, error) {
	cfg := xclickhouse.Config{
		Name:            f.Name,
		RetryAttempts:   f.RetryAttempts,
		RetryDelay:      f.RetryDelay,
		VerboseRetryLog: f.VerboseRetryLog,
	}
	name := xclickhouse.NormalizeName(f.Name)

	switch {
	case f.DSN != "" && len(f.Addr) > 0:
		return cfg, fmt.Errorf("%w: %q sets both dsn and addr", ErrInvalidFileConfig, name)
	case f.DSN != "":
		cfg.DSN = f.DSN
		return cfg, nil
	case len(f.Addr) == 0:
		return cfg, fmt.Errorf("%w: %q needs dsn or addr", ErrInvalidFileConfig, name)
	}

	opts := &clickhouse.Options{
		Addr: append([]string(nil), f.Addr...),
		Auth: clickhouse.Auth{
			Database: f.Database,
			Username: f.Username,
			Password: f.Password,
		},
		DialTimeout:     f.DialTimeout,
		MaxOpenConns:    f.MaxOpenConns,
		MaxIdleConns:    f.MaxIdleConns,
		ConnMaxLifetime: f.ConnMaxLifetime,
	}
	if f.Compression != "" {
		method, ok := compressionMethods[strings.ToLower(f.Compression)]
		if !ok {
			return cfg, fmt.Errorf("%w: %q unknown compression %q", ErrInvalidFileConfig, name, f.Compression)
		}
		opts.Compression = &clickhouse.Compression{Method: method}
	}
	cfg.Options = opts
	return cfg, nil
}

// KoanfProvider 从 xconf 配置的 Path 处读取单个连接条目，实现 ConfigProvider。
// 每次求值都读取当前配置，Reload 后的修改在下一次 Start 生效。
type KoanfProvider struct {
	Config xconf.Config
	Path   string
}

// ClickHouseConfig 实现 ConfigProvider。
func (p KoanfProvider) ClickHouseConfig(context.Context) (xclickhouse.Config, error) {
	if p.Config == nil {
		return xclickhouse.Config{}, fmt.Errorf("%w: nil xconf.Config", ErrInvalidFileConfig)
	}
	var fc FileConfig
	if err := p.Config.Unmarshal(p.Path, &fc); err != nil {
		return xclickhouse.Config{}, err
	}
	return fc.Config()
}

// LoadFile 读取 path 处的连接列表。
func LoadFile(cfg xconf.Config, path string) ([]xclickhouse.Config, error) {
	var entries []FileConfig
	if err := cfg.Unmarshal(path, &entries); err != nil {
		return nil, err
	}
	out := make([]xclickhouse.Config, 0, len(entries))
	for i, e := range entries {
		c, err := e.Config()
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", path, i, err)
		}
		out = append(out, c)
	}
	return out, nil
}
