package xconf

import "github.com/knadh/koanf/v2"

// Format 配置格式。
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// Config 只读配置视图。
//
// 通用的键访问直接使用 Client() 返回的 koanf 实例。
type Config interface {
	// Client 返回当前的 koanf 实例，Reload 后返回新实例。
	Client() *koanf.Koanf

	// Unmarshal 将 path 下的配置解码到 target，path 为空时解码整个配置。
	Unmarshal(path string, target any) error

	// Exists 报告 path 是否存在。
	Exists(path string) bool

	// Reload 重新读取文件，并发安全。
	Reload() error

	// Path 返回来源文件路径，字节数据创建时为空。
	Path() string

	Format() Format
}

// Options 加载选项。
type Options struct {
	// Delim 键分隔符，默认 "."。
	Delim string
	// Tag Unmarshal 使用的结构体标签，默认 "koanf"。
	Tag string
}

// Option 加载选项函数。
type Option func(*Options)

// WithDelim 设置键分隔符，空字符串被忽略。
func WithDelim(delim string) Option {
	return func(o *Options) {
		if delim != "" {
			o.Delim = delim
		}
	}
}

// WithTag 设置结构体标签名，空字符串被忽略。
func WithTag(tag string) Option {
	return func(o *Options) {
		if tag != "" {
			o.Tag = tag
		}
	}
}

func buildOptions(opts []Option) *Options {
	o := &Options{Delim: ".", Tag: "koanf"}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}
