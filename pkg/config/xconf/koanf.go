package xconf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

type koanfConfig struct {
	mu     sync.RWMutex
	k      *koanf.Koanf
	path   string
	format Format
	opts   *Options
}

// New 读取 path 指向的文件，按扩展名选择解析器。空文件得到空配置。
func New(path string, opts ...Option) (Config, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}
	format, err := formatOf(path)
	if err != nil {
		return nil, err
	}

	c := &koanfConfig{path: path, format: format, opts: buildOptions(opts)}
	if err := c.Reload(); err != nil {
		return nil, err
	}
	return c, nil
}

// NewFromBytes 从内存数据创建配置，适用于 ConfigMap 或内嵌默认值。
func NewFromBytes(data []byte, format Format, opts ...Option) (Config, error) {
	if parserOf(format) == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	c := &koanfConfig{format: format, opts: buildOptions(opts)}
	k, err := c.parse(data)
	if err != nil {
		return nil, err
	}
	c.k = k
	return c, nil
}

func (c *koanfConfig) Client() *koanf.Koanf {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.k
}

func (c *koanfConfig) Unmarshal(path string, target any) error {
	k := c.Client()
	if err := k.UnmarshalWithConf(path, target, koanf.UnmarshalConf{Tag: c.opts.Tag}); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrUnmarshalFailed, path, err)
	}
	return nil
}

func (c *koanfConfig) Exists(path string) bool {
	return c.Client().Exists(path)
}

func (c *koanfConfig) Reload() error {
	if c.path == "" {
		return ErrNotReloadable
	}
	data, err := os.ReadFile(c.path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}
	k, err := c.parse(data)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.k = k
	c.mu.Unlock()
	return nil
}

func (c *koanfConfig) Path() string   { return c.path }
func (c *koanfConfig) Format() Format { return c.format }

// parse 将 data 解析为新的 koanf 实例，不修改当前状态。
func (c *koanfConfig) parse(data []byte) (*koanf.Koanf, error) {
	k := koanf.New(c.opts.Delim)
	if len(data) == 0 {
		return k, nil
	}
	if err := k.Load(rawbytes.Provider(data), parserOf(c.format)); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParseFailed, err)
	}
	return k, nil
}

func formatOf(path string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: unknown extension %q", ErrUnsupportedFormat, ext)
	}
}

func parserOf(format Format) koanf.Parser {
	switch format {
	case FormatYAML:
		return yaml.Parser()
	case FormatJSON:
		return json.Parser()
	default:
		return nil
	}
}
