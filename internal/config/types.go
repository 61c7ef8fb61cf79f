package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/filecache/filecache/internal/cache"
)

// Duration 提供更灵活的反序列化能力，同时兼容纯秒整数与 Go Duration 字符串。
type Duration time.Duration

// UnmarshalText 使 Viper 可以识别诸如 "30s"、"5m" 或纯数字秒值等配置写法。
func (d *Duration) UnmarshalText(text []byte) error {
	raw := strings.TrimSpace(string(text))
	if raw == "" {
		*d = Duration(0)
		return nil
	}

	if parsed, err := time.ParseDuration(raw); err == nil {
		*d = Duration(parsed)
		return nil
	}

	if intVal, err := parseInt(raw); err == nil {
		*d = Duration(time.Duration(intVal) * time.Second)
		return nil
	}

	return fmt.Errorf("invalid duration value: %s", raw)
}

// DurationValue 返回真实的 time.Duration，便于调用方计算。
func (d Duration) DurationValue() time.Duration {
	return time.Duration(d)
}

// parseInt 支持十进制或 0x 前缀的十六进制字符串解析。
func parseInt(value string) (int64, error) {
	if strings.HasPrefix(value, "0x") || strings.HasPrefix(value, "0X") {
		return strconv.ParseInt(value, 0, 64)
	}
	return strconv.ParseInt(value, 10, 64)
}

// GlobalConfig 描述缓存目录、值序列化格式、清理周期与日志输出。
type GlobalConfig struct {
	LogLevel      string   `mapstructure:"LogLevel"`
	LogFilePath   string   `mapstructure:"LogFilePath"`
	LogMaxSize    int      `mapstructure:"LogMaxSize"`
	LogMaxBackups int      `mapstructure:"LogMaxBackups"`
	LogMaxAgeDays int      `mapstructure:"LogMaxAgeDays"`
	LogCompress   bool     `mapstructure:"LogCompress"`
	StoragePath   string   `mapstructure:"StoragePath"`
	CreateStorage bool     `mapstructure:"CreateStorage"`
	Serializer    string   `mapstructure:"Serializer"`
	SweepInterval Duration `mapstructure:"SweepInterval"`
}

// Config 是 TOML 文件映射的整体结构。
type Config struct {
	Global GlobalConfig `mapstructure:",squash"`
}

// ResolveSerializer 返回配置选定的序列化器（假定 Validate 已经通过）。
func (c *Config) ResolveSerializer() (cache.Serializer, error) {
	s, ok := cache.ResolveSerializer(c.Global.Serializer)
	if !ok {
		return nil, newFieldError("Global.Serializer", fmt.Sprintf("未注册: %s", c.Global.Serializer))
	}
	return s, nil
}

// StoreOptions 汇总构建缓存实例所需的配置项。
func (c *Config) StoreOptions() (cache.Options, error) {
	s, err := c.ResolveSerializer()
	if err != nil {
		return cache.Options{}, err
	}
	return cache.Options{Serializer: s}, nil
}
