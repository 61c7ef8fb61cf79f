package config

import (
	"path/filepath"
	"testing"
	"time"
)

func TestLoadWithDefaults(t *testing.T) {
	cfgPath := testConfigPath(t, "valid.toml")

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load 返回错误: %v", err)
	}
	if !filepath.IsAbs(cfg.Global.StoragePath) {
		t.Fatalf("StoragePath 应转换为绝对路径，得到 %s", cfg.Global.StoragePath)
	}
	if cfg.Global.SweepInterval.DurationValue() != 5*time.Minute {
		t.Fatalf("SweepInterval 应被解析，得到 %v", cfg.Global.SweepInterval.DurationValue())
	}
	if !cfg.Global.CreateStorage {
		t.Fatalf("CreateStorage 默认应为 true")
	}
	if cfg.Global.LogMaxSize != 100 || cfg.Global.LogMaxBackups != 10 {
		t.Fatalf("日志轮转默认值未注入: %+v", cfg.Global)
	}
}

func TestValidateRejectsBadConfig(t *testing.T) {
	cfgPath := testConfigPath(t, "missing.toml")

	if _, err := Load(cfgPath); err == nil {
		t.Fatalf("不合法的配置应返回错误")
	}
}

func TestSerializerValidation(t *testing.T) {
	testCases := []struct {
		name       string
		serializer string
		shouldErr  bool
	}{
		{"json ok", "json", false},
		{"gob ok", "gob", false},
		{"missing", "", true},
		{"unsupported", "php", true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Global.Serializer = tc.serializer
			err := cfg.Validate()
			if tc.shouldErr && err == nil {
				t.Fatalf("expected error for serializer %q", tc.serializer)
			}
			if !tc.shouldErr && err != nil {
				t.Fatalf("unexpected error for serializer %q: %v", tc.serializer, err)
			}
		})
	}
}

func TestValidateReportsFieldPath(t *testing.T) {
	cfg := validConfig()
	cfg.Global.SweepInterval = 0
	err := cfg.Validate()
	fieldErr, ok := err.(FieldError)
	if !ok {
		t.Fatalf("期望 FieldError，得到 %T", err)
	}
	if fieldErr.Field != "Global.SweepInterval" {
		t.Fatalf("字段路径错误: %s", fieldErr.Field)
	}
}

func TestValidateRejectsNegativeLogSettings(t *testing.T) {
	cfg := validConfig()
	cfg.Global.LogMaxBackups = -1
	if err := cfg.Validate(); err == nil {
		t.Fatalf("LogMaxBackups 为负数时应报错")
	}

	cfg = validConfig()
	cfg.Global.LogLevel = "loud"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("未知日志级别应报错")
	}
}

func TestStoreOptionsResolveSerializer(t *testing.T) {
	cfg := validConfig()
	cfg.Global.Serializer = "gob"
	opts, err := cfg.StoreOptions()
	if err != nil {
		t.Fatalf("StoreOptions 返回错误: %v", err)
	}
	if opts.Serializer == nil || opts.Serializer.Name() != "gob" {
		t.Fatalf("应解析出 gob 序列化器，得到 %v", opts.Serializer)
	}
}

func TestDurationUnmarshalText(t *testing.T) {
	testCases := []struct {
		raw  string
		want time.Duration
	}{
		{"30s", 30 * time.Second},
		{"90", 90 * time.Second},
		{"0x10", 16 * time.Second},
		{"", 0},
	}
	for _, tc := range testCases {
		var d Duration
		if err := d.UnmarshalText([]byte(tc.raw)); err != nil {
			t.Fatalf("解析 %q 失败: %v", tc.raw, err)
		}
		if d.DurationValue() != tc.want {
			t.Fatalf("%q 期望 %v，得到 %v", tc.raw, tc.want, d.DurationValue())
		}
	}

	var d Duration
	if err := d.UnmarshalText([]byte("soon")); err == nil {
		t.Fatalf("无效 Duration 应失败")
	}
}

func validConfig() *Config {
	return &Config{
		Global: GlobalConfig{
			LogLevel:      "info",
			StoragePath:   "./data",
			Serializer:    "json",
			SweepInterval: Duration(time.Minute),
		},
	}
}
