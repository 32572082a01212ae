package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

const sampleYAML = `
app:
  name: shortlink-platform
  mode: development
  version: 1.0.0
  base_url: http://localhost:8080
server:
  port: 8080
  read_timeout: 10
  write_timeout: 10
database:
  host: 127.0.0.1
  port: 3306
  user: root
  password: secret
  name: shortlink
cache:
  host: ""
auth:
  secret: dev-secret
  issuer: shortlink-platform
  expiration_hours: 24
rate_limit:
  enabled: true
  requests_per_minute: 100
  burst: 20
  skip_paths:
    - /health
`

func writeConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(sampleYAML), 0o644); err != nil {
		t.Fatalf("写入临时配置失败: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t))
	assert.NoError(t, err)

	assert.Equal(t, "shortlink-platform", cfg.App.Name)
	assert.Equal(t, "http://localhost:8080", cfg.App.BaseURL)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "secret", cfg.Database.Password)
	assert.Equal(t, 24, cfg.Auth.ExpirationHours)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.Equal(t, []string{"/health"}, cfg.RateLimit.SkipPaths)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("BASE_SHORT_URL", "https://sho.rt")
	t.Setenv("AUTH_SECRET", "env-secret")

	cfg, err := Load(writeConfig(t))
	assert.NoError(t, err)

	assert.Equal(t, "https://sho.rt", cfg.App.BaseURL)
	assert.Equal(t, "env-secret", cfg.Auth.Secret)
	// 未设置环境变量的字段保持文件值
	assert.Equal(t, "secret", cfg.Database.Password)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
