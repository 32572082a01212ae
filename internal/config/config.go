package config

import (
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// 主配置结构 - 简化命名
type Config struct {
	App       App    `yaml:"app"`
	Server    Server `yaml:"server"`
	Database  DB     `yaml:"database"`
	Cache     Cache  `yaml:"cache"`
	Auth      Auth   `yaml:"auth"`
	RateLimit Limit  `yaml:"rate_limit"`
}

// 应用配置
type App struct {
	Name    string `yaml:"name"`
	Mode    string `yaml:"mode"`
	Version string `yaml:"version"`
	// BaseURL 是短链接的公共前缀（origin），开发环境下替代请求来源
	BaseURL string `yaml:"base_url"`
}

// 服务器配置
type Server struct {
	Port         int `yaml:"port"`
	ReadTimeout  int `yaml:"read_timeout"`
	WriteTimeout int `yaml:"write_timeout"`
}

// 数据库配置
type DB struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	Charset  string `yaml:"charset"`
}

// 缓存配置（Redis）
type Cache struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// 认证配置
type Auth struct {
	Secret          string `yaml:"secret"`
	Issuer          string `yaml:"issuer"`
	ExpirationHours int    `yaml:"expiration_hours"`
}

// 限流配置
type Limit struct {
	Enabled   bool     `yaml:"enabled"`
	Requests  int64    `yaml:"requests_per_minute"`
	Burst     int64    `yaml:"burst"`
	SkipPaths []string `yaml:"skip_paths"`
}

// 加载配置，环境变量优先于配置文件中的敏感字段
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.applyEnvOverrides()
	return &cfg, nil
}

// applyEnvOverrides 用 .env / 环境变量覆盖部署相关字段
func (c *Config) applyEnvOverrides() {
	_ = godotenv.Load() // .env 不存在时忽略（例如生产环境）

	c.App.BaseURL = getEnv("BASE_SHORT_URL", c.App.BaseURL)
	c.App.Mode = getEnv("APP_MODE", c.App.Mode)
	c.Database.Password = getEnv("DB_PASSWORD", c.Database.Password)
	c.Cache.Password = getEnv("REDIS_PASSWORD", c.Cache.Password)
	c.Auth.Secret = getEnv("AUTH_SECRET", c.Auth.Secret)
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
