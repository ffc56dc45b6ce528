package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 全局配置结构体（完全匹配config.yaml）
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`   // 服务器配置
	Database DatabaseConfig `mapstructure:"database"` // PostgreSQL配置
	IGDB     IGDBConfig     `mapstructure:"igdb"`     // 外部游戏目录（IGDB）配置
	Sync     SyncConfig     `mapstructure:"sync"`     // 同步配置
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port int    `mapstructure:"port"` // 服务端口
	Mode string `mapstructure:"mode"` // Gin运行模式：debug/release/test
}

// DatabaseConfig PostgreSQL数据库配置
type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`               // 连接DSN
	MaxOpenConns    int           `mapstructure:"max_open_conns"`    // 最大打开连接数
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`    // 最大空闲连接数
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"` // 连接最大存活时间
}

// IGDBConfig IGDB目录服务配置
type IGDBConfig struct {
	BaseURL      string `mapstructure:"base_url"`      // 查询接口基础地址
	AuthURL      string `mapstructure:"auth_url"`      // Twitch凭证交换地址
	ClientID     string `mapstructure:"client_id"`     // 客户端ID（敏感，建议走.env）
	ClientSecret string `mapstructure:"client_secret"` // 客户端密钥（敏感，建议走.env）
	Timeout      int    `mapstructure:"timeout"`       // 请求超时（秒）
	Proxy        string `mapstructure:"proxy"`         // 代理地址
	CacheTTL     int    `mapstructure:"cache_ttl"`     // 查询缓存TTL（分钟）
	RefCacheTTL  int    `mapstructure:"ref_cache_ttl"` // 静态参考数据缓存TTL（分钟）
}

// SyncConfig 同步配置
type SyncConfig struct {
	DefaultLimit int `mapstructure:"default_limit"` // 单次同步默认拉取条数
	MaxLimit     int `mapstructure:"max_limit"`     // 单次同步最大拉取条数
}

// LoadConfig 加载配置文件（config/config.yaml），敏感项从 .env 覆盖（不提交 git）
func LoadConfig() (*Config, error) {
	// 1. 加载 .env（若存在），env 中的值会覆盖 config.yaml 中同名字段
	_ = godotenv.Load() // 忽略错误（.env 可不存在）

	// 2. 读取 config.yaml
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	viper.SetTypeByDefaultValue(true)
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	// 3. 敏感字段：用 env 覆盖（优先级 env > yaml）
	overrideFromEnv(&cfg)
	applyDefaults(&cfg)
	return &cfg, nil
}

// overrideFromEnv 用环境变量覆盖敏感配置
func overrideFromEnv(cfg *Config) {
	if v := os.Getenv("IGDB_CLIENT_ID"); v != "" {
		cfg.IGDB.ClientID = v
	}
	if v := os.Getenv("IGDB_CLIENT_SECRET"); v != "" {
		cfg.IGDB.ClientSecret = v
	}
	if v := os.Getenv("IGDB_PROXY"); v != "" {
		cfg.IGDB.Proxy = v
	}
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		cfg.Database.DSN = v
	}
}

// applyDefaults 缺省值兜底（yaml缺项时保证可运行）
func applyDefaults(cfg *Config) {
	if cfg.IGDB.BaseURL == "" {
		cfg.IGDB.BaseURL = "https://api.igdb.com/v4"
	}
	if cfg.IGDB.AuthURL == "" {
		cfg.IGDB.AuthURL = "https://id.twitch.tv/oauth2/token"
	}
	if cfg.IGDB.Timeout <= 0 {
		cfg.IGDB.Timeout = 8 // 同步循环内的上游调用必须有界
	}
	if cfg.IGDB.CacheTTL <= 0 {
		cfg.IGDB.CacheTTL = 5
	}
	if cfg.IGDB.RefCacheTTL <= 0 {
		cfg.IGDB.RefCacheTTL = 720
	}
	if cfg.Sync.DefaultLimit <= 0 {
		cfg.Sync.DefaultLimit = 20
	}
	if cfg.Sync.MaxLimit <= 0 {
		cfg.Sync.MaxLimit = 100
	}
}
