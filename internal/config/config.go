// Package config 从环境变量（以及可选的 .env 文件）加载服务配置。
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config 服务配置
type Config struct {
	App        AppConfig
	Log        LogConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Cache      CacheConfig
	Migrations MigrationsConfig
	CORS       CORSConfig
	RateLimit  RateLimitConfig
	Catalog    CatalogConfig
}

// AppConfig 应用基础配置
type AppConfig struct {
	Env             string
	Name            string
	Version         string
	Port            int
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

// LogConfig 日志配置
type LogConfig struct {
	Level    string // debug/info/warn/error
	Encoding string // json/console
}

// DatabaseConfig MySQL 配置
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// CacheConfig 缓存配置
type CacheConfig struct {
	Enabled bool
	Type    string // redis/memory
	TTL     time.Duration
}

// MigrationsConfig 数据库迁移配置
type MigrationsConfig struct {
	Dir string
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

// RateLimitConfig 管理端接口限流，每个 Window 补充 Rate 个令牌
type RateLimitConfig struct {
	Enabled bool
	Rate    int
	Burst   int
	Window  time.Duration
}

// CatalogConfig 商品编辑相关配置
type CatalogConfig struct {
	DefaultCurrency          string
	FallbackShortDescription string
	ShortDescriptionLimit    int
	SessionTTL               time.Duration // 编辑会话在缓存中的有效期
	InventoryConcurrency     int           // 并发写入尺码库存的上限
}

// Load 加载配置，.env 不存在时只读取环境变量
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		App: AppConfig{
			Env:             getEnv("APP_ENV", "dev"),
			Name:            getEnv("APP_NAME", "catalog-admin"),
			Version:         getEnv("APP_VERSION", "0.1.0"),
			Port:            getEnvAsInt("APP_PORT", 8080),
			RequestTimeout:  getEnvAsDuration("APP_REQUEST_TIMEOUT", 10*time.Second),
			ShutdownTimeout: getEnvAsDuration("APP_SHUTDOWN_TIMEOUT", 15*time.Second),
		},
		Log: LogConfig{
			Level:    getEnv("LOG_LEVEL", "info"),
			Encoding: getEnv("LOG_ENCODING", "json"),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "127.0.0.1"),
			Port:            getEnvAsInt("DB_PORT", 3306),
			User:            getEnv("DB_USER", "root"),
			Password:        getEnv("DB_PASSWORD", ""),
			DBName:          getEnv("DB_NAME", "catalog_admin"),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "127.0.0.1"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Cache: CacheConfig{
			Enabled: getEnvAsBool("CACHE_ENABLED", true),
			Type:    getEnv("CACHE_TYPE", "redis"),
			TTL:     getEnvAsDuration("CACHE_TTL", 5*time.Minute),
		},
		Migrations: MigrationsConfig{
			Dir: getEnv("MIGRATIONS_DIR", "migrations"),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
			AllowedMethods: getEnvAsSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
			AllowedHeaders: getEnvAsSlice("CORS_ALLOWED_HEADERS", []string{"Content-Type", "Authorization", "X-Request-ID"}),
		},
		RateLimit: RateLimitConfig{
			Enabled: getEnvAsBool("RATE_LIMIT_ENABLED", true),
			Rate:    getEnvAsInt("RATE_LIMIT_RATE", 20),
			Burst:   getEnvAsInt("RATE_LIMIT_BURST", 40),
			Window:  getEnvAsDuration("RATE_LIMIT_WINDOW", time.Second),
		},
		Catalog: CatalogConfig{
			DefaultCurrency:          getEnv("CATALOG_DEFAULT_CURRENCY", "INR"),
			FallbackShortDescription: getEnv("CATALOG_FALLBACK_SHORT_DESCRIPTION", "No description available"),
			ShortDescriptionLimit:    getEnvAsInt("CATALOG_SHORT_DESCRIPTION_LIMIT", 200),
			SessionTTL:               getEnvAsDuration("CATALOG_SESSION_TTL", 24*time.Hour),
			InventoryConcurrency:     getEnvAsInt("CATALOG_INVENTORY_CONCURRENCY", 4),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate 校验配置取值
func (c *Config) Validate() error {
	var errs []error
	if c.App.Port <= 0 || c.App.Port > 65535 {
		errs = append(errs, fmt.Errorf("APP_PORT out of range: %d", c.App.Port))
	}
	if c.App.RequestTimeout <= 0 {
		errs = append(errs, errors.New("APP_REQUEST_TIMEOUT must be positive"))
	}
	switch c.Log.Encoding {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("LOG_ENCODING must be json or console, got %q", c.Log.Encoding))
	}
	if c.Database.DBName == "" {
		errs = append(errs, errors.New("DB_NAME is required"))
	}
	if len(strings.TrimSpace(c.Catalog.DefaultCurrency)) != 3 {
		errs = append(errs, fmt.Errorf("CATALOG_DEFAULT_CURRENCY must be a three-letter code, got %q", c.Catalog.DefaultCurrency))
	}
	if c.Catalog.ShortDescriptionLimit <= 0 {
		errs = append(errs, errors.New("CATALOG_SHORT_DESCRIPTION_LIMIT must be positive"))
	}
	if c.Catalog.SessionTTL <= 0 {
		errs = append(errs, errors.New("CATALOG_SESSION_TTL must be positive"))
	}
	if c.RateLimit.Enabled && (c.RateLimit.Rate <= 0 || c.RateLimit.Burst <= 0 || c.RateLimit.Window <= 0) {
		errs = append(errs, errors.New("RATE_LIMIT_RATE, RATE_LIMIT_BURST and RATE_LIMIT_WINDOW must be positive"))
	}
	if c.Catalog.InventoryConcurrency <= 0 {
		errs = append(errs, errors.New("CATALOG_INVENTORY_CONCURRENCY must be positive"))
	}
	return errors.Join(errs...)
}

// DSN 返回 MySQL 连接串
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=true&loc=Local&multiStatements=true",
		d.User, d.Password, d.Host, d.Port, d.DBName)
}

// Addr 返回 Redis 地址
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return def
}

func getEnvAsInt(key string, def int) int {
	if v, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return v
	}
	return def
}

func getEnvAsBool(key string, def bool) bool {
	if v, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return v
	}
	return def
}

// getEnvAsDuration 支持 "30s" 这类写法，纯数字按秒处理
func getEnvAsDuration(key string, def time.Duration) time.Duration {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	return def
}

func getEnvAsSlice(key string, def []string) []string {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
