package config

import (
	"errors"
	"io/fs"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	DB        DBConfig
	Redis     RedisConfig
	Analytics AnalyticsConfig
	Admin     AdminConfig
	Affiliate AffiliateConfig
	Upload    UploadConfig
	RateLimit RateLimitConfig
}

type AppConfig struct {
	Port      string
	PublicURL string
}

type DBConfig struct {
	Host        string
	Port        string
	User        string
	Password    string
	Name        string
	AutoMigrate bool
}

// Configured сообщает, задано ли подключение к хранилищу.
// Без него сервис работает на демо-данных.
func (c DBConfig) Configured() bool {
	return c.Host != "" && c.Name != ""
}

type RedisConfig struct {
	Host string
	Port string
}

func (c RedisConfig) Configured() bool {
	return c.Host != ""
}

// Драйверы доставки событий аналитики
const (
	AnalyticsDriverNone       = "none"
	AnalyticsDriverRedis      = "redis"
	AnalyticsDriverClickHouse = "clickhouse"
)

type AnalyticsConfig struct {
	Driver     string
	Stream     string
	ClickHouse ClickHouseConfig
}

type ClickHouseConfig struct {
	Host     string
	Port     string
	Database string
	Username string
	Password string
}

type AdminConfig struct {
	JWTSecret string
	// DevBypass разрешает все админские операции, но только когда хранилище не настроено
	DevBypass bool
}

type AffiliateConfig struct {
	AllowedDomains []string
}

type UploadConfig struct {
	Dir     string
	BaseURL string
}

func (c UploadConfig) Configured() bool {
	return c.Dir != "" && c.BaseURL != ""
}

type RateLimitConfig struct {
	RequestsPerSecond float64
	BurstSize         int
}

func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	// .env не обязателен, переменные окружения читаются всегда
	if err := viper.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	var cfg Config
	cfg.App.Port = viper.GetString("APP_PORT")
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	cfg.App.PublicURL = strings.TrimRight(viper.GetString("APP_PUBLIC_URL"), "/")
	if cfg.App.PublicURL == "" {
		cfg.App.PublicURL = "http://localhost:" + cfg.App.Port
	}

	cfg.DB.Host = viper.GetString("DB_HOST")
	cfg.DB.Port = viper.GetString("DB_PORT")
	if cfg.DB.Port == "" {
		cfg.DB.Port = "5432"
	}
	cfg.DB.User = viper.GetString("DB_USER")
	cfg.DB.Password = viper.GetString("DB_PASSWORD")
	cfg.DB.Name = viper.GetString("DB_NAME")
	cfg.DB.AutoMigrate = viper.GetBool("DB_AUTO_MIGRATE")

	cfg.Redis.Host = viper.GetString("REDIS_HOST")
	cfg.Redis.Port = viper.GetString("REDIS_PORT")
	if cfg.Redis.Port == "" {
		cfg.Redis.Port = "6379"
	}

	cfg.Analytics.Driver = normalizeDriver(viper.GetString("ANALYTICS_DRIVER"))
	cfg.Analytics.Stream = viper.GetString("ANALYTICS_STREAM")
	if cfg.Analytics.Stream == "" {
		cfg.Analytics.Stream = "storefront:events"
	}
	cfg.Analytics.ClickHouse = ClickHouseConfig{
		Host:     viper.GetString("CLICKHOUSE_HOST"),
		Port:     viper.GetString("CLICKHOUSE_PORT"),
		Database: viper.GetString("CLICKHOUSE_DB"),
		Username: viper.GetString("CLICKHOUSE_USER"),
		Password: viper.GetString("CLICKHOUSE_PASSWORD"),
	}

	cfg.Admin.JWTSecret = viper.GetString("ADMIN_JWT_SECRET")
	cfg.Admin.DevBypass = viper.GetBool("ADMIN_DEV_BYPASS")

	// Format: amazon.co.jp,amzn.to
	cfg.Affiliate.AllowedDomains = parseList(viper.GetString("AFFILIATE_ALLOWED_DOMAINS"))
	if len(cfg.Affiliate.AllowedDomains) == 0 {
		cfg.Affiliate.AllowedDomains = []string{"amazon.co.jp"}
	}

	cfg.Upload.Dir = viper.GetString("UPLOAD_DIR")
	cfg.Upload.BaseURL = strings.TrimRight(viper.GetString("UPLOAD_BASE_URL"), "/")

	// Rate limit config
	cfg.RateLimit.RequestsPerSecond = viper.GetFloat64("RATE_LIMIT_RPS")
	if cfg.RateLimit.RequestsPerSecond == 0 {
		cfg.RateLimit.RequestsPerSecond = 10
	}
	cfg.RateLimit.BurstSize = viper.GetInt("RATE_LIMIT_BURST")
	if cfg.RateLimit.BurstSize == 0 {
		cfg.RateLimit.BurstSize = 20
	}

	return &cfg, nil
}

// parseList разбирает список через запятую, пустые элементы отбрасываются
func parseList(raw string) []string {
	var items []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part != "" {
			items = append(items, part)
		}
	}
	return items
}

func normalizeDriver(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case AnalyticsDriverRedis:
		return AnalyticsDriverRedis
	case AnalyticsDriverClickHouse:
		return AnalyticsDriverClickHouse
	default:
		return AnalyticsDriverNone
	}
}
