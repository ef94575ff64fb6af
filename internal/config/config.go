// Package config загрузка конфигурации сервиса из TOML-файла
package config

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/staypoint/STP-ReservationService/internal/domain"
)

// Config конфигурация сервиса
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Logs     LogsConfig     `toml:"logs"`
	Metrics  MetricsConfig  `toml:"metrics"`
	Stripe   StripeConfig   `toml:"stripe"`
	Catalog  CatalogConfig  `toml:"catalog"`
	Notifier NotifierConfig `toml:"notifier"`
	Booking  BookingConfig  `toml:"booking"`
}

// ServerConfig настройки HTTP-сервера
type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`     // Секунды
	WriteTimeout    int `toml:"write_timeout"`    // Секунды
	IdleTimeout     int `toml:"idle_timeout"`     // Секунды
	ShutdownTimeout int `toml:"shutdown_timeout"` // Секунды
}

// DatabaseConfig настройки подключения к PostgreSQL
type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"` // Секунды
}

// DSN возвращает строку подключения к базе
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// LogsConfig настройки логирования
type LogsConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

// MetricsConfig настройки Prometheus-метрик
type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	ServiceName string `toml:"service_name"`
	Path        string `toml:"path"`
}

// StripeConfig настройки платёжного шлюза
type StripeConfig struct {
	SecretKey     string `toml:"secret_key"`
	WebhookSecret string `toml:"webhook_secret"`
	SuccessURL    string `toml:"success_url"`
	CancelURL     string `toml:"cancel_url"`
}

// CatalogConfig настройки клиента каталога объектов
type CatalogConfig struct {
	URL     string `toml:"url"`
	Timeout int    `toml:"timeout"` // Секунды
}

// NotifierConfig настройки клиента сервиса уведомлений
type NotifierConfig struct {
	URL     string `toml:"url"`
	Timeout int    `toml:"timeout"` // Секунды
}

// BookingConfig параметры жизненного цикла бронирований
type BookingConfig struct {
	PendingTTLMinutes  int `toml:"pending_ttl_minutes"`  // Окно оплаты pending-брони
	SweepIntervalSec   int `toml:"sweep_interval_sec"`   // Период фонового свипа
	MaxWebhookAttempts int `toml:"max_webhook_attempts"` // Лимит ретраев неразрешённых событий
}

// Load читает конфигурацию из TOML-файла и заполняет дефолты
func Load(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("decode config file %s: %w", path, err)
	}

	if cfg.Booking.PendingTTLMinutes <= 0 {
		cfg.Booking.PendingTTLMinutes = domain.DefaultPendingTTLMinutes
	}
	if cfg.Booking.SweepIntervalSec <= 0 {
		cfg.Booking.SweepIntervalSec = domain.DefaultSweepIntervalSec
	}
	if cfg.Booking.MaxWebhookAttempts <= 0 {
		cfg.Booking.MaxWebhookAttempts = domain.DefaultMaxWebhookAttempts
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// validate проверяет обязательные поля
func (c *Config) validate() error {
	if c.Server.HTTPPort <= 0 {
		return fmt.Errorf("config: server.http_port is required")
	}
	if c.Database.Host == "" || c.Database.DBName == "" {
		return fmt.Errorf("config: database.host and database.dbname are required")
	}
	if c.Stripe.SecretKey == "" || c.Stripe.WebhookSecret == "" {
		return fmt.Errorf("config: stripe.secret_key and stripe.webhook_secret are required")
	}
	if c.Catalog.URL == "" {
		return fmt.Errorf("config: catalog.url is required")
	}
	return nil
}
