package config

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/m04kA/agenda-core/internal/domain"
)

// Config конфигурация сервиса
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Booking  BookingConfig  `toml:"booking"`
	Sweeper  SweeperConfig  `toml:"sweeper"`
	Redis    RedisConfig    `toml:"redis"`
	Payments PaymentsConfig `toml:"payments"`
	Logs     LogsConfig     `toml:"logs"`
	Metrics  MetricsConfig  `toml:"metrics"`
}

// ServerConfig настройки HTTP сервера
type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`     // секунды
	WriteTimeout    int `toml:"write_timeout"`    // секунды
	IdleTimeout     int `toml:"idle_timeout"`     // секунды
	ShutdownTimeout int `toml:"shutdown_timeout"` // секунды
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
	ConnMaxLifetime int    `toml:"conn_max_lifetime"` // секунды
}

// DSN возвращает строку подключения к базе данных
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// BookingConfig бизнес-настройки бронирования
type BookingConfig struct {
	Mode                string `toml:"mode"` // libre | prepago | pago_post_aprobacion
	SlotCadenceMinutes  int    `toml:"slot_cadence_minutes"`
	HoldDurationMinutes int    `toml:"hold_duration_minutes"`
	MinNoticeMinutes    int    `toml:"min_notice_minutes"`
	Timezone            string `toml:"timezone"`
}

// SweeperConfig настройки фоновой очистки истекших hold'ов
type SweeperConfig struct {
	Enabled         bool `toml:"enabled"`
	IntervalSeconds int  `toml:"interval_seconds"`
}

// RedisConfig настройки Redis для событий и платежных сессий
type RedisConfig struct {
	Enabled  bool   `toml:"enabled"`
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// PaymentsConfig настройки платежного шлюза
type PaymentsConfig struct {
	Enabled           bool   `toml:"enabled"`
	StripeSecretKey   string `toml:"stripe_secret_key"`
	Currency          string `toml:"currency"`
	SuccessURL        string `toml:"success_url"`
	CancelURL         string `toml:"cancel_url"`
	SessionTTLMinutes int    `toml:"session_ttl_minutes"`
}

// LogsConfig настройки логирования
type LogsConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

// MetricsConfig настройки Prometheus метрик
type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

// Load загружает конфигурацию из TOML файла
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config file %s: %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:        8080,
			ReadTimeout:     15,
			WriteTimeout:    15,
			IdleTimeout:     60,
			ShutdownTimeout: 10,
		},
		Database: DatabaseConfig{
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 300,
		},
		Booking: BookingConfig{
			Mode:                string(domain.ModeLibre),
			SlotCadenceMinutes:  domain.DefaultSlotCadenceMinutes,
			HoldDurationMinutes: domain.DefaultHoldDurationMinutes,
			MinNoticeMinutes:    domain.DefaultMinNoticeMinutes,
			Timezone:            "UTC",
		},
		Sweeper: SweeperConfig{
			Enabled:         true,
			IntervalSeconds: 60,
		},
		Payments: PaymentsConfig{
			Currency:          "eur",
			SessionTTLMinutes: 60,
		},
		Logs: LogsConfig{
			File:  "logs/agenda-core.log",
			Level: "info",
		},
		Metrics: MetricsConfig{
			Path:        "/metrics",
			ServiceName: "agenda-core",
		},
	}
}

func (c *Config) validate() error {
	if !domain.BookingMode(c.Booking.Mode).Valid() {
		return fmt.Errorf("invalid booking mode %q", c.Booking.Mode)
	}
	if c.Booking.SlotCadenceMinutes < domain.MinSlotCadenceMinutes ||
		c.Booking.SlotCadenceMinutes > domain.MaxSlotCadenceMinutes {
		return fmt.Errorf("slot_cadence_minutes must be %d..%d",
			domain.MinSlotCadenceMinutes, domain.MaxSlotCadenceMinutes)
	}
	if c.Booking.HoldDurationMinutes <= 0 {
		return fmt.Errorf("hold_duration_minutes must be positive")
	}
	if c.Booking.MinNoticeMinutes < 0 {
		return fmt.Errorf("min_notice_minutes must not be negative")
	}
	if domain.BookingMode(c.Booking.Mode) == domain.ModePrepago && !c.Payments.Enabled {
		return fmt.Errorf("prepago mode requires payments to be enabled")
	}
	if c.Payments.Enabled && !c.Redis.Enabled {
		return fmt.Errorf("payments require redis for session mapping")
	}
	return nil
}
