// Package config loads typed service configuration from environment
// variables with local-development defaults.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	App      AppConfig
	Server   ServerConfig
	Database DatabaseConfig
	SMTP     SMTPConfig
	Log      LogConfig
	Booking  BookingConfig
}

type AppConfig struct {
	Name        string
	Environment string
}

type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxConns        int32
	MinConns        int32
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// DSN builds a libpq-compatible connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

// SMTPConfig configures the confirmation-email sink. When Host is empty
// the service falls back to a log-only notifier.
type SMTPConfig struct {
	Host        string
	Port        int
	User        string
	Password    string
	From        string
	SendTimeout time.Duration
}

func (s SMTPConfig) Enabled() bool {
	return s.Host != ""
}

func (s SMTPConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type LogConfig struct {
	Level  string
	Format string // json or console
}

// BookingConfig carries scheduling parameters. Business hours are
// advisory: reservations outside the window succeed with a warning.
type BookingConfig struct {
	Timezone           string
	BusinessHoursStart string
	BusinessHoursEnd   string
}

// Load reads the full configuration from the environment.
func Load() Config {
	return Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "turnos"),
			Environment: getEnv("APP_ENV", "development"),
		},
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", ""),
			Port:            getEnvInt("SERVER_PORT", 8080),
			ReadTimeout:     getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:     getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvInt("DB_PORT", 5432),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "postgres"),
			Name:            getEnv("DB_NAME", "turnos"),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			MaxConns:        int32(getEnvInt("DB_MAX_CONNS", 20)),
			MinConns:        int32(getEnvInt("DB_MIN_CONNS", 2)),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			ConnMaxIdleTime: getEnvDuration("DB_CONN_MAX_IDLE_TIME", 5*time.Minute),
		},
		SMTP: SMTPConfig{
			Host:        getEnv("SMTP_HOST", ""),
			Port:        getEnvInt("SMTP_PORT", 587),
			User:        getEnv("SMTP_USER", ""),
			Password:    getEnv("SMTP_PASSWORD", ""),
			From:        getEnv("SMTP_FROM", "turnos@example.com"),
			SendTimeout: getEnvDuration("SMTP_SEND_TIMEOUT", 10*time.Second),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "console"),
		},
		Booking: BookingConfig{
			Timezone:           getEnv("BOOKING_TIMEZONE", "UTC"),
			BusinessHoursStart: getEnv("BUSINESS_HOURS_START", "09:00"),
			BusinessHoursEnd:   getEnv("BUSINESS_HOURS_END", "18:00"),
		},
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
