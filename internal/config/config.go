package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the immutable application configuration, loaded once at startup
// and passed explicitly into every component that needs it.
type Config struct {
	Environment string
	HTTP        HTTPConfig
	Database    DatabaseConfig
	Auth        AuthConfig
	Invoice     InvoiceConfig
	Reminder    ReminderConfig
	Scheduler   SchedulerConfig
	SMTP        SMTPConfig
	Company     CompanyConfig
}

type HTTPConfig struct {
	Addr string
}

type DatabaseConfig struct {
	// Driver is "sqlite" or "postgres".
	Driver string
	DSN    string
}

type AuthConfig struct {
	// Secret signs session tokens. Required outside development.
	Secret string
}

type InvoiceConfig struct {
	// NumberPrefix prefixes every allocated invoice number, e.g. "INV".
	NumberPrefix string
}

type ReminderConfig struct {
	DaysAfterDue int
	MaxReminders int
	IntervalDays int
}

// SchedulerConfig controls the in-process sweep/reminder worker inside the
// API server. Deployments that run remindertask from cron leave it disabled.
type SchedulerConfig struct {
	Enabled  bool
	Interval time.Duration
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
}

type CompanyConfig struct {
	Name  string
	Email string
}

// Load reads configuration from the environment. A .env file in the working
// directory is honored when present.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Environment: getEnv("FAKTUR_ENV", "development"),
		HTTP: HTTPConfig{
			Addr: getEnv("FAKTUR_HTTP_ADDR", ":8080"),
		},
		Database: DatabaseConfig{
			Driver: strings.ToLower(getEnv("FAKTUR_DB_DRIVER", "sqlite")),
			DSN:    getEnv("FAKTUR_DB_DSN", "faktur.db"),
		},
		Auth: AuthConfig{
			Secret: getEnv("FAKTUR_AUTH_SECRET", ""),
		},
		Invoice: InvoiceConfig{
			NumberPrefix: getEnv("FAKTUR_INVOICE_PREFIX", "INV"),
		},
		Reminder: ReminderConfig{
			DaysAfterDue: getEnvInt("FAKTUR_REMINDER_DAYS_AFTER_DUE", 1),
			MaxReminders: getEnvInt("FAKTUR_REMINDER_MAX_REMINDERS", 3),
			IntervalDays: getEnvInt("FAKTUR_REMINDER_INTERVAL_DAYS", 3),
		},
		Scheduler: SchedulerConfig{
			Enabled:  getEnvBool("FAKTUR_SCHEDULER_ENABLED", false),
			Interval: getEnvDuration("FAKTUR_SCHEDULER_INTERVAL", time.Hour),
		},
		SMTP: SMTPConfig{
			Host:     getEnv("FAKTUR_SMTP_HOST", ""),
			Port:     getEnvInt("FAKTUR_SMTP_PORT", 587),
			Username: getEnv("FAKTUR_SMTP_USERNAME", ""),
			Password: getEnv("FAKTUR_SMTP_PASSWORD", ""),
		},
		Company: CompanyConfig{
			Name:  getEnv("FAKTUR_COMPANY_NAME", "Your Company"),
			Email: getEnv("FAKTUR_COMPANY_EMAIL", ""),
		},
	}

	return cfg.withDefaults(), nil
}

func (c Config) withDefaults() Config {
	if c.Invoice.NumberPrefix == "" {
		c.Invoice.NumberPrefix = "INV"
	}
	// Production must supply its own secret; startup fails without one.
	if c.Auth.Secret == "" && !c.IsProduction() {
		c.Auth.Secret = "dev-insecure-secret"
	}
	if c.Reminder.DaysAfterDue < 0 {
		c.Reminder.DaysAfterDue = 0
	}
	if c.Reminder.MaxReminders <= 0 {
		c.Reminder.MaxReminders = 3
	}
	if c.Reminder.IntervalDays <= 0 {
		c.Reminder.IntervalDays = 3
	}
	if c.Scheduler.Interval <= 0 {
		c.Scheduler.Interval = time.Hour
	}
	return c
}

// MailConfigured reports whether the reminder batch has enough configuration
// to attempt any send.
func (c Config) MailConfigured() bool {
	return c.SMTP.Host != "" && c.Company.Email != ""
}

func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return value
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return value
}

func getEnvInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
