package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration loaded from environment.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Store    StoreConfig
	Email    EmailConfig
	Event    EventConfig
	Assets   AssetConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port               string
	ReadTimeout        int
	WriteTimeout       int
	CORSAllowedOrigins string // comma-separated, or "*" for all
}

// DatabaseConfig holds PostgreSQL connection settings (postgres store backend).
type DatabaseConfig struct {
	URL      string // if set, used as-is
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig holds Redis connection settings for the resend job queue and
// the optional newsletter membership cache.
type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
}

// StoreConfig selects and configures the attendee row store backend.
type StoreConfig struct {
	Backend         string // "postgres", "sheets" or "memory"
	SpreadsheetID   string // sheets backend
	CredentialsFile string // sheets backend; service account JSON
	CallTimeout     time.Duration
}

// EmailConfig holds SMTP transport settings and fixed addresses.
type EmailConfig struct {
	SMTPHost          string
	SMTPPort          int
	SMTPUser          string
	SMTPPass          string
	FromAddress       string
	FromName          string
	ReplyTo           string
	NotificationEmail string // admin recipient for new-registration notices
	SystemName        string // display name on admin notices
}

// EventConfig holds the fixed metadata of the single event this deployment
// serves. Date/Time/Location are display strings rendered verbatim into
// email and API responses; StartUTC/EndUTC drive calendar export.
type EventConfig struct {
	Name        string
	Date        string
	Time        string
	Location    string
	Address     string
	Description string
	StartUTC    time.Time
	EndUTC      time.Time
	ContactTel  string
}

// AssetConfig holds image URLs embedded in outgoing email.
type AssetConfig struct {
	LogoURL       string
	BackgroundURL string
	BannerURL     string
	VenueURL      string
}

// DSN returns the PostgreSQL connection string.
// If DatabaseConfig.URL is set (DATABASE_URL env), it is used as-is.
func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

// Load reads configuration from environment, with optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	readTimeout, _ := strconv.Atoi(getEnv("READ_TIMEOUT_SEC", "30"))
	writeTimeout, _ := strconv.Atoi(getEnv("WRITE_TIMEOUT_SEC", "30"))
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))

	start, err := parseEventTime(getEnv("EVENT_START_UTC", "2025-09-07T07:00:00Z"))
	if err != nil {
		return nil, fmt.Errorf("EVENT_START_UTC: %w", err)
	}
	end, err := parseEventTime(getEnv("EVENT_END_UTC", "2025-09-07T08:30:00Z"))
	if err != nil {
		return nil, fmt.Errorf("EVENT_END_UTC: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:               getEnv("PORT", "8080"),
			ReadTimeout:        readTimeout,
			WriteTimeout:       writeTimeout,
			CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),
		},
		Database: DatabaseConfig{
			URL:      getEnv("DATABASE_URL", ""),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "event"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Enabled:  getEnv("REDIS_ENABLED", "true") == "true",
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Store: StoreConfig{
			Backend:         getEnv("STORE_BACKEND", "postgres"),
			SpreadsheetID:   getEnv("SHEETS_SPREADSHEET_ID", ""),
			CredentialsFile: getEnv("SHEETS_CREDENTIALS_FILE", ""),
			CallTimeout:     time.Duration(getEnvInt("STORE_CALL_TIMEOUT_SEC", 10)) * time.Second,
		},
		Email: EmailConfig{
			SMTPHost:          getEnv("SMTP_HOST", ""),
			SMTPPort:          getEnvInt("SMTP_PORT", 587),
			SMTPUser:          getEnv("SMTP_USER", ""),
			SMTPPass:          getEnv("SMTP_PASS", ""),
			FromAddress:       getEnv("EMAIL_FROM_ADDRESS", "dexabrain@gmail.com"),
			FromName:          getEnv("EMAIL_FROM_NAME", "Dexabrain Team"),
			ReplyTo:           getEnv("EMAIL_REPLY_TO", "info@dexabrain.com"),
			NotificationEmail: getEnv("EMAIL_NOTIFICATION_ADDRESS", "dexabrain@gmail.com"),
			SystemName:        getEnv("EMAIL_SYSTEM_NAME", "Dexabrain Registration System"),
		},
		Event: EventConfig{
			Name:        getEnv("EVENT_NAME", "Neuro Reset Awareness Seminar"),
			Date:        getEnv("EVENT_DATE", "September 7, 2025"),
			Time:        getEnv("EVENT_TIME", "3:00 PM - 4:30 PM (SGT)"),
			Location:    getEnv("EVENT_LOCATION", "West Forum, Trehaus @ Funan #07-21"),
			Address:     getEnv("EVENT_ADDRESS", "109 North Bridge Road, Singapore 179097"),
			Description: getEnv("EVENT_DESCRIPTION", "Neuro Reset Awareness Seminar featuring Prof Andy Hsu & Dr Diana Chan"),
			StartUTC:    start,
			EndUTC:      end,
			ContactTel:  getEnv("EVENT_CONTACT_TEL", "+65 1234 5678"),
		},
		Assets: AssetConfig{
			LogoURL:       getEnv("ASSET_LOGO_URL", ""),
			BackgroundURL: getEnv("ASSET_BACKGROUND_URL", ""),
			BannerURL:     getEnv("ASSET_BANNER_URL", ""),
			VenueURL:      getEnv("ASSET_VENUE_URL", ""),
		},
	}
	return cfg, nil
}

func parseEventTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, strings.TrimSpace(s))
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
