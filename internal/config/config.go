package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"
)

// Типы хранилища фото документов.
const (
	StorageLocal    = "local"
	StorageFirebase = "firebase"
)

// Значения по умолчанию.
const (
	DefaultRunAddress             = "localhost:8080"
	DefaultJWTSecret              = "default-secret-change-in-production"
	DefaultTokenExpiration        = 30 * 24 * time.Hour
	DefaultUploadDir              = "uploads"
	DefaultUploadBaseURL          = "/uploads"
	DefaultCatalogRefreshInterval = 10 * time.Minute
	DefaultDraftRetention         = 14 * 24 * time.Hour
	DefaultDraftCleanupSchedule   = "@daily"
	DefaultWizardIdleTimeout      = 30 * time.Minute
)

// Config содержит конфигурацию приложения.
type Config struct {
	RunAddress  string
	DatabaseURI string

	AirtableAPIURL       string
	AirtableBaseID       string
	AirtableToken        string
	AirtableCarsTable    string
	AirtableOrdersTable  string
	AirtableContactTable string

	JWTSecret       string
	TokenExpiration time.Duration

	PricingConfig string

	StorageType         string
	UploadDir           string
	UploadBaseURL       string
	FirebaseBucket      string
	FirebaseCredentials string

	SendgridAPIKey string
	MailFrom       string

	CatalogRefreshInterval time.Duration
	DraftRetention         time.Duration
	DraftCleanupSchedule   string
	WizardIdleTimeout      time.Duration

	LogLevel  string
	LogFormat string
}

// Load загружает конфигурацию из флагов командной строки и переменных окружения.
// Приоритет: переменные окружения > флаги > значения по умолчанию.
func Load() *Config {
	cfg := &Config{}

	flag.StringVar(&cfg.RunAddress, "a", DefaultRunAddress, "адрес и порт запуска сервиса")
	flag.StringVar(&cfg.DatabaseURI, "d", "", "строка подключения к PostgreSQL для черновиков")
	flag.StringVar(&cfg.AirtableAPIURL, "r", "", "адрес API Airtable")
	flag.DurationVar(&cfg.TokenExpiration, "t", DefaultTokenExpiration, "время жизни токена сессии")
	flag.StringVar(&cfg.PricingConfig, "p", "", "YAML-файл с тарифами")
	flag.StringVar(&cfg.StorageType, "s", StorageLocal, "хранилище фото документов: local или firebase")
	flag.Parse()

	envString("RUN_ADDRESS", &cfg.RunAddress)
	envString("DATABASE_URI", &cfg.DatabaseURI)

	envString("AIRTABLE_API_URL", &cfg.AirtableAPIURL)
	envString("AIRTABLE_BASE_ID", &cfg.AirtableBaseID)
	envString("AIRTABLE_TOKEN", &cfg.AirtableToken)
	envString("AIRTABLE_CARS_TABLE", &cfg.AirtableCarsTable)
	envString("AIRTABLE_ORDERS_TABLE", &cfg.AirtableOrdersTable)
	envString("AIRTABLE_CONTACT_TABLE", &cfg.AirtableContactTable)

	// JWT секрет
	cfg.JWTSecret = DefaultJWTSecret
	envString("JWT_SECRET", &cfg.JWTSecret)
	envDuration("TOKEN_EXPIRATION", &cfg.TokenExpiration)

	envString("PRICING_CONFIG", &cfg.PricingConfig)

	// Хранилище документов
	cfg.UploadDir = DefaultUploadDir
	cfg.UploadBaseURL = DefaultUploadBaseURL
	envString("STORAGE_TYPE", &cfg.StorageType)
	envString("UPLOAD_DIR", &cfg.UploadDir)
	envString("UPLOAD_BASE_URL", &cfg.UploadBaseURL)
	envString("FIREBASE_BUCKET", &cfg.FirebaseBucket)
	envString("FIREBASE_CREDENTIALS", &cfg.FirebaseCredentials)

	envString("SENDGRID_API_KEY", &cfg.SendgridAPIKey)
	envString("MAIL_FROM", &cfg.MailFrom)

	// Фоновые задачи
	cfg.CatalogRefreshInterval = DefaultCatalogRefreshInterval
	cfg.DraftRetention = DefaultDraftRetention
	cfg.DraftCleanupSchedule = DefaultDraftCleanupSchedule
	envDuration("CATALOG_REFRESH_INTERVAL", &cfg.CatalogRefreshInterval)
	envDuration("DRAFT_RETENTION", &cfg.DraftRetention)
	envString("DRAFT_CLEANUP_SCHEDULE", &cfg.DraftCleanupSchedule)
	cfg.WizardIdleTimeout = DefaultWizardIdleTimeout
	envDuration("WIZARD_IDLE_TIMEOUT", &cfg.WizardIdleTimeout)

	cfg.LogLevel = "info"
	cfg.LogFormat = "text"
	envString("LOG_LEVEL", &cfg.LogLevel)
	envString("LOG_FORMAT", &cfg.LogFormat)

	return cfg
}

// Validate проверяет согласованность настроек.
func (c *Config) Validate() error {
	var errs []error

	switch c.StorageType {
	case StorageLocal:
		if c.UploadDir == "" {
			errs = append(errs, errors.New("UPLOAD_DIR is required for local storage"))
		}
	case StorageFirebase:
		if c.FirebaseBucket == "" {
			errs = append(errs, errors.New("FIREBASE_BUCKET is required for firebase storage"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORAGE_TYPE %q", c.StorageType))
	}

	if c.TokenExpiration <= 0 {
		errs = append(errs, errors.New("TOKEN_EXPIRATION must be positive"))
	}
	if c.CatalogRefreshInterval <= 0 {
		errs = append(errs, errors.New("CATALOG_REFRESH_INTERVAL must be positive"))
	}
	if c.DraftRetention <= 0 {
		errs = append(errs, errors.New("DRAFT_RETENTION must be positive"))
	}
	if c.WizardIdleTimeout <= 0 {
		errs = append(errs, errors.New("WIZARD_IDLE_TIMEOUT must be positive"))
	}
	if c.SendgridAPIKey != "" && c.MailFrom == "" {
		errs = append(errs, errors.New("MAIL_FROM is required when SENDGRID_API_KEY is set"))
	}

	return errors.Join(errs...)
}

// envString переопределяет значение непустой переменной окружения.
func envString(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// envDuration переопределяет значение, если переменная окружения разбирается как длительность.
func envDuration(key string, dst *time.Duration) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
