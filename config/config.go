package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Source kinds understood by main.
const (
	SourceSheets = "sheets"
	SourceXLSX   = "xlsx"
	SourceCSV    = "csv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	SourceKind      string   `envconfig:"SOURCE" default:"sheets"`
	SpreadsheetID   string   `envconfig:"SPREADSHEET_ID"`
	SourcePath      string   `envconfig:"SOURCE_PATH"`
	WorksheetNames  []string `envconfig:"WORKSHEETS" default:"Leads_Todos_Imoveis,Leads_Lancamentos,Sheet1"`
	CredentialsFile string   `envconfig:"CREDENTIALS_FILE"`
	CredentialsJSON string   `envconfig:"CREDENTIALS_JSON"`

	Timezone     string        `envconfig:"TIMEZONE" default:"America/Sao_Paulo"`
	CacheTTL     time.Duration `envconfig:"CACHE_TTL" default:"5m"`
	FetchTimeout time.Duration `envconfig:"FETCH_TIMEOUT" default:"30s"`
	MaxRetries   int           `envconfig:"MAX_RETRIES" default:"3"`

	HTTPAddr  string `envconfig:"HTTP_ADDR" default:":8080"`
	ExportDir string `envconfig:"EXPORT_DIR" default:"./output"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`

	PostgresHost     string `envconfig:"POSTGRES_HOST"`
	PostgresPort     string `envconfig:"POSTGRES_PORT" default:"5432"`
	PostgresUser     string `envconfig:"POSTGRES_USER" default:"leads"`
	PostgresPassword string `envconfig:"POSTGRES_PASSWORD"`
	PostgresDB       string `envconfig:"POSTGRES_DB" default:"leads_db"`
	PostgresSSLMode  string `envconfig:"POSTGRES_SSLMODE" default:"disable"`
}

// Load reads the .env file and returns a populated Config struct.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	cfg := &Config{}
	if err := envconfig.Process("LEADS", cfg); err != nil {
		return nil, fmt.Errorf("config: process env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.SourceKind {
	case SourceSheets:
		if c.SpreadsheetID == "" {
			return fmt.Errorf("config: LEADS_SPREADSHEET_ID is required for source %q", c.SourceKind)
		}
	case SourceXLSX, SourceCSV:
		if c.SourcePath == "" {
			return fmt.Errorf("config: LEADS_SOURCE_PATH is required for source %q", c.SourceKind)
		}
	default:
		return fmt.Errorf("config: unknown source %q", c.SourceKind)
	}
	if len(c.WorksheetNames) == 0 {
		return fmt.Errorf("config: at least one worksheet name is required")
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("config: cache ttl must not be negative")
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("config: timezone %q: %w", c.Timezone, err)
	}
	return nil
}

// Location returns the time zone used to parse and bucket lead timestamps.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// ArchiveEnabled reports whether a PostgreSQL archive is configured.
func (c *Config) ArchiveEnabled() bool {
	return c.PostgresHost != ""
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}
