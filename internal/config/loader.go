package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/rpattn/influencer-api/internal/analysis"
	"github.com/rpattn/influencer-api/internal/db"
	"github.com/rpattn/influencer-api/internal/domain"
	"github.com/rpattn/influencer-api/internal/logging"
	"github.com/rpattn/influencer-api/internal/repository"
)

// EnvPrefix namespaces every non-database environment override,
// e.g. INFLUENCER_SERVER_ADDR or INFLUENCER_PAGINATION_MAX_LIMIT.
const EnvPrefix = "INFLUENCER"

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Addr           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	AllowedOrigins []string
}

// PaginationConfig bounds listing windows.
type PaginationConfig struct {
	DefaultLimit  int
	MaxLimit      int
	ExportMaxRows int
}

// Limits converts the config into parsing limits.
func (p PaginationConfig) Limits() domain.PageLimits {
	return domain.PageLimits{DefaultLimit: p.DefaultLimit, MaxLimit: p.MaxLimit}
}

// AnalysisConfig selects the analysis column and the per-endpoint raw policy.
type AnalysisConfig struct {
	Field          string
	DetailParseRaw bool
	ListParseRaw   bool
}

// Config is the full service configuration.
type Config struct {
	Server     ServerConfig
	Database   db.Config
	Dataset    repository.Dataset
	Pagination PaginationConfig
	Analysis   AnalysisConfig
	Log        logging.Options

	// File is the config file that was read, or "" when only defaults and env applied.
	File string
}

func setDefaults(v *viper.Viper) {
	dbDefaults := db.DefaultConfig()
	dataset := repository.DefaultDataset()

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.allowed_origins", []string{})

	v.SetDefault("database.host", dbDefaults.Host)
	v.SetDefault("database.port", dbDefaults.Port)
	v.SetDefault("database.user", dbDefaults.User)
	v.SetDefault("database.password", dbDefaults.Password)
	v.SetDefault("database.dbname", dbDefaults.DBName)
	v.SetDefault("database.sslmode", dbDefaults.SSLMode)
	v.SetDefault("database.max_conns", dbDefaults.MaxConns)
	v.SetDefault("database.min_conns", dbDefaults.MinConns)
	v.SetDefault("database.query_timeout", dbDefaults.QueryTimeout)

	v.SetDefault("dataset.schema", dataset.Schema)
	v.SetDefault("dataset.profile_table", dataset.ProfileTable)
	v.SetDefault("dataset.listing_view", dataset.ListingView)
	v.SetDefault("dataset.summary_columns", dataset.SummaryColumns)
	v.SetDefault("dataset.listing_columns", dataset.ListingColumns)
	v.SetDefault("dataset.search_columns", dataset.SearchColumns)

	v.SetDefault("pagination.default_limit", domain.DefaultPageLimit)
	v.SetDefault("pagination.max_limit", domain.DefaultMaxPageLimit)
	v.SetDefault("pagination.export_max_rows", 1000)

	v.SetDefault("analysis.field", analysis.DefaultField)
	v.SetDefault("analysis.detail_parse_raw", false)
	v.SetDefault("analysis.list_parse_raw", true)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Load reads <configPath>/.env and <configPath>/config.yaml, both optional, and
// applies environment overrides. Database keys use the deployment's plain
// DB_HOST, DB_PORT, DB_USER, DB_PASSWORD, DB_NAME and DB_SSLMODE variables.
func Load(configPath string) (Config, error) {
	if err := godotenv.Load(filepath.Join(configPath, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Map nested keys to the flat env vars
	for key, env := range map[string]string{
		"database.host":     "DB_HOST",
		"database.port":     "DB_PORT",
		"database.user":     "DB_USER",
		"database.password": "DB_PASSWORD",
		"database.dbname":   "DB_NAME",
		"database.sslmode":  "DB_SSLMODE",
	} {
		if err := v.BindEnv(key, env); err != nil {
			return Config{}, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	var cfg Config
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
	} else {
		cfg.File = v.ConfigFileUsed()
	}

	cfg.Server = ServerConfig{
		Addr:           v.GetString("server.addr"),
		ReadTimeout:    v.GetDuration("server.read_timeout"),
		WriteTimeout:   v.GetDuration("server.write_timeout"),
		IdleTimeout:    v.GetDuration("server.idle_timeout"),
		AllowedOrigins: stringList(v.Get("server.allowed_origins")),
	}
	cfg.Database = db.Config{
		Host:         v.GetString("database.host"),
		Port:         v.GetInt("database.port"),
		User:         v.GetString("database.user"),
		Password:     v.GetString("database.password"),
		DBName:       v.GetString("database.dbname"),
		SSLMode:      v.GetString("database.sslmode"),
		MaxConns:     v.GetInt32("database.max_conns"),
		MinConns:     v.GetInt32("database.min_conns"),
		QueryTimeout: v.GetDuration("database.query_timeout"),
	}
	cfg.Dataset = repository.Dataset{
		Schema:         v.GetString("dataset.schema"),
		ProfileTable:   v.GetString("dataset.profile_table"),
		ListingView:    v.GetString("dataset.listing_view"),
		SummaryColumns: stringList(v.Get("dataset.summary_columns")),
		ListingColumns: stringList(v.Get("dataset.listing_columns")),
		SearchColumns:  stringList(v.Get("dataset.search_columns")),
	}
	cfg.Pagination = PaginationConfig{
		DefaultLimit:  v.GetInt("pagination.default_limit"),
		MaxLimit:      v.GetInt("pagination.max_limit"),
		ExportMaxRows: v.GetInt("pagination.export_max_rows"),
	}
	cfg.Analysis = AnalysisConfig{
		Field:          v.GetString("analysis.field"),
		DetailParseRaw: v.GetBool("analysis.detail_parse_raw"),
		ListParseRaw:   v.GetBool("analysis.list_parse_raw"),
	}
	cfg.Log = logging.Options{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot run with.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Server.Addr) == "" {
		return fmt.Errorf("server.addr must not be empty")
	}
	if c.Database.Port <= 0 || c.Database.Port > 65535 {
		return fmt.Errorf("database.port %d out of range", c.Database.Port)
	}
	if c.Pagination.DefaultLimit <= 0 || c.Pagination.MaxLimit <= 0 {
		return fmt.Errorf("pagination limits must be positive")
	}
	if c.Pagination.DefaultLimit > c.Pagination.MaxLimit {
		return fmt.Errorf("pagination.default_limit %d exceeds max_limit %d", c.Pagination.DefaultLimit, c.Pagination.MaxLimit)
	}
	return nil
}

// stringList accepts a YAML list or a comma separated env value.
func stringList(raw any) []string {
	var parts []string
	switch v := raw.(type) {
	case nil:
		return nil
	case string:
		parts = strings.Split(v, ",")
	case []string:
		parts = v
	case []any:
		for _, item := range v {
			parts = append(parts, fmt.Sprint(item))
		}
	default:
		parts = []string{fmt.Sprint(v)}
	}

	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
