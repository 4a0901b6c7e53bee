package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	EngineConfig   EngineConfig   `json:"engine"`
	TelegramConfig TelegramConfig `json:"telegram"`
	StorageConfig  StorageConfig  `json:"storage"`
	DatabaseConfig DatabaseConfig `json:"database"`
	SupabaseConfig SupabaseConfig `json:"supabase"`
	RedisConfig    RedisConfig    `json:"redis"`
	VaultConfig    VaultConfig    `json:"vault"`
	ServerConfig   ServerConfig   `json:"server"`
	AuthConfig     AuthConfig     `json:"auth"`
	LoggingConfig  LoggingConfig  `json:"logging"`
}

// EngineConfig parameterizes the trade-idea normalization engine.
type EngineConfig struct {
	ExpiryPolicy        string `json:"expiry_policy"` // near_term or zero_dte
	RequireOptionFields bool   `json:"require_option_fields"`
	DefaultTimeframe    string `json:"default_timeframe"`
}

// TelegramConfig holds the inbound chat-transport configuration.
type TelegramConfig struct {
	Enabled      bool   `json:"enabled"`
	BotToken     string `json:"bot_token"`
	PollInterval int    `json:"poll_interval"` // seconds between long-poll cycles
}

// StorageConfig selects the persistence backend for validated trade rows.
type StorageConfig struct {
	Backend string `json:"backend"` // "postgres", "supabase" or "none"
	Table   string `json:"table"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	Database string `json:"database"`
	SSLMode  string `json:"ssl_mode"`
}

// SupabaseConfig holds the PostgREST-style upsert endpoint settings.
type SupabaseConfig struct {
	URL            string `json:"url"` // e.g. https://xxxxx.supabase.co
	ServiceRoleKey string `json:"service_role_key"`
}

// RedisConfig holds Redis configuration for message deduplication.
type RedisConfig struct {
	Enabled  bool   `json:"enabled"`
	Address  string `json:"address"`
	Password string `json:"password"`
	DB       int    `json:"db"`
	PoolSize int    `json:"pool_size"`
}

// VaultConfig holds HashiCorp Vault configuration for secret loading.
type VaultConfig struct {
	Enabled    bool   `json:"enabled"`
	Address    string `json:"address"`
	Token      string `json:"token"`
	MountPath  string `json:"mount_path"`  // KV secrets engine mount path
	SecretPath string `json:"secret_path"` // path of the bot's secret bundle
	TLSEnabled bool   `json:"tls_enabled"`
	CACert     string `json:"ca_cert"`
}

// ServerConfig holds the HTTP API configuration.
type ServerConfig struct {
	Enabled        bool   `json:"enabled"`
	Host           string `json:"host"`
	Port           int    `json:"port"`
	ProductionMode bool   `json:"production_mode"`
	AllowedOrigins string `json:"allowed_origins"`
}

// AuthConfig holds JWT validation settings for the HTTP API.
type AuthConfig struct {
	Enabled   bool   `json:"enabled"`
	JWTSecret string `json:"jwt_secret"`
}

type LoggingConfig struct {
	Level      string `json:"level"`       // debug, info, warn, error
	Output     string `json:"output"`      // stdout, stderr, or file path
	JSONFormat bool   `json:"json_format"` // structured JSON vs console writer
}

// Load reads config.json when present and applies environment overrides on
// top; environment always wins.
func Load() (*Config, error) {
	cfg, err := loadFromFile("config.json")
	if err != nil {
		cfg = &Config{}
	}
	applyEnvOverrides(cfg)
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	// Engine config
	cfg.EngineConfig.ExpiryPolicy = getEnvOrDefault("ENGINE_EXPIRY_POLICY", defaultString(cfg.EngineConfig.ExpiryPolicy, "near_term"))
	cfg.EngineConfig.RequireOptionFields = getEnvOrDefault("ENGINE_REQUIRE_OPTION_FIELDS", "true") == "true"
	cfg.EngineConfig.DefaultTimeframe = getEnvOrDefault("ENGINE_DEFAULT_TIMEFRAME", defaultString(cfg.EngineConfig.DefaultTimeframe, "5m"))

	// Telegram config
	cfg.TelegramConfig.Enabled = getEnvOrDefault("TELEGRAM_ENABLED", "true") == "true"
	cfg.TelegramConfig.BotToken = getEnvOrDefault("TELEGRAM_BOT_TOKEN", cfg.TelegramConfig.BotToken)
	cfg.TelegramConfig.PollInterval = getEnvIntOrDefault("TELEGRAM_POLL_INTERVAL", defaultInt(cfg.TelegramConfig.PollInterval, 1))

	// Storage config
	cfg.StorageConfig.Backend = getEnvOrDefault("STORAGE_BACKEND", defaultString(cfg.StorageConfig.Backend, "supabase"))
	cfg.StorageConfig.Table = getEnvOrDefault("STORAGE_TABLE", defaultString(cfg.StorageConfig.Table, "new_trades"))

	// Database config
	cfg.DatabaseConfig.Host = getEnvOrDefault("DB_HOST", defaultString(cfg.DatabaseConfig.Host, "localhost"))
	cfg.DatabaseConfig.Port = getEnvIntOrDefault("DB_PORT", defaultInt(cfg.DatabaseConfig.Port, 5432))
	cfg.DatabaseConfig.User = getEnvOrDefault("DB_USER", defaultString(cfg.DatabaseConfig.User, "postgres"))
	cfg.DatabaseConfig.Password = getEnvOrDefault("DB_PASSWORD", cfg.DatabaseConfig.Password)
	cfg.DatabaseConfig.Database = getEnvOrDefault("DB_NAME", defaultString(cfg.DatabaseConfig.Database, "trades"))
	cfg.DatabaseConfig.SSLMode = getEnvOrDefault("DB_SSLMODE", defaultString(cfg.DatabaseConfig.SSLMode, "disable"))

	// Supabase config
	cfg.SupabaseConfig.URL = getEnvOrDefault("SUPABASE_URL", cfg.SupabaseConfig.URL)
	cfg.SupabaseConfig.ServiceRoleKey = getEnvOrDefault("SUPABASE_SERVICE_ROLE_KEY", cfg.SupabaseConfig.ServiceRoleKey)

	// Redis config
	cfg.RedisConfig.Enabled = getEnvOrDefault("REDIS_ENABLED", "false") == "true"
	cfg.RedisConfig.Address = getEnvOrDefault("REDIS_ADDR", defaultString(cfg.RedisConfig.Address, "localhost:6379"))
	cfg.RedisConfig.Password = getEnvOrDefault("REDIS_PASSWORD", cfg.RedisConfig.Password)
	cfg.RedisConfig.DB = getEnvIntOrDefault("REDIS_DB", cfg.RedisConfig.DB)
	cfg.RedisConfig.PoolSize = getEnvIntOrDefault("REDIS_POOL_SIZE", defaultInt(cfg.RedisConfig.PoolSize, 10))

	// Vault config
	cfg.VaultConfig.Enabled = getEnvOrDefault("VAULT_ENABLED", "false") == "true"
	cfg.VaultConfig.Address = getEnvOrDefault("VAULT_ADDR", defaultString(cfg.VaultConfig.Address, "http://localhost:8200"))
	cfg.VaultConfig.Token = getEnvOrDefault("VAULT_TOKEN", cfg.VaultConfig.Token)
	cfg.VaultConfig.MountPath = getEnvOrDefault("VAULT_MOUNT_PATH", defaultString(cfg.VaultConfig.MountPath, "secret"))
	cfg.VaultConfig.SecretPath = getEnvOrDefault("VAULT_SECRET_PATH", defaultString(cfg.VaultConfig.SecretPath, "trade-parser-bot"))
	cfg.VaultConfig.TLSEnabled = getEnvOrDefault("VAULT_TLS_ENABLED", "false") == "true"
	cfg.VaultConfig.CACert = getEnvOrDefault("VAULT_CACERT", cfg.VaultConfig.CACert)

	// Server config
	cfg.ServerConfig.Enabled = getEnvOrDefault("SERVER_ENABLED", "true") == "true"
	cfg.ServerConfig.Host = getEnvOrDefault("SERVER_HOST", defaultString(cfg.ServerConfig.Host, "0.0.0.0"))
	cfg.ServerConfig.Port = getEnvIntOrDefault("SERVER_PORT", defaultInt(cfg.ServerConfig.Port, 8080))
	cfg.ServerConfig.ProductionMode = getEnvOrDefault("SERVER_PRODUCTION_MODE", "false") == "true"
	cfg.ServerConfig.AllowedOrigins = getEnvOrDefault("SERVER_ALLOWED_ORIGINS", defaultString(cfg.ServerConfig.AllowedOrigins, "*"))

	// Auth config
	cfg.AuthConfig.Enabled = getEnvOrDefault("AUTH_ENABLED", "false") == "true"
	cfg.AuthConfig.JWTSecret = getEnvOrDefault("AUTH_JWT_SECRET", cfg.AuthConfig.JWTSecret)

	// Logging config
	cfg.LoggingConfig.Level = getEnvOrDefault("LOG_LEVEL", defaultString(cfg.LoggingConfig.Level, "info"))
	cfg.LoggingConfig.Output = getEnvOrDefault("LOG_OUTPUT", defaultString(cfg.LoggingConfig.Output, "stdout"))
	cfg.LoggingConfig.JSONFormat = getEnvOrDefault("LOG_JSON", "true") == "true"
}

// Validate rejects configurations that cannot possibly run.
func (c *Config) Validate() error {
	if c.TelegramConfig.Enabled && c.TelegramConfig.BotToken == "" {
		return fmt.Errorf("telegram is enabled but TELEGRAM_BOT_TOKEN is not set")
	}
	switch c.StorageConfig.Backend {
	case "postgres", "none":
	case "supabase":
		if c.SupabaseConfig.URL == "" {
			return fmt.Errorf("supabase storage requires SUPABASE_URL")
		}
		if c.SupabaseConfig.ServiceRoleKey == "" {
			return fmt.Errorf("supabase storage requires SUPABASE_SERVICE_ROLE_KEY")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.StorageConfig.Backend)
	}
	if c.AuthConfig.Enabled && c.AuthConfig.JWTSecret == "" {
		return fmt.Errorf("auth is enabled but AUTH_JWT_SECRET is not set")
	}
	switch c.EngineConfig.ExpiryPolicy {
	case "near_term", "zero_dte":
	default:
		return fmt.Errorf("unknown expiry policy %q", c.EngineConfig.ExpiryPolicy)
	}
	return nil
}

func loadFromFile(filename string) (*Config, error) {
	file, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config Config
	if err := json.Unmarshal(file, &config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return &config, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func defaultString(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func defaultInt(v, fallback int) int {
	if v == 0 {
		return fallback
	}
	return v
}
