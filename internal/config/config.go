package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// History backends
const (
	BackendAuto     = "auto"
	BackendNone     = "none"
	BackendSupabase = "supabase"
	BackendSQLite   = "sqlite"
	BackendDynamoDB = "dynamodb"
)

// Config holds all configuration for Qualia
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Admin    AdminConfig    `mapstructure:"admin"`
	Log      LogConfig      `mapstructure:"log"`
	Search   SearchConfig   `mapstructure:"search"`
	Thinking ThinkingConfig `mapstructure:"thinking"`
	History  HistoryConfig  `mapstructure:"history"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host         string   `mapstructure:"host"`
	Port         int      `mapstructure:"port"`
	BaseURL      string   `mapstructure:"base_url"`
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// AdminConfig holds admin authentication configuration
type AdminConfig struct {
	APIKey string `mapstructure:"api_key"`
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// SearchConfig holds completion API configuration
type SearchConfig struct {
	APIKey       string        `mapstructure:"api_key"`
	BaseURL      string        `mapstructure:"base_url"`
	Model        string        `mapstructure:"model"`
	SystemPrompt string        `mapstructure:"system_prompt"`
	Temperature  float64       `mapstructure:"temperature"`
	MaxTokens    int64         `mapstructure:"max_tokens"`
	Timeout      time.Duration `mapstructure:"timeout"`
	Branding     string        `mapstructure:"branding"`
}

// ThinkingConfig holds the thinking animation configuration
type ThinkingConfig struct {
	Enabled bool    `mapstructure:"enabled"`
	Locale  string  `mapstructure:"locale"`
	Speed   float64 `mapstructure:"speed"`
}

// HistoryConfig holds chat history persistence configuration
type HistoryConfig struct {
	Backend  string         `mapstructure:"backend"`
	Table    string         `mapstructure:"table"`
	Supabase SupabaseConfig `mapstructure:"supabase"`
	SQLite   SQLiteConfig   `mapstructure:"sqlite"`
	DynamoDB DynamoDBConfig `mapstructure:"dynamodb"`
}

// SupabaseConfig holds hosted table store credentials
type SupabaseConfig struct {
	URL     string        `mapstructure:"url"`
	AnonKey string        `mapstructure:"anon_key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// SQLiteConfig holds local database configuration
type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

// DynamoDBConfig holds DynamoDB configuration
type DynamoDBConfig struct {
	Region   string `mapstructure:"region"`
	Endpoint string `mapstructure:"endpoint"`
}

// envAliases maps config keys to the environment variable names the browser
// build used, so existing .env files keep working.
var envAliases = map[string][]string{
	"search.api_key":            {"PERPLEXITY_API_KEY", "NEXT_PUBLIC_PERPLEXITY_API_KEY"},
	"history.supabase.url":      {"SUPABASE_URL", "NEXT_PUBLIC_SUPABASE_URL"},
	"history.supabase.anon_key": {"SUPABASE_ANON_KEY", "NEXT_PUBLIC_SUPABASE_ANON_KEY"},
	"server.base_url":           {"APP_URL", "NEXT_PUBLIC_APP_URL"},
}

// Load loads configuration from file and environment
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Read config file if specified
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables
	v.SetEnvPrefix("QUALIA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, names := range envAliases {
		args := append([]string{key, "QUALIA_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))}, names...)
		if err := v.BindEnv(args...); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	// Read config
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found, use defaults
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.base_url", "")
	v.SetDefault("server.allow_origins", []string{"*"})

	v.SetDefault("admin.api_key", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)

	v.SetDefault("search.api_key", "")
	v.SetDefault("search.base_url", "https://api.perplexity.ai/")
	v.SetDefault("search.model", "sonar-pro")
	v.SetDefault("search.system_prompt", "You are Qualia AI Assistant, a helpful and intelligent AI assistant. Provide accurate, concise, and clear responses. Your answers should be well-structured, factual, and directly address the user's query.")
	v.SetDefault("search.temperature", 0.7)
	v.SetDefault("search.max_tokens", 2000)
	v.SetDefault("search.timeout", 60*time.Second)
	v.SetDefault("search.branding", "qualia")

	v.SetDefault("thinking.enabled", true)
	v.SetDefault("thinking.locale", "el")
	v.SetDefault("thinking.speed", 1.0)

	v.SetDefault("history.backend", BackendAuto)
	v.SetDefault("history.table", "chat_history")
	v.SetDefault("history.supabase.url", "")
	v.SetDefault("history.supabase.anon_key", "")
	v.SetDefault("history.supabase.timeout", 10*time.Second)
	v.SetDefault("history.sqlite.path", "./data/qualia.db")
	v.SetDefault("history.dynamodb.region", "")
	v.SetDefault("history.dynamodb.endpoint", "")
}

// Validate checks values that cannot be defaulted
func (c *Config) Validate() error {
	switch c.History.Backend {
	case BackendAuto, BackendNone, BackendSupabase, BackendSQLite, BackendDynamoDB:
	default:
		return fmt.Errorf("unknown history backend %q", c.History.Backend)
	}
	if c.Thinking.Speed < 0 {
		return fmt.Errorf("thinking speed must not be negative, got %v", c.Thinking.Speed)
	}
	if strings.TrimSpace(c.History.Table) == "" {
		return fmt.Errorf("history table must not be empty")
	}
	return nil
}

// Address returns the server address
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// HistoryBackend resolves "auto" to the backend implied by the credentials
// present. Hosted storage without both URL and key degrades to none.
func (c *Config) HistoryBackend() string {
	switch c.History.Backend {
	case BackendAuto:
		if c.History.Supabase.URL != "" && c.History.Supabase.AnonKey != "" {
			return BackendSupabase
		}
		return BackendNone
	case BackendSupabase:
		if c.History.Supabase.URL == "" || c.History.Supabase.AnonKey == "" {
			return BackendNone
		}
	}
	return c.History.Backend
}
