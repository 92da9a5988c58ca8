package config

import (
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for crm-engine.
// Configuration can come from YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values for fields that support both.
// Secrets (passwords, API keys) must only come from environment variables.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"0.0.0.0"`
	Port     string `yaml:"port" env:"PORT" env-default:"8000"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version  string `yaml:"-"` // Set at load time, not from config

	// CRM database configuration (MySQL)
	Database DatabaseConfig `yaml:"database"`

	// Language model configuration
	OpenAI OpenAIConfig `yaml:"openai"`
}

// DatabaseConfig holds MySQL connection configuration for the CRM store.
type DatabaseConfig struct {
	Host     string `yaml:"host" env:"DB_HOST" env-default:"localhost"`
	Port     int    `yaml:"port" env:"DB_PORT" env-default:"3306"`
	User     string `yaml:"user" env:"DB_USER" env-default:"crm"`
	Password string `yaml:"-" env:"DB_PASSWORD"` // Secret - not in YAML
	Database string `yaml:"database" env:"DB_DATABASE" env-default:"clonecrm"`

	// TablesStr is the comma-separated allow-list of tables the SQL engine
	// may reference. Immutable for the process lifetime.
	TablesStr string `yaml:"tables" env:"DB_TABLES" env-default:"customer,customertype,customertypedtl,invoice,lead,product,productdtl,branch,city"`

	MaxOpenConns int `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS" env-default:"25"`
	MaxIdleConns int `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS" env-default:"5"`
}

// OpenAIConfig holds credentials and model selection for the LLM endpoint.
type OpenAIConfig struct {
	BaseURL string `yaml:"base_url" env:"OPENAI_BASE_URL" env-default:"https://api.openai.com/v1"`
	Model   string `yaml:"model" env:"OPENAI_MODEL" env-default:"gpt-4o-mini"`
	APIKey  string `yaml:"-" env:"OPENAI_API_KEY"` // Secret - not in YAML

	// ChatTemperature is used for contextual chat; SQL generation always runs
	// at temperature 0 for reproducibility.
	ChatTemperature float64 `yaml:"chat_temperature" env:"OPENAI_CHAT_TEMPERATURE" env-default:"0.7"`
}

// Load reads configuration from config.yaml with environment variable overrides.
// The version parameter is injected at build time and set on the returned Config.
func Load(version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
		return nil, fmt.Errorf("failed to read config.yaml: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromEnv reads configuration from environment variables only.
// Used when no config.yaml is present (containerized deployments).
func LoadFromEnv(version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that required configuration is present and coherent.
func (c *Config) Validate() error {
	if len(c.Database.Tables()) == 0 {
		return fmt.Errorf("at least one allow-listed table is required")
	}
	if c.OpenAI.Model == "" {
		return fmt.Errorf("openai model is required")
	}
	return nil
}

// Tables returns the parsed table allow-list.
func (c *DatabaseConfig) Tables() []string {
	var tables []string
	for _, t := range strings.Split(c.TablesStr, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tables = append(tables, t)
		}
	}
	return tables
}

// DSN returns a go-sql-driver/mysql connection string.
func (c *DatabaseConfig) DSN() string {
	mc := mysql.NewConfig()
	mc.User = c.User
	mc.Passwd = c.Password
	mc.Net = "tcp"
	mc.Addr = fmt.Sprintf("%s:%d", c.Host, c.Port)
	mc.DBName = c.Database
	mc.ParseTime = true
	return mc.FormatDSN()
}
