package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the config file name inside the data directory.
const FileName = "envelo.yaml"

// Config represents the top-level envelo.yaml configuration.
type Config struct {
	Data   DataConfig   `yaml:"data"`
	Budget BudgetConfig `yaml:"budget"`
	Log    LogConfig    `yaml:"log"`
	Oplog  OplogConfig  `yaml:"oplog"`
}

// DataConfig locates the durable store.
type DataConfig struct {
	Dir    string `yaml:"dir"`
	DBFile string `yaml:"db_file"`
}

// BudgetConfig holds budget defaults for the CLI.
type BudgetConfig struct {
	DefaultID string `yaml:"default_id,omitempty"`
	Currency  string `yaml:"currency"`
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// OplogConfig controls the mutation audit trail.
type OplogConfig struct {
	Enabled bool `yaml:"enabled"`
}

// DBPath returns the full path of the sqlite database file.
func (c *Config) DBPath() string {
	return filepath.Join(c.Data.Dir, c.Data.DBFile)
}

// Load reads an envelo.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a data directory.
func Default(dataDir string) *Config {
	return &Config{
		Data: DataConfig{
			Dir:    dataDir,
			DBFile: "envelo.db",
		},
		Budget: BudgetConfig{
			Currency: "USD",
		},
		Log: LogConfig{
			Level: "info",
		},
		Oplog: OplogConfig{
			Enabled: true,
		},
	}
}

// ApplyEnv overrides fields from ENVELO_* environment variables. The CLI
// loads a .env file first, so both real env vars and dotenv entries land
// here.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("ENVELO_DATA_DIR"); v != "" {
		c.Data.Dir = v
	}
	if v := os.Getenv("ENVELO_DB_FILE"); v != "" {
		c.Data.DBFile = v
	}
	if v := os.Getenv("ENVELO_DEFAULT_BUDGET"); v != "" {
		c.Budget.DefaultID = v
	}
	if v := os.Getenv("ENVELO_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}
