// Package config loads and manages estoque configuration.
// Configuration source priority (highest to lowest):
// 1. Command-line flags (applied by cmd)
// 2. Environment variables (ESTOQUE_API_URL, ESTOQUE_USERNAME, ...)
// 3. Config file path specified via --config flag
// 4. ~/.config/estoque/config.yaml
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const DefaultBaseURL = "https://api.devgui.info"

// APIConfig points the client at the products backend.
type APIConfig struct {
	BaseURL string `yaml:"base_url"`

	// Timeout bounds every request. 0 = no timeout (default).
	Timeout time.Duration `yaml:"timeout"`
}

// AuthConfig holds optional stored credentials for the one-shot commands.
type AuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// ExportConfig controls the CSV export.
type ExportConfig struct {
	// Dir for exported files. Empty = os.TempDir().
	Dir string `yaml:"dir"`

	// Share: "clipboard" (default) | "none"
	Share string `yaml:"share"`
}

// JournalConfig controls the local activity journal.
type JournalConfig struct {
	Enabled bool `yaml:"enabled"`

	// Path of the SQLite file. Empty = ~/.local/share/estoque/journal.db
	Path string `yaml:"path"`
}

// LogConfig controls structured logging.
type LogConfig struct {
	// Level: debug | info | warn | error
	Level string `yaml:"level"`

	// File to append JSON logs to. Empty = stderr.
	File string `yaml:"file"`
}

// DevServerConfig configures the local fake API started by `estoque dev-server`.
type DevServerConfig struct {
	Addr     string `yaml:"addr"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`

	// Secret signs the issued tokens. Empty = random per run.
	Secret string `yaml:"secret"`
}

// Config is the complete configuration structure for estoque.
type Config struct {
	API       APIConfig       `yaml:"api"`
	Auth      AuthConfig      `yaml:"auth"`
	Export    ExportConfig    `yaml:"export"`
	Journal   JournalConfig   `yaml:"journal"`
	Log       LogConfig       `yaml:"log"`
	DevServer DevServerConfig `yaml:"dev_server"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL: DefaultBaseURL,
		},
		Export: ExportConfig{
			Share: "clipboard",
		},
		Journal: JournalConfig{
			Enabled: true,
		},
		Log: LogConfig{
			Level: "info",
		},
		DevServer: DevServerConfig{
			Addr:     "127.0.0.1:8088",
			Username: "admin",
			Password: "admin",
		},
	}
}

// DefaultPath returns ~/.config/estoque/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", "estoque", "config.yaml"), nil
}

// Load reads the config file and merges environment variable overrides.
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	// Determine config file path
	if configPath == "" {
		if p, err := DefaultPath(); err == nil {
			configPath = p
		}
	}

	// Read config file (use defaults if not found)
	if data, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values no component can work with.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url must not be empty")
	}
	if c.API.Timeout < 0 {
		return fmt.Errorf("api.timeout must not be negative, got %s", c.API.Timeout)
	}
	switch c.Export.Share {
	case "", "clipboard", "none":
	default:
		return fmt.Errorf("export.share must be clipboard or none, got %q", c.Export.Share)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("ESTOQUE_API_URL"); v != "" {
		cfg.API.BaseURL = v
	}
	if v := os.Getenv("ESTOQUE_USERNAME"); v != "" {
		cfg.Auth.Username = v
	}
	if v := os.Getenv("ESTOQUE_PASSWORD"); v != "" {
		cfg.Auth.Password = v
	}
	if v := os.Getenv("ESTOQUE_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("ESTOQUE_LOG_FILE"); v != "" {
		cfg.Log.File = v
	}
	if v := os.Getenv("ESTOQUE_EXPORT_DIR"); v != "" {
		cfg.Export.Dir = v
	}
	if v := os.Getenv("ESTOQUE_JOURNAL_PATH"); v != "" {
		cfg.Journal.Path = v
	}
}

// InitAnswers are the values collected by `estoque init`.
type InitAnswers struct {
	BaseURL  string
	Username string
	// Password is only written when SavePassword is set.
	Password     string
	SavePassword bool
	ExportDir    string
}

// SaveToFile persists the init answers into cfgPath (DefaultPath when
// empty), preserving all other user settings.
func SaveToFile(cfgPath string, a InitAnswers) error {
	if cfgPath == "" {
		p, err := DefaultPath()
		if err != nil {
			return err
		}
		cfgPath = p
	}

	// Read existing file into a generic map to preserve unknown fields.
	raw := make(map[string]any)
	if data, err := os.ReadFile(cfgPath); err == nil {
		_ = yaml.Unmarshal(data, &raw) // ignore errors; start fresh if corrupt
	}

	section := func(name string) map[string]any {
		m, _ := raw[name].(map[string]any)
		if m == nil {
			m = make(map[string]any)
		}
		raw[name] = m
		return m
	}

	if a.BaseURL != "" {
		section("api")["base_url"] = a.BaseURL
	}
	auth := section("auth")
	auth["username"] = a.Username
	if a.SavePassword {
		auth["password"] = a.Password
	} else {
		delete(auth, "password")
	}
	if a.ExportDir != "" {
		section("export")["dir"] = a.ExportDir
	}

	// Ensure config directory exists.
	if err := os.MkdirAll(filepath.Dir(cfgPath), 0755); err != nil {
		return fmt.Errorf("cannot create config directory: %w", err)
	}

	data, err := yaml.Marshal(raw)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	// May hold a password.
	if err := os.WriteFile(cfgPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
