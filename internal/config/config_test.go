package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.API.BaseURL != "https://api.devgui.info" {
		t.Errorf("expected default base url, got %q", cfg.API.BaseURL)
	}
	if cfg.API.Timeout != 0 {
		t.Errorf("expected no default timeout, got %s", cfg.API.Timeout)
	}
	if cfg.Export.Share != "clipboard" {
		t.Errorf("expected default share 'clipboard', got %q", cfg.Export.Share)
	}
	if !cfg.Journal.Enabled {
		t.Error("expected journal enabled by default")
	}
	if cfg.Log.Level != "info" {
		t.Errorf("expected default log level 'info', got %q", cfg.Log.Level)
	}
	if cfg.DevServer.Addr != "127.0.0.1:8088" {
		t.Errorf("expected default dev server addr, got %q", cfg.DevServer.Addr)
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	cfg, err := Load("/nonexistent/config.yaml")
	if err != nil {
		t.Fatalf("expected no error for missing file, got %v", err)
	}
	// Should return default config.
	if cfg.API.BaseURL != DefaultBaseURL {
		t.Errorf("expected default base url, got %q", cfg.API.BaseURL)
	}
}

func TestLoad_ValidYAML(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "config.yaml")
	yaml := `
api:
  base_url: http://127.0.0.1:8088
  timeout: 15s
auth:
  username: maria
export:
  dir: /tmp/exports
  share: none
journal:
  enabled: false
log:
  level: debug
  file: /tmp/estoque.log
dev_server:
  addr: 127.0.0.1:9999
  secret: shh
`
	os.WriteFile(path, []byte(yaml), 0644)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.API.BaseURL != "http://127.0.0.1:8088" {
		t.Errorf("base_url = %q", cfg.API.BaseURL)
	}
	if cfg.API.Timeout != 15*time.Second {
		t.Errorf("timeout = %s", cfg.API.Timeout)
	}
	if cfg.Auth.Username != "maria" || cfg.Auth.Password != "" {
		t.Errorf("auth = %+v", cfg.Auth)
	}
	if cfg.Export.Dir != "/tmp/exports" || cfg.Export.Share != "none" {
		t.Errorf("export = %+v", cfg.Export)
	}
	if cfg.Journal.Enabled {
		t.Error("journal should be disabled")
	}
	if cfg.Log.Level != "debug" || cfg.Log.File != "/tmp/estoque.log" {
		t.Errorf("log = %+v", cfg.Log)
	}
	// Unset keys keep their defaults.
	if cfg.DevServer.Addr != "127.0.0.1:9999" || cfg.DevServer.Username != "admin" {
		t.Errorf("dev_server = %+v", cfg.DevServer)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	os.WriteFile(path, []byte("api: [unclosed"), 0644)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name, yaml, want string
	}{
		{"share", "export:\n  share: airdrop\n", "export.share"},
		{"timeout", "api:\n  timeout: -1s\n", "api.timeout"},
		{"base url", "api:\n  base_url: \"\"\n", "api.base_url"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			os.WriteFile(path, []byte(tt.yaml), 0644)
			_, err := Load(path)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("err = %v, want mention of %s", err, tt.want)
			}
		})
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("ESTOQUE_API_URL", "http://localhost:3000")
	t.Setenv("ESTOQUE_USERNAME", "env-user")
	t.Setenv("ESTOQUE_PASSWORD", "env-pass")
	t.Setenv("ESTOQUE_LOG_LEVEL", "warn")
	t.Setenv("ESTOQUE_LOG_FILE", "/tmp/env.log")
	t.Setenv("ESTOQUE_EXPORT_DIR", "/tmp/env-exports")
	t.Setenv("ESTOQUE_JOURNAL_PATH", "/tmp/env.db")

	cfg, err := Load("/nonexistent/config.yaml")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.API.BaseURL != "http://localhost:3000" {
		t.Errorf("base_url = %q", cfg.API.BaseURL)
	}
	if cfg.Auth.Username != "env-user" || cfg.Auth.Password != "env-pass" {
		t.Errorf("auth = %+v", cfg.Auth)
	}
	if cfg.Log.Level != "warn" || cfg.Log.File != "/tmp/env.log" {
		t.Errorf("log = %+v", cfg.Log)
	}
	if cfg.Export.Dir != "/tmp/env-exports" || cfg.Journal.Path != "/tmp/env.db" {
		t.Errorf("export %+v journal %+v", cfg.Export, cfg.Journal)
	}
}

func TestApplyEnvOverrides_BeatsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	os.WriteFile(path, []byte("api:\n  base_url: http://file\n"), 0644)
	t.Setenv("ESTOQUE_API_URL", "http://env")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.API.BaseURL != "http://env" {
		t.Errorf("base_url = %q, want env value", cfg.API.BaseURL)
	}
}

func TestSaveToFile_PreservesUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	existing := "log:\n  level: debug\ncustom: keep-me\nauth:\n  password: old\n"
	os.WriteFile(path, []byte(existing), 0600)

	err := SaveToFile(path, InitAnswers{BaseURL: "http://127.0.0.1:8088", Username: "maria", ExportDir: "/tmp/x"})
	if err != nil {
		t.Fatalf("SaveToFile: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		t.Fatal(err)
	}
	if raw["custom"] != "keep-me" {
		t.Errorf("unknown key lost: %s", data)
	}
	auth := raw["auth"].(map[string]any)
	if auth["username"] != "maria" {
		t.Errorf("username = %v", auth["username"])
	}
	if _, ok := auth["password"]; ok {
		t.Error("password must be removed when not saved")
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Log.Level != "debug" || cfg.API.BaseURL != "http://127.0.0.1:8088" || cfg.Export.Dir != "/tmp/x" {
		t.Errorf("round trip cfg = %+v", cfg)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("mode = %v, want 0600", info.Mode().Perm())
	}
}
