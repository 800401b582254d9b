package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_DefaultsWithoutEnvFile(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() unexpected error = %v", err)
	}

	if cfg.App.Name != "ticketa" {
		t.Errorf("app name = %s, want ticketa", cfg.App.Name)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("server port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Kafka.Enabled {
		t.Error("kafka should be disabled by default")
	}
}

func TestLoad_ReadsEnvFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	content := "SERVER_PORT=9090\nAPP_NAME=ticketa-test\n"
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write .env: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() unexpected error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("server port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.App.Name != "ticketa-test" {
		t.Errorf("app name = %s, want ticketa-test", cfg.App.Name)
	}
}

func TestLoad_MalformedEnvFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("this is not an env file\n"), 0o600); err != nil {
		t.Fatalf("failed to write .env: %v", err)
	}

	if _, err := Load(); err == nil {
		t.Error("Load() expected error for malformed .env, got nil")
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			App:      AppConfig{Name: "ticketa", Environment: "development"},
			Server:   ServerConfig{Port: 8080},
			Database: DatabaseConfig{Host: "localhost", DBName: "ticketa_db"},
			JWT:      JWTConfig{Secret: "s3cret"},
		}
	}

	if err := valid().Validate(); err != nil {
		t.Errorf("Validate() unexpected error = %v", err)
	}

	cfg := valid()
	cfg.JWT.Secret = ""
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() expected error for missing JWT secret")
	}

	cfg = valid()
	cfg.App.Environment = "production"
	cfg.JWT.Secret = "your-secret-key-change-in-production"
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() expected error for default secret in production")
	}

	cfg = valid()
	cfg.Server.Port = 0
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() expected error for invalid port")
	}
}
