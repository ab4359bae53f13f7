package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SERVER_PORT", "")
	t.Setenv("OUTPUT_DIR", "")
	t.Setenv("ENGINE_BACKEND", "")
	t.Setenv("PIPELINE_MODE", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Server.Port != "8001" {
		t.Errorf("port mismatch: got %q want %q", cfg.Server.Port, "8001")
	}
	if cfg.Engine.Backend != "local" {
		t.Errorf("engine backend mismatch: got %q", cfg.Engine.Backend)
	}
	if cfg.Pipeline.Mode != "mock" {
		t.Errorf("pipeline mode mismatch: got %q", cfg.Pipeline.Mode)
	}
	if cfg.Capabilities.MaxFrames != 241 || cfg.Capabilities.MaxResolution != "768x512" {
		t.Errorf("capabilities mismatch: %+v", cfg.Capabilities)
	}
	if cfg.Server.Addr() != "0.0.0.0:8001" {
		t.Errorf("addr mismatch: got %q", cfg.Server.Addr())
	}
}

func TestLoadHonorsEnvironment(t *testing.T) {
	t.Setenv("SERVER_PORT", "9100")
	t.Setenv("OUTPUT_DIR", "/tmp/videos")
	t.Setenv("ENGINE_BACKEND", "ASYNQ")
	t.Setenv("PIPELINE_MODE", "http")
	t.Setenv("PIPELINE_SERVICE_URL", "http://gpu-box:9000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Server.Port != "9100" {
		t.Errorf("port mismatch: got %q", cfg.Server.Port)
	}
	if cfg.Storage.OutputDir != "/tmp/videos" {
		t.Errorf("output dir mismatch: got %q", cfg.Storage.OutputDir)
	}
	if cfg.Engine.Backend != "asynq" {
		t.Errorf("engine backend should be lowercased, got %q", cfg.Engine.Backend)
	}
	if cfg.Pipeline.ServiceURL != "http://gpu-box:9000" {
		t.Errorf("service url mismatch: got %q", cfg.Pipeline.ServiceURL)
	}
}

func TestReadSecretFromFile(t *testing.T) {
	secretPath := filepath.Join(t.TempDir(), "jwt")
	if err := os.WriteFile(secretPath, []byte("  s3cret\n"), 0o600); err != nil {
		t.Fatalf("write secret: %v", err)
	}
	t.Setenv("JWT_SECRET", "")
	t.Setenv("JWT_SECRET_FILE", secretPath)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Auth.JWTSecret != "s3cret" {
		t.Errorf("secret mismatch: got %q", cfg.Auth.JWTSecret)
	}
}

func TestNewLoggerLevels(t *testing.T) {
	log := NewLogger(ServerConfig{LogLevel: "debug", LogFormat: "text"})
	if log.GetLevel() != logrus.DebugLevel {
		t.Errorf("expected debug level, got %s", log.GetLevel())
	}

	log = NewLogger(ServerConfig{LogLevel: "nonsense"})
	if log.GetLevel() != logrus.InfoLevel {
		t.Errorf("expected fallback to info, got %s", log.GetLevel())
	}
}
