package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/JaimeStill/medbrief/internal/config"
)

const baseConfig = `
shutdown_timeout = "30s"
version = "0.1.0"

[server]
host = "0.0.0.0"
port = 8080
write_timeout = "5m"

[logging]
level = "debug"
format = "json"

[database]
host = "localhost"
name = "medbrief"
user = "medbrief"
password = "medbrief"

[storage]
container_name = "clinical-documents"
connection_string = "DefaultEndpointsProtocol=http;AccountName=devstoreaccount1;AccountKey=key;BlobEndpoint=http://127.0.0.1:10000/devstoreaccount1;"

[api]
base_path = "/api"
max_files = 5

[api.pagination]
default_page_size = 25
max_page_size = 50

[gemini]
model = "gemini-2.5-flash"
max_poll_attempts = 30

[speech]
voice_id = "EXAVITQu4vr4xnSDxMaL"
`

const overlayConfig = `
[server]
port = 9090

[database]
host = "prodhost"

[gemini]
require_active = true
`

func writeConfig(t *testing.T, dir, filename, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, filename), []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", filename, err)
	}
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	orig, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { os.Chdir(orig) })
}

func loadBase(t *testing.T) *config.Config {
	t.Helper()

	dir := t.TempDir()
	writeConfig(t, dir, config.BaseConfigFile, baseConfig)
	chdir(t, dir)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	return cfg
}

func TestLoad(t *testing.T) {
	cfg := loadBase(t)

	if cfg.Server.Port != 8080 {
		t.Errorf("server port: got %d, want 8080", cfg.Server.Port)
	}
	if cfg.Database.Name != "medbrief" {
		t.Errorf("db name: got %s, want medbrief", cfg.Database.Name)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("logging: got %+v", cfg.Logging)
	}
	if cfg.API.MaxFiles != 5 {
		t.Errorf("max files: got %d, want 5", cfg.API.MaxFiles)
	}
	if cfg.API.Pagination.DefaultPageSize != 25 || cfg.API.Pagination.MaxPageSize != 50 {
		t.Errorf("pagination: got %+v", cfg.API.Pagination)
	}
	if cfg.API.Auth.Enabled {
		t.Error("auth should default to disabled")
	}
	if cfg.API.OpenAPI.Title == "" {
		t.Error("openapi title default missing")
	}
}

func TestProviderDefaults(t *testing.T) {
	cfg := loadBase(t)

	g := cfg.Gemini
	if g.PollIntervalDuration() != time.Second || g.MaxPollAttempts != 30 {
		t.Errorf("polling: interval %v, attempts %d", g.PollIntervalDuration(), g.MaxPollAttempts)
	}
	if g.MaxAttempts != 3 || g.InitialBackoffDuration() != 2*time.Second {
		t.Errorf("retry: attempts %d, backoff %v", g.MaxAttempts, g.InitialBackoffDuration())
	}
	if g.UploadConcurrency != 1 || g.RequireActive {
		t.Errorf("upload: concurrency %d, require_active %v", g.UploadConcurrency, g.RequireActive)
	}

	s := cfg.Speech
	if s.ModelID != "eleven_multilingual_v2" || s.Stability != 0.5 || s.SimilarityBoost != 0.75 {
		t.Errorf("speech: %+v", s)
	}
}

func TestMissingAPIKeysAreNotFatal(t *testing.T) {
	t.Setenv("MEDBRIEF_GEMINI_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("MEDBRIEF_ELEVENLABS_API_KEY", "")
	t.Setenv("ELEVENLABS_API_KEY", "")

	cfg := loadBase(t)
	if cfg.Gemini.APIKey != "" || cfg.Speech.APIKey != "" {
		t.Errorf("keys: gemini %q, speech %q", cfg.Gemini.APIKey, cfg.Speech.APIKey)
	}
}

func TestAPIKeyEnv(t *testing.T) {
	tests := []struct {
		name   string
		env    map[string]string
		gemini string
		speech string
	}{
		{
			name:   "prefixed",
			env:    map[string]string{"MEDBRIEF_GEMINI_API_KEY": "g1", "MEDBRIEF_ELEVENLABS_API_KEY": "s1"},
			gemini: "g1",
			speech: "s1",
		},
		{
			name:   "unprefixed",
			env:    map[string]string{"GEMINI_API_KEY": "g2", "ELEVENLABS_API_KEY": "s2"},
			gemini: "g2",
			speech: "s2",
		},
		{
			name:   "prefixed wins",
			env:    map[string]string{"MEDBRIEF_GEMINI_API_KEY": "g1", "GEMINI_API_KEY": "g2"},
			gemini: "g1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, k := range []string{"MEDBRIEF_GEMINI_API_KEY", "GEMINI_API_KEY", "MEDBRIEF_ELEVENLABS_API_KEY", "ELEVENLABS_API_KEY"} {
				t.Setenv(k, tt.env[k])
			}

			cfg := loadBase(t)
			if cfg.Gemini.APIKey != tt.gemini {
				t.Errorf("gemini key: got %q, want %q", cfg.Gemini.APIKey, tt.gemini)
			}
			if cfg.Speech.APIKey != tt.speech {
				t.Errorf("speech key: got %q, want %q", cfg.Speech.APIKey, tt.speech)
			}
		})
	}
}

func TestLoadWithOverlay(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, config.BaseConfigFile, baseConfig)
	writeConfig(t, dir, "config.staging.toml", overlayConfig)
	chdir(t, dir)

	t.Setenv(config.EnvMedbriefEnv, "staging")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("server port: got %d, want 9090 (from overlay)", cfg.Server.Port)
	}
	if cfg.Database.Host != "prodhost" {
		t.Errorf("db host: got %s, want prodhost (from overlay)", cfg.Database.Host)
	}
	if cfg.Database.Name != "medbrief" {
		t.Errorf("db name: got %s, want medbrief (from base)", cfg.Database.Name)
	}
	if !cfg.Gemini.RequireActive {
		t.Error("require_active not applied from overlay")
	}
	if cfg.Env() != "staging" {
		t.Errorf("env: got %s, want staging", cfg.Env())
	}
}

func TestLoadEnvVarOverrides(t *testing.T) {
	t.Setenv("MEDBRIEF_VERSION", "2.0.0")
	t.Setenv("MEDBRIEF_SERVER_PORT", "3000")
	t.Setenv("MEDBRIEF_API_MAX_FILES", "3")
	t.Setenv("MEDBRIEF_LOG_LEVEL", "WARN")
	t.Setenv("MEDBRIEF_PAGINATION_DEFAULT_PAGE_SIZE", "10")

	cfg := loadBase(t)

	if cfg.Version != "2.0.0" {
		t.Errorf("version: got %s, want 2.0.0", cfg.Version)
	}
	if cfg.Server.Port != 3000 {
		t.Errorf("server port: got %d, want 3000", cfg.Server.Port)
	}
	if cfg.API.MaxFiles != 3 {
		t.Errorf("max files: got %d, want 3", cfg.API.MaxFiles)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("log level: got %s, want warn", cfg.Logging.Level)
	}
	if cfg.API.Pagination.DefaultPageSize != 10 {
		t.Errorf("default page size: got %d, want 10", cfg.API.Pagination.DefaultPageSize)
	}
}

func TestLoadNoConfigFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	t.Setenv("MEDBRIEF_DB_NAME", "testdb")
	t.Setenv("MEDBRIEF_DB_USER", "testuser")
	t.Setenv("MEDBRIEF_STORAGE_SERVICE_URL", "https://account.blob.core.windows.net")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load without config.toml failed: %v", err)
	}

	if cfg.Server.Addr() != "0.0.0.0:8080" {
		t.Errorf("addr: got %s", cfg.Server.Addr())
	}
	if cfg.Storage.ServiceURL == "" {
		t.Error("storage service url not read from env")
	}
	if cfg.ShutdownTimeoutDuration() != 30*time.Second {
		t.Errorf("shutdown timeout: got %v", cfg.ShutdownTimeoutDuration())
	}
	if cfg.API.MaxUploadSizeBytes() != 50*1024*1024 {
		t.Errorf("max upload: got %d", cfg.API.MaxUploadSizeBytes())
	}
}

func TestValidation(t *testing.T) {
	const required = `
[database]
name = "medbrief"
user = "medbrief"

[storage]
connection_string = "conn"
`

	tests := []struct {
		name    string
		config  string
		wantErr string
	}{
		{"invalid port", "[server]\nport = 99999\n" + required, "invalid port"},
		{"invalid write timeout", "[server]\nwrite_timeout = \"soon\"\n" + required, "invalid write_timeout"},
		{"invalid log level", "[logging]\nlevel = \"loud\"\n" + required, "invalid level"},
		{"invalid max files", "[api]\nmax_files = -1\n" + required, "max_files"},
		{"invalid upload size", "[api]\nmax_upload_size = \"huge\"\n" + required, "max_upload_size"},
		{"auth without issuer", "[api.auth]\nenabled = true\nclient_id = \"medbrief\"\n" + required, "issuer_url"},
		{"missing storage", "[database]\nname = \"medbrief\"\nuser = \"medbrief\"\n", "storage"},
		{"malformed toml", "[server\nport = 1", "parse config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeConfig(t, dir, config.BaseConfigFile, tt.config)
			chdir(t, dir)
			t.Setenv("MEDBRIEF_STORAGE_CONNECTION_STRING", "")
			t.Setenv("MEDBRIEF_STORAGE_SERVICE_URL", "")

			_, err := config.Load()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err, tt.wantErr)
			}
		})
	}
}
