package infrastructure_test

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/JaimeStill/medbrief/internal/config"
	"github.com/JaimeStill/medbrief/internal/infrastructure"
	"github.com/JaimeStill/medbrief/pkg/database"
	"github.com/JaimeStill/medbrief/pkg/gemini"
	"github.com/JaimeStill/medbrief/pkg/speech"
	"github.com/JaimeStill/medbrief/pkg/storage"
)

const azuriteConnString = "DefaultEndpointsProtocol=http;AccountName=devstoreaccount1;AccountKey=Eby8vdM02xNOcqFlqUwJPLlmEtlCDXJ1OUzFT50uSRZ6IFsuFq2UVErCz4I6tq/K1SZFPTOtr/KBHBeksoGMGw==;BlobEndpoint=http://127.0.0.1:10000/devstoreaccount1;"

func validConfig(t *testing.T) *config.Config {
	t.Helper()

	cfg := &config.Config{
		Logging: config.LoggingConfig{Level: "info", Format: "text"},
		Database: database.Config{
			Host:            "localhost",
			Port:            5432,
			Name:            "medbrief",
			User:            "medbrief",
			Password:        "medbrief",
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: "15m",
			ConnTimeout:     "5s",
		},
		Storage: storage.Config{
			ContainerName:    "clinical-documents",
			ConnectionString: azuriteConnString,
		},
		Gemini:  gemini.Config{APIKey: "test-key"},
		Speech:  speech.Config{},
		Version: "0.1.0",
	}
	if err := cfg.Gemini.Finalize(nil); err != nil {
		t.Fatalf("gemini config: %v", err)
	}
	if err := cfg.Speech.Finalize(nil); err != nil {
		t.Fatalf("speech config: %v", err)
	}
	return cfg
}

func TestNew(t *testing.T) {
	infra, err := infrastructure.New(validConfig(t))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if infra.Lifecycle == nil || infra.Logger == nil || infra.Database == nil || infra.Storage == nil {
		t.Fatalf("infrastructure incomplete: %+v", infra)
	}
	if !infra.Gemini.Configured() {
		t.Error("gemini should be configured")
	}
	if infra.Speech.Configured() {
		t.Error("speech should report the missing key")
	}
}

func TestNewInvalidStorageConfig(t *testing.T) {
	cfg := validConfig(t)
	cfg.Storage.ConnectionString = "not-a-connection-string"

	if _, err := infrastructure.New(cfg); err == nil {
		t.Fatal("expected error for invalid storage connection string")
	}
}

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name      string
		cfg       config.LoggingConfig
		debugSeen bool
		json      bool
	}{
		{"text info", config.LoggingConfig{Level: "info", Format: "text"}, false, false},
		{"json debug", config.LoggingConfig{Level: "debug", Format: "json"}, true, true},
		{"unknown level falls back to info", config.LoggingConfig{Level: "chatty", Format: "text"}, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := infrastructure.NewLogger(&buf, tt.cfg)

			logger.Debug("debug line")
			if got := strings.Contains(buf.String(), "debug line"); got != tt.debugSeen {
				t.Errorf("debug logged = %v, want %v", got, tt.debugSeen)
			}

			buf.Reset()
			logger.InfoContext(context.Background(), "info line", "k", "v")
			if tt.json {
				var rec map[string]any
				if err := json.Unmarshal(buf.Bytes(), &rec); err != nil || rec["msg"] != "info line" {
					t.Errorf("json record = %q (%v)", buf.String(), err)
				}
			} else if !strings.Contains(buf.String(), "msg=\"info line\"") {
				t.Errorf("text record = %q", buf.String())
			}
		})
	}
}
