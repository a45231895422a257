package storage_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/JaimeStill/medbrief/pkg/storage"
)

func TestParseMaxResults(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    int32
		wantErr bool
	}{
		{"empty uses default", "", 50, false},
		{"explicit", "10", 10, false},
		{"capped", "999999", storage.MaxListCap, false},
		{"zero", "0", 0, true},
		{"negative", "-3", 0, true},
		{"not a number", "many", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := storage.ParseMaxResults(tt.raw, 50)
			if tt.wantErr {
				if !errors.Is(err, storage.ErrInvalidMaxResults) {
					t.Fatalf("err = %v, want ErrInvalidMaxResults", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{storage.ErrNotFound, http.StatusNotFound},
		{storage.ErrEmptyKey, http.StatusBadRequest},
		{storage.ErrInvalidKey, http.StatusBadRequest},
		{storage.ErrInvalidMaxResults, http.StatusBadRequest},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			if got := storage.MapHTTPStatus(tt.err); got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestConfigFinalize(t *testing.T) {
	t.Run("requires a connection", func(t *testing.T) {
		cfg := storage.Config{}
		if err := cfg.Finalize(nil); err == nil {
			t.Error("expected error without connection_string or service_url")
		}
	})

	t.Run("service url alone", func(t *testing.T) {
		cfg := storage.Config{ServiceURL: "https://acct.blob.core.windows.net"}
		if err := cfg.Finalize(nil); err != nil {
			t.Fatalf("Finalize: %v", err)
		}
		if cfg.ContainerName != "clinical-documents" {
			t.Errorf("ContainerName = %q", cfg.ContainerName)
		}
		if cfg.MaxListSize != 50 {
			t.Errorf("MaxListSize = %d", cfg.MaxListSize)
		}
	})

	t.Run("env override capped", func(t *testing.T) {
		t.Setenv("TEST_STORAGE_MAX", "100000")
		cfg := storage.Config{ConnectionString: "UseDevelopmentStorage=true"}
		if err := cfg.Finalize(&storage.Env{MaxListSize: "TEST_STORAGE_MAX"}); err != nil {
			t.Fatalf("Finalize: %v", err)
		}
		if cfg.MaxListSize != storage.MaxListCap {
			t.Errorf("MaxListSize = %d, want %d", cfg.MaxListSize, storage.MaxListCap)
		}
	})
}

// Azurite development account; no request reaches it in these tests.
const devStorage = "DefaultEndpointsProtocol=http;AccountName=devstoreaccount1;" +
	"AccountKey=Eby8vdM02xNOcqFlqUwJPLlmEtlCDXJ1OUzFT50uSRZ6IFsuFq2UVErCz4I6tq/K1SZFPTOtr/KBHBeksoGMGw==;" +
	"BlobEndpoint=http://127.0.0.1:10000/devstoreaccount1;"

func newSystem(t *testing.T) storage.System {
	t.Helper()
	sys, err := storage.New(&storage.Config{
		ContainerName:    "clinical-documents",
		ConnectionString: devStorage,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return sys
}

func TestNewInvalidConnectionString(t *testing.T) {
	_, err := storage.New(&storage.Config{
		ContainerName:    "clinical-documents",
		ConnectionString: "not-a-connection-string",
	}, slog.Default())
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestKeyValidation(t *testing.T) {
	sys := newSystem(t)
	ctx := context.Background()

	tests := []struct {
		name string
		key  string
		want error
	}{
		{"empty", "", storage.ErrEmptyKey},
		{"traversal", "summaries/../secrets", storage.ErrInvalidKey},
		{"dot prefix", "summaries/..hidden/1-scan.pdf", storage.ErrInvalidKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := sys.Upload(ctx, tt.key, bytes.NewReader(nil), "application/pdf"); !errors.Is(err, tt.want) {
				t.Errorf("Upload: %v", err)
			}
			if _, err := sys.Download(ctx, tt.key); !errors.Is(err, tt.want) {
				t.Errorf("Download: %v", err)
			}
			if _, err := sys.Find(ctx, tt.key); !errors.Is(err, tt.want) {
				t.Errorf("Find: %v", err)
			}
			if err := sys.Delete(ctx, tt.key); !errors.Is(err, tt.want) {
				t.Errorf("Delete: %v", err)
			}
		})
	}
}

func TestConfigMerge(t *testing.T) {
	cfg := storage.Config{ContainerName: "base", ConnectionString: "UseDevelopmentStorage=true", MaxListSize: 20}
	cfg.Merge(&storage.Config{ServiceURL: "https://acct.blob.core.windows.net", MaxListSize: 75})

	if cfg.ContainerName != "base" || cfg.ConnectionString == "" {
		t.Errorf("unset overlay fields changed base: %+v", cfg)
	}
	if cfg.ServiceURL != "https://acct.blob.core.windows.net" || cfg.MaxListSize != 75 {
		t.Errorf("Merge = %+v", cfg)
	}
}
