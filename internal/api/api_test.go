package api_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JaimeStill/medbrief/internal/api"
	"github.com/JaimeStill/medbrief/internal/config"
	"github.com/JaimeStill/medbrief/internal/infrastructure"
	"github.com/JaimeStill/medbrief/pkg/database"
	"github.com/JaimeStill/medbrief/pkg/gemini"
	"github.com/JaimeStill/medbrief/pkg/middleware"
	"github.com/JaimeStill/medbrief/pkg/openapi"
	"github.com/JaimeStill/medbrief/pkg/pagination"
	"github.com/JaimeStill/medbrief/pkg/speech"
	"github.com/JaimeStill/medbrief/pkg/storage"
)

const azuriteConnString = "DefaultEndpointsProtocol=http;AccountName=devstoreaccount1;AccountKey=Eby8vdM02xNOcqFlqUwJPLlmEtlCDXJ1OUzFT50uSRZ6IFsuFq2UVErCz4I6tq/K1SZFPTOtr/KBHBeksoGMGw==;BlobEndpoint=http://127.0.0.1:10000/devstoreaccount1;"

func validConfig(t *testing.T) *config.Config {
	t.Helper()

	cfg := &config.Config{
		Server: config.ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     "2m",
			WriteTimeout:    "5m",
			ShutdownTimeout: "30s",
		},
		Logging: config.LoggingConfig{Level: "error", Format: "text"},
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
			MaxListSize:      50,
		},
		API: config.APIConfig{
			BasePath:      "/api",
			MaxUploadSize: "50MB",
			MaxFiles:      5,
			CORS:          middleware.CORSConfig{Enabled: false},
			Pagination: pagination.Config{
				DefaultPageSize: 20,
				MaxPageSize:     100,
			},
			OpenAPI: openapi.Config{Title: "medbrief API"},
		},
		ShutdownTimeout: "30s",
		Version:         "0.1.0",
	}
	if err := cfg.Gemini.Finalize(&gemini.Env{}); err != nil {
		t.Fatalf("gemini config: %v", err)
	}
	if err := cfg.Speech.Finalize(&speech.Env{}); err != nil {
		t.Fatalf("speech config: %v", err)
	}
	return cfg
}

func setupInfra(t *testing.T, cfg *config.Config) *infrastructure.Infrastructure {
	t.Helper()
	infra, err := infrastructure.New(cfg)
	if err != nil {
		t.Fatalf("infrastructure.New() error = %v", err)
	}
	return infra
}

func TestNewModule(t *testing.T) {
	cfg := validConfig(t)

	m, err := api.NewModule(context.Background(), cfg, setupInfra(t, cfg))
	if err != nil {
		t.Fatalf("NewModule() error = %v", err)
	}

	if m.Prefix() != "/api" {
		t.Errorf("prefix: got %s, want /api", m.Prefix())
	}
}

func TestNewRuntime(t *testing.T) {
	cfg := validConfig(t)
	infra := setupInfra(t, cfg)

	runtime := api.NewRuntime(cfg, infra)

	if runtime.Pagination.DefaultPageSize != 20 {
		t.Errorf("pagination default page size: got %d, want 20", runtime.Pagination.DefaultPageSize)
	}
	if runtime.MaxListSize != 50 {
		t.Errorf("max list size: got %d, want 50", runtime.MaxListSize)
	}
	if runtime.Logger == nil || runtime.Database == nil || runtime.Storage == nil || runtime.Lifecycle == nil {
		t.Fatalf("runtime incomplete: %+v", runtime.Infrastructure)
	}
	if runtime.Gemini != infra.Gemini || runtime.Speech != infra.Speech {
		t.Error("runtime should share the provider clients")
	}
	if runtime.Logger == infra.Logger {
		t.Error("runtime logger should be module scoped")
	}
}

func TestNewDomain(t *testing.T) {
	cfg := validConfig(t)
	domain := api.NewDomain(api.NewRuntime(cfg, setupInfra(t, cfg)))

	if domain.Prompts == nil || domain.Timeline == nil || domain.Summaries == nil ||
		domain.Letters == nil || domain.Chat == nil {
		t.Fatalf("domain incomplete: %+v", domain)
	}
}

func TestOpenAPIDocument(t *testing.T) {
	cfg := validConfig(t)

	m, err := api.NewModule(context.Background(), cfg, setupInfra(t, cfg))
	if err != nil {
		t.Fatalf("NewModule() error = %v", err)
	}

	rec := httptest.NewRecorder()
	m.Serve(rec, httptest.NewRequest(http.MethodGet, "/api/openapi.json", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}

	var spec struct {
		Info       struct{ Title, Version string }
		Servers    []struct{ URL string }
		Paths      map[string]map[string]json.RawMessage
		Components struct {
			Schemas map[string]json.RawMessage
		}
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &spec); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if spec.Info.Title != "medbrief API" || spec.Info.Version != "0.1.0" {
		t.Errorf("info = %+v", spec.Info)
	}
	if len(spec.Servers) != 1 || spec.Servers[0].URL != "/api" {
		t.Errorf("servers = %+v", spec.Servers)
	}

	ops := map[string]string{
		"/summaries":              "post",
		"/summaries/{id}/audio":   "get",
		"/chat":                   "post",
		"/letters/{id}":           "put",
		"/timeline/summary/{id}":  "get",
		"/prompts/{id}/activate":  "post",
		"/storage/download/{key}": "get",
	}
	for path, method := range ops {
		if _, ok := spec.Paths[path][method]; !ok {
			t.Errorf("missing %s %s", method, path)
		}
	}

	for _, name := range []string{"ClinicalSummary", "Letter", "ChatRequest", "TimelineEvent", "Prompt", "BlobList", "ErrorResponse"} {
		if _, ok := spec.Components.Schemas[name]; !ok {
			t.Errorf("missing schema %s", name)
		}
	}
}

func TestStorageRejectsInvalidPageSize(t *testing.T) {
	cfg := validConfig(t)

	m, err := api.NewModule(context.Background(), cfg, setupInfra(t, cfg))
	if err != nil {
		t.Fatalf("NewModule() error = %v", err)
	}

	rec := httptest.NewRecorder()
	m.Serve(rec, httptest.NewRequest(http.MethodGet, "/api/storage?max_results=abc", nil))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestAuthEnabled(t *testing.T) {
	var issuer string
	idp := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"issuer":%q,"jwks_uri":%q,"authorization_endpoint":%q,"token_endpoint":%q}`,
			issuer, issuer+"/keys", issuer+"/auth", issuer+"/token")
	}))
	defer idp.Close()
	issuer = idp.URL

	cfg := validConfig(t)
	cfg.API.Auth = middleware.AuthConfig{Enabled: true, IssuerURL: issuer, ClientID: "medbrief"}

	m, err := api.NewModule(context.Background(), cfg, setupInfra(t, cfg))
	if err != nil {
		t.Fatalf("NewModule() error = %v", err)
	}

	rec := httptest.NewRecorder()
	m.Serve(rec, httptest.NewRequest(http.MethodGet, "/api/openapi.json", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestAuthDiscoveryFailure(t *testing.T) {
	idp := httptest.NewServer(http.NotFoundHandler())
	defer idp.Close()

	cfg := validConfig(t)
	cfg.API.Auth = middleware.AuthConfig{Enabled: true, IssuerURL: idp.URL, ClientID: "medbrief"}

	if _, err := api.NewModule(context.Background(), cfg, setupInfra(t, cfg)); err == nil {
		t.Fatal("expected discovery error")
	}
}
