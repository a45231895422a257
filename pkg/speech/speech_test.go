package speech_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JaimeStill/medbrief/pkg/speech"
)

func newClient(t *testing.T, baseURL, apiKey string) *speech.Client {
	t.Helper()

	cfg := speech.Config{APIKey: apiKey, BaseURL: baseURL}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	return speech.New(cfg, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestSynthesize(t *testing.T) {
	var (
		path    string
		accept  string
		apiKey  string
		payload map[string]any
	)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		accept = r.Header.Get("Accept")
		apiKey = r.Header.Get("xi-api-key")
		json.NewDecoder(r.Body).Decode(&payload)
		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write([]byte("ID3audio"))
	}))
	defer srv.Close()

	client := newClient(t, srv.URL, "xi-key")

	audio, err := client.Synthesize(context.Background(), "Brief patient Doe.")
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}

	if string(audio) != "ID3audio" {
		t.Errorf("audio = %q", audio)
	}
	if path != "/v1/text-to-speech/EXAVITQu4vr4xnSDxMaL" {
		t.Errorf("path = %s", path)
	}
	if accept != "audio/mpeg" {
		t.Errorf("Accept = %s", accept)
	}
	if apiKey != "xi-key" {
		t.Errorf("xi-api-key = %s", apiKey)
	}
	if payload["model_id"] != "eleven_multilingual_v2" {
		t.Errorf("model_id = %v", payload["model_id"])
	}
	settings := payload["voice_settings"].(map[string]any)
	if settings["stability"] != 0.5 || settings["similarity_boost"] != 0.75 {
		t.Errorf("voice_settings = %v", settings)
	}
}

func TestSynthesizeErrors(t *testing.T) {
	tests := []struct {
		name    string
		apiKey  string
		status  int
		text    string
		wantErr error
	}{
		{"not configured", "", http.StatusOK, "hello", speech.ErrNotConfigured},
		{"empty script", "k", http.StatusOK, "  ", speech.ErrSynthesis},
		{"provider error", "k", http.StatusUnauthorized, "hello", speech.ErrSynthesis},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(`{"detail":"invalid"}`))
			}))
			defer srv.Close()

			client := newClient(t, srv.URL, tt.apiKey)

			_, err := client.Synthesize(context.Background(), tt.text)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
