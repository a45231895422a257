package pipeline_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/JaimeStill/medbrief/internal/pipeline"
	"github.com/JaimeStill/medbrief/internal/prompts"
	"github.com/JaimeStill/medbrief/pkg/gemini"
	"github.com/JaimeStill/medbrief/pkg/speech"
)

const janeDoeBrief = `{
  "resume_clinique": "Patiente de 54 ans suivie pour HTA. Créatinine en hausse. Pas d'antécédent rénal connu. Suivi cardiologique annuel.",
  "points_de_vigilance": ["Contrôle de la fonction rénale"],
  "comparaison_historique": "Créatinine 95 en 2023, 160 ce jour.",
  "red_flags": ["elevated creatinine"],
  "note_medicale_brute": "S: asthénie. O: créat 160. A: IRA ? P: bilan.",
  "a_expliquer_au_patient": "Vos reins filtrent moins bien.",
  "timeline_events": [
    {"event_date": "2024-03-01", "event_type": "examination", "description": "Bilan sanguin", "document_source": "bilan.pdf"}
  ],
  "inconsistencies": []
}`

type provider struct {
	t *testing.T

	mu           sync.Mutex
	fileState    string
	genStatuses  []int
	genText      string
	ttsStatus    int
	uploads      int
	polls        int
	genCalls     int
	ttsScripts   []string
	genRequests  []gemini.GenerateRequest
	uploadedMIME []string
}

func (p *provider) handler(srv **httptest.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p.mu.Lock()
		defer p.mu.Unlock()

		switch {
		case r.URL.Path == "/upload/v1beta/files":
			p.uploads++
			p.uploadedMIME = append(p.uploadedMIME, r.Header.Get("X-Goog-Upload-Header-Content-Type"))
			w.Header().Set("X-Goog-Upload-URL", fmt.Sprintf("%s/session/%d", (*srv).URL, p.uploads))

		case strings.HasPrefix(r.URL.Path, "/session/"):
			id := strings.TrimPrefix(r.URL.Path, "/session/")
			w.Header().Set("X-Goog-Upload-Status", "final")
			fmt.Fprintf(w, `{"file":{"name":"files/f%s","uri":"https://gemini/files/f%s","state":%q}}`, id, id, p.fileState)

		case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/v1beta/files/"):
			p.polls++
			name := strings.TrimPrefix(r.URL.Path, "/v1beta/")
			fmt.Fprintf(w, `{"name":%q,"uri":"https://gemini/%s","state":%q}`, name, name, p.fileState)

		case strings.HasSuffix(r.URL.Path, ":generateContent"):
			var req gemini.GenerateRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				p.t.Errorf("decode generate request: %v", err)
			}
			p.genRequests = append(p.genRequests, req)

			status := http.StatusOK
			if p.genCalls < len(p.genStatuses) {
				status = p.genStatuses[p.genCalls]
			}
			p.genCalls++

			if status != http.StatusOK {
				w.WriteHeader(status)
				fmt.Fprintf(w, `{"error":{"code":%d,"message":"overloaded"}}`, status)
				return
			}

			body, _ := json.Marshal(map[string]any{
				"candidates": []any{
					map[string]any{"content": map[string]any{"parts": []any{map[string]any{"text": p.genText}}}},
				},
			})
			w.Write(body)

		case strings.HasPrefix(r.URL.Path, "/v1/text-to-speech/"):
			var req struct {
				Text string `json:"text"`
			}
			json.NewDecoder(r.Body).Decode(&req)
			p.ttsScripts = append(p.ttsScripts, req.Text)

			if p.ttsStatus != http.StatusOK {
				w.WriteHeader(p.ttsStatus)
				return
			}
			w.Header().Set("Content-Type", "audio/mpeg")
			w.Write([]byte("ID3-mpeg-bytes"))

		default:
			p.t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}
}

type sleeps struct {
	mu    sync.Mutex
	total time.Duration
}

func (s *sleeps) sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	s.total += d
	s.mu.Unlock()
	return ctx.Err()
}

func newRuntime(t *testing.T, p *provider, mutate func(*gemini.Config)) (*pipeline.Runtime, *sleeps) {
	t.Helper()

	var srv *httptest.Server
	srv = httptest.NewServer(p.handler(&srv))
	t.Cleanup(srv.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	gcfg := gemini.Config{APIKey: "test-key", BaseURL: srv.URL}
	if mutate != nil {
		mutate(&gcfg)
	}
	if err := gcfg.Finalize(nil); err != nil {
		t.Fatalf("gemini config: %v", err)
	}

	scfg := speech.Config{APIKey: "xi-key", BaseURL: srv.URL}
	if err := scfg.Finalize(nil); err != nil {
		t.Fatalf("speech config: %v", err)
	}

	s := &sleeps{}
	return &pipeline.Runtime{
		Gemini:  gemini.New(gcfg, logger, gemini.WithHTTPClient(srv.Client()), gemini.WithSleep(s.sleep)),
		Speech:  speech.New(scfg, srv.Client(), logger),
		Prompts: prompts.Defaults(),
		Logger:  logger,
	}, s
}

func janeDoe() pipeline.Request {
	return pipeline.Request{
		PatientName: "Jane Doe",
		Files: []pipeline.File{
			{Name: "bilan.pdf", ContentType: "application/pdf", Data: []byte("%PDF-1.7 bilan"), PageCount: 2},
		},
	}
}

func TestExecuteJaneDoe(t *testing.T) {
	p := &provider{t: t, fileState: gemini.StateActive, genText: "```json\n" + janeDoeBrief + "\n```", ttsStatus: http.StatusOK}
	rt, _ := newRuntime(t, p, nil)

	result, err := pipeline.Execute(context.Background(), rt, janeDoe())
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if got := len(result.Brief.RedFlags); got != 1 {
		t.Errorf("red flags = %d, want 1", got)
	}
	if result.Brief.Inconsistencies == nil || len(result.Brief.Inconsistencies) != 0 {
		t.Errorf("inconsistencies = %#v, want empty non-nil", result.Brief.Inconsistencies)
	}
	if !result.Narration.OK() {
		t.Fatalf("narration failed: %v", result.Narration.Err)
	}

	audio, err := base64.StdEncoding.DecodeString(result.Narration.Audio)
	if err != nil || string(audio) != "ID3-mpeg-bytes" {
		t.Errorf("audio = %q (%v)", audio, err)
	}
	if result.Duration <= 0 {
		t.Error("duration not recorded")
	}

	if len(result.Files) != 1 || result.Files[0].Handle.URI != "https://gemini/files/f1" || result.Files[0].PageCount != 2 {
		t.Errorf("files = %+v", result.Files)
	}
	if p.polls != 0 {
		t.Errorf("polls = %d, want 0 for active upload", p.polls)
	}
}

func TestExecuteRequestShape(t *testing.T) {
	p := &provider{t: t, fileState: gemini.StateActive, genText: janeDoeBrief, ttsStatus: http.StatusOK}
	rt, _ := newRuntime(t, p, nil)

	req := janeDoe()
	req.Files = append(req.Files, pipeline.File{Name: "radio.png", ContentType: "image/png", Data: []byte("png")})

	if _, err := pipeline.Execute(context.Background(), rt, req); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if len(p.genRequests) != 1 {
		t.Fatalf("generate calls = %d", len(p.genRequests))
	}

	gen := p.genRequests[0]
	parts := gen.Contents[0].Parts
	if len(parts) != 3 || parts[0].Text == "" {
		t.Fatalf("parts = %+v", parts)
	}
	if parts[1].FileData.MimeType != "application/pdf" || parts[2].FileData.MimeType != "image/png" {
		t.Errorf("file part types = %s, %s", parts[1].FileData.MimeType, parts[2].FileData.MimeType)
	}
	if parts[1].FileData.FileURI != "https://gemini/files/f1" || parts[2].FileData.FileURI != "https://gemini/files/f2" {
		t.Error("file parts out of input order")
	}

	cfg := gen.GenerationConfig
	if cfg.Temperature != 0.2 || cfg.TopK != 40 || cfg.TopP != 0.95 || cfg.MaxOutputTokens != 8192 {
		t.Errorf("generation config = %+v", cfg)
	}
	if cfg.ResponseSchema == nil || len(cfg.ResponseSchema.Required) != 8 {
		t.Error("response schema missing required fields")
	}
}

func TestExecuteAudioFailureIsNotFatal(t *testing.T) {
	p := &provider{t: t, fileState: gemini.StateActive, genText: janeDoeBrief, ttsStatus: http.StatusUnauthorized}
	rt, _ := newRuntime(t, p, nil)

	result, err := pipeline.Execute(context.Background(), rt, janeDoe())
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if result.Narration.OK() || result.Narration.AudioPtr() != nil {
		t.Error("expected no audio")
	}
	if !errors.Is(result.Narration.Err, speech.ErrSynthesis) {
		t.Errorf("narration err = %v", result.Narration.Err)
	}
}

func TestExecuteWithoutSpeech(t *testing.T) {
	p := &provider{t: t, fileState: gemini.StateActive, genText: janeDoeBrief}
	rt, _ := newRuntime(t, p, nil)
	rt.Speech = nil

	result, err := pipeline.Execute(context.Background(), rt, janeDoe())
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !errors.Is(result.Narration.Err, speech.ErrNotConfigured) {
		t.Errorf("narration err = %v", result.Narration.Err)
	}
}

func TestExecuteRetriesOverload(t *testing.T) {
	p := &provider{
		t:           t,
		fileState:   gemini.StateActive,
		genStatuses: []int{http.StatusServiceUnavailable, http.StatusServiceUnavailable},
		genText:     janeDoeBrief,
		ttsStatus:   http.StatusOK,
	}
	rt, s := newRuntime(t, p, nil)

	if _, err := pipeline.Execute(context.Background(), rt, janeDoe()); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if p.genCalls != 3 {
		t.Errorf("generate calls = %d, want 3", p.genCalls)
	}
	if s.total < 6*time.Second {
		t.Errorf("backoff = %s, want at least 6s", s.total)
	}
}

func TestExecutePollingCeiling(t *testing.T) {
	p := &provider{t: t, fileState: gemini.StateProcessing, genText: janeDoeBrief, ttsStatus: http.StatusOK}

	t.Run("proceeds by default", func(t *testing.T) {
		rt, _ := newRuntime(t, p, nil)

		result, err := pipeline.Execute(context.Background(), rt, janeDoe())
		if err != nil {
			t.Fatalf("Execute: %v", err)
		}
		if p.polls != 30 {
			t.Errorf("polls = %d, want 30", p.polls)
		}
		if result.Files[0].Handle.State != gemini.StateProcessing {
			t.Errorf("state = %s", result.Files[0].Handle.State)
		}
	})

	t.Run("fails when active required", func(t *testing.T) {
		p.polls, p.genCalls = 0, 0
		rt, _ := newRuntime(t, p, func(c *gemini.Config) { c.RequireActive = true })

		_, err := pipeline.Execute(context.Background(), rt, janeDoe())
		if !errors.Is(err, gemini.ErrUpload) {
			t.Fatalf("err = %v, want ErrUpload", err)
		}
		if p.genCalls != 0 {
			t.Error("generation attempted after upload failure")
		}
	})
}

func TestExecuteFailedFileAbortsBatch(t *testing.T) {
	p := &provider{t: t, fileState: gemini.StateFailed, genText: janeDoeBrief}
	rt, _ := newRuntime(t, p, nil)

	_, err := pipeline.Execute(context.Background(), rt, janeDoe())
	if !errors.Is(err, gemini.ErrUpload) {
		t.Fatalf("err = %v, want ErrUpload", err)
	}
	if p.genCalls != 0 {
		t.Error("generation attempted after failed file")
	}
}

func TestExecuteParseFailure(t *testing.T) {
	p := &provider{t: t, fileState: gemini.StateActive, genText: "Je ne peux pas analyser ces documents.", ttsStatus: http.StatusOK}
	rt, _ := newRuntime(t, p, nil)

	_, err := pipeline.Execute(context.Background(), rt, janeDoe())
	if !errors.Is(err, pipeline.ErrParse) {
		t.Fatalf("err = %v, want ErrParse", err)
	}
	if len(p.ttsScripts) != 0 {
		t.Error("narration attempted after parse failure")
	}
}

func TestExecuteValidation(t *testing.T) {
	p := &provider{t: t}
	rt, _ := newRuntime(t, p, nil)

	tests := []struct {
		name string
		req  pipeline.Request
	}{
		{"blank patient", pipeline.Request{PatientName: " ", Files: janeDoe().Files}},
		{"no files", pipeline.Request{PatientName: "Jane Doe"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := pipeline.Execute(context.Background(), rt, tt.req); !errors.Is(err, pipeline.ErrInvalidRequest) {
				t.Errorf("err = %v", err)
			}
		})
	}

	rt.Gemini = gemini.New(gemini.Config{}, rt.Logger)
	if _, err := pipeline.Execute(context.Background(), rt, janeDoe()); !errors.Is(err, gemini.ErrNotConfigured) {
		t.Errorf("err = %v, want ErrNotConfigured", err)
	}
}
