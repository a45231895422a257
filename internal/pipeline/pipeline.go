// Package pipeline turns a patient's uploaded documents into a structured
// clinical brief: register each file with Gemini, request a schema-bound
// summary, recover the JSON, and narrate a short audio brief.
//
// Steps run strictly in order. Upload failures, generation failures and
// parse failures are fatal to the run; narration failure is reported on the
// Result and never fails it.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/JaimeStill/medbrief/internal/prompts"
	"github.com/JaimeStill/medbrief/pkg/gemini"
	"github.com/JaimeStill/medbrief/pkg/speech"
)

// Errors returned by Execute in addition to the gemini sentinels.
var (
	ErrInvalidRequest = errors.New("patient name and at least one file are required")
	ErrParse          = errors.New("failed to parse ai response")
)

// Runtime bundles the clients a run needs. It is built once by the
// composition root and shared across runs.
type Runtime struct {
	Gemini  *gemini.Client
	Speech  *speech.Client
	Prompts prompts.Source
	Logger  *slog.Logger
}

// File is one accepted input document.
type File struct {
	Name        string
	ContentType string
	Data        []byte
	PageCount   int
}

// Request is the input to a single run.
type Request struct {
	PatientName string
	Files       []File
}

// Uploaded pairs an input document with its provider handle.
type Uploaded struct {
	Name        string
	ContentType string
	Size        int
	PageCount   int
	Handle      *gemini.File
}

// Result is the outcome of a successful run.
type Result struct {
	Brief     Brief
	Files     []Uploaded
	Narration Narration
	Raw       json.RawMessage
	Duration  time.Duration
}

// Execute runs upload, generate, extract and narrate for req.
func Execute(ctx context.Context, rt *Runtime, req Request) (*Result, error) {
	start := time.Now()

	if strings.TrimSpace(req.PatientName) == "" || len(req.Files) == 0 {
		return nil, ErrInvalidRequest
	}
	if rt.Gemini == nil || !rt.Gemini.Configured() {
		return nil, gemini.ErrNotConfigured
	}

	logger := rt.Logger.With("pipeline", "summary", "patient", req.PatientName)
	logger.InfoContext(ctx, "pipeline started", "files", len(req.Files))

	uploaded, err := upload(ctx, rt, logger, req.Files)
	if err != nil {
		return nil, err
	}

	resp, err := generate(ctx, rt, uploaded)
	if err != nil {
		return nil, err
	}

	brief, err := extract(resp.Text())
	if err != nil {
		logger.ErrorContext(ctx, "response extraction failed", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}

	narration := narrate(ctx, rt, req.PatientName, brief)
	if narration.Err != nil {
		logger.WarnContext(ctx, "audio brief skipped", "error", narration.Err)
	}

	result := &Result{
		Brief:     brief,
		Files:     uploaded,
		Narration: narration,
		Raw:       resp.Raw,
		Duration:  time.Since(start),
	}

	logger.InfoContext(ctx, "pipeline complete",
		"red_flags", len(brief.RedFlags),
		"inconsistencies", len(brief.Inconsistencies),
		"timeline_events", len(brief.TimelineEvents),
		"audio", narration.OK(),
		"duration", result.Duration,
	)

	return result, nil
}
