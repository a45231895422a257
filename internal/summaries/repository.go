package summaries

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/medbrief/internal/pipeline"
	"github.com/JaimeStill/medbrief/internal/timeline"
	"github.com/JaimeStill/medbrief/pkg/formatting"
	"github.com/JaimeStill/medbrief/pkg/gemini"
	"github.com/JaimeStill/medbrief/pkg/pagination"
	"github.com/JaimeStill/medbrief/pkg/query"
	"github.com/JaimeStill/medbrief/pkg/repository"
	"github.com/JaimeStill/medbrief/pkg/speech"
	"github.com/JaimeStill/medbrief/pkg/storage"
)

const timelineAttempts = 2

type repo struct {
	db         *sql.DB
	storage    storage.System
	timeline   timeline.System
	rt         *pipeline.Runtime
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a summary repository implementing the System interface.
func New(
	db *sql.DB,
	store storage.System,
	events timeline.System,
	rt *pipeline.Runtime,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		db:         db,
		storage:    store,
		timeline:   events,
		rt:         rt,
		logger:     logger.With("system", "summaries"),
		pagination: pagination,
	}
}

func (r *repo) Handler(maxUploadSize int64, maxFiles int) *Handler {
	return NewHandler(r, r.logger, r.pagination, maxUploadSize, maxFiles)
}

func (r *repo) Generate(ctx context.Context, cmd GenerateCommand) (*ClinicalSummary, error) {
	if r.rt.Gemini == nil || !r.rt.Gemini.Configured() {
		return nil, gemini.ErrNotConfigured
	}
	if r.rt.Speech == nil || !r.rt.Speech.Configured() {
		return nil, speech.ErrNotConfigured
	}

	start := time.Now()

	result, err := pipeline.Execute(ctx, r.rt, pipeline.Request{
		PatientName: cmd.PatientName,
		Files:       cmd.Files,
	})
	if err != nil {
		return nil, err
	}

	id := uuid.New()

	keys, err := r.archive(ctx, id, cmd.Files)
	if err != nil {
		return nil, fmt.Errorf("%w: archive documents: %w", ErrStorage, err)
	}

	elapsed := max(int(time.Since(start).Milliseconds()), 1)
	summary := assemble(id, cmd.PatientName, result, keys, elapsed)

	stored, err := r.insert(ctx, summary, result.Raw)
	if err != nil {
		r.discard(ctx, keys)
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	stored.TimelineEvents = r.recordTimeline(ctx, stored.ID, result.Brief.TimelineEvents)
	stored.normalize()

	r.logger.InfoContext(ctx, "summary created",
		"id", stored.ID,
		"patient", stored.PatientName,
		"files", len(stored.Files),
		"audio", stored.AudioBriefBase64 != nil,
		"generation_time_ms", elapsed,
	)
	return stored, nil
}

func assemble(id uuid.UUID, patientName string, result *pipeline.Result, keys []string, elapsed int) ClinicalSummary {
	files := make([]FileRef, len(result.Files))
	uris := make([]string, len(result.Files))

	for i, f := range result.Files {
		ref := FileRef{
			Filename:   f.Name,
			Size:       int64(f.Size),
			MimeType:   f.ContentType,
			FileURI:    f.Handle.URI,
			FileName:   f.Handle.Name,
			State:      f.Handle.State,
			StorageKey: keys[i],
		}
		if f.PageCount > 0 {
			ref.PageCount = &f.PageCount
		}
		files[i] = ref
		uris[i] = f.Handle.URI
	}

	b := result.Brief
	summary := ClinicalSummary{
		ID:                    id,
		PatientName:           patientName,
		Files:                 files,
		GeminiFileURIs:        uris,
		ResumeClinique:        b.ResumeClinique,
		PointsDeVigilance:     b.PointsDeVigilance,
		ComparaisonHistorique: b.ComparaisonHistorique,
		RedFlags:              b.RedFlags,
		NoteMedicaleBrute:     b.NoteMedicaleBrute,
		AExpliquerAuPatient:   b.AExpliquerAuPatient,
		AudioBriefBase64:      result.Narration.AudioPtr(),
		GenerationTimeMs:      &elapsed,
		Inconsistencies:       b.Inconsistencies,
	}
	summary.normalize()
	return summary
}

func (r *repo) archive(ctx context.Context, id uuid.UUID, files []pipeline.File) ([]string, error) {
	keys := make([]string, 0, len(files))

	for i, f := range files {
		key := buildStorageKey(id, i, f.Name)
		if err := r.storage.Upload(ctx, key, bytes.NewReader(f.Data), f.ContentType); err != nil {
			r.discard(ctx, keys)
			return nil, fmt.Errorf("upload %s: %w", f.Name, err)
		}
		keys = append(keys, key)
	}

	return keys, nil
}

func (r *repo) discard(ctx context.Context, keys []string) {
	for _, key := range keys {
		if err := r.storage.Delete(ctx, key); err != nil {
			r.logger.WarnContext(ctx, "compensating blob delete failed", "key", key, "error", err)
		}
	}
}

func (r *repo) insert(ctx context.Context, s ClinicalSummary, raw []byte) (*ClinicalSummary, error) {
	var rawArg any
	if len(raw) > 0 {
		rawArg = string(raw)
	}

	jsonArgs := make([]any, 0, 5)
	for _, v := range []any{s.Files, s.GeminiFileURIs, s.PointsDeVigilance, s.RedFlags, s.Inconsistencies} {
		arg, err := jsonArg(v)
		if err != nil {
			return nil, fmt.Errorf("encode summary: %w", err)
		}
		jsonArgs = append(jsonArgs, arg)
	}

	q := `
		INSERT INTO clinical_summaries(
			id, patient_name, files, gemini_file_uris, resume_clinique,
			points_de_vigilance, comparaison_historique, red_flags, note_medicale_brute,
			a_expliquer_au_patient, audio_brief_base64, generation_time_ms, inconsistencies, raw_response
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING ` + returning

	args := []any{
		s.ID,
		s.PatientName,
		jsonArgs[0],
		jsonArgs[1],
		s.ResumeClinique,
		jsonArgs[2],
		s.ComparaisonHistorique,
		jsonArgs[3],
		s.NoteMedicaleBrute,
		s.AExpliquerAuPatient,
		s.AudioBriefBase64,
		s.GenerationTimeMs,
		jsonArgs[4],
		rawArg,
	}

	stored, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (ClinicalSummary, error) {
		return repository.QueryOne(ctx, tx, q, args, scanSummary)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &stored, nil
}

const returning = `id, created_at, patient_name, files, gemini_file_uris, resume_clinique,
			points_de_vigilance, comparaison_historique, red_flags, note_medicale_brute,
			a_expliquer_au_patient, audio_brief_base64, generation_time_ms, inconsistencies`

// recordTimeline writes the extracted events after the summary commits.
// Failure leaves the summary without a timeline.
func (r *repo) recordTimeline(ctx context.Context, id uuid.UUID, events []pipeline.TimelineEvent) []timeline.Event {
	if len(events) == 0 {
		return nil
	}

	drafts := make([]timeline.Draft, len(events))
	for i, e := range events {
		drafts[i] = timeline.Draft{
			EventDate:      e.EventDate,
			EventType:      e.EventType,
			Description:    e.Description,
			DocumentSource: e.DocumentSource,
		}
	}

	var err error
	for attempt := 1; attempt <= timelineAttempts; attempt++ {
		var recorded []timeline.Event
		if recorded, err = r.timeline.Record(ctx, id, drafts); err == nil {
			return recorded
		}
		r.logger.WarnContext(ctx, "timeline insert failed", "summary_id", id, "attempt", attempt, "error", err)
	}

	r.logger.ErrorContext(ctx, "summary saved without timeline", "summary_id", id, "events", len(drafts), "error", err)
	return nil
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Item], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(itemProjection, defaultSort).
		WhereSearch(page.Search, "PatientName", "ResumeClinique")
	filters.Apply(qb)

	result, err := repository.QueryPage(ctx, r.db, qb, page, scanItem)
	if err != nil {
		return nil, fmt.Errorf("list summaries: %w", err)
	}
	return result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*ClinicalSummary, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	s, err := repository.QueryOne(ctx, r.db, q, args, scanSummary)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	events, err := r.timeline.ListBySummary(ctx, id)
	if err != nil {
		return nil, err
	}
	s.TimelineEvents = events
	s.normalize()

	return &s, nil
}

func (r *repo) Audio(ctx context.Context, id uuid.UUID) (io.Reader, error) {
	var audio sql.NullString
	err := r.db.QueryRowContext(
		ctx,
		"SELECT audio_brief_base64 FROM clinical_summaries WHERE id = $1",
		id,
	).Scan(&audio)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query audio: %w", err)
	}
	if !audio.Valid || audio.String == "" {
		return nil, ErrNoAudio
	}

	return formatting.DecodeBase64Reader(audio.String), nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	s, err := r.Find(ctx, id)
	if err != nil {
		return err
	}

	_, err = repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		return struct{}{}, repository.ExecExpectOne(
			ctx, tx,
			"DELETE FROM clinical_summaries WHERE id = $1",
			id,
		)
	})
	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	for _, f := range s.Files {
		if f.StorageKey == "" {
			continue
		}
		if err := r.storage.Delete(ctx, f.StorageKey); err != nil {
			r.logger.WarnContext(ctx, "blob delete failed after DB delete", "key", f.StorageKey, "error", err)
		}
	}

	r.logger.InfoContext(ctx, "summary deleted", "id", id)
	return nil
}

func buildStorageKey(id uuid.UUID, index int, filename string) string {
	return fmt.Sprintf("summaries/%s/%d-%s", id, index+1, sanitizeFilename(filename))
}

func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	if name == "." || name == "/" || name == "" {
		name = "document"
	}
	return url.PathEscape(name)
}
