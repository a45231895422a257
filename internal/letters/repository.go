package letters

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/JaimeStill/medbrief/internal/prompts"
	"github.com/JaimeStill/medbrief/internal/summaries"
	"github.com/JaimeStill/medbrief/pkg/gemini"
	"github.com/JaimeStill/medbrief/pkg/query"
	"github.com/JaimeStill/medbrief/pkg/repository"
)

type repo struct {
	db        *sql.DB
	summaries Summaries
	gemini    *gemini.Client
	prompts   prompts.Source
	logger    *slog.Logger
}

// New creates a letter repository implementing the System interface.
func New(
	db *sql.DB,
	summaries Summaries,
	client *gemini.Client,
	src prompts.Source,
	logger *slog.Logger,
) System {
	return &repo{
		db:        db,
		summaries: summaries,
		gemini:    client,
		prompts:   src,
		logger:    logger.With("system", "letters"),
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger)
}

func (r *repo) Generate(ctx context.Context, cmd GenerateCommand) (*Letter, error) {
	if cmd.SummaryID == uuid.Nil || cmd.LetterType == "" {
		return nil, ErrInvalidInput
	}
	if _, err := ParseKind(string(cmd.LetterType)); err != nil {
		return nil, err
	}
	if r.gemini == nil || !r.gemini.Configured() {
		return nil, gemini.ErrNotConfigured
	}

	summary, err := r.summaries.Find(ctx, cmd.SummaryID)
	if err != nil {
		return nil, err
	}

	prompt, err := Prompt(ctx, r.prompts, cmd.LetterType, summary)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", gemini.ErrGeneration, err)
	}

	resp, err := r.gemini.GenerateOnce(ctx, Request(prompt))
	if err != nil {
		return nil, err
	}

	q := `
		INSERT INTO medical_letters(summary_id, letter_type, content, is_edited)
		VALUES ($1, $2, $3, false)
		ON CONFLICT (summary_id, letter_type) DO UPDATE
		SET content = EXCLUDED.content, is_edited = false, updated_at = now()
		RETURNING ` + returning

	args := []any{cmd.SummaryID, string(cmd.LetterType), resp.Text()}

	letter, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Letter, error) {
		return repository.QueryOne(ctx, tx, q, args, scanLetter)
	})
	if err != nil {
		// the summary can be deleted while the model is writing
		if mapped := repository.MapError(err, summaries.ErrNotFound, ErrSave); errors.Is(mapped, summaries.ErrNotFound) {
			return nil, mapped
		}
		return nil, fmt.Errorf("%w: %w", ErrSave, err)
	}

	r.logger.InfoContext(ctx, "letter generated",
		"id", letter.ID,
		"summary_id", letter.SummaryID,
		"letter_type", letter.LetterType,
	)
	return &letter, nil
}

func (r *repo) ListBySummary(ctx context.Context, summaryID uuid.UUID) ([]Letter, error) {
	q, args := query.
		NewBuilder(projection, defaultSort).
		WhereEquals("SummaryID", summaryID).
		Build()

	letters, err := repository.QueryMany(ctx, r.db, q, args, scanLetter)
	if err != nil {
		return nil, fmt.Errorf("query letters: %w", err)
	}
	return letters, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Letter, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	l, err := repository.QueryOne(ctx, r.db, q, args, scanLetter)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrSave)
	}
	return &l, nil
}

func (r *repo) Update(ctx context.Context, id uuid.UUID, cmd UpdateCommand) (*Letter, error) {
	if strings.TrimSpace(cmd.Content) == "" {
		return nil, ErrEmptyContent
	}

	q := `
		UPDATE medical_letters
		SET content = $1, is_edited = true, updated_at = now()
		WHERE id = $2
		RETURNING ` + returning

	l, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Letter, error) {
		return repository.QueryOne(ctx, tx, q, []any{cmd.Content, id}, scanLetter)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrSave)
	}

	r.logger.InfoContext(ctx, "letter edited", "id", l.ID)
	return &l, nil
}
