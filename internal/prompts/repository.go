package prompts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/JaimeStill/medbrief/pkg/pagination"
	"github.com/JaimeStill/medbrief/pkg/query"
	"github.com/JaimeStill/medbrief/pkg/repository"
)

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a prompt repository implementing the System interface.
// Prompts are stored in the prompts table, at most one active per stage.
func New(
	db *sql.DB,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		db:         db,
		logger:     logger.With("system", "prompts"),
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Prompt], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort...).
		WhereSearch(page.Search, "Name", "Description")
	filters.Apply(qb)

	result, err := repository.QueryPage(ctx, r.db, qb, page, scanPrompt)
	if err != nil {
		return nil, fmt.Errorf("list prompts: %w", err)
	}
	return result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Prompt, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	p, err := repository.QueryOne(ctx, r.db, q, args, scanPrompt)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &p, nil
}

// Instructions returns the active override for stage, or the built-in
// default when no override is active.
func (r *repo) Instructions(ctx context.Context, stage Stage) (string, error) {
	if _, err := ParseStage(string(stage)); err != nil {
		return "", err
	}

	var text string
	err := r.db.QueryRowContext(ctx,
		"SELECT instructions FROM prompts WHERE stage = $1 AND active = true",
		stage,
	).Scan(&text)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		return DefaultInstructions(stage)
	case err != nil:
		return "", fmt.Errorf("load active prompt for %s: %w", stage, err)
	}
	return text, nil
}

// Spec is never overridden.
func (r *repo) Spec(_ context.Context, stage Stage) (string, error) {
	return DefaultSpec(stage)
}

const promptColumns = "id, name, stage, instructions, description, active"

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Prompt, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	return r.write(ctx, "prompt created", func(tx *sql.Tx) (Prompt, error) {
		return repository.QueryOne(ctx, tx,
			"INSERT INTO prompts(name, stage, instructions, description) VALUES ($1, $2, $3, $4) RETURNING "+promptColumns,
			[]any{cmd.Name, cmd.Stage, cmd.Instructions, cmd.Description},
			scanPrompt,
		)
	})
}

// Update replaces every field but Active. Moving an active prompt to a stage
// that already has an active prompt fails with ErrDuplicate.
func (r *repo) Update(ctx context.Context, id uuid.UUID, cmd UpdateCommand) (*Prompt, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	return r.write(ctx, "prompt updated", func(tx *sql.Tx) (Prompt, error) {
		return repository.QueryOne(ctx, tx,
			"UPDATE prompts SET name = $1, stage = $2, instructions = $3, description = $4 WHERE id = $5 RETURNING "+promptColumns,
			[]any{cmd.Name, cmd.Stage, cmd.Instructions, cmd.Description, id},
			scanPrompt,
		)
	})
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	err := repository.ExecExpectOne(ctx, r.db, "DELETE FROM prompts WHERE id = $1", id)
	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.InfoContext(ctx, "prompt deleted", "id", id)
	return nil
}

// Activate makes id the stage's only active prompt. The current holder is
// cleared first so the one-active-per-stage index never sees two.
func (r *repo) Activate(ctx context.Context, id uuid.UUID) (*Prompt, error) {
	return r.write(ctx, "prompt activated", func(tx *sql.Tx) (Prompt, error) {
		var stage Stage
		err := tx.QueryRowContext(ctx, "SELECT stage FROM prompts WHERE id = $1 FOR UPDATE", id).Scan(&stage)
		if err != nil {
			return Prompt{}, err
		}

		if _, err := tx.ExecContext(ctx,
			"UPDATE prompts SET active = false WHERE stage = $1 AND active = true AND id <> $2",
			stage, id,
		); err != nil {
			return Prompt{}, fmt.Errorf("deactivate current: %w", err)
		}

		return repository.QueryOne(ctx, tx,
			"UPDATE prompts SET active = true WHERE id = $1 RETURNING "+promptColumns,
			[]any{id},
			scanPrompt,
		)
	})
}

// Deactivate restores the built-in default for the prompt's stage.
func (r *repo) Deactivate(ctx context.Context, id uuid.UUID) (*Prompt, error) {
	return r.write(ctx, "prompt deactivated", func(tx *sql.Tx) (Prompt, error) {
		return repository.QueryOne(ctx, tx,
			"UPDATE prompts SET active = false WHERE id = $1 RETURNING "+promptColumns,
			[]any{id},
			scanPrompt,
		)
	})
}

// write runs fn in a transaction, maps storage errors to domain errors and
// logs msg on success.
func (r *repo) write(ctx context.Context, msg string, fn func(*sql.Tx) (Prompt, error)) (*Prompt, error) {
	p, err := repository.WithTx(ctx, r.db, fn)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.InfoContext(ctx, msg, "id", p.ID, "name", p.Name, "stage", p.Stage, "active", p.Active)
	return &p, nil
}
