package timeline

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/JaimeStill/medbrief/pkg/pagination"
	"github.com/JaimeStill/medbrief/pkg/query"
	"github.com/JaimeStill/medbrief/pkg/repository"
)

const insertColumns = 5

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a timeline repository implementing the System interface.
func New(db *sql.DB, logger *slog.Logger, pagination pagination.Config) System {
	return &repo{
		db:         db,
		logger:     logger.With("system", "timeline"),
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) Record(ctx context.Context, summaryID uuid.UUID, drafts []Draft) ([]Event, error) {
	rows, skipped := prepare(drafts)
	for _, d := range skipped {
		r.logger.WarnContext(ctx, "timeline event dropped",
			"summary_id", summaryID,
			"event_date", d.EventDate,
			"description", d.Description,
		)
	}

	if len(rows) == 0 {
		return []Event{}, nil
	}

	q, args := insertBatch(summaryID, rows)

	events, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) ([]Event, error) {
		return repository.QueryMany(ctx, tx, q, args, scanInserted)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRecord, err)
	}

	// same order ListBySummary serves
	slices.SortStableFunc(events, func(a, b Event) int {
		return b.EventDate.Compare(a.EventDate)
	})

	r.logger.InfoContext(ctx, "timeline recorded", "summary_id", summaryID, "events", len(events))
	return events, nil
}

func insertBatch(summaryID uuid.UUID, rows []row) (string, []any) {
	values := make([]string, len(rows))
	args := make([]any, 0, len(rows)*insertColumns)

	for i, row := range rows {
		n := i * insertColumns
		values[i] = fmt.Sprintf("($%d, $%d, $%d, $%d, $%d)", n+1, n+2, n+3, n+4, n+5)
		args = append(args, summaryID, row.date, row.typ, row.desc, row.source)
	}

	q := `
		INSERT INTO medical_timeline(summary_id, event_date, event_type, description, document_source)
		VALUES ` + strings.Join(values, ", ") + `
		RETURNING id, summary_id, event_date, event_type, description, document_source, created_at`

	return q, args
}

func (r *repo) ListBySummary(ctx context.Context, summaryID uuid.UUID) ([]Event, error) {
	q, args := query.
		NewBuilder(projection, defaultSort).
		WhereEquals("SummaryID", summaryID).
		Build()

	events, err := repository.QueryMany(ctx, r.db, q, args, scanEvent)
	if err != nil {
		return nil, fmt.Errorf("query timeline: %w", err)
	}
	return events, nil
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Event], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Description", "DocumentSource", "PatientName")
	filters.Apply(qb)

	result, err := repository.QueryPage(ctx, r.db, qb, page, scanEvent)
	if err != nil {
		return nil, fmt.Errorf("list timeline events: %w", err)
	}
	return result, nil
}
