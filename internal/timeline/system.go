package timeline

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/medbrief/pkg/pagination"
)

// System defines the public contract for timeline operations.
type System interface {
	Handler() *Handler

	// Record inserts drafts for summaryID in one transaction and returns the
	// stored events newest first. Drafts with unparseable dates are dropped.
	Record(ctx context.Context, summaryID uuid.UUID, drafts []Draft) ([]Event, error)

	// ListBySummary returns a summary's events, newest first.
	ListBySummary(ctx context.Context, summaryID uuid.UUID) ([]Event, error)

	List(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Event], error)
}
