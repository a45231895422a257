package letters

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/medbrief/internal/summaries"
)

// Summaries resolves the stored summary a letter is drafted from.
type Summaries interface {
	Find(ctx context.Context, id uuid.UUID) (*summaries.ClinicalSummary, error)
}

// System defines the public contract for letter operations.
type System interface {
	Handler() *Handler

	// Generate drafts a letter and stores it, replacing any previous letter
	// of the same kind for the summary.
	Generate(ctx context.Context, cmd GenerateCommand) (*Letter, error)

	ListBySummary(ctx context.Context, summaryID uuid.UUID) ([]Letter, error)
	Find(ctx context.Context, id uuid.UUID) (*Letter, error)

	// Update saves clinician edits and marks the letter as edited.
	Update(ctx context.Context, id uuid.UUID, cmd UpdateCommand) (*Letter, error)
}
