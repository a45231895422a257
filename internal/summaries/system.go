package summaries

import (
	"context"
	"io"

	"github.com/google/uuid"

	"github.com/JaimeStill/medbrief/pkg/pagination"
)

// System defines the public contract for summary operations.
type System interface {
	Handler(maxUploadSize int64, maxFiles int) *Handler

	// Generate runs the pipeline for cmd, archives the source documents and
	// stores the result. Timeline recording failures are logged, not returned.
	Generate(ctx context.Context, cmd GenerateCommand) (*ClinicalSummary, error)

	List(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Item], error)

	// Find returns the stored summary with its timeline.
	Find(ctx context.Context, id uuid.UUID) (*ClinicalSummary, error)

	// Audio returns the decoded narration. ErrNoAudio when none was produced.
	Audio(ctx context.Context, id uuid.UUID) (io.Reader, error)

	// Delete removes the summary, its timeline and letters, and then its
	// archived documents.
	Delete(ctx context.Context, id uuid.UUID) error
}
