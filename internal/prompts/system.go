package prompts

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/medbrief/pkg/pagination"
)

// Source resolves the text sent to the model for a stage.
type Source interface {
	// Instructions returns the tunable guidance for stage.
	Instructions(ctx context.Context, stage Stage) (string, error)
	// Spec returns the fixed output contract for stage.
	Spec(ctx context.Context, stage Stage) (string, error)
}

// System defines the public contract for prompt domain operations.
// Its Source methods prefer the active stored override.
type System interface {
	Source

	Handler() *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Prompt], error)

	Find(ctx context.Context, id uuid.UUID) (*Prompt, error)
	Create(ctx context.Context, cmd CreateCommand) (*Prompt, error)
	Update(ctx context.Context, id uuid.UUID, cmd UpdateCommand) (*Prompt, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Activate(ctx context.Context, id uuid.UUID) (*Prompt, error)
	Deactivate(ctx context.Context, id uuid.UUID) (*Prompt, error)
}
