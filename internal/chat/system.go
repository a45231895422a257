package chat

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/medbrief/internal/summaries"
)

// Summaries resolves the stored summary whose documents are discussed.
type Summaries interface {
	Find(ctx context.Context, id uuid.UUID) (*summaries.ClinicalSummary, error)
}

// System defines the public contract for chat operations.
type System interface {
	Handler() *Handler

	// Reply requests the next assistant turn for conv and appends it on
	// success. conv is left unchanged on failure.
	Reply(ctx context.Context, summaryID uuid.UUID, conv *Conversation) (Message, error)

	// Ask appends question as a user turn, then calls Reply.
	Ask(ctx context.Context, summaryID uuid.UUID, conv *Conversation, question string) (Message, error)
}
