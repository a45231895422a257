package chat

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/JaimeStill/medbrief/internal/prompts"
	"github.com/JaimeStill/medbrief/pkg/gemini"
)

type assistant struct {
	summaries Summaries
	gemini    *gemini.Client
	prompts   prompts.Source
	logger    *slog.Logger
}

// New creates a chat system backed by the stored summaries.
func New(summaries Summaries, client *gemini.Client, src prompts.Source, logger *slog.Logger) System {
	return &assistant{
		summaries: summaries,
		gemini:    client,
		prompts:   src,
		logger:    logger.With("system", "chat"),
	}
}

func (a *assistant) Handler() *Handler {
	return NewHandler(a, a.logger)
}

func (a *assistant) Ask(ctx context.Context, summaryID uuid.UUID, conv *Conversation, question string) (Message, error) {
	if err := conv.Append(Message{Role: RoleUser, Content: question}); err != nil {
		return Message{}, err
	}
	return a.Reply(ctx, summaryID, conv)
}

func (a *assistant) Reply(ctx context.Context, summaryID uuid.UUID, conv *Conversation) (Message, error) {
	if summaryID == uuid.Nil || conv == nil || conv.Len() == 0 {
		return Message{}, ErrInvalidInput
	}
	if a.gemini == nil || !a.gemini.Configured() {
		return Message{}, gemini.ErrNotConfigured
	}

	summary, err := a.summaries.Find(ctx, summaryID)
	if err != nil {
		return Message{}, err
	}

	handles := Handles(summary)
	if len(handles) == 0 {
		return Message{}, ErrNoFiles
	}

	instruction, err := prompts.Compose(ctx, a.prompts, prompts.StageChat, "Patient : "+summary.PatientName)
	if err != nil {
		return Message{}, fmt.Errorf("%w: %w", ErrChat, err)
	}

	a.logger.InfoContext(ctx, "chat request",
		"summary_id", summaryID,
		"turns", conv.Len(),
		"files", len(handles),
	)

	resp, err := a.gemini.GenerateOnce(ctx, BuildRequest(instruction, conv.Turns(), handles))
	if err != nil {
		return Message{}, fmt.Errorf("%w: %w", ErrChat, err)
	}

	reply := Message{Role: RoleAssistant, Content: resp.Text()}
	if err := conv.Append(reply); err != nil {
		return Message{}, fmt.Errorf("%w: %w", ErrChat, err)
	}
	return reply, nil
}
