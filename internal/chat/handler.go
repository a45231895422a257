package chat

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/JaimeStill/medbrief/pkg/gemini"
	"github.com/JaimeStill/medbrief/pkg/handlers"
	"github.com/JaimeStill/medbrief/pkg/openapi"
	"github.com/JaimeStill/medbrief/pkg/routes"
)

// Handler provides the chat HTTP endpoint.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// NewHandler creates a Handler with the given system and logger.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "chat"),
	}
}

// Routes returns the route group definition for the chat endpoint.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/chat",
		Tags:   []string{"Chat"},
		Routes: []routes.Route{
			{Method: "POST", Pattern: "", Handler: h.Chat, OpenAPI: &openapi.Operation{
				Summary:     "Ask a question about a summary's documents",
				Description: "The full history is replayed on every call. Nothing is persisted.",
				RequestBody: openapi.RequestBodyJSON("ChatRequest", true),
				Responses: map[int]*openapi.Response{
					200: openapi.ResponseJSON("Assistant reply", "ChatResponse"),
					400: openapi.ResponseRef("BadRequest"),
					404: openapi.ResponseRef("NotFound"),
					429: openapi.ResponseRef("TooManyRequests"),
					500: openapi.ResponseRef("InternalError"),
					502: openapi.ResponseRef("BadGateway"),
				},
			}},
		},
	}
}

// Schemas returns the component schemas referenced by Routes.
func Schemas() map[string]*openapi.Schema {
	return map[string]*openapi.Schema{
		"ChatMessage": {
			Type:     "object",
			Required: []string{"role", "content"},
			Properties: map[string]*openapi.Schema{
				"role":    {Type: "string", Enum: []any{RoleUser, RoleAssistant}},
				"content": {Type: "string"},
			},
		},
		"ChatRequest": {
			Type:     "object",
			Required: []string{"summaryId", "messages"},
			Properties: map[string]*openapi.Schema{
				"summaryId": {Type: "string", Format: "uuid"},
				"messages":  {Type: "array", Items: openapi.SchemaRef("ChatMessage")},
			},
		},
		"ChatResponse": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"success": {Type: "boolean"},
				"message": {Type: "string"},
			},
		},
	}
}

// Chat replays the posted history and returns the assistant's reply.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	if req.SummaryID == uuid.Nil || len(req.Messages) == 0 {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidInput)
		return
	}

	conv, err := NewConversation(req.Messages...)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	reply, err := h.sys.Reply(r.Context(), req.SummaryID, conv)
	if err != nil {
		status := MapHTTPStatus(err)
		if status == http.StatusTooManyRequests || status == http.StatusBadGateway {
			handlers.RespondRetry(w, h.logger, status, err, gemini.RetryAfter(err))
			return
		}
		handlers.RespondError(w, h.logger, status, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, Response{Success: true, Message: reply.Content})
}
