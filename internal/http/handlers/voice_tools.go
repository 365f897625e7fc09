package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/wolfman30/clinic-scheduler/internal/tools"
	"github.com/wolfman30/clinic-scheduler/pkg/logging"
)

// ----- Voice assistant webhook event types -----

// VoiceToolEvent is the webhook payload a hosted voice assistant sends when
// its model decides to call one of our tools mid-conversation.
type VoiceToolEvent struct {
	// AssistantID is the assistant that originated the event.
	AssistantID string `json:"assistant_id,omitempty"`
	// ConversationID groups turns within a single call.
	ConversationID string `json:"conversation_id,omitempty"`
	// EventType identifies the webhook event (e.g. "tool_call").
	EventType string `json:"event_type,omitempty"`
	// From is the caller's phone number (E.164).
	From    string           `json:"from,omitempty"`
	Payload VoiceToolPayload `json:"payload"`
}

// VoiceToolPayload carries the tool invocation details.
type VoiceToolPayload struct {
	ToolName string `json:"tool_name"`
	// ToolCallID must be echoed back so the assistant can correlate the result.
	ToolCallID string         `json:"tool_call_id"`
	Arguments  map[string]any `json:"arguments,omitempty"`
}

// VoiceToolResponse is returned to the assistant. Response is spoken to the
// caller; Result is the tool's raw value for the assistant's model.
type VoiceToolResponse struct {
	ToolCallID string `json:"tool_call_id"`
	Response   string `json:"response"`
	Result     any    `json:"result"`
	Outcome    string `json:"outcome"`
}

// VoiceToolErrorResponse is returned when the event cannot be processed.
type VoiceToolErrorResponse struct {
	ToolCallID string `json:"tool_call_id,omitempty"`
	Error      string `json:"error"`
}

// ToolInvoker runs named tools. Implemented by *tools.Registry.
type ToolInvoker interface {
	Invoke(ctx context.Context, name string, args map[string]any) (tools.Result, error)
	Definitions() []tools.Definition
}

// VoiceToolsHandler adapts voice assistant tool-call webhooks onto the tool
// registry.
type VoiceToolsHandler struct {
	tools  ToolInvoker
	logger *logging.Logger
}

func NewVoiceToolsHandler(invoker ToolInvoker, logger *logging.Logger) *VoiceToolsHandler {
	if invoker == nil {
		panic("handlers: tool invoker required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &VoiceToolsHandler{tools: invoker, logger: logger}
}

// HandleToolCall is the HTTP handler for POST /webhooks/voice/tools.
// Scheduling failures are answered with 200 and a spoken explanation so the
// assistant can relay them; only malformed events get an error status.
func (h *VoiceToolsHandler) HandleToolCall(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		h.logger.Error("voice-tools: failed to read body", "error", err)
		writeJSON(w, http.StatusBadRequest, VoiceToolErrorResponse{Error: "bad request"})
		return
	}

	var event VoiceToolEvent
	if err := json.Unmarshal(body, &event); err != nil {
		h.logger.Warn("voice-tools: failed to parse event", "error", err)
		writeJSON(w, http.StatusBadRequest, VoiceToolErrorResponse{Error: "bad request"})
		return
	}

	callID := event.Payload.ToolCallID
	name := strings.TrimSpace(event.Payload.ToolName)
	if name == "" {
		writeJSON(w, http.StatusBadRequest, VoiceToolErrorResponse{ToolCallID: callID, Error: "tool_name is required"})
		return
	}

	h.logger.Info("voice-tools: received tool call",
		"event_type", event.EventType,
		"assistant_id", event.AssistantID,
		"conversation_id", event.ConversationID,
		"tool_name", name,
		"tool_call_id", callID,
	)

	res, err := h.tools.Invoke(r.Context(), name, event.Payload.Arguments)
	if errors.Is(err, tools.ErrUnknownTool) {
		writeJSON(w, http.StatusNotFound, VoiceToolErrorResponse{ToolCallID: callID, Error: "unknown tool"})
		return
	}
	if err != nil {
		h.logger.Error("voice-tools: invoke failed", "tool_name", name, "error", err)
		writeJSON(w, http.StatusOK, VoiceToolResponse{
			ToolCallID: callID,
			Response:   "I'm sorry, I'm having a bit of trouble. Could you say that again?",
			Outcome:    "error",
		})
		return
	}

	writeJSON(w, http.StatusOK, VoiceToolResponse{
		ToolCallID: callID,
		Response:   res.Text,
		Result:     res.Value(),
		Outcome:    res.Outcome,
	})
}
