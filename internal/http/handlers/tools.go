package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"

	"github.com/wolfman30/clinic-scheduler/internal/tools"
	"github.com/wolfman30/clinic-scheduler/pkg/logging"
)

const maxBodyBytes = 1 << 20

// ToolsHandler serves the tool registry over plain JSON.
type ToolsHandler struct {
	tools  ToolInvoker
	logger *logging.Logger
}

func NewToolsHandler(invoker ToolInvoker, logger *logging.Logger) *ToolsHandler {
	if invoker == nil {
		panic("handlers: tool invoker required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &ToolsHandler{tools: invoker, logger: logger}
}

type toolDescriptor struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// ListTools handles GET /tools.
func (h *ToolsHandler) ListTools(w http.ResponseWriter, r *http.Request) {
	defs := h.tools.Definitions()
	out := make([]toolDescriptor, 0, len(defs))
	for _, d := range defs {
		out = append(out, toolDescriptor{Name: d.Name, Description: d.Description, Parameters: d.JSONSchema()})
	}
	writeJSON(w, http.StatusOK, map[string]any{"tools": out})
}

type toolResponse struct {
	Tool          string `json:"tool"`
	Outcome       string `json:"outcome"`
	Message       string `json:"message"`
	Value         any    `json:"value"`
	AppointmentID string `json:"appointment_id,omitempty"`
}

// InvokeTool handles POST /tools/{name}. The body is a JSON object of
// arguments and may be empty.
func (h *ToolsHandler) InvokeTool(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad request"})
		return
	}
	args := map[string]any{}
	if strings.TrimSpace(string(body)) != "" {
		if err := json.Unmarshal(body, &args); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "arguments must be a JSON object"})
			return
		}
	}

	res, err := h.tools.Invoke(r.Context(), name, args)
	if errors.Is(err, tools.ErrUnknownTool) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown tool"})
		return
	}
	if err != nil {
		h.logger.Error("tools: invoke failed", "tool_name", name, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	writeJSON(w, statusForOutcome(res.Outcome), toolResponse{
		Tool:          name,
		Outcome:       res.Outcome,
		Message:       res.Text,
		Value:         res.Value(),
		AppointmentID: res.AppointmentID,
	})
}

func statusForOutcome(outcome string) int {
	switch outcome {
	case "ok":
		return http.StatusOK
	case "invalid_doctor", "invalid_service", "invalid_format", "in_the_past":
		return http.StatusUnprocessableEntity
	case "slot_taken":
		return http.StatusConflict
	case "not_found":
		return http.StatusNotFound
	case "store_unavailable":
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// HealthCheck handles GET /health.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
