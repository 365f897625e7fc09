// Package agent runs a text-mode clinic receptionist that answers callers and
// drives the scheduling tools through Gemini function calling.
package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"google.golang.org/api/option"

	"github.com/wolfman30/clinic-scheduler/internal/tools"
	"github.com/wolfman30/clinic-scheduler/pkg/logging"
)

var tracer = otel.Tracer("clinic.internal.agent")

const (
	defaultModelID      = "gemini-2.5-flash"
	defaultMaxToolSteps = 6
	greetingPrompt      = "Greet the caller and offer your assistance."
)

var (
	// ErrEmptyUtterance is returned when the caller said nothing.
	ErrEmptyUtterance = errors.New("agent: empty utterance")
	// ErrTooManyToolCalls stops a reply that keeps requesting tools.
	ErrTooManyToolCalls = errors.New("agent: too many tool calls in one reply")
)

// ToolInvoker is the subset of the tool registry the receptionist needs.
type ToolInvoker interface {
	Definitions() []tools.Definition
	Invoke(ctx context.Context, name string, args map[string]any) (tools.Result, error)
}

// Config configures the receptionist.
type Config struct {
	APIKey       string
	ModelID      string
	ClinicName   string
	Location     *time.Location
	MaxToolSteps int
}

// Receptionist owns the Gemini client and starts conversations.
type Receptionist struct {
	client  *genai.Client
	cfg     Config
	invoker ToolInvoker
	logger  *logging.Logger
}

// New creates a receptionist backed by the Gemini API.
func New(ctx context.Context, cfg Config, invoker ToolInvoker, logger *logging.Logger) (*Receptionist, error) {
	if invoker == nil {
		panic("agent: tool invoker required")
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("agent: gemini api key is required")
	}
	if strings.TrimSpace(cfg.ModelID) == "" {
		cfg.ModelID = defaultModelID
	}
	if cfg.MaxToolSteps <= 0 {
		cfg.MaxToolSteps = defaultMaxToolSteps
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if logger == nil {
		logger = logging.Default()
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("agent: failed to create gemini client: %w", err)
	}
	return &Receptionist{client: client, cfg: cfg, invoker: invoker, logger: logger}, nil
}

// NewSession starts a conversation with its own chat history.
func (r *Receptionist) NewSession() *Session {
	model := r.client.GenerativeModel(r.cfg.ModelID)
	model.SetTemperature(0.3)
	model.SystemInstruction = genai.NewUserContent(genai.Text(SystemInstruction(r.cfg.ClinicName, r.cfg.Location)))
	model.Tools = []*genai.Tool{{FunctionDeclarations: FunctionDeclarations(r.invoker.Definitions())}}
	return newSession(model.StartChat(), r.invoker, r.cfg.MaxToolSteps, r.logger)
}

// Close releases resources held by the Gemini client.
func (r *Receptionist) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}

// SystemInstruction is the receptionist persona.
func SystemInstruction(clinicName string, loc *time.Location) string {
	if strings.TrimSpace(clinicName) == "" {
		clinicName = "the dental clinic"
	}
	if loc == nil {
		loc = time.UTC
	}
	lines := []string{
		fmt.Sprintf("You are a helpful and polite receptionist at %s.", clinicName),
		"You're responsible for taking appointments from callers, checking availability for appointment timings and doctors, and cancelling appointments.",
		"Keep your responses concise and conversational.",
		fmt.Sprintf("The clinic operates in the %s time zone. Call current_time_date before resolving relative dates such as tomorrow or next Monday.", loc.String()),
		"Always check availability before booking, and collect the patient's name and phone number first.",
		"Read back the appointment ID after a booking so the caller can cancel later.",
	}
	return strings.Join(lines, "\n")
}

type chatSession interface {
	SendMessage(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// Session is one caller conversation. It is not safe for concurrent use.
type Session struct {
	chat     chatSession
	invoker  ToolInvoker
	maxSteps int
	logger   *logging.Logger
}

func newSession(chat chatSession, invoker ToolInvoker, maxSteps int, logger *logging.Logger) *Session {
	if maxSteps <= 0 {
		maxSteps = defaultMaxToolSteps
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Session{chat: chat, invoker: invoker, maxSteps: maxSteps, logger: logger}
}

// Greet asks the model to open the conversation.
func (s *Session) Greet(ctx context.Context) (string, error) {
	return s.Reply(ctx, greetingPrompt)
}

// Reply sends the caller's utterance and runs any tool calls the model makes
// until it answers in text.
func (s *Session) Reply(ctx context.Context, utterance string) (string, error) {
	utterance = strings.TrimSpace(utterance)
	if utterance == "" {
		return "", ErrEmptyUtterance
	}

	ctx, span := tracer.Start(ctx, "agent.reply")
	defer span.End()

	parts := []genai.Part{genai.Text(utterance)}
	for step := 0; ; step++ {
		resp, err := s.chat.SendMessage(ctx, parts...)
		if err != nil {
			span.RecordError(err)
			return "", fmt.Errorf("agent: gemini request failed: %w", err)
		}
		text, calls, err := splitResponse(resp)
		if err != nil {
			return "", err
		}
		if len(calls) == 0 {
			span.SetAttributes(attribute.Int("agent.tool_steps", step))
			return text, nil
		}
		if step >= s.maxSteps {
			return "", ErrTooManyToolCalls
		}

		next := make([]genai.Part, 0, len(calls))
		for _, call := range calls {
			next = append(next, s.runTool(ctx, call))
		}
		parts = next
	}
}

func (s *Session) runTool(ctx context.Context, call genai.FunctionCall) genai.FunctionResponse {
	res, err := s.invoker.Invoke(ctx, call.Name, call.Args)
	if err != nil {
		s.logger.Warn("agent: tool call rejected", "tool", call.Name, "error", err)
		res = tools.Result{Text: "That tool is not available.", Outcome: "error"}
	}
	return functionResponse(call.Name, res)
}

// splitResponse separates the text and function-call parts of the first
// candidate.
func splitResponse(resp *genai.GenerateContentResponse) (string, []genai.FunctionCall, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", nil, errors.New("agent: gemini returned no candidates")
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", nil, errors.New("agent: gemini returned empty content")
	}

	var text strings.Builder
	var calls []genai.FunctionCall
	for _, part := range candidate.Content.Parts {
		switch p := part.(type) {
		case genai.Text:
			text.WriteString(string(p))
		case genai.FunctionCall:
			calls = append(calls, p)
		case *genai.FunctionCall:
			if p != nil {
				calls = append(calls, *p)
			}
		}
	}
	out := strings.TrimSpace(text.String())
	if out == "" && len(calls) == 0 {
		return "", nil, errors.New("agent: gemini returned no text")
	}
	return out, calls, nil
}
