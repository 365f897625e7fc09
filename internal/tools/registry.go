// Package tools exposes the scheduler as named tools that a voice or chat
// runtime can call with loosely typed arguments.
package tools

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/wolfman30/clinic-scheduler/internal/observability/metrics"
	"github.com/wolfman30/clinic-scheduler/internal/scheduling"
	"github.com/wolfman30/clinic-scheduler/pkg/logging"
)

// ErrUnknownTool is returned by Invoke for names not in the registry.
var ErrUnknownTool = errors.New("tools: unknown tool")

// Result is what a tool hands back to the runtime. Text is always set and
// safe to speak; Available is set only by the availability tool.
type Result struct {
	Text          string `json:"text"`
	Available     *bool  `json:"available,omitempty"`
	AppointmentID string `json:"appointment_id,omitempty"`
	// Outcome is "ok" or the scheduling error kind.
	Outcome string `json:"outcome"`
}

// OK reports whether the tool call succeeded.
func (r Result) OK() bool { return r.Outcome == "ok" }

// Value is the natural return value of the tool: a boolean for the
// availability check and text otherwise.
func (r Result) Value() any {
	if r.Available != nil {
		return *r.Available
	}
	return r.Text
}

type handlerFunc func(ctx context.Context, args map[string]any) (Result, error)

// Registry dispatches tool calls to the scheduler.
type Registry struct {
	scheduler *scheduling.Scheduler
	metrics   *metrics.SchedulerMetrics
	logger    *logging.Logger
	handlers  map[string]handlerFunc
}

// NewRegistry builds the registry. metrics may be nil.
func NewRegistry(s *scheduling.Scheduler, m *metrics.SchedulerMetrics, logger *logging.Logger) *Registry {
	if s == nil {
		panic("tools: scheduler required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	r := &Registry{scheduler: s, metrics: m, logger: logger}
	r.handlers = map[string]handlerFunc{
		ListDoctorsAndServices:  r.listDoctorsAndServices,
		CurrentTimeDate:         r.currentTimeDate,
		CheckDoctorAvailability: r.checkDoctorAvailability,
		BookAppointment:         r.bookAppointment,
		CancelAppointment:       r.cancelAppointment,
	}
	return r
}

// Definitions returns the tool schemas in a stable order. The service_key
// description lists the catalog's services so the model picks an exact key.
func (r *Registry) Definitions() []Definition {
	keys := strings.Join(r.scheduler.Catalog().ServiceKeys(), ", ")
	out := make([]Definition, 0, len(definitions))
	for _, def := range definitions {
		params := append([]Param(nil), def.Params...)
		for i := range params {
			if params[i].Name == "service_key" {
				params[i].Description += ". One of: " + keys
			}
		}
		def.Params = params
		out = append(out, def)
	}
	return out
}

// Invoke runs the named tool. Scheduling failures are reported in the Result
// with a caller-facing message; only an unknown name is an error.
func (r *Registry) Invoke(ctx context.Context, name string, args map[string]any) (Result, error) {
	handler, ok := r.handlers[name]
	if !ok {
		r.metrics.ObserveToolCall("unknown", "unknown_tool", 0)
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownTool, name)
	}
	if args == nil {
		args = map[string]any{}
	}

	start := time.Now()
	res, err := handler(ctx, args)
	elapsed := time.Since(start)

	outcome := scheduling.KindName(err)
	if err != nil {
		res = Result{Text: scheduling.CallerMessage(err)}
		r.logger.Warn("tool call failed",
			"tool", name,
			"outcome", outcome,
			"duration_ms", elapsed.Milliseconds(),
			"error", err,
		)
	} else {
		r.logger.Info("tool call completed",
			"tool", name,
			"duration_ms", elapsed.Milliseconds(),
		)
	}
	res.Outcome = outcome
	r.metrics.ObserveToolCall(name, outcome, elapsed.Seconds())
	return res, nil
}

func (r *Registry) listDoctorsAndServices(context.Context, map[string]any) (Result, error) {
	return Result{Text: r.scheduler.Catalog().Describe()}, nil
}

func (r *Registry) currentTimeDate(context.Context, map[string]any) (Result, error) {
	return Result{Text: r.scheduler.Clock().Now().Format(time.RFC3339)}, nil
}

func (r *Registry) checkDoctorAvailability(ctx context.Context, args map[string]any) (Result, error) {
	doctor, free, err := r.scheduler.CheckWindow(ctx, stringArg(args, "doctor_name"), stringArg(args, "start_time"), stringArg(args, "end_time"))
	if err != nil {
		return Result{}, err
	}
	text := fmt.Sprintf("%s is not available at that time.", doctor)
	if free {
		text = fmt.Sprintf("%s is available at that time.", doctor)
	}
	return Result{Text: text, Available: &free}, nil
}

func (r *Registry) bookAppointment(ctx context.Context, args map[string]any) (Result, error) {
	conf, err := r.scheduler.Book(ctx, scheduling.AppointmentRequest{
		PatientName:  stringArg(args, "patient_name"),
		PatientPhone: stringArg(args, "patient_phone"),
		Date:         stringArg(args, "date"),
		Time:         stringArg(args, "time"),
		DoctorKey:    stringArg(args, "doctor_key"),
		ServiceKey:   stringArg(args, "service_key"),
	})
	if err != nil {
		return Result{}, err
	}
	return Result{Text: conf.Message, AppointmentID: conf.AppointmentID}, nil
}

func (r *Registry) cancelAppointment(ctx context.Context, args map[string]any) (Result, error) {
	msg, err := r.scheduler.Cancel(ctx, stringArg(args, "appointment_id"))
	if err != nil {
		return Result{}, err
	}
	return Result{Text: msg}, nil
}

// stringArg reads an argument the model may have sent as a string or a
// number. Missing or unsupported values read as "".
func stringArg(args map[string]any, key string) string {
	switch v := args[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case fmt.Stringer:
		return v.String()
	}
	return ""
}
