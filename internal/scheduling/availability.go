package scheduling

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// busyMarker in an event summary blocks every doctor for that window.
const busyMarker = "booked"

// IsAvailable reports whether doctorName has no conflicting event in w. Store
// failures are logged and reported as unavailable.
func (s *Scheduler) IsAvailable(ctx context.Context, doctorName string, w TimeWindow) bool {
	free, err := s.availability(ctx, doctorName, w)
	if err != nil {
		s.logger.Warn("availability check failed; treating slot as busy",
			"doctor", doctorName,
			"window", w.String(),
			"error", err,
		)
		return false
	}
	return free
}

func (s *Scheduler) availability(ctx context.Context, doctorName string, w TimeWindow) (bool, error) {
	ctx, span := schedulingTracer.Start(ctx, "scheduling.availability")
	defer span.End()
	span.SetAttributes(
		attribute.String("clinic.doctor", doctorName),
		attribute.String("clinic.window", w.String()),
	)

	events, err := s.store.ListEvents(ctx, w.Start, w.End)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list events")
		return false, err
	}

	doctor := strings.ToLower(strings.TrimSpace(doctorName))
	for _, ev := range events {
		summary := strings.ToLower(ev.Summary)
		if (doctor != "" && strings.Contains(summary, doctor)) || strings.Contains(summary, busyMarker) {
			span.SetAttributes(attribute.Bool("clinic.available", false))
			return false, nil
		}
	}
	span.SetAttributes(attribute.Bool("clinic.available", true))
	return true, nil
}

// CheckWindow is the caller-facing availability check. It resolves doctorText
// through the catalog and returns the doctor's display name with the result.
func (s *Scheduler) CheckWindow(ctx context.Context, doctorText, startRaw, endRaw string) (string, bool, error) {
	name := strings.TrimSpace(doctorText)
	doctor, ok := s.catalog.ResolveDoctor(name)
	if !ok {
		return "", false, newError(ErrInvalidDoctor, s.invalidDoctorMessage(), fmt.Errorf("unknown doctor %q", name))
	}

	start, err := s.clock.ParseBoundary(startRaw)
	if err != nil {
		return "", false, err
	}
	end, err := s.clock.ParseBoundary(endRaw)
	if err != nil {
		return "", false, err
	}
	w, err := NewTimeWindow(start, end)
	if err != nil {
		return "", false, err
	}
	return doctor.DisplayName, s.IsAvailable(ctx, doctor.DisplayName, w), nil
}

func (s *Scheduler) invalidDoctorMessage() string {
	return "Invalid doctor selection. Available doctors: " + strings.Join(s.catalog.DoctorNames(), ", ")
}
