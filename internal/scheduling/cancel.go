package scheduling

import (
	"context"
	"errors"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/wolfman30/clinic-scheduler/internal/calendar"
)

const msgCanceled = "Your appointment has been successfully canceled."

// Cancel deletes the appointment with the given ID.
func (s *Scheduler) Cancel(ctx context.Context, appointmentID string) (string, error) {
	ctx, span := schedulingTracer.Start(ctx, "scheduling.cancel")
	defer span.End()

	id := strings.TrimSpace(appointmentID)
	span.SetAttributes(attribute.String("clinic.appointment_id", id))
	if id == "" {
		return "", newError(ErrNotFound, msgNotFound, errors.New("empty appointment id"))
	}

	if err := s.store.DeleteEvent(ctx, id); err != nil {
		span.RecordError(err)
		if errors.Is(err, calendar.ErrNotFound) {
			s.logger.Info("cancel: appointment not found", "appointment_id", id, "error", err)
			span.SetStatus(codes.Error, "not_found")
			return "", newError(ErrNotFound, msgNotFound, err)
		}
		s.logger.Error("cancel: calendar delete failed", "appointment_id", id, "error", err)
		span.SetStatus(codes.Error, "store_unavailable")
		return "", newError(ErrStoreUnavailable, msgStoreUnavailable, err)
	}

	s.logger.Info("appointment canceled", "appointment_id", id)
	return msgCanceled, nil
}
