package scheduling

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/wolfman30/clinic-scheduler/internal/calendar"
	"github.com/wolfman30/clinic-scheduler/internal/catalog"
)

// AppointmentRequest is what a caller supplies to book a visit.
type AppointmentRequest struct {
	PatientName  string `json:"patient_name" validate:"required"`
	PatientPhone string `json:"patient_phone" validate:"required"`
	Date         string `json:"date"`
	Time         string `json:"time"`
	DoctorKey    string `json:"doctor_key"`
	ServiceKey   string `json:"service_key"`
}

// Confirmation describes a booked appointment.
type Confirmation struct {
	AppointmentID string
	Doctor        catalog.Doctor
	Service       catalog.Service
	Window        TimeWindow
	Message       string
}

// Book validates the request, re-checks availability and inserts the
// appointment into the calendar.
func (s *Scheduler) Book(ctx context.Context, req AppointmentRequest) (*Confirmation, error) {
	ctx, span := schedulingTracer.Start(ctx, "scheduling.book")
	defer span.End()

	conf, err := s.book(ctx, span, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, KindName(err))
		return nil, err
	}
	return conf, nil
}

func (s *Scheduler) book(ctx context.Context, span trace.Span, req AppointmentRequest) (*Confirmation, error) {
	req.PatientName = strings.TrimSpace(req.PatientName)
	req.PatientPhone = strings.TrimSpace(req.PatientPhone)
	if err := s.validate.Struct(req); err != nil {
		return nil, newError(ErrInvalidFormat, "Please provide the patient's name and phone number.", err)
	}

	doctor, ok := s.catalog.ResolveDoctor(req.DoctorKey)
	if !ok {
		return nil, newError(ErrInvalidDoctor, s.invalidDoctorMessage(), fmt.Errorf("no doctor matches %q", req.DoctorKey))
	}
	service, ok := s.catalog.ResolveService(req.ServiceKey)
	if !ok {
		return nil, newError(ErrInvalidService, msgInvalidService, fmt.Errorf("no service with key %q", req.ServiceKey))
	}
	span.SetAttributes(
		attribute.String("clinic.doctor", doctor.DisplayName),
		attribute.String("clinic.service", service.Key),
	)

	start, err := s.clock.Parse(req.Date, req.Time)
	if err != nil {
		return nil, err
	}
	window := TimeWindow{Start: start, End: start.Add(time.Duration(service.DurationMinutes) * time.Minute)}
	slotTaken := newError(ErrSlotTaken, doctor.DisplayName+" is not available at this time. Please choose another slot.", nil)

	if s.guard != nil {
		release, acquired, err := s.guard.Acquire(ctx, SlotKey(doctor.DisplayName, start))
		switch {
		case err != nil:
			s.logger.Warn("slot lock unavailable; booking without it", "doctor", doctor.DisplayName, "error", err)
		case !acquired:
			slotTaken.Err = errors.New("slot lock held by another booking")
			return nil, slotTaken
		}
		if release != nil {
			defer release()
		}
	}

	free, err := s.availability(ctx, doctor.DisplayName, window)
	if err != nil {
		s.logger.Error("availability re-check failed", "doctor", doctor.DisplayName, "error", err)
		return nil, newError(ErrStoreUnavailable, msgStoreUnavailable, err)
	}
	if !free {
		return nil, slotTaken
	}

	created, err := s.store.InsertEvent(ctx, s.appointmentEvent(req, doctor, service, window))
	if err != nil {
		s.logger.Error("calendar insert failed", "doctor", doctor.DisplayName, "error", err)
		return nil, newError(ErrStoreUnavailable, msgStoreUnavailable, err)
	}
	span.SetAttributes(attribute.String("clinic.appointment_id", created.ID))

	s.logger.Info("appointment booked",
		"appointment_id", created.ID,
		"doctor", doctor.DisplayName,
		"service", service.Key,
		"start", window.Start.Format(time.RFC3339),
	)

	return &Confirmation{
		AppointmentID: created.ID,
		Doctor:        doctor,
		Service:       service,
		Window:        window,
		Message: fmt.Sprintf("Appointment confirmed for %s on %s at %s with %s. Your appointment ID is %s.",
			req.PatientName,
			window.Start.Format(dateLayout),
			window.Start.Format(clockLayout),
			doctor.DisplayName,
			created.ID,
		),
	}, nil
}

func (s *Scheduler) appointmentEvent(req AppointmentRequest, doctor catalog.Doctor, service catalog.Service, w TimeWindow) calendar.Event {
	description := strings.Join([]string{
		"Patient: " + req.PatientName,
		"Phone: " + req.PatientPhone,
		"Doctor: " + doctor.DisplayName,
		"Service: " + service.DisplayName,
		"Price: " + service.PriceText(),
	}, "\n")

	return calendar.Event{
		Summary:     service.DisplayName + " – " + doctor.DisplayName,
		Description: description,
		Start:       w.Start,
		End:         w.End,
		TimeZone:    s.clock.Location().String(),
		Visibility:  calendar.VisibilityPublic,
	}
}
