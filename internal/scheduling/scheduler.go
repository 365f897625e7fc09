// Package scheduling implements appointment availability, booking and
// cancellation against the clinic calendar.
package scheduling

import (
	"time"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"

	"github.com/wolfman30/clinic-scheduler/internal/calendar"
	"github.com/wolfman30/clinic-scheduler/internal/catalog"
	"github.com/wolfman30/clinic-scheduler/pkg/logging"
)

var schedulingTracer = otel.Tracer("clinic.internal.scheduling")

// Scheduler is stateless apart from its collaborators and safe for
// concurrent use.
type Scheduler struct {
	catalog  *catalog.Catalog
	store    calendar.Store
	clock    *Normalizer
	guard    SlotGuard
	logger   *logging.Logger
	validate *validator.Validate
}

type schedulerConfig struct {
	now   func() time.Time
	guard SlotGuard
}

// Option customises a Scheduler.
type Option func(*schedulerConfig)

// WithClock pins the notion of "now".
func WithClock(now func() time.Time) Option {
	return func(cfg *schedulerConfig) {
		cfg.now = now
	}
}

// WithSlotGuard enables cross-process slot locking during booking.
func WithSlotGuard(guard SlotGuard) Option {
	return func(cfg *schedulerConfig) {
		cfg.guard = guard
	}
}

// New wires a scheduler for the clinic timezone loc.
func New(cat *catalog.Catalog, store calendar.Store, loc *time.Location, logger *logging.Logger, opts ...Option) *Scheduler {
	if cat == nil {
		panic("scheduling: catalog required")
	}
	if store == nil {
		panic("scheduling: calendar store required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	cfg := &schedulerConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	return &Scheduler{
		catalog:  cat,
		store:    store,
		clock:    NewNormalizer(loc, cfg.now),
		guard:    cfg.guard,
		logger:   logger,
		validate: validator.New(),
	}
}

// Catalog returns the doctor and service catalog.
func (s *Scheduler) Catalog() *catalog.Catalog { return s.catalog }

// Clock returns the time normalizer bound to the clinic timezone.
func (s *Scheduler) Clock() *Normalizer { return s.clock }
