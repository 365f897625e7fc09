package bootstrap

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/clinic-scheduler/internal/calendar"
	"github.com/wolfman30/clinic-scheduler/internal/catalog"
	appconfig "github.com/wolfman30/clinic-scheduler/internal/config"
	"github.com/wolfman30/clinic-scheduler/internal/observability/metrics"
	"github.com/wolfman30/clinic-scheduler/internal/scheduling"
	"github.com/wolfman30/clinic-scheduler/pkg/logging"
)

// Runtime bundles the scheduler and the resources that must be closed on
// shutdown.
type Runtime struct {
	Scheduler *scheduling.Scheduler
	Location  *time.Location
	redis     *redis.Client
}

// Close releases the Redis connection if one was opened.
func (r *Runtime) Close() error {
	if r == nil || r.redis == nil {
		return nil
	}
	return r.redis.Close()
}

// BuildCatalog loads CATALOG_FILE or falls back to the built-in catalog.
func BuildCatalog(cfg *appconfig.Config, logger *logging.Logger) (*catalog.Catalog, error) {
	path := strings.TrimSpace(cfg.CatalogFile)
	if path == "" {
		logger.Info("using built-in clinic catalog")
		return catalog.Default(), nil
	}
	cat, err := catalog.Load(path)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: load catalog: %w", err)
	}
	logger.Info("clinic catalog loaded", "path", path, "doctors", len(cat.Doctors()), "services", len(cat.Services()))
	return cat, nil
}

// BuildCalendarStore selects the calendar backend and wraps it with timeouts
// and metrics.
func BuildCalendarStore(ctx context.Context, cfg *appconfig.Config, loc *time.Location, m *metrics.SchedulerMetrics, logger *logging.Logger) (calendar.Store, error) {
	var store calendar.Store
	switch cfg.CalendarBackend {
	case "memory":
		logger.Warn("using in-memory calendar; appointments are lost on restart")
		store = calendar.NewMemoryStore()
	case "google", "":
		g, err := calendar.NewGoogleStore(ctx, calendar.GoogleConfig{
			CalendarID:      cfg.GoogleCalendarID,
			TokenFile:       cfg.GoogleTokenFile,
			CredentialsFile: cfg.GoogleCredentialsFile,
			Location:        loc,
		}, logger.Component("calendar"))
		if err != nil {
			return nil, fmt.Errorf("bootstrap: google calendar: %w", err)
		}
		logger.Info("google calendar store ready", "calendar_id", cfg.GoogleCalendarID)
		store = g
	default:
		return nil, fmt.Errorf("bootstrap: unknown CALENDAR_BACKEND %q", cfg.CalendarBackend)
	}

	store = calendar.WithTimeout(store, cfg.CalendarTimeout)
	if m != nil {
		store = calendar.Instrument(store, m)
	}
	return store, nil
}

// BuildScheduler wires the scheduler from config. The returned runtime must be
// closed on shutdown.
func BuildScheduler(ctx context.Context, cfg *appconfig.Config, m *metrics.SchedulerMetrics, logger *logging.Logger) (*Runtime, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	loc, err := time.LoadLocation(cfg.ClinicTimezone)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: clinic timezone %q: %w", cfg.ClinicTimezone, err)
	}
	cat, err := BuildCatalog(cfg, logger)
	if err != nil {
		return nil, err
	}
	store, err := BuildCalendarStore(ctx, cfg, loc, m, logger)
	if err != nil {
		return nil, err
	}

	var opts []scheduling.Option
	redisClient := BuildRedisClient(ctx, cfg, logger, true)
	if redisClient != nil {
		opts = append(opts, scheduling.WithSlotGuard(scheduling.NewRedisSlotGuard(redisClient, cfg.SlotLockTTL)))
		logger.Info("redis slot locking enabled", "addr", cfg.RedisAddr, "ttl", cfg.SlotLockTTL.String())
	}

	s := scheduling.New(cat, store, loc, logger.Component("scheduling"), opts...)
	return &Runtime{Scheduler: s, Location: loc, redis: redisClient}, nil
}
