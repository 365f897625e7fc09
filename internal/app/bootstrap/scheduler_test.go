package bootstrap

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appconfig "github.com/wolfman30/clinic-scheduler/internal/config"
	"github.com/wolfman30/clinic-scheduler/pkg/logging"
)

func testConfig() *appconfig.Config {
	return &appconfig.Config{
		ClinicTimezone:  "Asia/Karachi",
		CalendarBackend: "memory",
		CalendarTimeout: time.Second,
		SlotLockTTL:     time.Minute,
	}
}

func TestBuildSchedulerMemoryBackend(t *testing.T) {
	rt, err := BuildScheduler(context.Background(), testConfig(), nil, logging.NewWithWriter(&bytes.Buffer{}, "error"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = rt.Close() })

	assert.Equal(t, "Asia/Karachi", rt.Location.String())
	assert.Equal(t, []string{"Dr.Badr", "Dr.jones", "Dr.Ella"}, rt.Scheduler.Catalog().DoctorNames())
}

func TestBuildSchedulerWithRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig()
	cfg.RedisAddr = mr.Addr()

	var logs bytes.Buffer
	rt, err := BuildScheduler(context.Background(), cfg, nil, logging.NewWithWriter(&logs, "info"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = rt.Close() })

	assert.Contains(t, logs.String(), "redis slot locking enabled")
}

func TestBuildSchedulerRedisDownFallsBack(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	cfg := testConfig()
	cfg.RedisAddr = addr

	var logs bytes.Buffer
	rt, err := BuildScheduler(context.Background(), cfg, nil, logging.NewWithWriter(&logs, "info"))
	require.NoError(t, err)
	assert.NoError(t, rt.Close())
	assert.Contains(t, logs.String(), "redis not available")
}

func TestBuildSchedulerErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*appconfig.Config)
	}{
		{name: "bad timezone", mutate: func(c *appconfig.Config) { c.ClinicTimezone = "Mars/Olympus" }},
		{name: "unknown backend", mutate: func(c *appconfig.Config) { c.CalendarBackend = "outlook" }},
		{name: "google without calendar id", mutate: func(c *appconfig.Config) { c.CalendarBackend = "google" }},
		{name: "missing catalog file", mutate: func(c *appconfig.Config) { c.CatalogFile = "/nonexistent/catalog.yaml" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.mutate(cfg)
			_, err := BuildScheduler(context.Background(), cfg, nil, logging.NewWithWriter(&bytes.Buffer{}, "error"))
			assert.Error(t, err)
		})
	}
}

func TestBuildCatalogFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
doctors:
  - specialty: endodontics
    name: Dr.Root
services:
  - key: Root Canal
    duration_minutes: 90
    price: "800"
`), 0o600))

	cfg := testConfig()
	cfg.CatalogFile = path
	cat, err := BuildCatalog(cfg, logging.NewWithWriter(&bytes.Buffer{}, "error"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Dr.Root"}, cat.DoctorNames())
}

func TestRuntimeCloseNil(t *testing.T) {
	var rt *Runtime
	assert.NoError(t, rt.Close())
}
