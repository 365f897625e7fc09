package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/wolfman30/clinic-scheduler/internal/app/bootstrap"
	appconfig "github.com/wolfman30/clinic-scheduler/internal/config"
	"github.com/wolfman30/clinic-scheduler/pkg/logging"
)

func TestSetupMetricsExposesMetrics(t *testing.T) {
	handler, m := setupMetrics()
	if handler == nil || m == nil {
		t.Fatalf("expected non-nil handler and metrics")
	}

	m.ObserveToolCall("book_appointment", "ok", 0.1)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "clinic_tools_calls_total") {
		t.Fatalf("expected tool counter to be exported")
	}
	if !strings.Contains(rr.Body.String(), "go_goroutines") {
		t.Fatalf("expected go runtime collector to be exported")
	}
}

func TestBuildHandlerServesTools(t *testing.T) {
	logger := logging.New("error")
	cfg := &appconfig.Config{
		ClinicTimezone:  "Asia/Karachi",
		CalendarBackend: "memory",
		CalendarTimeout: time.Second,
		RateLimitRPS:    10,
		RateLimitBurst:  10,
	}
	metricsHandler, m := setupMetrics()
	rt, err := bootstrap.BuildScheduler(context.Background(), cfg, m, logger)
	if err != nil {
		t.Fatalf("build scheduler: %v", err)
	}

	h := buildHandler(cfg, rt.Scheduler, m, metricsHandler, logger)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/tools/current_time_date", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "+05:00") {
		t.Fatalf("expected clinic-local timestamp, got %s", rr.Body.String())
	}
}
