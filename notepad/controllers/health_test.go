package controllers

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type fakeProbe struct {
	pingErr  error
	countErr error
	sizeErr  error
	count    int64
	size     int64
	stats    sql.DBStats
}

func (p *fakeProbe) Ping(ctx context.Context) error { return p.pingErr }
func (p *fakeProbe) PoolStats() sql.DBStats         { return p.stats }
func (p *fakeProbe) PageCount(ctx context.Context) (int64, error) {
	return p.count, p.countErr
}
func (p *fakeProbe) StoreSize(ctx context.Context) (int64, error) {
	return p.size, p.sizeErr
}

func TestHealthCheck(t *testing.T) {
	hc := NewHealthController(&fakeProbe{pingErr: errors.New("down")})
	req := httptest.NewRequest("GET", "/", nil)
	rr := httptest.NewRecorder()

	hc.HealthCheck(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rr.Code)
	}

	expectedBody := `{"status": "ok"}`
	if rr.Body.String() != expectedBody {
		t.Errorf("expected body %q, got %q", expectedBody, rr.Body.String())
	}

	if rr.Header().Get("Content-Type") != "application/json" {
		t.Errorf("expected Content-Type application/json, got %v", rr.Header().Get("Content-Type"))
	}
}

func TestReadinessCheck(t *testing.T) {
	tests := []struct {
		name       string
		pingErr    error
		wantStatus int
		wantState  string
	}{
		{name: "database up", wantStatus: http.StatusOK, wantState: "ready"},
		{name: "database down", pingErr: errors.New("connection refused"), wantStatus: http.StatusServiceUnavailable, wantState: "not ready"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hc := NewHealthController(&fakeProbe{pingErr: tt.pingErr})
			rr := httptest.NewRecorder()

			hc.ReadinessCheck(rr, httptest.NewRequest("GET", "/ready", nil))

			if rr.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, rr.Code)
			}
			var body map[string]string
			if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if body["status"] != tt.wantState {
				t.Errorf("expected status %q, got %q", tt.wantState, body["status"])
			}
			if tt.pingErr != nil && body["error"] != tt.pingErr.Error() {
				t.Errorf("expected error detail %q, got %q", tt.pingErr.Error(), body["error"])
			}
		})
	}
}

func TestMetrics(t *testing.T) {
	probe := &fakeProbe{
		count: 3,
		size:  8192,
		stats: sql.DBStats{MaxOpenConnections: 10, OpenConnections: 2, InUse: 1, Idle: 1, WaitDuration: 1500 * time.Millisecond},
	}
	hc := NewHealthController(probe)
	rr := httptest.NewRecorder()

	hc.Metrics(rr, httptest.NewRequest("GET", "/metrics", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	var body metricsResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Pool.MaxOpen != 10 || body.Pool.InUse != 1 || body.Pool.WaitDurationMS != 1500 {
		t.Errorf("unexpected pool metrics: %+v", body.Pool)
	}
	if body.Database.Pages != 3 || body.Database.SizeBytes != 8192 {
		t.Errorf("unexpected database metrics: %+v", body.Database)
	}
}

func TestMetricsStoreFailure(t *testing.T) {
	for _, probe := range []*fakeProbe{
		{countErr: errors.New("boom")},
		{sizeErr: errors.New("boom")},
	} {
		hc := NewHealthController(probe)
		rr := httptest.NewRecorder()

		hc.Metrics(rr, httptest.NewRequest("GET", "/metrics", nil))

		if rr.Code != http.StatusInternalServerError {
			t.Errorf("expected status 500, got %d", rr.Code)
		}
		if got := rr.Body.String(); got != "{\"error\":\"Database error\"}\n" {
			t.Errorf("unexpected body %q", got)
		}
	}
}
