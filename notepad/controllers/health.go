package controllers

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"notepad/notepad/utils/jsonutils"
	"notepad/notepad/utils/logging"

	"go.uber.org/zap"
)

// StoreProbe reports on the database. *psql.Database implements it.
type StoreProbe interface {
	Ping(ctx context.Context) error
	PoolStats() sql.DBStats
	PageCount(ctx context.Context) (int64, error)
	StoreSize(ctx context.Context) (int64, error)
}

type HealthController struct {
	probe   StoreProbe
	started time.Time
}

func NewHealthController(probe StoreProbe) *HealthController {
	return &HealthController{probe: probe, started: time.Now()}
}

// HealthCheck answers as long as the process is alive.
func (h *HealthController) HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "ok"}`))
}

// ReadinessCheck is ready only while the database answers a trivial query.
func (h *HealthController) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.probe.Ping(ctx); err != nil {
		logging.ErrorLogger.Error("readiness probe failed", zap.Error(err))
		jsonutils.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status":   "not ready",
			"database": "disconnected",
			"error":    err.Error(),
		})
		return
	}
	jsonutils.WriteJSON(w, http.StatusOK, map[string]string{
		"status":   "ready",
		"database": "connected",
	})
}

type poolMetrics struct {
	MaxOpen        int   `json:"max_open"`
	Open           int   `json:"open"`
	InUse          int   `json:"in_use"`
	Idle           int   `json:"idle"`
	WaitCount      int64 `json:"wait_count"`
	WaitDurationMS int64 `json:"wait_duration_ms"`
}

type databaseMetrics struct {
	Pages     int64 `json:"pages"`
	SizeBytes int64 `json:"size_bytes"`
}

type metricsResponse struct {
	Pool          poolMetrics     `json:"pool"`
	Database      databaseMetrics `json:"database"`
	UptimeSeconds int64           `json:"uptime_seconds"`
}

func (h *HealthController) Metrics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	count, err := h.probe.PageCount(ctx)
	if err != nil {
		logging.ErrorLogger.Error("metrics page count failed", zap.Error(err))
		jsonutils.WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": "Database error"})
		return
	}
	size, err := h.probe.StoreSize(ctx)
	if err != nil {
		logging.ErrorLogger.Error("metrics store size failed", zap.Error(err))
		jsonutils.WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": "Database error"})
		return
	}

	stats := h.probe.PoolStats()
	jsonutils.WriteJSON(w, http.StatusOK, metricsResponse{
		Pool: poolMetrics{
			MaxOpen:        stats.MaxOpenConnections,
			Open:           stats.OpenConnections,
			InUse:          stats.InUse,
			Idle:           stats.Idle,
			WaitCount:      stats.WaitCount,
			WaitDurationMS: stats.WaitDuration.Milliseconds(),
		},
		Database:      databaseMetrics{Pages: count, SizeBytes: size},
		UptimeSeconds: int64(time.Since(h.started).Seconds()),
	})
}

