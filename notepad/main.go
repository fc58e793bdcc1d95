package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"notepad/notepad/config"
	"notepad/notepad/controllers"
	"notepad/notepad/routes"
	"notepad/notepad/services/events"
	"notepad/notepad/services/metrics"
	"notepad/notepad/sources/psql"
	"notepad/notepad/sources/psql/dao"
	"notepad/notepad/sources/storage"
	"notepad/notepad/utils/logging"

	"go.uber.org/zap"
)

func main() {
	cfg := config.LoadConfig()
	if err := logging.InitLogger(cfg.LogDir); err != nil {
		// loggers stay no-ops; stderr is all we have
		os.Stderr.WriteString("logger init failed: " + err.Error() + "\n")
	}
	defer logging.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	db, err := psql.NewDatabase(ctx, cfg)
	if err != nil {
		logging.ErrorLogger.Error("database connection error", zap.Error(err))
		logging.AppLogger.Fatal("database connection error", zap.Error(err))
	}

	hub := events.NewHub(cfg.CORSOrigins)
	collector := metrics.NewCollector("notepad")
	pagesCtrl := controllers.NewPagesController(dao.NewPageDAO(db.DB), hub, collector)

	// archive is optional; without MinIO the archive route answers 503
	var archive controllers.ObjectStore
	minioClient, err := storage.NewMinIOClient(ctx, cfg)
	switch {
	case err == nil:
		archive = minioClient
		logging.AppLogger.Info("archive storage ready", zap.String("bucket", minioClient.Bucket()))
	case errors.Is(err, storage.ErrNotConfigured):
		logging.AppLogger.Info("archive storage disabled")
	default:
		logging.AppLogger.Warn("minio connection error, archive disabled", zap.Error(err))
	}

	r := routes.NewRouter(routes.Dependencies{
		Pages:       pagesCtrl,
		Export:      controllers.NewExportController(pagesCtrl, archive),
		Health:      controllers.NewHealthController(db),
		Events:      hub,
		Metrics:     collector,
		CORSOrigins: cfg.CORSOrigins,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logging.AppLogger.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.ErrorLogger.Error("server listen error", zap.Error(err))
			logging.AppLogger.Fatal("server listen error", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logging.AppLogger.Info("shutting down", zap.String("signal", sig.String()))

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.ErrorLogger.Error("server shutdown error", zap.Error(err))
	}
	hub.Close()
	if err := db.Close(); err != nil {
		logging.ErrorLogger.Error("database close error", zap.Error(err))
	}
	logging.AppLogger.Info("server shutdown complete")
}
