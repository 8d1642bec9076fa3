package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mzview/cache"
	"mzview/config"
	"mzview/core/report"
	"mzview/db"
	"mzview/logger"
	"mzview/repository"
	"mzview/storage"

	"github.com/gorilla/mux"
)

// Start initializes all dependencies and runs the HTTP server.
func Start() {
	cfg := config.Load()

	logger.Init(logger.Config{
		Level:      cfg.LogLevel,
		OutputPath: cfg.LogPath,
		MaxSize:    cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		MaxAge:     cfg.LogMaxAgeDays,
		Compress:   true,
	})

	server := &http.Server{
		Addr:         cfg.ServerAddr,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	if err := storage.InitMinio(cfg); err != nil {
		logger.Fatal("Failed to initialize MinIO", logger.ErrorField(err))
	}

	if err := db.ConnectDB(cfg); err != nil {
		logger.Fatal("Failed to connect to database", logger.ErrorField(err))
	}
	defer db.DB.Close()

	if err := db.InitDB(); err != nil {
		logger.Fatal("Failed to initialize database", logger.ErrorField(err))
	}

	if err := cache.ConnectRedis(cfg); err != nil {
		logger.Fatal("Failed to connect to Redis", logger.ErrorField(err))
	}
	defer cache.CloseRedis()
	logger.Info("Successfully connected to Redis")

	runRepo := repository.NewMySQLRunRepository()
	reportRepo := repository.NewMySQLReportRepository()
	expCache := cache.NewExperimentCache(time.Duration(cfg.ExperimentTTLMin) * time.Minute)

	renderer := report.NewRenderer(report.ChartOptions{Width: cfg.ChartWidth, Height: cfg.ChartHeight})
	if !renderer.ImagesAvailable() {
		logger.Warn("Chart rendering unavailable, reports will omit plot images")
	}

	apiHandler := NewAPIHandler(runRepo, reportRepo, expCache, renderer, cfg)

	router := mux.NewRouter()

	// Request logging middleware
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			logger.Debug("Request handled",
				logger.String("method", r.Method),
				logger.String("path", r.URL.Path),
				logger.Duration("duration", time.Since(start)))
		})
	})

	// CORS middleware
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS, HEAD")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			w.Header().Set("Access-Control-Expose-Headers", "Content-Length, Content-Disposition")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	})

	router.HandleFunc("/healthz", apiHandler.HealthzHandler).Methods(http.MethodGet)

	// Run endpoints
	router.HandleFunc("/api/runs", apiHandler.UploadRunHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/runs", apiHandler.ListRunsHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/runs/{id}", apiHandler.GetRunHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/runs/{id}/tic", apiHandler.TICHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/runs/{id}/eic", apiHandler.EICHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/runs/{id}/peaks", apiHandler.PeaksHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/runs/{id}/charts/tic.png", apiHandler.TICChartHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/runs/{id}/charts/eic.png", apiHandler.EICChartHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/runs/{id}/export.xlsx", apiHandler.ExportPeaksHandler).Methods(http.MethodGet)

	// Report endpoints
	router.HandleFunc("/api/runs/{id}/report", apiHandler.CreateReportHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/runs/{id}/reports", apiHandler.ListReportsHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/reports/{id}", apiHandler.DownloadReportHandler).Methods(http.MethodGet)

	// Frontend UI serving
	uiFileServer := http.FileServer(http.Dir(cfg.WebAppDir))
	router.PathPrefix("/").Handler(uiFileServer)

	server.Handler = router

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Server starting", logger.String("addr", cfg.ServerAddr))
		logger.Info("Upload mzML files via POST to /api/runs")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", logger.ErrorField(err))
		}
	}()

	<-stop
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", logger.ErrorField(err))
	}

	logger.Info("Server stopped")
}
