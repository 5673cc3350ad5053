package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"media-convert/internal/capability"
	"media-convert/internal/database"
	"media-convert/internal/dispatch"
	"media-convert/internal/document"
	"media-convert/internal/engine"
	"media-convert/internal/handlers"
	"media-convert/internal/logging"
	"media-convert/internal/metrics"
	"media-convert/internal/middleware"
	"media-convert/internal/orchestrator"
	"media-convert/internal/rastercodec"
	"media-convert/internal/recompress"
	"media-convert/internal/startup"
	"media-convert/internal/workers"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	startTime := time.Now()

	// Load configuration
	config, err := startup.LoadConfig()
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}

	// Capability probe runs once; everything downstream keys off it
	caps := capability.Get()
	if caps.TranscodeSupported {
		logging.Info("Transcoding: supported (%s build)", caps.BuildMode)
	} else {
		logging.Info("Transcoding: unsupported (%s)", caps.Reason)
	}

	// Initialize job history database (optional)
	var db *database.Database
	if config.HistoryEnabled {
		dbStart := time.Now()
		db, err = database.New(context.Background(), config.DatabasePath)
		if err != nil {
			logging.Warn("Failed to initialize job history, continuing without: %v", err)
			db = nil
		} else {
			defer db.Close()
			logging.Info("Job history database ready in %s", time.Since(dbStart).Round(time.Millisecond))
		}
	}

	// Prune job history periodically
	if db != nil {
		go func() {
			ticker := time.NewTicker(1 * time.Hour)
			for range ticker.C {
				if err := db.Prune(context.Background(), config.HistoryKeep); err != nil {
					logging.Warn("Job history prune failed: %v", err)
				}
			}
		}()
	}

	// Shared raster codec and recompressor
	codec := rastercodec.New()
	recompressor := recompress.New(recompress.Config{
		MaxDimension: config.MaxImageDimension,
	}, codec)

	// Conversion orchestrator pool: one conversion context per slot
	poolSize := workers.ForCPU(8)
	logging.Info("Conversion pool size: %d", poolSize)
	pool := orchestrator.NewPool(poolSize, func() *orchestrator.Orchestrator {
		return orchestrator.New(dispatch.Adapters{
			Raster:     codec,
			Document:   document.NewRenderer(),
			Engine:     engine.New(config.WorkDir, config.MaxImageDimension, caps),
			Recompress: recompressor,
		}, config.OutputDir)
	})

	// Initialize handlers
	h := handlers.New(pool, db, config)

	// Setup router
	router := setupRouter(h)

	// Log routes dynamically
	startup.LogHTTPRoutes(router)

	// Apply logging middleware
	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogHealthChecks = config.LogHealthChecks
	handler := middleware.Logger(loggingConfig)(router)

	// Apply metrics middleware and start the metrics server
	if config.MetricsEnabled {
		metrics.InitializeMetrics()
		handler = middleware.Metrics(middleware.DefaultMetricsConfig())(handler)
		go startMetricsServer(config.MetricsPort)
	}

	// Create server
	srv := &http.Server{
		Addr:         ":" + config.Port,
		Handler:      handler,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	// Start graceful shutdown handler
	go handleShutdown(srv, pool)

	// Start server
	startup.LogServerStarted(config.Port, time.Since(startTime))
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		startup.LogFatal("Server error: %v", err)
	}
}

func setupRouter(h *handlers.Handlers) *mux.Router {
	r := mux.NewRouter()

	// Health check and version routes
	r.HandleFunc("/health", h.HealthCheck).Methods("GET")
	r.HandleFunc("/healthz", h.HealthCheck).Methods("GET")
	r.HandleFunc("/livez", h.LivenessCheck).Methods("GET", "HEAD")
	r.HandleFunc("/readyz", h.ReadinessCheck).Methods("GET")
	r.HandleFunc("/version", h.GetVersion).Methods("GET")

	// Conversion API
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/capabilities", h.GetCapabilities).Methods("GET")
	api.HandleFunc("/formats", h.GetFormats).Methods("GET")
	api.HandleFunc("/convert", h.Convert).Methods("POST")
	api.HandleFunc("/history", h.GetHistory).Methods("GET")

	return r
}

func startMetricsServer(port string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	logging.Info("Metrics server listening on :%s", port)
	if err := http.ListenAndServe(":"+port, mux); err != nil && err != http.ErrServerClosed {
		logging.Error("Metrics server error: %v", err)
	}
}

func handleShutdown(srv *http.Server, pool *orchestrator.Pool) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	startup.LogShutdownInitiated(sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	startup.LogShutdownStep("Shutting down HTTP server")
	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	}

	startup.LogShutdownStep("Closing conversion pool")
	pool.Close()

	startup.LogShutdownStep("Releasing image pipeline")
	rastercodec.ShutdownVips()

	startup.LogShutdownComplete()
}
