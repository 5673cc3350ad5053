package startup

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"media-convert/internal/logging"

	"github.com/gorilla/mux"
)

// Build-time variables (injected via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// BuildInfo contains version and build information
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// GetBuildInfo returns the current build information
func GetBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: GoVersion,
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

// Config holds all application configuration
type Config struct {
	Port        string
	MetricsPort string
	OutputDir   string
	WorkDir     string
	DatabaseDir string

	MaxUploadMB       int
	MaxImageDimension int
	HistoryKeep       int

	LogHealthChecks bool
	MetricsEnabled  bool

	// Derived paths
	DatabasePath string

	// Feature flag based on directory availability
	HistoryEnabled bool
}

// LoadConfig loads and validates configuration from environment variables
func LoadConfig() (*Config, error) {
	printBanner()
	logSystemInfo()

	logging.Info("------------------------------------------------------------")
	logging.Info("CONFIGURATION")
	logging.Info("------------------------------------------------------------")

	port := getEnv("PORT", "8080")
	metricsPort := getEnv("METRICS_PORT", "9090")
	outputDir := getEnv("OUTPUT_DIR", "")
	workDir := getEnv("WORK_DIR", os.TempDir())
	databaseDir := getEnv("DATABASE_DIR", "/database")
	maxUploadMB := getEnvInt("MAX_UPLOAD_MB", 512)
	maxImageDimension := getEnvInt("MAX_IMAGE_DIMENSION", 2048)
	historyKeep := getEnvInt("HISTORY_KEEP", 1000)
	logHealthChecks := getEnvBool("LOG_HEALTH_CHECKS", true)
	metricsEnabled := getEnvBool("METRICS_ENABLED", true)

	logging.Info("  PORT:                %s", port)
	logging.Info("  METRICS_PORT:        %s", metricsPort)
	logging.Info("  METRICS_ENABLED:     %v", metricsEnabled)
	logging.Info("  OUTPUT_DIR:          %s", orNone(outputDir))
	logging.Info("  WORK_DIR:            %s", workDir)
	logging.Info("  DATABASE_DIR:        %s", databaseDir)
	logging.Info("  MAX_UPLOAD_MB:       %d", maxUploadMB)
	logging.Info("  MAX_IMAGE_DIMENSION: %d", maxImageDimension)
	logging.Info("  HISTORY_KEEP:        %d", historyKeep)
	logging.Info("  BUILD_MODE:          %s", getEnv("BUILD_MODE", "server"))
	logging.Info("  LOG_HEALTH_CHECKS:   %v", logHealthChecks)
	logging.Info("  LOG_LEVEL:           %s", logging.GetLevel())

	config := &Config{
		Port:              port,
		MetricsPort:       metricsPort,
		OutputDir:         outputDir,
		WorkDir:           workDir,
		DatabaseDir:       databaseDir,
		MaxUploadMB:       maxUploadMB,
		MaxImageDimension: maxImageDimension,
		HistoryKeep:       historyKeep,
		LogHealthChecks:   logHealthChecks,
		MetricsEnabled:    metricsEnabled,
	}

	if err := ensureWritableDir(workDir); err != nil {
		return nil, fmt.Errorf("WORK_DIR not usable: %w", err)
	}

	if outputDir != "" {
		if err := ensureWritableDir(outputDir); err != nil {
			return nil, fmt.Errorf("OUTPUT_DIR not usable: %w", err)
		}
	}

	// Job history is a feature, not a requirement: a read-only or
	// missing database directory disables it
	if err := ensureWritableDir(databaseDir); err != nil {
		logging.Warn("  DATABASE_DIR not writable, job history disabled: %v", err)
	} else {
		config.HistoryEnabled = true
		config.DatabasePath = filepath.Join(databaseDir, "convert.db")
	}

	return config, nil
}

func printBanner() {
	logging.Printf("============================================================")
	logging.Printf(" media-convert %s (%s)", Version, Commit)
	logging.Printf("============================================================")
}

func logSystemInfo() {
	logging.Info("Go version: %s", GoVersion)
	logging.Info("OS/Arch: %s/%s", runtime.GOOS, runtime.GOARCH)
	logging.Info("CPUs: %d (GOMAXPROCS: %d)", runtime.NumCPU(), runtime.GOMAXPROCS(0))
}

func ensureWritableDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	probe := filepath.Join(dir, ".write-probe")
	if err := os.WriteFile(probe, []byte("ok"), 0o600); err != nil {
		return err
	}
	return os.Remove(probe)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		logging.Warn("  Invalid %s=%q, using default %v", key, value, fallback)
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed <= 0 {
		logging.Warn("  Invalid %s=%q, using default %d", key, value, fallback)
		return fallback
	}
	return parsed
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}

// LogFatal logs a fatal error and exits
func LogFatal(format string, args ...interface{}) {
	logging.Fatal(format, args...)
}

// LogHTTPRoutes walks the router and logs every registered route
func LogHTTPRoutes(router *mux.Router) {
	logging.Info("------------------------------------------------------------")
	logging.Info("HTTP ROUTES")
	logging.Info("------------------------------------------------------------")

	err := router.Walk(func(route *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		path, err := route.GetPathTemplate()
		if err != nil {
			return nil
		}
		methods, err := route.GetMethods()
		if err != nil {
			logging.Info("  ALL %s", path)
			return nil
		}
		for _, method := range methods {
			logging.Info("  %-6s %s", method, path)
		}
		return nil
	})
	if err != nil {
		logging.Warn("failed to walk routes: %v", err)
	}
}

// LogServerStarted logs the startup completion line
func LogServerStarted(port string, elapsed time.Duration) {
	logging.Info("------------------------------------------------------------")
	logging.Info("Server listening on :%s (started in %s)", port, elapsed.Round(time.Millisecond))
	logging.Info("------------------------------------------------------------")
}

// LogShutdownInitiated logs the beginning of graceful shutdown
func LogShutdownInitiated(signal string) {
	logging.Info("Received %s, shutting down gracefully...", signal)
}

// LogShutdownStep logs one shutdown step
func LogShutdownStep(step string) {
	logging.Info("  %s...", step)
}

// LogShutdownComplete logs shutdown completion
func LogShutdownComplete() {
	logging.Info("Shutdown complete")
}
