package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/heliosite/engine/internal/analysis"
	"github.com/heliosite/engine/internal/config"
	"github.com/heliosite/engine/internal/influx"
	"github.com/heliosite/engine/internal/logging"
	intOtel "github.com/heliosite/engine/internal/otel"
	"github.com/heliosite/engine/internal/shadow"
	"github.com/heliosite/engine/internal/storage"
	"github.com/heliosite/engine/pkg/core"

	"github.com/rs/zerolog"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

// version info - BuildDate can be set at build time via ldflags
var (
	CurrentVersion string = "0.0.1"
	BuildDate      string = "unknown"

	AppName string = "heliosite"
)

// exit codes
const (
	exitOK    = 0
	exitError = 1
	// exitGuard signals a resource guard refused the run; the inputs need
	// shrinking, retrying the same run cannot succeed.
	exitGuard = 2
)

// global state
var (
	// SlogManager handles all slog-based logging
	SlogManager *logging.SlogManager

	// Logger is the slog logger (convenience reference)
	Logger *slog.Logger

	// OTelProvider handles OpenTelemetry
	OTelProvider *intOtel.Provider

	SessionStartTime time.Time = time.Now()

	storageBackend storage.Backend
	influxManager  *influx.Manager
)

func main() {
	configDir := flag.String("config", ".", "directory containing heliosite.cfg.json")
	mode := flag.String("mode", "", "override analysis.mode (instant or daily)")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s %s (built %s)\n", AppName, CurrentVersion, BuildDate)
		os.Exit(exitOK)
	}

	os.Exit(run(*configDir, *mode))
}

func run(configDir, modeOverride string) int {
	// console-only logging until the config tells us where the file goes
	SlogManager = logging.NewSlogManager()
	SlogManager.Setup(nil, "info", nil)
	Logger = SlogManager.Logger()

	if err := config.Load(configDir); err != nil {
		Logger.Warn("Failed to load config, using defaults!", "error", err)
	} else {
		Logger.Info("Loaded config", "dir", configDir)
	}

	logsDir := config.GetString("logsDir")
	if _, err := os.Stat(logsDir); os.IsNotExist(err) {
		os.MkdirAll(logsDir, 0755)
	}

	logFilePath := logging.LogFilePath(logsDir, AppName, SessionStartTime)
	logFile, err := os.OpenFile(logFilePath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		Logger.Error("Failed to create/open log file!", "error", err, "path", logFilePath)
	}
	defer func() {
		if logFile != nil {
			logFile.Close()
		}
	}()

	// OTel provider if enabled (after log file is created)
	otelCfg := config.GetOTelConfig()
	if otelCfg.Enabled {
		OTelProvider, err = intOtel.New(intOtel.Config{
			Enabled:      otelCfg.Enabled,
			ServiceName:  otelCfg.ServiceName,
			BatchTimeout: otelCfg.BatchTimeout,
			LogWriter:    logFile,
			Endpoint:     otelCfg.Endpoint,
			Insecure:     otelCfg.Insecure,
		})
		if err != nil {
			Logger.Error("Failed to initialize OTel provider", "error", err)
		} else {
			Logger.Info("OTel provider initialized", "file", logFilePath)
		}
	}

	siteCfg := config.GetSiteConfig()
	runCfg := config.GetAnalysisConfig()
	if modeOverride != "" {
		runCfg.Mode = modeOverride
	}

	session := core.SessionInfo{
		ID:        fmt.Sprintf("%s_%s", AppName, SessionStartTime.Format("20060102_150405")),
		Latitude:  siteCfg.Latitude,
		Longitude: siteCfg.Longitude,
		Mode:      runCfg.Mode,
		StartedAt: SessionStartTime,
	}

	// GELF records carry the session context so Graylog can group runs
	var extraHandlers []slog.Handler
	if config.GetBool("graylog.enabled") {
		gelfHandler, gerr := logging.NewGelfHandler(
			config.GetString("graylog.address"), config.GetString("logLevel"))
		if gerr != nil {
			Logger.Error("Failed to connect GELF handler", "error", gerr)
		} else {
			extraHandlers = append(extraHandlers, logging.NewSessionHandler(gelfHandler, func() []slog.Attr {
				return []slog.Attr{
					slog.String("session", session.ID),
					slog.String("mode", session.Mode),
				}
			}))
		}
	}

	// re-setup logging with file output and optional OTel
	var otelLogProvider *sdklog.LoggerProvider
	if OTelProvider != nil {
		otelLogProvider = OTelProvider.LoggerProvider()
	}
	SlogManager.Setup(logFile, config.GetString("logLevel"), otelLogProvider, extraHandlers...)
	Logger = SlogManager.Logger()
	Logger.Info("Logging to file", "path", logFilePath)

	code := runAnalysis(session, siteCfg, runCfg, logsDir)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := SlogManager.Flush(shutdownCtx); err != nil {
		Logger.Error("Failed to flush logs", "error", err)
	}
	if OTelProvider != nil {
		if err := OTelProvider.Shutdown(shutdownCtx); err != nil {
			Logger.Error("Failed to shut down OTel provider", "error", err)
		}
	}
	return code
}

func runAnalysis(session core.SessionInfo, siteCfg config.SiteConfig, runCfg config.AnalysisConfig, logsDir string) int {
	grid, err := readElevationGrid(config.GetString("input.elevationGrid"))
	if err != nil {
		Logger.Error("Failed to read elevation grid", "error", err)
		return exitError
	}
	features, err := readBuildings(config.GetString("input.buildings"))
	if err != nil {
		Logger.Error("Failed to read buildings", "error", err)
		return exitError
	}

	zlog := zerolog.New(os.Stderr).With().
		Timestamp().
		Str("session", session.ID).
		Logger()

	svc, err := analysis.NewService(
		analysis.Dependencies{Logger: logging.NewSessionLogger(zlog)},
		siteCfg, runCfg, grid, features,
	)
	if err != nil {
		Logger.Error("Failed to build analysis session", "error", err)
		return exitError
	}

	storageBackend, err = storage.NewBackend(config.GetStorageConfig(), zlog)
	if err != nil {
		Logger.Error("Failed to create storage backend", "error", err)
		return exitError
	}
	if err := storageBackend.Init(); err != nil {
		Logger.Error("Failed to initialize storage backend", "error", err)
		return exitError
	}
	defer storageBackend.Close()

	if err := storageBackend.BeginSession(session); err != nil {
		Logger.Error("Failed to begin storage session", "error", err)
		return exitError
	}

	if config.GetBool("influx.enabled") {
		influxManager = influx.NewManager(zlog, filepath.Join(logsDir, "influx_backup.gz"))
		if err := influxManager.Connect(); err != nil {
			Logger.Warn("InfluxDB unavailable, telemetry disabled", "error", err)
			influxManager = nil
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	date, at, err := runTimes(runCfg)
	if err != nil {
		Logger.Error("Invalid analysis date or time", "error", err)
		return exitError
	}

	started := time.Now()
	var result *core.AnalysisResult

	switch runCfg.Mode {
	case "instant":
		result, err = svc.Instant(at)
	case "daily":
		result, err = svc.Daily(ctx, date, func(completed, total int) {
			if completed == total || completed%10 == 0 {
				Logger.Info("Accumulation progress", "completed", completed, "total", total)
			}
		})
	default:
		Logger.Error("Unknown analysis mode", "mode", runCfg.Mode)
		return exitError
	}
	if err != nil {
		if errors.Is(err, shadow.ErrGridTooLarge) || errors.Is(err, shadow.ErrInvalidGrid) {
			Logger.Error("Analysis refused", "error", err)
			return exitGuard
		}
		Logger.Error("Analysis failed", "error", err)
		return exitError
	}
	elapsed := time.Since(started)

	if err := storageBackend.SaveResult(result); err != nil {
		Logger.Error("Failed to save result", "error", err)
		return exitError
	}

	if runCfg.Mode == "daily" {
		exposures, ferr := svc.Facades(date)
		if ferr != nil {
			Logger.Error("Failed to compute facade exposure", "error", ferr)
		} else if err := storageBackend.SaveExposures(exposures); err != nil {
			Logger.Error("Failed to save facade exposures", "error", err)
		}
	}

	if err := storageBackend.SaveMassingReport(svc.MassingReport()); err != nil {
		Logger.Error("Failed to save massing report", "error", err)
	}

	if err := storageBackend.EndSession(); err != nil {
		Logger.Error("Failed to end storage session", "error", err)
		return exitError
	}

	if influxManager != nil {
		bucket, point := influx.RunPoint(session, result, elapsed)
		if err := influxManager.WritePoint(ctx, bucket, point); err != nil {
			Logger.Error("Failed to write performance point", "error", err)
		}
	}

	printSummary(svc, session, result, elapsed, date)
	return exitOK
}

// runTimes resolves the configured analysis date and time of day. An empty
// date means today.
func runTimes(runCfg config.AnalysisConfig) (date, at time.Time, err error) {
	date = time.Now().Truncate(24 * time.Hour)
	if runCfg.Date != "" {
		date, err = time.Parse("2006-01-02", runCfg.Date)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("parsing analysis.date %q: %w", runCfg.Date, err)
		}
	}

	tod, err := time.Parse("15:04", runCfg.TimeOfDay)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parsing analysis.timeOfDay %q: %w", runCfg.TimeOfDay, err)
	}
	at = time.Date(date.Year(), date.Month(), date.Day(), tod.Hour(), tod.Minute(), 0, 0, time.UTC)
	return date, at, nil
}
