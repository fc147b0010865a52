package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/quoteforge/quoteforge/internal/browser"
	"github.com/quoteforge/quoteforge/internal/config"
	"github.com/quoteforge/quoteforge/internal/diagnostics"
	"github.com/quoteforge/quoteforge/internal/domain"
	"github.com/quoteforge/quoteforge/internal/driver"
	"github.com/quoteforge/quoteforge/internal/observability"
	"github.com/quoteforge/quoteforge/internal/pages"
	"github.com/quoteforge/quoteforge/internal/report"
	"github.com/quoteforge/quoteforge/internal/runner"
	"github.com/quoteforge/quoteforge/internal/scenarios"
	"github.com/quoteforge/quoteforge/internal/storage"
)

var (
	green  = color.New(color.FgGreen, color.Bold)
	red    = color.New(color.FgRed, color.Bold)
	yellow = color.New(color.FgYellow, color.Bold)
	bold   = color.New(color.Bold)
)

func main() {
	godotenv.Load()

	names := flag.String("scenarios", "", "Comma-separated scenario IDs or names to run (default: all)")
	tags := flag.String("tags", "", "Comma-separated tags to select scenarios by")
	fixturePath := flag.String("fixture", "", "Path to a quote fixture YAML (default: built-in smoke data)")
	listOnly := flag.Bool("list", false, "List the selected scenarios and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := initLogger(cfg.Env, cfg.GetLogLevel())
	defer logger.Sync()

	logger.Info("Starting quote flow run",
		zap.String("version", cfg.App.Version),
		zap.String("target", cfg.Target.BaseURL),
	)

	fixture := config.DefaultFixture()
	if *fixturePath != "" {
		fixture, err = config.LoadFixture(*fixturePath)
		if err != nil {
			logger.Fatal("Failed to load fixture", zap.Error(err))
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics := observability.NewMetrics(cfg.App.Name)
	if cfg.Metrics.Enabled {
		go serveMetrics(cfg.Metrics.Addr, metrics, logger)
	}

	session, err := browser.NewPlaywrightSession(browser.LaunchOptions{
		Headless:       cfg.Browser.Headless,
		SlowMoMs:       float64(cfg.Browser.SlowMoMs),
		ViewportWidth:  cfg.Browser.ViewportWidth,
		ViewportHeight: cfg.Browser.ViewportHeight,
		UserAgent:      cfg.Browser.UserAgent,
		NavTimeout:     cfg.Browser.NavTimeout,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to launch browser", zap.Error(err))
	}
	defer session.Close()

	drv := driver.New(session, logger,
		driver.WithTimeouts(timeoutsFromConfig(cfg.Timeouts)),
		driver.WithMetrics(metrics),
		driver.WithBusySelector(cfg.Target.BusySelector),
	)

	rep := domain.NewRunReport(cfg.Target.ClientID)

	artifactDir := filepath.Join(cfg.Artifacts.Dir, rep.RunID)
	capOpts := []diagnostics.Option{diagnostics.WithClientID(cfg.Target.ClientID)}
	var store *storage.MinIOStore
	if cfg.Storage.Enabled {
		store, err = storage.NewMinIOStore(storage.MinIOConfig{
			Endpoint:        cfg.Storage.Endpoint,
			AccessKeyID:     cfg.Storage.AccessKeyID,
			SecretAccessKey: cfg.Storage.SecretAccessKey,
			UseSSL:          cfg.Storage.UseSSL,
			BucketName:      cfg.Storage.Bucket,
			KeyPrefix:       rep.RunID,
		})
		if err != nil {
			logger.Warn("Artifact storage unavailable, keeping artifacts local only", zap.Error(err))
			store = nil
		} else if err := store.EnsureBucket(ctx); err != nil {
			logger.Warn("Artifact bucket unavailable, keeping artifacts local only", zap.Error(err))
			store = nil
		} else {
			capOpts = append(capOpts, diagnostics.WithStore(store))
		}
	}
	capturer, err := diagnostics.New(session, artifactDir, logger, capOpts...)
	if err != nil {
		logger.Fatal("Failed to prepare artifact directory", zap.Error(err))
	}

	p := pages.New(drv, cfg.Target.BaseURL)
	suite := runner.Filter(scenarios.Suite(p, cfg.Target, fixture), splitList(*names), splitList(*tags))
	if len(suite) == 0 {
		logger.Fatal("No scenarios match the selection")
	}

	if *listOnly {
		for _, s := range suite {
			fmt.Printf("%-20s %s  [%s]\n", s.ID, s.Name, strings.Join(s.Tags, ", "))
		}
		return
	}

	bold.Printf("Running %d scenarios against %s\n\n", len(suite), cfg.Target.BaseURL)
	bar := progressbar.NewOptions(len(suite),
		progressbar.OptionSetDescription("   Scenarios"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
	)

	r := runner.New(drv, logger,
		runner.WithMetrics(metrics),
		runner.WithCapturer(capturer),
		runner.WithDefaultTimeout(cfg.Timeouts.Scenario),
	)
	r.OnScenarioDone = func(rec domain.ScenarioRecord) {
		bar.Add(1)
		fmt.Println()
		printRecord(rec)
	}

	if err := r.Run(ctx, suite, rep); err != nil {
		logger.Warn("Run interrupted", zap.Error(err))
	}
	rep.Finalize()

	jsonPath := filepath.Join(artifactDir, cfg.Artifacts.ReportJSON)
	if err := report.WriteJSON(jsonPath, rep); err != nil {
		logger.Error("Failed to write JSON report", zap.Error(err))
	}
	htmlPath := filepath.Join(artifactDir, cfg.Artifacts.ReportHTML)
	if err := report.WriteHTML(htmlPath, rep); err != nil {
		logger.Error("Failed to write HTML report", zap.Error(err))
	}

	printSummary(rep, jsonPath, htmlPath)

	if store != nil && rep.Failed() {
		printArtifactLinks(ctx, store, rep.RunID, logger)
	}

	if rep.Failed() {
		os.Exit(1)
	}
}

// printArtifactLinks shares the uploaded diagnostics of a failed run as
// presigned URLs, so the report can be handed off without bucket access
func printArtifactLinks(ctx context.Context, store *storage.MinIOStore, runID string, logger *zap.Logger) {
	links, err := store.RunArtifactLinks(ctx, runID, storage.DefaultPresignExpiry)
	if err != nil {
		logger.Warn("Failed to presign artifact links", zap.Error(err))
		return
	}
	if len(links) == 0 {
		return
	}
	fmt.Printf("  uploaded artifacts (links valid %s):\n", storage.DefaultPresignExpiry)
	for _, l := range links {
		fmt.Printf("    %s\n      %s\n", l.Key, l.URL)
	}
}

func printRecord(rec domain.ScenarioRecord) {
	switch rec.Status {
	case domain.StatusPassed:
		green.Printf("  PASS  ")
	case domain.StatusFailed:
		red.Printf("  FAIL  ")
	case domain.StatusSkipped:
		yellow.Printf("  SKIP  ")
	}
	fmt.Printf("%s (%s)\n", rec.Name, rec.Duration.Round(time.Millisecond))
	if rec.Error != "" {
		fmt.Printf("        %s\n", rec.Error)
	}
}

func printSummary(rep *domain.RunReport, jsonPath, htmlPath string) {
	s := rep.Summary
	fmt.Println()
	bold.Printf("Run %s\n", rep.RunID)
	fmt.Printf("  total %d  ", s.Total)
	green.Printf("passed %d  ", s.Passed)
	red.Printf("failed %d  ", s.Failed)
	yellow.Printf("skipped %d", s.Skipped)
	fmt.Printf("  (%.1f%% in %s)\n", s.PassRate, s.Duration.Round(time.Millisecond))
	fmt.Printf("  report: %s\n", jsonPath)
	fmt.Printf("          %s\n", htmlPath)
}

func serveMetrics(addr string, m *observability.Metrics, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	logger.Info("Metrics endpoint listening", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Warn("Metrics endpoint stopped", zap.Error(err))
	}
}

func timeoutsFromConfig(t config.TimeoutConfig) driver.Timeouts {
	return driver.Timeouts{
		Element:      t.Element,
		Strategy:     t.Strategy,
		NetworkQuiet: t.NetworkQuiet,
		Busy:         t.Busy,
		DropdownOpen: t.DropdownOpen,
		Assert:       t.Assert,
		Poll:         t.Poll,
		TypeDelay:    t.TypeDelay,
		KeyDelay:     t.KeyDelay,
		RetryWait:    t.RetryWait,
	}
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if v := strings.TrimSpace(part); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// initLogger creates a configured zap logger
func initLogger(env, level string) *zap.Logger {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	var cfg zap.Config
	if env == "production" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	cfg.Level = zap.NewAtomicLevelAt(zapLevel)

	logger, err := cfg.Build()
	if err != nil {
		logger, _ = zap.NewProduction()
	}

	return logger
}
