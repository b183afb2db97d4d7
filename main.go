package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"airbnb-insights/config"
	"airbnb-insights/metrics"
	"airbnb-insights/services"
	"airbnb-insights/source/drive"
	"airbnb-insights/storage"
	"airbnb-insights/utils"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() (err error) {
	// ================== Bootstrap ====================
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := utils.NewLogger(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("European short-term rental insights")
	logger.Info("Cities: %d | Retries: %d | Rate delay: %dms | Timeout: %s",
		len(config.DriveFiles), cfg.MaxRetries, cfg.RateLimitDelay, cfg.FetchTimeout)

	market, err := config.LoadMarket(cfg.MarketFile)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	loadMetrics := metrics.NewLoadMetrics(reg)
	defer func() {
		if cfg.MetricsTextfile == "" {
			return
		}
		if werr := prometheus.WriteToTextfile(cfg.MetricsTextfile, reg); werr != nil {
			logger.Error("Failed to write metrics textfile: %v", werr)
			return
		}
		logger.Info("Metrics written to %s", cfg.MetricsTextfile)
	}()

	// =============== Source ===================================
	var driveOpts []drive.Option
	if cfg.BrowserConfirm {
		driveOpts = append(driveOpts, drive.WithConfirmResolver(drive.NewBrowserConfirmResolver(cfg.FetchTimeout, logger)))
	}
	fetcher := drive.NewClient(cfg, logger, driveOpts...)

	loaderOpts := []services.LoaderOption{services.WithMetrics(loadMetrics)}
	if cfg.RedisURL != "" {
		snapshots, serr := storage.NewRedisSnapshotStore(ctx, cfg.RedisURL, config.DriveFiles, cfg.SnapshotTTL, logger)
		if serr != nil {
			logger.Warn("Redis snapshot cache disabled: %v", serr)
		} else {
			defer func() { err = multierr.Append(err, snapshots.Close()) }()
			loaderOpts = append(loaderOpts, services.WithSnapshotStore(snapshots))
		}
	}
	if cfg.RawDumpDir != "" {
		loaderOpts = append(loaderOpts, services.WithRawStorage(storage.NewRawCSVWriter(cfg.RawDumpDir, logger)))
	}

	// =========== Load and clean ======================
	loader := services.NewDatasetLoader(config.DriveFiles, fetcher, services.NewDataCleaner(logger), logger, loaderOpts...)
	ds, warnings := loader.Load(ctx)
	for _, w := range warnings {
		logger.Warn("%s", w)
	}
	if ds.Empty() {
		return fmt.Errorf("no listings available (%d warnings)", len(warnings))
	}

	// ==== Insights ============================
	report := services.NewInsightService(logger).Generate(ds)
	rois, err := services.NewMarketEstimator(market).Estimate(ds, cfg.MonthlyExpenses)
	if err != nil {
		return err
	}
	services.PrintInsightReport(os.Stdout, report, rois)

	// ========= Export clean data ============
	sinks, err := openSinks(ctx, cfg, logger)
	if err != nil {
		return err
	}
	for _, sink := range sinks {
		err = multierr.Append(err, sink.SaveClean(ctx, ds.Listings))
		err = multierr.Append(err, sink.Close())
	}
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	logger.Info("Done! %d listings exported to %d sink(s)", ds.Len(), len(sinks))
	return nil
}

func openSinks(ctx context.Context, cfg *config.Config, logger *utils.Logger) ([]storage.CleanStorage, error) {
	var sinks []storage.CleanStorage
	if cfg.CSVFilePath != "" {
		sinks = append(sinks, storage.NewCSVWriter(cfg.CSVFilePath, logger))
	}
	if cfg.SQLitePath != "" {
		w, err := storage.NewSQLiteWriter(cfg.SQLitePath, logger)
		if err != nil {
			return nil, closeAll(sinks, err)
		}
		sinks = append(sinks, w)
	}
	if cfg.DatabaseURL != "" {
		w, err := storage.NewPostgresWriter(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			return nil, closeAll(sinks, err)
		}
		sinks = append(sinks, w)
		if err := w.CreateTable(ctx); err != nil {
			return nil, closeAll(sinks, err)
		}
	}
	return sinks, nil
}

func closeAll(sinks []storage.CleanStorage, err error) error {
	for _, s := range sinks {
		err = multierr.Append(err, s.Close())
	}
	return err
}
