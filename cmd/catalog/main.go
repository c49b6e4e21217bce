// Command catalog performs one catalog retrieval run: it looks up a mainshock,
// fetches the aftershocks of its data and forecast windows, and prints a
// summary. Records are optionally published to Kafka.
//
// Usage:
//
//	go run ./cmd/catalog -run run.yaml
//	go run ./cmd/catalog 2016p858000 7 14
//
// Positional arguments override the run file: event id, then the forecast
// window's min and max days.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/couchcryptid/quake-catalog-service/internal/adapter/fdsn"
	kafkaadapter "github.com/couchcryptid/quake-catalog-service/internal/adapter/kafka"
	"github.com/couchcryptid/quake-catalog-service/internal/catalog"
	"github.com/couchcryptid/quake-catalog-service/internal/config"
	"github.com/couchcryptid/quake-catalog-service/internal/domain"
	"github.com/couchcryptid/quake-catalog-service/internal/observability"
)

func main() {
	runPath := flag.String("run", "", "path to a YAML run file (defaults apply when empty)")
	flag.Parse()

	run, err := resolveRun(*runPath, flag.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "catalog: %v\n", err)
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger := observability.NewLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := execute(ctx, cfg, run, logger, observability.NewMetrics(), os.Stdout)
	stop()
	os.Exit(code)
}

// resolveRun loads the run file, if any, and applies positional overrides.
func resolveRun(path string, args []string) (*config.Run, error) {
	run := config.DefaultRun()
	if path != "" {
		loaded, err := config.LoadRun(path)
		if err != nil {
			return nil, err
		}
		run = loaded
	}

	if len(args) > 3 {
		return nil, fmt.Errorf("expected at most 3 arguments, got %d", len(args))
	}
	if len(args) > 0 {
		run.EventID = args[0]
	}
	if len(args) > 1 {
		v, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid forecast min days %q", args[1])
		}
		run.ForecastWindow.MinDays = v
	}
	if len(args) > 2 {
		v, err := strconv.ParseFloat(args[2], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid forecast max days %q", args[2])
		}
		run.ForecastWindow.MaxDays = v
	}

	if err := run.Validate(); err != nil {
		return nil, err
	}
	return run, nil
}

func execute(ctx context.Context, cfg *config.Config, run *config.Run, logger *slog.Logger, metrics *observability.Metrics, out io.Writer) int {
	depthUnit, err := fdsn.ParseDepthUnit(cfg.FDSNDepthUnit)
	if err != nil {
		logger.Error("invalid depth unit", "error", err)
		return 1
	}
	accessor := catalog.New(cfg.FDSNBaseURL,
		fdsn.NewClient(cfg.FDSNTimeout, logger),
		fdsn.NewDecoder(depthUnit, logger),
		logger, metrics)

	res := accessor.LookupEvent(ctx, run.EventID)
	if res.Failure != nil {
		logger.Error("mainshock lookup failed", "event_id", run.EventID, "error", res.Failure)
		return 1
	}
	if len(res.Records) == 0 {
		logger.Error("mainshock not found", "event_id", run.EventID)
		return 1
	}
	mainshock := res.Records[0]

	region := domain.CircleAround(mainshock, run.Region.RadiusKm)
	dataWindow := toWindow(run.DataWindow, run.Region)
	forecastWindow := toWindow(run.ForecastWindow, run.Region)

	data, err := fetchWindow(ctx, accessor, mainshock, dataWindow, region, logger)
	if err != nil {
		logger.Error("data window failed", "error", err)
		return 1
	}
	forecast, err := fetchWindow(ctx, accessor, mainshock, forecastWindow, region, logger)
	if err != nil {
		logger.Error("forecast window failed", "error", err)
		return 1
	}

	complete := domain.FilterByMagnitude(data, run.Catalog.MagComplete)
	observed := domain.CountAtOrAbove(forecast, run.Catalog.ForecastMagnitudes)

	printSummary(out, run, mainshock, data, complete, forecast, observed)

	if cfg.KafkaEnabled {
		writer := kafkaadapter.NewWriter(cfg, logger, metrics)
		defer func() {
			if err := writer.Close(); err != nil {
				logger.Error("kafka writer close error", "error", err)
			}
		}()
		batch := make([]domain.EventRecord, 0, len(complete)+len(forecast))
		batch = append(batch, complete...)
		batch = append(batch, forecast...)
		if err := writer.LoadBatch(ctx, mainshock.ID, batch); err != nil {
			logger.Error("publish failed", "error", err)
			return 1
		}
	}
	return 0
}

// fetchWindow treats a degraded result as a run failure; a partial catalog
// would skew any summary built on it.
func fetchWindow(ctx context.Context, a *catalog.Accessor, ms domain.EventRecord, w domain.Window, region domain.Region, logger *slog.Logger) ([]domain.EventRecord, error) {
	if !domain.WindowComplete(ms, w) {
		logger.Warn("window extends past now, catalog may still grow",
			"min_days", w.MinDays,
			"max_days", w.MaxDays,
			"elapsed_days", domain.ElapsedDays(ms),
		)
	}
	res, err := a.FetchWindow(ctx, ms, w, region)
	if err != nil {
		return nil, err
	}
	if res.Failure != nil {
		return nil, res.Failure
	}
	return res.Records, nil
}

func toWindow(w config.WindowConfig, r config.RegionConfig) domain.Window {
	return domain.Window{
		MinDays:    w.MinDays,
		MaxDays:    w.MaxDays,
		MinDepthKm: r.MinDepth,
		MaxDepthKm: r.MaxDepth,
	}
}

func printSummary(out io.Writer, run *config.Run, ms domain.EventRecord, data, complete, forecast []domain.EventRecord, observed []int) {
	fmt.Fprintf(out, "Mainshock %s  M%.1f  %s  (%.4f, %.4f) depth %.1f km\n",
		ms.ID, ms.Magnitude, ms.OriginTime.Format("2006-01-02T15:04:05.000Z07:00"),
		ms.Hypocenter.Lat, ms.Hypocenter.Lon, ms.Hypocenter.DepthKm)
	fmt.Fprintf(out, "Region    circle r=%.0f km, depth %.0f..%.0f km\n",
		run.Region.RadiusKm, run.Region.MinDepth, run.Region.MaxDepth)
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Data window     %g..%g days: %d events, %d at or above Mc %.1f\n",
		run.DataWindow.MinDays, run.DataWindow.MaxDays, len(data), len(complete), run.Catalog.MagComplete)
	fmt.Fprintf(out, "Forecast window %g..%g days: %d events\n",
		run.ForecastWindow.MinDays, run.ForecastWindow.MaxDays, len(forecast))
	for i, m := range run.Catalog.ForecastMagnitudes {
		fmt.Fprintf(out, "  M>=%.1f  %d\n", m, observed[i])
	}
}
