package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/anyulbade/retail-insights-engine/internal/config"
	"github.com/anyulbade/retail-insights-engine/internal/database"
	"github.com/anyulbade/retail-insights-engine/internal/daterange"
	"github.com/anyulbade/retail-insights-engine/internal/metric"
	"github.com/anyulbade/retail-insights-engine/internal/query"
	"github.com/anyulbade/retail-insights-engine/internal/repository"
	"github.com/anyulbade/retail-insights-engine/internal/service"
)

var (
	snapshotCmd = &cobra.Command{
		Use:   "snapshot",
		Short: "Print KPI cards and every metric/level insight for a range as JSON",
		RunE:  snapshot,
	}

	snapshotStart string
	snapshotEnd   string
)

func init() {
	snapshotCmd.Flags().StringVar(&snapshotStart, "start", "", "range start, YYYY-MM-DD (required)")
	snapshotCmd.Flags().StringVar(&snapshotEnd, "end", "", "range end, YYYY-MM-DD (defaults to today)")
}

type Snapshot struct {
	KPI      []service.KpiResult      `json:"kpi"`
	Insights []*service.InsightResult `json:"insights"`
}

func snapshot(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	setLogLevel(cfg.LogLevel)

	start, err := daterange.ParseDate(snapshotStart)
	if err != nil {
		return err
	}
	end, err := daterange.ParseDate(snapshotEnd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	pool, err := database.NewPool(ctx, cfg.DatabaseURL(), cfg.DBMaxConns)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	out, err := takeSnapshot(ctx, repository.NewStore(pool), cfg.SnapshotConcurrency, start, end)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// takeSnapshot runs every sales metric at every level concurrently, each on
// its own connection. Results keep metric then level order.
func takeSnapshot(ctx context.Context, store service.Acquirer, concurrency int, start, end time.Time) (*Snapshot, error) {
	calc := daterange.NewCalculator()
	insights := service.NewInsightService(store, calc, nil)

	defs := metric.Sales()
	out := &Snapshot{Insights: make([]*service.InsightResult, len(defs)*len(query.Levels))}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	g.Go(func() error {
		cards, err := service.NewKPIService(store, calc, nil).GetAllKPI(gctx, start, end)
		if err != nil {
			return fmt.Errorf("kpi: %w", err)
		}
		out.KPI = cards
		return nil
	})

	for i, def := range defs {
		for j, level := range query.Levels {
			slot := i*len(query.Levels) + j
			req := service.InsightRequest{
				Metric:          string(def.Name),
				ComparisonLevel: string(level),
				StartDate:       start,
				EndDate:         end,
			}
			g.Go(func() error {
				res, err := insights.FetchInsights(gctx, req)
				if err != nil {
					return fmt.Errorf("%s by %s: %w", req.Metric, req.ComparisonLevel, err)
				}
				out.Insights[slot] = res
				log.Debug().Str("metric", req.Metric).Str("level", req.ComparisonLevel).Msg("snapshot part done")
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
