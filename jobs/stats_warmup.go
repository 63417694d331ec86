package jobs

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/niaxtu/niaxtu-admin/internal/console"
	"github.com/niaxtu/niaxtu-admin/internal/credstore"
	jobmetrics "github.com/niaxtu/niaxtu-admin/internal/jobs"
)

// StatsWarmer refreshes the dashboard statistics cache so the first
// console render after a quiet period does not pay the API round-trip.
type StatsWarmer struct {
	stats   *console.StatsSource
	store   credstore.Store
	logger  *slog.Logger
	metrics *jobmetrics.Metrics
}

// NewStatsWarmer wires the warmer over the shared credential store.
func NewStatsWarmer(stats *console.StatsSource, store credstore.Store, logger *slog.Logger, metrics *jobmetrics.Metrics) *StatsWarmer {
	return &StatsWarmer{stats: stats, store: store, logger: logger, metrics: metrics}
}

// Handle processes TaskStatsWarmup tasks.
func (s *StatsWarmer) Handle(ctx context.Context, _ *asynq.Task) error {
	return s.metrics.Track("stats_warmup").End(s.warm(ctx))
}

func (s *StatsWarmer) warm(ctx context.Context) error {
	creds, err := credstore.Load(ctx, s.store)
	if err != nil {
		return err
	}
	if creds.IsEmpty() {
		s.logger.Debug("no session, skipping stats warmup")
		return nil
	}
	if _, err := s.stats.Refresh(ctx, creds.Token); err != nil {
		return err
	}
	return nil
}
