package scheduler

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/hoshiyanatsu/stock-prediction/internal/cache"
)

// HistoryPruner removes stale cached price history
type HistoryPruner interface {
	PruneStale(maxAge time.Duration, now time.Time) (int, error)
}

// stale history is kept longer than the forecast memoization so a
// refetch failure still leaves chartable data around
const historyRetention = 7 * 24 * time.Hour

// MaintenanceJob evicts expired forecast-cache entries and prunes
// price history that has not been refreshed for a week.
type MaintenanceJob struct {
	resultCache *cache.Store
	pruner      HistoryPruner
	log         zerolog.Logger
}

// NewMaintenanceJob creates the hourly maintenance job
func NewMaintenanceJob(resultCache *cache.Store, pruner HistoryPruner, log zerolog.Logger) *MaintenanceJob {
	return &MaintenanceJob{
		resultCache: resultCache,
		pruner:      pruner,
		log:         log.With().Str("job", "maintenance").Logger(),
	}
}

// Name implements Job
func (j *MaintenanceJob) Name() string {
	return "cache-maintenance"
}

// Run implements Job
func (j *MaintenanceJob) Run() error {
	evicted := j.resultCache.Sweep()

	pruned, err := j.pruner.PruneStale(historyRetention, time.Now())
	if err != nil {
		return err
	}

	j.log.Info().
		Int("forecasts_evicted", evicted).
		Int("symbols_pruned", pruned).
		Msg("Maintenance sweep completed")

	return nil
}
