package presence

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	maxStressUsers          = 1000
	maxStressActionsPerUser = 100

	// Actions bypass the broker's gate, so the only fan-out bound needed
	// is on goroutine count.
	stressActionConcurrency = 64
)

// StressReport summarizes one stress run.
type StressReport struct {
	TotalOps       int     `json:"total_ops"`
	ElapsedSeconds float64 `json:"elapsed_seconds"`
	OnlineCount    int     `json:"online_count"`
	OpsPerSecond   float64 `json:"ops_per_second"`
}

// runStress logs in `users` synthetic users concurrently, then records
// actionsPerUser actions for each of them, and reports throughput.
func (s *Service) runStress(ctx context.Context, users, actionsPerUser int) (StressReport, error) {
	start := time.Now()

	names := make([]string, users)
	for i := range names {
		names[i] = fmt.Sprintf("stress-user-%04d", i)
	}

	if err := s.broker.LoginMany(ctx, names); err != nil {
		return StressReport{}, err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(stressActionConcurrency)
	for _, name := range names {
		name := name
		for k := 0; k < actionsPerUser; k++ {
			label := fmt.Sprintf("action-%d", k)
			g.Go(func() error {
				return s.broker.RecordAction(ctx, name, label)
			})
		}
	}
	if err := g.Wait(); err != nil {
		return StressReport{}, err
	}

	elapsed := time.Since(start)
	total := users + users*actionsPerUser

	report := StressReport{
		TotalOps:       total,
		ElapsedSeconds: elapsed.Seconds(),
		OnlineCount:    s.broker.OnlineCount(),
	}
	if secs := elapsed.Seconds(); secs > 0 {
		report.OpsPerSecond = float64(total) / secs
	}
	return report, nil
}
