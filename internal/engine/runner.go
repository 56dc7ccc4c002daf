// Package engine runs many independent households. Each household gets its
// own stream seeded from the run seed and its index, so a run is
// reproducible no matter how many workers simulate it.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/talgya/household-sim/internal/claims"
	"github.com/talgya/household-sim/internal/entropy"
	"github.com/talgya/household-sim/internal/household"
)

// ErrInvalidRunner is returned when a Runner is misconfigured.
var ErrInvalidRunner = errors.New("invalid runner")

// Result is one simulated household and its feature rows.
type Result struct {
	Index     int
	Seed      int64
	Household *household.Household
	Summary   household.Record
	Vehicles  []household.Record
	Claims    []*claims.Claim
}

// Sink receives results in index order, from a single goroutine.
type Sink interface {
	WriteHousehold(ctx context.Context, index int, r Result) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, index int, r Result) error

func (f SinkFunc) WriteHousehold(ctx context.Context, index int, r Result) error {
	return f(ctx, index, r)
}

// Stats tracks aggregate run statistics.
type Stats struct {
	Households int `json:"households"`
	Inforce    int `json:"inforce"`
	Lapsed     int `json:"lapsed"`
	Vehicles   int `json:"vehicles"`
	Claims     int `json:"claims"`
}

func (s *Stats) add(r Result) {
	s.Households++
	if r.Household.Inforce {
		s.Inforce++
	} else {
		s.Lapsed++
	}
	s.Vehicles += len(r.Household.Vehicles)
	s.Claims += len(r.Claims)
}

// Runner simulates Households households for Years years each.
type Runner struct {
	Seed       int64
	Households int
	Years      int
	Workers    int

	// ReportEvery logs a progress report every this many households.
	// Zero disables progress reports.
	ReportEvery int

	simulated func(index int) // Test hook, called after each household.
}

// aheadPerWorker bounds how many finished households per worker may wait
// for the sink.
const aheadPerWorker = 2

func (r *Runner) maxAhead() int {
	return aheadPerWorker * r.Workers
}

func (r *Runner) validate() error {
	switch {
	case r.Households < 0:
		return fmt.Errorf("%w: households must be non-negative, got %d", ErrInvalidRunner, r.Households)
	case r.Years < 0:
		return fmt.Errorf("%w: years must be non-negative, got %d", ErrInvalidRunner, r.Years)
	case r.Workers < 1:
		return fmt.Errorf("%w: workers must be at least 1, got %d", ErrInvalidRunner, r.Workers)
	}
	return nil
}

// Run simulates every household and hands the results to sink in index
// order. It stops at the first simulation or sink error, or when ctx is
// cancelled.
func (r *Runner) Run(ctx context.Context, sink Sink) (Stats, error) {
	var stats Stats
	if err := r.validate(); err != nil {
		return stats, err
	}

	start := time.Now()
	slog.Info("run started",
		"seed", r.Seed,
		"households", r.Households,
		"years", r.Years,
		"workers", r.Workers,
	)

	g, gctx := errgroup.WithContext(ctx)

	ready := make([]chan Result, r.Households)
	for i := range ready {
		ready[i] = make(chan Result, 1)
	}

	// A slot is taken before household i starts and given back once the
	// sink has written it. Slots are taken in index order, so the next
	// household the sink needs always holds one.
	ahead := make(chan struct{}, r.maxAhead())

	// Producers.
	g.Go(func() error {
		work, wctx := errgroup.WithContext(gctx)
		work.SetLimit(r.Workers)
	launch:
		for i := 0; i < r.Households; i++ {
			select {
			case ahead <- struct{}{}:
			case <-wctx.Done():
				break launch
			}
			work.Go(func() error {
				res, err := r.Simulate(wctx, i)
				if err != nil {
					return err
				}
				if r.simulated != nil {
					r.simulated(i)
				}
				ready[i] <- res
				return nil
			})
		}
		return work.Wait()
	})

	// Ordered delivery.
	g.Go(func() error {
		for i := range ready {
			var res Result
			select {
			case <-gctx.Done():
				return gctx.Err()
			case res = <-ready[i]:
			}

			if err := sink.WriteHousehold(gctx, i, res); err != nil {
				return fmt.Errorf("write household %d: %w", i, err)
			}
			<-ahead
			stats.add(res)

			if r.ReportEvery > 0 && stats.Households%r.ReportEvery == 0 {
				slog.Info("progress report",
					"done", stats.Households,
					"of", r.Households,
					"inforce", stats.Inforce,
					"lapsed", stats.Lapsed,
					"claims", stats.Claims,
				)
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return stats, err
	}

	slog.Info("run finished",
		"households", stats.Households,
		"inforce", stats.Inforce,
		"lapsed", stats.Lapsed,
		"vehicles", stats.Vehicles,
		"claims", stats.Claims,
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	return stats, nil
}

// Simulate creates household index and advances it r.Years years.
func (r *Runner) Simulate(ctx context.Context, index int) (Result, error) {
	seed := r.Seed + int64(index)
	h, err := household.New(entropy.NewStream(seed))
	if err != nil {
		return Result{}, fmt.Errorf("create household %d: %w", index, err)
	}

	for y := 0; y < r.Years && h.Inforce; y++ {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		h.Advance(1)
	}
	if err := h.Err(); err != nil {
		return Result{}, fmt.Errorf("advance household %d: %w", index, err)
	}

	return Result{
		Index:     index,
		Seed:      seed,
		Household: h,
		Summary:   h.Summary(),
		Vehicles:  h.SummaryPerVehicle(),
		Claims:    h.Claims,
	}, nil
}
