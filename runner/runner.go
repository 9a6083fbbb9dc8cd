// Package runner executes a batch of independent simulation jobs
// concurrently, one goroutine and one exclusively-owned Road per job.
package runner

import (
	"context"
	"fmt"
	"time"

	channerics "github.com/niceyeti/channerics/channels"
	"golang.org/x/sync/errgroup"

	"highwaysim/result"
	"highwaysim/roadsim"
	"highwaysim/snapshot"
)

// Job describes one scenario run: its Road configuration, how many
// rounds to run it for, which cells to report flow for, and an optional
// snapshot sink (nil means snapshot.Noop{}).
type Job struct {
	Name     string
	Config   roadsim.RoadConfig
	Rounds   int
	Monitors []result.MonitorCell
	Sink     snapshot.SnapshotSink
}

// Outcome pairs a job's name with its finished Result.
type Outcome struct {
	Name   string
	Result result.Result
}

// RunBatch runs every job to completion on its own goroutine and returns
// one Outcome per job, order unspecified. Each job owns a single Road
// for its own exclusive duration; no Road is ever touched by more than
// one goroutine, and independent Road instances carry no ordering
// guarantee relative to one another, so this concurrency is additive to
// the single-threaded kernel contract rather than in tension with it.
// Per-job channels are fanned in with channerics.Merge, and an
// errgroup.Group cancels the remaining jobs on the first error.
func RunBatch(ctx context.Context, jobs []Job) ([]Outcome, error) {
	g, gctx := errgroup.WithContext(ctx)
	done := gctx.Done()

	channels := make([]<-chan Outcome, len(jobs))
	for i, job := range jobs {
		i, job := i, job
		out := make(chan Outcome, 1)
		channels[i] = out

		g.Go(func() error {
			defer close(out)
			o, err := runOne(gctx, job)
			if err != nil {
				return fmt.Errorf("runner: job %q: %w", job.Name, err)
			}
			select {
			case out <- o:
			case <-done:
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var outcomes []Outcome
	// gctx is cancelled as soon as Wait returns, so the fan-in watches the
	// caller's ctx instead; every job has already sent its Outcome.
	for o := range channerics.Merge(ctx.Done(), channels...) {
		outcomes = append(outcomes, o)
	}
	return outcomes, nil
}

func runOne(ctx context.Context, job Job) (Outcome, error) {
	road, err := roadsim.NewRoad(job.Config)
	if err != nil {
		return Outcome{}, err
	}

	sink := job.Sink
	if sink == nil {
		sink = snapshot.Noop{}
	}

	start := time.Now()
	if err := sink.AddSnapshot(road); err != nil {
		return Outcome{}, err
	}

	for i := 0; i < job.Rounds; i++ {
		if err := ctx.Err(); err != nil {
			return Outcome{}, err
		}
		road.Round()
		if err := sink.AddSnapshot(road); err != nil {
			return Outcome{}, err
		}
	}

	if err := sink.Close(); err != nil {
		return Outcome{}, err
	}

	return Outcome{
		Name:   job.Name,
		Result: result.FromRoad(road, time.Since(start), job.Monitors),
	}, nil
}
