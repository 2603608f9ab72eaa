package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/projectdiscovery/hostsweep/pkg/probe"
	syncutil "github.com/projectdiscovery/utils/sync"
)

var (
	// ErrNoWorkers is returned when no worker can be started
	ErrNoWorkers = errors.New("scheduler cannot start workers")
	// ErrProbePanic is the result error of a probe that panicked
	ErrProbePanic = errors.New("probe panicked")
)

// Scheduler runs batches of probe requests on a bounded pool of workers
type Scheduler struct {
	prober      probe.Prober
	concurrency int
}

// New creates a scheduler that never runs more than concurrency probes at once
func New(prober probe.Prober, concurrency int) (*Scheduler, error) {
	if prober == nil {
		return nil, fmt.Errorf("%w: nil prober", ErrNoWorkers)
	}
	if concurrency < 1 {
		return nil, fmt.Errorf("%w: concurrency must be at least 1, got %d", ErrNoWorkers, concurrency)
	}
	return &Scheduler{prober: prober, concurrency: concurrency}, nil
}

// Concurrency returns the in-flight ceiling
func (s *Scheduler) Concurrency() int {
	return s.concurrency
}

// Run executes requests and streams one result per request in completion order.
// The channel is closed once every request produced a result, the caller must
// drain it. Cancelling ctx does not drop requests: the ones not yet probed
// complete immediately with the context error.
func (s *Scheduler) Run(ctx context.Context, requests []probe.Request) (<-chan probe.Result, error) {
	workers := min(s.concurrency, len(requests))
	if workers == 0 {
		results := make(chan probe.Result)
		close(results)
		return results, nil
	}

	awg, err := syncutil.New(syncutil.WithSize(workers))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoWorkers, err)
	}

	queue := make(chan probe.Request)
	results := make(chan probe.Result, workers)

	for i := 0; i < workers; i++ {
		awg.Add()
		go func() {
			defer awg.Done()
			for req := range queue {
				results <- s.execute(ctx, req)
			}
		}()
	}

	go func() {
		for _, req := range requests {
			queue <- req
		}
		close(queue)
		awg.Wait()
		close(results)
	}()

	return results, nil
}

// execute runs a single probe, turning errors and panics into a failed result
func (s *Scheduler) execute(ctx context.Context, req probe.Request) (result probe.Result) {
	result.Request = req
	if err := ctx.Err(); err != nil {
		result.Err = err
		return result
	}

	start := time.Now()
	defer func() {
		result.Duration = time.Since(start)
		if r := recover(); r != nil {
			result.Succeeded = false
			result.Err = fmt.Errorf("%w: %s: %v", ErrProbePanic, req.Target(), r)
		}
	}()

	result.Succeeded, result.Err = s.prober.Probe(ctx, req)
	if result.Err != nil {
		result.Succeeded = false
	}
	return result
}
