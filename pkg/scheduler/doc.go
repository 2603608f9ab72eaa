// Package scheduler executes batches of independent probes with a fixed upper
// bound on how many run at the same time.
//
// A Run starts min(concurrency, len(requests)) workers that pull requests from
// a shared queue and push results to a shared channel. Results arrive in
// completion order, exactly one per request; a failing or panicking probe only
// fails its own result.
//
//	s, err := scheduler.New(prober, 256)
//	results, err := s.Run(ctx, requests)
//	for result := range results {
//		// aggregate
//	}
package scheduler
