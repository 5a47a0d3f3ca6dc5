// Package workpool runs independent build tasks on a bounded set of goroutines.
package workpool

import (
	"context"
	"sync"
)

// Map applies fn to every item using at most workers goroutines and returns
// the results in input order. The first error cancels the context passed to
// the remaining tasks and is returned once all workers have exited.
func Map[T, R any](ctx context.Context, workers int, items []T, fn func(ctx context.Context, item T) (R, error)) ([]R, error) {
	results := make([]R, len(items))
	if len(items) == 0 {
		return results, ctx.Err()
	}
	if workers > len(items) {
		workers = len(items)
	}
	if workers < 1 {
		workers = 1
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type task struct {
		idx  int
		item T
	}
	tasks := make(chan task)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	worker := func() {
		defer wg.Done()
		for t := range tasks {
			if ctx.Err() != nil {
				continue
			}
			r, err := fn(ctx, t.item)
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
					cancel()
				}
				mu.Unlock()
				continue
			}
			results[t.idx] = r
		}
	}
	wg.Add(workers)
	for range workers {
		go worker()
	}

feed:
	for i, item := range items {
		select {
		case <-ctx.Done():
			break feed
		case tasks <- task{idx: i, item: item}:
		}
	}
	close(tasks)
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// Run is Map for tasks without results.
func Run[T any](ctx context.Context, workers int, items []T, fn func(ctx context.Context, item T) error) error {
	_, err := Map(ctx, workers, items, func(ctx context.Context, item T) (struct{}, error) {
		return struct{}{}, fn(ctx, item)
	})
	return err
}
