// Package parallel provides small concurrency combinators shared across the
// service.
package parallel

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Task is one unit of work whose failure must not affect siblings.
type Task func(ctx context.Context) error

// SettleAll runs every task to completion and returns their errors, indexed
// by task order (nil entries mark successes). A failing task never cancels
// its siblings: errors travel through the result slice, not the group, so no
// shared-context cancellation can occur. limit bounds how many tasks run at
// once; zero or negative means unbounded.
func SettleAll(ctx context.Context, limit int, tasks []Task) []error {
	errs := make([]error, len(tasks))
	if len(tasks) == 0 {
		return errs
	}

	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, task := range tasks {
		i, task := i, task
		g.Go(func() error {
			errs[i] = task(ctx)
			return nil
		})
	}
	// Tasks always return nil into the group; Wait only joins.
	_ = g.Wait()
	return errs
}
