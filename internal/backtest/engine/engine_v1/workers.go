package engine

import "golang.org/x/sync/errgroup"

// workerPool fans per-instrument work out to at most limit goroutines. Each
// task must only write its own slot k; callers reduce results after the join.
type workerPool struct {
	limit int
}

// newWorkerPool returns a pool for limit workers. A limit of 0 or 1 runs tasks inline.
func newWorkerPool(limit int) *workerPool {
	return &workerPool{limit: limit}
}

func (w *workerPool) forEach(n int, fn func(k int) error) error {
	if w == nil || w.limit <= 1 || n < 2 {
		for k := 0; k < n; k++ {
			if err := fn(k); err != nil {
				return err
			}
		}

		return nil
	}

	var g errgroup.Group

	g.SetLimit(w.limit)

	for k := 0; k < n; k++ {
		g.Go(func() error {
			return fn(k)
		})
	}

	return g.Wait()
}
