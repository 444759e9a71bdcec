package resolve

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/minbump/pkg/observability"
)

// Result pairs a root package name with its outcome.
type Result struct {
	Name    string  `json:"name"`
	Outcome Outcome `json:"outcome"`
}

// ListUpdate runs MinNecessaryUpdate for every root concurrently and returns
// the results in the order of roots. The progress counter is reset to
// len(roots) first. If any resolution fails the batch fails with that error
// and no results are returned.
func (s *Session) ListUpdate(ctx context.Context, expand bool, roots []Package, dep, required string) ([]Result, error) {
	start := time.Now()
	s.opts.Progress.SetTotal(len(roots))

	results := make([]Result, len(roots))
	g, gctx := errgroup.WithContext(ctx)
	if s.opts.MaxConcurrency > 0 {
		g.SetLimit(s.opts.MaxConcurrency)
	}
	for i, root := range roots {
		g.Go(func() error {
			out, err := s.MinNecessaryUpdate(gctx, root.Name, root.Version, dep, required, expand)
			if err != nil {
				return fmt.Errorf("resolve %s: %w", root, err)
			}
			results[i] = Result{Name: root.Name, Outcome: out}
			return nil
		})
	}

	err := g.Wait()
	observability.Resolve().OnBatch(ctx, len(roots), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return results, nil
}
