package route

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/photonlayout/pkg/errors"
	"github.com/matzehuels/photonlayout/pkg/geom"
)

// RouteAll routes independent requests concurrently against one shared
// obstacle snapshot. Results come back in request order. The first failure
// cancels the remaining searches and is returned with the request it
// belongs to; no partial results are returned.
//
// Requests do not see each other's waveguides: the caller commits the
// results afterwards.
func RouteAll(ctx context.Context, r Router, reqs []Request, obstacles []geom.Polygon, workers int) ([]*Result, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	results := make([]*Result, len(reqs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, req := range reqs {
		g.Go(func() error {
			res, err := r.Route(ctx, req, obstacles)
			if err != nil {
				if code := errors.GetCode(err); code != "" {
					return errors.Wrap(code, err, "request %d (%q)", i, req.Name)
				}
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
