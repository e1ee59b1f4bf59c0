package pipeline

import (
	"context"

	"github.com/matzehuels/pipgrid/pkg/board"
	"github.com/matzehuels/pipgrid/pkg/cache"
)

// Layout returns pip placements for grid, keyed in the cache by its
// canonical token and the geometry.
func (r *Runner) Layout(ctx context.Context, grid board.Grid, opts Options) ([]board.Pip, error) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	token, err := grid.Token()
	if err != nil {
		return nil, err
	}
	pips, _, err := r.layout(ctx, token, grid, &opts)
	return pips, err
}

func (r *Runner) layout(ctx context.Context, token string, grid board.Grid, opts *Options) ([]board.Pip, bool, error) {
	key := r.Keyer.LayoutKey(token, opts.LayoutKeyOpts())
	if !opts.Refresh {
		var pips []board.Pip
		if r.load(ctx, "layout", key, &pips) && len(pips) == board.TotalPips {
			return pips, true, nil
		}
	}

	b, err := board.Restore(opts.Geometry, grid)
	if err != nil {
		return nil, false, err
	}
	pips := b.Pips()
	opts.Logger.Debug("restored layout", "token", token, "origin", opts.Geometry.Origin, "cell", opts.Geometry.CellWidth)
	r.store(ctx, "layout", key, pips, cache.LayoutTTL)
	return pips, false, nil
}
