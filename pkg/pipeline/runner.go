package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pipgrid/pkg/board"
	"github.com/matzehuels/pipgrid/pkg/cache"
	"github.com/matzehuels/pipgrid/pkg/codec"
	"github.com/matzehuels/pipgrid/pkg/observability"
)

// Runner executes encodes and decodes with caching.
//
// A Runner holds no per-request state, so one Runner may serve many
// goroutines as long as its Cache does.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// TTL overrides the per-stage cache lifetimes when positive.
	TTL time.Duration
}

// NewRunner creates a runner. A nil cache disables caching; a nil keyer
// uses cache.DefaultKeyer.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// Encode returns the token for grid.
func (r *Runner) Encode(ctx context.Context, grid board.Grid) (*Result, error) {
	start := time.Now()
	index, err := codec.Default.Index(grid.Counts())
	elapsed := time.Since(start)
	if err != nil {
		observability.Codec().OnEncode(ctx, "", elapsed, err)
		return nil, err
	}

	token := codec.FormatBase62(index)
	observability.Codec().OnEncode(ctx, token, elapsed, nil)
	r.Logger.Debug("encoded grid", "token", token, "duration", elapsed)

	res := newResult(token, index.String(), grid)
	res.Stats.CodecTime = elapsed
	return res, nil
}

// decoded is the cached form of a decode.
type decoded struct {
	Token  string `json:"token"`
	Index  string `json:"index"`
	Counts []int  `json:"counts"`
}

// Decode returns the grid named by token, with placements if requested.
func (r *Runner) Decode(ctx context.Context, token string, opts Options) (*Result, error) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	start := time.Now()
	d, hit, err := r.decode(ctx, token, opts.Refresh)
	elapsed := time.Since(start)
	observability.Codec().OnDecode(ctx, token, elapsed, err)
	if err != nil {
		return nil, err
	}
	grid, err := board.GridFromCounts(d.Counts)
	if err != nil {
		return nil, err
	}

	res := newResult(d.Token, d.Index, grid)
	res.Stats.CodecTime = elapsed
	res.CacheInfo.DecodeHit = hit
	opts.Logger.Debug("decoded token", "token", d.Token, "cached", hit, "duration", elapsed)

	if !opts.Placements {
		return res, nil
	}

	start = time.Now()
	pips, hit, err := r.layout(ctx, d.Token, grid, &opts)
	res.Stats.LayoutTime = time.Since(start)
	observability.Codec().OnLayout(ctx, d.Token, len(pips), res.Stats.LayoutTime, err)
	if err != nil {
		return nil, err
	}
	res.Pips = pips
	res.CacheInfo.LayoutHit = hit
	opts.Logger.Debug("laid out pips", "token", d.Token, "pips", len(pips), "cached", hit, "duration", res.Stats.LayoutTime)
	return res, nil
}

func (r *Runner) decode(ctx context.Context, token string, refresh bool) (decoded, bool, error) {
	key := r.Keyer.DecodeKey(token)
	if !refresh {
		var d decoded
		if r.load(ctx, "decode", key, &d) {
			return d, true, nil
		}
	}

	index, err := codec.ParseBase62(token)
	if err != nil {
		return decoded{}, false, err
	}
	counts, err := codec.Default.FromIndex(index)
	if err != nil {
		return decoded{}, false, err
	}
	d := decoded{
		Token:  codec.FormatBase62(index),
		Index:  index.String(),
		Counts: counts,
	}
	r.store(ctx, "decode", key, d, cache.DecodeTTL)
	return d, false, nil
}

// load reads a cached JSON value. Backend errors and undecodable entries
// are treated as misses.
func (r *Runner) load(ctx context.Context, keyType, key string, v any) bool {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "type", keyType, "err", err)
	}
	if err != nil || !hit || json.Unmarshal(data, v) != nil {
		observability.Cache().OnCacheMiss(ctx, keyType)
		return false
	}
	observability.Cache().OnCacheHit(ctx, keyType)
	return true
}

func (r *Runner) store(ctx context.Context, keyType, key string, v any, ttl time.Duration) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if r.TTL > 0 {
		ttl = r.TTL
	}
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "type", keyType, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
