// Package pipeline turns grids into share tokens and share tokens back into
// grids, with caching.
//
// Both the CLI and the HTTP server go through a [Runner], so the two entry
// points agree on validation, caching, and the shape of results.
//
// # Stages
//
//  1. Parse: read a grid document (JSON or YAML) and validate it
//  2. Encode or Decode: convert between grid and token via [codec]
//  3. Layout (optional): place pips for a decoded grid via [board]
//  4. Render: serialize a [Result] as JSON or YAML
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	res, err := runner.Decode(ctx, "5KE", pipeline.Options{Placements: true})
//	if err != nil {
//	    return err
//	}
//	fmt.Println(res.Grid, len(res.Pips))
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pipgrid/pkg/board"
	"github.com/matzehuels/pipgrid/pkg/cache"
	"github.com/matzehuels/pipgrid/pkg/errors"
)

// =============================================================================
// Output Formats
// =============================================================================

// Format constants for decoded output.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatTable: true,
	FormatJSON:  true,
	FormatYAML:  true,
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: table, json, yaml)", format)
	}
	return nil
}

// =============================================================================
// Options
// =============================================================================

// Options configures a decode.
type Options struct {
	// Placements adds pip coordinates to the result.
	Placements bool `json:"placements,omitempty"`

	// Geometry lays out placements. The zero value means board.DefaultGeometry.
	Geometry board.Geometry `json:"geometry"`

	// Refresh skips cache reads; results are still written back.
	Refresh bool `json:"refresh,omitempty"`

	// Logger receives per-request debug output. Runner methods default it
	// to the runner's logger; elsewhere nil means discard.
	Logger *log.Logger `json:"-"`

	validated bool
}

// ValidateAndSetDefaults applies defaults and checks the geometry.
// Calling it more than once has no further effect.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Geometry == (board.Geometry{}) {
		o.Geometry = board.DefaultGeometry()
	}
	if err := o.Geometry.Validate(); err != nil {
		return err
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// LayoutKeyOpts returns the cache key options for placements.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		OriginX:    o.Geometry.Origin.X,
		OriginY:    o.Geometry.Origin.Y,
		CellWidth:  o.Geometry.CellWidth,
		CellHeight: o.Geometry.CellHeight,
		PipSize:    o.Geometry.PipSize,
	}
}

// =============================================================================
// Results
// =============================================================================

// Result is an encoded or decoded grid.
type Result struct {
	// Token is the canonical share token, without leading zeros.
	Token string `json:"token" yaml:"token"`

	// Index is the token's rank in decimal.
	Index string `json:"index" yaml:"index"`

	// Grid holds the per-cell counts, rows top to bottom.
	Grid board.Grid `json:"grid" yaml:"grid"`

	RowTotals [board.Rows]int `json:"row_totals" yaml:"row_totals"`
	ColTotals [board.Cols]int `json:"col_totals" yaml:"col_totals"`
	Total     int             `json:"total" yaml:"total"`

	// Pips holds placements when Options.Placements is set.
	Pips []board.Pip `json:"pips,omitempty" yaml:"pips,omitempty"`

	Stats     Stats     `json:"-" yaml:"-"`
	CacheInfo CacheInfo `json:"-" yaml:"-"`
}

// Stats contains timing information.
type Stats struct {
	CodecTime  time.Duration
	LayoutTime time.Duration
}

// CacheInfo tracks which stages were served from cache.
type CacheInfo struct {
	DecodeHit bool
	LayoutHit bool
}

func newResult(token, index string, grid board.Grid) *Result {
	return &Result{
		Token:     token,
		Index:     index,
		Grid:      grid,
		RowTotals: grid.RowTotals(),
		ColTotals: grid.ColTotals(),
		Total:     grid.Total(),
	}
}

func (r *Result) String() string {
	return fmt.Sprintf("%s (index %s)", r.Token, r.Index)
}
