package pipeline

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pipgrid/pkg/board"
	"github.com/matzehuels/pipgrid/pkg/cache"
	"github.com/matzehuels/pipgrid/pkg/errors"
	"github.com/matzehuels/pipgrid/pkg/lattice"
	"github.com/matzehuels/pipgrid/pkg/observability"
)

func goldenGrid() board.Grid {
	var g board.Grid
	g[4][0] = 4
	g[0][4] = 96
	return g
}

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

func fileRunner(t *testing.T) *Runner {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	return NewRunner(c, nil, quietLogger())
}

type recordingHooks struct {
	observability.NoopCodecHooks
	mu      sync.Mutex
	decodes []error
	layouts []int
}

func (h *recordingHooks) OnDecode(_ context.Context, _ string, _ time.Duration, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.decodes = append(h.decodes, err)
}

func (h *recordingHooks) OnLayout(_ context.Context, _ string, pips int, _ time.Duration, _ error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.layouts = append(h.layouts, pips)
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"table", false},
		{"json", false},
		{"yaml", false},
		{"JSON", true},
		{"svg", true},
		{"", true},
	}
	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, errors.ErrCodeInvalidFormat) {
			t.Errorf("ValidateFormat(%q) code = %s", tt.format, errors.GetCode(err))
		}
	}
}

func TestEncode(t *testing.T) {
	r := NewRunner(nil, nil, quietLogger())

	res, err := r.Encode(context.Background(), goldenGrid())
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if res.Token != "5KE" || res.Index != "20474" {
		t.Errorf("Encode = %s, want 5KE (index 20474)", res)
	}
	if res.Total != board.TotalPips {
		t.Errorf("Total = %d, want %d", res.Total, board.TotalPips)
	}
	if res.RowTotals != [board.Rows]int{96, 0, 0, 0, 4} {
		t.Errorf("RowTotals = %v", res.RowTotals)
	}
	if res.ColTotals != [board.Cols]int{4, 0, 0, 0, 96} {
		t.Errorf("ColTotals = %v", res.ColTotals)
	}
}

func TestEncodeInvalid(t *testing.T) {
	r := NewRunner(nil, nil, quietLogger())
	g := goldenGrid()
	g[2][2] = 1

	if _, err := r.Encode(context.Background(), g); !errors.Is(err, errors.ErrCodeInvalidCounts) {
		t.Errorf("Encode(101 pips) error = %v, want %s", err, errors.ErrCodeInvalidCounts)
	}
}

func TestDecode(t *testing.T) {
	ctx := context.Background()
	r := fileRunner(t)

	res, err := r.Decode(ctx, "5KE", Options{})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if res.Grid != goldenGrid() {
		t.Errorf("Grid = %v, want %v", res.Grid, goldenGrid())
	}
	if res.Index != "20474" {
		t.Errorf("Index = %s, want 20474", res.Index)
	}
	if res.CacheInfo.DecodeHit {
		t.Error("first decode reported a cache hit")
	}
	if res.Pips != nil {
		t.Error("placements returned without being requested")
	}

	res, err = r.Decode(ctx, "5KE", Options{})
	if err != nil {
		t.Fatalf("Decode (cached): %v", err)
	}
	if !res.CacheInfo.DecodeHit {
		t.Error("second decode missed the cache")
	}
	if res.Grid != goldenGrid() {
		t.Errorf("cached Grid = %v", res.Grid)
	}

	res, err = r.Decode(ctx, "5KE", Options{Refresh: true})
	if err != nil {
		t.Fatalf("Decode (refresh): %v", err)
	}
	if res.CacheInfo.DecodeHit {
		t.Error("refresh decode reported a cache hit")
	}
}

func TestDecodeCanonicalToken(t *testing.T) {
	r := NewRunner(nil, nil, quietLogger())
	res, err := r.Decode(context.Background(), "005KE", Options{})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if res.Token != "5KE" {
		t.Errorf("Token = %q, want canonical 5KE", res.Token)
	}
}

func TestDecodeInvalid(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetCodecHooks(hooks)
	defer observability.Reset()

	r := NewRunner(nil, nil, quietLogger())
	for _, token := range []string{"", "5K-E", "262FTvhgWL3xqXV"} {
		_, err := r.Decode(context.Background(), token, Options{})
		if !errors.Is(err, errors.ErrCodeInvalidToken) {
			t.Errorf("Decode(%q) error = %v, want %s", token, err, errors.ErrCodeInvalidToken)
		}
	}
	if len(hooks.decodes) != 3 {
		t.Fatalf("OnDecode called %d times, want 3", len(hooks.decodes))
	}
	for i, err := range hooks.decodes {
		if err == nil {
			t.Errorf("OnDecode[%d] saw no error", i)
		}
	}
}

func TestDecodePlacements(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetCodecHooks(hooks)
	defer observability.Reset()

	ctx := context.Background()
	r := fileRunner(t)

	res, err := r.Decode(ctx, "5KE", Options{Placements: true})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(res.Pips) != board.TotalPips {
		t.Fatalf("len(Pips) = %d, want %d", len(res.Pips), board.TotalPips)
	}
	if res.CacheInfo.LayoutHit {
		t.Error("first layout reported a cache hit")
	}

	geom := board.DefaultGeometry()
	var got board.Grid
	for _, p := range res.Pips {
		b, ok := geom.BucketAt(p.Pos)
		if !ok {
			t.Fatalf("pip %d at %v is off the grid", p.ID, p.Pos)
		}
		got[b.Row][b.Col]++
	}
	if got != goldenGrid() {
		t.Errorf("placements tally = %v, want %v", got, goldenGrid())
	}

	again, err := r.Decode(ctx, "5KE", Options{Placements: true})
	if err != nil {
		t.Fatalf("Decode (cached): %v", err)
	}
	if !again.CacheInfo.LayoutHit {
		t.Error("second layout missed the cache")
	}
	for i := range res.Pips {
		if res.Pips[i] != again.Pips[i] {
			t.Fatalf("cached pip %d = %v, want %v", i, again.Pips[i], res.Pips[i])
		}
	}

	if len(hooks.layouts) != 2 || hooks.layouts[0] != board.TotalPips {
		t.Errorf("OnLayout pips = %v", hooks.layouts)
	}
}

func TestLayoutKeyDependsOnGeometry(t *testing.T) {
	ctx := context.Background()
	r := fileRunner(t)

	if _, err := r.Decode(ctx, "5KE", Options{Placements: true}); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	geom := board.DefaultGeometry()
	geom.CellWidth = 300
	res, err := r.Decode(ctx, "5KE", Options{Placements: true, Geometry: geom})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if res.CacheInfo.LayoutHit {
		t.Error("layout for a different geometry came from cache")
	}

	base, err := r.Decode(ctx, "5KE", Options{Placements: true})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	shifted := board.DefaultGeometry()
	shifted.Origin = lattice.Point{X: 5000, Y: 5000}
	res, err = r.Decode(ctx, "5KE", Options{Placements: true, Geometry: shifted})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if res.CacheInfo.LayoutHit {
		t.Error("layout for a different origin came from cache")
	}
	if dx := res.Pips[0].Pos.X - base.Pips[0].Pos.X; dx < 4000 {
		t.Errorf("pip 0 shifted by %v, want placement at the new origin", dx)
	}
	for _, p := range res.Pips {
		if !shifted.Bounds().Contains(p.Pos) {
			t.Fatalf("pip %d at %v outside shifted board", p.ID, p.Pos)
		}
	}
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	reqLog := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})
	r := NewRunner(nil, nil, quietLogger())

	if _, err := r.Decode(context.Background(), "5KE", Options{Placements: true, Logger: reqLog}); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"decoded token", "restored layout"} {
		if !strings.Contains(out, want) {
			t.Errorf("request log missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	if _, err := r.Layout(context.Background(), board.SeedGrid(), Options{}); err != nil {
		t.Fatalf("Layout: %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("request logger written without being passed: %q", buf.String())
	}
}

func TestDecodeBadGeometry(t *testing.T) {
	r := NewRunner(nil, nil, quietLogger())
	geom := board.DefaultGeometry()
	geom.PipSize = 50

	_, err := r.Decode(context.Background(), "5KE", Options{Geometry: geom})
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("Decode error = %v, want %s", err, errors.ErrCodeInvalidConfig)
	}
}

func TestLayout(t *testing.T) {
	r := NewRunner(nil, nil, quietLogger())
	pips, err := r.Layout(context.Background(), board.SeedGrid(), Options{})
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	if len(pips) != board.TotalPips {
		t.Errorf("len(Layout) = %d, want %d", len(pips), board.TotalPips)
	}
}

func TestParseGrid(t *testing.T) {
	seedJSON := `{"grid": [[5,5,5,5,5],[5,5,5,5,5],[5,5,5,5,5],[5,5,5,5,5],[0,0,0,0,0]]}`
	seedYAML := `grid:
  - [5, 5, 5, 5, 5]
  - [5, 5, 5, 5, 5]
  - [5, 5, 5, 5, 5]
  - [5, 5, 5, 5, 5]
  - [0, 0, 0, 0, 0]
`
	tests := []struct {
		name   string
		data   string
		format string
		code   errors.Code
	}{
		{"json", seedJSON, FormatJSON, ""},
		{"yaml", seedYAML, FormatYAML, ""},
		{"wrong total", strings.Replace(seedJSON, "[0,0,0,0,0]", "[0,0,0,0,1]", 1), FormatJSON, errors.ErrCodeInvalidCounts},
		{"four rows", `{"grid": [[5,5,5,5,5],[5,5,5,5,5],[5,5,5,5,5],[25,25,25,25,25]]}`, FormatJSON, errors.ErrCodeInvalidInput},
		{"negative", strings.Replace(seedJSON, "[0,0,0,0,0]", "[-1,1,0,0,0]", 1), FormatJSON, errors.ErrCodeInvalidInput},
		{"fraction", strings.Replace(seedJSON, "[0,0,0,0,0]", "[0.5,0,0,0,0]", 1), FormatJSON, errors.ErrCodeInvalidInput},
		{"missing grid", `{"cells": []}`, FormatJSON, errors.ErrCodeInvalidInput},
		{"not json", `{grid`, FormatJSON, errors.ErrCodeInvalidInput},
		{"not yaml", "grid: [1, 2\n", FormatYAML, errors.ErrCodeInvalidInput},
		{"toml", seedJSON, "toml", errors.ErrCodeInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := ParseGrid([]byte(tt.data), tt.format)
			if tt.code == "" {
				if err != nil {
					t.Fatalf("ParseGrid: %v", err)
				}
				if g != board.SeedGrid() {
					t.Errorf("ParseGrid = %v, want seed grid", g)
				}
				return
			}
			if !errors.Is(err, tt.code) {
				t.Errorf("ParseGrid error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestFormatFromFilename(t *testing.T) {
	tests := []struct {
		name string
		want string
		ok   bool
	}{
		{"grid.json", FormatJSON, true},
		{"grid.YAML", FormatYAML, true},
		{"dir/grid.yml", FormatYAML, true},
		{"grid.toml", "", false},
		{"grid", "", false},
	}
	for _, tt := range tests {
		got, err := FormatFromFilename(tt.name)
		if (err == nil) != tt.ok || got != tt.want {
			t.Errorf("FormatFromFilename(%q) = %q, %v", tt.name, got, err)
		}
	}
}

func TestRender(t *testing.T) {
	r := NewRunner(nil, nil, quietLogger())
	res, err := r.Decode(context.Background(), "5KE", Options{})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	tests := []struct {
		format string
		want   []string
	}{
		{FormatJSON, []string{`"token": "5KE"`, `"total": 100`, `"index": "20474"`}},
		{FormatYAML, []string{"token: 5KE", "total: 100", "row_totals:"}},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			out, err := Render(res, tt.format)
			if err != nil {
				t.Fatalf("Render: %v", err)
			}
			for _, want := range tt.want {
				if !strings.Contains(string(out), want) {
					t.Errorf("Render(%s) missing %q:\n%s", tt.format, want, out)
				}
			}
			if strings.Contains(string(out), "pips") {
				t.Errorf("Render(%s) included empty pips", tt.format)
			}
		})
	}

	if _, err := Render(res, FormatTable); !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("Render(table) error = %v, want %s", err, errors.ErrCodeUnsupported)
	}
	if _, err := Render(res, "svg"); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("Render(svg) error = %v, want %s", err, errors.ErrCodeInvalidFormat)
	}
}

// ttlCache records the lifetimes entries are stored with.
type ttlCache struct {
	cache.NullCache
	ttls []time.Duration
}

func (c *ttlCache) Set(_ context.Context, _ string, _ []byte, ttl time.Duration) error {
	c.ttls = append(c.ttls, ttl)
	return nil
}

func TestRunnerTTL(t *testing.T) {
	tests := []struct {
		name string
		ttl  time.Duration
		want []time.Duration
	}{
		{name: "per-stage defaults", want: []time.Duration{cache.DecodeTTL, cache.LayoutTTL}},
		{name: "override", ttl: time.Hour, want: []time.Duration{time.Hour, time.Hour}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &ttlCache{}
			r := NewRunner(c, nil, quietLogger())
			r.TTL = tt.ttl

			if _, err := r.Decode(context.Background(), "5KE", Options{Placements: true}); err != nil {
				t.Fatalf("Decode() error: %v", err)
			}
			if len(c.ttls) != len(tt.want) {
				t.Fatalf("stored %d entries, want %d", len(c.ttls), len(tt.want))
			}
			for i, want := range tt.want {
				if c.ttls[i] != want {
					t.Errorf("ttl[%d] = %v, want %v", i, c.ttls[i], want)
				}
			}
		})
	}
}
