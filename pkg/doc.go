// Package pkg provides the core libraries for pipgrid share tokens.
//
// # Overview
//
// pipgrid distributes 100 pips over a 5×5 grid of likelihood rows and impact
// columns and names every distribution with a short base-62 token. The pkg
// directory is organized into three areas:
//
//  1. Domain logic ([codec], [lattice], [board])
//  2. Orchestration ([pipeline])
//  3. Infrastructure ([cache], [errors], [observability], [buildinfo])
//
// # Architecture
//
// The typical data flow:
//
//	grid document or board edits
//	         ↓
//	    [board] package (cells, pips, attribution)
//	         ↓
//	    [codec] package (rank ↔ token)
//	         ↓
//	    [pipeline] package (cache, layout, json/yaml output)
//
// # Quick Start
//
// Encode a distribution and decode it again:
//
//	import "github.com/matzehuels/pipgrid/pkg/codec"
//
//	counts := make([]int, 25)
//	counts[0], counts[24] = 4, 96
//	token, _ := codec.Encode(counts) // "5KE"
//	back, _ := codec.Decode(token)
//
// # Main Packages
//
// [codec] - Bijection between distributions of n units over k buckets and
// their rank in the combinatorial number system, written in base 62.
//
// [lattice] - Hexagonal lattice snapping, free-site search and packing.
//
// [board] - The 5×5 grid, its geometry, and an editable board of pips with
// selection, moves, transfers and undo.
//
// [pipeline] - Encode and decode with caching, used by both the CLI and
// the HTTP server.
//
// [cache] - Cache backends (file, Redis, null) and key derivation.
//
// # Testing
//
//	go test ./pkg/...         # All tests
//	go test -run Example      # Examples only
//
// Redis tests run when PIPGRID_TEST_REDIS names a reachable server.
//
// [codec]: https://pkg.go.dev/github.com/matzehuels/pipgrid/pkg/codec
// [lattice]: https://pkg.go.dev/github.com/matzehuels/pipgrid/pkg/lattice
// [board]: https://pkg.go.dev/github.com/matzehuels/pipgrid/pkg/board
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/pipgrid/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/pipgrid/pkg/cache
// [errors]: https://pkg.go.dev/github.com/matzehuels/pipgrid/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/pipgrid/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/pipgrid/pkg/buildinfo
package pkg
