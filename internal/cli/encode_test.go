package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/pipgrid/pkg/board"
	"github.com/matzehuels/pipgrid/pkg/errors"
)

func TestParseCounts(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr bool
	}{
		{name: "separate args", args: strings.Fields(goldenCounts)},
		{name: "single comma list", args: []string{strings.ReplaceAll(goldenCounts, " ", ",")}},
		{name: "mixed separators", args: []string{"4,0,0,0,0", "0 0 0 0 0", "0,0,0,0,0 0,0,0,0,0", "0,0,0,0,96"}},
		{name: "too few", args: []string{"100"}, wantErr: true},
		{name: "not a number", args: append(strings.Fields(goldenCounts)[:24], "x"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			counts, err := parseCounts(tt.args)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseCounts() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				if !errors.Is(err, errors.ErrCodeInvalidCounts) {
					t.Errorf("error code = %v, want INVALID_COUNTS", err)
				}
				return
			}
			if len(counts) != board.Buckets || counts[0] != 4 || counts[24] != 96 {
				t.Errorf("parseCounts() = %v", counts)
			}
		})
	}
}

func TestReadGrid(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "grid.yaml")
	doc := "grid:\n" +
		"  - [0, 0, 0, 0, 96]\n" +
		"  - [0, 0, 0, 0, 0]\n" +
		"  - [0, 0, 0, 0, 0]\n" +
		"  - [0, 0, 0, 0, 0]\n" +
		"  - [4, 0, 0, 0, 0]\n"
	if err := os.WriteFile(yamlPath, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	jsonDoc := `{"grid":[[0,0,0,0,96],[0,0,0,0,0],[0,0,0,0,0],[0,0,0,0,0],[4,0,0,0,0]]}`

	tests := []struct {
		name    string
		args    []string
		opts    encodeOpts
		stdin   string
		wantErr bool
	}{
		{name: "counts", args: strings.Fields(goldenCounts)},
		{name: "yaml file", opts: encodeOpts{file: yamlPath}},
		{name: "stdin json", opts: encodeOpts{file: "-"}, stdin: jsonDoc},
		{name: "stdin explicit yaml", opts: encodeOpts{file: "-", format: "yaml"}, stdin: doc},
		{name: "counts and file", args: []string{"1"}, opts: encodeOpts{file: yamlPath}, wantErr: true},
		{name: "format without file", args: strings.Fields(goldenCounts), opts: encodeOpts{format: "json"}, wantErr: true},
		{name: "missing file", opts: encodeOpts{file: filepath.Join(dir, "nope.json")}, wantErr: true},
		{name: "unknown extension", opts: encodeOpts{file: filepath.Join(dir, "grid.txt")}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			grid, err := readGrid(strings.NewReader(tt.stdin), tt.args, tt.opts)
			if (err != nil) != tt.wantErr {
				t.Fatalf("readGrid() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if grid[4][0] != 4 || grid[0][4] != 96 || grid.Total() != board.TotalPips {
				t.Errorf("readGrid() = %v", grid)
			}
		})
	}
}
