package pipeline

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/pipgrid/pkg/board"
	"github.com/matzehuels/pipgrid/pkg/errors"
)

// GridSchema is the JSON Schema for a grid document:
//
//	{"grid": [[5, 5, 5, 5, 5], ..., [0, 0, 0, 0, 0]]}
//
// Rows run top to bottom. The schema checks shape and ranges; the total is
// checked by the codec.
const GridSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["grid"],
  "properties": {
    "grid": {
      "type": "array",
      "minItems": 5,
      "maxItems": 5,
      "items": {
        "type": "array",
        "minItems": 5,
        "maxItems": 5,
        "items": {"type": "integer", "minimum": 0, "maximum": 100}
      }
    }
  }
}`

var gridSchema = jsonschema.MustCompileString("pipgrid://grid.schema.json", GridSchema)

// GridDocument is the decoded form of a grid document.
type GridDocument struct {
	Grid board.Grid `json:"grid" yaml:"grid"`
}

// ValidateGridDocument checks a value produced by json.Unmarshal into any.
func ValidateGridDocument(v any) error {
	if err := gridSchema.Validate(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid grid document")
	}
	return nil
}

// ParseGrid reads a grid document in the given format ("json" or "yaml"),
// validates it against GridSchema, and checks that it holds exactly
// board.TotalPips pips.
func ParseGrid(data []byte, format string) (board.Grid, error) {
	var raw []byte
	switch format {
	case FormatJSON:
		raw = data
	case FormatYAML:
		// Round-trip through JSON so the validator sees JSON types.
		var v any
		if err := yaml.Unmarshal(data, &v); err != nil {
			return board.Grid{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse yaml")
		}
		var err error
		if raw, err = json.Marshal(v); err != nil {
			return board.Grid{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse yaml")
		}
	default:
		return board.Grid{}, errors.New(errors.ErrCodeInvalidFormat, "unsupported grid format %q (must be json or yaml)", format)
	}

	var v any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return board.Grid{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse json")
	}
	if err := ValidateGridDocument(v); err != nil {
		return board.Grid{}, err
	}

	var doc GridDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return board.Grid{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse grid")
	}
	if total := doc.Grid.Total(); total != board.TotalPips {
		return board.Grid{}, errors.New(errors.ErrCodeInvalidCounts, "grid holds %d pips, want %d", total, board.TotalPips)
	}
	return doc.Grid, nil
}

// FormatFromFilename picks "json" or "yaml" from a file extension.
func FormatFromFilename(name string) (string, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", errors.New(errors.ErrCodeInvalidFormat, "cannot infer grid format from %q (use .json, .yaml or .yml)", name)
	}
}
