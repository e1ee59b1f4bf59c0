package pipeline

import (
	"bytes"
	"encoding/json"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/pipgrid/pkg/errors"
)

// Render serializes a result as JSON or YAML. Tables are drawn by the CLI.
func Render(res *Result, format string) ([]byte, error) {
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "render json")
		}
		return append(data, '\n'), nil
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(res); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "render yaml")
		}
		if err := enc.Close(); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "render yaml")
		}
		return buf.Bytes(), nil
	default:
		if err := ValidateFormat(format); err != nil {
			return nil, err
		}
		return nil, errors.New(errors.ErrCodeUnsupported, "format %q is rendered by the caller", format)
	}
}
