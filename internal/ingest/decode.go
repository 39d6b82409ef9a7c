package ingest

import (
	"bytes"
	"encoding/json"
	"github.com/myrjola/interviewdash/internal/errors"
	"gopkg.in/yaml.v3"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
)

var ErrUnsupportedFormat = errors.NewSentinel("unsupported report format")

// Decode reads the reports in r. The extension of name selects the format: .json, .yaml or .yml.
//
// The document is either a list of reports or a single report.
func Decode(name string, r io.Reader) ([]Report, error) {
	var (
		data []byte
		err  error
	)
	if data, err = io.ReadAll(r); err != nil {
		return nil, errors.Wrap(err, "read reports", slog.String("name", name))
	}

	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".json":
		return decodeJSON(data)
	case ".yaml", ".yml":
		return decodeYAML(data)
	default:
		return nil, errors.Wrap(ErrUnsupportedFormat, "decode reports", slog.String("name", name))
	}
}

func decodeJSON(data []byte) ([]Report, error) {
	var reports []Report
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var report Report
		if err := json.Unmarshal(trimmed, &report); err != nil {
			return nil, errors.Wrap(err, "unmarshal JSON report")
		}
		return []Report{report}, nil
	}
	if err := json.Unmarshal(trimmed, &reports); err != nil {
		return nil, errors.Wrap(err, "unmarshal JSON reports")
	}
	return reports, nil
}

func decodeYAML(data []byte) ([]Report, error) {
	var document yaml.Node
	if err := yaml.Unmarshal(data, &document); err != nil {
		return nil, errors.Wrap(err, "parse YAML")
	}
	if len(document.Content) == 0 {
		return nil, nil
	}
	root := document.Content[0]
	if root.Kind == yaml.MappingNode {
		var report Report
		if err := root.Decode(&report); err != nil {
			return nil, errors.Wrap(err, "decode YAML report")
		}
		return []Report{report}, nil
	}
	var reports []Report
	if err := root.Decode(&reports); err != nil {
		return nil, errors.Wrap(err, "decode YAML reports")
	}
	return reports, nil
}
