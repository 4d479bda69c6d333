package model

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadFile reads a record file and returns a store holding its rows. YAML
// (.yaml, .yml) and JSON (.json) files containing a list of maps are
// supported.
func LoadFile(path string) (*RecordStore, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("reading record file %s: %w", path, err)
	}

	rows, err := DecodeRows(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("decoding record file %s: %w", path, err)
	}
	return NewRecordStore(rows...), nil
}

// DecodeRows decodes a list of records. ext selects the format and defaults
// to YAML, which also accepts JSON documents.
func DecodeRows(data []byte, ext string) ([]Row, error) {
	var raw []map[string]interface{}

	switch strings.ToLower(ext) {
	case ".json":
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
	default:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
	}

	rows := make([]Row, 0, len(raw))
	for _, r := range raw {
		rows = append(rows, normalize(r))
	}
	return rows, nil
}

// normalize converts nested YAML maps into map[string]interface{} so cell
// option lookups see a single map type.
func normalize(in map[string]interface{}) Row {
	out := make(Row, len(in))
	for k, v := range in {
		out[k] = normalizeValue(v)
	}
	return out
}

func normalizeValue(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		m := make(map[string]interface{}, len(t))
		for k, val := range t {
			m[k] = normalizeValue(val)
		}
		return m
	case map[interface{}]interface{}:
		m := make(map[string]interface{}, len(t))
		for k, val := range t {
			m[fmt.Sprint(k)] = normalizeValue(val)
		}
		return m
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, val := range t {
			out[i] = normalizeValue(val)
		}
		return out
	default:
		return v
	}
}
