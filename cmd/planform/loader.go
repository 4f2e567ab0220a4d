package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// loadDocumentJSON reads path and returns its content as JSON bytes,
// converting from YAML first when the extension calls for it. Plan
// files and context files both accept either format.
func loadDocumentJSON(path string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var doc interface{}
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("parse %s as YAML: %w", path, err)
		}
		js, err := json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("re-encode %s: %w", path, err)
		}
		return js, nil
	default:
		return raw, nil
	}
}

// contextFile is the on-disk shape of a single transform context: the
// wire-friendly counterpart of core.Context, whose fields carry no
// JSON tags of their own.
type contextFile struct {
	Event interface{}            `json:"event"`
	State interface{}            `json:"state"`
	Vars  map[string]interface{} `json:"vars,omitempty"`
	Extra map[string]interface{} `json:"extra,omitempty"`
}
