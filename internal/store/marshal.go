package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/docquery/internal/canonical"
	"github.com/roach88/docquery/pkg/querybuilder"
)

// MarshalParameters converts a parameter list to canonical JSON TEXT for
// storage, so equal parameter values are stored byte-identically.
func MarshalParameters(params []querybuilder.Parameter) (string, error) {
	if params == nil {
		params = []querybuilder.Parameter{}
	}
	data, err := canonical.Marshal(params)
	if err != nil {
		return "", fmt.Errorf("marshal parameters: %w", err)
	}
	return string(data), nil
}

// marshalResources stores documents as a JSON array, each exactly as the
// container returned it (compacted).
func marshalResources(resources []json.RawMessage) (string, error) {
	if resources == nil {
		resources = []json.RawMessage{}
	}
	data, err := json.Marshal(resources)
	if err != nil {
		return "", fmt.Errorf("marshal resources: %w", err)
	}
	return string(data), nil
}

func unmarshalResources(data string) ([]json.RawMessage, error) {
	resources := []json.RawMessage{}
	if data == "" || data == "[]" {
		return resources, nil
	}
	if err := json.Unmarshal([]byte(data), &resources); err != nil {
		return nil, fmt.Errorf("unmarshal resources: %w", err)
	}
	return resources, nil
}
