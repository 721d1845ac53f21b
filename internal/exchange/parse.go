package exchange

import (
	"encoding/json"
	"fmt"
)

type fieldKind string

const (
	kindString fieldKind = "string"
	kindNumber fieldKind = "number"
)

type fieldSpec struct {
	name string
	kind fieldKind
}

// requiredArrays maps each required document array to the fields its
// elements must carry. The first element of each non-empty array is
// sampled for presence and type before the document is accepted.
var requiredArrays = map[string][]fieldSpec{
	"accounts":       {{"id", kindString}, {"budgetId", kindString}, {"name", kindString}, {"type", kindString}},
	"categoryGroups": {{"id", kindString}, {"budgetId", kindString}, {"name", kindString}, {"sortOrder", kindNumber}},
	"categories":     {{"id", kindString}, {"groupId", kindString}, {"name", kindString}, {"created", kindString}},
	"transactions":   {{"id", kindString}, {"accountId", kindString}, {"date", kindString}, {"amount", kindNumber}},
	"payees":         {{"id", kindString}, {"budgetId", kindString}, {"name", kindString}},
	"assignments":    {{"id", kindString}, {"categoryId", kindString}, {"month", kindString}, {"amount", kindNumber}},
}

// targets is optional but sampled the same way when present.
var targetFields = []fieldSpec{{"id", kindString}, {"categoryId", kindString}, {"type", kindString}, {"amount", kindNumber}}

// Parse decodes a document, rejecting it on any structural problem:
// missing required arrays, a missing/mistyped field in the first
// element of a non-empty array, or undecodable values. A rejected
// document causes no write anywhere.
func Parse(data []byte) (*Document, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("malformed document: %w", err)
	}

	var version string
	versionRaw, ok := raw["version"]
	if !ok {
		return nil, fmt.Errorf("document missing version")
	}
	if err := json.Unmarshal(versionRaw, &version); err != nil {
		return nil, fmt.Errorf("document version is not a string: %w", err)
	}
	if _, ok := raw["budget"]; !ok {
		return nil, fmt.Errorf("document missing budget")
	}

	for key, fields := range requiredArrays {
		arrRaw, ok := raw[key]
		if !ok {
			return nil, fmt.Errorf("document missing %s array", key)
		}
		if err := sampleArray(key, arrRaw, fields); err != nil {
			return nil, err
		}
	}
	if arrRaw, ok := raw["targets"]; ok {
		if err := sampleArray("targets", arrRaw, targetFields); err != nil {
			return nil, err
		}
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding document: %w", err)
	}
	return &doc, nil
}

// sampleArray checks that raw is an array and that its first element,
// when present, carries every required field with the right type.
func sampleArray(key string, raw json.RawMessage, fields []fieldSpec) error {
	var elements []json.RawMessage
	if err := json.Unmarshal(raw, &elements); err != nil {
		return fmt.Errorf("document field %s is not an array: %w", key, err)
	}
	if len(elements) == 0 {
		return nil
	}

	var first map[string]any
	if err := json.Unmarshal(elements[0], &first); err != nil {
		return fmt.Errorf("%s[0] is not an object: %w", key, err)
	}
	for _, f := range fields {
		v, ok := first[f.name]
		if !ok {
			return fmt.Errorf("%s[0] missing required field %q", key, f.name)
		}
		switch f.kind {
		case kindString:
			if _, ok := v.(string); !ok {
				return fmt.Errorf("%s[0].%s must be a string", key, f.name)
			}
		case kindNumber:
			if _, ok := v.(float64); !ok {
				return fmt.Errorf("%s[0].%s must be a number", key, f.name)
			}
		}
	}
	return nil
}
