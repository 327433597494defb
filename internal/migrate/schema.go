package migrate

import (
	"encoding/json"
	"fmt"
	"math"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Entry schemas. Only the fields the backend needs are constrained;
// anything else in a legacy record is ignored.
var entrySchemas = map[Kind]string{
	KindTasks: `{
		"type": "object",
		"required": ["title"],
		"properties": {"title": {"type": "string"}}
	}`,
	KindRewards: `{
		"type": "object",
		"required": ["condition", "reward"],
		"properties": {
			"condition": {"type": "string"},
			"reward": {"type": "string"}
		}
	}`,
	KindLessons: `{
		"type": "object",
		"required": ["lesson"],
		"properties": {"lesson": {"type": "string"}}
	}`,
}

var compiled sync.Map // map[Kind]*jsonschema.Schema

func entrySchema(kind Kind) (*jsonschema.Schema, error) {
	if s, ok := compiled.Load(kind); ok {
		return s.(*jsonschema.Schema), nil
	}

	src, ok := entrySchemas[kind]
	if !ok {
		return nil, fmt.Errorf("no schema for %q", kind)
	}
	var def any
	if err := json.Unmarshal([]byte(src), &def); err != nil {
		return nil, fmt.Errorf("parse %s schema: %w", kind, err)
	}

	c := jsonschema.NewCompiler()
	url := fmt.Sprintf("schema://legacy/%s.json", kind)
	if err := c.AddResource(url, def); err != nil {
		return nil, fmt.Errorf("add %s schema: %w", kind, err)
	}
	s, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile %s schema: %w", kind, err)
	}

	compiled.Store(kind, s)
	return s, nil
}

// validEntries returns the elements of a decoded legacy array that match
// the kind's entry schema, and how many were rejected.
func validEntries(kind Kind, items []any) ([]map[string]any, int, error) {
	schema, err := entrySchema(kind)
	if err != nil {
		return nil, 0, err
	}

	var (
		valid   []map[string]any
		skipped int
	)
	for _, item := range items {
		record, ok := item.(map[string]any)
		if !ok || schema.Validate(item) != nil {
			skipped++
			continue
		}
		valid = append(valid, record)
	}
	return valid, skipped, nil
}

// truthy follows the browser client's notion of a set flag: false, 0, "",
// null and missing are unset; everything else is set.
func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case float64:
		return x != 0 && !math.IsNaN(x)
	case string:
		return x != ""
	default:
		return true
	}
}
