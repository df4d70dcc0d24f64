package interaction

import (
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const schemaURL = "psdrun://interaction-config.json"

// ConfigSchema is the JSON Schema a config document must satisfy before decoding.
const ConfigSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["elements", "screens", "initialScreen"],
  "properties": {
    "elements": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "layerId":   {"type": "integer"},
          "type":      {"type": "string"},
          "action":    {"type": "string"},
          "target":    {"type": "string"},
          "targets":   {"type": "object", "additionalProperties": {"type": "string"}},
          "min":       {"type": "number"},
          "max":       {"type": "number"},
          "format":    {"type": "string"},
          "name":      {"type": "string"},
          "value":     {"type": ["string", "number", "boolean"]},
          "showOn":    {"type": "array", "items": {"type": "string"}},
          "group":     {"type": "string"},
          "delay":     {"type": "number", "minimum": 0},
          "triggerOn": {"type": "array", "items": {"type": "string"}}
        }
      }
    },
    "screens": {"type": "array", "items": {"type": "string"}},
    "initialScreen": {"type": "string", "minLength": 1}
  }
}`

var compiledSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	if err := c.AddResource(schemaURL, strings.NewReader(ConfigSchema)); err != nil {
		return nil, err
	}
	return c.Compile(schemaURL)
})

// validateSchema checks a decoded JSON value against ConfigSchema.
func validateSchema(doc any) error {
	schema, err := compiledSchema()
	if err != nil {
		return &ConfigError{Stage: StageSchema, Err: err}
	}
	if err := schema.Validate(doc); err != nil {
		var ve *jsonschema.ValidationError
		if errors.As(err, &ve) {
			return &ConfigError{Stage: StageSchema, Issues: schemaIssues(ve), Err: err}
		}
		return &ConfigError{Stage: StageSchema, Err: err}
	}
	return nil
}

// schemaIssues flattens the leaves of a validation error tree.
func schemaIssues(ve *jsonschema.ValidationError) []Issue {
	var out []Issue
	var walk func(*jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			key := e.InstanceLocation
			if key == "" {
				key = "/"
			}
			out = append(out, Issue{Key: key, Reason: e.Message})
			return
		}
		for _, c := range e.Causes {
			walk(c)
		}
	}
	walk(ve)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}
