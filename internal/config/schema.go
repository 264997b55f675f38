package config

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

const schemaURL = "mem://latwalk/config.schema.json"

// configSchema describes the on-disk YAML document.
const configSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "simulation": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "walkers": {"type": "integer", "minimum": 1},
        "steps": {"type": "integer", "minimum": 0},
        "frame_interval": {"type": "integer", "minimum": 1},
        "export_frames": {"type": "boolean"},
        "export_trajectory": {"type": "boolean"},
        "export_distance": {"type": "boolean"},
        "record_origin": {"type": "boolean"},
        "seed": {"type": "integer", "minimum": 0}
      }
    },
    "output": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "dir": {"type": "string"},
        "formats": {
          "type": "array",
          "items": {"enum": ["png", "arrow", "html", "terminal"]},
          "uniqueItems": true
        },
        "frame_delay": {"type": "string"}
      }
    },
    "logging": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "level": {"enum": ["", "warn", "info", "debug", "trace"]},
        "format": {"enum": ["", "text", "json"]}
      }
    },
    "store": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "enabled": {"type": "boolean"}
      }
    }
  }
}`

var compiledSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaURL, strings.NewReader(configSchema)); err != nil {
		return nil, fmt.Errorf("adding config schema: %w", err)
	}
	return compiler.Compile(schemaURL)
})

// ValidateDocument checks a raw YAML config document against the schema.
// Unknown keys, wrong types and out-of-range counts are rejected.
func ValidateDocument(data []byte) error {
	schema, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("compiling config schema: %w", err)
	}

	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}
	if doc == nil {
		doc = map[string]interface{}{}
	}

	// Round-trip through JSON so the validator sees JSON value types.
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("converting config to JSON: %w", err)
	}
	var value interface{}
	if err := json.Unmarshal(raw, &value); err != nil {
		return fmt.Errorf("converting config to JSON: %w", err)
	}

	if err := schema.Validate(value); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
