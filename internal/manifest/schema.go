package manifest

import (
	"bytes"
	"fmt"

	"github.com/goccy/go-yaml"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

// manifestSchemaJSON is the JSON Schema pantry's manifest must satisfy,
// expressed against the YAML-as-JSON document (goccy/go-yaml decodes
// into the same generic map[string]any shape jsonschema/v6 validates).
const manifestSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "properties": {
    "dependencies": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name", "version"],
        "properties": {
          "name": {"type": "string", "minLength": 1},
          "version": {"type": "string", "minLength": 1},
          "type": {"type": "string", "enum": ["normal", "dev", "peer"]},
          "checksum": {"type": "string", "pattern": "^[0-9a-fA-F]{64}$"}
        }
      }
    }
  }
}`

func compiledManifestSchema() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	schemaDoc, err := jsonschema.UnmarshalJSON(bytes.NewReader([]byte(manifestSchemaJSON)))
	if err != nil {
		return nil, fmt.Errorf("unmarshalling embedded manifest schema: %w", err)
	}
	const resourceName = "pantry-manifest.json"
	if err := compiler.AddResource(resourceName, schemaDoc); err != nil {
		return nil, fmt.Errorf("adding manifest schema resource: %w", err)
	}
	return compiler.Compile(resourceName)
}

// ValidateSchema checks raw YAML manifest bytes against the bundled
// schema, returning the validator's error wrapped as-is.
func ValidateSchema(data []byte) error {
	schema, err := compiledManifestSchema()
	if err != nil {
		return fmt.Errorf("compiling manifest schema: %w", err)
	}

	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parsing manifest as YAML: %w", err)
	}

	if err := schema.Validate(normalizeForSchema(doc)); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

// normalizeForSchema converts the map[any]any shapes goccy/go-yaml may
// produce into map[string]any/[]any, the shape jsonschema/v6 expects.
func normalizeForSchema(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, vv := range val {
			out[k] = normalizeForSchema(vv)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, vv := range val {
			out[fmt.Sprint(k)] = normalizeForSchema(vv)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, vv := range val {
			out[i] = normalizeForSchema(vv)
		}
		return out
	default:
		return val
	}
}
