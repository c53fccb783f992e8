package arrowgram

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v6"
)

const specSchemaURL = "https://arrowgram.dev/schemas/spec.json"

// specSchemaJSON is the JSON Schema for the diagram specification.
const specSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "$id": "https://arrowgram.dev/schemas/spec.json",
  "type": "object",
  "properties": {
    "nodes": {
      "type": "array",
      "items": { "$ref": "#/$defs/node" }
    },
    "arrows": {
      "type": "array",
      "items": { "$ref": "#/$defs/arrow" }
    }
  },
  "$defs": {
    "node": {
      "type": "object",
      "required": ["name", "left", "top"],
      "properties": {
        "name": { "type": "string", "minLength": 1 },
        "left": { "type": "number" },
        "top": { "type": "number" },
        "label": { "type": "string" }
      }
    },
    "arrow": {
      "type": "object",
      "required": ["from", "to"],
      "properties": {
        "name": { "type": "string" },
        "from": { "type": "string", "minLength": 1 },
        "to": { "type": "string", "minLength": 1 },
        "label": { "type": "string" },
        "curve": { "type": "number" },
        "shift": { "type": "number" },
        "radius": { "type": "number", "minimum": 0 },
        "angle": { "type": "number" },
        "label_alignment": { "enum": ["over", "left", "right"] },
        "style": { "$ref": "#/$defs/style" }
      }
    },
    "style": {
      "type": "object",
      "properties": {
        "head": { "$ref": "#/$defs/named" },
        "tail": { "$ref": "#/$defs/named" },
        "body": { "$ref": "#/$defs/named" },
        "level": { "type": "integer", "minimum": 1 }
      }
    },
    "named": {
      "type": "object",
      "properties": {
        "name": { "type": "string" }
      }
    }
  }
}`

var (
	schemaOnce sync.Once
	specSchema *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(strings.NewReader(specSchemaJSON))
		if err != nil {
			schemaErr = fmt.Errorf("unmarshal spec schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(specSchemaURL, doc); err != nil {
			schemaErr = fmt.Errorf("add spec schema resource: %w", err)
			return
		}
		specSchema, schemaErr = c.Compile(specSchemaURL)
	})
	return specSchema, schemaErr
}

// ParseJSON parses and validates a specification. Every failure is
// reported as a KindSpecParse Error.
func ParseJSON(data []byte) (*Spec, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, NewError(KindSpecParse, "malformed JSON").WithCause(err)
	}

	sch, err := compiledSchema()
	if err != nil {
		return nil, NewError(KindSpecParse, "schema unavailable").WithCause(err)
	}
	if err := sch.Validate(doc); err != nil {
		return nil, schemaError(err)
	}

	s := New()
	if err := json.Unmarshal(data, s); err != nil {
		return nil, NewError(KindSpecParse, "decode specification").WithCause(err)
	}
	if s.Nodes == nil {
		s.Nodes = make([]Node, 0)
	}
	if s.Arrows == nil {
		s.Arrows = make([]Arrow, 0)
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// ToJSON converts a specification to JSON.
func ToJSON(s *Spec, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(s, "", "  ")
	}
	return json.Marshal(s)
}

func schemaError(err error) *Error {
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return NewError(KindSpecParse, err.Error()).WithCause(err)
	}

	violations := collectViolations(verr)
	e := NewError(KindSpecParse, verr.Error()).WithCause(err)
	switch len(violations) {
	case 0:
	case 1:
		e.Message = violations[0]
	default:
		e.Message = fmt.Sprintf("validation failed with %d errors", len(violations))
	}
	e.Violations = violations
	return e
}

// collectViolations walks a ValidationError tree and collects leaf messages
// with their instance locations.
func collectViolations(verr *jsonschema.ValidationError) []string {
	if len(verr.Causes) == 0 {
		loc := "/" + strings.Join(verr.InstanceLocation, "/")
		return []string{fmt.Sprintf("%s: %s", loc, verr.Error())}
	}
	var out []string
	for _, c := range verr.Causes {
		out = append(out, collectViolations(c)...)
	}
	return out
}
