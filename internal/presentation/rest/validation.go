package rest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// ErrInvalidBody is returned when a request body is not valid JSON or does
// not match its schema.
var ErrInvalidBody = errors.New("invalid request body")

// maxBodyBytes bounds request bodies; batch payloads are the largest.
const maxBodyBytes = 16 << 20

const predictSingleSchema = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"required": ["features"],
	"properties": {
		"features": {"type": "object"},
		"student_id": {"type": "string", "maxLength": 128}
	}
}`

const predictBatchSchema = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"required": ["records"],
	"properties": {
		"records": {"type": "array", "items": {"type": "object"}},
		"batch_id": {"type": "string"}
	}
}`

// Validator checks request bodies against compiled JSON schemas.
type Validator struct {
	single *jsonschema.Schema
	batch  *jsonschema.Schema
}

// NewValidator compiles the request schemas.
func NewValidator() (*Validator, error) {
	single, err := compileSchema("predict_single", predictSingleSchema)
	if err != nil {
		return nil, err
	}
	batch, err := compileSchema("predict_batch", predictBatchSchema)
	if err != nil {
		return nil, err
	}
	return &Validator{single: single, batch: batch}, nil
}

func compileSchema(name, definition string) (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader([]byte(definition)))
	if err != nil {
		return nil, fmt.Errorf("parse schema %q: %w", name, err)
	}

	c := jsonschema.NewCompiler()
	url := fmt.Sprintf("https://acadrisk.local/schemas/%s.json", name)
	if err := c.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("add schema %q: %w", name, err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile schema %q: %w", name, err)
	}
	return compiled, nil
}

// decodeValidated reads the body, validates it against schema and decodes it
// into dst.
func decodeValidated(w http.ResponseWriter, r *http.Request, schema *jsonschema.Schema, dst any) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidBody, err)
	}

	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: malformed JSON: %w", ErrInvalidBody, err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidBody, err)
	}

	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidBody, err)
	}
	return nil
}
