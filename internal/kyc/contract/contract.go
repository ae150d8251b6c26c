// Package contract validates request envelopes against their JSON schemas
// before they are decoded. The schemas are embedded and compiled once.
package contract

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"path"

	"github.com/santhosh-tekuri/jsonschema/v5"

	dErrors "kycgate/pkg/domain-errors"
	"kycgate/pkg/platform/httputil"
)

const baseURL = "https://kycgate.local/schemas/"

// MaxBatchDocuments mirrors maxItems in batch_request.json.
const MaxBatchDocuments = 100

// Kind names an envelope schema.
type Kind string

const (
	KindVerifyRequest  Kind = "verify_request.json"
	KindBatchRequest   Kind = "batch_request.json"
	KindExtractionFile Kind = "extraction_file.json"
)

var kinds = []Kind{KindVerifyRequest, KindBatchRequest, KindExtractionFile}

//go:embed schemas/*.json
var schemaFS embed.FS

// Contracts holds the compiled schemas.
type Contracts struct {
	schemas map[Kind]*jsonschema.Schema
}

// Load compiles every embedded schema.
func Load() (*Contracts, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	for _, k := range kinds {
		raw, err := schemaFS.ReadFile(path.Join("schemas", string(k)))
		if err != nil {
			return nil, fmt.Errorf("read schema %s: %w", k, err)
		}
		if err := compiler.AddResource(baseURL+string(k), bytes.NewReader(raw)); err != nil {
			return nil, fmt.Errorf("add schema resource %s: %w", k, err)
		}
	}

	c := &Contracts{schemas: make(map[Kind]*jsonschema.Schema, len(kinds))}
	for _, k := range kinds {
		schema, err := compiler.Compile(baseURL + string(k))
		if err != nil {
			return nil, fmt.Errorf("compile schema %s: %w", k, err)
		}
		c.schemas[k] = schema
	}
	return c, nil
}

// Validate checks body against the schema for kind. Failures are
// validation_error domain errors naming the first offending location.
func (c *Contracts) Validate(kind Kind, body []byte) error {
	schema, ok := c.schemas[kind]
	if !ok {
		return dErrors.New(dErrors.CodeInternal, fmt.Sprintf("unknown contract %s", kind))
	}

	var payload any
	if err := httputil.Decode(body, &payload); err != nil {
		return err
	}
	if err := schema.Validate(payload); err != nil {
		var ve *jsonschema.ValidationError
		if errors.As(err, &ve) {
			return dErrors.Wrap(err, dErrors.CodeValidation, describe(ve))
		}
		return dErrors.Wrap(err, dErrors.CodeValidation, "request does not match contract")
	}
	return nil
}

// describe renders the most specific cause of a validation failure.
func describe(ve *jsonschema.ValidationError) string {
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	location := ve.InstanceLocation
	if location == "" {
		location = "body"
	}
	return fmt.Sprintf("%s: %s", location, ve.Message)
}
