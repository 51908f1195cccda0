/*
Copyright 2024-2025 the Unikorn Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package api

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schema/*.json
var schemaFS embed.FS

// SchemaName identifies one of the embedded response schemas.
type SchemaName string

const (
	PetSchema   SchemaName = "pet-schema.json"
	ErrorSchema SchemaName = "error-schema.json"
)

const schemaBaseURL = "mem://petstore/"

// Schemas holds the compiled response schemas.
type Schemas struct {
	compiled map[SchemaName]*jsonschema.Schema
}

//nolint:gochecknoglobals
var loadSchemas = sync.OnceValues(compileSchemas)

// LoadSchemas compiles the embedded schemas once per process.
func LoadSchemas() (*Schemas, error) {
	return loadSchemas()
}

func compileSchemas() (*Schemas, error) {
	names := []SchemaName{PetSchema, ErrorSchema}

	compiler := jsonschema.NewCompiler()

	for _, name := range names {
		f, err := schemaFS.Open("schema/" + string(name))
		if err != nil {
			return nil, fmt.Errorf("open schema %s: %w", name, err)
		}

		err = compiler.AddResource(schemaBaseURL+string(name), f)
		f.Close()

		if err != nil {
			return nil, fmt.Errorf("add schema resource %s: %w", name, err)
		}
	}

	schemas := &Schemas{
		compiled: make(map[SchemaName]*jsonschema.Schema, len(names)),
	}

	for _, name := range names {
		schema, err := compiler.Compile(schemaBaseURL + string(name))
		if err != nil {
			return nil, fmt.Errorf("compile schema %s: %w", name, err)
		}

		schemas.compiled[name] = schema
	}

	return schemas, nil
}

// Validate checks the shape of a single resource body against the named
// schema.  The body is validated as-is, so an array never matches an object
// schema.
func (s *Schemas) Validate(name SchemaName, body []byte) error {
	schema, payload, err := s.decode(name, body)
	if err != nil {
		return err
	}

	if err := schema.Validate(payload); err != nil {
		return &SchemaError{Schema: name, Body: string(body), Err: err}
	}

	return nil
}

// ValidateEach checks that body is a JSON array and that every element
// matches the named schema.  An empty array is a valid list.
func (s *Schemas) ValidateEach(name SchemaName, body []byte) error {
	schema, payload, err := s.decode(name, body)
	if err != nil {
		return err
	}

	items, ok := payload.([]any)
	if !ok {
		return &SchemaError{Schema: name, Body: string(body), Err: fmt.Errorf("%w, got %T", ErrNotAList, payload)}
	}

	for i, item := range items {
		if err := schema.Validate(item); err != nil {
			return &SchemaError{Schema: name, Body: string(body), Err: fmt.Errorf("item %d: %w", i, err)}
		}
	}

	return nil
}

func (s *Schemas) decode(name SchemaName, body []byte) (*jsonschema.Schema, any, error) {
	schema, ok := s.compiled[name]
	if !ok {
		return nil, nil, fmt.Errorf("unknown schema %s", name)
	}

	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()

	var payload any
	if err := decoder.Decode(&payload); err != nil {
		return nil, nil, &SchemaError{Schema: name, Body: string(body), Err: err}
	}

	return schema, payload, nil
}
