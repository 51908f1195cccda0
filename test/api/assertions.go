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
	"fmt"

	utilerrors "k8s.io/apimachinery/pkg/util/errors"
)

// CheckStatus returns a StatusError carrying the full body when the
// response status differs from expected.
func CheckStatus(resp *Response, expected int) error {
	if resp == nil {
		return fmt.Errorf("%w: expected status %d but there is no response", ErrUnexpectedStatus, expected)
	}

	if resp.StatusCode != expected {
		return &StatusError{
			Expected: expected,
			Observed: resp.StatusCode,
			Body:     resp.String(),
			TraceID:  resp.TraceID,
		}
	}

	return nil
}

// CheckSchema validates the response body against a named schema.
func CheckSchema(resp *Response, name SchemaName) error {
	if resp == nil {
		return fmt.Errorf("%w: no response to validate against %s", ErrSchemaMismatch, name)
	}

	schemas, err := LoadSchemas()
	if err != nil {
		return err
	}

	return schemas.Validate(name, resp.Body)
}

func CheckPetSchema(resp *Response) error {
	return CheckSchema(resp, PetSchema)
}

func CheckErrorSchema(resp *Response) error {
	return CheckSchema(resp, ErrorSchema)
}

// CheckPetListSchema validates a findByStatus body, which must be an array
// of pets.
func CheckPetListSchema(resp *Response) error {
	if resp == nil {
		return fmt.Errorf("%w: no response to validate against %s", ErrSchemaMismatch, PetSchema)
	}

	schemas, err := LoadSchemas()
	if err != nil {
		return err
	}

	return schemas.ValidateEach(PetSchema, resp.Body)
}

// CheckAllStatus reports every pet whose status is not the expected one.
func CheckAllStatus(pets []Pet, status string) error {
	var errs []error

	for i := range pets {
		if pets[i].Status != status {
			errs = append(errs, fmt.Errorf("pet %s has status %q, expected %q", pets[i].IDString(), pets[i].Status, status))
		}
	}

	return utilerrors.NewAggregate(errs)
}
