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
	"errors"
	"fmt"
)

var (
	// ErrMissingConfig is returned when a required configuration value is unset or invalid.
	ErrMissingConfig = errors.New("missing or invalid configuration")

	// ErrFixtureIndexOutOfRange is returned when a fixture index exceeds the fixture list.
	ErrFixtureIndexOutOfRange = errors.New("fixture index out of range")

	// ErrInvalidFixture is returned when a fixture template is unusable.
	ErrInvalidFixture = errors.New("invalid fixture")

	// ErrUnexpectedStatus is wrapped by StatusError.
	ErrUnexpectedStatus = errors.New("unexpected status code")

	// ErrSchemaMismatch is wrapped by SchemaError.
	ErrSchemaMismatch = errors.New("response does not match schema")

	// ErrNotAList is returned when a list body is not a JSON array.
	ErrNotAList = errors.New("expected a JSON array")

	// ErrNotConverged is wrapped by ConvergenceError.
	ErrNotConverged = errors.New("resource did not converge")

	// ErrNoPet is returned when a flow needs a pet but the scenario holds none,
	// or a response body carries no pet.
	ErrNoPet = errors.New("no pet")
)

// StatusError reports an HTTP status that differs from the one asserted.
type StatusError struct {
	Expected int
	Observed int
	Body     string
	TraceID  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("expected status %d but got %d | response body: %s (trace ID: %s)", e.Expected, e.Observed, e.Body, e.TraceID)
}

func (e *StatusError) Unwrap() error {
	return ErrUnexpectedStatus
}

// SchemaError reports a response body that failed JSON schema validation.
type SchemaError struct {
	Schema SchemaName
	Body   string
	Err    error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("response does not match %s: %v | response body: %s", e.Schema, e.Err, e.Body)
}

func (e *SchemaError) Unwrap() []error {
	return []error{ErrSchemaMismatch, e.Err}
}

// ConvergenceError is returned by a strict poll that ran out of attempts
// before the predicate held.
type ConvergenceError struct {
	// Subject names what was polled, typically the pet identifier.
	Subject string
	// Attempts is the number of fetches issued.
	Attempts int
	// LastStatus is the status code of the final fetch, zero if the
	// final fetch failed at the transport.
	LastStatus int
	// Err is the last fetch or decode error, if any.
	Err error
}

func (e *ConvergenceError) Error() string {
	msg := fmt.Sprintf("%s did not converge after %d attempts", e.Subject, e.Attempts)

	if e.LastStatus != 0 {
		msg = fmt.Sprintf("%s (last status %d)", msg, e.LastStatus)
	}

	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}

	return msg
}

func (e *ConvergenceError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrNotConverged}
	}

	return []error{ErrNotConverged, e.Err}
}
