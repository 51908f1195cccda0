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
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/tidwall/gjson"
)

// Response is a fully read HTTP response.  Decoding is left to the caller so
// error bodies can be inspected as easily as success bodies.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	// TraceID is the W3C trace ID sent with the request.
	TraceID string
}

func (r *Response) String() string {
	if r == nil {
		return ""
	}

	return string(r.Body)
}

// DecodePet decodes the body as a single pet.
func (r *Response) DecodePet() (*Pet, error) {
	if r == nil || len(bytes.TrimSpace(r.Body)) == 0 || gjson.ParseBytes(r.Body).Type == gjson.Null {
		return nil, fmt.Errorf("%w: empty response body", ErrNoPet)
	}

	var pet Pet
	if err := json.Unmarshal(r.Body, &pet); err != nil {
		return nil, fmt.Errorf("unmarshaling pet response: %w", err)
	}

	return &pet, nil
}

// DecodePets decodes the body as a list of pets, as returned by findByStatus.
func (r *Response) DecodePets() ([]Pet, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: no response", ErrNoPet)
	}

	var pets []Pet
	if err := json.Unmarshal(r.Body, &pets); err != nil {
		return nil, fmt.Errorf("unmarshaling pets response: %w", err)
	}

	return pets, nil
}

// Get evaluates a gjson path against the body, e.g. "#.status".
func (r *Response) Get(path string) gjson.Result {
	if r == nil {
		return gjson.Result{}
	}

	return gjson.GetBytes(r.Body, path)
}
