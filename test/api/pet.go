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
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"k8s.io/utils/ptr"
)

// Well known pet statuses.  The API treats status as free text, so these
// are never used to validate anything.
const (
	StatusAvailable = "available"
	StatusPending   = "pending"
	StatusSold      = "sold"
)

// Pet is the resource exchanged with the Pet Store.  Fields the suite does
// not care about (category, tags) are dropped on decode.
type Pet struct {
	// ID is assigned by the server, the client may only propose one.
	ID        *int64   `json:"id,omitempty"`
	Name      string   `json:"name"`
	Status    string   `json:"status"`
	PhotoURLs []string `json:"photoUrls"`
}

// MarshalJSON always emits photoUrls as an array, never null.
func (p Pet) MarshalJSON() ([]byte, error) {
	type wire Pet

	w := wire(p)
	if w.PhotoURLs == nil {
		w.PhotoURLs = []string{}
	}

	return json.Marshal(w)
}

// UnmarshalJSON ignores unknown fields and accepts an id encoded either as
// a JSON number or as a numeric string.
func (p *Pet) UnmarshalJSON(data []byte) error {
	var w struct {
		ID        json.RawMessage `json:"id"`
		Name      string          `json:"name"`
		Status    string          `json:"status"`
		PhotoURLs []string        `json:"photoUrls"`
	}

	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	id, err := parseID(w.ID)
	if err != nil {
		return err
	}

	*p = Pet{
		ID:        id,
		Name:      w.Name,
		Status:    w.Status,
		PhotoURLs: w.PhotoURLs,
	}

	return nil
}

func parseID(raw json.RawMessage) (*int64, error) {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return nil, nil //nolint:nilnil
	}

	id, err := strconv.ParseInt(strings.Trim(s, `"`), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("decoding pet id %s: %w", s, err)
	}

	return &id, nil
}

// HasID compares identifiers by value.  A missing identifier on either side
// never matches.
func (p *Pet) HasID(id *int64) bool {
	if p == nil || p.ID == nil || id == nil {
		return false
	}

	return ptr.Equal(p.ID, id)
}

// IDString renders the identifier for logs and error messages.
func (p *Pet) IDString() string {
	if p == nil || p.ID == nil {
		return "<unassigned>"
	}

	return strconv.FormatInt(*p.ID, 10)
}

// Clone returns a deep copy.
func (p *Pet) Clone() *Pet {
	if p == nil {
		return nil
	}

	out := *p

	if p.ID != nil {
		out.ID = ptr.To(*p.ID)
	}

	out.PhotoURLs = slices.Clone(p.PhotoURLs)

	return &out
}
