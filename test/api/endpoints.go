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
	"net/url"

	"github.com/oapi-codegen/runtime"
)

// Endpoints contains all API endpoint patterns.
type Endpoints struct{}

// NewEndpoints creates a new Endpoints instance.
func NewEndpoints() *Endpoints {
	return &Endpoints{}
}

// Pets is the collection endpoint, used for create and update.
func (e *Endpoints) Pets() string {
	return "/pet"
}

func (e *Endpoints) Pet(petID int64) (string, error) {
	pathParam, err := runtime.StyleParamWithLocation("simple", false, "petId", runtime.ParamLocationPath, petID)
	if err != nil {
		return "", fmt.Errorf("styling petId: %w", err)
	}

	return fmt.Sprintf("/pet/%s", pathParam), nil
}

// FindPetsByStatus encodes each status as a repeated query parameter.
func (e *Endpoints) FindPetsByStatus(status ...string) (string, error) {
	queryFrag, err := runtime.StyleParamWithLocation("form", true, "status", runtime.ParamLocationQuery, status)
	if err != nil {
		return "", fmt.Errorf("styling status: %w", err)
	}

	values, err := url.ParseQuery(queryFrag)
	if err != nil {
		return "", fmt.Errorf("parsing status query: %w", err)
	}

	return "/pet/findByStatus?" + values.Encode(), nil
}
