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
	"time"

	"github.com/google/uuid"

	"k8s.io/utils/ptr"
)

func generateRandomName(prefix string) string {
	return fmt.Sprintf("%s-%s", prefix, uuid.NewString()[:8])
}

func GenerateTestID() string {
	return generateRandomName("test")
}

// PetPayloadBuilder builds pet payloads for testing.
type PetPayloadBuilder struct {
	pet *Pet
}

// NewPetPayload creates a new pet payload builder with a unique name and ID.
func NewPetPayload() *PetPayloadBuilder {
	timestamp := time.Now().Format("20060102-150405")

	return &PetPayloadBuilder{
		pet: &Pet{
			ID:        ptr.To(defaultIDGenerator.Next()),
			Name:      fmt.Sprintf("testautomation-%s-%s", timestamp, uuid.NewString()[:4]),
			Status:    StatusAvailable,
			PhotoURLs: []string{"https://example.com/photos/testautomation.jpg"},
		},
	}
}

// WithID proposes an identifier to the server.
func (b *PetPayloadBuilder) WithID(id int64) *PetPayloadBuilder {
	b.pet.ID = ptr.To(id)
	return b
}

// WithoutID leaves identifier assignment to the server.
func (b *PetPayloadBuilder) WithoutID() *PetPayloadBuilder {
	b.pet.ID = nil
	return b
}

func (b *PetPayloadBuilder) WithName(name string) *PetPayloadBuilder {
	b.pet.Name = name
	return b
}

func (b *PetPayloadBuilder) WithStatus(status string) *PetPayloadBuilder {
	b.pet.Status = status
	return b
}

func (b *PetPayloadBuilder) WithPhotoURLs(urls ...string) *PetPayloadBuilder {
	b.pet.PhotoURLs = urls
	return b
}

// Build returns a copy of the completed payload.
func (b *PetPayloadBuilder) Build() *Pet {
	return b.pet.Clone()
}
