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
	"context"
	"fmt"
	"net/http"

	"github.com/go-logr/logr"
)

// Scenario is the state of one acceptance scenario.  It is owned by a single
// scenario and never shared, so it needs no locking.
type Scenario struct {
	ID       string
	Client   *APIClient
	Fixtures *FixtureLoader
	Strict   *Poller
	Lenient  *Poller
	Logger   logr.Logger

	// Pet is the pet under test, nil until created and after deletion.
	Pet *Pet
	// Last is the most recent response the scenario observed.
	Last *Response
	// Found holds the result of the last search.
	Found []Pet
	// Deleted is the outcome of the last delete confirmation.
	Deleted DeleteOutcome
}

// NewScenario wires a scenario from configuration.
func NewScenario(config *TestConfig, client *APIClient, fixtures *FixtureLoader, logger logr.Logger) *Scenario {
	id := GenerateTestID()
	logger = logger.WithValues("scenario", id)

	return &Scenario{
		ID:       id,
		Client:   client,
		Fixtures: fixtures,
		Strict:   config.StrictPoller(WithPollLogger(logger)),
		Lenient:  config.LenientPoller(WithPollLogger(logger)),
		Logger:   logger,
	}
}

func (s *Scenario) requirePet() (int64, error) {
	if s.Pet == nil || s.Pet.ID == nil {
		return 0, fmt.Errorf("%w: scenario has not created a pet", ErrNoPet)
	}

	return *s.Pet.ID, nil
}

func (s *Scenario) subject() string {
	return "pet " + s.Pet.IDString()
}

// CreateFromFixture creates a pet from the fixture at index.  The server's
// copy replaces the local one.
func (s *Scenario) CreateFromFixture(ctx context.Context, index int) error {
	pet, err := s.Fixtures.Load(index)
	if err != nil {
		return err
	}

	resp, err := s.Client.CreatePet(ctx, pet)
	if err != nil {
		return err
	}

	s.Last = resp

	if err := CheckStatus(resp, http.StatusOK); err != nil {
		return err
	}

	created, err := resp.DecodePet()
	if err != nil {
		return err
	}

	s.Pet = created

	s.Logger.Info("created pet", "id", created.IDString(), "fixture", index)

	return nil
}

// AwaitExists polls until the pet is readable by its ID and fails if it
// never is.
func (s *Scenario) AwaitExists(ctx context.Context) error {
	petID, err := s.requirePet()
	if err != nil {
		return err
	}

	result, err := s.Strict.Until(ctx, s.subject(), s.Client.PetFetcher(petID), IDEquals(s.Pet.ID))
	if err != nil {
		return err
	}

	s.Pet = result.Pet
	s.Last = result.Response

	return nil
}

// UpdateStatus sends the pet with a new status and waits for the store to
// reflect it.  When it never does, the local state is kept.
func (s *Scenario) UpdateStatus(ctx context.Context, status string) error {
	petID, err := s.requirePet()
	if err != nil {
		return err
	}

	updated := s.Pet.Clone()
	updated.Status = status

	resp, err := s.Client.UpdatePet(ctx, updated)
	if err != nil {
		return err
	}

	s.Last = resp

	if err := CheckStatus(resp, http.StatusOK); err != nil {
		return err
	}

	s.Pet = s.Lenient.UntilOrFallback(ctx, s.subject(), s.Client.PetFetcher(petID), StatusEquals(status), updated)

	return nil
}

// FindByStatus searches by status and checks every result carries it.
func (s *Scenario) FindByStatus(ctx context.Context, status string) error {
	resp, err := s.Client.FindPetsByStatus(ctx, status)
	if err != nil {
		return err
	}

	s.Last = resp

	if err := CheckStatus(resp, http.StatusOK); err != nil {
		return err
	}

	pets, err := resp.DecodePets()
	if err != nil {
		return err
	}

	s.Found = pets

	return CheckAllStatus(pets, status)
}

// ReadMissing reads an identifier that has never been created.  Callers
// assert on Last.
func (s *Scenario) ReadMissing(ctx context.Context) error {
	// Negative IDs are never handed out by the generator or the store.
	missingID := -defaultIDGenerator.Next()

	resp, err := s.Client.GetPet(ctx, missingID)
	if err != nil {
		return err
	}

	s.Last = resp

	return nil
}

// Delete removes the pet and confirms with a single read.  The local handle
// is cleared whatever the store answers.
func (s *Scenario) Delete(ctx context.Context) error {
	petID, err := s.requirePet()
	if err != nil {
		return err
	}

	subject := s.subject()
	s.Pet = nil

	resp, err := s.Client.DeletePet(ctx, petID)
	if err != nil {
		return err
	}

	s.Last = resp

	if err := CheckStatus(resp, http.StatusOK); err != nil {
		return err
	}

	s.Deleted = s.Lenient.ConfirmDeleted(ctx, subject, s.Client.PetFetcher(petID))

	return nil
}

// Cleanup deletes any pet the scenario still holds.  Failures are logged
// and never returned so they cannot mask the scenario result.
func (s *Scenario) Cleanup(ctx context.Context) {
	if s.Pet == nil || s.Pet.ID == nil {
		return
	}

	petID := *s.Pet.ID
	s.Pet = nil

	resp, err := s.Client.DeletePet(ctx, petID)
	if err != nil {
		s.Logger.Error(err, "cleanup failed", "id", petID)
		return
	}

	s.Logger.Info("cleaned up pet", "id", petID, "status", resp.StatusCode)
}
