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

// Package bdd binds the Gherkin steps in test/features to the acceptance
// harness.  Each scenario gets its own api.Scenario, carried in the step
// context, and any pet it leaves behind is deleted when it ends.
package bdd

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/cucumber/godog"
	"github.com/go-logr/logr"

	"github.com/unikorn-cloud/petstore-acceptance/test/api"
)

// ErrNoScenario is returned by a step run outside an initialized scenario.
var ErrNoScenario = errors.New("no scenario in step context")

// ErrAssertion is wrapped by step assertion failures.
var ErrAssertion = errors.New("assertion failed")

// Dependencies are shared by every scenario of a run.
type Dependencies struct {
	Config   *api.TestConfig
	Client   *api.APIClient
	Fixtures *api.FixtureLoader
	Logger   logr.Logger
}

type scenarioKey struct{}

func scenarioFrom(ctx context.Context) (*api.Scenario, error) {
	s, ok := ctx.Value(scenarioKey{}).(*api.Scenario)
	if !ok {
		return nil, ErrNoScenario
	}

	return s, nil
}

// action adapts a scenario method to a godog step.
func action(fn func(s *api.Scenario, ctx context.Context) error) func(context.Context) error {
	return func(ctx context.Context) error {
		s, err := scenarioFrom(ctx)
		if err != nil {
			return err
		}

		return fn(s, ctx)
	}
}

// check adapts an assertion on the scenario state to a godog step.
func check(fn func(s *api.Scenario) error) func(context.Context) error {
	return func(ctx context.Context) error {
		s, err := scenarioFrom(ctx)
		if err != nil {
			return err
		}

		return fn(s)
	}
}

// InitializeScenario returns a godog scenario initializer.
func InitializeScenario(deps Dependencies) func(*godog.ScenarioContext) {
	return func(sc *godog.ScenarioContext) {
		sc.Before(func(ctx context.Context, gs *godog.Scenario) (context.Context, error) {
			s := api.NewScenario(deps.Config, deps.Client, deps.Fixtures, deps.Logger.WithValues("name", gs.Name))
			s.Logger.V(1).Info("scenario starting")

			return context.WithValue(ctx, scenarioKey{}, s), nil
		})

		sc.After(func(ctx context.Context, gs *godog.Scenario, scenarioErr error) (context.Context, error) {
			s, err := scenarioFrom(ctx)
			if err != nil {
				return ctx, nil //nolint:nilerr
			}

			// Failures are logged, never returned, so they cannot hide
			// the scenario result.
			s.Cleanup(context.WithoutCancel(ctx))

			if scenarioErr != nil {
				s.Logger.Info("scenario failed", "error", scenarioErr.Error(), "lastResponse", s.Last.String())
			}

			return ctx, nil
		})

		sc.Step(`^I create a new pet from test data index (\d+)$`, createFromFixture)
		sc.Step(`^I retrieve the pet by ID$`, action((*api.Scenario).AwaitExists))
		sc.Step(`^the pet should exist$`, check(petShouldExist))
		sc.Step(`^I update the pet status to "([^"]*)"$`, updateStatus)
		sc.Step(`^the pet status should be "([^"]*)"$`, petStatusShouldBe)
		sc.Step(`^I find pets by status "([^"]*)"$`, findByStatus)
		sc.Step(`^every returned pet should have status "([^"]*)"$`, everyPetShouldHaveStatus)
		sc.Step(`^I retrieve a pet that does not exist$`, action((*api.Scenario).ReadMissing))
		sc.Step(`^I delete the pet$`, action((*api.Scenario).Delete))
		sc.Step(`^the pet should be gone or reported as an anomaly$`, check(petShouldBeGone))
		sc.Step(`^the response status should be (\d+)$`, responseStatusShouldBe)
		sc.Step(`^the response matches the Pet schema$`, check(responseMatchesPetSchema))
		sc.Step(`^the response matches the Error schema$`, check(responseMatchesErrorSchema))
	}
}

func createFromFixture(ctx context.Context, index int) error {
	s, err := scenarioFrom(ctx)
	if err != nil {
		return err
	}

	return s.CreateFromFixture(ctx, index)
}

func updateStatus(ctx context.Context, status string) error {
	s, err := scenarioFrom(ctx)
	if err != nil {
		return err
	}

	return s.UpdateStatus(ctx, status)
}

func findByStatus(ctx context.Context, status string) error {
	s, err := scenarioFrom(ctx)
	if err != nil {
		return err
	}

	return s.FindByStatus(ctx, status)
}

func petShouldExist(s *api.Scenario) error {
	if s.Pet == nil {
		return fmt.Errorf("%w: scenario holds no pet", ErrAssertion)
	}

	return api.CheckStatus(s.Last, http.StatusOK)
}

func petStatusShouldBe(ctx context.Context, status string) error {
	s, err := scenarioFrom(ctx)
	if err != nil {
		return err
	}

	if s.Pet == nil {
		return fmt.Errorf("%w: scenario holds no pet", ErrAssertion)
	}

	if s.Pet.Status != status {
		return fmt.Errorf("%w: pet %s has status %q, expected %q", ErrAssertion, s.Pet.IDString(), s.Pet.Status, status)
	}

	return nil
}

func everyPetShouldHaveStatus(ctx context.Context, status string) error {
	s, err := scenarioFrom(ctx)
	if err != nil {
		return err
	}

	return api.CheckAllStatus(s.Found, status)
}

// petShouldBeGone accepts a pet that is still readable, the public store
// is known to serve deleted pets for a while.
func petShouldBeGone(s *api.Scenario) error {
	if s.Pet != nil {
		return fmt.Errorf("%w: scenario still holds pet %s", ErrAssertion, s.Pet.IDString())
	}

	if s.Deleted == api.DeleteConfirmed || s.Deleted == api.DeleteAnomaly {
		return nil
	}

	return fmt.Errorf("%w: delete could not be confirmed (%s)", ErrAssertion, s.Deleted)
}

func responseStatusShouldBe(ctx context.Context, status int) error {
	s, err := scenarioFrom(ctx)
	if err != nil {
		return err
	}

	return api.CheckStatus(s.Last, status)
}

func responseMatchesPetSchema(s *api.Scenario) error {
	return api.CheckPetSchema(s.Last)
}

func responseMatchesErrorSchema(s *api.Scenario) error {
	return api.CheckErrorSchema(s.Last)
}
