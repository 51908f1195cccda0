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

//nolint:revive,staticcheck // dot imports are standard for Ginkgo/Gomega test code
package api_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/unikorn-cloud/petstore-acceptance/test/api"
	"github.com/unikorn-cloud/petstore-acceptance/test/api/apitest"
	"github.com/unikorn-cloud/petstore-acceptance/test/api/fakestore"
)

var _ = Describe("Scenario", func() {
	var (
		ctx      context.Context
		store    *fakestore.Store
		config   *api.TestConfig
		scenario *api.Scenario
	)

	start := func(opts ...fakestore.Option) {
		store = fakestore.New(append([]fakestore.Option{fakestore.WithAPIKey(api.DefaultAPIKey)}, opts...)...)

		server := httptest.NewServer(store.Handler())
		DeferCleanup(server.Close)

		config.BaseURL = server.URL

		client := api.NewAPIClientWithConfig(config, api.WithLogger(GinkgoLogr))
		scenario = api.NewScenario(config, client, api.NewFixtureLoader(config.FixturePath), GinkgoLogr)
	}

	BeforeEach(func() {
		ctx = context.Background()

		config = api.DefaultTestConfig()
		config.PollMaxAttempts = 3
		config.PollDelay = time.Millisecond
		config.LenientMaxAttempts = 3
		config.LenientDelay = time.Millisecond
	})

	It("names each scenario uniquely", func() {
		start()

		other := api.NewScenario(config, scenario.Client, scenario.Fixtures, GinkgoLogr)
		Expect(other.ID).NotTo(Equal(scenario.ID))
	})

	Context("creating a pet", func() {
		It("adopts the server's copy and waits until it is readable", func() {
			start(fakestore.WithReadLag(2))

			Expect(scenario.CreateFromFixture(ctx, 0)).To(Succeed())
			Expect(scenario.Pet.Name).To(Equal("Buddy"))

			Expect(scenario.AwaitExists(ctx)).To(Succeed())
			Expect(scenario.Pet.Status).To(Equal(api.StatusAvailable))
			apitest.ExpectStatus(scenario.Last, http.StatusOK)
			apitest.ExpectPetSchema(scenario.Last)

			Expect(store.Reads(*scenario.Pet.ID)).To(Equal(3))
		})

		It("fails when the pet never becomes readable", func() {
			start(fakestore.WithReadLag(10))

			Expect(scenario.CreateFromFixture(ctx, 1)).To(Succeed())

			err := scenario.AwaitExists(ctx)
			Expect(errors.Is(err, api.ErrNotConverged)).To(BeTrue())
			Expect(store.Reads(*scenario.Pet.ID)).To(Equal(config.PollMaxAttempts))
		})

		It("rejects an unknown fixture before calling the store", func() {
			start()

			Expect(errors.Is(scenario.CreateFromFixture(ctx, 3), api.ErrFixtureIndexOutOfRange)).To(BeTrue())
			Expect(scenario.Pet).To(BeNil())
			Expect(scenario.Last).To(BeNil())
		})

		It("reports an unexpected status with the body", func() {
			start()

			config.APIKey = "wrong"
			scenario.Client = api.NewAPIClientWithConfig(config, api.WithLogger(GinkgoLogr))

			err := scenario.CreateFromFixture(ctx, 0)

			var statusErr *api.StatusError
			Expect(errors.As(err, &statusErr)).To(BeTrue())
			Expect(statusErr.Observed).To(Equal(http.StatusUnauthorized))
			Expect(statusErr.Body).To(ContainSubstring("unauthorized"))
		})

		It("needs a pet before waiting for it", func() {
			start()

			Expect(errors.Is(scenario.AwaitExists(ctx), api.ErrNoPet)).To(BeTrue())
			Expect(errors.Is(scenario.UpdateStatus(ctx, api.StatusSold), api.ErrNoPet)).To(BeTrue())
			Expect(errors.Is(scenario.Delete(ctx), api.ErrNoPet)).To(BeTrue())
		})
	})

	Context("updating a pet", func() {
		It("waits for the new status", func() {
			start(fakestore.WithReadLag(1))

			Expect(scenario.CreateFromFixture(ctx, 0)).To(Succeed())
			Expect(scenario.AwaitExists(ctx)).To(Succeed())
			Expect(scenario.UpdateStatus(ctx, api.StatusSold)).To(Succeed())
			Expect(scenario.Pet.Status).To(Equal(api.StatusSold))
			Expect(scenario.Pet.Name).To(Equal("Buddy"))

			stored, ok := store.Get(*scenario.Pet.ID)
			Expect(ok).To(BeTrue())
			Expect(stored.Status).To(Equal(api.StatusSold))
		})

		It("falls back to the local state when the store never reflects it", func() {
			start(fakestore.WithIgnoreUpdates())

			Expect(scenario.CreateFromFixture(ctx, 0)).To(Succeed())
			Expect(scenario.UpdateStatus(ctx, api.StatusSold)).To(Succeed())
			Expect(scenario.Pet.Status).To(Equal(api.StatusSold))

			stored, ok := store.Get(*scenario.Pet.ID)
			Expect(ok).To(BeTrue())
			Expect(stored.Status).To(Equal(api.StatusAvailable))
		})
	})

	Context("finding pets", func() {
		It("only returns pets with the requested status", func() {
			start()

			for _, index := range []int{0, 1, 2} {
				Expect(scenario.CreateFromFixture(ctx, index)).To(Succeed())
			}

			Expect(scenario.FindByStatus(ctx, api.StatusAvailable)).To(Succeed())
			Expect(scenario.Found).To(HaveLen(2))

			for _, pet := range scenario.Found {
				Expect(pet.Status).To(Equal(api.StatusAvailable))
			}

			apitest.ExpectPetListSchema(scenario.Last)
		})
	})

	Context("reading a missing pet", func() {
		It("gets a 404 with an error body", func() {
			start()

			Expect(scenario.ReadMissing(ctx)).To(Succeed())
			apitest.ExpectStatus(scenario.Last, http.StatusNotFound)
			apitest.ExpectErrorSchema(scenario.Last)
		})
	})

	Context("deleting a pet", func() {
		It("confirms the pet is gone", func() {
			start()

			Expect(scenario.CreateFromFixture(ctx, 2)).To(Succeed())
			petID := *scenario.Pet.ID

			Expect(scenario.Delete(ctx)).To(Succeed())
			Expect(scenario.Pet).To(BeNil())
			Expect(scenario.Deleted).To(Equal(api.DeleteConfirmed))

			_, ok := store.Get(petID)
			Expect(ok).To(BeFalse())
		})

		It("accepts a pet that is still readable", func() {
			start(fakestore.WithSoftDelete())

			Expect(scenario.CreateFromFixture(ctx, 2)).To(Succeed())
			Expect(scenario.Delete(ctx)).To(Succeed())
			Expect(scenario.Pet).To(BeNil())
			Expect(scenario.Deleted).To(Equal(api.DeleteAnomaly))
		})
	})

	Context("cleaning up", func() {
		It("deletes a pet left behind", func() {
			start()

			Expect(scenario.CreateFromFixture(ctx, 0)).To(Succeed())
			petID := *scenario.Pet.ID

			scenario.Cleanup(ctx)
			Expect(scenario.Pet).To(BeNil())

			_, ok := store.Get(petID)
			Expect(ok).To(BeFalse())
		})

		It("does nothing without a pet", func() {
			start()

			scenario.Cleanup(ctx)
			Expect(scenario.Last).To(BeNil())
		})

		It("swallows transport failures", func() {
			start()

			Expect(scenario.CreateFromFixture(ctx, 0)).To(Succeed())

			config.BaseURL = "http://127.0.0.1:1"
			scenario.Client = api.NewAPIClientWithConfig(config, api.WithLogger(GinkgoLogr))

			Expect(func() { scenario.Cleanup(ctx) }).NotTo(Panic())
			Expect(scenario.Pet).To(BeNil())
		})
	})
})
