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

//nolint:testpackage,revive // test package in suites is standard for these tests, dot imports standard for Ginkgo
package suites

import (
	"net/http"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/unikorn-cloud/petstore-acceptance/test/api"
	"github.com/unikorn-cloud/petstore-acceptance/test/api/apitest"
)

var _ = Describe("Core Pet Management", func() {
	Context("When creating a new pet", func() {
		Describe("Given a valid fixture", func() {
			It("should create the pet and return it by ID", func() {
				template, err := fixtures.Load(0)
				Expect(err).NotTo(HaveOccurred())

				pet := apitest.CreatePetWithCleanup(client, ctx, config, template)
				apitest.VerifyPetMatches(pet, template)

				resp, err := client.GetPet(ctx, *pet.ID)
				Expect(err).NotTo(HaveOccurred())
				apitest.ExpectStatus(resp, http.StatusOK)
				apitest.ExpectPetSchema(resp)
			})
		})

		Describe("Given a pet with no photos", func() {
			It("should keep an empty photo list", func() {
				template, err := fixtures.Load(2)
				Expect(err).NotTo(HaveOccurred())

				pet := apitest.CreatePetWithCleanup(client, ctx, config, template)
				Expect(pet.PhotoURLs).To(BeEmpty())
			})
		})
	})

	Context("When updating a pet", func() {
		Describe("Given an existing pet", func() {
			It("should change its status", func() {
				template, err := fixtures.Load(0)
				Expect(err).NotTo(HaveOccurred())

				pet := apitest.CreatePetWithCleanup(client, ctx, config, template)
				pet.Status = api.StatusSold

				resp, err := client.UpdatePet(ctx, pet)
				Expect(err).NotTo(HaveOccurred())
				apitest.ExpectStatus(resp, http.StatusOK)
				apitest.ExpectPetSchema(resp)

				updated := apitest.WaitForPetStatus(client, ctx, config, pet)
				Expect(updated.Status).To(Equal(api.StatusSold))
				Expect(updated.Name).To(Equal(template.Name))
			})
		})
	})

	Context("When searching by status", func() {
		Describe("Given an available pet exists", func() {
			It("should only return pets with that status", func() {
				template, err := fixtures.Load(0)
				Expect(err).NotTo(HaveOccurred())

				apitest.CreatePetWithCleanup(client, ctx, config, template)

				resp, err := client.FindPetsByStatus(ctx, api.StatusAvailable)
				Expect(err).NotTo(HaveOccurred())
				apitest.ExpectStatus(resp, http.StatusOK)

				pets, err := resp.DecodePets()
				Expect(err).NotTo(HaveOccurred())
				Expect(pets).NotTo(BeEmpty())
				Expect(api.CheckAllStatus(pets, api.StatusAvailable)).To(Succeed())
			})
		})
	})

	Context("When deleting a pet", func() {
		Describe("Given an existing pet", func() {
			It("should remove the pet", func() {
				template, err := fixtures.Load(1)
				Expect(err).NotTo(HaveOccurred())

				pet := apitest.CreatePetWithCleanup(client, ctx, config, template)

				resp, err := client.DeletePet(ctx, *pet.ID)
				Expect(err).NotTo(HaveOccurred())
				apitest.ExpectStatus(resp, http.StatusOK)

				// The public store sometimes still serves a deleted pet.
				outcome := config.LenientPoller(api.WithPollLogger(GinkgoLogr)).ConfirmDeleted(ctx, "pet "+pet.IDString(), client.PetFetcher(*pet.ID))
				Expect(outcome).To(BeElementOf(api.DeleteConfirmed, api.DeleteAnomaly))
			})
		})
	})
})
