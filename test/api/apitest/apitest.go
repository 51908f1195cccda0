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

// Package apitest holds Ginkgo and Gomega helpers shared by the spec suites.
// It is kept apart from package api so binaries that link api do not pick
// up Ginkgo's command line flags.
//
//nolint:revive,staticcheck // dot imports are standard for Ginkgo/Gomega test code
package apitest

import (
	"context"
	"net/http"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/unikorn-cloud/petstore-acceptance/test/api"
)

// ExpectStatus fails the running spec immediately if the status differs.
func ExpectStatus(resp *api.Response, expected int) {
	ExpectWithOffset(1, api.CheckStatus(resp, expected)).To(Succeed())
}

func ExpectPetSchema(resp *api.Response) {
	ExpectWithOffset(1, api.CheckPetSchema(resp)).To(Succeed())
}

func ExpectPetListSchema(resp *api.Response) {
	ExpectWithOffset(1, api.CheckPetListSchema(resp)).To(Succeed())
}

func ExpectErrorSchema(resp *api.Response) {
	ExpectWithOffset(1, api.CheckErrorSchema(resp)).To(Succeed())
}

// CreatePetWithCleanup creates a pet, waits until it is readable, and schedules
// automatic cleanup.  It returns the server's view of the pet.
func CreatePetWithCleanup(client *api.APIClient, ctx context.Context, config *api.TestConfig, pet *api.Pet) *api.Pet {
	resp, err := client.CreatePet(ctx, pet)
	Expect(err).NotTo(HaveOccurred())
	ExpectStatus(resp, http.StatusOK)

	created, err := resp.DecodePet()
	Expect(err).NotTo(HaveOccurred())
	Expect(created.ID).NotTo(BeNil(), "server did not return an ID")

	petID := *created.ID

	GinkgoWriter.Printf("Created pet with ID: %d\n", petID)

	// Schedule cleanup - this runs whether the test passes or fails so we don't need to clean up manually
	DeferCleanup(func(ctx context.Context) {
		GinkgoWriter.Printf("Cleaning up pet: %d\n", petID)

		resp, deleteErr := client.DeletePet(ctx, petID)
		if deleteErr != nil {
			GinkgoWriter.Printf("Warning: Failed to delete pet %d: %v\n", petID, deleteErr)
		} else {
			GinkgoWriter.Printf("Deleted pet %d (status %d)\n", petID, resp.StatusCode)
		}
	})

	GinkgoWriter.Printf("Waiting for pet %d to become readable, up to %d attempts\n", petID, config.PollMaxAttempts)

	result, err := config.StrictPoller(api.WithPollLogger(GinkgoLogr)).Until(ctx, "pet "+created.IDString(), client.PetFetcher(petID), api.IDEquals(created.ID))
	Expect(err).NotTo(HaveOccurred())

	return result.Pet
}

// WaitForPetStatus waits for an update to become visible, falling back to
// the expected local state if the store never reflects it.
func WaitForPetStatus(client *api.APIClient, ctx context.Context, config *api.TestConfig, expected *api.Pet) *api.Pet {
	Expect(expected).NotTo(BeNil())
	Expect(expected.ID).NotTo(BeNil())

	return config.LenientPoller(api.WithPollLogger(GinkgoLogr)).UntilOrFallback(ctx, "pet "+expected.IDString(), client.PetFetcher(*expected.ID), api.StatusEquals(expected.Status), expected)
}

// VerifyPetMatches verifies the fields the suite sends survive a round trip.
func VerifyPetMatches(actual, expected *api.Pet) {
	Expect(actual).NotTo(BeNil())
	Expect(actual.Name).To(Equal(expected.Name))
	Expect(actual.Status).To(Equal(expected.Status))
	Expect(actual.PhotoURLs).To(ConsistOf(expected.PhotoURLs))
}
