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

var _ = Describe("Error Handling and Edge Cases", func() {
	Context("When reading a pet that does not exist", func() {
		Describe("Given an identifier that was never created", func() {
			It("should return not found with an error body", func() {
				missing := api.NewPetPayload().Build()

				resp, err := client.GetPet(ctx, -*missing.ID)
				Expect(err).NotTo(HaveOccurred())

				apitest.ExpectStatus(resp, http.StatusNotFound)
				apitest.ExpectErrorSchema(resp)
				Expect(resp.Get("message").String()).To(Equal("Pet not found"))
			})
		})

		Describe("Given an identifier that is not a number", func() {
			It("should return not found with an error body", func() {
				resp, err := client.Read(ctx, client.Endpoints().Pets()+"/not-a-number")
				Expect(err).NotTo(HaveOccurred())

				apitest.ExpectStatus(resp, http.StatusNotFound)
				apitest.ExpectErrorSchema(resp)
			})
		})
	})

	Context("When deleting a pet that does not exist", func() {
		It("should return not found", func() {
			missing := api.NewPetPayload().Build()

			resp, err := client.DeletePet(ctx, -*missing.ID)
			Expect(err).NotTo(HaveOccurred())

			apitest.ExpectStatus(resp, http.StatusNotFound)
		})
	})

	Context("When searching by a status nobody uses", func() {
		It("should return an empty list", func() {
			resp, err := client.FindPetsByStatus(ctx, api.GenerateTestID())
			Expect(err).NotTo(HaveOccurred())

			apitest.ExpectStatus(resp, http.StatusOK)

			pets, err := resp.DecodePets()
			Expect(err).NotTo(HaveOccurred())
			Expect(pets).To(BeEmpty())
		})
	})
})
