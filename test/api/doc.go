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

// Package api provides acceptance test utilities for the Pet Store API.
//
// # Client
//
// APIClient is a thin wrapper over net/http that attaches the api_key header,
// W3C trace context and JSON content negotiation to every request.  It never
// retries and never treats a non-2xx status as an error: status handling is
// the job of the assertions (CheckStatus, or apitest.ExpectStatus in Ginkgo
// suites) so that negative tests can inspect 4xx responses directly.
//
// # Eventual Consistency
//
// The public Pet Store does not guarantee read-after-write consistency, and
// occasionally drops updates and deletes altogether.  Poller implements the
// only retry policy in the suite:
//
//   - Until polls a read until a predicate holds, and fails with a
//     ConvergenceError once the attempt budget is spent.  Used after create,
//     where a missing pet is a real failure.
//   - UntilOrFallback polls the same way, but degrades to a fallback value
//     and logs a warning.  Used after update, where the backend is known to
//     lose writes.
//   - ConfirmDeleted issues a single read after a delete, treating a 200 as
//     an accepted anomaly rather than a failure.
//
// # Scenarios
//
// Scenario carries the per-scenario state (the pet under test and the last
// response) explicitly, so both the Ginkgo suites and the godog step
// definitions share the same flows without hidden coupling.
package api
