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
	"time"

	"github.com/go-logr/logr"

	"k8s.io/utils/clock"
)

// FetchFunc performs one read of the polled resource.
type FetchFunc func(ctx context.Context) (*Response, error)

// Predicate reports whether a fetched pet is in the expected state.
type Predicate func(pet *Pet) bool

// IDEquals matches a pet with the given identifier.
func IDEquals(id *int64) Predicate {
	return func(pet *Pet) bool {
		return pet.HasID(id)
	}
}

// StatusEquals matches a pet with the given status.
func StatusEquals(status string) Predicate {
	return func(pet *Pet) bool {
		return pet != nil && pet.Status == status
	}
}

// All matches when every predicate matches.
func All(predicates ...Predicate) Predicate {
	return func(pet *Pet) bool {
		for _, p := range predicates {
			if !p(pet) {
				return false
			}
		}

		return true
	}
}

// Poller repeatedly reads a resource until it reaches an expected state.
// The delay is fixed, there is no backoff.
type Poller struct {
	// MaxAttempts bounds the number of fetches, values below one mean one.
	MaxAttempts int
	// Delay is the wait between consecutive fetches.
	Delay time.Duration
	// Clock provides the wait, nil means the real clock.
	Clock clock.Clock
	// Logger receives per-attempt detail at V(1) and fallback warnings.
	Logger logr.Logger
}

type PollerOption func(*Poller)

func WithClock(c clock.Clock) PollerOption {
	return func(p *Poller) {
		p.Clock = c
	}
}

func WithPollLogger(logger logr.Logger) PollerOption {
	return func(p *Poller) {
		p.Logger = logger
	}
}

func NewPoller(maxAttempts int, delay time.Duration, options ...PollerOption) *Poller {
	p := &Poller{
		MaxAttempts: maxAttempts,
		Delay:       delay,
		Clock:       clock.RealClock{},
		Logger:      logr.Discard(),
	}

	for _, o := range options {
		o(p)
	}

	return p
}

// PollResult is a converged observation.
type PollResult struct {
	Pet      *Pet
	Response *Response
	// Attempts is informational only, callers must not assert on it.
	Attempts int
}

// observation is what the last unsuccessful fetch left behind.
type observation struct {
	pet      *Pet
	response *Response
	status   int
	err      error
}

func (p *Poller) attempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}

	return p.MaxAttempts
}

func (p *Poller) clock() clock.Clock {
	if p.Clock == nil {
		return clock.RealClock{}
	}

	return p.Clock
}

// observe classifies a fetch.  Only a 200 with a decodable pet is eligible
// for the predicate.
func observe(resp *Response, err error) (*Pet, observation) {
	if err != nil {
		return nil, observation{err: err}
	}

	obs := observation{
		response: resp,
		status:   resp.StatusCode,
	}

	if resp.StatusCode != http.StatusOK {
		obs.err = fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
		return nil, obs
	}

	pet, err := resp.DecodePet()
	if err != nil {
		obs.err = err
		return nil, obs
	}

	obs.pet = pet

	return pet, obs
}

func (p *Poller) poll(ctx context.Context, subject string, fetch FetchFunc, predicate Predicate) (*PollResult, observation, int) {
	var last observation

	maxAttempts := p.attempts()
	attempt := 0

	for attempt < maxAttempts {
		if err := ctx.Err(); err != nil {
			last.err = err
			break
		}

		resp, err := fetch(ctx)

		pet, obs := observe(resp, err)
		if pet != nil && predicate(pet) {
			return &PollResult{Pet: pet, Response: resp, Attempts: attempt + 1}, obs, attempt + 1
		}

		// Keep the most recent decodable pet even if a later fetch failed.
		if obs.pet == nil && last.pet != nil {
			obs.pet = last.pet
		}

		last = obs
		attempt++

		p.Logger.V(1).Info("poll attempt did not converge", "subject", subject, "attempt", attempt, "maxAttempts", maxAttempts, "status", obs.status, "error", obs.err)

		if attempt < maxAttempts {
			p.clock().Sleep(p.Delay)
		}
	}

	return nil, last, attempt
}

// Until polls until the predicate holds and fails with a ConvergenceError
// once MaxAttempts fetches have been made without success.
func (p *Poller) Until(ctx context.Context, subject string, fetch FetchFunc, predicate Predicate) (*PollResult, error) {
	result, last, attempts := p.poll(ctx, subject, fetch, predicate)
	if result != nil {
		return result, nil
	}

	return nil, &ConvergenceError{
		Subject:    subject,
		Attempts:   attempts,
		LastStatus: last.status,
		Err:        last.err,
	}
}

// UntilOrFallback polls like Until, but never fails.  When the predicate
// never holds it logs a warning and returns a copy of fallback.
//
// A non-nil fallback guarantees a non-nil result.  With a nil fallback the
// last pet observed is returned instead, which is nil if no response ever
// decoded, so callers that pass nil must handle that themselves.
func (p *Poller) UntilOrFallback(ctx context.Context, subject string, fetch FetchFunc, predicate Predicate, fallback *Pet) *Pet {
	result, last, attempts := p.poll(ctx, subject, fetch, predicate)
	if result != nil {
		return result.Pet
	}

	p.Logger.Info("WARNING: poll did not converge, using fallback", "subject", subject, "attempts", attempts, "lastStatus", last.status, "error", last.err)

	if fallback != nil {
		return fallback.Clone()
	}

	return last.pet
}

// DeleteOutcome classifies the read that follows a delete.
type DeleteOutcome int

const (
	// DeleteConfirmed means the pet is no longer readable.
	DeleteConfirmed DeleteOutcome = iota
	// DeleteAnomaly means the pet was still readable, which the public
	// store is known to do.
	DeleteAnomaly
	// DeleteUnknown means the confirmatory read failed at the transport.
	DeleteUnknown
)

func (o DeleteOutcome) String() string {
	switch o {
	case DeleteConfirmed:
		return "confirmed"
	case DeleteAnomaly:
		return "anomaly"
	case DeleteUnknown:
		return "unknown"
	}

	return fmt.Sprintf("DeleteOutcome(%d)", int(o))
}

// ConfirmDeleted issues a single read after a delete.  Any non-200 confirms
// the delete; a 200 is logged and accepted.
func (p *Poller) ConfirmDeleted(ctx context.Context, subject string, fetch FetchFunc) DeleteOutcome {
	resp, err := fetch(ctx)
	if err != nil {
		p.Logger.Error(err, "confirming delete", "subject", subject)
		return DeleteUnknown
	}

	if resp.StatusCode == http.StatusOK {
		p.Logger.Info("WARNING: pet still readable after delete, accepting as a known store anomaly", "subject", subject, "traceID", resp.TraceID)
		return DeleteAnomaly
	}

	p.Logger.V(1).Info("delete confirmed", "subject", subject, "status", resp.StatusCode)

	return DeleteConfirmed
}
