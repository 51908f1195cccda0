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

// Package fakestore is an in-memory Pet Store for running the acceptance
// suite offline.  It reproduces the consistency quirks of the public store
// on demand.
package fakestore

import (
	"cmp"
	"encoding/json"
	"net/http"
	"slices"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/unikorn-cloud/petstore-acceptance/test/api"

	"k8s.io/utils/ptr"
)

// record tracks what reads see.  For lagReads reads after a write, readers
// get previous instead of current; nil means not found.
type record struct {
	current  *api.Pet
	previous *api.Pet
	lagReads int
}

func (r *record) visible() *api.Pet {
	if r.lagReads > 0 {
		r.lagReads--
		return r.previous
	}

	return r.current
}

type options struct {
	apiKey        string
	readLag       int
	softDelete    bool
	ignoreUpdates bool
}

type Option func(*options)

// WithAPIKey rejects requests that do not carry the key.
func WithAPIKey(key string) Option {
	return func(o *options) {
		o.apiKey = key
	}
}

// WithReadLag makes the first n reads after each write see the old state.
func WithReadLag(n int) Option {
	return func(o *options) {
		o.readLag = n
	}
}

// WithSoftDelete acknowledges deletes without removing anything.
func WithSoftDelete() Option {
	return func(o *options) {
		o.softDelete = true
	}
}

// WithIgnoreUpdates acknowledges updates without persisting them.
func WithIgnoreUpdates() Option {
	return func(o *options) {
		o.ignoreUpdates = true
	}
}

// Store is safe for concurrent use by the HTTP server.
type Store struct {
	options options

	lock   sync.Mutex
	pets   map[int64]*record
	nextID int64
	reads  map[int64]int
}

func New(opts ...Option) *Store {
	s := &Store{
		pets:   map[int64]*record{},
		nextID: 1,
		reads:  map[int64]int{},
	}

	for _, o := range opts {
		o(&s.options)
	}

	return s
}

// Handler returns the router serving the Pet Store endpoints.
func (s *Store) Handler() http.Handler {
	r := chi.NewRouter()

	if s.options.apiKey != "" {
		r.Use(s.requireAPIKey)
	}

	r.Post("/pet", s.createPet)
	r.Put("/pet", s.updatePet)
	r.Get("/pet/findByStatus", s.findByStatus)
	r.Get("/pet/{petId}", s.getPet)
	r.Delete("/pet/{petId}", s.deletePet)

	return r
}

// Reads returns how many times a pet has been read by ID.
func (s *Store) Reads(petID int64) int {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.reads[petID]
}

// Put seeds a pet directly, bypassing any read lag.
func (s *Store) Put(pet *api.Pet) {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.store(pet.Clone(), false)
}

// Get returns the stored state of a pet, ignoring read lag.
func (s *Store) Get(petID int64) (*api.Pet, bool) {
	s.lock.Lock()
	defer s.lock.Unlock()

	rec, ok := s.pets[petID]
	if !ok || rec.current == nil {
		return nil, false
	}

	return rec.current.Clone(), true
}

// store must be called with the lock held.
func (s *Store) store(pet *api.Pet, lag bool) *api.Pet {
	if pet.ID == nil || *pet.ID == 0 {
		pet.ID = ptr.To(s.nextID)
	}

	if *pet.ID >= s.nextID {
		s.nextID = *pet.ID + 1
	}

	rec, ok := s.pets[*pet.ID]
	if !ok {
		rec = &record{}
		s.pets[*pet.ID] = rec
	}

	rec.previous = rec.current
	rec.current = pet
	rec.lagReads = 0

	if lag {
		rec.lagReads = s.options.readLag
	}

	return pet.Clone()
}

func (s *Store) requireAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("api_key") != s.options.apiKey {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Store) decodePet(w http.ResponseWriter, r *http.Request) (*api.Pet, bool) {
	var pet api.Pet

	if err := json.NewDecoder(r.Body).Decode(&pet); err != nil {
		writeError(w, http.StatusBadRequest, "bad input")
		return nil, false
	}

	return &pet, true
}

func petID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "petId")

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		writeError(w, http.StatusNotFound, "java.lang.NumberFormatException: For input string: \""+raw+"\"")
		return 0, false
	}

	return id, true
}

func (s *Store) createPet(w http.ResponseWriter, r *http.Request) {
	pet, ok := s.decodePet(w, r)
	if !ok {
		return
	}

	s.lock.Lock()
	created := s.store(pet, true)
	s.lock.Unlock()

	writeJSON(w, http.StatusOK, created)
}

func (s *Store) updatePet(w http.ResponseWriter, r *http.Request) {
	pet, ok := s.decodePet(w, r)
	if !ok {
		return
	}

	if s.options.ignoreUpdates {
		writeJSON(w, http.StatusOK, pet)
		return
	}

	// Like the real store, an update of an unknown pet creates it.
	s.lock.Lock()
	updated := s.store(pet, true)
	s.lock.Unlock()

	writeJSON(w, http.StatusOK, updated)
}

func (s *Store) getPet(w http.ResponseWriter, r *http.Request) {
	id, ok := petID(w, r)
	if !ok {
		return
	}

	s.lock.Lock()

	s.reads[id]++

	var pet *api.Pet

	if rec, ok := s.pets[id]; ok {
		pet = rec.visible().Clone()
	}

	s.lock.Unlock()

	if pet == nil {
		writeError(w, http.StatusNotFound, "Pet not found")
		return
	}

	writeJSON(w, http.StatusOK, pet)
}

func (s *Store) deletePet(w http.ResponseWriter, r *http.Request) {
	id, ok := petID(w, r)
	if !ok {
		return
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	rec, ok := s.pets[id]
	if !ok || rec.current == nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	if !s.options.softDelete {
		rec.previous = rec.current
		rec.current = nil
		rec.lagReads = s.options.readLag
	}

	writeJSON(w, http.StatusOK, apiResponse{Code: http.StatusOK, Type: "unknown", Message: strconv.FormatInt(id, 10)})
}

func (s *Store) findByStatus(w http.ResponseWriter, r *http.Request) {
	statuses := r.URL.Query()["status"]

	s.lock.Lock()

	pets := []*api.Pet{}

	for _, rec := range s.pets {
		if rec.current != nil && slices.Contains(statuses, rec.current.Status) {
			pets = append(pets, rec.current.Clone())
		}
	}

	s.lock.Unlock()

	slices.SortFunc(pets, func(a, b *api.Pet) int {
		return cmp.Compare(*a.ID, *b.ID)
	})

	writeJSON(w, http.StatusOK, pets)
}

// apiResponse is the store's generic message body, also used for errors.
type apiResponse struct {
	Code    int    `json:"code"`
	Type    string `json:"type"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, apiResponse{Code: 1, Type: "error", Message: message})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(body)
}
