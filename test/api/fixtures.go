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
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"k8s.io/utils/ptr"
)

// IDGenerator hands out time derived pet identifiers that are strictly
// increasing within the process.
type IDGenerator struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

func NewIDGenerator() *IDGenerator {
	return &IDGenerator{
		now: time.Now,
	}
}

// Next returns the current time in milliseconds, or the previous value plus
// one if the clock has not moved on.
func (g *IDGenerator) Next() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	id := g.now().UnixMilli()
	if id <= g.last {
		id = g.last + 1
	}

	g.last = id

	return id
}

//nolint:gochecknoglobals
var defaultIDGenerator = NewIDGenerator()

// FixtureLoader reads pet templates from a JSON file.  The file is read once
// on first use.
type FixtureLoader struct {
	path string
	ids  *IDGenerator

	once      sync.Once
	templates []Pet
	err       error
}

type FixtureOption func(*FixtureLoader)

// WithIDGenerator overrides the process wide generator.
func WithIDGenerator(ids *IDGenerator) FixtureOption {
	return func(l *FixtureLoader) {
		l.ids = ids
	}
}

func NewFixtureLoader(path string, options ...FixtureOption) *FixtureLoader {
	l := &FixtureLoader{
		path: path,
		ids:  defaultIDGenerator,
	}

	for _, o := range options {
		o(l)
	}

	return l
}

func (l *FixtureLoader) load() {
	data, err := os.ReadFile(l.path)
	if err != nil {
		l.err = fmt.Errorf("reading fixtures: %w", err)
		return
	}

	var templates []Pet
	if err := json.Unmarshal(data, &templates); err != nil {
		l.err = fmt.Errorf("unmarshaling fixtures from %s: %w", l.path, err)
		return
	}

	for i := range templates {
		if strings.TrimSpace(templates[i].Name) == "" {
			l.err = fmt.Errorf("%w: template %d in %s has no name", ErrInvalidFixture, i, l.path)
			return
		}
	}

	l.templates = templates
}

// Len returns the number of templates.
func (l *FixtureLoader) Len() (int, error) {
	l.once.Do(l.load)

	return len(l.templates), l.err
}

// Load returns a copy of the template at index with a freshly generated ID.
// The ID is only a proposal, the server may assign its own.
func (l *FixtureLoader) Load(index int) (*Pet, error) {
	l.once.Do(l.load)

	if l.err != nil {
		return nil, l.err
	}

	if index < 0 || index >= len(l.templates) {
		return nil, fmt.Errorf("%w: index %d, %d fixtures available", ErrFixtureIndexOutOfRange, index, len(l.templates))
	}

	pet := l.templates[index].Clone()
	pet.ID = ptr.To(l.ids.Next())

	return pet, nil
}
