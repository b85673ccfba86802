/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package canvas implements the element store: the ordered, id-addressed
// collection of elements placed on a page. Insertion order is stacking order.
//
// Operations addressing an id that is no longer present are silent no-ops and
// report false; stale references are expected after deletes.
package canvas

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/google/uuid"

	"pagebuilder/internal/domain"
	applog "pagebuilder/internal/log"
)

// IDGenerator supplies collision-resistant element identifiers.
type IDGenerator interface {
	NewID() string
}

// UUIDGenerator issues random (v4) UUIDs.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID() string { return uuid.NewString() }

// Store owns every element on a page. It is safe for concurrent use.
type Store struct {
	mu    sync.RWMutex
	ids   IDGenerator
	elems []domain.Element
	log   *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithIDGenerator overrides the identifier source.
func WithIDGenerator(g IDGenerator) Option {
	return func(s *Store) { s.ids = g }
}

// New returns an empty store.
func New(opts ...Option) *Store {
	s := &Store{ids: UUIDGenerator{}, elems: []domain.Element{}, log: applog.WithComponent("canvas")}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Add creates an element of type t with the palette defaults and a fresh id, appends it
// and returns the id.
func (s *Store) Add(t domain.ElementType) (string, error) {
	el, err := domain.Defaults(t)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	el.ID = s.freshIDLocked()
	s.elems = append(s.elems, el)
	s.log.Debug("element added", slog.String("id", el.ID), slog.String("type", string(t)))
	return el.ID, nil
}

// Insert appends a copy of el under a fresh id and returns that id.
// Any id el carries is discarded.
func (s *Store) Insert(el domain.Element) (string, error) {
	if !el.Type.Valid() {
		return "", fmt.Errorf("insert: %w: %q", domain.ErrUnknownType, el.Type)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c := el.Clone()
	c.ID = s.freshIDLocked()
	if c.Container != nil {
		c.Container.Children = []string{}
	}
	s.elems = append(s.elems, c)
	return c.ID, nil
}

// Update replaces one attribute of the element with id. It reports false when
// the id is absent, and an error when the key or value is not acceptable.
func (s *Store) Update(id, key string, v domain.Value) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(id)
	if i < 0 {
		s.log.Debug("update skipped: missing element", slog.String("id", id), slog.String("key", key))
		return false, nil
	}
	// Apply on a copy so a rejected value leaves the element untouched.
	el := s.elems[i].Clone()
	if err := el.SetAttr(key, v); err != nil {
		return true, fmt.Errorf("update %s.%s: %w", id, key, err)
	}
	s.elems[i] = el
	return true, nil
}

// Move sets the element position.
func (s *Store) Move(id string, x, y int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(id)
	if i < 0 {
		return false
	}
	s.elems[i].X, s.elems[i].Y = x, y
	return true
}

// Remove deletes the element with id. Elements listed as its children stay on
// the page as ordinary top-level elements, and the removed id is dropped from
// every container that listed it.
func (s *Store) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(id)
	if i < 0 {
		return false
	}
	orphans := 0
	if c := s.elems[i].Container; c != nil {
		orphans = len(c.Children)
	}
	s.elems = slices.Delete(s.elems, i, i+1)
	for j := range s.elems {
		if c := s.elems[j].Container; c != nil {
			c.Children = slices.DeleteFunc(c.Children, func(ref string) bool { return ref == id })
		}
	}
	s.log.Debug("element removed", slog.String("id", id), slog.Int("promoted_children", orphans))
	return true
}

// LoadTemplate appends copies of elems, each under a fresh id, in order, and
// returns the new ids. Container children that reference other template
// elements are rewritten to the new ids; references outside the set are dropped.
func (s *Store) LoadTemplate(elems []domain.Element) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	remap := make(map[string]string, len(elems))
	ids := make([]string, 0, len(elems))
	base := len(s.elems)
	for _, el := range elems {
		c := el.Clone()
		c.ID = s.freshIDLocked()
		if el.ID != "" {
			remap[el.ID] = c.ID
		}
		s.elems = append(s.elems, c)
		ids = append(ids, c.ID)
	}
	for i := base; i < len(s.elems); i++ {
		c := s.elems[i].Container
		if c == nil {
			continue
		}
		kids := make([]string, 0, len(c.Children))
		for _, ref := range c.Children {
			if nid, ok := remap[ref]; ok {
				kids = append(kids, nid)
			}
		}
		c.Children = kids
	}
	s.log.Debug("template elements appended", slog.Int("count", len(ids)))
	return ids
}

// All returns copies of the current elements in insertion order.
func (s *Store) All() []domain.Element {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Element, len(s.elems))
	for i, el := range s.elems {
		out[i] = el.Clone()
	}
	return out
}

// Get returns a copy of the element with id.
func (s *Store) Get(id string) (domain.Element, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexLocked(id)
	if i < 0 {
		return domain.Element{}, false
	}
	return s.elems[i].Clone(), true
}

// Has reports whether id is present.
func (s *Store) Has(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.indexLocked(id) >= 0
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.elems)
}

// Replace swaps the whole content, keeping the given ids. Used to restore
// history snapshots and opened documents.
func (s *Store) Replace(elems []domain.Element) error {
	seen := make(map[string]bool, len(elems))
	next := make([]domain.Element, 0, len(elems))
	for _, el := range elems {
		if el.ID == "" || seen[el.ID] {
			return fmt.Errorf("replace: duplicate or empty id %q", el.ID)
		}
		seen[el.ID] = true
		next = append(next, el.Clone())
	}
	s.mu.Lock()
	s.elems = next
	s.mu.Unlock()
	return nil
}

func (s *Store) indexLocked(id string) int {
	return slices.IndexFunc(s.elems, func(el domain.Element) bool { return el.ID == id })
}

func (s *Store) freshIDLocked() string {
	for {
		id := s.ids.NewID()
		if id != "" && s.indexLocked(id) < 0 {
			return id
		}
	}
}
