/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package canvas

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"pagebuilder/internal/domain"
)

// seqIDs hands out predictable ids; repeat makes it return an id twice to
// exercise collision handling.
type seqIDs struct {
	n      int
	repeat map[int]bool
}

func (g *seqIDs) NewID() string {
	if !g.repeat[g.n] {
		g.n++
	} else {
		delete(g.repeat, g.n)
	}
	return fmt.Sprintf("el-%d", g.n)
}

func newTestStore() *Store { return New(WithIDGenerator(&seqIDs{})) }

func TestAddUsesDefaultsAndUniqueIDs(t *testing.T) {
	s := New()
	seen := map[string]bool{}
	for _, typ := range domain.ElementTypes {
		id, err := s.Add(typ)
		if err != nil {
			t.Fatalf("Add(%s): %v", typ, err)
		}
		if seen[id] {
			t.Fatalf("duplicate id %s", id)
		}
		seen[id] = true
		got, ok := s.Get(id)
		if !ok {
			t.Fatalf("Get(%s) missing", id)
		}
		want, _ := domain.Defaults(typ)
		want.ID = id
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("Add(%s) mismatch (-want +got):\n%s", typ, diff)
		}
	}
	if s.Len() != len(domain.ElementTypes) {
		t.Fatalf("Len = %d", s.Len())
	}
}

func TestAddUnknownTypeLeavesStoreUntouched(t *testing.T) {
	s := newTestStore()
	if _, err := s.Add("video"); !errors.Is(err, domain.ErrUnknownType) {
		t.Fatalf("expected ErrUnknownType, got %v", err)
	}
	if s.Len() != 0 {
		t.Fatalf("store mutated on failed add")
	}
}

func TestFreshIDSkipsCollisions(t *testing.T) {
	g := &seqIDs{repeat: map[int]bool{1: true}}
	s := New(WithIDGenerator(g))
	a, _ := s.Add(domain.TypeText)
	b, _ := s.Add(domain.TypeText)
	if a == b {
		t.Fatalf("collision not avoided: %s", a)
	}
}

func TestButtonScenario(t *testing.T) {
	s := newTestStore()
	id, err := s.Add(domain.TypeButton)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	all := s.All()
	if len(all) != 1 || all[0].Type != domain.TypeButton || all[0].Content != "New Button" || all[0].Button.BackgroundColor != "#007bff" {
		t.Fatalf("unexpected store after add: %+v", all)
	}
	if ok, err := s.Update(id, domain.KeyContent, domain.Str("Buy Now")); !ok || err != nil {
		t.Fatalf("Update = %v, %v", ok, err)
	}
	if el, _ := s.Get(id); el.Content != "Buy Now" {
		t.Fatalf("content = %q", el.Content)
	}
	if !s.Remove(id) {
		t.Fatalf("Remove reported missing")
	}
	if s.Len() != 0 {
		t.Fatalf("store not empty after remove")
	}
}

func TestMissingIDIsNoop(t *testing.T) {
	s := newTestStore()
	_, _ = s.Add(domain.TypeText)
	before := s.All()
	if ok, err := s.Update("nope", domain.KeyContent, domain.Str("x")); ok || err != nil {
		t.Fatalf("Update missing = %v, %v", ok, err)
	}
	if s.Remove("nope") || s.Move("nope", 1, 1) {
		t.Fatalf("missing id reported as found")
	}
	if diff := cmp.Diff(before, s.All()); diff != "" {
		t.Fatalf("store changed (-before +after):\n%s", diff)
	}
}

func TestRejectedUpdateKeepsElement(t *testing.T) {
	s := newTestStore()
	id, _ := s.Add(domain.TypeText)
	if ok, err := s.Update(id, domain.KeyFontFamily, domain.Str("Comic Sans")); !ok || !errors.Is(err, domain.ErrInvalidValue) {
		t.Fatalf("Update = %v, %v", ok, err)
	}
	if el, _ := s.Get(id); el.Text.FontFamily != "Arial" {
		t.Fatalf("rejected value leaked: %q", el.Text.FontFamily)
	}
}

func TestAllReturnsCopiesInOrder(t *testing.T) {
	s := newTestStore()
	a, _ := s.Add(domain.TypeText)
	b, _ := s.Add(domain.TypeImage)
	all := s.All()
	if all[0].ID != a || all[1].ID != b {
		t.Fatalf("order lost: %s %s", all[0].ID, all[1].ID)
	}
	all[0].Content = "mutated"
	if el, _ := s.Get(a); el.Content == "mutated" {
		t.Fatalf("All leaked internal state")
	}
}

func TestLoadTemplateAppendsFreshIDs(t *testing.T) {
	s := newTestStore()
	existing, _ := s.Add(domain.TypeText)
	box, _ := domain.Defaults(domain.TypeContainer)
	box.ID = "tpl-box"
	box.Container.Children = []string{"tpl-label", "elsewhere"}
	label, _ := domain.Defaults(domain.TypeText)
	label.ID = "tpl-label"

	ids := s.LoadTemplate([]domain.Element{box, label})
	if len(ids) != 2 {
		t.Fatalf("ids = %v", ids)
	}
	all := s.All()
	if len(all) != 3 || all[0].ID != existing {
		t.Fatalf("existing elements disturbed: %+v", all)
	}
	for _, id := range ids {
		if id == existing || id == "tpl-box" || id == "tpl-label" {
			t.Fatalf("id %s not fresh", id)
		}
	}
	if diff := cmp.Diff([]string{ids[1]}, s.Children(ids[0])); diff != "" {
		t.Fatalf("children not remapped (-want +got):\n%s", diff)
	}
	if box.Container.Children[0] != "tpl-label" {
		t.Fatalf("template source mutated")
	}
}

func TestRemoveContainerPromotesChildren(t *testing.T) {
	s := newTestStore()
	box, _ := s.Add(domain.TypeContainer)
	kid, _ := s.Add(domain.TypeText)
	if ok, err := s.Attach(box, kid); !ok || err != nil {
		t.Fatalf("Attach = %v, %v", ok, err)
	}
	if p, ok := s.Parent(kid); !ok || p != box {
		t.Fatalf("Parent = %q, %v", p, ok)
	}
	s.Remove(box)
	if !s.Has(kid) {
		t.Fatalf("child removed with its container")
	}
	if _, ok := s.Parent(kid); ok {
		t.Fatalf("child still has a parent")
	}
}

func TestRemoveChildScrubsReferences(t *testing.T) {
	s := newTestStore()
	box, _ := s.Add(domain.TypeContainer)
	kid, _ := s.Add(domain.TypeText)
	_, _ = s.Attach(box, kid)
	s.Remove(kid)
	if got := s.Children(box); len(got) != 0 {
		t.Fatalf("dangling child reference: %v", got)
	}
}

func TestAttachRules(t *testing.T) {
	s := newTestStore()
	outer, _ := s.Add(domain.TypeContainer)
	inner, _ := s.Add(domain.TypeContainer)
	text, _ := s.Add(domain.TypeText)

	if _, err := s.Attach(text, inner); !errors.Is(err, domain.ErrNotContainer) {
		t.Fatalf("expected ErrNotContainer, got %v", err)
	}
	if _, err := s.Attach(outer, inner); err != nil {
		t.Fatalf("Attach: %v", err)
	}
	if _, err := s.Attach(inner, outer); !errors.Is(err, domain.ErrInvalidValue) {
		t.Fatalf("cycle accepted: %v", err)
	}
	if _, err := s.Attach(outer, outer); !errors.Is(err, domain.ErrInvalidValue) {
		t.Fatalf("self attach accepted: %v", err)
	}
	// moving a child between containers keeps it listed once
	_, _ = s.Attach(outer, text)
	_, _ = s.Attach(inner, text)
	if got := s.Children(outer); len(got) != 1 || got[0] != inner {
		t.Fatalf("outer children = %v", got)
	}
	if !s.Detach(inner, text) || s.Detach(inner, text) {
		t.Fatalf("Detach results wrong")
	}
	if ok, err := s.Attach("missing", text); ok || err != nil {
		t.Fatalf("missing container = %v, %v", ok, err)
	}
}

func TestReplaceRejectsDuplicates(t *testing.T) {
	s := newTestStore()
	a, _ := domain.Defaults(domain.TypeText)
	a.ID = "same"
	if err := s.Replace([]domain.Element{a, a}); err == nil {
		t.Fatalf("duplicate ids accepted")
	}
	if err := s.Replace([]domain.Element{a}); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if !s.Has("same") || s.Len() != 1 {
		t.Fatalf("Replace did not install elements")
	}
}

func TestInsertCopiesUnderFreshID(t *testing.T) {
	s := newTestStore()
	box, _ := s.Add(domain.TypeContainer)
	txt, _ := s.Add(domain.TypeText)
	if _, err := s.Attach(box, txt); err != nil {
		t.Fatalf("Attach: %v", err)
	}
	el, _ := s.Get(box)
	id, err := s.Insert(el)
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if id == box || id == txt {
		t.Fatalf("Insert reused id %q", id)
	}
	cp, _ := s.Get(id)
	if len(cp.Container.Children) != 0 {
		t.Fatalf("inserted container should start empty, got %v", cp.Container.Children)
	}
	cp.Container.Children = nil
	el.Container.Children = nil
	cp.ID = box
	if diff := cmp.Diff(el, cp); diff != "" {
		t.Fatalf("copy differs (-want +got):\n%s", diff)
	}
	if _, err := s.Insert(domain.Element{Type: "video"}); !errors.Is(err, domain.ErrUnknownType) {
		t.Fatalf("expected ErrUnknownType, got %v", err)
	}
	if s.Len() != 3 {
		t.Fatalf("Len = %d", s.Len())
	}
}
