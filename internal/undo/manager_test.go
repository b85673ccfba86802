/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package undo

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func snap(doc, label, blob string, ts time.Time) Snapshot {
	return Snapshot{Doc: doc, Label: label, Blob: []byte(blob), TS: ts}
}

func TestUndoRedoBasic(t *testing.T) {
	m := NewManager(Config{MaxBytes: 1024, MaxDepth: 10, MinInterval: 10 * time.Millisecond})
	t0 := time.Now()
	m.Push(snap("page", "add", "a", t0))
	m.Push(snap("page", "move", "b", t0.Add(20*time.Millisecond)))
	if _, docs, total := m.Stats(); docs != 1 || total != 2 {
		t.Fatalf("expected 1 doc and 2 snapshots, got docs=%d total=%d", docs, total)
	}

	s, ok := m.Undo(snap("page", "", "c", t0))
	if !ok || string(s.Blob) != "b" {
		t.Fatalf("undo expected 'b', got ok=%v blob=%q", ok, s.Blob)
	}
	if !m.CanRedo("page") {
		t.Fatalf("expected redo entry")
	}
	s, ok = m.Redo(snap("page", "", "b", t0))
	if !ok || string(s.Blob) != "c" {
		t.Fatalf("redo expected 'c', got ok=%v blob=%q", ok, s.Blob)
	}
	if diff := cmp.Diff([]string{"add", "move"}, m.Labels("page")); diff != "" {
		t.Fatalf("labels (-want +got):\n%s", diff)
	}
}

func TestEmptyStacks(t *testing.T) {
	m := NewManager(Config{})
	if _, ok := m.Undo(Snapshot{Doc: "x"}); ok {
		t.Fatalf("undo on empty stack")
	}
	if _, ok := m.Redo(Snapshot{Doc: "x"}); ok {
		t.Fatalf("redo on empty stack")
	}
	if m.CanUndo("x") || m.CanRedo("x") {
		t.Fatalf("expected nothing to undo or redo")
	}
}

func TestPushClearsRedo(t *testing.T) {
	m := NewManager(Config{})
	t0 := time.Now()
	m.Push(snap("p", "add", "1", t0))
	m.Undo(snap("p", "", "2", t0))
	m.Push(snap("p", "edit", "1", t0.Add(time.Second)))
	if m.CanRedo("p") {
		t.Fatalf("new change must clear redo")
	}
}

func targeted(s Snapshot, target string) Snapshot {
	s.Target = target
	return s
}

func TestCoalesceKeepsOlderState(t *testing.T) {
	m := NewManager(Config{MinInterval: 50 * time.Millisecond})
	t0 := time.Now()
	if !m.Push(targeted(snap("p", "edit", "1", t0), "a")) {
		t.Fatalf("first push must not coalesce")
	}
	if m.Push(targeted(snap("p", "edit", "2", t0.Add(10*time.Millisecond)), "a")) {
		t.Fatalf("expected coalesce")
	}
	if !m.Push(targeted(snap("p", "move", "3", t0.Add(20*time.Millisecond)), "a")) {
		t.Fatalf("different label must not coalesce")
	}
	_, _, total := m.Stats()
	if total != 2 {
		t.Fatalf("expected 2 snapshots, got %d", total)
	}
	m.Undo(snap("p", "", "4", t0))
	s, _ := m.Undo(snap("p", "", "3", t0))
	if string(s.Blob) != "1" {
		t.Fatalf("expected the older state '1', got %q", s.Blob)
	}
}

func TestCoalesceRequiresSameTarget(t *testing.T) {
	m := NewManager(Config{MinInterval: time.Second})
	t0 := time.Now()
	m.Push(snap("p", "add text", "0", t0))
	if !m.Push(snap("p", "add text", "1", t0.Add(time.Millisecond))) {
		t.Fatalf("untargeted pushes must not coalesce")
	}
	m.Push(targeted(snap("p", "edit content", "2", t0.Add(2*time.Millisecond)), "a content"))
	if !m.Push(targeted(snap("p", "edit content", "3", t0.Add(3*time.Millisecond)), "b content")) {
		t.Fatalf("edits of different targets must not coalesce")
	}
	if diff := cmp.Diff([]string{"add text", "add text", "edit content", "edit content"}, m.Labels("p")); diff != "" {
		t.Fatalf("labels (-want +got):\n%s", diff)
	}
}

func TestCaps(t *testing.T) {
	m := NewManager(Config{MaxBytes: 1 << 20, MaxDepth: 2})
	t0 := time.Now()
	for i := 0; i < 10; i++ {
		m.Push(snap("p", "edit", "xxxxx", t0.Add(time.Duration(i)*time.Millisecond)))
	}
	if _, _, total := m.Stats(); total != 2 {
		t.Fatalf("expected MaxDepth cap to limit to 2, got %d", total)
	}

	m = NewManager(Config{MaxBytes: 12})
	m.Push(snap("a", "edit", "xxxxx", t0))
	m.Push(snap("b", "edit", "xxxxx", t0.Add(time.Millisecond)))
	m.Push(snap("b", "edit", "xxxxx", t0.Add(2*time.Millisecond)))
	bytes, _, total := m.Stats()
	if bytes > 12 || total != 2 || m.CanUndo("a") {
		t.Fatalf("expected oldest doc pruned: bytes=%d total=%d", bytes, total)
	}
}

func TestClear(t *testing.T) {
	m := NewManager(Config{})
	m.Push(snap("p", "add", "abc", time.Now()))
	m.Clear("p")
	if bytes, docs, _ := m.Stats(); bytes != 0 || docs != 0 {
		t.Fatalf("expected empty manager, got bytes=%d docs=%d", bytes, docs)
	}
}
