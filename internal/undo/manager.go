/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package undo keeps bounded undo/redo stacks of opaque document snapshots.
package undo

import (
	"sync"
	"time"
)

// Snapshot is a reversible state blob for one document. The manager never
// looks inside Blob; its size is accounted as len(Blob). Label names the
// change the snapshot precedes ("edit color", "move"). Target identifies what
// the change touched; only snapshots with a non-empty Target coalesce.
type Snapshot struct {
	Doc    string
	Label  string
	Target string
	Blob   []byte
	TS     time.Time
}

// Config controls memory and depth caps and coalescing behavior.
type Config struct {
	// MaxBytes caps the bytes held in undo stacks; the oldest entries are pruned first.
	MaxBytes int
	// MaxDepth limits the undo entries kept per document (0 means unlimited).
	MaxDepth int
	// MinInterval merges a push into the previous entry when both carry the
	// same label and non-empty target and arrive within the interval. The
	// older state is kept.
	MinInterval time.Duration
}

// Manager holds undo/redo stacks per document. It is safe for concurrent use.
type Manager struct {
	cfg Config
	mu  sync.Mutex

	undo map[string][]Snapshot
	redo map[string][]Snapshot

	totalBytes int
}

func NewManager(cfg Config) *Manager {
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = 8 * 1024 * 1024
	}
	if cfg.MinInterval < 0 {
		cfg.MinInterval = 0
	}
	return &Manager{cfg: cfg, undo: make(map[string][]Snapshot), redo: make(map[string][]Snapshot)}
}

// Push records the state a document had before a change and clears its redo
// stack. It reports false when the push was merged into the previous entry.
func (m *Manager) Push(s Snapshot) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dropRedoLocked(s.Doc)
	stack := m.undo[s.Doc]
	if n := len(stack); n > 0 && m.cfg.MinInterval > 0 {
		last := stack[n-1]
		if s.Target != "" && last.Target == s.Target && last.Label == s.Label && s.TS.Sub(last.TS) < m.cfg.MinInterval {
			stack[n-1].TS = s.TS
			return false
		}
	}
	m.undo[s.Doc] = append(stack, s)
	m.totalBytes += len(s.Blob)
	m.enforceCapsLocked(s.Doc)
	return true
}

// Undo pops the latest snapshot of current.Doc and parks current on the
// redo stack. The caller restores the returned snapshot.
func (m *Manager) Undo(current Snapshot) (Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stack := m.undo[current.Doc]
	if len(stack) == 0 {
		return Snapshot{}, false
	}
	s := stack[len(stack)-1]
	m.undo[current.Doc] = stack[:len(stack)-1]
	m.totalBytes -= len(s.Blob)
	current.Label, current.Target = s.Label, s.Target
	m.redo[current.Doc] = append(m.redo[current.Doc], current)
	return s, true
}

// Redo pops the latest redo snapshot of current.Doc and pushes current back onto the undo stack.
func (m *Manager) Redo(current Snapshot) (Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := m.redo[current.Doc]
	if len(r) == 0 {
		return Snapshot{}, false
	}
	s := r[len(r)-1]
	m.redo[current.Doc] = r[:len(r)-1]
	current.Label, current.Target = s.Label, s.Target
	m.undo[current.Doc] = append(m.undo[current.Doc], current)
	m.totalBytes += len(current.Blob)
	m.enforceCapsLocked(current.Doc)
	return s, true
}

// CanUndo reports whether doc has undo entries.
func (m *Manager) CanUndo(doc string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.undo[doc]) > 0
}

// CanRedo reports whether doc has redo entries.
func (m *Manager) CanRedo(doc string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.redo[doc]) > 0
}

// Labels lists the undo labels of doc, oldest first.
func (m *Manager) Labels(doc string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.undo[doc]))
	for _, s := range m.undo[doc] {
		out = append(out, s.Label)
	}
	return out
}

// Clear drops both stacks of doc.
func (m *Manager) Clear(doc string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.undo[doc] {
		m.totalBytes -= len(s.Blob)
	}
	delete(m.undo, doc)
	delete(m.redo, doc)
	if m.totalBytes < 0 {
		m.totalBytes = 0
	}
}

// Stats returns current sizes for diagnostics.
func (m *Manager) Stats() (totalBytes int, docs int, totalSnapshots int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	docs = len(m.undo)
	for _, v := range m.undo {
		totalSnapshots += len(v)
	}
	return m.totalBytes, docs, totalSnapshots
}

func (m *Manager) dropRedoLocked(doc string) {
	delete(m.redo, doc)
}

func (m *Manager) enforceCapsLocked(doc string) {
	if m.cfg.MaxDepth > 0 {
		stack := m.undo[doc]
		if extra := len(stack) - m.cfg.MaxDepth; extra > 0 {
			for _, s := range stack[:extra] {
				m.totalBytes -= len(s.Blob)
			}
			m.undo[doc] = append([]Snapshot{}, stack[extra:]...)
		}
	}
	// Global cap: prune the oldest entry across all documents, but never the
	// only entry left for doc.
	for m.totalBytes > m.cfg.MaxBytes {
		oldestDoc := ""
		var oldestTS time.Time
		found := false
		for d, stack := range m.undo {
			if len(stack) == 0 || (d == doc && len(stack) == 1) {
				continue
			}
			if !found || stack[0].TS.Before(oldestTS) {
				oldestDoc, oldestTS, found = d, stack[0].TS, true
			}
		}
		if !found {
			break
		}
		stack := m.undo[oldestDoc]
		m.totalBytes -= len(stack[0].Blob)
		m.undo[oldestDoc] = stack[1:]
		if len(m.undo[oldestDoc]) == 0 {
			delete(m.undo, oldestDoc)
		}
	}
}
