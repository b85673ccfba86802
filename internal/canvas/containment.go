/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package canvas

import (
	"fmt"
	"log/slog"
	"slices"

	"pagebuilder/internal/domain"
)

// Attach lists childID as a child of containerID. An element belongs to at most
// one container, so it is first detached from any previous one. It reports
// false when either id is absent. Attaching a container to itself or to one of
// its descendants is rejected.
func (s *Store) Attach(containerID, childID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ci, ki := s.indexLocked(containerID), s.indexLocked(childID)
	if ci < 0 || ki < 0 {
		return false, nil
	}
	parent := s.elems[ci].Container
	if parent == nil {
		return true, fmt.Errorf("attach to %s: %w", containerID, domain.ErrNotContainer)
	}
	if containerID == childID || s.descendsLocked(containerID, childID) {
		return true, fmt.Errorf("attach %s to %s: %w: would create a cycle", childID, containerID, domain.ErrInvalidValue)
	}
	for i := range s.elems {
		if c := s.elems[i].Container; c != nil {
			c.Children = slices.DeleteFunc(c.Children, func(ref string) bool { return ref == childID })
		}
	}
	parent.Children = append(parent.Children, childID)
	s.log.Debug("child attached", slog.String("container", containerID), slog.String("child", childID))
	return true, nil
}

// Detach removes childID from containerID's children. The child stays on the page.
func (s *Store) Detach(containerID, childID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	ci := s.indexLocked(containerID)
	if ci < 0 || s.elems[ci].Container == nil {
		return false
	}
	c := s.elems[ci].Container
	n := len(c.Children)
	c.Children = slices.DeleteFunc(c.Children, func(ref string) bool { return ref == childID })
	return len(c.Children) != n
}

// Children returns the child ids of a container in order.
func (s *Store) Children(containerID string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ci := s.indexLocked(containerID)
	if ci < 0 || s.elems[ci].Container == nil {
		return nil
	}
	return append([]string(nil), s.elems[ci].Container.Children...)
}

// Parent returns the id of the container listing id, if any.
func (s *Store) Parent(id string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.parentLocked(id)
}

func (s *Store) parentLocked(id string) (string, bool) {
	for _, el := range s.elems {
		if el.Container != nil && slices.Contains(el.Container.Children, id) {
			return el.ID, true
		}
	}
	return "", false
}

// descendsLocked reports whether id sits somewhere below ancestor.
func (s *Store) descendsLocked(id, ancestor string) bool {
	seen := map[string]bool{}
	for cur := id; !seen[cur]; {
		seen[cur] = true
		p, ok := s.parentLocked(cur)
		if !ok {
			return false
		}
		if p == ancestor {
			return true
		}
		cur = p
	}
	return false
}
