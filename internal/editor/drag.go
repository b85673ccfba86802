/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import (
	"log/slog"

	"pagebuilder/internal/drag"
)

// StartDrag begins dragging id from its stored position. Starting while
// another drag is active returns domain.ErrDragInProgress and leaves the
// active drag alone. A missing id is ignored.
func (e *Editor) StartDrag(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	el, ok := e.store.Get(id)
	if !ok {
		return nil
	}
	return e.drag.Start(id, el.X, el.Y)
}

// DragTo moves the live position of the dragged element under pointer. size
// is the rendered size of the element; a zero size falls back to the
// element's own width and height. The store is not touched.
func (e *Editor) DragTo(pointer drag.Pt, size drag.Size) (drag.Position, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	id, _, ok := e.drag.Active()
	if !ok {
		return drag.Position{}, false
	}
	if size.W == 0 && size.H == 0 {
		if el, found := e.store.Get(id); found {
			w, h := el.Size()
			size = drag.Size{W: float64(w), H: float64(h)}
		}
	}
	return e.drag.Update(pointer, size)
}

// Dragging reports the element being dragged and its live position.
func (e *Editor) Dragging() (string, drag.Position, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.drag.Active()
}

// EndDrag commits the live position to the store. When the dragged element
// is selected its form is derived again so x and y show the new values.
func (e *Editor) EndDrag() (drag.Commit, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	c, ok := e.drag.End()
	if !ok {
		return drag.Commit{}, false
	}
	moved := false
	_ = e.mutateLocked("move", "", func() (bool, error) {
		el, found := e.store.Get(c.ID)
		if !found || (el.X == c.X && el.Y == c.Y) {
			return false, nil
		}
		moved = e.store.Move(c.ID, c.X, c.Y)
		return moved, nil
	})
	if moved {
		e.log.Debug("element moved", slog.String("id", c.ID), slog.Int("x", c.X), slog.Int("y", c.Y))
	}
	if c.ID == e.selected {
		e.selectLocked(c.ID)
	}
	return c, true
}

// CancelDrag abandons the drag; the stored position is unchanged.
func (e *Editor) CancelDrag() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.drag.Cancel()
}
