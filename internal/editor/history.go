/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import (
	"encoding/json"
	"log/slog"

	"pagebuilder/internal/domain"
	"pagebuilder/internal/undo"
)

// Undo restores the page as it was before the last change.
func (e *Editor) Undo() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stepLocked(e.history.Undo)
}

// Redo reapplies the last undone change.
func (e *Editor) Redo() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stepLocked(e.history.Redo)
}

// History lists the labels of the undoable changes, oldest first.
func (e *Editor) History() []string {
	return e.history.Labels(historyDoc)
}

func (e *Editor) stepLocked(step func(undo.Snapshot) (undo.Snapshot, bool)) bool {
	current, err := json.Marshal(e.store.All())
	if err != nil {
		e.log.Error("snapshot failed", slog.Any("err", err))
		return false
	}
	s, ok := step(undo.Snapshot{Doc: historyDoc, Blob: current, TS: e.now()})
	if !ok {
		return false
	}
	var elems []domain.Element
	if err := json.Unmarshal(s.Blob, &elems); err != nil {
		e.log.Error("restore snapshot failed", slog.Any("err", err))
		return false
	}
	if err := e.store.Replace(elems); err != nil {
		e.log.Error("restore snapshot failed", slog.Any("err", err))
		return false
	}
	e.drag.Cancel()
	if e.selected != "" {
		e.selectLocked(e.selected)
	}
	e.log.Debug("history step", slog.String("change", s.Label))
	return true
}
