/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package editor is the application state of one page being edited: the
// element store, the selection and its form, the drag in progress, the edit
// history and the message currently shown to the user. Rendering and input
// collaborators hold an *Editor and call into it on every user event.
package editor

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"pagebuilder/internal/canvas"
	"pagebuilder/internal/config"
	"pagebuilder/internal/domain"
	"pagebuilder/internal/drag"
	"pagebuilder/internal/formschema"
	applog "pagebuilder/internal/log"
	"pagebuilder/internal/templates"
	"pagebuilder/internal/undo"
)

// historyDoc keys the page in the undo manager.
const historyDoc = "page"

// Editor coordinates selection, editing, dragging and history on top of a
// canvas.Store. All methods are safe for concurrent use.
type Editor struct {
	mu sync.Mutex

	store     *canvas.Store
	drag      *drag.Controller
	templates *templates.Registry
	history   *undo.Manager
	now       func() time.Time
	log       *slog.Logger

	name          string
	width, height int

	selected string
	schema   *formschema.Schema
	notice   *Notice
}

// Option customizes an Editor.
type Option func(*Editor)

// WithStore uses s instead of a fresh store.
func WithStore(s *canvas.Store) Option { return func(e *Editor) { e.store = s } }

// WithRegistry uses r for template lookups.
func WithRegistry(r *templates.Registry) Option { return func(e *Editor) { e.templates = r } }

// WithClock replaces time.Now for history timestamps.
func WithClock(now func() time.Time) Option { return func(e *Editor) { e.now = now } }

// WithName sets the page name reported by Page.
func WithName(name string) Option { return func(e *Editor) { e.name = name } }

// New returns an editor for an empty page sized and bounded by cfg.
func New(cfg config.AppConfig, opts ...Option) *Editor {
	grid := cfg.Canvas.GridSize
	if grid <= 0 {
		grid = domain.GridSize
	}
	e := &Editor{
		drag: drag.New(grid),
		history: undo.NewManager(undo.Config{
			MaxBytes:    cfg.Editor.HistoryMaxBytes,
			MaxDepth:    cfg.Editor.HistoryMaxDepth,
			MinInterval: cfg.Editor.CoalesceWindow(),
		}),
		now:    time.Now,
		log:    applog.WithComponent("editor"),
		name:   "Untitled",
		width:  cfg.Canvas.Width,
		height: cfg.Canvas.Height,
	}
	for _, o := range opts {
		o(e)
	}
	if e.store == nil {
		e.store = canvas.New()
	}
	if e.templates == nil {
		e.templates = templates.NewRegistry()
	}
	return e
}

// NewWithSample returns an editor whose page starts with the welcome elements.
func NewWithSample(cfg config.AppConfig, opts ...Option) *Editor {
	e := New(cfg, opts...)
	e.store.LoadTemplate(domain.Sample())
	return e
}

// Elements returns the page content in stacking order.
func (e *Editor) Elements() []domain.Element { return e.store.All() }

// Element returns one element by id.
func (e *Editor) Element(id string) (domain.Element, bool) { return e.store.Get(id) }

// Templates returns the registry used by LoadTemplate.
func (e *Editor) Templates() *templates.Registry { return e.templates }

// AddElement appends an element of type t with its default attributes and
// selects it. A rejected type leaves the page untouched and raises a notice.
func (e *Editor) AddElement(t domain.ElementType) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	var id string
	err := e.mutateLocked("add "+string(t), "", func() (bool, error) {
		var err error
		id, err = e.store.Add(t)
		return err == nil, err
	})
	if err != nil {
		return "", e.failLocked("add element", err)
	}
	e.selectLocked(id)
	e.log.Debug("element added", slog.String("id", id), slog.String("type", string(t)))
	return id, nil
}

// Select makes id the selection and derives its form. Selecting an id that
// is gone keeps the id but clears the form. An empty id clears both.
func (e *Editor) Select(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.selectLocked(id)
}

func (e *Editor) selectLocked(id string) {
	e.selected = id
	e.schema = nil
	if id == "" {
		return
	}
	if el, ok := e.store.Get(id); ok {
		s := formschema.For(el)
		e.schema = &s
	}
}

// Selected returns the selected id, if any.
func (e *Editor) Selected() (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.selected, e.selected != ""
}

// Schema returns a copy of the form of the selected element.
func (e *Editor) Schema() (formschema.Schema, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.schema == nil {
		return formschema.Schema{}, false
	}
	return e.schema.Clone(), true
}

// Edit applies raw input for the field key of the selected element. The
// cached form takes the new value directly. Without a selection, or when
// the selected element has disappeared, Edit does nothing.
func (e *Editor) Edit(key, raw string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.schema == nil {
		return nil
	}
	f, ok := e.schema.Field(key)
	if !ok {
		return e.failLocked("edit "+key, fmt.Errorf("%w: %s", domain.ErrUnknownField, key))
	}
	v, err := formschema.Coerce(f, raw)
	if err != nil {
		return e.failLocked("edit "+key, err)
	}
	id := e.selected
	err = e.mutateLocked("edit "+key, id+" "+key, func() (bool, error) {
		return e.store.Update(id, key, v)
	})
	if err != nil {
		return e.failLocked("edit "+key, err)
	}
	if !e.store.Has(id) {
		return nil
	}
	e.schema.SetValue(key, v)
	return nil
}

// Delete removes id. The selection and form are cleared only when id was selected.
func (e *Editor) Delete(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	removed := false
	_ = e.mutateLocked("delete", "", func() (bool, error) {
		removed = e.store.Remove(id)
		return removed, nil
	})
	if id != "" && id == e.selected {
		e.selected = ""
		e.schema = nil
	}
	if dragged, _, ok := e.drag.Active(); ok && dragged == id {
		e.drag.Cancel()
	}
	return removed
}

// Duplicate appends a copy of id one grid step down and right and selects
// it. A container copy starts empty. A missing id is ignored.
func (e *Editor) Duplicate(id string) (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	el, ok := e.store.Get(id)
	if !ok {
		return "", false
	}
	step := e.drag.Grid()
	el.X += step
	el.Y += step
	var copyID string
	err := e.mutateLocked("duplicate", "", func() (bool, error) {
		var err error
		copyID, err = e.store.Insert(el)
		return err == nil, err
	})
	if err != nil {
		e.log.Warn("duplicate failed", slog.String("id", id), slog.Any("err", err))
		return "", false
	}
	e.selectLocked(copyID)
	return copyID, true
}

// LoadTemplate appends the elements of the named template under fresh ids.
func (e *Editor) LoadTemplate(name string) ([]string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	t, err := e.templates.Lookup(name)
	if err != nil {
		return nil, e.failLocked("load template", err)
	}
	var ids []string
	_ = e.mutateLocked("template "+t.Name, "", func() (bool, error) {
		ids = e.store.LoadTemplate(t.Instantiate())
		return len(ids) > 0, nil
	})
	e.log.Info("template loaded", slog.String("template", t.Name), slog.Int("elements", len(ids)))
	return ids, nil
}

// Attach nests child inside container.
func (e *Editor) Attach(containerID, childID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	err := e.mutateLocked("attach", "", func() (bool, error) {
		return e.store.Attach(containerID, childID)
	})
	if err != nil {
		return e.failLocked("attach", err)
	}
	return nil
}

// Detach removes child from container's children.
func (e *Editor) Detach(containerID, childID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	detached := false
	_ = e.mutateLocked("detach", "", func() (bool, error) {
		detached = e.store.Detach(containerID, childID)
		return detached, nil
	})
	return detached
}

// Page returns the document for persistence or export.
func (e *Editor) Page() domain.Page {
	e.mu.Lock()
	defer e.mu.Unlock()
	p := domain.NewPage(e.name, e.width, e.height)
	p.GridSize = e.drag.Grid()
	p.Elements = e.store.All()
	return p
}

// Restore replaces the page with p and forgets selection, drag and history.
func (e *Editor) Restore(p domain.Page) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.store.Replace(p.Elements); err != nil {
		return fmt.Errorf("restore page: %w", err)
	}
	if p.Name != "" {
		e.name = p.Name
	}
	if p.Width > 0 {
		e.width = p.Width
	}
	if p.Height > 0 {
		e.height = p.Height
	}
	if p.GridSize > 0 && p.GridSize != e.drag.Grid() {
		e.drag = drag.New(p.GridSize)
	} else {
		e.drag.Cancel()
	}
	e.selected = ""
	e.schema = nil
	e.history.Clear(historyDoc)
	return nil
}

// mutateLocked runs fn and, when it reports a change, records the state from
// before fn in the history. Changes with the same non-empty target coalesce.
func (e *Editor) mutateLocked(label, target string, fn func() (bool, error)) error {
	before, err := json.Marshal(e.store.All())
	if err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	changed, err := fn()
	if err != nil || !changed {
		return err
	}
	e.history.Push(undo.Snapshot{Doc: historyDoc, Label: label, Target: target, Blob: before, TS: e.now()})
	return nil
}

// failLocked converts err into a ValidationError and shows it.
func (e *Editor) failLocked(op string, err error) error {
	var ve *ValidationError
	if !errors.As(err, &ve) {
		ve = &ValidationError{Op: op, Err: err}
	}
	e.notice = &Notice{Title: "Error", Message: ve.Error()}
	e.log.Warn("operation rejected", slog.String("op", op), slog.Any("err", err))
	return ve
}
