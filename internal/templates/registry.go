/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package templates

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"pagebuilder/internal/domain"
	applog "pagebuilder/internal/log"
)

// Registry holds the templates known to an editor session, in registration order.
type Registry struct {
	mu    sync.RWMutex
	order []string
	byKey map[string]Template
}

// NewRegistry returns a registry preloaded with the built-in templates.
func NewRegistry() *Registry {
	r := &Registry{byKey: map[string]Template{}}
	for _, t := range Builtins() {
		_ = r.Register(t)
	}
	return r
}

// Register adds t, replacing an existing template with the same name.
func (r *Registry) Register(t Template) error {
	name := strings.TrimSpace(t.Name)
	if name == "" {
		return errors.New("template name is required")
	}
	if len(t.Elements) == 0 {
		return fmt.Errorf("template %q has no elements", name)
	}
	t.Name = name
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byKey[name]; !ok {
		r.order = append(r.order, name)
	}
	r.byKey[name] = t
	return nil
}

// Lookup finds a template by exact name, falling back to a case-insensitive match.
func (r *Registry) Lookup(name string) (Template, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if t, ok := r.byKey[name]; ok {
		return t, nil
	}
	for _, n := range r.order {
		if strings.EqualFold(n, strings.TrimSpace(name)) {
			return r.byKey[n], nil
		}
	}
	return Template{}, fmt.Errorf("%w: %q", domain.ErrUnknownTemplate, name)
}

// Names lists template names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// LoadDir registers every *.yaml and *.yml template in dir. A missing
// directory is not an error. Files that fail to parse are skipped and
// reported together; the rest are still registered.
func (r *Registry) LoadDir(dir string) (int, error) {
	if strings.TrimSpace(dir) == "" {
		return 0, nil
	}
	l := applog.WithOperation(applog.WithComponent("templates"), "loadDir").With(slog.String("dir", dir))
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("read templates dir: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	var errs []error
	loaded := 0
	for _, e := range entries {
		if e.IsDir() || !isTemplateFile(e.Name()) {
			continue
		}
		path := filepath.Join(dir, e.Name())
		t, err := ParseFile(path)
		if err == nil {
			err = r.Register(t)
		}
		if err != nil {
			l.Warn("skip template", slog.String("file", e.Name()), slog.Any("err", err))
			errs = append(errs, fmt.Errorf("%s: %w", e.Name(), err))
			continue
		}
		loaded++
	}
	l.Debug("templates loaded", slog.Int("count", loaded))
	return loaded, errors.Join(errs...)
}

// ParseFile reads and parses a single template file.
func ParseFile(path string) (Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Template{}, fmt.Errorf("read template: %w", err)
	}
	return Parse(data)
}

func isTemplateFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}
