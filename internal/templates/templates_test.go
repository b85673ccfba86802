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
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"pagebuilder/internal/domain"
)

func TestBuiltinsShape(t *testing.T) {
	want := map[string]int{"Landing Page": 3, "Blog Post": 4, "E-commerce Product Page": 5}
	got := map[string]int{}
	for _, tpl := range Builtins() {
		got[tpl.Name] = len(tpl.Elements)
		for _, el := range tpl.Elements {
			if !el.Type.Valid() {
				t.Errorf("%s: invalid type %q", tpl.Name, el.Type)
			}
		}
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("builtins (-want +got):\n%s", diff)
	}
}

func TestInstantiateReturnsCopies(t *testing.T) {
	tpl := Builtins()[0]
	els := tpl.Instantiate()
	els[0].Text.Color = "#000000"
	els[0].Content = "changed"
	if tpl.Elements[0].Text.Color == "#000000" || tpl.Elements[0].Content == "changed" {
		t.Fatalf("Instantiate shares state with the template")
	}
}

func TestEncodeParseRoundTripBuiltins(t *testing.T) {
	for _, tpl := range Builtins() {
		data, err := Encode(tpl)
		if err != nil {
			t.Fatalf("Encode(%s): %v", tpl.Name, err)
		}
		got, err := Parse(data)
		if err != nil {
			t.Fatalf("Parse(%s): %v\n%s", tpl.Name, err, data)
		}
		if diff := cmp.Diff(tpl, got); diff != "" {
			t.Errorf("%s round trip (-want +got):\n%s", tpl.Name, diff)
		}
	}
}

const heroYAML = `
name: Hero
description: Boxed headline
elements:
  - id: box
    type: container
    x: 20
    y: 20
    width: 400
    height: 200
    backgroundColor: "#f5f5f5"
    border: "1px solid #ccc"
    align: center
    children: [title]
  - id: title
    type: heading
    content: Hello
    x: 40
    y: 40
    color: "#111"
    fontSize: 28
    fontWeight: 700
`

func TestParseContainerWithChildren(t *testing.T) {
	tpl, err := Parse([]byte(heroYAML))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if tpl.Name != "Hero" || len(tpl.Elements) != 2 {
		t.Fatalf("unexpected template %+v", tpl)
	}
	box := tpl.Elements[0]
	want := &domain.ContainerStyle{Width: 400, Height: 200, BackgroundColor: "#f5f5f5", Border: "1px solid #ccc",
		Align: "center", Children: []string{"title"}}
	if diff := cmp.Diff(want, box.Container); diff != "" {
		t.Fatalf("container (-want +got):\n%s", diff)
	}
	title := tpl.Elements[1]
	if title.Text == nil || title.Text.FontSize != 28 || title.Text.FontWeight != 700 || title.Text.FontFamily != "" {
		t.Fatalf("heading style %+v", title.Text)
	}
}

func TestParseRejectsSchemaViolations(t *testing.T) {
	cases := map[string]string{
		"missing name":  "elements:\n  - type: text\n",
		"no elements":   "name: X\nelements: []\n",
		"bad type":      "name: X\nelements:\n  - type: video\n",
		"bad color":     "name: X\nelements:\n  - type: text\n    color: red\n",
		"bad weight":    "name: X\nelements:\n  - type: text\n    fontWeight: 450\n",
		"unknown field": "name: X\nelements:\n  - type: text\n    blink: true\n",
		"negative size": "name: X\nelements:\n  - type: image\n    width: -5\n",
		"cut border":    "name: X\nelements:\n  - type: container\n    border: 1px solid #ccc\n",
		"bad border":    "name: X\nelements:\n  - type: container\n    border: thick\n",
	}
	for name, doc := range cases {
		_, err := Parse([]byte(doc))
		var ve *ValidationError
		if !errors.As(err, &ve) || len(ve.Issues) == 0 {
			t.Errorf("%s: expected ValidationError, got %v", name, err)
		}
	}
}

func TestParseElementAttributes(t *testing.T) {
	_, err := Parse([]byte("name: X\nelements:\n  - type: image\n    fontSize: 12\n"))
	if err != nil {
		t.Fatalf("attributes of other types are ignored, got %v", err)
	}
	_, err = Parse([]byte("name: X\nelements:\n  - type: text\n    children: [a]\n"))
	if !errors.Is(err, domain.ErrNotContainer) {
		t.Fatalf("children on text: expected ErrNotContainer, got %v", err)
	}
	_, err = Parse([]byte("name: X\nelements: [\n"))
	if err == nil || !strings.Contains(err.Error(), "decode template") {
		t.Fatalf("expected decode error, got %v", err)
	}
}

func TestEncodeRequiresName(t *testing.T) {
	if _, err := Encode(Template{}); err == nil {
		t.Fatalf("expected error for unnamed template")
	}
}

func TestRegistryLookup(t *testing.T) {
	r := NewRegistry()
	if diff := cmp.Diff([]string{"Landing Page", "Blog Post", "E-commerce Product Page"}, r.Names()); diff != "" {
		t.Fatalf("names (-want +got):\n%s", diff)
	}
	if tpl, err := r.Lookup("blog post"); err != nil || tpl.Name != "Blog Post" {
		t.Fatalf("case-insensitive lookup: %v %q", err, tpl.Name)
	}
	if _, err := r.Lookup("Portfolio"); !errors.Is(err, domain.ErrUnknownTemplate) {
		t.Fatalf("expected ErrUnknownTemplate, got %v", err)
	}
	if err := r.Register(Template{Name: "  "}); err == nil {
		t.Fatalf("expected error for blank name")
	}
	if err := r.Register(Template{Name: "Empty"}); err == nil {
		t.Fatalf("expected error for empty template")
	}
	replaced := Builtins()[0]
	replaced.Description = "mine"
	if err := r.Register(replaced); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if len(r.Names()) != 3 {
		t.Fatalf("re-registering must not duplicate names: %v", r.Names())
	}
	if tpl, _ := r.Lookup("Landing Page"); tpl.Description != "mine" {
		t.Fatalf("expected replacement, got %q", tpl.Description)
	}
}

func TestRegistryLoadDir(t *testing.T) {
	dir := t.TempDir()
	mustWrite(t, filepath.Join(dir, "hero.yaml"), heroYAML)
	mustWrite(t, filepath.Join(dir, "broken.yml"), "name: Broken\nelements: []\n")
	mustWrite(t, filepath.Join(dir, "notes.txt"), "ignored")

	r := NewRegistry()
	n, err := r.LoadDir(dir)
	if n != 1 {
		t.Fatalf("loaded %d, want 1", n)
	}
	if err == nil || !strings.Contains(err.Error(), "broken.yml") {
		t.Fatalf("expected error naming broken.yml, got %v", err)
	}
	if _, err := r.Lookup("Hero"); err != nil {
		t.Fatalf("Hero not registered: %v", err)
	}

	if n, err := r.LoadDir(filepath.Join(dir, "missing")); n != 0 || err != nil {
		t.Fatalf("missing dir: %d %v", n, err)
	}
}

func mustWrite(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
