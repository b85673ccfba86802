/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"pagebuilder/internal/config"
	"pagebuilder/internal/domain"
	"pagebuilder/internal/formschema"
	"pagebuilder/internal/storage"
)

func runOK(t *testing.T, args ...string) string {
	t.Helper()
	var buf bytes.Buffer
	if err := run(config.Defaults(), args, &buf); err != nil {
		t.Fatalf("%v: %v", args, err)
	}
	return buf.String()
}

func TestEditSessionWithUndo(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "landing")
	if out := runOK(t, "init", dir, "Landing"); !strings.Contains(out, "Created page at") {
		t.Fatalf("init output: %q", out)
	}
	id := strings.TrimSpace(runOK(t, "add", dir, "button"))
	if id == "" {
		t.Fatalf("add printed no id")
	}
	runOK(t, "set", dir, id, "content", "Buy now")

	h, err := storage.Open(dir)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	before := *h.Page.Find(id)
	if before.Content != "Buy now" {
		t.Fatalf("content not saved: %q", before.Content)
	}

	if out := runOK(t, "drag", dir, id, "107", "183", "100", "100"); !strings.Contains(out, "to 60,140") {
		t.Fatalf("drag output: %q", out)
	}
	hist := runOK(t, "history", dir)
	for _, want := range []string{"move", "edit content", "add button"} {
		if !strings.Contains(hist, want) {
			t.Fatalf("history missing %q:\n%s", want, hist)
		}
	}
	if strings.Index(hist, "move") > strings.Index(hist, "add button") {
		t.Fatalf("history should list newest first:\n%s", hist)
	}

	if out := runOK(t, "undo", dir); !strings.Contains(out, "Undid move") {
		t.Fatalf("undo output: %q", out)
	}
	h, err = storage.Open(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	after := h.Page.Find(id)
	if after.X != before.X || after.Y != before.Y {
		t.Fatalf("undo left element at %d,%d, want %d,%d", after.X, after.Y, before.X, before.Y)
	}
}

func TestSchemaAndExport(t *testing.T) {
	dir := t.TempDir()
	runOK(t, "init", dir)
	id := strings.TrimSpace(runOK(t, "add", dir, "heading"))

	var s formschema.Schema
	if err := json.Unmarshal([]byte(runOK(t, "schema", dir, id)), &s); err != nil {
		t.Fatalf("schema json: %v", err)
	}
	if s.ElementID != id || s.ElementType != "heading" || len(s.Fields) == 0 {
		t.Fatalf("unexpected schema: %+v", s)
	}

	runOK(t, "export", dir, "html", "page.html")
	if _, err := os.Stat(filepath.Join(dir, "exports", "page.html")); err != nil {
		t.Fatalf("export missing: %v", err)
	}
}

func TestTemplateAppendsElements(t *testing.T) {
	dir := t.TempDir()
	runOK(t, "init", dir)
	if out := runOK(t, "templates"); !strings.Contains(out, "Landing Page") {
		t.Fatalf("templates: %q", out)
	}
	runOK(t, "template", dir, "landing page")
	h, err := storage.Open(dir)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if len(h.Page.Elements) == 0 {
		t.Fatalf("template added nothing")
	}
}

func TestRejectedInput(t *testing.T) {
	dir := t.TempDir()
	runOK(t, "init", dir)
	id := strings.TrimSpace(runOK(t, "add", dir, "text"))

	var buf bytes.Buffer
	if err := run(config.Defaults(), []string{"set", dir, id, "buttonType", "outline"}, &buf); err == nil {
		t.Fatalf("expected error for a key that does not apply to text")
	}
	if err := run(config.Defaults(), []string{"add", dir, "video"}, &buf); err == nil {
		t.Fatalf("expected error for unknown type")
	}
	var ue usageError
	if err := run(config.Defaults(), []string{"frobnicate"}, &buf); !errors.As(err, &ue) {
		t.Fatalf("unknown command should be a usage error, got %v", err)
	}
	if err := run(config.Defaults(), []string{"set", dir}, &buf); !errors.As(err, &ue) {
		t.Fatalf("missing args should be a usage error, got %v", err)
	}
	if out := runOK(t, "undo", dir); !strings.Contains(out, "Undid add text") {
		t.Fatalf("rejected edits must not record revisions: %q", out)
	}
}

func TestShowTruncatesByRune(t *testing.T) {
	p := domain.NewPage("Umlauts", 100, 100)
	p.Elements = []domain.Element{{ID: "t1", Type: domain.TypeText, Content: strings.Repeat("ü", 50)}}
	var buf bytes.Buffer
	if err := show(p, &buf); err != nil {
		t.Fatalf("show: %v", err)
	}
	out := buf.String()
	if !utf8.ValidString(out) {
		t.Fatalf("output is not valid UTF-8: %q", out)
	}
	if !strings.Contains(out, strings.Repeat("ü", 37)+"...") || strings.Contains(out, strings.Repeat("ü", 38)) {
		t.Fatalf("unexpected truncation: %q", out)
	}
}

func TestDuplicateCommand(t *testing.T) {
	dir := t.TempDir()
	runOK(t, "init", dir)
	id := strings.TrimSpace(runOK(t, "add", dir, "image"))
	dup := strings.TrimSpace(runOK(t, "dup", dir, id))
	if dup == "" || dup == id {
		t.Fatalf("dup printed %q", dup)
	}
	h, err := storage.Open(dir)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if len(h.Page.Elements) != 2 || h.Page.Find(dup).Type != domain.TypeImage {
		t.Fatalf("unexpected page: %+v", h.Page.Elements)
	}
	if out := runOK(t, "undo", dir); !strings.Contains(out, "Undid duplicate") {
		t.Fatalf("undo output: %q", out)
	}
	var buf bytes.Buffer
	if err := run(config.Defaults(), []string{"dup", dir, "missing"}, &buf); err == nil {
		t.Fatalf("expected error for a missing element")
	}
}
