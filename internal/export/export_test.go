/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"pagebuilder/internal/domain"
	"pagebuilder/internal/storage"
	"pagebuilder/internal/textlayout"
)

func samplePage() domain.Page {
	p := domain.NewPage("Landing", 200, 120)
	p.Elements = []domain.Element{
		{ID: "box", Type: domain.TypeContainer, X: 0, Y: 0, Container: &domain.ContainerStyle{
			Width: 100, Height: 60, BackgroundColor: "#ff0000", Border: "2px solid #0000ff", Children: []string{"title"},
		}},
		{ID: "title", Type: domain.TypeHeading, Content: "a < b", X: 20, Y: 30, Text: &domain.TextStyle{Color: "#333", FontSize: 12}},
		{ID: "cta", Type: domain.TypeButton, Content: "Go", X: 120, Y: 20, Button: &domain.ButtonStyle{Variant: "outline"}},
		{ID: "pic", Type: domain.TypeImage, Content: "https://placehold.co/40x40", X: 140, Y: 70, Image: &domain.ImageStyle{Width: 40, Height: 40}},
	}
	return p
}

func ids(ns []*node) []string {
	var out []string
	for _, n := range ns {
		out = append(out, n.el.ID)
	}
	return out
}

func TestTreeNestsChildren(t *testing.T) {
	roots := tree(samplePage())
	if diff := cmp.Diff([]string{"box", "cta", "pic"}, ids(roots)); diff != "" {
		t.Fatalf("roots (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"title"}, ids(roots[0].children)); diff != "" {
		t.Fatalf("children (-want +got):\n%s", diff)
	}
	if roots[0].children[0].parent == nil || roots[0].children[0].parent.ID != "box" {
		t.Fatalf("child parent not set")
	}
}

func TestTreeBreaksCyclesAndDuplicates(t *testing.T) {
	p := domain.NewPage("cyc", 100, 100)
	p.Elements = []domain.Element{
		{ID: "a", Type: domain.TypeContainer, Container: &domain.ContainerStyle{Children: []string{"b", "ghost"}}},
		{ID: "b", Type: domain.TypeContainer, Container: &domain.ContainerStyle{Children: []string{"a"}}},
		{ID: "c", Type: domain.TypeContainer, Container: &domain.ContainerStyle{Children: []string{"t", "c"}}},
		{ID: "d", Type: domain.TypeContainer, Container: &domain.ContainerStyle{Children: []string{"t"}}},
		{ID: "t", Type: domain.TypeText, Content: "x"},
	}
	roots := tree(p)
	var seen []string
	walk(roots, func(n *node, _ int) { seen = append(seen, n.el.ID) })
	if len(seen) != len(p.Elements) {
		t.Fatalf("every element must be visited once, got %v", seen)
	}
	for _, r := range roots {
		if r.el.ID == "c" {
			if diff := cmp.Diff([]string{"t"}, ids(r.children)); diff != "" {
				t.Fatalf("first claim wins (-want +got):\n%s", diff)
			}
		}
		if r.el.ID == "d" && len(r.children) != 0 {
			t.Fatalf("d should not own t")
		}
	}
}

func TestParseColorAndBorder(t *testing.T) {
	c, ok := parseColor("#0f8")
	if !ok || c != (color.RGBA{0x00, 0xff, 0x88, 0xff}) {
		t.Fatalf("short hex: %v %v", c, ok)
	}
	if _, ok := parseColor("red"); ok {
		t.Fatalf("named colors are not parsed")
	}
	w, bc, ok := borderOf("3px dashed #102030")
	if !ok || w != 3 || bc != (color.RGBA{0x10, 0x20, 0x30, 0xff}) {
		t.Fatalf("border: %d %v %v", w, bc, ok)
	}
	if _, _, ok := borderOf("none"); ok {
		t.Fatalf("none must not draw")
	}
}

func TestPageSizeFallsBackToContent(t *testing.T) {
	p := samplePage()
	p.Width, p.Height = 0, 0
	w, h := pageSize(p)
	if w != 320 || h != 110 {
		t.Fatalf("got %dx%d", w, h)
	}
}

func TestWriteHTMLSanitizesAndNests(t *testing.T) {
	p := samplePage()
	p.Elements[1].Content = `<script>alert(1)</script><b>bold</b> a < b`
	var buf bytes.Buffer
	if err := WriteHTML(&buf, p, HTMLOptions{}); err != nil {
		t.Fatalf("write: %v", err)
	}
	out := buf.String()
	if strings.Contains(out, "<script") || strings.Contains(out, "<b>") {
		t.Fatalf("markup leaked:\n%s", out)
	}
	if !strings.HasPrefix(out, "<!DOCTYPE html>") {
		t.Fatalf("expected full document")
	}
	if !strings.Contains(out, `id="title" class="pb-heading" style="position:absolute;left:20px;top:30px`) {
		t.Fatalf("child should be positioned relative to its container:\n%s", out)
	}
	if strings.Index(out, `id="title"`) > strings.Index(out, "</div>") {
		t.Fatalf("child should render inside the container div")
	}

	buf.Reset()
	if err := WriteHTML(&buf, p, HTMLOptions{InlineMarkup: true, Fragment: true}); err != nil {
		t.Fatalf("write fragment: %v", err)
	}
	out = buf.String()
	if !strings.Contains(out, "<b>bold</b>") || strings.Contains(out, "<script") {
		t.Fatalf("inline markup policy:\n%s", out)
	}
	if strings.Contains(out, "<html") {
		t.Fatalf("fragment should omit the document wrapper")
	}
}

func TestWritePNGDrawsContainers(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePNG(&buf, samplePage(), PNGOptions{Fonts: textlayout.BasicProvider{}}); err != nil {
		t.Fatalf("write: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 200 || b.Dy() != 120 {
		t.Fatalf("bounds %v", b)
	}
	check := func(x, y int, want color.RGBA) {
		t.Helper()
		r, g, b, a := img.At(x, y).RGBA()
		got := color.RGBA{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8), uint8(a >> 8)}
		if got != want {
			t.Fatalf("pixel %d,%d = %v, want %v", x, y, got, want)
		}
	}
	check(10, 10, color.RGBA{255, 0, 0, 255})
	check(0, 0, color.RGBA{0, 0, 255, 255})
	check(1, 1, color.RGBA{0, 0, 255, 255})
	check(110, 110, white)
}

func TestWritePNGScales(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePNG(&buf, samplePage(), PNGOptions{Scale: 2, Grid: true, Fonts: textlayout.BasicProvider{}}); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := png.DecodeConfig(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if cfg.Width != 400 || cfg.Height != 240 {
		t.Fatalf("scaled size %dx%d", cfg.Width, cfg.Height)
	}
}

func TestWritePDF(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePDF(&buf, samplePage(), PDFOptions{Grid: true, LinkImages: true}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Fatalf("not a pdf: %q", buf.Bytes()[:min(16, buf.Len())])
	}
}

func TestWriteSVG(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSVG(&buf, samplePage(), SVGOptions{Fonts: textlayout.BasicProvider{}}); err != nil {
		t.Fatalf("write: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		`viewBox="0 0 200 120"`,
		`fill="#ff0000" stroke="#0000ff" stroke-width="2"`,
		`a &lt; b`,
		`href="https://placehold.co/40x40"`,
		`fill="none" stroke="#007bff"`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
}

func TestExportRelativePathLandsInExports(t *testing.T) {
	root := t.TempDir()
	h, err := storage.InitDocument(root, samplePage())
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	out, err := ExportSVG(h, h.Page, "nested/page.svg", SVGOptions{})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if want := filepath.Join(root, "exports", "nested", "page.svg"); out != want {
		t.Fatalf("out = %s, want %s", out, want)
	}
	if _, err := ExportHTML(h, h.Page, " ", HTMLOptions{}); err == nil {
		t.Fatalf("expected error for blank path")
	}
}

func TestBatchPresets(t *testing.T) {
	root := t.TempDir()
	h, err := storage.InitDocument(root, samplePage())
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	cases := []struct {
		preset PresetName
		files  []string
	}{
		{PresetWeb, []string{"page.html", "page.png", "page.svg"}},
		{PresetPrint, []string{"page.pdf", "page.png"}},
	}
	for _, tc := range cases {
		written, err := Batch(h, h.Page, BatchOptions{Preset: tc.preset})
		if err != nil {
			t.Fatalf("%s: %v", tc.preset, err)
		}
		var want []string
		for _, f := range tc.files {
			want = append(want, filepath.Join(root, "exports", string(tc.preset), f))
		}
		if diff := cmp.Diff(want, written); diff != "" {
			t.Fatalf("%s written (-want +got):\n%s", tc.preset, diff)
		}
		for _, p := range written {
			st, err := os.Stat(p)
			if err != nil || st.Size() == 0 {
				t.Fatalf("missing or empty %s: %v", p, err)
			}
		}
	}
	if _, err := Batch(h, h.Page, BatchOptions{Formats: []string{"cbz"}}); err == nil {
		t.Fatalf("expected unknown format error")
	}
}
