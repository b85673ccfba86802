/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package export renders a page to HTML, PNG, PDF and SVG without a browser.
// Exporters share one traversal: top-level elements in stacking order, each
// container immediately followed by its children.
package export

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"pagebuilder/internal/domain"
	"pagebuilder/internal/storage"
)

// node is an element with its children resolved.
type node struct {
	el       domain.Element
	parent   *domain.Element
	children []*node
}

// tree resolves container children. Unknown child ids are skipped, an
// element claimed by several containers stays with the first, and an
// element inside a cycle falls back to the top level.
func tree(p domain.Page) []*node {
	byID := make(map[string]*node, len(p.Elements))
	for _, el := range p.Elements {
		byID[el.ID] = &node{el: el}
	}
	claimed := map[string]bool{}
	for _, el := range p.Elements {
		if el.Container == nil {
			continue
		}
		parent := byID[el.ID]
		for _, ref := range el.Container.Children {
			child, ok := byID[ref]
			if !ok || claimed[ref] || ref == el.ID {
				continue
			}
			claimed[ref] = true
			child.parent = &parent.el
			parent.children = append(parent.children, child)
		}
	}
	var roots []*node
	seen := map[string]bool{}
	var mark func(n *node)
	mark = func(n *node) {
		if seen[n.el.ID] {
			return
		}
		seen[n.el.ID] = true
		for _, c := range n.children {
			mark(c)
		}
	}
	for _, el := range p.Elements {
		if n := byID[el.ID]; !claimed[el.ID] {
			roots = append(roots, n)
			mark(n)
		}
	}
	// Elements only reachable through a cycle.
	for _, el := range p.Elements {
		if n := byID[el.ID]; !seen[el.ID] {
			n.parent = nil
			n.children = nil
			roots = append(roots, n)
			seen[el.ID] = true
		}
	}
	return roots
}

// walk visits nodes depth-first in drawing order.
func walk(roots []*node, fn func(n *node, depth int)) {
	var visit func(ns []*node, depth int)
	visit = func(ns []*node, depth int) {
		for _, n := range ns {
			fn(n, depth)
			visit(n.children, depth+1)
		}
	}
	visit(roots, 0)
}

// parseColor reads #rgb and #rrggbb. ok is false for anything else.
func parseColor(s string) (c color.RGBA, ok bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return color.RGBA{}, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.RGBA{}, false
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, true
}

func colorOr(s string, fallback color.RGBA) color.RGBA {
	if c, ok := parseColor(s); ok {
		return c
	}
	return fallback
}

// buttonColors returns the fill and label colors of a button. Outline
// buttons have no fill and draw their frame and label in the accent color.
func buttonColors(el domain.Element) (bg, fg color.RGBA, outline bool) {
	bg, fg = color.RGBA{0x00, 0x7b, 0xff, 0xff}, white
	if b := el.Button; b != nil {
		bg = colorOr(b.BackgroundColor, bg)
		fg = colorOr(b.Color, fg)
		if b.Variant == "outline" {
			return bg, bg, true
		}
	}
	return bg, fg, false
}

// borderOf extracts width and color from a CSS border shorthand such as
// "1px solid #ccc". Styles other than none are drawn solid.
func borderOf(s string) (width int, c color.RGBA, ok bool) {
	c = color.RGBA{A: 255}
	for _, part := range strings.Fields(s) {
		switch {
		case part == "none":
			return 0, c, false
		case strings.HasSuffix(part, "px"):
			if n, err := strconv.Atoi(strings.TrimSuffix(part, "px")); err == nil {
				width = n
			}
		case strings.HasPrefix(part, "#"):
			if pc, pok := parseColor(part); pok {
				c = pc
			}
		}
	}
	return width, c, width > 0
}

// pageSize falls back to the bounding box of the elements when the page has no size.
func pageSize(p domain.Page) (w, h int) {
	w, h = p.Width, p.Height
	if w > 0 && h > 0 {
		return w, h
	}
	for _, el := range p.Elements {
		ew, eh := el.Size()
		if ew == 0 {
			ew = 200
		}
		if eh == 0 {
			eh = 40
		}
		w = max(w, el.X+ew)
		h = max(h, el.Y+eh)
	}
	return max(w, 1), max(h, 1)
}

// resolveOut places relative paths under the page's exports folder and ensures the directory exists.
func resolveOut(h *storage.DocumentHandle, outPath string) (string, error) {
	if strings.TrimSpace(outPath) == "" {
		return "", fmt.Errorf("output path is required")
	}
	if !filepath.IsAbs(outPath) && h != nil {
		outPath = filepath.Join(h.ExportsDir(), outPath)
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return "", fmt.Errorf("ensure out dir: %w", err)
	}
	return outPath, nil
}
