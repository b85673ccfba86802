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
	"fmt"
	"html"
	"image/color"
	"io"
	"os"
	"strings"

	"pagebuilder/internal/domain"
	"pagebuilder/internal/storage"
	"pagebuilder/internal/textlayout"
)

// SVGOptions controls SVG export.
type SVGOptions struct {
	Grid bool
	// Fonts measures button labels; nil uses the Go fonts.
	Fonts textlayout.Provider
}

// WriteSVG renders p as a standalone SVG document. Images are referenced, not embedded.
func WriteSVG(w io.Writer, p domain.Page, opt SVGOptions) error {
	fonts := opt.Fonts
	if fonts == nil {
		fonts = textlayout.NewGoFontLibrary()
	}
	pw, ph := pageSize(p)

	var buf bytes.Buffer
	var werr error
	wf := func(format string, args ...any) {
		if werr != nil {
			return
		}
		_, werr = fmt.Fprintf(&buf, format, args...)
	}

	wf("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	wf("<svg xmlns=\"http://www.w3.org/2000/svg\" version=\"1.1\" width=\"%d\" height=\"%d\" viewBox=\"0 0 %d %d\">\n", pw, ph, pw, ph)
	wf("  <rect x=\"0\" y=\"0\" width=\"%d\" height=\"%d\" fill=\"#ffffff\"/>\n", pw, ph)

	if opt.Grid {
		grid := p.GridSize
		if grid <= 0 {
			grid = domain.GridSize
		}
		wf("  <g stroke=\"%s\" stroke-width=\"1\">\n", svgColor(gridColor))
		for x := grid; x < pw; x += grid {
			wf("    <line x1=\"%d\" y1=\"0\" x2=\"%d\" y2=\"%d\"/>\n", x, x, ph)
		}
		for y := grid; y < ph; y += grid {
			wf("    <line x1=\"0\" y1=\"%d\" x2=\"%d\" y2=\"%d\"/>\n", y, pw, y)
		}
		wf("  </g>\n")
	}

	walk(tree(p), func(n *node, depth int) {
		el := n.el
		ind := strings.Repeat("  ", depth+1)
		switch el.Type {
		case domain.TypeText, domain.TypeHeading:
			spec := textlayout.TextSpec(el)
			fill := "#000000"
			if el.Text != nil {
				fill = svgColor(colorOr(el.Text.Color, black))
			}
			wf("%s<text data-id=\"%s\" x=\"%d\" y=\"%g\" font-family=\"%s\" font-size=\"%g\" font-weight=\"%d\" fill=\"%s\">",
				ind, esc(el.ID), el.X, float64(el.Y)+spec.Size*0.8, esc(spec.Family), spec.Size, spec.Weight, fill)
			for i, line := range strings.Split(el.Content, "\n") {
				if i == 0 {
					wf("<tspan x=\"%d\">%s</tspan>", el.X, esc(line))
					continue
				}
				wf("<tspan x=\"%d\" dy=\"%g\">%s</tspan>", el.X, spec.Size*1.2, esc(line))
			}
			wf("</text>\n")
		case domain.TypeImage:
			ew, eh := el.Size()
			wf("%s<image data-id=\"%s\" x=\"%d\" y=\"%d\" width=\"%d\" height=\"%d\" href=\"%s\" preserveAspectRatio=\"xMidYMid slice\"/>\n",
				ind, esc(el.ID), el.X, el.Y, ew, eh, esc(el.Content))
		case domain.TypeButton:
			bw, bh := textlayout.RenderedSize(fonts, el)
			bg, fg, outline := buttonColors(el)
			fill, stroke := svgColor(bg), "none"
			if outline {
				fill, stroke = "none", svgColor(fg)
			}
			wf("%s<g data-id=\"%s\">\n", ind, esc(el.ID))
			wf("%s  <rect x=\"%d\" y=\"%d\" width=\"%d\" height=\"%d\" rx=\"4\" fill=\"%s\" stroke=\"%s\"/>\n", ind, el.X, el.Y, bw, bh, fill, stroke)
			wf("%s  <text x=\"%d\" y=\"%d\" dominant-baseline=\"middle\" font-family=\"sans-serif\" font-size=\"%d\" font-weight=\"%d\" fill=\"%s\">%s</text>\n",
				ind, el.X+textlayout.ButtonPaddingX, el.Y+bh/2, textlayout.ButtonFontSize, textlayout.ButtonFontWeight, svgColor(fg), esc(el.Content))
			wf("%s</g>\n", ind)
		case domain.TypeContainer:
			c := el.Container
			if c == nil {
				return
			}
			fill := "none"
			if bg, ok := parseColor(c.BackgroundColor); ok {
				fill = svgColor(bg)
			}
			stroke, sw := "none", 0
			if bw, bc, ok := borderOf(c.Border); ok {
				stroke, sw = svgColor(bc), bw
			}
			wf("%s<rect data-id=\"%s\" x=\"%d\" y=\"%d\" width=\"%d\" height=\"%d\" rx=\"%d\" fill=\"%s\" stroke=\"%s\" stroke-width=\"%d\"/>\n",
				ind, esc(el.ID), el.X, el.Y, c.Width, c.Height, c.BorderRadius, fill, stroke, sw)
		}
	})
	wf("</svg>\n")
	if werr != nil {
		return fmt.Errorf("build svg: %w", werr)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// ExportSVG writes p to outPath, relative paths landing in the page's exports folder.
func ExportSVG(h *storage.DocumentHandle, p domain.Page, outPath string, opt SVGOptions) (string, error) {
	out, err := resolveOut(h, outPath)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := WriteSVG(&buf, p, opt); err != nil {
		return "", err
	}
	if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("write svg: %w", err)
	}
	return out, nil
}

func svgColor(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func esc(s string) string { return html.EscapeString(s) }
