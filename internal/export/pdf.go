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
	"image/color"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"pagebuilder/internal/domain"
	"pagebuilder/internal/storage"
	"pagebuilder/internal/textlayout"
)

// PDFOptions controls PDF export. One canvas pixel maps to one point.
type PDFOptions struct {
	// Grid draws the snapping grid as hairlines.
	Grid bool
	// LinkImages makes image placeholders clickable links to their source.
	LinkImages bool
}

// WritePDF renders p as a single-page PDF using the built-in core fonts.
func WritePDF(w io.Writer, p domain.Page, opt PDFOptions) error {
	pw, ph := pageSize(p)
	size := gofpdf.SizeType{Wd: float64(pw), Ht: float64(ph)}
	pdf := gofpdf.NewCustom(&gofpdf.InitType{UnitStr: "pt", Size: size})
	title := p.Name
	if title == "" {
		title = "Untitled page"
	}
	pdf.SetTitle(title, true)
	pdf.SetAuthor("Page Builder", false)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(0, 0, 0)
	pdf.AddPageFormat("", size)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	if opt.Grid {
		grid := p.GridSize
		if grid <= 0 {
			grid = domain.GridSize
		}
		setDrawColor(pdf, gridColor)
		pdf.SetLineWidth(0.2)
		for x := 0; x < pw; x += grid {
			pdf.Line(float64(x), 0, float64(x), float64(ph))
		}
		for y := 0; y < ph; y += grid {
			pdf.Line(0, float64(y), float64(pw), float64(y))
		}
	}

	walk(tree(p), func(n *node, _ int) {
		el := n.el
		x, y := float64(el.X), float64(el.Y)
		switch el.Type {
		case domain.TypeText, domain.TypeHeading:
			spec := textlayout.TextSpec(el)
			c := black
			if el.Text != nil {
				c = colorOr(el.Text.Color, black)
			}
			pdf.SetTextColor(int(c.R), int(c.G), int(c.B))
			pdf.SetFont(pdfFamily(spec.Family), pdfStyle(spec.Weight), spec.Size)
			baseline := y + spec.Size*0.8
			for _, line := range strings.Split(el.Content, "\n") {
				pdf.Text(x, baseline, tr(line))
				baseline += spec.Size * 1.2
			}
		case domain.TypeImage:
			ew, eh := el.Size()
			setFillColor(pdf, imageFill)
			setDrawColor(pdf, imageLine)
			pdf.SetLineWidth(1)
			pdf.Rect(x, y, float64(ew), float64(eh), "FD")
			pdf.Line(x, y, x+float64(ew), y+float64(eh))
			pdf.Line(x, y+float64(eh), x+float64(ew), y)
			if u, err := url.Parse(el.Content); err == nil && u.Host != "" {
				pdf.SetTextColor(0, 0, 0)
				pdf.SetFont("Helvetica", "", 9)
				pdf.Text(x+4, y+12, tr(u.Host))
				if opt.LinkImages {
					pdf.LinkString(x, y, float64(ew), float64(eh), el.Content)
				}
			}
		case domain.TypeButton:
			bw, bh := textlayout.RenderedSize(textlayout.BasicProvider{}, el)
			bg, fg, outline := buttonColors(el)
			pdf.SetLineWidth(1)
			if outline {
				setDrawColor(pdf, fg)
				pdf.Rect(x, y, float64(bw), float64(bh), "D")
			} else {
				setFillColor(pdf, bg)
				pdf.Rect(x, y, float64(bw), float64(bh), "F")
			}
			pdf.SetTextColor(int(fg.R), int(fg.G), int(fg.B))
			pdf.SetFont("Helvetica", pdfStyle(textlayout.ButtonFontWeight), textlayout.ButtonFontSize)
			pdf.Text(x+textlayout.ButtonPaddingX, y+float64(bh)/2+textlayout.ButtonFontSize*0.35, tr(el.Content))
		case domain.TypeContainer:
			c := el.Container
			if c == nil {
				return
			}
			style := ""
			if bg, ok := parseColor(c.BackgroundColor); ok {
				setFillColor(pdf, bg)
				style += "F"
			}
			if bw, bc, ok := borderOf(c.Border); ok {
				setDrawColor(pdf, bc)
				pdf.SetLineWidth(float64(bw))
				style += "D"
			}
			if style != "" {
				pdf.Rect(x, y, float64(c.Width), float64(c.Height), style)
			}
		}
	})
	if err := pdf.Error(); err != nil {
		return fmt.Errorf("build pdf: %w", err)
	}
	return pdf.Output(w)
}

// ExportPDF writes p to outPath, relative paths landing in the page's exports folder.
func ExportPDF(h *storage.DocumentHandle, p domain.Page, outPath string, opt PDFOptions) (string, error) {
	out, err := resolveOut(h, outPath)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := WritePDF(&buf, p, opt); err != nil {
		return "", err
	}
	if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("write pdf: %w", err)
	}
	return out, nil
}

// pdfFamily maps a CSS family onto one of the core PDF fonts.
func pdfFamily(family string) string {
	f := strings.ToLower(family)
	switch {
	case strings.Contains(f, "courier"), strings.Contains(f, "mono"):
		return "Courier"
	case strings.Contains(f, "times"), strings.Contains(f, "georgia"), f == "serif":
		return "Times"
	}
	return "Helvetica"
}

func pdfStyle(weight int) string {
	if weight >= 600 {
		return "B"
	}
	return ""
}

func setDrawColor(pdf *gofpdf.Fpdf, c color.RGBA) {
	pdf.SetDrawColor(int(c.R), int(c.G), int(c.B))
}

func setFillColor(pdf *gofpdf.Fpdf, c color.RGBA) {
	pdf.SetFillColor(int(c.R), int(c.G), int(c.B))
}
