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
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"
	"net/url"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"pagebuilder/internal/domain"
	"pagebuilder/internal/storage"
	"pagebuilder/internal/textlayout"
)

// PNGOptions controls raster export.
type PNGOptions struct {
	// Scale multiplies every coordinate; 0 means 1.
	Scale float64
	// Grid draws the snapping grid behind the elements.
	Grid bool
	// Fonts resolves text faces; nil uses the Go fonts.
	Fonts textlayout.Provider
}

var (
	white     = color.RGBA{255, 255, 255, 255}
	black     = color.RGBA{0, 0, 0, 255}
	gridColor = color.RGBA{235, 235, 235, 255}
	imageFill = color.RGBA{224, 224, 224, 255}
	imageLine = color.RGBA{170, 170, 170, 255}
)

// WritePNG rasterizes p. Images are drawn as labelled placeholders; nothing is fetched.
func WritePNG(w io.Writer, p domain.Page, opt PNGOptions) error {
	scale := opt.Scale
	if scale <= 0 {
		scale = 1
	}
	fonts := opt.Fonts
	if fonts == nil {
		fonts = textlayout.NewGoFontLibrary()
	}
	pw, ph := pageSize(p)
	px := func(v int) int { return int(math.Round(float64(v) * scale)) }
	img := image.NewRGBA(image.Rect(0, 0, px(pw), px(ph)))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: white}, image.Point{}, draw.Src)

	if opt.Grid {
		grid := p.GridSize
		if grid <= 0 {
			grid = domain.GridSize
		}
		for x := 0; x < pw; x += grid {
			fillRect(img, px(x), 0, px(x), px(ph)-1, gridColor)
		}
		for y := 0; y < ph; y += grid {
			fillRect(img, 0, px(y), px(pw)-1, px(y), gridColor)
		}
	}

	walk(tree(p), func(n *node, _ int) {
		el := n.el
		x, y := px(el.X), px(el.Y)
		switch el.Type {
		case domain.TypeText, domain.TypeHeading:
			spec := textlayout.TextSpec(el)
			spec.Size *= scale
			c := black
			if el.Text != nil {
				c = colorOr(el.Text.Color, black)
			}
			drawText(img, fonts, el.Content, spec, x, y, c)
		case domain.TypeImage:
			ew, eh := el.Size()
			x1, y1 := x+px(ew)-1, y+px(eh)-1
			fillRect(img, x, y, x1, y1, imageFill)
			strokeRect(img, x, y, x1, y1, imageLine)
			drawLine(img, x, y, x1, y1, imageLine)
			drawLine(img, x, y1, x1, y, imageLine)
			if u, err := url.Parse(el.Content); err == nil && u.Host != "" {
				drawText(img, fonts, u.Host, textlayout.FontSpec{Size: 11 * scale}, x+px(4), y+px(4), black)
			}
		case domain.TypeButton:
			bw, bh := textlayout.RenderedSize(fonts, el)
			bg, fg, outline := buttonColors(el)
			x1, y1 := x+px(bw)-1, y+px(bh)-1
			if outline {
				strokeRect(img, x, y, x1, y1, fg)
			} else {
				fillRect(img, x, y, x1, y1, bg)
			}
			spec := textlayout.FontSpec{Size: textlayout.ButtonFontSize * scale, Weight: textlayout.ButtonFontWeight}
			_, met := fonts.Resolve(spec)
			ty := y + (px(bh)-int(met.Ascent+met.Descent))/2
			drawText(img, fonts, el.Content, spec, x+px(textlayout.ButtonPaddingX), ty, fg)
		case domain.TypeContainer:
			c := el.Container
			if c == nil {
				return
			}
			x1, y1 := x+px(c.Width)-1, y+px(c.Height)-1
			if bg, ok := parseColor(c.BackgroundColor); ok {
				fillRect(img, x, y, x1, y1, bg)
			}
			if bw, bc, ok := borderOf(c.Border); ok {
				for i := 0; i < px(bw); i++ {
					strokeRect(img, x+i, y+i, x1-i, y1-i, bc)
				}
			}
		}
	})
	return png.Encode(w, img)
}

// ExportPNG writes p to outPath, relative paths landing in the page's exports folder.
func ExportPNG(h *storage.DocumentHandle, p domain.Page, outPath string, opt PNGOptions) (string, error) {
	out, err := resolveOut(h, outPath)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := WritePNG(&buf, p, opt); err != nil {
		return "", fmt.Errorf("encode png: %w", err)
	}
	if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("write png: %w", err)
	}
	return out, nil
}

// drawText draws text with its top-left corner at x,y, one line per newline.
func drawText(img *image.RGBA, fonts textlayout.Provider, text string, spec textlayout.FontSpec, x, y int, c color.RGBA) {
	face, met := fonts.Resolve(spec)
	d := &font.Drawer{Dst: img, Src: image.NewUniform(c), Face: face}
	box := textlayout.Wrap(fonts, text, spec, 0)
	baseline := float64(y) + met.Ascent
	for _, line := range box.Lines {
		d.Dot = fixed.Point26_6{X: fixed.I(x), Y: fixed.I(int(math.Round(baseline)))}
		d.DrawString(line.Text)
		baseline += met.LineHeight()
	}
}

func strokeRect(img *image.RGBA, x0, y0, x1, y1 int, col color.RGBA) {
	if x1 < x0 || y1 < y0 {
		return
	}
	for x := x0; x <= x1; x++ {
		img.SetRGBA(x, y0, col)
		img.SetRGBA(x, y1, col)
	}
	for y := y0; y <= y1; y++ {
		img.SetRGBA(x0, y, col)
		img.SetRGBA(x1, y, col)
	}
}

func fillRect(img *image.RGBA, x0, y0, x1, y1 int, col color.RGBA) {
	if x1 < x0 {
		x0, x1 = x1, x0
	}
	if y1 < y0 {
		y0, y1 = y1, y0
	}
	draw.Draw(img, image.Rect(x0, y0, x1+1, y1+1), &image.Uniform{C: col}, image.Point{}, draw.Src)
}

// drawLine is Bresenham without anti-aliasing.
func drawLine(img *image.RGBA, x0, y0, x1, y1 int, col color.RGBA) {
	dx, dy := abs(x1-x0), -abs(y1-y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for {
		img.SetRGBA(x0, y0, col)
		if x0 == x1 && y0 == y1 {
			return
		}
		if e2 := 2 * e; e2 >= dy {
			e += dy
			x0 += sx
		} else if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
