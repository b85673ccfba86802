/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package textlayout measures and wraps element text so exporters and the
// drag controller can work with rendered sizes instead of guesses.
package textlayout

import (
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

// FontSpec describes a requested font. Size is in pixels.
type FontSpec struct {
	Family string
	Size   float64
	Weight int // 100..900
}

// Metrics are the vertical metrics of a resolved face, in pixels.
type Metrics struct {
	Ascent, Descent, LineGap float64
}

// LineHeight is the distance between consecutive baselines.
func (m Metrics) LineHeight() float64 { return m.Ascent + m.Descent + m.LineGap }

// Provider maps a FontSpec to a concrete face.
type Provider interface {
	Resolve(FontSpec) (font.Face, Metrics)
}

// BasicProvider always answers with basicfont.Face7x13. Output is
// deterministic and independent of the requested size.
type BasicProvider struct{}

func (BasicProvider) Resolve(FontSpec) (font.Face, Metrics) {
	f := basicfont.Face7x13
	return f, metricsOf(f)
}

func metricsOf(f font.Face) Metrics {
	m := f.Metrics()
	return Metrics{
		Ascent:  float64(m.Ascent.Round()),
		Descent: float64(m.Descent.Round()),
		LineGap: float64(m.Height.Round() - m.Ascent.Round() - m.Descent.Round()),
	}
}

// Line is one laid out line.
type Line struct {
	Text  string
	Width float64
}

// Box is text broken into lines no wider than the requested width, except
// for single words that do not fit on any line.
type Box struct {
	Lines   []Line
	Width   float64
	Height  float64
	Metrics Metrics
}

// Wrap breaks text on spaces and newlines. maxWidth <= 0 disables wrapping.
func Wrap(p Provider, text string, spec FontSpec, maxWidth float64) Box {
	if p == nil {
		p = BasicProvider{}
	}
	face, met := p.Resolve(spec)
	d := &font.Drawer{Face: face}
	space := advance(d, " ")
	box := Box{Metrics: met}

	emit := func(words []string, width float64) {
		box.Lines = append(box.Lines, Line{Text: strings.Join(words, " "), Width: width})
		if width > box.Width {
			box.Width = width
		}
	}
	for _, para := range strings.Split(text, "\n") {
		var cur []string
		width := 0.0
		for _, w := range strings.Fields(para) {
			ww := advance(d, w)
			if len(cur) > 0 && maxWidth > 0 && width+space+ww > maxWidth {
				emit(cur, width)
				cur, width = nil, 0
			}
			if len(cur) > 0 {
				width += space
			}
			cur = append(cur, w)
			width += ww
		}
		emit(cur, width)
	}
	box.Height = float64(len(box.Lines)) * met.LineHeight()
	return box
}

// Measure returns the size of text on a single line.
func Measure(p Provider, text string, spec FontSpec) (w, h float64) {
	if p == nil {
		p = BasicProvider{}
	}
	face, met := p.Resolve(spec)
	return advance(&font.Drawer{Face: face}, text), met.Ascent + met.Descent
}

func advance(d *font.Drawer, s string) float64 {
	return float64(d.MeasureString(s)) / 64
}
