/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

import (
	"math"

	"pagebuilder/internal/domain"
)

// Button geometry of the default button style.
const (
	ButtonPaddingX   = 16
	ButtonHeight     = 40
	ButtonFontSize   = 14
	ButtonFontWeight = 500
)

// TextSpec returns the font of a text or heading element, filling unset
// attributes with the element type's defaults.
func TextSpec(el domain.Element) FontSpec {
	def, _ := domain.Defaults(el.Type)
	spec := FontSpec{Family: "Arial", Size: 16, Weight: 400}
	if def.Text != nil {
		spec = FontSpec{Family: def.Text.FontFamily, Size: float64(def.Text.FontSize), Weight: def.Text.FontWeight}
	}
	if t := el.Text; t != nil {
		if t.FontFamily != "" {
			spec.Family = t.FontFamily
		}
		if t.FontSize > 0 {
			spec.Size = float64(t.FontSize)
		}
		if t.FontWeight > 0 {
			spec.Weight = t.FontWeight
		}
	}
	return spec
}

// RenderedSize estimates the on-canvas box of el. Images and containers
// report their explicit size; text is measured on one line; buttons add
// their padding around the label.
func RenderedSize(p Provider, el domain.Element) (w, h int) {
	if w, h := el.Size(); w > 0 || h > 0 {
		return w, h
	}
	switch el.Type {
	case domain.TypeText, domain.TypeHeading:
		box := Wrap(p, el.Content, TextSpec(el), 0)
		return int(math.Ceil(box.Width)), int(math.Ceil(box.Height))
	case domain.TypeButton:
		tw, _ := Measure(p, el.Content, FontSpec{Size: ButtonFontSize, Weight: ButtonFontWeight})
		return int(math.Ceil(tw)) + 2*ButtonPaddingX, ButtonHeight
	}
	return 0, 0
}
