/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package formschema derives the editable property form for an element.
// A Schema is an ordered list of fields, each naming the element attribute it
// edits, how it should be rendered, and the value currently shown.
package formschema

import (
	"strconv"

	"pagebuilder/internal/domain"
)

// Kind selects the input widget used for a field.
type Kind string

const (
	KindText     Kind = "text"
	KindTextarea Kind = "textarea"
	KindNumber   Kind = "number"
	KindColor    Kind = "color"
	KindSelect   Kind = "select"
	KindBorder   Kind = "border"
)

// Field is one editable property.
type Field struct {
	Key         string       `json:"key"`
	Label       string       `json:"label"`
	Kind        Kind         `json:"kind"`
	Value       domain.Value `json:"value"`
	Options     []string     `json:"options,omitempty"`
	Placeholder string       `json:"placeholder,omitempty"`
}

// Schema is the form for one element.
type Schema struct {
	ElementID   string             `json:"elementId"`
	ElementType domain.ElementType `json:"elementType"`
	Fields      []Field            `json:"fields"`
}

// BorderHint is shown in empty border inputs.
const BorderHint = "e.g., 1px solid #ccc"

// fieldSpec describes a field independently of any element. fallback is shown
// when the element leaves the attribute unset.
type fieldSpec struct {
	key      string
	label    string
	kind     Kind
	fallback domain.Value
	options  []string
	hint     string
}

var weightOptions = func() []string {
	out := make([]string, len(domain.FontWeights))
	for i, w := range domain.FontWeights {
		out[i] = strconv.Itoa(w)
	}
	return out
}()

func typographySpecs(color string, size, weight int) []fieldSpec {
	return []fieldSpec{
		{key: domain.KeyContent, label: "Text", kind: KindTextarea},
		{key: domain.KeyColor, label: "Color", kind: KindColor, fallback: domain.Str(color)},
		{key: domain.KeyFontSize, label: "Font Size", kind: KindNumber, fallback: domain.Num(size)},
		{key: domain.KeyFontFamily, label: "Font Family", kind: KindSelect, fallback: domain.Str("Arial"), options: domain.FontFamilies},
		{key: domain.KeyFontWeight, label: "Font Weight", kind: KindSelect, fallback: domain.Num(weight), options: weightOptions},
	}
}

var specs = map[domain.ElementType][]fieldSpec{
	domain.TypeText:    typographySpecs("#000000", 16, 400),
	domain.TypeHeading: typographySpecs("#222222", 24, 600),
	domain.TypeImage: {
		{key: domain.KeyContent, label: "Image URL", kind: KindText},
		{key: domain.KeyWidth, label: "Width", kind: KindNumber, fallback: domain.Num(100)},
		{key: domain.KeyHeight, label: "Height", kind: KindNumber, fallback: domain.Num(100)},
	},
	domain.TypeButton: {
		{key: domain.KeyContent, label: "Text", kind: KindText},
		{key: domain.KeyButtonType, label: "Button Style", kind: KindSelect, fallback: domain.Str("default"), options: domain.ButtonVariants},
		{key: domain.KeyColor, label: "Text Color", kind: KindColor, fallback: domain.Str("#ffffff")},
		{key: domain.KeyBackgroundColor, label: "Background Color", kind: KindColor, fallback: domain.Str("#007bff")},
	},
	domain.TypeContainer: {
		{key: domain.KeyWidth, label: "Width", kind: KindNumber, fallback: domain.Num(200)},
		{key: domain.KeyHeight, label: "Height", kind: KindNumber, fallback: domain.Num(150)},
		{key: domain.KeyBackgroundColor, label: "Background Color", kind: KindColor, fallback: domain.Str("#f0f0f0")},
		{key: domain.KeyBorder, label: "Border", kind: KindBorder, fallback: domain.Str("1px solid #ccc"), hint: BorderHint},
		{key: domain.KeyBorderRadius, label: "Border Radius", kind: KindNumber, fallback: domain.Num(0)},
		{key: domain.KeyPadding, label: "Padding", kind: KindText, fallback: domain.Str("0px")},
		{key: domain.KeyMargin, label: "Margin", kind: KindText, fallback: domain.Str("0px")},
		{key: domain.KeyAlign, label: "Alignment", kind: KindSelect, fallback: domain.Str("left"), options: domain.Alignments},
	},
}

// For builds the form for el. Elements of an unknown type get a single free-text content field.
func For(el domain.Element) Schema {
	s := Schema{ElementID: el.ID, ElementType: el.Type}
	list, ok := specs[el.Type]
	if !ok {
		s.Fields = []Field{{Key: domain.KeyContent, Label: "Content", Kind: KindText, Value: domain.Str(el.Content)}}
		return s
	}
	s.Fields = make([]Field, 0, len(list))
	for _, sp := range list {
		v, _ := el.Attr(sp.key)
		if isUnset(v) && sp.key != domain.KeyContent {
			v = sp.fallback
		}
		s.Fields = append(s.Fields, Field{
			Key:         sp.key,
			Label:       sp.label,
			Kind:        sp.kind,
			Value:       v,
			Options:     append([]string(nil), sp.options...),
			Placeholder: sp.hint,
		})
	}
	return s
}

func isUnset(v domain.Value) bool {
	if n, ok := v.Int(); ok {
		return n == 0
	}
	return v.Text() == ""
}

// Keys lists the field keys in order.
func (s Schema) Keys() []string {
	out := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		out[i] = f.Key
	}
	return out
}

// Field returns the field for key.
func (s Schema) Field(key string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Key == key {
			return f, true
		}
	}
	return Field{}, false
}

// SetValue updates the displayed value of key in place. It reports false when
// the schema has no such field.
func (s *Schema) SetValue(key string, v domain.Value) bool {
	for i := range s.Fields {
		if s.Fields[i].Key == key {
			s.Fields[i].Value = v
			return true
		}
	}
	return false
}

// Clone returns a copy that shares no slices with s.
func (s Schema) Clone() Schema {
	out := s
	out.Fields = make([]Field, len(s.Fields))
	for i, f := range s.Fields {
		f.Options = append([]string(nil), f.Options...)
		out.Fields[i] = f
	}
	return out
}
