/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

import (
	"slices"
	"strconv"
)

// Attribute keys accepted by Attr and SetAttr. They match the JSON names used
// in page documents so forms, storage and the CLI share one vocabulary.
const (
	KeyContent         = "content"
	KeyX               = "x"
	KeyY               = "y"
	KeyColor           = "color"
	KeyFontSize        = "fontSize"
	KeyFontFamily      = "fontFamily"
	KeyFontWeight      = "fontWeight"
	KeyWidth           = "width"
	KeyHeight          = "height"
	KeyButtonType      = "buttonType"
	KeyBackgroundColor = "backgroundColor"
	KeyBorder          = "border"
	KeyBorderRadius    = "borderRadius"
	KeyPadding         = "padding"
	KeyMargin          = "margin"
	KeyAlign           = "align"
)

var typeKeys = map[ElementType][]string{
	TypeText:      {KeyContent, KeyX, KeyY, KeyColor, KeyFontSize, KeyFontFamily, KeyFontWeight},
	TypeHeading:   {KeyContent, KeyX, KeyY, KeyColor, KeyFontSize, KeyFontFamily, KeyFontWeight},
	TypeImage:     {KeyContent, KeyX, KeyY, KeyWidth, KeyHeight},
	TypeButton:    {KeyContent, KeyX, KeyY, KeyButtonType, KeyColor, KeyBackgroundColor},
	TypeContainer: {KeyContent, KeyX, KeyY, KeyWidth, KeyHeight, KeyBackgroundColor, KeyBorder, KeyBorderRadius, KeyPadding, KeyMargin, KeyAlign},
}

var numericKeys = map[string]bool{
	KeyX: true, KeyY: true, KeyFontSize: true, KeyFontWeight: true,
	KeyWidth: true, KeyHeight: true, KeyBorderRadius: true,
}

// Keys lists the attributes that apply to elements of type t.
func Keys(t ElementType) []string { return append([]string(nil), typeKeys[t]...) }

// IsNumericKey reports whether key holds an integer.
func IsNumericKey(key string) bool { return numericKeys[key] }

// Applies reports whether key is an attribute of elements of type t.
func Applies(t ElementType, key string) bool { return slices.Contains(typeKeys[t], key) }

// Attr reads one attribute. ok is false when the key does not apply to the element's type.
// Unset style attributes are returned as their zero value.
func (e *Element) Attr(key string) (Value, bool) {
	if !Applies(e.Type, key) {
		return Value{}, false
	}
	switch key {
	case KeyContent:
		return Str(e.Content), true
	case KeyX:
		return Num(e.X), true
	case KeyY:
		return Num(e.Y), true
	}
	switch {
	case e.Text != nil:
		switch key {
		case KeyColor:
			return Str(e.Text.Color), true
		case KeyFontSize:
			return Num(e.Text.FontSize), true
		case KeyFontFamily:
			return Str(e.Text.FontFamily), true
		case KeyFontWeight:
			return Num(e.Text.FontWeight), true
		}
	case e.Image != nil:
		switch key {
		case KeyWidth:
			return Num(e.Image.Width), true
		case KeyHeight:
			return Num(e.Image.Height), true
		}
	case e.Button != nil:
		switch key {
		case KeyButtonType:
			return Str(e.Button.Variant), true
		case KeyColor:
			return Str(e.Button.Color), true
		case KeyBackgroundColor:
			return Str(e.Button.BackgroundColor), true
		}
	case e.Container != nil:
		c := e.Container
		switch key {
		case KeyWidth:
			return Num(c.Width), true
		case KeyHeight:
			return Num(c.Height), true
		case KeyBackgroundColor:
			return Str(c.BackgroundColor), true
		case KeyBorder:
			return Str(c.Border), true
		case KeyBorderRadius:
			return Num(c.BorderRadius), true
		case KeyPadding:
			return Str(c.Padding), true
		case KeyMargin:
			return Str(c.Margin), true
		case KeyAlign:
			return Str(c.Align), true
		}
	}
	if IsNumericKey(key) {
		return Num(0), true
	}
	return Str(""), true
}

// SetAttr replaces one attribute in place. Numeric keys accept integers or
// numeric strings; enumerated keys must hold one of their listed choices.
func (e *Element) SetAttr(key string, v Value) error {
	if !Applies(e.Type, key) {
		return ErrUnknownField
	}
	n, s, err := normalize(key, v)
	if err != nil {
		return err
	}
	e.EnsureStyle()
	switch key {
	case KeyContent:
		e.Content = s
		return nil
	case KeyX:
		e.X = n
		return nil
	case KeyY:
		e.Y = n
		return nil
	}
	switch e.Type {
	case TypeText, TypeHeading:
		switch key {
		case KeyColor:
			e.Text.Color = s
		case KeyFontSize:
			e.Text.FontSize = n
		case KeyFontFamily:
			e.Text.FontFamily = s
		case KeyFontWeight:
			e.Text.FontWeight = n
		}
	case TypeImage:
		switch key {
		case KeyWidth:
			e.Image.Width = n
		case KeyHeight:
			e.Image.Height = n
		}
	case TypeButton:
		switch key {
		case KeyButtonType:
			e.Button.Variant = s
		case KeyColor:
			e.Button.Color = s
		case KeyBackgroundColor:
			e.Button.BackgroundColor = s
		}
	case TypeContainer:
		c := e.Container
		switch key {
		case KeyWidth:
			c.Width = n
		case KeyHeight:
			c.Height = n
		case KeyBackgroundColor:
			c.BackgroundColor = s
		case KeyBorder:
			c.Border = s
		case KeyBorderRadius:
			c.BorderRadius = n
		case KeyPadding:
			c.Padding = s
		case KeyMargin:
			c.Margin = s
		case KeyAlign:
			c.Align = s
		}
	}
	return nil
}

func normalize(key string, v Value) (int, string, error) {
	if IsNumericKey(key) {
		n, ok := v.Int()
		if !ok {
			parsed, err := strconv.Atoi(v.Text())
			if err != nil {
				return 0, "", invalidValue(key, v, "not an integer")
			}
			n = parsed
		}
		switch key {
		case KeyX, KeyY:
		case KeyFontWeight:
			if !slices.Contains(FontWeights, n) {
				return 0, "", invalidValue(key, v, "not a listed font weight")
			}
		default:
			if n < 0 {
				return 0, "", invalidValue(key, v, "must not be negative")
			}
		}
		return n, "", nil
	}
	s := v.Text()
	var choices []string
	switch key {
	case KeyFontFamily:
		choices = FontFamilies
	case KeyButtonType:
		choices = ButtonVariants
	case KeyAlign:
		choices = Alignments
	}
	if choices != nil && !slices.Contains(choices, s) {
		return 0, "", invalidValue(key, v, "not a listed choice")
	}
	return 0, s, nil
}
