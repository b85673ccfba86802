/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package domain holds the page-builder data model: placeable elements,
// their per-type style records, and the page document that owns them.
package domain

import "strings"

// ElementType identifies what an element renders as. It never changes after creation.
type ElementType string

const (
	TypeText      ElementType = "text"
	TypeHeading   ElementType = "heading"
	TypeImage     ElementType = "image"
	TypeButton    ElementType = "button"
	TypeContainer ElementType = "container"
)

// ElementTypes lists the supported types in palette order.
var ElementTypes = []ElementType{TypeText, TypeHeading, TypeImage, TypeButton, TypeContainer}

// ParseElementType converts user input into an ElementType.
func ParseElementType(s string) (ElementType, error) {
	t := ElementType(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", unknownType(s)
	}
	return t, nil
}

func (t ElementType) Valid() bool {
	switch t {
	case TypeText, TypeHeading, TypeImage, TypeButton, TypeContainer:
		return true
	}
	return false
}

// Label is the human name used in palettes and form headers.
func (t ElementType) Label() string {
	if t == "" {
		return ""
	}
	return strings.ToUpper(string(t[:1])) + string(t[1:])
}

// Element is one placeable object on the canvas.
// Exactly one style record is set, matching Type: Text for text and heading,
// Image, Button or Container otherwise. Zero style values mean "unset".
type Element struct {
	ID        string          `json:"id"`
	Type      ElementType     `json:"type"`
	Content   string          `json:"content"`
	X         int             `json:"x"`
	Y         int             `json:"y"`
	Text      *TextStyle      `json:"text,omitempty"`
	Image     *ImageStyle     `json:"image,omitempty"`
	Button    *ButtonStyle    `json:"button,omitempty"`
	Container *ContainerStyle `json:"container,omitempty"`
}

// TextStyle applies to text and heading elements.
type TextStyle struct {
	Color      string `json:"color,omitempty"`
	FontSize   int    `json:"fontSize,omitempty"`
	FontFamily string `json:"fontFamily,omitempty"`
	FontWeight int    `json:"fontWeight,omitempty"`
}

type ImageStyle struct {
	Width  int `json:"width,omitempty"`
	Height int `json:"height,omitempty"`
}

type ButtonStyle struct {
	Variant         string `json:"buttonType,omitempty"`
	Color           string `json:"color,omitempty"`
	BackgroundColor string `json:"backgroundColor,omitempty"`
}

// ContainerStyle carries box styling plus the ids of contained elements.
// Children reference elements owned by the page; containment is not ownership.
type ContainerStyle struct {
	Width           int      `json:"width,omitempty"`
	Height          int      `json:"height,omitempty"`
	BackgroundColor string   `json:"backgroundColor,omitempty"`
	Border          string   `json:"border,omitempty"`
	BorderRadius    int      `json:"borderRadius,omitempty"`
	Padding         string   `json:"padding,omitempty"`
	Margin          string   `json:"margin,omitempty"`
	Align           string   `json:"align,omitempty"`
	Children        []string `json:"children"`
}

// Clone returns a deep copy of e.
func (e Element) Clone() Element {
	out := e
	if e.Text != nil {
		t := *e.Text
		out.Text = &t
	}
	if e.Image != nil {
		i := *e.Image
		out.Image = &i
	}
	if e.Button != nil {
		b := *e.Button
		out.Button = &b
	}
	if e.Container != nil {
		c := *e.Container
		c.Children = append([]string{}, e.Container.Children...)
		out.Container = &c
	}
	return out
}

// Size reports the element's explicit box size, or 0,0 when the element
// sizes itself from its content.
func (e Element) Size() (w, h int) {
	switch {
	case e.Image != nil:
		return e.Image.Width, e.Image.Height
	case e.Container != nil:
		return e.Container.Width, e.Container.Height
	}
	return 0, 0
}

// EnsureStyle allocates the style record that belongs to the element's type if it is missing.
func (e *Element) EnsureStyle() {
	switch e.Type {
	case TypeText, TypeHeading:
		if e.Text == nil {
			e.Text = &TextStyle{}
		}
	case TypeImage:
		if e.Image == nil {
			e.Image = &ImageStyle{}
		}
	case TypeButton:
		if e.Button == nil {
			e.Button = &ButtonStyle{}
		}
	case TypeContainer:
		if e.Container == nil {
			e.Container = &ContainerStyle{Children: []string{}}
		}
	}
}
