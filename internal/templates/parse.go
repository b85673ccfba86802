/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package templates

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"pagebuilder/internal/domain"
)

//go:embed template.schema.json
var schemaJSON []byte

var (
	schemaOnce sync.Once
	schema     *gojsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*gojsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schemaJSON))
	})
	return schema, schemaErr
}

// ValidationError lists the schema violations of a template document.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	return "invalid template: " + strings.Join(e.Issues, "; ")
}

// fileElement is the flat on-disk shape of a template element.
type fileElement struct {
	ID              string   `yaml:"id,omitempty"`
	Type            string   `yaml:"type"`
	Content         string   `yaml:"content,omitempty"`
	X               int      `yaml:"x"`
	Y               int      `yaml:"y"`
	Color           string   `yaml:"color,omitempty"`
	FontSize        int      `yaml:"fontSize,omitempty"`
	FontFamily      string   `yaml:"fontFamily,omitempty"`
	FontWeight      int      `yaml:"fontWeight,omitempty"`
	Width           int      `yaml:"width,omitempty"`
	Height          int      `yaml:"height,omitempty"`
	ButtonType      string   `yaml:"buttonType,omitempty"`
	BackgroundColor string   `yaml:"backgroundColor,omitempty"`
	Border          string   `yaml:"border,omitempty"`
	BorderRadius    int      `yaml:"borderRadius,omitempty"`
	Padding         string   `yaml:"padding,omitempty"`
	Margin          string   `yaml:"margin,omitempty"`
	Align           string   `yaml:"align,omitempty"`
	Children        []string `yaml:"children,omitempty"`
}

type fileTemplate struct {
	Name        string        `yaml:"name"`
	Description string        `yaml:"description,omitempty"`
	Elements    []fileElement `yaml:"elements"`
}

// Parse decodes and validates a YAML template document.
func Parse(data []byte) (Template, error) {
	var generic any
	if err := yaml.Unmarshal(data, &generic); err != nil {
		return Template{}, fmt.Errorf("decode template: %w", err)
	}
	sch, err := compiledSchema()
	if err != nil {
		return Template{}, fmt.Errorf("compile template schema: %w", err)
	}
	res, err := sch.Validate(gojsonschema.NewGoLoader(generic))
	if err != nil {
		return Template{}, fmt.Errorf("validate template: %w", err)
	}
	if !res.Valid() {
		ve := &ValidationError{}
		for _, e := range res.Errors() {
			ve.Issues = append(ve.Issues, e.String())
		}
		return Template{}, ve
	}

	var ft fileTemplate
	if err := yaml.Unmarshal(data, &ft); err != nil {
		return Template{}, fmt.Errorf("decode template: %w", err)
	}
	t := Template{Name: strings.TrimSpace(ft.Name), Description: ft.Description}
	for i, fe := range ft.Elements {
		el, err := fe.element()
		if err != nil {
			return Template{}, fmt.Errorf("element %d: %w", i, err)
		}
		t.Elements = append(t.Elements, el)
	}
	return t, nil
}

func (fe fileElement) element() (domain.Element, error) {
	typ, err := domain.ParseElementType(fe.Type)
	if err != nil {
		return domain.Element{}, err
	}
	el := domain.Element{ID: fe.ID, Type: typ, Content: fe.Content, X: fe.X, Y: fe.Y}
	el.EnsureStyle()
	set := func(key string, v domain.Value) {
		if err == nil {
			err = el.SetAttr(key, v)
		}
	}
	strs := map[string]string{
		domain.KeyColor: fe.Color, domain.KeyFontFamily: fe.FontFamily, domain.KeyButtonType: fe.ButtonType,
		domain.KeyBackgroundColor: fe.BackgroundColor, domain.KeyBorder: fe.Border, domain.KeyPadding: fe.Padding,
		domain.KeyMargin: fe.Margin, domain.KeyAlign: fe.Align,
	}
	nums := map[string]int{
		domain.KeyFontSize: fe.FontSize, domain.KeyFontWeight: fe.FontWeight, domain.KeyWidth: fe.Width,
		domain.KeyHeight: fe.Height, domain.KeyBorderRadius: fe.BorderRadius,
	}
	for _, key := range domain.Keys(typ) {
		if s, ok := strs[key]; ok && s != "" {
			set(key, domain.Str(s))
		}
		if n, ok := nums[key]; ok && n != 0 {
			set(key, domain.Num(n))
		}
	}
	if err != nil {
		return domain.Element{}, err
	}
	if len(fe.Children) > 0 {
		if el.Container == nil {
			return domain.Element{}, fmt.Errorf("%s lists children: %w", typ, domain.ErrNotContainer)
		}
		el.Container.Children = append([]string{}, fe.Children...)
	}
	return el, nil
}

// Encode renders t as a YAML template document that Parse accepts.
func Encode(t Template) ([]byte, error) {
	if strings.TrimSpace(t.Name) == "" {
		return nil, errors.New("template name is required")
	}
	ft := fileTemplate{Name: t.Name, Description: t.Description}
	for _, el := range t.Elements {
		fe := fileElement{ID: el.ID, Type: string(el.Type), Content: el.Content, X: el.X, Y: el.Y}
		switch {
		case el.Text != nil:
			fe.Color, fe.FontSize, fe.FontFamily, fe.FontWeight = el.Text.Color, el.Text.FontSize, el.Text.FontFamily, el.Text.FontWeight
		case el.Image != nil:
			fe.Width, fe.Height = el.Image.Width, el.Image.Height
		case el.Button != nil:
			fe.ButtonType, fe.Color, fe.BackgroundColor = el.Button.Variant, el.Button.Color, el.Button.BackgroundColor
		case el.Container != nil:
			c := el.Container
			fe.Width, fe.Height, fe.BackgroundColor, fe.Border = c.Width, c.Height, c.BackgroundColor, c.Border
			fe.BorderRadius, fe.Padding, fe.Margin, fe.Align = c.BorderRadius, c.Padding, c.Margin, c.Align
			fe.Children = c.Children
		}
		ft.Elements = append(ft.Elements, fe)
	}
	return yaml.Marshal(ft)
}
