/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package templates provides named sets of pre-configured elements that can
// be appended to a page as a unit: the built-in page starters plus user
// templates read from YAML files and zip packs.
package templates

import "pagebuilder/internal/domain"

// Template is a named, ordered set of elements with positions relative to the canvas origin.
// Element ids inside a template only express containment; they are replaced on instantiation.
type Template struct {
	Name        string
	Description string
	Elements    []domain.Element
}

// Instantiate returns deep copies of the template elements.
func (t Template) Instantiate() []domain.Element {
	out := make([]domain.Element, len(t.Elements))
	for i, el := range t.Elements {
		out[i] = el.Clone()
	}
	return out
}

func text(id, content string, x, y int, color string, size int, family string, weight int) domain.Element {
	return domain.Element{ID: id, Type: domain.TypeText, Content: content, X: x, Y: y,
		Text: &domain.TextStyle{Color: color, FontSize: size, FontFamily: family, FontWeight: weight}}
}

func heading(id, content string, x, y int, color string, size int, family string, weight int) domain.Element {
	el := text(id, content, x, y, color, size, family, weight)
	el.Type = domain.TypeHeading
	return el
}

func image(id, url string, x, y, w, h int) domain.Element {
	return domain.Element{ID: id, Type: domain.TypeImage, Content: url, X: x, Y: y,
		Image: &domain.ImageStyle{Width: w, Height: h}}
}

func button(id, label string, x, y int, bg string) domain.Element {
	return domain.Element{ID: id, Type: domain.TypeButton, Content: label, X: x, Y: y,
		Button: &domain.ButtonStyle{Variant: "default", Color: "#ffffff", BackgroundColor: bg}}
}

// Builtins returns the page starters shipped with the application.
func Builtins() []Template {
	return []Template{
		{
			Name:        "Landing Page",
			Description: "Headline, pitch and call to action",
			Elements: []domain.Element{
				heading("lp1", "Welcome to Our Website", 50, 50, "#2c3e50", 36, "Arial", 700),
				text("lp2", "Discover amazing features and services.", 50, 120, "#555", 18, "Arial", 400),
				button("lp3", "Learn More", 50, 200, "#3498db"),
			},
		},
		{
			Name:        "Blog Post",
			Description: "Title, byline, body copy and a hero image",
			Elements: []domain.Element{
				heading("bp1", "The Future of Web Design", 50, 50, "#2c3e50", 32, "Georgia", 700),
				text("bp2", "Posted on January 1, 2024", 50, 100, "#7f8c8d", 14, "Georgia", 400),
				text("bp3", "Web design is constantly evolving. New technologies and trends emerge every year, "+
					"changing the way we experience the internet. This article explores some of the most exciting "+
					"developments in web design and what they mean for the future.",
					50, 140, "#34495e", 16, "Georgia", 400),
				image("bp4", "https://placehold.co/600x300", 50, 300, 600, 300),
			},
		},
		{
			Name:        "E-commerce Product Page",
			Description: "Product title, description, photo, price and cart button",
			Elements: []domain.Element{
				heading("ep1", "Product Title", 50, 50, "#2c3e50", 24, "Arial", 600),
				text("ep2", "Product Description: A high-quality item for all your needs.", 50, 90, "#555", 16, "Arial", 400),
				image("ep3", "https://placehold.co/300x300", 50, 140, 300, 300),
				text("ep4", "$25.00", 50, 460, "#e74c3c", 20, "Arial", 600),
				button("ep5", "Add to Cart", 180, 450, "#2ecc71"),
			},
		},
	}
}
