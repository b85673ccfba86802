/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

// GridSize is the pixel quantum committed positions snap to.
const GridSize = 20

// Choices offered by enumerated fields.
var (
	FontFamilies   = []string{"Arial", "Verdana", "Times New Roman", "Georgia", "Courier New", "Sans-serif", "Serif", "Monospace"}
	FontWeights    = []int{100, 200, 300, 400, 500, 600, 700, 800, 900}
	ButtonVariants = []string{"default", "outline", "secondary"}
	Alignments     = []string{"left", "center", "right"}
)

// PlaceholderImage is the content of a freshly added image.
const PlaceholderImage = "https://placehold.co/100x100"

// Defaults returns a new, id-less element of type t carrying the palette defaults.
func Defaults(t ElementType) (Element, error) {
	el := Element{Type: t, X: 50, Y: 50}
	switch t {
	case TypeText:
		el.Content = "New Text"
		el.Text = &TextStyle{Color: "#000000", FontSize: 16, FontFamily: "Arial", FontWeight: 400}
	case TypeHeading:
		el.Content = "New Heading"
		el.Text = &TextStyle{Color: "#222222", FontSize: 24, FontFamily: "Arial", FontWeight: 600}
	case TypeImage:
		el.Content = PlaceholderImage
		el.Image = &ImageStyle{Width: 100, Height: 100}
	case TypeButton:
		el.Content = "New Button"
		el.Button = &ButtonStyle{Variant: "default", Color: "#ffffff", BackgroundColor: "#007bff"}
	case TypeContainer:
		el.Content = "Container"
		el.Container = &ContainerStyle{
			Width:           200,
			Height:          150,
			BackgroundColor: "#f0f0f0",
			Border:          "1px solid #ccc",
			BorderRadius:    0,
			Padding:         "0px",
			Margin:          "0px",
			Children:        []string{},
		}
	default:
		return Element{}, unknownType(string(t))
	}
	return el, nil
}

// Sample returns the welcome content a new page may be seeded with.
func Sample() []Element {
	return []Element{
		{Type: TypeText, Content: "Welcome to Page Builder", X: 20, Y: 20,
			Text: &TextStyle{Color: "#000000", FontSize: 16, FontFamily: "Arial", FontWeight: 400}},
		{Type: TypeHeading, Content: "Build Your Website", X: 20, Y: 60,
			Text: &TextStyle{Color: "#222222", FontSize: 24, FontFamily: "Arial", FontWeight: 600}},
		{Type: TypeImage, Content: "https://placehold.co/200x100", X: 20, Y: 120,
			Image: &ImageStyle{Width: 200, Height: 100}},
		{Type: TypeButton, Content: "Click Me", X: 20, Y: 240,
			Button: &ButtonStyle{Variant: "default", Color: "#ffffff", BackgroundColor: "#007bff"}},
		{Type: TypeContainer, Content: "Container", X: 300, Y: 50,
			Container: &ContainerStyle{Width: 200, Height: 150, BackgroundColor: "#f0f0f0", Border: "1px solid #ccc",
				BorderRadius: 8, Padding: "16px", Margin: "10px", Children: []string{}}},
	}
}
