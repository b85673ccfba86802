/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

// PageSchemaVersion is written into every page document.
const PageSchemaVersion = 1

// Page is the persisted document: canvas metadata plus the ordered elements.
// Element order is stacking order; later elements render on top.
type Page struct {
	SchemaVersion int       `json:"schemaVersion"`
	Name          string    `json:"name"`
	Width         int       `json:"width"`
	Height        int       `json:"height"`
	GridSize      int       `json:"gridSize"`
	Elements      []Element `json:"elements"`
}

// NewPage returns an empty page with the given canvas size.
func NewPage(name string, width, height int) Page {
	return Page{
		SchemaVersion: PageSchemaVersion,
		Name:          name,
		Width:         width,
		Height:        height,
		GridSize:      GridSize,
		Elements:      []Element{},
	}
}

// Find returns the element with id, or nil.
func (p *Page) Find(id string) *Element {
	for i := range p.Elements {
		if p.Elements[i].ID == id {
			return &p.Elements[i]
		}
	}
	return nil
}
