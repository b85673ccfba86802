/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

import (
	"fmt"
	"os"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// FontLibrary resolves FontSpecs against loaded OpenType fonts. Families
// without a loaded font use the fallback family. Faces are cached per size.
// It is safe for concurrent use.
type FontLibrary struct {
	mu       sync.Mutex
	fonts    map[fontKey]*opentype.Font
	faces    map[faceKey]font.Face
	fallback string
}

type fontKey struct {
	family string
	bold   bool
}

type faceKey struct {
	fontKey
	size float64
}

// NewFontLibrary returns an empty library; Resolve falls back to BasicProvider until fonts are loaded.
func NewFontLibrary() *FontLibrary {
	return &FontLibrary{fonts: map[fontKey]*opentype.Font{}, faces: map[faceKey]font.Face{}}
}

// NewGoFontLibrary returns a library backed by the Go fonts. Monospace
// families map to Go Mono; every other family uses Go Regular or Go Bold.
func NewGoFontLibrary() *FontLibrary {
	fl := NewFontLibrary()
	must := func(family string, weight int, data []byte) {
		if err := fl.Load(family, weight, data); err != nil {
			panic(err)
		}
	}
	must("Sans-serif", 400, goregular.TTF)
	must("Sans-serif", 700, gobold.TTF)
	must("Monospace", 400, gomono.TTF)
	must("Courier New", 400, gomono.TTF)
	fl.fallback = "Sans-serif"
	return fl
}

// SetFallback names the family used for unknown families.
func (fl *FontLibrary) SetFallback(family string) {
	fl.mu.Lock()
	fl.fallback = family
	fl.mu.Unlock()
}

// LoadTTF loads a font file for family. Weights of 600 and above register the bold slot.
func (fl *FontLibrary) LoadTTF(family string, weight int, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read font %s: %w", path, err)
	}
	return fl.Load(family, weight, data)
}

// Load registers font data for family.
func (fl *FontLibrary) Load(family string, weight int, data []byte) error {
	f, err := opentype.Parse(data)
	if err != nil {
		return fmt.Errorf("parse font %s: %w", family, err)
	}
	fl.mu.Lock()
	defer fl.mu.Unlock()
	fl.fonts[fontKey{family: family, bold: weight >= 600}] = f
	return nil
}

// Resolve implements Provider.
func (fl *FontLibrary) Resolve(spec FontSpec) (font.Face, Metrics) {
	if spec.Size <= 0 {
		spec.Size = 16
	}
	fl.mu.Lock()
	defer fl.mu.Unlock()
	key, f := fl.findLocked(spec)
	if f == nil {
		return BasicProvider{}.Resolve(spec)
	}
	fk := faceKey{fontKey: key, size: spec.Size}
	if face, ok := fl.faces[fk]; ok {
		return face, metricsOf(face)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: spec.Size, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return BasicProvider{}.Resolve(spec)
	}
	fl.faces[fk] = face
	return face, metricsOf(face)
}

func (fl *FontLibrary) findLocked(spec FontSpec) (fontKey, *opentype.Font) {
	bold := spec.Weight >= 600
	for _, family := range []string{spec.Family, fl.fallback} {
		for _, k := range []fontKey{{family, bold}, {family, !bold}} {
			if f, ok := fl.fonts[k]; ok {
				return k, f
			}
		}
	}
	return fontKey{}, nil
}
