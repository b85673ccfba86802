/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"path/filepath"
	"strings"

	"pagebuilder/internal/domain"
	"pagebuilder/internal/log"
	"pagebuilder/internal/storage"
)

// PresetName represents a named export preset.
type PresetName string

const (
	PresetWeb   PresetName = "web"
	PresetPrint PresetName = "print"
)

// BatchOptions controls exporting one page to several formats at once.
//
// Outputs are named page.<ext>. An empty or relative OutDir is created under
// <page>/exports/<preset>/.
type BatchOptions struct {
	Preset  PresetName
	Formats []string // html, png, pdf, svg; empty means preset defaults
	OutDir  string
	// Grid overrides the preset's default when set.
	Grid *bool
}

// Batch runs the exports of opt and returns the written paths in format order.
func Batch(h *storage.DocumentHandle, p domain.Page, opt BatchOptions) ([]string, error) {
	if opt.Preset == "" {
		opt.Preset = PresetWeb
	}
	formats := opt.Formats
	if len(formats) == 0 {
		formats = presetDefaultFormats(opt.Preset)
	}

	baseOut := opt.OutDir
	if baseOut == "" {
		baseOut = string(opt.Preset)
	}
	if !filepath.IsAbs(baseOut) {
		if h == nil {
			return nil, fmt.Errorf("relative output dir %q needs a page handle", baseOut)
		}
		baseOut = filepath.Join(h.ExportsDir(), baseOut)
	}

	grid := opt.Preset == PresetPrint
	if opt.Grid != nil {
		grid = *opt.Grid
	}

	l := log.WithOperation(log.WithComponent("export"), "batch")
	var written []string
	for _, f := range formats {
		f = strings.ToLower(strings.TrimSpace(f))
		out := filepath.Join(baseOut, "page."+f)
		var err error
		switch f {
		case "html":
			out, err = ExportHTML(nil, p, out, HTMLOptions{})
		case "png":
			out, err = ExportPNG(nil, p, out, PNGOptions{Grid: grid})
		case "pdf":
			out, err = ExportPDF(nil, p, out, PDFOptions{Grid: grid, LinkImages: opt.Preset == PresetWeb})
		case "svg":
			out, err = ExportSVG(nil, p, out, SVGOptions{Grid: grid})
		default:
			return written, fmt.Errorf("unknown format: %s", f)
		}
		if err != nil {
			return written, fmt.Errorf("%s: %w", f, err)
		}
		l.Info("exported", "format", f, "path", out)
		written = append(written, out)
	}
	return written, nil
}

func presetDefaultFormats(p PresetName) []string {
	switch p {
	case PresetPrint:
		return []string{"pdf", "png"}
	default:
		return []string{"html", "png", "svg"}
	}
}
