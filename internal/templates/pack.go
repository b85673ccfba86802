/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package templates

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	applog "pagebuilder/internal/log"
)

const packManifest = "templatepack.manifest.txt"

// maxTemplateSize bounds a single template entry read from a pack.
const maxTemplateSize = 1 << 20

// ExportPack zips every template file in dir into destZip with a short
// manifest at the archive root. Returns the number of templates packed.
func ExportPack(dir, destZip string) (int, error) {
	l := applog.WithOperation(applog.WithComponent("templates"), "exportPack").With(slog.String("dir", dir))
	if strings.TrimSpace(dir) == "" {
		return 0, errors.New("templates dir is required")
	}
	if strings.TrimSpace(destZip) == "" {
		return 0, errors.New("destination zip is required")
	}
	entries, err := os.ReadDir(dir)
	if err != nil && !os.IsNotExist(err) {
		return 0, fmt.Errorf("read templates dir: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(destZip), 0o755); err != nil {
		return 0, fmt.Errorf("ensure zip dir: %w", err)
	}
	_ = os.Remove(destZip)

	zf, err := os.Create(destZip)
	if err != nil {
		return 0, fmt.Errorf("create zip: %w", err)
	}
	defer func() { _ = zf.Close() }()
	zw := zip.NewWriter(zf)

	manifest := fmt.Sprintf("Page Builder Template Pack\nCreated: %s\nSource: %s\n\nEach .yaml entry is one template.\n",
		time.Now().Format(time.RFC3339), dir)
	w, err := zw.Create(packManifest)
	if err != nil {
		return 0, fmt.Errorf("add manifest: %w", err)
	}
	if _, err := w.Write([]byte(manifest)); err != nil {
		return 0, fmt.Errorf("write manifest: %w", err)
	}

	added := 0
	for _, e := range entries {
		if e.IsDir() || !isTemplateFile(e.Name()) {
			continue
		}
		if err := addFile(zw, filepath.Join(dir, e.Name()), e.Name()); err != nil {
			l.Error("zip build failed", slog.Any("err", err))
			return added, fmt.Errorf("build zip: %w", err)
		}
		added++
	}
	if err := zw.Close(); err != nil {
		return added, fmt.Errorf("finish zip: %w", err)
	}
	l.Info("template pack exported", slog.Int("templates", added), slog.String("zip", destZip))
	return added, nil
}

func addFile(zw *zip.Writer, src, name string) error {
	fw, err := zw.Create(name)
	if err != nil {
		return err
	}
	f, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	_, err = io.Copy(fw, f)
	return err
}

// InstallPack extracts the templates of a pack into dir. Every entry is
// parsed first; invalid templates are skipped. Existing files are never
// overwritten. Returns the count of files installed.
func InstallPack(dir, packZip string) (int, error) {
	l := applog.WithOperation(applog.WithComponent("templates"), "installPack").With(slog.String("dir", dir))
	if strings.TrimSpace(dir) == "" {
		return 0, errors.New("templates dir is required")
	}
	if strings.TrimSpace(packZip) == "" {
		return 0, errors.New("pack zip is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("ensure templates dir: %w", err)
	}
	r, err := zip.OpenReader(packZip)
	if err != nil {
		return 0, fmt.Errorf("open pack: %w", err)
	}
	defer func() { _ = r.Close() }()

	installed := 0
	for _, f := range r.File {
		if f.FileInfo().IsDir() || f.Name == packManifest {
			continue
		}
		// Entries are flattened into dir; nested paths keep only their base name.
		base := path.Base(filepath.ToSlash(f.Name))
		if !isTemplateFile(base) || base == "." || base == ".." {
			continue
		}
		target := filepath.Join(dir, base)
		if _, err := os.Stat(target); err == nil {
			l.Warn("skip existing file", slog.String("path", target))
			continue
		}
		data, err := readEntry(f)
		if err != nil {
			return installed, err
		}
		if _, err := Parse(data); err != nil {
			l.Warn("skip invalid template", slog.String("entry", f.Name), slog.Any("err", err))
			continue
		}
		if err := os.WriteFile(target, data, 0o644); err != nil {
			return installed, err
		}
		installed++
	}
	l.Info("template pack installed", slog.Int("files", installed))
	return installed, nil
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()
	data, err := io.ReadAll(io.LimitReader(rc, maxTemplateSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxTemplateSize {
		return nil, fmt.Errorf("%s: template exceeds %d bytes", f.Name, maxTemplateSize)
	}
	return data, nil
}
