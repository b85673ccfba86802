/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"pagebuilder/internal/domain"
	applog "pagebuilder/internal/log"
)

const (
	ManifestFileName = "page.json"
	BackupsDirName   = "backups"

	// MaxBackups bounds the timestamped manifest backups kept per page.
	MaxBackups = 20
)

var standardSubDirs = []string{
	"templates",
	"exports",
	BackupsDirName,
}

// DocumentHandle tracks a page document loaded from or saved to disk.
// Root is the directory holding page.json and the standard subfolders.
type DocumentHandle struct {
	Root         string
	ManifestPath string
	Page         domain.Page
}

// TemplatesDir returns the per-page directory for user templates.
func (h *DocumentHandle) TemplatesDir() string { return filepath.Join(h.Root, "templates") }

// ExportsDir returns the default output directory for exports.
func (h *DocumentHandle) ExportsDir() string { return filepath.Join(h.Root, "exports") }

// InitDocument creates root (if needed), scaffolds the standard subfolders
// and writes page as the initial manifest.
func InitDocument(root string, page domain.Page) (*DocumentHandle, error) {
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("root path is required")
	}
	if err := scaffold(root); err != nil {
		return nil, err
	}
	h := &DocumentHandle{
		Root:         root,
		ManifestPath: filepath.Join(root, ManifestFileName),
		Page:         page,
	}
	if err := Save(h); err != nil {
		return nil, err
	}
	return h, nil
}

// Open loads the page in root. When the manifest is missing, unreadable or
// invalid, the latest backup is used instead.
func Open(root string) (*DocumentHandle, error) {
	l := applog.WithOperation(applog.WithComponent("storage"), "open").With(slog.String("root", root))
	mpath := filepath.Join(root, ManifestFileName)
	p, err := readManifest(mpath)
	if err != nil {
		bp, berr := openFromLatestBackup(root)
		if berr != nil {
			return nil, fmt.Errorf("open manifest: %w; backup attempt: %v", err, berr)
		}
		l.Warn("manifest unusable, opened latest backup", slog.Any("err", err))
		return &DocumentHandle{Root: root, ManifestPath: mpath, Page: *bp}, nil
	}
	return &DocumentHandle{Root: root, ManifestPath: mpath, Page: *p}, nil
}

func readManifest(path string) (*domain.Page, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := Validate(b); err != nil {
		return nil, err
	}
	var p domain.Page
	if err := json.Unmarshal(b, &p); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	if p.Elements == nil {
		p.Elements = []domain.Element{}
	}
	return &p, nil
}

// Save writes h.Page with transactional semantics after backing up the
// previous manifest. A page that does not validate is not written.
func Save(h *DocumentHandle) error {
	if h == nil {
		return errors.New("nil DocumentHandle")
	}
	if h.Root == "" || h.ManifestPath == "" {
		return errors.New("invalid DocumentHandle: missing paths")
	}
	data, err := marshalPage(h.Page)
	if err != nil {
		return err
	}

	bdir := filepath.Join(h.Root, BackupsDirName)
	if err := os.MkdirAll(bdir, 0o755); err != nil {
		return fmt.Errorf("ensure backups dir: %w", err)
	}
	if _, statErr := os.Stat(h.ManifestPath); statErr == nil {
		bpath := filepath.Join(bdir, fmt.Sprintf("%s.%s.bak", ManifestFileName, stamp()))
		if cerr := copyFile(h.ManifestPath, bpath); cerr != nil {
			return fmt.Errorf("backup current manifest: %w", cerr)
		}
		pruneBackups(bdir, MaxBackups)
	}

	dir := filepath.Dir(h.ManifestPath)
	temp := filepath.Join(dir, fmt.Sprintf(".%s.tmp-%d-%d", ManifestFileName, os.Getpid(), rand.Int()))
	if werr := writeFileSync(temp, data); werr != nil {
		return fmt.Errorf("write temp manifest: %w", werr)
	}
	// Windows refuses to rename over an existing file.
	if _, err := os.Stat(h.ManifestPath); err == nil {
		_ = os.Remove(h.ManifestPath)
	}
	if rerr := os.Rename(temp, h.ManifestPath); rerr != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("replace manifest: %w", rerr)
	}
	return nil
}

// SaveAs writes the manifest under newRoot, scaffolding it if needed, and points the handle there.
func SaveAs(h *DocumentHandle, newRoot string) error {
	if h == nil {
		return errors.New("nil DocumentHandle")
	}
	if newRoot == "" {
		return errors.New("new root is empty")
	}
	if err := scaffold(newRoot); err != nil {
		return err
	}
	h.Root = newRoot
	h.ManifestPath = filepath.Join(newRoot, ManifestFileName)
	return Save(h)
}

// AutosaveCrashSnapshot writes the in-memory page next to the backups
// without touching page.json. Used when the process is going down.
func AutosaveCrashSnapshot(h *DocumentHandle) (string, error) {
	if h == nil || h.Root == "" {
		return "", errors.New("invalid DocumentHandle")
	}
	data, err := json.MarshalIndent(h.Page, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal crash snapshot: %w", err)
	}
	bdir := filepath.Join(h.Root, BackupsDirName)
	if err := os.MkdirAll(bdir, 0o755); err != nil {
		return "", fmt.Errorf("ensure backups dir: %w", err)
	}
	path := filepath.Join(bdir, fmt.Sprintf("%s.%s.crash.json", ManifestFileName, stamp()))
	if err := writeFileSync(path, append(data, '\n')); err != nil {
		return "", fmt.Errorf("write crash snapshot: %w", err)
	}
	return path, nil
}

func marshalPage(p domain.Page) ([]byte, error) {
	if p.SchemaVersion == 0 {
		p.SchemaVersion = domain.PageSchemaVersion
	}
	if p.GridSize == 0 {
		p.GridSize = domain.GridSize
	}
	if p.Elements == nil {
		p.Elements = []domain.Element{}
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal manifest: %w", err)
	}
	if err := Validate(data); err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

func scaffold(root string) error {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return fmt.Errorf("create page root: %w", err)
	}
	for _, d := range standardSubDirs {
		if err := os.MkdirAll(filepath.Join(root, d), 0o755); err != nil {
			return fmt.Errorf("create subdir %s: %w", d, err)
		}
	}
	return nil
}

// stamp sorts lexicographically; the nanosecond suffix keeps saves within one second apart.
func stamp() string {
	now := time.Now()
	return fmt.Sprintf("%s.%09d", now.Format("20060102-150405"), now.Nanosecond())
}

func writeFileSync(path string, data []byte) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := f.Write(data); err != nil {
		return err
	}
	return f.Sync()
}

func copyFile(src, dst string) (err error) {
	sf, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sf.Close(); err == nil {
			err = cerr
		}
	}()
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	df, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := df.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := io.Copy(df, sf); err != nil {
		return err
	}
	return df.Sync()
}

func backupNames(bdir string) []string {
	ents, err := os.ReadDir(bdir)
	if err != nil {
		return nil
	}
	var out []string
	for _, e := range ents {
		name := e.Name()
		if strings.HasPrefix(name, ManifestFileName+".") && strings.HasSuffix(name, ".bak") {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

func pruneBackups(bdir string, keep int) {
	names := backupNames(bdir)
	for len(names) > keep {
		_ = os.Remove(filepath.Join(bdir, names[0]))
		names = names[1:]
	}
}

// openFromLatestBackup returns the newest backup that still validates.
func openFromLatestBackup(root string) (*domain.Page, error) {
	bdir := filepath.Join(root, BackupsDirName)
	names := backupNames(bdir)
	if len(names) == 0 {
		return nil, errors.New("no backups found")
	}
	var lastErr error
	for i := len(names) - 1; i >= 0; i-- {
		p, err := readManifest(filepath.Join(bdir, names[i]))
		if err == nil {
			return p, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("no usable backup: %w", lastErr)
}
