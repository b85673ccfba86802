/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"pagebuilder/internal/domain"
)

func samplePage() domain.Page {
	p := domain.NewPage("Home", 1200, 800)
	for i, el := range domain.Sample() {
		el.ID = fmt.Sprintf("el-%d", i+1)
		p.Elements = append(p.Elements, el)
	}
	p.Elements[4].Container.Children = []string{"el-1"}
	return p
}

func TestInitOpenRoundTrip(t *testing.T) {
	root := t.TempDir()
	want := samplePage()
	h, err := InitDocument(root, want)
	if err != nil {
		t.Fatalf("InitDocument: %v", err)
	}
	for _, d := range standardSubDirs {
		if st, err := os.Stat(filepath.Join(root, d)); err != nil || !st.IsDir() {
			t.Fatalf("missing subdir %s: %v", d, err)
		}
	}
	if h.TemplatesDir() != filepath.Join(root, "templates") {
		t.Fatalf("TemplatesDir = %s", h.TemplatesDir())
	}
	got, err := Open(root)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if diff := cmp.Diff(want, got.Page); diff != "" {
		t.Fatalf("page (-want +got):\n%s", diff)
	}
}

func TestInitRequiresRoot(t *testing.T) {
	if _, err := InitDocument("  ", samplePage()); err == nil {
		t.Fatalf("expected error for blank root")
	}
	if err := Save(nil); err == nil {
		t.Fatalf("expected error for nil handle")
	}
	if err := Save(&DocumentHandle{}); err == nil {
		t.Fatalf("expected error for handle without paths")
	}
}

func TestSaveWritesBackupOfPreviousManifest(t *testing.T) {
	root := t.TempDir()
	h, err := InitDocument(root, samplePage())
	if err != nil {
		t.Fatalf("InitDocument: %v", err)
	}
	h.Page.Name = "Renamed"
	if err := Save(h); err != nil {
		t.Fatalf("Save: %v", err)
	}
	names := backupNames(filepath.Join(root, BackupsDirName))
	if len(names) != 1 {
		t.Fatalf("expected one backup, got %v", names)
	}
	b, _ := os.ReadFile(filepath.Join(root, BackupsDirName, names[0]))
	if !strings.Contains(string(b), `"Home"`) {
		t.Fatalf("backup should hold the previous manifest")
	}
	got, _ := Open(root)
	if got.Page.Name != "Renamed" {
		t.Fatalf("name = %q", got.Page.Name)
	}
}

func TestSaveRejectsInvalidPage(t *testing.T) {
	root := t.TempDir()
	h, err := InitDocument(root, samplePage())
	if err != nil {
		t.Fatalf("InitDocument: %v", err)
	}
	h.Page.Elements[0].ID = ""
	err = Save(h)
	var se *SchemaError
	if !errors.As(err, &se) {
		t.Fatalf("expected SchemaError, got %v", err)
	}
	got, _ := Open(root)
	if got.Page.Elements[0].ID != "el-1" {
		t.Fatalf("invalid save must not replace the manifest")
	}
}

func TestOpenFallsBackToLatestValidBackup(t *testing.T) {
	root := t.TempDir()
	h, err := InitDocument(root, samplePage())
	if err != nil {
		t.Fatalf("InitDocument: %v", err)
	}
	h.Page.Name = "Second"
	if err := Save(h); err != nil {
		t.Fatalf("Save: %v", err)
	}
	bdir := filepath.Join(root, BackupsDirName)
	// A newer, broken backup must be skipped.
	if err := os.WriteFile(filepath.Join(bdir, ManifestFileName+".99991231-235959.000000000.bak"), []byte("{"), 0o644); err != nil {
		t.Fatalf("write broken backup: %v", err)
	}
	if err := os.WriteFile(h.ManifestPath, []byte("not json"), 0o644); err != nil {
		t.Fatalf("corrupt manifest: %v", err)
	}
	got, err := Open(root)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if got.Page.Name != "Home" {
		t.Fatalf("expected the backup taken before the second save, got %q", got.Page.Name)
	}

	empty := t.TempDir()
	if _, err := Open(empty); err == nil {
		t.Fatalf("expected error without manifest and backups")
	}
}

func TestPruneBackupsKeepsNewest(t *testing.T) {
	bdir := t.TempDir()
	for i := 0; i < 5; i++ {
		name := fmt.Sprintf("%s.2025010%d-000000.000000000.bak", ManifestFileName, i+1)
		if err := os.WriteFile(filepath.Join(bdir, name), []byte("{}"), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	pruneBackups(bdir, 2)
	want := []string{
		ManifestFileName + ".20250104-000000.000000000.bak",
		ManifestFileName + ".20250105-000000.000000000.bak",
	}
	if diff := cmp.Diff(want, backupNames(bdir)); diff != "" {
		t.Fatalf("backups (-want +got):\n%s", diff)
	}
}

func TestSaveAsMovesHandle(t *testing.T) {
	h, err := InitDocument(t.TempDir(), samplePage())
	if err != nil {
		t.Fatalf("InitDocument: %v", err)
	}
	dst := filepath.Join(t.TempDir(), "copy")
	if err := SaveAs(h, dst); err != nil {
		t.Fatalf("SaveAs: %v", err)
	}
	if h.Root != dst || h.ManifestPath != filepath.Join(dst, ManifestFileName) {
		t.Fatalf("handle not updated: %+v", h)
	}
	if _, err := Open(dst); err != nil {
		t.Fatalf("Open copy: %v", err)
	}
	if err := SaveAs(h, ""); err == nil {
		t.Fatalf("expected error for empty root")
	}
}

func TestAutosaveCrashSnapshot(t *testing.T) {
	root := t.TempDir()
	h := &DocumentHandle{Root: root, ManifestPath: filepath.Join(root, ManifestFileName), Page: samplePage()}
	path, err := AutosaveCrashSnapshot(h)
	if err != nil {
		t.Fatalf("AutosaveCrashSnapshot: %v", err)
	}
	if filepath.Dir(path) != filepath.Join(root, BackupsDirName) || !strings.HasSuffix(path, ".crash.json") {
		t.Fatalf("unexpected path %s", path)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	if err := Validate(b); err != nil {
		t.Fatalf("crash snapshot invalid: %v", err)
	}
	if _, err := os.Stat(h.ManifestPath); !os.IsNotExist(err) {
		t.Fatalf("crash snapshot must not write the manifest")
	}
	if _, err := AutosaveCrashSnapshot(nil); err == nil {
		t.Fatalf("expected error for nil handle")
	}
}

func TestValidate(t *testing.T) {
	if err := Validate([]byte(`{"schemaVersion":1,"name":"x","elements":[]}`)); err != nil {
		t.Fatalf("minimal page: %v", err)
	}
	bad := []string{
		`{"name":"x","elements":[]}`,
		`{"schemaVersion":1,"name":"x","elements":[{"id":"a","type":"video","x":0,"y":0}]}`,
		`{"schemaVersion":1,"name":"x","elements":[{"id":"a","type":"image","x":0,"y":0,"image":{"width":-1}}]}`,
		`{"schemaVersion":1,"name":"x","gridSize":0,"elements":[]}`,
	}
	for _, doc := range bad {
		var se *SchemaError
		if err := Validate([]byte(doc)); !errors.As(err, &se) {
			t.Errorf("expected SchemaError for %s, got %v", doc, err)
		}
	}
}
