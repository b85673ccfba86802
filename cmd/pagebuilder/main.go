/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/go-cmp/cmp"

	"pagebuilder/internal/config"
	"pagebuilder/internal/crash"
	"pagebuilder/internal/domain"
	"pagebuilder/internal/drag"
	"pagebuilder/internal/editor"
	"pagebuilder/internal/export"
	"pagebuilder/internal/formschema"
	applog "pagebuilder/internal/log"
	"pagebuilder/internal/storage"
	"pagebuilder/internal/templates"
	"pagebuilder/internal/textlayout"
	"pagebuilder/internal/version"
)

// keepRevisions bounds the undo index of a page.
const keepRevisions = 100

// usageError makes main exit with status 2.
type usageError struct{ msg string }

func (e usageError) Error() string { return e.msg }

func usagef(format string, args ...any) error { return usageError{fmt.Sprintf(format, args...)} }

func usage(w io.Writer) {
	_, _ = fmt.Fprintln(w, "Page Builder")
	_, _ = fmt.Fprintf(w, "Version: %s\n", version.String())
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, "Usage:")
	_, _ = fmt.Fprintln(w, "  pagebuilder version|-v|--version                 Show version")
	_, _ = fmt.Fprintln(w, "  pagebuilder init <dir> [name]                     Create a page at <dir>")
	_, _ = fmt.Fprintln(w, "  pagebuilder copy <dir> <newdir>                   Save the page under a new folder")
	_, _ = fmt.Fprintln(w, "  pagebuilder show <dir>                            List the elements of a page")
	_, _ = fmt.Fprintln(w, "  pagebuilder add <dir> <type>                      Add a text|heading|image|button|container")
	_, _ = fmt.Fprintln(w, "  pagebuilder set <dir> <id> <key> <value>          Edit one property")
	_, _ = fmt.Fprintln(w, "  pagebuilder drag <dir> <id> <x> <y> [w h]         Drop an element centered on x,y (snapped)")
	_, _ = fmt.Fprintln(w, "  pagebuilder rm <dir> <id>                         Remove an element")
	_, _ = fmt.Fprintln(w, "  pagebuilder dup <dir> <id>                        Copy an element one grid step away")
	_, _ = fmt.Fprintln(w, "  pagebuilder attach <dir> <container> <child>      Put an element inside a container")
	_, _ = fmt.Fprintln(w, "  pagebuilder detach <dir> <container> <child>      Take an element out of a container")
	_, _ = fmt.Fprintln(w, "  pagebuilder template <dir> <name>                 Append a template")
	_, _ = fmt.Fprintln(w, "  pagebuilder templates [dir]                       List templates")
	_, _ = fmt.Fprintln(w, "  pagebuilder pack export|install <dir> <zip>       Share the page's templates folder")
	_, _ = fmt.Fprintln(w, "  pagebuilder schema <dir> <id>                     Print the edit form of an element as JSON")
	_, _ = fmt.Fprintln(w, "  pagebuilder undo <dir>                            Revert the last change")
	_, _ = fmt.Fprintln(w, "  pagebuilder history <dir>                         List recorded changes")
	_, _ = fmt.Fprintln(w, "  pagebuilder export <dir> html|png|pdf|svg <out>   Render the page")
	_, _ = fmt.Fprintln(w, "  pagebuilder batch <dir> [web|print]               Render with an export preset")
}

func main() {
	cfg, cerr := config.Load()
	applog.Init(logOptions(cfg))
	l := applog.WithComponent("cli")
	if cerr != nil {
		l.Warn("config unreadable, using defaults", slog.Any("err", cerr))
	}
	defer crash.Recover(nil, nil)

	l.Debug("start", slog.Int("args", len(os.Args)))
	err := run(cfg, os.Args[1:], os.Stdout)
	if err == nil {
		return
	}
	var ue usageError
	if errors.As(err, &ue) {
		fmt.Println(ue.msg)
		usage(os.Stdout)
		os.Exit(2)
	}
	l.Error("command failed", slog.Any("err", err))
	fmt.Println("Error:", err)
	os.Exit(1)
}

// logOptions takes the logging section of cfg, which already carries the
// PB_LOG_* overrides, over the environment defaults.
func logOptions(cfg config.AppConfig) applog.Options {
	opts := applog.FromEnv()
	if cfg.Logging.Level != "" {
		opts.Level = cfg.Logging.Level
	}
	if cfg.Logging.Format != "" {
		opts.Format = cfg.Logging.Format
	}
	if cfg.Logging.File != "" {
		opts.File = cfg.Logging.File
	}
	opts.AddSource = opts.AddSource || cfg.Logging.Source
	return opts
}

func run(cfg config.AppConfig, args []string, out io.Writer) error {
	if len(args) == 0 {
		usage(out)
		return nil
	}
	need := func(n int, what string) error {
		if len(args) < n+1 {
			return usagef("%s requires %s", args[0], what)
		}
		return nil
	}
	switch args[0] {
	case "version", "--version", "-v":
		_, _ = fmt.Fprintln(out, "Page Builder")
		_, _ = fmt.Fprintln(out, version.String())
		return nil
	case "init":
		if err := need(1, "<dir>"); err != nil {
			return err
		}
		name := "Untitled"
		if len(args) > 2 {
			name = args[2]
		}
		return initPage(cfg, args[1], name, out)
	case "show":
		if err := need(1, "<dir>"); err != nil {
			return err
		}
		return withPage(cfg, args[1], func(_ *storage.DocumentHandle, ed *editor.Editor) error {
			return show(ed.Page(), out)
		})
	case "add":
		if err := need(2, "<dir> and <type>"); err != nil {
			return err
		}
		t, err := domain.ParseElementType(args[2])
		if err != nil {
			return err
		}
		return mutate(cfg, args[1], "add "+string(t), func(ed *editor.Editor) error {
			id, err := ed.AddElement(t)
			if err == nil {
				_, _ = fmt.Fprintln(out, id)
			}
			return err
		})
	case "set":
		if err := need(4, "<dir> <id> <key> <value>"); err != nil {
			return err
		}
		id, key, raw := args[2], args[3], args[4]
		return mutate(cfg, args[1], "edit "+key, func(ed *editor.Editor) error {
			if _, ok := ed.Element(id); !ok {
				return fmt.Errorf("no element %q", id)
			}
			ed.Select(id)
			return ed.Edit(key, raw)
		})
	case "drag":
		if err := need(4, "<dir> <id> <x> <y>"); err != nil {
			return err
		}
		pointer, err := parsePt(args[3], args[4])
		if err != nil {
			return err
		}
		var size *drag.Size
		if len(args) >= 7 {
			wh, err := parsePt(args[5], args[6])
			if err != nil {
				return err
			}
			size = &drag.Size{W: wh.X, H: wh.Y}
		}
		return mutate(cfg, args[1], "move", func(ed *editor.Editor) error {
			return dragElement(ed, args[2], pointer, size, out)
		})
	case "rm":
		if err := need(2, "<dir> and <id>"); err != nil {
			return err
		}
		return mutate(cfg, args[1], "delete", func(ed *editor.Editor) error {
			if !ed.Delete(args[2]) {
				_, _ = fmt.Fprintln(out, "No such element; nothing removed.")
			}
			return nil
		})
	case "dup":
		if err := need(2, "<dir> and <id>"); err != nil {
			return err
		}
		return mutate(cfg, args[1], "duplicate", func(ed *editor.Editor) error {
			id, ok := ed.Duplicate(args[2])
			if !ok {
				return fmt.Errorf("no element %q", args[2])
			}
			_, _ = fmt.Fprintln(out, id)
			return nil
		})
	case "attach", "detach":
		if err := need(3, "<dir> <container> <child>"); err != nil {
			return err
		}
		return mutate(cfg, args[1], args[0], func(ed *editor.Editor) error {
			if args[0] == "attach" {
				return ed.Attach(args[2], args[3])
			}
			ed.Detach(args[2], args[3])
			return nil
		})
	case "template":
		if err := need(2, "<dir> and <name>"); err != nil {
			return err
		}
		return mutate(cfg, args[1], "template", func(ed *editor.Editor) error {
			ids, err := ed.LoadTemplate(args[2])
			if err == nil {
				_, _ = fmt.Fprintf(out, "Added %d elements.\n", len(ids))
			}
			return err
		})
	case "copy":
		if err := need(2, "<dir> and <newdir>"); err != nil {
			return err
		}
		h, err := storage.Open(absPath(args[1]))
		if err != nil {
			return err
		}
		if err := storage.SaveAs(h, absPath(args[2])); err != nil {
			return err
		}
		_, _ = fmt.Fprintln(out, "Copied page to", h.Root)
		return nil
	case "templates":
		var reg *templates.Registry
		if len(args) > 1 {
			h, err := storage.Open(absPath(args[1]))
			if err != nil {
				return err
			}
			reg = registryFor(cfg, h)
		} else {
			reg = registryFor(cfg, nil)
		}
		for _, n := range reg.Names() {
			_, _ = fmt.Fprintln(out, n)
		}
		return nil
	case "pack":
		if err := need(3, "export|install <dir> <zip>"); err != nil {
			return err
		}
		return pack(args[1], args[2], args[3], out)
	case "schema":
		if err := need(2, "<dir> and <id>"); err != nil {
			return err
		}
		return withPage(cfg, args[1], func(_ *storage.DocumentHandle, ed *editor.Editor) error {
			ed.Select(args[2])
			s, ok := ed.Schema()
			if !ok {
				return fmt.Errorf("no element %q", args[2])
			}
			return writeJSON(out, s)
		})
	case "undo":
		if err := need(1, "<dir>"); err != nil {
			return err
		}
		return undo(args[1], out)
	case "history":
		if err := need(1, "<dir>"); err != nil {
			return err
		}
		return history(args[1], out)
	case "export":
		if err := need(3, "<dir> <format> <out>"); err != nil {
			return err
		}
		return withPage(cfg, args[1], func(h *storage.DocumentHandle, ed *editor.Editor) error {
			path, err := exportOne(h, ed.Page(), args[2], args[3])
			if err == nil {
				_, _ = fmt.Fprintln(out, "Exported", path)
			}
			return err
		})
	case "batch":
		if err := need(1, "<dir>"); err != nil {
			return err
		}
		preset := export.PresetWeb
		if len(args) > 2 {
			preset = export.PresetName(strings.ToLower(args[2]))
		}
		return withPage(cfg, args[1], func(h *storage.DocumentHandle, ed *editor.Editor) error {
			paths, err := export.Batch(h, ed.Page(), export.BatchOptions{Preset: preset})
			for _, p := range paths {
				_, _ = fmt.Fprintln(out, "Exported", p)
			}
			return err
		})
	}
	return usagef("unknown command %q", args[0])
}

func absPath(dir string) string {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return dir
	}
	return abs
}

func initPage(cfg config.AppConfig, dir, name string, out io.Writer) error {
	abs := absPath(dir)
	applog.WithComponent("cli").Info("init page", slog.String("root", abs), slog.String("name", name))
	ed := editor.New(cfg, editor.WithName(name))
	if cfg.Editor.SampleContent {
		ed = editor.NewWithSample(cfg, editor.WithName(name))
	}
	if _, err := storage.InitDocument(abs, ed.Page()); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(out, "Created page at", abs)
	return nil
}

// registryFor returns the built-in templates plus those of the configured
// directory and, when h is set, the page's own templates folder. Broken
// files are logged and skipped.
func registryFor(cfg config.AppConfig, h *storage.DocumentHandle) *templates.Registry {
	l := applog.WithComponent("cli")
	reg := templates.NewRegistry()
	dirs := []string{cfg.Templates.Dir}
	if h != nil {
		dirs = append(dirs, h.TemplatesDir())
	}
	for _, d := range dirs {
		if d == "" {
			continue
		}
		if n, err := reg.LoadDir(d); err != nil {
			l.Warn("some templates were skipped", slog.String("dir", d), slog.Int("loaded", n), slog.Any("err", err))
		}
	}
	return reg
}

// withPage opens dir into an editor and runs fn. A panic inside fn saves
// the in-memory page as a crash snapshot.
func withPage(cfg config.AppConfig, dir string, fn func(h *storage.DocumentHandle, ed *editor.Editor) error) error {
	h, err := storage.Open(absPath(dir))
	if err != nil {
		return err
	}
	ed := editor.New(cfg, editor.WithRegistry(registryFor(cfg, h)))
	if err := ed.Restore(h.Page); err != nil {
		return err
	}
	defer crash.Recover(h, ed.Page)
	return fn(h, ed)
}

// mutate runs fn and, if the page changed, records the previous state as a
// revision and saves.
func mutate(cfg config.AppConfig, dir, label string, fn func(ed *editor.Editor) error) error {
	return withPage(cfg, dir, func(h *storage.DocumentHandle, ed *editor.Editor) error {
		before := ed.Page()
		if err := fn(ed); err != nil {
			return err
		}
		after := ed.Page()
		if cmp.Equal(before, after) {
			return nil
		}
		ctx := context.Background()
		if err := storage.SaveRevision(ctx, h, label, before, time.Now()); err != nil {
			return fmt.Errorf("record revision: %w", err)
		}
		if _, err := storage.PruneRevisions(ctx, h, keepRevisions); err != nil {
			applog.WithComponent("cli").Warn("prune revisions failed", slog.Any("err", err))
		}
		h.Page = after
		return storage.Save(h)
	})
}

func show(p domain.Page, out io.Writer) error {
	_, _ = fmt.Fprintf(out, "Page: %s (%dx%d, grid %d)\n", p.Name, p.Width, p.Height, p.GridSize)
	_, _ = fmt.Fprintf(out, "Elements: %d\n", len(p.Elements))
	for _, el := range p.Elements {
		content := el.Content
		if r := []rune(content); len(r) > 40 {
			content = string(r[:37]) + "..."
		}
		line := fmt.Sprintf("  %s  %-9s %4d,%-4d %q", el.ID, el.Type, el.X, el.Y, content)
		if el.Container != nil && len(el.Container.Children) > 0 {
			line += fmt.Sprintf(" children=%s", strings.Join(el.Container.Children, ","))
		}
		_, _ = fmt.Fprintln(out, line)
	}
	return nil
}

func parsePt(xs, ys string) (drag.Pt, error) {
	x, err := strconv.ParseFloat(xs, 64)
	if err != nil {
		return drag.Pt{}, usagef("invalid number %q", xs)
	}
	y, err := strconv.ParseFloat(ys, 64)
	if err != nil {
		return drag.Pt{}, usagef("invalid number %q", ys)
	}
	return drag.Pt{X: x, Y: y}, nil
}

// dragElement runs a whole drag gesture. Without an explicit size the
// element is measured the way the exporters draw it.
func dragElement(ed *editor.Editor, id string, pointer drag.Pt, size *drag.Size, out io.Writer) error {
	el, ok := ed.Element(id)
	if !ok {
		return fmt.Errorf("no element %q", id)
	}
	if size == nil {
		w, h := textlayout.RenderedSize(textlayout.NewGoFontLibrary(), el)
		size = &drag.Size{W: float64(w), H: float64(h)}
	}
	if err := ed.StartDrag(id); err != nil {
		return err
	}
	ed.DragTo(pointer, *size)
	c, ok := ed.EndDrag()
	if ok {
		_, _ = fmt.Fprintf(out, "Moved %s to %d,%d\n", c.ID, c.X, c.Y)
	}
	return nil
}

func pack(action, dir, zipPath string, out io.Writer) error {
	h, err := storage.Open(absPath(dir))
	if err != nil {
		return err
	}
	switch action {
	case "export":
		n, err := templates.ExportPack(h.TemplatesDir(), zipPath)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(out, "Packed %d templates into %s\n", n, zipPath)
	case "install":
		n, err := templates.InstallPack(h.TemplatesDir(), zipPath)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(out, "Installed %d templates\n", n)
	default:
		return usagef("pack action must be export or install, got %q", action)
	}
	return nil
}

func writeJSON(out io.Writer, s formschema.Schema) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

// undo restores the newest revision and drops it from the index.
func undo(dir string, out io.Writer) error {
	h, err := storage.Open(absPath(dir))
	if err != nil {
		return err
	}
	ctx := context.Background()
	if err := checkIndex(ctx, h, out); err != nil {
		return err
	}
	rev, ok, err := storage.LatestRevision(ctx, h)
	if err != nil {
		return err
	}
	if !ok {
		_, _ = fmt.Fprintln(out, "Nothing to undo.")
		return nil
	}
	h.Page = rev.Page
	if err := storage.Save(h); err != nil {
		return err
	}
	if err := storage.DeleteRevision(ctx, h, rev.ID); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "Undid %s\n", rev.Label)
	return nil
}

func history(dir string, out io.Writer) error {
	h, err := storage.Open(absPath(dir))
	if err != nil {
		return err
	}
	ctx := context.Background()
	if err := checkIndex(ctx, h, out); err != nil {
		return err
	}
	revs, err := storage.ListRevisions(ctx, h, 20)
	if err != nil {
		return err
	}
	if len(revs) == 0 {
		_, _ = fmt.Fprintln(out, "No recorded changes.")
	}
	for _, r := range revs {
		_, _ = fmt.Fprintf(out, "%s  %s\n", r.TS.Local().Format(time.DateTime), r.Label)
	}
	return nil
}

// checkIndex recreates a damaged revision index; its history is lost.
func checkIndex(ctx context.Context, h *storage.DocumentHandle, out io.Writer) error {
	rebuilt, err := storage.DetectAndRebuildIndex(ctx, h.Root)
	if err != nil {
		return err
	}
	if rebuilt {
		_, _ = fmt.Fprintln(out, "The revision index was damaged and has been recreated.")
	}
	return nil
}

func exportOne(h *storage.DocumentHandle, p domain.Page, format, outPath string) (string, error) {
	switch strings.ToLower(format) {
	case "html":
		return export.ExportHTML(h, p, outPath, export.HTMLOptions{})
	case "png":
		return export.ExportPNG(h, p, outPath, export.PNGOptions{})
	case "pdf":
		return export.ExportPDF(h, p, outPath, export.PDFOptions{})
	case "svg":
		return export.ExportSVG(h, p, outPath, export.SVGOptions{})
	}
	return "", usagef("unknown export format %q", format)
}
