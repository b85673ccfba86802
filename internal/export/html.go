/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"pagebuilder/internal/domain"
	"pagebuilder/internal/storage"
)

// HTMLOptions controls HTML export.
type HTMLOptions struct {
	// InlineMarkup keeps b, i, em, strong, u, br and links inside element
	// content. Otherwise content is plain text.
	InlineMarkup bool
	// Fragment omits the document wrapper and emits only the canvas div.
	Fragment bool
}

var (
	policyOnce   sync.Once
	textPolicy   *bluemonday.Policy
	inlinePolicy *bluemonday.Policy
)

func policies() (*bluemonday.Policy, *bluemonday.Policy) {
	policyOnce.Do(func() {
		textPolicy = bluemonday.StrictPolicy()

		p := bluemonday.StrictPolicy()
		p.AllowElements("b", "i", "em", "strong", "u", "br")
		p.AllowAttrs("href").OnElements("a")
		p.AllowStandardURLs()
		p.RequireNoFollowOnLinks(true)
		p.AddTargetBlankToFullyQualifiedLinks(true)
		inlinePolicy = p
	})
	return textPolicy, inlinePolicy
}

func sanitize(content string, inline bool) template.HTML {
	strict, rich := policies()
	if inline {
		return template.HTML(rich.Sanitize(content))
	}
	return template.HTML(strict.Sanitize(content))
}

type htmlNode struct {
	ID       string
	Kind     string
	Left     int
	Top      int
	Content  template.HTML
	Src      string
	Alt      string
	Text     domain.TextStyle
	Image    domain.ImageStyle
	Button   domain.ButtonStyle
	Box      domain.ContainerStyle
	Children []htmlNode
}

type htmlPage struct {
	Title    string
	Width    int
	Height   int
	Fragment bool
	Nodes    []htmlNode
}

var pageTemplate = template.Must(template.New("page").Parse(`{{define "node"}}
{{- if eq .Kind "text"}}<p id="{{.ID}}" class="pb-text" style="position:absolute;left:{{.Left}}px;top:{{.Top}}px;margin:0;color:{{.Text.Color}};font-size:{{.Text.FontSize}}px;font-family:{{.Text.FontFamily}};font-weight:{{.Text.FontWeight}}">{{.Content}}</p>
{{- else if eq .Kind "heading"}}<h2 id="{{.ID}}" class="pb-heading" style="position:absolute;left:{{.Left}}px;top:{{.Top}}px;margin:0;color:{{.Text.Color}};font-size:{{.Text.FontSize}}px;font-family:{{.Text.FontFamily}};font-weight:{{.Text.FontWeight}}">{{.Content}}</h2>
{{- else if eq .Kind "image"}}<img id="{{.ID}}" class="pb-image" src="{{.Src}}" alt="{{.Alt}}" width="{{.Image.Width}}" height="{{.Image.Height}}" style="position:absolute;left:{{.Left}}px;top:{{.Top}}px">
{{- else if eq .Kind "button"}}<button id="{{.ID}}" type="button" class="pb-button pb-button-{{.Button.Variant}}" style="position:absolute;left:{{.Left}}px;top:{{.Top}}px;color:{{.Button.Color}};background-color:{{.Button.BackgroundColor}}">{{.Content}}</button>
{{- else if eq .Kind "container"}}<div id="{{.ID}}" class="pb-container" style="position:absolute;left:{{.Left}}px;top:{{.Top}}px;box-sizing:border-box;width:{{.Box.Width}}px;height:{{.Box.Height}}px;background-color:{{.Box.BackgroundColor}};border:{{.Box.Border}};border-radius:{{.Box.BorderRadius}}px;padding:{{.Box.Padding}};margin:{{.Box.Margin}};text-align:{{.Box.Align}}">
{{- range .Children}}{{template "node" .}}{{end}}</div>
{{- end}}
{{end}}
{{- define "canvas"}}<div class="pb-canvas" style="position:relative;width:{{.Width}}px;height:{{.Height}}px;overflow:hidden">
{{range .Nodes}}{{template "node" .}}{{end}}</div>
{{end}}
{{- if .Fragment}}{{template "canvas" .}}{{else}}<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body{margin:0}
.pb-button{border:1px solid transparent;border-radius:6px;padding:8px 16px;font-size:14px;font-weight:500}
.pb-button-outline{background-color:transparent !important;border-color:currentColor}
.pb-button-secondary{opacity:.85}
</style>
</head>
<body>
{{template "canvas" .}}</body>
</html>
{{end}}`))

// WriteHTML renders p as a standalone document with absolutely positioned
// elements. Styles are emitted as stored; content is sanitized.
func WriteHTML(w io.Writer, p domain.Page, opt HTMLOptions) error {
	width, height := pageSize(p)
	view := htmlPage{Title: p.Name, Width: width, Height: height, Fragment: opt.Fragment}
	var build func(n *node) htmlNode
	build = func(n *node) htmlNode {
		el := n.el
		left, top := el.X, el.Y
		if n.parent != nil {
			left, top = el.X-n.parent.X, el.Y-n.parent.Y
		}
		hn := htmlNode{ID: el.ID, Kind: string(el.Type), Left: left, Top: top, Content: sanitize(el.Content, opt.InlineMarkup)}
		switch {
		case el.Text != nil:
			hn.Text = *el.Text
		case el.Image != nil:
			hn.Image = *el.Image
			hn.Src = strings.TrimSpace(el.Content)
			hn.Alt = "image " + el.ID
		case el.Button != nil:
			hn.Button = *el.Button
			if hn.Button.Variant == "" {
				hn.Button.Variant = "default"
			}
		case el.Container != nil:
			hn.Box = *el.Container
			hn.Box.Children = nil
			for _, c := range n.children {
				hn.Children = append(hn.Children, build(c))
			}
		}
		return hn
	}
	for _, r := range tree(p) {
		view.Nodes = append(view.Nodes, build(r))
	}
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, view); err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// ExportHTML writes p to outPath, relative paths landing in the page's exports folder.
func ExportHTML(h *storage.DocumentHandle, p domain.Page, outPath string, opt HTMLOptions) (string, error) {
	out, err := resolveOut(h, outPath)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := WriteHTML(&buf, p, opt); err != nil {
		return "", err
	}
	if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("write html: %w", err)
	}
	return out, nil
}
