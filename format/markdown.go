// Copyright (c) 2026 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package format

import (
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"maunium.net/go/mauspoiler/format/mdext"
)

const paragraphStart = "<p>"
const paragraphEnd = "</p>"

// Extensions are the goldmark extensions used by the rendering pass.
//
// Spoilers are deliberately not parsed here: they're materialized on the rendered tree afterwards.
var Extensions = goldmark.WithExtensions(extension.Strikethrough, extension.Table, mdext.Math, mdext.Comment)
var HTMLOptions = goldmark.WithRendererOptions(gmhtml.WithHardWraps(), gmhtml.WithUnsafe())

var withHTML = goldmark.New(Extensions, HTMLOptions)
var noHTML = goldmark.New(Extensions, HTMLOptions, goldmark.WithExtensions(mdext.EscapeHTML))

// UnwrapSingleParagraph removes paragraph tags surrounding a string if the string only contains a single paragraph.
func UnwrapSingleParagraph(html string) string {
	html = strings.TrimRight(html, "\n")
	if strings.HasPrefix(html, paragraphStart) && strings.HasSuffix(html, paragraphEnd) {
		htmlBodyWithoutP := html[len(paragraphStart) : len(html)-len(paragraphEnd)]
		if !strings.Contains(htmlBodyWithoutP, paragraphStart) {
			return htmlBodyWithoutP
		}
	}
	return html
}

// NewRoot returns an empty container element that rendered documents are attached to.
func NewRoot() *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		Data:     atom.Div.String(),
		DataAtom: atom.Div,
	}
}

// ParseHTML parses an HTML fragment into the children of a new root container.
func ParseHTML(htmlBody string) (*html.Node, error) {
	root := NewRoot()
	nodes, err := html.ParseFragment(strings.NewReader(htmlBody), NewRoot())
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	for _, node := range nodes {
		root.AppendChild(node)
	}
	return root, nil
}

// RenderMarkdownCustom renders markdown with the given goldmark instance and parses the result into a tree.
func RenderMarkdownCustom(text string, renderer goldmark.Markdown) (*html.Node, error) {
	var buf strings.Builder
	err := renderer.Convert([]byte(text), &buf)
	if err != nil {
		return nil, fmt.Errorf("markdown parser errored: %w", err)
	}
	return ParseHTML(buf.String())
}

// RenderMarkdown runs the rendering pass over a markdown document.
//
// If allowHTML is false, raw HTML in the input is escaped instead of passed through.
func RenderMarkdown(text string, allowHTML bool) (*html.Node, error) {
	rndr := withHTML
	if !allowHTML {
		rndr = noHTML
	}
	return RenderMarkdownCustom(text, rndr)
}

// RenderHTML serializes the children of a root container back into an HTML string.
func RenderHTML(root *html.Node) string {
	var buf strings.Builder
	for child := root.FirstChild; child != nil; child = child.NextSibling {
		// Rendering into a strings.Builder can't fail.
		_ = html.Render(&buf, child)
	}
	return buf.String()
}
