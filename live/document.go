// Copyright (c) 2026 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package live

import (
	"fmt"
	"slices"
	"strings"

	"github.com/rs/zerolog"
)

// Document is an in-memory editor: a markdown buffer with a visible viewport, a selection
// and the views of the extensions applied to it.
type Document struct {
	// ID identifies the document in logs.
	ID  string
	Log *zerolog.Logger

	text    string
	syntax  *MarkdownSyntax
	windows []Window
	selFrom int
	selTo   int

	extensions []Extension
	views      map[Extension]View
}

var _ Editor = (*Document)(nil)

func NewDocument(text string) *Document {
	return &Document{
		text:  text,
		views: make(map[Extension]View),
	}
}

func (doc *Document) Len() int {
	return len(doc.text)
}

func (doc *Document) Slice(from, to int) string {
	return doc.text[from:to]
}

func (doc *Document) Text() string {
	return doc.text
}

// Syntax returns the syntax tree of the current text, parsing it if the text changed since the last call.
func (doc *Document) Syntax() SyntaxResolver {
	if doc.syntax == nil {
		doc.syntax = ParseMarkdown([]byte(doc.text))
	}
	return doc.syntax
}

// VisibleWindows returns the visible ranges of the buffer. The whole buffer is visible unless
// SetVisibleWindows or SetVisibleLines was called.
func (doc *Document) VisibleWindows() []Window {
	if doc.windows == nil {
		return []Window{{From: 0, To: len(doc.text)}}
	}
	return slices.Clone(doc.windows)
}

// SetVisibleWindows changes the viewport. Passing no windows makes the whole buffer visible again.
func (doc *Document) SetVisibleWindows(windows ...Window) {
	if len(windows) == 0 {
		doc.windows = nil
	} else {
		doc.windows = slices.Clone(windows)
	}
	doc.dispatch(ViewUpdate{ViewportChanged: true})
}

// LineWindow returns the window covering lines [first, last] (zero-indexed, inclusive), including the final newline.
func (doc *Document) LineWindow(first, last int) Window {
	var win Window
	offset := 0
	for i, line := range strings.SplitAfter(doc.text, "\n") {
		if i == first {
			win.From = offset
		}
		offset += len(line)
		if i == last {
			break
		}
	}
	win.To = offset
	if first > last {
		win.To = win.From
	}
	return win
}

// SetVisibleLines makes a single range of lines visible.
func (doc *Document) SetVisibleLines(first, last int) {
	doc.SetVisibleWindows(doc.LineWindow(first, last))
}

func (doc *Document) Selection() (from, to int) {
	return doc.selFrom, doc.selTo
}

func (doc *Document) SetSelection(from, to int) {
	if from > to {
		from, to = to, from
	}
	doc.selFrom = min(max(from, 0), len(doc.text))
	doc.selTo = min(max(to, 0), len(doc.text))
}

// Replace replaces the bytes [from, to) with insert and places the cursor after the inserted text.
func (doc *Document) Replace(from, to int, insert string) error {
	if from < 0 || to > len(doc.text) || from > to {
		return fmt.Errorf("replace range %d-%d out of bounds for length %d", from, to, len(doc.text))
	}
	doc.text = doc.text[:from] + insert + doc.text[to:]
	doc.syntax = nil
	doc.selFrom = from + len(insert)
	doc.selTo = doc.selFrom
	doc.dispatch(ViewUpdate{DocChanged: true})
	return nil
}

// Append adds text to the end of the buffer.
func (doc *Document) Append(text string) {
	_ = doc.Replace(len(doc.text), len(doc.text), text)
}

func (doc *Document) dispatch(update ViewUpdate) {
	for _, ext := range doc.extensions {
		doc.views[ext].Update(update)
	}
}

// ApplyExtensions attaches views for newly listed extensions and destroys the views of extensions
// that are no longer listed.
func (doc *Document) ApplyExtensions(extensions []Extension) {
	for _, ext := range doc.extensions {
		if !slices.Contains(extensions, ext) {
			doc.views[ext].Destroy()
			delete(doc.views, ext)
		}
	}
	for _, ext := range extensions {
		if _, ok := doc.views[ext]; !ok {
			doc.views[ext] = ext.Attach(doc)
		}
	}
	doc.extensions = slices.Clone(extensions)
	if doc.Log != nil {
		doc.Log.Debug().Int("extensions", len(extensions)).Msg("Applied live extensions to document")
	}
}

// View returns the view of an applied extension.
func (doc *Document) View(ext Extension) (View, bool) {
	view, ok := doc.views[ext]
	return view, ok
}

// ViewCount returns the number of attached views.
func (doc *Document) ViewCount() int {
	return len(doc.views)
}

// Close destroys every attached view.
func (doc *Document) Close() {
	doc.ApplyExtensions(nil)
}
