// Copyright (c) 2026 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package live

import (
	"github.com/rs/zerolog"

	"maunium.net/go/mauspoiler/hover"
)

// Editor is what the host editor provides to live extensions.
type Editor interface {
	Buffer
	VisibleWindows() []Window
	Syntax() SyntaxResolver
}

// ViewUpdate describes what changed since the previous update.
type ViewUpdate struct {
	DocChanged      bool
	ViewportChanged bool
}

// Extension is a live-mode extension that can be attached to editors.
type Extension interface {
	Name() string
	Attach(editor Editor) View
}

// View is the per-editor instance of an extension.
type View interface {
	Update(update ViewUpdate)
	Destroy()
}

// SpoilerExtension decorates spoiler regions in the visible part of an editor.
type SpoilerExtension struct {
	Log *zerolog.Logger
}

var _ Extension = (*SpoilerExtension)(nil)

func (ext *SpoilerExtension) Name() string {
	return "spoiler-live-preview"
}

func (ext *SpoilerExtension) Attach(editor Editor) View {
	return NewSpoilerView(editor, ext.Log)
}

// SpoilerView holds the current decorations of one editor and routes pointer movement to hover coordinators.
type SpoilerView struct {
	editor      Editor
	log         zerolog.Logger
	decorations []Decoration
	spans       *SpanSet
	pointers    *hover.Pointers
}

var _ View = (*SpoilerView)(nil)
var _ hover.Lookup = (*SpoilerView)(nil)

func NewSpoilerView(editor Editor, log *zerolog.Logger) *SpoilerView {
	view := &SpoilerView{editor: editor, log: zerolog.Nop()}
	if log != nil {
		view.log = log.With().Str("component", "spoiler view").Logger()
	}
	view.pointers = hover.NewPointers(view)
	view.pointers.Log = &view.log
	view.rebuild()
	return view
}

func (view *SpoilerView) rebuild() {
	// Group IDs aren't stable across builds, so hover state can't be carried over to the new spans.
	view.pointers.Reset()
	view.decorations = Build(view.editor.VisibleWindows(), view.editor, view.editor.Syntax())
	view.spans = NewSpanSet(view.decorations)
	view.log.Trace().Int("decorations", len(view.decorations)).Msg("Rebuilt spoiler decorations")
}

func (view *SpoilerView) Update(update ViewUpdate) {
	if update.DocChanged || update.ViewportChanged {
		view.rebuild()
	}
}

func (view *SpoilerView) Destroy() {
	view.pointers.Reset()
	view.decorations = nil
	view.spans = NewSpanSet(nil)
}

// Decorations returns the current decoration list. It must not be modified.
func (view *SpoilerView) Decorations() []Decoration {
	return view.decorations
}

// Spans returns the rendered spans of the current decoration list.
func (view *SpoilerView) Spans() *SpanSet {
	return view.spans
}

func (view *SpoilerView) ElementsByGroup(group string) []hover.Element {
	return view.spans.ElementsByGroup(group)
}

// PointerMove moves a pointer device to a buffer position. A negative position means the pointer left the text.
func (view *SpoilerView) PointerMove(device, pos int) {
	var target hover.Element
	if pos >= 0 {
		if span := view.spans.At(pos); span != nil {
			target = span
		}
	}
	view.pointers.Device(device).Move(target)
}
