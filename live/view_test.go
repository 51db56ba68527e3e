// Copyright (c) 2026 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package live_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maunium.net/go/mauspoiler/hover"
	"maunium.net/go/mauspoiler/live"
)

func attachSpoilers(t *testing.T, doc *live.Document) *live.SpoilerView {
	ext := &live.SpoilerExtension{}
	doc.ApplyExtensions([]live.Extension{ext})
	view, ok := doc.View(ext)
	require.True(t, ok)
	return view.(*live.SpoilerView)
}

func highlighted(view *live.SpoilerView) map[string]int {
	out := make(map[string]int)
	for _, span := range view.Spans().Spans() {
		if span.HasClass(hover.HighlightClass) {
			out[span.Group()]++
		}
	}
	return out
}

func TestSpoilerView_HoverGroup(t *testing.T) {
	doc := live.NewDocument("||a|| ||b|| ||c|| ||d||")
	view := attachSpoilers(t, doc)
	require.Len(t, view.Decorations(), 12)
	assert.Equal(t, "spoiler-3", view.Decorations()[9].Group)

	view.PointerMove(0, 18)
	assert.Equal(t, map[string]int{"spoiler-3": 3}, highlighted(view))
	// Moving from the opening delimiter to the content keeps the group highlighted.
	view.PointerMove(0, 20)
	assert.Equal(t, map[string]int{"spoiler-3": 3}, highlighted(view))
	view.PointerMove(0, 21)
	assert.Equal(t, map[string]int{"spoiler-3": 3}, highlighted(view))
	// The space between regions isn't decorated.
	view.PointerMove(0, 17)
	assert.Empty(t, highlighted(view))
	view.PointerMove(0, 12)
	assert.Equal(t, map[string]int{"spoiler-2": 3}, highlighted(view))
	view.PointerMove(0, -1)
	assert.Empty(t, highlighted(view))
}

func TestSpoilerView_IndependentPointers(t *testing.T) {
	doc := live.NewDocument("||a|| ||b||")
	view := attachSpoilers(t, doc)
	view.PointerMove(0, 0)
	view.PointerMove(1, 6)
	assert.Equal(t, map[string]int{"spoiler-0": 3, "spoiler-1": 3}, highlighted(view))
	view.PointerMove(1, -1)
	assert.Equal(t, map[string]int{"spoiler-0": 3}, highlighted(view))
}

func TestSpoilerView_RebuildOnEdit(t *testing.T) {
	doc := live.NewDocument("||a||")
	view := attachSpoilers(t, doc)
	view.PointerMove(0, 2)
	require.Len(t, view.Decorations(), 3)

	require.NoError(t, doc.Replace(0, 0, "||new|| "))
	assert.Equal(t, []string{"new", "a"}, contents(doc.Text(), view.Decorations()))
	assert.Empty(t, highlighted(view))
	assert.Equal(t, "spoiler-1", view.Decorations()[3].Group)

	require.NoError(t, doc.Replace(7, 7, "`"))
	require.NoError(t, doc.Replace(0, 0, "`"))
	assert.Equal(t, "`||new||` ||a||", doc.Text())
	assert.Equal(t, []string{"a"}, contents(doc.Text(), view.Decorations()))
}

func TestSpoilerView_RebuildOnScroll(t *testing.T) {
	doc := live.NewDocument("||a||\n\n||b||\n\n||c||")
	view := attachSpoilers(t, doc)
	assert.Equal(t, []string{"a", "b", "c"}, contents(doc.Text(), view.Decorations()))

	doc.SetVisibleLines(2, 2)
	assert.Equal(t, []string{"b"}, contents(doc.Text(), view.Decorations()))
	assert.Equal(t, "spoiler-0", view.Decorations()[0].Group)

	doc.SetVisibleWindows()
	assert.Len(t, view.Decorations(), 9)
}

func TestSpoilerView_SpanAt(t *testing.T) {
	view := attachSpoilers(t, live.NewDocument("x ||||"))
	spans := view.Spans()
	assert.Nil(t, spans.At(0))
	assert.Equal(t, live.OpenDelimiter, spans.At(2).Part)
	assert.Equal(t, live.OpenDelimiter, spans.At(3).Part)
	// The content is zero-width, so the close delimiter is hit right away.
	assert.Equal(t, live.CloseDelimiter, spans.At(4).Part)
	assert.Nil(t, spans.At(6))
	assert.Equal(t, []string{live.DelimiterClass}, spans.At(4).Classes())
}

func TestRegistry(t *testing.T) {
	reg := &live.Registry{}
	ext := &live.SpoilerExtension{}
	assert.True(t, reg.Register(ext))
	assert.False(t, reg.Register(ext))
	assert.Len(t, reg.Extensions(), 1)
	assert.True(t, reg.Has(ext))
	assert.True(t, reg.Unregister(ext))
	assert.False(t, reg.Unregister(ext))
	assert.Empty(t, reg.Extensions())
}

func TestDocument_ApplyExtensions(t *testing.T) {
	reg := &live.Registry{}
	ext := &live.SpoilerExtension{}
	doc := live.NewDocument("||a||")

	reg.Register(ext)
	doc.ApplyExtensions(reg.Extensions())
	assert.Equal(t, 1, doc.ViewCount())
	view, _ := doc.View(ext)
	spoilerView := view.(*live.SpoilerView)
	assert.Len(t, spoilerView.Decorations(), 3)

	// Applying the same list again keeps the existing view.
	doc.ApplyExtensions(reg.Extensions())
	again, _ := doc.View(ext)
	assert.Same(t, spoilerView, again)

	reg.Unregister(ext)
	doc.ApplyExtensions(reg.Extensions())
	assert.Equal(t, 0, doc.ViewCount())
	assert.Empty(t, spoilerView.Decorations())

	// Destroyed views don't receive updates.
	require.NoError(t, doc.Replace(0, 0, "||b|| "))
	assert.Empty(t, spoilerView.Decorations())
}

func TestDocument_Editing(t *testing.T) {
	doc := live.NewDocument("hello\nworld\n")
	assert.Equal(t, live.Window{From: 6, To: 12}, doc.LineWindow(1, 1))
	assert.Equal(t, live.Window{From: 0, To: 12}, doc.LineWindow(0, 5))

	doc.SetSelection(8, 6)
	from, to := doc.Selection()
	assert.Equal(t, 6, from)
	assert.Equal(t, 8, to)

	require.NoError(t, doc.Replace(6, 8, "WO"))
	assert.Equal(t, "hello\nWOrld\n", doc.Text())
	from, to = doc.Selection()
	assert.Equal(t, 8, from)
	assert.Equal(t, 8, to)

	assert.Error(t, doc.Replace(5, 100, ""))
	doc.Append("||x||")
	assert.Equal(t, "hello\nWOrld\n||x||", doc.Text())
}
