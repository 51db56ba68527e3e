// Copyright (c) 2026 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package live builds spoiler decorations for the visible part of a document that is being edited.
//
// Nothing is kept between rebuilds: every document or viewport change re-scans the visible windows
// from scratch and replaces the previous decoration list wholesale.
package live

import (
	"cmp"
	"slices"
)

// Buffer is the source text of a document, addressed by byte offsets.
type Buffer interface {
	Len() int
	Slice(from, to int) string
}

// Window is a visible byte range [From, To) of a buffer.
type Window struct {
	From int
	To   int
}

func (w Window) Empty() bool {
	return w.To <= w.From
}

// Clamp restricts the window to a buffer of the given length.
func (w Window) Clamp(length int) Window {
	return Window{
		From: min(max(w.From, 0), length),
		To:   min(max(w.To, 0), length),
	}
}

// NormalizeWindows clamps windows to the buffer, drops empty ones, sorts them and merges windows that overlap.
//
// Windows that merely touch stay separate: each one is scanned independently.
func NormalizeWindows(windows []Window, length int) []Window {
	out := make([]Window, 0, len(windows))
	for _, w := range windows {
		if w = w.Clamp(length); !w.Empty() {
			out = append(out, w)
		}
	}
	slices.SortFunc(out, func(a, b Window) int {
		return cmp.Compare(a.From, b.From)
	})
	merged := out[:0]
	for _, w := range out {
		if n := len(merged); n > 0 && w.From < merged[n-1].To {
			merged[n-1].To = max(merged[n-1].To, w.To)
			continue
		}
		merged = append(merged, w)
	}
	return merged
}

// StringBuffer is a Buffer over an immutable string.
type StringBuffer string

func (sb StringBuffer) Len() int {
	return len(sb)
}

func (sb StringBuffer) Slice(from, to int) string {
	return string(sb[from:to])
}
