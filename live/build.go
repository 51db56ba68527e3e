// Copyright (c) 2026 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package live

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"maunium.net/go/mauspoiler/delim"
)

// Part identifies which piece of a region a decoration covers.
type Part uint8

const (
	OpenDelimiter Part = iota
	Content
	CloseDelimiter
)

func (p Part) String() string {
	switch p {
	case OpenDelimiter:
		return "open-delimiter"
	case Content:
		return "content"
	case CloseDelimiter:
		return "close-delimiter"
	default:
		return "unknown"
	}
}

const (
	DelimiterClass = "spoiler-delimiter"
	ContentClass   = "spoiler-content"
)

// Class returns the style class of decorations of this part.
func (p Part) Class() string {
	if p == Content {
		return ContentClass
	}
	return DelimiterClass
}

// Decoration is a styled byte range [From, To) of the buffer.
type Decoration struct {
	From  int
	To    int
	Part  Part
	Group string
}

func (d Decoration) Class() string {
	return d.Part.Class()
}

// GroupID formats the group identifier of the n-th region of a build.
func GroupID(n int) string {
	return fmt.Sprintf("spoiler-%d", n)
}

func isDelimited(buf Buffer, openAt, closeAt int) bool {
	if openAt < 0 || closeAt+delim.TokenLen > buf.Len() || openAt+delim.TokenLen > closeAt {
		return false
	}
	slice := buf.Slice(openAt, closeAt+delim.TokenLen)
	return strings.HasPrefix(slice, delim.Token) && strings.HasSuffix(slice, delim.Token)
}

// splitBlankLines splits a window into paragraphs separated by whitespace-only lines.
func splitBlankLines(win Window, text string) []Window {
	var blocks []Window
	start := -1
	for offset := 0; offset < len(text); {
		lineEnd, next := len(text), len(text)
		if idx := strings.IndexByte(text[offset:], '\n'); idx >= 0 {
			lineEnd, next = offset+idx, offset+idx+1
		}
		if strings.TrimSpace(text[offset:lineEnd]) == "" {
			if start >= 0 {
				blocks = append(blocks, Window{From: win.From + start, To: win.From + offset})
				start = -1
			}
		} else if start < 0 {
			start = offset
		}
		offset = next
	}
	if start >= 0 {
		blocks = append(blocks, Window{From: win.From + start, To: win.To})
	}
	return blocks
}

func blocksIn(win Window, buf Buffer, syntax SyntaxResolver) []Window {
	if blocks, ok := syntax.(BlockResolver); ok {
		return blocks.Blocks(win.From, win.To)
	}
	return splitBlankLines(win, buf.Slice(win.From, win.To))
}

// Build scans every visible window of buf independently and returns the decorations of all accepted regions,
// sorted by start offset.
//
// Within a window, each block is scanned on its own: with a BlockResolver those are the leaf blocks of the
// syntax tree, otherwise paragraphs separated by blank lines. Regions whose delimiters are in different
// windows or blocks are never found. A region is also dropped if the syntax tree puts either of its
// delimiters inside code, math, a comment or raw HTML.
func Build(windows []Window, buf Buffer, syntax SyntaxResolver) []Decoration {
	if buf == nil || syntax == nil {
		panic(fmt.Errorf("live: Build needs both a buffer and a syntax resolver"))
	}
	var decorations []Decoration
	groups := 0
	for _, win := range NormalizeWindows(windows, buf.Len()) {
		for _, block := range blocksIn(win, buf, syntax) {
			excluded := func(m delim.Match) bool {
				return IsExcludedAt(syntax, block.From+m.Offset)
			}
			for region := range delim.Scan(buf.Slice(block.From, block.To), excluded) {
				openAt := block.From + region.Open.Offset
				closeAt := block.From + region.Close.Offset
				if !isDelimited(buf, openAt, closeAt) {
					continue
				}
				group := GroupID(groups)
				groups++
				decorations = append(decorations,
					Decoration{From: openAt, To: openAt + delim.TokenLen, Part: OpenDelimiter, Group: group},
					Decoration{From: openAt + delim.TokenLen, To: closeAt, Part: Content, Group: group},
					Decoration{From: closeAt, To: closeAt + delim.TokenLen, Part: CloseDelimiter, Group: group},
				)
			}
		}
	}
	// Stable, so that a zero-width content range stays in front of the close delimiter at the same offset.
	slices.SortStableFunc(decorations, func(a, b Decoration) int {
		return cmp.Compare(a.From, b.From)
	})
	return decorations
}
