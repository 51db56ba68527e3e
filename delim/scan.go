// Copyright (c) 2026 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package delim finds and pairs spoiler delimiter tokens in ordered text units.
package delim

import (
	"iter"
	"strings"
)

// Token is the delimiter that opens and closes a spoiler.
const Token = "||"

// TokenLen is the length of Token in bytes.
const TokenLen = len(Token)

// Match is a single occurrence of Token.
type Match struct {
	// Unit is the index of the unit the token was found in.
	Unit int
	// Offset is the byte offset of the token inside the unit.
	Offset int
}

// End returns the offset right after the token inside its unit.
func (m Match) End() int {
	return m.Offset + TokenLen
}

// Region is a pair of delimiters and the content strictly between them.
type Region struct {
	// ID is unique within one scan, counting from zero.
	ID    int
	Open  Match
	Close Match
}

// Empty reports whether the region has no content between its delimiters.
func (r Region) Empty() bool {
	return r.Open.Unit == r.Close.Unit && r.Open.End() == r.Close.Offset
}

// Excluder reports whether a delimiter is inside a context where spoilers aren't allowed.
type Excluder func(m Match) bool

// Cursor is the state of a single left-to-right scan.
//
// A new cursor must be used for every independent scan: windows and calls never share one.
type Cursor struct {
	units   []string
	unit    int
	offset  int
	pending *Match
	nextID  int
}

// NewCursor creates a cursor at the start of the given units.
func NewCursor(units []string) *Cursor {
	return &Cursor{units: units}
}

func (c *Cursor) nextToken() (Match, bool) {
	for c.unit < len(c.units) {
		idx := strings.Index(c.units[c.unit][c.offset:], Token)
		if idx >= 0 {
			m := Match{Unit: c.unit, Offset: c.offset + idx}
			c.offset = m.End()
			return m, true
		}
		c.unit++
		c.offset = 0
	}
	return Match{}, false
}

func (c *Cursor) isToken(m Match) bool {
	if m.Unit < 0 || m.Unit >= len(c.units) {
		return false
	}
	text := c.units[m.Unit]
	return m.Offset >= 0 && m.End() <= len(text) && text[m.Offset:m.End()] == Token
}

// Next returns the next accepted region, or false when the units are exhausted.
func (c *Cursor) Next(excluded Excluder) (Region, bool) {
	for {
		m, ok := c.nextToken()
		if !ok {
			return Region{}, false
		}
		if c.pending == nil {
			c.pending = &m
			continue
		}
		open := *c.pending
		c.pending = nil
		if !c.isToken(open) || !c.isToken(m) {
			continue
		} else if excluded != nil && (excluded(open) || excluded(m)) {
			continue
		}
		region := Region{ID: c.nextID, Open: open, Close: m}
		c.nextID++
		return region, true
	}
}

// ScanUnits pairs delimiter tokens across the given units from left to right.
//
// Tokens are only found inside a single unit. Each range over the returned sequence
// starts a fresh scan.
func ScanUnits(units []string, excluded Excluder) iter.Seq[Region] {
	return func(yield func(Region) bool) {
		cursor := NewCursor(units)
		for {
			region, ok := cursor.Next(excluded)
			if !ok || !yield(region) {
				return
			}
		}
	}
}

// Scan is ScanUnits for a single unit of text.
func Scan(text string, excluded Excluder) iter.Seq[Region] {
	return ScanUnits([]string{text}, excluded)
}

// Split partitions text into pieces that are either exactly Token or contain no Token.
//
// Joining the pieces returns the input unchanged.
func Split(text string) []string {
	if text == "" {
		return nil
	}
	var pieces []string
	for {
		idx := strings.Index(text, Token)
		if idx < 0 {
			break
		}
		if idx > 0 {
			pieces = append(pieces, text[:idx])
		}
		pieces = append(pieces, Token)
		text = text[idx+TokenLen:]
	}
	if len(text) > 0 {
		pieces = append(pieces, text)
	}
	return pieces
}
