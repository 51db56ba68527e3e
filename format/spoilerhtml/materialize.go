// Copyright (c) 2026 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package spoilerhtml materializes ||spoiler|| markup in rendered HTML trees into revealable
// wrapper elements, and reverses the transformation.
package spoilerhtml

import (
	"fmt"
	"slices"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"maunium.net/go/mauspoiler/delim"
)

const (
	// WrapperClass marks elements created by Materialize.
	WrapperClass = "spoiler"
	// RevealedClass is toggled on a wrapper when it's activated.
	RevealedClass = "spoiler-revealed"
)

// DefaultBoundaries are the element kinds that are scanned independently of each other.
var DefaultBoundaries = []atom.Atom{
	atom.P, atom.Li,
	atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6,
	atom.Blockquote,
	atom.Em, atom.Strong, atom.B, atom.I,
	atom.A,
	atom.Th, atom.Td,
	atom.Del,
}

// Materializer wraps spoiler regions found inside boundary elements.
//
// Calls must be serialized per boundary element. Calling Materialize again on an already
// processed boundary is a no-op.
type Materializer struct {
	Boundaries []atom.Atom
	Events     EventSource
	Log        *zerolog.Logger
}

// NewMaterializer creates a materializer with the default boundaries that attaches toggle handlers to events.
func NewMaterializer(events EventSource) *Materializer {
	if events == nil {
		panic(fmt.Errorf("spoilerhtml: materializer needs an event source"))
	}
	return &Materializer{
		Boundaries: DefaultBoundaries,
		Events:     events,
	}
}

func (m *Materializer) log() *zerolog.Logger {
	if m.Log == nil {
		nop := zerolog.Nop()
		return &nop
	}
	return m.Log
}

// IsBoundary reports whether the node is one of the configured boundary elements.
func (m *Materializer) IsBoundary(node *html.Node) bool {
	return node.Type == html.ElementNode && slices.Contains(m.Boundaries, node.DataAtom)
}

// textRun is a maximal sequence of adjacent text node children.
type textRun struct {
	nodes  []*html.Node
	pieces []string
}

type piecePos struct {
	run   int
	piece int
}

// snapshot collects the direct text children of a boundary without touching the tree.
func snapshot(boundary *html.Node) []*textRun {
	var runs []*textRun
	var current *textRun
	for child := boundary.FirstChild; child != nil; child = child.NextSibling {
		if child.Type != html.TextNode {
			current = nil
			continue
		}
		if current == nil {
			current = &textRun{}
			runs = append(runs, current)
		}
		current.nodes = append(current.nodes, child)
	}
	for _, run := range runs {
		var text strings.Builder
		for _, node := range run.nodes {
			text.WriteString(node.Data)
		}
		run.pieces = delim.Split(text.String())
	}
	return runs
}

// replace swaps the original nodes of a run for one text node per piece.
func (run *textRun) replace(parent *html.Node) []*html.Node {
	anchor := run.nodes[len(run.nodes)-1].NextSibling
	for _, node := range run.nodes {
		parent.RemoveChild(node)
	}
	created := make([]*html.Node, len(run.pieces))
	for i, piece := range run.pieces {
		created[i] = newText(piece)
		parent.InsertBefore(created[i], anchor)
	}
	return created
}

// Materialize wraps every accepted spoiler region under the boundary and returns the number of
// wrappers created.
//
// The direct text children of the boundary are scanned together. Descendant elements that aren't
// boundaries themselves (like u, span or sup) are scanned as nested scopes of their own, so both
// delimiters of a region always share one parent.
func (m *Materializer) Materialize(boundary *html.Node) int {
	if boundary == nil || IsExcluded(boundary) {
		return 0
	}
	return m.materializeScope(boundary)
}

// rawTextElements never contain markup text.
var rawTextElements = []atom.Atom{atom.Script, atom.Style, atom.Textarea, atom.Title}

func (m *Materializer) materializeScope(scope *html.Node) int {
	count := m.materializeRuns(scope)
	// Elements that were moved into a wrapper are no longer children of the scope.
	for child := scope.FirstChild; child != nil; child = child.NextSibling {
		if child.Type != html.ElementNode || m.IsBoundary(child) || slices.Contains(rawTextElements, child.DataAtom) || IsExcluded(child) {
			continue
		}
		count += m.materializeScope(child)
	}
	return count
}

func (m *Materializer) materializeRuns(boundary *html.Node) int {
	runs := snapshot(boundary)

	var units []string
	var positions []piecePos
	for runIdx, run := range runs {
		for pieceIdx, piece := range run.pieces {
			units = append(units, piece)
			positions = append(positions, piecePos{run: runIdx, piece: pieceIdx})
		}
	}
	var regions []delim.Region
	touched := make(map[int]bool)
	for region := range delim.ScanUnits(units, nil) {
		regions = append(regions, region)
		touched[positions[region.Open.Unit].run] = true
		touched[positions[region.Close.Unit].run] = true
	}
	if len(regions) == 0 {
		return 0
	}

	created := make(map[int][]*html.Node, len(touched))
	for runIdx := range touched {
		created[runIdx] = runs[runIdx].replace(boundary)
	}
	nodeAt := func(unit int) *html.Node {
		pos := positions[unit]
		return created[pos.run][pos.piece]
	}
	count := 0
	for _, region := range regions {
		if m.wrap(boundary, nodeAt(region.Open.Unit), nodeAt(region.Close.Unit)) {
			count++
		}
	}
	m.log().Trace().
		Str("boundary", boundary.Data).
		Int("regions", count).
		Msg("Materialized spoilers")
	return count
}

func (m *Materializer) wrap(parent, openNode, closeNode *html.Node) bool {
	if openNode.Data != delim.Token || closeNode.Data != delim.Token || openNode.Parent != parent || closeNode.Parent != parent {
		m.log().Warn().
			Str("open", openNode.Data).
			Str("close", closeNode.Data).
			Msg("Delimiter nodes don't match the delimiter token, not materializing region")
		return false
	}
	wrapper := newWrapper()
	for node := openNode.NextSibling; node != closeNode; {
		next := node.NextSibling
		parent.RemoveChild(node)
		wrapper.AppendChild(node)
		node = next
	}
	parent.InsertBefore(wrapper, closeNode)
	parent.RemoveChild(openNode)
	parent.RemoveChild(closeNode)
	m.Events.On(wrapper, toggleRevealed)
	return true
}

func toggleRevealed(wrapper *html.Node) {
	ToggleClass(wrapper, RevealedClass)
}

// MaterializeAll materializes every boundary element under root, including root itself.
func (m *Materializer) MaterializeAll(root *html.Node) int {
	var boundaries []*html.Node
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if m.IsBoundary(node) {
			boundaries = append(boundaries, node)
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(root)
	count := 0
	for _, boundary := range boundaries {
		count += m.Materialize(boundary)
	}
	if count > 0 {
		m.log().Debug().
			Int("boundaries", len(boundaries)).
			Int("regions", count).
			Msg("Materialized spoilers in tree")
	}
	return count
}

func collectWrappers(root *html.Node) (wrappers []*html.Node) {
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.ElementNode && HasClass(node, WrapperClass) {
			wrappers = append(wrappers, node)
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(root)
	return
}

// Unmaterialize replaces every wrapper under root with the delimited literal text it was created from,
// detaching the toggle handlers. It returns the number of wrappers removed.
func (m *Materializer) Unmaterialize(root *html.Node) int {
	wrappers := collectWrappers(root)
	// Innermost first, so that a wrapper is never detached before its nested wrappers are processed.
	slices.Reverse(wrappers)
	count := 0
	for _, wrapper := range wrappers {
		m.Events.Off(wrapper)
		parent := wrapper.Parent
		if parent == nil {
			continue
		}
		parent.InsertBefore(newText(delim.Token), wrapper)
		for child := wrapper.FirstChild; child != nil; child = wrapper.FirstChild {
			wrapper.RemoveChild(child)
			parent.InsertBefore(child, wrapper)
		}
		parent.InsertBefore(newText(delim.Token), wrapper)
		parent.RemoveChild(wrapper)
		count++
	}
	if count > 0 {
		m.log().Debug().Int("regions", count).Msg("Unmaterialized spoilers")
	}
	return count
}
