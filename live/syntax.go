// Copyright (c) 2026 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package live

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"maunium.net/go/mauspoiler/format"
)

// SyntaxNode is a node of the document's syntax tree.
type SyntaxNode interface {
	// Type returns the name of the node type, e.g. "CodeSpan".
	Type() string
	// Parent returns the enclosing node, or nil at the root.
	Parent() SyntaxNode
}

// SyntaxResolver maps buffer positions to the innermost syntax node containing them.
type SyntaxResolver interface {
	Resolve(pos int) SyntaxNode
}

var excludedTypeNames = []string{"code", "math", "comment", "html"}

// IsExcludedType reports whether a node type name belongs to a code, math, comment or raw markup category.
func IsExcludedType(name string) bool {
	name = strings.ToLower(name)
	for _, excluded := range excludedTypeNames {
		if strings.Contains(name, excluded) {
			return true
		}
	}
	return false
}

// IsExcludedAt walks from the innermost node at pos up to the root and reports whether any of them is excluded.
func IsExcludedAt(syntax SyntaxResolver, pos int) bool {
	for node := syntax.Resolve(pos); node != nil; node = node.Parent() {
		if IsExcludedType(node.Type()) {
			return true
		}
	}
	return false
}

type markdownNode struct {
	node     ast.Node
	parent   *markdownNode
	children []*markdownNode
	start    int
	end      int
}

func (mn *markdownNode) Type() string {
	return mn.node.Kind().String()
}

func (mn *markdownNode) Parent() SyntaxNode {
	if mn.parent == nil {
		return nil
	}
	return mn.parent
}

func (mn *markdownNode) contains(pos int) bool {
	return mn.start <= pos && pos < mn.end
}

func (mn *markdownNode) extend(seg text.Segment) {
	if seg.Start >= seg.Stop {
		return
	}
	if mn.end <= mn.start {
		mn.start, mn.end = seg.Start, seg.Stop
		return
	}
	mn.start = min(mn.start, seg.Start)
	mn.end = max(mn.end, seg.Stop)
}

func (mn *markdownNode) extendSegments(segments *text.Segments) {
	if segments == nil {
		return
	}
	for i := 0; i < segments.Len(); i++ {
		mn.extend(segments.At(i))
	}
}

func newMarkdownNode(node ast.Node, parent *markdownNode) *markdownNode {
	mn := &markdownNode{node: node, parent: parent}
	switch typed := node.(type) {
	case *ast.Text:
		mn.extend(typed.Segment)
	case *ast.RawHTML:
		mn.extendSegments(typed.Segments)
	case *ast.HTMLBlock:
		mn.extendSegments(typed.Lines())
		if typed.HasClosure() {
			mn.extend(typed.ClosureLine)
		}
	default:
		if node.Type() == ast.TypeBlock {
			mn.extendSegments(node.Lines())
		}
	}
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		childNode := newMarkdownNode(child, mn)
		mn.children = append(mn.children, childNode)
		if childNode.end > childNode.start {
			mn.extend(text.NewSegment(childNode.start, childNode.end))
		}
	}
	return mn
}

// BlockResolver is implemented by syntax resolvers that know where the block-level elements of the buffer are.
// Delimiters are only paired within one block.
type BlockResolver interface {
	// Blocks returns the source ranges of the innermost blocks overlapping [from, to), clipped to it
	// and in buffer order.
	Blocks(from, to int) []Window
}

func (mn *markdownNode) isLeafBlock() bool {
	if mn.parent == nil || mn.node.Type() != ast.TypeBlock {
		return false
	}
	for _, child := range mn.children {
		if child.node.Type() == ast.TypeBlock {
			return false
		}
	}
	return true
}

// MarkdownSyntax is a SyntaxResolver backed by a goldmark syntax tree of the whole buffer.
type MarkdownSyntax struct {
	root *markdownNode
}

var _ SyntaxResolver = (*MarkdownSyntax)(nil)
var _ BlockResolver = (*MarkdownSyntax)(nil)

var syntaxParser = goldmark.New(format.Extensions).Parser()

// ParseMarkdown parses a markdown source into a resolvable syntax tree.
func ParseMarkdown(source []byte) *MarkdownSyntax {
	doc := syntaxParser.Parse(text.NewReader(source))
	root := newMarkdownNode(doc, nil)
	root.start, root.end = 0, len(source)
	return &MarkdownSyntax{root: root}
}

// Resolve returns the innermost node whose source range contains pos.
func (ms *MarkdownSyntax) Resolve(pos int) SyntaxNode {
	node := ms.root
	if !node.contains(pos) {
		return nil
	}
descend:
	for {
		for _, child := range node.children {
			if child.contains(pos) {
				node = child
				continue descend
			}
		}
		return node
	}
}

func (ms *MarkdownSyntax) Blocks(from, to int) []Window {
	var blocks []Window
	var walk func(mn *markdownNode)
	walk = func(mn *markdownNode) {
		if mn.end <= from || mn.start >= to {
			return
		} else if mn.isLeafBlock() {
			blocks = append(blocks, Window{From: max(mn.start, from), To: min(mn.end, to)})
			return
		}
		for _, child := range mn.children {
			walk(child)
		}
	}
	walk(ms.root)
	return blocks
}
