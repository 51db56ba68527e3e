// Copyright (c) 2026 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package mdext

import (
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// KindComment is the node kind of %%hidden%% comments.
var KindComment = ast.NewNodeKind("Comment")

type commentNode struct {
	ast.BaseInline
}

func (n *commentNode) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, nil, nil)
}

func (n *commentNode) Kind() ast.NodeKind {
	return KindComment
}

type commentDelimiterProcessor struct{}

var defaultCommentDelimiterProcessor = &commentDelimiterProcessor{}

func (p *commentDelimiterProcessor) IsDelimiter(b byte) bool {
	return b == '%'
}

func (p *commentDelimiterProcessor) CanOpenCloser(opener, closer *parser.Delimiter) bool {
	return opener.Char == closer.Char
}

func (p *commentDelimiterProcessor) OnMatch(consumes int) ast.Node {
	return &commentNode{}
}

type commentParser struct{}

var defaultCommentParser = &commentParser{}

// NewCommentParser returns a parser for %%comments%%. Only doubled percent signs are delimiters.
func NewCommentParser() parser.InlineParser {
	return defaultCommentParser
}

func (s *commentParser) Trigger() []byte {
	return []byte{'%'}
}

func (s *commentParser) Parse(parent ast.Node, block text.Reader, pc parser.Context) ast.Node {
	before := block.PrecendingCharacter()
	line, segment := block.PeekLine()
	node := parser.ScanDelimiter(line, before, 2, defaultCommentDelimiterProcessor)
	if node == nil || node.OriginalLength != 2 {
		return nil
	}
	node.Segment = segment.WithStop(segment.Start + node.OriginalLength)
	block.Advance(node.OriginalLength)
	pc.PushDelimiter(node)
	return node
}

func (s *commentParser) CloseBlock(parent ast.Node, pc parser.Context) {}

type commentHTMLRenderer struct{}

func (r *commentHTMLRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindComment, r.renderComment)
}

func (r *commentHTMLRenderer) renderComment(w util.BufWriter, source []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	return ast.WalkSkipChildren, nil
}

type extComment struct{}

// Comment is an extension that hides %%comments%% from the rendered output.
var Comment goldmark.Extender = &extComment{}

func (e *extComment) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithInlineParsers(
		util.Prioritized(NewCommentParser(), 500),
	))
	m.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(&commentHTMLRenderer{}, 500),
	))
}
