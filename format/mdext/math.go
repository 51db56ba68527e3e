// Copyright (c) 2026 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package mdext

import (
	"bytes"
	"fmt"
	stdhtml "html"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// KindMath is the node kind of both inline and block math.
var KindMath = ast.NewNodeKind("Math")

type mathInline struct {
	ast.BaseInline
	display bool
}

func (n *mathInline) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, nil, nil)
}

func (n *mathInline) Kind() ast.NodeKind {
	return KindMath
}

type mathBlock struct {
	ast.BaseBlock
}

func (n *mathBlock) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, nil, nil)
}

func (n *mathBlock) Kind() ast.NodeKind {
	return KindMath
}

func (n *mathBlock) IsRaw() bool {
	return true
}

const mathChar = '$'

type mathDelimiterProcessor struct{}

var defaultMathDelimiterProcessor = &mathDelimiterProcessor{}

func (p *mathDelimiterProcessor) IsDelimiter(b byte) bool {
	return b == mathChar
}

func (p *mathDelimiterProcessor) CanOpenCloser(opener, closer *parser.Delimiter) bool {
	return opener.Char == closer.Char
}

func (p *mathDelimiterProcessor) OnMatch(consumes int) ast.Node {
	return &mathInline{display: consumes > 1}
}

type inlineMathParser struct{}

var defaultInlineMathParser = &inlineMathParser{}

// NewInlineMathParser returns a parser for $inline$ and $$display$$ math inside paragraphs.
func NewInlineMathParser() parser.InlineParser {
	return defaultInlineMathParser
}

func (s *inlineMathParser) Trigger() []byte {
	return []byte{mathChar}
}

func (s *inlineMathParser) Parse(parent ast.Node, block text.Reader, pc parser.Context) ast.Node {
	before := block.PrecendingCharacter()
	line, segment := block.PeekLine()
	node := parser.ScanDelimiter(line, before, 1, defaultMathDelimiterProcessor)
	if node == nil {
		return nil
	}
	node.Segment = segment.WithStop(segment.Start + node.OriginalLength)
	block.Advance(node.OriginalLength)
	pc.PushDelimiter(node)
	return node
}

func (s *inlineMathParser) CloseBlock(parent ast.Node, pc parser.Context) {}

type blockMathParser struct{}

var defaultBlockMathParser = &blockMathParser{}

// NewBlockMathParser returns a parser for $$ fenced math blocks.
func NewBlockMathParser() parser.BlockParser {
	return defaultBlockMathParser
}

var mathFenceKey = parser.NewContextKey()

type mathFence struct {
	indent int
	length int
	node   ast.Node
}

func (b *blockMathParser) Trigger() []byte {
	return []byte{mathChar}
}

func fenceLength(line []byte, pos int) int {
	i := pos
	for i < len(line) && line[i] == mathChar {
		i++
	}
	return i - pos
}

func (b *blockMathParser) Open(parent ast.Node, reader text.Reader, pc parser.Context) (ast.Node, parser.State) {
	line, _ := reader.PeekLine()
	pos := pc.BlockOffset()
	if pos < 0 || line[pos] != mathChar {
		return nil, parser.NoChildren
	}
	length := fenceLength(line, pos)
	if length < 2 {
		return nil, parser.NoChildren
	}
	// $$x$$ on a single line is inline display math, not a block.
	if rest := util.TrimRightSpace(line[pos+length:]); bytes.IndexByte(rest, mathChar) >= 0 {
		return nil, parser.NoChildren
	}
	node := &mathBlock{}
	pc.Set(mathFenceKey, &mathFence{indent: pos, length: length, node: node})
	return node, parser.NoChildren
}

func (b *blockMathParser) Continue(node ast.Node, reader text.Reader, pc parser.Context) parser.State {
	line, segment := reader.PeekLine()
	fence := pc.Get(mathFenceKey).(*mathFence)

	w, pos := util.IndentWidth(line, reader.LineOffset())
	if w < 4 {
		if length := fenceLength(line, pos); length >= fence.length && util.IsBlank(line[pos+length:]) {
			newline := 1
			if line[len(line)-1] != '\n' {
				newline = 0
			}
			reader.Advance(segment.Stop - segment.Start - newline + segment.Padding)
			return parser.Close
		}
	}
	pos, padding := util.IndentPositionPadding(line, reader.LineOffset(), segment.Padding, fence.indent)
	if pos < 0 {
		pos = max(util.FirstNonSpacePosition(line), 0)
		padding = 0
	}
	seg := text.NewSegmentPadding(segment.Start+pos, segment.Stop, padding)
	seg.ForceNewline = true
	node.Lines().Append(seg)
	reader.AdvanceAndSetPadding(segment.Stop-segment.Start-pos-1, padding)
	return parser.Continue | parser.NoChildren
}

func (b *blockMathParser) Close(node ast.Node, reader text.Reader, pc parser.Context) {
	if fence, ok := pc.Get(mathFenceKey).(*mathFence); ok && fence.node == node {
		pc.Set(mathFenceKey, nil)
	}
}

func (b *blockMathParser) CanInterruptParagraph() bool {
	return true
}

func (b *blockMathParser) CanAcceptIndentedLine() bool {
	return false
}

type mathHTMLRenderer struct {
	html.Config
}

// NewMathHTMLRenderer renders math nodes as escaped TeX inside a code element.
func NewMathHTMLRenderer(opts ...html.Option) renderer.NodeRenderer {
	r := &mathHTMLRenderer{
		Config: html.NewConfig(),
	}
	for _, opt := range opts {
		opt.SetHTMLOption(&r.Config)
	}
	return r
}

func (r *mathHTMLRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindMath, r.renderMath)
}

func mathSource(n ast.Node, source []byte) []byte {
	if block, ok := n.(*mathBlock); ok {
		var buf bytes.Buffer
		lines := block.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			buf.Write(line.Value(source))
		}
		return bytes.TrimRight(buf.Bytes(), "\n")
	}
	var buf bytes.Buffer
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Segment.Value(source))
		}
	}
	return buf.Bytes()
}

func (r *mathHTMLRenderer) renderMath(w util.BufWriter, source []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkSkipChildren, nil
	}
	tag := "span"
	switch typed := n.(type) {
	case *mathBlock:
		tag = "div"
	case *mathInline:
		if typed.display {
			tag = "div"
		}
	}
	tex := stdhtml.EscapeString(string(mathSource(n, source)))
	_, _ = fmt.Fprintf(w, `<%s class="math" data-mx-maths="%s"><code>%s</code></%s>`, tag, tex, strings.ReplaceAll(tex, "\n", "<br>"), tag)
	return ast.WalkSkipChildren, nil
}

type extMath struct{}

// Math is an extension that parses $inline$, $$display$$ and $$-fenced block math.
var Math goldmark.Extender = &extMath{}

func (e *extMath) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithInlineParsers(
		util.Prioritized(NewInlineMathParser(), 500),
	), parser.WithBlockParsers(
		util.Prioritized(NewBlockMathParser(), 850),
	))
	m.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(NewMathHTMLRenderer(), 500),
	))
}
