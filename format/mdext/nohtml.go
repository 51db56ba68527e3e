// Copyright (c) 2026 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package mdext

import (
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

type extEscapeHTML struct{}
type escapingHTMLRenderer struct{}

// EscapeHTML is an extension that renders raw HTML in the input as escaped text.
//
// The preview server enables it for untrusted input so that submitted markup can't
// inject elements next to the spoiler wrappers.
var EscapeHTML goldmark.Extender = &extEscapeHTML{}

func (e *extEscapeHTML) Extend(m goldmark.Markdown) {
	m.Renderer().AddOptions(renderer.WithNodeRenderers(util.Prioritized(&escapingHTMLRenderer{}, 0)))
}

func (r *escapingHTMLRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindHTMLBlock, r.renderHTMLBlock)
	reg.Register(ast.KindRawHTML, r.renderRawHTML)
}

func writeEscapedSegments(w util.BufWriter, source []byte, segments *text.Segments) {
	for i := 0; i < segments.Len(); i++ {
		segment := segments.At(i)
		html.DefaultWriter.RawWrite(w, segment.Value(source))
	}
}

func (r *escapingHTMLRenderer) renderRawHTML(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if entering {
		writeEscapedSegments(w, source, node.(*ast.RawHTML).Segments)
	}
	return ast.WalkSkipChildren, nil
}

func (r *escapingHTMLRenderer) renderHTMLBlock(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	n := node.(*ast.HTMLBlock)
	if entering {
		writeEscapedSegments(w, source, n.Lines())
	} else if n.HasClosure() {
		html.DefaultWriter.RawWrite(w, n.ClosureLine.Value(source))
	}
	return ast.WalkContinue, nil
}
