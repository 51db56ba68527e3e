// Copyright (c) 2026 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package format_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maunium.net/go/mauspoiler/format"
	"maunium.net/go/mauspoiler/format/spoilerhtml"
)

func render(t *testing.T, markdown string, allowHTML bool) string {
	root, err := format.RenderMarkdown(markdown, allowHTML)
	require.NoError(t, err)
	return strings.ReplaceAll(format.RenderHTML(root), "\n", "")
}

var renderTests = map[string]string{
	"hello ||world||":         "<p>hello ||world||</p>",
	"`||code||`":              "<p><code>||code||</code></p>",
	"$x^2$":                   `<p><span class="math" data-mx-maths="x^2"><code>x^2</code></span></p>`,
	"$$\nx ||y||\n$$":         `<div class="math" data-mx-maths="x ||y||"><code>x ||y||</code></div>`,
	"visible %%hidden%% text": "<p>visible  text</p>",
	"~~gone~~":                "<p><del>gone</del></p>",
	"* ||foo||":               "<ul><li>||foo||</li></ul>",
}

func TestRenderMarkdown(t *testing.T) {
	for markdown, expected := range renderTests {
		assert.Equal(t, expected, render(t, markdown, false), markdown)
	}
}

func TestRenderMarkdown_EscapeHTML(t *testing.T) {
	assert.Equal(t, "<p>&lt;b&gt;||x||&lt;/b&gt;</p>", render(t, "<b>||x||</b>", false))
	assert.Equal(t, "<p><b>||x||</b></p>", render(t, "<b>||x||</b>", true))
}

func TestUnwrapSingleParagraph(t *testing.T) {
	assert.Equal(t, "hello", format.UnwrapSingleParagraph("<p>hello</p>\n"))
	assert.Equal(t, "<p>a</p><p>b</p>", format.UnwrapSingleParagraph("<p>a</p><p>b</p>"))
}

func TestHTMLToText_MasksSpoilers(t *testing.T) {
	root, err := format.RenderMarkdown("plain ||secret words|| and **||bold||**", false)
	require.NoError(t, err)
	listeners := spoilerhtml.NewListeners()
	spoilerhtml.NewMaterializer(listeners).MaterializeAll(root)

	assert.Equal(t, "plain ██████ █████ and **████**", format.HTMLToText(root))
	assert.Equal(t, "plain ||secret words|| and **||bold||**", format.HTMLToMarkdown(root))

	wrapper := root.FirstChild.FirstChild.NextSibling
	require.True(t, spoilerhtml.IsWrapper(wrapper))
	listeners.Activate(wrapper)
	assert.Equal(t, "plain secret words and **████**", format.HTMLToText(root))
}

func TestHTMLToText_Structure(t *testing.T) {
	root, err := format.RenderMarkdown("# Title\n\n> quoted ||x||\n\n1. one\n2. two\n\n```go\ncode\n```", false)
	require.NoError(t, err)
	spoilerhtml.NewMaterializer(spoilerhtml.NewListeners()).MaterializeAll(root)
	assert.Equal(t, "# Title\n\n> quoted █\n\n1. one\n2. two\n\n```go\ncode\n```", format.HTMLToText(root))
}
