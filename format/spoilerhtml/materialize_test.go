// Copyright (c) 2026 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package spoilerhtml_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"maunium.net/go/mauspoiler/format"
	"maunium.net/go/mauspoiler/format/spoilerhtml"
)

func parse(t *testing.T, input string) *html.Node {
	root, err := format.ParseHTML(input)
	require.NoError(t, err)
	return root
}

type materializeTest struct {
	output  string
	regions int
}

var materializeTests = map[string]materializeTest{
	"<p>plain ||secret|| text</p>": {
		`<p>plain <span class="spoiler">secret</span> text</p>`, 1,
	},
	"<p>||a|| and ||b||</p>": {
		`<p><span class="spoiler">a</span> and <span class="spoiler">b</span></p>`, 2,
	},
	"<p>||unterminated</p>": {
		"<p>||unterminated</p>", 0,
	},
	"<p><code>||not-a-spoiler||</code></p>": {
		"<p><code>||not-a-spoiler||</code></p>", 0,
	},
	"<p>before ||||after</p>": {
		`<p>before <span class="spoiler"></span>after</p>`, 1,
	},
	"<p>||a <em>b</em> c||</p>": {
		`<p><span class="spoiler">a <em>b</em> c</span></p>`, 1,
	},
	"<p>x <em>||y||</em></p>": {
		`<p>x <em><span class="spoiler">y</span></em></p>`, 1,
	},
	"<p>||a <em>b|| c</em></p>": {
		"<p>||a <em>b|| c</em></p>", 0,
	},
	"<p>a ||b|| c ||</p>": {
		`<p>a <span class="spoiler">b</span> c ||</p>`, 1,
	},
	"<ul><li>||one||</li><li>two||</li></ul>": {
		`<ul><li><span class="spoiler">one</span></li><li>two||</li></ul>`, 1,
	},
	"<pre>||code block||</pre>": {
		"<pre>||code block||</pre>", 0,
	},
	"<p><kbd>||k||</kbd> <samp>||s||</samp></p>": {
		"<p><kbd>||k||</kbd> <samp>||s||</samp></p>", 0,
	},
	`<p><span class="math" data-mx-maths="x"><code>||x||</code></span></p>`: {
		`<p><span class="math" data-mx-maths="x"><code>||x||</code></span></p>`, 0,
	},
	`<p><span data-mx-spoiler="">||inner||</span></p>`: {
		`<p><span data-mx-spoiler="">||inner||</span></p>`, 0,
	},
	"<table><tbody><tr><td>||cell||</td></tr></tbody></table>": {
		`<table><tbody><tr><td><span class="spoiler">cell</span></td></tr></tbody></table>`, 1,
	},
	"<h2>||title||</h2><blockquote>||quote||</blockquote>": {
		`<h2><span class="spoiler">title</span></h2><blockquote><span class="spoiler">quote</span></blockquote>`, 2,
	},
	"<p>a &amp; ||b &lt; c||</p>": {
		`<p>a &amp; <span class="spoiler">b &lt; c</span></p>`, 1,
	},
	"<p>a <u>||x||</u> b</p>": {
		`<p>a <u><span class="spoiler">x</span></u> b</p>`, 1,
	},
	"<p>a <span>||x||</span> b</p>": {
		`<p>a <span><span class="spoiler">x</span></span> b</p>`, 1,
	},
	"<p>a <sup>||x||</sup> b</p>": {
		`<p>a <sup><span class="spoiler">x</span></sup> b</p>`, 1,
	},
	"<p><u><sub>||deep||</sub></u></p>": {
		`<p><u><sub><span class="spoiler">deep</span></sub></u></p>`, 1,
	},
	"<p>||a <u>b|| c</u></p>": {
		"<p>||a <u>b|| c</u></p>", 0,
	},
	"<p>||a <u>||b||</u> c||</p>": {
		`<p><span class="spoiler">a <u>||b||</u> c</span></p>`, 1,
	},
	"<blockquote><div>||x||</div></blockquote>": {
		`<blockquote><div><span class="spoiler">x</span></div></blockquote>`, 1,
	},
}

func TestMaterializeAll(t *testing.T) {
	for input, expected := range materializeTests {
		root := parse(t, input)
		listeners := spoilerhtml.NewListeners()
		count := spoilerhtml.NewMaterializer(listeners).MaterializeAll(root)
		assert.Equal(t, expected.regions, count, input)
		assert.Equal(t, expected.output, format.RenderHTML(root), input)
		assert.Equal(t, expected.regions, listeners.Len(), input)
	}
}

func TestMaterialize_RawHTMLInline(t *testing.T) {
	root, err := format.RenderMarkdown("a <u>||x||</u> b", true)
	require.NoError(t, err)
	assert.Equal(t, 1, spoilerhtml.NewMaterializer(spoilerhtml.NewListeners()).MaterializeAll(root))
	assert.Equal(t, `<p>a <u><span class="spoiler">x</span></u> b</p>`, strings.TrimSpace(format.RenderHTML(root)))
}

func TestMaterialize_RoundTrip(t *testing.T) {
	for input := range materializeTests {
		root := parse(t, input)
		original := format.RenderHTML(root)
		listeners := spoilerhtml.NewListeners()
		mat := spoilerhtml.NewMaterializer(listeners)
		created := mat.MaterializeAll(root)
		removed := mat.Unmaterialize(root)
		assert.Equal(t, created, removed, input)
		assert.Equal(t, original, format.RenderHTML(root), input)
		assert.Zero(t, listeners.Len(), input)
	}
}

func TestMaterialize_Idempotent(t *testing.T) {
	for input, expected := range materializeTests {
		root := parse(t, input)
		mat := spoilerhtml.NewMaterializer(spoilerhtml.NewListeners())
		mat.MaterializeAll(root)
		assert.Zero(t, mat.MaterializeAll(root), input)
		assert.Equal(t, expected.output, format.RenderHTML(root), input)
	}
}

func TestMaterialize_SplitTextNodes(t *testing.T) {
	root := parse(t, "<p></p>")
	p := root.FirstChild
	for _, data := range []string{"a |", "|b", "|", "| c"} {
		p.AppendChild(&html.Node{Type: html.TextNode, Data: data})
	}
	count := spoilerhtml.NewMaterializer(spoilerhtml.NewListeners()).Materialize(p)
	assert.Equal(t, 1, count)
	assert.Equal(t, `<p>a <span class="spoiler">b</span> c</p>`, format.RenderHTML(root))
}

func TestMaterialize_Toggle(t *testing.T) {
	root := parse(t, "<p>||a <em>b</em>|| and ||c||</p>")
	listeners := spoilerhtml.NewListeners()
	require.Equal(t, 2, spoilerhtml.NewMaterializer(listeners).MaterializeAll(root))

	p := root.FirstChild
	first := p.FirstChild
	second := p.LastChild
	require.True(t, spoilerhtml.IsWrapper(first))
	require.True(t, spoilerhtml.IsWrapper(second))

	em := first.LastChild
	require.Equal(t, atom.Em, em.DataAtom)
	assert.True(t, listeners.Activate(em.FirstChild))
	assert.True(t, spoilerhtml.HasClass(first, spoilerhtml.RevealedClass))
	assert.False(t, spoilerhtml.HasClass(second, spoilerhtml.RevealedClass))
	assert.Equal(t, `<p><span class="spoiler spoiler-revealed">a <em>b</em></span> and <span class="spoiler">c</span></p>`, format.RenderHTML(root))

	assert.True(t, listeners.Activate(first))
	assert.False(t, spoilerhtml.HasClass(first, spoilerhtml.RevealedClass))
	assert.False(t, listeners.Activate(p))
}

func TestUnmaterialize_Revealed(t *testing.T) {
	root := parse(t, "<p>x ||y|| z</p>")
	listeners := spoilerhtml.NewListeners()
	mat := spoilerhtml.NewMaterializer(listeners)
	mat.MaterializeAll(root)
	listeners.Activate(root.FirstChild.FirstChild.NextSibling)
	assert.Equal(t, 1, mat.Unmaterialize(root))
	assert.Equal(t, "<p>x ||y|| z</p>", format.RenderHTML(root))
	assert.Zero(t, listeners.Len())
}

func TestMaterialize_Markdown(t *testing.T) {
	tests := map[string]string{
		"plain ||secret|| text":  `<p>plain <span class="spoiler">secret</span> text</p>`,
		"`||not-a-spoiler||`":    "<p><code>||not-a-spoiler||</code></p>",
		"**||bold||** ||plain||": `<p><strong><span class="spoiler">bold</span></strong> <span class="spoiler">plain</span></p>`,
		"$||math||$ ||x||":       `<p><span class="math" data-mx-maths="||math||"><code>||math||</code></span> <span class="spoiler">x</span></p>`,
		"||unterminated":         "<p>||unterminated</p>",
		"||||":                   `<p><span class="spoiler"></span></p>`,
	}
	for markdown, expected := range tests {
		root, err := format.RenderMarkdown(markdown, false)
		require.NoError(t, err)
		spoilerhtml.NewMaterializer(spoilerhtml.NewListeners()).MaterializeAll(root)
		assert.Equal(t, expected, strings.TrimSpace(format.RenderHTML(root)), markdown)
	}
}

func TestNewMaterializer_NilEvents(t *testing.T) {
	assert.Panics(t, func() {
		spoilerhtml.NewMaterializer(nil)
	})
}
