// Copyright (c) 2026 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package format

import (
	"fmt"
	"slices"
	"strings"
	"unicode"

	"golang.org/x/net/html"

	"maunium.net/go/mauspoiler/format/spoilerhtml"
)

type TagStack []string

func (ts TagStack) Has(tag string) bool {
	return slices.Contains(ts, tag)
}

type Context struct {
	TagStack TagStack

	PreserveWhitespace bool
}

func NewContext() Context {
	return Context{
		TagStack: make(TagStack, 0, 4),
	}
}

func (ctx Context) WithTag(tag string) Context {
	ctx.TagStack = append(slices.Clip(ctx.TagStack), tag)
	return ctx
}

func (ctx Context) WithWhitespace() Context {
	ctx.PreserveWhitespace = true
	return ctx
}

type TextConverter func(string, Context) string
type SpoilerConverter func(text string, revealed bool, ctx Context) string
type LinkConverter func(text, href string, ctx Context) string
type CodeBlockConverter func(code, language string, ctx Context) string

// MaskSpoiler hides the text of unrevealed spoilers, keeping whitespace so that line lengths stay the same.
func MaskSpoiler(text string, revealed bool, _ Context) string {
	if revealed {
		return text
	}
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return r
		}
		return '█'
	}, text)
}

// HTMLParser converts rendered trees into text.
type HTMLParser struct {
	Newline                 string
	HorizontalLine          string
	BoldConverter           TextConverter
	ItalicConverter         TextConverter
	StrikethroughConverter  TextConverter
	LinkConverter           LinkConverter
	SpoilerConverter        SpoilerConverter
	MonospaceBlockConverter CodeBlockConverter
	MonospaceConverter      TextConverter
}

// TaggedString is a string that also contains a HTML tag.
type TaggedString struct {
	string
	tag string
}

func (parser *HTMLParser) listToString(node *html.Node, ctx Context) string {
	ordered := node.Data == "ol"
	counter := 1
	var children []string
	for _, child := range parser.nodeToTaggedStrings(node.FirstChild, ctx) {
		if child.tag != "li" {
			continue
		}
		prefix := "* "
		if ordered {
			prefix = fmt.Sprintf("%d. ", counter)
		}
		counter++
		children = append(children, prefix+strings.ReplaceAll(child.string, "\n", "\n"+strings.Repeat(" ", len(prefix))))
	}
	return strings.Join(children, "\n")
}

func (parser *HTMLParser) basicFormatToString(node *html.Node, ctx Context) string {
	str := parser.nodeToTagAwareString(node.FirstChild, ctx)
	switch node.Data {
	case "b", "strong":
		if parser.BoldConverter != nil {
			return parser.BoldConverter(str, ctx)
		}
		return fmt.Sprintf("**%s**", str)
	case "i", "em":
		if parser.ItalicConverter != nil {
			return parser.ItalicConverter(str, ctx)
		}
		return fmt.Sprintf("_%s_", str)
	case "s", "del", "strike":
		if parser.StrikethroughConverter != nil {
			return parser.StrikethroughConverter(str, ctx)
		}
		return fmt.Sprintf("~~%s~~", str)
	case "tt", "code":
		if parser.MonospaceConverter != nil {
			return parser.MonospaceConverter(str, ctx)
		}
		surround := strings.Repeat("`", longestSequence(str, '`')+1)
		return fmt.Sprintf("%s%s%s", surround, str, surround)
	}
	return str
}

func longestSequence(in string, of rune) int {
	current, longest := 0, 0
	for _, chr := range in {
		if chr == of {
			current++
			longest = max(longest, current)
		} else {
			current = 0
		}
	}
	return longest
}

func (parser *HTMLParser) spanToString(node *html.Node, ctx Context) string {
	if spoilerhtml.HasAttribute(node, "data-mx-maths") {
		return fmt.Sprintf("$%s$", spoilerhtml.GetAttribute(node, "data-mx-maths"))
	}
	str := parser.nodeToTagAwareString(node.FirstChild, ctx)
	if spoilerhtml.IsWrapper(node) {
		revealed := spoilerhtml.HasClass(node, spoilerhtml.RevealedClass)
		if parser.SpoilerConverter != nil {
			return parser.SpoilerConverter(str, revealed, ctx)
		}
		return fmt.Sprintf("||%s||", str)
	}
	return str
}

func (parser *HTMLParser) linkToString(node *html.Node, ctx Context) string {
	str := parser.nodeToTagAwareString(node.FirstChild, ctx)
	href := spoilerhtml.GetAttribute(node, "href")
	if len(href) == 0 {
		return str
	} else if parser.LinkConverter != nil {
		return parser.LinkConverter(str, href, ctx)
	} else if str == href {
		return str
	}
	return fmt.Sprintf("%s (%s)", str, href)
}

func (parser *HTMLParser) preToString(node *html.Node, ctx Context) string {
	var preStr, language string
	if node.FirstChild != nil && node.FirstChild.Type == html.ElementNode && node.FirstChild.Data == "code" {
		language, _ = strings.CutPrefix(spoilerhtml.GetAttribute(node.FirstChild, "class"), "language-")
		preStr = parser.nodeToString(node.FirstChild.FirstChild, ctx.WithWhitespace())
	} else {
		preStr = parser.nodeToString(node.FirstChild, ctx.WithWhitespace())
	}
	if parser.MonospaceBlockConverter != nil {
		return parser.MonospaceBlockConverter(preStr, language, ctx)
	}
	if len(preStr) == 0 || preStr[len(preStr)-1] != '\n' {
		preStr += "\n"
	}
	return fmt.Sprintf("```%s\n%s```", language, preStr)
}

func (parser *HTMLParser) tagToString(node *html.Node, ctx Context) string {
	ctx = ctx.WithTag(node.Data)
	switch node.Data {
	case "blockquote":
		lines := strings.Split(parser.nodeToTagAwareString(node.FirstChild, ctx), "\n")
		for i, line := range lines {
			lines[i] = "> " + line
		}
		return strings.Join(lines, "\n")
	case "ol", "ul":
		return parser.listToString(node, ctx)
	case "h1", "h2", "h3", "h4", "h5", "h6":
		return strings.Repeat("#", int(node.Data[1]-'0')) + " " + parser.nodeToString(node.FirstChild, ctx)
	case "br":
		return parser.Newline
	case "hr":
		return parser.HorizontalLine
	case "b", "strong", "i", "em", "s", "strike", "del", "tt", "code":
		return parser.basicFormatToString(node, ctx)
	case "span", "div":
		return parser.spanToString(node, ctx)
	case "a":
		return parser.linkToString(node, ctx)
	case "pre":
		return parser.preToString(node, ctx)
	default:
		return parser.nodeToTagAwareString(node.FirstChild, ctx)
	}
}

func (parser *HTMLParser) singleNodeToString(node *html.Node, ctx Context) TaggedString {
	switch node.Type {
	case html.TextNode:
		data := node.Data
		if !ctx.PreserveWhitespace {
			data = strings.ReplaceAll(data, "\n", "")
		}
		return TaggedString{data, "text"}
	case html.ElementNode:
		return TaggedString{parser.tagToString(node, ctx), node.Data}
	case html.DocumentNode:
		return TaggedString{parser.nodeToTagAwareString(node.FirstChild, ctx), "html"}
	default:
		return TaggedString{"", "unknown"}
	}
}

func (parser *HTMLParser) nodeToTaggedStrings(node *html.Node, ctx Context) (strs []TaggedString) {
	for ; node != nil; node = node.NextSibling {
		strs = append(strs, parser.singleNodeToString(node, ctx))
	}
	return
}

var BlockTags = []string{"p", "h1", "h2", "h3", "h4", "h5", "h6", "ol", "ul", "pre", "blockquote", "div", "hr", "table"}

func (parser *HTMLParser) nodeToTagAwareString(node *html.Node, ctx Context) string {
	var output strings.Builder
	for _, str := range parser.nodeToTaggedStrings(node, ctx) {
		if slices.Contains(BlockTags, str.tag) {
			output.WriteString("\n" + str.string + "\n")
		} else {
			output.WriteString(str.string)
		}
	}
	return strings.TrimSpace(output.String())
}

func (parser *HTMLParser) nodeToString(node *html.Node, ctx Context) string {
	var output strings.Builder
	for ; node != nil; node = node.NextSibling {
		output.WriteString(parser.singleNodeToString(node, ctx).string)
	}
	return output.String()
}

// Parse converts the children of a rendered root into text using the settings in this parser.
// The tree isn't modified.
func (parser *HTMLParser) Parse(root *html.Node, ctx Context) string {
	return parser.nodeToTagAwareString(root.FirstChild, ctx)
}

// HTMLToText converts a rendered tree into text, masking spoilers that haven't been revealed.
func HTMLToText(root *html.Node) string {
	return (&HTMLParser{
		Newline:          "\n",
		HorizontalLine:   "\n---\n",
		SpoilerConverter: MaskSpoiler,
	}).Parse(root, NewContext())
}

// HTMLToMarkdown converts a rendered tree into markdown, turning spoiler wrappers back into ||delimited|| text.
func HTMLToMarkdown(root *html.Node) string {
	return (&HTMLParser{
		Newline:        "\n",
		HorizontalLine: "\n---\n",
		LinkConverter: func(text, href string, ctx Context) string {
			if text == href {
				return text
			}
			return fmt.Sprintf("[%s](%s)", text, href)
		},
	}).Parse(root, NewContext())
}
