// Copyright (c) 2026 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package spoilerhtml

import (
	"slices"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

func maybeGetAttribute(node *html.Node, attribute string) (string, bool) {
	for _, attr := range node.Attr {
		if attr.Key == attribute {
			return attr.Val, true
		}
	}
	return "", false
}

// GetAttribute returns the value of an attribute, or an empty string if it isn't set.
func GetAttribute(node *html.Node, attribute string) string {
	val, _ := maybeGetAttribute(node, attribute)
	return val
}

// HasAttribute reports whether the node has the attribute at all, even with an empty value.
func HasAttribute(node *html.Node, attribute string) bool {
	_, ok := maybeGetAttribute(node, attribute)
	return ok
}

func setAttribute(node *html.Node, key, val string) {
	for i := range node.Attr {
		if node.Attr[i].Key == key {
			node.Attr[i].Val = val
			return
		}
	}
	node.Attr = append(node.Attr, html.Attribute{Key: key, Val: val})
}

func removeAttribute(node *html.Node, key string) {
	node.Attr = slices.DeleteFunc(node.Attr, func(attr html.Attribute) bool {
		return attr.Key == key
	})
}

// HasClass reports whether the class attribute of an element node contains the given token.
func HasClass(node *html.Node, class string) bool {
	if node == nil || node.Type != html.ElementNode {
		return false
	}
	return slices.Contains(strings.Fields(GetAttribute(node, "class")), class)
}

// AddClass adds a token to the class attribute if it's not there yet.
func AddClass(node *html.Node, class string) {
	classes := strings.Fields(GetAttribute(node, "class"))
	if slices.Contains(classes, class) {
		return
	}
	setAttribute(node, "class", strings.Join(append(classes, class), " "))
}

// RemoveClass removes a token from the class attribute, dropping the attribute when it becomes empty.
func RemoveClass(node *html.Node, class string) {
	classes := strings.Fields(GetAttribute(node, "class"))
	filtered := slices.DeleteFunc(classes, func(c string) bool {
		return c == class
	})
	if len(filtered) == 0 {
		removeAttribute(node, "class")
	} else {
		setAttribute(node, "class", strings.Join(filtered, " "))
	}
}

// ToggleClass flips a class token and returns whether it's now present.
func ToggleClass(node *html.Node, class string) bool {
	if HasClass(node, class) {
		RemoveClass(node, class)
		return false
	}
	AddClass(node, class)
	return true
}

func newText(data string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: data}
}

func newWrapper() *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		Data:     atom.Span.String(),
		DataAtom: atom.Span,
		Attr:     []html.Attribute{{Key: "class", Val: WrapperClass}},
	}
}

// IsWrapper reports whether the node is a spoiler wrapper, either one created by a Materializer
// or a Matrix-style span with the data-mx-spoiler attribute.
func IsWrapper(node *html.Node) bool {
	if node == nil || node.Type != html.ElementNode {
		return false
	}
	return HasClass(node, WrapperClass) || (node.DataAtom == atom.Span && HasAttribute(node, "data-mx-spoiler"))
}

func isMath(node *html.Node) bool {
	return HasAttribute(node, "data-mx-maths") || HasClass(node, "math")
}

// IsExcluded reports whether the node or any of its ancestors is a context where spoilers are never
// materialized: an existing spoiler, code, preformatted text, sample output, keyboard input or math.
func IsExcluded(node *html.Node) bool {
	for n := node; n != nil; n = n.Parent {
		if n.Type != html.ElementNode {
			continue
		}
		switch n.DataAtom {
		case atom.Code, atom.Pre, atom.Samp, atom.Kbd, atom.Tt:
			return true
		}
		if IsWrapper(n) || isMath(n) {
			return true
		}
	}
	return false
}
