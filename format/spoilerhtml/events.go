// Copyright (c) 2026 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package spoilerhtml

import (
	"golang.org/x/net/html"
)

// Handler is called when an element receives a primary activation (e.g. a click).
type Handler func(target *html.Node)

// EventSource is the capability of attaching activation handlers to elements of a rendered tree.
type EventSource interface {
	On(node *html.Node, handler Handler)
	Off(node *html.Node)
}

// Listeners is an in-memory EventSource. Activations bubble up to the closest ancestor with a handler.
type Listeners struct {
	handlers map[*html.Node]Handler
}

var _ EventSource = (*Listeners)(nil)

func NewListeners() *Listeners {
	return &Listeners{handlers: make(map[*html.Node]Handler)}
}

func (l *Listeners) On(node *html.Node, handler Handler) {
	l.handlers[node] = handler
}

func (l *Listeners) Off(node *html.Node) {
	delete(l.handlers, node)
}

// Len returns the number of elements that currently have a handler attached.
func (l *Listeners) Len() int {
	return len(l.handlers)
}

// Activate dispatches an activation on target and reports whether any handler received it.
func (l *Listeners) Activate(target *html.Node) bool {
	for node := target; node != nil; node = node.Parent {
		if handler, ok := l.handlers[node]; ok {
			handler(node)
			return true
		}
	}
	return false
}
