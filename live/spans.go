// Copyright (c) 2026 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package live

import (
	"maps"
	"slices"

	"maunium.net/go/mauspoiler/hover"
)

// Span is a rendered decoration. It carries the style class of its part plus any classes added later,
// such as the hover highlight.
type Span struct {
	Decoration
	classes map[string]struct{}
}

var _ hover.Element = (*Span)(nil)

func newSpan(deco Decoration) *Span {
	return &Span{
		Decoration: deco,
		classes:    map[string]struct{}{deco.Class(): {}},
	}
}

func (s *Span) Group() string {
	return s.Decoration.Group
}

func (s *Span) AddClass(class string) {
	s.classes[class] = struct{}{}
}

func (s *Span) RemoveClass(class string) {
	delete(s.classes, class)
}

func (s *Span) HasClass(class string) bool {
	_, ok := s.classes[class]
	return ok
}

// Classes returns the classes of the span in sorted order.
func (s *Span) Classes() []string {
	return slices.Sorted(maps.Keys(s.classes))
}

// SpanSet is the rendered form of one decoration list.
type SpanSet struct {
	spans   []*Span
	byGroup map[string][]*Span
}

func NewSpanSet(decorations []Decoration) *SpanSet {
	set := &SpanSet{
		spans:   make([]*Span, len(decorations)),
		byGroup: make(map[string][]*Span),
	}
	for i, deco := range decorations {
		span := newSpan(deco)
		set.spans[i] = span
		set.byGroup[deco.Group] = append(set.byGroup[deco.Group], span)
	}
	return set
}

func (set *SpanSet) Spans() []*Span {
	return set.spans
}

func (set *SpanSet) ElementsByGroup(group string) []hover.Element {
	spans := set.byGroup[group]
	if len(spans) == 0 {
		return nil
	}
	elements := make([]hover.Element, len(spans))
	for i, span := range spans {
		elements[i] = span
	}
	return elements
}

// At returns the span under a buffer position, or nil if the position isn't decorated.
// Zero-width spans can't be hit.
func (set *SpanSet) At(pos int) *Span {
	idx, _ := slices.BinarySearchFunc(set.spans, pos, func(span *Span, target int) int {
		if span.To <= target {
			return -1
		} else if span.From > target {
			return 1
		}
		return 0
	})
	for ; idx < len(set.spans) && set.spans[idx].From <= pos; idx++ {
		if span := set.spans[idx]; pos < span.To {
			return span
		}
	}
	return nil
}
