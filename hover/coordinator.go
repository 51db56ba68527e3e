// Copyright (c) 2026 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package hover keeps every element of a spoiler group highlighted together while a pointer is over any of them.
package hover

import (
	"github.com/rs/zerolog"
)

// HighlightClass is added to every element of the hovered group.
const HighlightClass = "spoiler-hover"

// Element is a rendered piece of a group.
type Element interface {
	// Group returns the group identifier of the element, or an empty string if it doesn't belong to one.
	Group() string
	AddClass(class string)
	RemoveClass(class string)
}

// Lookup finds the elements that currently carry a group identifier.
type Lookup interface {
	ElementsByGroup(group string) []Element
}

// Coordinator is the hover state machine of a single pointer device.
//
// It's either idle or hovering exactly one group.
type Coordinator struct {
	Lookup Lookup
	Class  string
	Log    *zerolog.Logger

	group   string
	element Element
	// holders is shared by the coordinators of one Pointers, nil for standalone coordinators.
	holders map[string]int
}

func NewCoordinator(lookup Lookup) *Coordinator {
	return &Coordinator{Lookup: lookup, Class: HighlightClass}
}

// Group returns the currently hovered group, or false if the coordinator is idle.
func (c *Coordinator) Group() (string, bool) {
	return c.group, c.group != ""
}

func groupOf(el Element) string {
	if el == nil {
		return ""
	}
	return el.Group()
}

func (c *Coordinator) setGroupClass(group string, add bool) int {
	elements := c.Lookup.ElementsByGroup(group)
	for _, el := range elements {
		if add {
			el.AddClass(c.Class)
		} else {
			el.RemoveClass(c.Class)
		}
	}
	return len(elements)
}

// Enter is called when the pointer enters an element.
func (c *Coordinator) Enter(el Element) {
	c.element = el
	group := groupOf(el)
	if group == "" || group == c.group {
		return
	}
	c.clear()
	c.group = group
	if c.holders != nil {
		c.holders[group]++
	}
	if c.setGroupClass(group, true) == 0 && c.Log != nil {
		c.Log.Trace().Str("group", group).Msg("Hovered group has no elements")
	}
}

// Leave is called when the pointer leaves from towards to. A nil to means the pointer left every element.
func (c *Coordinator) Leave(from, to Element) {
	if c.element == from {
		c.element = nil
	}
	if c.group != "" && groupOf(to) == c.group {
		return
	}
	c.clear()
}

// Move routes a pointer move onto to (or onto nothing) into the matching Leave and Enter calls.
func (c *Coordinator) Move(to Element) {
	if c.element == to && to != nil {
		return
	}
	if c.element != nil || c.group != "" {
		c.Leave(c.element, to)
	}
	if to != nil {
		c.Enter(to)
	}
}

func (c *Coordinator) clear() {
	if c.group == "" {
		return
	}
	group := c.group
	c.group = ""
	if c.holders != nil {
		c.holders[group]--
		if c.holders[group] > 0 {
			// Another device is still hovering the group.
			return
		}
		delete(c.holders, group)
	}
	// The group may have disappeared since it was entered, in which case there's nothing to clear.
	c.setGroupClass(group, false)
}

// Pointers holds one coordinator per pointer device. A group stays highlighted as long as any
// device is hovering it.
type Pointers struct {
	Lookup Lookup
	Log    *zerolog.Logger

	devices map[int]*Coordinator
	holders map[string]int
}

func NewPointers(lookup Lookup) *Pointers {
	return &Pointers{Lookup: lookup, devices: make(map[int]*Coordinator), holders: make(map[string]int)}
}

// Device returns the coordinator of a pointer device, creating it if necessary.
func (p *Pointers) Device(id int) *Coordinator {
	coord, ok := p.devices[id]
	if !ok {
		coord = NewCoordinator(p.Lookup)
		coord.Log = p.Log
		coord.holders = p.holders
		p.devices[id] = coord
	}
	return coord
}

// Reset clears the highlight of every device and forgets them.
func (p *Pointers) Reset() {
	for id, coord := range p.devices {
		coord.Move(nil)
		delete(p.devices, id)
	}
}
