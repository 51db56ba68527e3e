// Copyright (c) 2026 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package commands

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
)

// Editor is the part of the host editor that commands operate on.
type Editor interface {
	Slice(from, to int) string
	Selection() (from, to int)
	SetSelection(from, to int)
	Replace(from, to int, text string) error
}

// Event contains the data of a single command invocation.
type Event struct {
	// RawInput is the entire input before splitting into command and arguments.
	RawInput string
	// Command is the lowercased first word of the input.
	Command string
	// Args are the rest of the input split by whitespace ([strings.Fields]).
	Args []string
	// RawArgs is the same as args, but without the splitting by whitespace.
	RawArgs string

	Ctx     context.Context
	Log     *zerolog.Logger
	Editor  Editor
	Proc    *Processor
	Handler *Handler
}

// ParseInput splits a command line into a command event. It returns nil for blank input.
func ParseInput(ctx context.Context, editor Editor, text string) *Event {
	parts := strings.Fields(text)
	if len(parts) == 0 {
		return nil
	}
	return &Event{
		RawInput: text,
		Command:  strings.ToLower(parts[0]),
		Args:     parts[1:],
		RawArgs:  strings.TrimLeft(strings.TrimPrefix(strings.TrimLeft(text, " "), parts[0]), " "),
		Log:      zerolog.Ctx(ctx),
		Ctx:      ctx,
		Editor:   editor,
	}
}

// ShiftArg removes the first argument and returns it.
func (evt *Event) ShiftArg() string {
	if len(evt.Args) == 0 {
		return ""
	}
	firstArg := evt.Args[0]
	evt.RawArgs = strings.TrimLeft(strings.TrimPrefix(evt.RawArgs, evt.Args[0]), " ")
	evt.Args = evt.Args[1:]
	return firstArg
}
