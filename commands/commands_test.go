// Copyright (c) 2026 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package commands_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maunium.net/go/mauspoiler/commands"
	"maunium.net/go/mauspoiler/live"
)

func newProcessor() *commands.Processor {
	proc := commands.NewProcessor()
	proc.Register(commands.WrapSpoiler)
	return proc
}

func TestWrapSpoiler(t *testing.T) {
	doc := live.NewDocument("say hello world")
	doc.SetSelection(4, 9)
	require.NoError(t, newProcessor().Execute(context.Background(), doc, commands.WrapSpoilerName))
	assert.Equal(t, "say ||hello|| world", doc.Text())
	from, to := doc.Selection()
	assert.Equal(t, "hello", doc.Slice(from, to))
}

func TestWrapSpoiler_Alias(t *testing.T) {
	doc := live.NewDocument("secret")
	doc.SetSelection(0, 6)
	require.NoError(t, newProcessor().Process(context.Background(), doc, "  Spoiler  "))
	assert.Equal(t, "||secret||", doc.Text())
}

func TestWrapSpoiler_EmptySelection(t *testing.T) {
	doc := live.NewDocument("text")
	doc.SetSelection(2, 2)
	require.NoError(t, newProcessor().Execute(context.Background(), doc, commands.WrapSpoilerName))
	assert.Equal(t, "te||||xt", doc.Text())
	from, to := doc.Selection()
	assert.Equal(t, 4, from)
	assert.Equal(t, 4, to)
}

func TestWrapSpoiler_DecoratesLiveView(t *testing.T) {
	doc := live.NewDocument("hidden")
	ext := &live.SpoilerExtension{}
	doc.ApplyExtensions([]live.Extension{ext})
	doc.SetSelection(0, 6)
	require.NoError(t, newProcessor().Execute(context.Background(), doc, commands.WrapSpoilerName))
	view, _ := doc.View(ext)
	assert.Len(t, view.(*live.SpoilerView).Decorations(), 3)
}

func TestProcessor_UnknownCommand(t *testing.T) {
	err := newProcessor().Process(context.Background(), live.NewDocument(""), "nope")
	assert.ErrorIs(t, err, commands.ErrUnknownCommand)
	assert.NoError(t, newProcessor().Process(context.Background(), live.NewDocument(""), "   "))
}

func TestProcessor_Panic(t *testing.T) {
	proc := newProcessor()
	proc.Register(&commands.Handler{
		Name: "boom",
		Func: func(ce *commands.Event) error {
			panic(errors.New("oh no"))
		},
	})
	err := proc.Process(context.Background(), live.NewDocument(""), "boom")
	assert.ErrorIs(t, err, commands.ErrCommandPanic)
}

func TestProcessor_Args(t *testing.T) {
	proc := commands.NewProcessor()
	var got *commands.Event
	proc.Register(&commands.Handler{
		Name: "echo",
		Func: func(ce *commands.Event) error {
			got = ce
			return nil
		},
	})
	require.NoError(t, proc.Process(context.Background(), nil, "ECHO a  b c"))
	require.NotNil(t, got)
	assert.Equal(t, "echo", got.Command)
	assert.Equal(t, []string{"a", "b", "c"}, got.Args)
	assert.Equal(t, "a  b c", got.RawArgs)
	assert.Equal(t, "a", got.ShiftArg())
	assert.Equal(t, "b c", got.RawArgs)
}

func TestCommandContainer(t *testing.T) {
	cont := commands.NewCommandContainer()
	cont.Register(commands.WrapSpoiler)
	assert.Same(t, commands.WrapSpoiler, cont.GetHandler("spoiler"))
	assert.Equal(t, []string{commands.WrapSpoilerName}, cont.Names())

	// Registering the same handler twice is fine, another one with the same name isn't.
	cont.Register(commands.WrapSpoiler)
	assert.Panics(t, func() {
		cont.Register(&commands.Handler{Name: commands.WrapSpoilerName})
	})
	assert.Panics(t, func() {
		cont.Register(&commands.Handler{Name: "Upper"})
	})
	assert.Panics(t, func() {
		cont.Register(&commands.Handler{Name: "spoiler"})
	})

	cont.Unregister(commands.WrapSpoiler)
	assert.Nil(t, cont.GetHandler(commands.WrapSpoilerName))
	assert.Nil(t, cont.GetHandler("spoiler"))
	assert.Empty(t, cont.Names())
}
