// Copyright (c) 2026 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package commands

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/rs/zerolog"
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrCommandPanic   = errors.New("panic in command handler")
)

// Processor splits input into a command and arguments, finds the appropriate handler and runs it
// against an editor.
type Processor struct {
	*CommandContainer

	LogArgs bool
}

func NewProcessor() *Processor {
	return &Processor{
		CommandContainer: NewCommandContainer(),
	}
}

// Process parses and runs a single command line.
func (proc *Processor) Process(ctx context.Context, editor Editor, input string) error {
	parsed := ParseInput(ctx, editor, input)
	if parsed == nil {
		return nil
	}
	return proc.run(ctx, parsed)
}

// Execute runs a command by name without arguments, like a command palette does.
func (proc *Processor) Execute(ctx context.Context, editor Editor, name string) error {
	return proc.run(ctx, &Event{
		RawInput: name,
		Command:  name,
		Ctx:      ctx,
		Editor:   editor,
	})
}

func (proc *Processor) run(ctx context.Context, parsed *Event) (err error) {
	handler := proc.GetHandler(parsed.Command)
	if handler == nil {
		return fmt.Errorf("%w %q", ErrUnknownCommand, parsed.Command)
	}
	logWith := zerolog.Ctx(ctx).With().
		Str("command", parsed.Command).
		Str("handler", handler.Name)
	if proc.LogArgs {
		logWith = logWith.Strs("args", parsed.Args)
	}
	log := logWith.Logger()
	defer func() {
		panicErr := recover()
		if panicErr != nil {
			logEvt := log.Error().
				Bytes(zerolog.ErrorStackFieldName, debug.Stack())
			if realErr, ok := panicErr.(error); ok {
				logEvt = logEvt.Err(realErr)
			} else {
				logEvt = logEvt.Any(zerolog.ErrorFieldName, panicErr)
			}
			logEvt.Msg("Panic in command handler")
			err = fmt.Errorf("%w %s: %v", ErrCommandPanic, handler.Name, panicErr)
		}
	}()
	parsed.Proc = proc
	parsed.Handler = handler
	parsed.Ctx = log.WithContext(ctx)
	parsed.Log = &log

	log.Debug().Msg("Processing command")
	return handler.Func(parsed)
}
