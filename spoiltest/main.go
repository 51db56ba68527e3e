// Copyright (c) 2026 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/chzyer/readline"
	"go.mau.fi/util/exerrors"
	"go.mau.fi/util/exzerolog"
	"go.mau.fi/zeroconfig"
	flag "maunium.net/go/mauflag"

	"maunium.net/go/mauspoiler"
	"maunium.net/go/mauspoiler/preview"
)

var configPath = flag.MakeFull("c", "config", "The path to your config file.", "spoiltest.yaml").String()
var writeExampleConfig = flag.MakeFull("e", "generate-example-config", "Save the example config to the config path and quit.", "false").Bool()
var dontSaveConfig = flag.MakeFull("n", "no-update", "Don't save updated config to disk.", "false").Bool()
var wantHelp, _ = flag.MakeHelpFlag()

var writerTypeReadline zeroconfig.WriterType = "spoiltest_readline"

func main() {
	flag.SetHelpTitles(
		"spoiltest - Interactive tester for ||spoiler|| rendering and live decorations.",
		"spoiltest [-hen] [-c <path>]")
	err := flag.Parse()
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		flag.PrintHelp()
		os.Exit(1)
	} else if *wantHelp {
		flag.PrintHelp()
		os.Exit(0)
	} else if *writeExampleConfig {
		exerrors.PanicIfNotNil(os.WriteFile(*configPath, []byte(ExampleConfig), 0600))
		return
	}
	cfg, err := LoadConfig(*configPath, !*dontSaveConfig)
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(10)
	}

	rl := exerrors.Must(readline.New("> "))
	defer func() {
		_ = rl.Close()
	}()
	zeroconfig.RegisterWriter(writerTypeReadline, func(config *zeroconfig.WriterConfig) (io.Writer, error) {
		return rl.Stdout(), nil
	})
	log := exerrors.Must(cfg.Logging.Compile())
	exzerolog.SetupDefaults(log)
	ctx := log.WithContext(context.Background())

	plugin := mauspoiler.New(*log)
	plugin.SettingsPath = cfg.SettingsPath
	exerrors.PanicIfNotNil(plugin.Load())

	repl := NewREPL(plugin, rl.Stdout())
	repl.AllowHTML = cfg.Preview.AllowHTML
	if cfg.Preview.Listen != "" {
		repl.Server = preview.New(plugin, cfg.Preview)
		go func() {
			err := repl.Server.Start()
			if err != nil {
				log.Err(err).Msg("Preview server failed")
			}
		}()
	}

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
			break
		} else if err != nil {
			log.Err(err).Msg("Failed to read input")
			break
		}
		if repl.Handle(ctx, line) {
			break
		}
	}
	if repl.Server != nil {
		repl.Server.Stop()
	}
	repl.withPlugin(func(plugin *mauspoiler.Plugin) {
		plugin.Unload()
	})
}
