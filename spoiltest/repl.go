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
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"maunium.net/go/mauspoiler"
	"maunium.net/go/mauspoiler/commands"
	"maunium.net/go/mauspoiler/format"
	"maunium.net/go/mauspoiler/format/spoilerhtml"
	"maunium.net/go/mauspoiler/hover"
	"maunium.net/go/mauspoiler/live"
	"maunium.net/go/mauspoiler/preview"
)

var errQuit = errors.New("quit")

// REPL appends plain input lines to a live document and runs /commands against it.
type REPL struct {
	Plugin    *mauspoiler.Plugin
	Server    *preview.Server
	Doc       *live.Document
	AllowHTML bool
	Out       io.Writer

	root     *html.Node
	handlers map[string]func(ctx context.Context, args []string) error
}

func NewREPL(plugin *mauspoiler.Plugin, out io.Writer) *REPL {
	repl := &REPL{
		Plugin: plugin,
		Doc:    plugin.OpenDocument(""),
		Out:    out,
	}
	repl.handlers = map[string]func(ctx context.Context, args []string) error{
		"render":      repl.cmdRender,
		"reveal":      repl.cmdReveal,
		"live":        repl.cmdLive,
		"wrap":        repl.cmdWrap,
		"scroll":      repl.cmdScroll,
		"hover":       repl.cmdHover,
		"click":       repl.cmdClick,
		"text":        repl.cmdText,
		"decorations": repl.cmdDecorations,
		"quit":        repl.cmdQuit,
	}
	return repl
}

func (repl *REPL) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(repl.Out, format+"\n", args...)
}

// withPlugin serializes access to the plugin with the preview server, if one is running.
func (repl *REPL) withPlugin(fn func(plugin *mauspoiler.Plugin)) {
	if repl.Server != nil {
		repl.Server.WithPlugin(fn)
	} else {
		fn(repl.Plugin)
	}
}

// Handle processes one input line and reports whether the REPL should exit.
func (repl *REPL) Handle(ctx context.Context, line string) (quit bool) {
	if !strings.HasPrefix(line, "/") {
		repl.withPlugin(func(plugin *mauspoiler.Plugin) {
			repl.Doc.Append(line + "\n")
		})
		return false
	}
	fields := strings.Fields(line[1:])
	if len(fields) == 0 {
		return false
	}
	handler, ok := repl.handlers[strings.ToLower(fields[0])]
	if !ok {
		repl.printf("Unknown command /%s", fields[0])
		return false
	}
	var err error
	repl.withPlugin(func(plugin *mauspoiler.Plugin) {
		err = handler(ctx, fields[1:])
	})
	if errors.Is(err, errQuit) {
		return true
	} else if err != nil {
		repl.printf("Error: %v", err)
	}
	return false
}

func parseInts(args []string, names ...string) ([]int, error) {
	if len(args) != len(names) {
		return nil, fmt.Errorf("usage: <%s>", strings.Join(names, "> <"))
	}
	out := make([]int, len(args))
	for i, arg := range args {
		val, err := strconv.Atoi(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", names[i], arg, err)
		}
		out[i] = val
	}
	return out, nil
}

func (repl *REPL) cmdRender(ctx context.Context, args []string) error {
	if repl.root != nil {
		repl.Plugin.Release(repl.root)
	}
	root, err := format.RenderMarkdown(repl.Doc.Text(), repl.AllowHTML)
	if err != nil {
		return err
	}
	repl.root = root
	regions := repl.Plugin.PostProcess(root)
	repl.printf("%s", strings.TrimSpace(format.RenderHTML(root)))
	repl.printf("%d spoilers, rendered as text:\n%s", regions, format.HTMLToText(root))
	return nil
}

func (repl *REPL) printSettings() {
	repl.printf("Always reveal: %t, live preview: %t", repl.Plugin.Settings.AlwaysReveal, repl.Plugin.Settings.LivePreview)
}

func (repl *REPL) cmdReveal(ctx context.Context, args []string) error {
	s := repl.Plugin.Settings
	s.AlwaysReveal = !s.AlwaysReveal
	err := repl.Plugin.UpdateSettings(s)
	repl.printSettings()
	return err
}

func (repl *REPL) cmdLive(ctx context.Context, args []string) error {
	s := repl.Plugin.Settings
	s.LivePreview = !s.LivePreview
	err := repl.Plugin.UpdateSettings(s)
	repl.printSettings()
	return err
}

func (repl *REPL) cmdWrap(ctx context.Context, args []string) error {
	pos, err := parseInts(args, "from", "to")
	if err != nil {
		return err
	}
	repl.Doc.SetSelection(pos[0], pos[1])
	err = repl.Plugin.RunCommand(ctx, repl.Doc, commands.WrapSpoilerName)
	if err != nil {
		return err
	}
	return repl.cmdText(ctx, nil)
}

func (repl *REPL) cmdScroll(ctx context.Context, args []string) error {
	if len(args) == 0 {
		repl.Doc.SetVisibleWindows()
		return repl.cmdDecorations(ctx, nil)
	}
	pos, err := parseInts(args, "from", "to")
	if err != nil {
		return err
	}
	repl.Doc.SetVisibleWindows(live.Window{From: pos[0], To: pos[1]})
	return repl.cmdDecorations(ctx, nil)
}

func (repl *REPL) spoilerView() (*live.SpoilerView, error) {
	view := repl.Plugin.SpoilerView(repl.Doc)
	if view == nil {
		return nil, fmt.Errorf("live preview is disabled")
	}
	return view, nil
}

func (repl *REPL) cmdHover(ctx context.Context, args []string) error {
	view, err := repl.spoilerView()
	if err != nil {
		return err
	}
	pos, err := parseInts(args, "position")
	if err != nil {
		return err
	}
	view.PointerMove(0, pos[0])
	var hovered []string
	for _, span := range view.Spans().Spans() {
		if span.HasClass(hover.HighlightClass) {
			hovered = append(hovered, fmt.Sprintf("%s %d-%d %q", span.Group(), span.From, span.To, repl.Doc.Slice(span.From, span.To)))
		}
	}
	if len(hovered) == 0 {
		repl.printf("Nothing highlighted")
	} else {
		repl.printf("Highlighted:\n  %s", strings.Join(hovered, "\n  "))
	}
	return nil
}

func (repl *REPL) cmdClick(ctx context.Context, args []string) error {
	if repl.root == nil {
		return fmt.Errorf("nothing rendered yet, use /render first")
	}
	idx, err := parseInts(args, "index")
	if err != nil {
		return err
	}
	var wrappers []*html.Node
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.ElementNode && spoilerhtml.HasClass(node, spoilerhtml.WrapperClass) {
			wrappers = append(wrappers, node)
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(repl.root)
	if idx[0] < 0 || idx[0] >= len(wrappers) {
		return fmt.Errorf("there are %d spoilers", len(wrappers))
	}
	target := wrappers[idx[0]]
	if target.FirstChild != nil {
		// Activation bubbles up from the innermost node, like a real click.
		target = target.FirstChild
	}
	if !repl.Plugin.Listeners.Activate(target) {
		return fmt.Errorf("spoiler %d has no listener", idx[0])
	}
	repl.printf("%s", format.HTMLToText(repl.root))
	return nil
}

func (repl *REPL) cmdText(ctx context.Context, args []string) error {
	from, to := repl.Doc.Selection()
	repl.printf("%q (selection %d-%d)", repl.Doc.Text(), from, to)
	return nil
}

func (repl *REPL) cmdDecorations(ctx context.Context, args []string) error {
	view, err := repl.spoilerView()
	if err != nil {
		return err
	}
	decorations := view.Decorations()
	if len(decorations) == 0 {
		repl.printf("No decorations")
		return nil
	}
	lines := make([]string, len(decorations))
	for i, deco := range decorations {
		lines[i] = fmt.Sprintf("%s %d-%d %s %q", deco.Group, deco.From, deco.To, deco.Class(), repl.Doc.Slice(deco.From, deco.To))
	}
	repl.printf("%s", strings.Join(lines, "\n"))
	return nil
}

func (repl *REPL) cmdQuit(ctx context.Context, args []string) error {
	return errQuit
}
