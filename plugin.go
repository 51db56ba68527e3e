// Copyright (c) 2026 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package mauspoiler implements ||spoiler|| syntax for markdown notes, both in rendered documents
// and in the live preview of the editor.
package mauspoiler

import (
	"context"
	"fmt"
	"slices"

	"github.com/rs/xid"
	"github.com/rs/zerolog"
	"golang.org/x/net/html"

	"maunium.net/go/mauspoiler/commands"
	"maunium.net/go/mauspoiler/format/spoilerhtml"
	"maunium.net/go/mauspoiler/live"
	"maunium.net/go/mauspoiler/settings"
)

// Plugin ties the spoiler components to a host application.
//
// Rendered trees passed to PostProcess and documents opened with OpenDocument are tracked,
// so that settings changes and Unload can be applied to them afterwards.
type Plugin struct {
	Log          zerolog.Logger
	SettingsPath string
	Settings     settings.Settings

	Listeners    *spoilerhtml.Listeners
	Materializer *spoilerhtml.Materializer
	Registry     *live.Registry
	Extension    *live.SpoilerExtension
	Commands     *commands.Processor

	roots     []*html.Node
	documents []*live.Document
	loaded    bool
}

func New(log zerolog.Logger) *Plugin {
	listeners := spoilerhtml.NewListeners()
	plugin := &Plugin{
		Log:          log,
		Settings:     settings.Default(),
		Listeners:    listeners,
		Materializer: spoilerhtml.NewMaterializer(listeners),
		Registry:     live.DefaultRegistry,
		Extension:    &live.SpoilerExtension{},
		Commands:     commands.NewProcessor(),
	}
	plugin.Materializer.Log = &plugin.Log
	plugin.Extension.Log = &plugin.Log
	return plugin
}

// Load reads the settings file (if SettingsPath is set), registers the commands and enables
// the live preview if the settings allow it.
func (p *Plugin) Load() error {
	if p.loaded {
		return nil
	}
	if p.SettingsPath != "" {
		s, err := settings.ReadFile(p.SettingsPath)
		if err != nil {
			return fmt.Errorf("failed to load settings: %w", err)
		}
		p.Settings = s
	}
	p.Commands.Register(commands.WrapSpoiler)
	if p.Settings.LivePreview && p.Registry.Register(p.Extension) {
		p.applyExtensions()
	}
	p.loaded = true
	p.Log.Debug().
		Bool("always_reveal", p.Settings.AlwaysReveal).
		Bool("live_preview", p.Settings.LivePreview).
		Msg("Spoiler plugin loaded")
	return nil
}

// PostProcess is called for every freshly rendered tree. It materializes the spoilers in it,
// unless spoilers are always revealed.
func (p *Plugin) PostProcess(root *html.Node) int {
	if !slices.Contains(p.roots, root) {
		p.roots = append(p.roots, root)
	}
	if p.Settings.AlwaysReveal {
		return 0
	}
	return p.Materializer.MaterializeAll(root)
}

// Release stops tracking a rendered tree and restores its literal text.
func (p *Plugin) Release(root *html.Node) {
	idx := slices.Index(p.roots, root)
	if idx < 0 {
		return
	}
	p.roots = slices.Delete(p.roots, idx, idx+1)
	p.Materializer.Unmaterialize(root)
}

// ApplySettings switches to new settings and applies the difference to tracked trees and documents.
func (p *Plugin) ApplySettings(s settings.Settings) {
	prev := p.Settings
	p.Settings = s
	if prev.AlwaysReveal != s.AlwaysReveal {
		for _, root := range p.roots {
			if s.AlwaysReveal {
				p.Materializer.Unmaterialize(root)
			} else {
				p.Materializer.MaterializeAll(root)
			}
		}
	}
	if prev.LivePreview != s.LivePreview && p.loaded {
		var changed bool
		if s.LivePreview {
			changed = p.Registry.Register(p.Extension)
		} else {
			changed = p.Registry.Unregister(p.Extension)
		}
		if changed {
			p.applyExtensions()
		}
	}
}

// UpdateSettings applies new settings and saves them to the settings file.
func (p *Plugin) UpdateSettings(s settings.Settings) error {
	p.ApplySettings(s)
	if p.SettingsPath == "" {
		return nil
	}
	return settings.WriteFile(p.SettingsPath, s)
}

func (p *Plugin) applyExtensions() {
	extensions := p.Registry.Extensions()
	for _, doc := range p.documents {
		doc.ApplyExtensions(extensions)
	}
}

// OpenDocument creates an editor document with the currently registered live extensions attached.
func (p *Plugin) OpenDocument(text string) *live.Document {
	doc := live.NewDocument(text)
	doc.ID = xid.New().String()
	log := p.Log.With().Str("document_id", doc.ID).Logger()
	doc.Log = &log
	doc.ApplyExtensions(p.Registry.Extensions())
	p.documents = append(p.documents, doc)
	return doc
}

// CloseDocument destroys the views of a document and stops tracking it.
func (p *Plugin) CloseDocument(doc *live.Document) {
	idx := slices.Index(p.documents, doc)
	if idx < 0 {
		return
	}
	p.documents = slices.Delete(p.documents, idx, idx+1)
	doc.Close()
	p.Log.Debug().Str("document_id", doc.ID).Msg("Closed document")
}

// Documents returns the open documents.
func (p *Plugin) Documents() []*live.Document {
	return slices.Clone(p.documents)
}

// SpoilerView returns the live spoiler view of a document, if the live preview is attached to it.
func (p *Plugin) SpoilerView(doc *live.Document) *live.SpoilerView {
	view, ok := doc.View(p.Extension)
	if !ok {
		return nil
	}
	return view.(*live.SpoilerView)
}

// RunCommand runs a command line against a document.
func (p *Plugin) RunCommand(ctx context.Context, doc *live.Document, input string) error {
	return p.Commands.Process(p.Log.WithContext(ctx), doc, input)
}

// Unload restores every tracked tree, detaches the live preview from all documents and
// unregisters the commands. No listeners or views remain afterwards.
func (p *Plugin) Unload() {
	for _, root := range p.roots {
		p.Materializer.Unmaterialize(root)
	}
	p.roots = nil
	if p.Registry.Unregister(p.Extension) {
		p.applyExtensions()
	}
	p.Commands.Unregister(commands.WrapSpoiler)
	p.loaded = false
	p.Log.Debug().
		Int("listeners", p.Listeners.Len()).
		Int("documents", len(p.documents)).
		Msg("Spoiler plugin unloaded")
}
