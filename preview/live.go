// Copyright (c) 2026 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package preview

import (
	"fmt"
	"net/http"
	"slices"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"maunium.net/go/mauspoiler"
	"maunium.net/go/mauspoiler/hover"
	"maunium.net/go/mauspoiler/live"
)

const (
	LiveSetText = "set_text"
	LiveEdit    = "edit"
	LiveScroll  = "scroll"
	LiveHover   = "hover"
)

// LiveCommand is a message from a live editing client.
type LiveCommand struct {
	Type string `json:"type"`
	// Text is the new document text for set_text, or the inserted text for edit.
	Text string `json:"text,omitempty"`
	// From and To are the replaced range for edit.
	From int `json:"from,omitempty"`
	To   int `json:"to,omitempty"`
	// Windows are the visible ranges for scroll. No windows means the whole document is visible.
	Windows []ReqWindow `json:"windows,omitempty"`
	// Device and Position are the pointer device and its new buffer position for hover.
	// A negative position means the pointer left the text.
	Device   int `json:"device,omitempty"`
	Position int `json:"position,omitempty"`
}

// LiveUpdate is sent to the client after every command.
type LiveUpdate struct {
	Enabled     bool             `json:"enabled"`
	Decorations []RespDecoration `json:"decorations"`
	Highlighted []string         `json:"highlighted"`
	Error       string           `json:"error,omitempty"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func applyLiveCommand(doc *live.Document, view *live.SpoilerView, cmd *LiveCommand) error {
	switch cmd.Type {
	case LiveSetText:
		return doc.Replace(0, doc.Len(), cmd.Text)
	case LiveEdit:
		return doc.Replace(cmd.From, cmd.To, cmd.Text)
	case LiveScroll:
		windows := make([]live.Window, len(cmd.Windows))
		for i, win := range cmd.Windows {
			windows[i] = live.Window{From: win.From, To: win.To}
		}
		doc.SetVisibleWindows(windows...)
		return nil
	case LiveHover:
		if view != nil {
			view.PointerMove(cmd.Device, cmd.Position)
		}
		return nil
	default:
		return fmt.Errorf("unknown command type %q", cmd.Type)
	}
}

func makeLiveUpdate(view *live.SpoilerView) *LiveUpdate {
	update := &LiveUpdate{Decorations: []RespDecoration{}, Highlighted: []string{}}
	if view == nil {
		return update
	}
	update.Enabled = true
	update.Decorations = decorationsToResp(view.Decorations())
	for _, span := range view.Spans().Spans() {
		if span.HasClass(hover.HighlightClass) && !slices.Contains(update.Highlighted, span.Group()) {
			update.Highlighted = append(update.Highlighted, span.Group())
		}
	}
	return update
}

// GetLive upgrades the request to a websocket. Each connection edits its own document, and every
// command is answered with the decorations and highlighted groups of that document.
func (srv *Server) GetLive(w http.ResponseWriter, r *http.Request) {
	log := hlog.FromRequest(r)
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to upgrade live connection")
		return
	}
	var doc *live.Document
	srv.WithPlugin(func(plugin *mauspoiler.Plugin) {
		doc = plugin.OpenDocument("")
	})
	log.Debug().Str("document_id", doc.ID).Msg("Live connection opened")
	defer func() {
		srv.WithPlugin(func(plugin *mauspoiler.Plugin) {
			plugin.CloseDocument(doc)
		})
		err := conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		if err != nil && err != websocket.ErrCloseSent {
			log.Trace().Err(err).Msg("Failed to write close message to live connection")
		}
		_ = conn.Close()
	}()
	for {
		var cmd LiveCommand
		err = conn.ReadJSON(&cmd)
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Debug().Err(err).Msg("Failed to read from live connection")
			}
			return
		}
		var update *LiveUpdate
		srv.WithPlugin(func(plugin *mauspoiler.Plugin) {
			view := plugin.SpoilerView(doc)
			cmdErr := applyLiveCommand(doc, view, &cmd)
			// The view may have been attached or detached by a settings change since the last command.
			update = makeLiveUpdate(plugin.SpoilerView(doc))
			if cmdErr != nil {
				update.Error = cmdErr.Error()
			}
		})
		if update.Error != "" {
			log.Debug().Str("type", cmd.Type).Str("error", update.Error).Msg("Invalid live command")
		} else if log.GetLevel() <= zerolog.TraceLevel {
			log.Trace().Str("type", cmd.Type).Int("decorations", len(update.Decorations)).Msg("Handled live command")
		}
		err = conn.WriteJSON(update)
		if err != nil {
			log.Debug().Err(err).Msg("Failed to write to live connection")
			return
		}
	}
}
