// Copyright (c) 2026 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package preview_test

import (
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maunium.net/go/mauspoiler"
	"maunium.net/go/mauspoiler/preview"
	"maunium.net/go/mauspoiler/settings"
)

func sendLive(t *testing.T, conn *websocket.Conn, cmd preview.LiveCommand) *preview.LiveUpdate {
	require.NoError(t, conn.WriteJSON(&cmd))
	var update preview.LiveUpdate
	require.NoError(t, conn.ReadJSON(&update))
	return &update
}

func groups(update *preview.LiveUpdate) []string {
	var out []string
	for _, deco := range update.Decorations {
		if len(out) == 0 || out[len(out)-1] != deco.Group {
			out = append(out, deco.Group)
		}
	}
	return out
}

func TestGetLive(t *testing.T) {
	srv, ts := newServer(t, preview.Config{})
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/_spoiler/v1/live", nil)
	require.NoError(t, err)

	update := sendLive(t, conn, preview.LiveCommand{Type: preview.LiveSetText, Text: "||a|| ||b||"})
	assert.True(t, update.Enabled)
	assert.Len(t, update.Decorations, 6)
	assert.Equal(t, []string{"spoiler-0", "spoiler-1"}, groups(update))
	assert.Empty(t, update.Highlighted)

	update = sendLive(t, conn, preview.LiveCommand{Type: preview.LiveHover, Position: 8})
	assert.Equal(t, []string{"spoiler-1"}, update.Highlighted)

	update = sendLive(t, conn, preview.LiveCommand{Type: preview.LiveScroll, Windows: []preview.ReqWindow{{From: 6, To: 11}}})
	assert.Equal(t, []string{"spoiler-0"}, groups(update))
	assert.Equal(t, 6, update.Decorations[0].From)
	assert.Empty(t, update.Highlighted)

	update = sendLive(t, conn, preview.LiveCommand{Type: preview.LiveScroll})
	assert.Len(t, update.Decorations, 6)

	update = sendLive(t, conn, preview.LiveCommand{Type: preview.LiveEdit, From: 0, To: 0, Text: "`"})
	assert.Empty(t, update.Error)
	update = sendLive(t, conn, preview.LiveCommand{Type: preview.LiveEdit, From: 6, To: 6, Text: "`"})
	assert.Empty(t, update.Error)
	assert.Equal(t, []string{"spoiler-0"}, groups(update))
	assert.Equal(t, 8, update.Decorations[0].From)

	update = sendLive(t, conn, preview.LiveCommand{Type: preview.LiveEdit, From: 100, To: 200})
	assert.NotEmpty(t, update.Error)
	update = sendLive(t, conn, preview.LiveCommand{Type: "explode"})
	assert.Contains(t, update.Error, "explode")

	srv.WithPlugin(func(plugin *mauspoiler.Plugin) {
		plugin.ApplySettings(settings.Settings{LivePreview: false})
	})
	update = sendLive(t, conn, preview.LiveCommand{Type: preview.LiveHover, Position: 9})
	assert.False(t, update.Enabled)
	assert.Empty(t, update.Decorations)

	require.NoError(t, conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	_ = conn.Close()
	assert.Eventually(t, func() bool {
		var open int
		srv.WithPlugin(func(plugin *mauspoiler.Plugin) {
			open = len(plugin.Documents())
		})
		return open == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestGetLive_NotWebsocket(t *testing.T) {
	_, ts := newServer(t, preview.Config{})
	status, _ := do(t, "GET", ts.URL+"/_spoiler/v1/live", "")
	assert.Equal(t, 400, status)
}
