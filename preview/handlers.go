// Copyright (c) 2026 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package preview

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/hlog"

	"maunium.net/go/mauspoiler/format"
	"maunium.net/go/mauspoiler/format/spoilerhtml"
	"maunium.net/go/mauspoiler/live"
	"maunium.net/go/mauspoiler/settings"
)

func (srv *Server) currentSettings() settings.Settings {
	srv.lock.Lock()
	defer srv.lock.Unlock()
	return srv.Plugin.Settings
}

// PostRender renders the markdown request body. Spoilers are materialized unless they're always revealed.
//
// The format query parameter selects the output: html (default), text (spoilers masked) or markdown.
func (srv *Server) PostRender(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	outputFormat := r.URL.Query().Get("format")
	if outputFormat != "" && outputFormat != "html" && outputFormat != "text" && outputFormat != "markdown" {
		jsonResponse(w, http.StatusBadRequest, &Error{
			ErrCode: ErrCodeBadRequest,
			Err:     "Unknown output format",
		})
		return
	}
	root, err := format.RenderMarkdown(string(body), srv.Config.AllowHTML)
	if err != nil {
		hlog.FromRequest(r).Err(err).Msg("Failed to render markdown")
		jsonResponse(w, http.StatusInternalServerError, &Error{
			ErrCode: ErrCodeUnknown,
			Err:     "Failed to render markdown",
		})
		return
	}
	regions := 0
	if !srv.currentSettings().AlwaysReveal {
		// Every request renders its own tree, so the listeners die with the request.
		mat := spoilerhtml.NewMaterializer(spoilerhtml.NewListeners())
		mat.Log = hlog.FromRequest(r)
		regions = mat.MaterializeAll(root)
	}
	hlog.FromRequest(r).Debug().Int("regions", regions).Str("format", outputFormat).Msg("Rendered preview")

	var output, contentType string
	switch outputFormat {
	case "text":
		output, contentType = format.HTMLToText(root), "text/plain; charset=utf-8"
	case "markdown":
		output, contentType = format.HTMLToMarkdown(root), "text/markdown; charset=utf-8"
	default:
		output, contentType = format.RenderHTML(root), "text/html; charset=utf-8"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(output))
}

type ReqWindow struct {
	From int `json:"from"`
	To   int `json:"to"`
}

type ReqDecorations struct {
	Text string `json:"text"`
	// Windows are the visible byte ranges of the text. The whole text is visible if there are none.
	Windows []ReqWindow `json:"windows,omitempty"`
}

type RespDecoration struct {
	From  int    `json:"from"`
	To    int    `json:"to"`
	Part  string `json:"part"`
	Class string `json:"class"`
	Group string `json:"group"`
}

func decorationsToResp(decorations []live.Decoration) []RespDecoration {
	out := make([]RespDecoration, len(decorations))
	for i, deco := range decorations {
		out[i] = RespDecoration{
			From:  deco.From,
			To:    deco.To,
			Part:  deco.Part.String(),
			Class: deco.Class(),
			Group: deco.Group,
		}
	}
	return out
}

type RespDecorations struct {
	Enabled     bool             `json:"enabled"`
	Decorations []RespDecoration `json:"decorations"`
}

// PostDecorations builds the live decorations of a text and its visible windows.
func (srv *Server) PostDecorations(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	var req ReqDecorations
	if err := json.Unmarshal(body, &req); err != nil {
		jsonResponse(w, http.StatusBadRequest, &Error{
			ErrCode: ErrCodeBadJSON,
			Err:     "Failed to parse request JSON",
		})
		return
	}
	resp := RespDecorations{Decorations: []RespDecoration{}}
	if !srv.currentSettings().LivePreview {
		jsonResponse(w, http.StatusOK, &resp)
		return
	}
	resp.Enabled = true
	windows := make([]live.Window, len(req.Windows))
	for i, win := range req.Windows {
		windows[i] = live.Window{From: win.From, To: win.To}
	}
	if len(windows) == 0 {
		windows = []live.Window{{From: 0, To: len(req.Text)}}
	}
	decorations := live.Build(windows, live.StringBuffer(req.Text), live.ParseMarkdown([]byte(req.Text)))
	resp.Decorations = decorationsToResp(decorations)
	hlog.FromRequest(r).Debug().
		Int("windows", len(windows)).
		Int("decorations", len(decorations)).
		Msg("Built decorations")
	jsonResponse(w, http.StatusOK, &resp)
}

func (srv *Server) GetSettings(w http.ResponseWriter, r *http.Request) {
	s := srv.currentSettings()
	jsonResponse(w, http.StatusOK, &s)
}

// PutSettings applies new settings to the plugin and saves them. Keys that are missing from the body
// are reset to their defaults.
func (srv *Server) PutSettings(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	s, err := settings.Load(body)
	if errors.Is(err, settings.ErrInvalidJSON) {
		jsonResponse(w, http.StatusBadRequest, &Error{
			ErrCode: ErrCodeBadJSON,
			Err:     "Settings must be a JSON object",
		})
		return
	}
	srv.lock.Lock()
	err = srv.Plugin.UpdateSettings(s)
	srv.lock.Unlock()
	if err != nil {
		hlog.FromRequest(r).Err(err).Msg("Failed to save settings")
		jsonResponse(w, http.StatusInternalServerError, &Error{
			ErrCode: ErrCodeUnknown,
			Err:     "Failed to save settings",
		})
		return
	}
	hlog.FromRequest(r).Info().
		Bool("always_reveal", s.AlwaysReveal).
		Bool("live_preview", s.LivePreview).
		Msg("Updated settings")
	jsonResponse(w, http.StatusOK, &s)
}
