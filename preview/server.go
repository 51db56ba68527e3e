// Copyright (c) 2026 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package preview serves spoiler rendering and live decorations over HTTP.
package preview

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"go.mau.fi/util/requestlog"

	"maunium.net/go/mauspoiler"
)

type Config struct {
	Listen    string `yaml:"listen" json:"listen"`
	AllowHTML bool   `yaml:"allow_html" json:"allow_html"`
}

// Server exposes a plugin over HTTP. Requests are handled one at a time, since the plugin
// isn't safe for concurrent use.
type Server struct {
	Plugin *mauspoiler.Plugin
	Config Config
	Router *mux.Router

	log    zerolog.Logger
	lock   sync.Mutex
	server *http.Server
}

const maxBodySize = 1 << 20

func New(plugin *mauspoiler.Plugin, cfg Config) *Server {
	srv := &Server{
		Plugin: plugin,
		Config: cfg,
		Router: mux.NewRouter(),
		log:    plugin.Log.With().Str("component", "preview").Logger(),
	}
	srv.RegisterRoutes(srv.Router)
	return srv
}

func (srv *Server) RegisterRoutes(router *mux.Router) {
	api := router.PathPrefix("/_spoiler/v1").Subrouter()
	api.Use(hlog.NewHandler(srv.log))
	api.Use(requestlog.AccessLogger(false))
	api.HandleFunc("/render", srv.PostRender).Methods(http.MethodPost)
	api.HandleFunc("/decorations", srv.PostDecorations).Methods(http.MethodPost)
	api.HandleFunc("/settings", srv.GetSettings).Methods(http.MethodGet)
	api.HandleFunc("/settings", srv.PutSettings).Methods(http.MethodPut)
	api.HandleFunc("/live", srv.GetLive).Methods(http.MethodGet)
	api.NotFoundHandler = http.HandlerFunc(srv.UnknownEndpoint)
	api.MethodNotAllowedHandler = http.HandlerFunc(srv.UnsupportedMethod)
}

// Start listens on the configured address until Stop is called.
func (srv *Server) Start() error {
	srv.server = &http.Server{
		Addr:    srv.Config.Listen,
		Handler: srv.Router,
	}
	srv.log.Info().Str("address", srv.Config.Listen).Msg("Starting preview server")
	err := srv.server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	srv.log.Debug().Msg("Preview server stopped")
	return nil
}

func (srv *Server) Stop() {
	if srv.server == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.server.Shutdown(ctx)
	srv.server = nil
}

// WithPlugin runs fn while holding the lock that request handlers use.
func (srv *Server) WithPlugin(fn func(plugin *mauspoiler.Plugin)) {
	srv.lock.Lock()
	defer srv.lock.Unlock()
	fn(srv.Plugin)
}

// Error is the body of failed responses.
type Error struct {
	ErrCode string `json:"errcode"`
	Err     string `json:"error"`
}

const (
	ErrCodeNotFound   = "SPOILER_NOT_FOUND"
	ErrCodeBadMethod  = "SPOILER_UNSUPPORTED_METHOD"
	ErrCodeBadJSON    = "SPOILER_BAD_JSON"
	ErrCodeBadRequest = "SPOILER_BAD_REQUEST"
	ErrCodeUnknown    = "SPOILER_UNKNOWN"
)

func jsonResponse(w http.ResponseWriter, status int, response any) {
	w.Header().Add("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(response)
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		hlog.FromRequest(r).Warn().Err(err).Msg("Failed to read request body")
		jsonResponse(w, http.StatusBadRequest, &Error{
			ErrCode: ErrCodeBadRequest,
			Err:     "Failed to read request body",
		})
		return nil, false
	}
	return body, true
}

func (srv *Server) UnknownEndpoint(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusNotFound, &Error{
		ErrCode: ErrCodeNotFound,
		Err:     "Unrecognized endpoint",
	})
}

func (srv *Server) UnsupportedMethod(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusMethodNotAllowed, &Error{
		ErrCode: ErrCodeBadMethod,
		Err:     "Invalid method for endpoint",
	})
}
