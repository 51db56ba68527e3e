// Copyright (c) 2026 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package settings reads and writes the persisted spoiler preferences.
//
// The settings file may be shared with other data, so saving only touches the known keys.
package settings

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	"go.mau.fi/util/exgjson"
)

var ErrInvalidJSON = errors.New("settings data is not valid JSON")

var (
	alwaysRevealPath = exgjson.Path("alwaysReveal")
	livePreviewPath  = exgjson.Path("enableLivePreview")
)

type Settings struct {
	// AlwaysReveal disables rendered-mode spoilers entirely.
	AlwaysReveal bool `json:"alwaysReveal"`
	// LivePreview enables decorations in the editor.
	LivePreview bool `json:"enableLivePreview"`
}

func Default() Settings {
	return Settings{
		AlwaysReveal: false,
		LivePreview:  true,
	}
}

func getBool(data []byte, path string, def bool) bool {
	switch res := gjson.GetBytes(data, path); res.Type {
	case gjson.True:
		return true
	case gjson.False:
		return false
	default:
		return def
	}
}

// Load parses settings data. Missing or non-boolean keys use the defaults, and empty data means all defaults.
func Load(data []byte) (Settings, error) {
	s := Default()
	if len(bytes.TrimSpace(data)) == 0 {
		return s, nil
	} else if !gjson.ValidBytes(data) || !gjson.ParseBytes(data).IsObject() {
		return s, ErrInvalidJSON
	}
	s.AlwaysReveal = getBool(data, alwaysRevealPath, s.AlwaysReveal)
	s.LivePreview = getBool(data, livePreviewPath, s.LivePreview)
	return s, nil
}

// Save writes the settings into existing settings data, keeping any other keys as they were.
func Save(existing []byte, s Settings) ([]byte, error) {
	if len(bytes.TrimSpace(existing)) == 0 {
		existing = []byte("{}")
	} else if !gjson.ValidBytes(existing) || !gjson.ParseBytes(existing).IsObject() {
		return nil, ErrInvalidJSON
	}
	data, err := sjson.SetBytes(existing, alwaysRevealPath, s.AlwaysReveal)
	if err != nil {
		return nil, fmt.Errorf("failed to set %s: %w", alwaysRevealPath, err)
	}
	data, err = sjson.SetBytes(data, livePreviewPath, s.LivePreview)
	if err != nil {
		return nil, fmt.Errorf("failed to set %s: %w", livePreviewPath, err)
	}
	return data, nil
}

// ReadFile loads settings from a file. A missing file means default settings.
func ReadFile(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	} else if err != nil {
		return Default(), fmt.Errorf("failed to read settings file: %w", err)
	}
	s, err := Load(data)
	if err != nil {
		return s, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return s, nil
}

// WriteFile saves settings into a file, keeping unrelated keys that are already in it.
func WriteFile(path string, s Settings) error {
	existing, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to read settings file: %w", err)
	}
	data, err := Save(existing, s)
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", path, err)
	}
	err = os.WriteFile(path, data, 0600)
	if err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}
	return nil
}
