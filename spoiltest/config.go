// Copyright (c) 2026 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package main

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	up "go.mau.fi/util/configupgrade"
	"go.mau.fi/zeroconfig"
	"gopkg.in/yaml.v3"

	"maunium.net/go/mauspoiler/preview"
)

//go:embed example-config.yaml
var ExampleConfig string

type Config struct {
	SettingsPath string            `yaml:"settings_path"`
	Preview      preview.Config    `yaml:"preview"`
	Logging      zeroconfig.Config `yaml:"logging"`
}

func doUpgrade(helper up.Helper) {
	helper.Copy(up.Str, "settings_path")
	helper.Copy(up.Str|up.Null, "preview", "listen")
	helper.Copy(up.Bool, "preview", "allow_html")
	helper.Copy(up.Map, "logging")
}

var Upgrader = &up.StructUpgrader{
	SimpleUpgrader: doUpgrade,
	Blocks: [][]string{
		{"preview"},
		{"logging"},
	},
	Base: ExampleConfig,
}

// LoadConfig reads the config file, creating it from the example config if it doesn't exist,
// and adds any options that are missing from it.
func LoadConfig(path string, save bool) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		err = os.WriteFile(path, []byte(ExampleConfig), 0600)
		if err != nil {
			return nil, fmt.Errorf("failed to write example config: %w", err)
		}
	}
	configData, upgraded, err := up.Do(path, save, Upgrader)
	if err != nil && !upgraded {
		return nil, fmt.Errorf("failed to upgrade config: %w", err)
	} else if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "Failed to save updated config:", err)
	}
	var cfg Config
	err = yaml.Unmarshal(configData, &cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
