// Copyright (c) 2026 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package settings_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"maunium.net/go/mauspoiler/settings"
)

var loadTests = []struct {
	input    string
	expected settings.Settings
}{
	{``, settings.Settings{AlwaysReveal: false, LivePreview: true}},
	{`{}`, settings.Settings{AlwaysReveal: false, LivePreview: true}},
	{`{"alwaysReveal": true}`, settings.Settings{AlwaysReveal: true, LivePreview: true}},
	{`{"enableLivePreview": false}`, settings.Settings{AlwaysReveal: false, LivePreview: false}},
	{`{"alwaysReveal": "yes", "enableLivePreview": 0}`, settings.Settings{AlwaysReveal: false, LivePreview: true}},
	{`{"alwaysReveal": true, "enableLivePreview": false, "other": [1, 2]}`, settings.Settings{AlwaysReveal: true, LivePreview: false}},
}

func TestLoad(t *testing.T) {
	for _, test := range loadTests {
		s, err := settings.Load([]byte(test.input))
		require.NoError(t, err, test.input)
		assert.Equal(t, test.expected, s, test.input)
	}
}

func TestLoad_Invalid(t *testing.T) {
	for _, input := range []string{`{"alwaysReveal": tru`, `[true]`, `"text"`} {
		s, err := settings.Load([]byte(input))
		assert.ErrorIs(t, err, settings.ErrInvalidJSON, input)
		assert.Equal(t, settings.Default(), s)
	}
}

func TestSave_KeepsUnknownKeys(t *testing.T) {
	data, err := settings.Save([]byte(`{"theme": "dark", "alwaysReveal": false}`), settings.Settings{AlwaysReveal: true, LivePreview: false})
	require.NoError(t, err)
	assert.Equal(t, "dark", gjson.GetBytes(data, "theme").Str)
	assert.True(t, gjson.GetBytes(data, "alwaysReveal").Bool())
	assert.Equal(t, gjson.False, gjson.GetBytes(data, "enableLivePreview").Type)

	_, err = settings.Save([]byte(`nope`), settings.Default())
	assert.ErrorIs(t, err, settings.ErrInvalidJSON)
}

func TestFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	s, err := settings.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, settings.Default(), s)

	require.NoError(t, os.WriteFile(path, []byte(`{"custom": 5}`), 0600))
	require.NoError(t, settings.WriteFile(path, settings.Settings{AlwaysReveal: true}))
	s, err = settings.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, settings.Settings{AlwaysReveal: true, LivePreview: false}, s)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, int64(5), gjson.GetBytes(data, "custom").Int())

	require.NoError(t, os.WriteFile(path, []byte(`{`), 0600))
	_, err = settings.ReadFile(path)
	assert.ErrorIs(t, err, settings.ErrInvalidJSON)
}
