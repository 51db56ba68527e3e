// Copyright (c) 2026 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package commands

import (
	"fmt"

	"maunium.net/go/mauspoiler/delim"
)

// WrapSpoilerName is the name of the command that wraps the selection in spoiler delimiters.
const WrapSpoilerName = "wrap-spoiler"

// WrapSpoiler replaces the selection with ||selection|| and selects the text inside the delimiters.
// An empty selection inserts an empty pair with the cursor between the delimiters.
var WrapSpoiler = &Handler{
	Name:        WrapSpoilerName,
	Aliases:     []string{"spoiler"},
	Description: "Wrap the selection in spoiler delimiters",
	Func: func(ce *Event) error {
		from, to := ce.Editor.Selection()
		selected := ce.Editor.Slice(from, to)
		err := ce.Editor.Replace(from, to, delim.Token+selected+delim.Token)
		if err != nil {
			return fmt.Errorf("failed to replace selection: %w", err)
		}
		ce.Editor.SetSelection(from+delim.TokenLen, from+delim.TokenLen+len(selected))
		ce.Log.Debug().Int("from", from).Int("to", to).Msg("Wrapped selection in spoiler")
		return nil
	},
}
