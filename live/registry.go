// Copyright (c) 2026 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package live

import (
	"slices"
)

// Registry is the set of active live-mode extensions.
//
// It's only touched from the UI event goroutine, so there's no locking. After changing it,
// the caller applies the new list to its editors (see Document.ApplyExtensions).
type Registry struct {
	extensions []Extension
}

// DefaultRegistry is the process-wide registry of active live-mode extensions.
var DefaultRegistry = &Registry{}

// Register adds an extension and reports whether it wasn't registered already.
func (reg *Registry) Register(ext Extension) bool {
	if reg.Has(ext) {
		return false
	}
	reg.extensions = append(reg.extensions, ext)
	return true
}

// Unregister removes an extension and reports whether it was registered.
func (reg *Registry) Unregister(ext Extension) bool {
	idx := slices.Index(reg.extensions, ext)
	if idx < 0 {
		return false
	}
	reg.extensions = slices.Delete(reg.extensions, idx, idx+1)
	return true
}

func (reg *Registry) Has(ext Extension) bool {
	return slices.Contains(reg.extensions, ext)
}

// Extensions returns a copy of the registered extensions in registration order.
func (reg *Registry) Extensions() []Extension {
	return slices.Clone(reg.extensions)
}
