// Copyright (c) 2026 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package commands

import (
	"fmt"
	"slices"
	"strings"
	"sync"
)

type CommandContainer struct {
	commands map[string]*Handler
	aliases  map[string]string
	lock     sync.RWMutex
}

func NewCommandContainer() *CommandContainer {
	return &CommandContainer{
		commands: make(map[string]*Handler),
		aliases:  make(map[string]string),
	}
}

// Register registers the given command handlers.
func (cont *CommandContainer) Register(handlers ...*Handler) {
	if cont == nil {
		return
	}
	cont.lock.Lock()
	defer cont.lock.Unlock()
	for _, handler := range handlers {
		cont.registerOne(handler)
	}
}

func (cont *CommandContainer) registerOne(handler *Handler) {
	if strings.ToLower(handler.Name) != handler.Name {
		panic(fmt.Errorf("command %q is not lowercase", handler.Name))
	} else if val, alreadyExists := cont.commands[handler.Name]; alreadyExists && val != handler {
		panic(fmt.Errorf("tried to register command %q, but it's already registered", handler.Name))
	} else if aliasTarget, alreadyExists := cont.aliases[handler.Name]; alreadyExists {
		panic(fmt.Errorf("tried to register command %q, but it's already registered as an alias for %q", handler.Name, aliasTarget))
	}
	cont.commands[handler.Name] = handler
	for _, alias := range handler.Aliases {
		if strings.ToLower(alias) != alias {
			panic(fmt.Errorf("alias %q is not lowercase", alias))
		} else if val, alreadyExists := cont.aliases[alias]; alreadyExists && val != handler.Name {
			panic(fmt.Errorf("tried to register alias %q for %q, but it's already registered for %q", alias, handler.Name, val))
		} else if _, alreadyExists = cont.commands[alias]; alreadyExists {
			panic(fmt.Errorf("tried to register alias %q for %q, but it's already registered as a command", alias, handler.Name))
		}
		cont.aliases[alias] = handler.Name
	}
}

func (cont *CommandContainer) Unregister(handlers ...*Handler) {
	if cont == nil {
		return
	}
	cont.lock.Lock()
	defer cont.lock.Unlock()
	for _, handler := range handlers {
		if cont.commands[handler.Name] != handler {
			continue
		}
		delete(cont.commands, handler.Name)
		for _, alias := range handler.Aliases {
			if cont.aliases[alias] == handler.Name {
				delete(cont.aliases, alias)
			}
		}
	}
}

// GetHandler finds the handler of a command by its name or one of its aliases.
func (cont *CommandContainer) GetHandler(name string) *Handler {
	if cont == nil {
		return nil
	}
	cont.lock.RLock()
	defer cont.lock.RUnlock()
	if alias, ok := cont.aliases[name]; ok {
		name = alias
	}
	return cont.commands[name]
}

// Names returns the primary names of all registered commands in sorted order.
func (cont *CommandContainer) Names() []string {
	cont.lock.RLock()
	defer cont.lock.RUnlock()
	names := make([]string, 0, len(cont.commands))
	for name := range cont.commands {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
