// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package model

import (
	"fmt"
	"sort"
	"sync"
)

// ModelRegistry maps record full names to the model used when that record
// appears nested inside another schema
type ModelRegistry struct {
	mu     sync.RWMutex
	models map[string]*Model
}

func NewModelRegistry() *ModelRegistry {
	return &ModelRegistry{
		models: make(map[string]*Model),
	}
}

// Register adds m under its full name. Registering a different model under
// a name that is already taken fails.
func (r *ModelRegistry) Register(m *Model) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.models[m.FullName()]; ok {
		if existing == m {
			return nil
		}
		return fmt.Errorf("%w: %s is already registered", ErrModelRegistration, m.FullName())
	}
	r.models[m.FullName()] = m
	return nil
}

// registerIfAbsent registers m unless the name is taken and reports whether
// it did
func (r *ModelRegistry) registerIfAbsent(m *Model) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.models[m.FullName()]; ok {
		return false
	}
	r.models[m.FullName()] = m
	return true
}

func (r *ModelRegistry) remove(m *Model) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.models[m.FullName()] == m {
		delete(r.models, m.FullName())
	}
}

func (r *ModelRegistry) Lookup(fullName string) (*Model, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.models[fullName]
	return m, ok
}

func (r *ModelRegistry) Registered(fullName string) bool {
	_, ok := r.Lookup(fullName)
	return ok
}

// Names returns the registered full names in sorted order
func (r *ModelRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ret := make([]string, 0, len(r.models))
	for name := range r.models {
		ret = append(ret, name)
	}
	sort.Strings(ret)
	return ret
}

func (r *ModelRegistry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.models = make(map[string]*Model)
}
