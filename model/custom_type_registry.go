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
	"reflect"
	"sort"
	"sync"
)

// CustomType binds a named schema type to application values.
//
// FromRaw converts a canonical value of the underlying schema type into the
// application value and ToRaw converts back. A conversion that cannot handle
// its input must return an error. Missing functions default to the identity.
//
// ValueType or Matches, when set, identify values that are already in
// application form. Without either the type can only be matched by trying
// ToRaw.
type CustomType struct {
	FromRaw   func(raw any) (any, error)
	ToRaw     func(value any) (any, error)
	ValueType reflect.Type
	Matches   func(value any) bool
}

// ValueClass is an application type that converts itself to and from the
// canonical value of a named schema type
type ValueClass interface {
	FromAvro(raw any) (any, error)
	ToAvro(value any) (any, error)
}

// CustomTypeRegistry maps schema full names to custom type bindings.
// Bindings are read when a model is built, so registration must precede the
// definition of the models that use them.
type CustomTypeRegistry struct {
	mu    sync.RWMutex
	types map[string]*CustomType
}

func NewCustomTypeRegistry() *CustomTypeRegistry {
	return &CustomTypeRegistry{
		types: make(map[string]*CustomType),
	}
}

// RegisterType registers a binding for fullName, replacing any earlier one
func (r *CustomTypeRegistry) RegisterType(fullName string, configure func(*CustomType)) {
	ct := &CustomType{}
	if configure != nil {
		configure(ct)
	}
	r.register(fullName, ct)
}

// RegisterValueClass registers a binding that converts through class. Values
// of the dynamic type of class are treated as already converted.
func (r *CustomTypeRegistry) RegisterValueClass(fullName string, class ValueClass) {
	r.register(
		fullName,
		&CustomType{
			FromRaw:   class.FromAvro,
			ToRaw:     class.ToAvro,
			ValueType: reflect.TypeOf(class),
		},
	)
}

func (r *CustomTypeRegistry) register(fullName string, ct *CustomType) {
	if ct.FromRaw == nil {
		ct.FromRaw = identity
	}
	if ct.ToRaw == nil {
		ct.ToRaw = identity
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.types[fullName] = ct
}

func (r *CustomTypeRegistry) Lookup(fullName string) (*CustomType, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ct, ok := r.types[fullName]
	return ct, ok
}

func (r *CustomTypeRegistry) Registered(fullName string) bool {
	_, ok := r.Lookup(fullName)
	return ok
}

// Names returns the registered full names in sorted order
func (r *CustomTypeRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ret := make([]string, 0, len(r.types))
	for name := range r.types {
		ret = append(ret, name)
	}
	sort.Strings(ret)
	return ret
}

func (r *CustomTypeRegistry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.types = make(map[string]*CustomType)
}

func identity(v any) (any, error) {
	return v, nil
}
