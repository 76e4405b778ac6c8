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
	"strings"
	"sync/atomic"

	"github.com/blinklabs-io/avromodel/avroio"
)

// Record is an instance of a model. Values are held in canonical form.
//
// Instances of immutable models cache their encodable trees and raw
// encodings on first use. They are safe for concurrent use.
type Record struct {
	model      *Model
	values     []any
	valueAttrs atomic.Pointer[avroio.Attributes]
	keyAttrs   atomic.Pointer[avroio.Attributes]
	rawValue   atomic.Pointer[[]byte]
	rawKey     atomic.Pointer[[]byte]
	native     atomic.Pointer[map[string]any]
}

// New builds an instance from attribute values. Values are coerced to their
// canonical form and attributes that are not given take their schema
// default, if any.
func (m *Model) New(attrs map[string]any) (*Record, error) {
	if !m.env.allowUnknownAttributes {
		var unknown []string
		for name := range attrs {
			if _, ok := m.byName[name]; !ok {
				unknown = append(unknown, name)
			}
		}
		if len(unknown) > 0 {
			sort.Strings(unknown)
			return nil, fmt.Errorf(
				"%w for %s: %s",
				ErrUnknownAttribute,
				m.FullName(),
				strings.Join(unknown, ", "),
			)
		}
	}
	r := m.newRecord()
	for _, a := range m.attributes {
		input, ok := attrs[a.name]
		if !ok {
			def, err := a.defaultValue()
			if err != nil {
				return nil, fmt.Errorf("%s.%s: %w", m.FullName(), a.name, err)
			}
			r.values[a.index] = def
			continue
		}
		v, err := a.typ.Coerce(input)
		if err != nil {
			return nil, err
		}
		r.values[a.index] = v
	}
	return r, nil
}

// MustNew is like New but panics on error
func (m *Model) MustNew(attrs map[string]any) *Record {
	r, err := m.New(attrs)
	if err != nil {
		panic(err)
	}
	return r
}

func (m *Model) newRecord() *Record {
	return &Record{
		model:  m,
		values: make([]any, len(m.attributes)),
	}
}

// fromDatum builds an instance from a resolved value datum
func (m *Model) fromDatum(fields map[string]any) (*Record, error) {
	r := m.newRecord()
	if err := r.assignDatum(m.valueAttributes, fields); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Record) assignDatum(attrs []*Attribute, fields map[string]any) error {
	for _, a := range attrs {
		raw, ok := fields[a.name]
		if !ok {
			continue
		}
		v, err := a.typ.Deserialize(raw)
		if err != nil {
			return err
		}
		r.values[a.index] = v
	}
	return nil
}

func (a *Attribute) defaultValue() (any, error) {
	def, ok := a.field.Default()
	if !ok {
		return nil, nil
	}
	datum, err := avroio.DefaultDatum(a.field.Type(), def)
	if err != nil {
		return nil, err
	}
	return a.typ.Deserialize(datum)
}

func (r *Record) Model() *Model {
	return r.model
}

// FullName returns the full name of the model value schema
func (r *Record) FullName() string {
	return r.model.FullName()
}

// Get returns the value of an attribute, or nil when the attribute is unset
// or unknown. Returned collections must not be modified.
func (r *Record) Get(name string) any {
	v, _ := r.Lookup(name)
	return v
}

// Lookup returns the value of an attribute and whether the attribute exists
func (r *Record) Lookup(name string) (any, bool) {
	a, ok := r.model.byName[name]
	if !ok {
		return nil, false
	}
	return r.values[a.index], true
}

// Attributes returns all attribute values by name
func (r *Record) Attributes() map[string]any {
	ret := make(map[string]any, len(r.values))
	for _, a := range r.model.attributes {
		ret[a.name] = r.values[a.index]
	}
	return ret
}

// Set coerces and assigns an attribute value on an instance of a mutable
// model
func (r *Record) Set(name string, value any) error {
	if !r.model.mutable {
		return fmt.Errorf("%w: cannot set %s on %s", ErrImmutable, name, r.FullName())
	}
	a, ok := r.model.byName[name]
	if !ok {
		return fmt.Errorf("%w for %s: %s", ErrUnknownAttribute, r.FullName(), name)
	}
	v, err := a.typ.Coerce(value)
	if err != nil {
		return err
	}
	r.values[a.index] = v
	return nil
}

// Validate checks that every non-nullable attribute has a value
func (r *Record) Validate() error {
	var missing []string
	for _, a := range r.model.attributes {
		if r.values[a.index] == nil && !a.nullable {
			missing = append(missing, a.name)
		}
	}
	if len(missing) > 0 {
		return ValidationError{Model: r.FullName(), Missing: missing}
	}
	return nil
}

func (r *Record) String() string {
	var sb strings.Builder
	sb.WriteString(r.FullName())
	sb.WriteString("{")
	for i, a := range r.model.attributes {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%s: %v", a.name, r.values[a.index])
	}
	sb.WriteString("}")
	return sb.String()
}
