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
	"errors"
	"fmt"

	"github.com/blinklabs-io/avromodel/schema"
)

// Model is a record type derived from a value schema and an optional key
// schema. Its attributes are the union of the fields of both schemas.
type Model struct {
	env             *Env
	value           *schema.RecordSchema
	key             *schema.RecordSchema
	mutable         bool
	attributes      []*Attribute
	byName          map[string]*Attribute
	valueAttributes []*Attribute
	keyAttributes   []*Attribute
}

// Attribute is a named, typed slot of a model
type Attribute struct {
	name     string
	typ      AttributeType
	field    *schema.Field
	index    int
	nullable bool
}

func (a *Attribute) Name() string {
	return a.name
}

func (a *Attribute) Type() AttributeType {
	return a.typ
}

// Field returns the schema field the attribute was defined from. For an
// attribute shared by key and value this is the value field.
func (a *Attribute) Field() *schema.Field {
	return a.field
}

func (a *Attribute) Nullable() bool {
	return a.nullable
}

// Model defines a new model. The model is registered for nested use under
// the value schema full name unless that name is already taken.
func (e *Env) Model(opts ...ModelOptionFunc) (*Model, error) {
	cfg := modelConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	var err error
	if cfg.value == nil {
		if cfg.valueName == "" {
			return nil, errors.New("model requires a value schema")
		}
		if cfg.value, err = e.findRecord(cfg.valueName); err != nil {
			return nil, err
		}
	}
	if cfg.key == nil && cfg.keyName != "" {
		if cfg.key, err = e.findRecord(cfg.keyName); err != nil {
			return nil, err
		}
	}
	m := &Model{
		env:     e,
		value:   cfg.value,
		key:     cfg.key,
		mutable: cfg.mutable,
		byName:  make(map[string]*Attribute),
	}
	// Registering first lets a recursive schema refer to this model
	registered := e.models.registerIfAbsent(m)
	if err := m.defineAttributes(); err != nil {
		if registered {
			e.models.remove(m)
		}
		return nil, err
	}
	return m, nil
}

// MustModel is like Model but panics on error
func (e *Env) MustModel(opts ...ModelOptionFunc) *Model {
	m, err := e.Model(opts...)
	if err != nil {
		panic(err)
	}
	return m
}

// nestedModel returns the model for a record schema found inside another
// schema, creating and registering it on first use
func (e *Env) nestedModel(s *schema.RecordSchema, mutable bool) (*Model, error) {
	if existing, ok := e.models.Lookup(s.FullName()); ok {
		if existing.value != s && !schema.Equal(existing.value, s) {
			return nil, fmt.Errorf(
				"%w: nested model %s is already registered with a different schema",
				ErrModelRegistration,
				s.FullName(),
			)
		}
		return existing, nil
	}
	m := &Model{
		env:     e,
		value:   s,
		mutable: mutable,
		byName:  make(map[string]*Attribute),
	}
	if err := e.models.Register(m); err != nil {
		return nil, err
	}
	if err := m.defineAttributes(); err != nil {
		e.models.remove(m)
		return nil, err
	}
	e.logger.Debug("defined nested model", "model", s.FullName(), "mutable", mutable)
	return m, nil
}

func (m *Model) defineAttributes() error {
	for _, f := range m.value.Fields() {
		a, err := m.defineAttribute(f)
		if err != nil {
			return err
		}
		m.valueAttributes = append(m.valueAttributes, a)
	}
	if m.key == nil {
		return nil
	}
	for _, f := range m.key.Fields() {
		if existing, ok := m.byName[f.Name()]; ok {
			if !schema.Equal(existing.field.Type(), f.Type()) {
				return fmt.Errorf(
					"%s: key field %s does not match the value field type",
					m.FullName(),
					f.Name(),
				)
			}
			m.keyAttributes = append(m.keyAttributes, existing)
			continue
		}
		a, err := m.defineAttribute(f)
		if err != nil {
			return err
		}
		m.keyAttributes = append(m.keyAttributes, a)
	}
	return nil
}

func (m *Model) defineAttribute(f *schema.Field) (*Attribute, error) {
	typ, err := m.env.typeFor(f.Type(), m.mutable)
	if err != nil {
		return nil, fmt.Errorf("%s.%s: %w", m.FullName(), f.Name(), err)
	}
	a := &Attribute{
		name:     f.Name(),
		typ:      typ,
		field:    f,
		index:    len(m.attributes),
		nullable: schema.Nullable(f.Type()),
	}
	m.attributes = append(m.attributes, a)
	m.byName[a.name] = a
	return a, nil
}

// FullName returns the full name of the value schema
func (m *Model) FullName() string {
	return m.value.FullName()
}

func (m *Model) ValueSchema() *schema.RecordSchema {
	return m.value
}

// KeySchema returns nil when the model has no key schema
func (m *Model) KeySchema() *schema.RecordSchema {
	return m.key
}

func (m *Model) Mutable() bool {
	return m.mutable
}

func (m *Model) Env() *Env {
	return m.env
}

// Attributes returns value attributes in value schema order followed by
// key-only attributes
func (m *Model) Attributes() []*Attribute {
	return m.attributes
}

func (m *Model) Attribute(name string) (*Attribute, bool) {
	a, ok := m.byName[name]
	return a, ok
}

// ReferencedModels returns the nested models used directly by attributes
func (m *Model) ReferencedModels() []*Model {
	seen := make(map[*Model]bool)
	var ret []*Model
	for _, a := range m.attributes {
		for _, nested := range a.typ.ReferencedModels() {
			if !seen[nested] {
				seen[nested] = true
				ret = append(ret, nested)
			}
		}
	}
	return ret
}
