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

package schema

import (
	"strings"
)

type Type string

const (
	TypeNull    Type = "null"
	TypeBoolean Type = "boolean"
	TypeInt     Type = "int"
	TypeLong    Type = "long"
	TypeFloat   Type = "float"
	TypeDouble  Type = "double"
	TypeBytes   Type = "bytes"
	TypeString  Type = "string"
	TypeFixed   Type = "fixed"
	TypeEnum    Type = "enum"
	TypeArray   Type = "array"
	TypeMap     Type = "map"
	TypeUnion   Type = "union"
	TypeRecord  Type = "record"
)

// Logical type names understood by the model package
const (
	LogicalDate            = "date"
	LogicalTimestampMillis = "timestamp-millis"
	LogicalTimestampMicros = "timestamp-micros"
	LogicalDecimal         = "decimal"
	LogicalUUID            = "uuid"
)

// Schema is a parsed Avro schema node. Schemas are immutable once parsed.
type Schema interface {
	Type() Type
	// TypeName is the name of the schema as used to label union branches:
	// the full name for named types and the type keyword otherwise
	TypeName() string
}

// Named is implemented by record, enum and fixed schemas
type Named interface {
	Schema
	FullName() string
	Name() string
	Namespace() string
	Aliases() []string
}

// name holds the name and namespace of a named type
type name struct {
	name      string
	namespace string
	aliases   []string
}

func newName(n string, namespace string) name {
	// A dotted name carries its own namespace
	if idx := strings.LastIndex(n, "."); idx >= 0 {
		return name{name: n[idx+1:], namespace: n[:idx]}
	}
	return name{name: n, namespace: namespace}
}

func (n name) Name() string {
	return n.name
}

func (n name) Namespace() string {
	return n.namespace
}

func (n name) FullName() string {
	if n.namespace == "" {
		return n.name
	}
	return n.namespace + "." + n.name
}

func (n name) Aliases() []string {
	return n.aliases
}

// Primitive is one of the non-named, non-complex Avro types, optionally
// annotated with a logical type
type Primitive struct {
	typ         Type
	logicalType string
	precision   int
	scale       int
}

func NewPrimitive(typ Type) *Primitive {
	return &Primitive{typ: typ}
}

func (p *Primitive) Type() Type {
	return p.typ
}

func (p *Primitive) TypeName() string {
	return string(p.typ)
}

func (p *Primitive) LogicalType() string {
	return p.logicalType
}

func (p *Primitive) Precision() int {
	return p.precision
}

func (p *Primitive) Scale() int {
	return p.scale
}

type FixedSchema struct {
	name
	size        int
	logicalType string
	precision   int
	scale       int
}

func (f *FixedSchema) Type() Type {
	return TypeFixed
}

func (f *FixedSchema) TypeName() string {
	return f.FullName()
}

func (f *FixedSchema) Size() int {
	return f.size
}

func (f *FixedSchema) LogicalType() string {
	return f.logicalType
}

func (f *FixedSchema) Precision() int {
	return f.precision
}

func (f *FixedSchema) Scale() int {
	return f.scale
}

type EnumSchema struct {
	name
	symbols    []string
	def        string
	hasDefault bool
}

func (e *EnumSchema) Type() Type {
	return TypeEnum
}

func (e *EnumSchema) TypeName() string {
	return e.FullName()
}

func (e *EnumSchema) Symbols() []string {
	return e.symbols
}

// Default returns the enum default symbol used during schema resolution
func (e *EnumSchema) Default() (string, bool) {
	return e.def, e.hasDefault
}

func (e *EnumSchema) HasSymbol(symbol string) bool {
	for _, s := range e.symbols {
		if s == symbol {
			return true
		}
	}
	return false
}

type ArraySchema struct {
	items Schema
}

func NewArray(items Schema) *ArraySchema {
	return &ArraySchema{items: items}
}

func (a *ArraySchema) Type() Type {
	return TypeArray
}

func (a *ArraySchema) TypeName() string {
	return string(TypeArray)
}

func (a *ArraySchema) Items() Schema {
	return a.items
}

type MapSchema struct {
	values Schema
}

func NewMap(values Schema) *MapSchema {
	return &MapSchema{values: values}
}

func (m *MapSchema) Type() Type {
	return TypeMap
}

func (m *MapSchema) TypeName() string {
	return string(TypeMap)
}

func (m *MapSchema) Values() Schema {
	return m.values
}

type UnionSchema struct {
	types []Schema
}

func NewUnion(types ...Schema) *UnionSchema {
	return &UnionSchema{types: types}
}

func (u *UnionSchema) Type() Type {
	return TypeUnion
}

func (u *UnionSchema) TypeName() string {
	return string(TypeUnion)
}

func (u *UnionSchema) Types() []Schema {
	return u.types
}

// NullIndex returns the index of the null branch, or -1
func (u *UnionSchema) NullIndex() int {
	for i, t := range u.types {
		if t.Type() == TypeNull {
			return i
		}
	}
	return -1
}

type Field struct {
	name       string
	typ        Schema
	def        any
	hasDefault bool
	aliases    []string
	doc        string
}

func NewField(name string, typ Schema) *Field {
	return &Field{name: name, typ: typ}
}

// WithDefault returns a copy of the field with the given JSON default value
func (f *Field) WithDefault(def any) *Field {
	ret := *f
	ret.def = def
	ret.hasDefault = true
	return &ret
}

func (f *Field) Name() string {
	return f.name
}

func (f *Field) Type() Schema {
	return f.typ
}

// Default returns the JSON-decoded default value. Numbers are json.Number.
func (f *Field) Default() (any, bool) {
	return f.def, f.hasDefault
}

func (f *Field) Aliases() []string {
	return f.aliases
}

func (f *Field) Doc() string {
	return f.doc
}

// HasAlias reports whether the field answers to name, either directly or
// through one of its aliases
func (f *Field) HasAlias(name string) bool {
	if f.name == name {
		return true
	}
	for _, a := range f.aliases {
		if a == name {
			return true
		}
	}
	return false
}

type RecordSchema struct {
	name
	fields []*Field
	doc    string
}

// NewRecord builds a record schema in the given namespace. It is used to
// compose key schemas and in tests; parsed schemas come from Parse.
func NewRecord(name string, namespace string, fields ...*Field) *RecordSchema {
	return &RecordSchema{
		name:   newName(name, namespace),
		fields: fields,
	}
}

func (r *RecordSchema) Type() Type {
	return TypeRecord
}

func (r *RecordSchema) TypeName() string {
	return r.FullName()
}

func (r *RecordSchema) Fields() []*Field {
	return r.fields
}

func (r *RecordSchema) Doc() string {
	return r.doc
}

func (r *RecordSchema) Field(name string) (*Field, bool) {
	for _, f := range r.fields {
		if f.name == name {
			return f, true
		}
	}
	return nil, false
}

// Nullable reports whether the schema accepts null
func Nullable(s Schema) bool {
	switch v := s.(type) {
	case *Primitive:
		return v.typ == TypeNull
	case *UnionSchema:
		return v.NullIndex() >= 0
	}
	return false
}

// Walk calls fn for s and every schema nested in it. Named types are visited
// once, which makes Walk safe on recursive schemas.
func Walk(s Schema, fn func(Schema)) {
	walk(s, fn, map[string]bool{})
}

func walk(s Schema, fn func(Schema), seen map[string]bool) {
	if n, ok := s.(Named); ok {
		if seen[n.FullName()] {
			return
		}
		seen[n.FullName()] = true
	}
	fn(s)
	switch v := s.(type) {
	case *ArraySchema:
		walk(v.items, fn, seen)
	case *MapSchema:
		walk(v.values, fn, seen)
	case *UnionSchema:
		for _, t := range v.types {
			walk(t, fn, seen)
		}
	case *RecordSchema:
		for _, f := range v.fields {
			walk(f.typ, fn, seen)
		}
	}
}
