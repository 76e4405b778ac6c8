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
	"bytes"
	"encoding/json"
	"strconv"
)

type jsonMode int

const (
	// Everything the parser understands
	jsonFull jsonMode = iota
	// Only what the binary encoding depends on, plus field defaults
	jsonPhysical
	// Names, types and structure only
	jsonCanonical
)

// String returns the JSON text of the schema, including logical types,
// defaults, aliases and docs. Named types are written out in full the first
// time they appear and referenced by full name afterwards.
func String(s Schema) string {
	return emit(s, jsonFull)
}

// PhysicalJSON returns the JSON text of the schema with logical type
// annotations removed. The binary codec only ever sees this form, so
// logical conversions are left to the caller.
func PhysicalJSON(s Schema) string {
	return emit(s, jsonPhysical)
}

// Canonical returns a normalized form of the schema holding only full names,
// types and structure. Two schemas with the same canonical form encode
// identically.
func Canonical(s Schema) string {
	return emit(s, jsonCanonical)
}

// Equal reports whether two schemas have the same canonical form
func Equal(a, b Schema) bool {
	return Canonical(a) == Canonical(b)
}

func emit(s Schema, mode jsonMode) string {
	e := &emitter{mode: mode, seen: map[string]bool{}}
	e.schema(s)
	return e.buf.String()
}

type emitter struct {
	buf  bytes.Buffer
	mode jsonMode
	seen map[string]bool
}

func (e *emitter) str(s string) {
	data, _ := json.Marshal(s)
	e.buf.Write(data)
}

func (e *emitter) schema(s Schema) {
	switch v := s.(type) {
	case *Primitive:
		if v.logicalType == "" || e.mode != jsonFull {
			e.str(string(v.typ))
			return
		}
		e.buf.WriteString(`{"type":`)
		e.str(string(v.typ))
		e.logical(v.logicalType, v.precision, v.scale)
		e.buf.WriteByte('}')
	case *ArraySchema:
		e.buf.WriteString(`{"type":"array","items":`)
		e.schema(v.items)
		e.buf.WriteByte('}')
	case *MapSchema:
		e.buf.WriteString(`{"type":"map","values":`)
		e.schema(v.values)
		e.buf.WriteByte('}')
	case *UnionSchema:
		e.buf.WriteByte('[')
		for i, t := range v.types {
			if i > 0 {
				e.buf.WriteByte(',')
			}
			e.schema(t)
		}
		e.buf.WriteByte(']')
	case *FixedSchema:
		if e.reference(v) {
			return
		}
		e.buf.WriteString(`{"type":"fixed","name":`)
		e.str(v.FullName())
		e.aliases(v.aliases)
		e.buf.WriteString(`,"size":`)
		e.buf.WriteString(strconv.Itoa(v.size))
		if e.mode == jsonFull && v.logicalType != "" {
			e.logical(v.logicalType, v.precision, v.scale)
		}
		e.buf.WriteByte('}')
	case *EnumSchema:
		if e.reference(v) {
			return
		}
		e.buf.WriteString(`{"type":"enum","name":`)
		e.str(v.FullName())
		e.aliases(v.aliases)
		e.buf.WriteString(`,"symbols":[`)
		for i, sym := range v.symbols {
			if i > 0 {
				e.buf.WriteByte(',')
			}
			e.str(sym)
		}
		e.buf.WriteByte(']')
		if e.mode == jsonFull && v.hasDefault {
			e.buf.WriteString(`,"default":`)
			e.str(v.def)
		}
		e.buf.WriteByte('}')
	case *RecordSchema:
		if e.reference(v) {
			return
		}
		e.buf.WriteString(`{"type":"record","name":`)
		e.str(v.FullName())
		e.aliases(v.aliases)
		if e.mode == jsonFull && v.doc != "" {
			e.buf.WriteString(`,"doc":`)
			e.str(v.doc)
		}
		e.buf.WriteString(`,"fields":[`)
		for i, f := range v.fields {
			if i > 0 {
				e.buf.WriteByte(',')
			}
			e.field(f)
		}
		e.buf.WriteString(`]}`)
	}
}

// reference writes the full name of an already emitted named type
func (e *emitter) reference(n Named) bool {
	if e.seen[n.FullName()] {
		e.str(n.FullName())
		return true
	}
	e.seen[n.FullName()] = true
	return false
}

func (e *emitter) aliases(aliases []string) {
	if e.mode != jsonFull || len(aliases) == 0 {
		return
	}
	e.buf.WriteString(`,"aliases":[`)
	for i, a := range aliases {
		if i > 0 {
			e.buf.WriteByte(',')
		}
		e.str(a)
	}
	e.buf.WriteByte(']')
}

func (e *emitter) logical(logicalType string, precision int, scale int) {
	e.buf.WriteString(`,"logicalType":`)
	e.str(logicalType)
	if logicalType == LogicalDecimal {
		e.buf.WriteString(`,"precision":`)
		e.buf.WriteString(strconv.Itoa(precision))
		e.buf.WriteString(`,"scale":`)
		e.buf.WriteString(strconv.Itoa(scale))
	}
}

func (e *emitter) field(f *Field) {
	e.buf.WriteString(`{"name":`)
	e.str(f.name)
	if e.mode == jsonFull {
		e.aliases(f.aliases)
		if f.doc != "" {
			e.buf.WriteString(`,"doc":`)
			e.str(f.doc)
		}
	}
	e.buf.WriteString(`,"type":`)
	e.schema(f.typ)
	if e.mode != jsonCanonical && f.hasDefault {
		e.buf.WriteString(`,"default":`)
		data, err := json.Marshal(f.def)
		if err != nil {
			// Defaults come from decoded JSON and always marshal
			data = []byte("null")
		}
		e.buf.Write(data)
	}
	e.buf.WriteByte('}')
}
