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
	"sync/atomic"

	"github.com/blinklabs-io/avromodel/avroio"
	"github.com/blinklabs-io/avromodel/schema"
)

// ValueAttributesForAvro returns the encodable tree of the value schema
// fields. For immutable models the tree is built once and shared by every
// caller, so it must not be modified.
func (r *Record) ValueAttributesForAvro() (*avroio.Attributes, error) {
	return r.cachedAttributes(&r.valueAttrs, r.model.value, r.model.valueAttributes)
}

// KeyAttributesForAvro returns the encodable tree of the key schema fields
func (r *Record) KeyAttributesForAvro() (*avroio.Attributes, error) {
	if r.model.key == nil {
		return nil, ErrNoKeySchema
	}
	return r.cachedAttributes(&r.keyAttrs, r.model.key, r.model.keyAttributes)
}

// CachedNative returns the goavro native form of the value for immutable
// models, calling build only on first use. Mutable instances and schemas
// other than the model value schema build on every call.
func (r *Record) CachedNative(
	s *schema.RecordSchema,
	build func() (map[string]any, error),
) (map[string]any, error) {
	if r.model.mutable || s != r.model.value {
		return build()
	}
	if ret := r.native.Load(); ret != nil {
		return *ret, nil
	}
	ret, err := build()
	if err != nil {
		return nil, err
	}
	if !r.native.CompareAndSwap(nil, &ret) {
		return *r.native.Load(), nil
	}
	return ret, nil
}

func (r *Record) cachedAttributes(
	cell *atomic.Pointer[avroio.Attributes],
	s *schema.RecordSchema,
	attrs []*Attribute,
) (*avroio.Attributes, error) {
	if r.model.mutable {
		return r.avroAttributes(s, attrs)
	}
	if ret := cell.Load(); ret != nil {
		return ret, nil
	}
	ret, err := r.avroAttributes(s, attrs)
	if err != nil {
		return nil, err
	}
	// Keep the first tree stored if another caller won the race
	if !cell.CompareAndSwap(nil, ret) {
		return cell.Load(), nil
	}
	return ret, nil
}

func (r *Record) avroAttributes(s *schema.RecordSchema, attrs []*Attribute) (*avroio.Attributes, error) {
	strict := r.model.env.strict
	ret := &avroio.Attributes{
		Name:   s.FullName(),
		Fields: make([]avroio.Field, 0, len(attrs)),
	}
	var missing []string
	for _, a := range attrs {
		value := r.values[a.index]
		if value == nil && !a.nullable {
			// Without strict mode the writer falls back to the field default
			// or reports the missing value itself
			if strict {
				missing = append(missing, a.name)
			}
			continue
		}
		node, err := a.typ.Serialize(value, strict)
		if err != nil {
			return nil, err
		}
		ret.Fields = append(ret.Fields, avroio.Field{Name: a.name, Node: node})
	}
	if len(missing) > 0 {
		return nil, ValidationError{Model: s.FullName(), Missing: missing}
	}
	return ret, nil
}
