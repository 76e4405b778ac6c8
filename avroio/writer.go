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

package avroio

import (
	"errors"
	"fmt"

	"github.com/blinklabs-io/avromodel/schema"
	"github.com/linkedin/goavro/v2"
)

var ErrUnionBranch = errors.New("no union branch for node")

// Encode writes the attributes of a record against the record schema
func (c *Codecs) Encode(s *schema.RecordSchema, attrs *Attributes) ([]byte, error) {
	codec, err := c.For(s)
	if err != nil {
		return nil, err
	}
	native, err := Native(s, attrs)
	if err != nil {
		return nil, err
	}
	data, err := codec.BinaryFromNative(nil, native)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", s.FullName(), err)
	}
	return data, nil
}

// Native converts an encodable tree into the goavro native form of the
// schema. Deferred records are expanded once per provider, or taken from
// the provider when it is a NativeCache.
func Native(s schema.Schema, n Node) (any, error) {
	w := &writer{
		memo: map[Provider]map[string]any{},
	}
	return w.native(s, n)
}

// NativeCache is implemented by providers that keep the native form of
// their record between encodes. build produces the native form of s and the
// returned map is never modified by the writer.
type NativeCache interface {
	CachedNative(s *schema.RecordSchema, build func() (map[string]any, error)) (map[string]any, error)
}

type writer struct {
	memo map[Provider]map[string]any
}

func (w *writer) native(s schema.Schema, n Node) (any, error) {
	if n == nil {
		return nil, fmt.Errorf("missing node for %s", s.TypeName())
	}
	if u, ok := s.(*schema.UnionSchema); ok {
		return w.union(u, n)
	}
	switch v := n.(type) {
	case *Leaf:
		return v.Value, nil
	case *Array:
		arr, ok := s.(*schema.ArraySchema)
		if !ok {
			return nil, mismatch(s, n)
		}
		ret := make([]any, len(v.Items))
		for i, item := range v.Items {
			tmp, err := w.native(arr.Items(), item)
			if err != nil {
				return nil, err
			}
			ret[i] = tmp
		}
		return ret, nil
	case *Map:
		m, ok := s.(*schema.MapSchema)
		if !ok {
			return nil, mismatch(s, n)
		}
		ret := make(map[string]any, len(v.Entries))
		for key, value := range v.Entries {
			tmp, err := w.native(m.Values(), value)
			if err != nil {
				return nil, err
			}
			ret[key] = tmp
		}
		return ret, nil
	case *Attributes:
		rec, ok := s.(*schema.RecordSchema)
		if !ok {
			return nil, mismatch(s, n)
		}
		return w.record(rec, v)
	case *Deferred:
		rec, ok := s.(*schema.RecordSchema)
		if !ok {
			return nil, mismatch(s, n)
		}
		if ret, ok := w.memo[v.Provider]; ok {
			return ret, nil
		}
		build := func() (map[string]any, error) {
			attrs, err := v.Provider.ValueAttributesForAvro()
			if err != nil {
				return nil, err
			}
			return w.record(rec, attrs)
		}
		var ret map[string]any
		var err error
		if cache, ok := v.Provider.(NativeCache); ok {
			ret, err = cache.CachedNative(rec, build)
		} else {
			ret, err = build()
		}
		if err != nil {
			return nil, err
		}
		w.memo[v.Provider] = ret
		return ret, nil
	}
	return nil, fmt.Errorf("unsupported node type %T", n)
}

func (w *writer) record(rec *schema.RecordSchema, attrs *Attributes) (map[string]any, error) {
	ret := make(map[string]any, len(attrs.Fields))
	for _, field := range attrs.Fields {
		schemaField, ok := rec.Field(field.Name)
		if !ok {
			return nil, fmt.Errorf("field %s is not part of %s", field.Name, rec.FullName())
		}
		tmp, err := w.native(schemaField.Type(), field.Node)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", rec.FullName(), field.Name, err)
		}
		ret[field.Name] = tmp
	}
	return ret, nil
}

func (w *writer) union(u *schema.UnionSchema, n Node) (any, error) {
	index := -1
	if member := n.Member(); member.Set {
		if member.Index < 0 || member.Index >= len(u.Types()) {
			return nil, fmt.Errorf("%w: index %d out of range", ErrUnionBranch, member.Index)
		}
		index = member.Index
	} else {
		index = FindBranch(u, n)
	}
	if index < 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnionBranch, describe(n))
	}
	branch := u.Types()[index]
	if branch.Type() == schema.TypeNull {
		return nil, nil
	}
	tmp, err := w.native(branch, n)
	if err != nil {
		return nil, err
	}
	return goavro.Union(branch.TypeName(), tmp), nil
}

// FindBranch returns the index of the first union branch that can hold the
// node, preferring exact matches over numeric promotion, or -1
func FindBranch(u *schema.UnionSchema, n Node) int {
	for i, t := range u.Types() {
		if nodeMatches(t, n, false) {
			return i
		}
	}
	for i, t := range u.Types() {
		if nodeMatches(t, n, true) {
			return i
		}
	}
	return -1
}

func nodeMatches(s schema.Schema, n Node, promote bool) bool {
	switch v := n.(type) {
	case *Leaf:
		return leafMatches(s, v.Value, promote)
	case *Array:
		return s.Type() == schema.TypeArray
	case *Map:
		return s.Type() == schema.TypeMap
	case *Attributes:
		rec, ok := s.(*schema.RecordSchema)
		return ok && (v.Name == "" || rec.FullName() == v.Name)
	case *Deferred:
		rec, ok := s.(*schema.RecordSchema)
		return ok && rec.FullName() == v.Provider.FullName()
	}
	return false
}

func leafMatches(s schema.Schema, value any, promote bool) bool {
	typ := s.Type()
	switch v := value.(type) {
	case nil:
		return typ == schema.TypeNull
	case bool:
		return typ == schema.TypeBoolean
	case int32:
		if promote {
			return typ == schema.TypeLong || typ == schema.TypeFloat || typ == schema.TypeDouble
		}
		return typ == schema.TypeInt
	case int64:
		if promote {
			return typ == schema.TypeFloat || typ == schema.TypeDouble
		}
		return typ == schema.TypeLong
	case float32:
		if promote {
			return typ == schema.TypeDouble
		}
		return typ == schema.TypeFloat
	case float64:
		return typ == schema.TypeDouble
	case string:
		if enum, ok := s.(*schema.EnumSchema); ok {
			return enum.HasSymbol(v)
		}
		return typ == schema.TypeString
	case []byte:
		if fixed, ok := s.(*schema.FixedSchema); ok {
			return fixed.Size() == len(v)
		}
		return typ == schema.TypeBytes
	}
	return false
}

func mismatch(s schema.Schema, n Node) error {
	return fmt.Errorf("cannot write %s as %s", describe(n), s.TypeName())
}

func describe(n Node) string {
	switch v := n.(type) {
	case *Leaf:
		return fmt.Sprintf("value %v (%T)", v.Value, v.Value)
	case *Array:
		return "array"
	case *Map:
		return "map"
	case *Attributes:
		return "record " + v.Name
	case *Deferred:
		return "record " + v.Provider.FullName()
	}
	return fmt.Sprintf("%T", n)
}
