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
	"math"
	"reflect"

	"github.com/blinklabs-io/avromodel/avroio"
	"github.com/blinklabs-io/avromodel/schema"
)

// AttributeType converts values of one schema type between application
// input, canonical in-memory form and the encodable tree
type AttributeType interface {
	// Name is used in error messages
	Name() string
	// Coerce converts loose input into the canonical representation.
	// Coerce(nil) returns nil for every type.
	Coerce(input any) (any, error)
	// Matched reports whether value is already canonical
	Matched(value any) bool
	// Serialize builds the encodable node for a canonical value. In strict
	// mode invalid values fail here instead of in the binary writer.
	Serialize(value any, strict bool) (avroio.Node, error)
	// Deserialize converts a resolved datum into the canonical value
	Deserialize(raw any) (any, error)
	// ReferencedModels returns the record models reachable through the type
	ReferencedModels() []*Model
}

// typeFor builds the attribute type for a schema. Nested record schemas are
// resolved to models through the nested model registry; models created
// along the way inherit the given mutability.
func (e *Env) typeFor(s schema.Schema, mutable bool) (AttributeType, error) {
	base, err := e.baseTypeFor(s, mutable)
	if err != nil {
		return nil, err
	}
	if named, ok := s.(schema.Named); ok {
		if binding, ok := e.customTypes.Lookup(named.FullName()); ok {
			return newCustomType(named.FullName(), binding, base), nil
		}
	}
	return base, nil
}

func (e *Env) baseTypeFor(s schema.Schema, mutable bool) (AttributeType, error) {
	switch v := s.(type) {
	case *schema.Primitive:
		return primitiveTypeFor(v), nil
	case *schema.FixedSchema:
		if v.LogicalType() == schema.LogicalDecimal {
			return &decimalType{precision: v.Precision(), scale: v.Scale(), size: v.Size()}, nil
		}
		return &fixedType{schema: v}, nil
	case *schema.EnumSchema:
		return &enumType{schema: v}, nil
	case *schema.ArraySchema:
		items, err := e.typeFor(v.Items(), mutable)
		if err != nil {
			return nil, err
		}
		return &arrayType{items: items}, nil
	case *schema.MapSchema:
		values, err := e.typeFor(v.Values(), mutable)
		if err != nil {
			return nil, err
		}
		return &mapType{values: values}, nil
	case *schema.UnionSchema:
		members := make([]AttributeType, len(v.Types()))
		for i, t := range v.Types() {
			member, err := e.typeFor(t, mutable)
			if err != nil {
				return nil, err
			}
			members[i] = member
		}
		return &unionType{members: members, env: e}, nil
	case *schema.RecordSchema:
		nested, err := e.nestedModel(v, mutable)
		if err != nil {
			return nil, err
		}
		return &recordType{model: nested}, nil
	}
	return nil, fmt.Errorf("unsupported schema type %T", s)
}

func primitiveTypeFor(p *schema.Primitive) AttributeType {
	switch {
	case p.Type() == schema.TypeInt && p.LogicalType() == schema.LogicalDate:
		return dateType{}
	case p.Type() == schema.TypeLong && p.LogicalType() == schema.LogicalTimestampMillis:
		return timestampType{unit: unitMillis}
	case p.Type() == schema.TypeLong && p.LogicalType() == schema.LogicalTimestampMicros:
		return timestampType{unit: unitMicros}
	case p.Type() == schema.TypeBytes && p.LogicalType() == schema.LogicalDecimal:
		return &decimalType{precision: p.Precision(), scale: p.Scale()}
	case p.Type() == schema.TypeString && p.LogicalType() == schema.LogicalUUID:
		return uuidType{}
	}
	// Unknown logical types fall back to the physical type
	switch p.Type() {
	case schema.TypeNull:
		return nullType{}
	case schema.TypeBoolean:
		return booleanType{}
	case schema.TypeInt:
		return integerType{}
	case schema.TypeLong:
		return longType{}
	case schema.TypeFloat:
		return floatType{}
	case schema.TypeDouble:
		return doubleType{}
	case schema.TypeBytes:
		return bytesType{}
	}
	return stringType{}
}

// serializeLeaf is the Serialize implementation shared by leaf types
func serializeLeaf(t AttributeType, value any, strict bool) (avroio.Node, error) {
	if strict && !t.Matched(value) {
		return nil, CoercionError{Value: value, Type: t.Name()}
	}
	return &avroio.Leaf{Value: value}, nil
}

// deserializeLeaf is the Deserialize implementation shared by leaf types
// whose datum is already canonical
func deserializeLeaf(t AttributeType, raw any) (any, error) {
	if !t.Matched(raw) {
		return nil, CoercionError{Value: raw, Type: t.Name()}
	}
	return raw, nil
}

// coercible reports whether t accepts value, either as-is or after coercion
func coercible(t AttributeType, value any) bool {
	if t.Matched(value) {
		return true
	}
	v, err := t.Coerce(value)
	return err == nil && v != nil
}

func toInt64(input any) (int64, bool) {
	rv := reflect.ValueOf(input)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return 0, false
		}
		return int64(u), true
	}
	return 0, false
}

func toFloat64(input any) (float64, bool) {
	rv := reflect.ValueOf(input)
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	if i, ok := toInt64(input); ok {
		return float64(i), true
	}
	return 0, false
}
