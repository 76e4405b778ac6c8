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
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/blinklabs-io/avromodel/schema"
)

// DefaultDatum converts a JSON field default into the resolved datum form
// of the schema. The default of a union field belongs to its first branch.
func DefaultDatum(s schema.Schema, def any) (any, error) {
	switch v := s.(type) {
	case *schema.UnionSchema:
		if len(v.Types()) == 0 {
			return nil, fmt.Errorf("default for empty union")
		}
		tmp, err := DefaultDatum(v.Types()[0], def)
		if err != nil {
			return nil, err
		}
		return Union{Index: 0, Value: tmp}, nil
	case *schema.Primitive:
		return primitiveDefault(v.Type(), def)
	case *schema.FixedSchema:
		str, ok := def.(string)
		if !ok {
			return nil, defaultError(s, def)
		}
		data := latin1(str)
		if len(data) != v.Size() {
			return nil, fmt.Errorf("default for %s has size %d", v.FullName(), len(data))
		}
		return data, nil
	case *schema.EnumSchema:
		str, ok := def.(string)
		if !ok || !v.HasSymbol(str) {
			return nil, defaultError(s, def)
		}
		return str, nil
	case *schema.ArraySchema:
		items, ok := def.([]any)
		if !ok {
			return nil, defaultError(s, def)
		}
		ret := make([]any, len(items))
		for i, item := range items {
			tmp, err := DefaultDatum(v.Items(), item)
			if err != nil {
				return nil, err
			}
			ret[i] = tmp
		}
		return ret, nil
	case *schema.MapSchema:
		entries, ok := def.(map[string]any)
		if !ok {
			return nil, defaultError(s, def)
		}
		ret := make(map[string]any, len(entries))
		for key, value := range entries {
			tmp, err := DefaultDatum(v.Values(), value)
			if err != nil {
				return nil, err
			}
			ret[key] = tmp
		}
		return ret, nil
	case *schema.RecordSchema:
		entries, ok := def.(map[string]any)
		if !ok {
			return nil, defaultError(s, def)
		}
		ret := make(map[string]any, len(v.Fields()))
		for _, field := range v.Fields() {
			value, ok := entries[field.Name()]
			if !ok {
				value, ok = field.Default()
			}
			if !ok {
				return nil, fmt.Errorf("default for %s is missing field %s", v.FullName(), field.Name())
			}
			tmp, err := DefaultDatum(field.Type(), value)
			if err != nil {
				return nil, err
			}
			ret[field.Name()] = tmp
		}
		return ret, nil
	}
	return nil, defaultError(s, def)
}

func primitiveDefault(typ schema.Type, def any) (any, error) {
	switch typ {
	case schema.TypeNull:
		if def != nil {
			return nil, fmt.Errorf("default %v is not null", def)
		}
		return nil, nil
	case schema.TypeBoolean:
		if b, ok := def.(bool); ok {
			return b, nil
		}
	case schema.TypeInt:
		if n, ok := number(def); ok {
			i, err := n.Int64()
			if err == nil && i >= math.MinInt32 && i <= math.MaxInt32 {
				return int32(i), nil
			}
		}
	case schema.TypeLong:
		if n, ok := number(def); ok {
			if i, err := n.Int64(); err == nil {
				return i, nil
			}
		}
	case schema.TypeFloat:
		if n, ok := number(def); ok {
			if f, err := n.Float64(); err == nil {
				return float32(f), nil
			}
		}
	case schema.TypeDouble:
		if n, ok := number(def); ok {
			if f, err := n.Float64(); err == nil {
				return f, nil
			}
		}
	case schema.TypeString:
		if s, ok := def.(string); ok {
			return s, nil
		}
	case schema.TypeBytes:
		if s, ok := def.(string); ok {
			return latin1(s), nil
		}
	}
	return nil, fmt.Errorf("invalid default %v for %s", def, typ)
}

// number accepts json.Number as produced by the schema parser as well as
// plain Go numbers from programmatically built schemas
func number(def any) (json.Number, bool) {
	switch v := def.(type) {
	case json.Number:
		return v, true
	case int:
		return json.Number(strconv.FormatInt(int64(v), 10)), true
	case int32:
		return json.Number(strconv.FormatInt(int64(v), 10)), true
	case int64:
		return json.Number(strconv.FormatInt(v, 10)), true
	case float32:
		return json.Number(strconv.FormatFloat(float64(v), 'g', -1, 32)), true
	case float64:
		return json.Number(strconv.FormatFloat(v, 'g', -1, 64)), true
	}
	return "", false
}

// latin1 maps each code point of a JSON string default to one byte
func latin1(s string) []byte {
	ret := make([]byte, 0, len(s))
	for _, r := range s {
		ret = append(ret, byte(r))
	}
	return ret
}

func defaultError(s schema.Schema, def any) error {
	return fmt.Errorf("invalid default %v for %s", def, s.TypeName())
}
