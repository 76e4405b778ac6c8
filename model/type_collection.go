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
	"reflect"

	"github.com/blinklabs-io/avromodel/avroio"
)

// arrayType holds arrays as []any of canonical item values
type arrayType struct {
	items AttributeType
}

func (t *arrayType) Name() string { return "array[" + t.items.Name() + "]" }

// Coerce accepts any slice or array and always builds a new []any
func (t *arrayType) Coerce(input any) (any, error) {
	if input == nil {
		return nil, nil
	}
	rv := reflect.ValueOf(input)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, CoercionError{Value: input, Type: t.Name()}
	}
	ret := make([]any, rv.Len())
	for i := range ret {
		item, err := t.items.Coerce(rv.Index(i).Interface())
		if err != nil {
			return nil, CoercionError{Value: input, Type: t.Name(), Err: err}
		}
		ret[i] = item
	}
	return ret, nil
}

func (t *arrayType) Matched(value any) bool {
	items, ok := value.([]any)
	if !ok {
		return false
	}
	for _, item := range items {
		if !t.items.Matched(item) {
			return false
		}
	}
	return true
}

func (t *arrayType) Serialize(value any, strict bool) (avroio.Node, error) {
	items, ok := value.([]any)
	if !ok {
		return nil, CoercionError{Value: value, Type: t.Name()}
	}
	ret := &avroio.Array{Items: make([]avroio.Node, len(items))}
	for i, item := range items {
		node, err := t.items.Serialize(item, strict)
		if err != nil {
			return nil, err
		}
		ret.Items[i] = node
	}
	return ret, nil
}

func (t *arrayType) Deserialize(raw any) (any, error) {
	items, ok := raw.([]any)
	if !ok {
		return nil, CoercionError{Value: raw, Type: t.Name()}
	}
	ret := make([]any, len(items))
	for i, item := range items {
		tmp, err := t.items.Deserialize(item)
		if err != nil {
			return nil, err
		}
		ret[i] = tmp
	}
	return ret, nil
}

func (t *arrayType) ReferencedModels() []*Model { return t.items.ReferencedModels() }

// mapType holds maps as map[string]any of canonical values
type mapType struct {
	values AttributeType
}

func (t *mapType) Name() string { return "map[" + t.values.Name() + "]" }

// Coerce accepts any map with string keys and always builds a new map
func (t *mapType) Coerce(input any) (any, error) {
	if input == nil {
		return nil, nil
	}
	rv := reflect.ValueOf(input)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, CoercionError{Value: input, Type: t.Name()}
	}
	ret := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		key := iter.Key().String()
		value, err := t.values.Coerce(iter.Value().Interface())
		if err != nil {
			return nil, CoercionError{
				Value: input,
				Type:  t.Name(),
				Err:   fmt.Errorf("key %q: %w", key, err),
			}
		}
		ret[key] = value
	}
	return ret, nil
}

func (t *mapType) Matched(value any) bool {
	entries, ok := value.(map[string]any)
	if !ok {
		return false
	}
	for _, v := range entries {
		if !t.values.Matched(v) {
			return false
		}
	}
	return true
}

func (t *mapType) Serialize(value any, strict bool) (avroio.Node, error) {
	entries, ok := value.(map[string]any)
	if !ok {
		return nil, CoercionError{Value: value, Type: t.Name()}
	}
	ret := &avroio.Map{Entries: make(map[string]avroio.Node, len(entries))}
	for key, v := range entries {
		node, err := t.values.Serialize(v, strict)
		if err != nil {
			return nil, err
		}
		ret.Entries[key] = node
	}
	return ret, nil
}

func (t *mapType) Deserialize(raw any) (any, error) {
	entries, ok := raw.(map[string]any)
	if !ok {
		return nil, CoercionError{Value: raw, Type: t.Name()}
	}
	ret := make(map[string]any, len(entries))
	for key, v := range entries {
		tmp, err := t.values.Deserialize(v)
		if err != nil {
			return nil, err
		}
		ret[key] = tmp
	}
	return ret, nil
}

func (t *mapType) ReferencedModels() []*Model { return t.values.ReferencedModels() }
