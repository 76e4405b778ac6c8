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
	"github.com/blinklabs-io/avromodel/avroio"
)

// recordType holds nested records as *Record instances of a nested model
type recordType struct {
	model *Model
}

func (t *recordType) Name() string { return t.model.FullName() }

func (t *recordType) Coerce(input any) (any, error) {
	switch v := input.(type) {
	case nil:
		return nil, nil
	case *Record:
		if v.model == t.model {
			return v, nil
		}
		// An instance of an equivalent model built elsewhere
		if v.FullName() == t.model.FullName() {
			return t.coerceAttributes(input, v.Attributes())
		}
	case map[string]any:
		return t.coerceAttributes(input, v)
	}
	return nil, CoercionError{Value: input, Type: t.Name()}
}

func (t *recordType) coerceAttributes(input any, attrs map[string]any) (any, error) {
	ret, err := t.model.New(attrs)
	if err != nil {
		return nil, CoercionError{Value: input, Type: t.Name(), Err: err}
	}
	return ret, nil
}

func (t *recordType) Matched(value any) bool {
	r, ok := value.(*Record)
	return ok && r.model == t.model
}

// Serialize defers immutable sub-records to the writer so that their cached
// attribute trees are shared. Mutable sub-records are expanded immediately.
func (t *recordType) Serialize(value any, strict bool) (avroio.Node, error) {
	if value == nil {
		if strict {
			return nil, CoercionError{Value: value, Type: t.Name()}
		}
		return &avroio.Leaf{}, nil
	}
	rec, ok := value.(*Record)
	if !ok || rec.model != t.model {
		tmp, err := t.Coerce(value)
		if err != nil {
			return nil, err
		}
		rec = tmp.(*Record)
	}
	if rec.model.mutable {
		return rec.ValueAttributesForAvro()
	}
	return &avroio.Deferred{Provider: rec}, nil
}

func (t *recordType) Deserialize(raw any) (any, error) {
	fields, ok := raw.(map[string]any)
	if !ok {
		return nil, CoercionError{Value: raw, Type: t.Name()}
	}
	return t.model.fromDatum(fields)
}

func (t *recordType) ReferencedModels() []*Model { return []*Model{t.model} }
