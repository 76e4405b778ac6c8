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

	"github.com/blinklabs-io/avromodel/avroio"
	"github.com/blinklabs-io/avromodel/schema"
)

type fixedType struct {
	schema *schema.FixedSchema
}

func (t *fixedType) Name() string { return t.schema.FullName() }

func (t *fixedType) Coerce(input any) (any, error) {
	var ret []byte
	switch v := input.(type) {
	case nil:
		return nil, nil
	case []byte:
		ret = append([]byte{}, v...)
	case string:
		ret = []byte(v)
	default:
		return nil, CoercionError{Value: input, Type: t.Name()}
	}
	if len(ret) != t.schema.Size() {
		return nil, CoercionError{
			Value: input,
			Type:  t.Name(),
			Err:   fmt.Errorf("size %d does not match %d", len(ret), t.schema.Size()),
		}
	}
	return ret, nil
}

func (t *fixedType) Matched(value any) bool {
	b, ok := value.([]byte)
	return ok && len(b) == t.schema.Size()
}

func (t *fixedType) Serialize(value any, strict bool) (avroio.Node, error) {
	return serializeLeaf(t, value, strict)
}

func (t *fixedType) Deserialize(raw any) (any, error) { return deserializeLeaf(t, raw) }

func (*fixedType) ReferencedModels() []*Model { return nil }

// enumType holds enum values as their symbol string
type enumType struct {
	schema *schema.EnumSchema
}

func (t *enumType) Name() string { return t.schema.FullName() }

func (t *enumType) Coerce(input any) (any, error) {
	var symbol string
	switch v := input.(type) {
	case nil:
		return nil, nil
	case string:
		symbol = v
	case fmt.Stringer:
		symbol = v.String()
	default:
		return nil, CoercionError{Value: input, Type: t.Name()}
	}
	if !t.schema.HasSymbol(symbol) {
		return nil, CoercionError{
			Value: input,
			Type:  t.Name(),
			Err:   fmt.Errorf("unknown symbol %q", symbol),
		}
	}
	return symbol, nil
}

func (t *enumType) Matched(value any) bool {
	s, ok := value.(string)
	return ok && t.schema.HasSymbol(s)
}

func (t *enumType) Serialize(value any, strict bool) (avroio.Node, error) {
	return serializeLeaf(t, value, strict)
}

func (t *enumType) Deserialize(raw any) (any, error) { return deserializeLeaf(t, raw) }

func (*enumType) ReferencedModels() []*Model { return nil }
