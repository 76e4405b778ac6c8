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
	"math"

	"github.com/blinklabs-io/avromodel/avroio"
)

type nullType struct{}

func (nullType) Name() string { return "null" }

func (t nullType) Coerce(input any) (any, error) {
	if input != nil {
		return nil, CoercionError{Value: input, Type: t.Name()}
	}
	return nil, nil
}

func (nullType) Matched(value any) bool { return value == nil }

func (t nullType) Serialize(value any, strict bool) (avroio.Node, error) {
	return serializeLeaf(t, value, strict)
}

func (t nullType) Deserialize(raw any) (any, error) { return deserializeLeaf(t, raw) }

func (nullType) ReferencedModels() []*Model { return nil }

type booleanType struct{}

func (booleanType) Name() string { return "boolean" }

func (t booleanType) Coerce(input any) (any, error) {
	switch input.(type) {
	case nil, bool:
		return input, nil
	}
	return nil, CoercionError{Value: input, Type: t.Name()}
}

func (booleanType) Matched(value any) bool {
	_, ok := value.(bool)
	return ok
}

func (t booleanType) Serialize(value any, strict bool) (avroio.Node, error) {
	return serializeLeaf(t, value, strict)
}

func (t booleanType) Deserialize(raw any) (any, error) { return deserializeLeaf(t, raw) }

func (booleanType) ReferencedModels() []*Model { return nil }

// integerType is the Avro int, held as int32
type integerType struct{}

func (integerType) Name() string { return "int" }

func (t integerType) Coerce(input any) (any, error) {
	if input == nil {
		return nil, nil
	}
	if i, ok := toInt64(input); ok && i >= math.MinInt32 && i <= math.MaxInt32 {
		return int32(i), nil
	}
	return nil, CoercionError{Value: input, Type: t.Name()}
}

func (integerType) Matched(value any) bool {
	_, ok := value.(int32)
	return ok
}

func (t integerType) Serialize(value any, strict bool) (avroio.Node, error) {
	return serializeLeaf(t, value, strict)
}

func (t integerType) Deserialize(raw any) (any, error) { return deserializeLeaf(t, raw) }

func (integerType) ReferencedModels() []*Model { return nil }

// longType is the Avro long, held as int64
type longType struct{}

func (longType) Name() string { return "long" }

func (t longType) Coerce(input any) (any, error) {
	if input == nil {
		return nil, nil
	}
	if i, ok := toInt64(input); ok {
		return i, nil
	}
	return nil, CoercionError{Value: input, Type: t.Name()}
}

func (longType) Matched(value any) bool {
	_, ok := value.(int64)
	return ok
}

func (t longType) Serialize(value any, strict bool) (avroio.Node, error) {
	return serializeLeaf(t, value, strict)
}

func (t longType) Deserialize(raw any) (any, error) { return deserializeLeaf(t, raw) }

func (longType) ReferencedModels() []*Model { return nil }

type floatType struct{}

func (floatType) Name() string { return "float" }

func (t floatType) Coerce(input any) (any, error) {
	if input == nil {
		return nil, nil
	}
	if f, ok := toFloat64(input); ok {
		return float32(f), nil
	}
	return nil, CoercionError{Value: input, Type: t.Name()}
}

func (floatType) Matched(value any) bool {
	_, ok := value.(float32)
	return ok
}

func (t floatType) Serialize(value any, strict bool) (avroio.Node, error) {
	return serializeLeaf(t, value, strict)
}

func (t floatType) Deserialize(raw any) (any, error) { return deserializeLeaf(t, raw) }

func (floatType) ReferencedModels() []*Model { return nil }

type doubleType struct{}

func (doubleType) Name() string { return "double" }

func (t doubleType) Coerce(input any) (any, error) {
	if input == nil {
		return nil, nil
	}
	if f, ok := toFloat64(input); ok {
		return f, nil
	}
	return nil, CoercionError{Value: input, Type: t.Name()}
}

func (doubleType) Matched(value any) bool {
	_, ok := value.(float64)
	return ok
}

func (t doubleType) Serialize(value any, strict bool) (avroio.Node, error) {
	return serializeLeaf(t, value, strict)
}

func (t doubleType) Deserialize(raw any) (any, error) { return deserializeLeaf(t, raw) }

func (doubleType) ReferencedModels() []*Model { return nil }

type stringType struct{}

func (stringType) Name() string { return "string" }

func (t stringType) Coerce(input any) (any, error) {
	switch v := input.(type) {
	case nil, string:
		return input, nil
	case []byte:
		return string(v), nil
	}
	return nil, CoercionError{Value: input, Type: t.Name()}
}

func (stringType) Matched(value any) bool {
	_, ok := value.(string)
	return ok
}

func (t stringType) Serialize(value any, strict bool) (avroio.Node, error) {
	return serializeLeaf(t, value, strict)
}

func (t stringType) Deserialize(raw any) (any, error) { return deserializeLeaf(t, raw) }

func (stringType) ReferencedModels() []*Model { return nil }

type bytesType struct{}

func (bytesType) Name() string { return "bytes" }

// Coerce always copies so that a caller cannot modify the value held by an
// instance afterwards
func (t bytesType) Coerce(input any) (any, error) {
	switch v := input.(type) {
	case nil:
		return nil, nil
	case []byte:
		return append([]byte{}, v...), nil
	case string:
		return []byte(v), nil
	}
	return nil, CoercionError{Value: input, Type: t.Name()}
}

func (bytesType) Matched(value any) bool {
	_, ok := value.([]byte)
	return ok
}

func (t bytesType) Serialize(value any, strict bool) (avroio.Node, error) {
	return serializeLeaf(t, value, strict)
}

func (t bytesType) Deserialize(raw any) (any, error) { return deserializeLeaf(t, raw) }

func (bytesType) ReferencedModels() []*Model { return nil }
