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
	"bytes"
	"math/big"
	"reflect"
	"time"
)

// Equal reports whether both instances have the same model name and equal
// attribute values. Nested records are compared by value.
func (r *Record) Equal(other *Record) bool {
	if r == other {
		return true
	}
	if r == nil || other == nil || r.FullName() != other.FullName() {
		return false
	}
	if len(r.model.attributes) != len(other.model.attributes) {
		return false
	}
	for _, a := range r.model.attributes {
		v, ok := other.Lookup(a.name)
		if !ok || !valuesEqual(r.values[a.index], v) {
			return false
		}
	}
	return true
}

func valuesEqual(a, b any) bool {
	switch v := a.(type) {
	case *Record:
		o, ok := b.(*Record)
		return ok && v.Equal(o)
	case []byte:
		o, ok := b.([]byte)
		return ok && bytes.Equal(v, o)
	case time.Time:
		o, ok := b.(time.Time)
		return ok && v.Equal(o)
	case *big.Rat:
		o, ok := b.(*big.Rat)
		return ok && v.Cmp(o) == 0
	case []any:
		o, ok := b.([]any)
		if !ok || len(v) != len(o) {
			return false
		}
		for i := range v {
			if !valuesEqual(v[i], o[i]) {
				return false
			}
		}
		return true
	case map[string]any:
		o, ok := b.(map[string]any)
		if !ok || len(v) != len(o) {
			return false
		}
		for key, value := range v {
			other, ok := o[key]
			if !ok || !valuesEqual(value, other) {
				return false
			}
		}
		return true
	}
	return reflect.DeepEqual(a, b)
}
