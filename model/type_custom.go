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
	"reflect"

	"github.com/blinklabs-io/avromodel/avroio"
)

// customType wraps the attribute type of a named schema with a registered
// binding. Errors returned by the binding functions are passed through
// unchanged.
type customType struct {
	name    string
	binding *CustomType
	base    AttributeType
}

func newCustomType(name string, binding *CustomType, base AttributeType) *customType {
	return &customType{
		name:    name,
		binding: binding,
		base:    base,
	}
}

func (t *customType) Name() string { return t.name }

func (t *customType) loose() bool {
	return t.binding.ValueType == nil && t.binding.Matches == nil
}

func isLooseCustom(a AttributeType) bool {
	c, ok := a.(*customType)
	return ok && c.loose()
}

func (t *customType) Coerce(input any) (any, error) {
	if input == nil {
		return nil, nil
	}
	if !t.loose() && t.Matched(input) {
		return input, nil
	}
	return t.binding.FromRaw(input)
}

func (t *customType) Matched(value any) bool {
	if value == nil {
		return false
	}
	switch {
	case t.binding.Matches != nil:
		return t.binding.Matches(value)
	case t.binding.ValueType != nil:
		return reflect.TypeOf(value) == t.binding.ValueType
	}
	raw, err := t.binding.ToRaw(value)
	return err == nil && raw != nil && coercible(t.base, raw)
}

func (t *customType) Serialize(value any, strict bool) (avroio.Node, error) {
	if value == nil {
		return t.base.Serialize(nil, strict)
	}
	raw, err := t.binding.ToRaw(value)
	if err != nil {
		return nil, err
	}
	canonical, err := t.base.Coerce(raw)
	if err != nil {
		return nil, err
	}
	return t.base.Serialize(canonical, strict)
}

func (t *customType) Deserialize(raw any) (any, error) {
	v, err := t.base.Deserialize(raw)
	if err != nil {
		return nil, err
	}
	return t.binding.FromRaw(v)
}

func (t *customType) ReferencedModels() []*Model { return t.base.ReferencedModels() }
