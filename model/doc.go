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

// Package model derives record types from Avro schemas.
//
// An Env holds a custom type registry, a nested model registry and a codec
// cache. Env.Model defines a Model from a value schema and an optional key
// schema:
//
//	env := model.NewEnv()
//	m, err := env.Model(model.WithValueSchema(valueSchema))
//	rec, err := m.New(map[string]any{"id": 1, "name": "x"})
//	data, err := rec.AvroRawValue()
//	decoded, err := m.AvroRawDecode(data)
//
// Record schemas found inside a model schema become nested models. They are
// registered by full name, so a schema used in several places maps to one
// model, and a model registered ahead of time is reused instead of
// generated.
//
// Named types can be bound to application values with
// CustomTypeRegistry.RegisterType. Bindings must be registered before the
// models that use them are defined.
//
// Instances of immutable models (the default) cache their encodable trees
// and raw encodings after the first call.
package model
