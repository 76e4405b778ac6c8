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
	"github.com/blinklabs-io/avromodel/schema"
)

type modelConfig struct {
	value     *schema.RecordSchema
	key       *schema.RecordSchema
	valueName string
	keyName   string
	mutable   bool
}

// ModelOptionFunc is a type that represents functions that modify the model
// definition
type ModelOptionFunc func(*modelConfig)

// WithValueSchema specifies the value schema of the model
func WithValueSchema(s *schema.RecordSchema) ModelOptionFunc {
	return func(c *modelConfig) {
		c.value = s
	}
}

// WithKeySchema specifies the key schema of the model
func WithKeySchema(s *schema.RecordSchema) ModelOptionFunc {
	return func(c *modelConfig) {
		c.key = s
	}
}

// WithValueSchemaName specifies the value schema by full name, resolved
// through the schema store
func WithValueSchemaName(fullName string) ModelOptionFunc {
	return func(c *modelConfig) {
		c.valueName = fullName
	}
}

// WithKeySchemaName specifies the key schema by full name, resolved through
// the schema store
func WithKeySchemaName(fullName string) ModelOptionFunc {
	return func(c *modelConfig) {
		c.keyName = fullName
	}
}

// WithMutable specifies whether instances of the model may be modified after
// construction. Mutable instances never cache their encodings.
func WithMutable(mutable bool) ModelOptionFunc {
	return func(c *modelConfig) {
		c.mutable = mutable
	}
}

type decodeConfig struct {
	key         []byte
	valueWriter schema.Schema
	keyWriter   schema.Schema
}

// DecodeOptionFunc is a type that represents functions that modify decoding
type DecodeOptionFunc func(*decodeConfig)

// WithKey specifies the raw key bytes to decode along with the value
func WithKey(key []byte) DecodeOptionFunc {
	return func(c *decodeConfig) {
		c.key = key
	}
}

// WithValueWriterSchema specifies the schema the value was written with.
// The model value schema is used by default
func WithValueWriterSchema(s schema.Schema) DecodeOptionFunc {
	return func(c *decodeConfig) {
		c.valueWriter = s
	}
}

// WithKeyWriterSchema specifies the schema the key was written with. The
// model key schema is used by default
func WithKeyWriterSchema(s schema.Schema) DecodeOptionFunc {
	return func(c *decodeConfig) {
		c.keyWriter = s
	}
}
