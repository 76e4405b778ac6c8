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
	"sync/atomic"

	"github.com/blinklabs-io/avromodel/avroio"
	"github.com/blinklabs-io/avromodel/schema"
)

// AvroRawValue returns the Avro binary encoding of the value schema fields
// without any framing. Immutable instances cache the result, so it must not
// be modified.
func (r *Record) AvroRawValue() ([]byte, error) {
	return r.cachedRaw(&r.rawValue, r.model.value, r.ValueAttributesForAvro)
}

// AvroRawKey returns the Avro binary encoding of the key schema fields
func (r *Record) AvroRawKey() ([]byte, error) {
	if r.model.key == nil {
		return nil, ErrNoKeySchema
	}
	return r.cachedRaw(&r.rawKey, r.model.key, r.KeyAttributesForAvro)
}

func (r *Record) cachedRaw(
	cell *atomic.Pointer[[]byte],
	s *schema.RecordSchema,
	attrsFunc func() (*avroio.Attributes, error),
) ([]byte, error) {
	if !r.model.mutable {
		if ret := cell.Load(); ret != nil {
			return *ret, nil
		}
	}
	attrs, err := attrsFunc()
	if err != nil {
		return nil, err
	}
	data, err := r.model.env.codecs.Encode(s, attrs)
	if err != nil {
		return nil, err
	}
	if r.model.mutable {
		return data, nil
	}
	if !cell.CompareAndSwap(nil, &data) {
		return *cell.Load(), nil
	}
	return data, nil
}

// AvroRawDecode builds an instance from raw value bytes and, with WithKey,
// raw key bytes. Writer schemas default to the model schemas. Key attributes
// are applied first so that value attributes win where they overlap.
func (m *Model) AvroRawDecode(value []byte, opts ...DecodeOptionFunc) (*Record, error) {
	cfg := decodeConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	r := m.newRecord()
	if cfg.key != nil {
		if m.key == nil {
			return nil, ErrNoKeySchema
		}
		writer := cfg.keyWriter
		if writer == nil {
			writer = m.key
		}
		fields, err := m.decodeFields(writer, m.key, cfg.key)
		if err != nil {
			return nil, err
		}
		if err := r.assignDatum(m.keyAttributes, fields); err != nil {
			return nil, err
		}
	}
	writer := cfg.valueWriter
	if writer == nil {
		writer = m.value
	}
	fields, err := m.decodeFields(writer, m.value, value)
	if err != nil {
		return nil, err
	}
	if err := r.assignDatum(m.valueAttributes, fields); err != nil {
		return nil, err
	}
	return r, nil
}

// DecodeDatum decodes raw value bytes into the resolved datum of the value
// schema without building an instance. Union values are unwrapped to their
// plain value.
func (m *Model) DecodeDatum(value []byte, opts ...DecodeOptionFunc) (map[string]any, error) {
	cfg := decodeConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	writer := cfg.valueWriter
	if writer == nil {
		writer = m.value
	}
	fields, err := m.decodeFields(writer, m.value, value)
	if err != nil {
		return nil, err
	}
	return avroio.Plain(fields).(map[string]any), nil
}

func (m *Model) decodeFields(writer schema.Schema, reader *schema.RecordSchema, data []byte) (map[string]any, error) {
	datum, err := m.env.codecs.Decode(writer, reader, data)
	if err != nil {
		return nil, err
	}
	fields, ok := datum.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("decoded %s is %T, not a record", reader.FullName(), datum)
	}
	return fields, nil
}
