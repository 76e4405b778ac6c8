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

package messaging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/blinklabs-io/avromodel/model"
	"github.com/blinklabs-io/avromodel/registry"
	"github.com/blinklabs-io/avromodel/schema"
)

// SubjectFunc returns the registry subject for a model full name
type SubjectFunc func(fullName string, key bool) string

// RecordNameSubject names subjects "<full name>-value" and "<full name>-key"
func RecordNameSubject(fullName string, key bool) string {
	if key {
		return fullName + "-key"
	}
	return fullName + "-value"
}

// Codec encodes and decodes framed messages for model instances
type Codec struct {
	registry registry.Registry
	subject  SubjectFunc
	logger   *slog.Logger
	mu       sync.RWMutex
	writers  map[int]schema.Schema
}

// CodecOptionFunc is a type that represents functions that modify the Codec
type CodecOptionFunc func(*Codec)

// WithLogger specifies the logger to use
func WithLogger(logger *slog.Logger) CodecOptionFunc {
	return func(c *Codec) {
		c.logger = logger
	}
}

// WithSubjectFunc specifies the subject naming. RecordNameSubject is the
// default
func WithSubjectFunc(subject SubjectFunc) CodecOptionFunc {
	return func(c *Codec) {
		c.subject = subject
	}
}

func NewCodec(reg registry.Registry, opts ...CodecOptionFunc) *Codec {
	c := &Codec{
		registry: reg,
		subject:  RecordNameSubject,
		writers:  make(map[int]schema.Schema),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return c
}

// EncodeValue registers the value schema of the record model and frames its
// raw value
func (c *Codec) EncodeValue(ctx context.Context, rec *model.Record) ([]byte, error) {
	payload, err := rec.AvroRawValue()
	if err != nil {
		return nil, err
	}
	return c.frame(ctx, rec.FullName(), rec.Model().ValueSchema(), false, payload)
}

// EncodeKey registers the key schema of the record model and frames its raw
// key
func (c *Codec) EncodeKey(ctx context.Context, rec *model.Record) ([]byte, error) {
	payload, err := rec.AvroRawKey()
	if err != nil {
		return nil, err
	}
	return c.frame(ctx, rec.FullName(), rec.Model().KeySchema(), true, payload)
}

// frame registers s under the subject of the model full name, so keys and
// values of one model share a subject prefix
func (c *Codec) frame(
	ctx context.Context,
	fullName string,
	s *schema.RecordSchema,
	key bool,
	payload []byte,
) ([]byte, error) {
	id, err := c.registry.Register(ctx, c.subject(fullName, key), schema.String(s))
	if err != nil {
		return nil, err
	}
	return Frame(id, payload)
}

// DecodeValue decodes a framed value using the writer schema from the
// registry
func (c *Codec) DecodeValue(ctx context.Context, m *model.Model, value []byte) (*model.Record, error) {
	return c.Decode(ctx, m, value, nil)
}

// Decode decodes a framed value and, when key is not nil, a framed key
func (c *Codec) Decode(ctx context.Context, m *model.Model, value []byte, key []byte) (*model.Record, error) {
	valueWriter, payload, err := c.unframe(ctx, value)
	if err != nil {
		return nil, err
	}
	opts := []model.DecodeOptionFunc{model.WithValueWriterSchema(valueWriter)}
	if key != nil {
		keyWriter, keyPayload, err := c.unframe(ctx, key)
		if err != nil {
			return nil, err
		}
		opts = append(opts, model.WithKey(keyPayload), model.WithKeyWriterSchema(keyWriter))
	}
	return m.AvroRawDecode(payload, opts...)
}

func (c *Codec) unframe(ctx context.Context, data []byte) (schema.Schema, []byte, error) {
	id, payload, err := Unframe(data)
	if err != nil {
		return nil, nil, err
	}
	writer, err := c.WriterSchema(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return writer, payload, nil
}

// WriterSchema returns the parsed registry schema for a writer schema id
func (c *Codec) WriterSchema(ctx context.Context, id int) (schema.Schema, error) {
	c.mu.RLock()
	ret, ok := c.writers[id]
	c.mu.RUnlock()
	if ok {
		return ret, nil
	}
	text, err := c.registry.SchemaByID(ctx, id)
	if err != nil {
		return nil, err
	}
	ret, err = schema.Parse(text)
	if err != nil {
		return nil, fmt.Errorf("writer schema %d: %w", id, err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.writers[id]; ok {
		return existing, nil
	}
	c.writers[id] = ret
	c.logger.Debug("parsed writer schema", "id", id, "schema", ret.TypeName())
	return ret, nil
}
