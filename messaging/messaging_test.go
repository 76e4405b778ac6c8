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

package messaging_test

import (
	"context"
	"testing"

	"github.com/blinklabs-io/avromodel/internal/test"
	"github.com/blinklabs-io/avromodel/messaging"
	"github.com/blinklabs-io/avromodel/model"
	"github.com/blinklabs-io/avromodel/registry"
	"github.com/blinklabs-io/avromodel/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrame(t *testing.T) {
	data, err := messaging.Frame(258, []byte{0x02, 0x61})
	require.NoError(t, err)
	assert.Equal(t, test.DecodeHexString("00000001020261"), data)
	id, payload, err := messaging.Unframe(data)
	require.NoError(t, err)
	assert.Equal(t, 258, id)
	assert.Equal(t, []byte{0x02, 0x61}, payload)

	_, err = messaging.Frame(-1, nil)
	assert.Error(t, err)
	_, _, err = messaging.Unframe(test.DecodeHexString("0000"))
	assert.ErrorIs(t, err, messaging.ErrMagicByte)
	_, _, err = messaging.Unframe(test.DecodeHexString("0100000001"))
	assert.ErrorIs(t, err, messaging.ErrMagicByte)
}

const valueSchema = `{
  "type": "record", "name": "test.event",
  "fields": [
    {"name": "id", "type": "int"},
    {"name": "body", "type": "string"}
  ]
}`

const keySchema = `{
  "type": "record", "name": "test.event_key",
  "fields": [{"name": "id", "type": "int"}]
}`

func newModel(t *testing.T, env *model.Env, value string, key string) *model.Model {
	t.Helper()
	opts := []model.ModelOptionFunc{model.WithValueSchema(mustRecord(t, value))}
	if key != "" {
		opts = append(opts, model.WithKeySchema(mustRecord(t, key)))
	}
	m, err := env.Model(opts...)
	require.NoError(t, err)
	return m
}

func mustRecord(t *testing.T, text string) *schema.RecordSchema {
	t.Helper()
	ret, err := schema.ParseRecord(text)
	require.NoError(t, err)
	return ret
}

func TestEncodeDecode(t *testing.T) {
	ctx := context.Background()
	reg := registry.NewMemory()
	codec := messaging.NewCodec(registry.NewCached(reg))
	m := newModel(t, model.NewEnv(), valueSchema, keySchema)
	rec, err := m.New(map[string]any{"id": 3, "body": "hello"})
	require.NoError(t, err)

	value, err := codec.EncodeValue(ctx, rec)
	require.NoError(t, err)
	key, err := codec.EncodeKey(ctx, rec)
	require.NoError(t, err)
	assert.Equal(t, []string{"test.event-key", "test.event-value"}, reg.Subjects())
	raw, err := rec.AvroRawValue()
	require.NoError(t, err)
	assert.Equal(t, raw, value[messaging.HeaderSize:])

	decoded, err := codec.Decode(ctx, m, value, key)
	require.NoError(t, err)
	assert.True(t, rec.Equal(decoded))
	decoded, err = codec.DecodeValue(ctx, m, value)
	require.NoError(t, err)
	assert.Equal(t, "hello", decoded.Get("body"))

	_, err = codec.DecodeValue(ctx, m, []byte{0x00, 0x00, 0x00, 0x00, 0x63})
	assert.ErrorIs(t, err, registry.ErrSchemaNotFound)
}

func TestKeySubjectUsesModelName(t *testing.T) {
	ctx := context.Background()
	reg := registry.NewMemory()
	var names []string
	codec := messaging.NewCodec(reg, messaging.WithSubjectFunc(func(fullName string, key bool) string {
		names = append(names, fullName)
		return messaging.RecordNameSubject(fullName, key)
	}))
	m := newModel(t, model.NewEnv(), valueSchema, keySchema)
	rec := m.MustNew(map[string]any{"id": 7, "body": "b"})

	key, err := codec.EncodeKey(ctx, rec)
	require.NoError(t, err)
	assert.Equal(t, []string{"test.event"}, names)
	assert.Equal(t, []string{"test.event-key"}, reg.Subjects())

	// The key schema itself is what gets registered
	id, _, err := messaging.Unframe(key)
	require.NoError(t, err)
	writer, err := codec.WriterSchema(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "test.event_key", writer.TypeName())
}

func TestDecodeWithEvolvedReader(t *testing.T) {
	ctx := context.Background()
	codec := messaging.NewCodec(
		registry.NewMemory(),
		messaging.WithSubjectFunc(func(fullName string, key bool) string { return "events" }),
	)
	writer := newModel(t, model.NewEnv(), valueSchema, "")
	reader := newModel(t, model.NewEnv(), `{
	  "type": "record", "name": "test.event",
	  "fields": [
	    {"name": "id", "type": "long"},
	    {"name": "body", "type": "string"},
	    {"name": "source", "type": "string", "default": "unknown"}
	  ]
	}`, "")
	rec, err := writer.New(map[string]any{"id": 3, "body": "hello"})
	require.NoError(t, err)
	value, err := codec.EncodeValue(ctx, rec)
	require.NoError(t, err)
	decoded, err := codec.DecodeValue(ctx, reader, value)
	require.NoError(t, err)
	assert.Equal(
		t,
		map[string]any{"id": int64(3), "body": "hello", "source": "unknown"},
		decoded.Attributes(),
	)
}

func TestEncodeKeyWithoutKeySchema(t *testing.T) {
	codec := messaging.NewCodec(registry.NewMemory())
	m := newModel(t, model.NewEnv(), valueSchema, "")
	rec, err := m.New(map[string]any{"id": 1, "body": "x"})
	require.NoError(t, err)
	_, err = codec.EncodeKey(context.Background(), rec)
	assert.ErrorIs(t, err, model.ErrNoKeySchema)
}
