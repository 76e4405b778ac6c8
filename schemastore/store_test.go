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

package schemastore_test

import (
	"bytes"
	"testing"
	"testing/fstest"

	"github.com/blinklabs-io/avromodel/internal/test"
	"github.com/blinklabs-io/avromodel/model"
	"github.com/blinklabs-io/avromodel/schema"
	"github.com/blinklabs-io/avromodel/schemastore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindResolvesReferences(t *testing.T) {
	store := schemastore.New(test.SchemaDir())
	s, err := store.Find("test.person")
	require.NoError(t, err)
	person, ok := s.(*schema.RecordSchema)
	require.True(t, ok)
	home, ok := person.Field("home")
	require.True(t, ok)
	work, ok := person.Field("work")
	require.True(t, ok)
	// Both references share the loaded address type
	assert.Same(t, home.Type(), work.Type().(*schema.UnionSchema).Types()[1])
	assert.Equal(
		t,
		[]string{"test.address", "test.nested.inner", "test.person", "test.status"},
		store.Loaded(),
	)

	again, err := store.Find("test.person")
	require.NoError(t, err)
	assert.Same(t, s, again)
	address, err := store.Find("test.address")
	require.NoError(t, err)
	assert.Same(t, home.Type(), address)
}

func TestFindErrors(t *testing.T) {
	store := schemastore.New(test.SchemaDir())
	_, err := store.Find("test.nope")
	assert.ErrorIs(t, err, schemastore.ErrNotFound)
	_, err = store.Find("test.broken")
	assert.ErrorIs(t, err, schema.ErrUnknownType)
	// The store stays usable after a failed parse
	_, err = store.Find("test.address")
	assert.NoError(t, err)
}

func TestClear(t *testing.T) {
	store := schemastore.New(test.SchemaDir())
	first, err := store.Find("test.address")
	require.NoError(t, err)
	store.Clear()
	assert.Empty(t, store.Loaded())
	second, err := store.Find("test.address")
	require.NoError(t, err)
	assert.NotSame(t, first, second)
	assert.True(t, schema.Equal(first, second))
}

func TestBundle(t *testing.T) {
	store := schemastore.New(test.SchemaDir())
	_, err := store.Find("test.person")
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, store.WriteBundle(&buf))

	// A store without a schema directory serves the bundled schemas
	bundled := schemastore.New("missing")
	require.NoError(t, bundled.LoadBundle(bytes.NewReader(buf.Bytes())))
	s, err := bundled.Find("test.person")
	require.NoError(t, err)
	expected, err := store.Find("test.person")
	require.NoError(t, err)
	assert.Equal(t, schema.String(expected), schema.String(s))
	assert.Equal(t, store.Loaded(), bundled.Loaded())

	assert.Error(t, bundled.LoadBundle(bytes.NewReader([]byte{0x01})))
}

func TestWithFS(t *testing.T) {
	fsys := fstest.MapFS{
		"schemas/test/color.avsc": &fstest.MapFile{
			Data: []byte(`{"type": "enum", "name": "test.color", "symbols": ["RED"]}`),
		},
		"schemas/test/wrong.avsc": &fstest.MapFile{
			Data: []byte(`{"type": "enum", "name": "test.other", "symbols": ["RED"]}`),
		},
	}
	store := schemastore.New("schemas", schemastore.WithFS(fsys))
	s, err := store.Find("test.color")
	require.NoError(t, err)
	assert.Equal(t, schema.TypeEnum, s.Type())
	_, err = store.Find("test.wrong")
	assert.Error(t, err)
}

func TestModelFromStore(t *testing.T) {
	env := model.NewEnv(model.WithSchemaStore(schemastore.New(test.SchemaDir())))
	m, err := env.Model(
		model.WithValueSchemaName("test.person"),
		model.WithKeySchemaName("test.person_key"),
	)
	require.NoError(t, err)
	rec, err := m.New(map[string]any{
		"id":   1,
		"name": "Alice",
		"home": map[string]any{"street": "Main", "city": "Springfield"},
	})
	require.NoError(t, err)
	assert.Equal(t, "ACTIVE", rec.Get("status"))
	value, err := rec.AvroRawValue()
	require.NoError(t, err)
	key, err := rec.AvroRawKey()
	require.NoError(t, err)
	decoded, err := m.AvroRawDecode(value, model.WithKey(key))
	require.NoError(t, err)
	assert.True(t, rec.Equal(decoded))
	assert.True(t, env.Models().Registered("test.address"))
}
