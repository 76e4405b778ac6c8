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

package model_test

import (
	"bytes"
	"fmt"
	"log/slog"
	"testing"

	"github.com/blinklabs-io/avromodel/model"
	"github.com/blinklabs-io/avromodel/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	schemas map[string]string
	clears  int
}

func (s *fakeStore) Find(fullName string) (schema.Schema, error) {
	text, ok := s.schemas[fullName]
	if !ok {
		return nil, fmt.Errorf("schema %s not found", fullName)
	}
	return schema.Parse(text)
}

func (s *fakeStore) Clear() {
	s.clears++
}

func TestEnvSchemaStore(t *testing.T) {
	store := &fakeStore{
		schemas: map[string]string{
			"test.keyed_value": keyedValueSchema,
			"test.keyed_key":   keyedKeySchema,
			"test.color":       `{"type": "enum", "name": "test.color", "symbols": ["RED"]}`,
		},
	}
	env := model.NewEnv(model.WithSchemaStore(store))
	m, err := env.Model(
		model.WithValueSchemaName("test.keyed_value"),
		model.WithKeySchemaName("test.keyed_key"),
	)
	require.NoError(t, err)
	assert.Equal(t, "test.keyed_key", m.KeySchema().FullName())

	_, err = env.Model(model.WithValueSchemaName("test.color"))
	assert.Error(t, err)
	_, err = env.Model(model.WithValueSchemaName("test.nope"))
	assert.Error(t, err)
}

func TestEnvPrepare(t *testing.T) {
	store := &fakeStore{
		schemas: map[string]string{
			"test.nested_record": nestedSchema,
		},
	}
	env := model.NewEnv(
		model.WithSchemaStore(store),
		model.WithEagerLoadModels("test.nested_record"),
	)
	mustModel(t, env, model.WithValueSchema(mustRecord(t, encodeValueSchema)))
	require.NoError(t, env.Prepare())
	assert.Equal(t, 1, store.clears)
	assert.Equal(t, []string{"test.nested_record", "test.sub_record"}, env.Models().Names())
	assert.Equal(t, 0, env.Codecs().Len())

	env = model.NewEnv(
		model.WithSchemaStore(store),
		model.WithEagerLoadModels("test.missing"),
	)
	assert.Error(t, env.Prepare())
}

func TestAmbiguousUnionWarning(t *testing.T) {
	var buf bytes.Buffer
	env := model.NewEnv(
		model.WithLogger(slog.New(slog.NewTextHandler(&buf, nil))),
		model.WithAllowUnknownAttributes(true),
	)
	m := mustModel(t, env, model.WithValueSchema(mustRecord(t, `{
	  "type": "record", "name": "test.ambiguous",
	  "fields": [{"name": "v", "type": [
	    {"type": "record", "name": "first", "fields": [{"name": "a", "type": ["null", "string"], "default": null}]},
	    {"type": "record", "name": "second", "fields": [{"name": "b", "type": ["null", "string"], "default": null}]}
	  ]}]
	}`)))
	rec, err := m.New(map[string]any{"v": map[string]any{"b": "x"}})
	require.NoError(t, err)
	// The first declared member wins
	assert.Equal(t, "test.first", rec.Get("v").(*model.Record).FullName())
	assert.Contains(t, buf.String(), "ambiguous union value")
}
