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
	"errors"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/blinklabs-io/avromodel/avroio"
	"github.com/blinklabs-io/avromodel/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestRoundTripValue(t *testing.T) {
	m := mustModel(t, model.NewEnv(), model.WithValueSchema(mustRecord(t, keyedValueSchema)))
	rec := m.MustNew(map[string]any{"id": 1, "name": "a", "note": "n"})
	data, err := rec.AvroRawValue()
	require.NoError(t, err)
	decoded, err := m.AvroRawDecode(data)
	require.NoError(t, err)
	assert.True(t, rec.Equal(decoded))
	assert.Equal(t, "n", decoded.Get("note"))

	_, err = rec.AvroRawKey()
	assert.ErrorIs(t, err, model.ErrNoKeySchema)
	_, err = rec.KeyAttributesForAvro()
	assert.ErrorIs(t, err, model.ErrNoKeySchema)
	_, err = m.AvroRawDecode(data, model.WithKey([]byte{0}))
	assert.ErrorIs(t, err, model.ErrNoKeySchema)
}

func TestRoundTripKeyAndValue(t *testing.T) {
	m := mustModel(
		t,
		model.NewEnv(),
		model.WithValueSchema(mustRecord(t, keyedValueSchema)),
		model.WithKeySchema(mustRecord(t, keyedKeySchema)),
	)
	rec := m.MustNew(map[string]any{"id": 5, "name": "a", "region": "eu"})
	value, err := rec.AvroRawValue()
	require.NoError(t, err)
	key, err := rec.AvroRawKey()
	require.NoError(t, err)
	decoded, err := m.AvroRawDecode(value, model.WithKey(key))
	require.NoError(t, err)
	assert.True(t, rec.Equal(decoded))
	assert.Equal(t, "eu", decoded.Get("region"))

	// Without the key only value attributes are populated
	decoded, err = m.AvroRawDecode(value)
	require.NoError(t, err)
	assert.Equal(t, int32(5), decoded.Get("id"))
	assert.Nil(t, decoded.Get("region"))
}

func TestImmutableCaching(t *testing.T) {
	m := mustModel(
		t,
		model.NewEnv(),
		model.WithValueSchema(mustRecord(t, keyedValueSchema)),
		model.WithKeySchema(mustRecord(t, keyedKeySchema)),
	)
	rec := m.MustNew(map[string]any{"id": 5, "name": "a", "region": "eu"})
	attrs1, err := rec.ValueAttributesForAvro()
	require.NoError(t, err)
	attrs2, err := rec.ValueAttributesForAvro()
	require.NoError(t, err)
	assert.Same(t, attrs1, attrs2)
	key1, err := rec.KeyAttributesForAvro()
	require.NoError(t, err)
	key2, err := rec.KeyAttributesForAvro()
	require.NoError(t, err)
	assert.Same(t, key1, key2)

	raw1, err := rec.AvroRawValue()
	require.NoError(t, err)
	raw2, err := rec.AvroRawValue()
	require.NoError(t, err)
	require.NotEmpty(t, raw1)
	assert.Same(t, &raw1[0], &raw2[0])
	rawKey1, err := rec.AvroRawKey()
	require.NoError(t, err)
	rawKey2, err := rec.AvroRawKey()
	require.NoError(t, err)
	assert.Same(t, &rawKey1[0], &rawKey2[0])
}

func TestConcurrentCaching(t *testing.T) {
	defer goleak.VerifyNone(t)
	m := mustModel(t, model.NewEnv(), model.WithValueSchema(mustRecord(t, nestedSchema)))
	rec := m.MustNew(map[string]any{
		"sub":  map[string]any{"i": 1},
		"subs": []any{map[string]any{"i": 2}, map[string]any{"i": 3}},
	})
	var wg sync.WaitGroup
	results := make([][]byte, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			data, err := rec.AvroRawValue()
			assert.NoError(t, err)
			results[i] = data
		}(i)
	}
	wg.Wait()
	for _, data := range results[1:] {
		assert.Same(t, &results[0][0], &data[0])
	}
}

func TestMutableDoesNotCache(t *testing.T) {
	m := mustModel(
		t,
		model.NewEnv(),
		model.WithValueSchema(mustRecord(t, keyedValueSchema)),
		model.WithMutable(true),
	)
	rec := m.MustNew(map[string]any{"id": 1, "name": "a"})
	attrs1, err := rec.ValueAttributesForAvro()
	require.NoError(t, err)
	again, err := rec.ValueAttributesForAvro()
	require.NoError(t, err)
	assert.NotSame(t, attrs1, again)
	assert.Equal(t, attrs1, again)
	raw1, err := rec.AvroRawValue()
	require.NoError(t, err)
	require.NoError(t, rec.Set("name", "b"))
	attrs2, err := rec.ValueAttributesForAvro()
	require.NoError(t, err)
	assert.NotSame(t, attrs1, attrs2)
	raw2, err := rec.AvroRawValue()
	require.NoError(t, err)
	assert.NotEqual(t, raw1, raw2)
	decoded, err := m.AvroRawDecode(raw2)
	require.NoError(t, err)
	assert.Equal(t, "b", decoded.Get("name"))
}

func TestStrictValidation(t *testing.T) {
	text := mustRecord(t, keyedValueSchema)
	strict := mustModel(t, model.NewEnv(), model.WithValueSchema(text))
	rec := strict.MustNew(map[string]any{"id": 1})
	_, err := rec.AvroRawValue()
	assert.ErrorIs(t, err, model.ErrValidation)
	// Errors are not cached
	_, err = rec.ValueAttributesForAvro()
	assert.ErrorIs(t, err, model.ErrValidation)

	// Without strict mode the binary writer reports the missing field
	lenient := mustModel(t, model.NewEnv(model.WithStrict(false)), model.WithValueSchema(text))
	rec = lenient.MustNew(map[string]any{"id": 1})
	attrs, err := rec.ValueAttributesForAvro()
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "note"}, attrs.Names())
	_, err = rec.AvroRawValue()
	assert.Error(t, err)
}

func TestSchemaEvolution(t *testing.T) {
	env := model.NewEnv()
	writerSchema := mustRecord(t, `{
	  "type": "record", "name": "test.encode_value",
	  "fields": [
	    {"name": "id", "type": "int"},
	    {"name": "str1", "type": "string"},
	    {"name": "extra", "type": "string"}
	  ]
	}`)
	readerSchema := mustRecord(t, `{
	  "type": "record", "name": "test.encode_value",
	  "fields": [
	    {"name": "id", "type": "long"},
	    {"name": "str1", "type": "string"},
	    {"name": "str2", "type": "string", "default": "Y"}
	  ]
	}`)
	writer := mustModel(t, env, model.WithValueSchema(writerSchema))
	reader := mustModel(t, env, model.WithValueSchema(readerSchema))
	data, err := writer.MustNew(map[string]any{"id": 1, "str1": "a", "extra": "e"}).AvroRawValue()
	require.NoError(t, err)

	decoded, err := reader.AvroRawDecode(data, model.WithValueWriterSchema(writerSchema))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"id": int64(1), "str1": "a", "str2": "Y"}, decoded.Attributes())

	datum, err := reader.DecodeDatum(data, model.WithValueWriterSchema(writerSchema))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"id": int64(1), "str1": "a", "str2": "Y"}, datum)

	// Fields without a reader default cannot be filled in
	strict := mustModel(t, model.NewEnv(), model.WithValueSchema(mustRecord(t, `{
	  "type": "record", "name": "test.encode_value",
	  "fields": [{"name": "id", "type": "int"}, {"name": "missing", "type": "string"}]
	}`)))
	_, err = strict.AvroRawDecode(data, model.WithValueWriterSchema(writerSchema))
	assert.ErrorIs(t, err, model.ErrSchemaResolution)
}

const unionArraySchema = `{
  "type": "record", "name": "test.real_union",
  "fields": [
    {"name": "values", "type": {"type": "array", "items": [
      {"type": "record", "name": "int_rec", "fields": [{"name": "i", "type": "int"}]},
      {"type": "record", "name": "str_rec", "fields": [{"name": "s", "type": "string"}]}
    ]}},
    {"name": "lookup", "type": {"type": "map", "values": ["int_rec", "str_rec"]}},
    {"name": "grid", "type": {"type": "array", "items": {"type": "array", "items": "int_rec"}}}
  ]
}`

func unionArrayAttributes() map[string]any {
	return map[string]any{
		"values": []any{
			map[string]any{"i": 1},
			map[string]any{"s": "A"},
			map[string]any{"i": 2},
		},
		"lookup": map[string]any{
			"str": map[string]any{"s": "A"},
			"int": map[string]any{"i": 2},
		},
		"grid": [][]map[string]any{
			{{"i": 1}, {"i": 2}},
			{},
			{{"i": 3}},
		},
	}
}

func TestUnionMemberIndex(t *testing.T) {
	m := mustModel(t, model.NewEnv(), model.WithValueSchema(mustRecord(t, unionArraySchema)))
	rec := m.MustNew(unionArrayAttributes())
	attrs, err := rec.ValueAttributesForAvro()
	require.NoError(t, err)
	values, ok := attrs.Get("values")
	require.True(t, ok)
	var indexes []int
	for _, item := range values.(*avroio.Array).Items {
		require.True(t, item.Member().Set)
		indexes = append(indexes, item.Member().Index)
	}
	assert.Equal(t, []int{0, 1, 0}, indexes)
	lookup, ok := attrs.Get("lookup")
	require.True(t, ok)
	entries := lookup.(*avroio.Map).Entries
	assert.Equal(t, 1, entries["str"].Member().Index)
	assert.Equal(t, 0, entries["int"].Member().Index)

	data, err := rec.AvroRawValue()
	require.NoError(t, err)
	decoded, err := m.AvroRawDecode(data)
	require.NoError(t, err)
	assert.True(t, rec.Equal(decoded))
	grid := decoded.Get("grid").([]any)
	require.Len(t, grid, 3)
	assert.Empty(t, grid[1])
	assert.Equal(t, int32(3), grid[2].([]any)[0].(*model.Record).Get("i"))
}

func TestUnionWithoutMemberIndex(t *testing.T) {
	m := mustModel(
		t,
		model.NewEnv(model.WithUnionMemberIndex(false)),
		model.WithValueSchema(mustRecord(t, unionArraySchema)),
	)
	rec := m.MustNew(unionArrayAttributes())
	attrs, err := rec.ValueAttributesForAvro()
	require.NoError(t, err)
	values, _ := attrs.Get("values")
	for _, item := range values.(*avroio.Array).Items {
		assert.False(t, item.Member().Set)
	}
	data, err := rec.AvroRawValue()
	require.NoError(t, err)
	decoded, err := m.AvroRawDecode(data)
	require.NoError(t, err)
	assert.True(t, rec.Equal(decoded))
}

func TestUnionResolutionFailure(t *testing.T) {
	m := mustModel(t, model.NewEnv(), model.WithValueSchema(mustRecord(t, `{
	  "type": "record", "name": "test.u",
	  "fields": [{"name": "v", "type": {"type": "array", "items": ["int", "string"]}}]
	}`)))
	rec := m.MustNew(map[string]any{"v": []any{1, "a"}})
	assert.Equal(t, []any{int32(1), "a"}, rec.Get("v"))
	_, err := m.New(map[string]any{"v": []any{true}})
	assert.ErrorIs(t, err, model.ErrCoercion)

	// Resolved unions are unwrapped by DecodeDatum
	single := mustModel(
		t,
		model.NewEnv(),
		model.WithValueSchema(mustRecord(t, `{"type": "record", "name": "test.u", "fields": [{"name": "v", "type": ["int", "string"]}]}`)),
	)
	rec = single.MustNew(map[string]any{"v": 1})
	data, err := rec.AvroRawValue()
	require.NoError(t, err)
	datum, err := single.DecodeDatum(data)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"v": int32(1)}, datum)
}

func TestDeferredAndInlinedSubRecords(t *testing.T) {
	env := model.NewEnv()
	wrapped1 := mustModel(
		t,
		env,
		model.WithValueSchema(mustRecord(t, `{"type": "record", "name": "test.wrapped1", "fields": [{"name": "i", "type": "int"}]}`)),
		model.WithMutable(true),
	)
	wrapper := mustModel(t, env, model.WithValueSchema(mustRecord(t, `{
	  "type": "record", "name": "test.wrapper",
	  "fields": [
	    {"name": "sub1", "type": {"type": "record", "name": "wrapped1", "fields": [{"name": "i", "type": "int"}]}},
	    {"name": "sub2", "type": {"type": "record", "name": "wrapped2", "fields": [{"name": "s", "type": "string"}]}},
	    {"name": "sub3", "type": "wrapped2"}
	  ]
	}`)))
	wrapped2, ok := env.Models().Lookup("test.wrapped2")
	require.True(t, ok)
	assert.False(t, wrapped2.Mutable())

	w1 := wrapped1.MustNew(map[string]any{"i": 1})
	w2 := wrapped2.MustNew(map[string]any{"s": "x"})
	rec := wrapper.MustNew(map[string]any{"sub1": w1, "sub2": w2, "sub3": w2})
	attrs, err := rec.ValueAttributesForAvro()
	require.NoError(t, err)

	sub1, _ := attrs.Get("sub1")
	inlined, ok := sub1.(*avroio.Attributes)
	require.True(t, ok)
	expected, err := w1.ValueAttributesForAvro()
	require.NoError(t, err)
	assert.Equal(t, expected, inlined)

	sub2, _ := attrs.Get("sub2")
	sub3, _ := attrs.Get("sub3")
	assert.Same(t, w2, sub2.(*avroio.Deferred).Provider)
	assert.Same(t, w2, sub3.(*avroio.Deferred).Provider)

	data, err := rec.AvroRawValue()
	require.NoError(t, err)
	decoded, err := wrapper.AvroRawDecode(data)
	require.NoError(t, err)
	assert.True(t, rec.Equal(decoded))
	assert.Same(t, wrapped1, decoded.Get("sub1").(*model.Record).Model())
}

func TestSharedSubRecordNativeCache(t *testing.T) {
	env := model.NewEnv()
	wrapper := mustModel(t, env, model.WithValueSchema(mustRecord(t, `{
	  "type": "record", "name": "test.holder",
	  "fields": [{"name": "sub", "type": {"type": "record", "name": "held", "fields": [{"name": "s", "type": "string"}]}}]
	}`)))
	held, ok := env.Models().Lookup("test.held")
	require.True(t, ok)
	shared := held.MustNew(map[string]any{"s": "x"})
	first := wrapper.MustNew(map[string]any{"sub": shared})
	second := wrapper.MustNew(map[string]any{"sub": shared})
	_, err := first.AvroRawValue()
	require.NoError(t, err)

	native, err := shared.CachedNative(held.ValueSchema(), func() (map[string]any, error) {
		return nil, errors.New("native form was not cached")
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"s": "x"}, native)
	data, err := second.AvroRawValue()
	require.NoError(t, err)
	decoded, err := wrapper.AvroRawDecode(data)
	require.NoError(t, err)
	assert.True(t, second.Equal(decoded))

	// Mutable instances build every time
	mutable := mustModel(
		t,
		model.NewEnv(),
		model.WithValueSchema(held.ValueSchema()),
		model.WithMutable(true),
	).MustNew(map[string]any{"s": "y"})
	calls := 0
	for range 2 {
		_, err = mutable.CachedNative(held.ValueSchema(), func() (map[string]any, error) {
			calls++
			return map[string]any{"s": "y"}, nil
		})
		require.NoError(t, err)
	}
	assert.Equal(t, 2, calls)
}

const logicalSchema = `{
  "type": "record", "name": "test.logical",
  "fields": [
    {"name": "day", "type": {"type": "int", "logicalType": "date"}},
    {"name": "ts_ms", "type": {"type": "long", "logicalType": "timestamp-millis"}},
    {"name": "ts_us", "type": {"type": "long", "logicalType": "timestamp-micros"}},
    {"name": "amount", "type": {"type": "bytes", "logicalType": "decimal", "precision": 8, "scale": 2}},
    {"name": "fixed_amount", "type": {"type": "fixed", "name": "money", "size": 4, "logicalType": "decimal", "precision": 6, "scale": 2}},
    {"name": "id", "type": {"type": "string", "logicalType": "uuid"}},
    {"name": "when", "type": ["null", {"type": "long", "logicalType": "timestamp-millis"}]},
    {"name": "other", "type": {"type": "string", "logicalType": "unknown-thing"}}
  ]
}`

func TestLogicalTypes(t *testing.T) {
	m := mustModel(t, model.NewEnv(), model.WithValueSchema(mustRecord(t, logicalSchema)))
	local := time.Date(2026, 3, 4, 23, 30, 15, 123456789, time.FixedZone("X", 2*60*60))
	rec, err := m.New(map[string]any{
		"day":          local,
		"ts_ms":        local,
		"ts_us":        local,
		"amount":       "-12.5",
		"fixed_amount": 3,
		"id":           "123e4567-e89b-12d3-a456-426614174000",
		"when":         local,
		"other":        "plain",
	})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC), rec.Get("day"))
	assert.Equal(t, time.Date(2026, 3, 4, 21, 30, 15, 123000000, time.UTC), rec.Get("ts_ms"))
	assert.Equal(t, time.Date(2026, 3, 4, 21, 30, 15, 123456000, time.UTC), rec.Get("ts_us"))
	assert.Equal(t, 0, big.NewRat(-25, 2).Cmp(rec.Get("amount").(*big.Rat)))

	data, err := rec.AvroRawValue()
	require.NoError(t, err)
	decoded, err := m.AvroRawDecode(data)
	require.NoError(t, err)
	assert.True(t, rec.Equal(decoded))
	assert.Equal(t, 0, big.NewRat(3, 1).Cmp(decoded.Get("fixed_amount").(*big.Rat)))

	_, err = m.New(map[string]any{"amount": "1.005"})
	assert.ErrorIs(t, err, model.ErrCoercion)
	_, err = m.New(map[string]any{"id": "not-a-uuid"})
	assert.ErrorIs(t, err, model.ErrCoercion)
}
