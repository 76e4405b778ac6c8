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

package schema_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/blinklabs-io/avromodel/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const nestedSchema = `{
  "type": "record",
  "name": "nested_record",
  "namespace": "test",
  "fields": [
    {"name": "str", "type": "string"},
    {"name": "sub", "type": {
      "type": "record",
      "name": "sub_record",
      "fields": [
        {"name": "str", "type": "string"},
        {"name": "i", "type": "int", "default": 0}
      ]
    }},
    {"name": "other", "type": ["null", "sub_record"], "default": null}
  ]
}`

func TestParsePrimitives(t *testing.T) {
	for _, typ := range []schema.Type{
		schema.TypeNull,
		schema.TypeBoolean,
		schema.TypeInt,
		schema.TypeLong,
		schema.TypeFloat,
		schema.TypeDouble,
		schema.TypeBytes,
		schema.TypeString,
	} {
		s, err := schema.Parse(fmt.Sprintf("%q", typ))
		require.NoError(t, err)
		assert.Equal(t, typ, s.Type())
		assert.Equal(t, string(typ), s.TypeName())
	}
}

func TestParseNestedRecord(t *testing.T) {
	rec, err := schema.ParseRecord(nestedSchema)
	require.NoError(t, err)
	assert.Equal(t, "test.nested_record", rec.FullName())
	require.Len(t, rec.Fields(), 3)

	sub, ok := rec.Fields()[1].Type().(*schema.RecordSchema)
	require.True(t, ok)
	// Nested types inherit the enclosing namespace
	assert.Equal(t, "test.sub_record", sub.FullName())
	def, ok := sub.Fields()[1].Default()
	require.True(t, ok)
	assert.Equal(t, json.Number("0"), def)

	union, ok := rec.Fields()[2].Type().(*schema.UnionSchema)
	require.True(t, ok)
	require.Len(t, union.Types(), 2)
	// References resolve to the defining node
	assert.Same(t, sub, union.Types()[1])
	assert.Equal(t, 0, union.NullIndex())
	assert.True(t, schema.Nullable(union))
}

func TestParseRecursiveRecord(t *testing.T) {
	rec, err := schema.ParseRecord(`{
	  "type": "record", "name": "node", "namespace": "test",
	  "fields": [
	    {"name": "value", "type": "int"},
	    {"name": "next", "type": ["null", "node"], "default": null}
	  ]
	}`)
	require.NoError(t, err)
	union := rec.Fields()[1].Type().(*schema.UnionSchema)
	assert.Same(t, rec, union.Types()[1])

	count := 0
	schema.Walk(rec, func(schema.Schema) { count++ })
	// record, int, union, null
	assert.Equal(t, 4, count)

	out := schema.String(rec)
	again, err := schema.Parse(out)
	require.NoError(t, err)
	assert.True(t, schema.Equal(rec, again))
}

func TestParseEnumAndFixed(t *testing.T) {
	rec, err := schema.ParseRecord(`{
	  "type": "record", "name": "named_type", "namespace": "test",
	  "fields": [
	    {"name": "color", "type": {"type": "enum", "name": "color", "symbols": ["RED", "GREEN"], "default": "RED"}},
	    {"name": "six", "type": {"type": "fixed", "name": "six", "size": 6}},
	    {"name": "amount", "type": {"type": "bytes", "logicalType": "decimal", "precision": 8, "scale": 2}}
	  ]
	}`)
	require.NoError(t, err)
	enum := rec.Fields()[0].Type().(*schema.EnumSchema)
	assert.Equal(t, []string{"RED", "GREEN"}, enum.Symbols())
	def, ok := enum.Default()
	assert.True(t, ok)
	assert.Equal(t, "RED", def)
	assert.True(t, enum.HasSymbol("GREEN"))
	assert.False(t, enum.HasSymbol("BLUE"))

	fixed := rec.Fields()[1].Type().(*schema.FixedSchema)
	assert.Equal(t, "test.six", fixed.FullName())
	assert.Equal(t, 6, fixed.Size())

	dec := rec.Fields()[2].Type().(*schema.Primitive)
	assert.Equal(t, schema.TypeBytes, dec.Type())
	assert.Equal(t, schema.LogicalDecimal, dec.LogicalType())
	assert.Equal(t, 8, dec.Precision())
	assert.Equal(t, 2, dec.Scale())
}

func TestParseErrors(t *testing.T) {
	testDefs := []struct {
		name string
		text string
	}{
		{name: "invalid JSON", text: `{`},
		{name: "missing type", text: `{"name": "x"}`},
		{name: "record without fields", text: `{"type": "record", "name": "x"}`},
		{name: "duplicate field", text: `{"type": "record", "name": "x", "fields": [{"name": "a", "type": "int"}, {"name": "a", "type": "int"}]}`},
		{name: "nested union", text: `["null", ["int"]]`},
		{name: "duplicate union branch", text: `["int", "int"]`},
		{name: "bad enum default", text: `{"type": "enum", "name": "e", "symbols": ["A"], "default": "B"}`},
		{name: "fixed without size", text: `{"type": "fixed", "name": "f"}`},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			_, err := schema.Parse(testDef.text)
			require.Error(t, err)
			var parseErr schema.ParseError
			assert.True(t, errors.As(err, &parseErr), "expected ParseError, got %T", err)
		})
	}
}

func TestParseUnknownType(t *testing.T) {
	_, err := schema.Parse(`{"type": "record", "name": "x", "fields": [{"name": "a", "type": "missing"}]}`)
	require.Error(t, err)
	assert.ErrorIs(t, err, schema.ErrUnknownType)
}

func TestParseResolver(t *testing.T) {
	names := schema.NewNames()
	resolved := []string{}
	resolver := func(fullName string) (schema.Schema, error) {
		resolved = append(resolved, fullName)
		if fullName != "test.sub_record" {
			return nil, schema.ErrUnknownType
		}
		return schema.Parse(
			`{"type": "record", "name": "test.sub_record", "fields": [{"name": "i", "type": "int"}]}`,
			schema.WithNames(names),
		)
	}
	rec, err := schema.ParseRecord(
		`{"type": "record", "name": "test.wrapper", "fields": [{"name": "sub", "type": "sub_record"}]}`,
		schema.WithNames(names),
		schema.WithResolver(resolver),
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"test.sub_record"}, resolved)
	sub, ok := names.Lookup("test.sub_record")
	require.True(t, ok)
	assert.Same(t, sub, rec.Fields()[0].Type())
}

func TestPhysicalJSONDropsLogicalTypes(t *testing.T) {
	rec, err := schema.ParseRecord(`{
	  "type": "record", "name": "test.logical",
	  "fields": [
	    {"name": "day", "type": {"type": "int", "logicalType": "date"}},
	    {"name": "at", "type": {"type": "long", "logicalType": "timestamp-millis"}, "default": 0}
	  ]
	}`)
	require.NoError(t, err)
	assert.Equal(
		t,
		`{"type":"record","name":"test.logical","fields":[{"name":"day","type":"int"},{"name":"at","type":"long","default":0}]}`,
		schema.PhysicalJSON(rec),
	)
	assert.Contains(t, schema.String(rec), `"logicalType":"timestamp-millis"`)
	assert.NotContains(t, schema.Canonical(rec), "default")
}

func TestNewRecord(t *testing.T) {
	rec := schema.NewRecord(
		"encode_key",
		"test",
		schema.NewField("id", schema.NewPrimitive(schema.TypeInt)),
	)
	assert.Equal(t, "test.encode_key", rec.FullName())
	parsed, err := schema.Parse(schema.String(rec))
	require.NoError(t, err)
	assert.True(t, schema.Equal(rec, parsed))
	f, ok := rec.Field("id")
	require.True(t, ok)
	assert.False(t, schema.Nullable(f.Type()))
}
