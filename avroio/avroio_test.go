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

package avroio_test

import (
	"errors"
	"testing"

	"github.com/blinklabs-io/avromodel/avroio"
	"github.com/blinklabs-io/avromodel/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const unionSchema = `{
  "type": "record", "name": "test.real_union",
  "fields": [
    {"name": "header", "type": "string"},
    {"name": "message", "type": [
      {"type": "record", "name": "foo", "fields": [{"name": "foo_message", "type": "string"}]},
      {"type": "record", "name": "bar", "fields": [{"name": "bar_message", "type": "string"}]}
    ]},
    {"name": "tags", "type": {"type": "array", "items": ["null", "string", "long"]}}
  ]
}`

type provider struct {
	name  string
	attrs *avroio.Attributes
	calls int
}

func (p *provider) FullName() string {
	return p.name
}

func (p *provider) ValueAttributesForAvro() (*avroio.Attributes, error) {
	p.calls++
	return p.attrs, nil
}

func barProvider(msg string) *provider {
	return &provider{
		name: "test.bar",
		attrs: &avroio.Attributes{
			Name: "test.bar",
			Fields: []avroio.Field{
				{Name: "bar_message", Node: &avroio.Leaf{Value: msg}},
			},
		},
	}
}

func unionAttributes(message avroio.Node, tags ...avroio.Node) *avroio.Attributes {
	return &avroio.Attributes{
		Name: "test.real_union",
		Fields: []avroio.Field{
			{Name: "header", Node: &avroio.Leaf{Value: "has bar"}},
			{Name: "message", Node: message},
			{Name: "tags", Node: &avroio.Array{Items: tags}},
		},
	}
}

func TestNativeUsesMemberIndex(t *testing.T) {
	rec, err := schema.ParseRecord(unionSchema)
	require.NoError(t, err)
	bar := barProvider("I'm a bar")
	attrs := unionAttributes(
		avroio.WithMember(&avroio.Deferred{Provider: bar}, 1),
		avroio.WithMember(&avroio.Leaf{Value: "a"}, 1),
		avroio.WithMember(&avroio.Leaf{Value: nil}, 0),
	)
	native, err := avroio.Native(rec, attrs)
	require.NoError(t, err)
	assert.Equal(
		t,
		map[string]any{
			"header":  "has bar",
			"message": map[string]any{"test.bar": map[string]any{"bar_message": "I'm a bar"}},
			"tags":    []any{map[string]any{"string": "a"}, nil},
		},
		native,
	)
	assert.Equal(t, 1, bar.calls)
}

func TestNativeFindsBranchWithoutIndex(t *testing.T) {
	rec, err := schema.ParseRecord(unionSchema)
	require.NoError(t, err)
	attrs := unionAttributes(
		&avroio.Deferred{Provider: barProvider("x")},
		&avroio.Leaf{Value: int64(7)},
		// int promotes to long
		&avroio.Leaf{Value: int32(8)},
	)
	native, err := avroio.Native(rec, attrs)
	require.NoError(t, err)
	m := native.(map[string]any)
	assert.Equal(t, map[string]any{"test.bar": map[string]any{"bar_message": "x"}}, m["message"])
	assert.Equal(t, []any{map[string]any{"long": int64(7)}, map[string]any{"long": int32(8)}}, m["tags"])
}

func TestNativeNoBranch(t *testing.T) {
	rec, err := schema.ParseRecord(unionSchema)
	require.NoError(t, err)
	attrs := unionAttributes(
		&avroio.Deferred{Provider: barProvider("x")},
		&avroio.Leaf{Value: true},
	)
	_, err = avroio.Native(rec, attrs)
	require.Error(t, err)
	assert.True(t, errors.Is(err, avroio.ErrUnionBranch))
}

func TestNativeExpandsProviderOnce(t *testing.T) {
	rec, err := schema.ParseRecord(`{
	  "type": "record", "name": "test.wrapper",
	  "fields": [
	    {"name": "sub1", "type": {"type": "record", "name": "wrapped", "fields": [{"name": "i", "type": "int"}]}},
	    {"name": "sub2", "type": "wrapped"}
	  ]
	}`)
	require.NoError(t, err)
	wrapped := &provider{
		name: "test.wrapped",
		attrs: &avroio.Attributes{
			Name:   "test.wrapped",
			Fields: []avroio.Field{{Name: "i", Node: &avroio.Leaf{Value: int32(42)}}},
		},
	}
	attrs := &avroio.Attributes{
		Name: "test.wrapper",
		Fields: []avroio.Field{
			{Name: "sub1", Node: &avroio.Deferred{Provider: wrapped}},
			{Name: "sub2", Node: &avroio.Deferred{Provider: wrapped}},
		},
	}
	codecs := avroio.NewCodecs()
	data, err := codecs.Encode(rec, attrs)
	require.NoError(t, err)
	assert.Equal(t, 1, wrapped.calls)
	datum, err := codecs.Decode(rec, rec, data)
	require.NoError(t, err)
	assert.Equal(
		t,
		map[string]any{
			"sub1": map[string]any{"i": int32(42)},
			"sub2": map[string]any{"i": int32(42)},
		},
		datum,
	)
}

type nativeProvider struct {
	*provider
	native map[string]any
}

func (p *nativeProvider) CachedNative(
	s *schema.RecordSchema,
	build func() (map[string]any, error),
) (map[string]any, error) {
	if p.native != nil {
		return p.native, nil
	}
	ret, err := build()
	if err != nil {
		return nil, err
	}
	p.native = ret
	return ret, nil
}

func TestNativeUsesProviderCache(t *testing.T) {
	rec, err := schema.ParseRecord(unionSchema)
	require.NoError(t, err)
	bar := &nativeProvider{provider: barProvider("cached")}
	attrs := unionAttributes(avroio.WithMember(&avroio.Deferred{Provider: bar}, 1))
	codecs := avroio.NewCodecs()
	first, err := codecs.Encode(rec, attrs)
	require.NoError(t, err)
	second, err := codecs.Encode(rec, attrs)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, bar.calls)
	assert.Equal(t, map[string]any{"bar_message": "cached"}, bar.native)
}

func TestWithMemberCopies(t *testing.T) {
	leaf := &avroio.Leaf{Value: "a"}
	annotated := avroio.WithMember(leaf, 2)
	assert.False(t, leaf.Member().Set)
	assert.Equal(t, avroio.Member(2), annotated.Member())
	attrs := &avroio.Attributes{Name: "x", Fields: []avroio.Field{{Name: "f", Node: leaf}}}
	annotatedAttrs := avroio.WithMember(attrs, 0).(*avroio.Attributes)
	assert.Equal(t, attrs.Fields, annotatedAttrs.Fields)
	assert.False(t, attrs.Member().Set)
	assert.Equal(t, []string{"f"}, attrs.Names())
}

func TestCodecsCache(t *testing.T) {
	codecs := avroio.NewCodecs()
	rec, err := schema.ParseRecord(unionSchema)
	require.NoError(t, err)
	again, err := schema.ParseRecord(unionSchema)
	require.NoError(t, err)
	c1, err := codecs.For(rec)
	require.NoError(t, err)
	c2, err := codecs.For(again)
	require.NoError(t, err)
	assert.Same(t, c1, c2)
	assert.Equal(t, 1, codecs.Len())
	codecs.Clear()
	assert.Equal(t, 0, codecs.Len())
}
