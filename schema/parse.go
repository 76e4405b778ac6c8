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

package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
)

var ErrUnknownType = errors.New("unknown schema type")

// ParseError describes a malformed schema
type ParseError struct {
	Path string
	Msg  string
}

func (e ParseError) Error() string {
	if e.Path == "" {
		return "schema: " + e.Msg
	}
	return fmt.Sprintf("schema: %s: %s", e.Path, e.Msg)
}

// Resolver is consulted for named type references that are not yet known.
// The returned schema must be a named type with the requested full name.
type Resolver func(fullName string) (Schema, error)

// Names is a table of named types shared between parses. Types defined by
// one parse are visible by name to later parses using the same table.
type Names struct {
	mu    sync.RWMutex
	types map[string]Named
}

func NewNames() *Names {
	return &Names{types: map[string]Named{}}
}

func (n *Names) Lookup(fullName string) (Named, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	t, ok := n.types[fullName]
	return t, ok
}

func (n *Names) add(t Named) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if _, ok := n.types[t.FullName()]; ok {
		return fmt.Errorf("schema: duplicate definition of %s", t.FullName())
	}
	n.types[t.FullName()] = t
	return nil
}

type ParseOptionFunc func(*parser)

// WithNames shares a names table with the parse
func WithNames(names *Names) ParseOptionFunc {
	return func(p *parser) {
		p.names = names
	}
}

// WithResolver sets the lookup for unknown named types
func WithResolver(resolver Resolver) ParseOptionFunc {
	return func(p *parser) {
		p.resolver = resolver
	}
}

type parser struct {
	names    *Names
	resolver Resolver
}

// Parse parses an Avro schema from its JSON text
func Parse(text string, opts ...ParseOptionFunc) (Schema, error) {
	p := &parser{}
	for _, opt := range opts {
		opt(p)
	}
	if p.names == nil {
		p.names = NewNames()
	}
	dec := json.NewDecoder(bytes.NewReader([]byte(text)))
	// Keep long defaults exact
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, ParseError{Msg: err.Error()}
	}
	return p.parse(raw, "", "")
}

// MustParse is like Parse but panics on error. It is intended for schemas
// embedded in source code.
func MustParse(text string) Schema {
	s, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return s
}

// ParseRecord parses text and requires the top-level schema to be a record
func ParseRecord(text string, opts ...ParseOptionFunc) (*RecordSchema, error) {
	s, err := Parse(text, opts...)
	if err != nil {
		return nil, err
	}
	rec, ok := s.(*RecordSchema)
	if !ok {
		return nil, ParseError{Msg: fmt.Sprintf("expected record schema, got %s", s.Type())}
	}
	return rec, nil
}

func (p *parser) parse(raw any, namespace string, path string) (Schema, error) {
	switch v := raw.(type) {
	case string:
		return p.parseName(v, namespace, path)
	case []any:
		return p.parseUnion(v, namespace, path)
	case map[string]any:
		return p.parseObject(v, namespace, path)
	}
	return nil, ParseError{Path: path, Msg: fmt.Sprintf("unexpected JSON value %v", raw)}
}

func (p *parser) parseName(typeName string, namespace string, path string) (Schema, error) {
	switch Type(typeName) {
	case TypeNull, TypeBoolean, TypeInt, TypeLong, TypeFloat, TypeDouble, TypeBytes, TypeString:
		return NewPrimitive(Type(typeName)), nil
	}
	// Try the enclosing namespace first, then the name as written
	candidates := []string{typeName}
	if !strings.Contains(typeName, ".") && namespace != "" {
		candidates = []string{namespace + "." + typeName, typeName}
	}
	for _, fullName := range candidates {
		if t, ok := p.names.Lookup(fullName); ok {
			return t, nil
		}
	}
	if p.resolver != nil {
		for _, fullName := range candidates {
			s, err := p.resolver(fullName)
			if err != nil {
				if errors.Is(err, ErrUnknownType) {
					continue
				}
				return nil, err
			}
			if n, ok := s.(Named); !ok || n.FullName() != fullName {
				return nil, ParseError{Path: path, Msg: fmt.Sprintf("resolver returned wrong type for %s", fullName)}
			}
			return s, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownType, candidates[0])
}

func (p *parser) parseUnion(raw []any, namespace string, path string) (Schema, error) {
	types := make([]Schema, 0, len(raw))
	seen := map[string]bool{}
	for i, item := range raw {
		t, err := p.parse(item, namespace, fmt.Sprintf("%s[%d]", path, i))
		if err != nil {
			return nil, err
		}
		if t.Type() == TypeUnion {
			return nil, ParseError{Path: path, Msg: "unions may not immediately contain other unions"}
		}
		if seen[t.TypeName()] {
			return nil, ParseError{Path: path, Msg: fmt.Sprintf("duplicate union branch %s", t.TypeName())}
		}
		seen[t.TypeName()] = true
		types = append(types, t)
	}
	return NewUnion(types...), nil
}

func (p *parser) parseObject(obj map[string]any, namespace string, path string) (Schema, error) {
	typeVal, ok := obj["type"]
	if !ok {
		return nil, ParseError{Path: path, Msg: "missing type"}
	}
	typeName, ok := typeVal.(string)
	if !ok {
		// {"type": {...}} and {"type": [...]} wrap another schema
		return p.parse(typeVal, namespace, path)
	}
	switch Type(typeName) {
	case TypeRecord, "error":
		return p.parseRecord(obj, namespace, path)
	case TypeEnum:
		return p.parseEnum(obj, namespace, path)
	case TypeFixed:
		return p.parseFixed(obj, namespace, path)
	case TypeArray:
		items, ok := obj["items"]
		if !ok {
			return nil, ParseError{Path: path, Msg: "array missing items"}
		}
		s, err := p.parse(items, namespace, path+".items")
		if err != nil {
			return nil, err
		}
		return NewArray(s), nil
	case TypeMap:
		values, ok := obj["values"]
		if !ok {
			return nil, ParseError{Path: path, Msg: "map missing values"}
		}
		s, err := p.parse(values, namespace, path+".values")
		if err != nil {
			return nil, err
		}
		return NewMap(s), nil
	case TypeNull, TypeBoolean, TypeInt, TypeLong, TypeFloat, TypeDouble, TypeBytes, TypeString:
		prim := NewPrimitive(Type(typeName))
		prim.logicalType, _ = obj["logicalType"].(string)
		prim.precision = intProp(obj, "precision")
		prim.scale = intProp(obj, "scale")
		return prim, nil
	}
	return p.parseName(typeName, namespace, path)
}

func (p *parser) parseNameProps(obj map[string]any, namespace string, path string) (name, error) {
	n, _ := obj["name"].(string)
	if n == "" {
		return name{}, ParseError{Path: path, Msg: "named type missing name"}
	}
	if ns, ok := obj["namespace"].(string); ok {
		namespace = ns
	}
	ret := newName(n, namespace)
	ret.aliases = qualifyAliases(stringList(obj["aliases"]), ret.namespace)
	return ret, nil
}

func (p *parser) parseRecord(obj map[string]any, namespace string, path string) (Schema, error) {
	n, err := p.parseNameProps(obj, namespace, path)
	if err != nil {
		return nil, err
	}
	rec := &RecordSchema{name: n}
	rec.doc, _ = obj["doc"].(string)
	// Register before parsing fields so that the record may refer to itself
	if err := p.names.add(rec); err != nil {
		return nil, err
	}
	rawFields, ok := obj["fields"].([]any)
	if !ok {
		return nil, ParseError{Path: n.FullName(), Msg: "record missing fields"}
	}
	seen := map[string]bool{}
	for i, rawField := range rawFields {
		fieldObj, ok := rawField.(map[string]any)
		if !ok {
			return nil, ParseError{Path: fmt.Sprintf("%s.fields[%d]", n.FullName(), i), Msg: "field must be an object"}
		}
		fieldName, _ := fieldObj["name"].(string)
		if fieldName == "" {
			return nil, ParseError{Path: fmt.Sprintf("%s.fields[%d]", n.FullName(), i), Msg: "field missing name"}
		}
		if seen[fieldName] {
			return nil, ParseError{Path: n.FullName(), Msg: fmt.Sprintf("duplicate field %s", fieldName)}
		}
		seen[fieldName] = true
		fieldPath := n.FullName() + "." + fieldName
		rawType, ok := fieldObj["type"]
		if !ok {
			return nil, ParseError{Path: fieldPath, Msg: "field missing type"}
		}
		// Field types inherit the namespace of the enclosing record
		typ, err := p.parse(rawType, n.namespace, fieldPath)
		if err != nil {
			return nil, err
		}
		field := &Field{
			name:    fieldName,
			typ:     typ,
			aliases: stringList(fieldObj["aliases"]),
		}
		field.doc, _ = fieldObj["doc"].(string)
		if def, ok := fieldObj["default"]; ok {
			field.def = def
			field.hasDefault = true
		}
		rec.fields = append(rec.fields, field)
	}
	return rec, nil
}

func (p *parser) parseEnum(obj map[string]any, namespace string, path string) (Schema, error) {
	n, err := p.parseNameProps(obj, namespace, path)
	if err != nil {
		return nil, err
	}
	rawSymbols, ok := obj["symbols"].([]any)
	if !ok {
		return nil, ParseError{Path: n.FullName(), Msg: "enum missing symbols"}
	}
	enum := &EnumSchema{name: n}
	seen := map[string]bool{}
	for _, rawSymbol := range rawSymbols {
		symbol, ok := rawSymbol.(string)
		if !ok || symbol == "" {
			return nil, ParseError{Path: n.FullName(), Msg: "invalid enum symbol"}
		}
		if seen[symbol] {
			return nil, ParseError{Path: n.FullName(), Msg: fmt.Sprintf("duplicate enum symbol %s", symbol)}
		}
		seen[symbol] = true
		enum.symbols = append(enum.symbols, symbol)
	}
	if def, ok := obj["default"].(string); ok {
		if !seen[def] {
			return nil, ParseError{Path: n.FullName(), Msg: fmt.Sprintf("enum default %s is not a symbol", def)}
		}
		enum.def = def
		enum.hasDefault = true
	}
	if err := p.names.add(enum); err != nil {
		return nil, err
	}
	return enum, nil
}

func (p *parser) parseFixed(obj map[string]any, namespace string, path string) (Schema, error) {
	n, err := p.parseNameProps(obj, namespace, path)
	if err != nil {
		return nil, err
	}
	if _, ok := obj["size"]; !ok {
		return nil, ParseError{Path: n.FullName(), Msg: "fixed missing size"}
	}
	size := intProp(obj, "size")
	if size < 0 {
		return nil, ParseError{Path: n.FullName(), Msg: "fixed size must not be negative"}
	}
	fixed := &FixedSchema{
		name:      n,
		size:      size,
		precision: intProp(obj, "precision"),
		scale:     intProp(obj, "scale"),
	}
	fixed.logicalType, _ = obj["logicalType"].(string)
	if err := p.names.add(fixed); err != nil {
		return nil, err
	}
	return fixed, nil
}

func intProp(obj map[string]any, key string) int {
	num, ok := obj[key].(json.Number)
	if !ok {
		return 0
	}
	v, err := num.Int64()
	if err != nil {
		return 0
	}
	return int(v)
}

func stringList(raw any) []string {
	items, ok := raw.([]any)
	if !ok {
		return nil
	}
	ret := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			ret = append(ret, s)
		}
	}
	return ret
}

func qualifyAliases(aliases []string, namespace string) []string {
	for i, a := range aliases {
		if !strings.Contains(a, ".") && namespace != "" {
			aliases[i] = namespace + "." + a
		}
	}
	return aliases
}
