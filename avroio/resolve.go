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

package avroio

import (
	"errors"
	"fmt"
	"strings"

	"github.com/blinklabs-io/avromodel/schema"
)

// Sentinel error for schema resolution failures so callers can use errors.Is
var ErrSchemaResolution = errors.New("schema resolution failed")

// SchemaResolutionError indicates that data written with one schema cannot
// be read with another
type SchemaResolutionError struct {
	// Full name of the reader record being resolved, if any
	Record string
	// Reader field being resolved, if any
	Field  string
	Reason string
}

func (e SchemaResolutionError) Error() string {
	switch {
	case e.Record != "" && e.Field != "":
		return fmt.Sprintf("schema resolution failed for %s.%s: %s", e.Record, e.Field, e.Reason)
	case e.Record != "":
		return fmt.Sprintf("schema resolution failed for %s: %s", e.Record, e.Reason)
	}
	return "schema resolution failed: " + e.Reason
}

func (SchemaResolutionError) Is(target error) bool {
	return target == ErrSchemaResolution
}

// Union is a resolved union value: the reader branch index and the value
// shaped for that branch
type Union struct {
	Index int
	Value any
}

// Decode reads one datum written with the writer schema and resolves it
// against the reader schema. Records come back as map[string]any keyed by
// reader field name and union values as Union.
func (c *Codecs) Decode(writer schema.Schema, reader schema.Schema, data []byte) (any, error) {
	codec, err := c.For(writer)
	if err != nil {
		return nil, err
	}
	native, rest, err := codec.NativeFromBinary(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", writer.TypeName(), err)
	}
	if len(rest) > 0 {
		return nil, fmt.Errorf("decode %s: %d trailing bytes", writer.TypeName(), len(rest))
	}
	return Resolve(writer, reader, native)
}

// Resolve reshapes a goavro native datum written with the writer schema
// into the form of the reader schema
func Resolve(writer schema.Schema, reader schema.Schema, datum any) (any, error) {
	return resolve(writer, reader, datum)
}

func resolve(writer schema.Schema, reader schema.Schema, datum any) (any, error) {
	if wu, ok := writer.(*schema.UnionSchema); ok {
		branch, value, err := writerBranch(wu, datum)
		if err != nil {
			return nil, err
		}
		return resolve(branch, reader, value)
	}
	if ru, ok := reader.(*schema.UnionSchema); ok {
		index := readerBranch(writer, ru)
		if index < 0 {
			return nil, SchemaResolutionError{
				Reason: fmt.Sprintf("no branch of reader union matches writer type %s", writer.TypeName()),
			}
		}
		value, err := resolve(writer, ru.Types()[index], datum)
		if err != nil {
			return nil, err
		}
		return Union{Index: index, Value: value}, nil
	}
	if !compatible(writer, reader, true) {
		return nil, SchemaResolutionError{
			Reason: fmt.Sprintf("writer type %s does not match reader type %s", writer.TypeName(), reader.TypeName()),
		}
	}
	switch r := reader.(type) {
	case *schema.Primitive:
		return promote(writer.Type(), r.Type(), datum)
	case *schema.FixedSchema:
		return datum, nil
	case *schema.EnumSchema:
		symbol, _ := datum.(string)
		if r.HasSymbol(symbol) {
			return symbol, nil
		}
		if def, ok := r.Default(); ok {
			return def, nil
		}
		return nil, SchemaResolutionError{
			Record: r.FullName(),
			Reason: fmt.Sprintf("symbol %q not in reader enum", symbol),
		}
	case *schema.ArraySchema:
		items, ok := datum.([]any)
		if !ok {
			return nil, fmt.Errorf("expected array datum, got %T", datum)
		}
		writerItems := writer.(*schema.ArraySchema).Items()
		ret := make([]any, len(items))
		for i, item := range items {
			tmp, err := resolve(writerItems, r.Items(), item)
			if err != nil {
				return nil, err
			}
			ret[i] = tmp
		}
		return ret, nil
	case *schema.MapSchema:
		entries, ok := datum.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("expected map datum, got %T", datum)
		}
		writerValues := writer.(*schema.MapSchema).Values()
		ret := make(map[string]any, len(entries))
		for key, value := range entries {
			tmp, err := resolve(writerValues, r.Values(), value)
			if err != nil {
				return nil, err
			}
			ret[key] = tmp
		}
		return ret, nil
	case *schema.RecordSchema:
		return resolveRecord(writer.(*schema.RecordSchema), r, datum)
	}
	return nil, fmt.Errorf("unsupported reader schema %T", reader)
}

func resolveRecord(writer *schema.RecordSchema, reader *schema.RecordSchema, datum any) (map[string]any, error) {
	fields, ok := datum.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("expected record datum, got %T", datum)
	}
	ret := make(map[string]any, len(reader.Fields()))
	for _, readerField := range reader.Fields() {
		writerField := matchingField(writer, readerField)
		if writerField != nil {
			tmp, err := resolve(writerField.Type(), readerField.Type(), fields[writerField.Name()])
			if err != nil {
				var resErr SchemaResolutionError
				if errors.As(err, &resErr) && resErr.Record == "" {
					resErr.Record = reader.FullName()
					resErr.Field = readerField.Name()
					return nil, resErr
				}
				return nil, err
			}
			ret[readerField.Name()] = tmp
			continue
		}
		def, ok := readerField.Default()
		if !ok {
			return nil, SchemaResolutionError{
				Record: reader.FullName(),
				Field:  readerField.Name(),
				Reason: "field missing from writer schema and has no default",
			}
		}
		tmp, err := DefaultDatum(readerField.Type(), def)
		if err != nil {
			return nil, SchemaResolutionError{
				Record: reader.FullName(),
				Field:  readerField.Name(),
				Reason: err.Error(),
			}
		}
		ret[readerField.Name()] = tmp
	}
	return ret, nil
}

func matchingField(writer *schema.RecordSchema, readerField *schema.Field) *schema.Field {
	if f, ok := writer.Field(readerField.Name()); ok {
		return f
	}
	for _, f := range writer.Fields() {
		if readerField.HasAlias(f.Name()) {
			return f
		}
	}
	return nil
}

// writerBranch picks the writer union branch out of a goavro native union
func writerBranch(u *schema.UnionSchema, datum any) (schema.Schema, any, error) {
	if datum == nil {
		if idx := u.NullIndex(); idx >= 0 {
			return u.Types()[idx], nil, nil
		}
		return nil, nil, fmt.Errorf("null datum for union without null branch")
	}
	wrapped, ok := datum.(map[string]any)
	if !ok || len(wrapped) != 1 {
		return nil, nil, fmt.Errorf("malformed union datum %T", datum)
	}
	for name, value := range wrapped {
		for _, t := range u.Types() {
			if t.TypeName() == name {
				return t, value, nil
			}
		}
		return nil, nil, fmt.Errorf("unknown union branch %s", name)
	}
	return nil, nil, nil
}

// readerBranch returns the first reader union branch the writer type can
// be read as, preferring branches that need no promotion
func readerBranch(writer schema.Schema, u *schema.UnionSchema) int {
	for i, t := range u.Types() {
		if compatible(writer, t, false) {
			return i
		}
	}
	for i, t := range u.Types() {
		if compatible(writer, t, true) {
			return i
		}
	}
	return -1
}

func compatible(writer schema.Schema, reader schema.Schema, allowPromotion bool) bool {
	wt, rt := writer.Type(), reader.Type()
	if wt != rt {
		return allowPromotion && promotable(wt, rt)
	}
	switch r := reader.(type) {
	case *schema.FixedSchema:
		w := writer.(*schema.FixedSchema)
		return w.Size() == r.Size() && namesMatch(w, r)
	case *schema.EnumSchema:
		return namesMatch(writer.(*schema.EnumSchema), r)
	case *schema.RecordSchema:
		return namesMatch(writer.(*schema.RecordSchema), r)
	}
	return true
}

// namesMatch compares unqualified names, also accepting reader aliases
func namesMatch(writer schema.Named, reader schema.Named) bool {
	if writer.Name() == reader.Name() {
		return true
	}
	for _, alias := range reader.Aliases() {
		if alias == writer.FullName() || unqualified(alias) == writer.Name() {
			return true
		}
	}
	return false
}

func unqualified(name string) string {
	if idx := strings.LastIndex(name, "."); idx >= 0 {
		return name[idx+1:]
	}
	return name
}

func promotable(writer schema.Type, reader schema.Type) bool {
	switch writer {
	case schema.TypeInt:
		return reader == schema.TypeLong || reader == schema.TypeFloat || reader == schema.TypeDouble
	case schema.TypeLong:
		return reader == schema.TypeFloat || reader == schema.TypeDouble
	case schema.TypeFloat:
		return reader == schema.TypeDouble
	case schema.TypeString:
		return reader == schema.TypeBytes
	case schema.TypeBytes:
		return reader == schema.TypeString
	}
	return false
}

func promote(writer schema.Type, reader schema.Type, datum any) (any, error) {
	if writer == reader {
		return datum, nil
	}
	switch v := datum.(type) {
	case int32:
		switch reader {
		case schema.TypeLong:
			return int64(v), nil
		case schema.TypeFloat:
			return float32(v), nil
		case schema.TypeDouble:
			return float64(v), nil
		}
	case int64:
		switch reader {
		case schema.TypeFloat:
			return float32(v), nil
		case schema.TypeDouble:
			return float64(v), nil
		}
	case float32:
		if reader == schema.TypeDouble {
			return float64(v), nil
		}
	case string:
		if reader == schema.TypeBytes {
			return []byte(v), nil
		}
	case []byte:
		if reader == schema.TypeString {
			return string(v), nil
		}
	}
	return nil, fmt.Errorf("cannot promote %T from %s to %s", datum, writer, reader)
}

// Plain removes Union wrappers from a resolved datum
func Plain(datum any) any {
	switch v := datum.(type) {
	case Union:
		return Plain(v.Value)
	case []any:
		ret := make([]any, len(v))
		for i, item := range v {
			ret[i] = Plain(item)
		}
		return ret
	case map[string]any:
		ret := make(map[string]any, len(v))
		for key, value := range v {
			ret[key] = Plain(value)
		}
		return ret
	}
	return datum
}
