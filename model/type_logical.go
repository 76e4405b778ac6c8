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
	"math"
	"math/big"
	"regexp"
	"time"

	"github.com/blinklabs-io/avromodel/avroio"
)

const secondsPerDay = 24 * 60 * 60

// dateType holds dates as time.Time at midnight UTC
type dateType struct{}

func (dateType) Name() string { return "date" }

func (t dateType) Coerce(input any) (any, error) {
	switch v := input.(type) {
	case nil:
		return nil, nil
	case time.Time:
		y, m, d := v.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	}
	return nil, CoercionError{Value: input, Type: t.Name()}
}

func (dateType) Matched(value any) bool {
	v, ok := value.(time.Time)
	if !ok || v.Location() != time.UTC {
		return false
	}
	return v.Hour() == 0 && v.Minute() == 0 && v.Second() == 0 && v.Nanosecond() == 0
}

func (t dateType) Serialize(value any, strict bool) (avroio.Node, error) {
	v, ok := value.(time.Time)
	if !ok || (strict && !t.Matched(value)) {
		return nil, CoercionError{Value: value, Type: t.Name()}
	}
	days := v.Unix() / secondsPerDay
	if v.Unix()%secondsPerDay < 0 {
		days--
	}
	if days < math.MinInt32 || days > math.MaxInt32 {
		return nil, CoercionError{Value: value, Type: t.Name()}
	}
	return &avroio.Leaf{Value: int32(days)}, nil
}

func (t dateType) Deserialize(raw any) (any, error) {
	days, ok := raw.(int32)
	if !ok {
		return nil, CoercionError{Value: raw, Type: t.Name()}
	}
	return time.Unix(int64(days)*secondsPerDay, 0).UTC(), nil
}

func (dateType) ReferencedModels() []*Model { return nil }

type timestampUnit int

const (
	unitMillis timestampUnit = iota
	unitMicros
)

// timestampType holds timestamps as UTC time.Time truncated to the
// precision of the unit
type timestampType struct {
	unit timestampUnit
}

func (t timestampType) Name() string {
	if t.unit == unitMicros {
		return "timestamp-micros"
	}
	return "timestamp-millis"
}

func (t timestampType) precision() time.Duration {
	if t.unit == unitMicros {
		return time.Microsecond
	}
	return time.Millisecond
}

func (t timestampType) Coerce(input any) (any, error) {
	switch v := input.(type) {
	case nil:
		return nil, nil
	case time.Time:
		return v.UTC().Truncate(t.precision()), nil
	}
	return nil, CoercionError{Value: input, Type: t.Name()}
}

func (t timestampType) Matched(value any) bool {
	v, ok := value.(time.Time)
	return ok && v.Location() == time.UTC && v.Nanosecond()%int(t.precision()) == 0
}

func (t timestampType) Serialize(value any, strict bool) (avroio.Node, error) {
	v, ok := value.(time.Time)
	if !ok || (strict && !t.Matched(value)) {
		return nil, CoercionError{Value: value, Type: t.Name()}
	}
	if t.unit == unitMicros {
		return &avroio.Leaf{Value: v.UnixMicro()}, nil
	}
	return &avroio.Leaf{Value: v.UnixMilli()}, nil
}

func (t timestampType) Deserialize(raw any) (any, error) {
	v, ok := raw.(int64)
	if !ok {
		return nil, CoercionError{Value: raw, Type: t.Name()}
	}
	if t.unit == unitMicros {
		return time.UnixMicro(v).UTC(), nil
	}
	return time.UnixMilli(v).UTC(), nil
}

func (timestampType) ReferencedModels() []*Model { return nil }

// decimalType holds decimals as *big.Rat. The physical form is the unscaled
// value as big-endian two's complement, sign extended to size for fixed.
type decimalType struct {
	precision int
	scale     int
	size      int
}

func (t *decimalType) Name() string {
	return fmt.Sprintf("decimal(%d, %d)", t.precision, t.scale)
}

func (t *decimalType) Coerce(input any) (any, error) {
	ret := new(big.Rat)
	switch v := input.(type) {
	case nil:
		return nil, nil
	case *big.Rat:
		ret.Set(v)
	case *big.Int:
		ret.SetInt(v)
	case string:
		if _, ok := ret.SetString(v); !ok {
			return nil, CoercionError{Value: input, Type: t.Name()}
		}
	default:
		if i, ok := toInt64(input); ok {
			ret.SetInt64(i)
			break
		}
		f, ok := toFloat64(input)
		if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, CoercionError{Value: input, Type: t.Name()}
		}
		// Floats go through their shortest decimal representation
		ret.SetString(fmt.Sprintf("%v", f))
	}
	if _, err := t.unscaled(ret); err != nil {
		return nil, CoercionError{Value: input, Type: t.Name(), Err: err}
	}
	return ret, nil
}

func (t *decimalType) Matched(value any) bool {
	_, ok := value.(*big.Rat)
	return ok
}

func (t *decimalType) factor() *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(t.scale)), nil)
}

func (t *decimalType) unscaled(r *big.Rat) (*big.Int, error) {
	tmp := new(big.Rat).Mul(r, new(big.Rat).SetInt(t.factor()))
	if !tmp.IsInt() {
		return nil, fmt.Errorf("%s has more than %d decimal places", r.RatString(), t.scale)
	}
	ret := tmp.Num()
	if t.precision > 0 && len(new(big.Int).Abs(ret).String()) > t.precision {
		return nil, fmt.Errorf("%s exceeds precision %d", r.RatString(), t.precision)
	}
	return ret, nil
}

func (t *decimalType) Serialize(value any, strict bool) (avroio.Node, error) {
	r, ok := value.(*big.Rat)
	if !ok {
		return nil, CoercionError{Value: value, Type: t.Name()}
	}
	unscaled, err := t.unscaled(r)
	if err != nil {
		return nil, CoercionError{Value: value, Type: t.Name(), Err: err}
	}
	data := twosComplement(unscaled)
	if t.size > 0 {
		if len(data) > t.size {
			return nil, CoercionError{Value: value, Type: t.Name()}
		}
		pad := byte(0)
		if unscaled.Sign() < 0 {
			pad = 0xff
		}
		tmp := make([]byte, t.size-len(data), t.size)
		for i := range tmp {
			tmp[i] = pad
		}
		data = append(tmp, data...)
	}
	return &avroio.Leaf{Value: data}, nil
}

func (t *decimalType) Deserialize(raw any) (any, error) {
	data, ok := raw.([]byte)
	if !ok {
		return nil, CoercionError{Value: raw, Type: t.Name()}
	}
	unscaled := new(big.Int).SetBytes(data)
	if len(data) > 0 && data[0]&0x80 != 0 {
		unscaled.Sub(unscaled, new(big.Int).Lsh(big.NewInt(1), uint(len(data)*8)))
	}
	return new(big.Rat).SetFrac(unscaled, t.factor()), nil
}

func (*decimalType) ReferencedModels() []*Model { return nil }

// twosComplement returns the minimal big-endian two's complement encoding
func twosComplement(v *big.Int) []byte {
	if v.Sign() >= 0 {
		data := v.Bytes()
		if len(data) == 0 || data[0]&0x80 != 0 {
			data = append([]byte{0}, data...)
		}
		return data
	}
	// For negative values encode 2^(8n) + v using the smallest n that keeps
	// the sign bit set
	n := (new(big.Int).Not(v).BitLen())/8 + 1
	tmp := new(big.Int).Add(new(big.Int).Lsh(big.NewInt(1), uint(n*8)), v)
	data := tmp.Bytes()
	for len(data) < n {
		data = append([]byte{0xff}, data...)
	}
	return data
}

var uuidPattern = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

type uuidType struct{}

func (uuidType) Name() string { return "uuid" }

func (t uuidType) Coerce(input any) (any, error) {
	switch v := input.(type) {
	case nil:
		return nil, nil
	case string:
		if uuidPattern.MatchString(v) {
			return v, nil
		}
	case fmt.Stringer:
		return t.Coerce(v.String())
	}
	return nil, CoercionError{Value: input, Type: t.Name()}
}

func (uuidType) Matched(value any) bool {
	v, ok := value.(string)
	return ok && uuidPattern.MatchString(v)
}

func (t uuidType) Serialize(value any, strict bool) (avroio.Node, error) {
	return serializeLeaf(t, value, strict)
}

func (t uuidType) Deserialize(raw any) (any, error) {
	if _, ok := raw.(string); !ok {
		return nil, CoercionError{Value: raw, Type: t.Name()}
	}
	return raw, nil
}

func (uuidType) ReferencedModels() []*Model { return nil }
