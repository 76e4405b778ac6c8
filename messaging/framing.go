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

// Package messaging frames model encodings for message brokers using the
// Confluent wire format: a zero magic byte, the 4-byte big-endian schema id
// and the Avro binary payload.
package messaging

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

const (
	MagicByte  byte = 0x00
	HeaderSize      = 5
)

var ErrMagicByte = errors.New("invalid message frame")

// Frame prepends the wire format header to payload
func Frame(id int, payload []byte) ([]byte, error) {
	if id < 0 || int64(id) > math.MaxUint32 {
		return nil, fmt.Errorf("schema id %d out of range", id)
	}
	ret := make([]byte, HeaderSize, HeaderSize+len(payload))
	ret[0] = MagicByte
	binary.BigEndian.PutUint32(ret[1:HeaderSize], uint32(id))
	return append(ret, payload...), nil
}

// Unframe splits a message into its schema id and payload
func Unframe(data []byte) (int, []byte, error) {
	if len(data) < HeaderSize {
		return 0, nil, fmt.Errorf("%w: %d bytes is shorter than the header", ErrMagicByte, len(data))
	}
	if data[0] != MagicByte {
		return 0, nil, fmt.Errorf("%w: unknown magic byte 0x%02x", ErrMagicByte, data[0])
	}
	return int(binary.BigEndian.Uint32(data[1:HeaderSize])), data[HeaderSize:], nil
}
