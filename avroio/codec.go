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
	"fmt"
	"sync"

	"github.com/blinklabs-io/avromodel/schema"
	"github.com/cespare/xxhash/v2"
	"github.com/linkedin/goavro/v2"
)

type codecEntry struct {
	text  string
	codec *goavro.Codec
}

// Codecs caches goavro codecs by the physical JSON of their schema
type Codecs struct {
	mu      sync.RWMutex
	entries map[uint64][]codecEntry
}

func NewCodecs() *Codecs {
	return &Codecs{
		entries: map[uint64][]codecEntry{},
	}
}

// For returns the codec for the schema, building it on first use
func (c *Codecs) For(s schema.Schema) (*goavro.Codec, error) {
	text := schema.PhysicalJSON(s)
	key := xxhash.Sum64String(text)
	c.mu.RLock()
	for _, entry := range c.entries[key] {
		if entry.text == text {
			c.mu.RUnlock()
			return entry.codec, nil
		}
	}
	c.mu.RUnlock()
	codec, err := goavro.NewCodec(text)
	if err != nil {
		return nil, fmt.Errorf("build codec for %s: %w", s.TypeName(), err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, entry := range c.entries[key] {
		if entry.text == text {
			// Another caller got here first
			return entry.codec, nil
		}
	}
	c.entries[key] = append(c.entries[key], codecEntry{text: text, codec: codec})
	return codec, nil
}

// Len returns the number of cached codecs
func (c *Codecs) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ret := 0
	for _, entries := range c.entries {
		ret += len(entries)
	}
	return ret
}

// Clear drops every cached codec
func (c *Codecs) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = map[uint64][]codecEntry{}
}
