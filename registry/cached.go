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

package registry

import (
	"context"
	"sync"

	"github.com/cespare/xxhash/v2"
)

type registration struct {
	subject string
	schema  string
	id      int
}

// Cached remembers registrations and lookups of another Registry. Errors
// are returned unchanged and never cached.
type Cached struct {
	next    Registry
	mu      sync.RWMutex
	ids     map[uint64][]registration
	schemas map[int]string
}

func NewCached(next Registry) *Cached {
	return &Cached{
		next:    next,
		ids:     make(map[uint64][]registration),
		schemas: make(map[int]string),
	}
}

func registrationKey(subject string, schemaJSON string) uint64 {
	d := xxhash.New()
	_, _ = d.WriteString(subject)
	_, _ = d.Write([]byte{0})
	_, _ = d.WriteString(schemaJSON)
	return d.Sum64()
}

func (c *Cached) Register(ctx context.Context, subject string, schemaJSON string) (int, error) {
	key := registrationKey(subject, schemaJSON)
	c.mu.RLock()
	for _, r := range c.ids[key] {
		if r.subject == subject && r.schema == schemaJSON {
			c.mu.RUnlock()
			return r.id, nil
		}
	}
	c.mu.RUnlock()
	id, err := c.next.Register(ctx, subject, schemaJSON)
	if err != nil {
		return 0, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, r := range c.ids[key] {
		if r.subject == subject && r.schema == schemaJSON {
			return r.id, nil
		}
	}
	c.ids[key] = append(c.ids[key], registration{subject: subject, schema: schemaJSON, id: id})
	c.schemas[id] = schemaJSON
	return id, nil
}

func (c *Cached) SchemaByID(ctx context.Context, id int) (string, error) {
	c.mu.RLock()
	ret, ok := c.schemas[id]
	c.mu.RUnlock()
	if ok {
		return ret, nil
	}
	ret, err := c.next.SchemaByID(ctx, id)
	if err != nil {
		return "", err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.schemas[id] = ret
	return ret, nil
}
