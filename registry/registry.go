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

// Package registry assigns numeric ids to schemas by subject, in the manner
// of a Confluent schema registry
package registry

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

var ErrSchemaNotFound = errors.New("schema not found")

// Registry registers schema JSON under a subject and looks schemas up by id
type Registry interface {
	// Register returns the id of schemaJSON under subject, registering it
	// if needed. Registering the same schema again returns the same id.
	Register(ctx context.Context, subject string, schemaJSON string) (int, error)
	SchemaByID(ctx context.Context, id int) (string, error)
}

// Memory is an in-process Registry. Ids start at 1 and identical schema
// text shares one id across subjects.
type Memory struct {
	mu       sync.Mutex
	ids      map[string]int
	schemas  map[int]string
	subjects map[string][]int
}

func NewMemory() *Memory {
	return &Memory{
		ids:      make(map[string]int),
		schemas:  make(map[int]string),
		subjects: make(map[string][]int),
	}
}

func (m *Memory) Register(ctx context.Context, subject string, schemaJSON string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.ids[schemaJSON]
	if !ok {
		id = len(m.schemas) + 1
		m.ids[schemaJSON] = id
		m.schemas[id] = schemaJSON
	}
	for _, tmpID := range m.subjects[subject] {
		if tmpID == id {
			return id, nil
		}
	}
	m.subjects[subject] = append(m.subjects[subject], id)
	return id, nil
}

func (m *Memory) SchemaByID(ctx context.Context, id int) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	ret, ok := m.schemas[id]
	if !ok {
		return "", fmt.Errorf("%w: id %d", ErrSchemaNotFound, id)
	}
	return ret, nil
}

// Subjects returns the registered subjects in sorted order
func (m *Memory) Subjects() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ret := make([]string, 0, len(m.subjects))
	for subject := range m.subjects {
		ret = append(ret, subject)
	}
	sort.Strings(ret)
	return ret
}

// Versions returns the ids registered under subject in registration order
func (m *Memory) Versions(subject string) []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int(nil), m.subjects[subject]...)
}
