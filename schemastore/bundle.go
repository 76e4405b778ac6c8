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

package schemastore

import (
	"fmt"
	"io"
	"sort"

	"github.com/blinklabs-io/avromodel/internal/cbor"
)

const bundleVersion = 1

type bundle struct {
	cbor.StructAsArray
	Version uint
	Schemas []bundleSchema
}

type bundleSchema struct {
	cbor.StructAsArray
	Name   string
	Schema string
}

// WriteBundle writes the JSON of every loaded schema to w as CBOR
func (s *Store) WriteBundle(w io.Writer) error {
	s.mu.Lock()
	tmp := bundle{Version: bundleVersion}
	for _, name := range s.loadedLocked() {
		tmp.Schemas = append(tmp.Schemas, bundleSchema{Name: name, Schema: s.texts[name]})
	}
	s.mu.Unlock()
	data, err := cbor.Encode(&tmp)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// LoadBundle makes the schemas of a bundle available to Find. Bundled
// schemas take precedence over files and are parsed on first use.
func (s *Store) LoadBundle(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	var tmp bundle
	n, err := cbor.Decode(data, &tmp)
	if err != nil {
		return fmt.Errorf("decode schema bundle: %w", err)
	}
	if n != len(data) {
		return fmt.Errorf("schema bundle has %d trailing bytes", len(data)-n)
	}
	if tmp.Version != bundleVersion {
		return fmt.Errorf("unsupported schema bundle version %d", tmp.Version)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, entry := range tmp.Schemas {
		if _, ok := s.names.Lookup(entry.Name); ok {
			continue
		}
		s.pending[entry.Name] = entry.Schema
		s.texts[entry.Name] = entry.Schema
	}
	s.logger.Debug("loaded schema bundle", "schemas", len(tmp.Schemas))
	return nil
}

func (s *Store) loadedLocked() []string {
	ret := make([]string, 0, len(s.texts))
	for name := range s.texts {
		ret = append(ret, name)
	}
	sort.Strings(ret)
	return ret
}
