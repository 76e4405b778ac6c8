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

// Package schemastore loads named Avro schemas from a directory tree of
// .avsc files. The schema named "a.b.c" is read from "<path>/a/b/c.avsc".
package schemastore

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/blinklabs-io/avromodel/schema"
)

var ErrNotFound = errors.New("schema not found")

// Store finds schemas by full name. References to named types defined in
// other files are loaded on demand. Parsed schemas are kept until Clear.
type Store struct {
	path   string
	fsys   fs.FS
	logger *slog.Logger
	mu     sync.Mutex
	names  *schema.Names
	// Schema JSON by full name, for every file loaded or bundled
	texts map[string]string
	// Bundled schema JSON that has not been parsed yet
	pending map[string]string
}

// StoreOptionFunc is a type that represents functions that modify the Store
type StoreOptionFunc func(*Store)

// WithLogger specifies the logger to use
func WithLogger(logger *slog.Logger) StoreOptionFunc {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithFS reads schema files from fsys instead of the local filesystem. The
// store path is then relative to fsys.
func WithFS(fsys fs.FS) StoreOptionFunc {
	return func(s *Store) {
		s.fsys = fsys
	}
}

func New(path string, opts ...StoreOptionFunc) *Store {
	s := &Store{
		path: path,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	s.reset()
	return s
}

func (s *Store) reset() {
	s.names = schema.NewNames()
	s.texts = make(map[string]string)
	s.pending = make(map[string]string)
}

func (s *Store) Path() string {
	return s.path
}

// Find returns the named schema with the given full name
func (s *Store) Find(fullName string) (schema.Schema, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ret, err := s.find(fullName)
	if err != nil && !errors.Is(err, ErrNotFound) {
		// A failed parse may leave partial definitions behind
		s.reset()
	}
	return ret, err
}

func (s *Store) find(fullName string) (schema.Schema, error) {
	if t, ok := s.names.Lookup(fullName); ok {
		return t, nil
	}
	text, ok := s.pending[fullName]
	if ok {
		delete(s.pending, fullName)
	} else {
		var err error
		if text, err = s.readFile(fullName); err != nil {
			return nil, err
		}
	}
	ret, err := schema.Parse(
		text,
		schema.WithNames(s.names),
		schema.WithResolver(s.resolve),
	)
	if err != nil {
		return nil, fmt.Errorf("schema %s: %w", fullName, err)
	}
	named, ok := ret.(schema.Named)
	if !ok || named.FullName() != fullName {
		return nil, fmt.Errorf("schema %s: file defines %s instead", fullName, ret.TypeName())
	}
	s.texts[fullName] = text
	return ret, nil
}

// resolve is the parser callback for references to types not yet loaded
func (s *Store) resolve(fullName string) (schema.Schema, error) {
	ret, err := s.find(fullName)
	if errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", schema.ErrUnknownType, fullName)
	}
	return ret, err
}

func (s *Store) filename(fullName string) string {
	parts := strings.Split(fullName, ".")
	return filepath.Join(s.path, filepath.Join(parts[:len(parts)-1]...), parts[len(parts)-1]+".avsc")
}

func (s *Store) readFile(fullName string) (string, error) {
	name := s.filename(fullName)
	var data []byte
	var err error
	if s.fsys != nil {
		data, err = fs.ReadFile(s.fsys, filepath.ToSlash(name))
	} else {
		data, err = os.ReadFile(name)
	}
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, fullName)
		}
		return "", err
	}
	s.logger.Debug("loaded schema file", "schema", fullName, "file", name)
	return string(data), nil
}

// Loaded returns the full names of the schemas loaded from files or bundles
func (s *Store) Loaded() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadedLocked()
}

// Clear drops parsed schemas and bundled schemas
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
}
