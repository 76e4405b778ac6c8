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
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/blinklabs-io/avromodel/avroio"
	"github.com/blinklabs-io/avromodel/schema"
)

// SchemaStore finds named schemas by full name
type SchemaStore interface {
	Find(fullName string) (schema.Schema, error)
	Clear()
}

// Env holds the registries and settings shared by a family of models
type Env struct {
	customTypes            *CustomTypeRegistry
	models                 *ModelRegistry
	codecs                 *avroio.Codecs
	store                  SchemaStore
	logger                 *slog.Logger
	unionMemberIndex       bool
	allowUnknownAttributes bool
	strict                 bool
	eagerLoad              []string
}

// EnvOptionFunc is a type that represents functions that modify the Env
type EnvOptionFunc func(*Env)

// NewEnv returns an Env with empty registries. Union member annotation and
// strict encoding are enabled by default.
func NewEnv(opts ...EnvOptionFunc) *Env {
	e := &Env{
		customTypes:      NewCustomTypeRegistry(),
		models:           NewModelRegistry(),
		codecs:           avroio.NewCodecs(),
		unionMemberIndex: true,
		strict:           true,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return e
}

// WithLogger specifies the logger to use. Logging is discarded by default
func WithLogger(logger *slog.Logger) EnvOptionFunc {
	return func(e *Env) {
		e.logger = logger
	}
}

// WithSchemaStore specifies the store used to resolve models by schema name
func WithSchemaStore(store SchemaStore) EnvOptionFunc {
	return func(e *Env) {
		e.store = store
	}
}

// WithCustomTypeRegistry specifies a custom type registry to share
func WithCustomTypeRegistry(registry *CustomTypeRegistry) EnvOptionFunc {
	return func(e *Env) {
		e.customTypes = registry
	}
}

// WithModelRegistry specifies a nested model registry to share
func WithModelRegistry(registry *ModelRegistry) EnvOptionFunc {
	return func(e *Env) {
		e.models = registry
	}
}

// WithUnionMemberIndex specifies whether union values are annotated with
// their branch index during encoding
func WithUnionMemberIndex(enabled bool) EnvOptionFunc {
	return func(e *Env) {
		e.unionMemberIndex = enabled
	}
}

// WithAllowUnknownAttributes specifies whether unknown attribute names are
// ignored when building instances instead of rejected
func WithAllowUnknownAttributes(allow bool) EnvOptionFunc {
	return func(e *Env) {
		e.allowUnknownAttributes = allow
	}
}

// WithStrict specifies whether invalid values fail while building the
// encodable tree. With strict disabled they are handed to the binary writer
func WithStrict(strict bool) EnvOptionFunc {
	return func(e *Env) {
		e.strict = strict
	}
}

// WithEagerLoadModels specifies models by schema full name to build on
// Prepare
func WithEagerLoadModels(names ...string) EnvOptionFunc {
	return func(e *Env) {
		e.eagerLoad = append(e.eagerLoad, names...)
	}
}

func (e *Env) CustomTypes() *CustomTypeRegistry {
	return e.customTypes
}

func (e *Env) Models() *ModelRegistry {
	return e.models
}

func (e *Env) Codecs() *avroio.Codecs {
	return e.codecs
}

func (e *Env) Logger() *slog.Logger {
	return e.logger
}

// RegisterType is a shortcut for CustomTypes().RegisterType
func (e *Env) RegisterType(fullName string, configure func(*CustomType)) {
	e.customTypes.RegisterType(fullName, configure)
}

// Prepare clears the nested model registry, the schema store and the codec
// cache and then builds the eager load models. It is meant for application
// startup and reload and is not safe to call while models are in use.
func (e *Env) Prepare() error {
	e.models.Clear()
	e.codecs.Clear()
	if e.store != nil {
		e.store.Clear()
	}
	var err error
	for _, name := range e.eagerLoad {
		if _, tmpErr := e.Model(WithValueSchemaName(name)); tmpErr != nil {
			err = errors.Join(err, tmpErr)
		}
	}
	e.logger.Info(
		"prepared model environment",
		"models", len(e.models.Names()),
		"custom_types", len(e.customTypes.Names()),
	)
	return err
}

func (e *Env) findRecord(fullName string) (*schema.RecordSchema, error) {
	if e.store == nil {
		return nil, fmt.Errorf("cannot find schema %s: no schema store configured", fullName)
	}
	s, err := e.store.Find(fullName)
	if err != nil {
		return nil, err
	}
	rec, ok := s.(*schema.RecordSchema)
	if !ok {
		return nil, fmt.Errorf("schema %s is a %s, not a record", fullName, s.TypeName())
	}
	return rec, nil
}
