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
	"strings"

	"github.com/blinklabs-io/avromodel/avroio"
)

var (
	ErrNoKeySchema       = errors.New("model has no key schema")
	ErrImmutable         = errors.New("model is immutable")
	ErrUnknownAttribute  = errors.New("unknown attribute")
	ErrCoercion          = errors.New("coercion failed")
	ErrUnionResolution   = errors.New("union resolution failed")
	ErrValidation        = errors.New("validation failed")
	ErrModelRegistration = errors.New("model registration failed")
)

// ErrSchemaResolution matches SchemaResolutionError with errors.Is
var ErrSchemaResolution = avroio.ErrSchemaResolution

// SchemaResolutionError indicates that a writer schema cannot be read with
// the reader schema of a model
type SchemaResolutionError = avroio.SchemaResolutionError

// CoercionError indicates an input value that cannot be represented by an
// attribute type
type CoercionError struct {
	Value any
	Type  string
	Err   error
}

func (e CoercionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("could not coerce '%v' to %s: %v", e.Value, e.Type, e.Err)
	}
	return fmt.Sprintf("could not coerce '%v' to %s", e.Value, e.Type)
}

func (e CoercionError) Unwrap() error { return e.Err }

func (CoercionError) Is(target error) bool {
	return target == ErrCoercion
}

// UnionResolutionError indicates a value that matches none of the branches
// of a union
type UnionResolutionError struct {
	Value      any
	Candidates []string
}

func (e UnionResolutionError) Error() string {
	return fmt.Sprintf(
		"expected '%v' to be one of [%s]",
		e.Value,
		strings.Join(e.Candidates, ", "),
	)
}

func (UnionResolutionError) Is(target error) bool {
	return target == ErrUnionResolution
}

// ValidationError lists required attributes that have no value
type ValidationError struct {
	Model   string
	Missing []string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf(
		"%s: missing value for required attributes: %s",
		e.Model,
		strings.Join(e.Missing, ", "),
	)
}

func (ValidationError) Is(target error) bool {
	return target == ErrValidation
}
