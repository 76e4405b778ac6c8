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

// Package config loads settings for a model environment from a YAML file.
//
// Values missing from the file keep their defaults.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/blinklabs-io/avromodel/model"
	"github.com/blinklabs-io/avromodel/registry"
	"github.com/blinklabs-io/avromodel/schemastore"
	"github.com/jinzhu/copier"
	"gopkg.in/yaml.v3"
)

type Config struct {
	// RegistryURL is the schema registry base URL. An in-memory registry is
	// used when empty
	RegistryURL string `yaml:"registry_url"`

	// SchemaPath is the root directory of .avsc files
	SchemaPath string `yaml:"schema_path"`

	// SchemaBundle is an optional CBOR bundle preloaded into the store
	SchemaBundle string `yaml:"schema_bundle"`

	UnionMemberIndex       *bool    `yaml:"union_member_index"`
	AllowUnknownAttributes *bool    `yaml:"allow_unknown_attributes"`
	Strict                 *bool    `yaml:"strict"`
	EagerLoadModels        []string `yaml:"eager_load_models"`

	// LogLevel is one of debug, info, warn or error
	LogLevel string `yaml:"log_level"`
}

func boolPtr(v bool) *bool {
	return &v
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		SchemaPath:             "avro/schema",
		UnionMemberIndex:       boolPtr(true),
		AllowUnknownAttributes: boolPtr(false),
		Strict:                 boolPtr(true),
		LogLevel:               "info",
	}
}

// Load reads a YAML config file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML config data over the defaults
func Parse(data []byte) (*Config, error) {
	var tmp Config
	if err := yaml.Unmarshal(data, &tmp); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	ret := Default()
	if err := copier.CopyWithOption(ret, &tmp, copier.Option{IgnoreEmpty: true, DeepCopy: true}); err != nil {
		return nil, fmt.Errorf("apply config: %w", err)
	}
	if _, err := ret.Level(); err != nil {
		return nil, err
	}
	return ret, nil
}

// Level returns the configured log level
func (c *Config) Level() (slog.Level, error) {
	var ret slog.Level
	if err := ret.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return ret, fmt.Errorf("invalid log level %q", c.LogLevel)
	}
	return ret, nil
}

// Logger returns a JSON logger writing to w at the configured level
func (c *Config) Logger(w io.Writer) (*slog.Logger, error) {
	level, err := c.Level()
	if err != nil {
		return nil, err
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})), nil
}

// SchemaStore opens the schema directory and loads the bundle, if any
func (c *Config) SchemaStore(logger *slog.Logger) (*schemastore.Store, error) {
	if c.SchemaPath == "" {
		return nil, errors.New("no schema path configured")
	}
	opts := []schemastore.StoreOptionFunc{}
	if logger != nil {
		opts = append(opts, schemastore.WithLogger(logger))
	}
	store := schemastore.New(c.SchemaPath, opts...)
	if c.SchemaBundle != "" {
		f, err := os.Open(c.SchemaBundle)
		if err != nil {
			return nil, fmt.Errorf("open schema bundle: %w", err)
		}
		defer f.Close()
		if err := store.LoadBundle(f); err != nil {
			return nil, fmt.Errorf("load schema bundle %s: %w", c.SchemaBundle, err)
		}
	}
	return store, nil
}

// Registry returns a cached registry for RegistryURL
func (c *Config) Registry() registry.Registry {
	if c.RegistryURL == "" {
		return registry.NewCached(registry.NewMemory())
	}
	return registry.NewCached(registry.NewSRClient(c.RegistryURL))
}

// EnvOptions converts the config to environment options. The store may be
// nil
func (c *Config) EnvOptions(store model.SchemaStore, logger *slog.Logger) []model.EnvOptionFunc {
	var ret []model.EnvOptionFunc
	if store != nil {
		ret = append(ret, model.WithSchemaStore(store))
	}
	if logger != nil {
		ret = append(ret, model.WithLogger(logger))
	}
	if c.UnionMemberIndex != nil {
		ret = append(ret, model.WithUnionMemberIndex(*c.UnionMemberIndex))
	}
	if c.AllowUnknownAttributes != nil {
		ret = append(ret, model.WithAllowUnknownAttributes(*c.AllowUnknownAttributes))
	}
	if c.Strict != nil {
		ret = append(ret, model.WithStrict(*c.Strict))
	}
	if len(c.EagerLoadModels) > 0 {
		ret = append(ret, model.WithEagerLoadModels(c.EagerLoadModels...))
	}
	return ret
}
