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

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/blinklabs-io/avromodel/config"
	"github.com/blinklabs-io/avromodel/messaging"
	"github.com/blinklabs-io/avromodel/model"
	"github.com/spf13/pflag"
)

type decodeFlags struct {
	configFile   string
	schemaPath   string
	schemaName   string
	writerSchema string
	registryURL  string
	framed       bool
	asJSON       bool
}

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	var f decodeFlags
	flagSet := pflag.NewFlagSet("avro-decode", pflag.ContinueOnError)
	flagSet.StringVar(&f.configFile, "config", "", "path to YAML config file")
	flagSet.StringVar(&f.schemaPath, "schema-path", "", "root directory of .avsc files (overrides config)")
	flagSet.StringVarP(&f.schemaName, "schema", "s", "", "full name of the reader value schema")
	flagSet.StringVar(&f.writerSchema, "writer-schema", "", "full name of the writer schema, if it differs from the reader")
	flagSet.StringVar(&f.registryURL, "registry-url", "", "schema registry URL (overrides config)")
	flagSet.BoolVar(&f.framed, "framed", false, "input carries a registry frame header")
	flagSet.BoolVar(&f.asJSON, "json", false, "print the decoded datum as JSON")
	flagSet.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: avro-decode [flags] [file]\n\nReads from stdin when no file is given.\n\n")
		flagSet.PrintDefaults()
	}
	if err := flagSet.Parse(args); err != nil {
		return err
	}
	if f.schemaName == "" {
		return errors.New("--schema is required")
	}
	if flagSet.NArg() > 1 {
		return fmt.Errorf("unexpected argument: %s", flagSet.Arg(1))
	}

	cfg := config.Default()
	if f.configFile != "" {
		var err error
		if cfg, err = config.Load(f.configFile); err != nil {
			return err
		}
	}
	if f.schemaPath != "" {
		cfg.SchemaPath = f.schemaPath
	}
	if f.registryURL != "" {
		cfg.RegistryURL = f.registryURL
	}
	logger, err := cfg.Logger(os.Stderr)
	if err != nil {
		return err
	}
	store, err := cfg.SchemaStore(logger)
	if err != nil {
		return err
	}
	env := model.NewEnv(cfg.EnvOptions(store, logger)...)
	m, err := env.Model(model.WithValueSchemaName(f.schemaName))
	if err != nil {
		return err
	}

	var data []byte
	if flagSet.NArg() == 1 {
		data, err = os.ReadFile(flagSet.Arg(0))
	} else {
		data, err = io.ReadAll(stdin)
	}
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	var opts []model.DecodeOptionFunc
	if f.writerSchema != "" {
		writer, err := store.Find(f.writerSchema)
		if err != nil {
			return err
		}
		opts = append(opts, model.WithValueWriterSchema(writer))
	}
	if f.framed {
		if cfg.RegistryURL == "" {
			return errors.New("--framed requires a registry URL")
		}
		id, payload, err := messaging.Unframe(data)
		if err != nil {
			return err
		}
		codec := messaging.NewCodec(cfg.Registry(), messaging.WithLogger(logger))
		writer, err := codec.WriterSchema(context.Background(), id)
		if err != nil {
			return err
		}
		logger.Debug("using registry writer schema", "id", id)
		opts = append(opts, model.WithValueWriterSchema(writer))
		data = payload
	}

	if f.asJSON {
		datum, err := m.DecodeDatum(data, opts...)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(datum)
	}
	rec, err := m.AvroRawDecode(data, opts...)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(stdout, rec)
	return err
}
