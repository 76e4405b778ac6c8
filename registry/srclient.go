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

	"github.com/riferrei/srclient"
)

// SchemaRegistryClient is the part of the srclient API used by SRClient
type SchemaRegistryClient interface {
	CreateSchema(
		subject string,
		schema string,
		schemaType srclient.SchemaType,
		references ...srclient.Reference,
	) (*srclient.Schema, error)
	GetSchema(schemaID int) (*srclient.Schema, error)
}

// SRClient is a Registry backed by a Confluent schema registry. Wrap it in
// Cached to avoid a round trip per message.
type SRClient struct {
	client SchemaRegistryClient
}

// NewSRClient returns a Registry for the schema registry at url
func NewSRClient(url string) *SRClient {
	return &SRClient{
		client: srclient.CreateSchemaRegistryClient(url),
	}
}

// NewSRClientFromClient wraps an existing client, such as the srclient mock
func NewSRClientFromClient(client SchemaRegistryClient) *SRClient {
	return &SRClient{
		client: client,
	}
}

// Register creates or looks up the Avro schema under subject. The client
// calls are not cancellable, so ctx is only checked beforehand.
func (s *SRClient) Register(ctx context.Context, subject string, schemaJSON string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	ret, err := s.client.CreateSchema(subject, schemaJSON, srclient.Avro)
	if err != nil {
		return 0, err
	}
	return ret.ID(), nil
}

func (s *SRClient) SchemaByID(ctx context.Context, id int) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	ret, err := s.client.GetSchema(id)
	if err != nil {
		return "", err
	}
	return ret.Schema(), nil
}
