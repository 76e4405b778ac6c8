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

// Package avroio connects encodable trees to the Avro binary codec
// (github.com/linkedin/goavro/v2).
//
// # Encodable trees
//
// A tree is built from Leaf, Array, Map, Attributes and Deferred nodes. Each
// node may carry the index of the union branch it was resolved to. The
// writer uses that index directly and only falls back to matching the node
// shape against the union branches when no index was recorded.
//
// A Deferred node refers to a Provider (a record) instead of holding its
// attributes. The writer asks the provider for its attributes while
// encoding and reuses the converted form when the same provider appears
// more than once in a tree.
//
// # Reading
//
// Decode reads bytes with the writer schema and resolves the result against
// the reader schema following the Avro resolution rules: record fields by
// name (or reader alias), reader defaults for missing fields, numeric
// promotion, enum defaults and branch-wise union resolution. Resolved union
// values are returned as Union so that callers know the reader branch.
package avroio
