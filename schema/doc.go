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

// Package schema parses Avro schemas into an immutable tree of typed nodes.
//
// Named types (record, enum, fixed) are shared by pointer: every reference
// to a named type resolves to the node created where it was defined, so a
// record can refer to itself through a union. A Names table can be shared
// between parses to resolve types defined in other documents, and a
// Resolver can load unknown types on demand.
//
// The package can write schemas back out in three forms:
//   - String: everything the parser understood
//   - PhysicalJSON: the form handed to the binary codec, without logical
//     type annotations
//   - Canonical: full names and structure only, used for schema identity
package schema
