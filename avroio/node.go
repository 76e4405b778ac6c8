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

package avroio

// MemberIndex is the resolved union branch of a node. The zero value means
// no branch was recorded.
type MemberIndex struct {
	Index int
	Set   bool
}

func Member(index int) MemberIndex {
	return MemberIndex{Index: index, Set: true}
}

// Node is an element of an encodable tree
type Node interface {
	Member() MemberIndex
	withMember(MemberIndex) Node
}

// Provider supplies the attributes of a record on demand. Deferred nodes
// refer to a provider instead of holding its attributes.
type Provider interface {
	FullName() string
	ValueAttributesForAvro() (*Attributes, error)
}

// Leaf holds a coerced primitive value: nil, bool, int32, int64, float32,
// float64, string or []byte
type Leaf struct {
	Value any
	Index MemberIndex
}

func (l *Leaf) Member() MemberIndex {
	return l.Index
}

func (l *Leaf) withMember(m MemberIndex) Node {
	ret := *l
	ret.Index = m
	return &ret
}

type Array struct {
	Items []Node
	Index MemberIndex
}

func (a *Array) Member() MemberIndex {
	return a.Index
}

func (a *Array) withMember(m MemberIndex) Node {
	ret := *a
	ret.Index = m
	return &ret
}

type Map struct {
	Entries map[string]Node
	Index   MemberIndex
}

func (m *Map) Member() MemberIndex {
	return m.Index
}

func (m *Map) withMember(idx MemberIndex) Node {
	ret := *m
	ret.Index = idx
	return &ret
}

// Field is a named entry of an Attributes node
type Field struct {
	Name string
	Node Node
}

// Attributes is the inlined encodable form of a record. Fields are kept in
// schema order.
type Attributes struct {
	// Full name of the record schema the attributes were produced for
	Name   string
	Fields []Field
	Index  MemberIndex
}

func (a *Attributes) Member() MemberIndex {
	return a.Index
}

func (a *Attributes) withMember(m MemberIndex) Node {
	ret := *a
	ret.Index = m
	return &ret
}

// Get returns the node of the named field
func (a *Attributes) Get(name string) (Node, bool) {
	for _, f := range a.Fields {
		if f.Name == name {
			return f.Node, true
		}
	}
	return nil, false
}

// Names returns the field names in order
func (a *Attributes) Names() []string {
	ret := make([]string, len(a.Fields))
	for i, f := range a.Fields {
		ret[i] = f.Name
	}
	return ret
}

// Deferred stands in for a record whose attributes are fetched from the
// provider when the tree is written. Only providers whose attributes never
// change may be deferred.
type Deferred struct {
	Provider Provider
	Index    MemberIndex
}

func (d *Deferred) Member() MemberIndex {
	return d.Index
}

func (d *Deferred) withMember(m MemberIndex) Node {
	ret := *d
	ret.Index = m
	return &ret
}

// WithMember returns a copy of n annotated with the union branch index. The
// input node is left untouched, so cached nodes can be annotated.
func WithMember(n Node, index int) Node {
	return n.withMember(Member(index))
}
