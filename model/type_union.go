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
	"strings"

	"github.com/blinklabs-io/avromodel/avroio"
)

type unionType struct {
	members []AttributeType
	env     *Env
}

func (t *unionType) Name() string {
	return "union[" + strings.Join(t.memberNames(), ", ") + "]"
}

func (t *unionType) memberNames() []string {
	ret := make([]string, len(t.members))
	for i, m := range t.members {
		ret[i] = m.Name()
	}
	return ret
}

// Coerce returns the input unchanged when a member already holds it
// canonically. Otherwise the first member in declaration order that can
// coerce the input wins.
func (t *unionType) Coerce(input any) (any, error) {
	if input == nil {
		return nil, nil
	}
	for _, m := range t.members {
		// Custom types without a value predicate can only be matched by
		// attempting their conversion
		if isLooseCustom(m) {
			continue
		}
		if m.Matched(input) {
			return input, nil
		}
	}
	for i, m := range t.members {
		v, err := m.Coerce(input)
		if err != nil || v == nil {
			continue
		}
		t.warnAmbiguous(i, input)
		return v, nil
	}
	return nil, CoercionError{Value: input, Type: t.Name()}
}

// warnAmbiguous logs when a map input could build more than one record
// member of the union
func (t *unionType) warnAmbiguous(chosen int, input any) {
	if _, ok := input.(map[string]any); !ok {
		return
	}
	if _, ok := t.members[chosen].(*recordType); !ok {
		return
	}
	for _, m := range t.members[chosen+1:] {
		if _, ok := m.(*recordType); !ok {
			continue
		}
		if v, err := m.Coerce(input); err == nil && v != nil {
			t.env.logger.Warn(
				"ambiguous union value, using first matching member",
				"union", t.Name(),
				"member", t.members[chosen].Name(),
				"alternative", m.Name(),
			)
			return
		}
	}
}

func (t *unionType) Matched(value any) bool {
	return t.memberIndex(value) >= 0
}

func (t *unionType) memberIndex(value any) int {
	for i, m := range t.members {
		if m.Matched(value) {
			return i
		}
	}
	return -1
}

// Serialize resolves the member holding the value and, when enabled,
// annotates the member node with its branch index
func (t *unionType) Serialize(value any, strict bool) (avroio.Node, error) {
	idx := t.memberIndex(value)
	if idx < 0 {
		return nil, UnionResolutionError{Value: value, Candidates: t.memberNames()}
	}
	node, err := t.members[idx].Serialize(value, strict)
	if err != nil {
		return nil, err
	}
	if t.env.unionMemberIndex {
		return avroio.WithMember(node, idx), nil
	}
	return node, nil
}

func (t *unionType) Deserialize(raw any) (any, error) {
	u, ok := raw.(avroio.Union)
	if !ok || u.Index < 0 || u.Index >= len(t.members) {
		return nil, CoercionError{Value: raw, Type: t.Name()}
	}
	return t.members[u.Index].Deserialize(u.Value)
}

func (t *unionType) ReferencedModels() []*Model {
	var ret []*Model
	for _, m := range t.members {
		ret = append(ret, m.ReferencedModels()...)
	}
	return ret
}
