// Copyright the corestatic authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package pointer

// Result is the frozen output of Solve: points-to sets, the on-the-fly call
// graph, and a small side-table of arbitrary keyed payloads external
// consumers (the taint solver's TaintManager) can stash without this package
// growing a dependency on them (spec.md §6's "arbitrary keyed payloads").
type Result struct {
	Entry CSMethod

	pt        map[Pointer]PointsToSet
	order     []CSMethod
	edges     []CallEdge
	calleesOf map[CSMethod][]CSMethod

	payloads map[string]any
}

func (s *Solver) buildResult(entry CSMethod) *Result {
	return &Result{
		Entry:     entry,
		pt:        s.pt,
		order:     s.order,
		edges:     s.edges,
		calleesOf: s.calleesOf,
		payloads:  map[string]any{},
	}
}

// PointsTo returns p's resolved points-to set (the objects in pt(p) at
// termination); nil if p was never assigned any.
func (r *Result) PointsTo(p Pointer) []*Obj {
	set := r.pt[p]
	if len(set) == 0 {
		return nil
	}
	out := make([]*Obj, 0, len(set))
	for o := range set {
		out = append(out, o)
	}
	return out
}

// PointsToVar is PointsTo for a contextualized local variable.
func (r *Result) PointsToVar(v CSVar) []*Obj { return r.PointsTo(Var(v.Ctx, v.V)) }

// Vars returns every contextualized local variable with a non-empty
// points-to set, in unspecified order. Used by downstream solvers (the
// inter-procedural constant propagator's alias map, spec.md §4.7) to
// enumerate the variable side of the alias relation without reaching into
// the solver's internal Pointer map.
func (r *Result) Vars() []CSVar {
	out := make([]CSVar, 0, len(r.pt))
	for p := range r.pt {
		if v, ok := p.AsVar(); ok {
			out = append(out, v)
		}
	}
	return out
}

// ReachableMethods returns every CSMethod found reachable, in discovery
// order.
func (r *Result) ReachableMethods() []CSMethod { return r.order }

// CallGraphEdges returns every resolved call-graph edge, in discovery order.
func (r *Result) CallGraphEdges() []CallEdge { return r.edges }

// CalleesOf returns cm's resolved callees, deduplicated, in discovery order.
func (r *Result) CalleesOf(cm CSMethod) []CSMethod { return r.calleesOf[cm] }

// Contains reports whether cm was found reachable.
func (r *Result) Contains(cm CSMethod) bool {
	for _, m := range r.order {
		if m == cm {
			return true
		}
	}
	return false
}

// SetPayload stashes an arbitrary value under key for a downstream consumer
// (e.g. the taint manager's confirmed flows) to retrieve later.
func (r *Result) SetPayload(key string, v any) {
	if r.payloads == nil {
		r.payloads = map[string]any{}
	}
	r.payloads[key] = v
}

// Payload retrieves a value stashed by SetPayload.
func (r *Result) Payload(key string) (any, bool) {
	v, ok := r.payloads[key]
	return v, ok
}
