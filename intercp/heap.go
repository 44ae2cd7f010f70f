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

package intercp

import (
	"github.com/nju-sa/corestatic/icfg"
	"github.com/nju-sa/corestatic/ir"
	"github.com/nju-sa/corestatic/lattice"
	"github.com/nju-sa/corestatic/pointer"
)

// instanceKey is a heap-value-map key for an instance field (spec.md §4.7
// "Instance fields: key = (obj, FieldRef)").
type instanceKey struct {
	obj   *pointer.Obj
	field ir.FieldRef
}

// heap is the global heap-value map of spec.md §4.7, plus the precomputed
// indices (static-load index and alias-based dependent-load index) used to
// find the statements that must be re-enqueued when a key's value changes.
// Confined to this package, never exposed as module-wide state (spec.md §9
// "Global heap-value map").
type heap struct {
	static   map[ir.FieldRef]lattice.Value
	instance map[instanceKey]lattice.Value
	// array is keyed by object first, then by index value, mirroring
	// spec.md §4.7's "(obj, indexValue)" key with indexValue ∈
	// {CONST(i), NAC} — the obj-first layout lets a NAC load meet over
	// every stored index for that object without a full-map scan.
	array map[*pointer.Obj]map[lattice.Value]lattice.Value

	staticLoads   map[ir.FieldRef][]icfg.Node
	instanceLoads map[instanceKey][]icfg.Node
	arrayLoads    map[*pointer.Obj][]icfg.Node

	aliasMap map[*pointer.Obj][]pointer.CSVar
}

func newHeap() *heap {
	return &heap{
		static:        map[ir.FieldRef]lattice.Value{},
		instance:      map[instanceKey]lattice.Value{},
		array:         map[*pointer.Obj]map[lattice.Value]lattice.Value{},
		staticLoads:   map[ir.FieldRef][]icfg.Node{},
		instanceLoads: map[instanceKey][]icfg.Node{},
		arrayLoads:    map[*pointer.Obj][]icfg.Node{},
		aliasMap:      map[*pointer.Obj][]pointer.CSVar{},
	}
}

// build populates the alias map and the dependent-load indices once, up
// front, by walking every ICFG node and every aliased variable — following
// the original's single eager initialize() pass rather than maintaining
// either structure incrementally (see SPEC_FULL.md's "Supplemented features").
func (h *heap) build(g *icfg.ICFG, res *pointer.Result) {
	for _, v := range res.Vars() {
		for _, o := range res.PointsToVar(v) {
			h.aliasMap[o] = append(h.aliasMap[o], v)
		}
	}
	for _, n := range g.Nodes() {
		switch st := g.Stmt(n).(type) {
		case *ir.LoadField:
			if st.IsStatic() {
				h.staticLoads[st.Field] = append(h.staticLoads[st.Field], n)
				continue
			}
			for _, obj := range res.PointsToVar(pointer.CSVar{Ctx: n.CM.Ctx, V: st.Base}) {
				key := instanceKey{obj, st.Field}
				h.instanceLoads[key] = append(h.instanceLoads[key], n)
			}
		case *ir.LoadArray:
			for _, obj := range res.PointsToVar(pointer.CSVar{Ctx: n.CM.Ctx, V: st.Base}) {
				h.arrayLoads[obj] = append(h.arrayLoads[obj], n)
			}
		}
	}
}

// storeStatic merges v into the static field's slot, returning the
// dependent load nodes to re-enqueue if the slot's value changed.
func (h *heap) storeStatic(f ir.FieldRef, v lattice.Value) []icfg.Node {
	old := h.static[f]
	nv := lattice.Meet(old, v)
	if nv.Equal(old) {
		return nil
	}
	h.static[f] = nv
	return h.staticLoads[f]
}

// storeInstance merges v into obj.f's slot.
func (h *heap) storeInstance(obj *pointer.Obj, f ir.FieldRef, v lattice.Value) []icfg.Node {
	key := instanceKey{obj, f}
	old := h.instance[key]
	nv := lattice.Meet(old, v)
	if nv.Equal(old) {
		return nil
	}
	h.instance[key] = nv
	return h.instanceLoads[key]
}

// storeArray merges v into obj's cell at idx, which must not be UNDEF
// (spec.md §4.7's array-cell key is never UNDEF-indexed).
func (h *heap) storeArray(obj *pointer.Obj, idx, v lattice.Value) []icfg.Node {
	m := h.array[obj]
	if m == nil {
		m = map[lattice.Value]lattice.Value{}
		h.array[obj] = m
	}
	old := m[idx]
	nv := lattice.Meet(old, v)
	if nv.Equal(old) {
		return nil
	}
	m[idx] = nv
	return h.arrayLoads[obj]
}

// loadStatic reads a static field's current slot (UNDEF if never stored).
func (h *heap) loadStatic(f ir.FieldRef) lattice.Value { return h.static[f] }

// loadInstance returns meet(obj.f) over every obj the base variable may
// point to.
func (h *heap) loadInstance(objs []*pointer.Obj, f ir.FieldRef) lattice.Value {
	acc := lattice.UndefVal
	for _, obj := range objs {
		acc = lattice.Meet(acc, h.instance[instanceKey{obj, f}])
	}
	return acc
}

// loadArray implements spec.md §4.7's array load/store matching rule: a
// load at index idx sees every stored index compatible with idx (equal
// constants, or either side NAC), including the conservative (obj, NAC)
// bucket. idx == UNDEF (index not yet known) contributes nothing.
func (h *heap) loadArray(objs []*pointer.Obj, idx lattice.Value) lattice.Value {
	if idx.IsUndef() {
		return lattice.UndefVal
	}
	acc := lattice.UndefVal
	for _, obj := range objs {
		cells := h.array[obj]
		if cells == nil {
			continue
		}
		if idx.IsNAC() {
			for _, v := range cells {
				acc = lattice.Meet(acc, v)
			}
			continue
		}
		acc = lattice.Meet(acc, cells[idx])
		acc = lattice.Meet(acc, cells[lattice.NACVal])
	}
	return acc
}
