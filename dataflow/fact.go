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

// Package dataflow implements the fact map and the generic CFG worklist
// driver shared by intra- and inter-procedural constant propagation
// (spec.md §4.2-§4.3).
package dataflow

import (
	"github.com/nju-sa/corestatic/ir"
	"github.com/nju-sa/corestatic/lattice"
)

// CPFact is a finite mapping from variables to lattice values, defaulting
// to UNDEF for variables not present (spec.md §3 "CPFact").
type CPFact struct {
	m map[ir.Var]lattice.Value
}

// NewCPFact returns an empty fact map.
func NewCPFact() *CPFact {
	return &CPFact{m: make(map[ir.Var]lattice.Value)}
}

// Get returns the value bound to v, or UNDEF if absent. Implements
// lattice.Getter.
func (f *CPFact) Get(v ir.Var) lattice.Value {
	if val, ok := f.m[v]; ok {
		return val
	}
	return lattice.UndefVal
}

// Update binds v to x.
func (f *CPFact) Update(v ir.Var, x lattice.Value) {
	f.m[v] = x
}

// Remove unbinds v (equivalent to binding it to UNDEF, but keeps the map
// small).
func (f *CPFact) Remove(v ir.Var) {
	delete(f.m, v)
}

// Copy returns an independent deep copy of f.
func (f *CPFact) Copy() *CPFact {
	cp := make(map[ir.Var]lattice.Value, len(f.m))
	for k, v := range f.m {
		cp[k] = v
	}
	return &CPFact{m: cp}
}

// CopyFrom replaces f's bindings with other's, returning whether f changed.
func (f *CPFact) CopyFrom(other *CPFact) bool {
	if f.Equal(other) {
		return false
	}
	cp := make(map[ir.Var]lattice.Value, len(other.m))
	for k, v := range other.m {
		cp[k] = v
	}
	f.m = cp
	return true
}

// Equal reports structural equality between two fact maps (absent bindings
// and explicit UNDEF bindings are equivalent).
func (f *CPFact) Equal(other *CPFact) bool {
	for k, v := range f.m {
		if !v.Equal(other.Get(k)) {
			return false
		}
	}
	for k, v := range other.m {
		if !v.Equal(f.Get(k)) {
			return false
		}
	}
	return true
}

// ForEach calls fn for every variable bound in f (in unspecified order).
func (f *CPFact) ForEach(fn func(v ir.Var, val lattice.Value)) {
	for k, v := range f.m {
		fn(k, v)
	}
}

// MeetInto implements spec.md §4.2's `meetInto(src, tgt)`: for each v in
// src, tgt[v] := meet(src[v], tgt[v]).
func MeetInto(src, tgt *CPFact) {
	src.ForEach(func(v ir.Var, val lattice.Value) {
		tgt.Update(v, lattice.Meet(val, tgt.Get(v)))
	})
}
