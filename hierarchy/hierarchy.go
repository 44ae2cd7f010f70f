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

// Package hierarchy states the class-hierarchy contract consumed by the CHA
// and points-to builders (spec.md §6). The loader that populates a
// ClassHierarchy from bytecode or source is an external collaborator; this
// module only depends on the interface below.
package hierarchy

import "github.com/nju-sa/corestatic/ir"

// Method is a declared method, resolved by subsignature lookup.
type Method interface {
	Subsignature() string
	DeclaringClass() Class
	IsAbstract() bool
	IR() *ir.Function
}

// Class is an opaque class or interface identity. Implementations must be
// comparable.
type Class interface {
	Name() string
	IsInterface() bool
	IsAbstract() bool
}

// ClassHierarchy is the oracle consumed by the CHA builder (spec.md §4.4) and
// the points-to solver's dispatch (spec.md §4.5/§4.6).
type ClassHierarchy interface {
	GetDirectSubclassesOf(c Class) []Class
	GetDirectSubinterfacesOf(c Class) []Class
	GetDirectImplementorsOf(c Class) []Class
	// GetDeclaredMethod returns the method declared directly by c with the
	// given subsignature, or nil if c declares no such method.
	GetDeclaredMethod(c Class, subsig string) Method
	// GetSuperClass returns c's superclass, or nil at the root of the
	// hierarchy (Class comparisons against nil use the Go nil interface).
	GetSuperClass(c Class) Class
	IsAbstract(c Class) bool
	IsInterface(c Class) bool
}

// Dispatch implements spec.md §4.4's `dispatch(T, subsig)`: the first
// non-abstract method with the given subsignature found by walking up T's
// superclass chain, or nil.
func Dispatch(h ClassHierarchy, t Class, subsig string) Method {
	for t != nil {
		if m := h.GetDeclaredMethod(t, subsig); m != nil && !m.IsAbstract() {
			return m
		}
		t = h.GetSuperClass(t)
	}
	return nil
}
