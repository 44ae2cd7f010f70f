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

// Package testutil is an in-memory hierarchy.ClassHierarchy fixture for unit
// tests, mirroring ir/testutil's role for the ir package.
package testutil

import (
	"github.com/nju-sa/corestatic/hierarchy"
	"github.com/nju-sa/corestatic/ir"
)

// Class is a minimal comparable hierarchy.Class.
type Class struct {
	name        string
	isInterface bool
	isAbstract  bool
	super       *Class
}

func (c *Class) Name() string      { return c.name }
func (c *Class) IsInterface() bool { return c.isInterface }
func (c *Class) IsAbstract() bool  { return c.isAbstract }

// Kind and String let a *Class double as the ir.Type of its own allocation
// sites, so the points-to package's Obj.declClass() (which type-asserts a
// New statement's ir.Type back to hierarchy.Class to dispatch instance
// calls) has something to assert against without this package depending on
// the points-to package.
func (c *Class) Kind() ir.Kind  { return ir.Other }
func (c *Class) String() string { return c.name }

// Method is a minimal comparable hierarchy.Method.
type Method struct {
	subsig   string
	class    *Class
	abstract bool
	ir       *ir.Function
}

func (m *Method) Subsignature() string           { return m.subsig }
func (m *Method) DeclaringClass() hierarchy.Class { return m.class }
func (m *Method) IsAbstract() bool               { return m.abstract }
func (m *Method) IR() *ir.Function               { return m.ir }

// Hierarchy is an in-memory hierarchy.ClassHierarchy.
type Hierarchy struct {
	classes       map[string]*Class
	subclasses    map[*Class][]*Class
	subinterfaces map[*Class][]*Class
	implementors  map[*Class][]*Class
	methods       map[*Class]map[string]*Method
}

func NewHierarchy() *Hierarchy {
	return &Hierarchy{
		classes:       map[string]*Class{},
		subclasses:    map[*Class][]*Class{},
		subinterfaces: map[*Class][]*Class{},
		implementors:  map[*Class][]*Class{},
		methods:       map[*Class]map[string]*Method{},
	}
}

// Class declares (or returns the existing) class/interface named name.
func (h *Hierarchy) Class(name string, isInterface, isAbstract bool) *Class {
	if c, ok := h.classes[name]; ok {
		return c
	}
	c := &Class{name: name, isInterface: isInterface, isAbstract: isAbstract}
	h.classes[name] = c
	return c
}

// Extend records that sub's direct superclass is super.
func (h *Hierarchy) Extend(sub, super *Class) {
	sub.super = super
	h.subclasses[super] = append(h.subclasses[super], sub)
}

// Implement records that impl directly implements iface.
func (h *Hierarchy) Implement(impl, iface *Class) {
	h.implementors[iface] = append(h.implementors[iface], impl)
}

// ExtendInterface records that sub directly extends super interface.
func (h *Hierarchy) ExtendInterface(sub, super *Class) {
	h.subinterfaces[super] = append(h.subinterfaces[super], sub)
}

// Declare adds a method with the given subsignature to c, with fn as its IR
// (nil for an abstract method).
func (h *Hierarchy) Declare(c *Class, subsig string, abstract bool, fn *ir.Function) *Method {
	m := &Method{subsig: subsig, class: c, abstract: abstract, ir: fn}
	if h.methods[c] == nil {
		h.methods[c] = map[string]*Method{}
	}
	h.methods[c][subsig] = m
	return m
}

func (h *Hierarchy) GetDirectSubclassesOf(c hierarchy.Class) []hierarchy.Class {
	return widen(h.subclasses[c.(*Class)])
}

func (h *Hierarchy) GetDirectSubinterfacesOf(c hierarchy.Class) []hierarchy.Class {
	return widen(h.subinterfaces[c.(*Class)])
}

func (h *Hierarchy) GetDirectImplementorsOf(c hierarchy.Class) []hierarchy.Class {
	return widen(h.implementors[c.(*Class)])
}

func (h *Hierarchy) GetDeclaredMethod(c hierarchy.Class, subsig string) hierarchy.Method {
	m, ok := h.methods[c.(*Class)][subsig]
	if !ok {
		return nil
	}
	return m
}

func (h *Hierarchy) GetSuperClass(c hierarchy.Class) hierarchy.Class {
	super := c.(*Class).super
	if super == nil {
		return nil
	}
	return super
}

func (h *Hierarchy) IsAbstract(c hierarchy.Class) bool  { return c.(*Class).isAbstract }
func (h *Hierarchy) IsInterface(c hierarchy.Class) bool { return c.(*Class).isInterface }

func widen(cs []*Class) []hierarchy.Class {
	out := make([]hierarchy.Class, len(cs))
	for i, c := range cs {
		out[i] = c
	}
	return out
}
