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

// Package cfg builds the per-method control-flow graph (spec.md §3 "CFG")
// from an ir.Function's statements in program order, with distinguished
// entry and exit nodes.
package cfg

import "github.com/nju-sa/corestatic/ir"

// Node identifies a CFG node: a statement index, or one of the two
// pseudo-nodes Entry/Exit.
type Node int

// Entry and Exit are negative so they never collide with a statement's
// zero-based Index().
const (
	Entry Node = -1
	Exit  Node = -2
)

// CFG is a method's control-flow graph.
type CFG struct {
	IR    *ir.Function
	succs map[Node][]Node
	preds map[Node][]Node
	order []Node
}

// Build constructs the CFG of fn by reading branch targets off If/Switch
// statements and falling through otherwise.
func Build(fn *ir.Function) *CFG {
	c := &CFG{
		IR:    fn,
		succs: make(map[Node][]Node),
		preds: make(map[Node][]Node),
	}
	n := len(fn.Stmts)
	add := func(from, to Node) {
		c.succs[from] = append(c.succs[from], to)
		c.preds[to] = append(c.preds[to], from)
	}
	c.order = append(c.order, Entry)
	if n == 0 {
		add(Entry, Exit)
		c.order = append(c.order, Exit)
		return c
	}
	add(Entry, Node(0))
	for i, s := range fn.Stmts {
		c.order = append(c.order, Node(i))
		fallthroughTarget := Exit
		if i+1 < n {
			fallthroughTarget = Node(i + 1)
		}
		switch st := s.(type) {
		case *ir.Goto:
			add(Node(i), targetOrFallthrough(st.Target, fallthroughTarget, n))
		case *ir.If:
			add(Node(i), targetOrFallthrough(st.TrueTarget, fallthroughTarget, n))
			add(Node(i), targetOrFallthrough(st.FalseTarget, fallthroughTarget, n))
		case *ir.Switch:
			for _, cs := range st.Cases {
				add(Node(i), targetOrFallthrough(cs.Target, fallthroughTarget, n))
			}
			if st.DefaultTarget < 0 {
				add(Node(i), fallthroughTarget)
			} else {
				add(Node(i), targetOrFallthrough(st.DefaultTarget, fallthroughTarget, n))
			}
		default:
			add(Node(i), fallthroughTarget)
		}
	}
	c.order = append(c.order, Exit)
	return c
}

func targetOrFallthrough(target int, fallthroughTarget Node, n int) Node {
	if target < 0 || target >= n {
		return Exit
	}
	return Node(target)
}

// Entry returns the CFG's distinguished entry pseudo-node.
func (c *CFG) Entry() Node { return Entry }

// Exit returns the CFG's distinguished exit pseudo-node.
func (c *CFG) Exit() Node { return Exit }

// Succs returns n's successors in edge-insertion order.
func (c *CFG) Succs(n Node) []Node { return c.succs[n] }

// Preds returns n's predecessors in edge-insertion order.
func (c *CFG) Preds(n Node) []Node { return c.preds[n] }

// Nodes returns every node (Entry, then statements in program order, then
// Exit).
func (c *CFG) Nodes() []Node { return c.order }

// Stmt returns the statement at node n, or nil for Entry/Exit.
func (c *CFG) Stmt(n Node) ir.Stmt {
	if n < 0 || int(n) >= len(c.IR.Stmts) {
		return nil
	}
	return c.IR.Stmts[n]
}

// Params returns the owning method's parameters.
func (c *CFG) Params() []ir.Var { return c.IR.Params }
