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
	"github.com/nju-sa/corestatic/dataflow"
	"github.com/nju-sa/corestatic/icfg"
	"github.com/nju-sa/corestatic/ir"
	"github.com/nju-sa/corestatic/lattice"
)

// Result holds the per-ICFG-node in/out facts Solve produced.
type Result struct {
	in, out map[icfg.Node]*dataflow.CPFact
	graph   *icfg.ICFG
}

// In returns the fact flowing into n.
func (r *Result) In(n icfg.Node) *dataflow.CPFact { return r.in[n] }

// Out returns the fact flowing out of n.
func (r *Result) Out(n icfg.Node) *dataflow.CPFact { return r.out[n] }

// ValueOut returns v's lattice value in n's out-fact.
func (r *Result) ValueOut(n icfg.Node, v ir.Var) lattice.Value { return r.out[n].Get(v) }

// ValueIn returns v's lattice value in n's in-fact.
func (r *Result) ValueIn(n icfg.Node, v ir.Var) lattice.Value { return r.in[n].Get(v) }
