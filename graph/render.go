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

package graph

import (
	"bytes"
	"fmt"

	"github.com/goccy/go-graphviz"
)

// RenderDOT writes a DOT-format rendering of d's nodes and edges. Used for
// debugging dumps of the call graph, not on any analysis hot path.
func RenderDOT(d *Directed) string {
	var b bytes.Buffer
	b.WriteString("digraph G {\n")
	for _, id := range d.adj.Nodes() {
		b.WriteString(fmt.Sprintf("  %d [label=%q];\n", id, d.label(id)))
	}
	for _, id := range d.adj.Nodes() {
		for _, s := range d.adj.Succs(id) {
			b.WriteString(fmt.Sprintf("  %d -> %d;\n", id, s))
		}
	}
	b.WriteString("}\n")
	return b.String()
}

// RenderPNG renders d to PNG bytes via Graphviz's dot layout engine.
func RenderPNG(d *Directed) ([]byte, error) {
	gv := graphviz.New()
	defer gv.Close()
	g, err := graphviz.ParseBytes([]byte(RenderDOT(d)))
	if err != nil {
		return nil, fmt.Errorf("parsing rendered DOT: %w", err)
	}
	defer g.Close()
	var buf bytes.Buffer
	if err := gv.Render(g, graphviz.PNG, &buf); err != nil {
		return nil, fmt.Errorf("rendering graph: %w", err)
	}
	return buf.Bytes(), nil
}
