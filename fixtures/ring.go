// Package fixtures builds illustrative example problems: a ring application
// graph over a ring hardware graph, and a 2-D grid of application nodes over
// a hierarchical mailbox/board hardware topology. These mirror the
// reference implementation's problem_definition_examples, restored here as
// first-class constructors since problem ingestion is in-scope for this
// module.
package fixtures

import (
	"fmt"

	"github.com/graphplace/anneal/place"
)

// ring8Positions lays out an 8-node hardware ring on a simple grid, matching
// the reference implementation's hardcoded layout for the 8-hardware-node
// case.
var ring8Positions = [8][2]float64{
	{0, 0}, {0, 1}, {0, 2}, {1, 2}, {2, 2}, {2, 1}, {2, 0}, {1, 0},
}

// Ring builds a problem with nA application nodes arranged in a bidirected
// cycle (each node linked to its immediate forward and backward neighbour)
// placed over nH hardware nodes, also arranged in a cycle with the given
// edge weight. When nH == 8, hardware nodes are additionally given the
// reference implementation's illustrative 2-D layout.
func Ring(nA, nH, pMax int, weight float64, seed int64) *place.Problem {
	p := place.New("ring_problem", pMax, seed)

	for i := 0; i < nA; i++ {
		p.AddAppNode(fmt.Sprintf("appNode%d", i))
	}
	for i := 0; i < nA; i++ {
		fwd := (i + 1) % nA
		p.LinkAppNodes(i, fwd)
	}

	for i := 0; i < nH; i++ {
		idx := p.AddHwNode(fmt.Sprintf("hwNode%d", i))
		if nH == 8 {
			p.H[idx].PosHoriz = ring8Positions[i][0]
			p.H[idx].PosVerti = ring8Positions[i][1]
			p.H[idx].HasPos = true
		}
	}
	for i := 0; i < nH; i++ {
		fwd := (i + 1) % nH
		p.AddHwEdge(i, fwd, weight)
	}

	p.InitEdgeCache(nH)
	p.PopulateEdgeCache()
	return p
}
