package fixtures

import (
	"fmt"

	"github.com/graphplace/anneal/place"
)

// GridConfig parameterises HierarchicalGrid. It mirrors the reference
// implementation's three-level POETS-box hardware hierarchy (board, then
// mailbox, then core), each level itself a 2-D grid, with distinct edge
// weights per level: intra-mailbox (core-to-core) is cheap, intra-board
// (mailbox-to-mailbox) is moderate, and inter-board is expensive.
type GridConfig struct {
	GridSide int // application grid is GridSide x GridSide

	BoardOuter, BoardInner int // boards arranged in a BoardOuter x BoardInner grid
	MboxOuter, MboxInner   int // mailboxes per board, in a MboxOuter x MboxInner grid
	CoreOuter, CoreInner   int // cores per mailbox, in a CoreOuter x CoreInner grid

	InterCoreWeight  float64
	InterMboxWeight  float64
	InterBoardWeight float64

	PMax int
}

// DefaultGridConfig returns the reference implementation's illustrative
// scale, cut down for practicality: a small POETS-box-shaped hardware
// hierarchy with the same per-level weights (0.1 intra-mailbox, 100
// intra-board, 800 inter-board) as poets_box_2d_grid_big.cpp.
func DefaultGridConfig() GridConfig {
	return GridConfig{
		GridSide:         12,
		BoardOuter:       2,
		BoardInner:       1,
		MboxOuter:        2,
		MboxInner:        2,
		CoreOuter:        2,
		CoreInner:        2,
		InterCoreWeight:  0.1,
		InterMboxWeight:  100,
		InterBoardWeight: 800,
		PMax:             4,
	}
}

// HierarchicalGrid builds a 2-D grid application graph over a hierarchical
// board/mailbox/core hardware graph, per cfg.
func HierarchicalGrid(cfg GridConfig, seed int64) *place.Problem {
	p := place.New("poets_box_2d_grid", cfg.PMax, seed)
	buildGridApp(p, cfg.GridSide)
	nH := buildHierarchicalHw(p, cfg)
	p.InitEdgeCache(nH)
	p.PopulateEdgeCache()
	return p
}

func buildGridApp(p *place.Problem, side int) {
	indexOf := make([][]int, side)
	for i := range indexOf {
		indexOf[i] = make([]int, side)
	}
	width := len(fmt.Sprintf("%d", side))
	for i := 0; i < side; i++ {
		for j := 0; j < side; j++ {
			indexOf[i][j] = p.AddAppNode(fmt.Sprintf("A_%0*d_%0*d", width, i, width, j))
		}
	}
	for i := 0; i < side; i++ {
		for j := 0; j < side; j++ {
			if i+1 < side {
				p.LinkAppNodes(indexOf[i][j], indexOf[i+1][j])
			}
			if j+1 < side {
				p.LinkAppNodes(indexOf[i][j], indexOf[i][j+1])
			}
		}
	}
}

// buildHierarchicalHw returns the number of hardware nodes created.
func buildHierarchicalHw(p *place.Problem, cfg GridConfig) int {
	type key struct{ bo, bi, mo, mi, co, ci int }
	index := make(map[key]int)

	for bo := 0; bo < cfg.BoardOuter; bo++ {
		for bi := 0; bi < cfg.BoardInner; bi++ {
			for mo := 0; mo < cfg.MboxOuter; mo++ {
				for mi := 0; mi < cfg.MboxInner; mi++ {
					for co := 0; co < cfg.CoreOuter; co++ {
						for ci := 0; ci < cfg.CoreInner; ci++ {
							posHoriz := float64((bo*cfg.MboxOuter+mo)*cfg.CoreOuter + co)
							posVerti := float64((bi*cfg.MboxInner+mi)*cfg.CoreInner + ci)
							name := fmt.Sprintf("H_%d_%d_%d_%d_%d_%d", bo, bi, mo, mi, co, ci)
							idx := p.AddHwNode(name)
							p.H[idx].PosHoriz = posHoriz
							p.H[idx].PosVerti = posVerti
							p.H[idx].HasPos = true
							index[key{bo, bi, mo, mi, co, ci}] = idx
						}
					}
				}
			}
		}
	}

	// Intra-mailbox: connect cores within each mailbox in a 2-D grid.
	for bo := 0; bo < cfg.BoardOuter; bo++ {
		for bi := 0; bi < cfg.BoardInner; bi++ {
			for mo := 0; mo < cfg.MboxOuter; mo++ {
				for mi := 0; mi < cfg.MboxInner; mi++ {
					for co := 0; co < cfg.CoreOuter; co++ {
						for ci := 0; ci < cfg.CoreInner; ci++ {
							here := index[key{bo, bi, mo, mi, co, ci}]
							if co+1 < cfg.CoreOuter {
								p.AddHwEdge(here, index[key{bo, bi, mo, mi, co + 1, ci}], cfg.InterCoreWeight)
							}
							if ci+1 < cfg.CoreInner {
								p.AddHwEdge(here, index[key{bo, bi, mo, mi, co, ci + 1}], cfg.InterCoreWeight)
							}
						}
					}
				}
			}
		}
	}

	// Intra-board: connect mailboxes within each board via one representative
	// core each (the (0,0) core), forming the same grid topology one level up.
	for bo := 0; bo < cfg.BoardOuter; bo++ {
		for bi := 0; bi < cfg.BoardInner; bi++ {
			for mo := 0; mo < cfg.MboxOuter; mo++ {
				for mi := 0; mi < cfg.MboxInner; mi++ {
					here := index[key{bo, bi, mo, mi, 0, 0}]
					if mo+1 < cfg.MboxOuter {
						p.AddHwEdge(here, index[key{bo, bi, mo + 1, mi, 0, 0}], cfg.InterMboxWeight)
					}
					if mi+1 < cfg.MboxInner {
						p.AddHwEdge(here, index[key{bo, bi, mo, mi + 1, 0, 0}], cfg.InterMboxWeight)
					}
				}
			}
		}
	}

	// Inter-board: connect boards via one representative core each.
	for bo := 0; bo < cfg.BoardOuter; bo++ {
		for bi := 0; bi < cfg.BoardInner; bi++ {
			here := index[key{bo, bi, 0, 0, 0, 0}]
			if bo+1 < cfg.BoardOuter {
				p.AddHwEdge(here, index[key{bo + 1, bi, 0, 0, 0, 0}], cfg.InterBoardWeight)
			}
			if bi+1 < cfg.BoardInner {
				p.AddHwEdge(here, index[key{bo, bi + 1, 0, 0, 0, 0}], cfg.InterBoardWeight)
			}
		}
	}

	return len(index)
}
