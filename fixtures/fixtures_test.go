package fixtures

import "testing"

func TestRingBuildsReciprocalGraphs(t *testing.T) {
	p := Ring(8, 4, 3, 2, 1)
	if len(p.A) != 8 || len(p.H) != 4 {
		t.Fatalf("got %d application nodes, %d hardware nodes, want 8, 4", len(p.A), len(p.H))
	}
	for i, a := range p.A {
		if len(a.Neighbours) != 2 {
			t.Fatalf("application node %d has %d neighbours, want 2 (a ring)", i, len(a.Neighbours))
		}
	}
	if p.D == nil {
		t.Fatal("distance cache was not populated")
	}
	for i := range p.H {
		if p.D[i][i] != 0 {
			t.Fatalf("D[%d][%d] = %v, want 0", i, i, p.D[i][i])
		}
	}
}

func TestRingEightNodesHaveIllustrativePositions(t *testing.T) {
	p := Ring(4, 8, 2, 1, 1)
	for i, h := range p.H {
		if !h.HasPos {
			t.Fatalf("hardware node %d missing the illustrative layout position", i)
		}
	}
}

func TestRingNonEightNodesHaveNoPositions(t *testing.T) {
	p := Ring(4, 6, 2, 1, 1)
	for i, h := range p.H {
		if h.HasPos {
			t.Fatalf("hardware node %d unexpectedly has a position (only the 8-node ring is laid out)", i)
		}
	}
}

func TestHierarchicalGridBuildsConnectedHardware(t *testing.T) {
	cfg := DefaultGridConfig()
	cfg.GridSide = 4
	p := HierarchicalGrid(cfg, 1)

	wantH := cfg.BoardOuter * cfg.BoardInner * cfg.MboxOuter * cfg.MboxInner * cfg.CoreOuter * cfg.CoreInner
	if len(p.H) != wantH {
		t.Fatalf("got %d hardware nodes, want %d", len(p.H), wantH)
	}
	if len(p.A) != cfg.GridSide*cfg.GridSide {
		t.Fatalf("got %d application nodes, want %d", len(p.A), cfg.GridSide*cfg.GridSide)
	}
	for i := range p.H {
		for j := range p.H {
			if p.D[i][j] >= 1e12 {
				t.Fatalf("hardware nodes %d and %d are disconnected", i, j)
			}
		}
	}
}

func TestHierarchicalGridWeightsMatchPoetsBoxScheme(t *testing.T) {
	cfg := DefaultGridConfig()
	if cfg.InterCoreWeight != 0.1 || cfg.InterMboxWeight != 100 || cfg.InterBoardWeight != 800 {
		t.Fatalf("weights = %v/%v/%v, want 0.1/100/800",
			cfg.InterCoreWeight, cfg.InterMboxWeight, cfg.InterBoardWeight)
	}
}
