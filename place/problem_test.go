package place

import (
	"math"
	"testing"
)

func newRingProblem(t *testing.T, nA, nH, pMax int) *Problem {
	t.Helper()
	p := New("test_ring", pMax, 42)
	for i := 0; i < nA; i++ {
		p.AddAppNode("a")
	}
	for i := 0; i < nA; i++ {
		p.LinkAppNodes(i, (i+1)%nA)
	}
	for i := 0; i < nH; i++ {
		p.AddHwNode("h")
	}
	for i := 0; i < nH; i++ {
		p.AddHwEdge(i, (i+1)%nH, 1)
	}
	p.InitEdgeCache(nH)
	p.PopulateEdgeCache()
	return p
}

func TestPopulateEdgeCacheRingDistances(t *testing.T) {
	p := newRingProblem(t, 4, 8, 1)
	// An 8-node unit-weight ring: the farthest pair is 4 hops away.
	for i := range p.H {
		for j := range p.H {
			want := math.Min(math.Abs(float64(i-j)), 8-math.Abs(float64(i-j)))
			if p.D[i][j] != want {
				t.Fatalf("D[%d][%d] = %v, want %v", i, j, p.D[i][j], want)
			}
		}
	}
}

func TestPopulateEdgeCacheUnreachablePair(t *testing.T) {
	p := New("test_disconnected", 4, 1)
	p.AddHwNode("h0")
	p.AddHwNode("h1")
	p.InitEdgeCache(2)
	p.PopulateEdgeCache()
	if p.D[0][1] != LargeDistance {
		t.Fatalf("D[0][1] = %v, want LargeDistance", p.D[0][1])
	}
}

func TestInitialConditionBucketRespectsCapacity(t *testing.T) {
	p := newRingProblem(t, 8, 4, 2)
	p.InitialConditionBucket()
	for _, h := range p.H {
		if len(h.Contents) > p.PMax {
			t.Fatalf("hardware node %s holds %d nodes, exceeds pMax %d", h.Name, len(h.Contents), p.PMax)
		}
	}
	if ok, report := p.CheckIntegrity(); !ok {
		t.Fatalf("integrity check failed: %s", report)
	}
}

func TestInitialConditionBucketOverflowPanics(t *testing.T) {
	p := newRingProblem(t, 10, 2, 2)
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for over-capacity placement")
		}
	}()
	p.InitialConditionBucket()
}

func TestInitialConditionRandomPlacesEveryAppNode(t *testing.T) {
	p := newRingProblem(t, 12, 6, 3)
	p.InitialConditionRandom()
	total := 0
	for _, h := range p.H {
		if len(h.Contents) > p.PMax {
			t.Fatalf("hardware node %s over capacity: %d", h.Name, len(h.Contents))
		}
		total += len(h.Contents)
	}
	if total != len(p.A) {
		t.Fatalf("placed %d application nodes, want %d", total, len(p.A))
	}
	if ok, report := p.CheckIntegrity(); !ok {
		t.Fatalf("integrity check failed: %s", report)
	}
}

func TestTransformIsSelfInverse(t *testing.T) {
	p := newRingProblem(t, 8, 4, 4)
	p.InitialConditionBucket()

	before := p.TotalFitness()
	selA := 0
	oldH := p.A[selA].Location
	selH := (oldH + 1) % len(p.H)

	p.Transform(selA, selH, oldH)
	if p.A[selA].Location != selH {
		t.Fatalf("after Transform, Location = %d, want %d", p.A[selA].Location, selH)
	}
	p.Transform(selA, oldH, selH)
	if p.A[selA].Location != oldH {
		t.Fatalf("after inverse Transform, Location = %d, want %d", p.A[selA].Location, oldH)
	}
	after := p.TotalFitness()
	if before != after {
		t.Fatalf("fitness drifted across a round-trip transform: %v != %v", before, after)
	}
}

func TestLocalComponentsMatchesFullRecompute(t *testing.T) {
	p := newRingProblem(t, 8, 4, 4)
	p.InitialConditionBucket()

	selA := 2
	oldH := p.A[selA].Location
	selH := (oldH + 1) % len(p.H)

	clusterBefore := p.TotalClusteringFitness()
	localityBefore := p.TotalLocalityFitness()

	oldLocalCluster, oldLocalLoc := p.LocalComponents(selA, selH, oldH)
	p.Transform(selA, selH, oldH)
	newLocalCluster, newLocalLoc := p.LocalComponents(selA, selH, oldH)

	gotCluster := clusterBefore - oldLocalCluster + newLocalCluster
	gotLocality := localityBefore - oldLocalLoc + newLocalLoc

	wantCluster := p.TotalClusteringFitness()
	wantLocality := p.TotalLocalityFitness()

	if math.Abs(gotCluster-wantCluster) > 1e-9 {
		t.Fatalf("incremental clustering fitness = %v, want %v", gotCluster, wantCluster)
	}
	if math.Abs(gotLocality-wantLocality) > 1e-9 {
		t.Fatalf("incremental locality fitness = %v, want %v", gotLocality, wantLocality)
	}
}

func TestLockingTransformRejectsFullHwNode(t *testing.T) {
	p := newRingProblem(t, 2, 2, 1)
	p.InitialConditionBucket()

	// Both hardware nodes are now at capacity 1. Find two app nodes on
	// distinct hardware nodes and try to move one onto the other's node.
	selA := 0
	oldH := p.A[selA].Location
	var selH int
	for i := range p.H {
		if i != oldH {
			selH = i
			break
		}
	}
	if len(p.H[selH].Contents) < p.PMax {
		t.Fatalf("test setup: expected hardware node %d to be at capacity", selH)
	}
	if ok := p.LockingTransform(selA, selH, oldH); ok {
		t.Fatal("LockingTransform succeeded against a full hardware node")
	}
	if p.A[selA].Location != oldH {
		t.Fatal("LockingTransform mutated placement despite rejecting the move")
	}
}
