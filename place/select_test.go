package place

import (
	"math"
	"math/rand"
	"testing"
)

func TestSelectSerialAvoidsCurrentAndFullNodes(t *testing.T) {
	p := newRingProblem(t, 6, 3, 3)
	p.InitialConditionBucket()
	rng := rand.New(rand.NewSource(9))

	for i := 0; i < 200; i++ {
		selA, selH, oldH := p.SelectSerial(rng)
		if selH == oldH {
			t.Fatalf("selH == oldH == %d", oldH)
		}
		if len(p.H[selH].Contents) >= p.PMax {
			t.Fatalf("selected a full hardware node %d", selH)
		}
		_ = selA
	}
}

func TestSelectSemiAsyncLeavesSelALocked(t *testing.T) {
	p := newRingProblem(t, 6, 3, 3)
	p.InitialConditionBucket()
	rng := rand.New(rand.NewSource(9))

	selA, selH, oldH, _ := p.SelectSemiAsync(rng)
	if p.A[selA].Lock.TryLock() {
		t.Fatal("selA should already be locked by SelectSemiAsync")
	}
	if selH == oldH {
		t.Fatal("selH == oldH")
	}
	p.A[selA].Lock.Unlock()
}

func TestSelectFullySyncLocksEntireNeighbourhood(t *testing.T) {
	p := newRingProblem(t, 6, 3, 3)
	p.InitialConditionBucket()
	rng := rand.New(rand.NewSource(9))

	sel := p.SelectFullySync(rng)

	if p.A[sel.SelA].Lock.TryLock() {
		t.Fatal("selA should be locked")
	}
	for _, n := range sel.Neighbours {
		if p.A[n].Lock.TryLock() {
			t.Fatalf("neighbour %d should be locked", n)
		}
	}
	if p.H[sel.OldH].Lock.TryLock() {
		t.Fatal("oldH should be locked")
	}
	if p.H[sel.SelH].Lock.TryLock() {
		t.Fatal("selH should be locked")
	}

	sel.Release()

	if !p.A[sel.SelA].Lock.TryLock() {
		t.Fatal("selA should be unlocked after Release")
	}
	p.A[sel.SelA].Lock.Unlock()
}

func TestRandomMoveRoundTripPreservesFitnessAndReciprocity(t *testing.T) {
	p := newRingProblem(t, 20, 6, 5)
	p.InitialConditionRandom()

	before := p.TotalFitness()
	rng := rand.New(rand.NewSource(123))

	for i := 0; i < 1000; i++ {
		selA := rng.Intn(len(p.A))
		oldH := p.A[selA].Location
		selH := p.drawOpenHwNode(rng, oldH)

		p.Transform(selA, selH, oldH)
		p.Transform(selA, oldH, selH)
	}

	after := p.TotalFitness()
	if math.Abs(before-after) > 1e-6 {
		t.Fatalf("fitness drifted after 1000 round-trip transforms: %v != %v", before, after)
	}
	if ok, report := p.CheckIntegrity(); !ok {
		t.Fatalf("integrity check failed: %s", report)
	}
}
