package place

import (
	"math/rand"

	"github.com/rs/zerolog/log"

	"github.com/graphplace/anneal/internal/backoff"
)

// Patience is the soft ceiling on selection retry attempts before a warning
// is logged. Exhausting patience is not an error: the loop keeps going.
const Patience = 1000

// SelectSerial draws selA uniformly, then draws selH uniformly among
// hardware nodes that are not full and not selA's current location. No
// locking: only safe for the single-worker serial annealer.
func (p *Problem) SelectSerial(rng *rand.Rand) (selA, selH, oldH int) {
	selA = rng.Intn(len(p.A))
	oldH = p.A[selA].Location
	selH = p.drawOpenHwNode(rng, oldH)
	return
}

// drawOpenHwNode repeatedly draws a hardware node index until it finds one
// that is not full and differs from avoid, warning once patience is
// exhausted but never giving up. A legal choice exists only while some
// hardware node other than avoid has a free slot; with |A| <= pMax*(|H|-1)
// that always holds, otherwise the loop can spin until another worker
// frees a slot.
func (p *Problem) drawOpenHwNode(rng *rand.Rand, avoid int) int {
	for attempt := 0; ; attempt++ {
		if attempt == Patience {
			log.Warn().Msg("place: selection patience exhausted drawing a hardware node")
		}
		h := rng.Intn(len(p.H))
		if h != avoid && loadOccupancy(&p.H[h].occupancy) < uint32(p.PMax) {
			return h
		}
	}
}

// SelectSemiAsync draws selA by repeatedly trying to non-blockingly lock a
// random application node, returning the first one it acquires. selH and
// oldH are then read/drawn without locking, per the semi-asynchronous
// discipline (capacity reads are racy-by-design in this mode). Only selA is
// held locked on return; the caller must unlock it at the end of the
// iteration.
func (p *Problem) SelectSemiAsync(rng *rand.Rand) (selA, selH, oldH, collisions int) {
	for attempt := 0; ; attempt++ {
		if attempt == Patience {
			log.Warn().Msg("place: selection patience exhausted acquiring an application node")
		}
		i := rng.Intn(len(p.A))
		if p.A[i].Lock.TryLock() {
			selA = i
			break
		}
		collisions++
		backoff.Sleep(attempt, Patience)
	}
	oldH = p.A[selA].Location
	selH = p.drawOpenHwNode(rng, oldH)
	return
}

// FullySyncSelection is the lock set held by SelectFullySync: selA, every
// neighbour of selA, oldH, and selH. Release unlocks all of them, in the
// same order they were acquired, and must be called exactly once per
// successful selection.
type FullySyncSelection struct {
	SelA, SelH, OldH int
	Neighbours       []int
	Collisions       int

	problem *Problem
}

// Release unlocks every node this selection acquired.
func (s *FullySyncSelection) Release() {
	s.problem.A[s.SelA].Lock.Unlock()
	for _, n := range s.Neighbours {
		s.problem.A[n].Lock.Unlock()
	}
	s.problem.H[s.OldH].Lock.Unlock()
	s.problem.H[s.SelH].Lock.Unlock()
}

// SelectFullySync acquires every lock the iteration will need before
// returning: selA, all of selA's neighbours, oldH, and selH. It is
// deadlock-free by try-and-back-off: any failed acquisition releases
// everything held so far and restarts from a fresh selA draw, except for
// selH, which may be redrawn in place without releasing the other locks
// (selH's identity does not affect any other node's lock ordering).
func (p *Problem) SelectFullySync(rng *rand.Rand) *FullySyncSelection {
	for outer := 0; ; outer++ {
		selA, ok := p.tryLockRandomAppNode(rng)
		if !ok {
			backoff.Sleep(outer, Patience)
			continue
		}

		oldH := p.A[selA].Location
		neighbours := p.A[selA].Neighbours
		locked := make([]int, 0, len(neighbours))

		if !p.tryLockSet(neighbours, &locked) || !p.tryLockHw(oldH) {
			p.A[selA].Lock.Unlock()
			for _, n := range locked {
				p.A[n].Lock.Unlock()
			}
			backoff.Sleep(outer, Patience)
			continue
		}

		selH, collisions, ok := p.trySelectAndLockHw(rng, oldH)
		if !ok {
			p.A[selA].Lock.Unlock()
			for _, n := range locked {
				p.A[n].Lock.Unlock()
			}
			p.H[oldH].Lock.Unlock()
			backoff.Sleep(outer, Patience)
			continue
		}

		return &FullySyncSelection{
			SelA: selA, SelH: selH, OldH: oldH,
			Neighbours: locked, Collisions: collisions,
			problem: p,
		}
	}
}

func (p *Problem) tryLockRandomAppNode(rng *rand.Rand) (int, bool) {
	for attempt := 0; attempt < Patience; attempt++ {
		i := rng.Intn(len(p.A))
		if p.A[i].Lock.TryLock() {
			return i, true
		}
	}
	i := rng.Intn(len(p.A))
	return i, p.A[i].Lock.TryLock()
}

func (p *Problem) tryLockSet(indices []int, locked *[]int) bool {
	for _, i := range indices {
		if !p.A[i].Lock.TryLock() {
			return false
		}
		*locked = append(*locked, i)
	}
	return true
}

func (p *Problem) tryLockHw(hIdx int) bool {
	return p.H[hIdx].Lock.TryLock()
}

// trySelectAndLockHw draws candidate selH values (respecting capacity and
// selH != oldH) and tries to lock each non-blockingly, redrawing in place
// (without releasing any other lock already held) on failure.
func (p *Problem) trySelectAndLockHw(rng *rand.Rand, oldH int) (selH, collisions int, ok bool) {
	for attempt := 0; ; attempt++ {
		if attempt == Patience {
			log.Warn().Msg("place: selection patience exhausted drawing/locking a hardware node")
		}
		if attempt > Patience*10 {
			return 0, collisions, false
		}
		h := rng.Intn(len(p.H))
		if h == oldH || loadOccupancy(&p.H[h].occupancy) >= uint32(p.PMax) {
			continue
		}
		if p.H[h].Lock.TryLock() {
			return h, collisions, true
		}
		collisions++
		backoff.Sleep(attempt, Patience*10)
	}
}
