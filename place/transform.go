package place

import "github.com/graphplace/anneal/internal/backoff"

// Transform moves selA from oldH to selH: it is the single mutation
// primitive for the placement, and its own inverse is Transform(selA, oldH,
// selH). No locking is performed inside Transform; callers own the
// discipline (see Select* and LockingTransform).
func (p *Problem) Transform(selA, selH, oldH int) {
	delete(p.H[oldH].Contents, selA)
	p.A[selA].Location = selH
	p.H[selH].Contents[selA] = struct{}{}
	decOccupancy(&p.H[oldH].occupancy)
	incOccupancy(&p.H[selH].occupancy)

	bumpTransformCount(&p.A[selA].TransformCount)
	bumpTransformCount(&p.H[selH].TransformCount)
	bumpTransformCount(&p.H[oldH].TransformCount)
}

// LockingTransform is the semi-asynchronous parallel path's wrapper around
// Transform: it acquires both hardware-node locks together with
// non-blocking attempts in ascending index order, releasing the first and
// backing off whenever the second is busy, so it never blocks on another
// worker. It then re-checks capacity now that the two phases are not atomic
// in this mode, and bails out without mutating anything if the check fails.
// Callers must already hold selA's lock; LockingTransform does not touch it.
func (p *Problem) LockingTransform(selA, selH, oldH int) (ok bool) {
	first, second := selH, oldH
	if first > second {
		first, second = second, first
	}
	for attempt := 0; ; attempt++ {
		if p.H[first].Lock.TryLock() {
			if p.H[second].Lock.TryLock() {
				break
			}
			p.H[first].Lock.Unlock()
		}
		backoff.Sleep(attempt, Patience)
	}
	defer p.H[first].Lock.Unlock()
	defer p.H[second].Lock.Unlock()

	if len(p.H[selH].Contents) >= p.PMax {
		return false
	}
	p.Transform(selA, selH, oldH)
	return true
}
