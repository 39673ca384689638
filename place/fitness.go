package place

// ClusteringFitness returns C(h) = -|h.Contents|^2. Reads the atomic
// occupancy counter rather than len(Contents): callers on the annealing hot
// path (LocalComponents) call this without holding h's Lock, by design (spec
// 4.3's semi-asynchronous discipline), so this must never touch the Contents
// map itself outside a lock.
func (p *Problem) ClusteringFitness(hIdx int) float64 {
	n := float64(loadOccupancy(&p.H[hIdx].occupancy))
	return -(n * n)
}

// LocalityFitness returns L(a) = -sum over a's neighbours of the hardware
// distance between a's and each neighbour's current location. Each
// application edge contributes to both endpoints' L; the total is not
// halved, by design (see Problem's fitness model).
func (p *Problem) LocalityFitness(aIdx int) float64 {
	a := p.A[aIdx]
	loc := 0.0
	for _, bIdx := range a.Neighbours {
		b := p.A[bIdx]
		loc -= p.D[a.Location][b.Location]
	}
	return loc
}

// TotalClusteringFitness returns sum_h C(h).
func (p *Problem) TotalClusteringFitness() float64 {
	sum := 0.0
	for hIdx := range p.H {
		sum += p.ClusteringFitness(hIdx)
	}
	return sum
}

// TotalLocalityFitness returns sum_a L(a).
func (p *Problem) TotalLocalityFitness() float64 {
	sum := 0.0
	for aIdx := range p.A {
		sum += p.LocalityFitness(aIdx)
	}
	return sum
}

// TotalFitness returns F = sum_h C(h) + sum_a L(a), computed from scratch.
// Used only for initialisation and checkpointing; the annealing hot path
// tracks fitness incrementally via LocalComponents/Transform.
func (p *Problem) TotalFitness() float64 {
	return p.TotalClusteringFitness() + p.TotalLocalityFitness()
}

// LocalComponents returns the two terms the incremental fitness update
// needs around a move of selA between oldH and selH: the sum of the two
// hardware nodes' clustering fitness, and twice selA's locality fitness (the
// 2x accounts for each incident edge appearing once in L(selA) and once in
// its neighbour's L).
func (p *Problem) LocalComponents(selA, selH, oldH int) (cluster, locality float64) {
	cluster = p.ClusteringFitness(selH) + p.ClusteringFitness(oldH)
	locality = 2 * p.LocalityFitness(selA)
	return
}
