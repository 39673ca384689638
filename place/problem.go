package place

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/graphplace/anneal/internal/enforce"
)

// LargeDistance is the sentinel stored for hardware-node pairs with no path,
// large enough to dominate any real locality term. Floyd-Warshall itself
// runs with +Inf for missing edges; PopulateEdgeCache substitutes this
// finite value afterwards for every pair still at +Inf.
const LargeDistance = 1e12

// Problem owns the application graph, the hardware graph, the distance
// cache, the capacity bound, and the PRNG used for initial-condition
// construction. It is constructed once and then shared (read-mostly, with
// fine-grained per-node locking) across every annealing worker.
type Problem struct {
	Name string

	A     []*AppNode
	H     []*HwNode
	HEdge []HwEdge
	PMax  int

	D [][]float64 // populated by PopulateEdgeCache; nil until then

	rng *rand.Rand
}

// New constructs an empty Problem with the given capacity bound. Callers
// populate A, H, and HEdge (directly, or via a fixtures.* constructor) before
// calling InitEdgeCache/PopulateEdgeCache and an initial condition.
func New(name string, pMax int, seed int64) *Problem {
	return &Problem{
		Name: name,
		PMax: pMax,
		rng:  rand.New(rand.NewSource(seed)),
	}
}

// AddAppNode appends a new application node and returns its index.
func (p *Problem) AddAppNode(name string) int {
	p.A = append(p.A, &AppNode{Name: name, Location: -1})
	return len(p.A) - 1
}

// AddHwNode appends a new hardware node and returns its index.
func (p *Problem) AddHwNode(name string) int {
	idx := len(p.H)
	p.H = append(p.H, newHwNode(name, idx))
	return idx
}

// LinkAppNodes records a as a symmetric neighbour of b (and vice versa).
func (p *Problem) LinkAppNodes(a, b int) {
	p.A[a].Neighbours = append(p.A[a].Neighbours, b)
	p.A[b].Neighbours = append(p.A[b].Neighbours, a)
}

// AddHwEdge records an undirected hardware edge of the given weight.
func (p *Problem) AddHwEdge(from, to int, weight float64) {
	p.HEdge = append(p.HEdge, HwEdge{From: from, To: to, Weight: weight})
}

// InitEdgeCache allocates the dense distance matrix for n hardware nodes.
// Must be called before PopulateEdgeCache.
func (p *Problem) InitEdgeCache(n int) {
	p.D = make([][]float64, n)
	for i := range p.D {
		p.D[i] = make([]float64, n)
	}
}

// PopulateEdgeCache runs Floyd-Warshall over the hardware edge list via
// gonum's graph/path package, materialising the dense all-pairs distance
// matrix the annealer reads on its hot path. Not thread-safe, not
// re-entrant; called exactly once, before annealing begins.
func (p *Problem) PopulateEdgeCache() {
	enforce.That(p.D != nil, "PopulateEdgeCache called before InitEdgeCache")

	g := simple.NewWeightedUndirectedGraph(0, math.Inf(1))
	for i := range p.H {
		g.AddNode(simple.Node(i))
	}
	for _, e := range p.HEdge {
		g.SetWeightedEdge(g.NewWeightedEdge(simple.Node(e.From), simple.Node(e.To), e.Weight))
	}

	shortest, ok := path.FloydWarshall(g)
	if !ok {
		log.Warn().Msg("hardware graph contains a negative cycle")
	}

	n := len(p.H)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				p.D[i][j] = 0
				continue
			}
			w := shortest.Weight(int64(i), int64(j))
			if math.IsInf(w, 1) {
				w = LargeDistance
			}
			p.D[i][j] = w
		}
	}
}

// InitialConditionBucket fills hardware nodes in order up to PMax. It fails
// loudly (panics) if there are more application nodes than pMax*|H| can
// hold, matching the reference implementation's behaviour of falling over
// violently rather than silently truncating placement.
func (p *Problem) InitialConditionBucket() {
	if len(p.A) > p.PMax*len(p.H) {
		panic(fmt.Sprintf("place: %d application nodes cannot fit in %d hardware nodes at pMax=%d",
			len(p.A), len(p.H), p.PMax))
	}
	hIdx := 0
	for aIdx := range p.A {
		for len(p.H[hIdx].Contents) >= p.PMax {
			hIdx++
		}
		p.placeInitial(aIdx, hIdx)
	}
}

// InitialConditionRandom shuffles the application nodes and assigns each to
// a uniformly-random not-yet-full hardware node.
func (p *Problem) InitialConditionRandom() {
	order := make([]int, len(p.A))
	for i := range order {
		order[i] = i
	}
	p.rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

	nonEmpty := make([]int, len(p.H))
	for i := range nonEmpty {
		nonEmpty[i] = i
	}
	for _, aIdx := range order {
		enforce.That(len(nonEmpty) > 0, "no hardware node with spare capacity for application node %d", aIdx)
		pick := p.rng.Intn(len(nonEmpty))
		hIdx := nonEmpty[pick]
		p.placeInitial(aIdx, hIdx)
		if len(p.H[hIdx].Contents) >= p.PMax {
			nonEmpty[pick] = nonEmpty[len(nonEmpty)-1]
			nonEmpty = nonEmpty[:len(nonEmpty)-1]
		}
	}
}

func (p *Problem) placeInitial(aIdx, hIdx int) {
	p.A[aIdx].Location = hIdx
	p.H[hIdx].Contents[aIdx] = struct{}{}
	incOccupancy(&p.H[hIdx].occupancy)
}
