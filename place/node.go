// Package place implements the placement state: the application graph, the
// hardware graph, the distance cache, and the selection/transformation/
// fitness primitives the annealers drive. Application nodes are locked on
// selection; hardware nodes are locked on transformation.
package place

import (
	"sync"
	"sync/atomic"
)

// AppNode is a single application-graph vertex. Name and Neighbours are
// stable for the node's lifetime; Location is the only field that mutates
// during annealing, and only while Lock is held by the mutating worker.
type AppNode struct {
	Name       string
	Neighbours []int // indices into Problem.A, symmetric

	Lock sync.Mutex

	Location       int    // index into Problem.H
	TransformCount uint64 // atomic; incremented whenever Location changes
}

// HwNode is a single hardware-graph vertex. Name, Index, PosHoriz, and
// PosVerti are stable; Contents is the only field that mutates during
// annealing, and only while Lock is held by the mutating worker(s).
type HwNode struct {
	Name     string
	Index    int
	PosHoriz float64
	PosVerti float64
	HasPos   bool

	Lock sync.Mutex

	Contents       map[int]struct{} // set of indices into Problem.A
	TransformCount uint64           // atomic; incremented whenever Contents changes
	occupancy      uint32           // atomic; len(Contents), readable without Lock
}

// HwEdge is an immutable undirected hardware edge, stored once.
type HwEdge struct {
	From, To int
	Weight   float64
}

func newHwNode(name string, index int) *HwNode {
	return &HwNode{Name: name, Index: index, Contents: make(map[int]struct{})}
}

// loadTransformCount reads a node's TransformCount with acquire semantics
// relative to the release stores Transform performs.
func loadTransformCount(p *uint64) uint64 {
	return atomic.LoadUint64(p)
}

func bumpTransformCount(p *uint64) {
	atomic.AddUint64(p, 1)
}

// loadOccupancy reads a hardware node's occupancy without acquiring its Lock.
// Selection uses this for capacity checks so that the racy, unlocked reads
// the semi-asynchronous and fully-synchronous protocols call for (spec 4.3)
// race an atomic counter instead of the Contents map itself: Go, unlike the
// reference implementation's host language, treats a concurrent unsynchronized
// map read/write as a runtime-fatal error rather than a merely stale read, so
// the capacity check needs its own word to race against instead.
func loadOccupancy(p *uint32) uint32 {
	return atomic.LoadUint32(p)
}

func incOccupancy(p *uint32) {
	atomic.AddUint32(p, 1)
}

func decOccupancy(p *uint32) {
	atomic.AddUint32(p, ^uint32(0))
}
