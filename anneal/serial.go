package anneal

import (
	"math/rand"

	"github.com/graphplace/anneal/disorder"
	"github.com/graphplace/anneal/place"
)

// SerialAnnealer drives place.Problem's serial (unlocked) selection path
// with a single worker. See place.Problem.SelectSerial for the selection
// discipline this relies on being safe only when nothing else touches the
// problem concurrently.
type SerialAnnealer struct {
	Problem      *place.Problem
	Schedule     disorder.Schedule
	MaxIteration uint64
	Rng          *rand.Rand
}

// NewSerialAnnealer builds a serial annealer with its own PRNG for
// selection draws, independent of the schedule's own PRNG.
func NewSerialAnnealer(p *place.Problem, schedule disorder.Schedule, maxIteration uint64, seed int64) *SerialAnnealer {
	return &SerialAnnealer{
		Problem:      p,
		Schedule:     schedule,
		MaxIteration: maxIteration,
		Rng:          rand.New(rand.NewSource(seed)),
	}
}

// Anneal runs iterations 1..MaxIteration, recording every row via rec.
func (s *SerialAnnealer) Anneal(rec Recorder) {
	p := s.Problem
	oldFit := p.TotalFitness()
	cluster := p.TotalClusteringFitness()
	locality := p.TotalLocalityFitness()
	rec.RecordOp(0, OpRow{
		Iteration:         0,
		SelA:              -1,
		SelH:              -1,
		OldH:              -1,
		Fitness:           oldFit,
		ClusteringFitness: cluster,
		LocalityFitness:   locality,
		Accepted:          true,
	})

	for i := uint64(1); i <= s.MaxIteration; i++ {
		selA, selH, oldH := p.SelectSerial(s.Rng)

		oldLocalCluster, oldLocalLoc := p.LocalComponents(selA, selH, oldH)
		p.Transform(selA, selH, oldH)
		newLocalCluster, newLocalLoc := p.LocalComponents(selA, selH, oldH)
		newFit := oldFit - (oldLocalCluster + oldLocalLoc) + (newLocalCluster + newLocalLoc)
		newCluster := cluster - oldLocalCluster + newLocalCluster
		newLocality := locality - oldLocalLoc + newLocalLoc

		accepted := s.Schedule.Determine(oldFit, newFit, i)
		if accepted {
			oldFit, cluster, locality = newFit, newCluster, newLocality
		} else {
			p.Transform(selA, oldH, selH)
		}

		rec.RecordOp(0, OpRow{
			Iteration:         i,
			SelA:              selA,
			SelH:              selH,
			OldH:              oldH,
			Fitness:           newFit,
			ClusteringFitness: newCluster,
			LocalityFitness:   newLocality,
			Accepted:          accepted,
		})
	}
}
