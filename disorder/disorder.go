// Package disorder implements the cooling schedules (acceptance oracles) that
// decide whether a worsening move is kept during annealing. Each schedule
// owns its own PRNG; none of them are safe to share across goroutines.
package disorder

import (
	"fmt"
	"math"
	"math/rand"
)

// Schedule is the acceptance oracle contract: given the fitness before and
// after a proposed move and the current iteration number, decide whether to
// keep the move. Every implementation except AbsoluteZero accepts
// non-worsening moves; for worsening moves they sample their own PRNG
// against a schedule-specific probability. AbsoluteZero rejects every move.
type Schedule interface {
	Determine(oldFit, newFit float64, iter uint64) bool
}

// base holds the fields every schedule but AbsoluteZero needs: the total
// iteration budget the schedule decays over, and a private random source.
type base struct {
	maxIteration uint64
	rng          *rand.Rand
}

func newBase(maxIteration uint64, seed int64) base {
	return base{maxIteration: maxIteration, rng: rand.New(rand.NewSource(seed))}
}

// ExpDecay accepts worsening moves with probability exp(Δ·k·iter), where
// Δ = oldFit−newFit (always > 0 on this branch) and k = ln(0.5)/(N/2.5) is
// negative, so for a unit worsening (Δ = 1) the acceptance probability
// halves every N/2.5 iterations.
type ExpDecay struct {
	base
	decayConstant float64
}

// NewExpDecay builds an ExpDecay schedule for a run of maxIteration steps.
func NewExpDecay(maxIteration uint64, seed int64) *ExpDecay {
	return &ExpDecay{
		base:          newBase(maxIteration, seed),
		decayConstant: math.Log(0.5) / (float64(maxIteration) / 2.5),
	}
}

func (e *ExpDecay) Determine(oldFit, newFit float64, iter uint64) bool {
	if newFit >= oldFit {
		return true
	}
	delta := oldFit - newFit
	p := math.Exp(delta * e.decayConstant * float64(iter))
	return e.rng.Float64() < p
}

// LinearDecay accepts worsening moves with probability exp(−Δ)·(a+b·iter),
// where Δ = oldFit−newFit is positive on this branch. With a = 0.5 and
// b = −0.5/N the value is at most 0.5·exp(−Δ) and falls linearly to 0 at
// iter = N. It is not clamped.
type LinearDecay struct {
	base
	a float64
	b float64
}

// NewLinearDecay builds a LinearDecay schedule for a run of maxIteration steps.
func NewLinearDecay(maxIteration uint64, seed int64) *LinearDecay {
	return &LinearDecay{
		base: newBase(maxIteration, seed),
		a:    0.5,
		b:    -0.5 / float64(maxIteration),
	}
}

func (l *LinearDecay) Determine(oldFit, newFit float64, iter uint64) bool {
	if newFit >= oldFit {
		return true
	}
	delta := oldFit - newFit
	p := math.Exp(-delta) * (l.a + l.b*float64(iter))
	return l.rng.Float64() < p
}

// NoDisorder only accepts improvements; it still carries a PRNG for interface
// symmetry with the other schedules, though it never draws from it.
type NoDisorder struct {
	base
}

// NewNoDisorder builds a NoDisorder schedule.
func NewNoDisorder(maxIteration uint64, seed int64) *NoDisorder {
	return &NoDisorder{base: newBase(maxIteration, seed)}
}

func (n *NoDisorder) Determine(oldFit, newFit float64, iter uint64) bool {
	return newFit >= oldFit
}

// AbsoluteZero rejects every move, even ones of equal fitness; it freezes the
// placement in place regardless of oldFit/newFit/iter.
type AbsoluteZero struct{}

// NewAbsoluteZero builds an AbsoluteZero schedule. It carries no state.
func NewAbsoluteZero() *AbsoluteZero {
	return &AbsoluteZero{}
}

func (AbsoluteZero) Determine(oldFit, newFit float64, iter uint64) bool {
	return false
}

// New builds a named schedule. Recognised names: "expdecay", "lineardecay",
// "nodisorder", "abszero".
func New(name string, maxIteration uint64, seed int64) (Schedule, error) {
	switch name {
	case "expdecay":
		return NewExpDecay(maxIteration, seed), nil
	case "lineardecay":
		return NewLinearDecay(maxIteration, seed), nil
	case "nodisorder":
		return NewNoDisorder(maxIteration, seed), nil
	case "abszero":
		return NewAbsoluteZero(), nil
	default:
		return nil, fmt.Errorf("disorder: unknown schedule %q", name)
	}
}
