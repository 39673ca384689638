package place

import (
	"fmt"
	"strings"
)

// CheckIntegrity verifies reciprocity (a.Location <-> h.Contents agree in
// both directions) and capacity (|h.Contents| <= pMax) across the whole
// placement. It is a post-hoc heuristic check, not a correctness oracle, and
// is not safe to call concurrently with annealing. Returns ok=true and an
// empty report when nothing is wrong.
func (p *Problem) CheckIntegrity() (ok bool, report string) {
	var errs []string

	for aIdx, a := range p.A {
		if a.Location < 0 || a.Location >= len(p.H) {
			errs = append(errs, fmt.Sprintf("application node %d has invalid location %d", aIdx, a.Location))
			continue
		}
		if _, present := p.H[a.Location].Contents[aIdx]; !present {
			errs = append(errs, fmt.Sprintf("application node %d claims hardware node %d but is not in its contents", aIdx, a.Location))
		}
	}

	for hIdx, h := range p.H {
		if len(h.Contents) > p.PMax {
			errs = append(errs, fmt.Sprintf("hardware node %d holds %d application nodes, exceeding pMax %d", hIdx, len(h.Contents), p.PMax))
		}
		for aIdx := range h.Contents {
			if p.A[aIdx].Location != hIdx {
				errs = append(errs, fmt.Sprintf("hardware node %d contains application node %d but that node's location is %d", hIdx, aIdx, p.A[aIdx].Location))
			}
		}
	}

	if len(errs) == 0 {
		return true, ""
	}
	return false, strings.Join(errs, "\n")
}
