package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/graphplace/anneal/internal/mathutil"
	"github.com/graphplace/anneal/place"
)

// writeCSV is the common helper for every static dump below: write a
// header row, write each of rows in order, flush, close.
func writeCSV(outdir, filename string, header []string, rows [][]string) error {
	f, err := os.Create(filepath.Join(outdir, filename))
	if err != nil {
		return fmt.Errorf("report: creating %s: %w", filename, err)
	}
	defer f.Close()
	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// WriteADegrees writes a_degrees.csv: Application node name,Degree.
func WriteADegrees(outdir string, p *place.Problem) error {
	rows := make([][]string, 0, len(p.A))
	for _, a := range p.A {
		rows = append(rows, []string{a.Name, strconv.Itoa(len(a.Neighbours))})
	}
	return writeCSV(outdir, "a_degrees.csv", []string{"Application node name", "Degree"}, rows)
}

// WriteHGraph writes h_graph.csv: fromHw,toHw hardware edges.
func WriteHGraph(outdir string, p *place.Problem) error {
	rows := make([][]string, 0, len(p.HEdge))
	for _, e := range p.HEdge {
		rows = append(rows, []string{p.H[e.From].Name, p.H[e.To].Name})
	}
	return writeCSV(outdir, "h_graph.csv", []string{"Hardware node name (first)", "Hardware node name (second)"}, rows)
}

// WriteHNodes writes h_nodes.csv: name,posHoriz,posVerti.
func WriteHNodes(outdir string, p *place.Problem) error {
	rows := make([][]string, 0, len(p.H))
	for _, h := range p.H {
		horiz, verti := "", ""
		if h.HasPos {
			horiz = strconv.FormatFloat(h.PosHoriz, 'g', -1, 64)
			verti = strconv.FormatFloat(h.PosVerti, 'g', -1, 64)
		}
		rows = append(rows, []string{h.Name, horiz, verti})
	}
	return writeCSV(outdir, "h_nodes.csv", []string{"Hardware node name", "Horizontal position", "Vertical position"}, rows)
}

// WriteHNodeLoading writes h_node_loading.csv: name,|contents|. Also logs the
// spread between the least- and most-loaded hardware node, a cheap signal of
// how balanced the current placement is.
func WriteHNodeLoading(outdir string, p *place.Problem) error {
	rows := make([][]string, 0, len(p.H))
	minLoad, maxLoad := -1, 0
	for _, h := range p.H {
		n := len(h.Contents)
		rows = append(rows, []string{h.Name, strconv.Itoa(n)})
		if minLoad == -1 {
			minLoad = n
		}
		minLoad = mathutil.Min(minLoad, n)
		maxLoad = mathutil.Max(maxLoad, n)
	}
	log.Debug().Int("minLoad", minLoad).Int("maxLoad", maxLoad).Msg("report: hardware node loading spread")
	return writeCSV(outdir, "h_node_loading.csv", []string{"Hardware node name", "Number of contained application nodes"}, rows)
}

// WriteAToHMap writes <prefix>_a_to_h_map.csv: appNodeName,hwNodeName.
func WriteAToHMap(outdir, prefix string, p *place.Problem) error {
	rows := make([][]string, 0, len(p.A))
	for _, a := range p.A {
		rows = append(rows, []string{a.Name, p.H[a.Location].Name})
	}
	return writeCSV(outdir, prefix+"_a_to_h_map.csv", []string{"Application node name", "Hardware node name"}, rows)
}

// WriteAHGraph writes <prefix>_a_h_graph.csv: fromHw,toHw,count of
// application edges whose endpoints land on distinct hardware nodes.
func WriteAHGraph(outdir, prefix string, p *place.Problem) error {
	counts := make(map[[2]int]int)
	for aIdx, a := range p.A {
		for _, bIdx := range a.Neighbours {
			if bIdx <= aIdx {
				continue // each undirected application edge counted once
			}
			from, to := p.A[aIdx].Location, p.A[bIdx].Location
			if from == to {
				continue
			}
			if from > to {
				from, to = to, from
			}
			counts[[2]int{from, to}]++
		}
	}
	rows := make([][]string, 0, len(counts))
	for pair, n := range counts {
		rows = append(rows, []string{p.H[pair[0]].Name, p.H[pair[1]].Name, strconv.Itoa(n)})
	}
	return writeCSV(outdir, prefix+"_a_h_graph.csv", []string{"Hardware node name (first)", "Hardware node name (second)", "Loading"}, rows)
}

// WriteIntegrityErrs writes the named integrity error file (cmd/anneal
// passes integrity_before.err and integrity_after.err). The file is empty
// iff CheckIntegrity reported no violations.
func WriteIntegrityErrs(outdir, name string, ok bool, report string) error {
	f, err := os.Create(filepath.Join(outdir, name))
	if err != nil {
		return fmt.Errorf("report: creating %s: %w", name, err)
	}
	defer f.Close()
	if !ok {
		if _, err := f.WriteString(report + "\n"); err != nil {
			return err
		}
	}
	return nil
}

// WriteWallclock writes wallclock.txt: elapsed seconds across all rounds.
func WriteWallclock(outdir string, seconds float64) error {
	f, err := os.Create(filepath.Join(outdir, "wallclock.txt"))
	if err != nil {
		return fmt.Errorf("report: creating wallclock.txt: %w", err)
	}
	defer f.Close()
	_, err = fmt.Fprintf(f, "%f\n", seconds)
	return err
}

// Metadata describes the run for metadata.txt's [anneal] INI section.
type Metadata struct {
	AnnealerType string
	DisorderType string
	Revision     string
	ThreadCount  int // 0 for the serial annealer
}

// WriteMetadata writes metadata.txt: an INI-style [anneal] section with
// annealerType, disorderType, gitRevision, now, and (parallel only)
// threadCount.
func WriteMetadata(outdir string, m Metadata) error {
	f, err := os.Create(filepath.Join(outdir, "metadata.txt"))
	if err != nil {
		return fmt.Errorf("report: creating metadata.txt: %w", err)
	}
	defer f.Close()

	fmt.Fprintln(f, "[anneal]")
	fmt.Fprintf(f, "annealerType = %s\n", m.AnnealerType)
	fmt.Fprintf(f, "disorderType = %s\n", m.DisorderType)
	fmt.Fprintf(f, "gitRevision = %s\n", m.Revision)
	fmt.Fprintf(f, "now = %s\n", time.Now().UTC().Format(time.RFC3339))
	if m.ThreadCount > 0 {
		fmt.Fprintf(f, "threadCount = %d\n", m.ThreadCount)
	}
	return nil
}
