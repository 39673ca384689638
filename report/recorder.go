package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/graphplace/anneal/anneal"
)

// CSVRecorder implements anneal.Recorder, writing anneal_ops.csv (serial) or
// anneal_ops-<worker>.csv (parallel, one file per worker) and
// reliable_fitness_values.csv. Each worker's file is opened once up front,
// so RecordOp for a given workerID only ever touches that worker's own
// *csv.Writer and needs no additional locking.
type CSVRecorder struct {
	opsFiles    []*os.File
	opsWriters  []*csv.Writer
	checkpoint  *csv.Writer
	checkpointF *os.File
}

// NewCSVRecorder opens one ops CSV per worker (workers == 1 means a single
// anneal_ops.csv; more than one names each anneal_ops-<worker>.csv) and, if
// writeCheckpoints is set, reliable_fitness_values.csv.
func NewCSVRecorder(outdir string, workers int, writeCheckpoints bool) (*CSVRecorder, error) {
	r := &CSVRecorder{
		opsFiles:   make([]*os.File, workers),
		opsWriters: make([]*csv.Writer, workers),
	}

	header := []string{"Iteration", "Selected application node index", "Selected hardware node index",
		"Number of selection collisions", "Transformed Fitness", "Transformed Clustering Fitness",
		"Transformed Locality Fitness", "Fitness computation is reliable", "Determination"}
	if workers == 1 {
		header = []string{"Selected application node index", "Selected hardware node index",
			"Transformed Fitness", "Transformed Clustering Fitness", "Transformed Locality Fitness", "Determination"}
	}

	for w := 0; w < workers; w++ {
		name := "anneal_ops.csv"
		if workers > 1 {
			name = fmt.Sprintf("anneal_ops-%d.csv", w)
		}
		f, err := os.Create(filepath.Join(outdir, name))
		if err != nil {
			return nil, fmt.Errorf("report: creating %s: %w", name, err)
		}
		cw := csv.NewWriter(f)
		if err := cw.Write(header); err != nil {
			return nil, fmt.Errorf("report: writing header for %s: %w", name, err)
		}
		r.opsFiles[w] = f
		r.opsWriters[w] = cw
	}

	if writeCheckpoints {
		f, err := os.Create(filepath.Join(outdir, "reliable_fitness_values.csv"))
		if err != nil {
			return nil, fmt.Errorf("report: creating reliable_fitness_values.csv: %w", err)
		}
		cw := csv.NewWriter(f)
		if err := cw.Write([]string{"Iteration", "Fitness", "Clustering Fitness", "Locality Fitness"}); err != nil {
			return nil, fmt.Errorf("report: writing checkpoint header: %w", err)
		}
		r.checkpointF = f
		r.checkpoint = cw
	}

	return r, nil
}

// RecordOp implements anneal.Recorder.
func (r *CSVRecorder) RecordOp(workerID int, row anneal.OpRow) {
	w := r.opsWriters[workerID]
	var record []string
	if len(r.opsWriters) == 1 {
		record = []string{
			strconv.Itoa(row.SelA), strconv.Itoa(row.SelH),
			strconv.FormatFloat(row.Fitness, 'g', -1, 64),
			strconv.FormatFloat(row.ClusteringFitness, 'g', -1, 64),
			strconv.FormatFloat(row.LocalityFitness, 'g', -1, 64),
			boolCSV(row.Accepted),
		}
	} else {
		record = []string{
			strconv.FormatUint(row.Iteration, 10),
			strconv.Itoa(row.SelA), strconv.Itoa(row.SelH),
			strconv.Itoa(row.Collisions),
			strconv.FormatFloat(row.Fitness, 'g', -1, 64),
			strconv.FormatFloat(row.ClusteringFitness, 'g', -1, 64),
			strconv.FormatFloat(row.LocalityFitness, 'g', -1, 64),
			boolCSV(row.Reliable),
			boolCSV(row.Accepted),
		}
	}
	if err := w.Write(record); err != nil {
		log.Error().Err(err).Msg("report: failed writing ops row")
	}
}

// RecordCheckpoint implements anneal.Recorder.
func (r *CSVRecorder) RecordCheckpoint(row anneal.CheckpointRow) {
	if r.checkpoint == nil {
		return
	}
	record := []string{
		strconv.FormatUint(row.Iteration, 10),
		strconv.FormatFloat(row.Fitness, 'g', -1, 64),
		strconv.FormatFloat(row.ClusteringFitness, 'g', -1, 64),
		strconv.FormatFloat(row.LocalityFitness, 'g', -1, 64),
	}
	if err := r.checkpoint.Write(record); err != nil {
		log.Error().Err(err).Msg("report: failed writing checkpoint row")
	}
}

// Close flushes and closes every file this recorder opened.
func (r *CSVRecorder) Close() {
	for i, w := range r.opsWriters {
		w.Flush()
		r.opsFiles[i].Close()
	}
	if r.checkpoint != nil {
		r.checkpoint.Flush()
		r.checkpointF.Close()
	}
}

func boolCSV(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
