package report

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/graphplace/anneal/anneal"
	"github.com/graphplace/anneal/place"
)

func smallProblem(t *testing.T) *place.Problem {
	t.Helper()
	p := place.New("dumps_test", 2, 1)
	for i := 0; i < 4; i++ {
		p.AddAppNode("a")
	}
	for i := 0; i < 4; i++ {
		p.LinkAppNodes(i, (i+1)%4)
	}
	for i := 0; i < 2; i++ {
		p.AddHwNode("h")
	}
	p.AddHwEdge(0, 1, 5)
	p.InitEdgeCache(2)
	p.PopulateEdgeCache()
	p.InitialConditionBucket()
	return p
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("opening %s: %v", path, err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return rows
}

func TestWriteADegrees(t *testing.T) {
	dir := t.TempDir()
	p := smallProblem(t)
	if err := WriteADegrees(dir, p); err != nil {
		t.Fatal(err)
	}
	rows := readCSV(t, filepath.Join(dir, "a_degrees.csv"))
	if len(rows) != len(p.A)+1 {
		t.Fatalf("got %d rows, want %d", len(rows), len(p.A)+1)
	}
	if rows[0][0] != "Application node name" || rows[0][1] != "Degree" {
		t.Fatalf("unexpected header: %v", rows[0])
	}
	if rows[1][1] != "2" {
		t.Fatalf("first application node degree = %s, want 2", rows[1][1])
	}
}

func TestWriteHNodeLoading(t *testing.T) {
	dir := t.TempDir()
	p := smallProblem(t)
	if err := WriteHNodeLoading(dir, p); err != nil {
		t.Fatal(err)
	}
	rows := readCSV(t, filepath.Join(dir, "h_node_loading.csv"))
	total := 0
	for _, r := range rows[1:] {
		n, err := strconv.Atoi(r[1])
		if err != nil {
			t.Fatalf("parsing loading %q: %v", r[1], err)
		}
		total += n
	}
	if total != len(p.A) {
		t.Fatalf("total loading %d, want %d", total, len(p.A))
	}
}

func TestWriteIntegrityErrsEmptyOnSuccess(t *testing.T) {
	dir := t.TempDir()
	if err := WriteIntegrityErrs(dir, "integrity_before.err", true, ""); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(filepath.Join(dir, "integrity_before.err"))
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() != 0 {
		t.Fatalf("expected an empty file, got %d bytes", info.Size())
	}
}

func TestWriteIntegrityErrsWritesReportOnFailure(t *testing.T) {
	dir := t.TempDir()
	if err := WriteIntegrityErrs(dir, "integrity_after.err", false, "node 3 not reciprocated"); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "integrity_after.err"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "node 3 not reciprocated\n" {
		t.Fatalf("unexpected content: %q", data)
	}
}

func TestWriteMetadataOmitsThreadCountWhenSerial(t *testing.T) {
	dir := t.TempDir()
	if err := WriteMetadata(dir, Metadata{AnnealerType: "serial", DisorderType: "expdecay", Revision: "unknown"}); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "metadata.txt"))
	if err != nil {
		t.Fatal(err)
	}
	s := string(data)
	if !strings.Contains(s, "annealerType = serial") || !strings.Contains(s, "disorderType = expdecay") {
		t.Fatalf("missing expected fields: %s", s)
	}
	if strings.Contains(s, "threadCount") {
		t.Fatalf("threadCount should be omitted for the serial annealer: %s", s)
	}
}

func TestCSVRecorderSingleWorkerHeader(t *testing.T) {
	dir := t.TempDir()
	rec, err := NewCSVRecorder(dir, 1, false)
	if err != nil {
		t.Fatal(err)
	}
	rec.RecordOp(0, anneal.OpRow{SelA: 1, SelH: 2, Fitness: -3, Accepted: true})
	rec.Close()

	rows := readCSV(t, filepath.Join(dir, "anneal_ops.csv"))
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if len(rows[0]) != 6 {
		t.Fatalf("single-worker header has %d columns, want 6", len(rows[0]))
	}
}

func TestCSVRecorderMultiWorkerFilesAndCheckpoint(t *testing.T) {
	dir := t.TempDir()
	rec, err := NewCSVRecorder(dir, 3, true)
	if err != nil {
		t.Fatal(err)
	}
	rec.RecordOp(0, anneal.OpRow{Iteration: 1, SelA: 1, SelH: 2, Reliable: true, Accepted: true})
	rec.RecordOp(2, anneal.OpRow{Iteration: 1, SelA: 3, SelH: 4, Reliable: false, Accepted: false})
	rec.RecordCheckpoint(anneal.CheckpointRow{Iteration: 5000, Fitness: -10})
	rec.Close()

	for w := 0; w < 3; w++ {
		path := filepath.Join(dir, "anneal_ops-"+strconv.Itoa(w)+".csv")
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("expected %s to exist: %v", path, err)
		}
	}
	rows := readCSV(t, filepath.Join(dir, "reliable_fitness_values.csv"))
	if len(rows) != 2 {
		t.Fatalf("got %d checkpoint rows, want 2 (header + 1)", len(rows))
	}
}
