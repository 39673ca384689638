package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"
	"time"
)

// Config holds every command-line-configurable knob for a run. Grouped the
// way graph.FlagsToOptions groups GraphOptions: one struct populated by one
// parsing function, so the rest of the program never touches flag directly.
type Config struct {
	Fixture  string // "ring" or "grid"
	RingA    int
	RingH    int
	GridSide int
	PMax     int
	HwWeight float64

	Serial           bool
	Workers          int
	FullySynchronous bool

	Schedule     string
	MaxIteration uint64
	Seed         int64

	CheckpointEvery uint64

	Mouse      bool
	OutDir     string
	DebugLevel int
	NoColour   bool
}

// ParseFlags declares every flag, parses os.Args, and folds the result into
// a Config. Mirrors graph.FlagsToOptions's declare-then-parse-then-fold shape.
func ParseFlags() Config {
	fixturePtr := flag.String("fixture", "ring", "Problem fixture to anneal: \"ring\" or \"grid\".")
	ringAPtr := flag.Int("ring-a", 16, "Ring fixture: number of application nodes.")
	ringHPtr := flag.Int("ring-h", 8, "Ring fixture: number of hardware nodes.")
	gridSidePtr := flag.Int("grid-side", 12, "Grid fixture: side length of the 2-D application grid.")
	pMaxPtr := flag.Int("pmax", 4, "Maximum application nodes per hardware node.")
	hwWeightPtr := flag.Float64("hw-weight", 1, "Ring fixture: hardware edge weight.")

	serialPtr := flag.Bool("serial", false, "Use the serial annealer instead of the parallel one.")
	workersPtr := flag.Int("workers", runtime.NumCPU(), "Worker goroutine count for the parallel annealer.")
	fullySyncPtr := flag.Bool("fully-sync", false, "Use the fully-synchronous locking discipline instead of semi-asynchronous.")

	schedulePtr := flag.String("schedule", "expdecay", "Cooling schedule: expdecay, lineardecay, nodisorder, or abszero.")
	maxIterPtr := flag.Uint64("max-iter", 1000000, "Number of annealing iterations (per worker, for the parallel annealer).")
	seedPtr := flag.Int64("seed", 0, "Random seed. 0 selects a non-deterministic seed.")

	checkpointPtr := flag.Uint64("checkpoint", 0, "Parallel annealer: record a checkpoint row every this many iterations. 0 disables checkpointing.")

	mousePtr := flag.Bool("mouse", false, "Quiet timing-only mode: skip report artefacts, print only the wallclock time.")
	outPtr := flag.String("out", "", "Output directory for CSV/log artefacts. Empty disables file output.")
	debugPtr := flag.Int("loglevel", 0, "0 for info, 1 for debug, 2+ for trace.")
	noColourPtr := flag.Bool("nc", false, "Disable coloured console log output.")

	flag.Parse()

	seed := *seedPtr
	if seed == 0 {
		seed = nonDeterministicSeed()
	}

	cfg := Config{
		Fixture:          *fixturePtr,
		RingA:            *ringAPtr,
		RingH:            *ringHPtr,
		GridSide:         *gridSidePtr,
		PMax:             *pMaxPtr,
		HwWeight:         *hwWeightPtr,
		Serial:           *serialPtr,
		Workers:          *workersPtr,
		FullySynchronous: *fullySyncPtr,
		Schedule:         *schedulePtr,
		MaxIteration:     *maxIterPtr,
		Seed:             seed,
		CheckpointEvery:  *checkpointPtr,
		Mouse:            *mousePtr,
		OutDir:           *outPtr,
		DebugLevel:       *debugPtr,
		NoColour:         *noColourPtr,
	}

	if cfg.Fixture != "ring" && cfg.Fixture != "grid" {
		fmt.Fprintf(flag.CommandLine.Output(), "unknown fixture %q\n", cfg.Fixture)
		flag.Usage()
		os.Exit(1)
	}

	return cfg
}

func nonDeterministicSeed() int64 {
	return time.Now().UnixNano()
}
