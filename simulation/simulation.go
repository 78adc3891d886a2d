// Package simulation composes the pieces required by a complete simulation
// run: the engine core, the output recorder, and the monitoring server.
package simulation

import (
	"github.com/desimlab/desim/datarecording"
	"github.com/desimlab/desim/monitoring"
	"github.com/desimlab/desim/sim"
)

// A Simulation bundles a model's engine with its output recorder and
// optional monitor.
type Simulation struct {
	id string

	core         *sim.Simulation
	dataRecorder datarecording.DataRecorder
	monitor      *monitoring.Monitor
}

// ID returns the unique ID of the simulation.
func (s *Simulation) ID() string {
	return s.id
}

// Core returns the underlying engine-level simulation.
func (s *Simulation) Core() *sim.Simulation {
	return s.core
}

// DataRecorder returns the output recorder.
func (s *Simulation) DataRecorder() datarecording.DataRecorder {
	return s.dataRecorder
}

// Monitor returns the monitor, or nil when monitoring is disabled.
func (s *Simulation) Monitor() *monitoring.Monitor {
	return s.monitor
}

// Run starts the simulation and blocks until it pauses or finishes.
func (s *Simulation) Run() error {
	return s.core.Start()
}

// Terminate flushes and closes the output recorder.
func (s *Simulation) Terminate() {
	s.dataRecorder.Close()
}

// QueueStatsEntry is one queue's end-of-run statistics row.
type QueueStatsEntry struct {
	Run          int
	Queue        string
	Capacity     int
	TotalCount   int
	Utilization  float64
	AverageDwell float64
	MaxDwell     float64
	AverageLen   float64
	MaxLen       float64
}

// DwellBinEntry is one histogram bin of a queue's dwell-time tally.
type DwellBinEntry struct {
	Run    int
	Queue  string
	Lower  float64
	Upper  float64
	Weight float64
}

// summaryRecorder writes one statistics row per queue every time a run
// finishes.
type summaryRecorder struct {
	sim      *sim.Simulation
	recorder datarecording.DataRecorder
	run      int
}

func newSummaryRecorder(
	s *sim.Simulation,
	recorder datarecording.DataRecorder,
) *summaryRecorder {
	recorder.CreateTable("queue_stats", QueueStatsEntry{})
	recorder.CreateTable("queue_dwell_bins", DwellBinEntry{})

	return &summaryRecorder{sim: s, recorder: recorder}
}

// Handle records the summary rows. It implements sim.EndHandler.
func (r *summaryRecorder) Handle(_ sim.VTimeInSec) {
	r.run++

	for _, q := range r.sim.Queues() {
		capacity := q.Capacity()
		if capacity == sim.Unlimited {
			capacity = -1
		}

		r.recorder.InsertData("queue_stats", QueueStatsEntry{
			Run:          r.run,
			Queue:        q.Name(),
			Capacity:     capacity,
			TotalCount:   q.TotalCount(),
			Utilization:  q.Utilization(),
			AverageDwell: float64(q.AverageDwell()),
			MaxDwell:     float64(q.MaxDwell()),
			AverageLen:   q.AverageLength(),
			MaxLen:       q.MaxLength(),
		})

		for _, bin := range q.GrossDwell().Bins() {
			r.recorder.InsertData("queue_dwell_bins", DwellBinEntry{
				Run:    r.run,
				Queue:  q.Name(),
				Lower:  bin.Lower,
				Upper:  bin.Upper,
				Weight: bin.Weight,
			})
		}
	}

	r.recorder.Flush()
}
