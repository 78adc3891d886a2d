package simulation

import (
	"github.com/rs/xid"

	"github.com/desimlab/desim/datarecording"
	"github.com/desimlab/desim/monitoring"
	"github.com/desimlab/desim/sim"
)

// Builder can be used to build a simulation.
type Builder struct {
	monitorOn      bool
	monitorPort    int
	outputFileName string
	eventTracing   bool
	endTime        sim.VTimeInSec
	entityLimit    int
}

// MakeBuilder creates a new builder.
func MakeBuilder() Builder {
	return Builder{
		monitorOn: true,
	}
}

// WithoutMonitoring sets the simulation to not use monitoring.
func (b Builder) WithoutMonitoring() Builder {
	b.monitorOn = false
	return b
}

// WithMonitorPort sets the port number for the monitoring server.
func (b Builder) WithMonitorPort(port int) Builder {
	b.monitorPort = port
	return b
}

// WithOutputFileName sets the custom output file name for the data recorder.
func (b Builder) WithOutputFileName(filename string) Builder {
	b.outputFileName = filename
	return b
}

// WithEventTracing records every handled event into the output database.
func (b Builder) WithEventTracing() Builder {
	b.eventTracing = true
	return b
}

// WithEndTime makes every run finish when the clock reaches t.
func (b Builder) WithEndTime(t sim.VTimeInSec) Builder {
	b.endTime = t
	return b
}

// WithEntityLimit makes every run finish once n entities have completed
// their scripts.
func (b Builder) WithEntityLimit(n int) Builder {
	b.entityLimit = n
	return b
}

func (b Builder) parametersMustBeValid() {
	if !b.monitorOn && b.monitorPort != 0 {
		panic("monitor port cannot be set when monitoring is disabled")
	}
}

// Build builds the simulation for the given model.
func (b Builder) Build(model sim.Model) *Simulation {
	b.parametersMustBeValid()

	s := &Simulation{
		id:   xid.New().String(),
		core: sim.NewSimulation(model),
	}

	if b.endTime > 0 {
		s.core.SetEndTime(b.endTime)
	}

	if b.entityLimit > 0 {
		s.core.SetEntityLimit(b.entityLimit)
	}

	outputPath := b.outputFileName
	if outputPath == "" {
		outputPath = "desim_" + s.id
	}
	s.dataRecorder = datarecording.New(outputPath)

	s.core.RegisterEndHandler(newSummaryRecorder(s.core, s.dataRecorder))

	if b.eventTracing {
		s.core.AcceptHook(
			datarecording.NewEventTracer(s.dataRecorder, "event_trace"))
	}

	if b.monitorOn {
		s.monitor = monitoring.NewMonitor()
		if b.monitorPort > 0 {
			s.monitor.WithPortNumber(b.monitorPort)
		}
		s.monitor.RegisterSimulation(s.core)
		s.monitor.StartServer()
	}

	return s
}
