package sim

import "log"

// An Entity is a simulated process. Script runs once, on a goroutine of its
// own, and every suspension primitive called on the Proc hands control back
// to the scheduler. When Script returns, the entity is finished and is
// dropped from the registry; it must have left every queue it entered by
// then, or the queue statistics will be wrong.
type Entity interface {
	Script(p *Proc)
}

// Prioritized is implemented by entities that carry a priority for event
// ordering and queue admission. Smaller values mean higher priority.
// Entities that do not implement it get priority 0.
type Prioritized interface {
	Priority() int
}

// Locatable is implemented by entities that expose a conceptual position to
// an animation layer. The engine itself never calls it.
type Locatable interface {
	AnimationPosition(now VTimeInSec) (x, y float64)
}

// A Proc is the running instance of an entity within one simulation run. It
// carries the entity's identity and provides the suspension primitives.
//
// Suspension primitives must only be called from inside the entity's own
// Script. A process that is still suspended when a run is abandoned keeps
// its goroutine parked; a fresh Start builds a new registry and never
// touches it again.
type Proc struct {
	id       string
	serial   int
	priority int
	sim      *Simulation
	entity   Entity

	wake     chan wakeMsg
	queues   map[*Queue]struct{}
	finished bool
}

// ID returns the process's unique ID within the run.
func (p *Proc) ID() string {
	return p.id
}

// Serial returns the creation order of the process within the run, starting
// at 0.
func (p *Proc) Serial() int {
	return p.serial
}

// Priority returns the process's priority. Smaller is more urgent.
func (p *Proc) Priority() int {
	return p.priority
}

// Entity returns the entity this process runs.
func (p *Proc) Entity() Entity {
	return p.entity
}

// Sim returns the owning simulation.
func (p *Proc) Sim() *Simulation {
	return p.sim
}

// Now returns the current simulated time.
func (p *Proc) Now() VTimeInSec {
	return p.sim.Now()
}

// Finished tells if the entity's script has returned.
func (p *Proc) Finished() bool {
	return p.finished
}

func (p *Proc) run() {
	<-p.wake

	p.entity.Script(p)

	p.finished = true
	p.sim.procFinished(p)
	p.sim.parked <- struct{}{}
}

// park suspends the calling process until the scheduler wakes it again.
func (p *Proc) park() wakeMsg {
	p.sim.parked <- struct{}{}
	return <-p.wake
}

// Delay suspends the script for d simulated time units and returns the time
// actually elapsed, which always equals d.
func (p *Proc) Delay(d VTimeInSec) VTimeInSec {
	return p.DelayOrWait(d, nil)
}

// DelayOrWait suspends the script for d simulated time units, unless
// SendSignal fires on source first. The returned elapsed time is d when the
// delay ran to completion and smaller when it was interrupted; the caller
// distinguishes the two by comparing. A nil source makes DelayOrWait behave
// exactly like Delay.
func (p *Proc) DelayOrWait(d VTimeInSec, source any) VTimeInSec {
	if d < 0 {
		log.Panic("negative delay")
	}

	s := p.sim
	now := s.Now()

	evt := s.scheduleWake(p, now+d, wakeMsg{
		reason:  WakeDelayDone,
		elapsed: d,
	})

	var w *signalWaiter
	if source != nil {
		w = &signalWaiter{proc: p, start: now, evt: evt}
		s.addSignalWaiter(source, w)
	}

	msg := p.park()

	// The completion event fired first; the process no longer listens for
	// the signal, so a later SendSignal must not see it.
	if w != nil && msg.reason == WakeDelayDone {
		s.removeSignalWaiter(source, w)
	}

	return msg.elapsed
}
