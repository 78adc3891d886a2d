package sim

import (
	"log"
	"math"

	"github.com/desimlab/desim/stats"
)

// HookPosQueueEnter is a hook position that triggers when an entity is
// admitted into a queue.
var HookPosQueueEnter = &HookPos{Name: "QueueEnter"}

// HookPosQueueLeave is a hook position that triggers when an entity leaves a
// queue.
var HookPosQueueLeave = &HookPos{Name: "QueueLeave"}

// Unlimited is the capacity of a queue that never blocks. Such a queue is
// used purely for dwell and population statistics.
const Unlimited = math.MaxInt

type occupant struct {
	proc      *Proc
	priority  int
	order     uint64
	enteredAt VTimeInSec
}

type queueWaiter struct {
	proc     *Proc
	priority int
	order    uint64
}

// A Queue is a capacity-bounded, priority-ordered holding area. With
// capacity 1 it is a single resource, with capacity above 1 a multi-server
// resource, and with Unlimited capacity a pure waiting line that never
// blocks. A zero-capacity queue never admits; using one as a blocking
// resource is a deliberate modeling deadlock.
//
// Queues are created by the model during Setup and are mutated only by
// entity operations, which all run on the engine's single logical thread of
// control.
type Queue struct {
	HookableBase

	name     string
	capacity int
	sim      *Simulation

	// Both lists are kept sorted by (priority, order).
	occupants []*occupant
	waitList  []*queueWaiter
	nextOrder uint64

	grossDwell *stats.Tally
	grossPop   *stats.TimeWeighted
	totalCount int
}

// NewQueue creates a queue and registers it with the simulation. The name
// must be valid and unique within the run; the capacity must be zero or
// more, or Unlimited.
func (s *Simulation) NewQueue(name string, capacity int) *Queue {
	NameMustBeValid(name)

	if capacity < 0 {
		log.Panicf("queue %s capacity must not be negative", name)
	}

	q := &Queue{
		name:       name,
		capacity:   capacity,
		sim:        s,
		grossDwell: stats.NewTally(),
		grossPop:   stats.NewTimeWeighted(),
	}
	q.grossPop.Record(0, float64(s.Now()))

	s.registerQueue(q)

	return q
}

// Name returns the name of the queue.
func (q *Queue) Name() string {
	return q.name
}

// Capacity returns the capacity of the queue.
func (q *Queue) Capacity() int {
	return q.capacity
}

// SetCapacity changes the capacity of the queue. Growing the capacity admits
// as many waiting entities as now fit.
func (q *Queue) SetCapacity(capacity int) {
	if capacity < 0 {
		log.Panicf("queue %s capacity must not be negative", q.name)
	}

	q.capacity = capacity
	q.admitWaiters()
}

// Len returns the current number of occupants.
func (q *Queue) Len() int {
	return len(q.occupants)
}

// WaitingCount returns the number of entities suspended waiting for
// admission.
func (q *Queue) WaitingCount() int {
	return len(q.waitList)
}

// Occupants returns the current occupants ordered by admission priority,
// then admission order.
func (q *Queue) Occupants() []*Proc {
	ps := make([]*Proc, len(q.occupants))
	for i, o := range q.occupants {
		ps[i] = o.proc
	}

	return ps
}

// CanEnter tells if an entity would be admitted right away. It is a pure
// predicate with no side effect.
func (q *Queue) CanEnter() bool {
	return len(q.occupants) < q.capacity
}

// Contains tells if the process is currently an occupant.
func (q *Queue) Contains(p *Proc) bool {
	return q.indexOf(p) >= 0
}

func (q *Queue) indexOf(p *Proc) int {
	for i, o := range q.occupants {
		if o.proc == p {
			return i
		}
	}

	return -1
}

// Enter admits the process into the queue, suspending the script until
// capacity and admission order permit. When the queue has room, the entity
// is admitted synchronously, the clock does not move, and the script never
// suspends.
func (p *Proc) Enter(q *Queue) {
	q.mustBeSameRun(p)

	if q.Contains(p) {
		log.Panicf("process %s is already an occupant of queue %s",
			p.id, q.name)
	}

	if q.CanEnter() {
		q.admit(p)
		return
	}

	w := &queueWaiter{proc: p, priority: p.priority, order: q.nextOrder}
	q.nextOrder++
	q.insertWaiter(w)

	p.park()
}

// EnterImmediately is the non-suspending admission fast path. It must only
// be called when CanEnter was just checked; it panics when the queue has no
// room.
func (p *Proc) EnterImmediately(q *Queue) {
	q.mustBeSameRun(p)

	if !q.CanEnter() {
		log.Panicf("queue %s has no room for immediate entry", q.name)
	}

	if q.Contains(p) {
		log.Panicf("process %s is already an occupant of queue %s",
			p.id, q.name)
	}

	q.admit(p)
}

// Leave removes the process from the queue, closes its dwell-time sample,
// and admits as many waiting entities as now fit, by priority then arrival
// order. Leave never suspends.
func (p *Proc) Leave(q *Queue) {
	q.mustBeSameRun(p)

	i := q.indexOf(p)
	if i < 0 {
		log.Panicf("process %s is not an occupant of queue %s", p.id, q.name)
	}

	o := q.occupants[i]
	q.occupants = append(q.occupants[:i], q.occupants[i+1:]...)
	delete(p.queues, q)

	now := q.sim.Now()
	q.grossDwell.Add(float64(now - o.enteredAt))
	q.grossPop.Record(float64(len(q.occupants)), float64(now))

	if q.NumHooks() > 0 {
		q.InvokeHook(HookCtx{
			Domain: q,
			Pos:    HookPosQueueLeave,
			Item:   p,
		})
	}

	q.admitWaiters()
}

func (q *Queue) admitWaiters() {
	for q.CanEnter() && len(q.waitList) > 0 {
		w := q.waitList[0]
		q.waitList = q.waitList[1:]

		q.admit(w.proc)
		q.sim.scheduleWake(w.proc, q.sim.Now(), wakeMsg{reason: WakeAdmitted})
	}
}

func (q *Queue) admit(p *Proc) {
	now := q.sim.Now()
	o := &occupant{
		proc:      p,
		priority:  p.priority,
		order:     q.nextOrder,
		enteredAt: now,
	}
	q.nextOrder++

	q.insertOccupant(o)
	p.queues[q] = struct{}{}
	q.totalCount++
	q.grossPop.Record(float64(len(q.occupants)), float64(now))

	if q.NumHooks() > 0 {
		q.InvokeHook(HookCtx{
			Domain: q,
			Pos:    HookPosQueueEnter,
			Item:   p,
		})
	}
}

func (q *Queue) insertOccupant(o *occupant) {
	i := len(q.occupants)
	for j, other := range q.occupants {
		if o.priority < other.priority {
			i = j
			break
		}
	}

	q.occupants = append(q.occupants, nil)
	copy(q.occupants[i+1:], q.occupants[i:])
	q.occupants[i] = o
}

func (q *Queue) insertWaiter(w *queueWaiter) {
	i := len(q.waitList)
	for j, other := range q.waitList {
		if w.priority < other.priority {
			i = j
			break
		}
	}

	q.waitList = append(q.waitList, nil)
	copy(q.waitList[i+1:], q.waitList[i:])
	q.waitList[i] = w
}

func (q *Queue) mustBeSameRun(p *Proc) {
	if p.sim != q.sim {
		log.Panicf("process %s and queue %s belong to different simulations",
			p.id, q.name)
	}
}

// TotalCount returns the number of admissions so far.
func (q *Queue) TotalCount() int {
	return q.totalCount
}

// Utilization returns the time-weighted average population divided by the
// capacity. It is zero for unlimited queues, whose capacity is not a
// meaningful divisor.
func (q *Queue) Utilization() float64 {
	if q.capacity == Unlimited || q.capacity == 0 {
		return 0
	}

	return q.AverageLength() / float64(q.capacity)
}

// AverageDwell returns the average time an occupant spent in the queue.
func (q *Queue) AverageDwell() VTimeInSec {
	return VTimeInSec(q.grossDwell.Average())
}

// MaxDwell returns the longest time an occupant spent in the queue.
func (q *Queue) MaxDwell() VTimeInSec {
	return VTimeInSec(q.grossDwell.Max())
}

// AverageLength returns the time-weighted average population of the queue.
func (q *Queue) AverageLength() float64 {
	return q.grossPop.Average(float64(q.sim.Now()))
}

// MaxLength returns the peak population of the queue.
func (q *Queue) MaxLength() float64 {
	return q.grossPop.Max()
}

// GrossDwell returns the underlying per-occupant dwell tally, for
// histogramming.
func (q *Queue) GrossDwell() *stats.Tally {
	return q.grossDwell
}

// GrossPop returns the underlying time-weighted population tally, for
// histogramming.
func (q *Queue) GrossPop() *stats.TimeWeighted {
	return q.grossPop
}
