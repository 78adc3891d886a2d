package sim

import (
	"log"
	"math"
	"reflect"
	"sync"
	"sync/atomic"
)

// State is the run state of a Simulation.
type State int

// The states a Simulation moves through. Ready becomes Running on Start.
// Running becomes Paused on Stop and Finished when the end condition is met
// or no event is left. A Paused simulation continues with Start.
const (
	StateReady State = iota
	StateRunning
	StatePaused
	StateFinished
)

// String returns the name of the state.
func (s State) String() string {
	switch s {
	case StateReady:
		return "Ready"
	case StateRunning:
		return "Running"
	case StatePaused:
		return "Paused"
	case StateFinished:
		return "Finished"
	}

	return "Unknown"
}

// A Sampler produces one draw of a random quantity. random.Variate satisfies
// this interface.
type Sampler interface {
	Sample() float64
}

// A Model defines a simulation scenario. Setup is invoked by Start at the
// beginning of every fresh run. It is the place to create queues and to
// activate or generate the initial entities.
type Model interface {
	Setup(s *Simulation)
}

// An EndHandler is called after the simulation finishes.
type EndHandler interface {
	Handle(now VTimeInSec)
}

// WakeReason tells a resumed process why it is resumed.
type WakeReason int

// The reasons a suspended process can be resumed for.
const (
	// WakeActivated starts the entity script.
	WakeActivated WakeReason = iota

	// WakeDelayDone ends a delay that ran to completion.
	WakeDelayDone

	// WakeSignal ends a delay early because its signal source fired.
	WakeSignal

	// WakeAdmitted ends the wait for admission into a queue.
	WakeAdmitted
)

// String returns the name of the wake reason.
func (r WakeReason) String() string {
	switch r {
	case WakeActivated:
		return "Activated"
	case WakeDelayDone:
		return "DelayDone"
	case WakeSignal:
		return "Signal"
	case WakeAdmitted:
		return "Admitted"
	}

	return "Unknown"
}

type wakeMsg struct {
	reason  WakeReason
	elapsed VTimeInSec
}

// A wakeEvent resumes a suspended process at its due time.
type wakeEvent struct {
	EventBase
	proc *Proc
	msg  wakeMsg
}

// An arrivalEvent creates the next entity of a generator and reschedules
// itself until the generator limit is reached.
type arrivalEvent struct {
	EventBase
	gen *generator
}

// An endEvent marks the configured end time of a run. It carries the lowest
// possible priority so that all other events due at the end time are still
// handled.
type endEvent struct {
	EventBase
}

type generator struct {
	name         string
	factory      func() Entity
	interArrival Sampler
	limit        int
	count        int
}

type signalWaiter struct {
	proc  *Proc
	start VTimeInSec
	evt   *wakeEvent
}

// A Simulation owns the simulated clock, the future event chain, and the
// registries of processes and queues. It drives entity scripts forward one
// event at a time, so that no two scripts ever run concurrently.
type Simulation struct {
	HookableBase

	model Model

	engine *SerialEngine
	idGen  IDGenerator

	stateLock     sync.RWMutex
	state         State
	stopRequested atomic.Bool
	endReached    bool

	endTime     VTimeInSec
	entityLimit int

	yieldEvery VTimeInSec
	onYield    func(now VTimeInSec)
	nextYield  VTimeInSec

	// parked is signaled by a process whenever it suspends or returns. The
	// scheduler blocks on it after every resumption, which is what
	// serializes all script execution onto one logical thread.
	parked chan struct{}

	procs          map[*Proc]struct{}
	nextSerial     int
	createdCount   int
	finishedCount  int
	queues         []*Queue
	queueNameIndex map[string]int

	waiters map[any][]*signalWaiter

	endHandlers []EndHandler
}

// NewSimulation creates a Simulation for the given model.
func NewSimulation(model Model) *Simulation {
	if model == nil {
		panic("simulation model must not be nil")
	}

	s := &Simulation{
		model:  model,
		parked: make(chan struct{}),
	}
	s.reset()

	return s
}

// SetEndTime makes the run finish when the clock reaches t. Events due
// after t are left unprocessed.
func (s *Simulation) SetEndTime(t VTimeInSec) {
	if t < 0 {
		log.Panic("end time must not be negative")
	}

	s.endTime = t
}

// SetEntityLimit makes the run finish once n entities have completed their
// scripts. Zero means no limit.
func (s *Simulation) SetEntityLimit(n int) {
	if n < 0 {
		log.Panic("entity limit must not be negative")
	}

	s.entityLimit = n
}

// SetYield registers a callback that the scheduler invokes every interval
// simulated time units while running, so that a host loop can observe
// intermediate state. Yielding never changes event ordering or results.
func (s *Simulation) SetYield(interval VTimeInSec, fn func(now VTimeInSec)) {
	if interval < 0 {
		log.Panic("yield interval must not be negative")
	}

	s.yieldEvery = interval
	s.onYield = fn
}

// RegisterEndHandler registers a handler that performs some actions after
// the simulation is finished.
func (s *Simulation) RegisterEndHandler(h EndHandler) {
	s.endHandlers = append(s.endHandlers, h)
}

// State returns the current run state.
func (s *Simulation) State() State {
	s.stateLock.RLock()
	defer s.stateLock.RUnlock()

	return s.state
}

func (s *Simulation) setState(state State) {
	s.stateLock.Lock()
	s.state = state
	s.stateLock.Unlock()
}

// Now returns the current simulated time.
func (s *Simulation) Now() VTimeInSec {
	return s.engine.CurrentTime()
}

// Engine returns the event engine of the current run.
func (s *Simulation) Engine() Engine {
	return s.engine
}

// EntitiesCreated returns the number of entities activated so far in the
// current run.
func (s *Simulation) EntitiesCreated() int {
	return s.createdCount
}

// EntitiesFinished returns the number of entity scripts that have returned
// in the current run.
func (s *Simulation) EntitiesFinished() int {
	return s.finishedCount
}

// LiveEntities returns the number of entities whose scripts have not
// returned yet.
func (s *Simulation) LiveEntities() int {
	return len(s.procs)
}

// Queues returns the queues of the current run in creation order.
func (s *Simulation) Queues() []*Queue {
	qs := make([]*Queue, len(s.queues))
	copy(qs, s.queues)
	return qs
}

// QueueByName returns the queue with the given name, or nil.
func (s *Simulation) QueueByName(name string) *Queue {
	i, ok := s.queueNameIndex[name]
	if !ok {
		return nil
	}

	return s.queues[i]
}

func (s *Simulation) registerQueue(q *Queue) {
	if _, ok := s.queueNameIndex[q.name]; ok {
		panic("queue " + q.name + " already registered")
	}

	s.queues = append(s.queues, q)
	s.queueNameIndex[q.name] = len(s.queues) - 1
}

// reset clears every run-scoped structure. The engine is rebuilt so that
// leftover events of an abandoned run can never leak into the next one.
func (s *Simulation) reset() {
	s.engine = NewSerialEngine()
	for _, h := range s.Hooks {
		s.engine.AcceptHook(h)
	}

	s.idGen = NewIDGenerator()
	s.procs = make(map[*Proc]struct{})
	s.queues = nil
	s.queueNameIndex = make(map[string]int)
	s.waiters = make(map[any][]*signalWaiter)
	s.nextSerial = 0
	s.createdCount = 0
	s.finishedCount = 0
	s.endReached = false
	s.nextYield = s.yieldEvery
	s.stopRequested.Store(false)

	if s.endTime > 0 {
		evt := &endEvent{EventBase{
			ID:       s.idGen.Generate(),
			time:     s.endTime,
			priority: math.MaxInt,
			handler:  s,
		}}
		s.engine.Schedule(evt)
	}
}

// Start drives the simulation until it finishes or is stopped. On a Ready or
// Finished simulation, Start resets all state, invokes the model's Setup,
// and begins a fresh run. On a Paused simulation it continues the paused
// run. Start returns once the state is Paused or Finished.
func (s *Simulation) Start() error {
	switch s.State() {
	case StateRunning:
		return nil
	case StatePaused:
		s.setState(StateRunning)
	default:
		s.reset()
		s.setState(StateRunning)
		s.model.Setup(s)
	}

	return s.run()
}

// Stop requests the transition from Running to Paused. It takes effect at
// the next event boundary and may be called from another goroutine or from
// the yield callback.
func (s *Simulation) Stop() {
	if s.State() == StateRunning {
		s.stopRequested.Store(true)
	}
}

// StepOne processes exactly one pending event of a Paused run. It finishes
// the run when no event is left or the end condition is met.
func (s *Simulation) StepOne() (bool, error) {
	if s.State() != StatePaused {
		return false, nil
	}

	processed, err := s.engine.StepOne()
	if err != nil {
		return processed, err
	}

	if s.runEnded(processed) {
		s.finish()
	}

	return processed, nil
}

func (s *Simulation) run() error {
	for {
		if s.stopRequested.CompareAndSwap(true, false) {
			s.setState(StatePaused)
			return nil
		}

		processed, err := s.engine.StepOne()
		if err != nil {
			return err
		}

		if s.runEnded(processed) {
			s.finish()
			return nil
		}

		s.maybeYield()
	}
}

func (s *Simulation) runEnded(processed bool) bool {
	if !processed || s.endReached {
		return true
	}

	return s.entityLimit > 0 && s.finishedCount >= s.entityLimit
}

func (s *Simulation) maybeYield() {
	if s.yieldEvery <= 0 || s.onYield == nil {
		return
	}

	now := s.Now()
	for now >= s.nextYield {
		s.onYield(now)
		s.nextYield += s.yieldEvery
	}
}

func (s *Simulation) finish() {
	now := s.Now()
	for _, q := range s.queues {
		q.grossPop.Close(float64(now))
	}

	s.setState(StateFinished)

	for _, h := range s.endHandlers {
		h.Handle(now)
	}
}

// Activate registers a new entity whose script begins at the current time.
// It returns nil, silently, only when the simulation is already Finished.
func (s *Simulation) Activate(e Entity) *Proc {
	return s.ActivateAt(e, s.Now())
}

// ActivateAt registers a new entity whose script begins at time t.
func (s *Simulation) ActivateAt(e Entity, t VTimeInSec) *Proc {
	if s.State() == StateFinished {
		return nil
	}

	if t < s.Now() {
		log.Panic("cannot activate an entity in the past")
	}

	return s.activateAt(e, t)
}

func (s *Simulation) activateAt(e Entity, t VTimeInSec) *Proc {
	p := s.newProc(e)
	s.scheduleWake(p, t, wakeMsg{reason: WakeActivated})
	return p
}

// Generate schedules a stream of entity arrivals. Each arrival time is the
// previous one plus a fresh draw of interArrival. Creation ends after limit
// entities (0 means unlimited) or when the run ends.
func (s *Simulation) Generate(
	name string,
	factory func() Entity,
	interArrival Sampler,
	limit int,
) {
	NameMustBeValid(name)

	if factory == nil {
		log.Panic("generator factory must not be nil")
	}

	if interArrival == nil {
		log.Panic("generator inter-arrival sampler must not be nil")
	}

	if limit < 0 {
		log.Panic("generator limit must not be negative")
	}

	if s.State() == StateFinished {
		return
	}

	g := &generator{
		name:         name,
		factory:      factory,
		interArrival: interArrival,
		limit:        limit,
	}
	s.scheduleNextArrival(g)
}

func (s *Simulation) scheduleNextArrival(g *generator) {
	if g.limit > 0 && g.count >= g.limit {
		return
	}

	d := VTimeInSec(g.interArrival.Sample())
	if d < 0 {
		log.Panicf("generator %s sampled a negative inter-arrival time", g.name)
	}

	evt := &arrivalEvent{
		EventBase: EventBase{
			ID:      s.idGen.Generate(),
			time:    s.Now() + d,
			handler: s,
		},
		gen: g,
	}
	s.engine.Schedule(evt)
}

// SendSignal wakes every process currently delaying against source. The
// woken delays report the time actually elapsed since they started. A
// signal nobody waits on is a no-op.
func (s *Simulation) SendSignal(source any) {
	ws := s.waiters[source]
	if len(ws) == 0 {
		return
	}

	delete(s.waiters, source)

	now := s.Now()
	for _, w := range ws {
		w.evt.Cancel()
		s.scheduleWake(w.proc, now, wakeMsg{
			reason:  WakeSignal,
			elapsed: now - w.start,
		})
	}
}

func (s *Simulation) addSignalWaiter(source any, w *signalWaiter) {
	s.waiters[source] = append(s.waiters[source], w)
}

func (s *Simulation) removeSignalWaiter(source any, w *signalWaiter) {
	ws := s.waiters[source]
	for i, candidate := range ws {
		if candidate == w {
			s.waiters[source] = append(ws[:i], ws[i+1:]...)
			break
		}
	}

	if len(s.waiters[source]) == 0 {
		delete(s.waiters, source)
	}
}

// Handle processes the simulation's own event kinds. It implements Handler.
func (s *Simulation) Handle(e Event) error {
	switch evt := e.(type) {
	case *wakeEvent:
		s.resume(evt.proc, evt.msg)
	case *arrivalEvent:
		s.handleArrival(evt)
	case *endEvent:
		s.endReached = true
	default:
		log.Panicf("cannot handle event of type %s", reflect.TypeOf(e))
	}

	return nil
}

func (s *Simulation) handleArrival(evt *arrivalEvent) {
	g := evt.gen
	g.count++
	s.activateAt(g.factory(), s.Now())
	s.scheduleNextArrival(g)
}

func (s *Simulation) scheduleWake(
	p *Proc,
	t VTimeInSec,
	msg wakeMsg,
) *wakeEvent {
	evt := &wakeEvent{
		EventBase: EventBase{
			ID:       s.idGen.Generate(),
			time:     t,
			priority: p.priority,
			handler:  s,
		},
		proc: p,
		msg:  msg,
	}
	s.engine.Schedule(evt)

	return evt
}

// resume hands control to one process and blocks until that process
// suspends again or its script returns.
func (s *Simulation) resume(p *Proc, msg wakeMsg) {
	if p.finished {
		log.Panic("resuming a process whose script already returned")
	}

	p.wake <- msg
	<-s.parked
}

func (s *Simulation) procFinished(p *Proc) {
	delete(s.procs, p)
	s.finishedCount++
}

func (s *Simulation) newProc(e Entity) *Proc {
	p := &Proc{
		id:     s.idGen.Generate(),
		serial: s.nextSerial,
		sim:    s,
		entity: e,
		wake:   make(chan wakeMsg),
		queues: make(map[*Queue]struct{}),
	}
	s.nextSerial++
	s.createdCount++

	if pe, ok := e.(Prioritized); ok {
		p.priority = pe.Priority()
	}

	s.procs[p] = struct{}{}

	go p.run()

	return p
}
