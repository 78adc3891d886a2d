package sim

import (
	"container/heap"
	"container/list"
	"sync"
)

// EventQueue are a queue of event ordered by the time of events. Events due
// at the same time are ordered by priority, then by insertion order, so the
// processing order is fully deterministic.
type EventQueue interface {
	Push(evt Event)
	Pop() Event
	Len() int
	Peek() Event
}

// EventQueueImpl provides a thread safe event queue.
type EventQueueImpl struct {
	sync.Mutex
	events  eventHeap
	nextSeq uint64
}

// NewEventQueue creates and returns a newly created EventQueue.
func NewEventQueue() *EventQueueImpl {
	q := new(EventQueueImpl)
	q.events = make(eventHeap, 0)
	heap.Init(&q.events)
	return q
}

// Push adds an event to the event queue.
func (q *EventQueueImpl) Push(evt Event) {
	q.Lock()
	heap.Push(&q.events, queuedEvent{evt: evt, seq: q.nextSeq})
	q.nextSeq++
	q.Unlock()
}

// Pop returns the next earliest event.
func (q *EventQueueImpl) Pop() Event {
	q.Lock()
	e := heap.Pop(&q.events).(queuedEvent)
	q.Unlock()
	return e.evt
}

// Len returns the number of event in the queue.
func (q *EventQueueImpl) Len() int {
	q.Lock()
	l := q.events.Len()
	q.Unlock()
	return l
}

// Peek returns the event in front of the queue without removing it from the
// queue.
func (q *EventQueueImpl) Peek() Event {
	q.Lock()
	evt := q.events[0].evt
	q.Unlock()
	return evt
}

// queuedEvent tags an event with its insertion order so that same-time,
// same-priority events keep a deterministic order.
type queuedEvent struct {
	evt Event
	seq uint64
}

func eventBefore(a, b queuedEvent) bool {
	if a.evt.Time() != b.evt.Time() {
		return a.evt.Time() < b.evt.Time()
	}

	if a.evt.Priority() != b.evt.Priority() {
		return a.evt.Priority() < b.evt.Priority()
	}

	return a.seq < b.seq
}

type eventHeap []queuedEvent

// Len returns the length of the event queue.
func (h eventHeap) Len() int {
	return len(h)
}

// Less determines the order between two events. Less returns true if the
// i-th event happens before the j-th event.
func (h eventHeap) Less(i, j int) bool {
	return eventBefore(h[i], h[j])
}

// Swap changes the position of two events in the event queue.
func (h eventHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
}

// Push adds an event into the event queue.
func (h *eventHeap) Push(x interface{}) {
	*h = append(*h, x.(queuedEvent))
}

// Pop removes and returns the next event to happen.
func (h *eventHeap) Pop() interface{} {
	old := *h
	n := len(old)
	event := old[n-1]
	*h = old[0 : n-1]
	return event
}

// InsertionQueue is a queue that is based on insertion sort.
type InsertionQueue struct {
	lock    sync.RWMutex
	l       *list.List
	nextSeq uint64
}

// NewInsertionQueue returns a new InsertionQueue.
func NewInsertionQueue() *InsertionQueue {
	q := new(InsertionQueue)
	q.l = list.New()
	return q
}

// Push add an event to the event queue.
func (q *InsertionQueue) Push(evt Event) {
	q.lock.Lock()

	qe := queuedEvent{evt: evt, seq: q.nextSeq}
	q.nextSeq++

	var ele *list.Element
	for ele = q.l.Front(); ele != nil; ele = ele.Next() {
		if eventBefore(qe, ele.Value.(queuedEvent)) {
			break
		}
	}

	if ele != nil {
		q.l.InsertBefore(qe, ele)
	} else {
		q.l.PushBack(qe)
	}
	q.lock.Unlock()
}

// Pop returns the event with the smallest time, and removes it from the
// queue.
func (q *InsertionQueue) Pop() Event {
	q.lock.Lock()
	evt := q.l.Remove(q.l.Front())
	q.lock.Unlock()
	return evt.(queuedEvent).evt
}

// Len return the number of events in the queue.
func (q *InsertionQueue) Len() int {
	q.lock.RLock()
	l := q.l.Len()
	q.lock.RUnlock()
	return l
}

// Peek returns the event at the front of the queue without removing it from
// the queue.
func (q *InsertionQueue) Peek() Event {
	q.lock.RLock()
	evt := q.l.Front().Value.(queuedEvent).evt
	q.lock.RUnlock()
	return evt
}
