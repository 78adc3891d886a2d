package sim

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func testEvent(t VTimeInSec, priority int) *EventBase {
	evt := NewEventBase(t, nil)
	evt.SetPriority(priority)
	return evt
}

var _ = Describe("EventQueue", func() {
	var queues = map[string]func() EventQueue{
		"heap-based":      func() EventQueue { return NewEventQueue() },
		"insertion-based": func() EventQueue { return NewInsertionQueue() },
	}

	for name, newQueue := range queues {
		newQueue := newQueue

		Context(name, func() {
			var q EventQueue

			BeforeEach(func() {
				q = newQueue()
			})

			It("should pop events in time order", func() {
				evt1 := testEvent(4.0, 0)
				evt2 := testEvent(2.0, 0)
				evt3 := testEvent(3.0, 0)

				q.Push(evt1)
				q.Push(evt2)
				q.Push(evt3)

				Expect(q.Len()).To(Equal(3))
				Expect(q.Pop()).To(BeIdenticalTo(evt2))
				Expect(q.Pop()).To(BeIdenticalTo(evt3))
				Expect(q.Pop()).To(BeIdenticalTo(evt1))
			})

			It("should break time ties by priority", func() {
				low := testEvent(2.0, 10)
				high := testEvent(2.0, -1)
				mid := testEvent(2.0, 0)

				q.Push(low)
				q.Push(high)
				q.Push(mid)

				Expect(q.Pop()).To(BeIdenticalTo(high))
				Expect(q.Pop()).To(BeIdenticalTo(mid))
				Expect(q.Pop()).To(BeIdenticalTo(low))
			})

			It("should break priority ties by insertion order", func() {
				first := testEvent(2.0, 0)
				second := testEvent(2.0, 0)
				third := testEvent(2.0, 0)

				q.Push(first)
				q.Push(second)
				q.Push(third)

				Expect(q.Pop()).To(BeIdenticalTo(first))
				Expect(q.Pop()).To(BeIdenticalTo(second))
				Expect(q.Pop()).To(BeIdenticalTo(third))
			})

			It("should peek without removing", func() {
				evt := testEvent(1.0, 0)
				q.Push(evt)

				Expect(q.Peek()).To(BeIdenticalTo(evt))
				Expect(q.Len()).To(Equal(1))
			})
		})
	}
})
