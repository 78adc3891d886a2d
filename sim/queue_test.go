package sim

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// recordingHook collects the hook positions it is invoked at.
type recordingHook struct {
	positions []*HookPos
}

func (h *recordingHook) Func(ctx HookCtx) {
	h.positions = append(h.positions, ctx.Pos)
}

var _ = Describe("Queue", func() {
	It("should admit without waiting while below capacity", func() {
		var enterTimes []VTimeInSec

		model := modelFunc(func(s *Simulation) {
			q := s.NewQueue("pool", 3)

			for i := 0; i < 3; i++ {
				s.Activate(&scripted{script: func(p *Proc) {
					p.Enter(q)
					enterTimes = append(enterTimes, p.Now())
					p.Delay(10)
					p.Leave(q)
				}})
			}
		})

		s := NewSimulation(model)
		Expect(s.Start()).To(Succeed())

		Expect(enterTimes).To(Equal([]VTimeInSec{0, 0, 0}))
	})

	It("should block entrants at capacity until someone leaves", func() {
		var admittedAt VTimeInSec

		model := modelFunc(func(s *Simulation) {
			q := s.NewQueue("server", 1)

			s.Activate(&scripted{script: func(p *Proc) {
				p.Enter(q)
				p.Delay(5)
				p.Leave(q)
			}})

			s.ActivateAt(&scripted{script: func(p *Proc) {
				p.Enter(q)
				admittedAt = p.Now()
				p.Leave(q)
			}}, 1)
		})

		s := NewSimulation(model)
		Expect(s.Start()).To(Succeed())

		Expect(admittedAt).To(Equal(VTimeInSec(5)))
	})

	It("should admit waiters by priority, then arrival order", func() {
		var order []string

		entrant := func(name string, prio int, q *Queue) Entity {
			return &scripted{priority: prio, script: func(p *Proc) {
				p.Enter(q)
				order = append(order, name)
				p.Delay(1)
				p.Leave(q)
			}}
		}

		model := modelFunc(func(s *Simulation) {
			q := s.NewQueue("server", 1)

			s.Activate(&scripted{script: func(p *Proc) {
				p.Enter(q)
				p.Delay(10)
				p.Leave(q)
			}})

			s.ActivateAt(entrant("lowA", 5, q), 1)
			s.ActivateAt(entrant("high", 1, q), 2)
			s.ActivateAt(entrant("lowB", 5, q), 3)
		})

		s := NewSimulation(model)
		Expect(s.Start()).To(Succeed())

		Expect(order).To(Equal([]string{"high", "lowA", "lowB"}))
	})

	It("should never admit into a zero-capacity queue", func() {
		var canEnter bool

		model := modelFunc(func(s *Simulation) {
			q := s.NewQueue("closed", 0)

			s.Activate(&scripted{script: func(p *Proc) {
				canEnter = q.CanEnter()
			}})
		})

		s := NewSimulation(model)
		Expect(s.Start()).To(Succeed())

		Expect(canEnter).To(BeFalse())
	})

	It("should admit pending waiters when capacity grows", func() {
		var admittedAt VTimeInSec

		model := modelFunc(func(s *Simulation) {
			q := s.NewQueue("server", 1)

			s.Activate(&scripted{script: func(p *Proc) {
				p.Enter(q)
				p.Delay(100)
				p.Leave(q)
			}})

			s.ActivateAt(&scripted{script: func(p *Proc) {
				p.Enter(q)
				admittedAt = p.Now()
				p.Leave(q)
			}}, 1)

			s.ActivateAt(&scripted{script: func(p *Proc) {
				q.SetCapacity(2)
			}}, 3)
		})

		s := NewSimulation(model)
		Expect(s.Start()).To(Succeed())

		Expect(admittedAt).To(Equal(VTimeInSec(3)))
	})

	It("should panic on immediate entry into a full queue", func() {
		var recovered any

		model := modelFunc(func(s *Simulation) {
			q := s.NewQueue("server", 1)

			s.Activate(&scripted{script: func(p *Proc) {
				p.Enter(q)
				p.Delay(5)
				p.Leave(q)
			}})

			s.ActivateAt(&scripted{script: func(p *Proc) {
				defer func() { recovered = recover() }()
				p.EnterImmediately(q)
			}}, 1)
		})

		s := NewSimulation(model)
		Expect(s.Start()).To(Succeed())

		Expect(recovered).ToNot(BeNil())
	})

	It("should panic when entering the same queue twice", func() {
		var recovered any

		model := modelFunc(func(s *Simulation) {
			q := s.NewQueue("pool", 2)

			s.Activate(&scripted{script: func(p *Proc) {
				defer func() { recovered = recover() }()
				p.Enter(q)
				p.Enter(q)
			}})
		})

		s := NewSimulation(model)
		Expect(s.Start()).To(Succeed())

		Expect(recovered).ToNot(BeNil())
	})

	It("should panic when leaving a queue the process never entered", func() {
		var recovered any

		model := modelFunc(func(s *Simulation) {
			q := s.NewQueue("pool", 2)

			s.Activate(&scripted{script: func(p *Proc) {
				defer func() { recovered = recover() }()
				p.Leave(q)
			}})
		})

		s := NewSimulation(model)
		Expect(s.Start()).To(Succeed())

		Expect(recovered).ToNot(BeNil())
	})

	It("should panic when two queues share a name", func() {
		model := modelFunc(func(s *Simulation) {
			s.NewQueue("pool", 2)
			s.NewQueue("pool", 3)
		})

		s := NewSimulation(model)
		Expect(func() { _ = s.Start() }).To(Panic())
	})

	It("should accumulate dwell and population statistics", func() {
		model := modelFunc(func(s *Simulation) {
			q := s.NewQueue("server", 1)

			s.Activate(&scripted{script: func(p *Proc) {
				p.Enter(q)
				p.Delay(5)
				p.Leave(q)
			}})
		})

		s := NewSimulation(model)
		s.SetEndTime(10)
		Expect(s.Start()).To(Succeed())

		q := s.QueueByName("server")
		Expect(q.TotalCount()).To(Equal(1))
		Expect(float64(q.AverageDwell())).To(Equal(5.0))
		Expect(float64(q.MaxDwell())).To(Equal(5.0))
		Expect(q.MaxLength()).To(Equal(1.0))

		// Occupied for 5 of the 10 simulated time units.
		Expect(q.AverageLength()).To(Equal(0.5))
		Expect(q.Utilization()).To(Equal(0.5))
	})

	It("should measure dwell from admission, not from the enter request", func() {
		model := modelFunc(func(s *Simulation) {
			q := s.NewQueue("server", 1)

			s.Activate(&scripted{script: func(p *Proc) {
				p.Enter(q)
				p.Delay(4)
				p.Leave(q)
			}})

			// Waits from t=0 to t=4, occupies from t=4 to t=6.
			s.Activate(&scripted{priority: 1, script: func(p *Proc) {
				p.Enter(q)
				p.Delay(2)
				p.Leave(q)
			}})
		})

		s := NewSimulation(model)
		Expect(s.Start()).To(Succeed())

		q := s.QueueByName("server")
		Expect(q.TotalCount()).To(Equal(2))
		Expect(float64(q.AverageDwell())).To(Equal(3.0))
		Expect(q.AverageLength()).To(Equal(1.0))
	})

	It("should report a zero dwell for enter-then-leave without delay", func() {
		var (
			enteredAt VTimeInSec
			leftAt    VTimeInSec
		)

		model := modelFunc(func(s *Simulation) {
			q := s.NewQueue("checkpoint", Unlimited)

			s.Activate(&scripted{script: func(p *Proc) {
				p.Enter(q)
				enteredAt = p.Now()
				p.Leave(q)
				leftAt = p.Now()
			}})
		})

		s := NewSimulation(model)
		Expect(s.Start()).To(Succeed())

		Expect(enteredAt).To(Equal(leftAt))

		q := s.QueueByName("checkpoint")
		Expect(float64(q.AverageDwell())).To(Equal(0.0))
	})

	It("should track membership through Contains and Len", func() {
		var (
			during  bool
			after   bool
			lenSeen int
		)

		model := modelFunc(func(s *Simulation) {
			q := s.NewQueue("pool", 2)

			s.Activate(&scripted{script: func(p *Proc) {
				p.Enter(q)
				during = q.Contains(p)
				lenSeen = q.Len()
				p.Leave(q)
				after = q.Contains(p)
			}})
		})

		s := NewSimulation(model)
		Expect(s.Start()).To(Succeed())

		Expect(during).To(BeTrue())
		Expect(lenSeen).To(Equal(1))
		Expect(after).To(BeFalse())
	})

	It("should invoke enter and leave hooks", func() {
		hook := &recordingHook{}

		model := modelFunc(func(s *Simulation) {
			q := s.NewQueue("pool", 1)
			q.AcceptHook(hook)

			s.Activate(&scripted{script: func(p *Proc) {
				p.Enter(q)
				p.Delay(1)
				p.Leave(q)
			}})
		})

		s := NewSimulation(model)
		Expect(s.Start()).To(Succeed())

		Expect(hook.positions).To(Equal([]*HookPos{
			HookPosQueueEnter,
			HookPosQueueLeave,
		}))
	})

	It("should support preemption through DelayOrWait and SendSignal", func() {
		var (
			served  VTimeInSec
			resumed VTimeInSec
		)

		model := modelFunc(func(s *Simulation) {
			q := s.NewQueue("machine", 1)

			// Low-priority job with 10 units of work, preempted at t=4.
			s.Activate(&scripted{priority: 5, script: func(p *Proc) {
				p.Enter(q)
				remaining := VTimeInSec(10)
				for remaining > 0 {
					elapsed := p.DelayOrWait(remaining, q)
					remaining -= elapsed
					if remaining > 0 {
						p.Leave(q)
						p.Enter(q)
					}
				}
				served = p.Now()
				p.Leave(q)
			}})

			// High-priority job arrives at t=4 and seizes the machine.
			s.ActivateAt(&scripted{priority: 1, script: func(p *Proc) {
				p.Sim().SendSignal(q)
				p.Enter(q)
				p.Delay(3)
				p.Leave(q)
				resumed = p.Now()
			}}, 4)
		})

		s := NewSimulation(model)
		Expect(s.Start()).To(Succeed())

		// 4 units before preemption, 3 units preempted, 6 remaining.
		Expect(resumed).To(Equal(VTimeInSec(7)))
		Expect(served).To(Equal(VTimeInSec(13)))
		Expect(s.QueueByName("machine").TotalCount()).To(Equal(3))
	})
})
