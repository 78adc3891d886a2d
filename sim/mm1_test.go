package sim

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/desimlab/desim/random"
)

// mmcModel is an M/M/c station. Customers pass through an unbounded system
// queue for sojourn accounting and seize one of c servers for an
// exponential service time.
type mmcModel struct {
	seed             uint64
	interArrivalMean float64
	serviceMean      float64
	servers          int
	customers        int
}

func (m *mmcModel) Setup(s *Simulation) {
	system := s.NewQueue("system", Unlimited)
	servers := s.NewQueue("servers", m.servers)
	service := random.NewExponential(m.serviceMean, random.WithSeed(m.seed+1))

	s.Generate("arrivals", func() Entity {
		return &scripted{script: func(p *Proc) {
			p.Enter(system)
			p.Enter(servers)
			p.Delay(VTimeInSec(service.Sample()))
			p.Leave(servers)
			p.Leave(system)
		}}
	}, random.NewExponential(m.interArrivalMean, random.WithSeed(m.seed)), m.customers)
}

var _ = Describe("Queueing behavior", func() {
	It("should keep an M/M/1 server busy at about the offered load", func() {
		model := &mmcModel{
			seed:             1701,
			interArrivalMean: 16,
			serviceMean:      8,
			servers:          1,
			customers:        20000,
		}

		s := NewSimulation(model)
		Expect(s.Start()).To(Succeed())
		Expect(s.State()).To(Equal(StateFinished))
		Expect(s.EntitiesFinished()).To(Equal(20000))

		servers := s.QueueByName("servers")
		Expect(servers.Utilization()).To(BeNumerically("~", 0.5, 0.1))

		// Mean service time is measured directly by the server dwell.
		Expect(float64(servers.AverageDwell())).
			To(BeNumerically("~", 8, 1.0))
	})

	It("should share load across M/M/2 servers", func() {
		model := &mmcModel{
			seed:             42,
			interArrivalMean: 80,
			serviceMean:      100,
			servers:          2,
			customers:        10000,
		}

		s := NewSimulation(model)
		Expect(s.Start()).To(Succeed())
		Expect(s.EntitiesFinished()).To(Equal(10000))

		servers := s.QueueByName("servers")

		// Offered load 100/80 = 1.25 over two servers.
		Expect(servers.Utilization()).To(BeNumerically("~", 0.625, 0.1))
		Expect(servers.MaxLength()).To(BeNumerically("<=", 2))
	})

	It("should satisfy Little's law on the system queue", func() {
		model := &mmcModel{
			seed:             7,
			interArrivalMean: 16,
			serviceMean:      8,
			servers:          1,
			customers:        20000,
		}

		s := NewSimulation(model)
		Expect(s.Start()).To(Succeed())

		system := s.QueueByName("system")
		span := float64(s.Now())
		Expect(span).To(BeNumerically(">", 0))

		throughput := float64(system.TotalCount()) / span
		predicted := throughput * float64(system.AverageDwell())

		// Every customer leaves before the run ends, so the identity
		// holds up to accumulator rounding.
		Expect(system.AverageLength()).
			To(BeNumerically("~", predicted, 0.05*predicted))
	})

	It("should queue nobody when capacity is unlimited", func() {
		var model modelFunc = func(s *Simulation) {
			pool := s.NewQueue("pool", Unlimited)
			service := random.NewExponential(8, random.WithSeed(3))

			s.Generate("arrivals", func() Entity {
				return &scripted{script: func(p *Proc) {
					p.EnterImmediately(pool)
					p.Delay(VTimeInSec(service.Sample()))
					p.Leave(pool)
				}}
			}, random.NewExponential(2, random.WithSeed(2)), 2000)
		}

		s := NewSimulation(model)
		Expect(s.Start()).To(Succeed())

		pool := s.QueueByName("pool")
		Expect(pool.TotalCount()).To(Equal(2000))
		Expect(pool.WaitingCount()).To(Equal(0))
	})
})
