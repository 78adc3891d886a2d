package sim

import (
	"strconv"
	"sync/atomic"
)

// IDGenerator generates unique IDs within one simulation.
type IDGenerator interface {
	Generate() string
}

// NewIDGenerator returns a sequential ID generator. Every Simulation owns
// its own generator so that IDs are reproducible run over run.
func NewIDGenerator() IDGenerator {
	return &sequentialIDGenerator{}
}

type sequentialIDGenerator struct {
	nextID uint64
}

func (g *sequentialIDGenerator) Generate() string {
	idNumber := atomic.AddUint64(&g.nextID, 1)
	return strconv.FormatUint(idNumber, 10)
}
