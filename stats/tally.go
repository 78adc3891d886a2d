// Package stats provides the incremental statistics accumulators that make
// simulation output meaningful: a per-event Tally and a time-weighted
// variant, both with optional histograms. Accumulators never store raw
// samples.
package stats

import (
	"log"
	"math"
)

// A Bin is one histogram bin. Weight is a sample count for a Tally and an
// amount of holding time for a TimeWeighted.
type Bin struct {
	Lower  float64
	Upper  float64
	Weight float64
}

type histogram struct {
	binSize float64
	lower   float64
	upper   float64
	weights []float64
}

func newHistogram(binSize, lower, upper float64) *histogram {
	if binSize <= 0 {
		log.Panic("histogram bin size must be positive")
	}

	if upper <= lower {
		log.Panic("histogram upper bound must be above the lower bound")
	}

	n := int(math.Ceil((upper - lower) / binSize))

	return &histogram{
		binSize: binSize,
		lower:   lower,
		upper:   upper,
		weights: make([]float64, n),
	}
}

// add clips values outside [lower, upper] into the first and last bin.
func (h *histogram) add(v, weight float64) {
	i := int(math.Floor((v - h.lower) / h.binSize))

	if i < 0 {
		i = 0
	}

	if i >= len(h.weights) {
		i = len(h.weights) - 1
	}

	h.weights[i] += weight
}

func (h *histogram) bins() []Bin {
	bins := make([]Bin, len(h.weights))
	for i, w := range h.weights {
		bins[i] = Bin{
			Lower:  h.lower + float64(i)*h.binSize,
			Upper:  h.lower + float64(i+1)*h.binSize,
			Weight: w,
		}
	}

	return bins
}

// A Tally accumulates count, mean, variance, minimum, and maximum of a
// sample stream in O(1) per sample.
type Tally struct {
	count int
	sum   float64
	sumSq float64
	min   float64
	max   float64

	hist *histogram
}

// NewTally creates an empty Tally.
func NewTally() *Tally {
	return &Tally{}
}

// EnableHistogram adds histogram binning to the tally. Values outside
// [lower, upper] clip into the first and last bin.
func (t *Tally) EnableHistogram(binSize, lower, upper float64) {
	t.hist = newHistogram(binSize, lower, upper)
}

// Add records one sample.
func (t *Tally) Add(v float64) {
	if t.count == 0 {
		t.min = v
		t.max = v
	}

	t.count++
	t.sum += v
	t.sumSq += v * v

	if v < t.min {
		t.min = v
	}

	if v > t.max {
		t.max = v
	}

	if t.hist != nil {
		t.hist.add(v, 1)
	}
}

// Count returns the number of samples recorded.
func (t *Tally) Count() int {
	return t.count
}

// Sum returns the sum of all samples.
func (t *Tally) Sum() float64 {
	return t.sum
}

// Average returns the sample mean, or 0 before the first sample.
func (t *Tally) Average() float64 {
	if t.count == 0 {
		return 0
	}

	return t.sum / float64(t.count)
}

// Variance returns the sample variance, or 0 with fewer than two samples.
func (t *Tally) Variance() float64 {
	if t.count < 2 {
		return 0
	}

	n := float64(t.count)
	mean := t.sum / n
	v := (t.sumSq - n*mean*mean) / (n - 1)

	// Cancellation can push a near-zero variance slightly negative.
	if v < 0 {
		return 0
	}

	return v
}

// Stdev returns the sample standard deviation.
func (t *Tally) Stdev() float64 {
	return math.Sqrt(t.Variance())
}

// Min returns the smallest sample, or 0 before the first sample.
func (t *Tally) Min() float64 {
	return t.min
}

// Max returns the largest sample, or 0 before the first sample.
func (t *Tally) Max() float64 {
	return t.max
}

// Bins returns the histogram bins, or nil when no histogram is enabled.
func (t *Tally) Bins() []Bin {
	if t.hist == nil {
		return nil
	}

	return t.hist.bins()
}

// Reset discards all recorded samples, keeping the histogram configuration.
func (t *Tally) Reset() {
	hist := t.hist
	*t = Tally{}

	if hist != nil {
		t.hist = newHistogram(hist.binSize, hist.lower, hist.upper)
	}
}
