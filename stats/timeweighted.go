package stats

// A TimeWeighted accumulates a value that is held over time, weighting each
// recorded value by how long it was held. It reports the area under the
// curve divided by the observed span, which is what population and
// utilization statistics need.
type TimeWeighted struct {
	started bool
	startAt float64
	lastAt  float64
	current float64
	area    float64

	count int
	min   float64
	max   float64

	hist *histogram
}

// NewTimeWeighted creates an empty TimeWeighted accumulator. Observation
// starts at the time of the first Record call.
func NewTimeWeighted() *TimeWeighted {
	return &TimeWeighted{}
}

// EnableHistogram adds histogram binning weighted by holding time.
func (t *TimeWeighted) EnableHistogram(binSize, lower, upper float64) {
	t.hist = newHistogram(binSize, lower, upper)
}

// accrue charges the current value for the span since the last accrual.
func (t *TimeWeighted) accrue(now float64) {
	if now <= t.lastAt {
		return
	}

	span := now - t.lastAt
	t.area += t.current * span

	if t.hist != nil {
		t.hist.add(t.current, span)
	}

	t.lastAt = now
}

// Record sets the held value at time now. The previously held value is
// charged for the span it was held.
func (t *TimeWeighted) Record(v, now float64) {
	if !t.started {
		t.started = true
		t.startAt = now
		t.lastAt = now
		t.current = v
		t.min = v
		t.max = v
		t.count = 1

		return
	}

	t.accrue(now)

	t.current = v
	t.count++

	if v < t.min {
		t.min = v
	}

	if v > t.max {
		t.max = v
	}
}

// Close charges the held value up to time now without recording a new one.
// It is idempotent and keeps later Average calls consistent with the
// histogram.
func (t *TimeWeighted) Close(now float64) {
	if !t.started {
		return
	}

	t.accrue(now)
}

// Average returns the time-weighted mean of the held value from the first
// Record up to now, or 0 before any observation.
func (t *TimeWeighted) Average(now float64) float64 {
	if !t.started || now <= t.startAt {
		return 0
	}

	pending := 0.0
	if now > t.lastAt {
		pending = t.current * (now - t.lastAt)
	}

	return (t.area + pending) / (now - t.startAt)
}

// Current returns the value held right now.
func (t *TimeWeighted) Current() float64 {
	return t.current
}

// Count returns the number of Record calls.
func (t *TimeWeighted) Count() int {
	return t.count
}

// Min returns the smallest recorded value, or 0 before any observation.
func (t *TimeWeighted) Min() float64 {
	return t.min
}

// Max returns the largest recorded value, or 0 before any observation.
func (t *TimeWeighted) Max() float64 {
	return t.max
}

// Bins returns the histogram bins, or nil when no histogram is enabled.
func (t *TimeWeighted) Bins() []Bin {
	if t.hist == nil {
		return nil
	}

	return t.hist.bins()
}
