package random

import (
	"log"

	"gonum.org/v1/gonum/stat/distuv"
)

// Uniform samples uniformly from [Lo, Hi).
type Uniform struct {
	dist distuv.Uniform
}

// NewUniform creates a uniform variate over [lo, hi).
func NewUniform(lo, hi float64, opts ...Option) *Uniform {
	if hi < lo {
		log.Panic("uniform upper bound must not be below the lower bound")
	}

	return &Uniform{dist: distuv.Uniform{
		Min: lo,
		Max: hi,
		Src: newSource(opts),
	}}
}

// SetRange changes the bounds, keeping the generator stream.
func (v *Uniform) SetRange(lo, hi float64) {
	if hi < lo {
		log.Panic("uniform upper bound must not be below the lower bound")
	}

	v.dist.Min = lo
	v.dist.Max = hi
}

// Sample returns one draw.
func (v *Uniform) Sample() float64 {
	return v.dist.Rand()
}

// Exponential samples from the exponential distribution with the given
// mean.
type Exponential struct {
	dist distuv.Exponential
}

// NewExponential creates an exponential variate with the given mean.
func NewExponential(mean float64, opts ...Option) *Exponential {
	if mean <= 0 {
		log.Panic("exponential mean must be positive")
	}

	return &Exponential{dist: distuv.Exponential{
		Rate: 1 / mean,
		Src:  newSource(opts),
	}}
}

// Mean returns the configured mean.
func (v *Exponential) Mean() float64 {
	return 1 / v.dist.Rate
}

// SetMean changes the mean, keeping the generator stream.
func (v *Exponential) SetMean(mean float64) {
	if mean <= 0 {
		log.Panic("exponential mean must be positive")
	}

	v.dist.Rate = 1 / mean
}

// Sample returns one draw.
func (v *Exponential) Sample() float64 {
	return v.dist.Rand()
}

// Triangular samples from the triangular distribution over [lo, hi] with
// the given mode.
type Triangular struct {
	dist distuv.Triangle
}

// NewTriangular creates a triangular variate. It requires
// lo <= mode <= hi and lo < hi.
func NewTriangular(lo, mode, hi float64, opts ...Option) *Triangular {
	if lo >= hi || mode < lo || mode > hi {
		log.Panic("triangular parameters must satisfy lo <= mode <= hi, lo < hi")
	}

	return &Triangular{dist: distuv.NewTriangle(lo, hi, mode, newSource(opts))}
}

// Sample returns one draw.
func (v *Triangular) Sample() float64 {
	return v.dist.Rand()
}

// Normal samples from the normal distribution.
type Normal struct {
	dist distuv.Normal
}

// NewNormal creates a normal variate with the given mean and standard
// deviation.
func NewNormal(mean, stdev float64, opts ...Option) *Normal {
	if stdev <= 0 {
		log.Panic("normal standard deviation must be positive")
	}

	return &Normal{dist: distuv.Normal{
		Mu:    mean,
		Sigma: stdev,
		Src:   newSource(opts),
	}}
}

// SetParams changes the mean and standard deviation, keeping the generator
// stream.
func (v *Normal) SetParams(mean, stdev float64) {
	if stdev <= 0 {
		log.Panic("normal standard deviation must be positive")
	}

	v.dist.Mu = mean
	v.dist.Sigma = stdev
}

// Sample returns one draw.
func (v *Normal) Sample() float64 {
	return v.dist.Rand()
}

// LogNormal samples a value whose logarithm is normally distributed with
// parameters Mu and Sigma.
type LogNormal struct {
	dist distuv.LogNormal
}

// NewLogNormal creates a log-normal variate.
func NewLogNormal(mu, sigma float64, opts ...Option) *LogNormal {
	if sigma <= 0 {
		log.Panic("log-normal sigma must be positive")
	}

	return &LogNormal{dist: distuv.LogNormal{
		Mu:    mu,
		Sigma: sigma,
		Src:   newSource(opts),
	}}
}

// Sample returns one draw.
func (v *LogNormal) Sample() float64 {
	return v.dist.Rand()
}

// Gamma samples from the gamma distribution with the given shape and scale.
type Gamma struct {
	dist distuv.Gamma
}

// NewGamma creates a gamma variate.
func NewGamma(shape, scale float64, opts ...Option) *Gamma {
	if shape <= 0 || scale <= 0 {
		log.Panic("gamma shape and scale must be positive")
	}

	return &Gamma{dist: distuv.Gamma{
		Alpha: shape,
		Beta:  1 / scale,
		Src:   newSource(opts),
	}}
}

// Sample returns one draw.
func (v *Gamma) Sample() float64 {
	return v.dist.Rand()
}

// Erlang samples from the Erlang distribution: the sum of k exponential
// phases with the given total mean.
type Erlang struct {
	dist distuv.Gamma
}

// NewErlang creates an Erlang variate with k phases and total mean mean.
func NewErlang(k int, mean float64, opts ...Option) *Erlang {
	if k < 1 {
		log.Panic("erlang phase count must be at least 1")
	}

	if mean <= 0 {
		log.Panic("erlang mean must be positive")
	}

	return &Erlang{dist: distuv.Gamma{
		Alpha: float64(k),
		Beta:  float64(k) / mean,
		Src:   newSource(opts),
	}}
}

// Sample returns one draw.
func (v *Erlang) Sample() float64 {
	return v.dist.Rand()
}
