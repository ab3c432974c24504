package hmmlib

import (
	"fmt"
	"math"
	"sort"

	"github.com/jhellinckx/hmmlib/internal/logmath"
)

// DefaultPrecision is the decimal precision used by Round.
const DefaultPrecision = 8

// DiscreteDistribution maps observation symbols to probabilities. The
// stored values are either linear or log probabilities depending on the
// log flag; ToLog and ToLinear flip between the two representations.
//
// Continuous distributions are not modeled: a state either carries a
// discrete distribution or is silent.
type DiscreteDistribution struct {
	probs map[string]float64
	log   bool
}

// NewDiscreteDistribution returns an empty distribution in linear mode.
func NewDiscreteDistribution() *DiscreteDistribution {
	return &DiscreteDistribution{probs: make(map[string]float64)}
}

// NewDiscreteDistributionFrom returns a linear-mode distribution holding
// a copy of the given symbol probabilities.
func NewDiscreteDistributionFrom(probs map[string]float64) *DiscreteDistribution {
	d := NewDiscreteDistribution()
	for symbol, p := range probs {
		d.probs[symbol] = p
	}
	return d
}

// UsesLog reports whether the stored values are log probabilities.
func (d *DiscreteDistribution) UsesLog() bool { return d.log }

// Len returns the number of stored symbols.
func (d *DiscreteDistribution) Len() int { return len(d.probs) }

// Contains reports whether symbol has an entry.
func (d *DiscreteDistribution) Contains(symbol string) bool {
	_, ok := d.probs[symbol]
	return ok
}

// Get returns the stored probability of symbol. A missing symbol is
// materialized with probability zero (linear mode) or -Inf (log mode),
// mirroring map access semantics.
func (d *DiscreteDistribution) Get(symbol string) float64 {
	p, ok := d.probs[symbol]
	if !ok {
		if d.log {
			p = logmath.NegInf
		}
		d.probs[symbol] = p
	}
	return p
}

// Prob returns the stored probability of symbol without materializing
// it. Fails with ErrSymbolNotFound for missing symbols.
func (d *DiscreteDistribution) Prob(symbol string) (float64, error) {
	p, ok := d.probs[symbol]
	if !ok {
		return 0, fmt.Errorf("hmm: %s: %w", symbol, ErrSymbolNotFound)
	}
	return p, nil
}

// Set stores the probability of symbol in the current mode.
func (d *DiscreteDistribution) Set(symbol string, p float64) {
	d.probs[symbol] = p
}

// prob returns the stored probability without materializing missing
// symbols. Missing symbols read as zero mass.
func (d *DiscreteDistribution) prob(symbol string) float64 {
	p, ok := d.probs[symbol]
	if !ok {
		if d.log {
			return logmath.NegInf
		}
		return 0
	}
	return p
}

// ProbSum returns the total mass in the current mode: a plain sum in
// linear mode, a log-space sum in log mode.
func (d *DiscreteDistribution) ProbSum() float64 {
	if d.log {
		sum := logmath.NegInf
		for _, p := range d.probs {
			sum = logmath.SumLogProb(sum, p)
		}
		return sum
	}
	sum := 0.0
	for _, p := range d.probs {
		sum += p
	}
	return sum
}

// ToLog converts the stored values to log probabilities. No-op when
// already in log mode.
func (d *DiscreteDistribution) ToLog() {
	if d.log {
		return
	}
	for symbol, p := range d.probs {
		d.probs[symbol] = math.Log(p)
	}
	d.log = true
}

// ToLinear converts the stored values to linear probabilities. No-op
// when already in linear mode.
func (d *DiscreteDistribution) ToLinear() {
	if !d.log {
		return
	}
	for symbol, p := range d.probs {
		d.probs[symbol] = math.Exp(p)
	}
	d.log = false
}

// LogNormalize switches to log mode and normalizes the total mass to
// one. No-op when the mass already is exactly one.
func (d *DiscreteDistribution) LogNormalize() {
	d.ToLog()
	logSum := d.ProbSum()
	if math.Exp(logSum) == 1.0 {
		return
	}
	for symbol, p := range d.probs {
		d.probs[symbol] = p - logSum
	}
}

// Round rounds every stored value to the given decimal precision.
func (d *DiscreteDistribution) Round(precision int) {
	for symbol, p := range d.probs {
		d.probs[symbol] = logmath.RoundTo(p, precision)
	}
}

// Empty reports whether the distribution has no entries or zero total
// mass in linear space.
func (d *DiscreteDistribution) Empty() bool {
	if len(d.probs) == 0 {
		return true
	}
	if d.log {
		return math.Exp(d.ProbSum()) == 0
	}
	return d.ProbSum() == 0
}

// Clone returns a deep copy.
func (d *DiscreteDistribution) Clone() *DiscreteDistribution {
	c := &DiscreteDistribution{probs: make(map[string]float64, len(d.probs)), log: d.log}
	for symbol, p := range d.probs {
		c.probs[symbol] = p
	}
	return c
}

// Equal reports whether both distributions are in the same mode and
// store the same symbol probabilities.
func (d *DiscreteDistribution) Equal(other *DiscreteDistribution) bool {
	if d == nil || other == nil {
		return d == other
	}
	if d.log != other.log || len(d.probs) != len(other.probs) {
		return false
	}
	for symbol, p := range d.probs {
		q, ok := other.probs[symbol]
		if !ok || p != q {
			return false
		}
	}
	return true
}

// Symbols returns the stored symbols in lexicographic order.
func (d *DiscreteDistribution) Symbols() []string {
	symbols := make([]string, 0, len(d.probs))
	for symbol := range d.probs {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)
	return symbols
}
