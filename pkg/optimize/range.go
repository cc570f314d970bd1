package optimize

import (
	"math"

	"github.com/matzehuels/forcelayout/pkg/errors"
)

// MaxRates bounds the number of cooling rates a single sweep evaluates.
const MaxRates = 10000

// Range is the set of cooling rates to evaluate and how many samples to run
// for each.
type Range struct {
	From       float64 `json:"from" toml:"from" yaml:"from" validate:"gt=0,lt=1"`
	To         float64 `json:"to" toml:"to" yaml:"to" validate:"gt=0,lt=1,gtefield=From"`
	Step       float64 `json:"step" toml:"step" yaml:"step" validate:"gt=0,lt=1"`
	SampleSize int     `json:"sample_size" toml:"sample_size" yaml:"sample_size" validate:"gte=1"`
}

// DefaultRange matches the interactive defaults of the optimizer.
func DefaultRange() Range {
	return Range{From: 0.005, To: 0.99, Step: 0.001, SampleSize: 25}
}

// Validate reports the first invalid field as an INVALID_RANGE error.
func (r Range) Validate() error {
	if err := errors.ValidateStruct(errors.ErrCodeInvalidRange, r); err != nil {
		return err
	}
	if r.count() > MaxRates {
		return errors.Field(errors.ErrCodeInvalidRange, "step",
			"step %g yields more than %d rates", r.Step, MaxRates)
	}
	return nil
}

// Rates returns the cooling rates of r in ascending order. Every rate is
// From + i·Step rounded to nine decimals, so accumulated floating-point
// error neither skips To nor overshoots it.
func (r Range) Rates() []float64 {
	n := r.count()
	rates := make([]float64, n)
	for i := range n {
		rates[i] = roundRate(r.From + float64(i)*r.Step)
	}
	return rates
}

// count returns the number of rates in r, or MaxRates+1 when the range is
// too fine to represent.
func (r Range) count() int {
	q := math.Floor((r.To-r.From)/r.Step + 1e-9)
	if !(q < MaxRates) {
		return MaxRates + 1
	}
	return int(q) + 1
}

func roundRate(x float64) float64 {
	return math.Round(x*1e9) / 1e9
}
