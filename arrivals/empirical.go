package arrivals

import (
	"errors"
	"math"
	"math/rand/v2"
	"sort"
)

// Entry is one (value, weight) pair of an empirical frequency table.
// Weights are historical case counts, not probabilities.
type Entry struct {
	Value  int     `yaml:"value" json:"value"`
	Weight float64 `yaml:"weight" json:"weight"`
}

// EmpiricalDistribution is a discrete distribution defined directly from observed frequency counts.
//
// Values may repeat, their weights then combine implicitly. Sampling draws a value with probability
// weight/totalWeight, using the *rand.Rand supplied at construction, so one seeded source per run
// makes the whole patient stream reproducible.
type EmpiricalDistribution struct {
	name        string
	rng         *rand.Rand
	values      []int
	cumulative  []float64
	totalWeight float64
}

// NewEmpiricalDistribution creates an empty distribution that draws from rng.
func NewEmpiricalDistribution(name string, rng *rand.Rand) *EmpiricalDistribution {
	return &EmpiricalDistribution{
		name: name,
		rng:  rng,
	}
}

// Name returns the descriptive name given at construction.
func (d *EmpiricalDistribution) Name() string {
	return d.name
}

// AddEntry appends one (value, weight) pair.
// A negative, NaN or infinite weight fails with ErrConfiguration.
// Zero weights are accepted, such a value is never drawn.
func (d *EmpiricalDistribution) AddEntry(value int, weight float64) error {
	if math.IsNaN(weight) || math.IsInf(weight, 0) {
		return errors.Join(ErrConfiguration, ErrInvalidWeight)
	}

	if weight < 0 {
		return errors.Join(ErrConfiguration, ErrNegativeWeight)
	}

	d.totalWeight += weight
	d.values = append(d.values, value)
	d.cumulative = append(d.cumulative, d.totalWeight)

	return nil
}

// AddEntries bulk-adds the entries of a static table, stopping at the first invalid one.
func (d *EmpiricalDistribution) AddEntries(entries ...Entry) error {
	for _, entry := range entries {
		if err := d.AddEntry(entry.Value, entry.Weight); err != nil {
			return err
		}
	}

	return nil
}

// Len returns the number of entries.
func (d *EmpiricalDistribution) Len() int {
	return len(d.values)
}

// TotalWeight returns the cumulative weight of all entries.
func (d *EmpiricalDistribution) TotalWeight() float64 {
	return d.totalWeight
}

// Probability returns the probability of drawing value, summing over duplicate entries.
func (d *EmpiricalDistribution) Probability(value int) float64 {
	if d.totalWeight <= 0 {
		return 0
	}

	weight := 0.0
	previous := 0.0
	for i, v := range d.values {
		if v == value {
			weight += d.cumulative[i] - previous
		}
		previous = d.cumulative[i]
	}

	return weight / d.totalWeight
}

// Sample draws one value. It fails with ErrEmptyDistribution when there is nothing to draw from.
func (d *EmpiricalDistribution) Sample() (int, error) {
	if len(d.values) == 0 || d.totalWeight <= 0 {
		return 0, ErrEmptyDistribution
	}

	u := d.rng.Float64() * d.totalWeight

	// first entry whose cumulative weight exceeds u; zero-weight entries are never selected
	idx := sort.Search(len(d.cumulative), func(i int) bool {
		return d.cumulative[i] > u
	})

	if idx == len(d.cumulative) {
		idx = len(d.cumulative) - 1
		for idx > 0 && d.cumulative[idx] == d.cumulative[idx-1] {
			idx--
		}
	}

	return d.values[idx], nil
}
