package stats

import (
	"math"
	"slices"
)

// Distribution summarizes a sample the way a dataframe describe() does.
type Distribution struct {
	Count int     `json:"count"`
	Mean  float64 `json:"mean"`
	Std   float64 `json:"std"`
	Min   float64 `json:"min"`
	P25   float64 `json:"25%"`
	P50   float64 `json:"50%"`
	P75   float64 `json:"75%"`
	Max   float64 `json:"max"`
}

// Describe returns the distribution of values. Std is the sample standard
// deviation and is 0 with fewer than two values. Percentiles interpolate
// linearly between the closest ranks.
func Describe(values []float64) Distribution {
	d := Distribution{Count: len(values)}
	if len(values) == 0 {
		return d
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)

	var sum float64
	for _, v := range sorted {
		sum += v
	}
	d.Mean = sum / float64(len(sorted))
	if len(sorted) > 1 {
		var sq float64
		for _, v := range sorted {
			diff := v - d.Mean
			sq += diff * diff
		}
		d.Std = math.Sqrt(sq / float64(len(sorted)-1))
	}
	d.Min = sorted[0]
	d.Max = sorted[len(sorted)-1]
	d.P25 = quantile(sorted, 0.25)
	d.P50 = quantile(sorted, 0.5)
	d.P75 = quantile(sorted, 0.75)
	return d
}

// quantile expects sorted to be ascending and non-empty.
func quantile(sorted []float64, q float64) float64 {
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}
