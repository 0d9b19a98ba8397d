package stats

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// CombinePValues aggregates independent p-values into one test statistic with
// Fisher's combined probability method: -2*sum(ln p_i) follows a chi-squared
// distribution with 2n degrees of freedom under the joint null. An empty
// input combines to 1, the "no evidence" value.
func CombinePValues(ps []float64) float64 {
	if len(ps) == 0 {
		return 1
	}

	chi2 := 0.0
	for _, p := range ps {
		if p <= 0 {
			p = math.SmallestNonzeroFloat64
		}
		if p > 1 {
			p = 1
		}
		chi2 += -2 * math.Log(p)
	}

	dist := distuv.ChiSquared{K: float64(2 * len(ps))}
	combined := dist.Survival(chi2)
	if combined <= 0 {
		combined = math.SmallestNonzeroFloat64
	}
	if combined > 1 {
		combined = 1
	}
	return combined
}
