// Package stats provides the exact-test and p-value-combination primitives
// behind enrichment scoring.
package stats

import (
	"fmt"
	"math"
)

// FisherExact computes the one-sided (over-representation) Fisher exact test
// p-value for the 2x2 contingency table
//
//	a  b
//	c  d
//
// where a counts entities in both the cluster and the annotation group. The
// p-value is the hypergeometric upper tail P(X >= a). gonum's distuv has no
// hypergeometric distribution, so the pmf is evaluated directly in log space
// with math.Lgamma; every term is exact up to floating-point rounding.
func FisherExact(a, b, c, d int) (float64, error) {
	if a < 0 || b < 0 || c < 0 || d < 0 {
		return 0, fmt.Errorf("contingency counts must be non-negative, got (%d,%d,%d,%d)", a, b, c, d)
	}

	n := a + b + c + d
	if n == 0 {
		return 1, nil
	}

	groupSize := a + c   // successes in the universe
	clusterSize := a + b // draws

	upper := clusterSize
	if groupSize < upper {
		upper = groupSize
	}

	p := 0.0
	for i := a; i <= upper; i++ {
		p += hypergeomPMF(i, n, groupSize, clusterSize)
	}
	if p > 1 {
		p = 1
	}
	if p <= 0 {
		// tail smaller than machine epsilon; report the smallest positive value
		p = math.SmallestNonzeroFloat64
	}
	return p, nil
}

// hypergeomPMF evaluates P(X = k) for X ~ Hypergeometric(N, K, n) via log
// factorials: C(K,k) * C(N-K,n-k) / C(N,n).
func hypergeomPMF(k, N, K, n int) float64 {
	if k < 0 || k > n || k > K || n-k > N-K {
		return 0
	}
	logP := logChoose(K, k) + logChoose(N-K, n-k) - logChoose(N, n)
	return math.Exp(logP)
}

func logChoose(n, k int) float64 {
	if k < 0 || k > n {
		return math.Inf(-1)
	}
	return lgamma(float64(n+1)) - lgamma(float64(k+1)) - lgamma(float64(n-k+1))
}

func lgamma(x float64) float64 {
	v, _ := math.Lgamma(x)
	return v
}
