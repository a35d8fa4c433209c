package correlation

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// pearson computes the Pearson correlation coefficient of two equal-length
// series. Defined as 0 when either series has zero variance, and clamped to
// [-1, 1] against floating-point drift.
func pearson(xs, ys []float64) float64 {
	n := len(xs)
	if n == 0 || n != len(ys) {
		return 0
	}

	var sumX, sumY float64
	for i := 0; i < n; i++ {
		sumX += xs[i]
		sumY += ys[i]
	}
	meanX := sumX / float64(n)
	meanY := sumY / float64(n)

	var cov, varX, varY float64
	for i := 0; i < n; i++ {
		dx := xs[i] - meanX
		dy := ys[i] - meanY
		cov += dx * dy
		varX += dx * dx
		varY += dy * dy
	}

	if varX == 0 || varY == 0 {
		return 0
	}

	r := cov / math.Sqrt(varX*varY)
	if r > 1 {
		r = 1
	}
	if r < -1 {
		r = -1
	}
	return r
}

// tStatistic converts a coefficient and sample size into Student's t.
func tStatistic(r float64, n int) float64 {
	if n <= 2 {
		return 0
	}
	denom := 1 - r*r
	if denom <= 0 {
		return math.Inf(int(math.Copysign(1, r)))
	}
	return r * math.Sqrt(float64(n-2)) / math.Sqrt(denom)
}

// stepwiseP is the original four-bucket approximation of the two-tailed
// p-value. Kept as the default for parity with previously stored data.
func stepwiseP(t float64) float64 {
	abs := math.Abs(t)
	switch {
	case abs > 2.576:
		return 0.01
	case abs > 1.96:
		return 0.05
	case abs > 1.645:
		return 0.10
	default:
		return 0.20
	}
}

// exactP is the true two-tailed p-value from the Student's-t distribution
// with n-2 degrees of freedom.
func exactP(t float64, n int) float64 {
	if n <= 2 {
		return 1
	}
	if math.IsInf(t, 0) {
		return 0
	}
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(n - 2)}
	return 2 * dist.Survival(math.Abs(t))
}

// significance maps a coefficient and sample size to a p-value using the
// configured mode.
func significance(r float64, n int, exact bool) float64 {
	t := tStatistic(r, n)
	if exact {
		return exactP(t, n)
	}
	return stepwiseP(t)
}
