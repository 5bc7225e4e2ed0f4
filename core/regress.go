package core

// linearRegression fits candidate = slope*reference + intercept by ordinary
// least squares and returns the fit along with the squared Pearson
// correlation coefficient.
//
// The sums of squares are accumulated in two passes (means first, then
// centered second moments): slope = Sxy/Sxx, intercept = ybar - slope*xbar,
// r2 = Sxy^2/(Sxx*Syy). Degenerate inputs (fewer than two points, zero
// variance in x or y) return the 0, 0, 0 sentinel so callers get a failing
// fit instead of NaN.
func linearRegression(x, y []float64) (slope, intercept, rSquared float64) {
	n := len(x)
	if n < 2 || len(y) != n {
		return 0, 0, 0
	}

	var sumX, sumY float64
	for i := range x {
		sumX += x[i]
		sumY += y[i]
	}
	meanX := sumX / float64(n)
	meanY := sumY / float64(n)

	var sxx, syy, sxy float64
	for i := range x {
		dx := x[i] - meanX
		dy := y[i] - meanY
		sxx += dx * dx
		syy += dy * dy
		sxy += dx * dy
	}

	if sxx == 0 || syy == 0 {
		return 0, 0, 0
	}

	slope = sxy / sxx
	intercept = meanY - slope*meanX
	rSquared = (sxy * sxy) / (sxx * syy)
	return slope, intercept, rSquared
}
