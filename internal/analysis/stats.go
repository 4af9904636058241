package analysis

import "math"

func Mean(series []float64) float64 {
	if len(series) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range series {
		sum += v
	}
	return sum / float64(len(series))
}

// Variance returns the population variance.
func Variance(series []float64) float64 {
	if len(series) < 2 {
		return 0
	}
	mu := Mean(series)
	sum := 0.0
	for _, v := range series {
		d := v - mu
		sum += d * d
	}
	return sum / float64(len(series))
}

// Burn drops the leading fraction of series. Fractions outside [0, 1) are clamped.
func Burn(series []float64, fraction float64) []float64 {
	if fraction <= 0 || math.IsNaN(fraction) {
		return series
	}
	if fraction >= 1 {
		return series[len(series):]
	}
	return series[int(fraction*float64(len(series))):]
}

// Autocorrelation returns the normalized autocorrelation at lag. A constant
// series is perfectly correlated at every lag.
func Autocorrelation(series []float64, lag int) float64 {
	n := len(series)
	if lag < 0 || lag >= n {
		return 0
	}
	mu := Mean(series)
	variance := Variance(series)
	if variance == 0 {
		return 1
	}
	sum := 0.0
	for i := 0; i+lag < n; i++ {
		sum += (series[i] - mu) * (series[i+lag] - mu)
	}
	return sum / float64(n-lag) / variance
}

// IntegratedAutocorrTime returns 1/2 + Σ ρ(k), summed until ρ first drops to
// zero or maxLag is reached.
func IntegratedAutocorrTime(series []float64, maxLag int) float64 {
	tau := 0.5
	for k := 1; k <= maxLag && k < len(series); k++ {
		rho := Autocorrelation(series, k)
		if rho <= 0 {
			break
		}
		tau += rho
	}
	return tau
}
