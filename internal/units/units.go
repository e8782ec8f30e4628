// Package units holds the unit conversions the normalization pipeline
// relies on: power scale corrections and power-to-energy integration over
// a fixed sampling interval.
package units

import (
	"math"
	"time"
)

func KilowattsToWatts(kw float64) float64 {
	return kw * 1000
}

func WattsToKilowatts(w float64) float64 {
	return w / 1000
}

// EnergyKWh integrates average power in watts over one sampling interval
// and returns kilowatt-hours. NaN power yields NaN energy.
func EnergyKWh(powerW float64, interval time.Duration) float64 {
	if math.IsNaN(powerW) {
		return math.NaN()
	}
	return powerW * interval.Hours() / 1000
}

// EnergyKWhSeries applies EnergyKWh to a whole power series.
func EnergyKWhSeries(powerW []float64, interval time.Duration) []float64 {
	out := make([]float64, len(powerW))
	for i, p := range powerW {
		out[i] = EnergyKWh(p, interval)
	}
	return out
}
