package effects

import (
	opensimplex "github.com/ojrac/opensimplex-go"
)

// Weather is a slowly drifting chaos level in [0, 1]. Ambient effects
// cluster into storms and calms instead of firing uniformly.
type Weather struct {
	noise     opensimplex.Noise
	frequency float64
}

// NewWeather creates a weather curve from seed.
func NewWeather(seed int64) *Weather {
	return &Weather{noise: opensimplex.NewNormalized(seed), frequency: 0.05}
}

// At returns the weather at an engine tick.
func (w *Weather) At(tick uint64) float64 {
	return octaveNoise(w.noise, float64(tick), 0, 3, w.frequency, 0.5)
}

// octaveNoise generates fractal noise by layering multiple frequencies.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}
