// Package opportunity turns external signals into a single 0-100 demand score.
package opportunity

import (
	"math"

	"github.com/kosarica/grooming-service/internal/types"
)

// Weights of each factor in the total score
const (
	WeatherWeight = 0.4
	TrafficWeight = 0.2
	TrendWeight   = 0.4
)

// Level buckets the total score
type Level string

const (
	LevelHigh    Level = "high"
	LevelNeutral Level = "neutral"
	LevelLow     Level = "low"
)

const (
	highThreshold = 80
	lowThreshold  = 40
)

// Factors are the per-signal sub-scores
type Factors struct {
	Weather int `json:"weather"`
	Traffic int `json:"traffic"`
	Trend   int `json:"trend"`
}

// Result is the scored opportunity with a recommendation for the front desk
type Result struct {
	Score          int     `json:"score"`
	Level          Level   `json:"level"`
	Factors        Factors `json:"factors"`
	Recommendation string  `json:"recommendation"`
}

// WeatherScore starts at 100 and subtracts penalties for cold, heat, rain and
// strong sun. The result is clamped to [0, 100].
func WeatherScore(w types.Weather) int {
	score := 100
	if w.TemperatureC < 10 {
		score -= 20
	}
	if w.TemperatureC > 35 {
		score -= 15
	}
	if w.PrecipitationMM > 5 {
		score -= 30
	}
	if w.UVIndex > 8 {
		score -= 5
	}
	return clamp(score)
}

// TrafficScore maps a congestion level to a sub-score. Unknown levels score
// as medium.
func TrafficScore(level types.TrafficLevel) int {
	switch level {
	case types.TrafficLow:
		return 100
	case types.TrafficHigh:
		return 30
	default:
		return 60
	}
}

// Score combines the three signals. Trend interest is taken as-is.
func Score(w types.Weather, t types.Traffic, tr types.Trends) Result {
	f := Factors{
		Weather: WeatherScore(w),
		Traffic: TrafficScore(t.Level),
		Trend:   tr.Interest,
	}

	total := int(math.Round(
		WeatherWeight*float64(f.Weather) +
			TrafficWeight*float64(f.Traffic) +
			TrendWeight*float64(f.Trend),
	))

	r := Result{Score: total, Factors: f}
	switch {
	case total > highThreshold:
		r.Level = LevelHigh
		r.Recommendation = "Alta demanda esperada: abre espacios extra y refuerza el personal de recepción."
	case total < lowThreshold:
		r.Level = LevelLow
		r.Recommendation = "Baja demanda esperada: lanza una promoción o contacta a clientes inactivos."
	default:
		r.Level = LevelNeutral
		r.Recommendation = "Demanda normal: mantén la agenda habitual."
	}
	return r
}

func clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
