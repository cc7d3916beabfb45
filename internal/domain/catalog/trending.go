package catalog

import (
	"math"
	"time"
)

// TrendingScore decays popularity by age in hours:
//
//	ln(1 + max(0, popularity)) / max(1, ageHours)^1.5
//
// A zero updatedAt counts as now, so the age floors to one hour.
func TrendingScore(popularity int64, updatedAt, now time.Time) float64 {
	if updatedAt.IsZero() {
		updatedAt = now
	}
	hours := math.Max(1, now.Sub(updatedAt).Hours())
	base := math.Max(0, float64(popularity))
	return math.Log1p(base) / math.Pow(hours, 1.5)
}
