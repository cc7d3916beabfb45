package catalog

import (
	"math"
	"testing"
	"time"
)

var testNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-3
}

func TestTrendingScore_OneHour(t *testing.T) {
	got := TrendingScore(100, testNow.Add(-time.Hour), testNow)
	if !approx(got, 4.615) {
		t.Errorf("TrendingScore(100, 1h) = %f, want ~4.615", got)
	}
}

func TestTrendingScore_EightHours(t *testing.T) {
	got := TrendingScore(100, testNow.Add(-8*time.Hour), testNow)
	if !approx(got, 0.2039) {
		t.Errorf("TrendingScore(100, 8h) = %f, want ~0.2039", got)
	}
}

func TestTrendingScore_ZeroPopularity(t *testing.T) {
	for _, age := range []time.Duration{0, time.Hour, 48 * time.Hour, 365 * 24 * time.Hour} {
		if got := TrendingScore(0, testNow.Add(-age), testNow); got != 0 {
			t.Errorf("TrendingScore(0, %s) = %f, want 0", age, got)
		}
	}
}

func TestTrendingScore_NegativePopularityClampsToZero(t *testing.T) {
	if got := TrendingScore(-50, testNow.Add(-2*time.Hour), testNow); got != 0 {
		t.Errorf("TrendingScore(-50) = %f, want 0", got)
	}
}

func TestTrendingScore_MissingUpdatedAtUsesNow(t *testing.T) {
	got := TrendingScore(100, time.Time{}, testNow)
	want := math.Log1p(100)
	if !approx(got, want) {
		t.Errorf("TrendingScore(100, zero) = %f, want %f", got, want)
	}
}

func TestTrendingScore_FutureTimestampFloorsToOneHour(t *testing.T) {
	got := TrendingScore(100, testNow.Add(5*time.Hour), testNow)
	if !approx(got, math.Log1p(100)) {
		t.Errorf("TrendingScore(future) = %f, want %f", got, math.Log1p(100))
	}
}

func TestTrendingScore_MonotonicInPopularity(t *testing.T) {
	updated := testNow.Add(-6 * time.Hour)
	prev := TrendingScore(0, updated, testNow)
	for _, pop := range []int64{1, 2, 10, 100, 10000} {
		cur := TrendingScore(pop, updated, testNow)
		if cur <= prev {
			t.Errorf("score(%d) = %f not greater than previous %f", pop, cur, prev)
		}
		prev = cur
	}
}

func TestTrendingScore_DecreasesWithAge(t *testing.T) {
	prev := TrendingScore(500, testNow.Add(-time.Hour), testNow)
	for _, h := range []int{2, 5, 24, 240} {
		cur := TrendingScore(500, testNow.Add(-time.Duration(h)*time.Hour), testNow)
		if cur >= prev {
			t.Errorf("score at %dh = %f not less than previous %f", h, cur, prev)
		}
		prev = cur
	}
}
