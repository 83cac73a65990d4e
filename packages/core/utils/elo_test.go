package utils

import (
	"errors"
	"math"
	"testing"
)

func TestCalculateEvenRatings(t *testing.T) {
	engine := NewEloEngine(DefaultKFactor)

	res, err := engine.Calculate(1000, 1000)
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	if res.WinnerRating != 1016 || res.LoserRating != 984 {
		t.Fatalf("expected 1016/984, got %v/%v", res.WinnerRating, res.LoserRating)
	}
	if res.WinnerChange != 16 || res.LoserChange != -16 {
		t.Fatalf("expected +16/-16, got %v/%v", res.WinnerChange, res.LoserChange)
	}
}

func TestCalculateUnderdogWins(t *testing.T) {
	engine := NewEloEngine(DefaultKFactor)

	res, err := engine.Calculate(1000, 1200)
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	// E_w = 1/(1+10^0.5) ~ 0.2403, K*(1-E_w) ~ 24.31
	if res.WinnerChange != 24 {
		t.Fatalf("expected change 24, got %v", res.WinnerChange)
	}
	if res.WinnerRating != 1024 || res.LoserRating != 1176 {
		t.Fatalf("expected 1024/1176, got %v/%v", res.WinnerRating, res.LoserRating)
	}
}

func TestCalculateChangesAreEqualAndOpposite(t *testing.T) {
	engine := NewEloEngine(DefaultKFactor)
	ratings := []float64{0, 400, 812.5, 1000, 1003, 1199, 1500, 2400, 3100}

	for _, a := range ratings {
		for _, b := range ratings {
			res, err := engine.Calculate(a, b)
			if err != nil {
				t.Fatalf("calculate(%v, %v): %v", a, b, err)
			}
			if (res.WinnerRating - a) != -(res.LoserRating - b) {
				t.Fatalf("calculate(%v, %v): deltas %v and %v are not opposite", a, b, res.WinnerRating-a, res.LoserRating-b)
			}
			if res.WinnerChange != res.WinnerRating-a || res.LoserChange != res.LoserRating-b {
				t.Fatalf("calculate(%v, %v): stored changes do not match ratings", a, b)
			}
			if res.WinnerChange < 0 || res.WinnerChange > DefaultKFactor {
				t.Fatalf("calculate(%v, %v): change %v out of [0, K]", a, b, res.WinnerChange)
			}
		}
	}
}

func TestCalculateRespectsKFactor(t *testing.T) {
	res, err := NewEloEngine(16).Calculate(1000, 1000)
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	if res.WinnerChange != 8 {
		t.Fatalf("expected change 8 with K=16, got %v", res.WinnerChange)
	}

	if NewEloEngine(0).KFactor != DefaultKFactor {
		t.Fatalf("expected zero K factor to fall back to default")
	}
}

func TestCalculateRejectsNonFinite(t *testing.T) {
	engine := NewEloEngine(DefaultKFactor)
	cases := [][2]float64{
		{math.NaN(), 1000},
		{1000, math.Inf(1)},
		{math.Inf(-1), math.NaN()},
	}
	for _, c := range cases {
		_, err := engine.Calculate(c[0], c[1])
		var invalid *InvalidRatingError
		if !errors.As(err, &invalid) {
			t.Fatalf("calculate(%v, %v): expected InvalidRatingError, got %v", c[0], c[1], err)
		}
	}
}

func TestExpectedScoresSumToOne(t *testing.T) {
	for _, pair := range [][2]float64{{1000, 1000}, {1000, 1200}, {1500, 900}} {
		sum := ExpectedScore(pair[0], pair[1]) + ExpectedScore(pair[1], pair[0])
		if math.Abs(sum-1) > 1e-12 {
			t.Fatalf("expected scores for %v sum to %v", pair, sum)
		}
	}
}

func TestAverageRating(t *testing.T) {
	if got := AverageRating(nil, DefaultRating); got != DefaultRating {
		t.Fatalf("expected fallback %v, got %v", DefaultRating, got)
	}
	if got := AverageRating([]float64{1000, 1017}, DefaultRating); got != 1009 {
		t.Fatalf("expected rounded average 1009, got %v", got)
	}
}
