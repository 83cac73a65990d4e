package utils

import (
	"fmt"
	"math"
)

const (
	// DefaultKFactor is the conventional Elo K-factor.
	DefaultKFactor = 32.0
	// DefaultRating is the rating a player starts with in an empty league.
	DefaultRating = 1000.0

	eloScale = 400.0
)

// InvalidRatingError is returned when a rating is NaN or infinite.
type InvalidRatingError struct {
	WinnerRating float64
	LoserRating  float64
}

func (e *InvalidRatingError) Error() string {
	return fmt.Sprintf("invalid rating: winner=%v loser=%v", e.WinnerRating, e.LoserRating)
}

// EloResult holds the ratings after a match and the signed change applied to each side.
// WinnerChange == -LoserChange always holds.
type EloResult struct {
	WinnerRating float64
	LoserRating  float64
	WinnerChange float64
	LoserChange  float64
}

// EloEngine computes Elo updates with a fixed K-factor.
type EloEngine struct {
	KFactor float64
}

// NewEloEngine returns an engine using kFactor, or DefaultKFactor when kFactor is not positive.
func NewEloEngine(kFactor float64) EloEngine {
	if kFactor <= 0 || math.IsNaN(kFactor) || math.IsInf(kFactor, 0) {
		kFactor = DefaultKFactor
	}
	return EloEngine{KFactor: kFactor}
}

// ExpectedScore is the probability that a player rated `rating` beats one rated `opponent`.
func ExpectedScore(rating, opponent float64) float64 {
	return 1.0 / (1.0 + math.Pow(10, (opponent-rating)/eloScale))
}

// Calculate applies a win for winnerRating against loserRating.
//
// The change is K * (1 - E_w), rounded half away from zero to a whole point, and applied
// with opposite signs to both sides, so integer ratings stay integers and the stored changes
// revert the match exactly.
func (e EloEngine) Calculate(winnerRating, loserRating float64) (EloResult, error) {
	if !isFinite(winnerRating) || !isFinite(loserRating) {
		return EloResult{}, &InvalidRatingError{WinnerRating: winnerRating, LoserRating: loserRating}
	}

	k := e.KFactor
	if k <= 0 {
		k = DefaultKFactor
	}

	expectedWinner := ExpectedScore(winnerRating, loserRating)
	change := math.Round(k * (1.0 - expectedWinner))

	return EloResult{
		WinnerRating: winnerRating + change,
		LoserRating:  loserRating - change,
		WinnerChange: change,
		LoserChange:  -change,
	}, nil
}

// AverageRating returns the rounded mean of ratings, or fallback when there are none.
// New players joining an established league start here.
func AverageRating(ratings []float64, fallback float64) float64 {
	if len(ratings) == 0 {
		return fallback
	}
	var sum float64
	for _, r := range ratings {
		sum += r
	}
	return math.Round(sum / float64(len(ratings)))
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
