// Package ranking derives the leaderboard and summary statistics for one
// quiz's result collection. Every function is pure and recomputes from the
// full collection on each call; the result sets are small enough that full
// recomputation is the correct design and there is no incremental state to
// get out of sync.
package ranking

import (
	"math"
	"sort"

	"github.com/BIJODEV/BibleQZ/internal/models"
)

// Rank produces the ordered leaderboard for a result collection.
//
// Sort order: score descending, then earlier timestamp; when timestamps are
// equal, smaller recorded elapsed time, then name, keep the ordering stable.
// Ranks use competition ("1224") numbering: entries tied on both score and
// timestamp share a rank and the next distinct entry skips ahead by the number
// of tied entries. Scores [9,9,9,7] with equal timestamps rank [1,1,1,4].
func Rank(results []models.Result) []models.LeaderboardEntry {
	if len(results) == 0 {
		return []models.LeaderboardEntry{}
	}

	sorted := make([]models.Result, len(results))
	copy(sorted, results)

	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := &sorted[i], &sorted[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if !a.Timestamp.Equal(b.Timestamp) {
			return a.Timestamp.Before(b.Timestamp)
		}
		if ta, tb := elapsed(a), elapsed(b); ta != tb {
			return ta < tb
		}
		return a.UserName < b.UserName
	})

	entries := make([]models.LeaderboardEntry, len(sorted))
	for i, r := range sorted {
		rank := i + 1
		if i > 0 && tied(&sorted[i-1], &r) {
			rank = entries[i-1].Rank
		}
		entries[i] = models.LeaderboardEntry{
			Rank:       rank,
			UserName:   r.UserName,
			Score:      r.Score,
			Total:      r.Total,
			Percentage: r.Percentage(),
			Timestamp:  r.Timestamp,
			TimeTaken:  r.TimeTaken,
		}
	}
	return entries
}

// tied reports whether two adjacent sorted results share both the primary
// sort key and the tie-break key, and therefore a rank number.
func tied(a, b *models.Result) bool {
	return a.Score == b.Score && a.Timestamp.Equal(b.Timestamp)
}

// elapsed treats a missing TimeTaken as slower than any recorded time.
func elapsed(r *models.Result) int {
	if r.TimeTaken == nil {
		return math.MaxInt
	}
	return *r.TimeTaken
}

// Summarize computes the aggregate statistics over a result collection.
// The average is the mean of per-result percentages rounded to the nearest
// whole percent, 0 for an empty collection.
func Summarize(results []models.Result) models.ResultsSummary {
	summary := models.ResultsSummary{TotalParticipants: len(results)}
	if len(results) == 0 {
		return summary
	}

	var sum float64
	for i := range results {
		pct := results[i].Percentage()
		sum += pct

		switch {
		case pct >= 90:
			summary.Distribution.Excellent++
		case pct >= 70:
			summary.Distribution.Good++
		case pct >= 50:
			summary.Distribution.Average++
		default:
			summary.Distribution.Poor++
		}
	}

	summary.AverageScorePercentage = int(math.Round(sum / float64(len(results))))
	return summary
}

// BuildDashboard assembles the full derived results view for one quiz.
func BuildDashboard(quizID string, results []models.Result) *models.Dashboard {
	return &models.Dashboard{
		QuizID:      quizID,
		Leaderboard: Rank(results),
		Summary:     Summarize(results),
	}
}
