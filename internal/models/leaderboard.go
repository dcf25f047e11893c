package models

import "time"

// LeaderboardEntry is a derived view over one Result. It is recomputed from
// the result collection on every read and never persisted independently.
type LeaderboardEntry struct {
	Rank       int       `json:"rank"`
	UserName   string    `json:"userName"`
	Score      int       `json:"score"`
	Total      int       `json:"total"`
	Percentage float64   `json:"percentage"`
	Timestamp  time.Time `json:"timestamp"`
	TimeTaken  *int      `json:"timeTaken,omitempty"`
}

// ScoreDistribution buckets results by percentage. Buckets are mutually
// exclusive and exhaustive: excellent >=90, good >=70, average >=50, poor <50.
type ScoreDistribution struct {
	Excellent int `json:"excellent"`
	Good      int `json:"good"`
	Average   int `json:"average"`
	Poor      int `json:"poor"`
}

// ResultsSummary holds the aggregate statistics over one quiz's results.
type ResultsSummary struct {
	TotalParticipants      int               `json:"totalParticipants"`
	AverageScorePercentage int               `json:"averageScorePercentage"`
	Distribution           ScoreDistribution `json:"distribution"`
}

// Dashboard is the full derived results view served to every results surface.
type Dashboard struct {
	QuizID      string             `json:"quizId"`
	Leaderboard []LeaderboardEntry `json:"leaderboard"`
	Summary     ResultsSummary     `json:"summary"`
}

// Winner returns the rank-1 entry: the first entry in sort order, which is
// stable given identical input ordering. Nil when there are no results yet.
func (d *Dashboard) Winner() *LeaderboardEntry {
	if len(d.Leaderboard) == 0 {
		return nil
	}
	return &d.Leaderboard[0]
}
