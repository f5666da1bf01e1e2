package types

import (
	"time"

	"github.com/google/uuid"
)

// SubcampSummary is one leaderboard row: a subcamp's completion standing
// within a camp, enriched with its leaders.
type SubcampSummary struct {
	SubcampID            uuid.UUID       `json:"subcamp_id"`
	SubcampName          string          `json:"subcamp_name"`
	SubcampDescription   string          `json:"subcamp_description,omitempty"`
	TotalEvaluations     int             `json:"total_evaluations"`
	CompletedEvaluations int             `json:"completed_evaluations"`
	Percentage           int             `json:"percentage"`
	TotalLeaders         int             `json:"total_leaders"`
	CompletedLeaders     int             `json:"completed_leaders"`
	Leaders              []LeaderSummary `json:"leaders"`
}

type LeaderSummary struct {
	Name       string `json:"name"`
	Status     string `json:"status"`
	Percentage int    `json:"percentage"`
}

// SubcampProgress is the on-demand projection for one subcamp.
type SubcampProgress struct {
	TotalEvaluations     int     `json:"total_evaluations"`
	CompletedEvaluations int     `json:"completed_evaluations"`
	Percentage           int     `json:"percentage"`
	AverageRating        float64 `json:"average_rating"`
}

// CampMetrics is the camp-wide rollup count block.
type CampMetrics struct {
	Evaluations MetricBlock        `json:"evaluations"`
	Leaders     MetricBlock        `json:"leaders"`
	Kids        MetricBlock        `json:"kids"`
	Subcamps    SubcampMetricBlock `json:"subcamps"`
}

type MetricBlock struct {
	Total      int `json:"total"`
	Completed  int `json:"completed"`
	Percentage int `json:"percentage"`
}

type SubcampMetricBlock struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
}

// Leaderboard pairs the ranked rows with their generation time so cached
// copies stay honest about their age.
type Leaderboard struct {
	Rows        []SubcampSummary `json:"rows"`
	GeneratedAt time.Time        `json:"generated_at"`
}

// Percentage implements the rollup math shared by every aggregator:
// round(100*completed/total), 0 when total is 0.
func Percentage(completed, total int) int {
	if total <= 0 {
		return 0
	}
	return int(float64(completed)/float64(total)*100 + 0.5)
}
