package dto

import (
	"github.com/spec-kit/query-desk/internal/repository"
)

// StatusCountResponse is one slice of the status breakdown.
type StatusCountResponse struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

// PriorityCountResponse is one slice of the priority breakdown.
type PriorityCountResponse struct {
	Priority string `json:"priority"`
	Count    int64  `json:"count"`
}

// DailyCountResponse is one calendar-day bucket of created queries.
type DailyCountResponse struct {
	Day   string `json:"day"`
	Count int64  `json:"count"`
}

// StatusCountsView maps the aggregation rows.
func StatusCountsView(counts []repository.StatusCount) []StatusCountResponse {
	items := make([]StatusCountResponse, 0, len(counts))
	for _, c := range counts {
		items = append(items, StatusCountResponse{Status: string(c.Status), Count: c.Count})
	}
	return items
}

// PriorityCountsView maps the aggregation rows.
func PriorityCountsView(counts []repository.PriorityCount) []PriorityCountResponse {
	items := make([]PriorityCountResponse, 0, len(counts))
	for _, c := range counts {
		items = append(items, PriorityCountResponse{Priority: string(c.Priority), Count: c.Count})
	}
	return items
}

// DailyCountsView maps the aggregation rows, formatting days as dates.
func DailyCountsView(counts []repository.DailyCount) []DailyCountResponse {
	items := make([]DailyCountResponse, 0, len(counts))
	for _, c := range counts {
		items = append(items, DailyCountResponse{Day: c.Day.Format("2006-01-02"), Count: c.Count})
	}
	return items
}
