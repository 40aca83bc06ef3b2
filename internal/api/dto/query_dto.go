package dto

import (
	"time"

	"github.com/spec-kit/query-desk/internal/domain"
)

// SubmitQueryRequest payload.
type SubmitQueryRequest struct {
	Email       string               `json:"email"`
	Mobile      string               `json:"mobile"`
	Heading     string               `json:"heading"`
	Description string               `json:"description"`
	Priority    domain.QueryPriority `json:"priority"`
}

// UpdateStatusRequest payload.
type UpdateStatusRequest struct {
	Status domain.QueryStatus `json:"status"`
}

// AssignRequest payload.
type AssignRequest struct {
	AssignedTo string `json:"assigned_to"`
}

// QueryResponse is the full ticket view.
type QueryResponse struct {
	ID          int64                `json:"query_id"`
	ClientName  string               `json:"client_name"`
	Email       string               `json:"email"`
	Mobile      string               `json:"mobile"`
	Heading     string               `json:"heading"`
	Description string               `json:"description"`
	Status      domain.QueryStatus   `json:"status"`
	Priority    domain.QueryPriority `json:"priority"`
	CreatedAt   time.Time            `json:"created_at"`
	ClosedAt    *time.Time           `json:"closed_at,omitempty"`
	AssignedTo  *string              `json:"assigned_to,omitempty"`
	Version     int64                `json:"version"`
}

// QueryView maps a domain query to its response form.
func QueryView(query *domain.Query) QueryResponse {
	return QueryResponse{
		ID:          query.ID,
		ClientName:  query.ClientName,
		Email:       query.ContactEmail,
		Mobile:      query.MobileNumber,
		Heading:     query.Heading,
		Description: query.Description,
		Status:      query.Status,
		Priority:    query.Priority,
		CreatedAt:   query.CreatedAt,
		ClosedAt:    query.ClosedAt,
		AssignedTo:  query.AssignedTo,
		Version:     query.Version,
	}
}

// QueryListView maps a slice of queries.
func QueryListView(queries []domain.Query) []QueryResponse {
	items := make([]QueryResponse, 0, len(queries))
	for i := range queries {
		items = append(items, QueryView(&queries[i]))
	}
	return items
}
