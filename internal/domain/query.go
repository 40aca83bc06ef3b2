package domain

import "time"

// QueryStatus enumerates lifecycle states for support queries.
type QueryStatus string

const (
	QueryStatusOpen       QueryStatus = "Open"
	QueryStatusInProgress QueryStatus = "In Progress"
	QueryStatusResolved   QueryStatus = "Resolved"
)

// QueryPriority enumerates urgency levels.
type QueryPriority string

const (
	QueryPriorityLow    QueryPriority = "Low"
	QueryPriorityMedium QueryPriority = "Medium"
	QueryPriorityHigh   QueryPriority = "High"
)

// ValidStatus reports whether s is a known status.
func ValidStatus(s QueryStatus) bool {
	switch s {
	case QueryStatusOpen, QueryStatusInProgress, QueryStatusResolved:
		return true
	}
	return false
}

// ValidPriority reports whether p is a known priority.
func ValidPriority(p QueryPriority) bool {
	switch p {
	case QueryPriorityLow, QueryPriorityMedium, QueryPriorityHigh:
		return true
	}
	return false
}

// Query is the ledger record for a support request.
//
// ClientName is the submitting account's username, a back-reference only.
// ClosedAt is set exactly while Status == Resolved. Version is a counter
// bumped on every mutating write; stale writers lose with a conflict.
type Query struct {
	ID           int64
	ClientName   string
	ContactEmail string
	MobileNumber string
	Heading      string
	Description  string
	Status       QueryStatus
	Priority     QueryPriority
	CreatedAt    time.Time
	ClosedAt     *time.Time
	AssignedTo   *string
	Version      int64
}
