package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/query-desk/internal/domain"
	"github.com/spec-kit/query-desk/internal/events"
	"github.com/spec-kit/query-desk/internal/repository"
	apperrors "github.com/spec-kit/query-desk/pkg/util"
)

const minMobileDigits = 10

// QueryService coordinates the ledger workflows: submission, listing under
// the ownership rule, and the support-side status lifecycle.
type QueryService struct {
	queries    repository.QueryRepository
	dispatcher events.Dispatcher
	now        func() time.Time
}

// NewQueryService constructs the service.
func NewQueryService(queries repository.QueryRepository, dispatcher events.Dispatcher) *QueryService {
	return &QueryService{
		queries:    queries,
		dispatcher: dispatcher,
		now:        time.Now,
	}
}

// SubmitInput describes a client submission.
type SubmitInput struct {
	ContactEmail string
	MobileNumber string
	Heading      string
	Description  string
	Priority     domain.QueryPriority
}

// Submit validates and records a new query for the client. New records
// always start Open with closedAt unset.
func (s *QueryService) Submit(ctx context.Context, clientName string, input SubmitInput) (*domain.Query, error) {
	if err := validateSubmit(input); err != nil {
		return nil, err
	}

	priority := input.Priority
	if priority == "" {
		priority = domain.QueryPriorityMedium
	}

	query := &domain.Query{
		ClientName:   clientName,
		ContactEmail: input.ContactEmail,
		MobileNumber: input.MobileNumber,
		Heading:      strings.TrimSpace(input.Heading),
		Description:  strings.TrimSpace(input.Description),
		Status:       domain.QueryStatusOpen,
		Priority:     priority,
	}
	if err := s.queries.Create(ctx, query); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.Event{
		Type:    events.EventQuerySubmitted,
		QueryID: query.ID,
		Actor:   events.Actor{Username: clientName, Role: domain.RoleClient},
		Payload: events.QuerySubmittedPayload{
			Heading:  query.Heading,
			Priority: query.Priority,
		},
	})
	return query, nil
}

// ListForClient returns the client's own submissions, newest first. The
// ownership filter is applied at the repository, never in the caller.
func (s *QueryService) ListForClient(ctx context.Context, clientName string, filter repository.QueryFilter) ([]domain.Query, error) {
	filter.ClientName = &clientName
	return s.queries.ListWithFilter(ctx, filter)
}

// ListAll returns every query, newest first. Route guards restrict this to
// the Support role.
func (s *QueryService) ListAll(ctx context.Context, filter repository.QueryFilter) ([]domain.Query, error) {
	filter.ClientName = nil
	return s.queries.ListWithFilter(ctx, filter)
}

// GetForClient fetches one query, enforcing ownership.
func (s *QueryService) GetForClient(ctx context.Context, clientName string, id int64) (*domain.Query, error) {
	query, err := s.getQuery(ctx, id)
	if err != nil {
		return nil, err
	}
	if query.ClientName != clientName {
		return nil, apperrors.NewNotFound("query", map[string]any{"query_id": id})
	}
	return query, nil
}

// Get fetches one query without an ownership restriction (Support views).
func (s *QueryService) Get(ctx context.Context, id int64) (*domain.Query, error) {
	return s.getQuery(ctx, id)
}

// UpdateStatus moves a query to newStatus. Any state may move to any other.
// Entering Resolved stamps closedAt; leaving Resolved clears it, so that
// closedAt is set exactly while the query is Resolved. A same-status update
// is a no-op and does not touch the record.
func (s *QueryService) UpdateStatus(ctx context.Context, actor string, id int64, newStatus domain.QueryStatus) (*domain.Query, error) {
	if !domain.ValidStatus(newStatus) {
		return nil, apperrors.NewValidationError("status", "must be Open, In Progress, or Resolved")
	}

	query, err := s.getQuery(ctx, id)
	if err != nil {
		return nil, err
	}
	if query.Status == newStatus {
		return query, nil
	}

	oldStatus := query.Status
	var closedAt *time.Time
	if newStatus == domain.QueryStatusResolved {
		now := s.now()
		closedAt = &now
	}

	if err := s.queries.UpdateStatus(ctx, id, newStatus, closedAt, query.Version); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, s.staleOrMissing(ctx, id)
		}
		return nil, err
	}
	query.Status = newStatus
	query.ClosedAt = closedAt
	query.Version++

	s.publishEvent(ctx, events.Event{
		Type:    events.EventQueryStatusChanged,
		QueryID: query.ID,
		Actor:   events.Actor{Username: actor, Role: domain.RoleSupport},
		Payload: events.QueryStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: newStatus,
		},
	})
	return query, nil
}

// Assign hands a query to a support account.
func (s *QueryService) Assign(ctx context.Context, actor string, id int64, assignedTo string) (*domain.Query, error) {
	assignedTo = strings.TrimSpace(assignedTo)
	if assignedTo == "" {
		return nil, apperrors.NewValidationError("assigned_to", "must not be empty")
	}

	query, err := s.getQuery(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.queries.Assign(ctx, id, assignedTo, query.Version); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, s.staleOrMissing(ctx, id)
		}
		return nil, err
	}
	query.AssignedTo = &assignedTo
	query.Version++

	s.publishEvent(ctx, events.Event{
		Type:    events.EventQueryAssigned,
		QueryID: query.ID,
		Actor:   events.Actor{Username: actor, Role: domain.RoleSupport},
		Payload: events.QueryAssignedPayload{AssignedTo: assignedTo},
	})
	return query, nil
}

func (s *QueryService) getQuery(ctx context.Context, id int64) (*domain.Query, error) {
	query, err := s.queries.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("query", map[string]any{"query_id": id})
		}
		return nil, err
	}
	return query, nil
}

// staleOrMissing disambiguates a zero-row guarded update: the record either
// vanished (it never is deleted, so this means a bad ID) or another writer
// got there first.
func (s *QueryService) staleOrMissing(ctx context.Context, id int64) error {
	if _, err := s.queries.GetByID(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("query", map[string]any{"query_id": id})
		}
		return err
	}
	return apperrors.NewConflict("query was modified concurrently", map[string]any{"query_id": id})
}

func validateSubmit(input SubmitInput) error {
	if !strings.Contains(input.ContactEmail, "@") {
		return apperrors.NewValidationError("email", "must contain @")
	}
	if len(input.MobileNumber) < minMobileDigits {
		return apperrors.NewValidationError("mobile", "must be at least 10 digits")
	}
	for _, r := range input.MobileNumber {
		if r < '0' || r > '9' {
			return apperrors.NewValidationError("mobile", "must contain only digits")
		}
	}
	if strings.TrimSpace(input.Heading) == "" {
		return apperrors.NewValidationError("heading", "must not be empty")
	}
	if strings.TrimSpace(input.Description) == "" {
		return apperrors.NewValidationError("description", "must not be empty")
	}
	if input.Priority != "" && !domain.ValidPriority(input.Priority) {
		return apperrors.NewValidationError("priority", "must be Low, Medium, or High")
	}
	return nil
}

func (s *QueryService) publishEvent(ctx context.Context, event events.Event) {
	publish(ctx, s.dispatcher, event)
}

func publish(ctx context.Context, dispatcher events.Dispatcher, event events.Event) {
	if dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = dispatcher.Publish(ctx, event)
}
