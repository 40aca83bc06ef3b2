package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/query-desk/internal/domain"
)

// QueryFilter captures the dashboard filter controls: statuses, priorities
// and free-text search combine as a logical AND. ClientName, when set, is
// the row-level ownership filter.
type QueryFilter struct {
	ClientName *string
	Statuses   []domain.QueryStatus
	Priorities []domain.QueryPriority
	SearchTerm *string
	Limit      int
	Offset     int
}

// StatusCount is one bucket of the status aggregation view.
type StatusCount struct {
	Status domain.QueryStatus
	Count  int64
}

// PriorityCount is one bucket of the priority aggregation view.
type PriorityCount struct {
	Priority domain.QueryPriority
	Count    int64
}

// DailyCount is one calendar-day bucket of created queries.
type DailyCount struct {
	Day   time.Time
	Count int64
}

// QueryRepository encapsulates ledger persistence. Records are never deleted.
type QueryRepository interface {
	Create(ctx context.Context, query *domain.Query) error
	GetByID(ctx context.Context, id int64) (*domain.Query, error)
	ListWithFilter(ctx context.Context, filter QueryFilter) ([]domain.Query, error)
	// UpdateStatus applies status and closedAt in one statement, guarded by
	// the version counter. Returns pgx.ErrNoRows when no row matched, which
	// means either an unknown ID or a stale version.
	UpdateStatus(ctx context.Context, id int64, status domain.QueryStatus, closedAt *time.Time, version int64) error
	// Assign sets assigned_to under the same version guard.
	Assign(ctx context.Context, id int64, assignedTo string, version int64) error
	StatusCounts(ctx context.Context, clientName *string) ([]StatusCount, error)
	PriorityCounts(ctx context.Context, clientName *string) ([]PriorityCount, error)
	DailyCounts(ctx context.Context, clientName *string) ([]DailyCount, error)
}

type queryRepository struct {
	pool *pgxpool.Pool
}

// NewQueryRepository instantiates the repository.
func NewQueryRepository(pool *pgxpool.Pool) QueryRepository {
	return &queryRepository{pool: pool}
}

func (r *queryRepository) Create(ctx context.Context, query *domain.Query) error {
	const stmt = `
        INSERT INTO client_queries (client_name, mail_id, mobile_number, heading, description, status, priority)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING query_id, created_at, version`
	return r.pool.QueryRow(ctx, stmt,
		query.ClientName,
		query.ContactEmail,
		query.MobileNumber,
		query.Heading,
		query.Description,
		query.Status,
		query.Priority,
	).Scan(&query.ID, &query.CreatedAt, &query.Version)
}

func (r *queryRepository) GetByID(ctx context.Context, id int64) (*domain.Query, error) {
	const stmt = `
        SELECT query_id, client_name, mail_id, mobile_number, heading, description,
               status, priority, created_at, closed_at, assigned_to, version
        FROM client_queries WHERE query_id=$1`

	var query domain.Query
	if err := r.pool.QueryRow(ctx, stmt, id).Scan(
		&query.ID,
		&query.ClientName,
		&query.ContactEmail,
		&query.MobileNumber,
		&query.Heading,
		&query.Description,
		&query.Status,
		&query.Priority,
		&query.CreatedAt,
		&query.ClosedAt,
		&query.AssignedTo,
		&query.Version,
	); err != nil {
		return nil, err
	}
	return &query, nil
}

func (r *queryRepository) ListWithFilter(ctx context.Context, filter QueryFilter) ([]domain.Query, error) {
	base := `SELECT query_id, client_name, mail_id, mobile_number, heading, description,
                    status, priority, created_at, closed_at, assigned_to, version
             FROM client_queries`
	clauses := []string{"1=1"}
	args := []any{}

	if filter.ClientName != nil {
		args = append(args, *filter.ClientName)
		clauses = append(clauses, fmt.Sprintf("client_name=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Priorities) > 0 {
		placeholders := make([]string, len(filter.Priorities))
		for i, pr := range filter.Priorities {
			args = append(args, pr)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("priority IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.SearchTerm)) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(heading) LIKE %s OR LOWER(mail_id) LIKE %s)", placeholder, placeholder))
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY created_at DESC`, base, strings.Join(clauses, " AND "))
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanQueries(rows)
}

func (r *queryRepository) UpdateStatus(ctx context.Context, id int64, status domain.QueryStatus, closedAt *time.Time, version int64) error {
	const stmt = `
        UPDATE client_queries SET status=$1, closed_at=$2, version=version+1
        WHERE query_id=$3 AND version=$4`
	cmd, err := r.pool.Exec(ctx, stmt, status, closedAt, id, version)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *queryRepository) Assign(ctx context.Context, id int64, assignedTo string, version int64) error {
	const stmt = `
        UPDATE client_queries SET assigned_to=$1, version=version+1
        WHERE query_id=$2 AND version=$3`
	cmd, err := r.pool.Exec(ctx, stmt, assignedTo, id, version)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *queryRepository) StatusCounts(ctx context.Context, clientName *string) ([]StatusCount, error) {
	stmt := `SELECT status, COUNT(*) FROM client_queries`
	args := []any{}
	if clientName != nil {
		stmt += ` WHERE client_name=$1`
		args = append(args, *clientName)
	}
	stmt += ` GROUP BY status`

	rows, err := r.pool.Query(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []StatusCount
	for rows.Next() {
		var sc StatusCount
		if err := rows.Scan(&sc.Status, &sc.Count); err != nil {
			return nil, err
		}
		result = append(result, sc)
	}
	return result, rows.Err()
}

func (r *queryRepository) PriorityCounts(ctx context.Context, clientName *string) ([]PriorityCount, error) {
	stmt := `SELECT priority, COUNT(*) FROM client_queries`
	args := []any{}
	if clientName != nil {
		stmt += ` WHERE client_name=$1`
		args = append(args, *clientName)
	}
	stmt += ` GROUP BY priority`

	rows, err := r.pool.Query(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []PriorityCount
	for rows.Next() {
		var pc PriorityCount
		if err := rows.Scan(&pc.Priority, &pc.Count); err != nil {
			return nil, err
		}
		result = append(result, pc)
	}
	return result, rows.Err()
}

func (r *queryRepository) DailyCounts(ctx context.Context, clientName *string) ([]DailyCount, error) {
	stmt := `SELECT DATE_TRUNC('day', created_at) AS day, COUNT(*) FROM client_queries`
	args := []any{}
	if clientName != nil {
		stmt += ` WHERE client_name=$1`
		args = append(args, *clientName)
	}
	stmt += ` GROUP BY day ORDER BY day`

	rows, err := r.pool.Query(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []DailyCount
	for rows.Next() {
		var dc DailyCount
		if err := rows.Scan(&dc.Day, &dc.Count); err != nil {
			return nil, err
		}
		result = append(result, dc)
	}
	return result, rows.Err()
}

func scanQueries(rows pgx.Rows) ([]domain.Query, error) {
	var result []domain.Query
	for rows.Next() {
		var query domain.Query
		if err := rows.Scan(
			&query.ID,
			&query.ClientName,
			&query.ContactEmail,
			&query.MobileNumber,
			&query.Heading,
			&query.Description,
			&query.Status,
			&query.Priority,
			&query.CreatedAt,
			&query.ClosedAt,
			&query.AssignedTo,
			&query.Version,
		); err != nil {
			return nil, err
		}
		result = append(result, query)
	}
	return result, rows.Err()
}
