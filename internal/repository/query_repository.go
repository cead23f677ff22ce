package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/salmaanit26/Query-Management-System/internal/models"
)

// ErrStaleVersion is returned by Update when the row version moved on since it was read.
var ErrStaleVersion = errors.New("stale query version")

const queryColumns = `id, title, description, category, priority, status, venue_id, raised_by_user_id,
       assigned_to_worker_id, image_path, completion_notes, completion_image_path, completed_by_user_id,
       version, resolved_at, created_at, updated_at`

// QueryRepository persists maintenance queries.
type QueryRepository struct {
	db *sqlx.DB
}

// NewQueryRepository constructs the repository.
func NewQueryRepository(db *sqlx.DB) *QueryRepository {
	return &QueryRepository{db: db}
}

func (r *QueryRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// FindByID loads a query by identifier. Misses surface as sql.ErrNoRows.
func (r *QueryRepository) FindByID(ctx context.Context, id string) (*models.Query, error) {
	query := `SELECT ` + queryColumns + ` FROM queries WHERE id = $1`
	var q models.Query
	if err := r.db.GetContext(ctx, &q, query, id); err != nil {
		return nil, err
	}
	return &q, nil
}

// FindByIDForUpdate loads and row-locks a query inside the caller's transaction.
func (r *QueryRepository) FindByIDForUpdate(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Query, error) {
	query := `SELECT ` + queryColumns + ` FROM queries WHERE id = $1 FOR UPDATE`
	var q models.Query
	if err := sqlx.GetContext(ctx, r.exec(exec), &q, query, id); err != nil {
		return nil, err
	}
	return &q, nil
}

// Create inserts a new query, filling identifier, defaults and timestamps.
func (r *QueryRepository) Create(ctx context.Context, exec sqlx.ExtContext, q *models.Query) error {
	if q == nil {
		return fmt.Errorf("query payload is nil")
	}
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	if q.Status == "" {
		q.Status = models.QueryStatusPending
	}
	if q.Priority == "" {
		q.Priority = models.QueryPriorityMedium
	}
	now := time.Now().UTC()
	if q.CreatedAt.IsZero() {
		q.CreatedAt = now
	}
	q.UpdatedAt = q.CreatedAt
	q.Version = 1

	const query = `INSERT INTO queries
	(id, title, description, category, priority, status, venue_id, raised_by_user_id, assigned_to_worker_id,
	 image_path, completion_notes, completion_image_path, completed_by_user_id, version, resolved_at, created_at, updated_at)
	VALUES (:id, :title, :description, :category, :priority, :status, :venue_id, :raised_by_user_id, :assigned_to_worker_id,
	 :image_path, :completion_notes, :completion_image_path, :completed_by_user_id, :version, :resolved_at, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, q); err != nil {
		return fmt.Errorf("create query: %w", err)
	}
	return nil
}

// Update writes every mutable column guarded by the version the caller read.
// On success the in-memory version is advanced to match the stored row.
func (r *QueryRepository) Update(ctx context.Context, exec sqlx.ExtContext, q *models.Query) error {
	if q == nil {
		return fmt.Errorf("query payload is nil")
	}
	const query = `UPDATE queries SET priority = $1, status = $2, venue_id = $3, assigned_to_worker_id = $4,
	image_path = $5, completion_notes = $6, completion_image_path = $7, completed_by_user_id = $8,
	resolved_at = $9, updated_at = $10, version = version + 1
	WHERE id = $11 AND version = $12`
	result, err := r.exec(exec).ExecContext(ctx, query,
		q.Priority,
		q.Status,
		q.VenueID,
		q.AssignedToWorkerID,
		q.ImagePath,
		q.CompletionNotes,
		q.CompletionImagePath,
		q.CompletedByUserID,
		q.ResolvedAt,
		q.UpdatedAt,
		q.ID,
		q.Version,
	)
	if err != nil {
		return fmt.Errorf("update query: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("query rows affected: %w", err)
	}
	if affected == 0 {
		return ErrStaleVersion
	}
	q.Version++
	return nil
}

// List returns queries matching the filter, newest first, with the total count.
func (r *QueryRepository) List(ctx context.Context, filter models.QueryFilter) ([]models.Query, int, error) {
	conditions := make([]string, 0, 6)
	args := make([]interface{}, 0, 8)

	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		conditions = append(conditions, fmt.Sprintf("category = $%d", len(args)))
	}
	if filter.Priority != "" {
		args = append(args, filter.Priority)
		conditions = append(conditions, fmt.Sprintf("priority = $%d", len(args)))
	}
	if filter.VenueID != "" {
		args = append(args, filter.VenueID)
		conditions = append(conditions, fmt.Sprintf("venue_id = $%d", len(args)))
	}
	if filter.RaisedBy != "" {
		args = append(args, filter.RaisedBy)
		conditions = append(conditions, fmt.Sprintf("raised_by_user_id = $%d", len(args)))
	}
	if filter.AssignedTo != "" {
		args = append(args, filter.AssignedTo)
		conditions = append(conditions, fmt.Sprintf("assigned_to_worker_id = $%d", len(args)))
	}
	if keyword := strings.TrimSpace(filter.Keyword); keyword != "" {
		args = append(args, "%"+keyword+"%")
		conditions = append(conditions, fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d)", len(args), len(args)))
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM queries"+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count queries: %w", err)
	}

	page := filter.Page
	if page <= 0 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	listQuery := fmt.Sprintf("SELECT %s FROM queries%s ORDER BY created_at DESC, id DESC LIMIT %d OFFSET %d",
		queryColumns, where, size, (page-1)*size)

	queries := make([]models.Query, 0)
	if err := r.db.SelectContext(ctx, &queries, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list queries: %w", err)
	}
	return queries, total, nil
}

// ListByWorker returns queries assigned to a worker, newest first.
func (r *QueryRepository) ListByWorker(ctx context.Context, workerID string) ([]models.Query, error) {
	query := `SELECT ` + queryColumns + ` FROM queries WHERE assigned_to_worker_id = $1 ORDER BY created_at DESC, id DESC`
	queries := make([]models.Query, 0)
	if err := r.db.SelectContext(ctx, &queries, query, workerID); err != nil {
		return nil, fmt.Errorf("list queries by worker: %w", err)
	}
	return queries, nil
}

// ListByRaiser returns queries raised by a user, newest first.
func (r *QueryRepository) ListByRaiser(ctx context.Context, userID string) ([]models.Query, error) {
	query := `SELECT ` + queryColumns + ` FROM queries WHERE raised_by_user_id = $1 ORDER BY created_at DESC, id DESC`
	queries := make([]models.Query, 0)
	if err := r.db.SelectContext(ctx, &queries, query, userID); err != nil {
		return nil, fmt.Errorf("list queries by raiser: %w", err)
	}
	return queries, nil
}

// IsNotFound reports whether err is a repository miss.
func IsNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
