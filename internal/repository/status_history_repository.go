package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/salmaanit26/Query-Management-System/internal/models"
)

const historySelect = `SELECT h.id, h.query_id, h.old_status, h.new_status, h.updated_by_user_id, u.name AS updated_by_name,
       h.comment, h.completion_image_path, h.created_at
FROM query_status_history h
LEFT JOIN users u ON u.id = h.updated_by_user_id`

// StatusHistoryRepository appends and reads query status history. Entries are never updated.
type StatusHistoryRepository struct {
	db *sqlx.DB
}

// NewStatusHistoryRepository constructs the repository.
func NewStatusHistoryRepository(db *sqlx.DB) *StatusHistoryRepository {
	return &StatusHistoryRepository{db: db}
}

func (r *StatusHistoryRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// Create appends an entry.
func (r *StatusHistoryRepository) Create(ctx context.Context, exec sqlx.ExtContext, entry *models.QueryStatusHistory) error {
	if entry == nil {
		return fmt.Errorf("history entry is nil")
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO query_status_history
	(id, query_id, old_status, new_status, updated_by_user_id, comment, completion_image_path, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	if _, err := r.exec(exec).ExecContext(ctx, query,
		entry.ID,
		entry.QueryID,
		entry.OldStatus,
		entry.NewStatus,
		entry.UpdatedByUserID,
		entry.Comment,
		entry.CompletionImagePath,
		entry.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert status history: %w", err)
	}
	return nil
}

// ListByQuery returns a query's entries newest first.
func (r *StatusHistoryRepository) ListByQuery(ctx context.Context, queryID string) ([]models.QueryStatusHistory, error) {
	query := historySelect + ` WHERE h.query_id = $1 ORDER BY h.created_at DESC, h.id DESC`
	entries := make([]models.QueryStatusHistory, 0)
	if err := r.db.SelectContext(ctx, &entries, query, queryID); err != nil {
		return nil, fmt.Errorf("list status history: %w", err)
	}
	return entries, nil
}

// ListByUser returns entries recorded by a user across all queries, newest first.
func (r *StatusHistoryRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.QueryStatusHistory, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	query := historySelect + fmt.Sprintf(` WHERE h.updated_by_user_id = $1 ORDER BY h.created_at DESC, h.id DESC LIMIT %d OFFSET %d`, limit, offset)
	entries := make([]models.QueryStatusHistory, 0)
	if err := r.db.SelectContext(ctx, &entries, query, userID); err != nil {
		return nil, fmt.Errorf("list status history by user: %w", err)
	}
	return entries, nil
}

// Latest returns the newest entry for a query or sql.ErrNoRows.
func (r *StatusHistoryRepository) Latest(ctx context.Context, queryID string) (*models.QueryStatusHistory, error) {
	query := historySelect + ` WHERE h.query_id = $1 ORDER BY h.created_at DESC, h.id DESC LIMIT 1`
	var entry models.QueryStatusHistory
	if err := r.db.GetContext(ctx, &entry, query, queryID); err != nil {
		return nil, err
	}
	return &entry, nil
}
