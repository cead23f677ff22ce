package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/salmaanit26/Query-Management-System/internal/models"
	"github.com/salmaanit26/Query-Management-System/internal/repository"
	appErrors "github.com/salmaanit26/Query-Management-System/pkg/errors"
	"github.com/salmaanit26/Query-Management-System/pkg/logger"
)

// Lifecycle operation names used in logs and metrics.
const (
	OperationAssign   = "assign"
	OperationStatus   = "status"
	OperationComplete = "complete"
)

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

type lifecycleQueryStore interface {
	FindByID(ctx context.Context, id string) (*models.Query, error)
	FindByIDForUpdate(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Query, error)
	Update(ctx context.Context, exec sqlx.ExtContext, q *models.Query) error
}

type historyStore interface {
	Create(ctx context.Context, exec sqlx.ExtContext, entry *models.QueryStatusHistory) error
	ListByQuery(ctx context.Context, queryID string) ([]models.QueryStatusHistory, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.QueryStatusHistory, error)
	Latest(ctx context.Context, queryID string) (*models.QueryStatusHistory, error)
}

type identityResolver interface {
	User(ctx context.Context, id string) (*models.User, error)
	Worker(ctx context.Context, id string) (*models.User, error)
}

type attachmentWriter interface {
	Store(ctx context.Context, kind string, upload *AttachmentUpload) (string, error)
	ScheduleCleanup(ref string)
}

// AssignWorkerInput identifies the worker and, optionally, who made the assignment.
type AssignWorkerInput struct {
	WorkerID         string `validate:"required"`
	AssignedByUserID string
}

// UpdateStatusInput is a generic status change performed by a user.
type UpdateStatusInput struct {
	Status  models.QueryStatus `validate:"required,query_status"`
	UserID  string             `validate:"required"`
	Comment string
}

// CompleteQueryInput records completion evidence.
type CompleteQueryInput struct {
	UserID          string `validate:"required"`
	CompletionNotes string
	Image           *AttachmentUpload
}

// LifecycleService applies status transitions and keeps each query mutation
// paired with exactly one history entry in the same transaction.
type LifecycleService struct {
	tx          txProvider
	queries     lifecycleQueryStore
	history     historyStore
	identity    identityResolver
	attachments attachmentWriter
	policy      TransitionPolicy
	cache       *CacheService
	cacheTTL    time.Duration
	metrics     *MetricsService
	validator   *validator.Validate
	logger      *zap.Logger
	now         func() time.Time
}

// LifecycleOption customises the lifecycle service.
type LifecycleOption func(*LifecycleService)

// WithTransitionPolicy overrides the default permissive policy.
func WithTransitionPolicy(policy TransitionPolicy) LifecycleOption {
	return func(s *LifecycleService) {
		if policy != nil {
			s.policy = policy
		}
	}
}

// WithHistoryCache enables read-through caching of GetHistory.
func WithHistoryCache(cache *CacheService, ttl time.Duration) LifecycleOption {
	return func(s *LifecycleService) {
		s.cache = cache
		s.cacheTTL = ttl
	}
}

// WithLifecycleMetrics records transitions and timings.
func WithLifecycleMetrics(metrics *MetricsService) LifecycleOption {
	return func(s *LifecycleService) { s.metrics = metrics }
}

// WithLifecycleLogger sets the logger.
func WithLifecycleLogger(logger *zap.Logger) LifecycleOption {
	return func(s *LifecycleService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithLifecycleValidator shares a validator instance.
func WithLifecycleValidator(validate *validator.Validate) LifecycleOption {
	return func(s *LifecycleService) {
		if validate != nil {
			s.validator = validate
		}
	}
}

// NewLifecycleService wires the lifecycle engine.
func NewLifecycleService(tx txProvider, queries lifecycleQueryStore, history historyStore, identity identityResolver, attachments attachmentWriter, opts ...LifecycleOption) *LifecycleService {
	svc := &LifecycleService{
		tx:          tx,
		queries:     queries,
		history:     history,
		identity:    identity,
		attachments: attachments,
		policy:      PermissiveTransitionPolicy{},
		validator:   validator.New(),
		logger:      zap.NewNop(),
		now:         func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(svc)
	}
	registerQueryValidations(svc.validator)
	return svc
}

// mutation runs inside the transaction after the query row is locked. It
// mutates q in place and returns the history entry to append.
type mutation func(ctx context.Context, q *models.Query) (*models.QueryStatusHistory, error)

// AssignWorker assigns a WORKER to the query and moves it to ASSIGNED.
func (s *LifecycleService) AssignWorker(ctx context.Context, queryID string, in AssignWorkerInput) (*models.Query, error) {
	if err := s.validator.Struct(in); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}
	return s.transition(ctx, OperationAssign, queryID, func(ctx context.Context, q *models.Query) (*models.QueryStatusHistory, error) {
		worker, err := s.identity.Worker(ctx, in.WorkerID)
		if err != nil {
			return nil, err
		}
		actor := worker.ID
		if in.AssignedByUserID != "" {
			assigner, err := s.identity.User(ctx, in.AssignedByUserID)
			if err != nil {
				return nil, err
			}
			actor = assigner.ID
		}
		if err := s.policy.Allow(q.Status, models.QueryStatusAssigned); err != nil {
			return nil, err
		}

		old := q.Status
		workerID := worker.ID
		q.AssignedToWorkerID = &workerID
		q.Status = models.QueryStatusAssigned
		q.UpdatedAt = s.now()

		comment := fmt.Sprintf("assigned to %s", worker.Name)
		return &models.QueryStatusHistory{
			QueryID:         q.ID,
			OldStatus:       &old,
			NewStatus:       models.QueryStatusAssigned,
			UpdatedByUserID: actor,
			Comment:         &comment,
		}, nil
	})
}

// UpdateStatusWithHistory moves the query to any status the policy allows and records who did it.
func (s *LifecycleService) UpdateStatusWithHistory(ctx context.Context, queryID string, in UpdateStatusInput) (*models.Query, error) {
	in.Status = models.QueryStatus(strings.ToUpper(strings.TrimSpace(string(in.Status))))
	if err := s.validator.Struct(in); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid status payload")
	}
	return s.transition(ctx, OperationStatus, queryID, func(ctx context.Context, q *models.Query) (*models.QueryStatusHistory, error) {
		user, err := s.identity.User(ctx, in.UserID)
		if err != nil {
			return nil, err
		}
		if err := s.policy.Allow(q.Status, in.Status); err != nil {
			return nil, err
		}

		old := q.Status
		q.Status = in.Status
		now := s.now()
		if in.Status == models.QueryStatusResolved && q.ResolvedAt == nil {
			q.ResolvedAt = &now
		}
		q.UpdatedAt = now

		return &models.QueryStatusHistory{
			QueryID:         q.ID,
			OldStatus:       &old,
			NewStatus:       in.Status,
			UpdatedByUserID: user.ID,
			Comment:         optionalString(in.Comment),
		}, nil
	})
}

// CompleteQueryWithHistory resolves the query with notes and an optional image.
// The image is stored before any database write. If the write then fails the
// stored image is handed to the cleanup queue.
func (s *LifecycleService) CompleteQueryWithHistory(ctx context.Context, queryID string, in CompleteQueryInput) (result *models.Query, err error) {
	if err := s.validator.Struct(in); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid completion payload")
	}
	if _, err := s.queries.FindByID(ctx, queryID); err != nil {
		return nil, mapQueryLoadError(err, queryID)
	}
	user, err := s.identity.User(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	var imageRef *string
	if in.Image != nil {
		if s.attachments == nil {
			return nil, appErrors.Clone(appErrors.ErrAttachmentIO, "attachment store unavailable")
		}
		ref, storeErr := s.attachments.Store(ctx, AttachmentKindCompletion, in.Image)
		if storeErr != nil {
			return nil, storeErr
		}
		imageRef = &ref
		defer func() {
			if err != nil {
				s.attachments.ScheduleCleanup(ref)
			}
		}()
	}

	return s.transition(ctx, OperationComplete, queryID, func(ctx context.Context, q *models.Query) (*models.QueryStatusHistory, error) {
		if err := s.policy.Allow(q.Status, models.QueryStatusResolved); err != nil {
			return nil, err
		}

		old := q.Status
		now := s.now()
		q.Status = models.QueryStatusResolved
		if q.ResolvedAt == nil {
			q.ResolvedAt = &now
		}
		completedBy := user.ID
		q.CompletedByUserID = &completedBy
		notes := optionalString(in.CompletionNotes)
		if notes != nil {
			q.CompletionNotes = notes
		}
		if imageRef != nil {
			q.CompletionImagePath = imageRef
		}
		q.UpdatedAt = now

		return &models.QueryStatusHistory{
			QueryID:             q.ID,
			OldStatus:           &old,
			NewStatus:           models.QueryStatusResolved,
			UpdatedByUserID:     user.ID,
			Comment:             notes,
			CompletionImagePath: imageRef,
		}, nil
	})
}

// GetHistory returns a query's audit trail, newest first.
func (s *LifecycleService) GetHistory(ctx context.Context, queryID string) ([]models.QueryStatusHistory, error) {
	q, err := s.queries.FindByID(ctx, queryID)
	if err != nil {
		return nil, mapQueryLoadError(err, queryID)
	}
	key := HistoryCacheKey(queryID, q.Version)
	var cached []models.QueryStatusHistory
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return cached, nil
	}

	entries, err := s.history.ListByQuery(ctx, queryID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load status history")
	}
	if entries == nil {
		entries = []models.QueryStatusHistory{}
	}
	_ = s.cache.Set(ctx, key, entries, s.cacheTTL)
	return entries, nil
}

// GetUserHistory returns transitions performed by a user across all queries, newest first.
func (s *LifecycleService) GetUserHistory(ctx context.Context, userID string, limit, offset int) ([]models.QueryStatusHistory, error) {
	if _, err := s.identity.User(ctx, userID); err != nil {
		return nil, err
	}
	entries, err := s.history.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user status history")
	}
	if entries == nil {
		entries = []models.QueryStatusHistory{}
	}
	return entries, nil
}

// LatestTransition returns the newest history entry of a query.
func (s *LifecycleService) LatestTransition(ctx context.Context, queryID string) (*models.QueryStatusHistory, error) {
	entry, err := s.history.Latest(ctx, queryID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("no status history for query %s", queryID))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load latest transition")
	}
	return entry, nil
}

func (s *LifecycleService) transition(ctx context.Context, operation, queryID string, apply mutation) (result *models.Query, err error) {
	if s.tx == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "transaction provider missing")
	}
	start := time.Now()

	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	q, err := s.queries.FindByIDForUpdate(ctx, tx, queryID)
	if err != nil {
		err = mapQueryLoadError(err, queryID)
		return nil, err
	}
	old := q.Status

	entry, err := apply(ctx, q)
	if err != nil {
		return nil, err
	}

	if err = s.queries.Update(ctx, tx, q); err != nil {
		if errors.Is(err, repository.ErrStaleVersion) {
			err = appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "query was modified concurrently")
			return nil, err
		}
		err = appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to save query")
		return nil, err
	}

	entry.CreatedAt = q.UpdatedAt
	if err = s.history.Create(ctx, tx, entry); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to append status history")
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to commit transition")
		return nil, err
	}

	s.metrics.ObserveDBQuery("lifecycle."+operation, time.Since(start))
	s.metrics.RecordTransition(operation, string(old), string(q.Status))
	_ = s.cache.Invalidate(ctx, HistoryCacheKey(queryID, q.Version-1))
	logger.WithRequest(ctx, s.logger).Info("query transition committed",
		zap.String("operation", operation),
		zap.String("query_id", q.ID),
		zap.String("from", string(old)),
		zap.String("to", string(q.Status)),
		zap.String("actor", entry.UpdatedByUserID),
		zap.Int("version", q.Version),
	)
	return q, nil
}

func mapQueryLoadError(err error, queryID string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("query %s not found", queryID))
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load query")
}

func optionalString(v string) *string {
	trimmed := strings.TrimSpace(v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
