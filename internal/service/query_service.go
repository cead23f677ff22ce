package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/salmaanit26/Query-Management-System/internal/models"
	appErrors "github.com/salmaanit26/Query-Management-System/pkg/errors"
	"github.com/salmaanit26/Query-Management-System/pkg/logger"
)

type queryRepository interface {
	FindByID(ctx context.Context, id string) (*models.Query, error)
	Create(ctx context.Context, exec sqlx.ExtContext, q *models.Query) error
	List(ctx context.Context, filter models.QueryFilter) ([]models.Query, int, error)
	ListByWorker(ctx context.Context, workerID string) ([]models.Query, error)
	ListByRaiser(ctx context.Context, userID string) ([]models.Query, error)
}

type referenceResolver interface {
	User(ctx context.Context, id string) (*models.User, error)
	Venue(ctx context.Context, id string) (*models.Venue, error)
}

// CreateQueryInput describes a newly raised query.
type CreateQueryInput struct {
	Title          string               `validate:"required,max=200"`
	Description    string               `validate:"required"`
	Category       models.QueryCategory `validate:"required,query_category"`
	Priority       models.QueryPriority `validate:"omitempty,query_priority"`
	VenueID        string
	RaisedByUserID string
	Image          *AttachmentUpload
}

// QueryService handles intake and lookups of queries. Status changes go through LifecycleService.
type QueryService struct {
	repo        queryRepository
	refs        referenceResolver
	attachments attachmentWriter
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewQueryService constructs the service.
func NewQueryService(repo queryRepository, refs referenceResolver, attachments attachmentWriter, validate *validator.Validate, logger *zap.Logger) *QueryService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	registerQueryValidations(validate)
	return &QueryService{repo: repo, refs: refs, attachments: attachments, validator: validate, logger: logger}
}

// Create raises a new PENDING query. Creation writes no history entry.
func (s *QueryService) Create(ctx context.Context, in CreateQueryInput) (result *models.Query, err error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Category = models.QueryCategory(strings.ToUpper(strings.TrimSpace(string(in.Category))))
	in.Priority = models.QueryPriority(strings.ToUpper(strings.TrimSpace(string(in.Priority))))
	if err := s.validator.Struct(in); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid query payload")
	}

	q := &models.Query{
		Title:       in.Title,
		Description: in.Description,
		Category:    in.Category,
		Priority:    in.Priority,
		Status:      models.QueryStatusPending,
	}
	if q.Priority == "" {
		q.Priority = models.QueryPriorityMedium
	}
	if in.VenueID != "" {
		venue, err := s.refs.Venue(ctx, in.VenueID)
		if err != nil {
			return nil, err
		}
		q.VenueID = &venue.ID
	}
	if in.RaisedByUserID != "" {
		user, err := s.refs.User(ctx, in.RaisedByUserID)
		if err != nil {
			return nil, err
		}
		q.RaisedByUserID = &user.ID
	}

	if in.Image != nil {
		if s.attachments == nil {
			return nil, appErrors.Clone(appErrors.ErrAttachmentIO, "attachment store unavailable")
		}
		ref, storeErr := s.attachments.Store(ctx, AttachmentKindQuery, in.Image)
		if storeErr != nil {
			return nil, storeErr
		}
		q.ImagePath = &ref
		defer func() {
			if err != nil {
				s.attachments.ScheduleCleanup(ref)
			}
		}()
	}

	if err = s.repo.Create(ctx, nil, q); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to create query")
		return nil, err
	}
	logger.WithRequest(ctx, s.logger).Info("query created",
		zap.String("query_id", q.ID),
		zap.String("category", string(q.Category)),
		zap.Bool("with_image", q.ImagePath != nil),
	)
	return q, nil
}

// Get returns a query by id.
func (s *QueryService) Get(ctx context.Context, id string) (*models.Query, error) {
	q, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapQueryLoadError(err, id)
	}
	return q, nil
}

// List returns queries matching the filter with pagination metadata.
func (s *QueryService) List(ctx context.Context, filter models.QueryFilter) ([]models.Query, *models.Pagination, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 || filter.PageSize > 100 {
		filter.PageSize = 20
	}
	queries, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list queries")
	}
	return queries, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}, nil
}

// ListByWorker returns the worker's assigned queries, newest first.
func (s *QueryService) ListByWorker(ctx context.Context, workerID string) ([]models.Query, error) {
	if _, err := s.refs.User(ctx, workerID); err != nil {
		return nil, err
	}
	queries, err := s.repo.ListByWorker(ctx, workerID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list worker queries")
	}
	return queries, nil
}

// ListByRaiser returns the queries a user raised, newest first.
func (s *QueryService) ListByRaiser(ctx context.Context, userID string) ([]models.Query, error) {
	if _, err := s.refs.User(ctx, userID); err != nil {
		return nil, err
	}
	queries, err := s.repo.ListByRaiser(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list user queries")
	}
	return queries, nil
}
