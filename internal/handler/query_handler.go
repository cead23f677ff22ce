package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/salmaanit26/Query-Management-System/internal/dto"
	"github.com/salmaanit26/Query-Management-System/internal/models"
	"github.com/salmaanit26/Query-Management-System/internal/service"
	appErrors "github.com/salmaanit26/Query-Management-System/pkg/errors"
	"github.com/salmaanit26/Query-Management-System/pkg/response"
)

type queryService interface {
	Create(ctx context.Context, in service.CreateQueryInput) (*models.Query, error)
	Get(ctx context.Context, id string) (*models.Query, error)
	List(ctx context.Context, filter models.QueryFilter) ([]models.Query, *models.Pagination, error)
	ListByWorker(ctx context.Context, workerID string) ([]models.Query, error)
	ListByRaiser(ctx context.Context, userID string) ([]models.Query, error)
}

type attachmentLinker interface {
	Links(q *models.Query) ([]service.AttachmentLink, error)
	MaxFileSize() int64
}

// QueryHandler exposes query intake and lookup endpoints.
type QueryHandler struct {
	service     queryService
	attachments attachmentLinker
}

// NewQueryHandler constructs the handler.
func NewQueryHandler(service queryService, attachments attachmentLinker) *QueryHandler {
	return &QueryHandler{service: service, attachments: attachments}
}

// Create godoc
// @Summary Raise a maintenance query
// @Tags Queries
// @Accept mpfd
// @Produce json
// @Param title formData string true "Title"
// @Param description formData string true "Description"
// @Param category formData string true "Category"
// @Param priority formData string false "Priority"
// @Param venueId formData string false "Venue ID"
// @Param raisedByUserId formData string false "Raising user ID"
// @Param image formData file false "Photo of the problem"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /queries [post]
func (h *QueryHandler) Create(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "query service not configured"))
		return
	}
	var form dto.CreateQueryForm
	if err := c.ShouldBind(&form); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid query payload"))
		return
	}
	venueID := strings.TrimSpace(form.VenueID)
	raisedBy := strings.TrimSpace(form.RaisedByUserID)
	if err := checkIDs("venueId", venueID, "raisedByUserId", raisedBy); err != nil {
		response.Error(c, err)
		return
	}
	var maxBytes int64
	if h.attachments != nil {
		maxBytes = h.attachments.MaxFileSize()
	}
	image, err := readUpload(c, "image", maxBytes)
	if err != nil {
		response.Error(c, err)
		return
	}
	q, err := h.service.Create(c.Request.Context(), service.CreateQueryInput{
		Title:          form.Title,
		Description:    form.Description,
		Category:       models.QueryCategory(form.Category),
		Priority:       models.QueryPriority(form.Priority),
		VenueID:        venueID,
		RaisedByUserID: raisedBy,
		Image:          image,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, q)
}

// List godoc
// @Summary List queries
// @Tags Queries
// @Produce json
// @Param status query string false "Status"
// @Param category query string false "Category"
// @Param priority query string false "Priority"
// @Param venueId query string false "Venue ID"
// @Param raisedBy query string false "Raising user ID"
// @Param assignedTo query string false "Assigned worker ID"
// @Param keyword query string false "Search in title and description"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /queries [get]
func (h *QueryHandler) List(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "query service not configured"))
		return
	}
	var query dto.QueryListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid query parameters"))
		return
	}
	filter := models.QueryFilter{
		VenueID:    strings.TrimSpace(query.VenueID),
		RaisedBy:   strings.TrimSpace(query.RaisedBy),
		AssignedTo: strings.TrimSpace(query.AssignedTo),
		Keyword:    strings.TrimSpace(query.Keyword),
		Page:       query.Page,
		PageSize:   query.PageSize,
	}
	if err := checkIDs("venueId", filter.VenueID, "raisedBy", filter.RaisedBy, "assignedTo", filter.AssignedTo); err != nil {
		response.Error(c, err)
		return
	}
	if query.Status != "" {
		status, ok := models.ParseQueryStatus(query.Status)
		if !ok {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unknown status"))
			return
		}
		filter.Status = status
	}
	if query.Category != "" {
		category, ok := models.ParseQueryCategory(query.Category)
		if !ok {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unknown category"))
			return
		}
		filter.Category = category
	}
	if query.Priority != "" {
		priority, ok := models.ParseQueryPriority(query.Priority)
		if !ok {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unknown priority"))
			return
		}
		filter.Priority = priority
	}
	queries, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, queries, pagination)
}

// Get godoc
// @Summary Get query detail
// @Tags Queries
// @Produce json
// @Param id path string true "Query ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /queries/{id} [get]
func (h *QueryHandler) Get(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "query service not configured"))
		return
	}
	if err := checkIDs("id", c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	q, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, q)
}

// ListByWorker godoc
// @Summary List queries assigned to a worker
// @Tags Queries
// @Produce json
// @Param workerId path string true "Worker ID"
// @Success 200 {object} response.Envelope
// @Router /queries/worker/{workerId} [get]
func (h *QueryHandler) ListByWorker(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "query service not configured"))
		return
	}
	if err := checkIDs("workerId", c.Param("workerId")); err != nil {
		response.Error(c, err)
		return
	}
	queries, err := h.service.ListByWorker(c.Request.Context(), c.Param("workerId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, queries)
}

// ListByRaiser godoc
// @Summary List queries raised by a user
// @Tags Queries
// @Produce json
// @Param userId path string true "User ID"
// @Success 200 {object} response.Envelope
// @Router /queries/user/{userId} [get]
func (h *QueryHandler) ListByRaiser(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "query service not configured"))
		return
	}
	if err := checkIDs("userId", c.Param("userId")); err != nil {
		response.Error(c, err)
		return
	}
	queries, err := h.service.ListByRaiser(c.Request.Context(), c.Param("userId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, queries)
}

// Attachments godoc
// @Summary Signed download links for a query's images
// @Tags Attachments
// @Produce json
// @Param id path string true "Query ID"
// @Success 200 {object} response.Envelope
// @Router /queries/{id}/attachments [get]
func (h *QueryHandler) Attachments(c *gin.Context) {
	if h.service == nil || h.attachments == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "attachment service not configured"))
		return
	}
	if err := checkIDs("id", c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	q, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	links, err := h.attachments.Links(q)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, links)
}
