package handler

import (
	"bytes"
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/salmaanit26/Query-Management-System/internal/dto"
	"github.com/salmaanit26/Query-Management-System/internal/models"
	"github.com/salmaanit26/Query-Management-System/internal/service"
	appErrors "github.com/salmaanit26/Query-Management-System/pkg/errors"
	"github.com/salmaanit26/Query-Management-System/pkg/response"
)

type lifecycleService interface {
	AssignWorker(ctx context.Context, queryID string, in service.AssignWorkerInput) (*models.Query, error)
	UpdateStatusWithHistory(ctx context.Context, queryID string, in service.UpdateStatusInput) (*models.Query, error)
	CompleteQueryWithHistory(ctx context.Context, queryID string, in service.CompleteQueryInput) (*models.Query, error)
	GetHistory(ctx context.Context, queryID string) ([]models.QueryStatusHistory, error)
	GetUserHistory(ctx context.Context, userID string, limit, offset int) ([]models.QueryStatusHistory, error)
	LatestTransition(ctx context.Context, queryID string) (*models.QueryStatusHistory, error)
}

type historyExporter interface {
	Export(ctx context.Context, queryID, format string) (*service.HistoryExport, error)
}

// LifecycleHandler exposes status transitions and the audit trail.
type LifecycleHandler struct {
	service   lifecycleService
	exporter  historyExporter
	maxUpload int64
}

// NewLifecycleHandler constructs the handler. maxUpload bounds completion images.
func NewLifecycleHandler(service lifecycleService, exporter historyExporter, maxUpload int64) *LifecycleHandler {
	return &LifecycleHandler{service: service, exporter: exporter, maxUpload: maxUpload}
}

// Assign godoc
// @Summary Assign a worker to a query
// @Tags Lifecycle
// @Accept json
// @Produce json
// @Param id path string true "Query ID"
// @Param payload body dto.AssignWorkerRequest true "Assignment"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /queries/{id}/assign [put]
func (h *LifecycleHandler) Assign(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "lifecycle service not configured"))
		return
	}
	var req dto.AssignWorkerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid assignment payload"))
		return
	}
	in := service.AssignWorkerInput{
		WorkerID:         strings.TrimSpace(req.WorkerID),
		AssignedByUserID: strings.TrimSpace(req.AssignedBy),
	}
	if err := checkIDs("id", c.Param("id"), "workerId", in.WorkerID, "assignedBy", in.AssignedByUserID); err != nil {
		response.Error(c, err)
		return
	}
	q, err := h.service.AssignWorker(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, q)
}

// UpdateStatus godoc
// @Summary Change query status
// @Tags Lifecycle
// @Accept json
// @Produce json
// @Param id path string true "Query ID"
// @Param payload body dto.UpdateStatusRequest true "Status change"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /queries/{id}/status [put]
func (h *LifecycleHandler) UpdateStatus(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "lifecycle service not configured"))
		return
	}
	var req dto.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid status payload"))
		return
	}
	status, ok := models.ParseQueryStatus(req.Status)
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unknown status"))
		return
	}
	in := service.UpdateStatusInput{
		Status:  status,
		UserID:  strings.TrimSpace(req.UserID),
		Comment: req.Comment,
	}
	if err := checkIDs("id", c.Param("id"), "userId", in.UserID); err != nil {
		response.Error(c, err)
		return
	}
	q, err := h.service.UpdateStatusWithHistory(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, q)
}

// Complete godoc
// @Summary Complete a query with notes and an optional photo
// @Tags Lifecycle
// @Accept mpfd
// @Produce json
// @Param id path string true "Query ID"
// @Param userId formData string true "Completing user ID"
// @Param completionNotes formData string false "Notes"
// @Param completionImage formData file false "Completion photo"
// @Success 200 {object} response.Envelope
// @Failure 500 {object} response.Envelope
// @Router /queries/{id}/complete [put]
func (h *LifecycleHandler) Complete(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "lifecycle service not configured"))
		return
	}
	var form dto.CompleteQueryForm
	if err := c.ShouldBind(&form); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid completion payload"))
		return
	}
	userID := strings.TrimSpace(form.UserID)
	if err := checkIDs("id", c.Param("id"), "userId", userID); err != nil {
		response.Error(c, err)
		return
	}
	image, err := readUpload(c, "completionImage", h.maxUpload)
	if err != nil {
		response.Error(c, err)
		return
	}
	q, err := h.service.CompleteQueryWithHistory(c.Request.Context(), c.Param("id"), service.CompleteQueryInput{
		UserID:          userID,
		CompletionNotes: form.CompletionNotes,
		Image:           image,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, q)
}

// History godoc
// @Summary Status history of a query, newest first
// @Tags Lifecycle
// @Produce json
// @Param id path string true "Query ID"
// @Success 200 {object} response.Envelope
// @Router /queries/{id}/history [get]
func (h *LifecycleHandler) History(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "lifecycle service not configured"))
		return
	}
	if err := checkIDs("id", c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	entries, err := h.service.GetHistory(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, entries)
}

// LatestHistory godoc
// @Summary Most recent status transition of a query
// @Tags Lifecycle
// @Produce json
// @Param id path string true "Query ID"
// @Success 200 {object} response.Envelope
// @Router /queries/{id}/history/latest [get]
func (h *LifecycleHandler) LatestHistory(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "lifecycle service not configured"))
		return
	}
	if err := checkIDs("id", c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	entry, err := h.service.LatestTransition(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, entry)
}

// ExportHistory godoc
// @Summary Download a query's status history
// @Tags Lifecycle
// @Produce text/csv
// @Produce application/pdf
// @Param id path string true "Query ID"
// @Param format query string false "csv or pdf"
// @Success 200 {file} file
// @Router /queries/{id}/history/export [get]
func (h *LifecycleHandler) ExportHistory(c *gin.Context) {
	if h.exporter == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "history export not configured"))
		return
	}
	var query dto.HistoryExportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid export parameters"))
		return
	}
	if err := checkIDs("id", c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	out, err := h.exporter.Export(c.Request.Context(), c.Param("id"), query.Format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Download(c, out.Filename, out.ContentType, int64(len(out.Data)), bytes.NewReader(out.Data), false)
}

// UserHistory godoc
// @Summary Transitions recorded by a user
// @Tags Lifecycle
// @Produce json
// @Param id path string true "User ID"
// @Param limit query int false "Limit"
// @Param offset query int false "Offset"
// @Success 200 {object} response.Envelope
// @Router /users/{id}/status-history [get]
func (h *LifecycleHandler) UserHistory(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "lifecycle service not configured"))
		return
	}
	var query dto.UserHistoryQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid paging parameters"))
		return
	}
	if err := checkIDs("id", c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	entries, err := h.service.GetUserHistory(c.Request.Context(), c.Param("id"), query.Limit, query.Offset)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, entries)
}
