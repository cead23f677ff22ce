package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salmaanit26/Query-Management-System/internal/models"
	"github.com/salmaanit26/Query-Management-System/internal/service"
	appErrors "github.com/salmaanit26/Query-Management-System/pkg/errors"
)

const (
	testQueryID   = "3f2b8c1e-5d4a-4b7e-9c21-6a0d8e4f7b13"
	testWorkerID  = "8a6e0f52-1c3d-4e9b-a7f4-2d5b9c0e1a68"
	testAdminID   = "c4d7e9a1-2b3f-4a5c-8d6e-0f1a2b3c4d5e"
	testStudentID = "0b9a8c7d-6e5f-4a3b-9c2d-1e0f9a8b7c6d"
	testUserID    = "5e1c2d3b-4a6f-4e7d-9b8c-1a2f3e4d5c6b"
	testVenueID   = "9d8c7b6a-5f4e-4d3c-8b2a-1f0e9d8c7b6a"
)

type queryServiceMock struct {
	createIn   service.CreateQueryInput
	createCall bool
	createResp *models.Query
	createErr  error
	getResp    *models.Query
	getErr     error
	listFilter models.QueryFilter
	listResp   []models.Query
	listPage   *models.Pagination
	listCalled bool
	workerID   string
	raiserID   string
}

func (m *queryServiceMock) Create(ctx context.Context, in service.CreateQueryInput) (*models.Query, error) {
	m.createCall = true
	m.createIn = in
	return m.createResp, m.createErr
}

func (m *queryServiceMock) Get(ctx context.Context, id string) (*models.Query, error) {
	return m.getResp, m.getErr
}

func (m *queryServiceMock) List(ctx context.Context, filter models.QueryFilter) ([]models.Query, *models.Pagination, error) {
	m.listCalled = true
	m.listFilter = filter
	return m.listResp, m.listPage, nil
}

func (m *queryServiceMock) ListByWorker(ctx context.Context, workerID string) ([]models.Query, error) {
	m.workerID = workerID
	return []models.Query{}, nil
}

func (m *queryServiceMock) ListByRaiser(ctx context.Context, userID string) ([]models.Query, error) {
	m.raiserID = userID
	return []models.Query{}, nil
}

type attachmentLinkerMock struct {
	links []service.AttachmentLink
}

func (m *attachmentLinkerMock) Links(q *models.Query) ([]service.AttachmentLink, error) {
	return m.links, nil
}

func (m *attachmentLinkerMock) MaxFileSize() int64 { return 16 }

func multipartBody(t *testing.T, fields map[string]string, fileField, filename string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	if fileField != "" {
		part, err := writer.CreateFormFile(fileField, filename)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestQueryHandlerCreateMultipart(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := &queryServiceMock{createResp: &models.Query{ID: testQueryID, Status: models.QueryStatusPending}}
	handler := NewQueryHandler(svc, &attachmentLinkerMock{})

	body, contentType := multipartBody(t, map[string]string{
		"title":          "Leaking tap",
		"description":    "Tap in lab 2 drips",
		"category":       "plumbing",
		"venueId":        " "+testVenueID+" ",
		"raisedByUserId": testUserID,
	}, "image", "tap.png", []byte("png-bytes"))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/queries", body)
	req.Header.Set("Content-Type", contentType)
	c.Request = req

	handler.Create(c)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Leaking tap", svc.createIn.Title)
	assert.Equal(t, models.QueryCategory("plumbing"), svc.createIn.Category)
	assert.Equal(t, testVenueID, svc.createIn.VenueID)
	require.NotNil(t, svc.createIn.Image)
	assert.Equal(t, "tap.png", svc.createIn.Image.Filename)
	assert.Equal(t, []byte("png-bytes"), svc.createIn.Image.Data)
}

func TestQueryHandlerCreateRejectsOversizeImage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := &queryServiceMock{}
	handler := NewQueryHandler(svc, &attachmentLinkerMock{})

	body, contentType := multipartBody(t, map[string]string{"title": "t"}, "image", "big.png", bytes.Repeat([]byte("x"), 64))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/queries", body)
	req.Header.Set("Content-Type", contentType)
	c.Request = req

	handler.Create(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, svc.createIn.Title)
}

func TestQueryHandlerListParsesFilters(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := &queryServiceMock{
		listResp: []models.Query{{ID: testQueryID}},
		listPage: &models.Pagination{Page: 2, PageSize: 10, TotalCount: 11},
	}
	handler := NewQueryHandler(svc, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/queries?status=in_progress&category=ELECTRICAL&keyword=%20fan%20&page=2&pageSize=10", nil)
	c.Request = req

	handler.List(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.QueryStatusInProgress, svc.listFilter.Status)
	assert.Equal(t, models.QueryCategoryElectrical, svc.listFilter.Category)
	assert.Equal(t, "fan", svc.listFilter.Keyword)
	assert.Equal(t, 2, svc.listFilter.Page)

	var payload struct {
		Data       []models.Query     `json:"data"`
		Pagination *models.Pagination `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	require.NotNil(t, payload.Pagination)
	assert.Equal(t, 11, payload.Pagination.TotalCount)
	assert.Len(t, payload.Data, 1)
}

func TestQueryHandlerListRejectsUnknownStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := &queryServiceMock{}
	handler := NewQueryHandler(svc, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/queries?status=DONE", nil)
	c.Request = req

	handler.List(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, svc.listCalled)
}

func TestQueryHandlerGetNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewQueryHandler(&queryServiceMock{getErr: appErrors.Clone(appErrors.ErrNotFound, "query not found")}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/queries/missing", nil)
	c.Params = gin.Params{{Key: "id", Value: "missing"}}

	handler.Get(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "NOT_FOUND")
}

func TestQueryHandlerListByWorkerAndRaiser(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := &queryServiceMock{}
	handler := NewQueryHandler(svc, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/queries/worker/"+testWorkerID, nil)
	c.Params = gin.Params{{Key: "workerId", Value: testWorkerID}}
	handler.ListByWorker(c)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, testWorkerID, svc.workerID)

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/queries/user/"+testUserID, nil)
	c.Params = gin.Params{{Key: "userId", Value: testUserID}}
	handler.ListByRaiser(c)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, testUserID, svc.raiserID)
}

func TestQueryHandlerAttachments(t *testing.T) {
	gin.SetMode(gin.TestMode)
	image := "queries/a.png"
	svc := &queryServiceMock{getResp: &models.Query{ID: testQueryID, ImagePath: &image}}
	linker := &attachmentLinkerMock{links: []service.AttachmentLink{{
		Kind:      "image",
		Path:      image,
		URL:       "/api/v1/attachments/download?token=abc",
		ExpiresAt: time.Now().Add(time.Minute),
	}}}
	handler := NewQueryHandler(svc, linker)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/queries/"+testQueryID+"/attachments", nil)
	c.Params = gin.Params{{Key: "id", Value: testQueryID}}

	handler.Attachments(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "token=abc")
}

func TestQueryHandlerNotConfigured(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewQueryHandler(nil, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/queries", nil)

	handler.List(c)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestQueryHandlerRejectsMalformedIDs(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := &queryServiceMock{}
	handler := NewQueryHandler(svc, &attachmentLinkerMock{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/queries/abc", nil)
	c.Params = gin.Params{{Key: "id", Value: "abc"}}
	handler.Get(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "VALIDATION_ERROR")

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/queries?assignedTo=w-1", nil)
	handler.List(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, svc.listCalled)

	body, contentType := multipartBody(t, map[string]string{
		"title":          "Broken fan",
		"description":    "Ceiling fan in room 101 does not spin",
		"category":       "ELECTRICAL",
		"raisedByUserId": "1; DROP TABLE users",
	}, "", "", nil)
	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/queries", body)
	c.Request.Header.Set("Content-Type", contentType)
	handler.Create(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, svc.createCall)
}
