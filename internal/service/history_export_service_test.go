package service

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salmaanit26/Query-Management-System/internal/models"
	appErrors "github.com/salmaanit26/Query-Management-System/pkg/errors"
)

type historyReaderStub struct {
	entries []models.QueryStatusHistory
}

func (s historyReaderStub) GetHistory(context.Context, string) ([]models.QueryStatusHistory, error) {
	return s.entries, nil
}

type queryReaderStub struct {
	query *models.Query
}

func (s queryReaderStub) Get(_ context.Context, id string) (*models.Query, error) {
	if s.query == nil || s.query.ID != id {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "query not found")
	}
	return s.query, nil
}

func exportFixture() *HistoryExportService {
	old := models.QueryStatusPending
	name := "Ravi"
	comment := "assigned to Ravi"
	entries := []models.QueryStatusHistory{{
		ID:              "h-1",
		QueryID:         "q-1",
		OldStatus:       &old,
		NewStatus:       models.QueryStatusAssigned,
		UpdatedByUserID: "w-1",
		UpdatedByName:   &name,
		Comment:         &comment,
		CreatedAt:       time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	}}
	q := &models.Query{ID: "q-1", Title: "Leaky faucet", Status: models.QueryStatusAssigned}
	return NewHistoryExportService(queryReaderStub{query: q}, historyReaderStub{entries: entries}, nil)
}

func TestHistoryExportCSV(t *testing.T) {
	svc := exportFixture()

	out, err := svc.Export(context.Background(), "q-1", "CSV")
	require.NoError(t, err)
	assert.Equal(t, "query-q-1-history.csv", out.Filename)
	assert.Equal(t, "text/csv", out.ContentType)
	lines := strings.Split(strings.TrimSpace(string(out.Data)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "2024-05-01T10:00:00Z,PENDING,ASSIGNED,Ravi,assigned to Ravi,", lines[1])
}

func TestHistoryExportPDF(t *testing.T) {
	svc := exportFixture()

	out, err := svc.Export(context.Background(), "q-1", "pdf")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", out.ContentType)
	assert.True(t, bytes.HasPrefix(out.Data, []byte("%PDF")))
}

func TestHistoryExportErrors(t *testing.T) {
	svc := exportFixture()

	_, err := svc.Export(context.Background(), "q-1", "xlsx")
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.Export(context.Background(), "q-404", "csv")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}
