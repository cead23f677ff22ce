package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/salmaanit26/Query-Management-System/internal/models"
	appErrors "github.com/salmaanit26/Query-Management-System/pkg/errors"
	"github.com/salmaanit26/Query-Management-System/pkg/export"
)

// Supported history export formats.
const (
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
)

type historyReader interface {
	GetHistory(ctx context.Context, queryID string) ([]models.QueryStatusHistory, error)
}

type queryReader interface {
	Get(ctx context.Context, id string) (*models.Query, error)
}

type datasetRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
	ContentType() string
	Extension() string
}

// HistoryExport is a rendered audit trail ready for download.
type HistoryExport struct {
	Filename    string
	ContentType string
	Data        []byte
}

// HistoryExportService renders a query's status history as CSV or PDF.
type HistoryExportService struct {
	queries   queryReader
	history   historyReader
	renderers map[string]datasetRenderer
	logger    *zap.Logger
}

// NewHistoryExportService constructs the service with the default renderers.
func NewHistoryExportService(queries queryReader, history historyReader, logger *zap.Logger) *HistoryExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HistoryExportService{
		queries: queries,
		history: history,
		renderers: map[string]datasetRenderer{
			ExportFormatCSV: export.NewCSVExporter(),
			ExportFormatPDF: export.NewPDFExporter(),
		},
		logger: logger,
	}
}

// Export renders the history of queryID in the requested format.
func (s *HistoryExportService) Export(ctx context.Context, queryID, format string) (*HistoryExport, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = ExportFormatCSV
	}
	renderer, ok := s.renderers[format]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}

	q, err := s.queries.Get(ctx, queryID)
	if err != nil {
		return nil, err
	}
	entries, err := s.history.GetHistory(ctx, queryID)
	if err != nil {
		return nil, err
	}

	title := fmt.Sprintf("Status history: %s (%s)", q.Title, q.Status)
	payload, err := renderer.Render(historyDataset(entries), title)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render history export")
	}
	s.logger.Debug("history exported", zap.String("query_id", queryID), zap.String("format", format), zap.Int("entries", len(entries)))

	return &HistoryExport{
		Filename:    fmt.Sprintf("query-%s-history.%s", queryID, renderer.Extension()),
		ContentType: renderer.ContentType(),
		Data:        payload,
	}, nil
}

func historyDataset(entries []models.QueryStatusHistory) export.Dataset {
	headers := []string{"When", "From", "To", "Updated By", "Comment", "Completion Image"}
	rows := make([]map[string]string, 0, len(entries))
	for _, e := range entries {
		from := ""
		if e.OldStatus != nil {
			from = string(*e.OldStatus)
		}
		by := e.UpdatedByUserID
		if e.UpdatedByName != nil && *e.UpdatedByName != "" {
			by = *e.UpdatedByName
		}
		rows = append(rows, map[string]string{
			"When":             e.CreatedAt.UTC().Format(time.RFC3339),
			"From":             from,
			"To":               string(e.NewStatus),
			"Updated By":       by,
			"Comment":          deref(e.Comment),
			"Completion Image": deref(e.CompletionImagePath),
		})
	}
	return export.Dataset{Headers: headers, Rows: rows, Widths: []float64{3, 2, 2, 2.5, 5, 3}}
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
