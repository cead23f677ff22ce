package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDataset() Dataset {
	return Dataset{
		Headers: []string{"When", "From", "To", "Comment"},
		Widths:  []float64{2, 1, 1, 4},
		Rows: []map[string]string{
			{"When": "2024-05-01 10:00", "From": "PENDING", "To": "ASSIGNED", "Comment": "assigned to Ravi"},
			{"When": "2024-05-01 11:00", "From": "ASSIGNED", "To": "IN_PROGRESS", "Comment": "started, \"tools\" fetched"},
		},
	}
}

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleDataset(), "ignored")
	require.NoError(t, err)
	lines := bytes.Split(bytes.TrimSpace(out), []byte("\n"))
	require.Len(t, lines, 3)
	assert.Equal(t, "When,From,To,Comment", string(lines[0]))
	assert.Contains(t, string(lines[2]), `"started, ""tools"" fetched"`)
}

func TestPDFExporterRender(t *testing.T) {
	out, err := NewPDFExporter().Render(sampleDataset(), "Status history")
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestExportersRequireHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{}, "")
	require.Error(t, err)
	_, err = NewPDFExporter().Render(Dataset{}, "")
	require.Error(t, err)
}

func TestColumnWidthsFallback(t *testing.T) {
	widths := columnWidths(Dataset{Headers: []string{"a", "b"}})
	require.InDelta(t, pdfPageWidth/2, widths[0], 0.001)
	weighted := columnWidths(Dataset{Headers: []string{"a", "b"}, Widths: []float64{1, 3}})
	require.InDelta(t, pdfPageWidth/4, weighted[0], 0.001)
}
