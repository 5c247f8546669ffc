package export

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCSVExporterSubstitutesEmptyCells(t *testing.T) {
	exporter := NewCSVExporter()

	out, err := exporter.Render(Dataset{
		Headers:   []string{"ID", "Track"},
		EmptyCell: "-",
		Rows: []map[string]string{
			{"ID": "s1", "Track": "car"},
			{"ID": "s2"},
		},
	})
	require.NoError(t, err)
	require.Equal(t, "ID,Track\ns1,car\ns2,-\n", string(out))
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	exporter := NewCSVExporter()

	_, err := exporter.Render(Dataset{})
	require.Error(t, err)
}
