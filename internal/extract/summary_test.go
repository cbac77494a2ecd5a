package extract_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/gotenders/internal/extract"
)

const summaryRowHTML = `<tr>
	<td class="details-control"></td>
	<td>Services: Professional</td>
	<td> Supply and delivery of
		stationery </td>
	<td>✔</td>
	<td>31/07/2025</td>
</tr>`

func TestParseSummary(t *testing.T) {
	t.Parallel()

	summary, err := extract.ParseSummary(summaryRowHTML)
	require.NoError(t, err)

	require.Equal(t, "Services: Professional", summary.Category)
	require.Equal(t, "Supply and delivery of stationery", summary.Description)
	require.Equal(t, "✔", summary.ESubmissionRaw)
	require.Equal(t, "31/07/2025", summary.AdvertisedRaw)
	require.Equal(t, time.Date(2025, time.July, 31, 0, 0, 0, 0, time.UTC), summary.Advertised)
}

func TestParseSummaryUnparsableDate(t *testing.T) {
	t.Parallel()

	row := `<tr><td></td><td>Goods</td><td>Desc</td><td></td><td>soon</td></tr>`

	summary, err := extract.ParseSummary(row)
	require.NoError(t, err)
	require.Equal(t, "soon", summary.AdvertisedRaw)
	require.True(t, summary.Advertised.IsZero())
}

func TestParseSummaryNotATenderRow(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		row  string
	}{
		{"empty row", `<tr></tr>`},
		{"too few cells", `<tr><td>No tenders found</td></tr>`},
		{"child detail row", `<tr class="child"><td colspan="5">detail</td></tr>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := extract.ParseSummary(tt.row)
			require.ErrorIs(t, err, extract.ErrNotATenderRow)
		})
	}
}
