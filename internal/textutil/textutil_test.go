package textutil_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/gotenders/internal/textutil"
)

func TestClean(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain text unchanged",
			input: "Supply of stationery",
			want:  "Supply of stationery",
		},
		{
			name:  "surrounding whitespace trimmed",
			input: "  RFQ/2025/001  ",
			want:  "RFQ/2025/001",
		},
		{
			name:  "internal whitespace collapsed",
			input: "Supply\tof \n stationery",
			want:  "Supply of stationery",
		},
		{
			name:  "control characters stripped",
			input: "Supply\x00of\x1fstationery",
			want:  "Supplyofstationery",
		},
		{
			name:  "empty input",
			input: "",
			want:  "",
		},
		{
			name:  "whitespace only",
			input: " \n\t ",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, textutil.Clean(tt.input))
		})
	}
}

func TestCleanAll(t *testing.T) {
	t.Parallel()

	fields := map[string]string{
		"TENDER_ID":   " RFQ-100 ",
		"DESCRIPTION": "Two\n\nlines",
	}

	cleaned := textutil.CleanAll(fields)

	require.Equal(t, "RFQ-100", cleaned["TENDER_ID"])
	require.Equal(t, "Two lines", cleaned["DESCRIPTION"])
}
