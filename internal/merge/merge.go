// Package merge folds validated records into the cumulative store and the
// per-run snapshot. The cumulative store is append-only and deduplicated by
// tender number; the snapshot is always the full, undeduplicated view of the
// current run.
package merge

import (
	"slices"
	"strconv"

	"github.com/jonesrussell/gotenders/internal/domain"
	"github.com/jonesrussell/gotenders/internal/logger"
	"github.com/jonesrussell/gotenders/internal/store"
)

// Merger performs the dedup merge for one run.
type Merger struct {
	cumulative store.Tabular
	snapshot   store.Tabular
	logger     logger.Interface
}

// New creates a Merger over the two output stores.
func New(cumulative, snapshot store.Tabular, log logger.Interface) *Merger {
	return &Merger{
		cumulative: cumulative,
		snapshot:   snapshot,
		logger:     log.WithComponent("merge"),
	}
}

// Merge stages every record into the snapshot and inserts unseen tender
// numbers into the cumulative store, assigning each a record ID one greater
// than the maximum already present. Records are processed strictly in
// extraction order, so a tender number appearing twice within one run is
// inserted exactly once. Existing rows are never modified.
func (m *Merger) Merge(records []*domain.TenderRecord, rejected int) domain.MergeReport {
	seen, maxID := m.existingState()
	report := domain.MergeReport{Rejected: rejected}

	for _, record := range records {
		// Snapshot rows carry no record ID; identity lives in the
		// cumulative store only.
		m.snapshot.Append(record.Row())

		if _, duplicate := seen[record.TenderID]; duplicate {
			report.Duplicates++
			m.logger.Debug("skipping duplicate tender", "tender_id", record.TenderID)
			continue
		}

		maxID++
		record.RecordID = maxID
		m.cumulative.Append(record.Row())
		seen[record.TenderID] = struct{}{}
		report.Inserted++
	}

	m.logger.Info("merge complete",
		"inserted", report.Inserted,
		"duplicates", report.Duplicates,
		"rejected", report.Rejected,
	)

	return report
}

// existingState scans the cumulative store for known tender numbers and the
// highest assigned record ID.
func (m *Merger) existingState() (map[string]struct{}, int64) {
	columns := m.cumulative.Columns()
	idIdx := slices.Index(columns, domain.ColTenderID)
	recordIdx := slices.Index(columns, domain.ColRecordID)

	seen := make(map[string]struct{})
	var maxID int64

	for _, row := range m.cumulative.ExistingRows() {
		if id := row[idIdx]; id != "" {
			seen[id] = struct{}{}
		}
		if recordID, err := strconv.ParseInt(row[recordIdx], 10, 64); err == nil && recordID > maxID {
			maxID = recordID
		}
	}

	return seen, maxID
}
