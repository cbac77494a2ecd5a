// Package domain defines the core types shared across the scraping pipeline:
// raw extracted fields, validated tender records, and run reporting.
package domain

import (
	"strconv"
	"time"
)

// TenderSource identifies the origin system on every exported record.
const TenderSource = "ETENDERS.GOV.ZA"

// Date and time layouts used on exported records.
const (
	DateLayout = "2006/01/02"
	TimeLayout = "15:04"
)

// Column names for both output files. Order and names are a compatibility
// contract with downstream consumers and must not change.
const (
	ColReportDate         = "REPORT_DATE"
	ColRecordID           = "RECORD_ID"
	ColTenderID           = "TENDER_ID"
	ColPublicationDate    = "PUBLICATION_DATE"
	ColClosingDate        = "CLOSING_DATE"
	ColClosingTime        = "CLOSING_TIME"
	ColTenderType         = "TENDER_TYPE"
	ColDescription        = "TENDER_DESCRIPTION"
	ColTenderSource       = "TENDER_SOURCE"
	ColDepartment         = "DEPARTMENT"
	ColProvince           = "PROVINCE"
	ColESubmission        = "ESUBMISSION"
	ColCategory           = "CATEGORY"
	ColBriefingSession    = "IS_THERE_A_BRIEFING_SESSION"
	ColBriefingDate       = "BRIEFING_DATE"
	ColCompulsoryBriefing = "COMPULSORY_BRIEFING"
	ColBriefingVenue      = "BRIEFING_SESSION_VENUE"
	ColLink               = "LINK"
	ColSOE                = "SOE"
	ColCostEstimate       = "COST_OF_SALES_ESTIMATE"
	ColCapabilityAvail    = "CAPABILITY_AVAILABLE"
	ColCapabilityGroup    = "CAPABILITY_GROUP"
	ColRequirements       = "REQUIREMENTS"
)

// Columns returns the output column names in contract order.
func Columns() []string {
	return []string{
		ColReportDate, ColRecordID, ColTenderID, ColPublicationDate,
		ColClosingDate, ColClosingTime, ColTenderType, ColDescription,
		ColTenderSource, ColDepartment, ColProvince, ColESubmission,
		ColCategory, ColBriefingSession, ColBriefingDate,
		ColCompulsoryBriefing, ColBriefingVenue, ColLink, ColSOE,
		ColCostEstimate, ColCapabilityAvail, ColCapabilityGroup,
		ColRequirements,
	}
}

// TriState represents a boolean derived from free-text source markup.
// Tokens that match neither the affirmative nor the negative set map to
// Unknown rather than No; the source is not trusted to be well-formed.
type TriState string

const (
	Yes     TriState = "Yes"
	No      TriState = "No"
	Unknown TriState = "Unknown"
)

// RawFields is one row's extracted fields before validation, keyed by output
// column name. Absent and empty keys are equivalent.
type RawFields map[string]string

// TenderRecord is a validated, cleaned tender ready for persistence.
type TenderRecord struct {
	// Run metadata
	ReportDate string
	RecordID   int64 // assigned at merge time; zero until inserted

	// Natural key
	TenderID string

	// Listing fields
	PublicationDate string
	ClosingDate     string
	ClosingTime     string
	TenderType      string
	Description     string
	Source          string
	Department      string
	Province        string
	ESubmission     TriState
	Category        string

	// Briefing session
	HasBriefingSession TriState
	BriefingDate       string
	CompulsoryBriefing TriState
	BriefingVenue      string

	// Extended fields
	DocumentLink        string
	SOE                 string
	CostEstimate        string
	CapabilityAvailable string
	CapabilityGroup     string
	Requirements        string
}

// Row renders the record as output cells in contract order. RECORD_ID is
// blank until the merger has assigned one.
func (r *TenderRecord) Row() []string {
	recordID := ""
	if r.RecordID > 0 {
		recordID = strconv.FormatInt(r.RecordID, 10)
	}

	return []string{
		r.ReportDate, recordID, r.TenderID, r.PublicationDate,
		r.ClosingDate, r.ClosingTime, r.TenderType, r.Description,
		r.Source, r.Department, r.Province, string(r.ESubmission),
		r.Category, string(r.HasBriefingSession), r.BriefingDate,
		string(r.CompulsoryBriefing), r.BriefingVenue, r.DocumentLink,
		r.SOE, r.CostEstimate, r.CapabilityAvailable, r.CapabilityGroup,
		r.Requirements,
	}
}

// MergeReport summarizes one merge pass for observability.
type MergeReport struct {
	Inserted   int
	Duplicates int
	Rejected   int
}

// RunSummary describes a completed scrape run.
type RunSummary struct {
	RunID         string
	ReportDate    string
	PagesVisited  int
	RowsProcessed int
	RowsSkipped   int
	RowsFiltered  int
	Merge         MergeReport
	Elapsed       time.Duration
}
