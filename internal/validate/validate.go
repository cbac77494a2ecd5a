// Package validate turns raw extracted fields into cleaned TenderRecords,
// rejecting records that fail structural checks and logging data-quality
// warnings for the soft ones. The source system is not fully trusted, so
// suspicious-but-usable values are kept and flagged rather than dropped.
package validate

import (
	"net/url"
	"regexp"
	"time"

	"github.com/jonesrussell/gotenders/internal/domain"
	"github.com/jonesrussell/gotenders/internal/logger"
	"github.com/jonesrussell/gotenders/internal/textutil"
)

// Rejection reasons.
const (
	ReasonNoIdentifier        = "no-identifier"
	ReasonMalformedIdentifier = "malformed-identifier"
)

// maxIdentifierLength bounds the accepted tender number length.
const maxIdentifierLength = 256

// identifierPattern is the expected tender number shape: starts with an
// alphanumeric, then printable identifier characters as seen on the portal
// (e.g. "RFQ-100", "SANRAL N.002-019-2025/1").
var identifierPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9 ._/()&:,+-]*$`)

// ValidationFailure reports a record excluded from both outputs.
type ValidationFailure struct {
	Reason string
}

// Error implements the error interface.
func (f *ValidationFailure) Error() string {
	return "validation failed: " + f.Reason
}

// Validator checks and cleans raw fields into TenderRecords.
type Validator struct {
	reportDate string
	logger     logger.Interface
}

// New creates a Validator stamping records with the given report date.
func New(reportDate string, log logger.Interface) *Validator {
	return &Validator{
		reportDate: reportDate,
		logger:     log.WithComponent("validate"),
	}
}

// Validate produces a cleaned TenderRecord or a ValidationFailure. All text
// fields are whitespace-normalized; date and link checks that fail softly
// are logged as warnings instead of rejecting the record.
func (v *Validator) Validate(raw domain.RawFields) (*domain.TenderRecord, error) {
	fields := textutil.CleanAll(map[string]string(raw))

	tenderID := fields[domain.ColTenderID]
	if tenderID == "" {
		return nil, &ValidationFailure{Reason: ReasonNoIdentifier}
	}
	if len(tenderID) > maxIdentifierLength || !identifierPattern.MatchString(tenderID) {
		v.logger.Warn("rejecting malformed tender number", "tender_id", tenderID)
		return nil, &ValidationFailure{Reason: ReasonMalformedIdentifier}
	}

	record := &domain.TenderRecord{
		ReportDate:          v.reportDate,
		TenderID:            tenderID,
		PublicationDate:     fields[domain.ColPublicationDate],
		ClosingDate:         fields[domain.ColClosingDate],
		ClosingTime:         fields[domain.ColClosingTime],
		TenderType:          fields[domain.ColTenderType],
		Description:         fields[domain.ColDescription],
		Source:              domain.TenderSource,
		Department:          fields[domain.ColDepartment],
		Province:            fields[domain.ColProvince],
		ESubmission:         triState(fields[domain.ColESubmission]),
		Category:            fields[domain.ColCategory],
		HasBriefingSession:  triState(fields[domain.ColBriefingSession]),
		BriefingDate:        fields[domain.ColBriefingDate],
		CompulsoryBriefing:  triState(fields[domain.ColCompulsoryBriefing]),
		BriefingVenue:       fields[domain.ColBriefingVenue],
		DocumentLink:        fields[domain.ColLink],
		SOE:                 fields[domain.ColSOE],
		CostEstimate:        fields[domain.ColCostEstimate],
		CapabilityAvailable: fields[domain.ColCapabilityAvail],
		CapabilityGroup:     fields[domain.ColCapabilityGroup],
		Requirements:        fields[domain.ColRequirements],
	}

	v.checkDates(record)
	v.checkLink(record)

	return record, nil
}

// checkDates verifies the closing date parses to a real calendar date and
// orders sanely against the publication date. Both checks warn rather than
// reject; the raw value is preserved in the record either way.
func (v *Validator) checkDates(record *domain.TenderRecord) {
	var closing, publication time.Time
	var closingOK, publicationOK bool

	if record.ClosingDate != "" {
		parsed, err := time.Parse(domain.DateLayout, record.ClosingDate)
		if err != nil {
			v.logger.Warn("closing date is not a calendar date",
				"tender_id", record.TenderID,
				"closing_date", record.ClosingDate,
			)
		} else {
			closing, closingOK = parsed, true
		}
	}

	if record.PublicationDate != "" {
		parsed, err := time.Parse(domain.DateLayout, record.PublicationDate)
		if err != nil {
			v.logger.Warn("publication date is not a calendar date",
				"tender_id", record.TenderID,
				"publication_date", record.PublicationDate,
			)
		} else {
			publication, publicationOK = parsed, true
		}
	}

	if closingOK && publicationOK && closing.Before(publication) {
		v.logger.Warn("closing date precedes publication date",
			"tender_id", record.TenderID,
			"closing_date", record.ClosingDate,
			"publication_date", record.PublicationDate,
		)
	}
}

// checkLink clears the document link when it is not a well-formed absolute
// http(s) URL.
func (v *Validator) checkLink(record *domain.TenderRecord) {
	if record.DocumentLink == "" {
		return
	}

	parsed, err := url.Parse(record.DocumentLink)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		v.logger.Warn("clearing malformed document link",
			"tender_id", record.TenderID,
			"link", record.DocumentLink,
		)
		record.DocumentLink = ""
	}
}

// triState re-interprets a cleaned cell as a TriState, defaulting to Unknown
// for values that are neither of the rendered forms.
func triState(value string) domain.TriState {
	switch domain.TriState(value) {
	case domain.Yes, domain.No:
		return domain.TriState(value)
	default:
		return domain.Unknown
	}
}
