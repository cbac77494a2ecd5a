// Package extract parses one tender's fields from the listing summary row
// and the expanded detail view. Field reads are independent: a single
// missing or malformed field yields an empty value, except the tender
// number and description, whose absence aborts the row.
package extract

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonesrussell/gotenders/internal/domain"
	"github.com/jonesrussell/gotenders/internal/logger"
	"github.com/jonesrussell/gotenders/internal/textutil"
)

// Failure reasons.
const (
	ReasonMissingRequiredField = "missing-required-field"
	ReasonUnparsableDetail     = "unparsable-detail"
)

// Detail view labels. The expanded row renders label/value cell pairs with
// the label in a <b> element.
const (
	labelTenderNumber    = "Tender Number:"
	labelTenderType      = "Tender Type:"
	labelOrganOfState    = "Organ Of State:"
	labelProvince        = "Province:"
	labelClosingDate     = "Closing Date:"
	labelBriefingSession = "Is there a briefing session?"
	labelCompulsory      = "Is it compulsory?"
	labelBriefingDate    = "Briefing Date and Time"
	labelBriefingVenue   = "Briefing Venue"
	labelDocuments       = "TENDER DOCUMENTS"
)

// ExtractFailure reports a row whose required fields could not be read.
type ExtractFailure struct {
	Reason string
	Field  string
}

// Error implements the error interface.
func (f *ExtractFailure) Error() string {
	if f.Field != "" {
		return fmt.Sprintf("extract failed: %s (%s)", f.Reason, f.Field)
	}
	return "extract failed: " + f.Reason
}

// Extractor reads a tender's raw fields out of rendered HTML.
type Extractor struct {
	logger logger.Interface
}

// New creates a new Extractor.
func New(log logger.Interface) *Extractor {
	return &Extractor{logger: log.WithComponent("extract")}
}

// Extract combines the summary-row fields with the expanded detail view
// into one RawFields map. detailHTML is the listing table's HTML while the
// row is expanded; only one row is ever expanded at a time, so label lookup
// over the whole fragment is unambiguous.
func (e *Extractor) Extract(summary *Summary, detailHTML string) (domain.RawFields, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(detailHTML))
	if err != nil {
		return nil, &ExtractFailure{Reason: ReasonUnparsableDetail}
	}

	tenderID := valueByLabel(doc, labelTenderNumber)
	if tenderID == "" {
		return nil, &ExtractFailure{Reason: ReasonMissingRequiredField, Field: domain.ColTenderID}
	}
	if summary.Description == "" {
		return nil, &ExtractFailure{Reason: ReasonMissingRequiredField, Field: domain.ColDescription}
	}

	closingDate, closingTime := ParseClosingDateTime(valueByLabel(doc, labelClosingDate))

	publicationDate := summary.AdvertisedRaw
	if !summary.Advertised.IsZero() {
		publicationDate = summary.Advertised.Format(domain.DateLayout)
	}

	fields := domain.RawFields{
		domain.ColTenderID:           tenderID,
		domain.ColPublicationDate:    publicationDate,
		domain.ColClosingDate:        closingDate,
		domain.ColClosingTime:        closingTime,
		domain.ColTenderType:         valueByLabel(doc, labelTenderType),
		domain.ColDescription:        summary.Description,
		domain.ColDepartment:         valueByLabel(doc, labelOrganOfState),
		domain.ColProvince:           valueByLabel(doc, labelProvince),
		domain.ColESubmission:        string(ParseESubmission(summary.ESubmissionRaw)),
		domain.ColCategory:           summary.Category,
		domain.ColBriefingSession:    string(ParseTriState(valueByLabel(doc, labelBriefingSession))),
		domain.ColBriefingDate:       ParseDayMonthYear(valueByLabel(doc, labelBriefingDate)),
		domain.ColCompulsoryBriefing: string(ParseTriState(valueByLabel(doc, labelCompulsory))),
		domain.ColBriefingVenue:      valueByLabel(doc, labelBriefingVenue),
		domain.ColLink:               firstDocumentLink(doc),
	}

	e.logger.Debug("extracted tender fields",
		"tender_id", tenderID,
		"publication_date", publicationDate,
	)

	return fields, nil
}

// valueByLabel finds a <b> element whose text contains label and returns the
// text of the cell following the label's cell. Missing labels yield an empty
// value rather than an error; each field read is independent.
func valueByLabel(doc *goquery.Document, label string) string {
	value := ""
	doc.Find("b").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if !strings.Contains(sel.Text(), label) {
			return true
		}
		value = textutil.Clean(sel.Closest("td").Next().Text())
		return false
	})
	return value
}

// firstDocumentLink returns the first download link in the tender documents
// section, or an empty string when the section is absent.
func firstDocumentLink(doc *goquery.Document) string {
	link := ""
	doc.Find("b").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if !strings.Contains(sel.Text(), labelDocuments) {
			return true
		}
		sel.Closest("table").Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
			href, _ := a.Attr("href")
			if strings.Contains(href, "Download") {
				link = href
				return false
			}
			return true
		})
		return false
	})
	return link
}
