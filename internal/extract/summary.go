package extract

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonesrussell/gotenders/internal/textutil"
)

// minSummaryCells is the cell count below which a listing row is not a
// tender row (separator and child rows carry fewer columns).
const minSummaryCells = 5

// ErrNotATenderRow is returned for listing rows that do not carry tender
// summary cells.
var ErrNotATenderRow = errors.New("row does not carry tender summary cells")

// Summary holds the fields readable from a collapsed listing row.
type Summary struct {
	Category       string
	Description    string
	ESubmissionRaw string
	AdvertisedRaw  string
	// Advertised is the parsed publication date; zero when AdvertisedRaw
	// did not parse.
	Advertised time.Time
}

// ParseSummary extracts the summary cells from one listing row's HTML.
// Cell order follows the portal's listing table: expand control, category,
// description, e-submission, advertised date.
func ParseSummary(rowHTML string) (*Summary, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<table>" + rowHTML + "</table>"))
	if err != nil {
		return nil, fmt.Errorf("parse row html: %w", err)
	}

	cells := doc.Find("td")
	if cells.Length() < minSummaryCells {
		return nil, ErrNotATenderRow
	}

	summary := &Summary{
		Category:       textutil.Clean(cells.Eq(1).Text()),
		Description:    textutil.Clean(cells.Eq(2).Text()),
		ESubmissionRaw: textutil.Clean(cells.Eq(3).Text()),
		AdvertisedRaw:  textutil.Clean(cells.Eq(4).Text()),
	}

	if advertised, parseErr := ParseListingDate(summary.AdvertisedRaw); parseErr == nil {
		summary.Advertised = advertised
	}

	return summary, nil
}
