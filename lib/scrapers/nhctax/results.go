package nhctax

import (
	"log/slog"
	"net/url"
	"regexp"
	"strings"
	"time"

	"nhctax-backend/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

// PropertyRecord is one row of a search results table. Fields are
// populated positionally from whatever columns the portal returned;
// only the first two are guaranteed.
type PropertyRecord struct {
	ParcelID        string `json:"parcel_id"`
	OwnerName       string `json:"owner_name"`
	PropertyAddress string `json:"property_address,omitempty"`
	TaxValue        string `json:"tax_value,omitempty"`
	DetailURL       string `json:"detail_url,omitempty"`
	SearchTimestamp string `json:"search_timestamp"`
}

var noResultsRe = regexp.MustCompile(`(?i)no.*records.*found|no.*results`)

// ParseResults extracts property records from a list-results page. It
// never fails: an unrecognized page yields an empty slice with a
// warning logged, since the portal's markup is outside our control.
func ParseResults(html string, base *url.URL) []PropertyRecord {
	records := []PropertyRecord{}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		slog.Warn("failed to parse search results html", "err", err)
		return records
	}

	table := findResultsTable(doc)
	if table == nil {
		if noResultsRe.MatchString(doc.Text()) {
			slog.Info("no records found for search")
		} else {
			slog.Warn("could not locate results table in response")
		}
		return records
	}

	table.Find("tr").Each(func(i int, row *goquery.Selection) {
		// first row holds the column headers
		if i == 0 {
			return
		}
		record, ok := parseResultRow(row, base)
		if !ok {
			slog.Debug("skipping result row with insufficient cells", "row", i)
			return
		}
		records = append(records, record)
	})

	return records
}

// The results table has gone through several portal redesigns; try the
// known selectors from most to least specific.
func findResultsTable(doc *goquery.Document) *goquery.Selection {
	if t := doc.Find("table.SearchResults"); t.Length() > 0 {
		return t.First()
	}
	if t := doc.Find("table#SearchResults"); t.Length() > 0 {
		return t.First()
	}

	var byClass *goquery.Selection
	doc.Find("table").EachWithBreak(func(_ int, t *goquery.Selection) bool {
		if strings.Contains(strings.ToLower(t.AttrOr("class", "")), "result") {
			byClass = t
			return false
		}
		return true
	})
	if byClass != nil {
		return byClass
	}

	if t := doc.Find(`table[summary*='Search Results']`); t.Length() > 0 {
		return t.First()
	}
	return nil
}

func parseResultRow(row *goquery.Selection, base *url.URL) (PropertyRecord, bool) {
	cells := row.Find("td").Map(func(_ int, c *goquery.Selection) string {
		return strings.TrimSpace(c.Text())
	})
	if len(cells) < 2 {
		return PropertyRecord{}, false
	}

	record := PropertyRecord{
		ParcelID:        cells[0],
		OwnerName:       cells[1],
		SearchTimestamp: time.Now().UTC().Format(time.RFC3339),
	}
	if len(cells) >= 3 {
		record.PropertyAddress = cells[2]
	}
	if len(cells) >= 4 {
		record.TaxValue = cells[3]
	}

	if href, ok := row.Find("a[href]").First().Attr("href"); ok && href != "" {
		record.DetailURL = htmlutil.ResolveHref(base, href)
	}

	return record, true
}
