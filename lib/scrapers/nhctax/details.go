package nhctax

import (
	"regexp"
	"strings"
	"time"

	"nhctax-backend/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

// PropertyDetail is an open mapping of normalized detail-page labels to
// their values. A few reserved keys are always present.
type PropertyDetail map[string]string

const (
	KeyDetailURL        = "detail_url"
	KeyError            = "error"
	KeyScrapedTimestamp = "scraped_timestamp"
)

var detailSections = []string{"assessment", "ownership", "property", "tax", "legal"}

const sectionTextLimit = 500

var nonAlnumRuns = regexp.MustCompile(`[^a-z0-9]+`)

func normalizeKey(label string) string {
	key := strings.TrimSuffix(strings.TrimSpace(label), ":")
	key = strings.ToLower(key)
	key = nonAlnumRuns.ReplaceAllString(key, "_")
	return strings.Trim(key, "_")
}

// ParseDetails extracts a flat key/value mapping from a single-parcel
// detail page. Every two-cell table row becomes one entry; when the
// same label appears in several tables the last occurrence wins, which
// callers depend on.
func ParseDetails(html string, detailUrl string) PropertyDetail {
	details := PropertyDetail{
		KeyDetailURL:        detailUrl,
		KeyScrapedTimestamp: time.Now().UTC().Format(time.RFC3339),
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		details[KeyError] = err.Error()
		return details
	}

	doc.Find("table tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td, th")
		if cells.Length() != 2 {
			return
		}
		key := normalizeKey(cells.Eq(0).Text())
		val := strings.TrimSpace(cells.Eq(1).Text())
		if key != "" && val != "" {
			details[key] = val
		}
	})

	for _, section := range detailSections {
		div := findSectionDiv(doc, section)
		if div == nil {
			continue
		}
		text := htmlutil.FlattenText(div)
		if runes := []rune(text); len(runes) > sectionTextLimit {
			text = string(runes[:sectionTextLimit])
		}
		details[section+"_info"] = text
	}

	return details
}

func findSectionDiv(doc *goquery.Document, section string) *goquery.Selection {
	var match *goquery.Selection
	doc.Find("div[class]").EachWithBreak(func(_ int, div *goquery.Selection) bool {
		if strings.Contains(strings.ToLower(div.AttrOr("class", "")), section) {
			match = div
			return false
		}
		return true
	})
	return match
}
