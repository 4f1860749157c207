package htmlutil

import (
	"bytes"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

var innerWhitespace = regexp.MustCompile(`\s+`)

// FlattenText returns the text of every node in the selection joined by
// single spaces, with runs of inner whitespace collapsed.
func FlattenText(sel *goquery.Selection) string {
	parts := []string{}
	for _, n := range sel.Nodes {
		text := strings.TrimSpace(GetText(n))
		if text != "" {
			parts = append(parts, text)
		}
	}
	return innerWhitespace.ReplaceAllString(strings.Join(parts, " "), " ")
}

// ResolveHref turns an anchor href from a scraped page into an absolute
// URL on the origin of base. Absolute paths are appended to the origin,
// bare relative values get a separating slash, and full URLs pass
// through untouched.
func ResolveHref(base *url.URL, href string) string {
	origin := base.Scheme + "://" + base.Host
	switch {
	case strings.HasPrefix(href, "/"):
		return origin + href
	case !strings.HasPrefix(href, "http"):
		return origin + "/" + href
	default:
		return href
	}
}
