package htmlutil

import (
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

func TestFlattenText(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(
		`<div class="assessment">
			<h3>Assessment</h3>
			<p>Land   Value</p>
			<p>$50,000</p>
		</div>`,
	))
	require.NoError(t, err)

	require.Equal(t, "Assessment Land Value $50,000", FlattenText(doc.Find("div.assessment")))
}

func TestResolveHref(t *testing.T) {
	base, err := url.Parse("https://etax.nhcgov.com/pt/search/commonsearch.aspx?mode=owner")
	require.NoError(t, err)

	cases := []struct {
		href     string
		expected string
	}{
		{"/pt/datalets/datalet.aspx?sIndex=1", "https://etax.nhcgov.com/pt/datalets/datalet.aspx?sIndex=1"},
		{"datalet.aspx?sIndex=1", "https://etax.nhcgov.com/datalet.aspx?sIndex=1"},
		{"https://other.example.com/detail", "https://other.example.com/detail"},
	}
	for _, c := range cases {
		require.Equal(t, c.expected, ResolveHref(base, c.href))
	}
}
