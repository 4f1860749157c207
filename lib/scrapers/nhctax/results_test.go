package nhctax

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

const resultsPage = `
<html><body>
<table class="SearchResults">
	<tr><th>Parcel</th><th>Owner</th><th>Address</th><th>Value</th></tr>
	<tr>
		<td><a href="/pt/Datalets/Datalet.aspx?sIndex=1">R04818-004-006-000</a></td>
		<td>SMITH JOHN A</td>
		<td>123 MARKET ST</td>
		<td>$250,000</td>
	</tr>
	<tr>
		<td>R04818-004-007-000</td>
		<td>SMITH JANE B</td>
	</tr>
	<tr><td>only one cell</td></tr>
</table>
</body></html>`

func TestParseResults(t *testing.T) {
	base, err := url.Parse("https://etax.nhcgov.com/pt/search/commonsearch.aspx")
	require.NoError(t, err)

	records := ParseResults(resultsPage, base)
	require.Len(t, records, 2)

	require.Equal(t, "R04818-004-006-000", records[0].ParcelID)
	require.Equal(t, "SMITH JOHN A", records[0].OwnerName)
	require.Equal(t, "123 MARKET ST", records[0].PropertyAddress)
	require.Equal(t, "$250,000", records[0].TaxValue)
	require.Equal(t, "https://etax.nhcgov.com/pt/Datalets/Datalet.aspx?sIndex=1", records[0].DetailURL)
	require.NotEmpty(t, records[0].SearchTimestamp)

	require.Equal(t, "R04818-004-007-000", records[1].ParcelID)
	require.Equal(t, "SMITH JANE B", records[1].OwnerName)
	require.Empty(t, records[1].PropertyAddress)
	require.Empty(t, records[1].DetailURL)
}

func TestParseResultsTableFallbacks(t *testing.T) {
	base, _ := url.Parse(DefaultBaseUrl)

	byId := `<table id="SearchResults">
		<tr><th>Parcel</th><th>Owner</th></tr>
		<tr><td>R100</td><td>DOE</td></tr>
	</table>`
	require.Len(t, ParseResults(byId, base), 1)

	byClassFragment := `<table class="gridResultTable">
		<tr><th>Parcel</th><th>Owner</th></tr>
		<tr><td>R100</td><td>DOE</td></tr>
	</table>`
	require.Len(t, ParseResults(byClassFragment, base), 1)

	bySummary := `<table summary="Search Results for owner">
		<tr><th>Parcel</th><th>Owner</th></tr>
		<tr><td>R100</td><td>DOE</td></tr>
	</table>`
	require.Len(t, ParseResults(bySummary, base), 1)
}

func TestParseResultsNoRecords(t *testing.T) {
	base, _ := url.Parse(DefaultBaseUrl)

	records := ParseResults(`<html><body><p>No records found matching your criteria.</p></body></html>`, base)
	require.NotNil(t, records)
	require.Empty(t, records)
}

func TestParseResultsUnrecognizedPage(t *testing.T) {
	base, _ := url.Parse(DefaultBaseUrl)

	records := ParseResults(`<html><body><h1>Welcome</h1></body></html>`, base)
	require.NotNil(t, records)
	require.Empty(t, records)
}
