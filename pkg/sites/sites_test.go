package sites

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tender-watch/pkg/domain"
	"tender-watch/pkg/filter"
)

const gizPage = `
<html><body>
	<h2>Closed Tenders</h2>
	<ul><li><a href="/old">Old tender</a></li></ul>
	<h2>Live Tenders</h2>
	<p>Published notices:</p>
	<ul>
		<li><a href="https://www.giz.de/t/1">  Solar rooftop study </a></li>
		<li>No link in this item</li>
		<li><a>Anchor without target</a></li>
		<li><a href="https://www.giz.de/t/2">Grid audit</a> <a href="https://www.giz.de/t/2b">Annex</a></li>
	</ul>
	<ul><li><a href="https://www.giz.de/t/9">Second list</a></li></ul>
</body></html>`

func TestExtractGIZTenders(t *testing.T) {
	tenders, err := ExtractGIZTenders("https://www.giz.de/en/live-tenders-giz-india", gizPage)
	require.NoError(t, err)

	assert.Equal(t, []domain.Tender{
		{Title: "Solar rooftop study", URL: "https://www.giz.de/t/1"},
		{Title: "Grid audit", URL: "https://www.giz.de/t/2"},
	}, tenders)
}

func TestExtractGIZTenders_NoHeading(t *testing.T) {
	tenders, err := ExtractGIZTenders("", `<html><body><h2>Live tenders soon</h2><ul><li><a href="/x">x</a></li></ul></body></html>`)
	require.NoError(t, err)
	assert.Empty(t, tenders)
}

func TestExtractGIZTenders_HeadingWithoutList(t *testing.T) {
	tenders, err := ExtractGIZTenders("", `<html><body><h2>Live Tenders</h2><p>None at the moment</p></body></html>`)
	require.NoError(t, err)
	assert.Empty(t, tenders)
}

func TestExtractFirstTableTenders(t *testing.T) {
	html := `
	<html><body>
		<a href="/nav">Navigation</a>
		<table>
			<tr><td><a href="/tenders/101.pdf">Supply of inverters</a></td></tr>
			<tr><td><a name="anchor">no href</a></td><td><a href="/tenders/102.pdf">Wind survey</a></td></tr>
		</table>
		<table><tr><td><a href="/tenders/999.pdf">Second table</a></td></tr></table>
	</body></html>`

	tenders, err := ExtractFirstTableTenders("https://geda.gujarat.gov.in/tenders.html", html)
	require.NoError(t, err)

	assert.Equal(t, []domain.Tender{
		{Title: "Supply of inverters", URL: "/tenders/101.pdf"},
		{Title: "Wind survey", URL: "/tenders/102.pdf"},
	}, tenders)
}

func TestExtractFirstTableTenders_NoTable(t *testing.T) {
	tenders, err := ExtractFirstTableTenders("", `<html><body><p>Maintenance</p></body></html>`)
	require.NoError(t, err)
	assert.Empty(t, tenders)
}

func TestExtractFeedTenders(t *testing.T) {
	rss := `<?xml version="1.0"?>
<rss version="2.0"><channel><title>Tenders</title>
	<item><title>Biomass plant EPC</title><link>https://example.org/t/1</link></item>
	<item><title>Item without link</title></item>
	<item><title>Battery storage RFP</title><link>https://example.org/t/2</link></item>
</channel></rss>`

	tenders, err := ExtractFeedTenders("https://example.org/feed", rss)
	require.NoError(t, err)

	assert.Equal(t, []domain.Tender{
		{Title: "Biomass plant EPC", URL: "https://example.org/t/1"},
		{Title: "Battery storage RFP", URL: "https://example.org/t/2"},
	}, tenders)
}

func TestExtractFeedTenders_NotAFeed(t *testing.T) {
	tenders, err := ExtractFeedTenders("", "just some text")
	require.NoError(t, err)
	assert.Empty(t, tenders)
}

func TestLookup(t *testing.T) {
	for _, name := range []string{"giz", "GEDA", " hppcl ", "mahaurja", "first-table", "feed", "headline"} {
		extractor, err := Lookup(name)
		require.NoError(t, err, name)
		assert.NotNil(t, extractor, name)
	}

	_, err := Lookup("parse_giz")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownExtractor))
}

func TestNames_Sorted(t *testing.T) {
	names := Names()
	assert.IsIncreasing(t, names)
	assert.Contains(t, names, "giz")
}

func TestLinkTitles_TrimEachTextNode(t *testing.T) {
	html := `<table>
		<tr><td><a href="/t/12.pdf"><b>GEDA</b> <i>RFP 12</i></a></td></tr>
		<tr><td><a href="/t/13.pdf">
			Supply of
			inverters
		</a></td></tr>
		<tr><td><a href="/t/14.pdf">Wind&nbsp;survey <!-- draft --> phase&nbsp;2 </a></td></tr>
	</table>`

	tenders, err := ExtractFirstTableTenders("", html)
	require.NoError(t, err)
	assert.Equal(t, []domain.Tender{
		{Title: "GEDARFP 12", URL: "/t/12.pdf"},
		{Title: "Supply of\n\t\t\tinverters", URL: "/t/13.pdf"},
		{Title: "Wind\u00a0surveyphase\u00a02", URL: "/t/14.pdf"},
	}, tenders)
}

func TestExtractFirstTableTenders_MatchesExistingStateFile(t *testing.T) {
	// state as written by the earlier tool with json.dump
	state := `[{"title": "GEDARFP 12", "url": "/t/12.pdf"}, {"title": "Supply of\n\t\t\tinverters", "url": "/t/13.pdf"}]`
	var seen []domain.Tender
	require.NoError(t, json.Unmarshal([]byte(state), &seen))

	html := `<table>
		<tr><td><a href="/t/12.pdf"><b>GEDA</b> <i>RFP 12</i></a></td></tr>
		<tr><td><a href="/t/13.pdf">
			Supply of
			inverters
		</a></td></tr>
	</table>`

	current, err := ExtractFirstTableTenders("", html)
	require.NoError(t, err)
	assert.Empty(t, filter.NewTenders(current, seen))
}

func TestExtractHeadlineTender(t *testing.T) {
	html := `<html><head><title>Tender notice for supply of distribution transformers</title></head>
<body><article>
	<h1>Tender notice for supply of distribution transformers</h1>
	<p>` + strings.Repeat("Sealed bids are invited from eligible bidders for the supply, testing and commissioning of distribution transformers. ", 8) + `</p>
	<p>` + strings.Repeat("The bid documents can be downloaded from the procurement portal until the closing date stated below. ", 8) + `</p>
</article></body></html>`

	pageURL := "https://hppcl.example.org/notice.aspx"
	tenders, err := ExtractHeadlineTender(pageURL, html)
	require.NoError(t, err)
	assert.Equal(t, []domain.Tender{
		{Title: "Tender notice for supply of distribution transformers", URL: pageURL},
	}, tenders)
}

func TestExtractHeadlineTender_NothingReadable(t *testing.T) {
	for name, html := range map[string]string{
		"empty":    "",
		"no title": "<html><body></body></html>",
	} {
		t.Run(name, func(t *testing.T) {
			tenders, err := ExtractHeadlineTender("https://example.org/notice", html)
			require.NoError(t, err)
			assert.Empty(t, tenders)
		})
	}
}
