package catalog

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

func documentFromHTML(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestPickIconPrefersEntryCover(t *testing.T) {
	doc := documentFromHTML(t, `
		<div class="entry-content"><img src="https://cdn.example.com/body.png"></div>
		<img class="entry-cover" src="https://cdn.example.com/cover.png">`)

	require.Equal(t, "https://cdn.example.com/cover.png", pickIconFromDocument(doc))
}

func TestPickIconFallsBackToContentImage(t *testing.T) {
	doc := documentFromHTML(t, `
		<div class="entry-content">
			<img src="https://cdn.example.com/first.png">
			<img src="https://cdn.example.com/second.png">
		</div>`)

	require.Equal(t, "https://cdn.example.com/first.png", pickIconFromDocument(doc))
}

func TestPickIconEmptyDocument(t *testing.T) {
	doc := documentFromHTML(t, `<p>词条不存在</p>`)
	require.Equal(t, "", pickIconFromDocument(doc))
}
