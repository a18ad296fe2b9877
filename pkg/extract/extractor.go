// Package extract pulls the semi-structured fields out of the HTML fragment
// embedded in a feed item description.
package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/umputun/feedrank/pkg/domain"
)

const (
	pointsMarker   = "Points:"
	commentsMarker = "# Comments:"
)

// Description parses the description fragment and extracts article and comments urls,
// points and comments count text. It never fails, missing markup gives empty fields.
func Description(fragment string) domain.Description {
	if strings.TrimSpace(fragment) == "" {
		return domain.Description{}
	}

	doc := parseFragment(fragment)
	if doc == nil {
		return domain.Description{}
	}

	anchors := doc.Find("a")
	return domain.Description{
		ArticleURL:      anchors.Eq(0).AttrOr("href", ""),
		CommentsURL:     anchors.Eq(1).AttrOr("href", ""),
		PointsText:      paragraphWith(doc, pointsMarker),
		NumCommentsText: paragraphWith(doc, commentsMarker),
	}
}

// parseFragment parses markup in the context of a <body> element and wraps the resulting nodes
// into a single root, so the fragment may be partial or malformed.
func parseFragment(fragment string) *goquery.Selection {
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), body)
	if err != nil {
		return nil
	}

	root := &html.Node{Type: html.DocumentNode}
	for _, n := range nodes {
		root.AppendChild(n)
	}
	return goquery.NewDocumentFromNode(root).Selection
}

// paragraphWith returns full text of the first paragraph whose inner html contains marker
func paragraphWith(doc *goquery.Selection, marker string) string {
	var res string
	doc.Find("p").EachWithBreak(func(_ int, p *goquery.Selection) bool {
		inner, err := p.Html()
		if err != nil || !strings.Contains(inner, marker) {
			return true
		}
		res = p.Text()
		return false
	})
	return res
}
