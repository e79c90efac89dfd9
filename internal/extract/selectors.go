package extract

import (
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"reviewharvest/internal/domain"
)

// Selector set for classic TripAdvisor review listings.
const (
	rowSelector      = "div.review-container"
	reviewerSelector = "a.ui_header_link"
	bubbleSelector   = "span.ui_bubble_rating"
	dateSelector     = "span.ratingDate"
	titleSelector    = "span.noQuotes"
	textSelector     = "p.partial_entry"
)

const (
	minRowText   = 20 // accepted rows need at least this many characters of text
	maxClimb     = 8  // ancestor levels the recovery pass may walk
	minRowsFound = 5  // fewer rows than this triggers the recovery pass
)

// SelectorTable extracts rows through explicit structural selectors. When
// the page yields suspiciously few rows the markup has usually drifted, so
// a recovery pass climbs from every rating bubble to its nearest block
// ancestor and retries there. That pass can produce duplicates; the merge
// stage removes them.
type SelectorTable struct{}

func (SelectorTable) Name() string { return "selector-table" }

func (SelectorTable) Extract(doc *goquery.Document) []domain.Review {
	var out []domain.Review
	doc.Find(rowSelector).Each(func(_ int, row *goquery.Selection) {
		if r, ok := extractRow(row); ok {
			out = append(out, r)
		}
	})
	if len(out) >= minRowsFound {
		return out
	}
	doc.Find(bubbleSelector).Each(func(_ int, b *goquery.Selection) {
		if anc := blockAncestor(b, maxClimb); anc != nil {
			if r, ok := extractRow(anc); ok {
				out = append(out, r)
			}
		}
	})
	return out
}

// extractRow accepts a candidate only with a present rating and enough
// review text. A zero bubble is a present rating.
func extractRow(row *goquery.Selection) (domain.Review, bool) {
	stars, ok := rowRating(row)
	if !ok {
		return domain.Review{}, false
	}
	text := nodeText(row.Find(textSelector).First())
	if utf8.RuneCountInString(text) < minRowText {
		return domain.Review{}, false
	}

	date := ""
	if d := row.Find(dateSelector).First(); d.Length() > 0 {
		date = Normalize(d.AttrOr("title", ""))
		if date == "" {
			date = nodeText(d)
		}
	}

	return domain.Review{
		Reviewer:  nodeText(row.Find(reviewerSelector).First()),
		Stars:     &stars,
		DateLocal: date,
		Title:     nodeText(row.Find(titleSelector).First()),
		Text:      text,
	}, true
}

func rowRating(row *goquery.Selection) (float64, bool) {
	b := row.Find(bubbleSelector).First()
	if b.Length() == 0 {
		return 0, false
	}
	return BubbleRating(b.AttrOr("class", ""))
}

var blockNames = map[string]bool{"div": true, "li": true, "article": true, "section": true}

// blockAncestor walks up at most max levels and returns the first
// block-level ancestor, or nil when none is in reach.
func blockAncestor(s *goquery.Selection, max int) *goquery.Selection {
	cur := s.Parent()
	for i := 0; i < max && cur.Length() > 0; i++ {
		if blockNames[goquery.NodeName(cur)] {
			return cur
		}
		cur = cur.Parent()
	}
	return nil
}
