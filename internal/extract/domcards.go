package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"reviewharvest/internal/domain"
)

var (
	starLabel  = regexp.MustCompile(`(?i)(star rating|étoile)`)
	decimalNum = regexp.MustCompile(`([0-9]+(?:[.,][0-9]+)?)`)
	yearToken  = regexp.MustCompile(`\b20\d{2}\b`)
	frMonth    = regexp.MustCompile(`(?i)(janvier|février|mars|avril|mai|juin|juillet|août|septembre|octobre|novembre|décembre)`)
	userLink   = regexp.MustCompile(`(?i)/user_details`)
)

// ReviewCards is the heuristic pass for pages without embedded data. Any
// article/section/div/li holding a star-rating label (English or French)
// and at least one paragraph counts as a review card. Nested containers
// can match more than once; the merge stage drops the duplicates.
type ReviewCards struct{}

func (ReviewCards) Name() string { return "review-cards" }

func (ReviewCards) Extract(doc *goquery.Document) []domain.Review {
	var out []domain.Review
	doc.Find("article, section, div, li").Each(func(_ int, card *goquery.Selection) {
		starEl := findStarLabel(card)
		if starEl == nil || card.Find("p").Length() == 0 {
			return
		}

		label := starEl.AttrOr("aria-label", "")
		if label == "" {
			label = nodeText(starEl)
		}
		var stars *float64
		if m := decimalNum.FindStringSubmatch(label); m != nil {
			if f, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", "."), 64); err == nil {
				stars = &f
			}
		}

		date := ""
		card.Find("time, span, div").EachWithBreak(func(_ int, d *goquery.Selection) bool {
			s := nodeText(d)
			if yearToken.MatchString(s) || frMonth.MatchString(s) {
				date = s
				return false
			}
			return true
		})

		reviewer := ""
		card.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
			if userLink.MatchString(a.AttrOr("href", "")) {
				reviewer = nodeText(a)
				return false
			}
			return true
		})

		// The longest paragraph is the review body; ties keep the first.
		text := ""
		card.Find("p").Each(func(_ int, p *goquery.Selection) {
			if t := nodeText(p); len(t) > len(text) {
				text = t
			}
		})
		if text == "" {
			return
		}

		out = append(out, domain.Review{
			Reviewer:  reviewer,
			Stars:     stars,
			DateLocal: date,
			Text:      text,
		})
	})
	return out
}

func findStarLabel(card *goquery.Selection) *goquery.Selection {
	var found *goquery.Selection
	card.Find("[aria-label]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if starLabel.MatchString(s.AttrOr("aria-label", "")) {
			found = s
			return false
		}
		return true
	})
	return found
}
