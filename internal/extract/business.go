package extract

import (
	"encoding/json"
	"strconv"

	"github.com/PuerkitoBio/goquery"

	"reviewharvest/internal/domain"
)

// ldEntity is the slice of schema.org business markup we read.
type ldEntity struct {
	Type            string `json:"@type"`
	Name            string `json:"name"`
	AggregateRating struct {
		RatingValue json.RawMessage `json:"ratingValue"`
		ReviewCount json.RawMessage `json:"reviewCount"`
	} `json:"aggregateRating"`
	PriceRange    string          `json:"priceRange"`
	ServesCuisine json.RawMessage `json:"servesCuisine"`
	Address       struct {
		AddressLocality string `json:"addressLocality"`
	} `json:"address"`
}

var businessTypes = map[string]bool{
	"LocalBusiness": true,
	"Restaurant":    true,
	"Organization":  true,
}

// ExtractBusiness reads page-level business metadata. JSON-LD blocks are
// scanned first and the first non-empty value wins per field; header
// fallbacks fill name and rating when no block carried them.
func ExtractBusiness(doc *goquery.Document) domain.BusinessInfo {
	var info domain.BusinessInfo
	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		var e ldEntity
		if err := json.Unmarshal([]byte(s.Text()), &e); err != nil {
			return
		}
		if !businessTypes[e.Type] {
			return
		}
		if info.Name == "" {
			info.Name = e.Name
		}
		if info.OverallRating == "" {
			info.OverallRating = rawString(e.AggregateRating.RatingValue)
		}
		if info.TotalReviewCount == "" {
			info.TotalReviewCount = rawString(e.AggregateRating.ReviewCount)
		}
		if info.PriceRange == "" {
			info.PriceRange = e.PriceRange
		}
		if info.Category == "" {
			info.Category = firstString(e.ServesCuisine)
		}
		if info.City == "" {
			info.City = e.Address.AddressLocality
		}
	})

	if info.Name == "" {
		if h := doc.Find("h1, h2").First(); h.Length() > 0 {
			info.Name = nodeText(h)
		}
	}
	if info.OverallRating == "" {
		if b := doc.Find(bubbleSelector).First(); b.Length() > 0 {
			if f, ok := BubbleRating(b.AttrOr("class", "")); ok {
				info.OverallRating = strconv.FormatFloat(f, 'f', -1, 64)
			}
		}
	}
	return info
}

// rawString renders a JSON string or number value as display text,
// keeping the page's own formatting for numbers.
func rawString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

// firstString accepts a string or an array of strings.
func firstString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var arr []string
	if err := json.Unmarshal(raw, &arr); err == nil && len(arr) > 0 {
		return arr[0]
	}
	return ""
}
