package extract

import (
	"encoding/json"
	"html"
	"io"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"reviewharvest/internal/domain"
)

// cachePair is one key/value entry of an embedded cache object, kept in
// document order so "first occurrence wins" holds within a script block.
type cachePair struct {
	key string
	raw json.RawMessage
}

// cacheEntry covers both Review and User cache records; Typename picks
// which fields matter.
type cacheEntry struct {
	Typename string `json:"__typename"`
	Text     struct {
		Full  string `json:"full"`
		Plain string `json:"plain"`
	} `json:"text"`
	Rating    json.RawMessage `json:"rating"`
	CreatedAt struct {
		LocalDateTimeForBusiness string `json:"localDateTimeForBusiness"`
	} `json:"createdAt"`
	LocalizedDate string `json:"localizedDate"`
	Encid         string `json:"encid"`
	ReviewID      string `json:"reviewId"`
	Author        struct {
		Ref string `json:"__ref"`
	} `json:"author"`
	DisplayName string `json:"displayName"`
}

// EmbeddedCache extracts reviews from inline script blocks carrying an
// Apollo-style JSON cache keyed like "Review:<id>" / "User:<id>". Script
// content is HTML-unescaped and may be wrapped in an HTML comment.
type EmbeddedCache struct{}

func (EmbeddedCache) Name() string { return "embedded-cache" }

func (EmbeddedCache) Extract(doc *goquery.Document) []domain.Review {
	var reviews []domain.Review
	var refs []string            // author reference per review, same index
	users := map[string]string{} // user id -> display name

	doc.Find("script").Each(func(_ int, s *goquery.Selection) {
		content := strings.TrimSpace(html.UnescapeString(s.Text()))
		// Below 7 bytes the "<!--" prefix and "-->" suffix overlap ("<!-->").
		if strings.HasPrefix(content, "<!--") && strings.HasSuffix(content, "-->") && len(content) >= 7 {
			content = strings.TrimSpace(content[4 : len(content)-3])
		}
		pairs, ok := decodeCacheObject(content)
		if !ok {
			return
		}
		for _, p := range pairs {
			var e cacheEntry
			if err := json.Unmarshal(p.raw, &e); err != nil {
				continue
			}
			switch e.Typename {
			case "Review":
				text := e.Text.Full
				if text == "" {
					text = e.Text.Plain
				}
				text = Normalize(text)
				if text == "" {
					continue
				}
				id := e.Encid
				if id == "" {
					id = e.ReviewID
				}
				if id == "" {
					id = p.key
				}
				date := e.CreatedAt.LocalDateTimeForBusiness
				if date == "" {
					date = e.LocalizedDate
				}
				reviews = append(reviews, domain.Review{
					ID:        id,
					Stars:     floatFromRaw(e.Rating),
					DateLocal: date,
					Text:      text,
				})
				refs = append(refs, refID(e.Author.Ref))
			case "User":
				uid := refID(p.key)
				name := html.UnescapeString(e.DisplayName)
				if uid != "" && name != "" {
					users[uid] = name
				}
			}
		}
	})

	// Resolve author references against the same document's user entries.
	// Unknown references resolve to an empty reviewer.
	for i := range reviews {
		reviews[i].Reviewer = users[refs[i]]
	}
	return reviews
}

// decodeCacheObject reports whether s is exactly one JSON object and
// returns its entries in document order. Scripts holding anything else
// (code, arrays, fragments) are expected and simply not applicable.
func decodeCacheObject(s string) ([]cachePair, bool) {
	dec := json.NewDecoder(strings.NewReader(s))
	t, err := dec.Token()
	if err != nil {
		return nil, false
	}
	if d, ok := t.(json.Delim); !ok || d != '{' {
		return nil, false
	}
	var pairs []cachePair
	for dec.More() {
		kt, err := dec.Token()
		if err != nil {
			return nil, false
		}
		key, ok := kt.(string)
		if !ok {
			return nil, false
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, false
		}
		pairs = append(pairs, cachePair{key: key, raw: raw})
	}
	if _, err := dec.Token(); err != nil { // closing brace
		return nil, false
	}
	if _, err := dec.Token(); err != io.EOF { // trailing content: not a pure blob
		return nil, false
	}
	return pairs, true
}

// floatFromRaw accepts a JSON number or a numeric string, "4,5" included.
// A JSON null stays absent: unmarshaling null into a float64 is a no-op,
// not an error.
func floatFromRaw(raw json.RawMessage) *float64 {
	if s := strings.TrimSpace(string(raw)); s == "" || s == "null" {
		return nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return &f
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
		if s == "" {
			return nil
		}
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			return &v
		}
	}
	return nil
}

// refID strips the type prefix from cache identifiers: "User:42" -> "42".
func refID(ref string) string {
	if i := strings.Index(ref, ":"); i >= 0 {
		return ref[i+1:]
	}
	return ref
}
