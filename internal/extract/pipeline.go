package extract

import (
	"io"
	"sort"

	"github.com/PuerkitoBio/goquery"

	"reviewharvest/internal/domain"
)

// Strategy extracts fully resolved reviews from one parsed document.
// Strategies run in order and the first non-empty result wins.
type Strategy interface {
	Name() string
	Extract(doc *goquery.Document) []domain.Review
}

type Pipeline struct {
	strategies []Strategy
}

// NewPipeline returns the default chain: embedded cache, then review-card
// heuristics, then the selector table.
func NewPipeline() *Pipeline {
	return &Pipeline{strategies: []Strategy{EmbeddedCache{}, ReviewCards{}, SelectorTable{}}}
}

// ParseDocument parses raw HTML. The parser tolerates invalid bytes and
// broken markup; real listing pages have both.
func ParseDocument(r io.Reader) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(r)
}

// ExtractReviews runs the strategy chain on one document and reports which
// strategy produced the result, "" when all of them came back empty.
func (p *Pipeline) ExtractReviews(doc *goquery.Document) ([]domain.Review, string) {
	for _, s := range p.strategies {
		if rs := s.Extract(doc); len(rs) > 0 {
			return rs, s.Name()
		}
	}
	return nil, ""
}

// MergeDedupeSort finalizes concatenated per-document lists: empty-text
// records are dropped, the first occurrence per identity key wins, and the
// result is ordered by the raw local date string, newest first. The sort is
// stable so equal dates keep their input order.
func MergeDedupeSort(in []domain.Review) []domain.Review {
	seen := make(map[string]bool, len(in))
	out := make([]domain.Review, 0, len(in))
	for _, r := range in {
		if r.Text == "" {
			continue
		}
		k := r.Key()
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DateLocal > out[j].DateLocal
	})
	return out
}
