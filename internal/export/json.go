package export

import (
	"bytes"
	"encoding/json"
	"os"

	"reviewharvest/internal/domain"
)

// document is the JSON artifact shape. The business block is omitted when
// no metadata was found; the review list is always present, possibly empty.
type document struct {
	Business *domain.BusinessInfo `json:"business,omitempty"`
	Count    int                  `json:"count"`
	Reviews  []domain.Review      `json:"reviews"`
}

// WriteJSON writes the artifact human-readable: two-space indent, with
// HTML escaping off so non-ASCII and markup characters survive verbatim.
func WriteJSON(path string, biz *domain.BusinessInfo, reviews []domain.Review) error {
	if reviews == nil {
		reviews = []domain.Review{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(document{Business: biz, Count: len(reviews), Reviews: reviews}); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}
