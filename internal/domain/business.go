package domain

// BusinessInfo is page-level metadata about the reviewed business. All
// fields are display strings; numbers keep the formatting the page used.
type BusinessInfo struct {
	Name             string `json:"name"`
	OverallRating    string `json:"overall_rating"`
	TotalReviewCount string `json:"total_review_count"`
	PriceRange       string `json:"priceRange"`
	Category         string `json:"category,omitempty"`
	City             string `json:"city,omitempty"`
}

func (b BusinessInfo) Empty() bool {
	return b.Name == "" && b.OverallRating == "" && b.TotalReviewCount == "" &&
		b.PriceRange == "" && b.Category == "" && b.City == ""
}
