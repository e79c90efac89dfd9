package export

import (
	"encoding/csv"
	"os"
	"strconv"

	"reviewharvest/internal/domain"
)

// Header is the fixed CSV column list. Business fields are denormalized
// onto every row; missing values stay empty strings.
var Header = []string{
	"review_id", "reviewer", "stars", "date_local", "title", "text",
	"business_name", "overall_rating", "total_review_count", "priceRange",
}

// Row flattens one review plus the page's business metadata.
func Row(r domain.Review, biz domain.BusinessInfo) []string {
	return []string{
		r.ID, r.Reviewer, starsString(r.Stars), r.DateLocal, r.Title, r.Text,
		biz.Name, biz.OverallRating, biz.TotalReviewCount, biz.PriceRange,
	}
}

func starsString(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}

func WriteCSV(path string, biz domain.BusinessInfo, reviews []domain.Review) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(Header); err != nil {
		return err
	}
	for _, r := range reviews {
		if err := w.Write(Row(r, biz)); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
