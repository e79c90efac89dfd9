package mysql

// Note: `text` is reserved; keep it quoted everywhere.
const insertReviewsPrefix = "INSERT INTO harvested_reviews\n" +
	"  (review_key, review_id, reviewer, stars, date_local, title, `text`,\n" +
	"   business_name, overall_rating, total_review_count, price_range)\nVALUES "

// COALESCE keeps the stored value when a rerun carries NULL for a field,
// so later harvests never blank out what an earlier one knew.
const insertReviewsOnDup = " ON DUPLICATE KEY UPDATE\n" +
	"  review_id          = COALESCE(VALUES(review_id), harvested_reviews.review_id),\n" +
	"  reviewer           = COALESCE(VALUES(reviewer), harvested_reviews.reviewer),\n" +
	"  stars              = COALESCE(VALUES(stars), harvested_reviews.stars),\n" +
	"  date_local         = COALESCE(VALUES(date_local), harvested_reviews.date_local),\n" +
	"  title              = COALESCE(VALUES(title), harvested_reviews.title),\n" +
	"  `text`             = COALESCE(VALUES(`text`), harvested_reviews.`text`),\n" +
	"  business_name      = COALESCE(VALUES(business_name), harvested_reviews.business_name),\n" +
	"  overall_rating     = COALESCE(VALUES(overall_rating), harvested_reviews.overall_rating),\n" +
	"  total_review_count = COALESCE(VALUES(total_review_count), harvested_reviews.total_review_count),\n" +
	"  price_range        = COALESCE(VALUES(price_range), harvested_reviews.price_range),\n" +
	"  updated_at         = CURRENT_TIMESTAMP\n"

// Newest first on the raw date string, matching the artifact ordering.
const selectRecentSQL = `
SELECT
  review_key,
  review_id,
  reviewer,
  stars,
  date_local,
  title,
  ` + "`text`" + `,
  business_name,
  overall_rating,
  total_review_count,
  price_range
FROM harvested_reviews
ORDER BY date_local DESC, review_key
LIMIT ?
`
