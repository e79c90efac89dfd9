package mysql

import (
	"context"
	"database/sql"
	"strings"

	"reviewharvest/internal/domain"
)

func nullStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullF64(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

// UpsertReviews archives one finished run in a single multi-row statement,
// keyed by the review identity so reruns converge instead of duplicating.
func (r *Repo) UpsertReviews(ctx context.Context, biz domain.BusinessInfo, rs []domain.Review) error {
	if len(rs) == 0 {
		return nil
	}
	values := make([]string, 0, len(rs))
	args := make([]any, 0, len(rs)*11)
	for _, rv := range rs {
		values = append(values, "(?,?,?,?,?,?,?,?,?,?,?)")
		args = append(args,
			rv.Key(),
			nullStr(rv.ID),
			nullStr(rv.Reviewer),
			nullF64(rv.Stars),
			nullStr(rv.DateLocal),
			nullStr(rv.Title),
			rv.Text,
			nullStr(biz.Name),
			nullStr(biz.OverallRating),
			nullStr(biz.TotalReviewCount),
			nullStr(biz.PriceRange),
		)
	}
	sqlStr := insertReviewsPrefix + strings.Join(values, ",") + insertReviewsOnDup
	_, err := r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

// ListRecent returns the newest archived reviews plus the business fields
// stored with them, raw date string descending.
func (r *Repo) ListRecent(ctx context.Context, limit int) ([]domain.Review, domain.BusinessInfo, error) {
	rows, err := r.db.QueryContext(ctx, selectRecentSQL, limit)
	if err != nil {
		return nil, domain.BusinessInfo{}, err
	}
	defer rows.Close()

	var out []domain.Review
	var biz domain.BusinessInfo
	for rows.Next() {
		var key string
		var id, reviewer, dateLocal, title, text sql.NullString
		var stars sql.NullFloat64
		var bizName, rating, reviewCount, priceRange sql.NullString
		if err := rows.Scan(&key, &id, &reviewer, &stars, &dateLocal, &title, &text,
			&bizName, &rating, &reviewCount, &priceRange); err != nil {
			return nil, domain.BusinessInfo{}, err
		}

		var rv domain.Review
		rv.ID = id.String
		rv.Reviewer = reviewer.String
		if stars.Valid {
			f := stars.Float64
			rv.Stars = &f
		}
		rv.DateLocal = dateLocal.String
		rv.Title = title.String
		rv.Text = text.String
		out = append(out, rv)

		if biz.Empty() {
			biz = domain.BusinessInfo{
				Name:             bizName.String,
				OverallRating:    rating.String,
				TotalReviewCount: reviewCount.String,
				PriceRange:       priceRange.String,
			}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, domain.BusinessInfo{}, err
	}
	return out, biz, nil
}
