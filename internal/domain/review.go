package domain

// Review is one extracted review record. Text is mandatory and already
// whitespace-normalized; Stars is nil when the page carried no rating,
// which is distinct from a genuine zero rating.
type Review struct {
	ID        string   `json:"review_id"`
	Reviewer  string   `json:"reviewer"`
	Stars     *float64 `json:"stars"`
	DateLocal string   `json:"date_local"`
	Title     string   `json:"title,omitempty"`
	Text      string   `json:"text"`
}

// Key is the dedupe identity: the explicit id when present, else the
// reviewer+date composite.
func (r Review) Key() string {
	if r.ID != "" {
		return r.ID
	}
	return r.Reviewer + "|" + r.DateLocal
}
