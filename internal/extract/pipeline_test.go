package extract_test

import (
	"testing"

	"reviewharvest/internal/domain"
	"reviewharvest/internal/extract"
)

func TestPipeline_EmbeddedWinsOverSelectors(t *testing.T) {
	// Both sources present: the embedded cache must win and the selector
	// rows must never be consulted.
	page := `<html><body>
<script>{"Review:e1":{"__typename":"Review","text":{"full":"From the embedded cache"},"encid":"e1"}}</script>
<div class="review-container">
  <span class="ui_bubble_rating bubble_40"></span>
  <p class="partial_entry">From the selector table, which should lose.</p>
</div>
</body></html>`

	rs, strategy := extract.NewPipeline().ExtractReviews(mustDoc(t, page))
	if strategy != "embedded-cache" {
		t.Fatalf("strategy = %q, want embedded-cache", strategy)
	}
	if len(rs) != 1 || rs[0].ID != "e1" {
		t.Fatalf("unexpected reviews: %+v", rs)
	}
}

func TestPipeline_FallsThroughToSelectors(t *testing.T) {
	page := `<html><body><div class="review-container">
  <span class="ui_bubble_rating bubble_40"></span>
  <p class="partial_entry">No embedded cache and no labeled cards on this page.</p>
</div></body></html>`

	rs, strategy := extract.NewPipeline().ExtractReviews(mustDoc(t, page))
	if strategy != "selector-table" {
		t.Fatalf("strategy = %q, want selector-table", strategy)
	}
	if len(rs) == 0 {
		t.Fatal("selector strategy found nothing")
	}
}

func TestPipeline_EmptyDocument(t *testing.T) {
	rs, strategy := extract.NewPipeline().ExtractReviews(mustDoc(t, `<html><body><p>hi</p></body></html>`))
	if rs != nil || strategy != "" {
		t.Fatalf("got %v / %q, want nil and empty strategy", rs, strategy)
	}
}

func TestMergeDedupeSort(t *testing.T) {
	five := 5.0
	in := []domain.Review{
		{ID: "a", DateLocal: "2024-01-02", Stars: &five, Text: "first version"},
		{ID: "a", DateLocal: "2024-09-09", Text: "second version"},
		{Reviewer: "Ann", DateLocal: "2024-03-05", Text: "composite key"},
		{Reviewer: "Ann", DateLocal: "2024-03-05", Text: "composite dup"},
		{ID: "b", DateLocal: "2024-05-01", Text: ""},
		{ID: "c", DateLocal: "2023-12-31", Text: "old year"},
	}

	out := extract.MergeDedupeSort(in)
	if len(out) != 3 {
		t.Fatalf("got %d reviews, want 3", len(out))
	}
	// Newest first on the raw date string; ISO dates order correctly.
	if out[0].Key() != "Ann|2024-03-05" || out[1].ID != "a" || out[2].ID != "c" {
		t.Fatalf("unexpected order: %+v", out)
	}
	if out[1].Text != "first version" {
		t.Fatalf("text = %q, want the first occurrence kept", out[1].Text)
	}
	if out[0].Text != "composite key" {
		t.Fatalf("text = %q, want the first composite occurrence kept", out[0].Text)
	}

	// merging is idempotent
	again := extract.MergeDedupeSort(out)
	if len(again) != len(out) {
		t.Fatalf("second merge changed the result: %d vs %d", len(again), len(out))
	}
	for i := range out {
		if again[i].Key() != out[i].Key() {
			t.Fatalf("second merge reordered: %+v vs %+v", again[i], out[i])
		}
	}
}

func TestMergeDedupeSort_StableForEqualDates(t *testing.T) {
	in := []domain.Review{
		{ID: "x", DateLocal: "2024-06-01", Text: "came first"},
		{ID: "y", DateLocal: "2024-06-01", Text: "came second"},
	}
	out := extract.MergeDedupeSort(in)
	if out[0].ID != "x" || out[1].ID != "y" {
		t.Fatalf("equal dates reordered: %+v", out)
	}
}
