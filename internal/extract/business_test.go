package extract_test

import (
	"testing"

	"reviewharvest/internal/domain"
	"reviewharvest/internal/extract"
)

func TestExtractBusiness_JSONLD(t *testing.T) {
	page := `<html><head>
<script type="application/ld+json">{"@type":"Restaurant","name":"Chez Panisse","aggregateRating":{"ratingValue":4.5,"reviewCount":"1289"},"priceRange":"$$ - $$$","servesCuisine":["Californian","French"],"address":{"addressLocality":"Berkeley"}}</script>
</head><body><h1>Page Title Ignored</h1></body></html>`

	got := extract.ExtractBusiness(mustDoc(t, page))
	want := domain.BusinessInfo{
		Name:             "Chez Panisse",
		OverallRating:    "4.5",
		TotalReviewCount: "1289",
		PriceRange:       "$$ - $$$",
		Category:         "Californian",
		City:             "Berkeley",
	}
	if got != want {
		t.Fatalf("business = %+v, want %+v", got, want)
	}
}

func TestExtractBusiness_FirstValueWinsPerField(t *testing.T) {
	page := `<html><head>
<script type="application/ld+json">{"@type":"BreadcrumbList","name":"Not a business"}</script>
<script type="application/ld+json">{"@type":"LocalBusiness","name":"Le Vrai Nom"}</script>
<script type="application/ld+json">{"@type":"Organization","name":"Autre Nom","aggregateRating":{"ratingValue":"4,0","reviewCount":37}}</script>
</head></html>`

	got := extract.ExtractBusiness(mustDoc(t, page))
	if got.Name != "Le Vrai Nom" {
		t.Fatalf("name = %q, want the first business block's value", got.Name)
	}
	if got.OverallRating != "4,0" || got.TotalReviewCount != "37" {
		t.Fatalf("rating fields filled from a later block: %+v", got)
	}
}

func TestExtractBusiness_HeaderFallbacks(t *testing.T) {
	page := `<html><body>
<h1>  La   Petite   Auberge </h1>
<span class="ui_bubble_rating bubble_40"></span>
</body></html>`

	got := extract.ExtractBusiness(mustDoc(t, page))
	if got.Name != "La Petite Auberge" {
		t.Fatalf("name = %q, want normalized heading text", got.Name)
	}
	if got.OverallRating != "4" {
		t.Fatalf("rating = %q, want header bubble fallback", got.OverallRating)
	}
}

func TestExtractBusiness_NothingFound(t *testing.T) {
	got := extract.ExtractBusiness(mustDoc(t, `<html><body><p>bare page</p></body></html>`))
	if !got.Empty() {
		t.Fatalf("business = %+v, want empty", got)
	}
}
