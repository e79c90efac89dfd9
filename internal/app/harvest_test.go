package app_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"reviewharvest/internal/app"
	"reviewharvest/internal/domain"
)

// ---------- fakes ----------

type fakeFetcher struct {
	pages map[string][]byte
	fails map[string]bool
	hits  []string
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	f.hits = append(f.hits, url)
	if f.fails[url] {
		return nil, errors.New("boom")
	}
	return f.pages[url], nil
}

type fakeCache struct{ m map[string][]byte }

func newFakeCache() *fakeCache { return &fakeCache{m: map[string][]byte{}} }

func (c *fakeCache) Get(_ context.Context, key string, dst any) (bool, error) {
	v, ok := c.m[key]
	if !ok {
		return false, nil
	}
	*(dst.(*[]byte)) = v
	return true, nil
}

func (c *fakeCache) Set(_ context.Context, key string, v any, _ int) error {
	c.m[key] = v.([]byte)
	return nil
}

func (c *fakeCache) Del(_ context.Context, key string) error {
	delete(c.m, key)
	return nil
}

type fakeArchive struct {
	calls int
	biz   domain.BusinessInfo
	rows  []domain.Review
	err   error
}

func (a *fakeArchive) UpsertReviews(_ context.Context, biz domain.BusinessInfo, rs []domain.Review) error {
	a.calls++
	a.biz = biz
	a.rows = rs
	return a.err
}

// ---------- fixtures ----------

const pageOne = `<html><head>
<script type="application/ld+json">{"@type":"Restaurant","name":"Trattoria Nina","aggregateRating":{"ratingValue":4.5,"reviewCount":"210"}}</script>
</head><body>
<script>{"Review:a1":{"__typename":"Review","text":{"full":"Handmade pasta, perfectly cooked."},"rating":5,"createdAt":{"localDateTimeForBusiness":"2024-04-10"},"encid":"a1","author":{"__ref":"User:1"}},"User:1":{"__typename":"User","displayName":"Ines"}}</script>
</body></html>`

// pageTwo repeats a1 and adds a newer b2.
const pageTwo = `<html><body>
<script>{"Review:a1":{"__typename":"Review","text":{"full":"Handmade pasta, perfectly cooked."},"rating":5,"createdAt":{"localDateTimeForBusiness":"2024-04-10"},"encid":"a1"},"Review:b2":{"__typename":"Review","text":{"full":"Lovely wine list and warm service."},"rating":4,"createdAt":{"localDateTimeForBusiness":"2024-05-02"},"encid":"b2"}}</script>
</body></html>`

type jsonDoc struct {
	Business *domain.BusinessInfo `json:"business"`
	Count    int                  `json:"count"`
	Reviews  []domain.Review      `json:"reviews"`
}

func writeFile(t *testing.T, path, body string) string {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func readJSONDoc(t *testing.T, path string) jsonDoc {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	var doc jsonDoc
	if err := json.Unmarshal(b, &doc); err != nil {
		t.Fatalf("decode %s: %v", path, err)
	}
	return doc
}

// ---------- the tests ----------

func TestHarvest_FilesRun(t *testing.T) {
	dir := t.TempDir()
	one := writeFile(t, filepath.Join(dir, "one.html"), pageOne)
	two := writeFile(t, filepath.Join(dir, "two.html"), pageTwo)
	missing := filepath.Join(dir, "missing.html")
	out := app.Outputs{
		JSONPath: filepath.Join(dir, "data.json"),
		CSVPath:  filepath.Join(dir, "data.csv"),
	}

	archive := &fakeArchive{}
	svc := app.NewHarvestService(nil, nil, archive, 2)
	sum, err := svc.Run(context.Background(), app.Job{Files: []string{one, two, missing}, Out: out})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(sum.Docs) != 2 {
		t.Fatalf("got %d docs, want 2 (unreadable input skipped)", len(sum.Docs))
	}
	for _, d := range sum.Docs {
		if d.Strategy != "embedded-cache" {
			t.Fatalf("doc %s extracted via %q", d.Source, d.Strategy)
		}
	}
	if sum.Total != 2 {
		t.Fatalf("total = %d, want 2 after dedupe", sum.Total)
	}
	if sum.Business.Name != "Trattoria Nina" {
		t.Fatalf("business = %+v", sum.Business)
	}

	doc := readJSONDoc(t, out.JSONPath)
	if doc.Count != 2 || doc.Business == nil || doc.Business.Name != "Trattoria Nina" {
		t.Fatalf("unexpected artifact: %+v", doc)
	}
	// newest first, and the duplicate kept its first occurrence's reviewer
	if doc.Reviews[0].ID != "b2" || doc.Reviews[1].ID != "a1" {
		t.Fatalf("order: %+v", doc.Reviews)
	}
	if doc.Reviews[1].Reviewer != "Ines" {
		t.Fatalf("reviewer = %q, want first occurrence kept", doc.Reviews[1].Reviewer)
	}

	if _, err := os.Stat(out.CSVPath); err != nil {
		t.Fatalf("csv artifact missing: %v", err)
	}
	if archive.calls != 1 || len(archive.rows) != 2 || archive.biz.Name != "Trattoria Nina" {
		t.Fatalf("archive got calls=%d rows=%d biz=%+v", archive.calls, len(archive.rows), archive.biz)
	}
}

func TestHarvest_PagesDirGlob(t *testing.T) {
	dir := t.TempDir()
	pages := filepath.Join(dir, "pages")
	if err := os.MkdirAll(pages, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeFile(t, filepath.Join(pages, "z.html"), pageTwo)
	writeFile(t, filepath.Join(pages, "a.html"), pageOne)
	writeFile(t, filepath.Join(pages, "notes.txt"), "not a page")

	svc := app.NewHarvestService(nil, nil, nil, 1)
	sum, err := svc.Run(context.Background(), app.Job{
		PagesDir: pages,
		Out: app.Outputs{
			JSONPath: filepath.Join(dir, "data.json"),
			CSVPath:  filepath.Join(dir, "data.csv"),
		},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(sum.Docs) != 2 {
		t.Fatalf("got %d docs, want only *.html", len(sum.Docs))
	}
	if filepath.Base(sum.Docs[0].Source) != "a.html" || filepath.Base(sum.Docs[1].Source) != "z.html" {
		t.Fatalf("glob order: %+v", sum.Docs)
	}
}

func TestHarvest_FetchFailuresContributeNothing(t *testing.T) {
	dir := t.TempDir()
	good := "https://reviews.example.com/r/Nina"
	bad := "https://reviews.example.com/r/Nina-or30"
	fetcher := &fakeFetcher{
		pages: map[string][]byte{good: []byte(pageOne)},
		fails: map[string]bool{bad: true},
	}

	svc := app.NewHarvestService(fetcher, nil, nil, 1)
	sum, err := svc.Run(context.Background(), app.Job{
		URLs: []string{good, bad},
		Out: app.Outputs{
			JSONPath: filepath.Join(dir, "data.json"),
			CSVPath:  filepath.Join(dir, "data.csv"),
		},
	})
	if err != nil {
		t.Fatalf("a failed fetch must not fail the run: %v", err)
	}
	if sum.Total != 1 {
		t.Fatalf("total = %d, want 1", sum.Total)
	}
	if len(sum.Docs) != 2 || sum.Docs[1].Found != 0 {
		t.Fatalf("docs: %+v", sum.Docs)
	}
}

func TestHarvest_PageCacheAndSavedPages(t *testing.T) {
	dir := t.TempDir()
	saved := filepath.Join(dir, "pages")
	cached := "https://reviews.example.com/r/Nina"
	fresh := "https://reviews.example.com/r/Nina-or10"

	cache := newFakeCache()
	cache.m["page:"+cached] = []byte(pageOne)
	fetcher := &fakeFetcher{pages: map[string][]byte{fresh: []byte(pageTwo)}}

	svc := app.NewHarvestService(fetcher, cache, nil, 1)
	_, err := svc.Run(context.Background(), app.Job{
		URLs:         []string{cached, fresh},
		CacheTTLSec:  60,
		SavePagesDir: saved,
		Out: app.Outputs{
			JSONPath: filepath.Join(dir, "data.json"),
			CSVPath:  filepath.Join(dir, "data.csv"),
		},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	// cached URL never reached the fetcher
	if len(fetcher.hits) != 1 || fetcher.hits[0] != fresh {
		t.Fatalf("fetcher hits: %v", fetcher.hits)
	}
	// fresh URL got cached and saved to disk
	if _, ok := cache.m["page:"+fresh]; !ok {
		t.Fatal("fetched page missing from cache")
	}
	onDisk, _ := filepath.Glob(filepath.Join(saved, "*.html"))
	if len(onDisk) != 1 {
		t.Fatalf("saved pages: %v", onDisk)
	}
}

func TestHarvest_NoReviewsStillWritesArtifacts(t *testing.T) {
	dir := t.TempDir()
	bare := writeFile(t, filepath.Join(dir, "bare.html"), `<html><body><p>nothing to see</p></body></html>`)
	out := app.Outputs{
		JSONPath: filepath.Join(dir, "data.json"),
		CSVPath:  filepath.Join(dir, "data.csv"),
	}

	svc := app.NewHarvestService(nil, nil, nil, 1)
	sum, err := svc.Run(context.Background(), app.Job{Files: []string{bare}, Out: out})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sum.Total != 0 || sum.Docs[0].Strategy != "" {
		t.Fatalf("summary: %+v", sum)
	}

	doc := readJSONDoc(t, out.JSONPath)
	if doc.Count != 0 || doc.Reviews == nil || len(doc.Reviews) != 0 || doc.Business != nil {
		t.Fatalf("empty harvest artifact: %+v", doc)
	}
}

func TestHarvest_NoInput(t *testing.T) {
	svc := app.NewHarvestService(nil, nil, nil, 1)
	_, err := svc.Run(context.Background(), app.Job{
		Files: []string{filepath.Join(t.TempDir(), "absent.html")},
	})
	if !errors.Is(err, app.ErrNoInput) {
		t.Fatalf("err = %v, want ErrNoInput", err)
	}
}

func TestHarvest_ArchiveErrorIsNotFatal(t *testing.T) {
	dir := t.TempDir()
	one := writeFile(t, filepath.Join(dir, "one.html"), pageOne)
	archive := &fakeArchive{err: errors.New("db down")}

	svc := app.NewHarvestService(nil, nil, archive, 1)
	_, err := svc.Run(context.Background(), app.Job{
		Files: []string{one},
		Out: app.Outputs{
			JSONPath: filepath.Join(dir, "data.json"),
			CSVPath:  filepath.Join(dir, "data.csv"),
		},
	})
	if err != nil {
		t.Fatalf("archive failure must not fail the run: %v", err)
	}
	if archive.calls != 1 {
		t.Fatalf("archive calls = %d", archive.calls)
	}
}
