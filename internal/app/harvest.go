package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"reviewharvest/internal/adapters/observability"
	"reviewharvest/internal/domain"
	"reviewharvest/internal/export"
	"reviewharvest/internal/extract"
)

// ErrNoInput: no document could be located at all. This is the only
// condition that fails a run; everything else degrades to partial output.
var ErrNoInput = errors.New("harvest: no input documents")

// Job is one run's explicit configuration. Local files come first, then
// every *.html under PagesDir (sorted), then remote URLs in order.
type Job struct {
	Files    []string
	PagesDir string
	URLs     []string

	CacheTTLSec  int    // page cache TTL for fetched URLs
	SavePagesDir string // when set, fetched bodies are also written here

	Out Outputs
}

// Outputs names the artifact files a run overwrites.
type Outputs struct {
	JSONPath string
	CSVPath  string
	XLSXPath string // optional
}

// DocResult reports one document's contribution before merging.
type DocResult struct {
	Source   string
	Strategy string
	Found    int
}

type Summary struct {
	Docs     []DocResult
	Total    int
	Business domain.BusinessInfo
}

// HarvestService runs the whole pipeline: locate documents, extract
// through the strategy chain, merge, write artifacts, archive.
type HarvestService struct {
	pipeline *extract.Pipeline
	fetcher  domain.PageFetcher
	cache    domain.Cache
	archive  domain.ReviewArchive
	workers  int64
}

// NewHarvestService wires the pipeline. fetcher, cache and archive may be
// nil; the matching steps are skipped. workers bounds local document
// parsing only, never network fetching.
func NewHarvestService(f domain.PageFetcher, c domain.Cache, a domain.ReviewArchive, workers int) *HarvestService {
	if workers <= 0 {
		workers = 1
	}
	return &HarvestService{
		pipeline: extract.NewPipeline(),
		fetcher:  f,
		cache:    c,
		archive:  a,
		workers:  int64(workers),
	}
}

func (s *HarvestService) Run(ctx context.Context, job Job) (Summary, error) {
	names, bodies, err := s.collect(ctx, job)
	if err != nil {
		return Summary{}, err
	}

	// Parse and extract in bounded parallel, assembling by index so the
	// output is identical to a sequential pass.
	results := make([]docExtract, len(names))
	sem := semaphore.NewWeighted(s.workers)
	var wg sync.WaitGroup
	for i := range names {
		if err := sem.Acquire(ctx, 1); err != nil {
			return Summary{}, err
		}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer sem.Release(1)
			results[i] = s.extractOne(names[i], bodies[i])
		}(i)
	}
	wg.Wait()

	var all []domain.Review
	var biz domain.BusinessInfo
	sum := Summary{}
	for i, res := range results {
		all = append(all, res.reviews...)
		if biz.Empty() && !res.business.Empty() {
			biz = res.business
		}
		sum.Docs = append(sum.Docs, DocResult{Source: names[i], Strategy: res.strategy, Found: len(res.reviews)})
		log.Info().
			Str("source", names[i]).
			Str("strategy", res.strategy).
			Int("found", len(res.reviews)).
			Msg("document extracted")
	}

	final := extract.MergeDedupeSort(all)
	sum.Total = len(final)
	sum.Business = biz
	log.Info().Int("unique", sum.Total).Msg("reviews merged")

	if err := s.writeOutputs(job.Out, biz, final); err != nil {
		return sum, err
	}

	// Archiving is best-effort on top of the file contract.
	if s.archive != nil {
		if err := s.archive.UpsertReviews(ctx, biz, final); err != nil {
			log.Error().Err(err).Msg("archive upsert failed")
		} else {
			log.Info().Int("rows", sum.Total).Msg("archive upserted")
		}
	}
	return sum, nil
}

type docExtract struct {
	reviews  []domain.Review
	business domain.BusinessInfo
	strategy string
}

// collect locates every input document and loads its bytes. Unreadable
// files are skipped with a warning; failed fetches contribute an empty
// body so the run keeps going.
func (s *HarvestService) collect(ctx context.Context, job Job) ([]string, [][]byte, error) {
	var names []string
	var bodies [][]byte

	addFile := func(path string) {
		b, err := os.ReadFile(path)
		if err != nil {
			log.Warn().Str("file", path).Err(err).Msg("skipping unreadable input")
			return
		}
		names = append(names, path)
		bodies = append(bodies, b)
	}

	for _, p := range job.Files {
		addFile(p)
	}
	if job.PagesDir != "" {
		pages, _ := filepath.Glob(filepath.Join(job.PagesDir, "*.html"))
		for _, p := range pages {
			addFile(p)
		}
	}
	for _, u := range job.URLs {
		names = append(names, u)
		bodies = append(bodies, s.loadURL(ctx, u, job))
	}

	if len(names) == 0 {
		return nil, nil, ErrNoInput
	}
	return names, bodies, nil
}

// loadURL serves a page from the cache when possible; cache hits skip the
// fetcher and therefore the courtesy delay.
func (s *HarvestService) loadURL(ctx context.Context, url string, job Job) []byte {
	if s.cache != nil {
		var body []byte
		if ok, _ := s.cache.Get(ctx, pageKey(url), &body); ok {
			log.Info().Str("url", url).Msg("page served from cache")
			return body
		}
	}
	if s.fetcher == nil {
		return nil
	}
	body, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		log.Warn().Str("url", url).Err(err).Msg("fetch failed, page contributes nothing")
		return nil
	}
	log.Info().Str("url", url).Int("bytes", len(body)).Msg("page fetched")
	if s.cache != nil {
		_ = s.cache.Set(ctx, pageKey(url), body, job.CacheTTLSec)
	}
	if job.SavePagesDir != "" {
		s.savePage(job.SavePagesDir, url, body)
	}
	return body
}

func pageKey(url string) string { return "page:" + url }

// savePage keeps the raw body on disk so later offline runs can reuse it.
func (s *HarvestService) savePage(dir, url string, body []byte) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Warn().Str("dir", dir).Err(err).Msg("cannot create pages dir")
		return
	}
	name := filepath.Join(dir, safeFileName(url)+".html")
	if err := os.WriteFile(name, body, 0o644); err != nil {
		log.Warn().Str("file", name).Err(err).Msg("cannot save page")
		return
	}
	log.Info().Str("file", name).Msg("page saved")
}

func safeFileName(s string) string {
	s = strings.TrimPrefix(s, "https://")
	s = strings.TrimPrefix(s, "http://")
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

func (s *HarvestService) extractOne(name string, body []byte) docExtract {
	doc, err := extract.ParseDocument(bytes.NewReader(body))
	if err != nil {
		log.Warn().Str("source", name).Err(err).Msg("document parse failed")
		return docExtract{}
	}
	reviews, strategy := s.pipeline.ExtractReviews(doc)
	observability.ObserveExtraction(strategy, len(reviews))
	return docExtract{
		reviews:  reviews,
		business: extract.ExtractBusiness(doc),
		strategy: strategy,
	}
}

func (s *HarvestService) writeOutputs(out Outputs, biz domain.BusinessInfo, reviews []domain.Review) error {
	var bp *domain.BusinessInfo
	if !biz.Empty() {
		bp = &biz
	}
	if err := export.WriteJSON(out.JSONPath, bp, reviews); err != nil {
		return fmt.Errorf("write %s: %w", out.JSONPath, err)
	}
	if err := export.WriteCSV(out.CSVPath, biz, reviews); err != nil {
		return fmt.Errorf("write %s: %w", out.CSVPath, err)
	}
	if out.XLSXPath != "" {
		if err := export.WriteXLSX(out.XLSXPath, biz, reviews); err != nil {
			return fmt.Errorf("write %s: %w", out.XLSXPath, err)
		}
	}
	return nil
}
