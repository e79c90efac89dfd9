package app

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"os"
	"sync"
	"time"
)

// Artifact is one servable output file snapshot.
type Artifact struct {
	Body        []byte
	ETag        string
	ContentType string
}

type artifact struct {
	modTime time.Time
	size    int64
	body    []byte
	etag    string
}

// ArtifactService serves the harvest output files over HTTP. Bodies are
// memoized per path and re-read only when the file's stat changes, so the
// ETag stays stable between runs.
type ArtifactService struct {
	jsonPath string
	csvPath  string

	mu   sync.Mutex
	memo map[string]*artifact
}

func NewArtifactService(jsonPath, csvPath string) *ArtifactService {
	return &ArtifactService{
		jsonPath: jsonPath,
		csvPath:  csvPath,
		memo:     map[string]*artifact{},
	}
}

func (a *ArtifactService) ReviewsJSON() (Artifact, error) {
	return a.load(a.jsonPath, "application/json; charset=utf-8")
}

func (a *ArtifactService) ReviewsCSV() (Artifact, error) {
	return a.load(a.csvPath, "text/csv; charset=utf-8")
}

func (a *ArtifactService) load(path, contentType string) (Artifact, error) {
	st, err := os.Stat(path)
	if err != nil {
		return Artifact{}, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if cached, ok := a.memo[path]; ok && cached.modTime.Equal(st.ModTime()) && cached.size == st.Size() {
		return Artifact{Body: cached.body, ETag: cached.etag, ContentType: contentType}, nil
	}

	body, err := os.ReadFile(path)
	if err != nil {
		return Artifact{}, err
	}
	etag := weakETag(body)
	a.memo[path] = &artifact{modTime: st.ModTime(), size: st.Size(), body: body, etag: etag}
	return Artifact{Body: body, ETag: etag, ContentType: contentType}, nil
}

func weakETag(b []byte) string {
	sum := sha1.Sum(b)
	return fmt.Sprintf("W/%q", hex.EncodeToString(sum[:]))
}
