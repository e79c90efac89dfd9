package httpserver

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"reviewharvest/internal/app"
)

type Handlers struct{ Artifacts *app.ArtifactService }

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/v1/reviews", h.reviewsJSON)
	s.mux.Get("/v1/reviews.csv", h.reviewsCSV)
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

func (h *Handlers) reviewsJSON(w http.ResponseWriter, r *http.Request) {
	art, err := h.Artifacts.ReviewsJSON()
	if err != nil {
		writeProblem(w, http.StatusNotFound, "Not Found", "no harvested data yet; run merge or fetch first")
		return
	}
	serveArtifact(w, r, art)
}

func (h *Handlers) reviewsCSV(w http.ResponseWriter, r *http.Request) {
	art, err := h.Artifacts.ReviewsCSV()
	if err != nil {
		writeProblem(w, http.StatusNotFound, "Not Found", "no harvested data yet; run merge or fetch first")
		return
	}
	serveArtifact(w, r, art)
}

// serveArtifact writes a snapshot with its ETag, short-circuiting to 304
// when the client already holds this version.
func serveArtifact(w http.ResponseWriter, r *http.Request, art app.Artifact) {
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == art.ETag {
		w.Header().Set("ETag", art.ETag)
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("ETag", art.ETag)
	w.Header().Set("Content-Type", art.ContentType)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(art.Body); err != nil {
		log.Error().Err(err).Msg("failed to write artifact body")
	}
}
