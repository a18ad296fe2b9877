package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/umputun/feedrank/pkg/feed"
	"github.com/umputun/feedrank/pkg/pipeline"
	"github.com/umputun/feedrank/pkg/stream"
)

// feedItem is the JSON view of a ranked item
type feedItem struct {
	Title       string `json:"title"`
	ArticleURL  string `json:"article_url"`
	CommentsURL string `json:"comments_url"`
	Points      string `json:"points"`
	Comments    string `json:"comments"`
	Score       int    `json:"score"`
}

// pageHandler streams the page: shell prefix, loading placeholder, ranked view and shell suffix.
// Headers are sent before the feed is fetched, so fetch failures are rendered as part of the page.
func (s *Server) pageHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("X-Accel-Buffering", "no") // tell proxies not to buffer the stream
	w.WriteHeader(http.StatusOK)

	body := stream.Compose(r.Context(), s.shell.Prefix, s.ranker.Source(s.renderer), s.shell.Suffix)
	defer body.Close()

	rc := http.NewResponseController(w)
	flush := func() {
		if err := rc.Flush(); err != nil && !errors.Is(err, http.ErrNotSupported) {
			log.Printf("[DEBUG] flush failed: %v", err)
		}
	}

	if _, err := body.CopyTo(w, flush); err != nil {
		if r.Context().Err() != nil {
			log.Printf("[DEBUG] client disconnected: %v", err)
			return
		}
		log.Printf("[WARN] page stream failed: %v", err)
	}
}

// feedHandler returns ranked feed as JSON
func (s *Server) feedHandler(w http.ResponseWriter, r *http.Request) {
	res, err := s.ranker.Run(r.Context())
	if err != nil {
		log.Printf("[WARN] failed to load feed: %v", err)
		code := http.StatusInternalServerError
		if errors.Is(err, feed.ErrNetwork) || errors.Is(err, feed.ErrParse) {
			code = http.StatusBadGateway
		}
		renderError(w, r, errors.New(pipeline.FailureMessage(err)), code)
		return
	}

	items := make([]feedItem, 0, len(res.Items))
	for _, item := range res.Items {
		items = append(items, feedItem{
			Title:       item.Item.Title,
			ArticleURL:  item.Extracted.ArticleURL,
			CommentsURL: item.Extracted.CommentsURL,
			Points:      item.Extracted.PointsText,
			Comments:    item.Extracted.NumCommentsText,
			Score:       item.Score,
		})
	}
	renderJSON(w, r, http.StatusOK, map[string]any{"title": res.Title, "link": res.Link, "items": items})
}

// statusHandler returns server status
func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	status := map[string]any{
		"status":  "ok",
		"version": s.cfg.Version,
		"time":    time.Now().UTC(),
	}
	renderJSON(w, r, http.StatusOK, status)
}

// renderJSON sends JSON response
func renderJSON(w http.ResponseWriter, _ *http.Request, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			log.Printf("[ERROR] can't encode response to JSON: %v", err)
		}
	}
}

// renderError sends error response as JSON
func renderError(w http.ResponseWriter, r *http.Request, err error, code int) {
	errMsg := "unknown error"
	if err != nil {
		errMsg = err.Error()
	}
	renderJSON(w, r, code, map[string]string{"error": errMsg})
}
