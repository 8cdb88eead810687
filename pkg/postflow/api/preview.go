package api

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var previewMarkdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(html.WithHardWraps()),
)

// handlePreview renders a stored run's generated content as an HTML
// fragment. Generated posts are markdown-ish for the blog and general
// platforms; short-form content passes through as paragraphs.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	st, ok := s.loadRun(w, r)
	if !ok {
		return
	}
	if st.Content == nil || st.Content.Text == "" {
		writeError(w, http.StatusNotFound, fmt.Errorf("run %s has no generated content", st.RunID))
		return
	}

	var buf bytes.Buffer
	if err := previewMarkdown.Convert([]byte(st.Content.Text), &buf); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Errorf("render preview: %w", err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
