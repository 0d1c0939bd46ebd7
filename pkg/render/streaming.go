package render

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/loomui/loom/pkg/vtree"
)

// Page describes a complete HTML document to stream.
type Page struct {
	// Lang is the document language (default "en").
	Lang string

	// Title is the document title.
	Title string

	// Head holds additional nodes rendered inside <head>.
	Head []*vtree.Node

	// Body is the page content.
	Body *vtree.Node

	// Scripts are script URLs appended at the end of <body>.
	Scripts []string
}

// StreamingRenderer wraps Renderer with chunked output support.
// It flushes content incrementally for faster time-to-first-byte.
type StreamingRenderer struct {
	*Renderer
	flusher http.Flusher
	w       io.Writer
}

// NewStreamingRenderer creates a streaming renderer that writes to
// an http.ResponseWriter. If the writer implements http.Flusher,
// content is flushed after each section for faster TTFB.
func NewStreamingRenderer(w io.Writer, config Config) *StreamingRenderer {
	flusher, _ := w.(http.Flusher)
	return &StreamingRenderer{
		Renderer: New(config),
		flusher:  flusher,
		w:        w,
	}
}

// RenderPage renders a complete HTML document with incremental
// flushing. The head section is flushed immediately for faster first
// paint.
func (s *StreamingRenderer) RenderPage(ctx context.Context, page Page) error {
	lang := page.Lang
	if lang == "" {
		lang = "en"
	}

	if _, err := io.WriteString(s.w, "<!DOCTYPE html>\n"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(s.w, `<html lang="%s">`+"\n", escapeAttr(lang)); err != nil {
		return err
	}

	if _, err := io.WriteString(s.w, "<head>\n<meta charset=\"utf-8\">\n"); err != nil {
		return err
	}
	if page.Title != "" {
		if _, err := fmt.Fprintf(s.w, "<title>%s</title>\n", escapeHTML(page.Title)); err != nil {
			return err
		}
	}
	for _, n := range page.Head {
		if err := s.RenderToWriter(ctx, s.w, n); err != nil {
			return err
		}
	}
	if _, err := io.WriteString(s.w, "</head>\n"); err != nil {
		return err
	}

	// Flush head immediately for faster first paint.
	s.flush()

	if _, err := io.WriteString(s.w, "<body>\n"); err != nil {
		return err
	}
	if err := s.RenderToWriter(ctx, s.w, page.Body); err != nil {
		return err
	}
	if err := s.WriteStateBlock(s.w); err != nil {
		return err
	}
	s.flush()

	for _, src := range page.Scripts {
		if _, err := fmt.Fprintf(s.w, `<script src="%s"></script>`+"\n", escapeAttr(src)); err != nil {
			return err
		}
	}
	if _, err := io.WriteString(s.w, "</body>\n</html>\n"); err != nil {
		return err
	}
	s.flush()

	return nil
}

// flush flushes the writer if it supports flushing.
func (s *StreamingRenderer) flush() {
	if s.flusher != nil {
		s.flusher.Flush()
	}
}

// FlushableWriter wraps an io.Writer with flush counting. This is
// useful for testing streaming behavior without an http.ResponseWriter.
type FlushableWriter struct {
	io.Writer
	FlushCount int
}

// Flush implements http.Flusher.
func (w *FlushableWriter) Flush() {
	w.FlushCount++
}
