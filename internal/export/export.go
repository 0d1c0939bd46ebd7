// Package export prerenders configured routes to static HTML.
//
// Rendered pages land in the export directory laid out for static
// hosting ("/" becomes index.html, "/about" becomes about/index.html).
// A bbolt cache keyed by route remembers each page's content hash so
// unchanged pages are neither rewritten nor republished.
package export

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"

	bolt "go.etcd.io/bbolt"

	"github.com/loomui/loom/internal/config"
	"github.com/loomui/loom/internal/errors"
)

var cacheBucket = []byte("pages")

// RenderFunc renders one route to a complete HTML document.
type RenderFunc func(ctx context.Context, route string) ([]byte, error)

// Stats summarizes one export run.
type Stats struct {
	// Rendered counts routes rendered.
	Rendered int

	// Updated counts pages written because their content changed.
	Updated int

	// Unchanged counts pages skipped by the cache.
	Unchanged int
}

// Exporter writes prerendered pages to the export directory.
type Exporter struct {
	cfg    *config.Config
	render RenderFunc
	db     *bolt.DB
}

// New opens the exporter and its page cache.
func New(cfg *config.Config, render RenderFunc) (*Exporter, error) {
	path := cfg.CachePath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.New("E401").Wrap(err)
	}
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, errors.New("E401").Wrap(err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(cacheBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, errors.New("E401").Wrap(err)
	}
	return &Exporter{cfg: cfg, render: render, db: db}, nil
}

// Close releases the page cache.
func (e *Exporter) Close() error { return e.db.Close() }

// Export renders every configured route into the export directory.
func (e *Exporter) Export(ctx context.Context) (Stats, error) {
	var stats Stats
	for _, route := range e.cfg.Export.Routes {
		changed, err := e.exportRoute(ctx, route)
		if err != nil {
			return stats, err
		}
		stats.Rendered++
		if changed {
			stats.Updated++
		} else {
			stats.Unchanged++
		}
	}
	return stats, nil
}

func (e *Exporter) exportRoute(ctx context.Context, route string) (changed bool, err error) {
	html, err := e.render(ctx, route)
	if err != nil {
		return false, err
	}

	sum := sha256.Sum256(html)
	hash := hex.EncodeToString(sum[:])

	dest := filepath.Join(e.cfg.ExportPath(), RouteFile(route))
	if e.cachedHash(route) == hash {
		if _, statErr := os.Stat(dest); statErr == nil {
			return false, nil
		}
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return false, errors.New("E402").Wrap(err)
	}
	if err := os.WriteFile(dest, html, 0o644); err != nil {
		return false, errors.New("E402").Wrap(err)
	}

	err = e.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(cacheBucket).Put([]byte(route), []byte(hash))
	})
	if err != nil {
		return false, errors.New("E401").Wrap(err)
	}
	return true, nil
}

func (e *Exporter) cachedHash(route string) string {
	var hash string
	e.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(cacheBucket).Get([]byte(route)); v != nil {
			hash = string(v)
		}
		return nil
	})
	return hash
}

// RouteFile maps a route to its file path under the export directory.
func RouteFile(route string) string {
	trimmed := strings.Trim(route, "/")
	if trimmed == "" {
		return "index.html"
	}
	return filepath.Join(filepath.FromSlash(trimmed), "index.html")
}
