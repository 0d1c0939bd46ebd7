package export

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/loomui/loom/internal/config"
)

func testConfig(t *testing.T, routes ...string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	content := "name: demo\nexport:\n  routes: ["
	for i, r := range routes {
		if i > 0 {
			content += ", "
		}
		content += `"` + r + `"`
	}
	content += "]\n"
	if err := os.WriteFile(filepath.Join(dir, config.FileName), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := config.Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	return cfg
}

func TestExportWritesPages(t *testing.T) {
	cfg := testConfig(t, "/", "/about")
	rendered := 0
	render := func(_ context.Context, route string) ([]byte, error) {
		rendered++
		return []byte("<html>" + route + "</html>"), nil
	}

	e, err := New(cfg, render)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer e.Close()

	stats, err := e.Export(context.Background())
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if stats.Rendered != 2 || stats.Updated != 2 || stats.Unchanged != 0 {
		t.Fatalf("stats %+v", stats)
	}

	index, err := os.ReadFile(filepath.Join(cfg.ExportPath(), "index.html"))
	if err != nil {
		t.Fatal(err)
	}
	if string(index) != "<html>/</html>" {
		t.Errorf("index content %q", index)
	}
	if _, err := os.Stat(filepath.Join(cfg.ExportPath(), "about", "index.html")); err != nil {
		t.Errorf("about page missing: %v", err)
	}
}

func TestExportCacheSkipsUnchangedPages(t *testing.T) {
	cfg := testConfig(t, "/")
	content := "<html>v1</html>"
	render := func(context.Context, string) ([]byte, error) {
		return []byte(content), nil
	}

	e, err := New(cfg, render)
	if err != nil {
		t.Fatal(err)
	}
	defer e.Close()

	ctx := context.Background()
	if _, err := e.Export(ctx); err != nil {
		t.Fatal(err)
	}
	stats, err := e.Export(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Updated != 0 || stats.Unchanged != 1 {
		t.Fatalf("second run stats %+v", stats)
	}

	content = "<html>v2</html>"
	stats, err = e.Export(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Updated != 1 {
		t.Fatalf("changed content not rewritten: %+v", stats)
	}
	got, _ := os.ReadFile(filepath.Join(cfg.ExportPath(), "index.html"))
	if string(got) != "<html>v2</html>" {
		t.Errorf("content %q", got)
	}
}

func TestExportRewritesDeletedOutput(t *testing.T) {
	cfg := testConfig(t, "/")
	render := func(context.Context, string) ([]byte, error) {
		return []byte("<html>x</html>"), nil
	}
	e, err := New(cfg, render)
	if err != nil {
		t.Fatal(err)
	}
	defer e.Close()

	ctx := context.Background()
	if _, err := e.Export(ctx); err != nil {
		t.Fatal(err)
	}
	// The cache says unchanged, but the file is gone.
	os.Remove(filepath.Join(cfg.ExportPath(), "index.html"))

	stats, err := e.Export(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Updated != 1 {
		t.Fatalf("missing output not rewritten: %+v", stats)
	}
}

func TestRouteFile(t *testing.T) {
	cases := map[string]string{
		"/":          "index.html",
		"/about":     filepath.Join("about", "index.html"),
		"/docs/faq/": filepath.Join("docs", "faq", "index.html"),
	}
	for route, want := range cases {
		if got := RouteFile(route); got != want {
			t.Errorf("RouteFile(%q) = %q, want %q", route, got, want)
		}
	}
}
