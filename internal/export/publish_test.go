package export

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"

	loomerrors "github.com/loomui/loom/internal/errors"
)

type fakeS3 struct {
	objects map[string]string
	fail    bool
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.fail {
		return nil, errors.New("denied")
	}
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	if f.objects == nil {
		f.objects = map[string]string{}
	}
	f.objects[*in.Key] = *in.ContentType + "|" + string(body)
	return &s3.PutObjectOutput{}, nil
}

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestPublishUploadsTree(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"index.html":       "<html>home</html>",
		"about/index.html": "<html>about</html>",
		"assets/app.js":    "console.log(1)",
	})
	client := &fakeS3{}
	p := NewPublisher(client, "pages", "v1/")

	n, err := p.Publish(context.Background(), dir)
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if n != 3 {
		t.Fatalf("uploaded %d", n)
	}

	var keys []string
	for k := range client.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	want := []string{"v1/about/index.html", "v1/assets/app.js", "v1/index.html"}
	for i, k := range want {
		if keys[i] != k {
			t.Fatalf("keys %v, want %v", keys, want)
		}
	}
	if got := client.objects["v1/index.html"]; got != "text/html; charset=utf-8|<html>home</html>" {
		t.Errorf("object %q", got)
	}
	if got := client.objects["v1/assets/app.js"]; got != "application/javascript|console.log(1)" {
		t.Errorf("object %q", got)
	}
}

func TestPublishFailureIsStructured(t *testing.T) {
	dir := writeTree(t, map[string]string{"index.html": "x"})
	p := NewPublisher(&fakeS3{fail: true}, "pages", "")

	_, err := p.Publish(context.Background(), dir)
	var lerr *loomerrors.Error
	if !errors.As(err, &lerr) || lerr.Code != "E402" {
		t.Fatalf("expected E402, got %v", err)
	}
}
