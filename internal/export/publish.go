package export

import (
	"bytes"
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/loomui/loom/internal/errors"
)

// PutObjectAPI is the slice of the S3 client the publisher needs.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Publisher uploads an exported directory to an S3 bucket.
type Publisher struct {
	client PutObjectAPI
	bucket string
	prefix string
}

// NewPublisher creates a publisher for the given bucket. The prefix is
// prepended to every object key.
func NewPublisher(client PutObjectAPI, bucket, prefix string) *Publisher {
	return &Publisher{client: client, bucket: bucket, prefix: prefix}
}

// Publish uploads every file under dir, keyed by its relative path.
func (p *Publisher) Publish(ctx context.Context, dir string) (int, error) {
	uploaded := 0
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return errors.New("E402").Wrap(err)
		}
		if d.IsDir() {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return errors.New("E402").Wrap(err)
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return errors.New("E402").Wrap(err)
		}
		key := p.prefix + filepath.ToSlash(rel)

		_, err = p.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(p.bucket),
			Key:         aws.String(key),
			Body:        bytes.NewReader(data),
			ContentType: aws.String(contentType(rel)),
		})
		if err != nil {
			return errors.New("E402").WithDetailf("put %s: %v", key, err)
		}
		uploaded++
		return nil
	})
	return uploaded, err
}

func contentType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html":
		return "text/html; charset=utf-8"
	case ".css":
		return "text/css"
	case ".js":
		return "application/javascript"
	case ".json":
		return "application/json"
	case ".svg":
		return "image/svg+xml"
	default:
		return "application/octet-stream"
	}
}
