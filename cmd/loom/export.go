package main

import (
	"bytes"
	"context"
	"net/http"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/spf13/cobra"

	"github.com/loomui/loom/internal/config"
	"github.com/loomui/loom/internal/errors"
	"github.com/loomui/loom/internal/export"
	"github.com/loomui/loom/pkg/render"
	"github.com/loomui/loom/pkg/server"
	"github.com/loomui/loom/pkg/vtree"
)

func exportCmd() *cobra.Command {
	var publish bool

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Prerender configured routes to static HTML",
		Long: `Prerender the routes listed in loom.yaml into the export
directory. Pages whose content is unchanged since the last run are
skipped via the page cache.

With --publish, the exported directory is uploaded to the S3 bucket
configured under export.s3.

Examples:
  loom export
  loom export --publish`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd.Context(), publish)
		},
	}

	cmd.Flags().BoolVar(&publish, "publish", false, "Upload the export directory to the configured bucket")

	return cmd
}

func runExport(ctx context.Context, publish bool) error {
	cfg, err := config.Load(".")
	if err != nil {
		return err
	}
	if len(cfg.Export.Routes) == 0 {
		warn("no export routes configured in %s", config.FileName)
		return nil
	}

	pages := demoPages()
	e, err := export.New(cfg, func(ctx context.Context, route string) ([]byte, error) {
		return renderRoute(ctx, pages, route)
	})
	if err != nil {
		return err
	}
	defer e.Close()

	stats, err := e.Export(ctx)
	if err != nil {
		return err
	}
	success("exported %d routes to %s (%d updated, %d unchanged)",
		stats.Rendered, cfg.ExportPath(), stats.Updated, stats.Unchanged)

	if !publish {
		return nil
	}
	if !cfg.PublishEnabled() {
		return errors.New("E402").WithDetailf("--publish requires export.s3.bucket in %s", config.FileName)
	}

	client, err := s3Client(ctx, cfg)
	if err != nil {
		return err
	}
	p := export.NewPublisher(client, cfg.Export.S3.Bucket, cfg.Export.S3.Prefix)
	n, err := p.Publish(ctx, cfg.ExportPath())
	if err != nil {
		return err
	}
	success("published %d files to s3://%s/%s", n, cfg.Export.S3.Bucket, cfg.Export.S3.Prefix)
	return nil
}

// renderRoute renders one registered page to a full document.
func renderRoute(ctx context.Context, pages map[string]server.PageDef, route string) ([]byte, error) {
	def, ok := pages[route]
	if !ok {
		return nil, errors.New("E402").WithDetailf("no page registered for route %s", route)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, route, nil)
	if err != nil {
		return nil, err
	}
	comp, props := def.New(req)

	var buf bytes.Buffer
	sr := render.NewStreamingRenderer(&buf, render.Config{Hydratable: true})
	err = sr.RenderPage(ctx, render.Page{
		Lang:    def.Lang,
		Title:   def.Title,
		Head:    def.Head,
		Body:    vtree.Comp(comp, props),
		Scripts: def.Scripts,
	})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func s3Client(ctx context.Context, cfg *config.Config) (*s3.Client, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Export.S3.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Export.S3.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, errors.New("E402").Wrap(err)
	}
	return s3.NewFromConfig(awsCfg), nil
}
