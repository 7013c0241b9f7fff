package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/linkpeek/linkpeek/batch"
	"github.com/linkpeek/linkpeek/config"
	"github.com/linkpeek/linkpeek/export"
	"github.com/linkpeek/linkpeek/extractor"
	"github.com/linkpeek/linkpeek/fetcher"
	ierrors "github.com/linkpeek/linkpeek/internal/errors"
	"github.com/linkpeek/linkpeek/normalizer"
	"github.com/linkpeek/linkpeek/server"
)

var (
	name     = "linkpeek"
	version  = "0.1.0"
	revision = "xxx"
)

func main() {
	app := &cli.App{
		Name:    name,
		Version: version,
		Usage:   "batched link-preview service",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to the configuration file",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "server",
				Usage: "run the HTTP preview API",
				Action: func(c *cli.Context) error {
					cfg, err := setup(c)
					if err != nil {
						return err
					}
					return server.Run(cfg, name, version, revision)
				},
			},
			{
				Name:      "preview",
				Usage:     "preview URLs once and write the results as CSV",
				ArgsUsage: "[URL ...]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "input",
						Aliases: []string{"i"},
						Usage:   "file with newline/comma separated URLs",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "CSV output path (default stdout)",
					},
				},
				Action: runPreview,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads configuration and installs the global logger.
func setup(c *cli.Context) (*config.Config, error) {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return nil, ierrors.Wrap(err, "failed to load configuration")
	}
	if err := setupLogger(cfg.Log.Level); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setupLogger(level string) error {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return ierrors.Wrapf(err, "invalid log level %q", level)
	}
	logCfg := zap.NewProductionConfig()
	logCfg.Level = lvl
	logger, err := logCfg.Build()
	if err != nil {
		return ierrors.Wrap(err, "failed to build logger")
	}
	zap.ReplaceGlobals(logger)
	return nil
}

// runPreview drives one batch through the pipeline from the command line.
func runPreview(c *cli.Context) error {
	cfg, err := setup(c)
	if err != nil {
		return err
	}

	urls := append([]string{}, c.Args().Slice()...)
	if path := c.String("input"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return ierrors.Wrap(err, "failed to read input file")
		}
		urls = append(urls, normalizer.SplitInput(string(data))...)
	}
	if len(urls) == 0 {
		return ierrors.New("no URLs given: pass them as arguments or via --input")
	}
	if len(urls) > cfg.Batch.MaxURLs {
		return ierrors.New(fmt.Sprintf("too many URLs: maximum is %d, got %d", cfg.Batch.MaxURLs, len(urls)))
	}

	httpFetcher := fetcher.NewHTTPFetcher(&fetcher.Config{
		Timeout:         cfg.Fetch.Timeout,
		UserAgent:       cfg.Fetch.UserAgent,
		FollowRedirects: cfg.Fetch.FollowRedirects,
		MaxBodyBytes:    cfg.Fetch.MaxBodyBytes,
	})
	processor := batch.NewProcessor(httpFetcher, extractor.New(), &batch.Config{
		MaxWorkers: cfg.Batch.MaxWorkers,
		PageSize:   cfg.Batch.PageSize,
	})

	resp := processor.ProcessAll(context.Background(), urls)

	out := os.Stdout
	if path := c.String("output"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return ierrors.Wrap(err, "failed to create output file")
		}
		defer f.Close()
		out = f
	}

	if err := export.WriteCSV(out, resp.Results); err != nil {
		return err
	}

	zap.S().Infow("preview complete",
		"total", resp.Summary.Total,
		"successful", resp.Summary.Successful,
		"failed", resp.Summary.Failed,
		"with_images", resp.Summary.WithImages)
	return nil
}
