package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"os"
	"path/filepath"

	"cloud.google.com/go/storage"
	"github.com/spf13/cobra"

	"github.com/Lllllllleong/studycardflow/internal/gcp"
	"github.com/Lllllllleong/studycardflow/internal/generation"
	"github.com/Lllllllleong/studycardflow/internal/models"
	"github.com/Lllllllleong/studycardflow/internal/prompt"
)

// app carries state shared by every subcommand.
type app struct {
	cfgFile string
	verbose bool
	quiet   bool

	cfg    *Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "cardgen",
		Short: "Turn lecture slides into study cards",
		Long: `cardgen extracts text and red-highlighted passages from PDF, PPTX and
GoodNotes documents and asks a Gemini model to write study cards from them.

Inputs may be local paths or gs://bucket/object URIs.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(a.cfgFile)
			if err != nil {
				return err
			}
			a.cfg = cfg

			level := slog.LevelWarn
			if a.verbose {
				level = slog.LevelDebug
			}
			a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
			slog.SetDefault(a.logger)
			a.cfg.Extract.Logger = a.logger
			a.cfg.Pipeline.Logger = a.logger
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&a.cfgFile, "config", "c", "", "config file path (YAML)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().BoolVarP(&a.quiet, "quiet", "q", false, "hide progress bars")

	root.AddCommand(newGenerateCmd(a), newInspectCmd(a), newCheckKeyCmd(a))
	return root
}

// readSource loads a document from a local path or a gs:// URI.
func (a *app) readSource(ctx context.Context, input string) (models.SourceDocument, error) {
	if bucket, object, err := gcp.ParseGCSURI(input); err == nil {
		client, err := storage.NewClient(ctx)
		if err != nil {
			return models.SourceDocument{}, fmt.Errorf("failed to create Storage client: %w", err)
		}
		defer client.Close()

		obj, err := gcp.ReadObject(ctx, client, bucket, object)
		if err != nil {
			return models.SourceDocument{}, err
		}
		return models.SourceDocument{Name: filepath.Base(object), ContentType: obj.ContentType, Data: obj.Data}, nil
	}

	f, err := os.Open(input)
	if err != nil {
		return models.SourceDocument{}, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return models.SourceDocument{}, fmt.Errorf("stat input: %w", err)
	}
	if info.IsDir() {
		return models.SourceDocument{}, fmt.Errorf("%s is a directory", input)
	}
	data, err := io.ReadAll(f)
	if err != nil {
		return models.SourceDocument{}, fmt.Errorf("read input: %w", err)
	}
	return models.SourceDocument{
		Name:        filepath.Base(input),
		ContentType: mime.TypeByExtension(filepath.Ext(input)),
		Data:        data,
	}, nil
}

// newGenerator builds the configured backend. The returned close func is never nil.
func (a *app) newGenerator(ctx context.Context) (generation.Generator, func() error, error) {
	g := a.cfg.Generator
	switch g.Backend {
	case backendVertex:
		if g.ProjectID == "" {
			return nil, nil, fmt.Errorf("the vertex backend needs a project (PROJECT_ID or generator.project_id)")
		}
		vc, err := gcp.NewVertexClient(ctx, g.ProjectID, g.Region, g.Model)
		if err != nil {
			return nil, nil, err
		}
		return vc.Generator(), vc.Close, nil
	default:
		rc, err := a.newRESTClient()
		if err != nil {
			return nil, nil, err
		}
		return rc, func() error { return nil }, nil
	}
}

func (a *app) newRESTClient() (*generation.RESTClient, error) {
	g := a.cfg.Generator
	if g.APIKey == "" {
		return nil, fmt.Errorf("no API key: set GEMINI_API_KEY or generator.api_key")
	}
	return generation.NewRESTClient(generation.RESTConfig{
		APIKey:            g.APIKey,
		Model:             g.Model,
		BaseURL:           g.BaseURL,
		SystemInstruction: prompt.SystemPrompt,
		Logger:            a.logger,
	})
}
