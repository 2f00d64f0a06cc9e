package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Lllllllleong/studycardflow/internal/extract"
	"github.com/Lllllllleong/studycardflow/internal/models"
	"github.com/Lllllllleong/studycardflow/internal/pipeline"
	"github.com/Lllllllleong/studycardflow/internal/render"
)

type generateOptions struct {
	output      string
	chunks      int
	multimodal  bool
	handoutMode string
	scale       float64
}

func newGenerateCmd(a *app) *cobra.Command {
	opts := &generateOptions{}
	cmd := &cobra.Command{
		Use:   "generate <file | gs://bucket/object>",
		Short: "Generate study cards from a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("chunks") {
				a.cfg.Pipeline.ChunkCount = opts.chunks
			}
			if cmd.Flags().Changed("multimodal") {
				a.cfg.Pipeline.Multimodal = opts.multimodal
			}
			if cmd.Flags().Changed("handout") {
				a.cfg.Pipeline.HandoutMode = models.ParseHandoutMode(opts.handoutMode)
			}
			if cmd.Flags().Changed("scale") {
				a.cfg.Pipeline.RenderScale = opts.scale
			}
			if err := a.cfg.Validate(); err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return a.runGenerate(ctx, cmd.OutOrStdout(), cmd.ErrOrStderr(), args[0], opts.output)
		},
	}
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output path for the card set (default: <deck>.cards.json)")
	cmd.Flags().IntVar(&opts.chunks, "chunks", 0, "number of generation calls (0 picks one per ~5 pages, max 10)")
	cmd.Flags().BoolVar(&opts.multimodal, "multimodal", false, "send rendered page images with the text")
	cmd.Flags().StringVar(&opts.handoutMode, "handout", string(models.HandoutNormal), "slides per printed page: normal, 4-per-page or 6-per-page")
	cmd.Flags().Float64Var(&opts.scale, "scale", render.DefaultScale, "page render scale for multimodal mode")
	return cmd
}

func (a *app) runGenerate(ctx context.Context, stdout, stderr io.Writer, input, output string) error {
	doc, err := a.readSource(ctx, input)
	if err != nil {
		return err
	}

	gen, closeGen, err := a.newGenerator(ctx)
	if err != nil {
		return err
	}
	defer closeGen()

	var renderer render.Renderer
	if a.cfg.Pipeline.Multimodal {
		renderer = render.NewFitzRenderer(a.logger)
	}
	p := pipeline.New(a.cfg.Pipeline, extract.New(a.cfg.Extract), gen, renderer)

	extractBar := newProgress(stderr, "Extracting pages", a.quiet)
	generateBar := newProgress(stderr, "Generating cards", a.quiet)
	result, err := p.Run(ctx, doc, extractBar.Func(), func(done, total int) {
		if done == 1 {
			extractBar.Finish()
		}
		generateBar.Func()(done, total)
	})
	if err != nil {
		return err
	}
	generateBar.Finish()

	deck := models.DeckName(doc.Name)
	if output == "" {
		output = deck + ".cards.json"
	}
	set := models.CardSet{
		DocumentID: uuid.NewString(),
		DeckName:   deck,
		TotalPages: result.Content.TotalPages,
		Cards:      models.Issue(result.Cards),
	}
	data, err := json.MarshalIndent(set, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal card set: %w", err)
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("write card set: %w", err)
	}

	fmt.Fprintf(stdout, "%s: %d cards from %d pages in %d chunks\n", deck, len(set.Cards), set.TotalPages, result.Chunks)
	printTally(stdout, models.CountCategories(result.Cards))
	abs, _ := filepath.Abs(output)
	fmt.Fprintf(stdout, "Saved to %s\n", abs)
	return nil
}

func printTally(w io.Writer, tally models.Tally) {
	for _, c := range models.Categories {
		if n := tally[c]; n > 0 {
			fmt.Fprintf(w, "  %-14s %d\n", c.Label(), n)
		}
	}
}
