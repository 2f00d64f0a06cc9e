package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Lllllllleong/studycardflow/internal/chunk"
	"github.com/Lllllllleong/studycardflow/internal/extract"
	"github.com/Lllllllleong/studycardflow/internal/models"
)

func newInspectCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "inspect <file | gs://bucket/object>",
		Short: "Show what extraction finds in a document without calling the model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runInspect(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), args[0], asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the extracted content as JSON")
	return cmd
}

func (a *app) runInspect(ctx context.Context, stdout, stderr io.Writer, input string, asJSON bool) error {
	doc, err := a.readSource(ctx, input)
	if err != nil {
		return err
	}

	bar := newProgress(stderr, "Extracting pages", a.quiet || asJSON)
	content, err := extract.New(a.cfg.Extract).Extract(ctx, doc, bar.Func())
	if err != nil {
		return err
	}
	bar.Finish()

	if asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(content)
	}
	printReport(stdout, doc.Name, content, a.cfg.Pipeline.ChunkCount)
	return nil
}

func printReport(w io.Writer, name string, content *models.ExtractedContent, chunkCount int) {
	fmt.Fprintf(w, "%s (%s): %d pages, %d emphasis spans\n", name, content.Kind, content.TotalPages, len(content.Emphasis))

	for _, p := range content.Pages {
		var bold, emphasized int
		for _, r := range p.Runs {
			if r.Bold {
				bold++
			}
			if r.Color.Emphasized() {
				emphasized++
			}
		}
		preview := p.FullText
		if len([]rune(preview)) > 60 {
			preview = string([]rune(preview)[:60]) + "..."
		}
		if preview == "" {
			preview = "(blank)"
		}
		fmt.Fprintf(w, "  p.%-4d runs=%-3d bold=%-3d red=%-3d %s\n", p.Number, len(p.Runs), bold, emphasized, preview)
	}

	if len(content.Emphasis) > 0 {
		fmt.Fprintln(w, "Red text:")
		for _, e := range content.Emphasis {
			fmt.Fprintf(w, "  [p.%d] %s\n", e.Page, e.Text)
		}
	}

	if chunkCount <= 0 {
		chunkCount = chunk.SuggestCount(content.TotalPages)
	}
	plan := chunk.Plan(content, chunkCount)
	fmt.Fprintf(w, "Chunk plan (%d):\n", len(plan))
	for i, c := range plan {
		first, last := c.Span()
		fmt.Fprintf(w, "  %d. pages %d-%d (%d with text)\n", i+1, first, last, len(c.Pages))
	}
}
