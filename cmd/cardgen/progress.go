package main

import (
	"fmt"
	"io"

	"github.com/schollz/progressbar/v3"

	"github.com/Lllllllleong/studycardflow/internal/models"
)

// progress wraps a progress bar whose total is learned from the first callback.
type progress struct {
	bar *progressbar.ProgressBar
}

func newProgress(w io.Writer, description string, quiet bool) *progress {
	if quiet {
		w = io.Discard
	}
	bar := progressbar.NewOptions64(
		-1,
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(w),
		progressbar.OptionShowCount(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(w, "\n")
		}),
		progressbar.OptionFullWidth(),
		progressbar.OptionSetRenderBlankState(true),
	)
	return &progress{bar: bar}
}

// Func adapts the bar to a models.ProgressFunc.
func (p *progress) Func() models.ProgressFunc {
	return func(completed, total int) {
		if p.bar.GetMax64() != int64(total) {
			p.bar.ChangeMax64(int64(total))
		}
		_ = p.bar.Set64(int64(completed))
	}
}

func (p *progress) Finish() {
	_ = p.bar.Finish()
}
