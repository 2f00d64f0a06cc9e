package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/Lllllllleong/studycardflow/internal/models"
)

const notebookFontSize = 12.0

// extractNotebook unwraps a GoodNotes container. The largest embedded PDF wins;
// otherwise text and JSON members become a single synthetic page.
func (x *Extractor) extractNotebook(ctx context.Context, data []byte, onProgress models.ProgressFunc) (*models.ExtractedContent, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: open notebook archive: %v", ErrNoExtractableContent, err)
	}

	var largest *zip.File
	var textMembers []*zip.File
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		switch strings.ToLower(path.Ext(f.Name)) {
		case ".pdf":
			if largest == nil || f.UncompressedSize64 > largest.UncompressedSize64 {
				largest = f
			}
		case ".txt", ".json":
			textMembers = append(textMembers, f)
		}
	}

	if largest != nil {
		x.logger.Debug("Notebook contains embedded PDF.", "member", largest.Name, "bytes", largest.UncompressedSize64)
		pdfData, err := readMember(largest)
		if err != nil {
			return nil, fmt.Errorf("%w: read %s: %v", ErrNoExtractableContent, largest.Name, err)
		}
		content, err := x.extractPDF(ctx, pdfData, onProgress)
		if err != nil {
			return nil, err
		}
		content.Kind = models.KindNotebook
		return content, nil
	}

	if len(textMembers) == 0 {
		return nil, fmt.Errorf("%w: notebook has no pdf or text members", ErrNoExtractableContent)
	}

	parts := make([]string, 0, len(textMembers))
	for _, f := range textMembers {
		b, err := readMember(f)
		if err != nil {
			return nil, fmt.Errorf("%w: read %s: %v", ErrNoExtractableContent, f.Name, err)
		}
		parts = append(parts, string(b))
	}
	text := strings.Join(parts, "\n")
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: notebook text members are empty", ErrNoExtractableContent)
	}

	runs := []models.TextRun{{Text: text, Color: models.Black, FontSize: notebookFontSize}}
	return &models.ExtractedContent{
		Pages:      []models.Page{models.NewPage(1, runs)},
		TotalPages: 1,
		Kind:       models.KindNotebook,
	}, nil
}

func readMember(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
