package extract

import (
	"archive/zip"
	"bytes"
	"encoding/hex"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/Lllllllleong/studycardflow/internal/models"
)

const defaultSlideFontSize = 12.0

var slideMember = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)

// xmlRun is a DrawingML text run (a:r). Namespaces are matched by local name only.
type xmlRun struct {
	Props *struct {
		Bold  string `xml:"b,attr"`
		Size  string `xml:"sz,attr"`
		Solid *struct {
			SRGB *struct {
				Val string `xml:"val,attr"`
			} `xml:"srgbClr"`
		} `xml:"solidFill"`
	} `xml:"rPr"`
	Text string `xml:"t"`
}

type slideFile struct {
	index int
	file  *zip.File
}

// extractSlides reads every slide of a PPTX deck in numeric order.
func (x *Extractor) extractSlides(data []byte) (*models.ExtractedContent, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: open slide archive: %v", ErrNoExtractableContent, err)
	}

	var slides []slideFile
	for _, f := range zr.File {
		m := slideMember.FindStringSubmatch(f.Name)
		if m == nil {
			continue
		}
		idx, _ := strconv.Atoi(m[1])
		slides = append(slides, slideFile{index: idx, file: f})
	}
	if len(slides) == 0 {
		return nil, ErrNoSlidesFound
	}
	sort.Slice(slides, func(i, j int) bool { return slides[i].index < slides[j].index })

	content := &models.ExtractedContent{
		Pages:      make([]models.Page, 0, len(slides)),
		TotalPages: len(slides),
		Kind:       models.KindSlides,
	}
	for i, s := range slides {
		number := i + 1
		runs, err := readSlide(s.file)
		if err != nil {
			if x.cfg.StrictPages {
				return nil, &PageDecodeError{Page: number, Err: err}
			}
			x.logger.Warn("Slide could not be decoded; continuing with an empty page.", "slide", s.file.Name, "error", err)
		}
		for _, r := range runs {
			if r.Color.Emphasized() {
				content.Emphasis = append(content.Emphasis, models.EmphasisSpan{Text: r.Text, Page: number})
			}
		}
		content.Pages = append(content.Pages, models.NewPage(number, runs))
	}
	return content, nil
}

func readSlide(f *zip.File) ([]models.TextRun, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return parseSlideRuns(rc)
}

// parseSlideRuns collects the text runs of one slide document in document order.
func parseSlideRuns(r io.Reader) ([]models.TextRun, error) {
	dec := xml.NewDecoder(r)
	var runs []models.TextRun
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return runs, nil
		}
		if err != nil {
			return runs, fmt.Errorf("parse slide xml: %w", err)
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "r" {
			continue
		}
		var xr xmlRun
		if err := dec.DecodeElement(&xr, &se); err != nil {
			return runs, fmt.Errorf("parse slide run: %w", err)
		}
		if run, ok := xr.textRun(); ok {
			runs = append(runs, run)
		}
	}
}

func (xr xmlRun) textRun() (models.TextRun, bool) {
	text := strings.TrimSpace(xr.Text)
	if text == "" {
		return models.TextRun{}, false
	}
	run := models.TextRun{Text: text, Color: models.Black, FontSize: defaultSlideFontSize}
	if p := xr.Props; p != nil {
		run.Bold = p.Bold == "1" || p.Bold == "true"
		if sz, err := strconv.Atoi(p.Size); err == nil && sz > 0 {
			run.FontSize = float64(sz) / 100
		}
		if p.Solid != nil && p.Solid.SRGB != nil {
			if c, ok := parseHexColor(p.Solid.SRGB.Val); ok {
				run.Color = c
			}
		}
	}
	return run, true
}

// parseHexColor parses a 6-digit RRGGBB value.
func parseHexColor(s string) (models.RGB, bool) {
	b, err := hex.DecodeString(strings.TrimPrefix(s, "#"))
	if err != nil || len(b) != 3 {
		return models.RGB{}, false
	}
	return models.RGB{R: b[0], G: b[1], B: b[2]}, true
}
