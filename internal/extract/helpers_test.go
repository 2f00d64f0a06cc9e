package extract

import (
	"archive/zip"
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// pdfFile writes numbered objects and the matching xref table.
type pdfFile struct {
	buf     bytes.Buffer
	offsets []int
}

func newPDFFile() *pdfFile {
	f := &pdfFile{}
	f.buf.WriteString("%PDF-1.4\n")
	return f
}

// obj appends the next object; objects are numbered from 1 in write order.
func (f *pdfFile) obj(body string) {
	f.offsets = append(f.offsets, f.buf.Len())
	fmt.Fprintf(&f.buf, "%d 0 obj\n%s\nendobj\n", len(f.offsets), body)
}

// stream appends a stream object; dict is the header without /Length.
func (f *pdfFile) stream(dict, data string) {
	f.obj(fmt.Sprintf("<< %s /Length %d >>\nstream\n%s\nendstream", dict, len(data), data))
}

func (f *pdfFile) bytes() []byte {
	xref := f.buf.Len()
	fmt.Fprintf(&f.buf, "xref\n0 %d\n0000000000 65535 f \n", len(f.offsets)+1)
	for _, off := range f.offsets {
		fmt.Fprintf(&f.buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&f.buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(f.offsets)+1, xref)
	return f.buf.Bytes()
}

const (
	helveticaObj     = "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>"
	helveticaBoldObj = "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica-Bold /Encoding /WinAnsiEncoding >>"
)

// buildPDF writes a minimal PDF with one page per content stream. Pages share two
// WinAnsi fonts: /F1 Helvetica and /F2 Helvetica-Bold.
func buildPDF(t *testing.T, contents ...string) []byte {
	t.Helper()

	f := newPDFFile()
	kids := make([]string, len(contents))
	for i := range contents {
		kids[i] = fmt.Sprintf("%d 0 R", 5+2*i)
	}
	f.obj("<< /Type /Catalog /Pages 2 0 R >>")
	f.obj(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(contents)))
	f.obj(helveticaObj)
	f.obj(helveticaBoldObj)
	for i, c := range contents {
		f.obj(fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R /F2 4 0 R >> >> /Contents %d 0 R >>", 6+2*i))
		f.stream("", c)
	}
	return f.bytes()
}

// buildFormPDF writes a one-page PDF whose page resources hold /F1 Helvetica and a
// form XObject /X1. The form has its own resources with /FB Helvetica-Bold and is
// drawn through matrix (e.g. "[2 0 0 2 0 0]", or "" for none).
func buildFormPDF(t *testing.T, pageContent, formContent, matrix string) []byte {
	t.Helper()

	f := newPDFFile()
	f.obj("<< /Type /Catalog /Pages 2 0 R >>")
	f.obj("<< /Type /Pages /Kids [5 0 R] /Count 1 >>")
	f.obj(helveticaObj)
	f.obj(helveticaBoldObj)
	f.obj("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> /XObject << /X1 7 0 R >> >> /Contents 6 0 R >>")
	f.stream("", pageContent)
	dict := "/Type /XObject /Subtype /Form /BBox [0 0 612 792] /Resources << /Font << /FB 4 0 R >> >>"
	if matrix != "" {
		dict += " /Matrix " + matrix
	}
	f.stream(dict, formContent)
	return f.bytes()
}

type member struct {
	name string
	data []byte
}

func buildZip(t *testing.T, members ...member) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, m := range members {
		w, err := zw.Create(m.name)
		require.NoError(t, err)
		_, err = w.Write(m.data)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

const slideNS = `xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main"`

// slideXML wraps DrawingML runs in a one-shape slide.
func slideXML(runs ...string) []byte {
	return []byte(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<p:sld ` + slideNS + `><p:cSld><p:spTree><p:sp><p:txBody><a:bodyPr/><a:p>` +
		strings.Join(runs, "") +
		`</a:p></p:txBody></p:sp></p:spTree></p:cSld></p:sld>`)
}
