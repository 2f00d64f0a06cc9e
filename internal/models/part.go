package models

// PartKind tags a generation request part.
type PartKind int

const (
	PartText PartKind = iota
	PartImage
)

// Part is one ordered element of a generation request: either text or an inline image.
type Part struct {
	Kind     PartKind
	Text     string
	Data     []byte
	MIMEType string
}

// TextPart wraps a prompt string.
func TextPart(s string) Part {
	return Part{Kind: PartText, Text: s}
}

// ImagePart wraps encoded image bytes.
func ImagePart(data []byte, mimeType string) Part {
	return Part{Kind: PartImage, Data: data, MIMEType: mimeType}
}

// PageImageMIMEType is the encoding of rendered page images.
const PageImageMIMEType = "image/png"
