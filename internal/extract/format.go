package extract

import (
	"bytes"
	"fmt"
	"mime"
	"path/filepath"
	"strings"

	"github.com/Lllllllleong/studycardflow/internal/models"
)

var contentTypeKinds = map[string]models.Kind{
	"application/pdf": models.KindPDF,
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": models.KindSlides,
	"application/vnd.ms-powerpoint":                                             models.KindSlides,
}

// Detect identifies the document kind: by file extension first, then by the declared
// content type, then by sniffing the PDF header. It returns ErrUnsupportedFormat
// together with models.KindUnknown when nothing matches.
func Detect(name, contentType string, data []byte) (models.Kind, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return models.KindPDF, nil
	case ".pptx", ".ppt":
		return models.KindSlides, nil
	case ".goodnotes":
		return models.KindNotebook, nil
	}

	if contentType != "" {
		mediaType, _, err := mime.ParseMediaType(contentType)
		if err != nil {
			mediaType = strings.ToLower(strings.TrimSpace(contentType))
		}
		if kind, ok := contentTypeKinds[mediaType]; ok {
			return kind, nil
		}
	}

	if bytes.HasPrefix(data, []byte("%PDF-")) {
		return models.KindPDF, nil
	}

	return models.KindUnknown, fmt.Errorf("%w: %q (%s)", ErrUnsupportedFormat, name, contentType)
}

// SupportedExtensions returns the file extensions accepted by Detect.
func SupportedExtensions() []string {
	return []string{".pdf", ".pptx", ".ppt", ".goodnotes"}
}
