package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lllllllleong/studycardflow/internal/models"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name        string
		fileName    string
		contentType string
		data        []byte
		want        models.Kind
	}{
		{"pdf extension", "Lecture 1.PDF", "", nil, models.KindPDF},
		{"pptx extension", "deck.pptx", "", nil, models.KindSlides},
		{"legacy ppt extension", "deck.ppt", "", nil, models.KindSlides},
		{"goodnotes extension", "Biology.goodnotes", "", nil, models.KindNotebook},
		{"extension wins over content type", "deck.pptx", "application/pdf", nil, models.KindSlides},
		{"pdf content type", "upload", "application/pdf; charset=binary", nil, models.KindPDF},
		{"pptx content type", "upload", "application/vnd.openxmlformats-officedocument.presentationml.presentation", nil, models.KindSlides},
		{"powerpoint content type", "upload", "application/vnd.ms-powerpoint", nil, models.KindSlides},
		{"magic bytes", "blob.bin", "application/octet-stream", []byte("%PDF-1.7\n..."), models.KindPDF},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Detect(tt.fileName, tt.contentType, tt.data)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDetectUnsupported(t *testing.T) {
	got, err := Detect("notes.docx", "application/msword", []byte("PK\x03\x04"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	assert.Equal(t, models.KindUnknown, got)
}
