// Package format identifies uploaded drawing documents from their magic bytes, with the
// file extension as a fallback, and reads raster dimensions.
package format

import (
	"bytes"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"path/filepath"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/joseph-ayodele/levels-ingest/constants"
	"github.com/joseph-ayodele/levels-ingest/internal/common"
)

// MIME types this package reports.
const (
	MimePDF  = "application/pdf"
	MimePNG  = "image/png"
	MimeJPEG = "image/jpeg"
	MimeGIF  = "image/gif"
	MimeTIFF = "image/tiff"
	MimeBMP  = "image/bmp"
	MimeWebP = "image/webp"
	MimeDWG  = "image/vnd.dwg"
)

// DocumentSuggestion tells callers what the document endpoint accepts.
const DocumentSuggestion = "Upload the drawing as PDF or as a PNG, JPEG, TIFF, BMP, GIF or WebP image. CAD files go to the text endpoint as ASCII DXF."

var extMime = map[string]string{
	"pdf":  MimePDF,
	"png":  MimePNG,
	"jpg":  MimeJPEG,
	"jpeg": MimeJPEG,
	"gif":  MimeGIF,
	"tif":  MimeTIFF,
	"tiff": MimeTIFF,
	"bmp":  MimeBMP,
	"webp": MimeWebP,
	"dwg":  MimeDWG,
}

// Document describes a detected upload. Width and Height are zero for PDFs and for
// images whose header could not be read.
type Document struct {
	MimeType string `json:"mimeType"`
	Format   string `json:"format"` // constants.PDF or constants.IMAGE
	Width    int    `json:"pageWidth,omitempty"`
	Height   int    `json:"pageHeight,omitempty"`
}

// DetectFromMagic checks file magic bytes to determine the MIME type.
// Returns "" if the format cannot be determined from magic bytes alone.
func DetectFromMagic(data []byte) string {
	switch {
	case bytes.HasPrefix(data, []byte("%PDF")):
		return MimePDF
	case bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")):
		return MimePNG
	case bytes.HasPrefix(data, []byte{0xFF, 0xD8, 0xFF}):
		return MimeJPEG
	case bytes.HasPrefix(data, []byte("GIF87a")), bytes.HasPrefix(data, []byte("GIF89a")):
		return MimeGIF
	case bytes.HasPrefix(data, []byte("II*\x00")), bytes.HasPrefix(data, []byte("MM\x00*")):
		return MimeTIFF
	case bytes.HasPrefix(data, []byte("BM")) && len(data) >= 26:
		return MimeBMP
	case len(data) >= 12 && bytes.Equal(data[:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WEBP")):
		return MimeWebP
	case bytes.HasPrefix(data, []byte("AC10")):
		return MimeDWG
	}
	return ""
}

// DetectFromName maps a file extension to a MIME type, or "".
func DetectFromName(fileName string) string {
	return extMime[constants.NormalizeExt(filepath.Ext(fileName))]
}

// Detect identifies data, preferring magic bytes over the file name. Binary CAD and
// anything that is neither PDF nor a supported raster fail with
// *common.UnsupportedFormatError.
func Detect(fileName string, data []byte) (Document, error) {
	mt := DetectFromMagic(data)
	if mt == "" {
		mt = DetectFromName(fileName)
	}
	switch mt {
	case "":
		return Document{}, &common.UnsupportedFormatError{Format: constants.NormalizeExt(filepath.Ext(fileName)), Suggestion: DocumentSuggestion}
	case MimeDWG:
		return Document{}, &common.UnsupportedFormatError{Format: string(constants.FileTypeDWG), Suggestion: constants.DWGSuggestion}
	case MimePDF:
		return Document{MimeType: mt, Format: constants.PDF}, nil
	}

	doc := Document{MimeType: mt, Format: constants.IMAGE}
	if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		doc.Width, doc.Height = cfg.Width, cfg.Height
	}
	return doc, nil
}
