package llm

import (
	"encoding/base64"
	"strings"

	"github.com/joseph-ayodele/levels-ingest/constants"
)

// DataURL encodes data inline for a chat content part.
func DataURL(mimeType string, data []byte) string {
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// DocumentPart builds the chat content part carrying the document: images go as
// image_url, PDFs as a file part.
func DocumentPart(req ExtractRequest) map[string]any {
	url := DataURL(req.MimeType, req.Data)
	if req.Format == constants.PDF || strings.EqualFold(req.MimeType, "application/pdf") {
		name := req.FileName
		if name == "" {
			name = "drawing.pdf"
		}
		return map[string]any{
			"type": "file",
			"file": map[string]any{"filename": name, "file_data": url},
		}
	}
	return map[string]any{
		"type":      "image_url",
		"image_url": map[string]any{"url": url, "detail": "high"},
	}
}
