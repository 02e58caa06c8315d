package constants

import "strings"

// FileType is the caller-declared type of a text-format drawing upload.
type FileType string

const (
	FileTypeDXF FileType = "dxf"
	FileTypeDWG FileType = "dwg"
)

// FileTypes holds the accepted values for the fileType request field.
var FileTypes = []string{string(FileTypeDXF), string(FileTypeDWG)}

// Document formats understood by the document extractor.
const (
	PDF   = "PDF"
	IMAGE = "IMAGE"
)

// DocumentExtensions maps the accepted document extensions to their format.
var DocumentExtensions = map[string]string{
	"pdf":  PDF,
	"png":  IMAGE,
	"jpg":  IMAGE,
	"jpeg": IMAGE,
	"gif":  IMAGE,
	"bmp":  IMAGE,
	"tif":  IMAGE,
	"tiff": IMAGE,
	"webp": IMAGE,
}

// TextExtensions holds the extensions the batch tool feeds to the tag-value parser.
var TextExtensions = map[string]FileType{
	"dxf": FileTypeDXF,
	"dwg": FileTypeDWG,
}

// MaxDocumentMBDefault bounds the size of a document sent inline to the model.
const MaxDocumentMBDefault = 20

// DWGSuggestion is returned to callers that upload binary CAD files.
const DWGSuggestion = "DWG is a binary format. Export the drawing as ASCII DXF (File > Save As > DXF, ASCII) and upload it again."

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToFormat returns PDF or IMAGE for a document extension, or "" when unsupported.
func MapExtToFormat(ext string) string {
	return DocumentExtensions[NormalizeExt(ext)]
}
