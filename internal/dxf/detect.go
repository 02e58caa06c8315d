package dxf

import (
	"bytes"
	"strings"
)

// Binary DWG files open with an "AC10xx" version string; binary DXF has its own sentinel.
var binaryPrefixes = [][]byte{
	[]byte("AC10"),
	[]byte("AC1.2"),
	[]byte("AC2.10"),
	[]byte("AutoCAD Binary DXF"),
}

// LooksBinary reports whether content is a binary CAD container rather than ASCII DXF.
func LooksBinary(content []byte) bool {
	head := content
	if len(head) > 512 {
		head = head[:512]
	}
	for _, prefix := range binaryPrefixes {
		if bytes.HasPrefix(head, prefix) {
			return true
		}
	}
	// ASCII DXF never carries NUL bytes.
	return bytes.IndexByte(head, 0) >= 0
}

// LooksLikeDXF is a cheap sniff for an ASCII tag/value stream.
func LooksLikeDXF(content string) bool {
	head := content
	if len(head) > 4096 {
		head = head[:4096]
	}
	return strings.Contains(head, "SECTION") || strings.Contains(head, sectionMarker)
}
