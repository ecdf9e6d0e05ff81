package storage

import (
	"mime"
	"path/filepath"
	"strings"
)

// DetectContentType resolves a MIME type from the key's extension.
// Falls back to application/octet-stream.
func DetectContentType(key string) string {
	ext := strings.ToLower(filepath.Ext(key))
	if ext == "" {
		return "application/octet-stream"
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	// mime package misses a few types we care about on minimal systems.
	switch ext {
	case ".pdf":
		return "application/pdf"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case ".doc":
		return "application/msword"
	}
	return "application/octet-stream"
}
