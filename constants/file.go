package constants

import (
	"path/filepath"
	"strings"
)

// Document formats routed by the extraction dispatcher.
const (
	CSV   = "CSV"
	JSON  = "JSON"
	PDF   = "PDF"
	IMAGE = "IMAGE"
	XLSX  = "XLSX"
)

// AllowedExtensions is the upload surface accepted over HTTP.
var AllowedExtensions = map[string]struct{}{
	"png":  {},
	"jpg":  {},
	"jpeg": {},
	"pdf":  {},
	"csv":  {},
	"json": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// ExtFromPath returns the normalized extension of a path.
func ExtFromPath(path string) string {
	return NormalizeExt(filepath.Ext(path))
}

// MapExtToFormat maps a normalized extension to a document format.
// Anything not structurally parseable is treated as an image; the OCR
// layer fails cleanly on undecodable input.
func MapExtToFormat(ext string) string {
	switch NormalizeExt(ext) {
	case "csv":
		return CSV
	case "json":
		return JSON
	case "pdf":
		return PDF
	case "xlsx":
		return XLSX
	default:
		return IMAGE
	}
}

// IsAllowedUpload reports whether a filename carries an accepted extension.
func IsAllowedUpload(filename string) bool {
	ext := ExtFromPath(filename)
	if ext == "" {
		return false
	}
	_, ok := AllowedExtensions[ext]
	return ok
}
