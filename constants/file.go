package constants

import "strings"

// AllowedExtensions holds the file extensions the ingest watcher picks up.
// The pipeline itself only ever sees PDFs.
var AllowedExtensions = map[string]struct{}{
	"pdf": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
