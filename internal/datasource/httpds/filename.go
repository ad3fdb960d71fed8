package httpds

import (
	"crypto/sha1"
	"encoding/hex"
	"net/url"
	"path"
	"regexp"
)

// filenameCleaner replaces sequences of characters that are awkward in file
// names with "_".
var filenameCleaner = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// HashString returns a stable SHA1 hex digest of s.
func HashString(s string) string {
	h := sha1.Sum([]byte(s))
	return hex.EncodeToString(h[:])
}

// FilenameFromURL derives a filesystem-safe file name from the last segment
// of rawURL's path, e.g. "variant_summary.txt.gz". It falls back to a hash of
// the whole URL when the URL cannot be parsed or has no usable path segment.
func FilenameFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return HashString(rawURL)
	}
	base := path.Base(u.Path)
	if base == "." || base == "/" {
		return HashString(rawURL)
	}
	clean := filenameCleaner.ReplaceAllString(base, "_")
	if clean == "" || clean == "_" || clean == "." || clean == ".." {
		return HashString(rawURL)
	}
	return clean
}
