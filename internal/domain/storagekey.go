package domain

import (
	"path/filepath"
	"regexp"
	"strings"
)

// IngestionKeyRoot is the first segment of every object key written by ingestion.
const IngestionKeyRoot = "ingestion"

var (
	unsafeKeyChars = regexp.MustCompile(`[^A-Za-z0-9_-]`)
	urlScheme      = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9+.-]*://`)
)

// SanitizeKeySegment replaces every character outside [A-Za-z0-9-_] with "_".
// An empty segment becomes "_" so keys never contain "//".
func SanitizeKeySegment(s string) string {
	s = unsafeKeyChars.ReplaceAllString(s, "_")
	if s == "" {
		return "_"
	}
	return s
}

// sanitizeFileName sanitizes the stem and extension separately so the
// extension dot survives.
func sanitizeFileName(name string) string {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	if ext == "" {
		return SanitizeKeySegment(stem)
	}
	return SanitizeKeySegment(stem) + "." + SanitizeKeySegment(strings.TrimPrefix(ext, "."))
}

// IsKeySafe reports whether s is non-empty and already a valid key segment.
// Batch tags and environments must be key-safe so that two batches never
// share a storage prefix.
func IsKeySafe(s string) bool {
	return s != "" && SanitizeKeySegment(s) == s
}

// KeySafeMessage describes the characters IsKeySafe accepts.
const KeySafeMessage = "may only contain letters, digits, '-' and '_'"

// BatchStoragePrefix returns the object-store prefix that holds every object
// uploaded for (environment, tag). It always ends with "/".
func BatchStoragePrefix(environment, tag string) string {
	return IngestionKeyRoot + "/" + SanitizeKeySegment(environment) + "/" + SanitizeKeySegment(tag) + "/"
}

// AudioObjectKey builds ingestion/{environment}/{tag}/{scholar}/{lecture}/{basename}.
func AudioObjectKey(environment, tag, scholarSlug, lectureSlug, localPath string) string {
	return BatchStoragePrefix(environment, tag) +
		SanitizeKeySegment(scholarSlug) + "/" +
		SanitizeKeySegment(lectureSlug) + "/" +
		sanitizeFileName(filepath.Base(localPath))
}

// IsStorageKey reports whether an audio asset url is a bare object-store key
// rather than an absolute URL (anything with a "scheme://" prefix).
func IsStorageKey(url string) bool {
	return url != "" && !urlScheme.MatchString(url)
}
