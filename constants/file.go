package constants

import "strings"

// IMAGE is the only input format the card pipeline accepts.
const IMAGE = "IMAGE"

// AllowedExtensions holds the card image extensions picked up by a batch scan.
var AllowedExtensions = map[string]struct{}{
	"jpg":  {},
	"jpeg": {},
	"png":  {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToFormat returns IMAGE for a supported extension, "" otherwise.
func MapExtToFormat(ext string) string {
	if _, ok := AllowedExtensions[NormalizeExt(ext)]; ok {
		return IMAGE
	}
	return ""
}

// IsAllowedExt reports whether ext (with or without dot, any case) is a card image extension.
func IsAllowedExt(ext string) bool {
	return MapExtToFormat(ext) == IMAGE
}
