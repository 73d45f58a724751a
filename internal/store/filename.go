package store

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// UploadPrefix is the relative path under which saved images are referenced.
const UploadPrefix = "uploads/"

var allowedExtensions = map[string]struct{}{
	"png":  {},
	"jpg":  {},
	"jpeg": {},
	"gif":  {},
}

// IsAllowed reports whether filename has an extension in the image allow-set.
// Only the text after the last dot counts, compared case-insensitively.
func IsAllowed(filename string) bool {
	i := strings.LastIndexByte(filename, '.')
	if i < 0 {
		return false
	}
	_, ok := allowedExtensions[strings.ToLower(filename[i+1:])]
	return ok
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// SecureFilename reduces a client-supplied name to a flat ASCII filename
// that cannot traverse directories. It may return "".
func SecureFilename(name string) string {
	var b strings.Builder
	for _, r := range norm.NFKD.String(name) {
		if r <= unicode.MaxASCII {
			b.WriteRune(r)
		}
	}
	s := b.String()
	s = strings.NewReplacer("/", " ", `\`, " ").Replace(s)
	s = strings.Join(strings.Fields(s), "_")
	s = unsafeFilenameChars.ReplaceAllString(s, "")
	return strings.Trim(s, "._")
}
