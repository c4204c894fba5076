package export

import (
	"strings"
	"unicode"
)

const (
	maxFilenameRunes = 80
	fallbackFilename = "mindmap"
)

// Filename derives a download name from a document title. Characters other
// than letters, digits, '-' and '_' are dropped and whitespace runs become a
// single '-'.
func Filename(title, ext string) string {
	var b strings.Builder
	pendingSep := false
	n := 0
	for _, r := range title {
		if n >= maxFilenameRunes {
			break
		}
		switch {
		case unicode.IsSpace(r):
			pendingSep = b.Len() > 0
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_':
			if pendingSep {
				if n+1 >= maxFilenameRunes {
					n = maxFilenameRunes
					continue
				}
				b.WriteByte('-')
				n++
				pendingSep = false
			}
			b.WriteRune(r)
			n++
		}
	}

	name := strings.Trim(b.String(), "-_")
	if name == "" {
		name = fallbackFilename
	}
	ext = strings.TrimPrefix(ext, ".")
	if ext == "" {
		return name
	}
	return name + "." + ext
}
