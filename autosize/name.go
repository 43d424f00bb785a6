package autosize

import (
	"os"
	"strings"
	"unicode/utf8"
)

// InitSuffix is the literal tail of a log file name that carries a model
// name, as in "markshare-init.csv".
const InitSuffix = "-init.csv"

// DeriveModelName strips InitSuffix from name. The second return value is
// false when name does not end with the suffix; the comparison is
// case-sensitive.
func DeriveModelName(name string) (string, bool) {
	if model, ok := strings.CutSuffix(name, InitSuffix); ok {
		return model, true
	}
	return "", false
}

// FinalSegment returns the last component of path without touching the
// filesystem. Trailing separators and trailing "." components are skipped,
// so "logs/a-init.csv/." yields "a-init.csv".
func FinalSegment(path string) (string, error) {
	parts := strings.FieldsFunc(path, isSeparator)

	// Drop "." components after the first; a lone "." has no file name.
	for len(parts) > 1 && parts[len(parts)-1] == "." {
		parts = parts[:len(parts)-1]
	}

	if len(parts) == 0 {
		return "", &PathExtractionError{Path: path}
	}

	last := parts[len(parts)-1]
	if last == "." || last == ".." {
		return "", &PathExtractionError{Path: path}
	}

	if !utf8.ValidString(last) {
		return "", &EncodingError{Path: path, Segment: last}
	}

	return last, nil
}

// ModelNameFromPath combines FinalSegment and DeriveModelName. It returns
// an empty string when either step fails.
func ModelNameFromPath(path string) string {
	segment, err := FinalSegment(path)
	if err != nil {
		return ""
	}
	model, ok := DeriveModelName(segment)
	if !ok {
		return ""
	}
	return model
}

func isSeparator(r rune) bool {
	return r < utf8.RuneSelf && os.IsPathSeparator(uint8(r))
}
