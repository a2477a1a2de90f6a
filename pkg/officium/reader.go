package officium

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotFound reports that a data file does not exist. It is a normal,
// recoverable outcome: callers fall back to another language or version.
// Any other error from a FileReader is a genuine I/O failure.
var ErrNotFound = errors.New("data file not found")

// FileReader supplies the raw lines of a data file for a given language.
// Implementations must return ErrNotFound for missing files so that the
// resolver can distinguish absence from failure.
type FileReader interface {
	ReadLines(lang, path string) ([]string, error)
}

// DirReader reads data files from <base>/<language>/<path> on disk. Files
// are UTF-8; a leading byte-order mark is stripped and both Unix and
// Windows line endings are accepted.
type DirReader struct {
	base string
}

// NewDirReader returns a DirReader rooted at the given data directory.
func NewDirReader(base string) *DirReader {
	return &DirReader{base: base}
}

// ReadLines implements FileReader.
func (r *DirReader) ReadLines(lang, path string) ([]string, error) {
	full := filepath.Join(r.base, lang, filepath.FromSlash(path))
	data, err := os.ReadFile(full)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return splitLines(string(data)), nil
}

func splitLines(content string) []string {
	content = strings.TrimPrefix(content, "\ufeff")
	if content == "" {
		return nil
	}
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.TrimSuffix(content, "\n")
	return strings.Split(content, "\n")
}
