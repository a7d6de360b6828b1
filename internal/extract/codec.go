package extract

import (
	"compress/bzip2"
	"compress/gzip"
	"io"
	"path/filepath"
	"strings"

	"github.com/ulikunitz/xz"
)

// A codec turns a raw file stream into a plain-text stream.
type codec func(io.Reader) (io.Reader, error)

// codecs maps file-extension suffixes to decompressors. Any suffix not
// listed here is read as plain text.
var codecs = map[string]codec{
	".gz":  func(r io.Reader) (io.Reader, error) { return gzip.NewReader(r) },
	".bz2": func(r io.Reader) (io.Reader, error) { return bzip2.NewReader(r), nil },
	".xz":  func(r io.Reader) (io.Reader, error) { return xz.NewReader(r) },
}

// decode wraps r in the decompressor selected by path's extension.
func decode(path string, r io.Reader) (io.Reader, error) {
	if c, ok := codecs[strings.ToLower(filepath.Ext(path))]; ok {
		return c(r)
	}
	return r, nil
}
