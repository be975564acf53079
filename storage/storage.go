// Package storage holds the blob stores lesson plans are uploaded to.
package storage

import (
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/pkg/errors"
)

var errTooLarge = errors.New("object exceeds upload limit")

// sizeLimit fails the read once more than max bytes have come through.
type sizeLimit struct {
	r   io.Reader
	max int64
	n   int64
}

func limitSize(r io.Reader, max int64) io.Reader {
	return &sizeLimit{r: r, max: max}
}

func (l *sizeLimit) Read(p []byte) (int, error) {
	if int64(len(p)) > l.max-l.n+1 {
		p = p[:l.max-l.n+1]
	}
	n, err := l.r.Read(p)
	l.n += int64(n)
	if l.n > l.max {
		return n, errTooLarge
	}
	return n, err
}

// cleanName validates an object name: relative, slash separated, no dot segments.
func cleanName(name string) (string, error) {
	if name == "" || strings.HasPrefix(name, "/") {
		return "", errors.Errorf("invalid object name %q", name)
	}
	for _, seg := range strings.Split(name, "/") {
		if seg == "" || seg == "." || seg == ".." {
			return "", errors.Errorf("invalid object name %q", name)
		}
	}
	return path.Clean(name), nil
}

func escapeName(name string) string {
	segs := strings.Split(name, "/")
	for i, seg := range segs {
		segs[i] = url.PathEscape(seg)
	}
	return strings.Join(segs, "/")
}
