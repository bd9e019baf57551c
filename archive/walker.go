// Package archive builds book bundle abstraction on top of "archive/zip".
// Bundle is a zip file carrying content files together with their resources.
package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/h2non/filetype"
)

// WalkFunc is the type of the function called for each file in bundle
// visited by Bundle.Walk. The bundle argument contains path to bundle, the file
// argument is the zip.File structure for file which satisfies match
// condition. If an error is returned, processing stops.
type WalkFunc func(bundle string, file *zip.File) error

// Bundle is an opened zip archive. It is fs.FS so content files and images
// could be read directly from it.
type Bundle struct {
	*zip.ReadCloser
	Path string
}

// Open opens bundle refusing archives with entries which could escape
// extraction directory.
func Open(name string) (*Bundle, error) {
	r, err := zip.OpenReader(name)
	if err != nil {
		// insecure paths are reported together with usable reader
		if r != nil {
			r.Close()
		}
		return nil, err
	}
	for _, f := range r.File {
		if !isSafePath(f.Name) {
			r.Close()
			return nil, fmt.Errorf("zip entry %q: unsafe path (absolute or contains path traversal)", f.Name)
		}
	}
	return &Bundle{ReadCloser: r, Path: name}, nil
}

// Walk calls walkFn for every regular file in bundle for which match returns
// true. Nil match selects everything.
func (b *Bundle) Walk(match func(name string) bool, walkFn WalkFunc) error {
	for _, f := range b.File {
		if f.FileInfo().IsDir() {
			continue
		}
		if match != nil && !match(f.Name) {
			continue
		}
		if err := walkFn(b.Path, f); err != nil {
			return err
		}
	}
	return nil
}

// IsBundle sniffs file header to see if it is a zip archive.
func IsBundle(name string) (bool, error) {
	f, err := os.Open(name)
	if err != nil {
		return false, err
	}
	defer f.Close()

	head := make([]byte, 262)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return false, err
	}
	return filetype.Is(head[:n], "zip"), nil
}

// HasExt reports whether name has one of the extensions, case insensitive.
func HasExt(name string, exts []string) bool {
	ext := path.Ext(name)
	for _, e := range exts {
		if strings.EqualFold(ext, e) {
			return true
		}
	}
	return false
}

// isSafePath returns false for paths that could escape the extraction
// directory: absolute paths and those containing ".." components.
func isSafePath(name string) bool {
	if path.IsAbs(name) || strings.HasPrefix(name, "/") || strings.HasPrefix(name, `\`) {
		return false
	}
	for _, part := range strings.Split(name, "/") {
		if part == ".." {
			return false
		}
	}
	return true
}
