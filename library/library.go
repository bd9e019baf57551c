// Package library discovers books on disk. Content files are soft loaded so
// listings have titles and page lists without decoding any images.
package library

import (
	"archive/zip"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/maruel/natural"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"lectern/archive"
	"lectern/book"
	"lectern/config"
)

// ErrNotFound is returned when no book matches the request.
var ErrNotFound = errors.New("book not found")

// maxContentSize limits content files read from bundles.
var maxContentSize uint64 = 4 << 20

// Entry is a soft loaded book together with the means to load it fully.
type Entry struct {
	Book   *book.Book
	Source book.Source
	// Bundle is path to the zip archive entry came from, empty for plain
	// content files.
	Bundle string
}

func (e *Entry) Title() string {
	return e.Book.Title
}

// Load reads entry content again using requested mode.
func (e *Entry) Load(mode book.LoadMode, cfg *config.ContentConfig, log *zap.Logger) *book.Book {
	return book.Load(e.Source, mode, cfg, log)
}

// Library is the list of available books sorted by title.
type Library struct {
	entries []*Entry
	bundles []*archive.Bundle
	skipped error
	log     *zap.Logger
}

// Scan walks books directory. Unreadable directory is an error, problems with
// individual files are collected and reported by Skipped.
func Scan(cfg *config.LibraryConfig, content *config.ContentConfig, log *zap.Logger) (*Library, error) {
	l := &Library{log: log.Named("library")}

	root := cfg.BooksDir
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("unable to access books directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("books directory %q is not a directory", root)
	}

	books, resources := os.DirFS(root), os.DirFS(cfg.ResourceRoot())
	err = filepath.WalkDir(root, func(name string, d fs.DirEntry, err error) error {
		if err != nil {
			l.skip(name, err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		if archive.HasExt(name, cfg.Extensions) {
			rel, err := filepath.Rel(root, name)
			if err != nil {
				l.skip(name, err)
				return nil
			}
			l.add(book.Source{FS: books, Name: filepath.ToSlash(rel), Resources: resources}, "", content)
			return nil
		}

		if !cfg.Bundles {
			return nil
		}
		if ok, err := archive.IsBundle(name); err != nil {
			l.skip(name, err)
		} else if ok {
			l.addBundle(name, cfg, content)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("unable to scan books directory: %w", err)
	}

	l.hideTests(cfg.ShowTest)
	slices.SortStableFunc(l.entries, func(a, b *Entry) int {
		switch {
		case natural.Less(a.Title(), b.Title()):
			return -1
		case natural.Less(b.Title(), a.Title()):
			return 1
		}
		return strings.Compare(a.Source.Name, b.Source.Name)
	})

	l.log.Debug("Library scanned", zap.String("dir", root), zap.Int("books", len(l.entries)), zap.Int("bundles", len(l.bundles)))
	return l, nil
}

func (l *Library) skip(name string, err error) {
	l.log.Warn("Skipping library item", zap.String("path", name), zap.Error(err))
	l.skipped = multierr.Append(l.skipped, fmt.Errorf("%s: %w", name, err))
}

func (l *Library) add(src book.Source, bundle string, content *config.ContentConfig) {
	b := book.Load(src, book.Soft, content, l.log)
	if !b.Valid() {
		l.log.Debug("Ignoring invalid book", zap.String("path", src.Name), zap.String("bundle", bundle), zap.Error(b.Err()))
		return
	}
	l.entries = append(l.entries, &Entry{Book: b, Source: src, Bundle: bundle})
}

func (l *Library) addBundle(name string, cfg *config.LibraryConfig, content *config.ContentConfig) {
	b, err := archive.Open(name)
	if err != nil {
		l.skip(name, err)
		return
	}

	before := len(l.entries)
	err = b.Walk(func(n string) bool { return archive.HasExt(n, cfg.Extensions) }, func(bundle string, f *zip.File) error {
		if f.UncompressedSize64 > maxContentSize {
			return fmt.Errorf("content file %q is too large (%d bytes)", f.Name, f.UncompressedSize64)
		}
		l.add(book.Source{FS: b, Name: f.Name, Resources: b}, bundle, content)
		return nil
	})
	if err != nil {
		l.skip(name, err)
	}
	if len(l.entries) == before {
		// nothing to keep it open for
		b.Close()
		return
	}
	l.bundles = append(l.bundles, b)
}

func (l *Library) hideTests(show bool) {
	if show {
		return
	}
	l.entries = slices.DeleteFunc(l.entries, func(e *Entry) bool { return e.Book.Test() })
}

// Entries returns books sorted by title.
func (l *Library) Entries() []*Entry {
	return l.entries
}

// Skipped returns combined errors for files which could not be examined.
func (l *Library) Skipped() error {
	return l.skipped
}

// Find returns first book with matching title. Exact match is preferred,
// case insensitive match is accepted otherwise.
func (l *Library) Find(title string) (*Entry, error) {
	for _, e := range l.entries {
		if e.Title() == title {
			return e, nil
		}
	}
	for _, e := range l.entries {
		if strings.EqualFold(e.Title(), title) {
			return e, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrNotFound, title)
}

// Cover decodes front cover of the entry, nil when book has none.
func (l *Library) Cover(e *Entry, content *config.ContentConfig) *book.Image {
	if e.Book.Front == "" {
		return nil
	}
	if content == nil {
		content = &config.ContentConfig{}
	}
	return book.LoadImage(e.Source.ResourceFS(), e.Book.Front, content, l.log)
}

// Close releases opened bundles.
func (l *Library) Close() error {
	var err error
	for _, b := range l.bundles {
		err = multierr.Append(err, b.Close())
	}
	l.bundles = nil
	return err
}
