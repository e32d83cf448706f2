// Package epub reads the parts of an EPUB container that the import pipeline
// needs: manifest, spine, guide, NCX titles and package metadata, plus raw
// byte access to entries resolved relative to the package document.
//
// It is deliberately not a general EPUB library. Guide and manifest
// properties are optional (EPUB 2 archives omit both) and a missing TOC is
// not an error.
package epub

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
)

// ErrInvalidArchive indicates the file is not a zip archive, or no package
// document could be located inside it.
var ErrInvalidArchive = errors.New("epub: invalid archive")

// ErrFileNotFound indicates a requested entry is not in the archive.
var ErrFileNotFound = errors.New("epub: file not found in archive")

// ManifestItem is one <item> of the OPF manifest. Properties is empty for
// EPUB 2 archives.
type ManifestItem struct {
	ID         string
	Href       string
	MediaType  string
	Properties string
}

// GuideRef is one <reference> of the legacy OPF guide.
type GuideRef struct {
	Type string
	Href string
}

// Metadata is the subset of package metadata the importer uses.
type Metadata struct {
	Title       string
	Author      string
	Description string
}

// Archive is an opened EPUB. Not safe for concurrent use.
type Archive struct {
	zip      *zip.Reader
	closer   io.Closer
	opfDir   string
	manifest []ManifestItem
	spine    []ManifestItem
	guide    []GuideRef
	meta     Metadata
	coverID  string
	ncxHref  string
}

// Open opens the EPUB file at path. The caller must Close it.
func Open(p string) (*Archive, error) {
	zrc, err := zip.OpenReader(p)
	if err != nil {
		return nil, fmt.Errorf("epub: open %s: %w", p, ErrInvalidArchive)
	}

	a, err := initArchive(&zrc.Reader, zrc)
	if err != nil {
		_ = zrc.Close()
		return nil, err
	}
	return a, nil
}

// NewReader opens an EPUB from an io.ReaderAt with the given size.
func NewReader(r io.ReaderAt, size int64) (*Archive, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("epub: open zip: %w", ErrInvalidArchive)
	}
	return initArchive(zr, nil)
}

func initArchive(zr *zip.Reader, closer io.Closer) (*Archive, error) {
	a := &Archive{zip: zr, closer: closer}

	opfPath, err := locateOPF(zr)
	if err != nil {
		return nil, err
	}
	a.opfDir = path.Dir(opfPath)

	f := findFile(zr, opfPath)
	if f == nil {
		return nil, fmt.Errorf("epub: package document %s missing: %w", opfPath, ErrInvalidArchive)
	}
	data, err := readZipFile(f)
	if err != nil {
		return nil, fmt.Errorf("epub: read package document: %w", err)
	}

	if err := a.parsePackage(data); err != nil {
		return nil, err
	}
	return a, nil
}

// Close releases the underlying file when the archive was created via Open.
func (a *Archive) Close() error {
	if a.closer != nil {
		return a.closer.Close()
	}
	return nil
}

// Manifest returns all manifest items in package-document order.
func (a *Archive) Manifest() []ManifestItem { return a.manifest }

// Spine returns the spine-ordered document items.
func (a *Archive) Spine() []ManifestItem { return a.spine }

// Guide returns the guide references, empty for archives without a guide.
func (a *Archive) Guide() []GuideRef { return a.guide }

// Metadata returns the package title/creator/description.
func (a *Archive) Metadata() Metadata { return a.meta }

// CoverID returns the manifest id declared by <meta name="cover">, or "".
func (a *Archive) CoverID() string { return a.coverID }

// Read returns the bytes of the entry at href, resolved relative to the
// package document's directory.
func (a *Archive) Read(href string) ([]byte, error) {
	f := findFile(a.zip, a.ResolveHref(href))
	if f == nil {
		return nil, fmt.Errorf("epub: %s: %w", href, ErrFileNotFound)
	}
	return readZipFile(f)
}

// ResolveHref turns an OPF-relative href into a zip-internal path. Fragments
// are stripped; unsafe paths resolve to "".
func (a *Archive) ResolveHref(href string) string {
	if i := strings.IndexByte(href, '#'); i >= 0 {
		href = href[:i]
	}
	if a.opfDir == "." {
		cleaned := path.Clean(strings.TrimSpace(href))
		if !isSafePath(cleaned) {
			return ""
		}
		return cleaned
	}
	return resolveRelative(a.opfDir+"/x", href)
}

// TOCTitles returns a map from OPF-relative document href (fragment
// stripped) to its NCX navigation title. Empty when the archive has no NCX.
func (a *Archive) TOCTitles() map[string]string {
	if a.ncxHref == "" {
		return map[string]string{}
	}
	data, err := a.Read(a.ncxHref)
	if err != nil {
		return map[string]string{}
	}
	return parseNCXTitles(data, a.ncxHref)
}
