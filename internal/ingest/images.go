package ingest

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"strings"

	"readinghub/internal/epub"
)

// ImageStore persists extracted images under a per-book namespace.
// Put returns the public URL of the stored object. DeleteAll removes every
// object belonging to a book and reports success; it never panics or errors,
// cleanup is always best-effort.
type ImageStore interface {
	Put(data []byte, objectName string) (string, error)
	DeleteAll(bookID string) bool
}

// ExtractImages uploads every image in the archive's manifest through the
// store and records the path aliases each one may be referenced by from
// document markup. Images are processed in manifest order. On a store
// failure the images uploaded so far are returned alongside the error so
// the caller can clean them up.
func ExtractImages(arc *epub.Archive, bookID string, store ImageStore) ([]*ManifestImage, error) {
	var images []*ManifestImage
	for _, item := range arc.Manifest() {
		if !strings.HasPrefix(item.MediaType, "image/") {
			continue
		}
		data, err := arc.Read(item.Href)
		if err != nil {
			log.Printf("[ingest] skipping unreadable image %s: %v", item.Href, err)
			continue
		}
		objectName := fmt.Sprintf("%s/%s_%s", bookID, randomToken(), baseName(item.Href))
		url, err := store.Put(data, objectName)
		if err != nil {
			return images, fmt.Errorf("store image %s: %w", item.Href, err)
		}
		images = append(images, &ManifestImage{
			ManifestID: item.ID,
			Href:       item.Href,
			Path:       arc.ResolveHref(item.Href),
			Properties: item.Properties,
			ObjectName: objectName,
			URL:        url,
			Aliases:    pathAliases(item.Href),
		})
	}
	return images, nil
}

// pathAliases lists the spellings under which source documents may reference
// an image: the raw manifest href, its basename, and the ./ and ../ relative
// variants when the href has a directory component.
func pathAliases(href string) []string {
	aliases := []string{href}
	if base := baseName(href); base != href {
		aliases = append(aliases, base)
	}
	if strings.Contains(href, "/") {
		aliases = append(aliases, "../"+href, "./"+href)
	}
	return aliases
}

// findByAlias resolves a document's image reference to an extracted image.
// Matching tiers, strongest first: exact alias, suffix overlap with an
// alias, basename equality. Within a tier the first image wins.
func findByAlias(images []*ManifestImage, src string) *ManifestImage {
	for _, img := range images {
		for _, alias := range img.Aliases {
			if src == alias {
				return img
			}
		}
	}
	for _, img := range images {
		for _, alias := range img.Aliases {
			if strings.HasSuffix(src, alias) || strings.HasSuffix(alias, src) {
				return img
			}
		}
	}
	base := baseName(src)
	for _, img := range images {
		for _, alias := range img.Aliases {
			if baseName(alias) == base {
				return img
			}
		}
	}
	return nil
}

// RewriteDocImages rewrites <img src> and SVG <image> references in a
// document to the stored URLs. References already pointing at a stored URL
// are left alone, so rewriting is idempotent.
func RewriteDocImages(htmlData []byte, images []*ManifestImage) []byte {
	if len(images) == 0 {
		return htmlData
	}
	return epub.RewriteImageRefs(htmlData, func(src string) (string, bool) {
		for _, img := range images {
			if src == img.URL {
				return "", false
			}
		}
		if img := findByAlias(images, src); img != nil {
			return img.URL, true
		}
		return "", false
	})
}

func randomToken() string {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing means the platform is broken; fall back to
		// a fixed token rather than abort an import over a name prefix.
		return "00000000"
	}
	return hex.EncodeToString(buf)
}
