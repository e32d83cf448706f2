package ingest

import (
	"log"
	"strings"

	"readinghub/internal/epub"
)

// hasCoverName reports whether an image's file name follows a cover naming
// convention. Only the basename is checked, and "cover" must start the name
// or sit after a separator, so "discover.jpg" does not qualify.
func hasCoverName(p string) bool {
	base := strings.ToLower(baseName(p))
	if strings.HasPrefix(base, "cover.") || strings.HasPrefix(base, "cover-image") || strings.HasPrefix(base, "coverimage") {
		return true
	}
	for _, sep := range []string{"_cover.", "-cover.", "_cover-image", "-cover-image", "_coverimage", "-coverimage"} {
		if strings.Contains(base, sep) {
			return true
		}
	}
	return false
}

// ResolveCover picks the canonical cover URL for a book from its extracted
// images. It walks a priority cascade; within each step images are checked
// in manifest order, so the result is deterministic for a given archive.
// Returns "" when the archive has no images at all.
func ResolveCover(arc *epub.Archive, images []*ManifestImage) string {
	if len(images) == 0 {
		return ""
	}

	// 1. Explicit cover id from <meta name="cover">, matched by manifest
	// id or by the path it resolves to.
	if coverID := arc.CoverID(); coverID != "" {
		coverPath := arc.ResolveHref(coverID)
		for _, img := range images {
			if img.ManifestID == coverID || img.Path == coverPath {
				return img.URL
			}
		}
	}

	// 2. EPUB 3 manifest properties.
	for _, img := range images {
		if strings.Contains(img.Properties, "cover-image") {
			return img.URL
		}
	}

	// 3. Image referenced from the guide's cover document.
	if url := coverFromGuide(arc, images); url != "" {
		return url
	}

	// 4. Filename conventions.
	for _, img := range images {
		if hasCoverName(img.Path) {
			return img.URL
		}
	}

	// 5. Shallow paths. Known weakness: in archives with many top-level
	// illustrations and no cover metadata this picks whichever comes first
	// in the manifest.
	for _, img := range images {
		if strings.Count(img.Path, "/") <= 1 {
			return img.URL
		}
	}

	// 6. First image in manifest order.
	return images[0].URL
}

func coverFromGuide(arc *epub.Archive, images []*ManifestImage) string {
	for _, ref := range arc.Guide() {
		if !strings.EqualFold(ref.Type, "cover") {
			continue
		}
		data, err := arc.Read(ref.Href)
		if err != nil {
			log.Printf("[ingest] guide cover document %s unreadable: %v", ref.Href, err)
			continue
		}
		for _, src := range epub.ImageSources(data) {
			resolved := arc.ResolveHref(joinDocRelative(ref.Href, src))
			for _, img := range images {
				if img.Path == resolved {
					return img.URL
				}
			}
			if img := findByAlias(images, src); img != nil {
				return img.URL
			}
		}
	}
	return ""
}

// joinDocRelative interprets src relative to the directory of the document
// that referenced it, yielding an OPF-relative href.
func joinDocRelative(docHref, src string) string {
	if i := strings.LastIndex(docHref, "/"); i >= 0 {
		return docHref[:i+1] + src
	}
	return src
}

func baseName(p string) string {
	if i := strings.LastIndex(p, "/"); i >= 0 {
		return p[i+1:]
	}
	return p
}
