package epub

import (
	"encoding/xml"
	"fmt"
	"strings"
)

type opfPackage struct {
	XMLName  xml.Name `xml:"package"`
	Metadata struct {
		Titles       []string `xml:"http://purl.org/dc/elements/1.1/ title"`
		Creators     []string `xml:"http://purl.org/dc/elements/1.1/ creator"`
		Descriptions []string `xml:"http://purl.org/dc/elements/1.1/ description"`
		Metas        []struct {
			Name    string `xml:"name,attr"`
			Content string `xml:"content,attr"`
		} `xml:"meta"`
	} `xml:"metadata"`
	Manifest struct {
		Items []struct {
			ID         string `xml:"id,attr"`
			Href       string `xml:"href,attr"`
			MediaType  string `xml:"media-type,attr"`
			Properties string `xml:"properties,attr"`
		} `xml:"item"`
	} `xml:"manifest"`
	Spine struct {
		Toc      string `xml:"toc,attr"`
		ItemRefs []struct {
			IDRef string `xml:"idref,attr"`
		} `xml:"itemref"`
	} `xml:"spine"`
	Guide struct {
		References []struct {
			Type string `xml:"type,attr"`
			Href string `xml:"href,attr"`
		} `xml:"reference"`
	} `xml:"guide"`
}

// parsePackage fills the archive's manifest, spine, guide and metadata from
// the OPF bytes.
func (a *Archive) parsePackage(data []byte) error {
	var pkg opfPackage
	if err := xml.Unmarshal(stripBOM(data), &pkg); err != nil {
		return fmt.Errorf("epub: parse package document: %w", ErrInvalidArchive)
	}

	byID := make(map[string]ManifestItem, len(pkg.Manifest.Items))
	for _, it := range pkg.Manifest.Items {
		mi := ManifestItem{
			ID:         it.ID,
			Href:       it.Href,
			MediaType:  it.MediaType,
			Properties: it.Properties,
		}
		a.manifest = append(a.manifest, mi)
		byID[it.ID] = mi
	}

	for _, ref := range pkg.Spine.ItemRefs {
		if mi, ok := byID[ref.IDRef]; ok {
			a.spine = append(a.spine, mi)
		}
	}

	for _, r := range pkg.Guide.References {
		if r.Href == "" {
			continue
		}
		a.guide = append(a.guide, GuideRef{Type: r.Type, Href: r.Href})
	}

	if len(pkg.Metadata.Titles) > 0 {
		a.meta.Title = strings.TrimSpace(pkg.Metadata.Titles[0])
	}
	if len(pkg.Metadata.Creators) > 0 {
		a.meta.Author = strings.TrimSpace(pkg.Metadata.Creators[0])
	}
	if len(pkg.Metadata.Descriptions) > 0 {
		a.meta.Description = strings.TrimSpace(pkg.Metadata.Descriptions[0])
	}

	for _, m := range pkg.Metadata.Metas {
		if strings.EqualFold(m.Name, "cover") && m.Content != "" {
			a.coverID = m.Content
			break
		}
	}

	if tocID := pkg.Spine.Toc; tocID != "" {
		if mi, ok := byID[tocID]; ok {
			a.ncxHref = mi.Href
		}
	}
	// EPUB 3 archives may carry an NCX without a spine toc attribute.
	if a.ncxHref == "" {
		for _, mi := range a.manifest {
			if strings.EqualFold(mi.MediaType, "application/x-dtbncx+xml") {
				a.ncxHref = mi.Href
				break
			}
		}
	}

	return nil
}
