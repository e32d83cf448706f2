package epub

import (
	"encoding/xml"
	"strings"
)

type ncxDoc struct {
	XMLName xml.Name    `xml:"ncx"`
	NavMap  ncxNavPoint `xml:"navMap"`
}

type ncxNavPoint struct {
	Labels []struct {
		Text string `xml:"text"`
	} `xml:"navLabel"`
	Content struct {
		Src string `xml:"src,attr"`
	} `xml:"content"`
	Children []ncxNavPoint `xml:"navPoint"`
}

// parseNCXTitles flattens the NCX navMap into href -> title. Content srcs are
// relative to the NCX document, so each is resolved against ncxHref (itself
// OPF-relative) and the keys come out OPF-relative. When several navPoints
// target the same document (fragments), the first one wins.
func parseNCXTitles(data []byte, ncxHref string) map[string]string {
	titles := make(map[string]string)

	var doc ncxDoc
	if err := xml.Unmarshal(stripBOM(data), &doc); err != nil {
		return titles
	}

	var walk func(pts []ncxNavPoint)
	walk = func(pts []ncxNavPoint) {
		for _, p := range pts {
			src := strings.TrimSpace(p.Content.Src)
			if i := strings.IndexByte(src, '#'); i >= 0 {
				src = src[:i]
			}
			href := resolveRelative(ncxHref, src)
			var label string
			for _, l := range p.Labels {
				if t := strings.TrimSpace(l.Text); t != "" {
					label = t
					break
				}
			}
			if src != "" && href != "" && label != "" {
				if _, seen := titles[href]; !seen {
					titles[href] = label
				}
			}
			walk(p.Children)
		}
	}
	walk(doc.NavMap.Children)

	return titles
}
