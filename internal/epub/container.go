package epub

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"strings"
)

const containerPath = "META-INF/container.xml"

type containerXML struct {
	XMLName   xml.Name `xml:"container"`
	RootFiles []struct {
		FullPath  string `xml:"full-path,attr"`
		MediaType string `xml:"media-type,attr"`
	} `xml:"rootfiles>rootfile"`
}

// locateOPF finds the package document path. It reads
// META-INF/container.xml; if that is missing it falls back to scanning for
// the first .opf entry.
func locateOPF(zr *zip.Reader) (string, error) {
	if f := findFile(zr, containerPath); f != nil {
		data, err := readZipFile(f)
		if err != nil {
			return "", fmt.Errorf("epub: read container.xml: %w", err)
		}

		var c containerXML
		if err := xml.Unmarshal(stripBOM(data), &c); err != nil {
			return "", fmt.Errorf("epub: parse container.xml: %w", ErrInvalidArchive)
		}

		for _, rf := range c.RootFiles {
			fp := strings.TrimSpace(rf.FullPath)
			if fp == "" {
				continue
			}
			if strings.EqualFold(strings.TrimSpace(rf.MediaType), "application/oebps-package+xml") {
				return fp, nil
			}
		}
		// Accept the first non-empty rootfile regardless of media type.
		for _, rf := range c.RootFiles {
			if fp := strings.TrimSpace(rf.FullPath); fp != "" {
				return fp, nil
			}
		}
		return "", fmt.Errorf("epub: container.xml has no rootfile: %w", ErrInvalidArchive)
	}

	for _, f := range zr.File {
		if strings.HasSuffix(strings.ToLower(f.Name), ".opf") {
			return f.Name, nil
		}
	}
	return "", fmt.Errorf("epub: no package document found: %w", ErrInvalidArchive)
}
