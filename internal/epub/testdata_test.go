package epub

import (
	"archive/zip"
	"bytes"
	"io"
	"testing"
)

// buildZip assembles an in-memory zip from a name -> content map, writing
// mimetype first when present.
func buildZip(t *testing.T, files map[string]string) []byte {
	t.Helper()

	buf := &bytes.Buffer{}
	zw := zip.NewWriter(buf)

	if mt, ok := files["mimetype"]; ok {
		fw, err := zw.Create("mimetype")
		if err != nil {
			t.Fatalf("buildZip: create mimetype: %v", err)
		}
		if _, err := io.WriteString(fw, mt); err != nil {
			t.Fatalf("buildZip: write mimetype: %v", err)
		}
	}
	for name, content := range files {
		if name == "mimetype" {
			continue
		}
		fw, err := zw.Create(name)
		if err != nil {
			t.Fatalf("buildZip: create %s: %v", name, err)
		}
		if _, err := io.WriteString(fw, content); err != nil {
			t.Fatalf("buildZip: write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("buildZip: close: %v", err)
	}
	return buf.Bytes()
}

func openArchive(t *testing.T, files map[string]string) *Archive {
	t.Helper()
	raw := buildZip(t, files)
	a, err := NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	t.Cleanup(func() { _ = a.Close() })
	return a
}

const testContainerXML = `<?xml version="1.0" encoding="UTF-8"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>`

// testBookFiles is a small two-chapter EPUB 2 archive with a declared cover,
// a guide, and an NCX.
func testBookFiles() map[string]string {
	return map[string]string{
		"mimetype":               "application/epub+zip",
		"META-INF/container.xml": testContainerXML,
		"OEBPS/content.opf": `<?xml version="1.0" encoding="UTF-8"?>
<package version="2.0" xmlns="http://www.idpf.org/2007/opf" unique-identifier="bookid">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/">
    <dc:title>Dragon Masters</dc:title>
    <dc:creator>Tracey West</dc:creator>
    <dc:description>A boy discovers he is a dragon master.</dc:description>
    <meta name="cover" content="cover-img"/>
  </metadata>
  <manifest>
    <item id="cover-img" href="images/cover.jpg" media-type="image/jpeg"/>
    <item id="pic1" href="images/pic1.png" media-type="image/png"/>
    <item id="coverpage" href="cover.xhtml" media-type="application/xhtml+xml"/>
    <item id="ch1" href="chapter1.xhtml" media-type="application/xhtml+xml"/>
    <item id="ch2" href="chapter2.xhtml" media-type="application/xhtml+xml"/>
    <item id="ncx" href="toc.ncx" media-type="application/x-dtbncx+xml"/>
  </manifest>
  <spine toc="ncx">
    <itemref idref="coverpage"/>
    <itemref idref="ch1"/>
    <itemref idref="ch2"/>
  </spine>
  <guide>
    <reference type="cover" href="cover.xhtml"/>
  </guide>
</package>`,
		"OEBPS/toc.ncx": `<?xml version="1.0" encoding="UTF-8"?>
<ncx xmlns="http://www.daisy.org/z3986/2005/ncx/" version="2005-1">
  <navMap>
    <navPoint id="n1" playOrder="1">
      <navLabel><text>1. The Dragon Stone</text></navLabel>
      <content src="chapter1.xhtml"/>
    </navPoint>
    <navPoint id="n2" playOrder="2">
      <navLabel><text>2. Into the Cave</text></navLabel>
      <content src="chapter2.xhtml#start"/>
    </navPoint>
  </navMap>
</ncx>`,
		"OEBPS/cover.xhtml": `<html><body><img src="images/cover.jpg"/></body></html>`,
		"OEBPS/chapter1.xhtml": `<html><head><title>Chapter One</title></head>
<body><h1>The Dragon Stone</h1><p>Drake lived on a farm with his family.</p></body></html>`,
		"OEBPS/chapter2.xhtml": `<html><body><h1>Into the Cave</h1><p>The cave was dark and deep.</p></body></html>`,
		"OEBPS/images/cover.jpg": "jpegbytes",
		"OEBPS/images/pic1.png":  "pngbytes",
	}
}
