package epub

import (
	"bytes"
	"errors"
	"testing"
)

func TestOpenParsesPackage(t *testing.T) {
	a := openArchive(t, testBookFiles())

	meta := a.Metadata()
	if meta.Title != "Dragon Masters" {
		t.Errorf("title = %q, want Dragon Masters", meta.Title)
	}
	if meta.Author != "Tracey West" {
		t.Errorf("author = %q, want Tracey West", meta.Author)
	}
	if meta.Description == "" {
		t.Error("description is empty")
	}

	if got := len(a.Manifest()); got != 6 {
		t.Fatalf("manifest size = %d, want 6", got)
	}
	if a.Manifest()[0].ID != "cover-img" {
		t.Errorf("manifest order not preserved, first = %s", a.Manifest()[0].ID)
	}

	spine := a.Spine()
	if len(spine) != 3 {
		t.Fatalf("spine size = %d, want 3", len(spine))
	}
	if spine[0].Href != "cover.xhtml" || spine[2].Href != "chapter2.xhtml" {
		t.Errorf("spine order wrong: %v", spine)
	}

	if a.CoverID() != "cover-img" {
		t.Errorf("cover id = %q, want cover-img", a.CoverID())
	}

	guide := a.Guide()
	if len(guide) != 1 || guide[0].Type != "cover" {
		t.Errorf("guide = %v, want one cover reference", guide)
	}
}

func TestReadResolvesAgainstPackageDir(t *testing.T) {
	a := openArchive(t, testBookFiles())

	data, err := a.Read("images/cover.jpg")
	if err != nil {
		t.Fatalf("read image: %v", err)
	}
	if string(data) != "jpegbytes" {
		t.Errorf("image content = %q", data)
	}

	// Fragments are stripped before lookup.
	if _, err := a.Read("chapter2.xhtml#start"); err != nil {
		t.Errorf("read with fragment: %v", err)
	}

	if _, err := a.Read("missing.xhtml"); !errors.Is(err, ErrFileNotFound) {
		t.Errorf("read missing = %v, want ErrFileNotFound", err)
	}
}

func TestResolveHrefRejectsEscapes(t *testing.T) {
	a := openArchive(t, testBookFiles())

	if got := a.ResolveHref("images/cover.jpg"); got != "OEBPS/images/cover.jpg" {
		t.Errorf("resolve = %q", got)
	}
	if got := a.ResolveHref("../../etc/passwd"); got != "" {
		t.Errorf("escape resolved to %q, want empty", got)
	}
}

func TestTOCTitles(t *testing.T) {
	a := openArchive(t, testBookFiles())

	titles := a.TOCTitles()
	if titles["chapter1.xhtml"] != "1. The Dragon Stone" {
		t.Errorf("chapter1 title = %q", titles["chapter1.xhtml"])
	}
	// Fragment in the NCX src does not leak into the key.
	if titles["chapter2.xhtml"] != "2. Into the Cave" {
		t.Errorf("chapter2 title = %q", titles["chapter2.xhtml"])
	}
}

func TestTOCTitlesResolvesSrcAgainstNCXDir(t *testing.T) {
	// The NCX lives in a subdirectory, so its content srcs climb back out.
	// Keys must still come out OPF-relative to match spine hrefs.
	files := map[string]string{
		"mimetype":               "application/epub+zip",
		"META-INF/container.xml": testContainerXML,
		"OEBPS/content.opf": `<?xml version="1.0"?>
<package xmlns="http://www.idpf.org/2007/opf" version="2.0">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/"><dc:title>Nested</dc:title></metadata>
  <manifest>
    <item id="ch1" href="text/ch1.xhtml" media-type="application/xhtml+xml"/>
    <item id="ncx" href="nav/toc.ncx" media-type="application/x-dtbncx+xml"/>
  </manifest>
  <spine toc="ncx"><itemref idref="ch1"/></spine>
</package>`,
		"OEBPS/nav/toc.ncx": `<?xml version="1.0"?>
<ncx xmlns="http://www.daisy.org/z3986/2005/ncx/" version="2005-1">
  <navMap>
    <navPoint id="n1" playOrder="1">
      <navLabel><text>1. First Light</text></navLabel>
      <content src="../text/ch1.xhtml"/>
    </navPoint>
  </navMap>
</ncx>`,
		"OEBPS/text/ch1.xhtml": `<html><body><p>text</p></body></html>`,
	}
	a := openArchive(t, files)

	titles := a.TOCTitles()
	if titles["text/ch1.xhtml"] != "1. First Light" {
		t.Errorf("titles = %v, want text/ch1.xhtml keyed OPF-relative", titles)
	}
	if _, raw := titles["../text/ch1.xhtml"]; raw {
		t.Error("raw NCX-relative src leaked into the title keys")
	}
}

func TestOpenRejectsNonZip(t *testing.T) {
	raw := []byte("this is not a zip archive")
	if _, err := NewReader(bytes.NewReader(raw), int64(len(raw))); !errors.Is(err, ErrInvalidArchive) {
		t.Errorf("err = %v, want ErrInvalidArchive", err)
	}
}

func TestOpenFallsBackToOPFScan(t *testing.T) {
	// No container.xml, but a package document exists.
	files := testBookFiles()
	delete(files, "META-INF/container.xml")

	a := openArchive(t, files)
	if a.Metadata().Title != "Dragon Masters" {
		t.Errorf("title via opf scan = %q", a.Metadata().Title)
	}
}

func TestOpenRejectsArchiveWithoutPackage(t *testing.T) {
	raw := buildZip(t, map[string]string{"readme.txt": "hello"})
	if _, err := NewReader(bytes.NewReader(raw), int64(len(raw))); !errors.Is(err, ErrInvalidArchive) {
		t.Errorf("err = %v, want ErrInvalidArchive", err)
	}
}

func TestGuideAndPropertiesOptional(t *testing.T) {
	files := map[string]string{
		"META-INF/container.xml": `<?xml version="1.0"?>
<container xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles><rootfile full-path="book.opf" media-type="application/oebps-package+xml"/></rootfiles>
</container>`,
		"book.opf": `<?xml version="1.0"?>
<package xmlns="http://www.idpf.org/2007/opf" version="2.0">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/"><dc:title>Bare</dc:title></metadata>
  <manifest><item id="c1" href="c1.xhtml" media-type="application/xhtml+xml"/></manifest>
  <spine><itemref idref="c1"/></spine>
</package>`,
		"c1.xhtml": `<html><body><p>text</p></body></html>`,
	}
	a := openArchive(t, files)

	if len(a.Guide()) != 0 {
		t.Errorf("guide = %v, want empty", a.Guide())
	}
	if a.CoverID() != "" {
		t.Errorf("cover id = %q, want empty", a.CoverID())
	}
	if len(a.TOCTitles()) != 0 {
		t.Errorf("toc titles = %v, want empty", a.TOCTitles())
	}
	// OPF at the archive root resolves hrefs without a directory prefix.
	if _, err := a.Read("c1.xhtml"); err != nil {
		t.Errorf("read root-relative: %v", err)
	}
}

func TestIsSafePath(t *testing.T) {
	cases := []struct {
		path string
		want bool
	}{
		{"OEBPS/ch1.xhtml", true},
		{"ch1.xhtml", true},
		{"../outside", false},
		{"/absolute", false},
		{"a/../../b", false},
	}
	for _, tc := range cases {
		if got := isSafePath(tc.path); got != tc.want {
			t.Errorf("isSafePath(%q) = %v, want %v", tc.path, got, tc.want)
		}
	}
}
