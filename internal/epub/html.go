package epub

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var blockTags = map[atom.Atom]bool{
	atom.P: true, atom.Br: true, atom.Div: true,
	atom.H1: true, atom.H2: true, atom.H3: true,
	atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Li: true, atom.Tr: true, atom.Blockquote: true, atom.Hr: true,
}

var skipTags = map[atom.Atom]bool{
	atom.Script: true,
	atom.Style:  true,
}

var headingTags = map[atom.Atom]bool{
	atom.H1: true, atom.H2: true, atom.H3: true,
	atom.H4: true, atom.H5: true, atom.H6: true,
}

// ExtractText returns the plain text of an (X)HTML document. Block elements
// separate text with a single space and whitespace runs are collapsed, so
// the result is one normalized line suitable for keyword matching and word
// counting.
func ExtractText(htmlData []byte) string {
	tokenizer := html.NewTokenizer(bytes.NewReader(htmlData))

	var buf strings.Builder
	skipDepth := 0

	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			// EOF and malformed markup end extraction the same way: with
			// whatever text was collected so far.
			return strings.Join(strings.Fields(buf.String()), " ")

		case html.StartTagToken:
			tn, _ := tokenizer.TagName()
			a := atom.Lookup(tn)
			if skipTags[a] {
				skipDepth++
				continue
			}
			if skipDepth == 0 && blockTags[a] {
				buf.WriteByte(' ')
			}

		case html.SelfClosingTagToken:
			tn, _ := tokenizer.TagName()
			if skipDepth == 0 && blockTags[atom.Lookup(tn)] {
				buf.WriteByte(' ')
			}

		case html.EndTagToken:
			tn, _ := tokenizer.TagName()
			a := atom.Lookup(tn)
			if skipTags[a] && skipDepth > 0 {
				skipDepth--
			}
			if skipDepth == 0 && blockTags[a] {
				buf.WriteByte(' ')
			}

		case html.TextToken:
			if skipDepth == 0 {
				buf.Write(tokenizer.Text())
				buf.WriteByte(' ')
			}
		}
	}
}

// FirstHeading returns the text of the first h1-h6 element, or the <title>
// text when no heading exists. Empty string when neither is present.
func FirstHeading(htmlData []byte) string {
	doc, err := html.Parse(bytes.NewReader(htmlData))
	if err != nil {
		return ""
	}

	var title string
	var heading string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if heading != "" {
			return
		}
		if n.Type == html.ElementNode {
			if headingTags[n.DataAtom] {
				if t := strings.TrimSpace(nodeText(n)); t != "" {
					heading = t
					return
				}
			}
			if n.DataAtom == atom.Title && title == "" {
				title = strings.TrimSpace(nodeText(n))
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if heading != "" {
		return heading
	}
	return title
}

// HasImage reports whether the document contains an <img> or SVG <image>.
func HasImage(htmlData []byte) bool {
	return len(ImageSources(htmlData)) > 0
}

// ImageSources returns every <img src> and SVG <image href/xlink:href>
// value, in document order.
func ImageSources(htmlData []byte) []string {
	var srcs []string
	tokenizer := html.NewTokenizer(bytes.NewReader(htmlData))
	for {
		tt := tokenizer.Next()
		if tt == html.ErrorToken {
			return srcs
		}
		if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
			continue
		}
		tn, hasAttr := tokenizer.TagName()
		a := atom.Lookup(tn)
		if !hasAttr || (a != atom.Img && a != atom.Image) {
			continue
		}
		for {
			key, val, more := tokenizer.TagAttr()
			k := string(key)
			ok := (a == atom.Img && k == "src") ||
				(a == atom.Image && (k == "href" || k == "xlink:href"))
			if ok && len(val) > 0 {
				srcs = append(srcs, string(val))
			}
			if !more {
				break
			}
		}
	}
}

// BodyHTML returns the inner HTML of <body> with <script>/<style> removed.
func BodyHTML(htmlData []byte) string {
	doc, err := html.Parse(bytes.NewReader(htmlData))
	if err != nil {
		return ""
	}
	body := findElement(doc, atom.Body)
	if body == nil {
		return ""
	}

	dropNodes(body, func(n *html.Node) bool {
		return n.Type == html.ElementNode && (n.DataAtom == atom.Script || n.DataAtom == atom.Style)
	})

	var buf bytes.Buffer
	for c := body.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return ""
		}
	}
	return strings.TrimSpace(buf.String())
}

// RewriteImageRefs parses htmlData and replaces every <img src> and SVG
// <image href/xlink:href> value for which replace returns a new value.
// Replacing with the same map twice is a no-op: callers are expected to map
// already-rewritten values to themselves or return ok=false for them.
func RewriteImageRefs(htmlData []byte, replace func(src string) (string, bool)) []byte {
	doc, err := html.Parse(bytes.NewReader(htmlData))
	if err != nil {
		return htmlData
	}

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Img:
				replaceAttr(n, "src", replace)
			case atom.Image:
				replaceAttr(n, "href", replace)
				replaceAttr(n, "xlink:href", replace)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	var buf bytes.Buffer
	if err := html.Render(&buf, doc); err != nil {
		return htmlData
	}
	return buf.Bytes()
}

func replaceAttr(n *html.Node, key string, replace func(string) (string, bool)) {
	for i, attr := range n.Attr {
		match := attr.Key == key ||
			(attr.Namespace != "" && attr.Namespace+":"+attr.Key == key)
		if !match || attr.Val == "" {
			continue
		}
		if newVal, ok := replace(attr.Val); ok {
			n.Attr[i].Val = newVal
		}
	}
}

func findElement(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, a); found != nil {
			return found
		}
	}
	return nil
}

func dropNodes(n *html.Node, drop func(*html.Node) bool) {
	var next *html.Node
	for c := n.FirstChild; c != nil; c = next {
		next = c.NextSibling
		if drop(c) {
			n.RemoveChild(c)
			continue
		}
		dropNodes(c, drop)
	}
}

func nodeText(n *html.Node) string {
	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(buf.String()), " ")
}
