package pipeline

import (
	"net/url"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ResolveLocalPaths rewrites relative img[src] and a[href] values in an HTML
// fragment to absolute file:// URLs under baseDir.
//
// The browser loads the compiled document from a temporary file, so
// paths relative to the source markdown would otherwise not resolve.
// Paths escaping baseDir, absolute paths, anchors and URLs are left alone.
// An empty baseDir returns the fragment unchanged.
func ResolveLocalPaths(fragment, baseDir string) (string, error) {
	if baseDir == "" {
		return fragment, nil
	}
	base, err := filepath.Abs(baseDir)
	if err != nil {
		return "", err
	}

	body := &html.Node{Type: html.ElementNode, DataAtom: atom.Body, Data: "body"}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), body)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, n := range nodes {
		walkLocalRefs(n, base)
		if err := html.Render(&b, n); err != nil {
			return "", err
		}
	}
	return b.String(), nil
}

func walkLocalRefs(n *html.Node, base string) {
	if n.Type == html.ElementNode {
		switch n.DataAtom {
		case atom.Img:
			rewriteRef(n, "src", base)
		case atom.A:
			rewriteRef(n, "href", base)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walkLocalRefs(c, base)
	}
}

func rewriteRef(n *html.Node, key, base string) {
	for i, a := range n.Attr {
		if a.Key != key || !isLocalRelative(a.Val) {
			continue
		}
		abs := filepath.Join(base, a.Val)
		if !withinDir(abs, base) {
			continue
		}
		n.Attr[i].Val = (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String()
	}
}

func isLocalRelative(ref string) bool {
	if ref == "" || strings.HasPrefix(ref, "#") || strings.HasPrefix(ref, "//") {
		return false
	}
	if u, err := url.Parse(ref); err == nil && u.Scheme != "" {
		return false // http, https, file, data, mailto...
	}
	return !filepath.IsAbs(ref)
}

func withinDir(path, dir string) bool {
	rel, err := filepath.Rel(dir, filepath.Clean(path))
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
