package scraper

import (
	stdhtml "html"
	"regexp"
	"strings"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var (
	strictPolicy = bluemonday.StrictPolicy()
	emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	capitalWord  = regexp.MustCompile(`^(?:[A-Z][a-z]+|[A-Z]'[A-Z][a-z]+|Mc[A-Z][a-z]+)(?:-[A-Z][a-z]+)?$`)
)

var nameStopwords = map[string]struct{}{
	"about": {}, "our": {}, "team": {}, "meet": {}, "contact": {}, "us": {}, "the": {},
	"get": {}, "in": {}, "touch": {}, "email": {}, "phone": {}, "call": {}, "read": {},
	"more": {}, "view": {}, "profile": {}, "leadership": {}, "staff": {}, "founders": {},
	"office": {}, "head": {}, "privacy": {}, "policy": {}, "terms": {}, "home": {},
	"services": {}, "news": {}, "careers": {}, "london": {}, "street": {}, "road": {},
	"limited": {}, "ltd": {}, "company": {}, "group": {}, "support": {}, "sales": {},
	"follow": {}, "send": {}, "message": {}, "opening": {}, "hours": {}, "monday": {},
	"friday": {}, "saturday": {}, "sunday": {}, "find": {}, "learn": {}, "all": {},
}

// cleanText strips any markup, decodes entities and collapses whitespace.
func cleanText(s string) string {
	s = stdhtml.UnescapeString(strictPolicy.Sanitize(s))
	return strings.Join(strings.Fields(s), " ")
}

// nodeText returns the visible text under n, skipping script and style.
func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.DataAtom == atom.Script || n.DataAtom == atom.Style || n.DataAtom == atom.Noscript) {
			return
		}
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(b.String()), " ")
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func classOf(n *html.Node) string {
	return strings.ToLower(attr(n, "class"))
}

// findAll returns every element under n accepted by match, in document order.
func findAll(n *html.Node, match func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && match(n) {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

func findFirst(n *html.Node, match func(*html.Node) bool) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && match(c) {
			return c
		}
		if found := findFirst(c, match); found != nil {
			return found
		}
	}
	return nil
}

func nextElementSibling(n *html.Node) *html.Node {
	for s := n.NextSibling; s != nil; s = s.NextSibling {
		if s.Type == html.ElementNode {
			return s
		}
	}
	return nil
}

// looksLikeName accepts two to four capitalized words that are not common
// navigation or heading vocabulary.
func looksLikeName(s string) bool {
	words := strings.Fields(s)
	if len(words) < 2 || len(words) > 4 {
		return false
	}
	for _, w := range words {
		w = strings.TrimRightFunc(w, func(r rune) bool { return unicode.IsPunct(r) && r != '\'' })
		if !capitalWord.MatchString(w) && !isInitial(w) {
			return false
		}
		if _, stop := nameStopwords[strings.ToLower(w)]; stop {
			return false
		}
	}
	return true
}

func isInitial(w string) bool {
	return len(w) == 1 && w[0] >= 'A' && w[0] <= 'Z'
}

// findEmail returns the first plausible email address in s.
func findEmail(s string) string {
	for _, m := range emailPattern.FindAllString(s, -1) {
		lower := strings.ToLower(m)
		if strings.HasSuffix(lower, ".png") || strings.HasSuffix(lower, ".jpg") ||
			strings.HasSuffix(lower, ".gif") || strings.HasSuffix(lower, ".svg") ||
			strings.HasSuffix(lower, ".webp") {
			continue
		}
		return m
	}
	return ""
}

func mailtoAddress(href string) string {
	if !strings.HasPrefix(strings.ToLower(href), "mailto:") {
		return ""
	}
	addr := href[len("mailto:"):]
	if i := strings.IndexByte(addr, '?'); i >= 0 {
		addr = addr[:i]
	}
	return findEmail(addr)
}
