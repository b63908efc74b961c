package scraper

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/octobees/leadforge/internal/entity"
)

var (
	cardClassHints  = []string{"team", "member", "staff", "person", "people", "bio", "profile", "leadership", "founder", "executive", "employee", "director"}
	titleClassHints = []string{"title", "role", "position", "job", "designation"}
)

const maxTitleLength = 100

var cardContainers = map[atom.Atom]bool{
	atom.Div: true, atom.Li: true, atom.Article: true, atom.Section: true,
	atom.Figure: true, atom.Td: true, atom.Aside: true,
}

func isCard(n *html.Node) bool {
	if n.Type != html.ElementNode || !cardContainers[n.DataAtom] {
		return false
	}
	class := classOf(n)
	if class == "" {
		return false
	}
	for _, hint := range cardClassHints {
		if strings.Contains(class, hint) {
			return true
		}
	}
	return false
}

// extractCards finds people laid out in team/bio/leadership blocks. Nested
// blocks resolve to the innermost one that yields a person.
func extractCards(doc *html.Node) []entity.ContactPerson {
	return cardsUnder(doc)
}

func cardsUnder(n *html.Node) []entity.ContactPerson {
	var out []entity.ContactPerson
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		if c.DataAtom == atom.Script || c.DataAtom == atom.Style {
			continue
		}
		inner := cardsUnder(c)
		if len(inner) > 0 {
			out = append(out, inner...)
			continue
		}
		if isCard(c) {
			if p, ok := personFromCard(c); ok {
				out = append(out, p)
			}
		}
	}
	return out
}

func personFromCard(card *html.Node) (entity.ContactPerson, bool) {
	candidates := []*html.Node{
		findFirst(card, func(n *html.Node) bool {
			return strings.Contains(classOf(n), "name")
		}),
		findFirst(card, func(n *html.Node) bool {
			switch n.DataAtom {
			case atom.H2, atom.H3, atom.H4, atom.H5, atom.Strong:
				return true
			}
			return false
		}),
	}

	var (
		nameNode *html.Node
		name     string
	)
	for _, c := range candidates {
		if c == nil {
			continue
		}
		if text := cleanText(nodeText(c)); looksLikeName(text) {
			nameNode, name = c, text
			break
		}
	}
	if nameNode == nil {
		return entity.ContactPerson{}, false
	}

	return entity.ContactPerson{
		Name:       name,
		Title:      cardTitle(card, nameNode, name),
		Email:      cardEmail(card),
		Confidence: confidenceCard,
		Source:     sourceWebsite,
	}, true
}

func cardTitle(card, nameNode *html.Node, name string) string {
	titleNode := findFirst(card, func(n *html.Node) bool {
		if n == nameNode {
			return false
		}
		class := classOf(n)
		for _, hint := range titleClassHints {
			if strings.Contains(class, hint) {
				return true
			}
		}
		return false
	})
	if titleNode == nil {
		titleNode = nextElementSibling(nameNode)
	}
	if titleNode == nil {
		return ""
	}
	title := cleanText(nodeText(titleNode))
	if title == name || len(title) > maxTitleLength || findEmail(title) != "" {
		return ""
	}
	return title
}

func cardEmail(card *html.Node) string {
	links := findAll(card, func(n *html.Node) bool { return n.DataAtom == atom.A })
	for _, a := range links {
		if email := mailtoAddress(attr(a, "href")); email != "" {
			return email
		}
	}
	return findEmail(nodeText(card))
}
