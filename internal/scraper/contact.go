package scraper

import (
	"regexp"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/octobees/leadforge/internal/entity"
)

const contactPath = "/contact"

var contactNamePattern = regexp.MustCompile(`\b([A-Z][a-z]+) [A-Z][a-z]+\b`)

var markdownConverter = converter.NewConverter(
	converter.WithPlugins(
		base.NewBasePlugin(),
		commonmark.NewCommonmarkPlugin(),
	),
)

// extractContactBlocks pairs a "Firstname Lastname" with an email address
// found in the same block of a contact page.
func extractContactBlocks(rawHTML string) []entity.ContactPerson {
	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return nil
	}
	removeElements(doc, atom.Script, atom.Style, atom.Noscript, atom.Head)

	md, err := markdownConverter.ConvertNode(doc)
	if err != nil {
		zap.L().Debug("scraper: contact page conversion failed", zap.Error(err))
		return nil
	}

	var people []entity.ContactPerson
	for _, block := range strings.Split(strings.ReplaceAll(string(md), `\`, ""), "\n\n") {
		units := []string{block}
		if len(emailPattern.FindAllString(block, 2)) > 1 {
			units = strings.Split(block, "\n")
		}
		for _, unit := range units {
			email := findEmail(unit)
			if email == "" {
				continue
			}
			name := contactName(unit)
			if name == "" {
				continue
			}
			people = append(people, entity.ContactPerson{
				Name:       name,
				Email:      email,
				Confidence: confidenceContact,
				Source:     sourceWebsite,
			})
		}
	}
	return people
}

func contactName(text string) string {
	for start := 0; start < len(text); {
		loc := contactNamePattern.FindStringSubmatchIndex(text[start:])
		if loc == nil {
			return ""
		}
		candidate := text[start+loc[0] : start+loc[1]]
		if looksLikeName(candidate) {
			return candidate
		}
		start += loc[3]
	}
	return ""
}

func removeElements(n *html.Node, atoms ...atom.Atom) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if c.Type == html.ElementNode && containsAtom(atoms, c.DataAtom) {
			n.RemoveChild(c)
		} else {
			removeElements(c, atoms...)
		}
		c = next
	}
}

func containsAtom(atoms []atom.Atom, a atom.Atom) bool {
	for _, candidate := range atoms {
		if candidate == a {
			return true
		}
	}
	return false
}
