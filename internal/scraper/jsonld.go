package scraper

import (
	"encoding/json"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/octobees/leadforge/internal/entity"
)

const (
	confidenceStructured = 0.95
	confidenceCard       = 0.8
	confidenceContact    = 0.6
	sourceWebsite        = "website"
)

var organizationPeopleKeys = []string{"founder", "founders", "employee", "employees", "member", "members"}

// extractJSONLD reads schema.org Person records, directly or through an
// Organization's employee/founder/member properties.
func extractJSONLD(doc *html.Node) []entity.ContactPerson {
	scripts := findAll(doc, func(n *html.Node) bool {
		return n.DataAtom == atom.Script && strings.EqualFold(strings.TrimSpace(attr(n, "type")), "application/ld+json")
	})

	var people []entity.ContactPerson
	for _, s := range scripts {
		if s.FirstChild == nil {
			continue
		}
		var data any
		if err := json.Unmarshal([]byte(s.FirstChild.Data), &data); err != nil {
			zap.L().Debug("scraper: skipping malformed json-ld block", zap.Error(err))
			continue
		}
		people = append(people, walkLD(data, false)...)
	}
	return people
}

func walkLD(v any, underOrganization bool) []entity.ContactPerson {
	switch node := v.(type) {
	case []any:
		var out []entity.ContactPerson
		for _, item := range node {
			out = append(out, walkLD(item, underOrganization)...)
		}
		return out
	case map[string]any:
		var out []entity.ContactPerson
		if graph, ok := node["@graph"]; ok {
			out = append(out, walkLD(graph, false)...)
		}
		switch {
		case hasType(node, "Person"), underOrganization && !hasAnyType(node):
			if p, ok := personFromLD(node); ok {
				out = append(out, p)
			}
		case isOrganization(node):
			for _, key := range organizationPeopleKeys {
				if related, ok := node[key]; ok {
					out = append(out, walkLD(related, true)...)
				}
			}
		}
		return out
	}
	return nil
}

func personFromLD(node map[string]any) (entity.ContactPerson, bool) {
	name := cleanText(ldString(node["name"]))
	if name == "" {
		name = cleanText(strings.TrimSpace(ldString(node["givenName"]) + " " + ldString(node["familyName"])))
	}
	if name == "" {
		return entity.ContactPerson{}, false
	}
	email := ldString(node["email"])
	if strings.HasPrefix(strings.ToLower(email), "mailto:") {
		email = email[len("mailto:"):]
	}
	return entity.ContactPerson{
		Name:       name,
		Title:      cleanText(ldString(node["jobTitle"])),
		Email:      strings.TrimSpace(email),
		Confidence: confidenceStructured,
		Source:     sourceWebsite,
	}, true
}

// ldString reads a text value that may be given as a string, a list, or a
// {"name": ...} object.
func ldString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case []any:
		for _, item := range val {
			if s := ldString(item); s != "" {
				return s
			}
		}
	case map[string]any:
		return ldString(val["name"])
	}
	return ""
}

func ldTypes(node map[string]any) []string {
	switch t := node["@type"].(type) {
	case string:
		return []string{t}
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func hasAnyType(node map[string]any) bool {
	return len(ldTypes(node)) > 0
}

func hasType(node map[string]any, want string) bool {
	for _, t := range ldTypes(node) {
		if strings.EqualFold(strings.TrimPrefix(t, "schema:"), want) {
			return true
		}
	}
	return false
}

func isOrganization(node map[string]any) bool {
	for _, t := range ldTypes(node) {
		t = strings.ToLower(strings.TrimPrefix(t, "schema:"))
		if strings.Contains(t, "organization") || strings.Contains(t, "business") ||
			t == "corporation" || t == "store" || t == "professionalservice" {
			return true
		}
	}
	return false
}
