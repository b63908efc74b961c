package service

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/octobees/leadforge/internal/entity"
)

var recencyPattern = regexp.MustCompile(`(?i)\b(?:founded|established|created|registered|started|incorporated|formed|launched)\b[^.;]{0,40}?\b(?:last|past)\s+(\d{1,3}|one|two|three|four|five|six|seven|eight|nine|ten)\s+years?\b`)

var numberWords = map[string]int{
	"one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
}

var leadFields = []struct {
	key  string
	hint string
}{
	{"name", "full name of a decision maker at the business, or an empty string"},
	{"company", "the official registered company name exactly as filed with Companies House"},
	{"email", "a business email address, or an empty string"},
	{"phone", "a business phone number including the area code, or an empty string"},
	{"website", "the company website URL, or an empty string"},
	{"address", "the registered or trading address, or an empty string"},
	{"notes", "one sentence on why this business matches the request"},
}

// DetectRecency finds a "founded in the last N years" style constraint in the
// prompt. It returns nil when the prompt carries no such phrase.
func DetectRecency(prompt string, now time.Time) *entity.RecencyFilter {
	match := recencyPattern.FindStringSubmatch(prompt)
	if match == nil {
		return nil
	}

	token := strings.ToLower(match[1])
	years, ok := numberWords[token]
	if !ok {
		n, err := strconv.Atoi(token)
		if err != nil {
			return nil
		}
		years = n
	}
	if years <= 0 {
		return nil
	}

	return &entity.RecencyFilter{
		Years:      years,
		CutoffYear: now.Year() - years,
		Phrase:     match[0],
	}
}

// BuildSystemInstruction describes the lead fields and output rules to the model.
func BuildSystemInstruction(filter *entity.RecencyFilter) string {
	var b strings.Builder
	b.WriteString("You are a B2B lead generation assistant for UK businesses.\n")
	b.WriteString("Return a JSON array of lead objects. Every object must contain exactly these string fields:\n")
	for _, f := range leadFields {
		fmt.Fprintf(&b, "- %q: %s\n", f.key, f.hint)
	}
	b.WriteString("\nRules:\n")
	b.WriteString("- Respond with the JSON array only. Do not add explanations, prose or markdown code fences.\n")
	b.WriteString("- Use an empty string for any value you cannot determine. Never invent email addresses or phone numbers.\n")
	b.WriteString("- Only include real, currently trading businesses, each one once.\n")
	if filter != nil {
		fmt.Fprintf(&b, "- Only include businesses registered at Companies House in %d or later (founded within the last %d years).\n",
			filter.CutoffYear, filter.Years)
	}
	return b.String()
}

// BuildUserPrompt returns the user's request with the optional reference website appended.
func BuildUserPrompt(prompt, website string) string {
	prompt = strings.TrimSpace(prompt)
	website = strings.TrimSpace(website)
	if website == "" {
		return prompt
	}
	return prompt + "\n\nReference website (the business these leads are for): " + website
}
