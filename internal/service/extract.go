package service

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/octobees/leadforge/internal/entity"
)

var (
	// ErrNoJSONArray is returned when a completion contains no parseable JSON array.
	ErrNoJSONArray = errors.New("no JSON array found in response")
	// ErrMalformedLeads is returned when the array holds something other than lead objects.
	ErrMalformedLeads = errors.New("malformed lead entries")
)

var fencePattern = regexp.MustCompile("(?s)```(?:[a-zA-Z]+)?\\s*(.*?)```")

// ExtractJSONArray returns the JSON array carrying the leads in text. Bare
// JSON, markdown fenced blocks and arrays surrounded by prose are accepted.
// An array of objects wins over any earlier array, so bracketed prose such as
// citations is skipped; failing that, the first parseable array is returned.
func ExtractJSONArray(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrNoJSONArray
	}

	fenced := fencePattern.FindAllStringSubmatch(text, -1)
	for _, accept := range []func([]byte) bool{isObjectArray, json.Valid} {
		for _, m := range fenced {
			if arr, ok := firstArray(m[1], accept); ok {
				return arr, nil
			}
		}
		if arr, ok := firstArray(text, accept); ok {
			return arr, nil
		}
	}
	return "", ErrNoJSONArray
}

func firstArray(s string, accept func([]byte) bool) (string, bool) {
	for start := strings.IndexByte(s, '['); start >= 0; {
		if end := matchingBracket(s, start); end > start {
			candidate := s[start : end+1]
			if accept([]byte(candidate)) {
				return candidate, true
			}
		}
		next := strings.IndexByte(s[start+1:], '[')
		if next < 0 {
			break
		}
		start += next + 1
	}
	return "", false
}

// isObjectArray reports whether data is a JSON array that is empty or holds
// only objects.
func isObjectArray(data []byte) bool {
	var elems []json.RawMessage
	if err := json.Unmarshal(data, &elems); err != nil {
		return false
	}
	for _, elem := range elems {
		if elem = bytes.TrimSpace(elem); len(elem) == 0 || elem[0] != '{' {
			return false
		}
	}
	return true
}

// matchingBracket returns the index closing the bracket opened at start,
// ignoring brackets inside JSON strings, or -1.
func matchingBracket(s string, start int) int {
	depth := 0
	inString, escaped := false, false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '[', '{':
			depth++
		case ']', '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// looseString accepts strings, numbers, booleans, null and single-element
// lists for fields the model is asked to return as strings.
type looseString string

func (s *looseString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	switch data[0] {
	case '"':
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = looseString(v)
	case '[':
		var items []looseString
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		parts := make([]string, 0, len(items))
		for _, item := range items {
			if v := strings.TrimSpace(string(item)); v != "" {
				parts = append(parts, v)
			}
		}
		*s = looseString(strings.Join(parts, ", "))
	case '{':
		return fmt.Errorf("expected text, got object")
	default:
		if _, err := strconv.ParseFloat(string(data), 64); err != nil && string(data) != "true" && string(data) != "false" {
			return fmt.Errorf("unexpected value %s", data)
		}
		*s = looseString(data)
	}
	return nil
}

type rawLead struct {
	Name    looseString `json:"name"`
	Company looseString `json:"company"`
	Email   looseString `json:"email"`
	Phone   looseString `json:"phone"`
	Website looseString `json:"website"`
	Address looseString `json:"address"`
	Notes   looseString `json:"notes"`
}

func (r rawLead) toLead() entity.Lead {
	return entity.Lead{
		Name:    strings.TrimSpace(string(r.Name)),
		Company: strings.TrimSpace(string(r.Company)),
		Email:   strings.TrimSpace(string(r.Email)),
		Phone:   strings.TrimSpace(string(r.Phone)),
		Website: strings.TrimSpace(string(r.Website)),
		Address: strings.TrimSpace(string(r.Address)),
		Notes:   strings.TrimSpace(string(r.Notes)),
	}
}

// DecodeResult is the outcome of decoding a completion into leads.
type DecodeResult struct {
	Leads   []entity.Lead
	Dropped int
	Err     error
}

// OK reports whether decoding succeeded.
func (r DecodeResult) OK() bool { return r.Err == nil }

// DecodeLeads extracts the JSON array from a completion and decodes it into
// leads. Entries without a company name are dropped; any element that is not
// an object fails the whole decode.
func DecodeLeads(text string) DecodeResult {
	arr, err := ExtractJSONArray(text)
	if err != nil {
		return DecodeResult{Err: err}
	}

	var elems []json.RawMessage
	if err := json.Unmarshal([]byte(arr), &elems); err != nil {
		return DecodeResult{Err: fmt.Errorf("%w: %v", ErrMalformedLeads, err)}
	}

	res := DecodeResult{Leads: make([]entity.Lead, 0, len(elems))}
	for i, elem := range elems {
		elem = bytes.TrimSpace(elem)
		if len(elem) == 0 || elem[0] != '{' {
			return DecodeResult{Err: fmt.Errorf("%w: element %d is not an object", ErrMalformedLeads, i)}
		}
		var raw rawLead
		if err := json.Unmarshal(elem, &raw); err != nil {
			return DecodeResult{Err: fmt.Errorf("%w: element %d: %v", ErrMalformedLeads, i, err)}
		}
		lead := raw.toLead()
		if lead.Company == "" {
			res.Dropped++
			zap.L().Debug("dropping lead without company", zap.Int("index", i))
			continue
		}
		res.Leads = append(res.Leads, lead)
	}
	return res
}
