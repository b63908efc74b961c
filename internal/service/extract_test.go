package service

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestExtractJSONArray(t *testing.T) {
	tests := map[string]struct {
		input string
		want  int
	}{
		"bare array": {
			input: `[{"company":"Acme Ltd"},{"company":"Beta Ltd"}]`,
			want:  2,
		},
		"json fence": {
			input: "Here you go:\n```json\n[{\"company\":\"Acme Ltd\"}]\n```\nLet me know if you need more.",
			want:  1,
		},
		"plain fence": {
			input: "```\n[{\"company\":\"Acme Ltd\"},{\"company\":\"Beta\"}]\n```",
			want:  2,
		},
		"surrounded by prose": {
			input: `Sure! Based on your request [London], these match: [{"company":"Acme [UK] Ltd","notes":"uses ] in text"}] Hope this helps.`,
			want:  1,
		},
		"wrapped in object": {
			input: `{"leads":[{"company":"Acme Ltd"}]}`,
			want:  1,
		},
		"citation before leads": {
			input: "Sources [1] and [2, 3] below.\n[{\"company\":\"Acme Ltd\"},{\"company\":\"Beta Ltd\"}]",
			want:  2,
		},
		"citation inside fence prose": {
			input: "See [\"note\"]:\n```json\n[{\"company\":\"Acme Ltd\"}]\n```",
			want:  1,
		},
		"empty array": {
			input: `[]`,
			want:  0,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := ExtractJSONArray(tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			var items []map[string]any
			if err := json.Unmarshal([]byte(got), &items); err != nil {
				t.Fatalf("result is not a JSON array: %v (%q)", err, got)
			}
			if len(items) != tt.want {
				t.Fatalf("expected %d items, got %d", tt.want, len(items))
			}
		})
	}
}

func TestExtractJSONArray_NoArray(t *testing.T) {
	inputs := []string{
		"",
		"I'm sorry, I cannot help with that.",
		`{"company":"Acme Ltd"}`,
		"[this is not json]",
		"```json\n[{\"company\": \"Acme\"\n```",
	}
	for _, in := range inputs {
		if _, err := ExtractJSONArray(in); !errors.Is(err, ErrNoJSONArray) {
			t.Fatalf("expected ErrNoJSONArray for %q, got %v", in, err)
		}
	}
}

func TestDecodeLeads(t *testing.T) {
	res := DecodeLeads("```json\n" + `[
  {"name":"Jane Doe","company":" Acme Widgets Ltd ","email":"jane@acme.io","phone":441132000000,"website":null,"address":"1 High St, Leeds","notes":"fits"},
  {"company":"Beta Ltd"},
  {"name":"Nobody","company":""}
]` + "\n```")

	if !res.OK() {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if len(res.Leads) != 2 || res.Dropped != 1 {
		t.Fatalf("expected 2 leads and 1 dropped, got %d/%d", len(res.Leads), res.Dropped)
	}

	first := res.Leads[0]
	if first.Company != "Acme Widgets Ltd" || first.Name != "Jane Doe" {
		t.Fatalf("unexpected first lead: %+v", first)
	}
	if first.Phone != "441132000000" || first.Website != "" {
		t.Fatalf("expected loose decoding of phone/website, got %+v", first)
	}

	second := res.Leads[1]
	if second.Email != "" || second.Notes != "" || second.Address != "" {
		t.Fatalf("expected missing fields to default to empty, got %+v", second)
	}
}

func TestDecodeLeads_SkipsBracketedProse(t *testing.T) {
	res := DecodeLeads("Sources [1] below.\n[{\"company\":\"Acme Ltd\"},{\"company\":\"Beta Ltd\"}]")
	if !res.OK() {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if len(res.Leads) != 2 || res.Leads[0].Company != "Acme Ltd" || res.Leads[1].Company != "Beta Ltd" {
		t.Fatalf("unexpected leads: %+v", res.Leads)
	}
}

func TestDecodeLeads_Failures(t *testing.T) {
	if res := DecodeLeads("no leads today"); res.OK() || !errors.Is(res.Err, ErrNoJSONArray) {
		t.Fatalf("expected ErrNoJSONArray, got %v", res.Err)
	}
	if res := DecodeLeads(`[{"company":"Acme"}, "Beta Ltd"]`); res.OK() || !errors.Is(res.Err, ErrMalformedLeads) {
		t.Fatalf("expected ErrMalformedLeads for non-object element, got %v", res.Err)
	}
	if res := DecodeLeads("Ranked: [1, 2, 3]"); res.OK() || !errors.Is(res.Err, ErrMalformedLeads) {
		t.Fatalf("expected ErrMalformedLeads when only a scalar array is present, got %v", res.Err)
	}
	if res := DecodeLeads(`[{"company":{"name":"Acme"}}]`); res.OK() || !errors.Is(res.Err, ErrMalformedLeads) {
		t.Fatalf("expected ErrMalformedLeads for object field, got %v", res.Err)
	}
	if res := DecodeLeads(`[{"company":"Acme"}, "Beta Ltd"]`); len(res.Leads) != 0 {
		t.Fatalf("expected no partial leads on failure")
	}
}
