package jsonutil

import (
	"errors"
	"testing"
)

type plan struct {
	Title string   `json:"title"`
	Pages []string `json:"pages"`
}

func TestStripMarkdownFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no fence", `  {"a":1}  `, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n[1,2]\n```", `[1,2]`},
		{"prose around fence", "Here is the plan:\n```json\n{\"a\":1}\n```\nEnjoy!", `{"a":1}`},
		{"unterminated", "```json\n{\"a\":1}", `{"a":1}`},
		{"single line", "```{\"a\":1}```", `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripMarkdownFences(tt.in); got != tt.want {
				t.Errorf("StripMarkdownFences() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractJSON(t *testing.T) {
	got, err := ExtractJSON(`The answer is {"a": {"b": 2}} as requested.`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != `{"a": {"b": 2}}` {
		t.Errorf("ExtractJSON() = %q", got)
	}

	got, err = ExtractJSON(`list: [{"a":1},{"a":2}] done`)
	if err != nil || got != `[{"a":1},{"a":2}]` {
		t.Errorf("ExtractJSON() array = %q, %v", got, err)
	}

	if _, err := ExtractJSON("no json here"); !errors.Is(err, ErrNoJSON) {
		t.Errorf("expected ErrNoJSON, got %v", err)
	}
	if _, err := ExtractJSON(`{"open": true`); !errors.Is(err, ErrNoJSON) {
		t.Errorf("expected ErrNoJSON for unclosed object, got %v", err)
	}
}

func TestParseJSON(t *testing.T) {
	raw := "```json\n{\"title\": \"Summer\", \"pages\": [\"cover\", \"single\"]}\n```"
	got, err := ParseJSON[plan](raw)
	if err != nil {
		t.Fatalf("ParseJSON() error: %v", err)
	}
	if got.Title != "Summer" || len(got.Pages) != 2 {
		t.Errorf("ParseJSON() = %+v", got)
	}

	if _, err := ParseJSON[plan](`{"title": 5}`); err == nil {
		t.Error("expected type error")
	}
	if _, err := ParseJSON[plan](""); !errors.Is(err, ErrNoJSON) {
		t.Errorf("expected ErrNoJSON, got %v", err)
	}
}
