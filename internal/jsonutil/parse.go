// Package jsonutil extracts and decodes JSON from LLM responses that may be
// wrapped in markdown code fences or surrounded by prose.
package jsonutil

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNoJSON is returned when a response contains no JSON object or array.
var ErrNoJSON = errors.New("no JSON content found")

// previewLen bounds how much of a bad payload is echoed into error messages.
const previewLen = 200

// StripMarkdownFences returns the body of the first ``` fenced block in text
// (with or without a language tag such as ```json). Text without a fence is
// returned trimmed and otherwise unchanged. An unterminated fence yields
// everything after the opening line.
func StripMarkdownFences(text string) string {
	text = strings.TrimSpace(text)
	open := strings.Index(text, "```")
	if open == -1 {
		return text
	}

	body := text[open+3:]
	// Drop the language tag, which runs to the end of the opening line.
	if nl := strings.IndexByte(body, '\n'); nl != -1 {
		tag := strings.TrimSpace(body[:nl])
		if tag == "" || !strings.ContainsAny(tag, "{[") {
			body = body[nl+1:]
		}
	}
	if end := strings.Index(body, "```"); end != -1 {
		body = body[:end]
	}
	return strings.TrimSpace(body)
}

// ExtractJSON returns the outermost JSON object or array in text. It starts at
// the first '{' or '[' and ends at the last matching closing delimiter.
func ExtractJSON(text string) (string, error) {
	text = strings.TrimSpace(text)

	objIdx := strings.IndexByte(text, '{')
	arrIdx := strings.IndexByte(text, '[')
	if objIdx == -1 && arrIdx == -1 {
		return "", ErrNoJSON
	}

	start, closer := objIdx, byte('}')
	if objIdx == -1 || (arrIdx != -1 && arrIdx < objIdx) {
		start, closer = arrIdx, ']'
	}

	text = text[start:]
	end := strings.LastIndexByte(text, closer)
	if end == -1 {
		return "", fmt.Errorf("%w: no closing %c", ErrNoJSON, closer)
	}
	return text[:end+1], nil
}

// ParseJSON unwraps fences, extracts the JSON payload and decodes it into T.
func ParseJSON[T any](raw string) (T, error) {
	var out T

	payload, err := ExtractJSON(StripMarkdownFences(raw))
	if err != nil {
		return out, fmt.Errorf("%w (raw length: %d)", err, len(raw))
	}

	if err := json.Unmarshal([]byte(payload), &out); err != nil {
		preview := payload
		if len(preview) > previewLen {
			preview = preview[:previewLen] + "..."
		}
		var zero T
		return zero, fmt.Errorf("invalid JSON: %w (text: %s)", err, preview)
	}
	return out, nil
}
