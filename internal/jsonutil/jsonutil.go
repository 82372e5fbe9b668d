// Package jsonutil decodes JSON payloads that may arrive wrapped in the
// decoration LLMs like to add, such as markdown code fences.
package jsonutil

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var ErrEmptyInput = errors.New("empty input")

// DecodeWithFallback unmarshals raw into out. When raw is not valid JSON as
// given, it retries after stripping a surrounding markdown code fence, then
// with the outermost brace-delimited substring.
func DecodeWithFallback(raw string, out any) error {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ErrEmptyInput
	}
	if err := json.Unmarshal([]byte(s), out); err == nil {
		return nil
	}
	if stripped := stripCodeFence(s); stripped != s {
		if err := json.Unmarshal([]byte(stripped), out); err == nil {
			return nil
		}
	}
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start >= 0 && end > start {
		if err := json.Unmarshal([]byte(s[start:end+1]), out); err == nil {
			return nil
		}
	}
	return fmt.Errorf("input is not valid json")
}

func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	body := s[3:]
	if idx := strings.Index(body, "\n"); idx >= 0 {
		body = body[idx+1:]
	}
	body = strings.TrimSpace(body)
	body = strings.TrimSuffix(body, "```")
	return strings.TrimSpace(body)
}
