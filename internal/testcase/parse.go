package testcase

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNoJSONArray is returned when a model answer contains no '[' ... ']' span.
var ErrNoJSONArray = errors.New("no JSON array found in response")

// ParseResponse extracts the JSON array of test cases from a model answer.
//
// The answer may wrap the array in prose or code fences; everything between
// the first '[' and the last ']' is decoded. Elements that are not objects
// are skipped, and missing fields are filled from the element's position.
func ParseResponse(content string) ([]TestCase, error) {
	start := strings.Index(content, "[")
	end := strings.LastIndex(content, "]")
	if start == -1 || end == -1 || end < start {
		return nil, ErrNoJSONArray
	}

	var elements []json.RawMessage
	if err := json.Unmarshal([]byte(content[start:end+1]), &elements); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w", err)
	}

	cases := make([]TestCase, 0, len(elements))
	for i, raw := range elements {
		raw = bytes.TrimSpace(raw)
		if len(raw) == 0 || raw[0] != '{' {
			continue
		}

		var fields map[string]json.RawMessage
		if err := json.Unmarshal(raw, &fields); err != nil {
			continue
		}
		cases = append(cases, fromFields(i, fields))
	}

	return cases, nil
}

func fromFields(i int, fields map[string]json.RawMessage) TestCase {
	n := i + 1
	tc := TestCase{
		Feature:        stringField(fields, "feature", fmt.Sprintf("Feature %d", n)),
		TestID:         stringField(fields, "test_id", fmt.Sprintf("TC%03d", n)),
		Title:          stringField(fields, "title", fmt.Sprintf("Test Case %d", n)),
		ExpectedResult: stringField(fields, "expected_result", ""),
		Priority:       NormalizePriority(stringField(fields, "priority", PriorityMedium)),
	}

	if raw, ok := present(fields, "steps"); ok {
		// Steps.UnmarshalJSON only fails on malformed arrays, which the outer
		// decode has already ruled out.
		_ = json.Unmarshal(raw, &tc.Steps)
	}
	if tc.Steps.Items == nil && !tc.Steps.IsText() {
		tc.Steps.Items = []string{}
	}

	return tc
}

// present returns the raw value for key, treating JSON null as absent.
func present(fields map[string]json.RawMessage, key string) (json.RawMessage, bool) {
	raw, ok := fields[key]
	if !ok {
		return nil, false
	}
	if t := bytes.TrimSpace(raw); len(t) == 0 || string(t) == "null" {
		return nil, false
	}
	return raw, true
}

func stringField(fields map[string]json.RawMessage, key, fallback string) string {
	raw, ok := present(fields, key)
	if !ok {
		return fallback
	}
	return rawString(raw)
}
