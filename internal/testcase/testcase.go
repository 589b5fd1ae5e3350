// Package testcase defines the manual test case record produced by the LLM
// engines and the validation that turns a free-form model answer into a
// clean slice of records.
package testcase

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Priority values recognized when normalizing model output.
const (
	PriorityHigh   = "High"
	PriorityMedium = "Medium"
	PriorityLow    = "Low"
)

// TestCase is a single manual test case.
type TestCase struct {
	Feature        string `json:"feature"`
	TestID         string `json:"test_id"`
	Title          string `json:"title"`
	Steps          Steps  `json:"steps"`
	ExpectedResult string `json:"expected_result"`
	Priority       string `json:"priority"`
}

// Steps holds the step list of a test case. Models usually answer with an
// array, but occasionally send a single pre-formatted string; that string is
// kept verbatim in Text.
type Steps struct {
	Items []string
	Text  string
}

// StepList builds a list-form Steps value.
func StepList(items ...string) Steps {
	return Steps{Items: items}
}

// IsText reports whether the steps were given as a single string.
func (s Steps) IsText() bool {
	return s.Text != "" && len(s.Items) == 0
}

// Format renders the steps for a spreadsheet cell: "1. first\n2. second" for
// lists, the raw text otherwise.
func (s Steps) Format() string {
	if s.IsText() {
		return s.Text
	}
	var b strings.Builder
	for i, step := range s.Items {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%d. %s", i+1, step)
	}
	return b.String()
}

// UnmarshalJSON accepts an array (elements are stringified), a string, or
// null. Any other scalar becomes Text.
func (s *Steps) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*s = Steps{}

	if len(data) == 0 || string(data) == "null" {
		return nil
	}

	switch data[0] {
	case '[':
		var raw []json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		s.Items = make([]string, 0, len(raw))
		for _, r := range raw {
			s.Items = append(s.Items, stepString(r))
		}
	default:
		s.Text = stepString(data)
	}
	return nil
}

// stepString renders one step the way it reads in a spreadsheet cell:
// null and booleans are spelled None, True and False.
func stepString(raw json.RawMessage) string {
	switch string(bytes.TrimSpace(raw)) {
	case "null":
		return "None"
	case "true":
		return "True"
	case "false":
		return "False"
	}
	return rawString(raw)
}

// rawString returns the decoded value of a JSON string, or the compact JSON
// text of any other value.
func rawString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err == nil {
		return buf.String()
	}
	return strings.TrimSpace(string(raw))
}

// NormalizePriority maps case variants of High/Medium/Low onto their
// canonical spelling. Anything else is returned trimmed but unchanged.
func NormalizePriority(p string) string {
	p = strings.TrimSpace(p)
	for _, canonical := range []string{PriorityHigh, PriorityMedium, PriorityLow} {
		if strings.EqualFold(p, canonical) {
			return canonical
		}
	}
	return p
}

// SampleTestCases returns a fixed set of cases used by the sample command.
func SampleTestCases() []TestCase {
	return []TestCase{
		{
			Feature: "User Authentication",
			TestID:  "TC001",
			Title:   "Verify successful login with valid credentials",
			Steps: StepList(
				"Navigate to login page",
				"Enter valid username",
				"Enter valid password",
				"Click Login button",
			),
			ExpectedResult: "User successfully logs in and is redirected to dashboard",
			Priority:       PriorityHigh,
		},
		{
			Feature: "User Authentication",
			TestID:  "TC002",
			Title:   "Verify login failure with invalid credentials",
			Steps: StepList(
				"Navigate to login page",
				"Enter invalid username",
				"Enter invalid password",
				"Click Login button",
			),
			ExpectedResult: "Error message displayed and user remains on login page",
			Priority:       PriorityHigh,
		},
		{
			Feature: "User Profile",
			TestID:  "TC003",
			Title:   "Verify user can update profile information",
			Steps: StepList(
				"Login with valid credentials",
				"Navigate to profile page",
				"Update profile information",
				"Click Save button",
			),
			ExpectedResult: "Profile information is updated successfully with confirmation message",
			Priority:       PriorityMedium,
		},
	}
}
