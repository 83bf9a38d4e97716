// Package wellnumber rewrites informally entered state well numbers into the
// canonical <township/range>-<section><tract> form, e.g. 30S/25E-02D01.
package wellnumber

import (
	"strings"
	"unicode/utf8"
)

// Correction is a single fix for a known data-entry error.
type Correction struct {
	// Name identifies the correction in logs and tests.
	Name    string
	Match   func(string) bool
	Rewrite func(string) string
}

// Corrections are checked in order after padding and the first match wins.
// Append new entries at the end.
var Corrections = []Correction{
	{
		Name:    "misread section 15",
		Match:   equals("30S/25E-ISH01"),
		Rewrite: replace("IS", "15"),
	},
	{
		Name:    "misplaced section zero",
		Match:   equals("30S/25E-020D1"),
		Rewrite: replace("020D1", "20D01"),
	},
	{
		Name:    "transposed township and range",
		Match:   contains("30E/25S"),
		Rewrite: replace("30E/25S", "30S/25E"),
	},
}

// Normalize never fails; input it cannot make sense of passes through with
// only the separator and padding rules applied.
func Normalize(raw string) string {
	s := separate(raw)
	s = strings.ReplaceAll(s, " ", "")
	s = pad(s)

	return correct(s, Corrections)
}

func separate(s string) string {
	if strings.Contains(s, "-") {
		return strings.ReplaceAll(s, " ", "")
	}

	s = strings.Replace(s, " ", "-", 1)

	return strings.ReplaceAll(s, " ", "")
}

func pad(s string) string {
	switch utf8.RuneCountInString(s) {
	case 12:
		// single digit section
		return strings.Replace(s, "-", "-0", 1)
	case 11:
		// missing tract number
		return s + "01"
	default:
		return s
	}
}

func correct(s string, cs []Correction) string {
	for _, c := range cs {
		if c.Match(s) {
			return c.Rewrite(s)
		}
	}

	return s
}

func equals(want string) func(string) bool {
	return func(s string) bool { return s == want }
}

func contains(sub string) func(string) bool {
	return func(s string) bool { return strings.Contains(s, sub) }
}

func replace(old, new string) func(string) string {
	return func(s string) string { return strings.Replace(s, old, new, 1) }
}
