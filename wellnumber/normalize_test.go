package wellnumber

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
		want string
	}{
		{name: "canonical", in: "30S/25E-02D01", want: "30S/25E-02D01"},
		{name: "spaces around hyphen", in: "30S / 25E - 020D1", want: "30S/25E-20D01"},
		{name: "space separator", in: "30S/25E 02D01", want: "30S/25E-02D01"},
		{name: "space separator with inner spaces", in: "30S/25E 02 D01", want: "30S/25E-02D01"},
		{name: "single digit section", in: "30S/25E-2D01", want: "30S/25E-02D01"},
		{name: "missing tract", in: "30S/25E-02D", want: "30S/25E-02D01"},
		{name: "missing tract without hyphen", in: "30S/25E 02D", want: "30S/25E-02D01"},
		{name: "misread section", in: "30S/25E ISH01", want: "30S/25E-15H01"},
		{name: "misread section with hyphen", in: "30S/25E-ISH01", want: "30S/25E-15H01"},
		{name: "misplaced zero", in: "30S/25E-020D1", want: "30S/25E-20D01"},
		{name: "transposed", in: "30E/25S-02D01", want: "30S/25E-02D01"},
		{name: "transposed and padded", in: "30E/25S 2D01", want: "30S/25E-02D01"},
		{name: "near miss of misread section", in: "31S/25E-ISH01", want: "31S/25E-ISH01"},
		{name: "near miss of misplaced zero", in: "30S/25E-020D2", want: "30S/25E-020D2"},
		{name: "short garbage", in: "MW 1", want: "MW-1"},
		{name: "empty", in: "", want: ""},
	}

	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			if got := Normalize(c.in); got != c.want {
				t.Errorf("Normalize(%q) should be %q, but %q", c.in, c.want, got)
			}
		})
	}
}

func TestNormalize_Padding(t *testing.T) {
	t.Parallel()

	// inputs whose length after separator normalization is 11 or 12
	ins := []string{
		"29S/26E-1A01", "29S/26E 1A01", "31S/24E-9Q02", "32S/27E-5R03",
		"29S/26E-01A", "30S/25E 07C", "31S/24E-09Q", "32S/27E-12R",
	}

	for _, in := range ins {
		sep := strings.ReplaceAll(separate(in), " ", "")
		got := Normalize(in)

		if n := utf8.RuneCountInString(got); n != 13 {
			t.Errorf("Normalize(%q) = %q should have 13 characters, but %d", in, got, n)
		}

		switch utf8.RuneCountInString(sep) {
		case 11:
			if got != sep+"01" {
				t.Errorf("Normalize(%q) should append 01 to %q, but %q", in, sep, got)
			}
		case 12:
			if !strings.Contains(got, "-0") || strings.Replace(got, "-0", "-", 1) != sep {
				t.Errorf("Normalize(%q) should insert 0 after the hyphen of %q, but %q", in, sep, got)
			}
		default:
			t.Fatalf("bad fixture %q: separated length %d", in, utf8.RuneCountInString(sep))
		}
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	t.Parallel()

	ins := []string{
		"30S/25E-02D01", "30S/25E-ISH01", "30S/25E-020D1", "30E/25S-02D01",
		"29S/26E-14K02", "30S / 25E - 020D1", "30S/25E 2D01",
	}

	for _, in := range ins {
		once := Normalize(in)
		if twice := Normalize(once); twice != once {
			t.Errorf("Normalize(Normalize(%q)) should be %q, but %q", in, once, twice)
		}
	}
}

func TestCorrections_FirstMatchWins(t *testing.T) {
	t.Parallel()

	cs := []Correction{
		{Name: "a", Match: contains("X"), Rewrite: replace("X", "Y")},
		{Name: "b", Match: contains("Y"), Rewrite: replace("Y", "Z")},
	}

	if got := correct("X", cs); got != "Y" {
		t.Errorf(`correct("X") should be "Y", but %q`, got)
	}

	if got := correct("W", cs); got != "W" {
		t.Errorf(`correct("W") should be "W", but %q`, got)
	}
}

func TestCorrections_AppliedAfterPadding(t *testing.T) {
	t.Parallel()

	// 12 characters before padding; only the padded value is a transposition match.
	in := "30E/25S-2D01"
	if got, want := Normalize(in), "30S/25E-02D01"; got != want {
		t.Errorf("Normalize(%q) should be %q, but %q", in, want, got)
	}

	// Padding produces the exact misplaced-zero value, which is then corrected.
	in = "30S/25E-20D1"
	if got, want := Normalize(in), "30S/25E-20D01"; got != want {
		t.Errorf("Normalize(%q) should be %q, but %q", in, want, got)
	}

	// The raw value matches the misplaced-zero entry only after spaces are removed.
	in = "30S/25E - 020D1"
	if got, want := Normalize(in), "30S/25E-20D01"; got != want {
		t.Errorf("Normalize(%q) should be %q, but %q", in, want, got)
	}
}
