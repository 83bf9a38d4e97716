package main

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
)

func TestNormalizeCmd(t *testing.T) {
	cmd := newRootCmd()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetArgs([]string{"--env-file", filepath.Join(t.TempDir(), "missing.env"), "normalize", "30S/25E ISH01"})

	err := cmd.Execute()
	if err == nil {
		t.Fatal("explicit env file that does not exist should fail")
	}

	cmd = newRootCmd()
	cmd.SetOut(out)
	cmd.SetArgs([]string{"normalize", "30S/25E ISH01", "30E/25S 2D01"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	expected := "30S/25E ISH01\t30S/25E-15H01\n30E/25S 2D01\t30S/25E-02D01\n"
	if out.String() != expected {
		t.Errorf("output should be %q, but %q", expected, out.String())
	}
}

func TestListInbox(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	for _, name := range []string{"b.csv", "a.CSV", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.csv"), 0o755); err != nil {
		t.Fatal(err)
	}

	events, err := listInbox(dir, regexp.MustCompile(`(?i)\.csv$`))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(events) != 2 {
		t.Fatalf("Size of events should be 2, but %d", len(events))
	}
	if !strings.HasSuffix(events[0].Name, "a.CSV") || !strings.HasSuffix(events[1].Name, "b.csv") {
		t.Errorf("events should be sorted by name, but %v", events)
	}

	if _, err := listInbox(filepath.Join(dir, "missing"), regexp.MustCompile(".")); err == nil {
		t.Error("expected error but no error occurred")
	}
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, ".env")
	if err := os.WriteFile(p, []byte("KWB_DW_TEST_VALUE=from-file\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("KWB_DW_TEST_VALUE", "")
	os.Unsetenv("KWB_DW_TEST_VALUE")

	if err := loadEnv(p, true); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if v := os.Getenv("KWB_DW_TEST_VALUE"); v != "from-file" {
		t.Errorf("KWB_DW_TEST_VALUE should be %q, but %q", "from-file", v)
	}

	if err := loadEnv(filepath.Join(dir, "missing"), false); err != nil {
		t.Errorf("missing default env file should be ignored, but %v", err)
	}
}
