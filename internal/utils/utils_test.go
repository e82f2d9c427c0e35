package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestIsRomanized(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"nihao", true},
		{"xi'an", true},
		{"NiHao", true},
		{"", false},
		{"ni hao", false},
		{"ni3", false},
		{"nü", false},
		{"，", false},
	}
	for _, tt := range tests {
		if got := IsRomanized(tt.in); got != tt.want {
			t.Errorf("IsRomanized(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestIsValidInput(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"zhongguo", true},
		{"aaa", true},
		{"aaaa", false},
		{"aaaab", true},
		{"haoooo", true},
		{"123", false},
	}
	for _, tt := range tests {
		if got := IsValidInput(tt.in); got != tt.want {
			t.Errorf("IsValidInput(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if !ContainsNumbers("ni3hao") || ContainsNumbers("nihao") {
		t.Error("ContainsNumbers misreports digits")
	}
}

func TestSeenFilter(t *testing.T) {
	f := NewSeenFilter("你好")
	if f.ShouldInclude("你好") {
		t.Error("excluded text was included")
	}
	if !f.ShouldInclude("你") || f.ShouldInclude("你") {
		t.Error("text should be included exactly once")
	}
}

func TestFormatWithCommas(t *testing.T) {
	tests := map[int]string{
		0:        "0",
		999:      "999",
		1000:     "1,000",
		123456:   "123,456",
		1234567:  "1,234,567",
		-9876543: "-9,876,543",
		-12:      "-12",
	}
	for in, want := range tests {
		if got := FormatWithCommas(in); got != want {
			t.Errorf("FormatWithCommas(%d) = %q, want %q", in, got, want)
		}
	}
	if got := FormatMicros(1500 * time.Microsecond); got != "1500µs" {
		t.Errorf("FormatMicros = %q", got)
	}
}

func TestSaveTOMLFileAndRecovery(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "c.toml")

	type section struct {
		Limit int    `toml:"limit"`
		Name  string `toml:"name"`
	}
	in := struct {
		S section `toml:"s"`
	}{S: section{Limit: 7, Name: "x"}}

	if err := SaveTOMLFile(in, path); err != nil {
		t.Fatalf("SaveTOMLFile: %v", err)
	}
	raw, err := ParseTOMLWithRecovery(path)
	if err != nil {
		t.Fatalf("ParseTOMLWithRecovery: %v", err)
	}
	s, ok := ExtractSection(raw, "s")
	if !ok {
		t.Fatalf("section missing from %v", raw)
	}
	if v, ok := ExtractInt64(s, "limit"); !ok || v != 7 {
		t.Errorf("limit = %v, %v", v, ok)
	}
	if v, ok := ExtractString(s, "name"); !ok || v != "x" {
		t.Errorf("name = %v, %v", v, ok)
	}
	if _, ok := ExtractBool(s, "name"); ok {
		t.Error("string value extracted as bool")
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("temporary files left behind: %v", entries)
	}
}

func TestExtractTables(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "t.toml")
	content := "[[src]]\nname = \"a\"\n\n[[src]]\nname = \"b\"\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	raw, err := ParseTOMLWithRecovery(path)
	if err != nil {
		t.Fatal(err)
	}
	tables, ok := ExtractTables(raw, "src")
	if !ok || len(tables) != 2 {
		t.Fatalf("ExtractTables = %v, %v", tables, ok)
	}
	if name, _ := ExtractString(tables[1], "name"); name != "b" {
		t.Errorf("second table name = %q", name)
	}
}

func TestIsDictDir(t *testing.T) {
	dir := t.TempDir()
	if IsDictDir(dir) {
		t.Error("empty dir reported as dictionary dir")
	}
	sub := filepath.Join(dir, "chinese")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(sub, "dict.json"), []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	if !IsDictDir(dir) {
		t.Error("dictionary one level down not detected")
	}
	if IsDictDir(filepath.Join(dir, "missing")) {
		t.Error("missing dir reported as dictionary dir")
	}
}
