package storage

import (
	"context"
	"testing"
)

func TestSecureFilename(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "plain", input: "photo.png", expected: "photo.png"},
		{name: "spaces become underscores", input: "my summary.pdf", expected: "my_summary.pdf"},
		{name: "slashes become dashes", input: "a/b/c.txt", expected: "a-b-c.txt"},
		{name: "backslashes become dashes", input: "a\\b.txt", expected: "a-b.txt"},
		{name: "strips unsafe runes", input: "rés\x00umé*?.md", expected: "rsum.md"},
		{name: "keeps allowed punctuation", input: "user@host+v1_final-2.jpg", expected: "user@host+v1_final-2.jpg"},
		{name: "dotfile traversal", input: "..", expected: ""},
		{name: "leading dots trimmed", input: "..secret.txt", expected: "secret.txt"},
		{name: "whitespace trimmed", input: "  notes.md  ", expected: "notes.md"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SecureFilename(tt.input); got != tt.expected {
				t.Fatalf("SecureFilename(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestExtension(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{input: "photo.PNG", expected: "png"},
		{input: "archive.tar.gz", expected: "gz"},
		{input: "no_extension", expected: ""},
		{input: "trailing.", expected: ""},
	}

	for _, tt := range tests {
		if got := Extension(tt.input); got != tt.expected {
			t.Fatalf("Extension(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestUniquePathAppendsCounterOnCollision(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStorage(dir)
	if err != nil {
		t.Fatalf("NewLocalStorage: %v", err)
	}

	ctx := context.Background()
	payload := []byte("content")

	first, err := UniquePath(ctx, store, 7, "report.pdf")
	if err != nil {
		t.Fatalf("UniquePath: %v", err)
	}
	if first != "7/report.pdf" {
		t.Fatalf("first path = %q, want %q", first, "7/report.pdf")
	}
	if err := store.Save(ctx, payload, first); err != nil {
		t.Fatalf("Save: %v", err)
	}

	second, err := UniquePath(ctx, store, 7, "report.pdf")
	if err != nil {
		t.Fatalf("UniquePath: %v", err)
	}
	if second != "7/report_1.pdf" {
		t.Fatalf("second path = %q, want %q", second, "7/report_1.pdf")
	}
	if err := store.Save(ctx, payload, second); err != nil {
		t.Fatalf("Save: %v", err)
	}

	third, err := UniquePath(ctx, store, 7, "report.pdf")
	if err != nil {
		t.Fatalf("UniquePath: %v", err)
	}
	if third != "7/report_2.pdf" {
		t.Fatalf("third path = %q, want %q", third, "7/report_2.pdf")
	}

	// Different user directory, no collision
	other, err := UniquePath(ctx, store, 8, "report.pdf")
	if err != nil {
		t.Fatalf("UniquePath: %v", err)
	}
	if other != "8/report.pdf" {
		t.Fatalf("other user path = %q, want %q", other, "8/report.pdf")
	}
}

func TestUniquePathRejectsEmptyResult(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStorage(dir)
	if err != nil {
		t.Fatalf("NewLocalStorage: %v", err)
	}

	if _, err := UniquePath(context.Background(), store, 1, "...."); err == nil {
		t.Fatal("expected error for filename that sanitises to nothing")
	}
}
