package cvs

import (
	"errors"
	"testing"
	"time"
)

func TestBuildKey(t *testing.T) {
	at := time.UnixMilli(1700000000000).UTC()

	key := BuildKey("google:12345", "My Resume.PDF", at)
	if key != "cvs/google-12345_1700000000000.pdf" {
		t.Fatalf("unexpected key: %s", key)
	}
}

func TestBuildKeyNoExtension(t *testing.T) {
	at := time.UnixMilli(42).UTC()

	if key := BuildKey("u1", "resume", at); key != "cvs/u1_42" {
		t.Fatalf("unexpected key: %s", key)
	}
}

func TestExtractKeyFromURL(t *testing.T) {
	cases := []struct {
		url  string
		want string
	}{
		{"https://bucket.s3.amazonaws.com/cvs/abc_123.pdf", "cvs/abc_123.pdf"},
		{"https://local.blobstore/cvs/u1_42.docx", "cvs/u1_42.docx"},
		{"https://bucket.s3.amazonaws.com/prefix/cvs/abc_123.pdf", "prefix/cvs/abc_123.pdf"},
	}
	for _, tc := range cases {
		got, err := ExtractKeyFromURL(tc.url)
		if err != nil {
			t.Fatalf("extract %s: %v", tc.url, err)
		}
		if got != tc.want {
			t.Fatalf("extract %s: got %s, want %s", tc.url, got, tc.want)
		}
	}
}

func TestExtractKeyFromURLTooShort(t *testing.T) {
	for _, url := range []string{"", "https://host", "https://host/", "no-scheme"} {
		if _, err := ExtractKeyFromURL(url); !errors.Is(err, ErrBadURL) {
			t.Fatalf("expected ErrBadURL for %q, got %v", url, err)
		}
	}
}
