package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
)

func buildDocx(t *testing.T, body string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	files := map[string]string{
		"[Content_Types].xml":          `<?xml version="1.0"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"><Default Extension="xml" ContentType="application/xml"/></Types>`,
		"word/document.xml":            `<?xml version="1.0"?><w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body><w:p><w:r><w:t>` + body + `</w:t></w:r></w:p></w:body></w:document>`,
		"word/_rels/document.xml.rels": `<?xml version="1.0"?><Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`,
	}
	for name, content := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create zip entry %s: %v", name, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("write zip entry %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func TestTextPreviewDocx(t *testing.T) {
	data := buildDocx(t, "Senior Go Engineer")

	text, err := TextPreview(context.Background(), data, "application/vnd.openxmlformats-officedocument.wordprocessingml.document", "cv.docx")
	if err != nil {
		t.Fatalf("extract docx: %v", err)
	}
	if !strings.Contains(text, "Senior Go Engineer") {
		t.Fatalf("preview missing document text, got %q", text)
	}
}

func TestTextPreviewZipMimeNormalizesToDocx(t *testing.T) {
	data := buildDocx(t, "hello")

	if _, err := TextPreview(context.Background(), data, "application/zip", "cv.docx"); err != nil {
		t.Fatalf("expected docx to extract from zip mime, got error: %v", err)
	}
}

func TestTextPreviewRejectsLegacyDoc(t *testing.T) {
	_, err := TextPreview(context.Background(), []byte{0xd0, 0xcf}, "application/msword", "cv.doc")
	if !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}

func TestTextPreviewRejectsUnknownMime(t *testing.T) {
	_, err := TextPreview(context.Background(), []byte("plain"), "text/plain", "cv.txt")
	if !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}

func TestTextPreviewTruncates(t *testing.T) {
	data := buildDocx(t, strings.Repeat("x", maxPreviewRunes+500))

	text, err := TextPreview(context.Background(), data, "application/zip", "cv.docx")
	if err != nil {
		t.Fatalf("extract docx: %v", err)
	}
	if got := len([]rune(text)); got != maxPreviewRunes {
		t.Fatalf("expected preview capped at %d runes, got %d", maxPreviewRunes, got)
	}
}
