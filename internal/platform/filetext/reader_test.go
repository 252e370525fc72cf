package filetext

import (
	"archive/zip"
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestExtract_Text(t *testing.T) {
	for _, name := range []string{"notes.txt", "notes.md", "NOTES.TXT"} {
		got, err := Extract(name, strings.NewReader("take one tablet daily"))
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", name, err)
		}
		if got != "take one tablet daily" {
			t.Errorf("%s: unexpected text: %q", name, got)
		}
	}
}

func TestExtract_UnsupportedType(t *testing.T) {
	for _, name := range []string{"photo.png", "archive.zip", "noextension"} {
		_, err := Extract(name, strings.NewReader("data"))
		if !errors.Is(err, ErrUnsupportedType) {
			t.Errorf("%s: expected ErrUnsupportedType, got %v", name, err)
		}
	}
}

func TestExtract_EmptyDocument(t *testing.T) {
	_, err := Extract("empty.txt", strings.NewReader("   \n\t "))
	if !errors.Is(err, ErrEmptyDocument) {
		t.Errorf("expected ErrEmptyDocument, got %v", err)
	}
}

func TestExtract_InvalidUTF8(t *testing.T) {
	_, err := Extract("bad.txt", bytes.NewReader([]byte{0xff, 0xfe, 0xfd}))
	if err == nil {
		t.Error("expected error for invalid UTF-8")
	}
}

func docxWith(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	f, err := w.Create("word/document.xml")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.Write([]byte(documentXML)); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestExtract_DOCX(t *testing.T) {
	doc := `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>Aspirin 500mg.</w:t></w:r></w:p>
    <w:p><w:r><w:t>Take one tablet every 8 hours.</w:t></w:r></w:p>
  </w:body>
</w:document>`

	got, err := Extract("leaflet.docx", bytes.NewReader(docxWith(t, doc)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(got, "Aspirin 500mg.") || !strings.Contains(got, "every 8 hours") {
		t.Errorf("unexpected text: %q", got)
	}
}

func TestExtract_DOCX_MissingDocument(t *testing.T) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	f, _ := w.Create("word/styles.xml")
	f.Write([]byte("<styles/>"))
	w.Close()

	_, err := Extract("leaflet.docx", bytes.NewReader(buf.Bytes()))
	if err == nil || !strings.Contains(err.Error(), "document.xml") {
		t.Errorf("expected document.xml error, got %v", err)
	}
}

func TestExtract_DOCX_NotAnArchive(t *testing.T) {
	_, err := Extract("leaflet.docx", strings.NewReader("plain text, not a zip"))
	if err == nil {
		t.Error("expected error for a non-zip docx")
	}
}
