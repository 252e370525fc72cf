// Package filetext extracts plain text from uploaded documents so it can be
// fed to the AI gateway. Format dispatch is by file extension only; the
// caller is expected to pass the original upload filename.
package filetext

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/beevik/etree"
	"github.com/ledongthuc/pdf"
)

var (
	// ErrUnsupportedType is returned for extensions with no reader.
	ErrUnsupportedType = errors.New("filetext: unsupported file type")
	// ErrEmptyDocument is returned when extraction yields no text at all.
	ErrEmptyDocument = errors.New("filetext: document contains no text")
)

// Extract reads the whole document and returns its text content. Supported
// extensions: .pdf, .docx, .txt, .md.
func Extract(filename string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		return "", fmt.Errorf("%w: %q has no extension", ErrUnsupportedType, filename)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}

	var text string
	switch ext {
	case ".pdf":
		text, err = readPDF(data)
	case ".docx":
		text, err = readDOCX(data)
	case ".txt", ".md":
		text, err = readText(data)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, ext)
	}
	if err != nil {
		return "", err
	}

	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyDocument
	}
	return text, nil
}

func readPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			continue // skip pages that fail to decode, keep the rest
		}
		if sb.Len() > 0 && content != "" {
			sb.WriteByte(' ')
		}
		sb.WriteString(content)
	}
	return sb.String(), nil
}

// readDOCX pulls the text runs out of word/document.xml. A .docx file is a
// zip archive; the document body is WordprocessingML where visible text
// lives in <w:t> elements.
func readDOCX(data []byte) (string, error) {
	archive, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open docx archive: %w", err)
	}

	var docXML []byte
	for _, f := range archive.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("open document.xml: %w", err)
		}
		docXML, err = io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return "", fmt.Errorf("read document.xml: %w", err)
		}
		break
	}
	if docXML == nil {
		return "", fmt.Errorf("docx archive has no word/document.xml")
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(docXML); err != nil {
		return "", fmt.Errorf("parse document.xml: %w", err)
	}

	var parts []string
	var walk func(el *etree.Element)
	walk = func(el *etree.Element) {
		if el.Tag == "t" {
			parts = append(parts, el.Text())
		}
		for _, child := range el.ChildElements() {
			walk(child)
		}
	}
	if root := doc.Root(); root != nil {
		walk(root)
	}
	return strings.Join(parts, " "), nil
}

func readText(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", fmt.Errorf("text file is not valid UTF-8")
	}
	return string(data), nil
}
