// Package extract turns résumé files into plain text.
package extract

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

// File reads path and returns its text based on the file extension.
func File(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}

	text, err := Bytes(data, filepath.Ext(path))
	if err != nil {
		return "", fmt.Errorf("extracting text from %s: %w", path, err)
	}
	return text, nil
}

// Bytes extracts text from data. ext is a file extension such as ".pdf".
func Bytes(data []byte, ext string) (string, error) {
	switch strings.ToLower(ext) {
	case ".txt", ".md", ".text", "":
		return strings.TrimSpace(string(data)), nil
	case ".pdf":
		return fromPDF(data)
	case ".docx":
		return fromDOCX(data)
	default:
		return "", fmt.Errorf("unsupported file type %q", ext)
	}
}

func fromPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("read pdf: %w", err)
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("pdf text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", fmt.Errorf("pdf text: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}

func fromDOCX(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("parse docx: %w", err)
	}
	defer doc.Close()

	return strings.TrimSpace(stripTags(doc.Editable().GetContent())), nil
}

// stripTags reduces WordprocessingML to its text, one paragraph per line.
func stripTags(content string) string {
	var out strings.Builder
	inTag := false
	var tag strings.Builder

	for _, r := range content {
		switch {
		case r == '<':
			inTag = true
			tag.Reset()
		case r == '>' && inTag:
			inTag = false
			if name := tag.String(); name == "/w:p" || strings.HasPrefix(name, "w:br") {
				out.WriteByte('\n')
			}
		case inTag:
			tag.WriteRune(r)
		default:
			out.WriteRune(r)
		}
	}

	return out.String()
}
