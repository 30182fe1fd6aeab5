package extract

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFilePlainText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resume.txt")
	if err := os.WriteFile(path, []byte("\n  Senior Go developer\n"), 0o600); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	text, err := File(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "Senior Go developer" {
		t.Fatalf("unexpected text: %q", text)
	}
}

func TestBytesRejectsUnknownExtension(t *testing.T) {
	if _, err := Bytes([]byte("x"), ".odt"); err == nil {
		t.Fatal("expected error for unsupported type")
	}
}

func TestBytesRejectsBrokenPDF(t *testing.T) {
	if _, err := Bytes([]byte("not a pdf"), ".PDF"); err == nil {
		t.Fatal("expected error for broken pdf")
	}
}

func TestStripTags(t *testing.T) {
	xml := `<w:p><w:r><w:t>Go</w:t></w:r></w:p><w:p><w:r><w:t>Kubernetes</w:t><w:br/><w:t>Helm</w:t></w:r></w:p>`
	if got := stripTags(xml); got != "Go\nKubernetes\nHelm\n" {
		t.Fatalf("unexpected text: %q", got)
	}
}
