package spansource

import (
	"fmt"
	"strings"
	"testing"
)

func TestForFile_Dispatch(t *testing.T) {
	cases := []struct {
		filename string
		want     string
	}{
		{"doc.pdf", "*spansource.PDFSource"},
		{"doc.PDF", "*spansource.PDFSource"},
		{"doc.docx", "*spansource.DOCXSource"},
		{"doc.md", "*spansource.MarkdownSource"},
		{"doc.markdown", "*spansource.MarkdownSource"},
		{"doc.html", "*spansource.HTMLSource"},
		{"doc.htm", "*spansource.HTMLSource"},
	}
	for _, tc := range cases {
		src, err := ForFile(tc.filename)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.filename, err)
		}
		got := fmt.Sprintf("%T", src)
		if got != tc.want {
			t.Errorf("%s: expected %s, got %s", tc.filename, tc.want, got)
		}
	}
}

func TestForFile_Unsupported(t *testing.T) {
	for _, name := range []string{"doc.txt", "doc.csv", "doc", "archive.zip"} {
		if _, err := ForFile(name); err == nil {
			t.Errorf("%s: expected error for unsupported extension", name)
		}
	}
}

func TestIsSupportedExtension(t *testing.T) {
	if !IsSupportedExtension("report.pdf") {
		t.Error("expected .pdf to be supported")
	}
	if IsSupportedExtension("notes.txt") {
		t.Error("expected .txt to be unsupported")
	}
}

func TestBaseName(t *testing.T) {
	if got := baseName("dir/report.pdf"); got != "report" {
		t.Errorf("expected %q, got %q", "report", got)
	}
	if got := baseName("noext"); got != "noext" {
		t.Errorf("expected %q, got %q", "noext", got)
	}
}

func TestPDFSource_CorruptInputFails(t *testing.T) {
	s := &PDFSource{}
	if _, err := s.Load(strings.NewReader("not a pdf at all"), "broken.pdf"); err == nil {
		t.Error("expected load error for corrupt pdf")
	}
}
