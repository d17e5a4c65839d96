package spansource

import (
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strings"

	"github.com/docstruct/docstruct/internal/layout"
	pdflib "github.com/ledongthuc/pdf"
)

// PDFSource reads styled text runs from PDF pages.
type PDFSource struct{}

// rowTolerance is the Y distance (points) within which character runs are
// treated as sitting on the same line.
const rowTolerance = 2.5

func (s *PDFSource) Load(r io.Reader, filename string) (*layout.Document, error) {
	// ledongthuc/pdf requires a ReadSeeker+size, so we write to a temp file.
	tmp, err := os.CreateTemp("", "docstruct-pdf-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()

	f, reader, err := pdflib.Open(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	doc := &layout.Document{Name: baseName(filename)}
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		spans := pageSpans(page.Content().Text, i)
		if len(spans) == 0 {
			continue
		}
		doc.Pages = append(doc.Pages, layout.Page{Number: i, Spans: spans})
	}
	return doc, nil
}

// pageSpans groups raw character runs into line spans: runs on the same
// row that share font size and weight merge into one span, with spaces
// inserted at word-sized horizontal gaps.
func pageSpans(texts []pdflib.Text, pageNum int) []layout.Span {
	runs := make([]pdflib.Text, 0, len(texts))
	var pageTop float64
	for _, t := range texts {
		if strings.TrimSpace(t.S) == "" {
			continue
		}
		if t.Y > pageTop {
			pageTop = t.Y
		}
		runs = append(runs, t)
	}
	if len(runs) == 0 {
		return nil
	}

	// PDF Y grows upward; convert to top-down positions so reading order
	// is ascending.
	for i := range runs {
		runs[i].Y = pageTop - runs[i].Y
	}

	sort.SliceStable(runs, func(i, j int) bool {
		if math.Abs(runs[i].Y-runs[j].Y) > rowTolerance {
			return runs[i].Y < runs[j].Y
		}
		return runs[i].X < runs[j].X
	})

	var spans []layout.Span
	var cur *layout.Span
	var lastEnd float64
	var sb strings.Builder

	flush := func() {
		if cur == nil {
			return
		}
		cur.Text = strings.TrimSpace(sb.String())
		if cur.Text != "" {
			spans = append(spans, *cur)
		}
		cur = nil
		sb.Reset()
	}

	for _, t := range runs {
		size := math.Round(t.FontSize)
		bold := isBoldFont(t.Font)
		sameLine := cur != nil && math.Abs(t.Y-cur.Y) <= rowTolerance
		if sameLine && size == cur.Size && bold == cur.Bold {
			if t.X-lastEnd > wordGap(t.FontSize) {
				sb.WriteByte(' ')
			}
			sb.WriteString(t.S)
		} else {
			flush()
			cur = &layout.Span{Size: size, Bold: bold, X: t.X, Y: t.Y, Page: pageNum}
			sb.WriteString(t.S)
		}
		lastEnd = t.X + t.W
	}
	flush()
	return spans
}

// wordGap returns the horizontal gap beyond which two runs on one line are
// separate words.
func wordGap(fontSize float64) float64 {
	if fontSize <= 0 {
		return 1.0
	}
	return fontSize * 0.3
}

func isBoldFont(font string) bool {
	f := strings.ToLower(font)
	return strings.Contains(f, "bold") || strings.Contains(f, "black") || strings.Contains(f, "heavy")
}
