package spansource

import (
	"strings"

	"github.com/docstruct/docstruct/internal/layout"
)

// Structured formats (docx, markdown, html) carry no font geometry, so we
// synthesize span styles from structural heading levels. The mapping keeps
// heading spans on the scale the classifiers were trained on: large bold
// text with little indentation for top levels, smaller and more indented
// further down.

const (
	linesPerPage  = 45
	lineHeight    = 14.0
	bodyLineWidth = 90 // chars per synthetic line, for page estimation
)

// synthStyle maps a structural level (0 = body text, -1 = document title)
// to synthetic (font size, bold, indentation).
func synthStyle(level int) (size float64, bold bool, indent float64) {
	switch {
	case level < 0:
		return 22, true, 0
	case level == 1:
		return 18, true, 0
	case level == 2:
		return 15, true, 12
	case level == 3:
		return 13, true, 24
	case level >= 4:
		return 12, true, 36
	}
	return 11, false, 0
}

// synthDoc accumulates spans with synthetic pagination: a new page starts
// whenever the estimated line count for the current one is exhausted.
type synthDoc struct {
	name  string
	pages []layout.Page
	line  int
}

func newSynthDoc(name string) *synthDoc {
	return &synthDoc{name: name}
}

// add appends one span at the given structural level, advancing the
// synthetic line cursor by the estimated number of rendered lines.
func (d *synthDoc) add(text string, level int) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	if len(d.pages) == 0 || d.line >= linesPerPage {
		d.pages = append(d.pages, layout.Page{Number: len(d.pages) + 1})
		d.line = 0
	}
	size, bold, indent := synthStyle(level)
	p := &d.pages[len(d.pages)-1]
	p.Spans = append(p.Spans, layout.Span{
		Text: text,
		Size: size,
		Bold: bold,
		X:    indent,
		Y:    float64(d.line) * lineHeight,
		Page: p.Number,
	})
	d.line += estimateLines(text)
}

func (d *synthDoc) document() *layout.Document {
	return &layout.Document{Name: d.name, Pages: d.pages}
}

func estimateLines(text string) int {
	lines := 0
	for _, l := range strings.Split(text, "\n") {
		lines += 1 + len(l)/bodyLineWidth
	}
	if lines < 1 {
		lines = 1
	}
	return lines
}
