package outline

import (
	"sort"

	"github.com/docstruct/docstruct/internal/feature"
	"github.com/docstruct/docstruct/internal/model"
)

// Assemble resolves the title and builds the ordered, deduplicated outline
// from classified blocks. It is a pure policy function: no I/O, and it
// never fails — malformed intermediates degrade to an empty record.
func Assemble(cands []Candidate) Record {
	rec := Fallback()

	title, fromTitleBlock := resolveTitle(cands)
	rec.Title = title

	headings := collectHeadings(cands)
	sort.SliceStable(headings, func(i, j int) bool {
		if headings[i].Block.Page != headings[j].Block.Page {
			return headings[i].Block.Page < headings[j].Block.Page
		}
		return headings[i].Block.Y < headings[j].Block.Y
	})

	for _, h := range headings {
		entry := Entry{Level: h.Level, Text: h.Block.Text, Page: h.Block.Page}
		if n := len(rec.Outline); n > 0 {
			prev := rec.Outline[n-1]
			// Duplicates from span-merge boundaries: same text on the
			// same page collapses to the first occurrence, whether or
			// not the levels agree.
			if prev.Text == entry.Text && prev.Page == entry.Page {
				continue
			}
		}
		rec.Outline = append(rec.Outline, entry)
	}

	// A heading that restates a model-predicted title is a duplication
	// artifact; a fallback-derived title legitimately names the first
	// heading and must not swallow it.
	if fromTitleBlock && title != "" && len(rec.Outline) > 0 && rec.Outline[0].Text == title {
		rec.Outline = rec.Outline[1:]
	}
	return rec
}

// resolveTitle picks the document title. With one or more Title-labeled
// blocks, the earliest in reading order wins and the rest are dropped.
// With none, the largest block on the first page is used; an empty first
// page yields an empty title. The boolean reports whether the title came
// from a Title-labeled block.
func resolveTitle(cands []Candidate) (string, bool) {
	var best *feature.Block
	for i := range cands {
		if cands[i].Type != model.BlockTitle {
			continue
		}
		b := &cands[i].Block
		if best == nil || earlier(b, best) {
			best = b
		}
	}
	if best != nil {
		return best.Text, true
	}

	// Fallback: largest font on page 1, earliest vertical position on ties.
	for i := range cands {
		b := &cands[i].Block
		if b.Page != 1 {
			continue
		}
		if best == nil || b.AvgSize > best.AvgSize ||
			(b.AvgSize == best.AvgSize && b.Y < best.Y) {
			best = b
		}
	}
	if best != nil {
		return best.Text, false
	}
	return "", false
}

func earlier(a, b *feature.Block) bool {
	if a.Page != b.Page {
		return a.Page < b.Page
	}
	return a.Y < b.Y
}

func collectHeadings(cands []Candidate) []Candidate {
	var out []Candidate
	for _, c := range cands {
		if c.Type != model.BlockHeading {
			continue
		}
		if c.Block.Text == "" || c.Block.Page < 1 {
			continue
		}
		switch c.Level {
		case model.H1, model.H2, model.H3:
			out = append(out, c)
		}
	}
	return out
}
