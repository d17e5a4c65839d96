package feature

import (
	"math"
	"sort"
	"strings"

	"github.com/docstruct/docstruct/internal/layout"
)

// Block is one or more spans merged into a single candidate text unit.
type Block struct {
	Text    string
	AvgSize float64 // Mean font size across constituent spans
	Bold    bool    // True if any constituent span is bold
	X       float64 // First span's horizontal offset
	Y       float64 // First span's vertical position
	Page    int     // First span's page
}

// Vector is the fixed feature representation of a Block, on the raw scale
// the models were trained on.
type Vector struct {
	AvgSize      float64
	IsBold       float64 // 0 or 1
	XIndentation float64
	PageNum      float64
}

// Values returns the vector in model feature order.
func (v Vector) Values() []float64 {
	return []float64{v.AvgSize, v.IsBold, v.XIndentation, v.PageNum}
}

// sameLineTolerance is the Y distance within which two spans count as one
// line; wrapGapFactor bounds the line gap (relative to font size) across
// which a soft wrap still merges.
const (
	sameLineTolerance = 2.5
	wrapGapFactor     = 1.6
)

// Extract merges a document's spans into blocks and computes one feature
// vector per block. Malformed spans are dropped, never fatal.
func Extract(doc *layout.Document) ([]Block, []Vector) {
	blocks := Merge(doc.Spans())
	vectors := make([]Vector, len(blocks))
	for i, b := range blocks {
		vectors[i] = Vectorize(b)
	}
	return blocks, vectors
}

// Merge folds adjacent same-style, vertically contiguous spans on one page
// into single blocks. This joins soft line-wraps the source parser splits.
func Merge(spans []layout.Span) []Block {
	valid := make([]layout.Span, 0, len(spans))
	for _, s := range spans {
		if !validSpan(s) {
			continue
		}
		s.Text = strings.TrimSpace(s.Text)
		valid = append(valid, s)
	}
	sort.SliceStable(valid, func(i, j int) bool {
		if valid[i].Page != valid[j].Page {
			return valid[i].Page < valid[j].Page
		}
		if valid[i].Y != valid[j].Y {
			return valid[i].Y < valid[j].Y
		}
		return valid[i].X < valid[j].X
	})

	var blocks []Block
	var group []layout.Span
	flush := func() {
		if len(group) > 0 {
			blocks = append(blocks, buildBlock(group))
			group = nil
		}
	}
	for _, s := range valid {
		if len(group) > 0 && !mergeable(group[len(group)-1], s) {
			flush()
		}
		group = append(group, s)
	}
	flush()
	return blocks
}

// Vectorize computes the 4-dim feature vector for a block.
func Vectorize(b Block) Vector {
	v := Vector{
		AvgSize:      b.AvgSize,
		XIndentation: b.X,
		PageNum:      float64(b.Page),
	}
	if b.Bold {
		v.IsBold = 1
	}
	return v
}

func validSpan(s layout.Span) bool {
	return strings.TrimSpace(s.Text) != "" && s.Size > 0 && s.X >= 0 && s.Page >= 1
}

func mergeable(prev, next layout.Span) bool {
	if next.Page != prev.Page || next.Bold != prev.Bold || next.Size != prev.Size {
		return false
	}
	gap := next.Y - prev.Y
	if math.Abs(gap) <= sameLineTolerance {
		return true
	}
	return gap > 0 && gap <= prev.Size*wrapGapFactor
}

func buildBlock(group []layout.Span) Block {
	b := Block{
		X:    group[0].X,
		Y:    group[0].Y,
		Page: group[0].Page,
	}
	var sb strings.Builder
	var sizeSum float64
	for i, s := range group {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(s.Text)
		sizeSum += s.Size
		if s.Bold {
			b.Bold = true
		}
	}
	b.Text = sb.String()
	b.AvgSize = sizeSum / float64(len(group))
	return b
}
