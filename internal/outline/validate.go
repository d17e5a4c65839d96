package outline

import (
	"fmt"
	"strings"

	"github.com/docstruct/docstruct/internal/model"
)

// Validate checks a record against the output invariants: every entry has
// a known level, non-empty text and a page ≥ 1; entries appear in page
// order; no two adjacent entries are identical.
func Validate(rec Record) error {
	if rec.Outline == nil {
		return fmt.Errorf("outline must be an empty list, not absent")
	}
	for i, e := range rec.Outline {
		switch e.Level {
		case model.H1, model.H2, model.H3:
		default:
			return fmt.Errorf("entry %d: invalid level %d", i, int(e.Level))
		}
		if strings.TrimSpace(e.Text) == "" {
			return fmt.Errorf("entry %d: empty text", i)
		}
		if e.Page < 1 {
			return fmt.Errorf("entry %d: page %d < 1", i, e.Page)
		}
		if i == 0 {
			continue
		}
		prev := rec.Outline[i-1]
		if e.Page < prev.Page {
			return fmt.Errorf("entry %d: page %d precedes page %d", i, e.Page, prev.Page)
		}
		if e == prev {
			return fmt.Errorf("entry %d: duplicate of previous entry", i)
		}
	}
	return nil
}
