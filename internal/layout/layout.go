package layout

// Span is a single styled text run as reported by a span source: one
// font/style on one line of one page.
type Span struct {
	Text string  // Trimmed run text
	Size float64 // Font size in points
	Bold bool    // Bold style flag
	X    float64 // Horizontal offset from the page content margin
	Y    float64 // Vertical position from the top of the page
	Page int     // 1-based page index
}

// Page is an ordered run of spans belonging to one page.
type Page struct {
	Number int
	Spans  []Span
}

// Document is the styled text of one source document in reading order.
type Document struct {
	Name  string // Base name of the source file
	Pages []Page
}

// Spans flattens the document into a single reading-order span sequence.
func (d *Document) Spans() []Span {
	var out []Span
	for _, p := range d.Pages {
		out = append(out, p.Spans...)
	}
	return out
}
