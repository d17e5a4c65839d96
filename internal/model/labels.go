package model

import "fmt"

// BlockType is the stage-1 classification of a text block.
type BlockType int

const (
	BlockOther BlockType = iota
	BlockTitle
	BlockHeading
)

func (t BlockType) String() string {
	switch t {
	case BlockTitle:
		return "Title"
	case BlockHeading:
		return "Heading"
	case BlockOther:
		return "Other"
	}
	return fmt.Sprintf("BlockType(%d)", int(t))
}

// ParseBlockType maps a label-encoder class name to a BlockType. The
// training labels use "Title", "heading" and "other"; matching is
// case-insensitive on the first letter forms used there.
func ParseBlockType(s string) (BlockType, error) {
	switch s {
	case "Title", "title":
		return BlockTitle, nil
	case "Heading", "heading":
		return BlockHeading, nil
	case "Other", "other", "body_text":
		return BlockOther, nil
	}
	return BlockOther, fmt.Errorf("unknown block label %q", s)
}

// Level is the stage-2 heading depth.
type Level int

const (
	H1 Level = iota + 1
	H2
	H3
)

func (l Level) String() string {
	switch l {
	case H1:
		return "H1"
	case H2:
		return "H2"
	case H3:
		return "H3"
	}
	return fmt.Sprintf("Level(%d)", int(l))
}

// ParseLevel maps a label-encoder class name to a Level.
func ParseLevel(s string) (Level, error) {
	switch s {
	case "H1", "h1":
		return H1, nil
	case "H2", "h2":
		return H2, nil
	case "H3", "h3":
		return H3, nil
	}
	return 0, fmt.Errorf("unknown level label %q", s)
}

// MarshalJSON emits the level as its wire name ("H1", "H2", "H3").
func (l Level) MarshalJSON() ([]byte, error) {
	switch l {
	case H1, H2, H3:
		return []byte(`"` + l.String() + `"`), nil
	}
	return nil, fmt.Errorf("cannot marshal invalid level %d", int(l))
}

// UnmarshalJSON parses a wire-format level name.
func (l *Level) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("invalid level value %s", string(data))
	}
	v, err := ParseLevel(string(data[1 : len(data)-1]))
	if err != nil {
		return err
	}
	*l = v
	return nil
}
