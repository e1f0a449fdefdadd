package report

import (
	"fmt"
	"strings"
)

// Block is a node in the content tree being compiled. Implementations are
// Group, Text, Code, HTML, and Media. The tree is read-only from the
// pipeline's perspective; normalization works on an internal copy.
type Block interface {
	// Validate checks the block's own fields. Tree-level rules (nil
	// children, empty views) are checked during preprocessing.
	Validate() error

	blockNode()
}

// Group is a container of blocks rendered in document order. Columns > 1
// lays children out side by side in the HTML rendition; 0 means a single
// column.
type Group struct {
	Blocks  []Block
	Columns int
}

// Text holds markdown content, rendered to HTML at export time.
type Text struct {
	Content string
}

// Code holds source code highlighted at export time. Language is a
// chroma lexer name ("go", "python", ...); empty means plain text.
type Code struct {
	Content  string
	Language string
}

// HTML holds a raw HTML fragment passed through to the rendition as-is.
// Callers are responsible for the fragment's safety.
type HTML struct {
	Content string
}

// Media holds an embeddable binary payload. It is the only block kind
// that registers with the FileStore during serialization; the document
// embeds the returned reference instead of the raw bytes.
type Media struct {
	Data []byte
	MIME string
}

// NewView builds a root group from the given blocks.
func NewView(blocks ...Block) *Group {
	return &Group{Blocks: blocks}
}

func (g *Group) blockNode() {}
func (t *Text) blockNode()  {}
func (c *Code) blockNode()  {}
func (h *HTML) blockNode()  {}
func (m *Media) blockNode() {}

// Validate checks that the group has a non-negative column count.
// Child validation happens during preprocessing, which can name the
// offending node's path.
func (g *Group) Validate() error {
	if g.Columns < 0 {
		return fmt.Errorf("%w: negative column count %d", ErrInvalidBlock, g.Columns)
	}
	return nil
}

// Validate accepts any text content, including empty (dropped during
// normalization).
func (t *Text) Validate() error { return nil }

func (c *Code) Validate() error {
	if strings.TrimSpace(c.Content) == "" {
		return fmt.Errorf("%w: code block cannot be empty", ErrInvalidBlock)
	}
	return nil
}

func (h *HTML) Validate() error {
	if strings.TrimSpace(h.Content) == "" {
		return fmt.Errorf("%w: html block cannot be empty", ErrInvalidBlock)
	}
	return nil
}

// Validate checks that the media payload is present and carries a usable
// MIME type.
func (m *Media) Validate() error {
	if len(m.Data) == 0 {
		return fmt.Errorf("%w: media block has no data", ErrInvalidBlock)
	}
	if !isValidMIME(m.MIME) {
		return fmt.Errorf("%w: media block has invalid MIME type %q", ErrInvalidBlock, m.MIME)
	}
	return nil
}

// isValidMIME checks the "type/subtype" shape without maintaining a
// registry; unknown but well-formed types fall back to a generic
// extension during asset naming.
func isValidMIME(mime string) bool {
	major, minor, ok := strings.Cut(mime, "/")
	return ok && major != "" && minor != "" && !strings.ContainsAny(mime, " \t\n")
}
