package report

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
)

// blockKind discriminates normalized tree nodes.
type blockKind int

const (
	kindGroup blockKind = iota
	kindText
	kindCode
	kindHTML
	kindMedia
)

// node is the normalized internal form of a block. PreProcessView builds
// this copy so the caller's tree stays untouched.
type node struct {
	kind     blockKind
	anchor   string
	content  string
	language string
	data     []byte
	mime     string
	columns  int
	children []*node
}

// PreProcessView validates the block tree and normalizes it into the
// state's internal form: whitespace-only Text blocks are dropped and
// every surviving node gets a stable document-order anchor usable as a
// serialization target. Fails with ErrInvalidBlock naming the offending
// node's path, or ErrEmptyView if nothing renderable remains.
func PreProcessView(s *ViewState) (*ViewState, error) {
	if s.blocks == nil {
		return nil, ErrEmptyView
	}

	root, err := normalizeGroup(s.blocks, "/View")
	if err != nil {
		return nil, err
	}
	if len(root.children) == 0 {
		return nil, ErrEmptyView
	}

	counter := 0
	assignAnchors(root, &counter)
	s.root = root
	return s, nil
}

// normalizeGroup converts a Group and its subtree, validating each block
// along the way. path identifies the group for error messages.
func normalizeGroup(g *Group, path string) (*node, error) {
	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	n := &node{kind: kindGroup, columns: g.Columns}
	for i, b := range g.Blocks {
		if b == nil {
			return nil, fmt.Errorf("%s/[%d]: %w: nil block", path, i, ErrInvalidBlock)
		}

		childPath := fmt.Sprintf("%s/%s[%d]", path, blockName(b), i)
		switch b := b.(type) {
		case *Group:
			child, err := normalizeGroup(b, childPath)
			if err != nil {
				return nil, err
			}
			n.children = append(n.children, child)
		case *Text:
			if strings.TrimSpace(b.Content) == "" {
				continue // nothing to render
			}
			n.children = append(n.children, &node{kind: kindText, content: b.Content})
		case *Code:
			if err := b.Validate(); err != nil {
				return nil, fmt.Errorf("%s: %w", childPath, err)
			}
			n.children = append(n.children, &node{kind: kindCode, content: b.Content, language: b.Language})
		case *HTML:
			if err := b.Validate(); err != nil {
				return nil, fmt.Errorf("%s: %w", childPath, err)
			}
			n.children = append(n.children, &node{kind: kindHTML, content: b.Content})
		case *Media:
			if err := b.Validate(); err != nil {
				return nil, fmt.Errorf("%s: %w", childPath, err)
			}
			n.children = append(n.children, &node{kind: kindMedia, data: b.Data, mime: b.MIME})
		default:
			return nil, fmt.Errorf("%s: %w: unsupported block type %T", childPath, ErrInvalidBlock, b)
		}
	}
	return n, nil
}

// blockName returns the element name used for a block in paths and in
// the serialized document.
func blockName(b Block) string {
	switch b.(type) {
	case *Group:
		return "Group"
	case *Text:
		return "Text"
	case *Code:
		return "Code"
	case *HTML:
		return "HTML"
	case *Media:
		return "Media"
	default:
		return "Block"
	}
}

// assignAnchors numbers nodes in document order (pre-order), giving each
// a stable identifier independent of content.
func assignAnchors(n *node, counter *int) {
	*counter++
	n.anchor = "block-" + strconv.Itoa(*counter)
	for _, c := range n.children {
		assignAnchors(c, counter)
	}
}

// ConvertXML serializes the normalized tree depth-first in document
// order into the intermediate XML document, registering every media
// payload with the state's file store and embedding the returned
// reference in its place. Serializing the same normalized tree twice
// with the same strategy yields byte-identical output: attributes are
// written in fixed order and asset names are content-addressed. The
// first registration failure aborts the conversion; no partial document
// is kept.
func ConvertXML(s *ViewState) (*ViewState, error) {
	if s.root == nil {
		return nil, fmt.Errorf("%w: view has not been preprocessed", ErrInvalidBlock)
	}

	var sb strings.Builder
	sb.WriteString(xml.Header)
	if err := writeNode(&sb, s.root, "View", s.store); err != nil {
		return nil, err
	}
	s.Document = sb.String()
	return s, nil
}

// writeNode emits one element and its subtree. The root group is
// emitted as <View>, nested groups as <Group>.
func writeNode(sb *strings.Builder, n *node, name string, store *FileStore) error {
	switch n.kind {
	case kindGroup:
		sb.WriteString("<" + name)
		if n.columns > 0 {
			sb.WriteString(` columns="` + strconv.Itoa(n.columns) + `"`)
		}
		writeAnchor(sb, n)
		sb.WriteString(">")
		for _, c := range n.children {
			if err := writeNode(sb, c, "Group", store); err != nil {
				return err
			}
		}
		sb.WriteString("</" + name + ">")

	case kindText:
		writeTextElement(sb, "Text", "", n)

	case kindCode:
		writeTextElement(sb, "Code", n.language, n)

	case kindHTML:
		writeTextElement(sb, "HTML", "", n)

	case kindMedia:
		ref, err := store.Register(n.data, n.mime)
		if err != nil {
			return err
		}
		sb.WriteString(`<Media src="`)
		writeEscaped(sb, ref)
		sb.WriteString(`" type="`)
		writeEscaped(sb, n.mime)
		sb.WriteString(`"`)
		writeAnchor(sb, n)
		sb.WriteString("/>")
	}
	return nil
}

// writeTextElement emits a content-bearing element with optional
// language attribute.
func writeTextElement(sb *strings.Builder, name, language string, n *node) {
	sb.WriteString("<" + name)
	if language != "" {
		sb.WriteString(` language="`)
		writeEscaped(sb, language)
		sb.WriteString(`"`)
	}
	writeAnchor(sb, n)
	sb.WriteString(">")
	writeEscaped(sb, n.content)
	sb.WriteString("</" + name + ">")
}

func writeAnchor(sb *strings.Builder, n *node) {
	sb.WriteString(` anchor="`)
	writeEscaped(sb, n.anchor)
	sb.WriteString(`"`)
}

// writeEscaped XML-escapes s into the builder. xml.EscapeText cannot
// fail on a strings.Builder.
func writeEscaped(sb *strings.Builder, s string) {
	_ = xml.EscapeText(sb, []byte(s))
}
