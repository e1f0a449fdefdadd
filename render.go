package report

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"html/template"
	"path"
	"strings"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	highlighting "github.com/yuin/goldmark-highlighting/v2"

	"github.com/alnah/go-report/internal/assets"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"
)

// docElement is the decoded form of one intermediate-document element.
// The terminal HTML stages consume the serialized document, not the
// in-memory tree, so the rendition always reflects exactly what was
// serialized (references included).
type docElement struct {
	XMLName  xml.Name
	Columns  int          `xml:"columns,attr"`
	Language string       `xml:"language,attr"`
	Src      string       `xml:"src,attr"`
	Type     string       `xml:"type,attr"`
	Anchor   string       `xml:"anchor,attr"`
	Content  string       `xml:",chardata"`
	Children []docElement `xml:",any"`
}

// parseDocument decodes the intermediate XML document.
func parseDocument(doc string) (*docElement, error) {
	var root docElement
	if err := xml.Unmarshal([]byte(doc), &root); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDocumentParse, err)
	}
	if root.XMLName.Local != "View" {
		return nil, fmt.Errorf("%w: unexpected root element %q", ErrDocumentParse, root.XMLName.Local)
	}
	return &root, nil
}

// collectRefs gathers every Media src reference in the document, in
// document order, deduplicated.
func collectRefs(el *docElement, seen map[string]bool, out *[]string) {
	if el.XMLName.Local == "Media" && el.Src != "" && !seen[el.Src] {
		seen[el.Src] = true
		*out = append(*out, el.Src)
	}
	for i := range el.Children {
		collectRefs(&el.Children[i], seen, out)
	}
}

// documentRefs returns the distinct asset references a document embeds.
func documentRefs(doc string) ([]string, error) {
	root, err := parseDocument(doc)
	if err != nil {
		return nil, err
	}
	var refs []string
	collectRefs(root, make(map[string]bool), &refs)
	return refs, nil
}

// renderer turns an intermediate document into the final HTML page.
// One renderer serves a single pipeline run; construction is cheap.
type renderer struct {
	md    goldmark.Markdown
	shell *template.Template

	// assetPrefix is joined onto non-inline references ("assets" for
	// file-based export). Data-URI references are used verbatim.
	assetPrefix string
}

// newRenderer builds the markdown converter and parses the embedded
// shell template. Mirrors the goldmark setup used for report prose:
// GFM tables/strikethrough/autolinks, footnotes, and chroma-backed
// syntax highlighting for fenced code.
func newRenderer(assetPrefix string) (*renderer, error) {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Footnote,
			highlighting.NewHighlighting(
				highlighting.WithStyle("github"),
				highlighting.WithFormatOptions(
					chromahtml.TabWidth(4),
				),
			),
		),
		goldmark.WithRendererOptions(
			goldmarkhtml.WithXHTML(),
		),
	)

	shellHTML, err := assets.LoadTemplate("report")
	if err != nil {
		return nil, fmt.Errorf("loading shell template: %w", err)
	}
	shell, err := template.New("report").Parse(shellHTML)
	if err != nil {
		return nil, fmt.Errorf("parsing shell template: %w", err)
	}

	return &renderer{md: md, shell: shell, assetPrefix: assetPrefix}, nil
}

// shellData feeds the embedded HTML shell template.
type shellData struct {
	Title string
	Style template.CSS
	Body  template.HTML
}

// RenderPage renders the document body and wraps it in the HTML shell
// with the base stylesheet plus formatting-derived CSS.
func (r *renderer) RenderPage(doc, name string, f *Formatting) (string, error) {
	root, err := parseDocument(doc)
	if err != nil {
		return "", err
	}

	var body strings.Builder
	if err := r.renderElement(&body, root); err != nil {
		return "", err
	}

	baseCSS, err := assets.LoadStyle("report")
	if err != nil {
		return "", fmt.Errorf("loading base style: %w", err)
	}

	var page bytes.Buffer
	data := shellData{
		Title: name,
		Style: template.CSS(baseCSS + "\n" + f.ToCSS()), // #nosec G203 -- embedded stylesheet plus validated formatting values
		Body:  template.HTML(body.String()),             // #nosec G203 -- built from escaped markdown output and registered refs
	}
	if err := r.shell.Execute(&page, data); err != nil {
		return "", fmt.Errorf("rendering shell: %w", err)
	}
	return page.String(), nil
}

// renderElement emits the HTML rendition of one document element.
func (r *renderer) renderElement(sb *strings.Builder, el *docElement) error {
	switch el.XMLName.Local {
	case "View", "Group":
		class := "report-group"
		if el.Columns > 1 {
			class += fmt.Sprintf(" report-columns-%d", el.Columns)
		}
		fmt.Fprintf(sb, `<div class="%s" id="%s">`, class, template.HTMLEscapeString(el.Anchor))
		for i := range el.Children {
			if err := r.renderElement(sb, &el.Children[i]); err != nil {
				return err
			}
		}
		sb.WriteString("</div>")

	case "Text":
		fmt.Fprintf(sb, `<div class="report-text" id="%s">`, template.HTMLEscapeString(el.Anchor))
		if err := r.renderMarkdown(sb, el.Content); err != nil {
			return err
		}
		sb.WriteString("</div>")

	case "Code":
		fmt.Fprintf(sb, `<div class="report-code" id="%s">`, template.HTMLEscapeString(el.Anchor))
		fence := codeFence(el.Content)
		block := fence + el.Language + "\n" + strings.TrimRight(el.Content, "\n") + "\n" + fence
		if err := r.renderMarkdown(sb, block); err != nil {
			return err
		}
		sb.WriteString("</div>")

	case "HTML":
		// Raw fragment by contract; callers own its safety.
		fmt.Fprintf(sb, `<div class="report-html" id="%s">`, template.HTMLEscapeString(el.Anchor))
		sb.WriteString(el.Content)
		sb.WriteString("</div>")

	case "Media":
		r.renderMedia(sb, el)

	default:
		return fmt.Errorf("%w: unknown element %q", ErrDocumentParse, el.XMLName.Local)
	}
	return nil
}

// codeFence returns a backtick fence longer than any backtick run in
// content, so content containing fences of its own cannot terminate the
// block early.
func codeFence(content string) string {
	longest, run := 0, 0
	for _, r := range content {
		if r == '`' {
			run++
			if run > longest {
				longest = run
			}
		} else {
			run = 0
		}
	}
	n := longest + 1
	if n < 3 {
		n = 3
	}
	return strings.Repeat("`", n)
}

// renderMarkdown converts markdown content to HTML into the builder.
func (r *renderer) renderMarkdown(sb *strings.Builder, content string) error {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(content), &buf); err != nil {
		return fmt.Errorf("rendering markdown: %w", err)
	}
	sb.WriteString(buf.String())
	return nil
}

// renderMedia emits an <img> for image payloads and a download link for
// everything else. The src is exactly the registered reference, with the
// asset prefix joined for non-inline refs.
func (r *renderer) renderMedia(sb *strings.Builder, el *docElement) {
	src := r.srcFor(el.Src)
	anchor := template.HTMLEscapeString(el.Anchor)
	if strings.HasPrefix(el.Type, "image/") {
		fmt.Fprintf(sb, `<figure class="report-media" id="%s"><img src="%s" alt=""/></figure>`,
			anchor, template.HTMLEscapeString(src))
		return
	}
	fmt.Fprintf(sb, `<a class="report-media" id="%s" href="%s" download>Download attachment (%s)</a>`,
		anchor, template.HTMLEscapeString(src), template.HTMLEscapeString(el.Type))
}

// srcFor resolves a document reference to the URL used in the page.
func (r *renderer) srcFor(ref string) string {
	if strings.HasPrefix(ref, "data:") || r.assetPrefix == "" {
		return ref
	}
	return path.Join(r.assetPrefix, ref)
}
