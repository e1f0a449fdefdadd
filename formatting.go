package report

import (
	"fmt"
	"regexp"
	"strings"
)

// Report width constants.
const (
	WidthNarrow = "narrow"
	WidthMedium = "medium"
	WidthFull   = "full"
)

// Text alignment constants.
const (
	AlignLeft    = "left"
	AlignRight   = "right"
	AlignCenter  = "center"
	AlignJustify = "justify"
)

// Font choice constants.
const (
	FontDefault   = "default"
	FontSerif     = "serif"
	FontMonospace = "monospace"
)

// Formatting sets the basic report styling. A nil *Formatting means all
// defaults. It is threaded explicitly from the top-level operation into
// the terminal stage; no stage consults ambient configuration.
type Formatting struct {
	Width         string // "narrow", "medium", "full" (default: "medium")
	AccentColor   string // CSS hex color (default: "#4E46E5")
	BGColor       string // CSS hex color (default: "#FFFFFF")
	Font          string // "default", "serif", "monospace"
	TextAlignment string // "left", "right", "center", "justify"
	LightProse    bool   // light text on dark backgrounds
}

// Formatting defaults.
const (
	DefaultWidth       = WidthMedium
	DefaultAccentColor = "#4E46E5"
	DefaultBGColor     = "#FFFFFF"
)

// hexColorRe matches 3- or 6-digit CSS hex colors.
var hexColorRe = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Validate checks that formatting fields hold known values.
// Returns nil if f is nil (nil means use defaults).
func (f *Formatting) Validate() error {
	if f == nil {
		return nil
	}

	switch strings.ToLower(f.Width) {
	case "", WidthNarrow, WidthMedium, WidthFull:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidWidth, f.Width)
	}

	switch strings.ToLower(f.TextAlignment) {
	case "", AlignLeft, AlignRight, AlignCenter, AlignJustify:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidTextAlignment, f.TextAlignment)
	}

	switch strings.ToLower(f.Font) {
	case "", FontDefault, FontSerif, FontMonospace:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidFont, f.Font)
	}

	if f.AccentColor != "" && !hexColorRe.MatchString(f.AccentColor) {
		return fmt.Errorf("%w: %q", ErrInvalidColor, f.AccentColor)
	}
	if f.BGColor != "" && !hexColorRe.MatchString(f.BGColor) {
		return fmt.Errorf("%w: %q", ErrInvalidColor, f.BGColor)
	}

	return nil
}

// width returns the resolved width, falling back to the default.
func (f *Formatting) width() string {
	if f == nil || f.Width == "" {
		return DefaultWidth
	}
	return strings.ToLower(f.Width)
}

// lightProse reports whether light-on-dark prose styling is requested.
func (f *Formatting) lightProse() bool {
	return f != nil && f.LightProse
}

// maxWidthCSS maps the report width to a container max-width.
func maxWidthCSS(width string) string {
	switch width {
	case WidthNarrow:
		return "640px"
	case WidthFull:
		return "none"
	default:
		return "960px"
	}
}

// fontFamilyCSS maps the font choice to a CSS font stack.
func fontFamilyCSS(font string) string {
	switch font {
	case FontSerif:
		return "Georgia, 'Times New Roman', serif"
	case FontMonospace:
		return "'SF Mono', Consolas, monospace"
	default:
		return "'Inter', -apple-system, 'Segoe UI', sans-serif"
	}
}

// ToCSS builds the formatting-derived style block layered on top of the
// base stylesheet. Safe against CSS injection: every interpolated value
// is validated or mapped through a fixed table before use.
func (f *Formatting) ToCSS() string {
	accent := DefaultAccentColor
	bg := DefaultBGColor
	font := FontDefault
	align := AlignLeft
	if f != nil {
		if f.AccentColor != "" && hexColorRe.MatchString(f.AccentColor) {
			accent = f.AccentColor
		}
		if f.BGColor != "" && hexColorRe.MatchString(f.BGColor) {
			bg = f.BGColor
		}
		if f.Font != "" {
			font = strings.ToLower(f.Font)
		}
		if f.TextAlignment != "" {
			align = strings.ToLower(f.TextAlignment)
		}
	}

	var sb strings.Builder
	sb.WriteString(":root {\n")
	fmt.Fprintf(&sb, "  --report-accent-color: %s;\n", accent)
	fmt.Fprintf(&sb, "  --report-bg-color: %s;\n", bg)
	fmt.Fprintf(&sb, "  --report-font-family: %s;\n", fontFamilyCSS(font))
	fmt.Fprintf(&sb, "  --report-text-align: %s;\n", align)
	fmt.Fprintf(&sb, "  --report-max-width: %s;\n", maxWidthCSS(f.width()))
	sb.WriteString("}\n")

	if f.lightProse() {
		sb.WriteString(".report { color: #E5E7EB; }\n")
	}

	return sb.String()
}
