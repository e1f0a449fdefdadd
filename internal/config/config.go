// Package config loads and validates the YAML report config consumed by
// the CLI. A config file names the report, picks an output mode, and lists the
// blocks making up the document.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/alnah/go-report/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound = errors.New("config file not found")
	ErrConfigParse    = errors.New("failed to parse config")
	ErrNoBlocks       = errors.New("config lists no blocks")
	ErrInvalidMode    = errors.New("invalid output mode")
	ErrInvalidBlock   = errors.New("invalid block entry")
	ErrFieldTooLong   = errors.New("field exceeds maximum length")
)

// Output mode constants.
const (
	ModeBuild  = "build"
	ModeSave   = "save"
	ModeString = "string"
)

// Block type constants.
const (
	BlockText  = "text"
	BlockCode  = "code"
	BlockHTML  = "html"
	BlockMedia = "media"
)

// Field length limits.
const (
	MaxNameLength     = 200  // report name
	MaxPathLength     = 4096 // file paths
	MaxLanguageLength = 40   // chroma lexer name
	MaxMIMELength     = 100  // media MIME type
	MaxInlineLength   = 1 << 20
)

// Config is the parsed report config file.
type Config struct {
	Name       string           `yaml:"name"`
	Output     OutputConfig     `yaml:"output"`
	Formatting FormattingConfig `yaml:"formatting"`
	Blocks     []BlockConfig    `yaml:"blocks"`
}

// OutputConfig selects the artifact kind and its destination.
type OutputConfig struct {
	Mode      string `yaml:"mode"`      // "build", "save", "string" (default: "save")
	Dest      string `yaml:"dest"`      // build: parent directory
	Path      string `yaml:"path"`      // save: output file path
	Overwrite bool   `yaml:"overwrite"` // build: replace existing directory
	Open      bool   `yaml:"open"`      // save: open in viewer after writing
}

// FormattingConfig mirrors report.Formatting.
type FormattingConfig struct {
	Width         string `yaml:"width"`
	AccentColor   string `yaml:"accentColor"`
	BGColor       string `yaml:"bgColor"`
	Font          string `yaml:"font"`
	TextAlignment string `yaml:"textAlignment"`
	LightProse    bool   `yaml:"lightProse"`
}

// BlockConfig is one entry in the blocks list. Exactly one of File and
// Content must be set; Media blocks require File.
type BlockConfig struct {
	Type     string `yaml:"type"`
	File     string `yaml:"file"`
	Content  string `yaml:"content"`
	Language string `yaml:"language"` // code blocks
	MIME     string `yaml:"mime"`     // media blocks; sniffed from the file when empty
}

// Load reads and parses a report config from path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user-provided config path
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yamlutil.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks structural rules and field limits.
func (c *Config) Validate() error {
	if err := checkLen("name", c.Name, MaxNameLength); err != nil {
		return err
	}

	switch c.Output.Mode {
	case "", ModeBuild, ModeSave, ModeString:
	default:
		return fmt.Errorf("%w: %q (must be build, save, or string)", ErrInvalidMode, c.Output.Mode)
	}
	if err := checkLen("output.dest", c.Output.Dest, MaxPathLength); err != nil {
		return err
	}
	if err := checkLen("output.path", c.Output.Path, MaxPathLength); err != nil {
		return err
	}

	if len(c.Blocks) == 0 {
		return ErrNoBlocks
	}
	for i, b := range c.Blocks {
		if err := b.validate(i); err != nil {
			return err
		}
	}
	return nil
}

// Mode returns the resolved output mode, defaulting to save.
func (c *Config) Mode() string {
	if c.Output.Mode == "" {
		return ModeSave
	}
	return c.Output.Mode
}

func (b *BlockConfig) validate(i int) error {
	switch strings.ToLower(b.Type) {
	case BlockText, BlockCode, BlockHTML, BlockMedia:
	default:
		return fmt.Errorf("%w: blocks[%d] has unknown type %q", ErrInvalidBlock, i, b.Type)
	}

	hasFile := b.File != ""
	hasContent := b.Content != ""
	if hasFile == hasContent {
		return fmt.Errorf("%w: blocks[%d] needs exactly one of file or content", ErrInvalidBlock, i)
	}
	if strings.EqualFold(b.Type, BlockMedia) && !hasFile {
		return fmt.Errorf("%w: blocks[%d] media blocks require a file", ErrInvalidBlock, i)
	}

	if err := checkLen(fmt.Sprintf("blocks[%d].file", i), b.File, MaxPathLength); err != nil {
		return err
	}
	if err := checkLen(fmt.Sprintf("blocks[%d].content", i), b.Content, MaxInlineLength); err != nil {
		return err
	}
	if err := checkLen(fmt.Sprintf("blocks[%d].language", i), b.Language, MaxLanguageLength); err != nil {
		return err
	}
	if err := checkLen(fmt.Sprintf("blocks[%d].mime", i), b.MIME, MaxMIMELength); err != nil {
		return err
	}
	return nil
}

// checkLen enforces a field length limit.
func checkLen(field, value string, limit int) error {
	if len(value) > limit {
		return fmt.Errorf("%w: %s is %d bytes (max %d)", ErrFieldTooLong, field, len(value), limit)
	}
	return nil
}
