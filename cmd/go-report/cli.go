package main

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/alnah/go-report"
	"github.com/alnah/go-report/internal/config"
)

// Sentinel errors for CLI operations.
var (
	ErrReadBlockFile = errors.New("failed to read block file")
)

// run loads the config, assembles the block tree, and dispatches on the
// output mode. stdout receives the artifact (string mode) or a result
// line; progress goes to stderr when verbose is set.
func run(flags *cliFlags, stdout, stderr io.Writer) error {
	cfg, err := config.Load(flags.config)
	if err != nil {
		return err
	}
	applyOverrides(cfg, flags)

	if flags.verbose {
		fmt.Fprintf(stderr, "Loaded %s: %d block(s), mode %s\n", flags.config, len(cfg.Blocks), cfg.Mode())
	}

	blocks, err := assembleBlocks(cfg.Blocks)
	if err != nil {
		return err
	}
	formatting := toFormatting(cfg.Formatting)

	name := cfg.Name
	if name == "" {
		name = "Report"
	}

	switch cfg.Mode() {
	case config.ModeBuild:
		opts := report.BuildOptions{
			Name:       name,
			Dest:       cfg.Output.Dest,
			Formatting: formatting,
			Overwrite:  cfg.Output.Overwrite,
		}
		if err := report.BuildReport(blocks, opts); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Built %s\n", appDirFor(opts))
		return nil

	case config.ModeSave:
		path := cfg.Output.Path
		if path == "" {
			path = name + ".html"
		}
		opts := report.SaveOptions{
			Name:       name,
			Open:       cfg.Output.Open,
			Formatting: formatting,
		}
		if err := report.SaveReport(blocks, path, opts); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Saved %s\n", path)
		return nil

	case config.ModeString:
		html, err := report.StringifyReport(blocks, report.StringifyOptions{
			Name:       name,
			Formatting: formatting,
		})
		if err != nil {
			return err
		}
		fmt.Fprint(stdout, html)
		return nil

	default:
		return fmt.Errorf("%w: %q", config.ErrInvalidMode, cfg.Mode())
	}
}

// applyOverrides layers command-line flags over the loaded config.
func applyOverrides(cfg *config.Config, flags *cliFlags) {
	if flags.name != "" {
		cfg.Name = flags.name
	}
	if flags.mode != "" {
		cfg.Output.Mode = flags.mode
	}
	if flags.dest != "" {
		cfg.Output.Dest = flags.dest
	}
	if flags.path != "" {
		cfg.Output.Path = flags.path
	}
	if flags.overwrite {
		cfg.Output.Overwrite = true
	}
	if flags.open {
		cfg.Output.Open = true
	}
}

// assembleBlocks turns config block entries into the library's block tree,
// reading file-backed content as needed.
func assembleBlocks(entries []config.BlockConfig) (*report.Group, error) {
	blocks := make([]report.Block, 0, len(entries))
	for i, entry := range entries {
		switch strings.ToLower(entry.Type) {
		case config.BlockText:
			content, err := blockContent(entry)
			if err != nil {
				return nil, fmt.Errorf("blocks[%d]: %w", i, err)
			}
			blocks = append(blocks, &report.Text{Content: content})

		case config.BlockCode:
			content, err := blockContent(entry)
			if err != nil {
				return nil, fmt.Errorf("blocks[%d]: %w", i, err)
			}
			blocks = append(blocks, &report.Code{Content: content, Language: entry.Language})

		case config.BlockHTML:
			content, err := blockContent(entry)
			if err != nil {
				return nil, fmt.Errorf("blocks[%d]: %w", i, err)
			}
			blocks = append(blocks, &report.HTML{Content: content})

		case config.BlockMedia:
			data, err := os.ReadFile(entry.File) // #nosec G304 -- path from user's config
			if err != nil {
				return nil, fmt.Errorf("blocks[%d]: %w: %v", i, ErrReadBlockFile, err)
			}
			mime := entry.MIME
			if mime == "" {
				mime = sniffMIME(data)
			}
			blocks = append(blocks, &report.Media{Data: data, MIME: mime})
		}
	}
	return report.NewView(blocks...), nil
}

// blockContent resolves a block entry to its text content.
func blockContent(entry config.BlockConfig) (string, error) {
	if entry.Content != "" {
		return entry.Content, nil
	}
	data, err := os.ReadFile(entry.File) // #nosec G304 -- path from user's config
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrReadBlockFile, err)
	}
	return string(data), nil
}

// sniffMIME detects a media payload's content type, trimming the charset
// suffix http.DetectContentType appends to text types.
func sniffMIME(data []byte) string {
	mime := http.DetectContentType(data)
	if base, _, ok := strings.Cut(mime, ";"); ok {
		return strings.TrimSpace(base)
	}
	return mime
}

// toFormatting converts config formatting to the library type, or nil when
// everything is default.
func toFormatting(fc config.FormattingConfig) *report.Formatting {
	if fc == (config.FormattingConfig{}) {
		return nil
	}
	return &report.Formatting{
		Width:         fc.Width,
		AccentColor:   fc.AccentColor,
		BGColor:       fc.BGColor,
		Font:          fc.Font,
		TextAlignment: fc.TextAlignment,
		LightProse:    fc.LightProse,
	}
}

// appDirFor reports the directory BuildReport produced.
func appDirFor(opts report.BuildOptions) string {
	dest := opts.Dest
	if dest == "" {
		dest = "."
	}
	return dest + string(os.PathSeparator) + opts.Name
}
