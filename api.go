package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/alnah/go-report/internal/fileutil"
	"github.com/google/uuid"
)

// BuildOptions configures BuildReport.
type BuildOptions struct {
	Name       string // app directory name (default: "app")
	Dest       string // parent directory (default: current directory)
	Formatting *Formatting
	Overwrite  bool // replace an existing app directory
}

// SaveOptions configures SaveReport.
type SaveOptions struct {
	Name       string // document title (default: "Report")
	Open       bool   // open in the system viewer after writing
	Formatting *Formatting
}

// StringifyOptions configures StringifyReport.
type StringifyOptions struct {
	Name       string // document title (default: "Report")
	Formatting *Formatting
}

// UploadOptions configures UploadReport. Name is required; every other
// metadata field is optional and omitted from the payload when empty.
type UploadOptions struct {
	Name            string
	Description     string
	SourceURL       string
	Project         string
	Tags            []string
	PubliclyVisible *bool
	Formatting      *Formatting
	Overwrite       bool // replace a same-named report on the server
	Open            bool // open the uploaded report's URL afterwards
}

// BuildReport compiles the block tree into <dest>/<name>/: an HTML entry
// point plus an assets/ subdirectory holding one file per registered
// asset. An existing destination fails with ErrDestinationExists unless
// Overwrite is set; with Overwrite the old directory is fully replaced.
// The new content is staged in a hidden sibling directory and finalized
// with a single rename, so a failed build never leaves a half-written
// destination.
func BuildReport(blocks *Group, opts BuildOptions) error {
	if err := opts.Formatting.Validate(); err != nil {
		return err
	}

	name := opts.Name
	if name == "" {
		name = "app"
	}
	dest := opts.Dest
	if dest == "" {
		dest = "."
	}

	appDir := filepath.Join(dest, name)
	if fileutil.PathExists(appDir) && !opts.Overwrite {
		return fmt.Errorf("%w: %s (set Overwrite to replace it)", ErrDestinationExists, appDir)
	}

	staging, err := fileutil.StageSibling(appDir, uuid.NewString()[:8])
	if err != nil {
		return err
	}

	assetsDir := filepath.Join(staging, assetsDirName)
	if err := fileutil.EnsureDir(assetsDir); err != nil {
		_ = os.RemoveAll(staging)
		return err
	}

	s := newViewState(blocks, StoreDirectFile, assetsDir)
	if _, err := NewPipeline(s).
		Pipe(PreProcessView).
		Pipe(ConvertXML).
		Pipe(ExportHTMLFileAssets(staging, name, opts.Formatting)).
		Result(); err != nil {
		_ = os.RemoveAll(staging)
		return err
	}

	if err := fileutil.FinalizeDir(staging, appDir, opts.Overwrite); err != nil {
		_ = os.RemoveAll(staging)
		return err
	}
	return nil
}

// SaveReport compiles the block tree into a single self-contained HTML
// document at path, with every asset inline-encoded.
func SaveReport(blocks *Group, path string, opts SaveOptions) error {
	if err := opts.Formatting.Validate(); err != nil {
		return err
	}

	name := opts.Name
	if name == "" {
		name = "Report"
	}

	s := newViewState(blocks, StoreInline, "")
	_, err := NewPipeline(s).
		Pipe(PreProcessView).
		Pipe(ConvertXML).
		Pipe(ExportHTMLInlineAssets(path, opts.Open, name, opts.Formatting)).
		Result()
	return err
}

// StringifyReport compiles the block tree into a self-contained HTML
// string. No filesystem interaction occurs.
func StringifyReport(blocks *Group, opts StringifyOptions) (string, error) {
	if err := opts.Formatting.Validate(); err != nil {
		return "", err
	}

	name := opts.Name
	if name == "" {
		name = "Report"
	}

	s := newViewState(blocks, StoreInline, "")
	final, err := NewPipeline(s).
		Pipe(PreProcessView).
		Pipe(ConvertXML).
		Pipe(ExportHTMLStringInlineAssets(name, opts.Formatting)).
		Result()
	if err != nil {
		return "", err
	}
	return final.HTML, nil
}

// UploadReport compiles the block tree into an upload payload (document
// XML plus gzip-compressed attachments) and posts it to the remote
// server through client. The per-run temporary files are removed before
// returning, success or not.
func UploadReport(ctx context.Context, client *Client, blocks *Group, opts UploadOptions) (*RemoteReport, error) {
	if opts.Name == "" {
		return nil, ErrMissingName
	}
	if err := opts.Formatting.Validate(); err != nil {
		return nil, err
	}

	s := newViewState(blocks, StoreGzipTemp, "")
	defer s.store.Cleanup()

	final, err := NewPipeline(s).
		Pipe(PreProcessView).
		Pipe(ConvertXML).
		Pipe(PreUploadProcessor).
		Result()
	if err != nil {
		return nil, err
	}

	fields := uploadFields(client, opts)
	remote, err := client.uploadReport(ctx, final.Document, final.Attachments, fields, opts.Tags)
	if err != nil {
		return nil, err
	}

	if opts.Open {
		if err := openInViewer(remote.URL); err != nil {
			return remote, err
		}
	}
	return remote, nil
}

// uploadFields assembles the metadata form fields. Empty optional values
// are dropped rather than sent as empty strings; the current protocol
// patches only the provided fields.
func uploadFields(client *Client, opts UploadOptions) map[string]string {
	fields := map[string]string{
		"name":        opts.Name,
		"description": opts.Description,
		"source_url":  opts.SourceURL,
		"project":     opts.Project,
	}
	if opts.PubliclyVisible != nil {
		fields["publicly_visible"] = strconv.FormatBool(*opts.PubliclyVisible)
	}
	if opts.Overwrite {
		fields["overwrite"] = "true"
	}
	if f := opts.Formatting; f != nil {
		fields["width"] = f.width()
		fields["style_header"] = client.styleHeader(f)
		fields["is_light_prose"] = strconv.FormatBool(f.lightProse())
	}
	for k, v := range fields {
		if v == "" {
			delete(fields, k)
		}
	}
	return fields
}
