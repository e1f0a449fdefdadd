package report

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// assetsDirName is the subdirectory holding file-based export assets,
// referenced by the HTML shell.
const assetsDirName = "assets"

// ExportHTMLFileAssets returns the terminal stage for file-based export.
// It writes the HTML entry point into appDir; the assets/ subdirectory
// was already populated by DirectFileEntry registrations during
// serialization. The caller owns appDir staging and finalization.
func ExportHTMLFileAssets(appDir, name string, formatting *Formatting) Stage[*ViewState] {
	return func(s *ViewState) (*ViewState, error) {
		r, err := newRenderer(assetsDirName)
		if err != nil {
			return nil, err
		}
		page, err := r.RenderPage(s.Document, name, formatting)
		if err != nil {
			return nil, err
		}

		indexPath := filepath.Join(appDir, "index.html")
		if err := os.WriteFile(indexPath, []byte(page), 0o644); err != nil { // #nosec G306 -- published web page
			return nil, fmt.Errorf("%w: writing %s: %v", ErrAssetWrite, indexPath, err)
		}

		s.HTML = page
		return s, nil
	}
}

// ExportHTMLInlineAssets returns the terminal stage for single-file
// export: a self-contained page with every asset inline-encoded, written
// to path. open=true launches the system viewer afterwards.
func ExportHTMLInlineAssets(path string, open bool, name string, formatting *Formatting) Stage[*ViewState] {
	return func(s *ViewState) (*ViewState, error) {
		r, err := newRenderer("")
		if err != nil {
			return nil, err
		}
		page, err := r.RenderPage(s.Document, name, formatting)
		if err != nil {
			return nil, err
		}

		if err := os.WriteFile(path, []byte(page), 0o644); err != nil { // #nosec G306 -- published web page
			return nil, fmt.Errorf("%w: writing %s: %v", ErrAssetWrite, path, err)
		}

		if open {
			if err := openInViewer(path); err != nil {
				return nil, fmt.Errorf("opening %s: %w", path, err)
			}
		}

		s.HTML = page
		return s, nil
	}
}

// ExportHTMLStringInlineAssets returns the terminal stage for in-memory
// export: identical to ExportHTMLInlineAssets but with no filesystem
// interaction at all.
func ExportHTMLStringInlineAssets(name string, formatting *Formatting) Stage[*ViewState] {
	return func(s *ViewState) (*ViewState, error) {
		r, err := newRenderer("")
		if err != nil {
			return nil, err
		}
		page, err := r.RenderPage(s.Document, name, formatting)
		if err != nil {
			return nil, err
		}
		s.HTML = page
		return s, nil
	}
}

// PreUploadProcessor is the terminal stage for upload export. It builds
// the attachment list from the store's compressed entries and verifies
// exact two-way consistency with the references the document embeds. A
// mismatch in either direction means serialization and storage went out
// of sync; it is surfaced as ErrAttachmentMismatch rather than shipped.
func PreUploadProcessor(s *ViewState) (*ViewState, error) {
	refs, err := documentRefs(s.Document)
	if err != nil {
		return nil, err
	}

	entries := s.store.Entries()
	attachments := make([]Attachment, 0, len(entries))
	byRef := make(map[string]bool, len(entries))
	for _, entry := range entries {
		tmp, ok := entry.(*GzipTempEntry)
		if !ok {
			return nil, fmt.Errorf("%w: entry %q is not a compressed temp entry", ErrAttachmentMismatch, entry.Ref())
		}
		byRef[tmp.Ref()] = true
		attachments = append(attachments, Attachment{
			Name: tmp.Ref(),
			MIME: tmp.MIME(),
			Path: tmp.Path(),
			Size: tmp.Size(),
		})
	}

	if err := checkConsistency(refs, byRef); err != nil {
		return nil, err
	}

	s.Attachments = attachments
	return s, nil
}

// checkConsistency reports dangling document references and orphaned
// attachments, naming each offender.
func checkConsistency(docRefs []string, attached map[string]bool) error {
	var dangling []string
	seen := make(map[string]bool, len(docRefs))
	for _, ref := range docRefs {
		seen[ref] = true
		if !attached[ref] {
			dangling = append(dangling, ref)
		}
	}

	var orphaned []string
	for ref := range attached {
		if !seen[ref] {
			orphaned = append(orphaned, ref)
		}
	}
	sort.Strings(orphaned)

	if len(dangling) == 0 && len(orphaned) == 0 {
		return nil
	}

	var parts []string
	if len(dangling) > 0 {
		parts = append(parts, "document references without attachment: "+strings.Join(dangling, ", "))
	}
	if len(orphaned) > 0 {
		parts = append(parts, "attachments not referenced by document: "+strings.Join(orphaned, ", "))
	}
	return fmt.Errorf("%w: %s", ErrAttachmentMismatch, strings.Join(parts, "; "))
}
