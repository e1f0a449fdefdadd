package report

import "errors"

// Sentinel errors for library operations.
var (
	// View validation errors.
	ErrEmptyView    = errors.New("view cannot be empty")
	ErrInvalidBlock = errors.New("invalid block")

	// Export precondition errors.
	ErrDestinationExists = errors.New("destination already exists")
	ErrMissingAssetsDir  = errors.New("assets directory not set")

	// Asset storage errors.
	ErrAssetWrite      = errors.New("failed to write asset")
	ErrUnknownStrategy = errors.New("unknown file store strategy")

	// Document errors.
	ErrDocumentParse = errors.New("failed to parse document")

	// ErrAttachmentMismatch indicates the serialized document and the
	// attachment list reference different asset sets. This is an internal
	// invariant violation, not a user-input problem.
	ErrAttachmentMismatch = errors.New("document references and attachments diverge")

	// Upload errors.
	ErrUpload      = errors.New("upload failed")
	ErrMissingName = errors.New("report name is required")

	// Formatting validation errors.
	ErrInvalidWidth         = errors.New("invalid report width")
	ErrInvalidTextAlignment = errors.New("invalid text alignment")
	ErrInvalidFont          = errors.New("invalid font choice")
	ErrInvalidColor         = errors.New("invalid color value")
)
