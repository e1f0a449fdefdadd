// Package report compiles an in-memory tree of content blocks into a
// distributable HTML artifact or an upload payload for a remote report
// server.
//
// A report is described as a tree of blocks (Text, Code, HTML, Media,
// nested Groups). Four operations compile that tree:
//
//   - BuildReport writes a directory with an HTML entry point and an
//     assets/ subdirectory holding one file per embedded asset.
//   - SaveReport writes a single self-contained HTML file with every
//     asset inline-encoded.
//   - StringifyReport returns the same self-contained HTML as a string.
//   - UploadReport posts the serialized document plus its attachments
//     to a remote server via a Client.
//
// All four share one pipeline: the tree is validated and normalized,
// serialized to an intermediate XML document while every binary payload
// is registered with a FileStore, and finally packaged by a terminal
// stage specific to the operation. Only the asset storage strategy
// differs between operations.
//
// Basic usage:
//
//	blocks := report.NewView(
//		&report.Text{Content: "# Quarterly Summary"},
//		&report.Media{Data: pngBytes, MIME: "image/png"},
//	)
//	html, err := report.StringifyReport(blocks, report.StringifyOptions{Name: "Q3"})
package report
