package report

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/klauspost/compress/gzip"
	"github.com/zeebo/blake3"
)

// StoreStrategy selects how registered assets are materialized. It is
// fixed at ViewState construction and never changes mid-pipeline.
type StoreStrategy int

const (
	// StoreInline encodes assets as self-contained data URIs with no
	// filesystem interaction. Used by SaveReport and StringifyReport.
	StoreInline StoreStrategy = iota

	// StoreGzipTemp compresses assets into a per-store temporary
	// directory for later transmission. Used by UploadReport.
	StoreGzipTemp

	// StoreDirectFile writes raw assets under a caller-supplied assets
	// directory. Used by BuildReport.
	StoreDirectFile
)

// FileEntry is one registered asset. Ref returns the exact string the
// serialized document embeds as a pointer to the asset; the two must
// never diverge.
type FileEntry interface {
	Ref() string
	MIME() string
}

// InlineEntry encodes the payload as a data URI. Registration is pure:
// no disk write, no cleanup.
type InlineEntry struct {
	ref  string
	mime string
	size int
}

func (e *InlineEntry) Ref() string  { return e.ref }
func (e *InlineEntry) MIME() string { return e.mime }

// Size returns the decoded payload length in bytes.
func (e *InlineEntry) Size() int { return e.size }

// GzipTempEntry holds a payload compressed into a process-managed
// temporary file. The entry is not final: a terminal stage must transmit
// or relocate it, and FileStore.Cleanup removes whatever is left.
type GzipTempEntry struct {
	ref  string
	mime string
	path string
	size int64
}

func (e *GzipTempEntry) Ref() string  { return e.ref }
func (e *GzipTempEntry) MIME() string { return e.mime }

// Path returns the compressed temporary file's location.
func (e *GzipTempEntry) Path() string { return e.path }

// Size returns the compressed size in bytes.
func (e *GzipTempEntry) Size() int64 { return e.size }

// DirectFileEntry is a raw file written under the store's assets
// directory. The ref doubles as the file's base name.
type DirectFileEntry struct {
	ref  string
	mime string
	path string
}

func (e *DirectFileEntry) Ref() string  { return e.ref }
func (e *DirectFileEntry) MIME() string { return e.mime }

// Path returns the written file's location.
func (e *DirectFileEntry) Path() string { return e.path }

// FileStore registers binary payloads encountered during serialization
// and assigns them stable references. Names are content-addressed
// (blake3), so identical bytes registered twice under the same MIME
// type within one run deduplicate to a single entry and a single
// stored copy.
//
// A FileStore belongs to exactly one ViewState and must not be shared
// across concurrent pipeline runs; each run gets its own temporary
// namespace.
type FileStore struct {
	strategy  StoreStrategy
	assetsDir string
	tempDir   string
	entries   []FileEntry
	index     map[string]FileEntry
}

// NewFileStore creates a store for the given strategy. assetsDir is
// required only by StoreDirectFile and ignored otherwise.
func NewFileStore(strategy StoreStrategy, assetsDir string) *FileStore {
	return &FileStore{
		strategy:  strategy,
		assetsDir: assetsDir,
		index:     make(map[string]FileEntry),
	}
}

// Register stores the payload according to the strategy and returns the
// reference to embed in the document. Identical payloads registered
// under the same MIME type return the earlier entry's reference; the
// same bytes under a different type are a distinct asset (the type
// shapes both the reference and the materialized file). I/O failures
// are reported as ErrAssetWrite after best-effort removal of any
// partial file.
func (s *FileStore) Register(data []byte, mime string) (string, error) {
	h := blake3.New()
	_, _ = h.Write([]byte(mime))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write(data)
	key := hex.EncodeToString(h.Sum(nil))
	if entry, ok := s.index[key]; ok {
		return entry.Ref(), nil
	}

	name := "media-" + key[:16] + extensionForMIME(mime)

	var (
		entry FileEntry
		err   error
	)
	switch s.strategy {
	case StoreInline:
		entry = &InlineEntry{
			ref:  "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data),
			mime: mime,
			size: len(data),
		}
	case StoreGzipTemp:
		entry, err = s.registerGzipTemp(name, data, mime)
	case StoreDirectFile:
		entry, err = s.registerDirectFile(name, data, mime)
	default:
		return "", fmt.Errorf("%w: %d", ErrUnknownStrategy, s.strategy)
	}
	if err != nil {
		return "", err
	}

	s.index[key] = entry
	s.entries = append(s.entries, entry)
	return entry.Ref(), nil
}

// registerGzipTemp compresses the payload into the store's temporary
// directory, creating the directory on first use.
func (s *FileStore) registerGzipTemp(name string, data []byte, mime string) (FileEntry, error) {
	if s.tempDir == "" {
		dir := filepath.Join(os.TempDir(), "go-report-"+uuid.NewString())
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("%w: creating temp dir: %v", ErrAssetWrite, err)
		}
		s.tempDir = dir
	}

	path := filepath.Join(s.tempDir, name+".gz")
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return nil, fmt.Errorf("%w: creating %s: %v", ErrAssetWrite, path, err)
	}

	zw := gzip.NewWriter(f)
	if _, err := zw.Write(data); err != nil {
		_ = zw.Close()
		_ = f.Close()
		_ = os.Remove(path)
		return nil, fmt.Errorf("%w: compressing %s: %v", ErrAssetWrite, name, err)
	}
	if err := zw.Close(); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return nil, fmt.Errorf("%w: compressing %s: %v", ErrAssetWrite, name, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return nil, fmt.Errorf("%w: closing %s: %v", ErrAssetWrite, path, err)
	}

	info, err := os.Stat(path)
	if err != nil {
		_ = os.Remove(path)
		return nil, fmt.Errorf("%w: stat %s: %v", ErrAssetWrite, path, err)
	}

	return &GzipTempEntry{ref: name, mime: mime, path: path, size: info.Size()}, nil
}

// registerDirectFile writes the raw payload under the assets directory.
func (s *FileStore) registerDirectFile(name string, data []byte, mime string) (FileEntry, error) {
	if s.assetsDir == "" {
		return nil, ErrMissingAssetsDir
	}

	path := filepath.Join(s.assetsDir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil { // #nosec G306 -- published web asset
		_ = os.Remove(path)
		return nil, fmt.Errorf("%w: writing %s: %v", ErrAssetWrite, path, err)
	}

	return &DirectFileEntry{ref: name, mime: mime, path: path}, nil
}

// Entries returns the registered entries in registration order.
func (s *FileStore) Entries() []FileEntry {
	return s.entries
}

// Len returns the number of distinct registered assets.
func (s *FileStore) Len() int {
	return len(s.entries)
}

// Cleanup removes the store's temporary directory and any compressed
// entries still inside it. Safe to call for every strategy and after a
// terminal stage already consumed the entries.
func (s *FileStore) Cleanup() {
	if s.tempDir != "" {
		_ = os.RemoveAll(s.tempDir)
		s.tempDir = ""
	}
}

// extensionForMIME maps common embeddable payload types to a file
// extension for content-addressed asset names. Unknown types get a
// generic binary extension; the MIME type itself still travels with the
// entry.
func extensionForMIME(mime string) string {
	switch mime {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/gif":
		return ".gif"
	case "image/svg+xml":
		return ".svg"
	case "image/webp":
		return ".webp"
	case "application/pdf":
		return ".pdf"
	case "application/json":
		return ".json"
	case "text/csv":
		return ".csv"
	case "text/plain":
		return ".txt"
	default:
		return ".bin"
	}
}
