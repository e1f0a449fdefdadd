package report

// Attachment is one upload payload entry: the document reference name
// plus the compressed temporary file holding the bytes.
type Attachment struct {
	Name string
	MIME string
	Path string
	Size int64
}

// ViewState is the mutable context threaded through one pipeline run.
// It is constructed once per top-level operation and never reused; the
// storage strategy is fixed at construction. Stages needing an asset
// reference register bytes through the state's store rather than
// constructing entries directly, which is what keeps document references
// and materialized assets in lockstep.
type ViewState struct {
	blocks *Group
	store  *FileStore

	// root is the normalized internal tree, set by PreProcessView.
	root *node

	// Result fields; each later stage overwrites the one before it.
	Document    string
	HTML        string
	Attachments []Attachment
}

// newViewState builds the per-run state. assetsDir is consulted only by
// the StoreDirectFile strategy.
func newViewState(blocks *Group, strategy StoreStrategy, assetsDir string) *ViewState {
	return &ViewState{
		blocks: blocks,
		store:  NewFileStore(strategy, assetsDir),
	}
}

// Store exposes the run's file store, mainly for tests asserting entry
// counts against document references.
func (s *ViewState) Store() *FileStore {
	return s.store
}
