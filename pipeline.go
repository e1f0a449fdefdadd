package report

// Stage transforms the pipeline state, returning the next state or an
// error. Stages with parameters are built by closure constructors
// (ExportHTMLFileAssets, ExportHTMLInlineAssets, ...).
type Stage[S any] func(S) (S, error)

// Pipeline folds an ordered list of stages over a state value with early
// exit on the first error. Stages run strictly in Pipe call order; once a
// stage fails, every later Pipe is a no-op and Result returns the
// captured error. There is no retry and no parallel stage execution, so
// a precondition failure in one stage guarantees later stages (which may
// perform destructive I/O) never run.
type Pipeline[S any] struct {
	state S
	err   error
}

// NewPipeline creates a pipeline holding the initial state.
func NewPipeline[S any](initial S) *Pipeline[S] {
	return &Pipeline[S]{state: initial}
}

// Pipe applies the stage to the current state. On success the state is
// replaced with the stage's output; on failure the pipeline latches the
// error and all subsequent Pipe calls are skipped.
func (p *Pipeline[S]) Pipe(stage Stage[S]) *Pipeline[S] {
	if p.err != nil {
		return p
	}
	next, err := stage(p.state)
	if err != nil {
		p.err = err
		return p
	}
	p.state = next
	return p
}

// Result returns the final state, or the first stage error if any stage
// failed.
func (p *Pipeline[S]) Result() (S, error) {
	if p.err != nil {
		var zero S
		return zero, p.err
	}
	return p.state, nil
}
