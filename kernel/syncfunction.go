package kernel

import (
	"github.com/nnrtlab/execfactory/errs"
	"github.com/nnrtlab/execfactory/graph"
)

// SyncFunction wraps one graph.Function so that, after the inner Run
// returns, it calls the captured backend's IConfig.Sync — ensuring
// profiling measurement boundaries match kernel completion on
// asynchronous backends.
type SyncFunction struct {
	inner  graph.Function
	config graph.IConfig
}

// NewSyncFunction constructs a SyncFunction. Both fn and cfg must be
// non-nil.
func NewSyncFunction(fn graph.Function, cfg graph.IConfig) (*SyncFunction, error) {
	if fn == nil || cfg == nil {
		return nil, errs.New(errs.KindConfiguration, "NewSyncFunction", errs.ErrNilSyncFunction)
	}
	return &SyncFunction{inner: fn, config: cfg}, nil
}

// Prepare forwards to the inner function.
func (f *SyncFunction) Prepare() error { return f.inner.Prepare() }

// Run runs the inner function, then syncs the backend.
func (f *SyncFunction) Run() error {
	if err := f.inner.Run(); err != nil {
		return err
	}
	return f.config.Sync()
}

// WrapWithSync returns a wrap function suitable for FunctionSequence.Wrap
// that decorates every function with a SyncFunction bound to cfg. A nil
// inner function or nil cfg (should not occur) does not panic: the element
// is replaced by a function whose Prepare and Run return NewSyncFunction's
// error, instead of silently dropping the decoration.
func WrapWithSync(cfg graph.IConfig) func(graph.Function) graph.Function {
	return func(fn graph.Function) graph.Function {
		wrapped, err := NewSyncFunction(fn, cfg)
		if err != nil {
			// fn and cfg are both supplied by the orchestrator and are
			// never nil in practice; surface a function that fails loudly
			// instead of panicking mid-build.
			return &failFunction{err: err}
		}
		return wrapped
	}
}

// failFunction reports a construction error the first time it runs,
// instead of panicking while a FunctionSequence is being wrapped.
type failFunction struct{ err error }

func (f *failFunction) Prepare() error { return f.err }
func (f *failFunction) Run() error { return f.err }

var _ graph.Function = (*SyncFunction)(nil)
