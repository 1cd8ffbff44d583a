// Package factory exposes the single public entry point this module
// builds toward: Create, which dispatches a LoweredGraph and a set of
// CompilerOptions to one of three named executor-build strategies.
package factory

import (
	"go.opentelemetry.io/otel/metric"

	"github.com/nnrtlab/execfactory/graph"
)

// Strategy names recognized by Create's strategy field.
const (
	StrategyLinear   = "Linear"
	StrategyDataflow = "Dataflow"
	StrategyParallel = "Parallel"
)

// CompilerOptions is the read-only configuration Create consumes.
type CompilerOptions struct {
	executor           string
	isPrimarySubgraph  bool
	profilingMode      bool
	traceFilepath      string
	controlFlowBackend string
	frontendLayout     graph.Layout
	modelInputs        []graph.OperandIndex
	modelOutputs       []graph.OperandIndex
	meter              metric.Meter
}

// Option configures a CompilerOptions value.
type Option func(*CompilerOptions)

// NewCompilerOptions builds a CompilerOptions from defaults plus the given
// Options. Defaults: strategy Linear, nested (non-primary) subgraph,
// profiling off, NHWC frontend layout (configurable per model IO rather
// than hard-coded).
func NewCompilerOptions(opts ...Option) *CompilerOptions {
	co := &CompilerOptions{
		executor:           StrategyLinear,
		frontendLayout:     graph.LayoutNHWC,
		controlFlowBackend: "controlflow",
	}
	for _, o := range opts {
		o(co)
	}
	return co
}

// WithExecutor selects the named build strategy.
func WithExecutor(name string) Option {
	return func(co *CompilerOptions) { co.executor = name }
}

// WithPrimarySubgraph marks this build as the outermost subgraph, the only
// one that allocates user-visible IO tensors.
func WithPrimarySubgraph(primary bool) Option {
	return func(co *CompilerOptions) { co.isPrimarySubgraph = primary }
}

// WithProfiling enables profiling mode: every function is wrapped in a
// sync-barrier, and (Dataflow only) a profiling observer is attached.
func WithProfiling(enabled bool) Option {
	return func(co *CompilerOptions) { co.profilingMode = enabled }
}

// WithTraceFile attaches a tracing observer writing to path, for any of
// the three build strategies.
func WithTraceFile(path string) Option {
	return func(co *CompilerOptions) { co.traceFilepath = path }
}

// WithControlFlowBackend names the backend whose TensorBuilder owns model
// IO UserTensors.
func WithControlFlowBackend(name string) Option {
	return func(co *CompilerOptions) { co.controlFlowBackend = name }
}

// WithFrontendLayout sets the layout used when constructing model IO user
// tensors.
func WithFrontendLayout(layout graph.Layout) Option {
	return func(co *CompilerOptions) { co.frontendLayout = layout }
}

// WithMeter supplies the OpenTelemetry meter the Dataflow profiling
// observer records its histogram into. Omitted or nil: profiling still
// records into the returned ExecTime, with no OTel emission.
func WithMeter(meter metric.Meter) Option {
	return func(co *CompilerOptions) { co.meter = meter }
}

// WithModelIO names the graph's externally-visible input and output
// operands, consulted only when WithPrimarySubgraph(true).
func WithModelIO(inputs, outputs []graph.OperandIndex) Option {
	return func(co *CompilerOptions) {
		co.modelInputs = append([]graph.OperandIndex(nil), inputs...)
		co.modelOutputs = append([]graph.OperandIndex(nil), outputs...)
	}
}
