package log

// Model and run context.
const (
	// ModelNameKey identifies the converted model, usually the source file name.
	ModelNameKey = "model.name"

	// RunIDKey carries the ULID assigned to one conversion run.
	RunIDKey = "run.id"

	// ComponentKey identifies which package emitted the record.
	// Examples: "convert", "source", "report"
	ComponentKey = "component"

	// OperationKey names the pipeline stage: "load", "parse", "build", "write", "report".
	OperationKey = "operation"

	// SourceFormatKey names the loader that read the model ("text", "bundle").
	SourceFormatKey = "source.format"
)

// Ensemble shape.
const (
	TreesKey    = "model.trees"
	FeaturesKey = "model.features"
	NodesKey    = "model.nodes"
	LeavesKey   = "model.leaves"

	// TreeIndexKey is the boosting round of the tree a record refers to.
	TreeIndexKey = "tree.index"

	// LineKey is the 1-based line number inside one tree dump.
	LineKey = "dump.line"

	// WarningsKey counts collected diagnostics.
	WarningsKey = "diagnostics.warnings"
)

// Performance and output.
const (
	DurationMsKey = "perf.duration_ms"
	WorkersKey    = "perf.workers"

	OutputPathKey = "output.path"
	OutputSizeKey = "output.size_bytes"
)

// Error context.
const (
	// ErrorTypeKey records the concrete type of the root cause,
	// e.g. "*errors.EmptyTreeError".
	ErrorTypeKey = "error.type"

	// WarningKey holds one structured warning object.
	WarningKey = "warning"
)

// Standard values for OperationKey.
const (
	OperationLoad   = "load"
	OperationParse  = "parse"
	OperationBuild  = "build"
	OperationWrite  = "write"
	OperationReport = "report"
)
