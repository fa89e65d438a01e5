package convert

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/YuminosukeSato/treeport/dump"
	"github.com/YuminosukeSato/treeport/pkg/errors"
	"github.com/YuminosukeSato/treeport/pkg/log"
	"github.com/YuminosukeSato/treeport/report"
	"github.com/YuminosukeSato/treeport/source"
)

// Result is the outcome of one conversion run.
type Result struct {
	RunID      string
	Format     string // source format that was loaded
	Document   *dump.Document
	Report     *dump.Report
	Summary    report.Summary
	OutputPath string // empty when nothing was written
}

// Run converts cfg.ModelPath and writes the document to cfg.OutputPath.
// On failure the returned Result still carries the diagnostics gathered so
// far, when there are any.
func Run(ctx context.Context, cfg Config, logger log.Logger) (*Result, error) {
	return run(ctx, cfg, logger, true)
}

// Inspect converts cfg.ModelPath without writing anything. The document and
// the leaf histogram are both skipped.
func Inspect(ctx context.Context, cfg Config, logger log.Logger) (*Result, error) {
	return run(ctx, cfg, logger, false)
}

func run(ctx context.Context, cfg Config, logger log.Logger, write bool) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.GetLoggerWithName("convert")
	}

	res := &Result{RunID: ulid.Make().String()}
	logger = logger.With(log.RunIDKey, res.RunID)

	start := time.Now()
	model, loader, err := source.Load(ctx, cfg.ModelPath)
	if err != nil {
		logger.Error("Failed to load model", err, log.OperationKey, log.OperationLoad)
		return res, err
	}
	res.Format = loader.Format()
	logger = logger.With(log.ModelNameKey, modelName(cfg, model))
	logger.Info("Model loaded",
		log.OperationKey, log.OperationLoad,
		log.SourceFormatKey, res.Format,
		log.TreesKey, len(model.Dumps),
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)

	if err := ctx.Err(); err != nil {
		return res, errors.WithStack(err)
	}

	start = time.Now()
	doc, rep, err := dump.Convert(metadata(cfg, model), model.Dumps, dump.Options{
		Workers: cfg.Workers,
		Strict:  cfg.Strict,
	})
	res.Report = rep
	for _, w := range rep.Warnings() {
		logger.Warn("Conversion warning", log.OperationKey, log.OperationParse, log.WarningKey, w)
	}
	if err != nil {
		logger.Error("Conversion failed", err,
			log.OperationKey, log.OperationBuild,
			log.WarningsKey, rep.Len(),
		)
		return res, err
	}
	res.Document = doc
	logger.Info("Model converted",
		log.OperationKey, log.OperationBuild,
		log.TreesKey, doc.NumTrees,
		log.FeaturesKey, doc.NumFeature,
		log.WarningsKey, rep.Len(),
		log.WorkersKey, cfg.Workers,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)

	if err := ctx.Err(); err != nil {
		return res, errors.WithStack(err)
	}

	var size int64
	if write {
		size, err = writeDocument(doc, cfg.OutputPath)
		if err != nil {
			logger.Error("Failed to write document", err, log.OperationKey, log.OperationWrite, log.OutputPathKey, cfg.OutputPath)
			return res, err
		}
		res.OutputPath = cfg.OutputPath
		logger.Info("Document written",
			log.OperationKey, log.OperationWrite,
			log.OutputPathKey, cfg.OutputPath,
			log.OutputSizeKey, size,
		)
	}

	res.Summary = report.Summarize(doc, size)
	res.Summary.Warnings = rep.Len()
	logger.Debug("Model statistics",
		log.OperationKey, log.OperationReport,
		log.NodesKey, res.Summary.Nodes,
		log.LeavesKey, res.Summary.Leaves,
	)

	if write && cfg.HistogramPath != "" {
		if err := report.LeafHistogram(doc, cfg.HistogramPath, cfg.HistogramBins); err != nil {
			logger.Error("Failed to render histogram", err, log.OperationKey, log.OperationReport)
			return res, err
		}
		logger.Info("Leaf histogram written", log.OperationKey, log.OperationReport, log.OutputPathKey, cfg.HistogramPath)
	}
	return res, nil
}

// metadata merges the loader metadata with the configured overrides.
func metadata(cfg Config, model *source.Model) dump.Metadata {
	meta := model.Meta
	meta.Name = modelName(cfg, model)
	if cfg.Objective != "" {
		meta.Objective = cfg.Objective
	}
	if cfg.BaseScore != nil {
		meta.BaseScore = cfg.BaseScore
	}
	if cfg.NumFeature > 0 {
		meta.NumFeature = cfg.NumFeature
	}
	return meta
}

func modelName(cfg Config, model *source.Model) string {
	if cfg.Name != "" {
		return cfg.Name
	}
	if model.Meta.Name != "" {
		return model.Meta.Name
	}
	return filepath.Base(cfg.ModelPath)
}

// writeDocument encodes doc into a temporary file next to path and renames
// it into place.
func writeDocument(doc *dump.Document, path string) (int64, error) {
	data, err := doc.Marshal()
	if err != nil {
		return 0, err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, errors.Wrapf(err, "create output directory %s", dir)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return 0, errors.Wrap(err, "create temporary output")
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return 0, errors.Wrapf(err, "chmod %s", tmp.Name())
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return 0, errors.Wrapf(err, "write %s", tmp.Name())
	}
	if err := tmp.Close(); err != nil {
		return 0, errors.Wrapf(err, "close %s", tmp.Name())
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return 0, errors.Wrapf(err, "rename output to %s", path)
	}
	return int64(len(data)), nil
}
