// Package source reads a trained ensemble from disk and hands the converter
// one dump string per boosting round together with the ensemble metadata.
//
// The loader is chosen once, at the boundary, by Resolve. Native booster
// formats that require the training library to decode are rejected with an
// UnsupportedSourceFormatError before any parsing happens.
package source

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/YuminosukeSato/treeport/dump"
	"github.com/YuminosukeSato/treeport/pkg/errors"
)

// Format names reported by the loaders.
const (
	FormatText   = "text"
	FormatBundle = "bundle"
)

// sniffLen is the number of leading bytes inspected when the extension does
// not identify the format.
const sniffLen = 512

// Model is a loaded ensemble: metadata plus one dump per tree in round order.
type Model struct {
	Meta  dump.Metadata
	Dumps []string
}

// Loader reads one source format.
type Loader interface {
	// Format returns the short format name used in logs.
	Format() string
	// Load reads the model stored at path.
	Load(ctx context.Context, path string) (*Model, error)
}

// nativeFormats are binary booster encodings that only the training library
// can decode.
var nativeFormats = map[string]string{
	".model":  "xgboost binary",
	".bin":    "xgboost binary",
	".ubj":    "universal binary json",
	".pkl":    "python pickle",
	".pickle": "python pickle",
}

// Resolve picks the loader for path. The extension decides first; an
// unknown extension falls back to sniffing the first bytes of the file.
func Resolve(path string) (Loader, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".txt", ".dump":
		return TextLoader{}, nil
	case ".json", ".jsonc":
		return BundleLoader{}, nil
	}
	if format, ok := nativeFormats[ext]; ok {
		return nil, errors.NewUnsupportedSourceFormatError(path, format,
			"dump the booster to text with Booster.dump_model() first")
	}

	head, err := readHead(path)
	if err != nil {
		return nil, err
	}
	if loader := sniff(head); loader != nil {
		return loader, nil
	}
	return nil, errors.NewUnsupportedSourceFormatError(path, ext, "content is neither a tree dump nor a JSON bundle")
}

// Load resolves the loader for path and reads the model.
func Load(ctx context.Context, path string) (*Model, Loader, error) {
	loader, err := Resolve(path)
	if err != nil {
		return nil, nil, err
	}
	model, err := loader.Load(ctx, path)
	if err != nil {
		return nil, loader, err
	}
	return model, loader, nil
}

func readHead(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open model %s", path)
	}
	defer f.Close()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, errors.Wrapf(err, "read model %s", path)
	}
	return head[:n], nil
}

func sniff(head []byte) Loader {
	head = bytes.TrimLeft(head, " \t\r\n\ufeff")
	switch {
	case len(head) == 0:
		return nil
	case head[0] == '{' || bytes.HasPrefix(head, []byte("//")) || bytes.HasPrefix(head, []byte("/*")):
		return BundleLoader{}
	case bytes.HasPrefix(head, []byte(boosterPrefix)):
		return TextLoader{}
	}
	// A bare dump starts with "<id>:".
	i := 0
	for i < len(head) && head[i] >= '0' && head[i] <= '9' {
		i++
	}
	if i > 0 && i < len(head) && head[i] == ':' {
		return TextLoader{}
	}
	return nil
}

func modelName(path string) string {
	return filepath.Base(path)
}

func readModel(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.WithStack(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read model %s", path)
	}
	return data, nil
}
