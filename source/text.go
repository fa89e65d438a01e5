package source

import (
	"context"
	"strings"

	"github.com/YuminosukeSato/treeport/pkg/errors"
)

const boosterPrefix = "booster["

// TextLoader reads the text written by Booster.dump_model(). Every tree
// starts with a "booster[<n>]:" header line; a file without headers holds a
// single tree. The header numbers are not interpreted, trees keep file order.
type TextLoader struct{}

// Format implements Loader.
func (TextLoader) Format() string { return FormatText }

// Load implements Loader.
func (TextLoader) Load(ctx context.Context, path string) (*Model, error) {
	data, err := readModel(ctx, path)
	if err != nil {
		return nil, err
	}
	dumps, err := SplitBoosters(string(data))
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", path)
	}

	model := &Model{Dumps: dumps}
	model.Meta.Name = modelName(path)
	return model, nil
}

// SplitBoosters splits a dump_model() text into one dump per tree.
func SplitBoosters(text string) ([]string, error) {
	hasHeaders := containsHeader(text)
	var (
		dumps   []string
		current strings.Builder
		headers int
		lineNo  int
	)
	flush := func() {
		if headers > 0 {
			dumps = append(dumps, current.String())
		}
		current.Reset()
	}

	for len(text) > 0 {
		lineNo++
		line := text
		if i := strings.IndexByte(text, '\n'); i >= 0 {
			line, text = text[:i+1], text[i+1:]
		} else {
			text = ""
		}

		if isBoosterHeader(strings.TrimSpace(line)) {
			flush()
			headers++
			continue
		}
		if hasHeaders && headers == 0 && strings.TrimSpace(line) != "" {
			return nil, errors.Newf("line %d: text before the first booster header", lineNo)
		}
		current.WriteString(line)
	}

	if headers == 0 {
		return []string{current.String()}, nil
	}
	flush()
	return dumps, nil
}

func isBoosterHeader(line string) bool {
	if !strings.HasPrefix(line, boosterPrefix) || !strings.HasSuffix(line, "]:") {
		return false
	}
	n := line[len(boosterPrefix) : len(line)-2]
	if n == "" {
		return false
	}
	for i := 0; i < len(n); i++ {
		if n[i] < '0' || n[i] > '9' {
			return false
		}
	}
	return true
}

func containsHeader(rest string) bool {
	for rest != "" {
		line := rest
		if i := strings.IndexByte(rest, '\n'); i >= 0 {
			line, rest = rest[:i], rest[i+1:]
		} else {
			rest = ""
		}
		if isBoosterHeader(strings.TrimSpace(line)) {
			return true
		}
	}
	return false
}
