package dump

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/YuminosukeSato/treeport/pkg/errors"
)

const (
	leafMarker    = "leaf="
	yesMarker     = "yes="
	noMarker      = "no="
	missingMarker = "missing="
)

// ParseNode parses one trimmed dump record:
//
//	<id>:leaf=<value>[,cover=...]
//	<id>:[<feature><<threshold>] yes=<id>,no=<id>[,missing=<id>][...]
//
// Records that do not fit the grammar return a *errors.MalformedRecordError.
func ParseNode(line string) (Node, error) {
	sep := strings.IndexByte(line, ':')
	if sep < 0 {
		return Node{}, errors.NewMalformedRecordError(line, "missing ':' after node id")
	}

	id, err := parseID(strings.TrimSpace(line[:sep]))
	if err != nil {
		return Node{}, errors.NewMalformedRecordError(line, "invalid node id: "+err.Error())
	}
	content := strings.TrimSpace(line[sep+1:])

	if strings.HasPrefix(content, leafMarker) {
		return parseLeaf(line, id, content[len(leafMarker):])
	}
	return parseSplit(line, id, content)
}

func parseLeaf(line string, id int, rest string) (Node, error) {
	token := valueToken(rest)
	value, err := parseDecimal(token)
	if err != nil {
		return Node{}, errors.NewMalformedRecordError(line, "invalid leaf value "+strconv.Quote(token))
	}
	if err := errors.CheckScalar("leaf value", value); err != nil {
		return Node{}, errors.NewMalformedRecordError(line, err.Error())
	}
	return Node{ID: id, Kind: Leaf, Value: value}, nil
}

func parseSplit(line string, id int, content string) (Node, error) {
	lt := strings.IndexByte(content, '<')
	if lt < 0 {
		return Node{}, errors.NewMalformedRecordError(line, "split record has no '<' condition")
	}

	token := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(content[:lt]), "["))
	if token == "" {
		return Node{}, errors.NewMalformedRecordError(line, "split record has an empty feature")
	}

	// The threshold runs to the next whitespace; "[f0<2.5]" closes with a bracket.
	rest := strings.TrimLeftFunc(content[lt+1:], unicode.IsSpace)
	end := strings.IndexFunc(rest, unicode.IsSpace)
	if end < 0 {
		return Node{}, errors.NewMalformedRecordError(line, "split record has no child markers")
	}
	thresholdText := strings.TrimSuffix(rest[:end], "]")
	threshold, err := parseDecimal(thresholdText)
	if err != nil {
		return Node{}, errors.NewMalformedRecordError(line, "invalid threshold "+strconv.Quote(thresholdText))
	}
	if err := errors.CheckScalar("threshold", threshold); err != nil {
		return Node{}, errors.NewMalformedRecordError(line, err.Error())
	}

	if isIndexToken(token) {
		if _, err := strconv.Atoi(token[1:]); err != nil {
			return Node{}, errors.NewMalformedRecordError(line, "feature index out of range "+strconv.Quote(token))
		}
	}

	markers := rest[end:]
	yes, found, err := childID(markers, yesMarker)
	if err != nil || !found {
		return Node{}, errors.NewMalformedRecordError(line, markerReason(yesMarker, found, err))
	}
	no, found, err := childID(markers, noMarker)
	if err != nil || !found {
		return Node{}, errors.NewMalformedRecordError(line, markerReason(noMarker, found, err))
	}
	missing, hasMissing, err := childID(markers, missingMarker)
	if err != nil {
		return Node{}, errors.NewMalformedRecordError(line, markerReason(missingMarker, true, err))
	}

	return Node{
		ID:         id,
		Kind:       Split,
		Feature:    ResolveFeature(token),
		Threshold:  threshold,
		Yes:        yes,
		No:         no,
		Missing:    missing,
		HasMissing: hasMissing,
	}, nil
}

// childID finds marker in s and parses the id following it. found is false
// when the marker does not occur.
func childID(s, marker string) (id int, found bool, err error) {
	i := markerIndex(s, marker)
	if i < 0 {
		return 0, false, nil
	}
	id, err = parseID(valueToken(s[i+len(marker):]))
	return id, true, err
}

// markerIndex returns the position of marker where it starts a token, so
// that "no=" is not matched inside another key ending in "no".
func markerIndex(s, marker string) int {
	offset := 0
	for {
		i := strings.Index(s[offset:], marker)
		if i < 0 {
			return -1
		}
		pos := offset + i
		if pos == 0 || isTokenBoundary(rune(s[pos-1])) {
			return pos
		}
		offset = pos + len(marker)
	}
}

// valueToken returns the prefix of s up to the first whitespace or comma.
func valueToken(s string) string {
	if end := strings.IndexFunc(s, isTokenBoundary); end >= 0 {
		return s[:end]
	}
	return s
}

func isTokenBoundary(r rune) bool {
	return r == ',' || unicode.IsSpace(r)
}

func parseID(s string) (int, error) {
	if !isDigits(s) {
		return 0, errors.Newf("%q is not a non-negative integer", s)
	}
	id, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.Wrapf(err, "node id %q", s)
	}
	return id, nil
}

// parseDecimal parses a plain decimal number with an optional exponent.
// Hex floats, underscores and textual infinities are rejected.
func parseDecimal(s string) (float64, error) {
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c >= '0' && c <= '9', c == '.', c == '+', c == '-', c == 'e', c == 'E':
		default:
			return 0, errors.Newf("%q is not a decimal number", s)
		}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "number %q", s)
	}
	return v, nil
}

func markerReason(marker string, found bool, err error) string {
	if !found {
		return "missing " + marker + " child marker"
	}
	return "invalid " + marker + " child: " + err.Error()
}
