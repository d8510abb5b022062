package records

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	duerrors "github.com/amp-labs/duesort/errors"
)

// Format is a serialization of a record list.
type Format string

const (
	FormatAuto   Format = "auto"
	FormatJSON   Format = "json"
	FormatNDJSON Format = "ndjson"
	FormatYAML   Format = "yaml"
)

// FormatNames lists the accepted spellings for ParseFormat.
var FormatNames = []string{"auto", "json", "ndjson", "yaml"} //nolint:gochecknoglobals

// ParseFormat parses a format name. "jsonl" and "yml" are accepted aliases.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return FormatAuto, nil
	case "json":
		return FormatJSON, nil
	case "ndjson", "jsonl":
		return FormatNDJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q", duerrors.ErrUnknownFormat, s)
	}
}

// compressionExts are stripped before looking at the format extension.
var compressionExts = []string{".gz", ".zst", ".lz4", ".br"} //nolint:gochecknoglobals

// FormatFromPath guesses the format from a file name such as
// "tasks.ndjson.gz". It returns FormatAuto when the name says nothing.
func FormatFromPath(path string) Format {
	name := strings.ToLower(filepath.Base(path))

	for _, ext := range compressionExts {
		name = strings.TrimSuffix(name, ext)
	}

	switch filepath.Ext(name) {
	case ".json":
		return FormatJSON
	case ".ndjson", ".jsonl":
		return FormatNDJSON
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatAuto
	}
}

// sniff picks a format from content: a leading '[' is a JSON array, a
// leading '{' is newline-delimited JSON, anything else is YAML.
func sniff(data []byte) Format {
	trimmed := bytes.TrimLeft(data, " \t\r\n\ufeff")

	switch {
	case len(trimmed) == 0, trimmed[0] == '[':
		return FormatJSON
	case trimmed[0] == '{':
		return FormatNDJSON
	default:
		return FormatYAML
	}
}
