package records

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	duerrors "github.com/amp-labs/duesort/errors"
	"gopkg.in/yaml.v3"
)

// maxLineSize bounds a single NDJSON line.
const maxLineSize = 16 << 20

// Decode parses a list of records. FormatAuto inspects the content.
// JSON numbers are kept as json.Number so large identifiers survive intact.
func Decode(data []byte, format Format) ([]Map, error) {
	if format == FormatAuto || format == "" {
		format = sniff(data)
	}

	var (
		out []Map
		err error
	)

	switch format {
	case FormatJSON:
		out, err = decodeJSON(data)
	case FormatNDJSON:
		out, err = decodeNDJSON(data)
	case FormatYAML:
		out, err = decodeYAML(data)
	default:
		return nil, fmt.Errorf("%w: %q", duerrors.ErrUnknownFormat, format)
	}

	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", format, err)
	}

	if out == nil {
		out = []Map{}
	}

	return out, nil
}

func decodeJSON(data []byte) ([]Map, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var out []Map
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}

	return out, nil
}

func decodeNDJSON(data []byte) ([]Map, error) {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var out []Map

	line := 0

	for scanner.Scan() {
		line++

		text := bytes.TrimSpace(scanner.Bytes())
		if len(text) == 0 {
			continue
		}

		dec := json.NewDecoder(bytes.NewReader(text))
		dec.UseNumber()

		var m Map
		if err := dec.Decode(&m); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		out = append(out, m)
	}

	return out, scanner.Err()
}

func decodeYAML(data []byte) ([]Map, error) {
	var out []Map

	err := yaml.Unmarshal(data, &out)
	if errors.Is(err, io.EOF) {
		return nil, nil
	}

	return out, err
}

// Encode writes records in the given format. FormatAuto writes JSON.
func Encode(w io.Writer, items []Map, format Format) error {
	switch format {
	case FormatJSON, FormatAuto, "":
		if items == nil {
			items = []Map{}
		}

		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		return enc.Encode(items)
	case FormatNDJSON:
		enc := json.NewEncoder(w)

		for _, item := range items {
			if err := enc.Encode(item); err != nil {
				return err
			}
		}

		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2) //nolint:mnd

		if err := enc.Encode(items); err != nil {
			return err
		}

		return enc.Close()
	default:
		return fmt.Errorf("%w: %q", duerrors.ErrUnknownFormat, format)
	}
}
