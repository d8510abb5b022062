package records

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/amp-labs/duesort/logger"
	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/saintfish/chardet"
	"golang.org/x/net/html/charset"
)

// Compression names a supported input compression.
type Compression string

const (
	CompressionNone   Compression = ""
	CompressionGzip   Compression = "gzip"
	CompressionZstd   Compression = "zstd"
	CompressionLz4    Compression = "lz4"
	CompressionBrotli Compression = "br"
)

var (
	gzipMagic = []byte{0x1f, 0x8b}             //nolint:gochecknoglobals
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd} //nolint:gochecknoglobals
	lz4Magic  = []byte{0x04, 0x22, 0x4d, 0x18} //nolint:gochecknoglobals
)

// DetectCompression looks at magic bytes first. Brotli streams have no
// magic number, so they are only recognized by a ".br" file name.
func DetectCompression(data []byte, name string) Compression {
	switch {
	case bytes.HasPrefix(data, gzipMagic):
		return CompressionGzip
	case bytes.HasPrefix(data, zstdMagic):
		return CompressionZstd
	case bytes.HasPrefix(data, lz4Magic):
		return CompressionLz4
	case strings.EqualFold(filepath.Ext(name), ".br"):
		return CompressionBrotli
	default:
		return CompressionNone
	}
}

// Decompress undoes the compression detected by DetectCompression.
func Decompress(data []byte, name string) ([]byte, error) {
	var (
		rdr io.Reader
		err error
	)

	kind := DetectCompression(data, name)

	switch kind {
	case CompressionNone:
		return data, nil
	case CompressionGzip:
		var gz *gzip.Reader

		gz, err = gzip.NewReader(bytes.NewReader(data))
		if err == nil {
			defer gz.Close()

			rdr = gz
		}
	case CompressionZstd:
		var zr *zstd.Decoder

		zr, err = zstd.NewReader(bytes.NewReader(data))
		if err == nil {
			defer zr.Close()

			rdr = zr
		}
	case CompressionLz4:
		rdr = lz4.NewReader(bytes.NewReader(data))
	case CompressionBrotli:
		rdr = brotli.NewReader(bytes.NewReader(data))
	}

	if err != nil {
		return nil, fmt.Errorf("opening %s stream: %w", kind, err)
	}

	out, err := io.ReadAll(rdr)
	if err != nil {
		return nil, fmt.Errorf("reading %s stream: %w", kind, err)
	}

	return out, nil
}

// ToUTF8 returns data as UTF-8. Valid UTF-8 (with or without a byte order
// mark) passes through. Anything else is run through charset detection and
// converted; if detection fails the data is returned unchanged and the
// decoder will report the problem.
func ToUTF8(data []byte) ([]byte, string) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	if utf8.Valid(data) {
		return data, "utf-8"
	}

	best, err := chardet.NewTextDetector().DetectBest(data)
	if err != nil {
		return data, "unknown"
	}

	rdr, err := charset.NewReaderLabel(best.Charset, bytes.NewReader(data))
	if err != nil {
		return data, best.Charset
	}

	decoded, err := io.ReadAll(rdr)
	if err != nil || !utf8.Valid(decoded) {
		return data, best.Charset
	}

	return decoded, best.Charset
}

// Prepare decompresses and transcodes raw input.
func Prepare(ctx context.Context, data []byte, name string) ([]byte, error) {
	data, err := Decompress(data, name)
	if err != nil {
		return nil, err
	}

	data, cs := ToUTF8(data)
	if cs != "utf-8" {
		logger.Get(ctx).Debug("transcoded input", "source", name, "charset", cs)
	}

	return data, nil
}

// Load reads, decompresses, transcodes and decodes a record file. The path
// "-" reads standard input. FormatAuto uses the file name, then the content.
func Load(ctx context.Context, path string, format Format) ([]Map, error) {
	if path == "-" {
		return Read(ctx, os.Stdin, path, format)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	defer f.Close() //nolint:errcheck

	return Read(ctx, f, path, format)
}

// Read is Load for an already open stream; name is used for format and
// compression detection and in error messages.
func Read(ctx context.Context, r io.Reader, name string, format Format) ([]Map, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	data, err = Prepare(ctx, data, name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	if format == FormatAuto || format == "" {
		format = FormatFromPath(name)
	}

	items, err := Decode(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	logger.Get(ctx).Debug("loaded records", "source", name, "records", len(items))

	return items, nil
}
