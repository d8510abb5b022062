package records

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"unicode/utf8"

	duerrors "github.com/amp-labs/duesort/errors"
	"github.com/amp-labs/duesort/keysort"
	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tasksJSON = `[
  {"Due_Date": "2024-01-05", "id": "b", "title": "write report"},
  {"Due_Date": "2024-01-01", "id": "a", "title": "book flights"},
  {"Due_Date": "2024-01-05", "id": "a", "title": "pay invoice"}
]`

func titles(items []Map) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i], _ = it["title"].(string)
	}

	return out
}

func TestDecode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		format Format
		want   int
	}{
		{"json array", tasksJSON, FormatJSON, 3},
		{"json sniffed", tasksJSON, FormatAuto, 3},
		{"empty json", "  ", FormatJSON, 0},
		{"ndjson", "{\"id\":\"a\"}\n\n{\"id\":\"b\"}\n", FormatNDJSON, 2},
		{"ndjson sniffed", "{\"id\":\"a\"}\n{\"id\":\"b\"}", FormatAuto, 2},
		{"yaml", "- id: a\n  Due_Date: 2024-01-01\n- id: b\n  Due_Date: 2024-01-02\n", FormatYAML, 2},
		{"yaml sniffed", "- id: a\n", FormatAuto, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			items, err := Decode([]byte(tt.input), tt.format)
			require.NoError(t, err)
			assert.NotNil(t, items)
			assert.Len(t, items, tt.want)
		})
	}
}

func TestDecode_Errors(t *testing.T) {
	t.Parallel()

	_, err := Decode([]byte(`[{"id": }]`), FormatJSON)
	require.Error(t, err)

	_, err = Decode([]byte("{\"id\":\"a\"}\nnot json\n"), FormatNDJSON)
	require.ErrorContains(t, err, "line 2")

	_, err = Decode([]byte("[]"), Format("csv"))
	require.ErrorIs(t, err, duerrors.ErrUnknownFormat)
}

func TestDecode_LargeIDsKeepPrecision(t *testing.T) {
	t.Parallel()

	items, err := Decode([]byte(`[{"Due_Date":"2024-01-01","id":12345678901234567890}]`), FormatJSON)
	require.NoError(t, err)

	keys, err := keysort.New(Fields("", "")).Keys(t.Context(), items)
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-01-01-12345678901234567890"}, keys)

	_, isNumber := items[0]["id"].(json.Number)
	assert.True(t, isNumber)
}

func TestFields_SortEndToEnd(t *testing.T) {
	t.Parallel()

	for _, format := range []Format{FormatJSON, FormatYAML} {
		t.Run(string(format), func(t *testing.T) {
			t.Parallel()

			src, err := Decode([]byte(tasksJSON), FormatJSON)
			require.NoError(t, err)

			var buf bytes.Buffer
			require.NoError(t, Encode(&buf, src, format))

			items, err := Decode(buf.Bytes(), format)
			require.NoError(t, err)

			out, err := keysort.New(Fields(DefaultDueField, DefaultIDField)).Sort(t.Context(), items)
			require.NoError(t, err)
			assert.Equal(t, []string{"book flights", "pay invoice", "write report"}, titles(out))
		})
	}
}

func TestFields_CustomNames(t *testing.T) {
	t.Parallel()

	items := []Map{
		{"deadline": "2024-02-01", "key": 2},
		{"deadline": "2024-01-01", "key": 1},
		{"deadline": nil, "key": 3},
	}

	sorter := keysort.New(Fields("deadline", "key"))

	out, err := sorter.Sort(t.Context(), items[:2])
	require.NoError(t, err)
	assert.Equal(t, 1, out[0]["key"])

	_, err = sorter.Sort(t.Context(), items)
	require.ErrorIs(t, err, keysort.ErrInvalidRecord)
}

func TestEncode_NDJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	require.NoError(t, Encode(&buf, []Map{{"id": "a"}, {"id": "b"}}, FormatNDJSON))
	assert.Equal(t, "{\"id\":\"a\"}\n{\"id\":\"b\"}\n", buf.String())

	buf.Reset()
	require.NoError(t, Encode(&buf, nil, FormatJSON))
	assert.JSONEq(t, "[]", buf.String())
}

func TestFormatFromPath(t *testing.T) {
	t.Parallel()

	assert.Equal(t, FormatJSON, FormatFromPath("tasks.json"))
	assert.Equal(t, FormatNDJSON, FormatFromPath("/tmp/tasks.jsonl.gz"))
	assert.Equal(t, FormatYAML, FormatFromPath("TASKS.YML.br"))
	assert.Equal(t, FormatAuto, FormatFromPath("-"))

	f, err := ParseFormat("yml")
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, f)

	_, err = ParseFormat("xml")
	require.ErrorIs(t, err, duerrors.ErrUnknownFormat)
}

func compress(t *testing.T, kind Compression, data []byte) []byte {
	t.Helper()

	var buf bytes.Buffer

	switch kind {
	case CompressionGzip:
		w := gzip.NewWriter(&buf)
		_, err := w.Write(data)
		require.NoError(t, err)
		require.NoError(t, w.Close())
	case CompressionZstd:
		w, err := zstd.NewWriter(&buf)
		require.NoError(t, err)
		_, err = w.Write(data)
		require.NoError(t, err)
		require.NoError(t, w.Close())
	case CompressionLz4:
		w := lz4.NewWriter(&buf)
		_, err := w.Write(data)
		require.NoError(t, err)
		require.NoError(t, w.Close())
	case CompressionBrotli:
		w := brotli.NewWriter(&buf)
		_, err := w.Write(data)
		require.NoError(t, err)
		require.NoError(t, w.Close())
	case CompressionNone:
		buf.Write(data)
	}

	return buf.Bytes()
}

func TestDecompress(t *testing.T) {
	t.Parallel()

	tests := []struct {
		kind Compression
		name string
	}{
		{CompressionNone, "tasks.json"},
		{CompressionGzip, "tasks.json.gz"},
		{CompressionZstd, "tasks.json.zst"},
		{CompressionLz4, "tasks.json.lz4"},
		{CompressionBrotli, "tasks.json.br"},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind)+"/"+tt.name, func(t *testing.T) {
			t.Parallel()

			packed := compress(t, tt.kind, []byte(tasksJSON))
			assert.Equal(t, tt.kind, DetectCompression(packed, tt.name))

			plain, err := Decompress(packed, tt.name)
			require.NoError(t, err)
			assert.Equal(t, tasksJSON, string(plain))
		})
	}

	t.Run("corrupt gzip", func(t *testing.T) {
		t.Parallel()

		_, err := Decompress([]byte{0x1f, 0x8b, 0x00, 0x01}, "x.gz")
		require.Error(t, err)
	})
}

func TestToUTF8(t *testing.T) {
	t.Parallel()

	t.Run("utf-8 passes through without BOM", func(t *testing.T) {
		t.Parallel()

		out, cs := ToUTF8([]byte("\xef\xbb\xbf[{\"id\":\"café\"}]"))
		assert.Equal(t, "utf-8", cs)
		assert.Equal(t, "[{\"id\":\"café\"}]", string(out))
	})

	t.Run("legacy single-byte text is converted", func(t *testing.T) {
		t.Parallel()

		// "Réunion à Genève, café crème et pâtisserie", ISO-8859-1 encoded.
		latin1 := []byte("R\xe9union \xe0 Gen\xe8ve, caf\xe9 cr\xe8me et p\xe2tisserie fran\xe7aise, " +
			"d\xe9j\xe0 r\xe9serv\xe9e pour le cong\xe8s d'\xe9t\xe9")
		require.False(t, utf8.Valid(latin1))

		out, cs := ToUTF8(latin1)
		assert.NotEqual(t, "utf-8", cs)
		assert.True(t, utf8.Valid(out))
	})
}

func TestLoad(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "tasks.ndjson.gz")

	ndjson := "{\"Due_Date\":\"2024-1-5\",\"id\":\"b\"}\n{\"Due_Date\":\"2024-1-1\",\"id\":\"a\"}\n"
	require.NoError(t, os.WriteFile(path, compress(t, CompressionGzip, []byte(ndjson)), 0o600))

	items, err := Load(t.Context(), path, FormatAuto)
	require.NoError(t, err)
	require.Len(t, items, 2)

	out, err := keysort.New(Fields("", "")).Sort(t.Context(), items)
	require.NoError(t, err)
	assert.Equal(t, "a", out[0]["id"])

	_, err = Load(t.Context(), filepath.Join(dir, "missing.json"), FormatAuto)
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestRead(t *testing.T) {
	t.Parallel()

	items, err := Read(t.Context(), bytes.NewReader([]byte("- id: x\n  Due_Date: 2024-02-01\n")), "tasks.yml", FormatAuto)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "x", items[0]["id"])

	_, err = Read(t.Context(), bytes.NewReader([]byte("[{")), "broken.json", FormatAuto)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.json")
}
