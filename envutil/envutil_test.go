package envutil

import (
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestString(t *testing.T) {
	t.Parallel()

	t.Run("reads override", func(t *testing.T) {
		t.Parallel()

		ctx := WithEnvOverride(t.Context(), "DUESORT_TEST_SEP", "|")

		val, err := String(ctx, "DUESORT_TEST_SEP").Value()
		require.NoError(t, err)
		assert.Equal(t, "|", val)
	})

	t.Run("missing without default", func(t *testing.T) {
		t.Parallel()

		_, err := String(t.Context(), "DUESORT_TEST_UNSET_1").Value()
		require.ErrorIs(t, err, ErrEnvVarMissing)
	})

	t.Run("missing with default", func(t *testing.T) {
		t.Parallel()

		rdr := String(t.Context(), "DUESORT_TEST_UNSET_2", Default("-"))
		assert.True(t, rdr.HasValue())
		assert.Equal(t, "-", rdr.ValueOrElse("x"))
	})

	t.Run("missing with custom error", func(t *testing.T) {
		t.Parallel()

		sentinel := errors.New("need a separator") //nolint:err113

		_, err := String(t.Context(), "DUESORT_TEST_UNSET_3", IfMissing[string](sentinel)).Value()
		require.ErrorIs(t, err, sentinel)
	})
}

func TestProcessEnvironment(t *testing.T) { //nolint:paralleltest
	t.Setenv("DUESORT_TEST_FROM_ENV", "1")

	assert.True(t, Bool(t.Context(), "DUESORT_TEST_FROM_ENV").ValueOrElse(false))

	ctx := WithEnvOverride(t.Context(), "DUESORT_TEST_FROM_ENV", "false")
	assert.False(t, Bool(ctx, "DUESORT_TEST_FROM_ENV").ValueOrElse(true))

	t.Setenv("DUESORT_TEST_FROM_ENV", "yes")

	_, err := Bool(t.Context(), "DUESORT_TEST_FROM_ENV").Value()
	require.ErrorIs(t, err, ErrBadEnvVar)
}

func TestTypedReaders(t *testing.T) {
	t.Parallel()

	ctx := WithEnvOverrides(t.Context(), map[string]string{
		"T_BOOL":     "true",
		"T_BAD_BOOL": "maybe",
		"T_INT":      " 12 ",
		"T_DURATION": "1500ms",
		"T_LEVEL":    "WARN",
	})

	assert.True(t, Bool(ctx, "T_BOOL").ValueOrElse(false))

	_, err := Bool(ctx, "T_BAD_BOOL").Value()
	require.ErrorIs(t, err, ErrBadEnvVar)
	assert.True(t, Bool(ctx, "T_BAD_BOOL").HasError())

	assert.Equal(t, 12, Int[int](ctx, "T_INT").ValueOrElse(0))
	assert.Equal(t, 1500*time.Millisecond, Duration(ctx, "T_DURATION").ValueOrElse(0))
	assert.Equal(t, slog.LevelWarn, SlogLevel(ctx, "T_LEVEL").ValueOrElse(slog.LevelInfo))
}

func TestOneOf(t *testing.T) {
	t.Parallel()

	allowed := []string{"fail", "keep-order", "last-wins"}

	ctx := WithEnvOverrides(t.Context(), map[string]string{
		"T_OK":  " Keep-Order ",
		"T_BAD": "random",
	})

	val, err := OneOf(ctx, "T_OK", allowed).Value()
	require.NoError(t, err)
	assert.Equal(t, "keep-order", val)

	_, err = OneOf(ctx, "T_BAD", allowed).Value()
	require.ErrorIs(t, err, ErrNotAllowed)

	assert.Equal(t, "fail", OneOf(ctx, "T_UNSET", allowed, Default("fail")).ValueOrElse(""))
}

func TestValidate(t *testing.T) {
	t.Parallel()

	positive := Validate(func(n int) error {
		if n <= 0 {
			return errors.New("must be positive") //nolint:err113
		}

		return nil
	})

	ctx := WithEnvOverrides(t.Context(), map[string]string{"T_ZERO": "0", "T_TWO": "2"})

	assert.Equal(t, 2, Int(ctx, "T_TWO", positive).ValueOrElse(1))
	assert.Equal(t, 1, Int(ctx, "T_ZERO", positive).ValueOrElse(1))
}

func TestReader_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "K=v", NewReader("K", true, nil, "v").String())
	assert.Equal(t, "K=<not set>", NewReader("K", false, nil, "").String())
}
