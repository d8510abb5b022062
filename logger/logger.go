package logger

import (
	"context"
	"io"
	"log"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"

	"github.com/amp-labs/duesort/envutil"
	"go.opentelemetry.io/contrib/bridges/otelslog"
)

// Default subsystem, set by ConfigureLogging.
var subsystem atomic.Value //nolint:gochecknoglobals

// configMutex serializes ConfigureLoggingWithOptions, which replaces the
// process-wide slog and log defaults.
var configMutex sync.Mutex //nolint:gochecknoglobals

type contextKey string

// Options is used to configure logging.
type Options struct {
	Subsystem   string
	JSON        bool
	MinLevel    slog.Level
	LegacyLevel slog.Level
	Output      io.Writer

	// OTel additionally sends every record to the OpenTelemetry log bridge.
	// The global LoggerProvider must be installed first (see telemetry).
	OTel bool
}

// ConfigureLoggingWithOptions configures logging for the application and
// returns the default logger.
func ConfigureLoggingWithOptions(opts Options) *slog.Logger {
	configMutex.Lock()
	defer configMutex.Unlock()

	var handler slog.Handler

	if opts.Output == nil {
		opts.Output = os.Stderr
	}

	if opts.JSON {
		handler = slog.NewJSONHandler(opts.Output, &slog.HandlerOptions{
			Level: opts.MinLevel,
		})
	} else {
		handler = slog.NewTextHandler(opts.Output, &slog.HandlerOptions{
			Level: opts.MinLevel,
		})
	}

	if opts.OTel {
		handler = newFanoutHandler(handler, otelslog.NewHandler(opts.Subsystem))
	}

	logger := slog.New(handler)

	slog.SetDefault(logger)

	// Third-party packages using the log package end up in slog too.
	def := log.Default()
	*def = *slog.NewLogLogger(handler, opts.LegacyLevel)

	subsystem.Store(opts.Subsystem)

	return logger
}

// Option is a functional option for configuring logging via ConfigureLogging.
type Option func(*Options)

// WithOutput overrides the writer chosen by LOG_OUTPUT.
func WithOutput(w io.Writer) Option {
	return func(o *Options) {
		o.Output = w
	}
}

// WithOTel toggles the OpenTelemetry log bridge.
func WithOTel(enabled bool) Option {
	return func(o *Options) {
		o.OTel = enabled
	}
}

// logOutputs are the values accepted for LOG_OUTPUT.
var logOutputs = []string{"stdout", "stderr"} //nolint:gochecknoglobals

// ConfigureLogging configures logging from the environment:
// LOG_JSON, LOG_LEVEL, LEGACY_LOG_LEVEL and LOG_OUTPUT (stdout|stderr).
// Output defaults to stderr so that sorted records on stdout stay clean.
func ConfigureLogging(ctx context.Context, app string, opts ...Option) *slog.Logger {
	logJSON := envutil.Bool(ctx, "LOG_JSON", envutil.Default(false)).ValueOrFatal()

	minLevel := envutil.SlogLevel(ctx, "LOG_LEVEL", envutil.Default(slog.LevelInfo)).ValueOrFatal()

	legacyLevel := envutil.SlogLevel(ctx, "LEGACY_LOG_LEVEL", envutil.Default(slog.LevelInfo)).ValueOrFatal()

	output := envutil.Map(envutil.OneOf(ctx, "LOG_OUTPUT", logOutputs), func(outName string) (*os.File, error) {
		if outName == "stdout" {
			return os.Stdout, nil
		}

		return os.Stderr, nil
	}).WithDefault(os.Stderr).ValueOrFatal()

	options := Options{
		Subsystem:   app,
		JSON:        logJSON,
		MinLevel:    minLevel,
		LegacyLevel: legacyLevel,
		Output:      output,
	}

	for _, o := range opts {
		o(&options)
	}

	return ConfigureLoggingWithOptions(options)
}

// WithMuted marks the context so that Get returns a logger which discards
// everything.
func WithMuted(ctx context.Context, muted bool) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}

	return context.WithValue(ctx, contextKey("mute"), muted)
}

func isMuted(ctx context.Context) bool {
	if ctx == nil {
		return false
	}

	muted, ok := ctx.Value(contextKey("mute")).(bool)

	return ok && muted
}

// WithSubsystem overrides the default subsystem for loggers derived from ctx.
func WithSubsystem(ctx context.Context, subsystem string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}

	return context.WithValue(ctx, contextKey("subsystem"), subsystem)
}

// GetSubsystem returns the subsystem from the context, or the default one.
func GetSubsystem(ctx context.Context) string { //nolint:contextcheck
	if ctx == nil {
		ctx = context.Background()
	}

	if val, ok := ctx.Value(contextKey("subsystem")).(string); ok {
		return val
	}

	if val, ok := subsystem.Load().(string); ok {
		return val
	}

	return ""
}

// WithRunId tags everything logged under ctx with a run identifier, so the
// lines of one CLI invocation can be grouped.
func WithRunId(ctx context.Context, runId string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}

	return context.WithValue(ctx, contextKey("run_id"), runId)
}

// GetRunId returns the run ID from the context.
func GetRunId(ctx context.Context) (string, bool) { //nolint:contextcheck
	if ctx == nil {
		ctx = context.Background()
	}

	val, ok := ctx.Value(contextKey("run_id")).(string)

	return val, ok
}

// getRealContext returns the first non-nil context, or context.Background().
func getRealContext(ctx ...context.Context) context.Context {
	for _, c := range ctx {
		if c != nil {
			return c
		}
	}

	return context.Background()
}

// nullHandler discards all output. It backs muted loggers.
type nullHandler struct{}

func (n *nullHandler) Enabled(_ context.Context, _ slog.Level) bool {
	return false
}

func (n *nullHandler) Handle(_ context.Context, _ slog.Record) error {
	return nil
}

func (n *nullHandler) WithAttrs(_ []slog.Attr) slog.Handler {
	return n
}

func (n *nullHandler) WithGroup(_ string) slog.Handler {
	return n
}

var nullLogger = slog.New(&nullHandler{}) //nolint:gochecknoglobals

// Get returns the default logger decorated with the subsystem, run id and
// any values attached through With. The first non-nil context is used.
//
//nolint:contextcheck
func Get(ctx ...context.Context) *slog.Logger {
	realCtx := getRealContext(ctx...)

	if isMuted(realCtx) {
		return nullLogger
	}

	logger := slog.Default().With("subsystem", GetSubsystem(realCtx))

	if runId, found := GetRunId(realCtx); found {
		logger = logger.With("run-id", runId)
	}

	if vals := getValues(realCtx); vals != nil {
		logger = logger.With(vals...)
	}

	return logger
}

// With returns a new context with the given values added.
// The values are added to the logger automatically.
func With(ctx context.Context, values ...any) context.Context {
	if len(values) == 0 && ctx != nil {
		return ctx
	}

	if ctx == nil {
		ctx = context.Background()
	}

	prev := getValues(ctx)
	vals := make([]any, 0, len(prev)+len(values))
	vals = append(vals, prev...)
	vals = append(vals, values...)

	return context.WithValue(ctx, contextKey("loggerValues"), vals)
}

func getValues(ctx context.Context) []any { //nolint:contextcheck
	if ctx == nil {
		return nil
	}

	vals, _ := ctx.Value(contextKey("loggerValues")).([]any)

	return vals
}
