package main

import (
	"context"
	"errors"
	"strings"

	"github.com/amp-labs/duesort/build"
	"github.com/amp-labs/duesort/envutil"
	"github.com/amp-labs/duesort/keysort"
	"github.com/amp-labs/duesort/logger"
	"github.com/amp-labs/duesort/records"
	"github.com/amp-labs/duesort/shutdown"
	"github.com/amp-labs/duesort/telemetry"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

const (
	appName = "duesort"

	// Environment variables read by the CLI.
	envDueField    = "DUESORT_DUE_FIELD"
	envIDField     = "DUESORT_ID_FIELD"
	envEnvironment = "DUESORT_ENV"
	envLogOutput   = "LOG_OUTPUT"
)

// rootFlags are shared by every subcommand.
type rootFlags struct {
	format       string
	dueField     string
	idField      string
	separator    string
	duplicates   string
	compare      string
	dateLayout   string
	rawDates     bool
	normalizeIDs bool
}

type app struct {
	flags     rootFlags
	shutdown  *shutdown.Handler
	providers *telemetry.Providers
}

func newRootCmd(handler *shutdown.Handler) *cobra.Command {
	a := &app{shutdown: handler}

	root := &cobra.Command{
		Use:   appName,
		Short: "Sort records by due date and id",
		Long: `duesort orders records by the key "<due date><separator><id>".

Records are read from files or standard input as JSON, NDJSON or YAML,
optionally compressed with gzip, zstd, lz4 or brotli.

Settings come from flags, then DUESORT_* environment variables, then defaults.`,
		Version:           build.Read().String(),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.format, "format", string(records.FormatAuto),
		"Input format ("+strings.Join(records.FormatNames, ", ")+")")
	pf.StringVar(&a.flags.dueField, "due-field", records.DefaultDueField, "Field holding the due date")
	pf.StringVar(&a.flags.idField, "id-field", records.DefaultIDField, "Field holding the id")
	pf.StringVar(&a.flags.separator, "separator", keysort.DefaultSeparator, "Text between due date and id in the key")
	pf.StringVar(&a.flags.duplicates, "duplicates", keysort.DuplicateFail.String(),
		"Duplicate key policy ("+strings.Join(keysort.PolicyNames, ", ")+")")
	pf.StringVar(&a.flags.compare, "compare", keysort.CompareLexicographic.String(),
		"Key comparison ("+strings.Join(keysort.ComparisonNames, ", ")+")")
	pf.StringVar(&a.flags.dateLayout, "date-layout", keysort.DefaultDateLayout, "Layout due dates are rewritten to")
	pf.BoolVar(&a.flags.rawDates, "raw-dates", false, "Use date strings verbatim instead of canonicalizing them")
	pf.BoolVar(&a.flags.normalizeIDs, "normalize-ids", false, "Apply Unicode NFC normalization to ids")

	root.AddCommand(newSortCmd(a), newCheckCmd(a), newValidateCmd(a))

	return root
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	ctx := logger.WithSubsystem(cmd.Context(), appName)
	ctx = logger.WithRunId(ctx, uuid.NewString())

	var logOpts []logger.Option
	if !envutil.String(ctx, envLogOutput).HasValue() {
		logOpts = append(logOpts, logger.WithOutput(cmd.ErrOrStderr()))
	}

	logger.ConfigureLogging(ctx, appName, logOpts...)
	logger.Get(ctx).Debug("starting", "build", build.Read())

	env := envutil.String(ctx, envEnvironment, envutil.Default("local")).ValueOrElse("local")

	cfg, err := telemetry.LoadConfigFromEnv(ctx, env)
	if err != nil {
		return err
	}

	a.providers, err = telemetry.Initialize(ctx, cfg)
	if err != nil {
		return err
	}

	// The OTel bridge can only be attached once a LoggerProvider exists.
	if a.providers.Logs != nil {
		logger.ConfigureLogging(ctx, appName, append(logOpts, logger.WithOTel(true))...)
	}

	a.shutdown.BeforeShutdown(func(ctx context.Context) {
		if err := telemetry.Flush(context.WithoutCancel(ctx), a.providers); err != nil {
			logger.Get(ctx).Warn("flushing telemetry", "error", err)
		}
	})

	cmd.SetContext(ctx)

	return nil
}

// run wraps a subcommand so telemetry is flushed whether or not it fails.
func (a *app) run(f func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := f(cmd, args)

		return errors.Join(err, telemetry.Shutdown(context.WithoutCancel(cmd.Context()), a.providers))
	}
}

// sorter builds a sorter from defaults, the environment and any flag the
// user set explicitly, in that order.
func (a *app) sorter(cmd *cobra.Command) (*keysort.Sorter[records.Map], error) {
	ctx := cmd.Context()
	flags := cmd.Flags()

	opts, err := keysort.OptionsFromEnv(ctx)
	if err != nil {
		return nil, err
	}

	if flags.Changed("separator") {
		opts = append(opts, keysort.WithSeparator(a.flags.separator))
	}

	if flags.Changed("duplicates") {
		policy, err := keysort.ParseDuplicatePolicy(a.flags.duplicates)
		if err != nil {
			return nil, err
		}

		opts = append(opts, keysort.WithDuplicatePolicy(policy))
	}

	if flags.Changed("compare") {
		cmp, err := keysort.ParseComparison(a.flags.compare)
		if err != nil {
			return nil, err
		}

		opts = append(opts, keysort.WithComparison(cmp))
	}

	if flags.Changed("date-layout") {
		opts = append(opts, keysort.WithDateLayout(a.flags.dateLayout))
	}

	if flags.Changed("raw-dates") {
		opts = append(opts, keysort.WithCanonicalDates(!a.flags.rawDates))
	}

	if flags.Changed("normalize-ids") {
		opts = append(opts, keysort.WithNormalizedIDs(a.flags.normalizeIDs))
	}

	dueField := a.field(cmd, "due-field", envDueField, a.flags.dueField)
	idField := a.field(cmd, "id-field", envIDField, a.flags.idField)

	return keysort.New(records.Fields(dueField, idField), opts...), nil
}

func (a *app) field(cmd *cobra.Command, flag, env, flagValue string) string {
	if cmd.Flags().Changed(flag) {
		return flagValue
	}

	return envutil.String(cmd.Context(), env, envutil.Default(flagValue)).ValueOrElse(flagValue)
}

type input struct {
	name  string
	items []records.Map
}

// load reads every named file, or standard input when there are none.
func (a *app) load(cmd *cobra.Command, paths []string) ([]input, error) {
	format, err := records.ParseFormat(a.flags.format)
	if err != nil {
		return nil, err
	}

	ctx := cmd.Context()

	if len(paths) == 0 {
		items, err := records.Read(ctx, cmd.InOrStdin(), "-", format)
		if err != nil {
			return nil, err
		}

		return []input{{name: "-", items: items}}, nil
	}

	inputs := make([]input, 0, len(paths))

	for _, path := range paths {
		var (
			items []records.Map
			err   error
		)

		if path == "-" {
			items, err = records.Read(ctx, cmd.InOrStdin(), path, format)
		} else {
			items, err = records.Load(ctx, path, format)
		}

		if err != nil {
			return nil, err
		}

		inputs = append(inputs, input{name: path, items: items})
	}

	return inputs, nil
}
