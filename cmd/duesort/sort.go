package main

import (
	"fmt"

	"github.com/amp-labs/duesort/batch"
	"github.com/amp-labs/duesort/keysort"
	"github.com/amp-labs/duesort/logger"
	"github.com/amp-labs/duesort/records"
	"github.com/spf13/cobra"
)

type sortFlags struct {
	outputFormat string
	keys         bool
	workers      int
}

func newSortCmd(a *app) *cobra.Command {
	var flags sortFlags

	cmd := &cobra.Command{
		Use:   "sort [files...]",
		Short: "Sort records and write them to standard output",
		Long: `Sort records by due date and id.

Each file is sorted on its own and written in argument order. With no files
records are read from standard input.

Examples:
  duesort sort tasks.json
  duesort sort --format=ndjson --output-format=yaml < tasks.ndjson
  duesort sort --duplicates=keep-order --compare=natural a.yaml b.json.gz
  duesort sort --keys tasks.json`,
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			return runSort(cmd, a, &flags, args)
		}),
	}

	cmd.Flags().StringVar(&flags.outputFormat, "output-format", string(records.FormatJSON),
		"Output format (json, ndjson, yaml)")
	cmd.Flags().BoolVar(&flags.keys, "keys", false, "Print the sort keys instead of the records")
	cmd.Flags().IntVar(&flags.workers, "workers", 0,
		"Files sorted at the same time (default from "+batch.EnvWorkers+")")

	return cmd
}

func runSort(cmd *cobra.Command, a *app, flags *sortFlags, args []string) error {
	ctx := cmd.Context()

	outFormat, err := records.ParseFormat(flags.outputFormat)
	if err != nil {
		return err
	}

	sorter, err := a.sorter(cmd)
	if err != nil {
		return err
	}

	inputs, err := a.load(cmd, args)
	if err != nil {
		return err
	}

	sets := make([][]records.Map, len(inputs))
	for i, in := range inputs {
		sets[i] = in.items
	}

	sorted, err := batch.SortAll(ctx, sorter, sets, batch.WithWorkers(flags.workers))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	log := logger.Get(ctx)

	for i, set := range sorted {
		keys, err := sorter.Keys(ctx, set)
		if err != nil {
			return fmt.Errorf("%s: %w", inputs[i].name, err)
		}

		log.Debug("sorted input",
			"source", inputs[i].name,
			"records", len(set),
			"dropped", len(inputs[i].items)-len(set),
			"fingerprint", fmt.Sprintf("%016x", keysort.Fingerprint(keys)))

		if flags.keys {
			for _, key := range keys {
				if _, err := fmt.Fprintln(out, key); err != nil {
					return err
				}
			}

			continue
		}

		if err := records.Encode(out, set, outFormat); err != nil {
			return fmt.Errorf("%s: %w", inputs[i].name, err)
		}
	}

	return nil
}
