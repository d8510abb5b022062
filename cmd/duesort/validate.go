package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var errInvalidInput = errors.New("input has invalid records")

func newValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [files...]",
		Short: "List every record that cannot be sorted",
		Long: `Validate derives the key of every record and lists all problems found:
missing or unparseable due dates, missing ids and, under the fail policy,
duplicate keys. Unlike sort it does not stop at the first problem.`,
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, a, args)
		}),
	}
}

func runValidate(cmd *cobra.Command, a *app, args []string) error {
	sorter, err := a.sorter(cmd)
	if err != nil {
		return err
	}

	inputs, err := a.load(cmd, args)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	invalid := 0

	for _, in := range inputs {
		verr := sorter.Validate(cmd.Context(), in.items)
		if verr == nil {
			if _, err := fmt.Fprintf(out, "%s: ok\n", in.name); err != nil {
				return err
			}

			continue
		}

		invalid++

		if _, err := fmt.Fprintf(out, "%s:\n  %s\n", in.name,
			strings.ReplaceAll(verr.Error(), "\n", "\n  ")); err != nil {
			return err
		}
	}

	if invalid > 0 {
		return fmt.Errorf("%w: %d of %d inputs", errInvalidInput, invalid, len(inputs))
	}

	return nil
}
