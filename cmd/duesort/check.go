package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var errNotSorted = errors.New("input is not sorted")

func newCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check [files...]",
		Short: "Report whether inputs are already in key order",
		Long: `Check that every input is already ordered by due date and id.

Exits non-zero if any input is out of order or holds an invalid record.`,
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, a, args)
		}),
	}
}

func runCheck(cmd *cobra.Command, a *app, args []string) error {
	sorter, err := a.sorter(cmd)
	if err != nil {
		return err
	}

	inputs, err := a.load(cmd, args)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	unsorted := 0

	for _, in := range inputs {
		ok, err := sorter.IsSorted(cmd.Context(), in.items)
		if err != nil {
			return fmt.Errorf("%s: %w", in.name, err)
		}

		status := "sorted"
		if !ok {
			status = "not sorted"
			unsorted++
		}

		if _, err := fmt.Fprintf(out, "%s: %s\n", in.name, status); err != nil {
			return err
		}
	}

	if unsorted > 0 {
		return fmt.Errorf("%w: %d of %d inputs", errNotSorted, unsorted, len(inputs))
	}

	return nil
}
