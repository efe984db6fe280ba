package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"marquee/internal/similarity"
)

func newModelCommand(ctx *commandContext) *cobra.Command {
	modelCmd := &cobra.Command{
		Use:   "model",
		Short: "Inspect and convert model artifacts",
	}
	modelCmd.AddCommand(newModelCheckCommand(ctx))
	modelCmd.AddCommand(newModelPackCommand())
	return modelCmd
}

func newModelCheckCommand(ctx *commandContext) *cobra.Command {
	var tolerance float64
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Load the configured artifacts and report inconsistencies",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := ctx.ensureModel()
			if err != nil {
				return err
			}
			report, err := m.Check(tolerance)
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, report)
			}

			out := cmd.OutOrStdout()
			rows := [][]string{
				{"Entries", strconv.Itoa(report.Entries)},
				{"Symmetric", yesNo(report.Symmetric)},
				{"Rows with non-maximal self score", strconv.Itoa(len(report.SelfNotMaximal))},
				{"Duplicate titles", strconv.Itoa(len(report.DuplicateTitles))},
			}
			writeRows(out, []string{"Check", "Result"}, rows, []columnAlignment{alignLeft, alignRight})
			if len(report.DuplicateTitles) > 0 {
				fmt.Fprintf(out, "Duplicate titles resolve to their first position: %s\n", strings.Join(report.DuplicateTitles, ", "))
			}
			if report.Healthy() {
				fmt.Fprintln(out, "Model OK")
			}
			return nil
		},
	}
	cmd.Flags().Float64Var(&tolerance, "tolerance", 1e-9, "Allowed difference between mirrored scores")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newModelPackCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "pack <matrix.json> <matrix.bin>",
		Short:       "Convert a JSON similarity matrix to the compact binary form",
		Args:        cobra.ExactArgs(2),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := similarity.Load(args[0])
			if err != nil {
				return err
			}
			if err := similarity.Write(args[1], m); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %dx%d matrix to %s\n", m.Size(), m.Size(), args[1])
			return nil
		},
	}
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
