package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newTitlesCommand(ctx *commandContext) *cobra.Command {
	var search string
	var limit int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "titles",
		Short: "List catalog titles",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.recommendService()
			if err != nil {
				return err
			}
			resp := svc.Titles(search, limit)
			if jsonOutput {
				return writeJSON(cmd, resp)
			}
			out := cmd.OutOrStdout()
			if resp.Total == 0 {
				fmt.Fprintf(out, "No titles match %q\n", search)
				return nil
			}
			rows := make([][]string, len(resp.Titles))
			for i, movie := range resp.Titles {
				rows[i] = []string{strconv.FormatInt(movie.ID, 10), movie.Title}
			}
			writeRows(out, []string{"ID", "Title"}, rows, []columnAlignment{alignRight, alignLeft})
			return nil
		},
	}

	cmd.Flags().StringVarP(&search, "search", "s", "", "Only titles containing this text (case-insensitive)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum titles to list (0 = all)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}
