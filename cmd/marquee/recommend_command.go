package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"marquee/internal/api"
	"marquee/internal/catalog"
)

func newRecommendCommand(ctx *commandContext) *cobra.Command {
	var count int
	var withPosters bool
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "recommend <title>",
		Short: "List the titles most similar to a movie",
		Long: "Rank every catalog entry by similarity to <title> and print the best matches.\n" +
			"The title must match a catalog entry exactly; use `marquee titles --search` to find it.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			title := strings.Join(args, " ")
			svc, err := ctx.recommendService()
			if err != nil {
				return err
			}

			resp, err := svc.Recommend(cmd.Context(), title, count, withPosters)
			if errors.Is(err, catalog.ErrNotFound) {
				if suggestions := svc.Suggestions(title, api.DefaultSuggestionLimit); len(suggestions) > 0 {
					errOut := cmd.ErrOrStderr()
					fmt.Fprintln(errOut, "Did you mean:")
					for _, s := range suggestions {
						fmt.Fprintf(errOut, "  %s\n", s)
					}
				}
				return err
			}
			if err != nil {
				return err
			}

			if jsonOutput {
				return writeJSON(cmd, resp)
			}
			out := cmd.OutOrStdout()
			if resp.Count == 0 {
				fmt.Fprintf(out, "No other titles to compare with %q\n", title)
				return nil
			}

			headers := []string{"#", "Title", "ID", "Score"}
			aligns := []columnAlignment{alignRight, alignLeft, alignRight, alignRight}
			if resp.Posters {
				headers = append(headers, "Poster")
				aligns = append(aligns, alignLeft)
			}
			rows := make([][]string, 0, len(resp.Results))
			for _, card := range resp.Results {
				row := []string{
					strconv.Itoa(card.Rank),
					card.Title,
					strconv.FormatInt(card.ID, 10),
					strconv.FormatFloat(card.Score, 'f', 4, 64),
				}
				if resp.Posters {
					poster := card.PosterURL
					if poster == "" {
						poster = "-"
					}
					row = append(row, poster)
				}
				rows = append(rows, row)
			}
			writeRows(out, headers, rows, aligns)
			return nil
		},
	}

	cmd.Flags().IntVarP(&count, "count", "k", 0, "Number of recommendations (default from recommend.default_count)")
	cmd.Flags().BoolVar(&withPosters, "posters", false, "Look up poster URLs on TMDB")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}
