package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"gallery-portal/internal/search"
)

func newSearchCmd(a func() *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Find images by description or by a similar image",
	}
	cmd.AddCommand(newSearchTextCmd(a), newSearchImageCmd(a))
	return cmd
}

func newSearchTextCmd(a func() *app) *cobra.Command {
	var page int
	var sortBy string

	cmd := &cobra.Command{
		Use:     "text QUERY...",
		Short:   "Search by description",
		Example: `  galleryctl search text red car at night --sort title`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			order, err := search.ParseSort(sortBy)
			if err != nil {
				return err
			}

			app := a()
			if err := app.search.Sort(cmd.Context(), order); err != nil {
				return sessionError(err)
			}
			if err := app.search.TextSearch(cmd.Context(), strings.Join(args, " "), page); err != nil {
				return sessionError(err)
			}
			printResults(app, app.search.View())
			return nil
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	cmd.Flags().StringVar(&sortBy, "sort", string(search.SortRelevance), "Sort order: relevance, score_asc, title")
	return cmd
}

func newSearchImageCmd(a func() *app) *cobra.Command {
	var page int

	cmd := &cobra.Command{
		Use:   "image FILE",
		Short: "Search for images similar to FILE",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := a()
			f, err := readImageFile(args[0])
			if err != nil {
				return err
			}
			if err := app.search.ImageSearch(cmd.Context(), &f, page); err != nil {
				return sessionError(err)
			}
			printResults(app, app.search.View())
			return nil
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	return cmd
}

func printResults(app *app, view search.View) {
	fmt.Fprintln(app.out, view.CountText)
	for _, r := range view.Results {
		fmt.Fprintf(app.out, "%4d%%  %s  %s\n", r.Percent, r.Title, r.FileURL)
		if r.Description != "" {
			fmt.Fprintf(app.out, "       %s\n", r.Description)
		}
	}
	if p := view.Pagination; p.Pages > 1 {
		fmt.Fprintf(app.out, "Page %d of %d\n", p.CurrentPage, p.Pages)
	}
}
