package cmd

import (
	"encoding/json"
	"sort"

	"github.com/bbdl-cli/bbdl/color"
	"github.com/bbdl-cli/bbdl/history"
	"github.com/bbdl-cli/bbdl/podcast"
	"github.com/bbdl-cli/bbdl/style"
	"github.com/bbdl-cli/bbdl/util"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().StringP("podcast-name", "p", "", "Only show downloads of this podcast")
	historyCmd.Flags().BoolP("json", "j", false, "Print the history as JSON")
}

// historyRecords returns the records of slug, or of every podcast when slug is empty.
func historyRecords(slug string) ([]*history.Record, error) {
	if slug != "" {
		return history.Of(slug)
	}

	all, err := history.Get()
	if err != nil {
		return nil, err
	}

	slugs := lo.Keys(all)
	sort.Strings(slugs)

	var records []*history.Record
	for _, s := range slugs {
		of, err := history.Of(s)
		if err != nil {
			return nil, err
		}
		records = append(records, of...)
	}
	return records, nil
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded episode downloads",
	RunE: func(cmd *cobra.Command, args []string) error {
		slug := lo.Must(cmd.Flags().GetString("podcast-name"))
		if slug != "" {
			var err error
			if slug, err = podcast.ValidateSlug(slug); err != nil {
				return err
			}
		}

		records, err := historyRecords(slug)
		if err != nil {
			return err
		}

		if lo.Must(cmd.Flags().GetBool("json")) {
			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			return encoder.Encode(lo.Ternary(records == nil, []*history.Record{}, records))
		}

		if len(records) == 0 {
			cmd.Println(style.Faint("no downloads recorded"))
			return nil
		}

		for _, r := range records {
			cmd.Printf(
				"%s %s %s\n  %s\n",
				style.Fg(color.Purple)(r.Podcast),
				style.Bold(r.Title),
				style.Faint(r.DownloadedAt.Local().Format("2006-01-02 15:04")),
				style.Fg(color.Yellow)(r.Path),
			)
		}

		cmd.Println()
		cmd.Println(style.Faint(util.Quantify(len(records), "download", "downloads")))
		return nil
	},
}
