package cmd

import (
	"encoding/json"

	"github.com/bbdl-cli/bbdl/color"
	"github.com/bbdl-cli/bbdl/icon"
	"github.com/bbdl-cli/bbdl/key"
	"github.com/bbdl-cli/bbdl/podcast"
	"github.com/bbdl-cli/bbdl/style"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/time/rate"
)

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringP("podcast-name", "p", "", "Slug of the podcast to list")
	lo.Must0(listCmd.MarkFlagRequired("podcast-name"))
	listCmd.Flags().BoolP("json", "j", false, "Print the listing as a JSON array")
	listCmd.Flags().BoolP("resolve", "r", false, "Also fetch every episode page to resolve its audio URL")
}

// listItem is one line of the list output.
type listItem struct {
	*podcast.Ref
	AudioURL string `json:"audio_url,omitempty"`
	File     string `json:"file,omitempty"`
	Error    string `json:"error,omitempty"`
}

var listCmd = &cobra.Command{
	Use:     "list",
	Short:   "Print the episode listing of a podcast without downloading",
	Example: "  bbdl list -p my-favorite-podcast --resolve",
	RunE: func(cmd *cobra.Command, args []string) error {
		slug, err := podcast.ValidateSlug(lo.Must(cmd.Flags().GetString("podcast-name")))
		if err != nil {
			return err
		}

		lister, err := newLister()
		if err != nil {
			return err
		}

		var (
			asJson  = lo.Must(cmd.Flags().GetBool("json"))
			resolve = lo.Must(cmd.Flags().GetBool("resolve"))
			pacer   = rate.NewLimiter(rate.Inf, 1)
			items   []*listItem
		)

		if pause := viper.GetDuration(key.DownloadPause); resolve && pause > 0 {
			pacer = rate.NewLimiter(rate.Every(pause), 1)
		}

		for ref, err := range lister.Episodes(cmd.Context(), slug) {
			if err != nil {
				return err
			}

			item := &listItem{Ref: ref}
			if resolve {
				if err := pacer.Wait(cmd.Context()); err != nil {
					return err
				}

				if ep, err := lister.Resolve(cmd.Context(), ref); err != nil {
					item.Error = err.Error()
				} else {
					item.AudioURL = ep.AudioURL
					item.File = ep.Filename()
				}
			}

			if asJson {
				items = append(items, item)
				continue
			}

			printListItem(cmd, item)
		}

		if asJson {
			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			return encoder.Encode(lo.Ternary(items == nil, []*listItem{}, items))
		}

		return nil
	},
}

func printListItem(cmd *cobra.Command, item *listItem) {
	cmd.Printf("%s %s\n", style.Bold(item.Title), style.Faint(item.PageURL))

	switch {
	case item.Error != "":
		cmd.Printf("  %s %s\n", style.Fg(color.Red)(icon.Get(icon.Fail)), item.Error)
	case item.AudioURL != "":
		cmd.Printf("  %s %s %s\n", icon.Get(icon.Download), style.Fg(color.Yellow)(item.File), style.Faint(item.AudioURL))
	}
}
