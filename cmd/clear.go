package cmd

import (
	"fmt"

	"github.com/bbdl-cli/bbdl/filesystem"
	"github.com/bbdl-cli/bbdl/history"
	"github.com/bbdl-cli/bbdl/icon"
	"github.com/bbdl-cli/bbdl/util"
	"github.com/bbdl-cli/bbdl/where"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/cobra"
)

// clearTarget is a filesystem resource the clear command can remove.
type clearTarget struct {
	name     string
	argLong  string
	argShort mo.Option[string]
	location func() string
}

var clearTargets = []clearTarget{
	{"history file", "history", mo.Some("s"), where.History},
	{"logs directory", "logs", mo.Some("l"), where.Logs},
}

func init() {
	rootCmd.AddCommand(clearCmd)

	for _, target := range clearTargets {
		help := fmt.Sprintf("clear %s", target.name)
		if short, ok := target.argShort.Get(); ok {
			clearCmd.Flags().BoolP(target.argLong, short, false, help)
		} else {
			clearCmd.Flags().Bool(target.argLong, false, help)
		}
	}
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the download history or log files",
	RunE: func(cmd *cobra.Command, args []string) error {
		var anyCleared bool

		for _, target := range clearTargets {
			if !lo.Must(cmd.Flags().GetBool(target.argLong)) {
				continue
			}

			anyCleared = true
			location := target.location()
			erase := util.PrintErasable(cmd.OutOrStdout(), fmt.Sprintf("%s Clearing %s...", icon.Get(icon.Progress), target.name))

			exists, err := filesystem.API().Exists(location)
			if err == nil && exists {
				err = util.Delete(location)
			}
			erase()
			if err != nil {
				return err
			}

			cmd.Printf("%s %s cleared\n", icon.Get(icon.Success), util.Capitalize(target.name))
		}

		if !anyCleared {
			return cmd.Help()
		}

		history.Invalidate()
		return nil
	},
}
