// Package cmd implements the command-line interface for bbdl.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/bbdl-cli/bbdl/color"
	"github.com/bbdl-cli/bbdl/constant"
	"github.com/bbdl-cli/bbdl/download"
	"github.com/bbdl-cli/bbdl/icon"
	"github.com/bbdl-cli/bbdl/key"
	"github.com/bbdl-cli/bbdl/log"
	"github.com/bbdl-cli/bbdl/network"
	"github.com/bbdl-cli/bbdl/podcast"
	"github.com/bbdl-cli/bbdl/provider/blubrry"
	"github.com/bbdl-cli/bbdl/runner"
	"github.com/bbdl-cli/bbdl/style"
	"github.com/bbdl-cli/bbdl/util"
	cc "github.com/ivanpirog/coloredcobra"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print the application version")

	rootCmd.PersistentFlags().StringP("icons", "I", "", "Set the visual icon variant (e.g., emoji, nerd, plain, squares)")
	lo.Must0(rootCmd.RegisterFlagCompletionFunc("icons", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return icon.AvailableVariants(), cobra.ShellCompDirectiveDefault
	}))
	lo.Must0(viper.BindPFlag(key.IconsVariant, rootCmd.PersistentFlags().Lookup("icons")))

	rootCmd.PersistentFlags().String("base-url", "", "Base URL of the podcast host")
	lo.Must0(viper.BindPFlag(key.ProviderBaseURL, rootCmd.PersistentFlags().Lookup("base-url")))

	rootCmd.PersistentFlags().String("log-level", "", "Log verbosity (panic, fatal, error, warn, info, debug, trace)")
	lo.Must0(viper.BindPFlag(key.LogsLevel, rootCmd.PersistentFlags().Lookup("log-level")))

	rootCmd.Flags().StringP("podcast-name", "p", "", "Slug of the podcast to download")
	rootCmd.Flags().StringP("output-dir", "o", "", "Directory to save episode downloads to")

	rootCmd.Flags().Bool("overwrite", false, "Overwrite files that already exist")
	lo.Must0(viper.BindPFlag(key.DownloadOverwrite, rootCmd.Flags().Lookup("overwrite")))

	rootCmd.Flags().Duration("pause", time.Second, "Minimum interval between episodes")
	lo.Must0(viper.BindPFlag(key.DownloadPause, rootCmd.Flags().Lookup("pause")))

	rootCmd.Flags().Bool("no-history", false, "Do not record downloads in the history file")
}

// rootCmd downloads every episode of a podcast.
var rootCmd = &cobra.Command{
	Use:   constant.App + " -p <podcast> -o <dir>",
	Short: "Download a podcast's episodes and metadata from Blubrry",
	Long: style.New().Bold(true).Foreground(color.HiPurple).Render(constant.App) + "\n" +
		style.Italic("    - Fetches the episode archive of a Blubrry podcast and saves every audio file next to a JSON metadata sidecar.\n") +
		"\nThis scrapes HTML pages and breaks whenever the site changes its layout.",
	Example: "  bbdl -p my-favorite-podcast -o ./output/my-favorite-podcast",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return log.Setup()
	},
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("version") {
			return nil
		}
		return requireFlags(cmd, "podcast-name", "output-dir")
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("version") {
			return versionCmd.RunE(versionCmd, args)
		}

		p, err := podcast.New(
			lo.Must(cmd.Flags().GetString("podcast-name")),
			lo.Must(cmd.Flags().GetString("output-dir")),
		)
		if err != nil {
			return err
		}

		lister, err := newLister()
		if err != nil {
			return err
		}

		saver := download.New(
			network.New(viper.GetDuration(key.DownloadTimeout), viper.GetString(key.NetworkUserAgent)),
			download.Options{Overwrite: viper.GetBool(key.DownloadOverwrite)},
		)

		summary, err := runner.Run(cmd.Context(), &runner.Options{
			Podcast: p,
			Lister:  lister,
			Saver:   saver,
			Pause:   viper.GetDuration(key.DownloadPause),
			History: viper.GetBool(key.HistoryWrite) && !lo.Must(cmd.Flags().GetBool("no-history")),
			Out:     cmd.OutOrStdout(),
			Err:     cmd.ErrOrStderr(),
		})
		if err != nil {
			return err
		}

		cmd.Printf(
			"%s Complete. Downloaded %s to %s (%d skipped, %d failed)\n",
			style.Fg(color.Green)(icon.Get(icon.Success)),
			util.Quantify(summary.Downloaded, "episode", "episodes"),
			style.Fg(color.Yellow)(p.OutputDir),
			summary.Skipped,
			summary.Failed,
		)
		return nil
	},
}

// requireFlags fails with cobra's required flag message when any of names was not given.
// The root command checks them here since -v runs without them.
func requireFlags(cmd *cobra.Command, names ...string) error {
	missing := lo.Filter(names, func(name string, _ int) bool {
		return !cmd.Flags().Changed(name)
	})
	if len(missing) == 0 {
		return nil
	}
	return fmt.Errorf(`required flag(s) "%s" not set`, strings.Join(missing, `", "`))
}

// newLister builds the Blubrry client from the active configuration.
func newLister() (*blubrry.Client, error) {
	client, err := blubrry.New(
		blubrry.WithBaseURL(viper.GetString(key.ProviderBaseURL)),
		blubrry.WithHTTPClient(network.New(viper.GetDuration(key.NetworkTimeout), viper.GetString(key.NetworkUserAgent))),
	)
	if err != nil {
		return nil, &podcast.ConfigurationError{Field: "base url", Err: err}
	}
	return client, nil
}

// Execute initializes child command routing and processes the CLI entry point.
func Execute() {
	if viper.GetBool(key.CliColored) {
		cc.Init(&cc.Config{
			RootCmd:       rootCmd,
			Headings:      cc.HiCyan + cc.Bold + cc.Underline,
			Commands:      cc.HiYellow + cc.Bold,
			Example:       cc.Italic,
			ExecName:      cc.Bold,
			Flags:         cc.Bold,
			FlagsDataType: cc.Italic + cc.HiBlue,
		})
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd.SetOut(os.Stdout)
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if closeErr := log.Close(); closeErr != nil {
		_, _ = fmt.Fprintf(os.Stderr, "close log file: %v\n", closeErr)
	}
	handleErr(err)
}

// handleErr prints err and exits. It is called once, after Execute released its resources.
func handleErr(err error) {
	if err == nil {
		return
	}

	msg := strings.Trim(err.Error(), " \n")
	if errors.Is(err, context.Canceled) {
		msg = "interrupted"
	}
	_, _ = fmt.Fprintf(os.Stderr, "%s %s\n", style.Fg(color.Red)(icon.Get(icon.Fail)), msg)
	os.Exit(1)
}
