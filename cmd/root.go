// Package cmd implements the command-line interface for tvloop.
package cmd

import (
	"fmt"
	"os"
	"strings"

	cc "github.com/ivanpirog/coloredcobra"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tvloop/tvloop/color"
	"github.com/tvloop/tvloop/constant"
	"github.com/tvloop/tvloop/icon"
	"github.com/tvloop/tvloop/key"
	"github.com/tvloop/tvloop/log"
	"github.com/tvloop/tvloop/store"
	"github.com/tvloop/tvloop/style"
	"github.com/tvloop/tvloop/util"
)

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print the application version")

	rootCmd.PersistentFlags().StringP("icons", "I", "", "Icons variant (emoji, nerd, plain)")
	lo.Must0(rootCmd.RegisterFlagCompletionFunc("icons", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return icon.AvailableVariants(), cobra.ShellCompDirectiveDefault
	}))
	lo.Must0(viper.BindPFlag(key.IconsVariant, rootCmd.PersistentFlags().Lookup("icons")))

	rootCmd.PersistentFlags().StringP("profile", "P", "", "Profile whose playback state is used, instead of the active one")
}

var rootCmd = &cobra.Command{
	Use:   constant.App,
	Short: "Play video queues with resume, segment skipping and display refresh sync",
	Long: style.Bold(constant.App) + "\n" +
		style.New().Italic(true).Foreground(color.HiPurple).Render("    - play video queues that remember where you stopped"),
	Run: func(cmd *cobra.Command, args []string) {
		if cmd.Flags().Changed("version") {
			versionCmd.Run(versionCmd, args)
			return
		}

		handleErr(cmd.Help())
	},
}

// Execute runs the command named on the command line.
func Execute() {
	if viper.GetBool(key.CliColored) && util.IsTerminal() {
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

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// profile resolves the profile a command works on: the --profile flag, else the active one.
func profile(cmd *cobra.Command) string {
	if name, _ := cmd.Flags().GetString("profile"); strings.TrimSpace(name) != "" {
		return strings.TrimSpace(name)
	}
	return store.ActiveProfile()
}

func handleErr(err error) {
	if err != nil {
		log.Error(err)
		_, _ = fmt.Fprintf(os.Stderr, "%s %s\n", icon.Get(icon.Fail), strings.Trim(err.Error(), " \n"))
		os.Exit(1)
	}
}
