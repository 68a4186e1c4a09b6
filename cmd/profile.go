package cmd

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/tvloop/tvloop/color"
	"github.com/tvloop/tvloop/filesystem"
	"github.com/tvloop/tvloop/icon"
	"github.com/tvloop/tvloop/store"
	"github.com/tvloop/tvloop/style"
	"github.com/tvloop/tvloop/where"
)

// profileNames lists the profiles with persisted state.
func profileNames() ([]string, error) {
	files, err := afero.ReadDir(filesystem.API(), where.Profiles())
	if err != nil {
		return nil, err
	}

	return lo.FilterMap(files, func(f fs.FileInfo, _ int) (string, bool) {
		if f.IsDir() || filepath.Ext(f.Name()) != ".json" {
			return "", false
		}
		return strings.TrimSuffix(f.Name(), ".json"), true
	}), nil
}

func init() {
	rootCmd.AddCommand(profileCmd)
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show or switch the active profile",
	Long: `Show or switch the active profile.
Switching profiles is picked up by running sessions, which reload their saved positions.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(store.ActiveProfile())
	},
}

func init() {
	profileCmd.AddCommand(profileListCmd)
}

var profileListCmd = &cobra.Command{
	Use:   "list",
	Short: "List profiles with saved state",
	Run: func(cmd *cobra.Command, args []string) {
		names, err := profileNames()
		handleErr(err)

		active := store.ActiveProfile()
		if !lo.Contains(names, active) {
			names = append([]string{active}, names...)
		}

		for _, name := range names {
			if name == active {
				fmt.Printf("%s %s\n", style.Fg(color.Green)("*"), style.Bold(name))
			} else {
				fmt.Printf("  %s\n", name)
			}
		}
	},
}

func init() {
	profileCmd.AddCommand(profileUseCmd)
}

var profileUseCmd = &cobra.Command{
	Use:   "use <name>",
	Short: "Make a profile active",
	Args:  cobra.ExactArgs(1),
	ValidArgsFunction: func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		names, _ := profileNames()
		return names, cobra.ShellCompDirectiveNoFileComp
	},
	Run: func(cmd *cobra.Command, args []string) {
		handleErr(store.SetActiveProfile(args[0]))
		fmt.Printf("%s switched to profile %s\n",
			style.Fg(color.Green)(icon.Get(icon.Success)),
			style.Fg(color.Purple)(strings.TrimSpace(args[0])),
		)
	},
}
