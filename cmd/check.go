package cmd

import (
	"fmt"
	"os/exec"
	"runtime"

	"github.com/charmbracelet/lipgloss"
	"github.com/tvloop/tvloop/color"
	"github.com/tvloop/tvloop/constant"
	"github.com/tvloop/tvloop/icon"
	"github.com/tvloop/tvloop/style"
)

// installHints maps a tool to its install command per platform.
var installHints = map[string]map[string]string{
	"mpv": {
		constant.Darwin:  "brew install mpv",
		constant.Linux:   "sudo apt install mpv",
		constant.Windows: "scoop install mpv",
	},
	"yt-dlp": {
		constant.Darwin:  "brew install yt-dlp",
		constant.Linux:   "pipx install yt-dlp",
		constant.Windows: "scoop install yt-dlp",
	},
}

// requireBinary resolves a tool in PATH, explaining how to install it when missing.
func requireBinary(name string) (string, error) {
	path, err := exec.LookPath(name)
	if err == nil {
		return path, nil
	}

	printMissingDependency(name)
	return "", fmt.Errorf("%s not found in PATH", name)
}

func printMissingDependency(dep string) {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(color.HiRed).
		Padding(1, 2).
		Margin(1, 0)

	title := style.New().Bold(true).Foreground(color.HiRed).Render(fmt.Sprintf("%s Missing dependency", icon.Get(icon.Fail)))
	body := fmt.Sprintf("'%s' was not found in your PATH.", dep)

	suggestion := ""
	if hint, ok := installHints[dep][runtime.GOOS]; ok {
		suggestion = fmt.Sprintf("\n\nTo install it, try running:\n  %s", style.New().Foreground(color.Orange).Bold(true).Render(hint))
	}

	fmt.Println(box.Render(lipgloss.JoinVertical(lipgloss.Left, title, "\n", body, suggestion)))
}
