package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/dustin/go-humanize"
	"github.com/muesli/reflow/truncate"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/tvloop/tvloop/color"
	"github.com/tvloop/tvloop/config"
	"github.com/tvloop/tvloop/eventloop"
	"github.com/tvloop/tvloop/history"
	"github.com/tvloop/tvloop/icon"
	"github.com/tvloop/tvloop/store"
	"github.com/tvloop/tvloop/style"
	"github.com/tvloop/tvloop/util"
)

// withHistory runs fn on an event loop owning the position cache of the named profile.
func withHistory(profile string, fn func(c *history.Cache) error) error {
	st, err := store.Open(profile)
	if err != nil {
		return err
	}

	loop := eventloop.NewLoop(16)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = loop.Run(ctx) }()

	return eventloop.Call(loop, func() error {
		return fn(history.New(st, loop, history.Options{Capacity: config.HistoryCapacity()}))
	})
}

func init() {
	rootCmd.AddCommand(historyCmd)
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage saved playback positions",
}

func init() {
	historyCmd.AddCommand(historyListCmd)
	historyListCmd.Flags().BoolP("json", "j", false, "JSON output")
	historyListCmd.Flags().IntP("limit", "n", 20, "Number of positions to show, newest first. 0 shows all")
}

type historyItem struct {
	VideoID    string `json:"video_id"`
	Title      string `json:"title"`
	PositionMs int64  `json:"position_ms"`
	DurationMs int64  `json:"duration_ms"`
	SavedAt    int64  `json:"saved_at"`
}

func historyLine(r history.Record, width int) string {
	title := r.Entry.Title
	if title == "" {
		title = r.Entry.VideoID
	}

	percent := util.Percent(r.PositionMs, r.DurationMs)
	progress := style.Bar(percent, 20)(fmt.Sprintf("%s / %s", util.Clock(r.PositionMs), util.Clock(r.DurationMs)))
	if r.DurationMs <= 0 {
		progress = style.Faint(util.Clock(r.PositionMs))
	}

	mark := style.Fg(color.Progress)(icon.Get(icon.Play))
	if percent >= 95 {
		mark = style.Fg(color.Done)(icon.Get(icon.Watched))
	}

	return fmt.Sprintf("%s %s %s %s",
		mark,
		style.Bold(truncate.StringWithTail(title, uint(width), "…")),
		progress,
		style.Faint(humanize.Time(r.SavedAt)),
	)
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved playback positions",
	Run: func(cmd *cobra.Command, args []string) {
		var (
			asJson = lo.Must(cmd.Flags().GetBool("json"))
			limit  = lo.Must(cmd.Flags().GetInt("limit"))
			name   = profile(cmd)
		)

		var records []history.Record
		handleErr(withHistory(name, func(c *history.Cache) error {
			records = c.Snapshot()
			return nil
		}))

		slices.Reverse(records)
		if limit > 0 && len(records) > limit {
			records = records[:limit]
		}

		if asJson {
			lo.Must0(json.NewEncoder(cmd.OutOrStdout()).Encode(lo.Map(records, func(r history.Record, _ int) historyItem {
				return historyItem{
					VideoID:    r.Entry.VideoID,
					Title:      r.Entry.Title,
					PositionMs: r.PositionMs,
					DurationMs: r.DurationMs,
					SavedAt:    r.SavedAt.UnixMilli(),
				}
			})))
			return
		}

		if len(records) == 0 {
			fmt.Printf("No saved positions in profile %s\n", style.Fg(color.Purple)(name))
			return
		}

		for _, r := range records {
			fmt.Println(historyLine(r, 48))
		}
	},
}

func init() {
	historyCmd.AddCommand(historyRemoveCmd)
}

var historyRemoveCmd = &cobra.Command{
	Use:     "remove <video id>...",
	Short:   "Forget the saved position of videos",
	Aliases: []string{"rm"},
	Args:    cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var removed int
		handleErr(withHistory(profile(cmd), func(c *history.Cache) error {
			before := c.Len()
			for _, id := range args {
				c.RemoveByVideoID(id)
			}
			removed = before - c.Len()
			return nil
		}))

		fmt.Printf("%s removed %s\n",
			style.Fg(color.Green)(icon.Get(icon.Success)),
			util.Quantify(removed, "position", "positions"),
		)
	},
}

func init() {
	historyCmd.AddCommand(historyClearCmd)
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Forget every saved position of the profile",
	Run: func(cmd *cobra.Command, args []string) {
		name := profile(cmd)
		handleErr(withHistory(name, func(c *history.Cache) error {
			c.Clear()
			return nil
		}))

		fmt.Printf("%s cleared history of profile %s\n",
			style.Fg(color.Green)(icon.Get(icon.Success)),
			style.Fg(color.Purple)(name),
		)
	},
}
