package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tvloop/tvloop/color"
	"github.com/tvloop/tvloop/config"
	"github.com/tvloop/tvloop/constant"
	"github.com/tvloop/tvloop/content"
	"github.com/tvloop/tvloop/controller"
	"github.com/tvloop/tvloop/display"
	"github.com/tvloop/tvloop/eventloop"
	"github.com/tvloop/tvloop/history"
	"github.com/tvloop/tvloop/icon"
	"github.com/tvloop/tvloop/key"
	"github.com/tvloop/tvloop/log"
	"github.com/tvloop/tvloop/media"
	"github.com/tvloop/tvloop/player"
	"github.com/tvloop/tvloop/segments"
	"github.com/tvloop/tvloop/session"
	"github.com/tvloop/tvloop/store"
	"github.com/tvloop/tvloop/style"
	"github.com/tvloop/tvloop/tui"
	"github.com/tvloop/tvloop/util"
	"github.com/tvloop/tvloop/where"
)

// Modes offered by the simulated display of virtual sessions.
var simulatedModes = []display.Mode{
	{Width: 1920, Height: 1080, RefreshRate: 60},
	{Width: 1920, Height: 1080, RefreshRate: 59.94},
	{Width: 1920, Height: 1080, RefreshRate: 50},
	{Width: 1920, Height: 1080, RefreshRate: 30},
	{Width: 1920, Height: 1080, RefreshRate: 24},
	{Width: 1920, Height: 1080, RefreshRate: 23.976},
}

func init() {
	rootCmd.AddCommand(playCmd)

	playCmd.Flags().StringP("player", "p", "", "Player binary to use")
	lo.Must0(viper.BindPFlag(key.Player, playCmd.Flags().Lookup("player")))

	playCmd.Flags().Bool("sync", false, "Switch the display refresh rate to match the video")
	lo.Must0(viper.BindPFlag(key.DisplayAutoSync, playCmd.Flags().Lookup("sync")))

	playCmd.Flags().BoolP("continue", "c", false, "Start with the most recently played video")
	playCmd.Flags().Bool("virtual", false, "Play on a simulated player and display")
	playCmd.Flags().Bool("no-remote", false, "Don't show the terminal remote")
}

var playCmd = &cobra.Command{
	Use:   "play [url|id]...",
	Short: "Play videos as a queue",
	Long: `Play the given videos one after another. Positions are saved to the active profile
and restored the next time a video is played.`,
	Example: "  tvloop play https://youtu.be/dQw4w9WgXcQ\n  tvloop play --continue",
	Run: func(cmd *cobra.Command, args []string) {
		options := playOptions{
			profile: profile(cmd),
			pinned:  cmd.Flags().Changed("profile"),
			resume:  lo.Must(cmd.Flags().GetBool("continue")),
			virtual: lo.Must(cmd.Flags().GetBool("virtual")),
			remote:  !lo.Must(cmd.Flags().GetBool("no-remote")) && util.IsTerminal(),
		}

		handleErr(play(args, options))
	},
}

type playOptions struct {
	profile string
	pinned  bool
	resume  bool
	virtual bool
	remote  bool
}

func parseEntries(args []string) ([]*media.Entry, error) {
	entries := make([]*media.Entry, 0, len(args))
	for _, arg := range args {
		e, err := media.Parse(arg)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	return uniqueEntries(entries), nil
}

func uniqueEntries(entries []*media.Entry) []*media.Entry {
	return lo.UniqBy(entries, func(e *media.Entry) uint64 { return e.Key() })
}

func newEngine(loop eventloop.Scheduler, virtual bool) (player.Engine, error) {
	tick := config.Millis(key.PlayerTickMs)
	if virtual {
		return player.NewVirtual(loop, tick, &media.Format{Width: 1920, Height: 1080, FrameRate: 24}), nil
	}

	binary, err := requireBinary(viper.GetString(key.Player))
	if err != nil {
		return nil, err
	}
	return player.NewMPV(binary, tick), nil
}

func newDisplay(virtual bool) display.Helper {
	switch {
	case virtual:
		return display.NewSimulated(simulatedModes[0], simulatedModes...)
	case runtime.GOOS == constant.Linux:
		return display.NewXRandR()
	default:
		return display.Unsupported{}
	}
}

func play(args []string, options playOptions) error {
	entries, err := parseEntries(args)
	if err != nil {
		return err
	}
	if len(entries) == 0 && !options.resume {
		return errors.New("nothing to play")
	}

	st, err := store.Open(options.profile)
	if err != nil {
		return err
	}

	loop := eventloop.NewLoop(256)
	ctx := session.NewContext(loop, st, history.Options{
		Capacity:     config.HistoryCapacity(),
		PersistDelay: config.Millis(key.HistoryPersistDelayMs),
	})
	ctx.Display = newDisplay(options.virtual)
	ctx.Segments = segments.New(viper.GetString(key.SegmentsURL), segments.DefaultCachePath())
	if binary, err := exec.LookPath("yt-dlp"); err == nil {
		ctx.Content = content.NewYTDLP(binary)
	} else {
		log.Info("yt-dlp not found, metadata and comments are unavailable")
	}

	engine, err := newEngine(loop, options.virtual)
	if err != nil {
		return err
	}

	loopCtx, stopLoop := context.WithCancel(context.Background())
	defer stopLoop()
	go func() { _ = loop.Run(loopCtx) }()

	if options.resume {
		if record, ok := eventloop.Call(loop, ctx.History.Last).Get(); ok {
			entries = uniqueEntries(append([]*media.Entry{record.Entry.Copy()}, entries...))
		} else if len(entries) == 0 {
			return errors.New("no history to continue from")
		}
	}

	if !options.pinned {
		watcher, err := store.WatchProfile(where.ActiveProfile(), func(name string) {
			loop.Post(func() {
				if err := st.SwitchProfile(name); err != nil {
					log.Warnf("switch profile: %v", err)
				}
			})
		})
		if err != nil {
			log.Warnf("active profile changes will be ignored: %v", err)
		} else {
			defer util.Ignore(watcher.Close)
		}
	}

	d := session.New(ctx, controller.Default(controller.DisplaySyncOptionsFromConfig())...)
	d.SetEngine(engine)
	log.Infof("session %s playing %s on profile %q", d.ID(), util.Quantify(len(entries), "video", "videos"), options.profile)

	loop.Post(func() {
		d.Init()
		ctx.Queue.AddAll(entries)
		d.OpenVideo(entries[0])
	})

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(interrupt)
	go func() {
		select {
		case <-interrupt:
			loop.Post(d.Finish)
		case <-d.Done():
		}
	}()

	if options.remote {
		if err := tui.Run(d, loop); err != nil {
			loop.Post(d.Finish)
			<-d.Done()
			return err
		}
	}
	<-d.Done()

	records := eventloop.Call(loop, ctx.History.Snapshot)
	printStopped(entries, records)
	return nil
}

// printStopped reports where the played videos were left.
func printStopped(entries []*media.Entry, records []history.Record) {
	played := lo.Filter(records, func(r history.Record, _ int) bool {
		return lo.ContainsBy(entries, func(e *media.Entry) bool { return e.Equal(r.Entry) })
	})

	for _, r := range played {
		fmt.Printf("%s %s %s\n",
			style.Fg(color.Green)(icon.Get(icon.Success)),
			r.Entry.Title,
			style.Faint(fmt.Sprintf("stopped at %s", util.Clock(r.PositionMs))),
		)
	}
}
