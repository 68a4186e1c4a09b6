package tui

import (
	"fmt"
	"strings"

	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"
	"github.com/tvloop/tvloop/color"
	"github.com/tvloop/tvloop/controller"
	"github.com/tvloop/tvloop/icon"
	"github.com/tvloop/tvloop/style"
	"github.com/tvloop/tvloop/util"
)

const barWidth = 30

func (b *bubble) View() string {
	if b.quitting {
		return ""
	}

	s := b.status
	if !s.loaded {
		return b.renderLines(style.Faint("loading..."))
	}

	state := icon.Get(icon.Pause)
	if s.playing {
		state = icon.Get(icon.Play)
	}

	lines := []string{
		style.Title(b.fit(s.title)) + " " + state,
	}
	if s.author != "" {
		lines = append(lines, style.Faint(s.author))
	}
	lines = append(lines, "", b.progress(), "")

	if tags := s.tags(); len(tags) > 0 {
		lines = append(lines, strings.Join(tags, " "), "")
	}

	if chat := s.chatText(); len(chat) > 0 {
		for _, line := range chat {
			lines = append(lines, b.wrap(line))
		}
		lines = append(lines, "")
	}

	return b.renderLines(lines...)
}

func (b *bubble) progress() string {
	s := b.status
	if s.live {
		return style.Tag(color.Cream, color.Live)(icon.Get(icon.Live) + " live")
	}

	clock := fmt.Sprintf("%s / %s", util.Clock(s.positionMs), util.Clock(s.durationMs))
	return style.Bar(util.Percent(s.positionMs, s.durationMs), barWidth)(clock)
}

func (s status) tags() []string {
	var tags []string
	if s.shorts {
		tags = append(tags, style.Tag(color.Black, color.Yellow)(icon.Get(icon.Shorts)+" shorts"))
	}
	if s.upNext > 0 {
		tags = append(tags, style.Faint(util.Quantify(s.upNext, "video", "videos")+" up next"))
	}
	if s.segments > 0 {
		tags = append(tags, style.Fg(color.Cyan)(util.Quantify(s.segments, "segment", "segments")+" to skip"))
	}
	if s.comments > 0 {
		tags = append(tags, style.Faint(util.Quantify(s.comments, "comment", "comments")))
	}

	switch s.sync {
	case controller.SyncApplying:
		tags = append(tags, style.Fg(color.Pending)("switching to "+s.syncTarget.String()))
	case controller.SyncApplied:
		tags = append(tags, style.Fg(color.Done)("display "+s.syncTarget.String()))
	case controller.SyncError:
		tags = append(tags, style.Fg(color.Red)(icon.Get(icon.Broken)+" display switch failed"))
	}

	return tags
}

func (b *bubble) fit(s string) string {
	if b.width <= 0 {
		return s
	}
	return truncate.StringWithTail(s, uint(max(b.width-6, 1)), "…")
}

func (b *bubble) wrap(s string) string {
	if b.width <= 0 {
		return s
	}
	return wordwrap.String(s, b.width-2)
}

func (b *bubble) renderLines(lines ...string) string {
	lines = append(lines, b.helpC.View(b.keymap))
	return style.New().Padding(1, 2).Render(strings.Join(lines, "\n"))
}
