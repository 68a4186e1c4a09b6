package content

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os/exec"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/tvloop/tvloop/eventloop"
	"github.com/tvloop/tvloop/media"
)

// YTDLP extracts metadata and comments with the yt-dlp tool.
type YTDLP struct {
	run func(ctx context.Context, args ...string) ([]byte, error)
}

// NewYTDLP creates a service running the given yt-dlp binary.
func NewYTDLP(binary string) *YTDLP {
	if binary == "" {
		binary = "yt-dlp"
	}

	return &YTDLP{
		run: func(ctx context.Context, args ...string) ([]byte, error) {
			out, err := exec.CommandContext(ctx, binary, args...).Output()
			if err != nil {
				return nil, fmt.Errorf("%s: %w", binary, err)
			}
			return out, nil
		},
	}
}

type ytdlpVideo struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Uploader    string         `json:"uploader"`
	Channel     string         `json:"channel"`
	ChannelID   string         `json:"channel_id"`
	Description string         `json:"description"`
	Duration    float64        `json:"duration"`
	IsLive      bool           `json:"is_live"`
	LiveStatus  string         `json:"live_status"`
	Comments    []ytdlpComment `json:"comments"`
}

type ytdlpComment struct {
	ID        string `json:"id"`
	Author    string `json:"author"`
	Text      string `json:"text"`
	LikeCount int64  `json:"like_count"`
	Timestamp int64  `json:"timestamp"`
	Parent    string `json:"parent"`
}

func target(videoID string) string {
	if strings.Contains(videoID, "://") {
		return videoID
	}
	return media.WatchURL + videoID
}

func (y *YTDLP) extract(ctx context.Context, videoID string, extra ...string) (*ytdlpVideo, error) {
	args := append([]string{"-J", "--no-playlist", "--no-warnings", "--skip-download"}, extra...)
	args = append(args, "--", target(videoID))

	out, err := y.run(ctx, args...)
	if err != nil {
		return nil, err
	}

	var video ytdlpVideo
	if err := json.Unmarshal(out, &video); err != nil {
		return nil, fmt.Errorf("parse yt-dlp output: %w", err)
	}

	if video.ID == "" {
		return nil, fmt.Errorf("metadata %q: %w", videoID, ErrNotFound)
	}

	return &video, nil
}

// Metadata implements Service.
func (y *YTDLP) Metadata(videoID string) eventloop.Stream[*media.Metadata] {
	return func(ctx context.Context, emit func(*media.Metadata)) error {
		video, err := y.extract(ctx, videoID)
		if err != nil {
			return err
		}

		meta := &media.Metadata{
			VideoID:     video.ID,
			Title:       video.Title,
			Author:      lo.Ternary(video.Channel != "", video.Channel, video.Uploader),
			ChannelID:   video.ChannelID,
			Description: video.Description,
			DurationMs:  -1,
			IsLive:      video.IsLive || video.LiveStatus == "is_live",
			IsUpcoming:  video.LiveStatus == "is_upcoming",
			CommentsKey: video.ID,
		}

		if video.Duration > 0 {
			meta.DurationMs = int64(math.Round(video.Duration * 1000))
		}

		if meta.IsLive {
			meta.ChatKey = video.ID
		}

		emit(meta)
		return nil
	}
}

// Comments implements Service. Only top-level comments are emitted.
func (y *YTDLP) Comments(key string) eventloop.Stream[[]Comment] {
	return func(ctx context.Context, emit func([]Comment)) error {
		video, err := y.extract(ctx, key, "--write-comments", "--extractor-args", "youtube:max_comments=100,all,0")
		if err != nil {
			return err
		}

		comments := lo.FilterMap(video.Comments, func(c ytdlpComment, _ int) (Comment, bool) {
			if c.Parent != "" && c.Parent != "root" {
				return Comment{}, false
			}
			return Comment{
				ID:          c.ID,
				Author:      c.Author,
				Text:        c.Text,
				Likes:       c.LikeCount,
				PublishedAt: time.Unix(c.Timestamp, 0),
			}, true
		})

		emit(comments)
		return nil
	}
}

// Chat implements Service. yt-dlp has no streaming chat output.
func (y *YTDLP) Chat(key string) eventloop.Stream[ChatMessage] {
	return func(context.Context, func(ChatMessage)) error {
		return fmt.Errorf("chat %q: %w", key, ErrUnsupported)
	}
}
