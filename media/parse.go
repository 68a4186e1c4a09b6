package media

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// WatchURL turns a video id into a page the player and the content tools understand.
const WatchURL = "https://www.youtube.com/watch?v="

var videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// Parse builds an entry from a bare video id or a video URL.
// Links to other sites are kept as playable URLs with the link as their id.
func Parse(arg string) (*Entry, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return nil, fmt.Errorf("empty video reference")
	}

	if videoIDPattern.MatchString(arg) {
		return New(arg, arg), nil
	}

	u, err := url.Parse(arg)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("%q is neither a video id nor a link", arg)
	}

	host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")
	host = strings.TrimPrefix(host, "m.")

	var id string
	var shorts bool
	switch host {
	case "youtu.be":
		id = strings.Trim(u.Path, "/")
	case "youtube.com", "music.youtube.com":
		switch {
		case strings.HasPrefix(u.Path, "/shorts/"):
			id, shorts = strings.TrimPrefix(u.Path, "/shorts/"), true
		case strings.HasPrefix(u.Path, "/live/"):
			id = strings.TrimPrefix(u.Path, "/live/")
		default:
			id = u.Query().Get("v")
		}
	}

	if !videoIDPattern.MatchString(id) {
		e := New(arg, arg)
		e.URL = arg
		return e, nil
	}

	e := New(id, id)
	e.IsShorts = shorts
	e.PlaylistID = u.Query().Get("list")
	if t := u.Query().Get("t"); t != "" {
		var seconds int
		if _, err := fmt.Sscanf(strings.TrimSuffix(t, "s"), "%d", &seconds); err == nil && seconds > 0 {
			e.StartTimeSeconds = seconds
		}
	}

	return e, nil
}
