package player

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math"
	"net"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/tvloop/tvloop/log"
	"github.com/tvloop/tvloop/media"
	"github.com/tvloop/tvloop/where"
)

const (
	socketWaitRetries = 10
	socketWaitDelay   = 300 * time.Millisecond
	quitTimeout       = 3 * time.Second
)

// playbackState mirrors the observed mpv properties.
type playbackState struct {
	positionMs  int64
	durationMs  int64
	playing     bool
	seeking     bool
	format      media.Format
	formatKnown bool
}

// MPV implements Engine using mpv's JSON-IPC protocol.
// The process is started lazily in idle mode and reused across loads.
type MPV struct {
	binary     string
	tick       time.Duration
	socketPath string
	cmd        *exec.Cmd
	exited     chan struct{} // closed when mpv process exits
	tickerStop chan struct{}
	events     *EventListener
	mu         sync.Mutex // Protects socket writes

	stateMu  sync.RWMutex
	state    playbackState
	listener Listener

	releaseOnce sync.Once
}

// NewMPV creates a new mpv engine. The process is not started until the first Load.
func NewMPV(binary string, tick time.Duration) *MPV {
	if binary == "" {
		binary = "mpv"
	}
	if tick <= 0 {
		tick = time.Second
	}

	return &MPV{
		binary:   binary,
		tick:     tick,
		listener: NopListener{},
		state:    playbackState{durationMs: -1},
	}
}

// SetListener implements Engine.
func (m *MPV) SetListener(l Listener) {
	if l == nil {
		l = NopListener{}
	}
	m.stateMu.Lock()
	m.listener = l
	m.stateMu.Unlock()
}

func (m *MPV) notify() Listener {
	m.stateMu.RLock()
	defer m.stateMu.RUnlock()
	return m.listener
}

// start launches mpv in idle mode and connects to its IPC socket.
func (m *MPV) start() error {
	randomBytes := make([]byte, 4)
	if _, err := rand.Read(randomBytes); err != nil {
		return fmt.Errorf("generate socket name: %w", err)
	}
	socketPath := filepath.Join(where.Temp(), fmt.Sprintf(socketPattern, randomBytes))

	// Only the socket and window behaviour are forced. The user's mpv.conf is respected.
	args := []string{
		"--no-terminal",
		"--really-quiet",
		fmt.Sprintf("--input-ipc-server=%s", socketPath),
		"--force-window=yes",
		"--idle=yes",
		"--keep-open=yes",
	}

	cmd := exec.Command(m.binary, args...)
	cmd.SysProcAttr = sysProcAttr()
	cmd.Stdout = nil
	cmd.Stderr = nil
	cmd.Stdin = nil

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", m.binary, err)
	}

	exited := make(chan struct{})
	go func() {
		_ = cmd.Wait()
		close(exited)
	}()

	if err := waitForSocket(socketPath, exited); err != nil {
		select {
		case <-exited:
		default:
			log.Warnf("killing mpv: socket never became ready")
			_ = killProcess(cmd)
		}
		return fmt.Errorf("mpv socket not ready: %w", err)
	}

	m.mu.Lock()
	m.socketPath = socketPath
	m.cmd = cmd
	m.exited = exited
	m.mu.Unlock()

	m.events = NewEventListener(socketPath, m.handleEvent, func() {
		m.notify().OnError(ErrorIPC, errors.New("mpv event connection lost"))
	})
	if err := m.events.Start(); err != nil {
		_ = m.Close()
		return err
	}

	go func() {
		<-exited
		m.stopTicker()
		m.release()
	}()

	m.startTicker()
	m.notify().OnInitialized()
	return nil
}

// waitForSocket polls until the mpv IPC socket is accepting connections.
func waitForSocket(socketPath string, exited <-chan struct{}) error {
	for i := 0; i < socketWaitRetries; i++ {
		time.Sleep(socketWaitDelay)

		select {
		case <-exited:
			return fmt.Errorf("mpv exited before socket was ready")
		default:
		}

		conn, err := net.Dial("unix", socketPath)
		if err == nil {
			conn.Close()
			return nil
		}
	}
	return fmt.Errorf("socket %s not ready after %d attempts", socketPath, socketWaitRetries)
}

// Running reports whether the mpv process is alive.
func (m *MPV) Running() bool {
	m.mu.Lock()
	exited := m.exited
	m.mu.Unlock()

	if exited == nil {
		return false
	}

	select {
	case <-exited:
		return false
	default:
		return true
	}
}

// Load implements Engine.
func (m *MPV) Load(entry *media.Entry, startMs int64) error {
	if media.IsEmpty(entry) {
		return fmt.Errorf("load: empty entry")
	}

	target := entry.URL
	if target == "" {
		target = media.WatchURL + entry.VideoID
	}

	safeURL, err := sanitizeMediaTarget(target)
	if err != nil {
		return fmt.Errorf("invalid media target: %w", err)
	}

	if !m.Running() {
		if err := m.start(); err != nil {
			return err
		}
	}

	m.stateMu.Lock()
	m.state = playbackState{positionMs: max(startMs, 0), durationMs: -1}
	m.stateMu.Unlock()

	if err := m.set("force-media-title", sanitizeTitle(entry.Title)); err != nil {
		return err
	}
	if err := m.set("start", fmt.Sprintf("+%.3f", float64(max(startMs, 0))/1000)); err != nil {
		return err
	}

	_, err = m.sendCommand("loadfile", safeURL, "replace")
	return err
}

// Play implements Engine.
func (m *MPV) Play() error {
	return m.set("pause", false)
}

// Pause implements Engine.
func (m *MPV) Pause() error {
	return m.set("pause", true)
}

// Seek implements Engine.
func (m *MPV) Seek(positionMs int64) error {
	_, err := m.sendCommand("seek", float64(max(positionMs, 0))/1000, "absolute")
	return err
}

// IsPlaying implements Engine.
func (m *MPV) IsPlaying() bool {
	m.stateMu.RLock()
	defer m.stateMu.RUnlock()
	return m.state.playing
}

// PositionMs implements Engine.
func (m *MPV) PositionMs() int64 {
	m.stateMu.RLock()
	defer m.stateMu.RUnlock()
	return m.state.positionMs
}

// DurationMs implements Engine.
func (m *MPV) DurationMs() int64 {
	m.stateMu.RLock()
	defer m.stateMu.RUnlock()
	return m.state.durationMs
}

// CurrentFormat implements Engine.
func (m *MPV) CurrentFormat() *media.Format {
	m.stateMu.RLock()
	defer m.stateMu.RUnlock()

	if !m.state.formatKnown {
		return nil
	}
	format := m.state.format
	return &format
}

// SetChapters implements ChapterMarker.
// This provides visual feedback on the mpv timeline.
func (m *MPV) SetChapters(chapters []Chapter) error {
	list := make([]map[string]any, len(chapters))
	for i, c := range chapters {
		list[i] = map[string]any{
			"title": c.Title,
			"time":  float64(c.StartMs) / 1000,
		}
	}
	return m.set("chapter-list", list)
}

func (m *MPV) set(property string, value any) error {
	_, err := m.sendCommand("set_property", property, value)
	return err
}

// handleEvent maps mpv property changes and events onto Listener callbacks.
func (m *MPV) handleEvent(name string, data any) {
	var callback func(Listener)

	m.stateMu.Lock()
	switch name {
	case "time-pos":
		if v, ok := data.(float64); ok {
			m.state.positionMs = seconds(v)
		}
	case "duration":
		if v, ok := data.(float64); ok {
			m.state.durationMs = seconds(v)
		} else {
			m.state.durationMs = -1
		}
	case "pause":
		if paused, ok := data.(bool); ok {
			m.state.playing = !paused
			if paused {
				callback = Listener.OnPause
			} else {
				callback = Listener.OnPlay
			}
		}
	case "paused-for-cache":
		if buffering, _ := data.(bool); buffering {
			callback = Listener.OnBuffering
		}
	case "seeking":
		seeking, _ := data.(bool)
		if m.state.seeking && !seeking {
			callback = Listener.OnSeekEnd
		}
		m.state.seeking = seeking
	case "eof-reached":
		if ended, _ := data.(bool); ended {
			callback = Listener.OnPlaybackEnded
		}
	case "video-params":
		params, _ := data.(map[string]any)
		w, okW := params["w"].(float64)
		h, okH := params["h"].(float64)
		if okW && okH {
			m.state.format.Width = int(w)
			m.state.format.Height = int(h)
			m.state.formatKnown = true
		}
	case "container-fps":
		if v, ok := data.(float64); ok {
			m.state.format.FrameRate = v
		}
	case "video-codec":
		if v, ok := data.(string); ok {
			m.state.format.Codec = v
		}
	case "file-loaded":
		callback = Listener.OnLoaded
	case "end-file":
		event, _ := data.(map[string]any)
		if reason, _ := event["reason"].(string); reason == "error" {
			cause, _ := event["file_error"].(string)
			callback = func(l Listener) {
				l.OnError(ErrorSource, fmt.Errorf("mpv: %s", cause))
			}
		}
	}
	listener := m.listener
	m.stateMu.Unlock()

	if callback != nil {
		callback(listener)
	}
}

func seconds(v float64) int64 {
	return int64(math.Round(v * 1000))
}

// startTicker reports the playback position on every tick while playing.
func (m *MPV) startTicker() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.tickerStop != nil {
		return
	}

	stop := make(chan struct{})
	exited := m.exited
	m.tickerStop = stop

	go func() {
		ticker := time.NewTicker(m.tick)
		defer ticker.Stop()

		for {
			select {
			case <-stop:
				return
			case <-exited:
				return
			case <-ticker.C:
				m.stateMu.RLock()
				playing := m.state.playing
				position, duration := m.state.positionMs, m.state.durationMs
				listener := m.listener
				m.stateMu.RUnlock()

				if playing {
					listener.OnPosition(position, duration)
				}
			}
		}
	}()
}

func (m *MPV) stopTicker() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.tickerStop != nil {
		close(m.tickerStop)
		m.tickerStop = nil
	}
}

func (m *MPV) release() {
	m.releaseOnce.Do(func() {
		m.notify().OnReleased()
	})
}

// Close shuts down the mpv process and cleans up resources.
func (m *MPV) Close() error {
	m.stopTicker()

	if m.events != nil {
		m.events.Stop()
	}

	if !m.Running() {
		m.release()
		return nil
	}

	// Try graceful quit via IPC
	_, _ = m.sendCommand("quit")

	select {
	case <-m.exited:
	case <-time.After(quitTimeout):
		_ = killProcess(m.cmd)
	}

	_ = os.Remove(m.socketPath)
	m.release()

	return nil
}

// sanitizeMediaTarget validates that a URL is safe to pass to mpv.
func sanitizeMediaTarget(link string) (string, error) {
	l := strings.TrimSpace(link)
	if l == "" {
		return "", fmt.Errorf("empty URL")
	}

	if strings.ContainsAny(l, "\x00\n\r") {
		return "", fmt.Errorf("invalid control characters in URL")
	}

	// URLs must not look like flags
	if strings.HasPrefix(l, "-") {
		return "", fmt.Errorf("url must not start with '-' (looks like a flag)")
	}

	if strings.Contains(l, "://") {
		u, err := url.Parse(l)
		if err != nil {
			return "", fmt.Errorf("invalid URL: %w", err)
		}
		switch strings.ToLower(u.Scheme) {
		case "http", "https":
			return l, nil
		default:
			return "", fmt.Errorf("unsupported URL scheme: %s", u.Scheme)
		}
	}

	// Treat as local file path
	return filepath.Clean(l), nil
}

// sanitizeTitle cleans up the title for mpv
func sanitizeTitle(title string) string {
	t := strings.NewReplacer("\n", " ", "\r", " ", "\t", " ", "\x00", "").Replace(title)
	return strings.TrimSpace(t)
}
