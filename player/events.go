package player

import (
	"encoding/json"
	"fmt"
	"net"
	"strings"
	"sync"

	"github.com/tvloop/tvloop/log"
)

// EventCallback is the function signature for mpv event notifications.
type EventCallback func(name string, data any)

// observed lists the properties mpv reports on change.
var observed = []string{
	"time-pos",
	"duration",
	"pause",
	"paused-for-cache",
	"seeking",
	"eof-reached",
	"video-params",
	"container-fps",
	"video-codec",
}

// EventListener provides real-time mpv event monitoring via observe_property.
type EventListener struct {
	socketPath string
	conn       net.Conn
	callback   EventCallback
	onClosed   func()
	stopCh     chan struct{}
	mu         sync.Mutex
	listening  bool
}

// NewEventListener creates a new event listener for the given socket.
// onClosed runs once the connection is lost, unless Stop was called first.
func NewEventListener(socketPath string, callback EventCallback, onClosed func()) *EventListener {
	return &EventListener{
		socketPath: socketPath,
		callback:   callback,
		onClosed:   onClosed,
		stopCh:     make(chan struct{}),
	}
}

// Start opens a persistent connection, subscribes to the observed properties
// and starts the read loop.
func (el *EventListener) Start() error {
	el.mu.Lock()
	defer el.mu.Unlock()

	if el.listening {
		return nil
	}

	conn, err := net.Dial("unix", el.socketPath)
	if err != nil {
		return fmt.Errorf("event listener connect: %w", err)
	}

	// observe_property must be sent on the connection that reads the events
	for i, name := range observed {
		payload, err := json.Marshal(ipcCommand{Command: []any{"observe_property", i + 1, name}})
		if err != nil {
			conn.Close()
			return err
		}
		if _, err := conn.Write(append(payload, '\n')); err != nil {
			conn.Close()
			return fmt.Errorf("observe %s: %w", name, err)
		}
	}

	el.conn = conn
	el.listening = true

	go el.readLoop()

	log.Infof("mpv event listener started on %s (observing: %s)", el.socketPath, strings.Join(observed, ", "))
	return nil
}

// Stop terminates the event listener.
func (el *EventListener) Stop() {
	el.mu.Lock()
	defer el.mu.Unlock()

	if !el.listening {
		return
	}

	close(el.stopCh)
	if el.conn != nil {
		el.conn.Close()
	}
	el.listening = false
}

// readLoop continuously reads newline-delimited JSON events from mpv.
func (el *EventListener) readLoop() {
	defer func() {
		el.mu.Lock()
		el.listening = false
		el.mu.Unlock()
	}()

	buf := make([]byte, readBufSize)
	var remainder []byte

	for {
		n, err := el.conn.Read(buf)
		if err != nil {
			select {
			case <-el.stopCh:
			default:
				log.Debugf("mpv event connection closed: %v", err)
				if el.onClosed != nil {
					el.onClosed()
				}
			}
			return
		}

		remainder = el.feed(remainder, buf[:n])
	}
}

// feed processes every complete line of chunk and returns the incomplete tail.
func (el *EventListener) feed(remainder, chunk []byte) []byte {
	data := append(remainder, chunk...)
	lines := strings.Split(string(data), "\n")

	for _, line := range lines[:len(lines)-1] {
		if line = strings.TrimSpace(line); line != "" {
			el.processEvent(line)
		}
	}

	return []byte(lines[len(lines)-1])
}

// processEvent parses and dispatches a single mpv event JSON line.
// Command replies carry no "event" field and are ignored.
func (el *EventListener) processEvent(line string) {
	var event map[string]any
	if err := json.Unmarshal([]byte(line), &event); err != nil {
		return
	}

	eventType, ok := event["event"].(string)
	if !ok || el.callback == nil {
		return
	}

	switch eventType {
	case "property-change":
		if name, _ := event["name"].(string); name != "" {
			el.callback(name, event["data"])
		}
	default:
		el.callback(eventType, event)
	}
}
