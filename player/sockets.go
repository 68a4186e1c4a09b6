package player

import (
	"net"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/tvloop/tvloop/constant"
	"github.com/tvloop/tvloop/log"
	"github.com/tvloop/tvloop/where"
)

const socketPattern = "mpv-%x.sock"

// CollectStaleSockets removes IPC sockets of players that exited without cleaning up.
// Sockets still accepting connections belong to running players and are kept.
func CollectStaleSockets() int {
	if runtime.GOOS == constant.Windows {
		return 0
	}

	matches, err := filepath.Glob(filepath.Join(where.Temp(), "mpv-*.sock"))
	if err != nil {
		return 0
	}

	var removed int
	for _, path := range matches {
		conn, err := net.DialTimeout("unix", path, 200*time.Millisecond)
		if err == nil {
			_ = conn.Close()
			continue
		}

		if err := os.Remove(path); err == nil {
			removed++
		}
	}

	if removed > 0 {
		log.Debugf("removed %d stale player sockets", removed)
	}

	return removed
}
