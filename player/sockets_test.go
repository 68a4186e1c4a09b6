//go:build !windows

package player

import (
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/tvloop/tvloop/where"

	. "github.com/smartystreets/goconvey/convey"
)

func TestCollectStaleSockets(t *testing.T) {
	Convey("Given sockets in the temp directory", t, func() {
		dir := where.Temp()
		So(os.MkdirAll(dir, 0o755), ShouldBeNil)

		stale := filepath.Join(dir, "mpv-stale.sock")
		So(os.WriteFile(stale, nil, 0o600), ShouldBeNil)

		live := filepath.Join(dir, "mpv-live.sock")
		_ = os.Remove(live)
		listener, err := net.Listen("unix", live)
		So(err, ShouldBeNil)
		defer listener.Close()

		Convey("Only the one nobody listens on is removed", func() {
			So(CollectStaleSockets(), ShouldBeGreaterThanOrEqualTo, 1)

			_, err := os.Stat(stale)
			So(os.IsNotExist(err), ShouldBeTrue)

			_, err = os.Stat(live)
			So(err, ShouldBeNil)
		})
	})
}
