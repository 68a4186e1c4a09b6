package network

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestClient(t *testing.T) {
	Convey("Given a server echoing the user agent", t, func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(r.UserAgent()))
		}))
		defer server.Close()

		read := func(req *http.Request) string {
			resp, err := Client.Do(req)
			So(err, ShouldBeNil)
			defer resp.Body.Close()
			body, err := io.ReadAll(resp.Body)
			So(err, ShouldBeNil)
			return string(body)
		}

		Convey("The default user agent should be applied", func() {
			req, _ := http.NewRequest(http.MethodGet, server.URL, nil)
			So(read(req), ShouldEqual, UserAgent)
		})

		Convey("An explicit user agent should be kept", func() {
			req, _ := http.NewRequest(http.MethodGet, server.URL, nil)
			req.Header.Set("User-Agent", "custom")
			So(read(req), ShouldEqual, "custom")
		})
	})
}
