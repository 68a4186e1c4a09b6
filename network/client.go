// Package network provides the HTTP client shared by the network-backed services.
package network

import (
	"net/http"
	"time"

	"github.com/tvloop/tvloop/constant"
)

// UserAgent identifies requests made by the application.
var UserAgent = constant.App + "/" + constant.Version

// Client is shared by every service so connections are pooled across sessions.
var Client = &http.Client{
	Timeout:   15 * time.Second,
	Transport: &agent{base: newTransport()},
}

// agent stamps the user agent onto outgoing requests.
type agent struct {
	base http.RoundTripper
}

func (a *agent) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") != "" {
		return a.base.RoundTrip(req)
	}

	clone := req.Clone(req.Context())
	clone.Header.Set("User-Agent", UserAgent)
	return a.base.RoundTrip(clone)
}

func newTransport() *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConnsPerHost = 10
	t.IdleConnTimeout = 90 * time.Second
	t.ResponseHeaderTimeout = 10 * time.Second
	return t
}
