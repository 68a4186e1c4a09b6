// Package segments provides a client for SponsorBlock-compatible services,
// enabling automated retrieval of skippable video segments.
package segments

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/metafates/gache"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/tvloop/tvloop/eventloop"
	"github.com/tvloop/tvloop/filesystem"
	"github.com/tvloop/tvloop/log"
	"github.com/tvloop/tvloop/network"
	"github.com/tvloop/tvloop/where"
)

// CacheLifetime is how long fetched segments are reused.
const CacheLifetime = 24 * time.Hour

// Segment is a skippable interval of a video.
type Segment struct {
	UUID     string `json:"uuid"`
	Category string `json:"category"`
	StartMs  int64  `json:"start_ms"`
	EndMs    int64  `json:"end_ms"`
}

// Contains reports whether positionMs falls inside the segment.
func (s Segment) Contains(positionMs int64) bool {
	return positionMs >= s.StartMs && positionMs < s.EndMs
}

func (s Segment) String() string {
	return fmt.Sprintf("%s [%d-%d]", s.Category, s.StartMs, s.EndMs)
}

// apiSegment is the structural mapping of one service result.
type apiSegment struct {
	UUID       string    `json:"UUID"`
	Category   string    `json:"category"`
	ActionType string    `json:"actionType"`
	Segment    []float64 `json:"segment"`
}

type cacher interface {
	Get() (map[string][]Segment, bool, error)
	Set(map[string][]Segment) error
}

// Client fetches segments by video id.
type Client struct {
	baseURL string
	http    *http.Client
	cache   cacher
}

// DefaultCachePath is where fetched segments are kept between runs.
func DefaultCachePath() string {
	return filepath.Join(where.Cache(), "segments.json")
}

// New creates a client for the service at baseURL.
// An empty cachePath disables the on-disk cache.
func New(baseURL, cachePath string) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    network.Client,
	}

	if cachePath != "" {
		c.cache = gache.New[map[string][]Segment](&gache.Options{
			Path:       cachePath,
			Lifetime:   CacheLifetime,
			FileSystem: &filesystem.GacheFs{},
		})
	}

	return c
}

// Fetch retrieves the skip segments of a video, ordered by start.
// Returns nil (not an error) if the video has no segments or the service is unavailable.
func (c *Client) Fetch(ctx context.Context, videoID string, categories []string) ([]Segment, error) {
	if videoID == "" {
		return nil, nil
	}

	cacheKey := videoID + "|" + strings.Join(categories, ",")
	if cached, ok := c.cached(cacheKey); ok {
		return cached, nil
	}

	query := url.Values{}
	query.Set("videoID", videoID)
	if len(categories) > 0 {
		encoded, err := json.Marshal(categories)
		if err != nil {
			return nil, err
		}
		query.Set("categories", string(encoded))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("segments request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Warnf("segments request failed: %v", err)
		return nil, nil
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		// no segments registered for the video
		c.store(cacheKey, nil)
		return nil, nil
	default:
		log.Warnf("segments service returned status %d", resp.StatusCode)
		return nil, nil
	}

	var data []apiSegment
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("parse segments response: %w", err)
	}

	segments := parse(data)
	c.store(cacheKey, segments)
	return segments, nil
}

// Stream wraps Fetch for subscription on the event loop.
func (c *Client) Stream(videoID string, categories []string) eventloop.Stream[[]Segment] {
	return func(ctx context.Context, emit func([]Segment)) error {
		segments, err := c.Fetch(ctx, videoID, categories)
		if err != nil {
			return err
		}
		emit(segments)
		return nil
	}
}

func parse(data []apiSegment) []Segment {
	segments := lo.FilterMap(data, func(s apiSegment, _ int) (Segment, bool) {
		if len(s.Segment) != 2 || (s.ActionType != "" && s.ActionType != "skip") {
			return Segment{}, false
		}

		start := int64(math.Round(s.Segment[0] * 1000))
		end := int64(math.Round(s.Segment[1] * 1000))
		if end <= start {
			return Segment{}, false
		}

		return Segment{UUID: s.UUID, Category: s.Category, StartMs: start, EndMs: end}, true
	})

	sort.SliceStable(segments, func(i, j int) bool {
		return segments[i].StartMs < segments[j].StartMs
	})

	return segments
}

func (c *Client) cached(cacheKey string) ([]Segment, bool) {
	if c.cache == nil {
		return nil, false
	}

	all, expired, err := c.cache.Get()
	if err != nil || expired {
		return nil, false
	}

	segments, ok := all[cacheKey]
	return segments, ok
}

func (c *Client) store(cacheKey string, segments []Segment) {
	if c.cache == nil {
		return
	}

	all, expired, err := c.cache.Get()
	if err != nil || expired || all == nil {
		all = make(map[string][]Segment)
	}

	all[cacheKey] = segments
	if err := c.cache.Set(all); err != nil {
		log.Warnf("segments cache: %v", err)
	}
}

// Find returns the segment containing positionMs.
func Find(segments []Segment, positionMs int64) mo.Option[Segment] {
	segment, ok := lo.Find(segments, func(s Segment) bool {
		return s.Contains(positionMs)
	})
	if !ok {
		return mo.None[Segment]()
	}
	return mo.Some(segment)
}
