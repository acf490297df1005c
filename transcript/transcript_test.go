package transcript

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memCache struct {
	data map[string]string
}

func newMemCache() *memCache {
	return &memCache{data: map[string]string{}}
}

func (c *memCache) GetTranscriptData(ctx context.Context, youtubeID string) (string, error) {
	return c.data[youtubeID], nil
}

func (c *memCache) SetTranscriptData(ctx context.Context, youtubeID, data string) error {
	c.data[youtubeID] = data
	return nil
}

const timedtextJSON = `{
  "events": [
    {"tStartMs": 0, "dDurationMs": 2000, "segs": [{"utf8": "hello "}, {"utf8": "world"}]},
    {"tStartMs": 5000, "dDurationMs": 1500},
    {"tStartMs": 135000, "dDurationMs": 3000, "segs": [{"utf8": "later segment"}]}
  ]
}`

func TestParseTimedtext(t *testing.T) {
	segments, err := parseTimedtext([]byte(timedtextJSON))
	require.NoError(t, err)
	require.Len(t, segments, 2)

	assert.Equal(t, "hello world", segments[0].Text)
	assert.Equal(t, 0.0, segments[0].Start)
	assert.Equal(t, 2.0, segments[0].Duration)

	assert.Equal(t, "later segment", segments[1].Text)
	assert.Equal(t, 135.0, segments[1].Start)
}

func TestParseTimedtextBadJSON(t *testing.T) {
	_, err := parseTimedtext([]byte("<transcript/>"))
	assert.Error(t, err)
}

func TestResultText(t *testing.T) {
	r := &Result{Segments: []Segment{
		{Text: "intro", Start: 5},
		{Text: "main point", Start: 135},
	}}
	assert.Equal(t, "[0:05] intro\n[2:15] main point", r.Text())
}

func TestFetchFallsBackToAnyLanguage(t *testing.T) {
	var requests []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests = append(requests, r.URL.Query().Get("lang"))
		if r.URL.Query().Get("lang") != "" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(timedtextJSON))
	}))
	defer srv.Close()

	cache := newMemCache()
	client := NewClient(cache, srv.URL, 5*time.Second)

	result, err := client.Fetch(context.Background(), "abc123", "en")
	require.NoError(t, err)
	assert.Equal(t, []string{"en", ""}, requests)
	assert.Equal(t, "any", result.Language)
	assert.Len(t, result.Segments, 2)

	// successful fetch populates the cache
	assert.NotEmpty(t, cache.data["abc123"])
}

func TestFetchDisabledIsNotRetried(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	client := NewClient(newMemCache(), srv.URL, 5*time.Second)
	_, err := client.Fetch(context.Background(), "abc123", "en")
	assert.ErrorIs(t, err, ErrTranscriptsDisabled)
	assert.Equal(t, 1, calls)
}

func TestFetchPrefersCache(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("cache hit must not reach the network")
	}))
	defer srv.Close()

	cache := newMemCache()
	cache.data["abc123"] = `{"video_id":"abc123","language":"en","transcript":[{"text":"cached","start":0,"duration":1}]}`

	client := NewClient(cache, srv.URL, 5*time.Second)
	result, err := client.Fetch(context.Background(), "abc123", "en")
	require.NoError(t, err)
	assert.Equal(t, "cached", result.Segments[0].Text)
}

func TestFetchNoTranscriptFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewClient(newMemCache(), srv.URL, 5*time.Second)
	_, err := client.Fetch(context.Background(), "abc123", "en")
	assert.ErrorIs(t, err, ErrNoTranscript)
}

func TestFetchTextRendersTimestamps(t *testing.T) {
	cache := newMemCache()
	cache.data["abc123"] = `{"video_id":"abc123","language":"en","transcript":[{"text":"hello","start":0,"duration":1},{"text":"bye","start":61,"duration":1}]}`

	client := NewClient(cache, "", 0)
	text, err := client.FetchText(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, "[0:00] hello\n[1:01] bye", text)
}
