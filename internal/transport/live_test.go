package transport

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rpggio/carelog/internal/domain/activity"
	"github.com/rpggio/carelog/internal/timeline"
	"github.com/stretchr/testify/require"
)

// staticFeed delivers a fixed snapshot per category on open.
type staticFeed struct {
	records map[activity.Category][]activity.Record
	fail    map[activity.Category]error
}

func (f staticFeed) Subscribe(bucket activity.Bucket, onSnapshot func([]activity.Record), onError func(error)) (func(), error) {
	if err := f.fail[bucket.Category]; err != nil {
		onError(err)
		return func() {}, nil
	}
	onSnapshot(f.records[bucket.Category])
	return func() {}, nil
}

type feedSubscriber struct {
	feed timeline.Feed
}

func (s feedSubscriber) Subscribe(childID, dateKey string, onChange timeline.ChangeFunc, onError timeline.ErrorFunc) (*timeline.Subscription, error) {
	return timeline.Subscribe(s.feed, childID, dateKey, onChange, onError)
}

func dialLive(t *testing.T, serverURL, path string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(serverURL, "http") + path
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestLiveTimeline_PushesRecordsAndErrors(t *testing.T) {
	lunch := activity.Record{
		ID:         "a1",
		ChildID:    "c1",
		Category:   activity.CategoryFood,
		OccurredAt: time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC),
		DateKey:    "2024-01-15",
		Payload:    activity.Payload{Food: &activity.FoodData{Item: "Lunch", Amount: activity.AmountAll}},
	}
	feed := staticFeed{
		records: map[activity.Category][]activity.Record{activity.CategoryFood: {lunch}},
		fail:    map[activity.Category]error{activity.CategorySleep: errors.New("boom")},
	}
	server := httptest.NewServer(NewServer(Options{
		Timeline: feedSubscriber{feed: feed},
		Auth:     DefaultAuthorMiddleware(rivera),
	}))
	t.Cleanup(server.Close)

	conn := dialLive(t, server.URL, "/children/c1/timeline/2024-01-15/live")
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var sawError, sawLunch bool
	for !(sawError && sawLunch) {
		var msg map[string]any
		require.NoError(t, conn.ReadJSON(&msg))
		if cat, ok := msg["category"]; ok {
			require.Equal(t, "Sleep", cat)
			require.Equal(t, "boom", msg["error"])
			sawError = true
			continue
		}
		recs, ok := msg["records"].([]any)
		require.True(t, ok, "unexpected message %v", msg)
		if len(recs) == 1 {
			require.Equal(t, "a1", recs[0].(map[string]any)["id"])
			sawLunch = true
		}
	}
}

func TestLiveTimeline_RejectsBadDate(t *testing.T) {
	server := httptest.NewServer(NewServer(Options{
		Timeline: feedSubscriber{feed: staticFeed{}},
		Auth:     DefaultAuthorMiddleware(rivera),
	}))
	t.Cleanup(server.Close)

	resp, err := http.Get(server.URL + "/children/c1/timeline/15-01-2024/live")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMailbox_KeepsLatestSnapshot(t *testing.T) {
	box := newMailbox()
	box.putRecords([]activity.Record{{ID: "old"}})
	box.putError(activity.CategoryNeeds, activity.ErrStoreUnavailable)
	box.putRecords([]activity.Record{{ID: "new"}})

	select {
	case <-box.notify:
	default:
		t.Fatal("expected a pending signal")
	}

	msgs := box.drain()
	require.Len(t, msgs, 2)
	errMsg := msgs[0].(LiveError)
	require.Equal(t, activity.CategoryNeeds, errMsg.Category)
	require.Equal(t, "STORE_UNAVAILABLE", errMsg.Code)
	require.Equal(t, "new", msgs[1].(LiveRecords).Records[0].ID)
	require.Empty(t, box.drain())
}
