package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vadiminshakov/redbet/internal/domain"
	"github.com/vadiminshakov/redbet/internal/events"
)

type fakeHistory struct {
	lastPage     int
	lastPageSize int
	page         domain.HistoryPage
}

func (f *fakeHistory) Paginate(page, pageSize int) domain.HistoryPage {
	f.lastPage = page
	f.lastPageSize = pageSize
	return f.page
}

type fakeDesk struct {
	opened    []domain.WagerKind
	openErr   error
	clearErr  error
	balance   int
	cleared   int
	lastStake int64
}

func (f *fakeDesk) OpenWager(_ context.Context, rawAmount string, kind domain.WagerKind) (domain.WagerRecord, error) {
	if f.openErr != nil {
		return domain.WagerRecord{}, f.openErr
	}
	f.opened = append(f.opened, kind)
	return domain.WagerRecord{ID: 1, Amount: 10, Kind: kind, Status: domain.StatusPending}, nil
}

func (f *fakeDesk) CheckBalance(context.Context) error { f.balance++; return nil }

func (f *fakeDesk) ClearHistory() error {
	if f.clearErr != nil {
		return f.clearErr
	}
	f.cleared++
	return nil
}

func (f *fakeDesk) LastStake() int64 { return f.lastStake }

func newTestServer(history *fakeHistory, desk *fakeDesk) (*Server, *events.Broadcaster) {
	feed := events.NewBroadcaster(8)
	return NewServer(":0", 30, time.Second, history, desk, feed, zap.NewNop()), feed
}

func TestHandleHistoryQueryParams(t *testing.T) {
	history := &fakeHistory{page: domain.HistoryPage{
		Records:     []domain.WagerRecord{{ID: 7, Amount: 3, Kind: domain.KindRed, Status: domain.StatusWon}},
		CurrentPage: 2,
		TotalPages:  4,
		TotalItems:  100,
		HasPrev:     true,
		HasNext:     true,
	}}
	srv, _ := newTestServer(history, &fakeDesk{})

	rec := httptest.NewRecorder()
	srv.router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/history?page=2&page_size=25", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, history.lastPage)
	assert.Equal(t, 25, history.lastPageSize)

	var page domain.HistoryPage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, 100, page.TotalItems)
	assert.True(t, page.HasNext)
	require.Len(t, page.Records, 1)
	assert.Equal(t, int64(7), page.Records[0].ID)
}

func TestHandleHistoryDefaults(t *testing.T) {
	history := &fakeHistory{}
	srv, _ := newTestServer(history, &fakeDesk{})

	rec := httptest.NewRecorder()
	srv.router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/history?page_size=-5", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, history.lastPage)
	assert.Equal(t, 30, history.lastPageSize)
}

func TestHandleOpenWager(t *testing.T) {
	desk := &fakeDesk{}
	srv, _ := newTestServer(&fakeHistory{}, desk)

	body := strings.NewReader(`{"amount":"15","kind":"red"}`)
	rec := httptest.NewRecorder()
	srv.router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/wagers", body))

	require.Equal(t, http.StatusAccepted, rec.Code)
	require.Len(t, desk.opened, 1)
	assert.Equal(t, domain.KindRed, desk.opened[0])
}

func TestHandleOpenWagerRejected(t *testing.T) {
	desk := &fakeDesk{openErr: errors.New("unknown wager kind")}
	srv, _ := newTestServer(&fakeHistory{}, desk)

	body := strings.NewReader(`{"amount":"15","kind":"nope"}`)
	rec := httptest.NewRecorder()
	srv.router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/wagers", body))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "unknown wager kind")
}

func TestHandleOpenWagerBadJSON(t *testing.T) {
	srv, _ := newTestServer(&fakeHistory{}, &fakeDesk{})

	rec := httptest.NewRecorder()
	srv.router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/wagers", strings.NewReader("{bad")))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleClearHistory(t *testing.T) {
	desk := &fakeDesk{}
	srv, _ := newTestServer(&fakeHistory{}, desk)

	rec := httptest.NewRecorder()
	srv.router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/history/clear", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 1, desk.cleared)
}

func TestHandleBalance(t *testing.T) {
	desk := &fakeDesk{}
	srv, _ := newTestServer(&fakeHistory{}, desk)

	rec := httptest.NewRecorder()
	srv.router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/balance", nil))

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, 1, desk.balance)
}

func TestHandleEventsStreamsSettlement(t *testing.T) {
	srv, feed := newTestServer(&fakeHistory{}, &fakeDesk{})

	httpSrv := httptest.NewServer(srv.router())
	defer httpSrv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, httpSrv.URL+"/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	// republish until the handler has subscribed and the event arrives
	go func() {
		ticker := time.NewTicker(50 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				feed.Publish(events.Change{Kind: events.ChangeSettled, Record: &domain.WagerRecord{ID: 42}})
			}
		}
	}()

	buf := make([]byte, 4096)
	n, err := resp.Body.Read(buf)
	require.NoError(t, err)
	assert.Contains(t, string(buf[:n]), "event: settled")
}

func TestServerStartStopsOnCancel(t *testing.T) {
	srv, _ := newTestServer(&fakeHistory{}, &fakeDesk{})
	srv.addr = "127.0.0.1:0"

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Start(ctx) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not stop after context cancel")
	}
}
