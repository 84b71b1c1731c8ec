package sheets

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

const meetingsCSV = "流水編號,會議名稱,會議資料連結\n1,校務會議,https://fms.ntpu.edu.tw/km/24761\n2,學生申訴評議委員會,non-public\n"

func newTestFetcher(t *testing.T, baseURL string) *Fetcher {
	t.Helper()
	return NewFetcher(Config{
		BaseURL:       baseURL,
		SpreadsheetID: "sheet-id",
		MaxRedirects:  3,
		Timeout:       5 * time.Second,
		RetryCount:    2,
		RetryWait:     time.Millisecond,
		RetryMaxWait:  5 * time.Millisecond,
	}, zaptest.NewLogger(t))
}

func TestExportURL(t *testing.T) {
	f := NewFetcher(Config{SpreadsheetID: "160GDmRWGq1_lM3w0gGgTPHdJG3hztyJog8rEIOFkaKs"}, zap.NewNop())
	got := f.ExportURL(Ref{Key: "meetings", GID: "329615512"})
	assert.Equal(t, "https://docs.google.com/spreadsheets/d/160GDmRWGq1_lM3w0gGgTPHdJG3hztyJog8rEIOFkaKs/export?format=csv&gid=329615512", got)
}

func TestFetchFollowsRedirect(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/spreadsheets/d/sheet-id/export", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "csv", r.URL.Query().Get("format"))
		assert.Equal(t, "42", r.URL.Query().Get("gid"))
		w.Header().Set("Location", "/final?token=abc")
		w.WriteHeader(http.StatusFound)
		fmt.Fprint(w, "moved")
	})
	mux.HandleFunc("/final", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "abc", r.URL.Query().Get("token"))
		w.Header().Set("Content-Type", "text/csv")
		fmt.Fprint(w, meetingsCSV)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	sheet, err := newTestFetcher(t, srv.URL).Fetch(context.Background(), Ref{Key: "meetings", GID: "42"})
	require.NoError(t, err)

	assert.Equal(t, []string{"流水編號", "會議名稱", "會議資料連結"}, sheet.Header)
	assert.Equal(t, [][]string{
		{"1", "校務會議", "https://fms.ntpu.edu.tw/km/24761"},
		{"2", "學生申訴評議委員會", "non-public"},
	}, sheet.Rows)
}

func TestFetchFollowsAbsoluteRedirectChain(t *testing.T) {
	var final *httptest.Server
	final = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/hop" {
			http.Redirect(w, r, final.URL+"/done", http.StatusTemporaryRedirect)
			return
		}
		fmt.Fprint(w, meetingsCSV)
	}))
	defer final.Close()

	origin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, final.URL+"/hop", http.StatusMovedPermanently)
	}))
	defer origin.Close()

	sheet, err := newTestFetcher(t, origin.URL).Fetch(context.Background(), Ref{Key: "meetings", GID: "1"})
	require.NoError(t, err)
	assert.Len(t, sheet.Rows, 2)
}

func TestFetchRedirectLoop(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Redirect(w, r, "/again", http.StatusFound)
	}))
	defer srv.Close()

	_, err := newTestFetcher(t, srv.URL).Fetch(context.Background(), Ref{Key: "meetings", GID: "1"})

	var loopErr *RedirectLoopError
	require.True(t, errors.As(err, &loopErr), "got %v", err)
	assert.Equal(t, 3, loopErr.Hops)
	assert.Equal(t, "meetings", loopErr.Sheet)
	assert.Equal(t, int32(4), hits.Load())
}

func TestFetchErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := newTestFetcher(t, srv.URL).Fetch(context.Background(), Ref{Key: "assignments", GID: "1"})

	var fetchErr *FetchError
	require.True(t, errors.As(err, &fetchErr), "got %v", err)
	assert.Equal(t, http.StatusNotFound, fetchErr.StatusCode)
	assert.Equal(t, "assignments", fetchErr.Sheet)
}

func TestFetchRetriesServerErrors(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, meetingsCSV)
	}))
	defer srv.Close()

	sheet, err := newTestFetcher(t, srv.URL).Fetch(context.Background(), Ref{Key: "meetings", GID: "1"})
	require.NoError(t, err)
	assert.Len(t, sheet.Rows, 2)
	assert.Equal(t, int32(2), hits.Load())
}

func TestFetchGivesUpAfterRetries(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := newTestFetcher(t, srv.URL).Fetch(context.Background(), Ref{Key: "meetings", GID: "1"})

	var fetchErr *FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, http.StatusInternalServerError, fetchErr.StatusCode)
	assert.Equal(t, int32(3), hits.Load())
}

func TestFetchMalformedCSV(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "id,name\n1,\"unterminated\n")
	}))
	defer srv.Close()

	_, err := newTestFetcher(t, srv.URL).Fetch(context.Background(), Ref{Key: "meetings", GID: "1"})

	var parseErr *ParseError
	require.True(t, errors.As(err, &parseErr), "got %v", err)
	assert.Equal(t, "meetings", parseErr.Sheet)
}

func TestFetchNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	baseURL := srv.URL
	srv.Close()

	f := newTestFetcher(t, baseURL)
	_, err := f.Fetch(context.Background(), Ref{Key: "meetings", GID: "1"})

	var fetchErr *FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Zero(t, fetchErr.StatusCode)
	assert.Error(t, fetchErr.Err)
}

func TestFetchAllFailFast(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("gid") == "3" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, meetingsCSV)
	}))
	defer srv.Close()

	refs := []Ref{{Key: "meetings", GID: "1"}, {Key: "representatives", GID: "2"}, {Key: "assignments", GID: "3"}}
	sheets, err := newTestFetcher(t, srv.URL).FetchAll(context.Background(), refs)

	assert.Nil(t, sheets)
	var fetchErr *FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, "assignments", fetchErr.Sheet)
}

func TestFetchAllKeepsOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gid := r.URL.Query().Get("gid")
		if gid == "1" {
			time.Sleep(20 * time.Millisecond)
		}
		fmt.Fprintf(w, "gid\n%s\n", gid)
	}))
	defer srv.Close()

	refs := []Ref{{Key: "meetings", GID: "1"}, {Key: "representatives", GID: "2"}, {Key: "assignments", GID: "3"}}
	sheets, err := newTestFetcher(t, srv.URL).FetchAll(context.Background(), refs)
	require.NoError(t, err)
	require.Len(t, sheets, 3)
	for i, s := range sheets {
		assert.Equal(t, refs[i], s.Ref)
		assert.Equal(t, [][]string{{refs[i].GID}}, s.Rows)
	}
}

type recordingObserver struct {
	sheets []string
	errs   []error
}

func (o *recordingObserver) ObserveFetch(sheet string, err error, _ time.Duration) {
	o.sheets = append(o.sheets, sheet)
	o.errs = append(o.errs, err)
}

func TestFetchNotifiesObserver(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, meetingsCSV)
	}))
	defer srv.Close()

	obs := &recordingObserver{}
	f := newTestFetcher(t, srv.URL).WithObserver(obs)
	_, err := f.Fetch(context.Background(), Ref{Key: "meetings", GID: "1"})
	require.NoError(t, err)

	assert.Equal(t, []string{"meetings"}, obs.sheets)
	assert.Equal(t, []error{nil}, obs.errs)
}

func TestFetchClientLogsThroughZap(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	baseURL := srv.URL
	srv.Close()

	core, logs := observer.New(zapcore.DebugLevel)
	f := NewFetcher(Config{
		BaseURL:       baseURL,
		SpreadsheetID: "sheet-id",
		Timeout:       time.Second,
		RetryCount:    1,
		RetryWait:     time.Millisecond,
		RetryMaxWait:  time.Millisecond,
	}, zap.New(core))

	_, err := f.Fetch(context.Background(), Ref{Key: "meetings", GID: "1"})
	require.Error(t, err)
	assert.NotZero(t, logs.FilterLevelExact(zapcore.ErrorLevel).Len())
}
