package httpx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonthHTML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=euc-kr")
		_, _ = w.Write([]byte("<html><body>calendar</body></html>"))
	}))
	defer srv.Close()

	client := NewCalendarClient("test/1.0", "", srv.URL+"/cal?year=%d&month=%d", 5*time.Second, 0)

	body, contentType, err := client.MonthHTML(context.Background(), 2026, time.March)
	require.NoError(t, err)
	assert.Contains(t, string(body), "calendar")
	assert.Equal(t, "text/html; charset=euc-kr", contentType)
}

func TestMonthHTMLRepeatedFetchSameURL(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte("<html><body>calendar</body></html>"))
	}))
	defer srv.Close()

	client := NewCalendarClient("test/1.0", "", srv.URL+"/cal?year=%d&month=%d", 5*time.Second, 0)

	// A scheduled refresh re-fetches the same month URLs with the same
	// client; the second pass must hit the server again, not fail on the
	// collector's visited set.
	for i := 0; i < 2; i++ {
		body, _, err := client.MonthHTML(context.Background(), 2026, time.March)
		require.NoError(t, err)
		assert.NotEmpty(t, body)
	}
	assert.Equal(t, int32(2), hits.Load())
}

func TestMonthHTMLBootstrapOnce(t *testing.T) {
	var bootstrapHits, monthHits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/index" {
			bootstrapHits.Add(1)
		} else {
			monthHits.Add(1)
		}
		_, _ = w.Write([]byte("<html><body>ok</body></html>"))
	}))
	defer srv.Close()

	client := NewCalendarClient("test/1.0", srv.URL+"/index", srv.URL+"/cal?year=%d&month=%d", 5*time.Second, 0)

	for _, m := range []time.Month{time.March, time.April} {
		_, _, err := client.MonthHTML(context.Background(), 2026, m)
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), bootstrapHits.Load())
	assert.Equal(t, int32(2), monthHits.Load())
}

func TestMonthHTMLHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewCalendarClient("test/1.0", "", srv.URL+"/cal?year=%d&month=%d", 5*time.Second, 0)

	_, _, err := client.MonthHTML(context.Background(), 2026, time.March)
	assert.Error(t, err)
}

func TestMonthHTMLCancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html><body>calendar</body></html>"))
	}))
	defer srv.Close()

	client := NewCalendarClient("test/1.0", "", srv.URL+"/cal?year=%d&month=%d", 5*time.Second, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := client.MonthHTML(ctx, 2026, time.March)
	assert.Error(t, err)
}
