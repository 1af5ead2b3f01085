package knowledge

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halvard/scout/internal/log"
)

func newTestGoogleClient(t *testing.T, handler http.HandlerFunc) (*GoogleClient, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := NewGoogleClient("test-key", "test-cx", log.NewNop())
	client.baseURL = srv.URL
	return client, srv
}

func TestGoogleClient_MissingCredentials(t *testing.T) {
	client := NewGoogleClient("", "", log.NewNop())

	assert.False(t, client.Configured())

	_, err := client.Search(context.Background(), "anything", 2, 10, "")
	assert.ErrorIs(t, err, ErrSearchNotConfigured)
}

func TestGoogleClient_Pagination(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestGoogleClient(t, func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		q := r.URL.Query()
		assert.Equal(t, "test-key", q.Get("key"))
		assert.Equal(t, "test-cx", q.Get("cx"))
		assert.Equal(t, "go generics", q.Get("q"))

		switch q.Get("start") {
		case "1":
			fmt.Fprint(w, `{"items":[{"link":"https://a.example","snippet":"A"}],"queries":{"nextPage":[{"startIndex":11}]}}`)
		case "11":
			fmt.Fprint(w, `{"items":[{"link":"https://b.example","snippet":"B"}],"queries":{}}`)
		default:
			t.Errorf("unexpected start %q on call %d", q.Get("start"), n)
		}
	})

	results, err := client.Search(context.Background(), "go generics", 2, 10, "")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "https://a.example", results[0].Link)
	assert.Equal(t, "https://b.example", results[1].Link)
	assert.Equal(t, int32(2), calls.Load())
}

func TestGoogleClient_StopsWithoutNextPage(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestGoogleClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		fmt.Fprint(w, `{"items":[{"link":"https://only.example","snippet":"only"}],"queries":{}}`)
	})

	results, err := client.Search(context.Background(), "q", 5, 10, "")
	require.NoError(t, err)
	assert.Len(t, results, 1)
	assert.Equal(t, int32(1), calls.Load(), "should stop after the page without a nextPage")
}

func TestGoogleClient_DateRestrict(t *testing.T) {
	client, _ := newTestGoogleClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "d7", r.URL.Query().Get("dateRestrict"))
		fmt.Fprint(w, `{"items":[],"queries":{}}`)
	})

	_, err := client.Search(context.Background(), "fresh news", 1, 10, "d7")
	require.NoError(t, err)
}

func TestGoogleClient_FirstPageFailureFailsSearch(t *testing.T) {
	client, _ := newTestGoogleClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusForbidden)
	})

	_, err := client.Search(context.Background(), "q", 2, 10, "")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrSearchNotConfigured)
}

func TestGoogleClient_LaterPageFailureDegrades(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestGoogleClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			fmt.Fprint(w, `{"items":[{"link":"https://first.example","snippet":"first"}],"queries":{"nextPage":[{"startIndex":11}]}}`)
			return
		}
		http.Error(w, "flaky", http.StatusBadGateway)
	})

	results, err := client.Search(context.Background(), "q", 3, 10, "")
	require.NoError(t, err)
	assert.Len(t, results, 1)
}
