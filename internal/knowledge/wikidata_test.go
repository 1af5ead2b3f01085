package knowledge

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halvard/scout/internal/log"
)

func TestSubjectName(t *testing.T) {
	tests := []struct {
		query string
		want  string
	}{
		{"Barack Obama current age", "Barack Obama"},
		{"how old is Tom Hanks age", "how old is Tom Hanks"},
		{"Angela Merkel years old", "Angela Merkel"},
		{"AGE Current", "AGE Current"}, // stripping everything falls back to the query
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, SubjectName(tt.query))
		})
	}
}

func TestAgeOn(t *testing.T) {
	tests := []struct {
		name  string
		dob   string
		today time.Time
		want  int
	}{
		{
			name:  "day before birthday",
			dob:   "1961-08-04",
			today: time.Date(2025, 8, 3, 0, 0, 0, 0, time.UTC),
			want:  63,
		},
		{
			name:  "on birthday",
			dob:   "1961-08-04",
			today: time.Date(2025, 8, 4, 0, 0, 0, 0, time.UTC),
			want:  64,
		},
		{
			name:  "after birthday",
			dob:   "1961-08-04",
			today: time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC),
			want:  64,
		},
		{
			name:  "earlier month",
			dob:   "1961-08-04",
			today: time.Date(2025, 7, 10, 0, 0, 0, 0, time.UTC),
			want:  63,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			age, err := AgeOn(tt.dob, tt.today)
			require.NoError(t, err)
			assert.Equal(t, tt.want, age)
		})
	}

	t.Run("malformed date", func(t *testing.T) {
		_, err := AgeOn("not-a-date", time.Now())
		assert.Error(t, err)
	})
}

func TestWikidataClient_BirthDate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/w/api.php":
			require.Equal(t, "wbsearchentities", r.URL.Query().Get("action"))
			require.Equal(t, "Barack Obama", r.URL.Query().Get("search"))
			_, _ = w.Write([]byte(`{"search":[{"id":"Q76"}]}`))
		case "/wiki/Special:EntityData/Q76.json":
			_, _ = w.Write([]byte(`{"entities":{"Q76":{"claims":{"P569":[{"mainsnak":{"datavalue":{"value":{"time":"+1961-08-04T00:00:00Z"}}}}]}}}}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	client := NewWikidataClient(log.NewNop())
	client.baseURL = srv.URL

	dob, err := client.BirthDate(context.Background(), "Barack Obama")
	require.NoError(t, err)
	assert.Equal(t, "1961-08-04", dob)
}

func TestWikidataClient_BirthDate_Misses(t *testing.T) {
	t.Run("no search hits", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"search":[]}`))
		}))
		defer srv.Close()

		client := NewWikidataClient(log.NewNop())
		client.baseURL = srv.URL

		_, err := client.BirthDate(context.Background(), "nobody at all")
		assert.Error(t, err)
	})

	t.Run("entity without birth date claim", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/w/api.php" {
				_, _ = w.Write([]byte(`{"search":[{"id":"Q1"}]}`))
				return
			}
			_, _ = w.Write([]byte(`{"entities":{"Q1":{"claims":{}}}}`))
		}))
		defer srv.Close()

		client := NewWikidataClient(log.NewNop())
		client.baseURL = srv.URL

		_, err := client.BirthDate(context.Background(), "the universe")
		assert.Error(t, err)
	})
}
