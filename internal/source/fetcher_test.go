package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aurorahq/memberqa/internal/config"
)

func newTestFetcher(t *testing.T, handler http.HandlerFunc) *Fetcher {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewFetcher(config.SourceConfig{URL: srv.URL}, srv.Client())
}

// sourceItems renders n wire items with ids offset..offset+n-1.
func sourceItems(offset, n int) []map[string]any {
	items := make([]map[string]any, n)
	for i := 0; i < n; i++ {
		items[i] = map[string]any{
			"id":        fmt.Sprintf("m%d", offset+i),
			"user_id":   offset + i,
			"user_name": "Alice",
			"message":   "hello",
			"timestamp": "2024-03-15T19:00:00Z",
		}
	}
	return items
}

func writeItems(w http.ResponseWriter, items []map[string]any) {
	_ = json.NewEncoder(w).Encode(map[string]any{"items": items})
}

func TestFetch_PagesUntilLimit(t *testing.T) {
	f := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		skip, _ := strconv.Atoi(r.URL.Query().Get("skip"))
		assert.Equal(t, "100", r.URL.Query().Get("limit"))
		if skip >= 300 {
			writeItems(w, nil)
			return
		}
		writeItems(w, sourceItems(skip, 100))
	})

	msgs, err := f.Fetch(context.Background(), 200)
	require.NoError(t, err)
	assert.Len(t, msgs, 200)

	// Normalization renames source fields into the canonical shape.
	assert.Equal(t, "m0", msgs[0].ID)
	assert.Equal(t, "0", msgs[0].MemberID)
	assert.Equal(t, "Alice", msgs[0].MemberName)
	assert.Equal(t, "hello", msgs[0].Text)
}

func TestFetch_StopsOnEmptyPage(t *testing.T) {
	f := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		skip, _ := strconv.Atoi(r.URL.Query().Get("skip"))
		if skip >= 100 {
			writeItems(w, nil)
			return
		}
		writeItems(w, sourceItems(0, 30))
	})

	msgs, err := f.Fetch(context.Background(), 1000)
	require.NoError(t, err)
	assert.Len(t, msgs, 30)
}

func TestFetch_ForbiddenOnPageTwoReturnsPageOne(t *testing.T) {
	f := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		skip, _ := strconv.Atoi(r.URL.Query().Get("skip"))
		if skip > 0 {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		writeItems(w, sourceItems(0, 100))
	})

	msgs, err := f.Fetch(context.Background(), 500)
	require.NoError(t, err, "403 must degrade, not fail")
	assert.Len(t, msgs, 100, "exactly page one's items")
}

func TestFetch_UnauthorizedReturnsNothingQuietly(t *testing.T) {
	calls := 0
	f := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
	})

	msgs, err := f.Fetch(context.Background(), 500)
	require.NoError(t, err)
	assert.Empty(t, msgs)
	assert.Equal(t, 1, calls, "401 must not be retried")
}

func TestFetch_RetriesTransientErrors(t *testing.T) {
	calls := 0
	f := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		writeItems(w, nil)
	})

	msgs, err := f.Fetch(context.Background(), 100)
	require.NoError(t, err)
	assert.Empty(t, msgs)
	assert.Equal(t, 3, calls, "two failures then success")
}

func TestFetch_GivesUpAfterThreeAttempts(t *testing.T) {
	firstPageServed := false
	calls := 0
	f := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		skip, _ := strconv.Atoi(r.URL.Query().Get("skip"))
		if skip == 0 {
			firstPageServed = true
			writeItems(w, sourceItems(0, 100))
			return
		}
		calls++
		w.WriteHeader(http.StatusBadGateway)
	})

	msgs, err := f.Fetch(context.Background(), 500)
	require.NoError(t, err, "exhausted retries degrade to partial results")
	require.True(t, firstPageServed)
	assert.Len(t, msgs, 100)
	assert.Equal(t, 3, calls)
}

func TestFetch_MalformedBodyRetriedThenDegrades(t *testing.T) {
	f := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "{not json")
	})

	msgs, err := f.Fetch(context.Background(), 100)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestNormalize_MissingFieldsGetDefaults(t *testing.T) {
	m := normalize(item{ID: "x1"})
	assert.Equal(t, "x1", m.ID)
	assert.Equal(t, "", m.Text, "missing message body defaults to empty string")
	assert.Equal(t, "", m.MemberName)
	assert.Equal(t, "", m.Timestamp)
}

func TestFlexString_NumberAndString(t *testing.T) {
	var it item
	require.NoError(t, json.Unmarshal([]byte(`{"id": 7, "user_id": "u-9"}`), &it))
	assert.Equal(t, "7", string(it.ID))
	assert.Equal(t, "u-9", string(it.UserID))
}
