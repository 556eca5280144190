package bestdori

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetRetriesUntilSuccess(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"users": [], "points": [{"uid": 1, "value": 100}]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, 5, time.Millisecond)
	top, err := client.FetchEventTop(context.Background(), 0, 200)
	require.NoError(t, err)
	require.Len(t, top.Points, 1)
	assert.Equal(t, 3, attempts)
}

func TestGetExhaustsRetries(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, 3, time.Millisecond)
	_, err := client.FetchEventTop(context.Background(), 0, 200)
	require.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, 3, attempts)
}

func TestGetRetriesMalformedJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"users": [`))
	}))
	defer server.Close()

	client := NewClient(server.URL, 2, time.Millisecond)
	_, err := client.FetchEventTop(context.Background(), 0, 200)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestGetHonorsContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClient(server.URL, 5, time.Second)
	_, err := client.FetchEventTop(ctx, 0, 200)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFetchCatalog(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/events/all.5.json", r.URL.Path)
		w.Write([]byte(`{
			"205": {"eventName": ["First"], "startAt": [1000], "endAt": [2000]},
			"206": {"eventName": ["Second"], "startAt": [3000], "endAt": [4000]}
		}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, 1, time.Millisecond)
	catalog, err := client.FetchCatalog(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{205, 206}, catalog.IDs())
}
