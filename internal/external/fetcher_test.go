package external

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetch_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":1,"title":"hello"}`))
	}))
	defer srv.Close()

	f := NewFetcher(srv.Client(), srv.URL, time.Second)
	body, err := f.Fetch(context.Background())
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":1,"title":"hello"}`, string(body))
}

func TestFetch_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := NewFetcher(srv.Client(), srv.URL+"/invalid-endpoint/999", time.Second).Fetch(context.Background())
	require.ErrorIs(t, err, ErrBadStatus)
	assert.Contains(t, err.Error(), "404")
}

func TestFetch_InvalidJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>`))
	}))
	defer srv.Close()

	_, err := NewFetcher(srv.Client(), srv.URL, time.Second).Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not valid json")
}

func TestFetch_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer srv.Close()

	_, err := NewFetcher(srv.Client(), srv.URL, 20*time.Millisecond).Fetch(context.Background())
	require.Error(t, err)
}

func TestNewFetcher_Defaults(t *testing.T) {
	f := NewFetcher(nil, "", 0)
	assert.Equal(t, DefaultURL, f.URL())
}
