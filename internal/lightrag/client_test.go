// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package lightrag

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/talent-engine/internal/httputil"
	"github.com/pdiddy/talent-engine/pkg/types"
)

func init() {
	httputil.RetryBaseDelay = time.Millisecond
}

func TestRetrieve(t *testing.T) {
	var got queryRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/query", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("X-API-Key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"response": "  Lan knows golang.\n"}`))
	}))
	defer ts.Close()

	c := New(ts.URL+"/", "secret", time.Second, nil)
	out, err := c.Retrieve(context.Background(), "golang engineer", types.RetrieveOptions{TopK: 5})
	require.NoError(t, err)

	assert.Equal(t, "Lan knows golang.", out)
	assert.Equal(t, queryRequest{Query: "golang engineer", Mode: "mix", TopK: 5}, got)
}

func TestRetrieveServerError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("boom"))
	}))
	defer ts.Close()

	_, err := New(ts.URL, "", time.Second, nil).Retrieve(context.Background(), "q", types.RetrieveOptions{Mode: "local"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 500: boom")
}

func TestIndexRetriesBusyServer(t *testing.T) {
	var calls int32
	var got insertRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/documents/text", r.URL.Path)
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"status":"success"}`))
	}))
	defer ts.Close()

	err := New(ts.URL, "", time.Second, nil).Index(context.Background(), types.Document{
		ID: "aaaaaaaaaaaa", Kind: types.DocumentCandidate, CandidateID: "aaaaaaaaaaaa", Weight: 1, Text: "Candidate: Lan",
	})
	require.NoError(t, err)

	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	assert.Equal(t, "aaaaaaaaaaaa", got.FileSource)
	assert.Equal(t, "[candidate aaaaaaaaaaaa | weight 1.0]\nCandidate: Lan", got.Text)
}

func TestRemoveIsNoop(t *testing.T) {
	c := New("", "", 0, nil)
	assert.Equal(t, DefaultURL, c.BaseURL)
	assert.NoError(t, c.Remove(context.Background(), "aaaaaaaaaaaa"))
}

func TestHealth(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(`{"status":"healthy"}`))
	}))
	defer ts.Close()

	require.NoError(t, New(ts.URL, "", time.Second, nil).Health(context.Background()))
	require.Error(t, New(ts.URL+"/missing", "", time.Second, nil).Health(context.Background()))
}
