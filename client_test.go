// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transact_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kesh-dev/transact"
	"github.com/kesh-dev/transact/message"
	"github.com/kesh-dev/transact/xerr"
)

func newTestEngine(t *testing.T) *transact.Engine {
	t.Helper()
	e := transact.NewEngine(transact.EngineConfig{})
	t.Cleanup(func() { e.Close() })
	return e
}

func TestClient_Do_HappyPath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/hello", r.URL.Path)
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, "world")
	}))
	defer srv.Close()

	c := transact.NewClient(newTestEngine(t))
	resp, err := c.Do(context.Background(), http.MethodGet, srv.URL+"/hello", nil, message.Body{}, transact.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 200, resp.Status)
	assert.Equal(t, "world", string(resp.Body.Bytes()))
}

func TestClient_Do_StatusExceptionRaised(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	opts := transact.DefaultOptions()
	opts.Retry = false

	c := transact.NewClient(newTestEngine(t))
	_, err := c.Do(context.Background(), http.MethodGet, srv.URL+"/missing", nil, message.Body{}, opts)
	require.Error(t, err)
	var statusErr *xerr.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, 404, statusErr.Status)
}

func TestClient_Do_StatusExceptionDisabled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	opts := transact.DefaultOptions()
	opts.Retry = false
	opts.StatusException = false

	c := transact.NewClient(newTestEngine(t))
	resp, err := c.Do(context.Background(), http.MethodGet, srv.URL+"/bang", nil, message.Body{}, opts)
	require.NoError(t, err)
	assert.Equal(t, 500, resp.Status)
}

func TestClient_Do_PostBufferedBody(t *testing.T) {
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		gotBody = b
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	resp, err := transact.Post(context.Background(), srv.URL+"/items", nil, message.BytesBody([]byte("payload")), transact.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 201, resp.Status)
	assert.Equal(t, "payload", string(gotBody))
}

func TestClient_Do_RedirectFollowed(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/start", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/end", http.StatusFound)
	})
	mux.HandleFunc("/end", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "done")
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	resp, err := transact.Get(context.Background(), srv.URL+"/start", nil, transact.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 200, resp.Status)
	assert.Equal(t, "done", string(resp.Body.Bytes()))
}

func TestClient_Do_NilHeaderWithBasicAuth(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	url := "http://user:pass@" + srv.Listener.Addr().String() + "/secret"
	opts := transact.DefaultOptions()
	opts.BasicAuthorization = true
	opts.Retry = false

	c := transact.NewClient(newTestEngine(t))
	resp, err := c.Do(context.Background(), http.MethodGet, url, nil, message.Body{}, opts)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.Status)
	assert.Equal(t, "Basic dXNlcjpwYXNz", gotAuth)
}

func TestClient_Do_InvalidURL(t *testing.T) {
	c := transact.NewClient(newTestEngine(t))
	_, err := c.Do(context.Background(), http.MethodGet, "http://%zz", nil, message.Body{}, transact.DefaultOptions())
	require.Error(t, err)
	var argErr *xerr.ArgumentError
	require.ErrorAs(t, err, &argErr)
}
