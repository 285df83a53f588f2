// Copyright 2021 The httpq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package httpq

import (
	"context"
	"fmt"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/gogama/httpq/failure"
	"github.com/gogama/httpq/request"
	"github.com/gogama/httpq/transport"
)

func TestClient(t *testing.T) {
	for _, server := range servers {
		server := server
		t.Run(serverName(server), func(t *testing.T) {
			t.Run("get with query payload", func(t *testing.T) { testClientGetQuery(t, server) })
			t.Run("post form", func(t *testing.T) { testClientPostForm(t, server) })
			t.Run("chunks", func(t *testing.T) { testClientChunks(t, server) })
			t.Run("non-2xx", func(t *testing.T) { testClientNon2xx(t, server) })
			t.Run("redirect", func(t *testing.T) { testClientRedirect(t, server) })
			t.Run("challenge", func(t *testing.T) { testClientChallenge(t, server) })
			t.Run("timeout", func(t *testing.T) { testClientTimeout(t, server) })
			t.Run("delegate", func(t *testing.T) { testClientDelegate(t, server) })
		})
	}
	t.Run("zero value", testClientZeroValue)
	t.Run("connection refused", testClientConnRefused)
	t.Run("debug", testClientDebug)
	t.Run("trace", testClientTrace)
}

func newServerClient(server *httptest.Server) *Client {
	return &Client{
		Transport: &transport.HTTP{Client: server.Client()},
	}
}

func wait(t *testing.T, q *Query) *Response {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	resp, err := q.Wait(ctx)
	require.NoError(t, err)
	require.NotNil(t, resp)
	return resp
}

func testClientGetQuery(t *testing.T, server *httptest.Server) {
	cl := newServerClient(server)
	opts := &Options{Options: request.Options{
		Payload: request.Values{{Key: "a", Value: 1}, {Key: "b", Value: request.Values{{Key: "c", Value: 2}}}},
		Header:  map[string]string{"X-Custom": "line1\nline2"},
	}}
	q, err := cl.Get(server.URL+"/echo?z=0", opts)
	require.NoError(t, err)

	resp := wait(t, q)
	assert.True(t, resp.OK())
	assert.Equal(t, "GET z=0&a=1&b[c]=2 ", string(resp.Body))
	assert.Equal(t, `line1\nline2`, resp.Header.Get("X-Custom"))
	assert.Equal(t, Finalized, q.State())
}

func testClientPostForm(t *testing.T, server *httptest.Server) {
	cl := newServerClient(server)
	opts := &Options{Options: request.Options{
		Payload: map[string]interface{}{"b": map[string]interface{}{"c": 2}, "a": 1},
	}}
	q, err := cl.Post(server.URL+"/echo", opts)
	require.NoError(t, err)

	resp := wait(t, q)
	assert.Equal(t, "POST  a=1&b[c]=2", string(resp.Body))
	assert.Equal(t, "application/x-www-form-urlencoded", resp.Header.Get("X-Content-Type"))
}

func testClientChunks(t *testing.T, server *httptest.Server) {
	cl := newServerClient(server)
	var chunks int
	cl.Handlers = &HandlerGroup{}
	cl.Handlers.PushBack(AfterData, HandlerFunc(func(Event, *Query) { chunks++ }))
	q, err := cl.Get(server.URL+"/chunks?n=5", nil)
	require.NoError(t, err)

	resp := wait(t, q)
	assert.Equal(t, "chunk0;chunk1;chunk2;chunk3;chunk4;", string(resp.Body))
	assert.GreaterOrEqual(t, chunks, 1)
	assert.Equal(t, int64(-1), resp.ContentLength)
}

func testClientNon2xx(t *testing.T, server *httptest.Server) {
	cl := newServerClient(server)
	q, err := cl.Get(server.URL+"/status?code=404", nil)
	require.NoError(t, err)

	resp := wait(t, q)
	assert.NoError(t, resp.Err)
	assert.Equal(t, 404, resp.StatusCode)
	assert.False(t, resp.OK())
	assert.Equal(t, "Not Found", string(resp.Body))
}

func testClientRedirect(t *testing.T, server *httptest.Server) {
	testCases := []struct {
		code        int
		method      request.Method
		expected    string
		contentType string
	}{
		{302, request.GET, "GET  ", ""},
		{303, request.POST, "GET  ", ""},
		{307, request.POST, "POST  a=1", "application/x-www-form-urlencoded"},
		{308, request.PUT, "PUT  a=1", "application/x-www-form-urlencoded"},
	}
	for _, testCase := range testCases {
		t.Run(fmt.Sprintf("%d %s", testCase.code, testCase.method), func(t *testing.T) {
			cl := newServerClient(server)
			opts := &Options{Options: request.Options{
				Header: map[string]string{"X-Custom": "kept"},
			}}
			if testCase.method != request.GET {
				opts.Payload = request.Values{{Key: "a", Value: 1}}
			}
			q, err := cl.Request(testCase.method, fmt.Sprintf("%s/redirect?code=%d&to=/echo", server.URL, testCase.code), opts)
			require.NoError(t, err)

			resp := wait(t, q)
			assert.Equal(t, testCase.expected, string(resp.Body))
			assert.Equal(t, "kept", resp.Header.Get("X-Custom"))
			assert.Equal(t, testCase.contentType, resp.Header.Get("X-Content-Type"))
			assert.Equal(t, server.URL+"/echo", resp.URL)
			assert.Equal(t, 1, q.Redirects())
		})
	}
}

func testClientChallenge(t *testing.T, server *httptest.Server) {
	t.Run("accepted", func(t *testing.T) {
		cl := newServerClient(server)
		opts := &Options{Options: request.Options{
			Credentials: request.Credentials{Username: "alice", Password: "secret"},
		}}
		q, err := cl.Get(server.URL+"/auth", opts)
		require.NoError(t, err)

		resp := wait(t, q)
		assert.True(t, resp.OK())
		assert.Equal(t, "welcome alice", string(resp.Body))
		assert.Equal(t, 1, q.Challenges())
	})
	t.Run("after redirect", func(t *testing.T) {
		cl := newServerClient(server)
		opts := &Options{Options: request.Options{
			Credentials: request.Credentials{Username: "alice", Password: "secret"},
		}}
		q, err := cl.Get(server.URL+"/redirect?code=302&to=/auth", opts)
		require.NoError(t, err)

		resp := wait(t, q)
		assert.Equal(t, "welcome alice", string(resp.Body))
		assert.Equal(t, 1, q.Redirects())
		assert.Equal(t, 1, q.Challenges())
	})
	t.Run("rejected", func(t *testing.T) {
		cl := newServerClient(server)
		opts := &Options{Options: request.Options{
			Credentials: request.Credentials{Username: "mallory", Password: "guess"},
		}}
		q, err := cl.Get(server.URL+"/auth", opts)
		require.NoError(t, err)

		resp := wait(t, q)
		assert.Equal(t, failure.ChallengeCancelled, resp.Failure())
		assert.Equal(t, 0, resp.StatusCode)
		assert.Nil(t, resp.Body)
		assert.Equal(t, 2, q.Challenges())
		assert.Equal(t, Failed, q.State())
	})
}

func testClientTimeout(t *testing.T, server *httptest.Server) {
	cl := newServerClient(server)
	opts := &Options{Options: request.Options{Timeout: 50 * time.Millisecond}}
	q, err := cl.Get(server.URL+"/slow", opts)
	require.NoError(t, err)

	resp := wait(t, q)
	assert.True(t, resp.Timeout())
	assert.Equal(t, failure.Timeout, resp.Failure())
	assert.Equal(t, Failed, q.State())
}

func testClientDelegate(t *testing.T, server *httptest.Server) {
	cl := newServerClient(server)
	var (
		mu        sync.Mutex
		delivered []*Response
	)
	opts := &Options{Delegate: DelegateFunc(func(resp *Response, q *Query) {
		mu.Lock()
		defer mu.Unlock()
		delivered = append(delivered, resp)
	})}
	q, err := cl.Delete(server.URL+"/echo", opts)
	require.NoError(t, err)

	resp := wait(t, q)
	mu.Lock()
	defer mu.Unlock()
	require.Len(t, delivered, 1)
	assert.Same(t, resp, delivered[0])
	assert.Equal(t, "DELETE  ", string(resp.Body))
}

func testClientZeroValue(t *testing.T) {
	cl := &Client{}
	assert.Same(t, defaultTransport, cl.transport())
	assert.Same(t, &zeroSettings, cl.settings())
	assert.Same(t, &emptyHandlers, cl.chain(cl.settings()))

	q, err := cl.Get(httpServer.URL+"/echo", nil)
	require.NoError(t, err)
	resp := wait(t, q)
	assert.Equal(t, "GET  ", string(resp.Body))
}

func testClientConnRefused(t *testing.T) {
	server := httptest.NewServer(serverMux())
	u := server.URL
	server.Close()

	cl := &Client{}
	q, err := cl.Get(u+"/echo", nil)
	require.NoError(t, err)

	resp := wait(t, q)
	assert.Equal(t, failure.ConnRefused, resp.Failure())
	assert.True(t, strings.HasPrefix(resp.ErrorMessage(), "Get "), resp.ErrorMessage())
}

func testClientDebug(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	cl := &Client{
		Settings: &Settings{Debug: true, Logger: zap.New(core)},
		Handlers: &HandlerGroup{},
	}
	var seen []string
	cl.Handlers.PushBackAll(HandlerFunc(func(evt Event, _ *Query) { seen = append(seen, evt.Name()) }))
	q, err := cl.Get(httpServer.URL+"/echo", nil)
	require.NoError(t, err)
	wait(t, q)

	assert.Equal(t, 1, logs.FilterMessage("query BeforeStart").Len())
	assert.Equal(t, 1, logs.FilterMessage("query AfterHeaders").Len())
	finish := logs.FilterMessage("query AfterFinish").All()
	require.Len(t, finish, 1)
	fields := finish[0].ContextMap()
	assert.Equal(t, q.ID().String(), fields["query_id"])
	assert.Equal(t, int64(200), fields["status"])
	assert.Equal(t, "GET", fields["method"])
	assert.Contains(t, seen, "AfterFinish", "user handlers must still run")
}

func testClientTrace(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	cl := &Client{Settings: &Settings{TracerProvider: tp}}

	t.Run("finish", func(t *testing.T) {
		q, err := cl.Get(httpServer.URL+"/redirect?code=302&to=/echo", nil)
		require.NoError(t, err)
		wait(t, q)

		assert.True(t, SpanFromQuery(q).SpanContext().IsValid())
		span := findSpan(t, sr, q)
		assert.Equal(t, "httpq GET", span.Name())
		var names []string
		for _, e := range span.Events() {
			names = append(names, e.Name)
		}
		assert.Equal(t, []string{"AfterRedirect", "AfterHeaders"}, names)
		assert.Contains(t, span.Attributes(), attribute.Int("http.response.status_code", 200))
		assert.Contains(t, span.Attributes(), attribute.Int("httpq.redirects", 1))
		assert.Equal(t, codes.Unset, span.Status().Code)
	})
	t.Run("fail", func(t *testing.T) {
		opts := &Options{Options: request.Options{Timeout: 50 * time.Millisecond}}
		q, err := cl.Get(httpServer.URL+"/slow", opts)
		require.NoError(t, err)
		wait(t, q)

		span := findSpan(t, sr, q)
		assert.Equal(t, codes.Error, span.Status().Code)
		assert.Equal(t, "Timeout", span.Status().Description)
	})
	t.Run("tracing off", func(t *testing.T) {
		q := &Query{}
		assert.False(t, SpanFromQuery(q).SpanContext().IsValid())
	})
}

func findSpan(t *testing.T, sr *tracetest.SpanRecorder, q *Query) sdktrace.ReadOnlySpan {
	id := attribute.String("query.id", q.ID().String())
	for _, span := range sr.Ended() {
		for _, kv := range span.Attributes() {
			if kv == id {
				return span
			}
		}
	}
	require.Fail(t, "no span recorded for query", q.ID().String())
	return nil
}
