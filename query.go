// Copyright 2021 The httpq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package httpq

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gogama/httpq/request"
	"github.com/gogama/httpq/transport"
)

// A State is a stage in the lifecycle of a query.
type State int

const (
	// Unstarted is the state of a query before its first connection
	// is started.
	Unstarted State = iota
	// Connecting is the state of a query while its connection is being
	// established and the request sent.
	Connecting
	// Redirecting is the state of a query that followed a redirect and
	// is waiting on the new connection.
	Redirecting
	// Authenticating is the state of a query that answered an
	// authentication challenge and is waiting on the outcome.
	Authenticating
	// HeadersReceived is the state of a query that received the
	// response status line and headers.
	HeadersReceived
	// Streaming is the state of a query that is receiving the response
	// body.
	Streaming
	// Finalized is the terminal state of a query whose response was
	// received in full.
	Finalized
	// Failed is the terminal state of a query whose connection failed.
	Failed
)

var stateNames = []string{
	"Unstarted",
	"Connecting",
	"Redirecting",
	"Authenticating",
	"HeadersReceived",
	"Streaming",
	"Finalized",
	"Failed",
}

// String returns the name of the state.
func (s State) String() string {
	return stateNames[int(s)]
}

// Terminal reports whether s is Finalized or Failed.
func (s State) Terminal() bool {
	return s == Finalized || s == Failed
}

// A Query is one HTTP request in flight, together with everything
// observed about it so far. Queries are created by Client.
//
// A Query implements transport.Listener: the transport adapter reports
// connection events to it and the Query moves through its states,
// follows redirects, answers authentication challenges and accumulates
// the response body. When the connection finishes or fails, the Query
// builds exactly one Response and hands it to its Delegate.
//
// All methods are safe for concurrent use. Event handlers may call any
// method except Wait.
type Query struct {
	id       uuid.UUID
	orig     *request.Request
	creds    request.Credentials
	extra    map[string]interface{}
	delegate Delegate
	adapter  transport.Adapter
	handlers *HandlerGroup
	logger   *zap.Logger
	done     chan struct{}

	// emu serializes event processing. When both are needed, emu is
	// locked before mu.
	emu sync.Mutex

	mu            sync.Mutex
	req           *request.Request
	state         State
	conn          transport.Conn
	status        int
	header        http.Header
	contentLength int64
	buf           []byte
	redirects     int
	challenges    int
	started       time.Time
	ended         time.Time
	resp          *Response
	finished      bool
	data          context.Context
}

func newQuery(r *request.Request, opts *Options, adapter transport.Adapter, handlers *HandlerGroup, logger *zap.Logger) *Query {
	q := &Query{
		id:       uuid.New(),
		orig:     r.Clone(),
		creds:    opts.Credentials,
		extra:    opts.Extra,
		delegate: opts.Delegate,
		adapter:  adapter,
		handlers: handlers,
		done:     make(chan struct{}),
		req:      r,
	}
	if q.delegate == nil {
		q.delegate = q
	}
	q.logger = logger.With(zap.Stringer("query_id", q.id))
	return q
}

// start fires BeforeStart and opens the first connection. Events from
// the connection are held back on emu until the Conn handle is stored.
func (q *Query) start() {
	q.emu.Lock()
	defer q.emu.Unlock()

	q.handlers.run(BeforeStart, q)

	q.mu.Lock()
	defer q.mu.Unlock()
	q.started = time.Now()
	q.state = Connecting
	q.conn = q.adapter.Start(q.req, q)
}

// OnResponse implements transport.Listener.
func (q *Query) OnResponse(c transport.Conn, h *transport.Head) {
	q.handle(c, "OnResponse", func() Event {
		q.state = HeadersReceived
		q.status = h.StatusCode
		q.header = h.Header
		q.contentLength = h.ContentLength
		q.buf = nil
		return AfterHeaders
	})
}

// OnData implements transport.Listener.
func (q *Query) OnData(c transport.Conn, p []byte) {
	q.handle(c, "OnData", func() Event {
		q.state = Streaming
		q.buf = append(q.buf, p...)
		return AfterData
	})
}

// OnRedirect implements transport.Listener. The custom headers of the
// original request are applied to next, replacing any value next
// already carries for the same field, except for the body headers when
// next has no body. The current connection is cancelled before the
// connection for next is started.
func (q *Query) OnRedirect(c transport.Conn, next *request.Request, _ *transport.Head) {
	q.handle(c, "OnRedirect", func() Event {
		if next.Header == nil {
			next.Header = make(http.Header, len(q.orig.Header))
		}
		for k, vs := range q.orig.Header {
			if next.Body == nil && isBodyHeader(k) {
				continue
			}
			next.Header[k] = append([]string(nil), vs...)
		}
		q.logger.Debug("following redirect",
			zap.Stringer("from", q.req.URL), zap.Stringer("to", next.URL))
		q.conn.Cancel()
		q.req = next
		q.redirects++
		q.state = Redirecting
		q.status, q.header, q.contentLength, q.buf = 0, nil, 0, nil
		q.conn = q.adapter.Start(next, q)
		return AfterRedirect
	})
}

// OnChallenge implements transport.Listener. The query's credentials
// are offered once; if the server rejects them the challenge is
// cancelled.
func (q *Query) OnChallenge(c transport.Conn, ch *transport.Challenge) {
	q.handle(c, "OnChallenge", func() Event {
		q.state = Authenticating
		q.challenges++
		if ch.FailureCount == 0 {
			ch.UseCredential(transport.Credential{
				Username:    q.creds.Username,
				Password:    q.creds.Password,
				Persistence: transport.PersistForSession,
			})
		} else {
			ch.Cancel()
		}
		return AfterChallenge
	})
}

// OnFinish implements transport.Listener.
func (q *Query) OnFinish(c transport.Conn) {
	q.handle(c, "OnFinish", func() Event {
		q.state = Finalized
		q.finished = true
		q.ended = time.Now()
		q.resp = finalize(q.status, q.header, q.contentLength, q.buf, q.req.URL, nil)
		return AfterFinish
	})
}

// OnFail implements transport.Listener.
func (q *Query) OnFail(c transport.Conn, err error) {
	q.handle(c, "OnFail", func() Event {
		q.state = Failed
		q.finished = true
		q.ended = time.Now()
		q.resp = finalize(0, nil, 0, nil, q.req.URL, urlErrorWrap(q.req, err))
		return AfterFail
	})
}

// handle runs one transport event. The transition f runs with mu held;
// the handlers for the event it returns, and the delegate after a
// terminal event, run with mu released.
func (q *Query) handle(c transport.Conn, callback string, f func() Event) {
	q.emu.Lock()
	defer q.emu.Unlock()

	q.mu.Lock()
	if q.finished || c != q.conn {
		finished := q.finished
		q.mu.Unlock()
		q.logger.Debug("ignoring transport event",
			zap.String("callback", callback), zap.Bool("finished", finished))
		return
	}
	evt := f()
	q.mu.Unlock()

	q.handlers.run(evt, q)
	if evt.Terminal() {
		q.dispatch()
	}
}

// dispatch hands the response to the delegate. It is reached once per
// query because only one terminal transition can pass handle.
func (q *Query) dispatch() {
	defer close(q.done)
	q.delegate.Deliver(q.resp, q)
}

// Deliver implements Delegate and does nothing. A query is its own
// delegate when no other is given; its response is then obtained from
// Response, Done or Wait.
func (q *Query) Deliver(*Response, *Query) {}

// ID returns the unique identifier of the query.
func (q *Query) ID() uuid.UUID {
	return q.id
}

// Request returns the request the query is currently working on. After
// a redirect this is the redirect request. Event handlers may make
// reasonable changes to it during BeforeStart, such as adding a signing
// header, but should otherwise treat it as read-only.
func (q *Query) Request() *request.Request {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.req
}

// Option returns the caller option stored under key in Options.Extra,
// or nil if there is none.
func (q *Query) Option(key string) interface{} {
	return q.extra[key]
}

// Options returns a copy of the caller options in Options.Extra.
func (q *Query) Options() map[string]interface{} {
	m := make(map[string]interface{}, len(q.extra))
	for k, v := range q.extra {
		m[k] = v
	}
	return m
}

// State returns the current lifecycle state.
func (q *Query) State() State {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.state
}

// Redirects returns the number of redirects followed so far.
func (q *Query) Redirects() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.redirects
}

// Challenges returns the number of authentication challenges answered
// so far.
func (q *Query) Challenges() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.challenges
}

// StatusCode returns the status of the response currently being
// received, or zero if no response head has arrived since the query
// started or last redirected.
func (q *Query) StatusCode() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.status
}

// Header returns the header of the response currently being received.
// It must not be modified.
func (q *Query) Header() http.Header {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.header
}

// BytesReceived returns the number of body bytes accumulated so far.
func (q *Query) BytesReceived() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.buf)
}

// Response returns the final response, or nil while the query is in
// flight.
func (q *Query) Response() *Response {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.resp
}

// Done returns a channel that is closed once the delegate has been
// called.
func (q *Query) Done() <-chan struct{} {
	return q.done
}

// Wait blocks until the delegate has been called, then returns the
// final response. If ctx ends first, Wait returns ctx.Err(); the query
// itself is not affected.
func (q *Query) Wait(ctx context.Context) (*Response, error) {
	select {
	case <-q.done:
		return q.Response(), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Started indicates whether the first connection has been started.
func (q *Query) Started() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return !q.started.IsZero()
}

// Ended indicates whether the query reached a terminal state.
func (q *Query) Ended() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return !q.ended.IsZero()
}

// Duration returns the time elapsed since the query started, frozen at
// the end time once the query has ended. It is zero before the start.
func (q *Query) Duration() time.Duration {
	q.mu.Lock()
	defer q.mu.Unlock()
	switch {
	case q.started.IsZero():
		return 0
	case q.ended.IsZero():
		return time.Since(q.started)
	default:
		return q.ended.Sub(q.started)
	}
}

// SetValue allows event handlers to store arbitrary data on the query.
//
// The key must follow the same rules as the key parameter in
// context.WithValue: it may not be nil, it must be comparable, and it
// should be of an unexported type to avoid collisions between
// handlers.
func (q *Query) SetValue(key, value interface{}) {
	q.mu.Lock()
	defer q.mu.Unlock()
	ctx := q.data
	if ctx == nil {
		ctx = context.Background()
	}

	q.data = context.WithValue(ctx, key, value)
}

// Value returns the data value associated with this query for key, or
// nil if there is no value associated with key.
func (q *Query) Value(key interface{}) interface{} {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.data == nil {
		return nil
	}

	return q.data.Value(key)
}

func isBodyHeader(k string) bool {
	return k == "Content-Type" || k == "Content-Length"
}
