// Copyright 2021 The httpq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/gogama/httpq/request"
)

const (
	// DefaultMaxRedirects is the redirect limit used when
	// HTTP.MaxRedirects is zero.
	DefaultMaxRedirects = 10

	// DefaultChunkSize is the read size used when HTTP.ChunkSize is
	// zero.
	DefaultChunkSize = 32 << 10
)

// ErrThrottled is the failure reported when the context ends while
// waiting on HTTP.Limiter.
var ErrThrottled = errors.New("httpq/transport: throttle wait failed")

// HTTP is an Adapter built on net/http. Its zero value is ready to use.
//
// Each connection runs on its own goroutine. The underlying http.Client
// never follows redirects itself: every 3xx response with a Location
// is offered to the listener instead. Basic authentication challenges
// are offered to the listener and answered in place.
//
// An HTTP must not be copied after first use.
type HTTP struct {
	// Client sends the requests. If nil, a client over
	// cleanhttp.DefaultTransport is used, which does not keep idle
	// connections. A non-nil Client is copied on first use and its
	// CheckRedirect replaced.
	Client *http.Client

	// Limiter, if non-nil, throttles every round trip, including those
	// that answer challenges.
	Limiter *rate.Limiter

	// Logger receives debug records about throttling, redirects and
	// challenges. If nil, nothing is logged.
	Logger *zap.Logger

	// MaxRedirects limits the length of a redirect chain. Zero means
	// DefaultMaxRedirects.
	MaxRedirects int

	// ChunkSize is the size of the body reads delivered to OnData.
	// Zero means DefaultChunkSize.
	ChunkSize int

	once   sync.Once
	client *http.Client
	creds  credentialStore
	hops   sync.Map // *request.Request -> int
}

// Start implements Adapter.
func (t *HTTP) Start(r *request.Request, l Listener) Conn {
	var c conn
	if r.Timeout > 0 {
		c.ctx, c.cancel = context.WithTimeout(context.Background(), r.Timeout)
	} else {
		c.ctx, c.cancel = context.WithCancel(context.Background())
	}
	hops := 0
	if v, ok := t.hops.LoadAndDelete(r); ok {
		hops = v.(int)
	}
	go t.run(&c, r, hops, l)
	return &c
}

type conn struct {
	ctx       context.Context
	cancel    context.CancelFunc
	cancelled atomic.Bool
}

func (c *conn) Cancel() {
	c.cancelled.Store(true)
	c.cancel()
}

func (c *conn) live() bool {
	return !c.cancelled.Load()
}

func (c *conn) fail(l Listener, err error) {
	if c.live() {
		l.OnFail(c, err)
	}
}

func (t *HTTP) run(c *conn, r *request.Request, hops int, l Listener) {
	defer c.cancel()
	log := t.logger().With(zap.String("method", r.Method.String()), zap.Stringer("url", r.URL))
	var (
		cred     *Credential
		space    Space
		failures int
	)
	for {
		resp, err := t.roundTrip(c.ctx, r, cred, log)
		if err != nil {
			c.fail(l, err)
			return
		}
		head := &Head{
			StatusCode:    resp.StatusCode,
			Header:        resp.Header,
			ContentLength: resp.ContentLength,
			URL:           r.URL,
		}
		if cred != nil && resp.StatusCode != http.StatusUnauthorized {
			t.creds.put(space, *cred)
		}
		if isRedirect(resp.StatusCode) && resp.Header.Get("Location") != "" {
			discard(resp)
			t.redirect(c, r, resp, head, hops, l, log)
			return
		}
		if resp.StatusCode == http.StatusUnauthorized {
			if sp, ok := parseChallenge(r.URL, resp.Header); ok {
				if !c.live() {
					discard(resp)
					return
				}
				ch := &Challenge{
					Space:        sp,
					FailureCount: failures,
					Proposed:     t.creds.get(sp),
					Head:         head,
				}
				l.OnChallenge(c, ch)
				switch d, answer := ch.Disposition(); d {
				case UseCredential:
					discard(resp)
					log.Debug("answering authentication challenge",
						zap.String("realm", sp.Realm), zap.Int("failures", failures))
					cred, space = &answer, sp
					failures++
					continue
				case CancelChallenge:
					discard(resp)
					log.Debug("authentication challenge cancelled",
						zap.String("realm", sp.Realm), zap.Int("failures", failures))
					c.fail(l, ErrChallengeCancelled)
					return
				}
			}
		}
		t.stream(c, resp, head, l)
		return
	}
}

func (t *HTTP) roundTrip(ctx context.Context, r *request.Request, cred *Credential, log *zap.Logger) (*http.Response, error) {
	if t.Limiter != nil {
		start := time.Now()
		if err := t.Limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrThrottled, err)
		}
		if waited := time.Since(start); waited >= time.Millisecond {
			log.Debug("throttle wait complete", zap.Duration("waited", waited))
		}
	}
	hr := r.ToHTTP(ctx)
	if d := r.CachePolicy.Directive(); d != "" && hr.Header.Get("Cache-Control") == "" {
		hr.Header.Set("Cache-Control", d)
	}
	if cred != nil {
		hr.SetBasicAuth(cred.Username, cred.Password)
	}
	return t.httpClient().Do(hr)
}

func (t *HTTP) redirect(c *conn, r *request.Request, resp *http.Response, head *Head, hops int, l Listener, log *zap.Logger) {
	if hops >= t.maxRedirects() {
		c.fail(l, ErrTooManyRedirects)
		return
	}
	loc, err := resp.Location()
	if err != nil {
		c.fail(l, err)
		return
	}
	next := redirectRequest(r, resp.StatusCode, loc)
	log.Debug("offering redirect", zap.Int("status", resp.StatusCode),
		zap.Stringer("location", loc), zap.Int("hops", hops+1))
	if !c.live() {
		return
	}
	t.hops.Store(next, hops+1)
	l.OnRedirect(c, next, head)
}

func (t *HTTP) stream(c *conn, resp *http.Response, head *Head, l Listener) {
	defer func() {
		_ = resp.Body.Close()
	}()
	if !c.live() {
		return
	}
	l.OnResponse(c, head)
	buf := make([]byte, t.chunkSize())
	for {
		n, err := resp.Body.Read(buf)
		if n > 0 {
			if !c.live() {
				return
			}
			l.OnData(c, buf[:n])
		}
		if err == io.EOF {
			if c.live() {
				l.OnFinish(c)
			}
			return
		} else if err != nil {
			c.fail(l, err)
			return
		}
	}
}

// redirectRequest builds the request a redirect points at. The method
// and body rules follow net/http: 301, 302 and 303 drop the body and
// turn anything but GET and HEAD into GET, 307 and 308 preserve both.
// Custom headers are not carried over; that is the listener's decision.
func redirectRequest(r *request.Request, status int, loc *url.URL) *request.Request {
	next := &request.Request{
		Method:      r.Method,
		URL:         loc,
		Header:      make(http.Header),
		Body:        r.Body,
		Timeout:     r.Timeout,
		CachePolicy: r.CachePolicy,
	}
	switch status {
	case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther:
		next.Body = nil
		if r.Method != request.GET && r.Method != request.HEAD {
			next.Method = request.GET
		}
	}
	return next
}

func isRedirect(status int) bool {
	switch status {
	case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther,
		http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
		return true
	default:
		return false
	}
}

func discard(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
	_ = resp.Body.Close()
}

func (t *HTTP) httpClient() *http.Client {
	t.once.Do(func() {
		var c http.Client
		if t.Client != nil {
			c = *t.Client
		} else {
			c.Transport = cleanhttp.DefaultTransport()
		}
		c.CheckRedirect = func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}
		t.client = &c
	})
	return t.client
}

func (t *HTTP) logger() *zap.Logger {
	if t.Logger == nil {
		return zap.NewNop()
	}
	return t.Logger
}

func (t *HTTP) maxRedirects() int {
	if t.MaxRedirects <= 0 {
		return DefaultMaxRedirects
	}
	return t.MaxRedirects
}

func (t *HTTP) chunkSize() int {
	if t.ChunkSize <= 0 {
		return DefaultChunkSize
	}
	return t.ChunkSize
}
