// Copyright 2021 The httpq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transport

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gogama/httpq/request"
)

var (
	// ErrChallengeCancelled is the failure reported when a listener
	// cancels an authentication challenge.
	ErrChallengeCancelled = errors.New("httpq/transport: authentication challenge cancelled")

	// ErrTooManyRedirects is the failure reported when a redirect chain
	// exceeds the adapter's limit.
	ErrTooManyRedirects = errors.New("httpq/transport: too many redirects")
)

// An Adapter opens network connections for transport-ready requests.
//
// Start must return promptly and must not call the listener before it
// returns. Events for the returned connection are delivered to the
// listener one at a time, in order: OnChallenge any number of times,
// then either OnRedirect, or OnResponse followed by zero or more OnData
// and finally OnFinish. OnFail may replace any event and is always
// last. After a terminal event, or after Cancel, no further events are
// delivered for the connection.
type Adapter interface {
	Start(r *request.Request, l Listener) Conn
}

// A Conn is a handle to one in-flight connection.
type Conn interface {
	// Cancel aborts the connection. It is safe to call more than once
	// and after the connection has ended.
	Cancel()
}

// A Listener consumes connection events. The Conn argument identifies
// which connection produced the event.
type Listener interface {
	// OnResponse reports the response status line and headers.
	OnResponse(c Conn, h *Head)
	// OnData reports a chunk of the response body. The adapter may
	// reuse p after OnData returns.
	OnData(c Conn, p []byte)
	// OnRedirect offers a new request the server redirected to. The
	// adapter ends the connection after OnRedirect returns; following
	// the redirect is up to the listener.
	OnRedirect(c Conn, next *request.Request, h *Head)
	// OnChallenge asks the listener how to answer an authentication
	// challenge. The listener answers by calling UseCredential or
	// Cancel on ch before returning; if it does neither, the challenge
	// response is delivered as an ordinary response.
	OnChallenge(c Conn, ch *Challenge)
	// OnFinish reports the end of the response body.
	OnFinish(c Conn)
	// OnFail reports that the connection failed.
	OnFail(c Conn, err error)
}

// Head is a response status line and header.
type Head struct {
	StatusCode int
	Header     http.Header
	// ContentLength is the declared body length, or -1 if unknown.
	ContentLength int64
	// URL is the URL of the request the response answers.
	URL *url.URL
}
