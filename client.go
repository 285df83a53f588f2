// Copyright 2021 The httpq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package httpq

import (
	"github.com/gogama/httpq/request"
	"github.com/gogama/httpq/transport"
)

var defaultTransport = &transport.HTTP{}

// Options holds the caller-supplied parameters of one query. The zero
// value is valid: no payload, no custom headers, empty credentials, the
// default timeout and cache policy, and the query itself as delegate.
type Options struct {
	request.Options

	// Delegate receives the final Response. If nil, the query is its own
	// delegate and the response is obtained from Query.Wait or
	// Query.Response.
	Delegate Delegate
}

// A Client starts asynchronous HTTP queries. Its zero value is a valid
// configuration.
//
// The zero value client uses a shared transport.HTTP as its Transport,
// zero Settings (no diagnostic logging, no tracing), and an empty
// handler group.
//
// Client is safe for concurrent use by multiple goroutines provided its
// fields are not modified while it is in use.
//
// Each call to Request builds a request, starts a Query for it and
// returns without waiting for the network. From then on the Query is
// driven by events from the transport: it follows redirects, answers
// authentication challenges with the caller's credentials, accumulates
// the response body and finally hands exactly one Response to its
// Delegate. Handlers installed in the client observe every step.
type Client struct {
	// Transport opens connections for the client's queries.
	//
	// If Transport is nil, a shared transport.HTTP is used.
	Transport transport.Adapter
	// Settings holds diagnostic and tracing configuration.
	//
	// If Settings is nil, the zero Settings are used.
	Settings *Settings
	// Handlers allows custom handler chains to be invoked when
	// designated events occur during the lifecycle of a query.
	//
	// If Handlers is nil, no custom handlers will be run.
	Handlers *HandlerGroup
}

// Request builds a request from method, url and opts and starts a query
// for it. It returns as soon as the first connection has been handed to
// the transport.
//
// A non-nil error means the input was rejected by request.Build; no
// query was started and no delegate will be called. Otherwise the
// returned Query will call its delegate exactly once.
func (c *Client) Request(method request.Method, url string, opts *Options) (*Query, error) {
	if opts == nil {
		opts = &Options{}
	}
	r, err := request.Build(method, url, &opts.Options)
	if err != nil {
		return nil, err
	}

	settings := c.settings()
	q := newQuery(r, opts, c.transport(), c.chain(settings), settings.logger())
	q.start()
	return q, nil
}

// Get starts a GET query. The payload in opts, if any, is encoded into
// the URL query string.
func (c *Client) Get(url string, opts *Options) (*Query, error) {
	return Get(c, url, opts)
}

// Head starts a HEAD query.
func (c *Client) Head(url string, opts *Options) (*Query, error) {
	return Head(c, url, opts)
}

// Post starts a POST query.
func (c *Client) Post(url string, opts *Options) (*Query, error) {
	return Post(c, url, opts)
}

// Put starts a PUT query.
func (c *Client) Put(url string, opts *Options) (*Query, error) {
	return Put(c, url, opts)
}

// Patch starts a PATCH query.
func (c *Client) Patch(url string, opts *Options) (*Query, error) {
	return Patch(c, url, opts)
}

// Delete starts a DELETE query.
func (c *Client) Delete(url string, opts *Options) (*Query, error) {
	return Delete(c, url, opts)
}

func (c *Client) transport() transport.Adapter {
	if c.Transport == nil {
		return defaultTransport
	}
	return c.Transport
}

func (c *Client) settings() *Settings {
	if c.Settings == nil {
		return &zeroSettings
	}
	return c.Settings
}

// chain assembles the handlers of one query: tracing first, so user
// handlers run inside the span, then debug logging, then the client's
// own handlers.
func (c *Client) chain(s *Settings) *HandlerGroup {
	if s.TracerProvider == nil && !s.Debug {
		if c.Handlers == nil {
			return &emptyHandlers
		}
		return c.Handlers
	}

	g := &HandlerGroup{}
	if s.TracerProvider != nil {
		g.PushBackAll(newTraceHandler(s.TracerProvider))
	}
	if s.Debug {
		g.PushBackAll(&debugHandler{logger: s.logger()})
	}
	if c.Handlers != nil {
		g.appendGroup(c.Handlers)
	}
	return g
}

var emptyHandlers = HandlerGroup{}
