// Copyright 2021 The httpq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package httpq provides an asynchronous HTTP client. Each request runs as a
Query that follows redirects, answers authentication challenges,
accumulates the response body and finally hands exactly one aggregated
Response to a Delegate.

Create a Client to begin making requests.

	client := &httpq.Client{}
	q, err := client.Get("https://www.example.com", nil)
	...
	resp, err := q.Wait(ctx)

Errors returned by the client's methods only report malformed input
(unsupported method, relative URL, invalid header). Network failures
are delivered in Response.Err.

To receive the response on the transport goroutine instead of waiting,
supply a Delegate:

	opts := &httpq.Options{
		Options: request.Options{
			Payload:     request.Values{{"a", "1"}, {"b", request.Values{{"c", "2"}}}},
			Header:      map[string]string{"X-Trace": "on"},
			Credentials: request.Credentials{Username: "u", Password: "p"},
		},
		Delegate: httpq.DelegateFunc(func(resp *httpq.Response, q *httpq.Query) {
			...
		}),
	}
	_, err := client.Post("https://www.example.com/form", opts)

For control over how connections are made, set a custom transport. The
reference transport.HTTP is built on net/http:

	client := &httpq.Client{
		Transport: &transport.HTTP{
			Limiter: rate.NewLimiter(10, 1),
			Logger:  logger,
		},
	}

To hook into the lifecycle of every query, install a handler into the
appropriate handler chain:

	handlers := &httpq.HandlerGroup{}
	handlers.PushBack(httpq.AfterRedirect, httpq.HandlerFunc(
		func(_ httpq.Event, q *httpq.Query) {
			log.Printf("Redirected to %s", q.Request().URL)
		}),
	)
	client := &httpq.Client{
		Handlers: handlers,
	}

Settings turns on structured debug logging through zap and per-query
OpenTelemetry spans.

Package httpq provides basic interfaces for each method of the client
(Requester, Getter, Header, Poster, Putter, Patcher and Deleter); a
combined interface that composes them (Executor); and utility functions
for working with a Requester (Inflate, Get, Head, Post, Put, Patch and
Delete).
*/
package httpq
