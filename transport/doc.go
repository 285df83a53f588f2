// Copyright 2021 The httpq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package transport defines how queries talk to the network.

An Adapter starts connections for Requests and reports what happens on
each connection to a Listener: the response head, body chunks, redirect
offers, authentication challenges, and finally success or failure.
httpq.Query is the Listener; it decides whether to follow redirects and
how to answer challenges.

HTTP is the reference Adapter, built on net/http. It never follows
redirects itself, answers Basic challenges with the credentials the
listener chooses, and optionally throttles round trips:

	t := &transport.HTTP{
		Limiter: rate.NewLimiter(rate.Every(100*time.Millisecond), 1),
		Logger:  logger,
	}
*/
package transport
