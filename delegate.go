// Copyright 2021 The httpq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package httpq

// A Delegate receives the single aggregated Response of a query.
//
// Deliver is called exactly once per started query, after the terminal
// AfterFinish or AfterFail handlers have run, on the goroutine that
// delivered the terminal transport event. The query's Done channel is
// closed after Deliver returns, so Deliver must not wait on it.
type Delegate interface {
	Deliver(resp *Response, q *Query)
}

// The DelegateFunc type is an adapter to allow the use of ordinary
// functions as delegates. If f is a function with appropriate signature,
// then DelegateFunc(f) is a Delegate that calls f.
type DelegateFunc func(*Response, *Query)

// Deliver calls f(resp, q).
func (f DelegateFunc) Deliver(resp *Response, q *Query) {
	f(resp, q)
}
