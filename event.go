// Copyright 2021 The httpq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package httpq

// An Event identifies the event type when installing or running a
// Handler. Install event handlers in a Client to observe the lifecycle
// of its queries.
type Event int

const (
	// BeforeStart identifies the event that occurs before the initial
	// connection of a query is started.
	//
	// When Client fires BeforeStart, the query state is Unstarted and
	// its request is the one produced by the request builder.
	BeforeStart Event = iota
	// AfterRedirect identifies the event that occurs after the query
	// accepted a redirect offer, cancelled its old connection and
	// started a new one for the redirect target.
	//
	// When Client fires AfterRedirect, the query's request is the
	// redirect request (with the original custom headers applied) and
	// the response metadata of the previous leg has been discarded.
	AfterRedirect
	// AfterChallenge identifies the event that occurs after the query
	// answered an authentication challenge, either with its stored
	// credentials or by cancelling the challenge.
	AfterChallenge
	// AfterHeaders identifies the event that occurs after the response
	// status line and headers were received.
	AfterHeaders
	// AfterData identifies the event that occurs after a chunk of the
	// response body was appended to the query's buffer.
	AfterData
	// AfterFinish identifies the event that occurs after the query was
	// finalized successfully, before the delegate is called.
	//
	// "Successfully" refers to the transport: a query that received a
	// 404 finishes normally.
	AfterFinish
	// AfterFail identifies the event that occurs after the query failed,
	// before the delegate is called.
	AfterFail
	// eventSentinel provides the total number of events typed as an
	// Event.
	eventSentinel

	// numEvents provides the total number of events types as an int.
	numEvents = int(eventSentinel)
)

var eventNames = []string{
	"BeforeStart",
	"AfterRedirect",
	"AfterChallenge",
	"AfterHeaders",
	"AfterData",
	"AfterFinish",
	"AfterFail",
}

// Events returns a slice containing all events which can occur during a
// query's lifecycle.
func Events() []Event {
	return []Event{
		BeforeStart,
		AfterRedirect,
		AfterChallenge,
		AfterHeaders,
		AfterData,
		AfterFinish,
		AfterFail,
	}
}

// Name returns the name of the event.
func (evt Event) Name() string {
	return eventNames[int(evt)]
}

// String returns the name of the event.
func (evt Event) String() string {
	return evt.Name()
}

// Terminal reports whether evt ends a query.
func (evt Event) Terminal() bool {
	return evt == AfterFinish || evt == AfterFail
}
