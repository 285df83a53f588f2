// Copyright 2021 The httpq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package httpq

// A HandlerGroup is a group of event handler chains which can be
// installed in a Client.
type HandlerGroup struct {
	handlers [][]Handler
}

// PushBack adds an event handler to the back of the event handler chain
// for a specific event type.
func (g *HandlerGroup) PushBack(evt Event, h Handler) {
	if h == nil {
		panic("httpq: nil handler")
	}

	if g.handlers == nil {
		g.handlers = make([][]Handler, numEvents)
	}

	g.handlers[evt] = append(g.handlers[evt], h)
}

// PushBackAll adds an event handler to the back of every event handler
// chain.
func (g *HandlerGroup) PushBackAll(h Handler) {
	for _, evt := range Events() {
		g.PushBack(evt, h)
	}
}

func (g *HandlerGroup) run(evt Event, q *Query) {
	i := int(evt)
	if i < len(g.handlers) {
		run(g.handlers[i], evt, q)
	}
}

// appendGroup adds every chain of other to the back of the matching
// chain of g.
func (g *HandlerGroup) appendGroup(other *HandlerGroup) {
	for i, chain := range other.handlers {
		for _, h := range chain {
			g.PushBack(Event(i), h)
		}
	}
}

func run(chain []Handler, evt Event, q *Query) {
	for _, h := range chain {
		h.Handle(evt, q)
	}
}

// A Handler handles the occurrence of an event during a query's
// lifecycle.
//
// Handlers for one query run one at a time, in event order, on whatever
// goroutine delivered the event (the caller's goroutine for BeforeStart,
// the transport's for the rest). Handlers may call any Query method
// except Wait, and must not block for long.
type Handler interface {
	Handle(Event, *Query)
}

// The HandlerFunc type is an adapter to allow the use of ordinary
// functions as event handlers. If f is a function with appropriate
// signature, then HandlerFunc(f) is a Handler that calls f.
type HandlerFunc func(Event, *Query)

// Handle calls f(evt, q).
func (f HandlerFunc) Handle(evt Event, q *Query) {
	f(evt, q)
}
