// Copyright 2021 The httpq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package httpq

import "github.com/gogama/httpq/request"

// Requester is the interface that wraps the basic Request method.
//
// Request builds a request and starts a query for it, returning without
// waiting for the network. Client implements the Requester interface,
// and any other Requester implementation must behave substantially the
// same as Client.Request.
//
// Any Requester can be converted into an Executor via the Inflate
// function.
type Requester interface {
	Request(method request.Method, url string, opts *Options) (*Query, error)
}

// Getter is the interface that wraps the basic Get method.
//
// Any Requester can be used to emulate a Getter via the Get function.
type Getter interface {
	Get(url string, opts *Options) (*Query, error)
}

// Header is the interface that wraps the basic Head method.
//
// Any Requester can be used to emulate a Header via the Head function.
type Header interface {
	Head(url string, opts *Options) (*Query, error)
}

// Poster is the interface that wraps the basic Post method.
//
// Any Requester can be used to emulate a Poster via the Post function.
type Poster interface {
	Post(url string, opts *Options) (*Query, error)
}

// Putter is the interface that wraps the basic Put method.
//
// Any Requester can be used to emulate a Putter via the Put function.
type Putter interface {
	Put(url string, opts *Options) (*Query, error)
}

// Patcher is the interface that wraps the basic Patch method.
//
// Any Requester can be used to emulate a Patcher via the Patch function.
type Patcher interface {
	Patch(url string, opts *Options) (*Query, error)
}

// Deleter is the interface that wraps the basic Delete method.
//
// Any Requester can be used to emulate a Deleter via the Delete
// function.
type Deleter interface {
	Delete(url string, opts *Options) (*Query, error)
}

// Executor is the interface that groups the basic Request, Get, Head,
// Post, Put, Patch and Delete methods.
//
// Any Requester can be converted into an Executor via the Inflate
// function.
type Executor interface {
	Requester
	Getter
	Header
	Poster
	Putter
	Patcher
	Deleter
}

// Get uses the specified Requester to start a GET query.
func Get(r Requester, url string, opts *Options) (*Query, error) {
	return r.Request(request.GET, url, opts)
}

// Head uses the specified Requester to start a HEAD query.
func Head(r Requester, url string, opts *Options) (*Query, error) {
	return r.Request(request.HEAD, url, opts)
}

// Post uses the specified Requester to start a POST query.
func Post(r Requester, url string, opts *Options) (*Query, error) {
	return r.Request(request.POST, url, opts)
}

// Put uses the specified Requester to start a PUT query.
func Put(r Requester, url string, opts *Options) (*Query, error) {
	return r.Request(request.PUT, url, opts)
}

// Patch uses the specified Requester to start a PATCH query.
func Patch(r Requester, url string, opts *Options) (*Query, error) {
	return r.Request(request.PATCH, url, opts)
}

// Delete uses the specified Requester to start a DELETE query.
func Delete(r Requester, url string, opts *Options) (*Query, error) {
	return r.Request(request.DELETE, url, opts)
}

// Inflate converts any non-nil Requester into an Executor.
func Inflate(r Requester) Executor {
	if r == nil {
		panic("httpq: nil requester")
	}

	if e, ok := r.(Executor); ok {
		return e
	}

	return inflated{r}
}

type inflated struct {
	requester Requester
}

func (i inflated) Request(method request.Method, url string, opts *Options) (*Query, error) {
	return i.requester.Request(method, url, opts)
}

func (i inflated) Get(url string, opts *Options) (*Query, error) {
	return Get(i.requester, url, opts)
}

func (i inflated) Head(url string, opts *Options) (*Query, error) {
	return Head(i.requester, url, opts)
}

func (i inflated) Post(url string, opts *Options) (*Query, error) {
	return Post(i.requester, url, opts)
}

func (i inflated) Put(url string, opts *Options) (*Query, error) {
	return Put(i.requester, url, opts)
}

func (i inflated) Patch(url string, opts *Options) (*Query, error) {
	return Patch(i.requester, url, opts)
}

func (i inflated) Delete(url string, opts *Options) (*Query, error) {
	return Delete(i.requester, url, opts)
}
