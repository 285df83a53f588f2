// Copyright 2021 The httpq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package httpq

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gogama/httpq/failure"
	"github.com/gogama/httpq/request"
)

// A Response is the aggregated outcome of a query. A Response is
// immutable once delivered and must be treated as read-only.
type Response struct {
	// StatusCode is the HTTP status of the last response received, or
	// zero if the query failed.
	StatusCode int

	// Header holds the header fields of the last response received. It
	// is nil if the query failed.
	Header http.Header

	// ContentLength is the length the server declared for the body, or
	// -1 if it declared none. It is zero if the query failed.
	ContentLength int64

	// Body is the complete response body. It is nil if the query failed
	// and may be empty (but non-nil) if the server sent no body.
	Body []byte

	// URL is the URL of the last request made. After redirects it is
	// the final target.
	URL string

	// Err is the transport failure that ended the query, if any.
	// Whenever Err is non-nil, it has the type *url.Error.
	Err error
}

// OK reports whether the query completed without a transport failure
// and received a status in the range 200-299.
func (r *Response) OK() bool {
	return r.Err == nil && r.StatusCode >= 200 && r.StatusCode <= 299
}

// ErrorMessage returns the text of Err, or the empty string if Err is
// nil.
func (r *Response) ErrorMessage() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// Timeout reports whether the query failed because its timeout
// elapsed.
func (r *Response) Timeout() bool {
	return r.Failure() == failure.Timeout
}

// Failure returns the category of Err.
func (r *Response) Failure() failure.Category {
	return failure.Categorize(r.Err)
}

// finalize builds the immutable Response for a terminated query. It
// never fails. The body is copied out of buf.
func finalize(status int, header http.Header, contentLength int64, buf []byte, u *url.URL, err error) *Response {
	resp := &Response{
		StatusCode:    status,
		Header:        header,
		ContentLength: contentLength,
		Err:           err,
	}
	if u != nil {
		resp.URL = u.String()
	}
	if err == nil {
		resp.Body = make([]byte, len(buf))
		copy(resp.Body, buf)
	}
	return resp
}

func urlErrorWrap(r *request.Request, err error) error {
	if _, ok := err.(*url.Error); ok {
		return err
	}

	return &url.Error{
		Op:  urlErrorOp(r.Method.String()),
		URL: r.URL.String(),
		Err: err,
	}
}

// urlErrorOp matches the Op net/http puts in the errors it returns.
func urlErrorOp(method string) string {
	if method == "" {
		return "Get"
	}
	return method[:1] + strings.ToLower(method[1:])
}
