// Copyright 2021 The httpq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	urlpkg "net/url"
	"strings"
	"time"
)

var (
	template, _ = http.NewRequest("GET", "", nil)
)

const (
	notAbsoluteMsg = "httpq/request: URL must be absolute (scheme and host)"
	negTimeoutMsg  = "httpq/request: negative timeout"
)

// DefaultTimeout is the request timeout used when Options does not
// specify one.
const DefaultTimeout = 30 * time.Second

// A Method is an HTTP request method supported by the query client.
type Method string

// The supported HTTP methods.
const (
	GET    Method = "GET"
	POST   Method = "POST"
	PUT    Method = "PUT"
	DELETE Method = "DELETE"
	HEAD   Method = "HEAD"
	PATCH  Method = "PATCH"
)

// Valid reports whether m is one of the supported methods.
func (m Method) Valid() bool {
	switch m {
	case GET, POST, PUT, DELETE, HEAD, PATCH:
		return true
	default:
		return false
	}
}

// String returns the method name.
func (m Method) String() string {
	return string(m)
}

// A CachePolicy is a pass-through cache directive. The query client does
// no caching itself; the transport maps the policy onto request headers.
type CachePolicy int

const (
	// CacheProtocolDefault uses whatever caching the HTTP protocol and
	// any intermediaries define. No request header is added.
	CacheProtocolDefault CachePolicy = iota
	// CacheReloadIgnoringLocal asks caches to revalidate with the
	// origin server.
	CacheReloadIgnoringLocal
	// CacheReturnElseLoad accepts a stale cached response if one is
	// available.
	CacheReturnElseLoad
	// CacheReturnDontLoad only accepts a cached response.
	CacheReturnDontLoad
)

var cachePolicyNames = []string{
	"ProtocolDefault",
	"ReloadIgnoringLocal",
	"ReturnElseLoad",
	"ReturnDontLoad",
}

// String returns the name of the cache policy.
func (p CachePolicy) String() string {
	if p < 0 || int(p) >= len(cachePolicyNames) {
		return fmt.Sprintf("CachePolicy(%d)", int(p))
	}
	return cachePolicyNames[p]
}

// Directive returns the Cache-Control request directive corresponding
// to the policy, or the empty string for CacheProtocolDefault.
func (p CachePolicy) Directive() string {
	switch p {
	case CacheReloadIgnoringLocal:
		return "no-cache"
	case CacheReturnElseLoad:
		return "max-stale"
	case CacheReturnDontLoad:
		return "only-if-cached"
	default:
		return ""
	}
}

// ParseCachePolicy returns the cache policy with the given name, as
// produced by CachePolicy.String. Matching is case-insensitive.
func ParseCachePolicy(name string) (CachePolicy, error) {
	for i, n := range cachePolicyNames {
		if strings.EqualFold(n, name) {
			return CachePolicy(i), nil
		}
	}
	return CacheProtocolDefault, fmt.Errorf("httpq/request: unknown cache policy %q", name)
}

// A Request is a transport-ready description of one HTTP request.
//
// Requests are produced by Build, and by transports when they offer a
// redirect. Once handed to a transport, a Request should be treated as
// immutable; use Clone to derive a modified copy.
type Request struct {
	// Method specifies the HTTP method.
	Method Method

	// URL specifies the URL to access. For GET requests built from a
	// form payload, the encoded payload is already part of the query.
	URL *urlpkg.URL

	// Header contains the request header fields to be sent. Values
	// have already had embedded newlines escaped.
	Header http.Header

	// Body is the pre-buffered request body. A nil or empty body means
	// no body is sent.
	Body []byte

	// Timeout bounds the whole connection, from the first byte sent to
	// the last byte of the response body received.
	Timeout time.Duration

	// CachePolicy is passed through to the transport.
	CachePolicy CachePolicy
}

// Clone returns a deep copy of r. The body bytes are shared since they
// are never modified in place.
func (r *Request) Clone() *Request {
	r2 := new(Request)
	*r2 = *r
	if r.URL != nil {
		u := *r.URL
		r2.URL = &u
	}
	r2.Header = r.Header.Clone()
	return r2
}

// ToHTTP creates a net/http request corresponding to r. The context of
// the new request is set to ctx, which may not be nil. The header is
// copied so the transport may add fields without affecting r.
func (r *Request) ToHTTP(ctx context.Context) *http.Request {
	hr := template.WithContext(ctx)
	hr.Method = string(r.Method)
	hr.URL = r.URL
	hr.Header = r.Header.Clone()
	if hr.Header == nil {
		hr.Header = make(http.Header)
	}
	if len(r.Body) > 0 {
		hr.Body = io.NopCloser(bytes.NewReader(r.Body))
		hr.GetBody = func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(r.Body)), nil
		}
		hr.ContentLength = int64(len(r.Body))
	}
	hr.Host = r.URL.Host
	return hr
}

// Build assembles a transport-ready Request from a method, a URL and
// caller options. A nil opts is equivalent to a pointer to the zero
// Options.
//
// If the payload is a form (Values, url.Values, a nested map, or a
// struct encoded with go-querystring) and the method is GET, the
// encoded payload is appended to the URL query. For every other method,
// and for raw payloads ([]byte, string, io.Reader), the payload becomes
// the request body. A form body gets the Content-Type
// application/x-www-form-urlencoded unless the caller set one.
//
// Build fails if the method is unsupported, the URL does not parse or is
// not absolute, a header is invalid, the timeout is negative, or the
// payload cannot be encoded. Nothing is sent in any case.
func Build(method Method, url string, opts *Options) (*Request, error) {
	if opts == nil {
		opts = &Options{}
	}
	if !method.Valid() {
		return nil, fmt.Errorf("httpq/request: invalid method %q", string(method))
	}
	u, err := urlpkg.Parse(url)
	if err != nil {
		return nil, err
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, errors.New(notAbsoluteMsg)
	}
	u.Host = removeEmptyPort(u.Host)
	if opts.Timeout < 0 {
		return nil, errors.New(negTimeoutMsg)
	}
	h, err := escapeHeader(opts.Header)
	if err != nil {
		return nil, err
	}
	data, form, err := encodePayload(opts.Payload)
	if err != nil {
		return nil, err
	}
	r := &Request{
		Method:      method,
		URL:         u,
		Header:      h,
		Timeout:     opts.timeout(),
		CachePolicy: opts.CachePolicy,
	}
	switch {
	case form && method == GET:
		appendQuery(u, string(data))
	case len(data) > 0:
		r.Body = data
		if form && h.Get("Content-Type") == "" {
			h.Set("Content-Type", "application/x-www-form-urlencoded")
		}
	}
	return r, nil
}

func appendQuery(u *urlpkg.URL, q string) {
	if q == "" {
		return
	}
	if u.RawQuery == "" {
		u.RawQuery = q
	} else {
		u.RawQuery += "&" + q
	}
}

// hasPort is lifted verbatim from net/http/http.go
//
// Given a string of the form "host", "host:port", or "[ipv6::address]:port",
// return true if the string includes a port.
func hasPort(s string) bool { return strings.LastIndex(s, ":") > strings.LastIndex(s, "]") }

// removeEmptyPort is lifted verbatim from net/http/http.go
//
// removeEmptyPort strips the empty port in ":port" to ""
// as mandated by RFC 3986 Section 6.2.3.
func removeEmptyPort(host string) string {
	if hasPort(host) {
		return strings.TrimSuffix(host, ":")
	}
	return host
}
