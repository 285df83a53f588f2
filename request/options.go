// Copyright 2021 The httpq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import "time"

// Credentials holds the username and password offered when the server
// issues an authentication challenge. The zero value is an empty
// username and password.
type Credentials struct {
	Username string
	Password string
}

// Options holds the caller-supplied parameters of a request. The zero
// value is valid and yields a payload-less request with no custom
// headers, empty credentials, the DefaultTimeout and
// CacheProtocolDefault.
type Options struct {
	// Payload is the request payload. It may be nil, []byte, string,
	// io.Reader, Values, url.Values, map[string]interface{}, or a
	// struct (or pointer to struct) with `url` tags understood by
	// github.com/google/go-querystring.
	Payload interface{}

	// Header holds custom request header fields. Embedded newlines in
	// values are escaped to the two characters `\n`.
	Header map[string]string

	// Credentials are supplied on the first authentication challenge.
	Credentials Credentials

	// Timeout bounds the connection. Zero means DefaultTimeout.
	Timeout time.Duration

	// CachePolicy is passed through to the transport.
	CachePolicy CachePolicy

	// Extra holds caller options not consumed by the request builder.
	// They are kept verbatim and exposed through the query's option
	// accessors.
	Extra map[string]interface{}
}

func (o *Options) timeout() time.Duration {
	if o.Timeout == 0 {
		return DefaultTimeout
	}
	return o.Timeout
}
