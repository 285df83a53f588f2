// Copyright 2021 The httpq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package request turns caller input into transport-ready requests.

The core type is Request: a method, an absolute URL, header fields
safe to put on the wire, a pre-buffered body, a timeout and a cache
policy. Request fields are named and typed consistently with
http.Request wherever possible, and ToHTTP converts a Request into an
http.Request.

Build validates its input and produces a Request:

	r, err := request.Build(request.POST, "https://example.com/form", &request.Options{
		Payload: request.Values{{"a", 1}, {"b", request.Values{{"c", 2}}}},
		Header:  map[string]string{"X-Note": "line1\nline2"},
	})

Malformed input (an unsupported method, a relative URL, an invalid
header) is reported by Build and never reaches a transport.

A form payload (Values, url.Values, a nested map or a struct) is
encoded with bracketed key paths, so the payload above becomes
"a=1&b[c]=2". For GET the encoded payload is appended to the URL query;
for every other method it becomes the body and the Content-Type is set
to application/x-www-form-urlencoded unless the caller set one. Header
values have embedded newlines replaced with the two characters `\n`.
*/
package request
