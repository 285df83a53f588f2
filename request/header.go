// Copyright 2021 The httpq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/net/http/httpguts"
)

// EscapeNewlines replaces every newline in s with the two-character
// sequence backslash-n, so a header value can never be split into
// several header lines.
func EscapeNewlines(s string) string {
	return strings.ReplaceAll(s, "\n", `\n`)
}

func escapeHeader(m map[string]string) (http.Header, error) {
	h := make(http.Header, len(m))
	for k, v := range m {
		if !httpguts.ValidHeaderFieldName(k) {
			return nil, fmt.Errorf("httpq/request: invalid header name %q", k)
		}
		v = EscapeNewlines(v)
		if !httpguts.ValidHeaderFieldValue(v) {
			return nil, fmt.Errorf("httpq/request: invalid value for header %q", k)
		}
		h.Set(k, v)
	}
	return h, nil
}
