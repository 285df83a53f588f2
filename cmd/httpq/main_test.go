// Copyright 2021 The httpq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/echo", func(w http.ResponseWriter, req *http.Request) {
		b, _ := io.ReadAll(req.Body)
		w.Header().Set("X-Seen", req.Header.Get("X-Custom"))
		_, _ = fmt.Fprintf(w, "%s %s %s %s", req.Method, req.URL.RawQuery, b, req.Header.Get("Cache-Control"))
	})
	mux.HandleFunc("/private", func(w http.ResponseWriter, req *http.Request) {
		if u, p, ok := req.BasicAuth(); !ok || u != "alice" || p != "secret" {
			w.Header().Set("WWW-Authenticate", `Basic realm="cli"`)
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = io.WriteString(w, "ok")
	})
	mux.HandleFunc("/missing", http.NotFound)
	server := httptest.NewServer(mux)
	defer server.Close()

	testCases := []struct {
		name     string
		args     []string
		expected string
		err      string
	}{
		{
			name:     "get with data",
			args:     []string{"-d", "a=1", "-d", "b=x,y", server.URL + "/echo"},
			expected: "GET a=1&b=x%2Cy  ",
		},
		{
			name:     "post with header and cache",
			args:     []string{"-X", "post", "-H", "X-Custom: v", "--cache", "ReloadIgnoringLocal", "-d", "a=1", "-i", server.URL + "/echo"},
			expected: "200 " + server.URL + "/echo\n",
		},
		{
			name:     "credentials",
			args:     []string{"--user", "alice", "--password", "secret", server.URL + "/private"},
			expected: "ok",
		},
		{
			name: "wrong credentials",
			args: []string{"--user", "alice", "--password", "nope", server.URL + "/private"},
			err:  "ChallengeCancelled",
		},
		{
			name:     "non-2xx",
			args:     []string{server.URL + "/missing"},
			expected: "404 page not found\n",
			err:      "status 404",
		},
		{
			name: "no URL",
			args: []string{},
			err:  "exactly one URL is required",
		},
		{
			name: "bad method",
			args: []string{"-X", "BREW", server.URL},
			err:  "invalid method",
		},
		{
			name: "bad header",
			args: []string{"-H", "nocolon", server.URL},
			err:  "bad header",
		},
		{
			name: "bad cache",
			args: []string{"--cache", "forever", server.URL},
			err:  "unknown cache policy",
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			var out bytes.Buffer
			err := run(append([]string{"httpq"}, testCase.args...), &out)
			if testCase.err != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), testCase.err)
			} else {
				require.NoError(t, err)
			}
			if testCase.expected != "" {
				assert.True(t, bytes.HasPrefix(out.Bytes(), []byte(testCase.expected)), out.String())
			}
		})
	}
}

func TestRun_Include(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("X-Seen", req.Header.Get("X-Custom"))
		_, _ = io.WriteString(w, req.Header.Get("Cache-Control"))
	}))
	defer server.Close()

	var out bytes.Buffer
	err := run([]string{"httpq", "-i", "-H", "X-Custom: a, b", "--cache", "reloadignoringlocal", server.URL}, &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "X-Seen: a, b\r\n")
	assert.True(t, bytes.HasSuffix(out.Bytes(), []byte("\r\n\nno-cache")), out.String())
}
