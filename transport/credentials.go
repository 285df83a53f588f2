// Copyright 2021 The httpq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transport

import (
	"net/http"
	"net/url"
	"strings"
	"sync"
)

// Persistence says how long an adapter keeps a credential after it was
// accepted by a server.
type Persistence int

const (
	// PersistNone uses the credential for the current request only.
	PersistNone Persistence = iota
	// PersistForSession keeps the credential in memory for the life of
	// the adapter.
	PersistForSession
	// PersistPermanent is treated as PersistForSession. Nothing is ever
	// written to disk.
	PersistPermanent
)

// A Credential answers an authentication challenge.
type Credential struct {
	Username    string
	Password    string
	Persistence Persistence
}

// A Space is the protection space a challenge belongs to.
type Space struct {
	Host   string
	Scheme string
	Realm  string
}

// A Disposition is a listener's answer to a challenge.
type Disposition int

const (
	// DefaultHandling delivers the challenge response as an ordinary
	// response.
	DefaultHandling Disposition = iota
	// UseCredential resends the request with a credential.
	UseCredential
	// CancelChallenge fails the connection with ErrChallengeCancelled.
	CancelChallenge
)

// A Challenge is an authentication challenge raised by a server.
type Challenge struct {
	Space Space
	// FailureCount is the number of credentials already rejected for
	// this challenge on the current connection.
	FailureCount int
	// Proposed is a credential the adapter remembers for Space from an
	// earlier session-scoped answer, if any.
	Proposed *Credential
	// Head is the challenge response.
	Head *Head

	disposition Disposition
	credential  Credential
}

// UseCredential answers the challenge with cred.
func (ch *Challenge) UseCredential(cred Credential) {
	ch.disposition = UseCredential
	ch.credential = cred
}

// Cancel answers the challenge by giving up on the request.
func (ch *Challenge) Cancel() {
	ch.disposition = CancelChallenge
	ch.credential = Credential{}
}

// Disposition returns the answer recorded on the challenge.
func (ch *Challenge) Disposition() (Disposition, Credential) {
	return ch.disposition, ch.credential
}

// parseChallenge extracts the protection space of a Basic challenge from
// a 401 response. Only the Basic scheme is answered; other schemes are
// left for the caller to see in the response.
func parseChallenge(u *url.URL, h http.Header) (Space, bool) {
	for _, v := range h.Values("WWW-Authenticate") {
		scheme, params := v, ""
		if i := strings.IndexByte(v, ' '); i >= 0 {
			scheme, params = v[:i], v[i+1:]
		}
		if !strings.EqualFold(scheme, "Basic") {
			continue
		}
		return Space{
			Host:   u.Host,
			Scheme: "basic",
			Realm:  authParam(params, "realm"),
		}, true
	}
	return Space{}, false
}

func authParam(params, name string) string {
	for _, p := range strings.Split(params, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(p), "=")
		if !ok || !strings.EqualFold(k, name) {
			continue
		}
		return strings.Trim(v, `"`)
	}
	return ""
}

type credentialStore struct {
	lock sync.Mutex
	m    map[Space]Credential
}

func (s *credentialStore) get(sp Space) *Credential {
	s.lock.Lock()
	defer s.lock.Unlock()
	c, ok := s.m[sp]
	if !ok {
		return nil
	}
	return &c
}

func (s *credentialStore) put(sp Space, c Credential) {
	if c.Persistence == PersistNone {
		return
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.m == nil {
		s.m = make(map[Space]Credential)
	}
	s.m[sp] = c
}
