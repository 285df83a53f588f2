// Copyright 2021 The httpq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package failure

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"

	"github.com/gogama/httpq/transport"
)

// A Category is the kind of failure that ended a query, as reported by
// Categorize.
type Category int

const (
	// None is the category of a nil error.
	None Category = iota
	// Other is any failure not covered by a more specific category.
	Other
	// Timeout indicates the request timeout elapsed, or some layer
	// reported a timeout. Categorize returns Timeout if the error or
	// any of its wrapped causes has a Timeout() function that reports
	// true.
	Timeout
	// Cancelled indicates the connection was cancelled.
	Cancelled
	// ConnRefused indicates the remote host refused the connection
	// (syscall.ECONNREFUSED).
	ConnRefused
	// ConnReset indicates the remote host reset an established
	// connection (syscall.ECONNRESET).
	ConnReset
	// NameResolution indicates the host name could not be resolved.
	NameResolution
	// ChallengeCancelled indicates an authentication challenge was
	// cancelled, typically after a credential was rejected.
	ChallengeCancelled
	// TooManyRedirects indicates the redirect chain was too long.
	TooManyRedirects
)

var categoryNames = []string{
	"None",
	"Other",
	"Timeout",
	"Cancelled",
	"ConnRefused",
	"ConnReset",
	"NameResolution",
	"ChallengeCancelled",
	"TooManyRedirects",
}

// String returns the name of the category.
func (cat Category) String() string {
	if cat < 0 || int(cat) >= len(categoryNames) {
		return fmt.Sprintf("Category(%d)", int(cat))
	}
	return categoryNames[cat]
}

// Categorize returns the category of err. A nil error is None.
//
// Timeout takes precedence over every other category, so a DNS lookup
// that timed out is a Timeout and not a NameResolution failure.
func Categorize(err error) Category {
	if err == nil {
		return None
	}

	var hasTimeout hasTimeout
	if errors.As(err, &hasTimeout) && hasTimeout.Timeout() {
		return Timeout
	}

	switch {
	case errors.Is(err, transport.ErrChallengeCancelled):
		return ChallengeCancelled
	case errors.Is(err, transport.ErrTooManyRedirects):
		return TooManyRedirects
	case errors.Is(err, context.Canceled):
		return Cancelled
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return NameResolution
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		if errno == syscall.ECONNRESET {
			return ConnReset
		} else if errno == syscall.ECONNREFUSED {
			return ConnRefused
		}
	}

	return Other
}

type hasTimeout interface {
	Timeout() bool
}
