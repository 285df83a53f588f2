// Copyright 2021 The httpq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package httpq

import (
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Settings holds the process-level knobs of a Client. Settings are read
// when a query is created and must not be modified while the Client is
// in use. The zero value disables diagnostics and tracing.
type Settings struct {
	// Debug installs a handler that logs every lifecycle event of every
	// query at debug level.
	Debug bool

	// Logger receives diagnostic records. If nil, nothing is logged.
	Logger *zap.Logger

	// TracerProvider, if non-nil, is used to record one span per query.
	TracerProvider trace.TracerProvider
}

var zeroSettings = Settings{}

func (s *Settings) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}
