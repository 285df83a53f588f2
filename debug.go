// Copyright 2021 The httpq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package httpq

import "go.uber.org/zap"

// debugHandler logs every lifecycle event at debug level. It is
// installed by Client when Settings.Debug is true.
type debugHandler struct {
	logger *zap.Logger
}

func (h *debugHandler) Handle(evt Event, q *Query) {
	if ce := h.logger.Check(zap.DebugLevel, "query "+evt.Name()); ce != nil {
		r := q.Request()
		fields := []zap.Field{
			zap.Stringer("query_id", q.ID()),
			zap.Stringer("event", evt),
			zap.Stringer("state", q.State()),
			zap.String("method", r.Method.String()),
			zap.Stringer("url", r.URL),
			zap.Int("status", q.StatusCode()),
			zap.Int("bytes", q.BytesReceived()),
			zap.Int("redirects", q.Redirects()),
		}
		if evt.Terminal() {
			resp := q.Response()
			fields = append(fields, zap.Duration("duration", q.Duration()))
			if resp.Err != nil {
				fields = append(fields, zap.Error(resp.Err), zap.Stringer("failure", resp.Failure()))
			}
		}
		ce.Write(fields...)
	}
}
