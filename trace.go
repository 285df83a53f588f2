// Copyright 2021 The httpq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package httpq

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/gogama/httpq"

type spanKey struct{}

// SpanFromQuery returns the span recorded for q by the tracing handler,
// or a non-recording span if tracing is off.
func SpanFromQuery(q *Query) trace.Span {
	if s, ok := q.Value(spanKey{}).(trace.Span); ok {
		return s
	}
	return trace.SpanFromContext(context.Background())
}

// traceHandler records one span per query. Lifecycle events between the
// start and the end become span events.
type traceHandler struct {
	tracer trace.Tracer
}

func newTraceHandler(tp trace.TracerProvider) *traceHandler {
	return &traceHandler{tracer: tp.Tracer(tracerName)}
}

func (h *traceHandler) Handle(evt Event, q *Query) {
	switch evt {
	case BeforeStart:
		r := q.Request()
		_, span := h.tracer.Start(context.Background(), "httpq "+r.Method.String(),
			trace.WithSpanKind(trace.SpanKindClient),
			trace.WithAttributes(
				attribute.String("query.id", q.ID().String()),
				attribute.String("http.request.method", r.Method.String()),
				attribute.String("url.full", r.URL.String()),
			))
		q.SetValue(spanKey{}, span)
	case AfterRedirect:
		SpanFromQuery(q).AddEvent(evt.Name(),
			trace.WithAttributes(attribute.String("url.full", q.Request().URL.String())))
	case AfterHeaders:
		SpanFromQuery(q).AddEvent(evt.Name(),
			trace.WithAttributes(attribute.Int("http.response.status_code", q.StatusCode())))
	case AfterChallenge:
		SpanFromQuery(q).AddEvent(evt.Name())
	case AfterFinish, AfterFail:
		span := SpanFromQuery(q)
		resp := q.Response()
		span.SetAttributes(
			attribute.Int("http.response.status_code", resp.StatusCode),
			attribute.Int("http.response.body.size", len(resp.Body)),
			attribute.Int("httpq.redirects", q.Redirects()),
		)
		if resp.Err != nil {
			span.RecordError(resp.Err)
			span.SetStatus(codes.Error, resp.Failure().String())
		} else if resp.StatusCode >= 500 {
			span.SetStatus(codes.Error, "")
		}
		span.End()
	}
}
