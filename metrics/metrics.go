// Copyright 2021 The httpq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package metrics exports Prometheus metrics about the queries run by an
// httpq.Client.
//
// Install a Collector into the client's handler group:
//
//	handlers := &httpq.HandlerGroup{}
//	metrics.Register(handlers, prometheus.DefaultRegisterer)
//	client := &httpq.Client{Handlers: handlers}
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/gogama/httpq"
)

// Outcome label values other than failure category names.
const (
	OutcomeOK     = "ok"
	OutcomeStatus = "status"
)

// A Collector is an httpq.Handler that records query metrics.
type Collector struct {
	inflight   prometheus.Gauge
	queries    *prometheus.CounterVec
	bytes      prometheus.Counter
	redirects  prometheus.Counter
	challenges prometheus.Counter
	duration   *prometheus.HistogramVec
}

// New creates a Collector whose metrics are registered with reg. It
// panics if the metrics are already registered.
func New(reg prometheus.Registerer) *Collector {
	f := promauto.With(reg)
	return &Collector{
		inflight: f.NewGauge(prometheus.GaugeOpts{
			Name: "httpq_queries_inflight",
			Help: "Number of queries started and not yet delivered",
		}),
		queries: f.NewCounterVec(prometheus.CounterOpts{
			Name: "httpq_queries_total",
			Help: "Number of queries delivered, by method and outcome",
		}, []string{"method", "outcome"}),
		bytes: f.NewCounter(prometheus.CounterOpts{
			Name: "httpq_response_bytes_total",
			Help: "Number of response body bytes delivered",
		}),
		redirects: f.NewCounter(prometheus.CounterOpts{
			Name: "httpq_redirects_total",
			Help: "Number of redirects followed",
		}),
		challenges: f.NewCounter(prometheus.CounterOpts{
			Name: "httpq_challenges_total",
			Help: "Number of authentication challenges answered",
		}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "httpq_query_duration_seconds",
			Help:    "Time from query start to delivery",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
	}
}

// Register creates a Collector registered with reg and installs it in g.
func Register(g *httpq.HandlerGroup, reg prometheus.Registerer) *Collector {
	c := New(reg)
	c.Install(g)
	return c
}

// Install adds c to the chains of g that it observes.
func (c *Collector) Install(g *httpq.HandlerGroup) {
	g.PushBack(httpq.BeforeStart, c)
	g.PushBack(httpq.AfterRedirect, c)
	g.PushBack(httpq.AfterChallenge, c)
	g.PushBack(httpq.AfterFinish, c)
	g.PushBack(httpq.AfterFail, c)
}

// Handle implements httpq.Handler.
func (c *Collector) Handle(evt httpq.Event, q *httpq.Query) {
	switch evt {
	case httpq.BeforeStart:
		c.inflight.Inc()
	case httpq.AfterRedirect:
		c.redirects.Inc()
	case httpq.AfterChallenge:
		c.challenges.Inc()
	case httpq.AfterFinish, httpq.AfterFail:
		c.inflight.Dec()
		resp := q.Response()
		method := q.Request().Method.String()
		c.queries.WithLabelValues(method, Outcome(resp)).Inc()
		c.bytes.Add(float64(len(resp.Body)))
		c.duration.WithLabelValues(method).Observe(q.Duration().Seconds())
	}
}

// Outcome returns the outcome label for resp: OutcomeOK for a 2xx
// response, OutcomeStatus for any other status, and the failure
// category name when the query failed.
func Outcome(resp *httpq.Response) string {
	switch {
	case resp.Err != nil:
		return resp.Failure().String()
	case resp.OK():
		return OutcomeOK
	default:
		return OutcomeStatus
	}
}
