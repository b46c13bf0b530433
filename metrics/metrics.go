// Copyright 2026 Google Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package btreemetrics exports the shape of btreemap maps and the latency of
// their operations to Prometheus.
package btreemetrics

import (
	"time"

	"github.com/google/btreemap"
	"github.com/prometheus/client_golang/prometheus"
)

// Collector is a prometheus.Collector reporting a map's Stats as gauges each
// time it is scraped.
//
// stats is called from the scraping goroutine. Maps are not safe for
// concurrent use, so it must synchronize with the map's writer.
type Collector struct {
	stats func() btreemap.Stats

	order   *prometheus.Desc
	entries *prometheus.Desc
	height  *prometheus.Desc
	nodes   *prometheus.Desc
	leaves  *prometheus.Desc
}

var _ prometheus.Collector = (*Collector)(nil)

// NewCollector returns a Collector whose metrics are prefixed with namespace
// and carry constLabels.
func NewCollector(
	namespace string, constLabels prometheus.Labels, stats func() btreemap.Stats,
) *Collector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "btreemap", name), help, nil, constLabels)
	}
	return &Collector{
		stats:   stats,
		order:   desc("order", "Minimum degree of the tree."),
		entries: desc("entries", "Number of entries in the map."),
		height:  desc("height", "Number of node levels in the tree."),
		nodes:   desc("nodes", "Number of nodes in the tree."),
		leaves:  desc("leaves", "Number of leaf nodes in the tree."),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.order
	ch <- c.entries
	ch <- c.height
	ch <- c.nodes
	ch <- c.leaves
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.stats()
	gauge := func(d *prometheus.Desc, v int) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.GaugeValue, float64(v))
	}
	gauge(c.order, s.Order)
	gauge(c.entries, s.Len)
	gauge(c.height, s.Height)
	gauge(c.nodes, s.Nodes)
	gauge(c.leaves, s.Leaves)
}

// OpLatency records the latency of map operations, labelled by operation
// name, in nanoseconds.
type OpLatency struct {
	hist *prometheus.HistogramVec
}

// NewOpLatency returns an OpLatency whose histogram is prefixed with
// namespace.
func NewOpLatency(namespace string) *OpLatency {
	return &OpLatency{
		hist: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "btreemap",
			Name:      "op_latency_nanos",
			Help:      "Latency of map operations.",
			Buckets:   prometheus.ExponentialBuckets(10, 4, 10),
		}, []string{"op"}),
	}
}

// Observe records one operation.
func (l *OpLatency) Observe(op string, d time.Duration) {
	l.hist.WithLabelValues(op).Observe(float64(d.Nanoseconds()))
}

// Collector returns the underlying histogram for registration.
func (l *OpLatency) Collector() prometheus.Collector {
	return l.hist
}
