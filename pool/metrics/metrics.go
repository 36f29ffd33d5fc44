// Package metrics exports pool statistics to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/joshuapare/objpool/pkg/types"
)

const namespace = "objpool"

// Source is anything that reports pool statistics; *pool.Pool satisfies it.
type Source interface {
	Stats() types.Stats
}

// Collector is a prometheus.Collector reading a Source on every scrape.
type Collector struct {
	src Source

	allocs     *prometheus.Desc
	allocFails *prometheus.Desc
	constructs *prometheus.Desc
	reuses     *prometheus.Desc
	frees      *prometheus.Desc
	notFound   *prometheus.Desc
	lookups    *prometheus.Desc
	pages      *prometheus.Desc
	inUse      *prometheus.Desc
}

// NewCollector creates a collector for src. name becomes the constant
// "pool" label so several pools can share a registry.
func NewCollector(name string, src Source) *Collector {
	labels := prometheus.Labels{"pool": name}
	desc := func(metric, help string, variable ...string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "", metric), help, variable, labels)
	}
	return &Collector{
		src:        src,
		allocs:     desc("allocs_total", "Successful allocations."),
		allocFails: desc("alloc_failures_total", "Allocations that returned an error."),
		constructs: desc("constructs_total", "Instances built by the factory."),
		reuses:     desc("reuses_total", "Instances recycled in place."),
		frees:      desc("frees_total", "Successful frees."),
		notFound:   desc("free_not_found_total", "Frees that matched no allocated instance."),
		lookups:    desc("free_lookups_total", "Free lookups by outcome.", "tier"),
		pages:      desc("pages", "Initialized pages."),
		inUse:      desc("in_use", "Allocated instances."),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range []*prometheus.Desc{
		c.allocs, c.allocFails, c.constructs, c.reuses,
		c.frees, c.notFound, c.lookups, c.pages, c.inUse,
	} {
		ch <- d
	}
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.src.Stats()

	counter := func(d *prometheus.Desc, v uint64, labels ...string) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.CounterValue, float64(v), labels...)
	}
	counter(c.allocs, s.Allocs)
	counter(c.allocFails, s.AllocFails)
	counter(c.constructs, s.Constructs)
	counter(c.reuses, s.Reuses)
	counter(c.frees, s.Frees)
	counter(c.notFound, s.NotFound)
	counter(c.lookups, s.L1Hits, "l1_hit")
	counter(c.lookups, s.L1Stale, "l1_stale")
	counter(c.lookups, s.L1Misses, "l1_miss")
	counter(c.lookups, s.L2Hits, "l2_hit")
	counter(c.lookups, s.Scans, "scan")

	ch <- prometheus.MustNewConstMetric(c.pages, prometheus.GaugeValue, float64(s.Pages))
	ch <- prometheus.MustNewConstMetric(c.inUse, prometheus.GaugeValue, float64(s.InUse))
}
