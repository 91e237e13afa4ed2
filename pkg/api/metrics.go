package api

import (
	"github.com/prometheus/client_golang/prometheus"
)

// storeCollector implements prometheus.Collector, reading the document
// store on each scrape.
type storeCollector struct {
	srv *Server

	documents     *prometheus.Desc
	objects       *prometheus.Desc
	groups        *prometheus.Desc
	parseFailures *prometheus.Desc
}

func newCollector(srv *Server) *storeCollector {
	return &storeCollector{
		srv: srv,

		documents: prometheus.NewDesc(
			"ucsconv_documents",
			"Number of converted documents held in the store.",
			nil, nil,
		),
		objects: prometheus.NewDesc(
			"ucsconv_document_objects",
			"Top-level configuration objects per document.",
			[]string{"document"}, nil,
		),
		groups: prometheus.NewDesc(
			"ucsconv_document_groups",
			"Object type groups per document.",
			[]string{"document"}, nil,
		),
		parseFailures: prometheus.NewDesc(
			"ucsconv_document_parse_failures",
			"Files that failed to parse per document.",
			[]string{"document"}, nil,
		),
	}
}

func (c *storeCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.documents
	ch <- c.objects
	ch <- c.groups
	ch <- c.parseFailures
}

func (c *storeCollector) Collect(ch chan<- prometheus.Metric) {
	names := c.srv.store.Names()
	ch <- prometheus.MustNewConstMetric(c.documents, prometheus.GaugeValue, float64(len(names)))

	for _, name := range names {
		doc, err := c.srv.store.Get(name)
		if err != nil {
			continue
		}
		ch <- prometheus.MustNewConstMetric(c.objects, prometheus.GaugeValue,
			float64(doc.Objects()), name)
		ch <- prometheus.MustNewConstMetric(c.groups, prometheus.GaugeValue,
			float64(len(doc.Tree.Groups())), name)
		ch <- prometheus.MustNewConstMetric(c.parseFailures, prometheus.GaugeValue,
			float64(len(doc.Failures)), name)
	}
}
