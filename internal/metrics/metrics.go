package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	catalogQueriesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "autosource_catalog_queries_total",
		Help: "Total number of listing queries served, by scope",
	}, []string{"scope"})
	leadTransitionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "autosource_lead_transitions_total",
		Help: "Total number of accepted lead status changes, by target status",
	}, []string{"to"})
	auditEntriesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "autosource_audit_entries_total",
		Help: "Total number of audit entries written, by action",
	}, []string{"action"})
	leadsCreatedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "autosource_leads_created_total",
		Help: "Total number of leads captured from public forms",
	})
	httpPanicsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "autosource_http_panics_total",
		Help: "Total number of handler panics recovered, by route",
	}, []string{"route"})
	leadsByStatus = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "autosource_leads_by_status",
		Help: "Current number of leads in each pipeline status",
	}, []string{"status"})
)

// Register registers Prometheus collectors. Call once at startup.
func Register(registry prometheus.Registerer) {
	registry.MustRegister(catalogQueriesTotal, leadTransitionsTotal, auditEntriesTotal, leadsCreatedTotal, httpPanicsTotal, leadsByStatus)
}

// IncCatalogQuery increments the listing query counter for a scope.
func IncCatalogQuery(scope string) { catalogQueriesTotal.WithLabelValues(scope).Inc() }

// IncLeadTransition increments the accepted transition counter.
func IncLeadTransition(to string) { leadTransitionsTotal.WithLabelValues(to).Inc() }

// IncAuditEntry increments the audit entry counter.
func IncAuditEntry(action string) { auditEntriesTotal.WithLabelValues(action).Inc() }

// IncLeadCreated increments the captured leads counter.
func IncLeadCreated() { leadsCreatedTotal.Inc() }

// IncPanic counts a recovered panic. route is the matched route template.
func IncPanic(route string) { httpPanicsTotal.WithLabelValues(route).Inc() }

// SetLeadsByStatus replaces the per-status gauge values.
func SetLeadsByStatus(counts map[string]int64) {
	for status, n := range counts {
		leadsByStatus.WithLabelValues(status).Set(float64(n))
	}
}
