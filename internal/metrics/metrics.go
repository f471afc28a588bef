// Package metrics registers the Prometheus instruments for the ledger.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ImportsTotal counts spreadsheet imports by outcome:
	// ok, format_error, parse_error, storage_error.
	ImportsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lotocontrol_imports_total",
		Help: "Spreadsheet imports by outcome.",
	}, []string{"status"})

	// ClientsImported counts ledger rows created by successful imports.
	ClientsImported = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lotocontrol_clients_imported_total",
		Help: "Clients created by successful spreadsheet imports.",
	})

	// EntriesRecorded counts saved returned-tickets/payment updates.
	EntriesRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lotocontrol_entries_recorded_total",
		Help: "Returned-tickets/payment entries recorded.",
	})
)
