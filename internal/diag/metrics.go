package diag

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Contadores de diagnóstico del pipeline. El parser descarta filas en
// silencio a propósito; estos contadores existen para que un operador pueda
// detectar pérdida de datos sin romper la política de leniencia.
var (
	RowsParsed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "report_rows_parsed_total",
		Help: "Filas del export aceptadas por el parser",
	}, []string{"source"})

	RowsDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "report_rows_dropped_total",
		Help: "Filas descartadas por el parser",
	}, []string{"source", "reason"}) // reason: ragged | empty

	FieldsDefaulted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "report_fields_defaulted_total",
		Help: "Campos numéricos ausentes o vacíos normalizados a cero",
	}, []string{"source"})

	FetchFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ingest_fetch_failures_total",
		Help: "Fetches de origen fallidos (transporte o no-2xx)",
	}, []string{"source"})

	RefreshRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ingest_refresh_runs_total",
		Help: "Corridas de refresh por resultado",
	}, []string{"status"}) // status: ok | error
)
