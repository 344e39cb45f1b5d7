package httpx

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/scalli-crm/cliente-scalli-sub000/internal/ingest"
	"github.com/scalli-crm/cliente-scalli-sub000/internal/metrics"
	"github.com/scalli-crm/cliente-scalli-sub000/internal/models"
	"github.com/scalli-crm/cliente-scalli-sub000/internal/report"
	"github.com/scalli-crm/cliente-scalli-sub000/internal/store"
	"github.com/scalli-crm/cliente-scalli-sub000/internal/utils"
)

type handlers struct {
	st      *store.SnapshotStore
	rf      *ingest.Refresher
	sources []models.Source
	log     *slog.Logger
}

func NewRouter(log *slog.Logger, st *store.SnapshotStore, rf *ingest.Refresher, sources []models.Source, allowedOrigin string) http.Handler {
	h := &handlers{st: st, rf: rf, sources: sources, log: log}

	mux := chi.NewRouter()
	mux.Use(utils.RequestID)
	mux.Use(utils.Logger(log))
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{allowedOrigin},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	}))

	mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ok")) })
	mux.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ready")) })
	mux.Handle("/metrics", promhttp.Handler())

	mux.Post("/refresh/run", h.refresh)
	mux.Get("/sources", h.listSources)
	mux.Get("/aggregates/{dim}", h.aggregates)
	mux.Get("/campaigns/trend", h.trend)
	mux.Get("/rankings/funnel", h.funnelRanking)
	mux.Get("/rankings/metric", h.metricRanking)
	mux.Get("/export/records.csv", h.exportRecords)
	mux.Get("/export/{dim}.csv", h.exportAggregates)

	return mux
}

func (h *handlers) listSources(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.sources)
}

func (h *handlers) refresh(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("source")
	targets := h.sources
	if id != "" {
		src, ok := h.findSource(id)
		if !ok {
			http.Error(w, "unknown source", http.StatusNotFound)
			return
		}
		targets = []models.Source{src}
	}
	if len(targets) == 0 {
		http.Error(w, "no sources configured", http.StatusNotFound)
		return
	}

	results := h.rf.RefreshAll(r.Context(), targets)
	status := http.StatusOK
	for _, res := range results {
		if err := res.Err(); err != nil {
			if errors.Is(err, ingest.ErrEmptyDataset) {
				status = http.StatusUnprocessableEntity
			} else {
				status = http.StatusBadGateway
			}
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(results)
}

func (h *handlers) aggregates(w http.ResponseWriter, r *http.Request) {
	dim, ok := dimension(chi.URLParam(r, "dim"))
	if !ok {
		http.Error(w, "unknown dimension", http.StatusBadRequest)
		return
	}
	records, ok := h.snapshotRecords(w, r)
	if !ok {
		return
	}
	filtered := report.Filter(records, filterFromQuery(r))
	writeJSON(w, metrics.Aggregate(filtered, dim))
}

func (h *handlers) trend(w http.ResponseWriter, r *http.Request) {
	campaign := r.URL.Query().Get("campaign")
	if campaign == "" {
		http.Error(w, "campaign required", http.StatusBadRequest)
		return
	}
	// tendencia sobre el historial completo, sin filtros de fecha activos
	records, ok := h.snapshotRecords(w, r)
	if !ok {
		return
	}
	weeks := metrics.WeeklyTrend(records, campaign)
	writeJSON(w, map[string]any{
		"weeks":  weeks,
		"deltas": metrics.TrendDeltas(weeks),
	})
}

func (h *handlers) funnelRanking(w http.ResponseWriter, r *http.Request) {
	stage := metrics.Stage(r.URL.Query().Get("stage"))
	switch stage {
	case metrics.StageImpact, metrics.StageStory, metrics.StageOffer, metrics.StageCTA:
	default:
		http.Error(w, "unknown stage", http.StatusBadRequest)
		return
	}
	records, ok := h.snapshotRecords(w, r)
	if !ok {
		return
	}
	creatives := metrics.Aggregate(report.Filter(records, filterFromQuery(r)), metrics.ByCreative)
	n := atoiDef(r.URL.Query().Get("n"), 5)
	min := float64(atoiDef(r.URL.Query().Get("min"), 20))
	writeJSON(w, metrics.TopFunnel(creatives, stage, n, min))
}

func (h *handlers) metricRanking(w http.ResponseWriter, r *http.Request) {
	metric := r.URL.Query().Get("metric")
	if !metrics.KnownMetric(metric) {
		http.Error(w, "unknown metric", http.StatusBadRequest)
		return
	}
	dim := metrics.ByCreative
	if v := r.URL.Query().Get("dim"); v != "" {
		d, ok := dimension(v)
		if !ok {
			http.Error(w, "unknown dimension", http.StatusBadRequest)
			return
		}
		dim = d
	}
	records, ok := h.snapshotRecords(w, r)
	if !ok {
		return
	}
	results := metrics.Aggregate(report.Filter(records, filterFromQuery(r)), dim)
	n := atoiDef(r.URL.Query().Get("n"), 3)
	if metric == "conversion" {
		writeJSON(w, metrics.TopConverters(results, n, atoiDef(r.URL.Query().Get("minClicks"), 5)))
		return
	}
	writeJSON(w, metrics.TopByMetric(results, metric, n))
}

func (h *handlers) exportRecords(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sourceID(w, r)
	if !ok {
		return
	}
	snap, found := h.st.Get(id)
	if !found {
		http.Error(w, "no snapshot for source", http.StatusNotFound)
		return
	}
	filtered := report.Filter(snap.Records, filterFromQuery(r))
	writeCSV(w, "records.csv", report.Serialize(snap.Headers, filtered))
}

func (h *handlers) exportAggregates(w http.ResponseWriter, r *http.Request) {
	dim, ok := dimension(chi.URLParam(r, "dim"))
	if !ok {
		http.Error(w, "unknown dimension", http.StatusBadRequest)
		return
	}
	records, ok := h.snapshotRecords(w, r)
	if !ok {
		return
	}
	results := metrics.Aggregate(report.Filter(records, filterFromQuery(r)), dim)
	writeCSV(w, dim.Name+".csv", aggregatesCSV(dim, results))
}

func aggregatesCSV(dim metrics.Dimension, results []models.AggregateResult) string {
	headers := []string{"Key", "Spend", "Impressions", "Reach", "Link Clicks", "Clicks (All)", "Messages", "Page Engagement", "Landing Page Views", "CTR", "CPC", "CPM", "Cost per Result", "Connect Rate"}
	if dim.Funnel {
		headers = append(headers, "Impact Rate", "Story Rate", "Offer Rate", "CTA Rate")
	}
	rows := make([][]string, 0, len(results))
	for _, a := range results {
		row := []string{
			a.Key, f(a.Spend), f(a.Impressions), f(a.Reach), f(a.LinkClicks), f(a.AllClicks),
			f(a.Messages), f(a.Engagement), f(a.LandingViews),
			f(a.CTR), f(a.CPC), f(a.CPM), f(a.CostPerResult), f(a.ConnectRate),
		}
		if dim.Funnel {
			row = append(row, f(a.ImpactRate), f(a.StoryRate), f(a.OfferRate), f(a.CTARate))
		}
		rows = append(rows, row)
	}
	return report.SerializeTable(headers, rows)
}

func (h *handlers) findSource(id string) (models.Source, bool) {
	for _, s := range h.sources {
		if s.ID == id {
			return s, true
		}
	}
	return models.Source{}, false
}

// sourceID resuelve el origen del query param; sin param usa el primero
// configurado.
func (h *handlers) sourceID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.URL.Query().Get("source")
	if id == "" {
		if len(h.sources) == 0 {
			http.Error(w, "no sources configured", http.StatusNotFound)
			return "", false
		}
		return h.sources[0].ID, true
	}
	if _, ok := h.findSource(id); !ok {
		http.Error(w, "unknown source", http.StatusNotFound)
		return "", false
	}
	return id, true
}

func (h *handlers) snapshotRecords(w http.ResponseWriter, r *http.Request) ([]models.RawRecord, bool) {
	id, ok := h.sourceID(w, r)
	if !ok {
		return nil, false
	}
	return h.st.Records(id), true
}

func filterFromQuery(r *http.Request) report.FilterOptions {
	q := r.URL.Query()
	o := report.FilterOptions{
		StartDate: q.Get("from"),
		EndDate:   q.Get("to"),
		Campaign:  q.Get("campaign"),
		AdSet:     q.Get("adset"),
	}
	if v := q.Get("month"); v != "" {
		if m, err := strconv.Atoi(v); err == nil && m >= 0 && m <= 11 {
			o.Month = &m
		}
	}
	return o
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", " ")
	enc.Encode(v)
}

func writeCSV(w http.ResponseWriter, name, body string) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.Write([]byte(body))
}

func dimension(name string) (metrics.Dimension, bool) {
	switch name {
	case "campaigns":
		return metrics.ByCampaign, true
	case "creatives":
		return metrics.ByCreative, true
	case "genders":
		return metrics.ByGender, true
	case "ages":
		return metrics.ByAge, true
	}
	return metrics.Dimension{}, false
}

func f(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

func atoiDef(s string, d int) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return d
	}
	return v
}
