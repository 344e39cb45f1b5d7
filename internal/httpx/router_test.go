package httpx

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scalli-crm/cliente-scalli-sub000/internal/ingest"
	"github.com/scalli-crm/cliente-scalli-sub000/internal/models"
	"github.com/scalli-crm/cliente-scalli-sub000/internal/report"
	"github.com/scalli-crm/cliente-scalli-sub000/internal/store"
)

const exportCSV = "Day,Campaign Name,Ad Set Name,Ad Name,Amount Spent,Impressions,Link Clicks,Messaging Conversations Started,Gender,Age\n" +
	"\"2024-03-01\",\"A\",\"frio\",\"video-1\",\"100,50\",\"1000\",\"20\",\"4\",\"female\",\"25-34\"\n" +
	"\"2024-03-02\",\"A\",\"frio\",\"video-1\",\"50,00\",\"500\",\"10\",\"2\",\"male\",\"25-34\"\n" +
	"\"2024-04-01\",\"B\",\"quente\",\"video-2\",\"30,00\",\"300\",\"3\",\"1\",\"\",\"35-44\"\n"

func newTestServer(t *testing.T, upstream string) http.Handler {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	st := store.NewSnapshotStore()
	rf := ingest.NewRefresher(ingest.NewHTTPClient(2*time.Second), st, log, report.ParseOptions{})

	table := report.Parse(exportCSV, report.ParseOptions{})
	st.Install(store.Snapshot{SourceID: "meta", RunID: "seed", Headers: table.Headers, Records: table.Records})

	sources := []models.Source{{ID: "meta", URL: upstream}}
	return NewRouter(log, st, rf, sources, "*")
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestAggregatesEndpoint(t *testing.T) {
	h := newTestServer(t, "")

	w := get(t, h, "/aggregates/campaigns")
	require.Equal(t, http.StatusOK, w.Code)

	var out []models.AggregateResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	require.Len(t, out, 2)
	// orden por inversión descendente
	assert.Equal(t, "A", out[0].Key)
	assert.InDelta(t, 150.50, out[0].Spend, 1e-9)
	assert.InDelta(t, 2.0, out[0].CTR, 1e-9)
}

func TestAggregatesWithFilters(t *testing.T) {
	h := newTestServer(t, "")

	w := get(t, h, "/aggregates/campaigns?month=2")
	var out []models.AggregateResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	require.Len(t, out, 1)
	assert.Equal(t, "A", out[0].Key)

	w = get(t, h, "/aggregates/campaigns?from=2024-04-01&to=2024-04-30")
	out = nil
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	require.Len(t, out, 1)
	assert.Equal(t, "B", out[0].Key)
}

func TestAggregatesGenderSentinel(t *testing.T) {
	h := newTestServer(t, "")

	w := get(t, h, "/aggregates/genders")
	var out []models.AggregateResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	require.Len(t, out, 3)
	keys := []string{out[0].Key, out[1].Key, out[2].Key}
	assert.Contains(t, keys, "Desconhecido")
}

func TestAggregatesUnknownDimension(t *testing.T) {
	h := newTestServer(t, "")
	assert.Equal(t, http.StatusBadRequest, get(t, h, "/aggregates/otra").Code)
}

func TestAggregatesUnknownSource(t *testing.T) {
	h := newTestServer(t, "")
	assert.Equal(t, http.StatusNotFound, get(t, h, "/aggregates/campaigns?source=nada").Code)
}

func TestTrendEndpoint(t *testing.T) {
	h := newTestServer(t, "")

	assert.Equal(t, http.StatusBadRequest, get(t, h, "/campaigns/trend").Code)

	w := get(t, h, "/campaigns/trend?campaign=A")
	require.Equal(t, http.StatusOK, w.Code)
	var out struct {
		Weeks  []models.WeeklyBucket `json:"weeks"`
		Deltas []models.TrendDelta   `json:"deltas"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	require.Len(t, out.Weeks, 4)
	assert.Equal(t, "2024-03-02", out.Weeks[3].EndDate)
	assert.NotEmpty(t, out.Deltas)

	// campaña sin historia: vacío, no cuatro ceros
	w = get(t, h, "/campaigns/trend?campaign=no-existe")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Len(t, out.Weeks, 0)
	assert.Len(t, out.Deltas, 0)
}

func TestFunnelRankingEndpoint(t *testing.T) {
	h := newTestServer(t, "")

	assert.Equal(t, http.StatusBadRequest, get(t, h, "/rankings/funnel?stage=otra").Code)
	assert.Equal(t, http.StatusOK, get(t, h, "/rankings/funnel?stage=impact").Code)
}

func TestMetricRankingEndpoint(t *testing.T) {
	h := newTestServer(t, "")

	assert.Equal(t, http.StatusBadRequest, get(t, h, "/rankings/metric?metric=inventada").Code)

	w := get(t, h, "/rankings/metric?metric=ctr&n=1")
	require.Equal(t, http.StatusOK, w.Code)
	var out []models.AggregateResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Len(t, out, 1)

	// top por conversión sobre campañas, con umbral de clicks
	w = get(t, h, "/rankings/metric?metric=conversion&dim=campaigns")
	require.Equal(t, http.StatusOK, w.Code)
	out = nil
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	require.Len(t, out, 1) // "B" queda afuera: 3 clicks <= 5
	assert.Equal(t, "A", out[0].Key)
}

func TestExportRecordsRoundTrip(t *testing.T) {
	h := newTestServer(t, "")

	w := get(t, h, "/export/records.csv?campaign=A")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))

	table := report.Parse(w.Body.String(), report.ParseOptions{})
	require.Len(t, table.Records, 2)
	assert.Equal(t, "A", table.Records[0].Fields["Campaign Name"])
}

func TestExportAggregatesCSV(t *testing.T) {
	h := newTestServer(t, "")

	w := get(t, h, "/export/campaigns.csv")
	require.Equal(t, http.StatusOK, w.Code)
	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	assert.Len(t, lines, 3) // header + 2 campañas
	assert.True(t, strings.HasPrefix(lines[0], "\"Key\""))

	// las celdas numéricas vuelven como texto parseable por el normalizador
	table := report.Parse(w.Body.String(), report.ParseOptions{})
	require.Len(t, table.Records, 2)
	assert.Equal(t, "A", table.Records[0].Fields["Key"])
	assert.InDelta(t, 150.5, report.ToNumber(table.Records[0].Fields["Spend"]), 1e-9)
	assert.InDelta(t, 2.0, report.ToNumber(table.Records[0].Fields["CTR"]), 1e-9)
	assert.InDelta(t, 30.0, report.ToNumber(table.Records[0].Fields["Link Clicks"]), 1e-9)

	// agregados vacíos: solo el header
	w = get(t, h, "/export/campaigns.csv?from=2030-01-01")
	lines = strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	assert.Len(t, lines, 1)
}

func TestRefreshRunEndpoint(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(exportCSV))
	}))
	defer upstream.Close()

	h := newTestServer(t, upstream.URL)

	req := httptest.NewRequest(http.MethodPost, "/refresh/run?source=meta", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var results []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &results))
	require.Len(t, results, 1)
	assert.Equal(t, float64(3), results[0]["rows"])
}

func TestRefreshUnknownSource(t *testing.T) {
	h := newTestServer(t, "")
	req := httptest.NewRequest(http.MethodPost, "/refresh/run?source=nada", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
