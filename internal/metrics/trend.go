package metrics

import (
	"time"

	"github.com/scalli-crm/cliente-scalli-sub000/internal/models"
	"github.com/scalli-crm/cliente-scalli-sub000/internal/report"
)

const trendWindows = 4

// WeeklyTrend bucketiza el historial completo de una campaña en 4 ventanas
// de 7 días ancladas en su último Day observado, de la más vieja a la más
// nueva. Opera sobre registros sin filtrar por fecha: el contexto de
// tendencia no depende de lo que el usuario esté mirando. Campaña sin
// registros => secuencia vacía (historial insuficiente, no cuatro ceros).
func WeeklyTrend(records []models.RawRecord, campaign string) []models.WeeklyBucket {
	var rows []models.RawRecord
	latest := ""
	for _, r := range records {
		if report.Value(r, report.FieldCampaign) != campaign {
			continue
		}
		rows = append(rows, r)
		if day := report.Value(r, report.FieldDay); len(day) >= 10 && day[:10] > latest {
			latest = day[:10]
		}
	}
	if len(rows) == 0 || latest == "" {
		return []models.WeeklyBucket{}
	}
	anchor, err := time.Parse("2006-01-02", latest)
	if err != nil {
		return []models.WeeklyBucket{}
	}

	out := make([]models.WeeklyBucket, 0, trendWindows)
	// ventana i (0 = más reciente): [ancla - 7(i+1) + 1, ancla - 7i]
	for i := 0; i < trendWindows; i++ {
		end := anchor.AddDate(0, 0, -7*i)
		start := anchor.AddDate(0, 0, -7*(i+1)+1)
		b := models.WeeklyBucket{
			StartDate: start.Format("2006-01-02"),
			EndDate:   end.Format("2006-01-02"),
		}
		for _, r := range rows {
			day := report.Value(r, report.FieldDay)
			if len(day) < 10 {
				continue
			}
			day = day[:10]
			if day < b.StartDate || day > b.EndDate {
				continue
			}
			b.Spend += report.Number(r, report.FieldSpend)
			b.Impressions += report.Number(r, report.FieldImpressions)
			b.LinkClicks += report.Number(r, report.FieldLinkClicks)
			b.AllClicks += report.Number(r, report.FieldAllClicks)
			b.Conversations += report.Number(r, report.FieldMessages)
		}
		if b.Impressions > 0 {
			b.CTR = b.LinkClicks / b.Impressions * 100
			b.CTRAll = b.AllClicks / b.Impressions * 100
			b.CPM = b.Spend / b.Impressions * 1000
		}
		if b.Conversations > 0 {
			b.CostPerResult = b.Spend / b.Conversations
		}
		out = append(out, b)
	}

	// invertimos para que el índice 0 sea la ventana más vieja
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

type orientation int

const (
	higherIsBetter orientation = iota
	lowerIsBetter
	neutral
)

// trendMetrics declara la orientación de cada métrica de tendencia; el
// comparador la consume en vez de ramificar por métrica.
var trendMetrics = []struct {
	Name   string
	Value  func(models.WeeklyBucket) float64
	Orient orientation
}{
	{"spend", func(b models.WeeklyBucket) float64 { return b.Spend }, neutral},
	{"impressions", func(b models.WeeklyBucket) float64 { return b.Impressions }, higherIsBetter},
	{"link_clicks", func(b models.WeeklyBucket) float64 { return b.LinkClicks }, higherIsBetter},
	{"all_clicks", func(b models.WeeklyBucket) float64 { return b.AllClicks }, higherIsBetter},
	{"conversations", func(b models.WeeklyBucket) float64 { return b.Conversations }, higherIsBetter},
	{"ctr", func(b models.WeeklyBucket) float64 { return b.CTR }, higherIsBetter},
	{"ctr_all", func(b models.WeeklyBucket) float64 { return b.CTRAll }, higherIsBetter},
	{"cpm", func(b models.WeeklyBucket) float64 { return b.CPM }, lowerIsBetter},
	{"cost_per_result", func(b models.WeeklyBucket) float64 { return b.CostPerResult }, lowerIsBetter},
}

// TrendDeltas compara cada ventana contra su predecesora inmediata. Con
// menos de dos ventanas devuelve una secuencia vacía.
func TrendDeltas(weeks []models.WeeklyBucket) []models.TrendDelta {
	out := []models.TrendDelta{}
	for w := 1; w < len(weeks); w++ {
		prev, cur := weeks[w-1], weeks[w]
		for _, m := range trendMetrics {
			pv, cv := m.Value(prev), m.Value(cur)
			d := models.TrendDelta{
				Metric:   m.Name,
				Window:   w,
				Previous: pv,
				Current:  cv,
			}
			switch {
			case cv > pv:
				d.Direction = "up"
			case cv < pv:
				d.Direction = "down"
			default:
				d.Direction = "flat"
			}
			if pv != 0 {
				d.ChangePct = (cv - pv) / pv * 100
			} else if cv > 0 {
				d.ChangePct = 100
			}
			d.Good = isGood(m.Orient, d.Direction)
			out = append(out, d)
		}
	}
	return out
}

func isGood(o orientation, direction string) bool {
	if direction == "flat" || o == neutral {
		return true
	}
	if o == lowerIsBetter {
		return direction == "down"
	}
	return direction == "up"
}
