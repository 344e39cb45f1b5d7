package metrics

import (
	"sort"

	"github.com/scalli-crm/cliente-scalli-sub000/internal/models"
	"github.com/scalli-crm/cliente-scalli-sub000/internal/report"
)

// UnknownPolicy define qué hacer con registros sin valor en la clave de
// agrupación. Las dimensiones de campaña/creativo saltean el registro; las
// demográficas lo agrupan bajo un rótulo, porque esas columnas siempre
// deberían traer valores discretos.
type UnknownPolicy int

const (
	UnknownSkip UnknownPolicy = iota
	UnknownLabel
)

// UnknownKey es el rótulo para claves ausentes bajo UnknownLabel.
const UnknownKey = "Desconhecido"

type Dimension struct {
	Name    string
	Key     report.Field
	Unknown UnknownPolicy
	// Funnel suma las columnas de retención de video (solo creativos).
	Funnel bool
}

var (
	ByCampaign = Dimension{Name: "campaigns", Key: report.FieldCampaign, Unknown: UnknownSkip}
	ByCreative = Dimension{Name: "creatives", Key: report.FieldAdName, Unknown: UnknownSkip, Funnel: true}
	ByGender   = Dimension{Name: "genders", Key: report.FieldGender, Unknown: UnknownLabel}
	ByAge      = Dimension{Name: "ages", Key: report.FieldAge, Unknown: UnknownLabel}
)

// Aggregate reduce los registros en un pase a totales por clave más ratios
// derivados. Los buckets se crean al ver la clave por primera vez y el orden
// de primera aparición se conserva, salvo campañas que salen ordenadas por
// inversión descendente.
func Aggregate(records []models.RawRecord, dim Dimension) []models.AggregateResult {
	order := []string{}
	buckets := map[string]*models.AggregateResult{}

	for _, r := range records {
		key := report.Value(r, dim.Key)
		if key == "" {
			if dim.Unknown == UnknownSkip {
				continue
			}
			key = UnknownKey
		}
		b, ok := buckets[key]
		if !ok {
			b = &models.AggregateResult{Key: key}
			buckets[key] = b
			order = append(order, key)
		}
		b.Spend += report.Number(r, report.FieldSpend)
		b.Impressions += report.Number(r, report.FieldImpressions)
		b.Reach += report.Number(r, report.FieldReach)
		b.LinkClicks += report.Number(r, report.FieldLinkClicks)
		b.AllClicks += report.Number(r, report.FieldAllClicks)
		b.Messages += report.Number(r, report.FieldMessages)
		b.Engagement += report.Number(r, report.FieldEngagement)
		b.LandingViews += report.Number(r, report.FieldLandingViews)
		if dim.Funnel {
			b.Video3s += report.Number(r, report.FieldVideo3s)
			b.Video75 += report.Number(r, report.FieldVideo75)
			b.Video95 += report.Number(r, report.FieldVideo95)
		}
	}

	out := make([]models.AggregateResult, 0, len(order))
	for _, key := range order {
		b := buckets[key]
		finalize(b, dim.Funnel)
		out = append(out, *b)
	}
	if dim.Name == ByCampaign.Name {
		sort.SliceStable(out, func(i, j int) bool { return out[i].Spend > out[j].Spend })
	}
	return out
}

// finalize deriva los ratios a partir de los totales crudos. Siempre se
// recalculan desde las sumas, nunca se promedian ratios parciales.
func finalize(b *models.AggregateResult, funnel bool) {
	if b.Impressions > 0 {
		b.CTR = b.LinkClicks / b.Impressions * 100
		b.CPM = b.Spend / b.Impressions * 1000
	}
	if b.LinkClicks > 0 {
		b.CPC = b.Spend / b.LinkClicks
		b.ConnectRate = b.LandingViews / b.LinkClicks * 100
	}
	if b.Messages > 0 {
		b.CostPerResult = b.Spend / b.Messages
	}
	if funnel {
		if b.Impressions > 0 {
			b.ImpactRate = b.Video3s / b.Impressions * 100
			b.StoryRate = b.Video75 / b.Impressions * 100
			b.OfferRate = b.Video95 / b.Impressions * 100
		}
		if b.Video95 > 0 {
			b.CTARate = b.LinkClicks / b.Video95 * 100
		}
	}
}

// SortBy reordena resultados de forma estable, descendente por la métrica
// pedida. Métrica desconocida => se devuelve tal cual.
func SortBy(results []models.AggregateResult, metric string) []models.AggregateResult {
	get, ok := metricValue(metric)
	if !ok {
		return results
	}
	out := make([]models.AggregateResult, len(results))
	copy(out, results)
	sort.SliceStable(out, func(i, j int) bool { return get(out[i]) > get(out[j]) })
	return out
}

// TopConverters devuelve el top-n por tasa de conversión (mensajes por
// click), excluyendo buckets con pocos clicks para no rankear ruido.
func TopConverters(results []models.AggregateResult, n, minClicks int) []models.AggregateResult {
	if n <= 0 {
		n = 3
	}
	if minClicks < 0 {
		minClicks = 5
	}
	eligible := make([]models.AggregateResult, 0, len(results))
	for _, r := range results {
		if r.LinkClicks > float64(minClicks) {
			eligible = append(eligible, r)
		}
	}
	sort.SliceStable(eligible, func(i, j int) bool {
		return convRate(eligible[i]) > convRate(eligible[j])
	})
	if len(eligible) > n {
		eligible = eligible[:n]
	}
	return eligible
}

func convRate(r models.AggregateResult) float64 {
	if r.LinkClicks == 0 {
		return 0
	}
	return r.Messages / r.LinkClicks * 100
}
