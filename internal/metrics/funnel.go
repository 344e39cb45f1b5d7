package metrics

import (
	"sort"

	"github.com/scalli-crm/cliente-scalli-sub000/internal/models"
)

// Stage es una etapa del funnel narrativo de un video ad: cuánta audiencia
// sobrevive al gancho (impact), al desarrollo (story), a la oferta (offer)
// y cuántos de los que llegaron al final clickearon (cta).
type Stage string

const (
	StageImpact Stage = "impact"
	StageStory  Stage = "story"
	StageOffer  Stage = "offer"
	StageCTA    Stage = "cta"
)

func stageRate(s Stage) (func(models.AggregateResult) float64, bool) {
	switch s {
	case StageImpact:
		return func(r models.AggregateResult) float64 { return r.ImpactRate }, true
	case StageStory:
		return func(r models.AggregateResult) float64 { return r.StoryRate }, true
	case StageOffer:
		return func(r models.AggregateResult) float64 { return r.OfferRate }, true
	case StageCTA:
		return func(r models.AggregateResult) float64 { return r.CTARate }, true
	}
	return nil, false
}

// TopFunnel rankea creativos por la tasa de una etapa, descendente y
// estable (empates conservan el orden del bucket). Antes de rankear filtra
// por volumen mínimo para suprimir creativos con muestra chica; la etapa
// cta umbraliza sobre el conteo de retención al 95% en vez de impresiones.
func TopFunnel(creatives []models.AggregateResult, stage Stage, n int, minImpressions float64) []models.AggregateResult {
	rate, ok := stageRate(stage)
	if !ok {
		return []models.AggregateResult{}
	}
	if n <= 0 {
		n = 5
	}
	if minImpressions <= 0 {
		minImpressions = 20
	}

	eligible := make([]models.AggregateResult, 0, len(creatives))
	for _, r := range creatives {
		volume := r.Impressions
		if stage == StageCTA {
			volume = r.Video95
		}
		if volume >= minImpressions {
			eligible = append(eligible, r)
		}
	}
	sort.SliceStable(eligible, func(i, j int) bool { return rate(eligible[i]) > rate(eligible[j]) })
	if len(eligible) > n {
		eligible = eligible[:n]
	}
	return eligible
}

// TopByMetric es el ranking genérico top-n por cualquier métrica derivada o
// total crudo, con el mismo contrato de orden estable descendente.
func TopByMetric(results []models.AggregateResult, metric string, n int) []models.AggregateResult {
	get, ok := metricValue(metric)
	if !ok {
		return []models.AggregateResult{}
	}
	if n <= 0 {
		n = 3
	}
	out := make([]models.AggregateResult, len(results))
	copy(out, results)
	sort.SliceStable(out, func(i, j int) bool { return get(out[i]) > get(out[j]) })
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// KnownMetric reporta si el nombre corresponde a una métrica rankeable.
func KnownMetric(name string) bool {
	_, ok := metricValue(name)
	return ok
}

func metricValue(name string) (func(models.AggregateResult) float64, bool) {
	switch name {
	case "spend":
		return func(r models.AggregateResult) float64 { return r.Spend }, true
	case "impressions":
		return func(r models.AggregateResult) float64 { return r.Impressions }, true
	case "reach":
		return func(r models.AggregateResult) float64 { return r.Reach }, true
	case "link_clicks":
		return func(r models.AggregateResult) float64 { return r.LinkClicks }, true
	case "all_clicks":
		return func(r models.AggregateResult) float64 { return r.AllClicks }, true
	case "messages":
		return func(r models.AggregateResult) float64 { return r.Messages }, true
	case "engagement":
		return func(r models.AggregateResult) float64 { return r.Engagement }, true
	case "landing_views":
		return func(r models.AggregateResult) float64 { return r.LandingViews }, true
	case "ctr":
		return func(r models.AggregateResult) float64 { return r.CTR }, true
	case "cpc":
		return func(r models.AggregateResult) float64 { return r.CPC }, true
	case "cpm":
		return func(r models.AggregateResult) float64 { return r.CPM }, true
	case "cost_per_result":
		return func(r models.AggregateResult) float64 { return r.CostPerResult }, true
	case "connect_rate":
		return func(r models.AggregateResult) float64 { return r.ConnectRate }, true
	case "impact_rate":
		return func(r models.AggregateResult) float64 { return r.ImpactRate }, true
	case "story_rate":
		return func(r models.AggregateResult) float64 { return r.StoryRate }, true
	case "offer_rate":
		return func(r models.AggregateResult) float64 { return r.OfferRate }, true
	case "cta_rate":
		return func(r models.AggregateResult) float64 { return r.CTARate }, true
	case "conversion":
		return convRate, true
	}
	return nil, false
}
